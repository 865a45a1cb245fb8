package harness

import (
	"fmt"
	"slices"

	"github.com/go-json-experiment/json/jsontext"
	"github.com/google/go-cmp/cmp"

	"github.com/roach88/stridefix/internal/fixture"
	"github.com/roach88/stridefix/internal/transform"
)

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true if every expectation held.
	Pass bool `json:"pass"`

	// Outcomes holds one entry per family, in family order.
	Outcomes []Outcome `json:"outcomes"`

	// Errors contains expectation failures. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// Outcome is what one family did with the scenario's fixture.
type Outcome struct {
	Family   transform.Family `json:"family"`
	Declined bool             `json:"declined"`
	Output   string           `json:"output,omitempty"` // encoded document

	fields *fixture.Object
}

// AddError adds an expectation failure and marks the result as failed.
func (r *Result) AddError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	r.Pass = false
}

// Outcome returns the outcome for family.
func (r *Result) Outcome(family transform.Family) (Outcome, bool) {
	i := slices.IndexFunc(r.Outcomes, func(o Outcome) bool { return o.Family == family })
	if i < 0 {
		return Outcome{}, false
	}
	return r.Outcomes[i], true
}

// Run applies every family to the scenario's fixture and checks the
// expectations. The returned error is non-nil only when the scenario could
// not be executed at all; failed expectations are reported in the Result.
func Run(scenario *Scenario) (*Result, error) {
	rec, err := scenario.Record()
	if err != nil {
		return nil, err
	}

	result := &Result{Pass: true, Outcomes: []Outcome{}, Errors: []string{}}
	for _, t := range transform.All() {
		oc := Outcome{Family: t.Family()}
		obj, ok := t.Apply(rec)
		if !ok {
			oc.Declined = true
			result.Outcomes = append(result.Outcomes, oc)
			continue
		}
		data, err := fixture.Encode(obj)
		if err != nil {
			return nil, fmt.Errorf("encode %s output: %w", oc.Family, err)
		}
		oc.Output = string(data)
		oc.fields = obj
		result.Outcomes = append(result.Outcomes, oc)
	}

	for i, exp := range scenario.Expect {
		checkExpectation(result, i, exp)
	}

	return result, nil
}

func checkExpectation(result *Result, index int, exp Expectation) {
	family := transform.Family(exp.Family)
	oc, ok := result.Outcome(family)
	if !ok {
		result.AddError("expect[%d]: unknown family %q", index, exp.Family)
		return
	}

	if exp.Declined {
		if !oc.Declined {
			result.AddError("expect[%d] %s: expected the fixture to be declined, but output was produced", index, family)
		}
		return
	}
	if oc.Declined {
		result.AddError("expect[%d] %s: fixture was declined", index, family)
		return
	}

	if exp.Output != "" {
		want, err := fixture.DecodeObject([]byte(exp.Output))
		if err != nil {
			result.AddError("expect[%d] %s: invalid expected output: %v", index, family, err)
			return
		}
		wantText, err := fixture.Encode(want)
		if err != nil {
			result.AddError("expect[%d] %s: invalid expected output: %v", index, family, err)
			return
		}
		if diff := cmp.Diff(string(wantText), oc.Output); diff != "" {
			result.AddError("expect[%d] %s: output mismatch (-want +got):\n%s", index, family, diff)
		}
	}

	keys := make([]string, 0, len(exp.Fields))
	for k := range exp.Fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, key := range keys {
		got, ok := oc.fields.Get(key)
		if !ok {
			result.AddError("expect[%d] %s: field %q missing", index, family, key)
			continue
		}
		if !matchValue(exp.Fields[key], got) {
			result.AddError("expect[%d] %s: field %q: expected %v, got %s", index, family, key, exp.Fields[key], compact(got))
		}
	}
}

// matchValue compares a YAML-decoded expectation with a fixture value.
// Nested objects are matched as subsets.
func matchValue(expected any, actual fixture.Value) bool {
	switch exp := expected.(type) {
	case nil:
		_, ok := actual.(fixture.Null)
		return ok
	case bool:
		b, ok := actual.(fixture.Bool)
		return ok && bool(b) == exp
	case int:
		return numberEquals(actual, float64(exp))
	case int64:
		return numberEquals(actual, float64(exp))
	case uint64:
		return numberEquals(actual, float64(exp))
	case float64:
		return numberEquals(actual, exp)
	case string:
		s, ok := actual.(fixture.String)
		return ok && string(s) == exp
	case []any:
		arr, ok := actual.(fixture.Array)
		if !ok || len(arr) != len(exp) {
			return false
		}
		for i := range exp {
			if !matchValue(exp[i], arr[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		obj, ok := actual.(*fixture.Object)
		if !ok {
			return false
		}
		for k, v := range exp {
			got, ok := obj.Get(k)
			if !ok || !matchValue(v, got) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func numberEquals(actual fixture.Value, want float64) bool {
	n, ok := actual.(fixture.Number)
	return ok && float64(n) == want
}

// compact renders v as single-line JSON for diagnostics.
func compact(v fixture.Value) string {
	data, err := fixture.Encode(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	raw := jsontext.Value(data)
	if err := raw.Compact(); err != nil {
		return string(data)
	}
	return string(raw)
}

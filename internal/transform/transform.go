package transform

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/stridefix/internal/fixture"
)

// Sentinel fills the buffer slots that a strided traversal must skip.
const Sentinel = 9999.0

// Family names a derived fixture family. It doubles as the output
// subdirectory name.
type Family string

const (
	FamilyOffsets         Family = "offsets"
	FamilyNegativeStrides Family = "negative_strides"
	FamilyLargeStrides    Family = "large_strides"
	FamilyMixedStrides    Family = "mixed_strides"
)

// Transformer derives one fixture family from a base fixture.
type Transformer interface {
	// Family returns the family this transformer produces.
	Family() Family

	// Apply returns the transformed copy of rec's fields.
	// rec is never mutated. ok is false when the transformer declines the
	// fixture entirely, in which case no output should be written.
	Apply(rec fixture.Record) (out *fixture.Object, ok bool)
}

// All returns one transformer per family in canonical order.
func All() []Transformer {
	return []Transformer{
		Offset{},
		NegativeStride{},
		LargeStride{},
		MixedStride{},
	}
}

// Families returns every family name in canonical order.
func Families() []Family {
	all := All()
	families := make([]Family, len(all))
	for i, t := range all {
		families[i] = t.Family()
	}
	return families
}

// Select returns the transformers for the named families, in canonical
// order. An empty names slice selects every family.
func Select(names []string) ([]Transformer, error) {
	all := All()
	if len(names) == 0 {
		return all, nil
	}

	want := make(map[Family]bool, len(names))
	for _, name := range names {
		f := Family(strings.TrimSpace(name))
		if !slices.Contains(Families(), f) {
			return nil, fmt.Errorf("unknown family %q: must be one of %v", name, Families())
		}
		want[f] = true
	}

	selected := make([]Transformer, 0, len(want))
	for _, t := range all {
		if want[t.Family()] {
			selected = append(selected, t)
		}
	}
	return selected, nil
}

// isBaseSequence reports whether key holds a flat numeric sequence that is
// not itself an _out companion.
func isBaseSequence(obj *fixture.Object, key string) bool {
	if fixture.IsOutField(key) {
		return false
	}
	v, _ := obj.Get(key)
	return fixture.IsFlatNumeric(v)
}

// updateCompanion applies fn to key's _out companion when it is a flat
// numeric sequence.
func updateCompanion(obj *fixture.Object, key string, fn func(fixture.Array) fixture.Array) {
	outKey := fixture.OutField(key)
	v, ok := obj.Get(outKey)
	if !ok || !fixture.IsFlatNumeric(v) {
		return
	}
	obj.Set(outKey, fn(v.(fixture.Array)))
}

// scaleStrides multiplies every numeric stride* field by factor.
func scaleStrides(obj *fixture.Object, factor float64) {
	for _, key := range obj.Keys() {
		if !fixture.IsStrideField(key) {
			continue
		}
		v, _ := obj.Get(key)
		n, ok := v.(fixture.Number)
		if !ok {
			continue
		}
		scaled := float64(n) * factor
		if scaled == 0 {
			scaled = 0 // no negative zero
		}
		obj.Set(key, fixture.Number(scaled))
	}
}

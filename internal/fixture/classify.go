package fixture

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Kind is the shape class of a fixture value.
type Kind int

const (
	// KindScalar covers null, booleans, numbers, and strings.
	KindScalar Kind = iota
	// KindFlatNumeric is a one-dimensional array of numbers. Empty arrays qualify.
	KindFlatNumeric
	// KindOther covers nested or mixed arrays and objects.
	KindOther
)

// String returns the lowercase name used in CLI output.
func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindFlatNumeric:
		return "flat-numeric"
	case KindOther:
		return "other"
	default:
		return "unknown"
	}
}

// Field name conventions shared by the transforms.
const (
	StridePrefix = "stride"
	OffsetPrefix = "offset"
	OutSuffix    = "_out"
)

// Classify returns the shape class of v.
func Classify(v Value) Kind {
	switch val := v.(type) {
	case Array:
		for _, elem := range val {
			if _, ok := elem.(Number); !ok {
				return KindOther
			}
		}
		return KindFlatNumeric
	case *Object:
		return KindOther
	default:
		return KindScalar
	}
}

// IsFlatNumeric reports whether v is a flat numeric sequence.
func IsFlatNumeric(v Value) bool {
	return Classify(v) == KindFlatNumeric
}

// IsStrideField reports whether name denotes a stride scalar.
func IsStrideField(name string) bool {
	return strings.HasPrefix(name, StridePrefix)
}

// IsOffsetField reports whether name denotes an offset scalar.
func IsOffsetField(name string) bool {
	return strings.HasPrefix(name, OffsetPrefix)
}

// IsOutField reports whether name is a companion output field.
func IsOutField(name string) bool {
	return strings.HasSuffix(name, OutSuffix)
}

// OutField returns the companion output field name for base.
func OutField(base string) string {
	return base + OutSuffix
}

// Capitalize upper-cases the first character of s using full Unicode case
// mapping, so "ß" becomes "SS". The remainder of s is left untouched.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	_, size := utf8.DecodeRuneInString(s)
	// A Caser is stateful and must not be shared between goroutines.
	return cases.Upper(language.Und).String(s[:size]) + s[size:]
}

package fixture

import (
	"math"
	"slices"
)

// Value is a sealed interface representing a decoded JSON value.
// Only Null, Bool, Number, String, Array, and *Object implement this.
type Value interface {
	fixtureValue() // Sealed - only these types implement it
}

// Null represents a JSON null.
type Null struct{}

func (Null) fixtureValue() {}

// Bool represents a JSON boolean.
type Bool bool

func (Bool) fixtureValue() {}

// Number represents a JSON number.
// All numbers are float64, matching the runtime the fixtures are consumed by.
type Number float64

func (Number) fixtureValue() {}

// String represents a JSON string.
type String string

func (String) fixtureValue() {}

// Array represents a JSON array.
type Array []Value

func (Array) fixtureValue() {}

// Object is an insertion-ordered JSON object.
//
// Set on an existing key replaces the value in place; Set on a new key
// appends it. The zero value is not usable; use NewObject.
type Object struct {
	keys   []string
	values map[string]Value
}

func (*Object) fixtureValue() {}

// NewObject creates an empty Object.
func NewObject() *Object {
	return &Object{values: make(map[string]Value)}
}

// Pair is a key-value pair for ordered Object construction.
type Pair struct {
	Key   string
	Value Value
}

// P is a shorthand for Pair.
// Example: NewObjectFromPairs(P("x", Array{Number(1)}), P("strideX", Number(1)))
func P(key string, value Value) Pair {
	return Pair{Key: key, Value: value}
}

// NewObjectFromPairs creates an Object with keys in the given order.
func NewObjectFromPairs(pairs ...Pair) *Object {
	obj := NewObject()
	for _, p := range pairs {
		obj.Set(p.Key, p.Value)
	}
	return obj
}

// Len returns the number of fields.
func (o *Object) Len() int {
	return len(o.keys)
}

// Keys returns the field names in document order.
// The returned slice is a copy; mutating the object does not affect it.
func (o *Object) Keys() []string {
	return slices.Clone(o.keys)
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (Value, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	_, ok := o.values[key]
	return ok
}

// Set stores v under key, keeping the key's position if it already exists.
func (o *Object) Set(key string, v Value) {
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
}

// Clone returns a deep copy of the object.
func (o *Object) Clone() *Object {
	c := &Object{
		keys:   slices.Clone(o.keys),
		values: make(map[string]Value, len(o.values)),
	}
	for k, v := range o.values {
		c.values[k] = Clone(v)
	}
	return c
}

// Equal reports whether both objects hold the same keys in the same order
// with equal values.
func (o *Object) Equal(other *Object) bool {
	if o == nil || other == nil {
		return o == other
	}
	if !slices.Equal(o.keys, other.keys) {
		return false
	}
	for _, k := range o.keys {
		if !Equal(o.values[k], other.values[k]) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of v. Scalars are returned as-is.
func Clone(v Value) Value {
	switch val := v.(type) {
	case Array:
		arr := make(Array, len(val))
		for i, elem := range val {
			arr[i] = Clone(elem)
		}
		return arr
	case *Object:
		return val.Clone()
	default:
		return v
	}
}

// Equal reports whether a and b are structurally equal.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case Array:
		bv, ok := b.(Array)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case *Object:
		bv, ok := b.(*Object)
		return ok && av.Equal(bv)
	default:
		return a == b
	}
}

// Truthy applies ECMAScript truthiness: null, false, 0, NaN and "" are
// falsy; every other value, including empty arrays and objects, is truthy.
// A missing field (nil) is falsy.
func Truthy(v Value) bool {
	switch val := v.(type) {
	case nil, Null:
		return false
	case Bool:
		return bool(val)
	case Number:
		f := float64(val)
		return f != 0 && !math.IsNaN(f)
	case String:
		return val != ""
	default:
		return true
	}
}

package transform

import (
	"math"

	"github.com/roach88/stridefix/internal/fixture"
)

// Storage orders accepted in a fixture's "order" field.
const (
	OrderRowMajor    = "row-major"
	OrderColumnMajor = "column-major"
)

// OrderField names the field that declares a fixture's storage order.
const OrderField = "order"

// MixedStride produces 2-D fixtures with one axis traversed backwards.
//
// For each base sequence K with strides stride<K>1 and stride<K>2, K is read
// as a dim1 x dim2 matrix at value(r, c) = K[r*s1 + c*s2]. Row-major
// fixtures get their rows reversed and stride<K>1 negated; column-major
// fixtures get their columns reversed and stride<K>2 negated. offset<K> is
// set so the new (stride, offset) triple addresses the same logical matrix.
//
// Fixtures without a recognized order are declined.
type MixedStride struct{}

// Family implements Transformer.
func (MixedStride) Family() Family { return FamilyMixedStrides }

// Apply implements Transformer.
func (MixedStride) Apply(rec fixture.Record) (*fixture.Object, bool) {
	order, ok := storageOrder(rec.Fields)
	if !ok {
		return nil, false
	}

	obj := rec.Clone()
	for _, key := range obj.Keys() {
		if !isBaseSequence(obj, key) {
			continue
		}
		reverseAxis(obj, key, order)
	}
	return obj, true
}

// MatrixFields returns the stride and offset field names that describe
// key as a matrix. Unlike NegativeOffsetField, key is not capitalized.
func MatrixFields(key string) (stride1, stride2, offset string) {
	return fixture.StridePrefix + key + "1",
		fixture.StridePrefix + key + "2",
		fixture.OffsetPrefix + key
}

func storageOrder(obj *fixture.Object) (string, bool) {
	v, _ := obj.Get(OrderField)
	s, ok := v.(fixture.String)
	if !ok {
		return "", false
	}
	switch string(s) {
	case OrderRowMajor, OrderColumnMajor:
		return string(s), true
	default:
		return "", false
	}
}

// reverseAxis rewrites key (and its _out companion) in place. Any unmet
// precondition leaves the fixture untouched.
func reverseAxis(obj *fixture.Object, key, order string) {
	stride1Key, stride2Key, offsetKey := MatrixFields(key)

	s1v, _ := obj.Get(stride1Key)
	s2v, _ := obj.Get(stride2Key)
	offv, _ := obj.Get(offsetKey)
	if !fixture.Truthy(s1v) || !fixture.Truthy(s2v) || fixture.Truthy(offv) {
		return
	}
	s1n, ok1 := s1v.(fixture.Number)
	s2n, ok2 := s2v.(fixture.Number)
	if !ok1 || !ok2 {
		return
	}
	s1, s2 := float64(s1n), float64(s2n)

	// The source offset is always taken as zero; a falsy offset field is the
	// only one that gets this far.
	const offset = 0.0

	v, _ := obj.Get(key)
	arr := v.(fixture.Array)

	var dim1, dim2 float64
	switch {
	case order == OrderRowMajor && math.Abs(s1) > math.Abs(s2):
		dim2 = math.Abs(s1)
		dim1 = float64(len(arr)) / dim2
	case order == OrderColumnMajor && math.Abs(s2) > math.Abs(s1):
		dim1 = math.Abs(s2)
		dim2 = float64(len(arr)) / dim1
	default:
		return
	}
	if !isInteger(dim1) || !isInteger(dim2) {
		return
	}

	m := matrix{
		rows:    int(dim1),
		cols:    int(dim2),
		s1:      s1,
		s2:      s2,
		offset:  offset,
		reverse: order,
	}

	outKey := fixture.OutField(key)
	outVal, _ := obj.Get(outKey)
	hasOut := fixture.IsFlatNumeric(outVal)

	obj.Set(key, m.remap(arr, len(arr)))
	if hasOut {
		out := outVal.(fixture.Array)
		obj.Set(outKey, m.remap(out, max(len(out), len(arr))))
	}

	switch order {
	case OrderRowMajor:
		obj.Set(stride1Key, fixture.Number(-s1))
		obj.Set(stride2Key, fixture.Number(s2))
		obj.Set(offsetKey, fixture.Number(offset+(dim1-1)*s1))
	case OrderColumnMajor:
		obj.Set(stride1Key, fixture.Number(s1))
		obj.Set(stride2Key, fixture.Number(-s2))
		obj.Set(offsetKey, fixture.Number(offset+(dim2-1)*s2))
	}
}

// matrix describes a strided 2-D view over a flat sequence and the axis to
// reverse when flattening it.
type matrix struct {
	rows, cols int
	s1, s2     float64
	offset     float64
	reverse    string // OrderRowMajor reverses rows, OrderColumnMajor columns
}

// source returns the index of element (r, c) in the original sequence.
func (m matrix) source(r, c int) float64 {
	return m.offset + float64(r)*m.s1 + float64(c)*m.s2
}

// dest returns the index of element (r, c) in the remapped sequence.
func (m matrix) dest(r, c int) int {
	if m.reverse == OrderRowMajor {
		return (m.rows-1-r)*m.cols + c
	}
	return r + (m.cols-1-c)*m.rows
}

// remap builds a sequence of length n holding src's elements at their
// destination indices. Sources that fall outside src, or between integer
// indices, read as null, as do destination slots nothing maps to.
func (m matrix) remap(src fixture.Array, n int) fixture.Array {
	out := make(fixture.Array, n)
	for i := range out {
		out[i] = fixture.Null{}
	}
	for r := range m.rows {
		for c := range m.cols {
			out[m.dest(r, c)] = elementAt(src, m.source(r, c))
		}
	}
	return out
}

func elementAt(arr fixture.Array, idx float64) fixture.Value {
	if !isInteger(idx) || idx < 0 || idx >= float64(len(arr)) {
		return fixture.Null{}
	}
	return arr[int(idx)]
}

func isInteger(f float64) bool {
	return !math.IsInf(f, 0) && f == math.Trunc(f)
}

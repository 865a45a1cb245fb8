package transform

import "github.com/roach88/stridefix/internal/fixture"

// LargeStride produces fixtures traversed with twice the stride over a
// buffer padded with Sentinel between elements.
type LargeStride struct{}

// Family implements Transformer.
func (LargeStride) Family() Family { return FamilyLargeStrides }

// Apply implements Transformer. It always accepts the fixture.
func (LargeStride) Apply(rec fixture.Record) (*fixture.Object, bool) {
	obj := rec.Clone()

	for _, key := range obj.Keys() {
		if !isBaseSequence(obj, key) {
			continue
		}
		v, _ := obj.Get(key)
		obj.Set(key, interleaveSentinel(v.(fixture.Array)))
		updateCompanion(obj, key, interleaveSentinel)
	}

	scaleStrides(obj, 2)
	return obj, true
}

// interleaveSentinel maps [a, b, c] to [a, S, b, S, c, S].
func interleaveSentinel(arr fixture.Array) fixture.Array {
	out := make(fixture.Array, 0, 2*len(arr))
	for _, elem := range arr {
		out = append(out, elem, fixture.Number(Sentinel))
	}
	return out
}

package transform

import (
	"slices"

	"github.com/roach88/stridefix/internal/fixture"
)

// NegativeStride produces fixtures traversed back to front. Each base
// sequence is reversed and given an offset pointing at its last element;
// stride* fields are negated so the traversal reproduces the original order.
type NegativeStride struct{}

// Family implements Transformer.
func (NegativeStride) Family() Family { return FamilyNegativeStrides }

// Apply implements Transformer. It always accepts the fixture.
func (NegativeStride) Apply(rec fixture.Record) (*fixture.Object, bool) {
	obj := rec.Clone()

	for _, key := range obj.Keys() {
		if !isBaseSequence(obj, key) {
			continue
		}
		v, _ := obj.Get(key)
		reversed := reverse(v.(fixture.Array))
		obj.Set(key, reversed)
		obj.Set(NegativeOffsetField(key), fixture.Number(len(reversed)-1))

		// The companion is reversed too, but gets no offset of its own.
		updateCompanion(obj, key, reverse)
	}

	scaleStrides(obj, -1)
	return obj, true
}

// NegativeOffsetField returns the offset field derived for key:
// "offset" followed by key with its first character upper-cased.
func NegativeOffsetField(key string) string {
	return fixture.OffsetPrefix + fixture.Capitalize(key)
}

func reverse(arr fixture.Array) fixture.Array {
	out := slices.Clone(arr)
	slices.Reverse(out)
	return out
}

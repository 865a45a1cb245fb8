package transform

import "github.com/roach88/stridefix/internal/fixture"

// Offset produces fixtures whose arrays start one slot into their buffer.
// Sentinel occupies the skipped slot and every offset* field becomes 1.
type Offset struct{}

// Family implements Transformer.
func (Offset) Family() Family { return FamilyOffsets }

// Apply implements Transformer. It always accepts the fixture.
func (Offset) Apply(rec fixture.Record) (*fixture.Object, bool) {
	obj := rec.Clone()

	for _, key := range obj.Keys() {
		v, _ := obj.Get(key)
		if fixture.IsFlatNumeric(v) {
			obj.Set(key, prependSentinel(v.(fixture.Array)))
		}
		if fixture.IsOffsetField(key) {
			obj.Set(key, fixture.Number(1))
		}
	}

	return obj, true
}

func prependSentinel(arr fixture.Array) fixture.Array {
	out := make(fixture.Array, 0, len(arr)+1)
	out = append(out, fixture.Number(Sentinel))
	return append(out, arr...)
}

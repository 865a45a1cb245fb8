package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/stridefix/internal/fixture"
)

func TestMixedStrideRowMajor(t *testing.T) {
	r := rec(
		fixture.P("order", fixture.String(OrderRowMajor)),
		fixture.P("A", nums(1, 2, 3, 4, 5, 6)),
		fixture.P("strideA1", fixture.Number(3)),
		fixture.P("strideA2", fixture.Number(1)),
	)

	out, ok := MixedStride{}.Apply(r)
	require.True(t, ok)

	assert.Equal(t, nums(4, 5, 6, 1, 2, 3), get(t, out, "A"))
	assert.Equal(t, fixture.Number(-3), get(t, out, "strideA1"))
	assert.Equal(t, fixture.Number(1), get(t, out, "strideA2"))
	assert.Equal(t, fixture.Number(3), get(t, out, "offsetA"))
	assert.Equal(t, []string{"order", "A", "strideA1", "strideA2", "offsetA"}, out.Keys())
}

func TestMixedStrideColumnMajor(t *testing.T) {
	r := rec(
		fixture.P("order", fixture.String(OrderColumnMajor)),
		fixture.P("A", nums(1, 2, 3, 4, 5, 6)),
		fixture.P("A_out", nums(10, 20, 30, 40, 50, 60)),
		fixture.P("strideA1", fixture.Number(1)),
		fixture.P("strideA2", fixture.Number(2)),
		fixture.P("offsetA", fixture.Number(0)),
	)

	out, ok := MixedStride{}.Apply(r)
	require.True(t, ok)

	// dim1 = 2 rows, dim2 = 3 columns; columns reversed.
	assert.Equal(t, nums(5, 6, 3, 4, 1, 2), get(t, out, "A"))
	assert.Equal(t, nums(50, 60, 30, 40, 10, 20), get(t, out, "A_out"))
	assert.Equal(t, fixture.Number(1), get(t, out, "strideA1"))
	assert.Equal(t, fixture.Number(-2), get(t, out, "strideA2"))
	assert.Equal(t, fixture.Number(4), get(t, out, "offsetA"))
	// offsetA already existed, so it keeps its slot.
	assert.Equal(t, []string{"order", "A", "A_out", "strideA1", "strideA2", "offsetA"}, out.Keys())
}

func TestMixedStrideDeclinesWithoutOrder(t *testing.T) {
	tests := []struct {
		name  string
		order fixture.Value
	}{
		{"missing", nil},
		{"unknown", fixture.String("diagonal")},
		{"wrong case", fixture.String("Row-Major")},
		{"not a string", fixture.Number(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pairs := []fixture.Pair{
				fixture.P("A", nums(1, 2, 3, 4)),
				fixture.P("strideA1", fixture.Number(2)),
				fixture.P("strideA2", fixture.Number(1)),
			}
			if tt.order != nil {
				pairs = append(pairs, fixture.P("order", tt.order))
			}

			out, ok := MixedStride{}.Apply(rec(pairs...))
			assert.False(t, ok)
			assert.Nil(t, out)
		})
	}
}

func TestMixedStrideSkipsField(t *testing.T) {
	tests := []struct {
		name  string
		order string
		pairs []fixture.Pair
	}{
		{
			name:  "missing stride",
			order: OrderRowMajor,
			pairs: []fixture.Pair{fixture.P("strideA1", fixture.Number(3))},
		},
		{
			name:  "zero stride",
			order: OrderRowMajor,
			pairs: []fixture.Pair{
				fixture.P("strideA1", fixture.Number(3)),
				fixture.P("strideA2", fixture.Number(0)),
			},
		},
		{
			name:  "non-numeric stride",
			order: OrderRowMajor,
			pairs: []fixture.Pair{
				fixture.P("strideA1", fixture.String("3")),
				fixture.P("strideA2", fixture.Number(1)),
			},
		},
		{
			name:  "nonzero offset",
			order: OrderRowMajor,
			pairs: []fixture.Pair{
				fixture.P("strideA1", fixture.Number(3)),
				fixture.P("strideA2", fixture.Number(1)),
				fixture.P("offsetA", fixture.Number(2)),
			},
		},
		{
			name:  "row-major with column-major strides",
			order: OrderRowMajor,
			pairs: []fixture.Pair{
				fixture.P("strideA1", fixture.Number(1)),
				fixture.P("strideA2", fixture.Number(2)),
			},
		},
		{
			name:  "column-major with row-major strides",
			order: OrderColumnMajor,
			pairs: []fixture.Pair{
				fixture.P("strideA1", fixture.Number(3)),
				fixture.P("strideA2", fixture.Number(1)),
			},
		},
		{
			name:  "equal magnitudes",
			order: OrderRowMajor,
			pairs: []fixture.Pair{
				fixture.P("strideA1", fixture.Number(2)),
				fixture.P("strideA2", fixture.Number(-2)),
			},
		},
		{
			name:  "non-integral dimension",
			order: OrderRowMajor,
			pairs: []fixture.Pair{
				fixture.P("strideA1", fixture.Number(4)),
				fixture.P("strideA2", fixture.Number(1)),
			},
		},
		{
			name:  "fractional stride",
			order: OrderRowMajor,
			pairs: []fixture.Pair{
				fixture.P("strideA1", fixture.Number(1.5)),
				fixture.P("strideA2", fixture.Number(1)),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pairs := append([]fixture.Pair{
				fixture.P("order", fixture.String(tt.order)),
				fixture.P("A", nums(1, 2, 3, 4, 5, 6)),
			}, tt.pairs...)
			r := rec(pairs...)

			out, ok := MixedStride{}.Apply(r)
			require.True(t, ok)
			assert.True(t, r.Fields.Equal(out), "field should be left unchanged")
		})
	}
}

func TestMixedStrideOutOfRangeSourceReadsNull(t *testing.T) {
	// |s1| > |s2| holds but s2 = 2 walks past the end of each row.
	r := rec(
		fixture.P("order", fixture.String(OrderRowMajor)),
		fixture.P("A", nums(1, 2, 3, 4, 5, 6)),
		fixture.P("strideA1", fixture.Number(3)),
		fixture.P("strideA2", fixture.Number(2)),
	)

	out, ok := MixedStride{}.Apply(r)
	require.True(t, ok)

	// r=0 reads 0,2,4; r=1 reads 3,5,7 (past the end).
	expected := fixture.Array{
		fixture.Number(4), fixture.Number(6), fixture.Null{},
		fixture.Number(1), fixture.Number(3), fixture.Number(5),
	}
	assert.True(t, fixture.Equal(expected, get(t, out, "A")))
}

func TestMixedStrideShortCompanionIsPadded(t *testing.T) {
	r := rec(
		fixture.P("order", fixture.String(OrderRowMajor)),
		fixture.P("A", nums(1, 2, 3, 4)),
		fixture.P("A_out", nums(9, 8)),
		fixture.P("strideA1", fixture.Number(2)),
		fixture.P("strideA2", fixture.Number(1)),
	)

	out, ok := MixedStride{}.Apply(r)
	require.True(t, ok)

	assert.Equal(t, nums(3, 4, 1, 2), get(t, out, "A"))
	expected := fixture.Array{fixture.Null{}, fixture.Null{}, fixture.Number(9), fixture.Number(8)}
	assert.True(t, fixture.Equal(expected, get(t, out, "A_out")))
}

func TestMixedStrideNegativeSourceStride(t *testing.T) {
	r := rec(
		fixture.P("order", fixture.String(OrderRowMajor)),
		fixture.P("A", nums(1, 2, 3, 4)),
		fixture.P("strideA1", fixture.Number(-2)),
		fixture.P("strideA2", fixture.Number(1)),
	)

	out, ok := MixedStride{}.Apply(r)
	require.True(t, ok)

	// Row 1 would start at index -2, which does not exist.
	expected := fixture.Array{fixture.Null{}, fixture.Null{}, fixture.Number(1), fixture.Number(2)}
	assert.True(t, fixture.Equal(expected, get(t, out, "A")))
	assert.Equal(t, fixture.Number(2), get(t, out, "strideA1"))
	assert.Equal(t, fixture.Number(-2), get(t, out, "offsetA"))
}

func TestMixedStrideReaddressingInvariant(t *testing.T) {
	shapes := []struct {
		order      string
		rows, cols int
	}{
		{OrderRowMajor, 1, 4},
		{OrderRowMajor, 2, 3},
		{OrderRowMajor, 4, 5},
		{OrderColumnMajor, 4, 1},
		{OrderColumnMajor, 3, 2},
		{OrderColumnMajor, 5, 4},
	}

	for _, sh := range shapes {
		t.Run(sh.order, func(t *testing.T) {
			n := sh.rows * sh.cols
			src := make([]float64, n)
			for i := range src {
				src[i] = float64(i*7 + 1)
			}

			var s1, s2 float64
			if sh.order == OrderRowMajor {
				s1, s2 = float64(sh.cols), 1
			} else {
				s1, s2 = 1, float64(sh.rows)
			}
			if s1 == s2 {
				t.Skip("degenerate shape has no dominant stride")
			}

			r := rec(
				fixture.P("order", fixture.String(sh.order)),
				fixture.P("K", nums(src...)),
				fixture.P("strideK1", fixture.Number(s1)),
				fixture.P("strideK2", fixture.Number(s2)),
			)
			out, ok := MixedStride{}.Apply(r)
			require.True(t, ok)

			got, ok := get(t, out, "K").(fixture.Array)
			require.True(t, ok)
			require.True(t, fixture.IsFlatNumeric(got))
			ns1 := float64(get(t, out, "strideK1").(fixture.Number))
			ns2 := float64(get(t, out, "strideK2").(fixture.Number))
			noff := float64(get(t, out, "offsetK").(fixture.Number))

			for r := 0; r < sh.rows; r++ {
				for c := 0; c < sh.cols; c++ {
					old := src[r*int(s1)+c*int(s2)]
					idx := int(noff + float64(r)*ns1 + float64(c)*ns2)
					assert.Equal(t, fixture.Number(old), got[idx], "element (%d,%d)", r, c)
				}
			}
		})
	}
}

package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func numCol(vals ...float64) Column {
	cells := make([]Value, len(vals))
	for i, v := range vals {
		cells[i] = Number(v)
	}
	return Column{Name: "n", Cells: cells}
}

func TestMedian(t *testing.T) {
	tests := []struct {
		name string
		vals []float64
		want float64
	}{
		{"odd count", []float64{3, 1, 2}, 2},
		{"even count", []float64{1, 2, 3, 4}, 2.5},
		{"single", []float64{7}, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			col := numCol(tt.vals...)
			got, ok := col.Median()
			require.True(t, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}

	empty := Column{Name: "n", Cells: []Value{Null()}}
	_, ok := empty.Median()
	assert.False(t, ok)
}

func TestQuantileInterpolation(t *testing.T) {
	col := numCol(10, 12, 11, 13, 1000)

	q1, ok := col.Quantile(0.25)
	require.True(t, ok)
	q3, ok := col.Quantile(0.75)
	require.True(t, ok)

	// Sorted: 10 11 12 13 1000. Positions 1 and 3 land exactly.
	assert.InDelta(t, 11, q1, 1e-9)
	assert.InDelta(t, 13, q3, 1e-9)

	lo, _ := col.Quantile(0)
	hi, _ := col.Quantile(1)
	assert.Equal(t, 10.0, lo)
	assert.Equal(t, 1000.0, hi)
}

func TestSummary(t *testing.T) {
	col := numCol(2, 4, 6)
	s := col.Summary()

	assert.Equal(t, 3, s.Count)
	assert.InDelta(t, 4, s.Mean, 1e-9)
	assert.InDelta(t, 2, s.Std, 1e-9)
	assert.Equal(t, 2.0, s.Min)
	assert.Equal(t, 6.0, s.Max)

	empty := Column{Name: "n", Cells: nil}
	assert.Equal(t, NumericSummary{}, empty.Summary())
}

func TestModeFirstSeenWinsTies(t *testing.T) {
	col := Column{Name: "c", Cells: []Value{
		Text("a"), Text("b"), Text("b"), Text("a"), Null(),
	}}
	got, ok := col.Mode()
	require.True(t, ok)
	assert.Equal(t, "a", got.Text())

	allNull := Column{Name: "c", Cells: []Value{Null()}}
	_, ok = allNull.Mode()
	assert.False(t, ok)
}

func TestTableMissingAndDuplicateStats(t *testing.T) {
	tbl := MustNew(
		Column{Name: "id", Cells: []Value{Number(1), Number(1), Number(2), Number(3)}},
		Column{Name: "v", Cells: []Value{Text("x"), Text("y"), Null(), Null()}},
	)

	assert.InDelta(t, 25, tbl.MissingPct(), 1e-9)
	assert.Equal(t, 0, tbl.DuplicateRowCount(nil))
	assert.Equal(t, 1, tbl.DuplicateRowCount([]string{"id"}))
	assert.InDelta(t, 0, tbl.DuplicatePct(), 1e-9)

	rowPct := tbl.MissingRowPct()
	require.Len(t, rowPct, 4)
	assert.Equal(t, 0.0, rowPct[0])
	assert.Equal(t, 50.0, rowPct[2])
}

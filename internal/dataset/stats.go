package dataset

import (
	"math"
	"sort"
)

// NumericSummary holds the standard summary statistics of a numeric column.
type NumericSummary struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	Std   float64 `json:"std"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// Numbers returns the non-null numeric cells of the column.
func (c *Column) Numbers() []float64 {
	out := make([]float64, 0, len(c.Cells))
	for _, v := range c.Cells {
		if v.Kind() == KindNumber {
			out = append(out, v.Number())
		}
	}
	return out
}

// Summary computes summary statistics over the column's numeric cells.
// It returns the zero summary when the column has no numeric content.
func (c *Column) Summary() NumericSummary {
	nums := c.Numbers()
	if len(nums) == 0 {
		return NumericSummary{}
	}
	s := NumericSummary{Count: len(nums), Min: nums[0], Max: nums[0]}
	sum := 0.0
	for _, n := range nums {
		sum += n
		if n < s.Min {
			s.Min = n
		}
		if n > s.Max {
			s.Max = n
		}
	}
	s.Mean = sum / float64(len(nums))
	var sq float64
	for _, n := range nums {
		d := n - s.Mean
		sq += d * d
	}
	if len(nums) > 1 {
		s.Std = math.Sqrt(sq / float64(len(nums)-1))
	}
	return s
}

// Median returns the median of the column's numeric cells and false when
// there are none.
func (c *Column) Median() (float64, bool) {
	nums := c.Numbers()
	if len(nums) == 0 {
		return 0, false
	}
	sort.Float64s(nums)
	mid := len(nums) / 2
	if len(nums)%2 == 1 {
		return nums[mid], true
	}
	return (nums[mid-1] + nums[mid]) / 2, true
}

// Quantile returns the q-quantile (0 <= q <= 1) of the column's numeric
// cells using linear interpolation, and false when there are none.
func (c *Column) Quantile(q float64) (float64, bool) {
	nums := c.Numbers()
	if len(nums) == 0 {
		return 0, false
	}
	sort.Float64s(nums)
	if q <= 0 {
		return nums[0], true
	}
	if q >= 1 {
		return nums[len(nums)-1], true
	}
	pos := q * float64(len(nums)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return nums[lo], true
	}
	frac := pos - float64(lo)
	return nums[lo]*(1-frac) + nums[hi]*frac, true
}

// Mode returns the most frequent non-null value and false when every cell is
// null. Ties break toward the value seen first.
func (c *Column) Mode() (Value, bool) {
	counts := make(map[string]int)
	order := make([]Value, 0)
	seen := make(map[string]bool)
	for _, v := range c.Cells {
		if v.IsNull() {
			continue
		}
		k := v.key()
		counts[k]++
		if !seen[k] {
			seen[k] = true
			order = append(order, v)
		}
	}
	if len(order) == 0 {
		return Null(), false
	}
	best, bestN := order[0], counts[order[0].key()]
	for _, v := range order[1:] {
		if n := counts[v.key()]; n > bestN {
			best, bestN = v, n
		}
	}
	return best, true
}

// Distinct returns the number of distinct non-null values.
func (c *Column) Distinct() int {
	seen := make(map[string]struct{})
	for _, v := range c.Cells {
		if !v.IsNull() {
			seen[v.key()] = struct{}{}
		}
	}
	return len(seen)
}

// MissingPct returns the mean missing-cell percentage across all columns of
// the table, in [0,100].
func (t *Table) MissingPct() float64 {
	if len(t.columns) == 0 {
		return 0
	}
	sum := 0.0
	for i := range t.columns {
		sum += t.columns[i].MissingPct()
	}
	return sum / float64(len(t.columns))
}

// DuplicateRowCount returns the number of rows that duplicate an earlier row,
// keyed on the named columns or on the full row when names is empty.
func (t *Table) DuplicateRowCount(names []string) int {
	seen := make(map[string]struct{}, t.RowCount())
	dups := 0
	for i := 0; i < t.RowCount(); i++ {
		k := t.RowKey(i, names)
		if _, ok := seen[k]; ok {
			dups++
		} else {
			seen[k] = struct{}{}
		}
	}
	return dups
}

// DuplicatePct returns the duplicate-row percentage in [0,100], keyed on the
// full row.
func (t *Table) DuplicatePct() float64 {
	if t.RowCount() == 0 {
		return 0
	}
	return float64(t.DuplicateRowCount(nil)) / float64(t.RowCount()) * 100
}

// MissingRowPct returns, per row, the percentage of cells that are null.
func (t *Table) MissingRowPct() []float64 {
	out := make([]float64, t.RowCount())
	if t.ColumnCount() == 0 {
		return out
	}
	for i := 0; i < t.RowCount(); i++ {
		nulls := 0
		for j := range t.columns {
			if t.columns[j].Cells[i].IsNull() {
				nulls++
			}
		}
		out[i] = float64(nulls) / float64(t.ColumnCount()) * 100
	}
	return out
}

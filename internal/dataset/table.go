package dataset

import (
	"fmt"
	"strings"
)

// Column is a named, ordered sequence of cells.
type Column struct {
	Name  string
	Cells []Value
}

// Kind returns the dominant kind among the column's non-null cells, or
// KindNull for an entirely null (or empty) column. Text wins ties so that
// mixed columns stay textual until type detection converts them.
func (c *Column) Kind() Kind {
	counts := make(map[Kind]int)
	for _, v := range c.Cells {
		if !v.IsNull() {
			counts[v.Kind()]++
		}
	}
	if len(counts) == 0 {
		return KindNull
	}
	best, bestN := KindNull, 0
	for _, k := range []Kind{KindText, KindNumber, KindTime, KindBool} {
		if counts[k] > bestN {
			best, bestN = k, counts[k]
		}
	}
	return best
}

// MissingCount returns the number of null cells.
func (c *Column) MissingCount() int {
	n := 0
	for _, v := range c.Cells {
		if v.IsNull() {
			n++
		}
	}
	return n
}

// MissingPct returns the percentage of null cells in [0,100].
func (c *Column) MissingPct() float64 {
	if len(c.Cells) == 0 {
		return 0
	}
	return float64(c.MissingCount()) / float64(len(c.Cells)) * 100
}

// AllNull reports whether every cell is null. An empty column is not
// considered all-null.
func (c *Column) AllNull() bool {
	return len(c.Cells) > 0 && c.MissingCount() == len(c.Cells)
}

// clone deep-copies the column.
func (c *Column) clone() Column {
	cells := make([]Value, len(c.Cells))
	copy(cells, c.Cells)
	return Column{Name: c.Name, Cells: cells}
}

// Table is an ordered collection of equal-length named columns.
type Table struct {
	columns []Column
	index   map[string]int
}

// New creates a table from the given columns. Column names must be unique
// and all columns must share the same length.
func New(columns ...Column) (*Table, error) {
	t := &Table{index: make(map[string]int, len(columns))}
	rows := -1
	for _, col := range columns {
		if col.Name == "" {
			return nil, fmt.Errorf("column name cannot be empty")
		}
		if _, dup := t.index[col.Name]; dup {
			return nil, fmt.Errorf("duplicate column name %q", col.Name)
		}
		if rows >= 0 && len(col.Cells) != rows {
			return nil, fmt.Errorf("column %q has %d rows, expected %d", col.Name, len(col.Cells), rows)
		}
		rows = len(col.Cells)
		t.index[col.Name] = len(t.columns)
		t.columns = append(t.columns, col.clone())
	}
	return t, nil
}

// MustNew is New for static fixtures; it panics on invalid input.
func MustNew(columns ...Column) *Table {
	t, err := New(columns...)
	if err != nil {
		panic(err)
	}
	return t
}

// RowCount returns the number of rows.
func (t *Table) RowCount() int {
	if len(t.columns) == 0 {
		return 0
	}
	return len(t.columns[0].Cells)
}

// ColumnCount returns the number of columns.
func (t *Table) ColumnCount() int {
	return len(t.columns)
}

// ColumnNames returns the ordered column names.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// HasColumn reports whether a column with the given name exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column returns the column with the given name. The returned pointer
// references the table's own storage; mutating cells mutates the table.
func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return &t.columns[i], true
}

// Columns returns pointers to all columns in order.
func (t *Table) Columns() []*Column {
	cols := make([]*Column, len(t.columns))
	for i := range t.columns {
		cols[i] = &t.columns[i]
	}
	return cols
}

// Row returns the cells of row i in column order.
func (t *Table) Row(i int) []Value {
	row := make([]Value, len(t.columns))
	for j := range t.columns {
		row[j] = t.columns[j].Cells[i]
	}
	return row
}

// SetCell replaces the cell at (row, column name).
func (t *Table) SetCell(name string, row int, v Value) error {
	col, ok := t.Column(name)
	if !ok {
		return fmt.Errorf("column %q not found", name)
	}
	if row < 0 || row >= len(col.Cells) {
		return fmt.Errorf("row %d out of range for column %q", row, name)
	}
	col.Cells[row] = v
	return nil
}

// ReplaceColumn swaps the cells of an existing column, preserving its
// position. The replacement must have the same length.
func (t *Table) ReplaceColumn(name string, cells []Value) error {
	col, ok := t.Column(name)
	if !ok {
		return fmt.Errorf("column %q not found", name)
	}
	if len(cells) != len(col.Cells) {
		return fmt.Errorf("replacement for column %q has %d rows, expected %d", name, len(cells), len(col.Cells))
	}
	col.Cells = cells
	return nil
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	clone := &Table{
		columns: make([]Column, len(t.columns)),
		index:   make(map[string]int, len(t.index)),
	}
	for i, c := range t.columns {
		clone.columns[i] = c.clone()
		clone.index[c.Name] = i
	}
	return clone
}

// FilterRows returns a new table containing only rows where keep[i] is true.
// len(keep) must equal the row count.
func (t *Table) FilterRows(keep []bool) (*Table, error) {
	if len(keep) != t.RowCount() {
		return nil, fmt.Errorf("keep mask has %d entries, expected %d rows", len(keep), t.RowCount())
	}
	out := &Table{
		columns: make([]Column, len(t.columns)),
		index:   make(map[string]int, len(t.index)),
	}
	for i, c := range t.columns {
		cells := make([]Value, 0, len(c.Cells))
		for r, v := range c.Cells {
			if keep[r] {
				cells = append(cells, v)
			}
		}
		out.columns[i] = Column{Name: c.Name, Cells: cells}
		out.index[c.Name] = i
	}
	return out, nil
}

// RowKey builds a fingerprint of row i over the named columns, or over all
// columns when names is empty. Rows with equal fingerprints are duplicates.
func (t *Table) RowKey(i int, names []string) string {
	var sb strings.Builder
	if len(names) == 0 {
		for j := range t.columns {
			sb.WriteString(t.columns[j].Cells[i].key())
			sb.WriteByte('\x1f')
		}
		return sb.String()
	}
	for _, name := range names {
		if col, ok := t.Column(name); ok {
			sb.WriteString(col.Cells[i].key())
			sb.WriteByte('\x1f')
		}
	}
	return sb.String()
}

// SameSchema reports whether two tables have identical ordered column names.
func SameSchema(a, b *Table) bool {
	if a.ColumnCount() != b.ColumnCount() {
		return false
	}
	an, bn := a.ColumnNames(), b.ColumnNames()
	for i := range an {
		if an[i] != bn[i] {
			return false
		}
	}
	return true
}

package merge

import "fmt"

// Table is a rectangular, ordered collection of rows parsed from the first
// sheet of a workbook. Column names come from the header row. Cell values are
// string, float64, int64, bool, or nil for empty cells. Tables are not mutated
// after construction; operations that change shape return a new Table.
type Table struct {
	Columns []string
	Rows    [][]any
}

// ColumnIndex returns the position of name in the column set, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether name is one of the table's columns.
func (t *Table) HasColumn(name string) bool {
	return t.ColumnIndex(name) >= 0
}

// NumRows returns the data row count, excluding the header.
func (t *Table) NumRows() int {
	return len(t.Rows)
}

// NumColumns returns the column count.
func (t *Table) NumColumns() int {
	return len(t.Columns)
}

// Project returns a new table containing only the named columns that exist in
// t, in t's column order. Names absent from t are skipped rather than
// reported; presence checks belong to Validate so that its error ordering
// stays deterministic.
func (t *Table) Project(names ...string) *Table {
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}

	var keep []int
	var cols []string
	for i, c := range t.Columns {
		if wanted[c] {
			keep = append(keep, i)
			cols = append(cols, c)
		}
	}

	rows := make([][]any, len(t.Rows))
	for i, row := range t.Rows {
		newRow := make([]any, len(keep))
		for j, idx := range keep {
			newRow[j] = row[idx]
		}
		rows[i] = newRow
	}

	return &Table{Columns: cols, Rows: rows}
}

// CellString renders a single cell for display or serialization.
// Missing cells render as the empty string.
func CellString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		if val {
			return "TRUE"
		}
		return "FALSE"
	default:
		return fmt.Sprintf("%v", val)
	}
}

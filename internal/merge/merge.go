package merge

import (
	"github.com/nverhaar/xlsxmerge/internal/types"
)

// File labels used in user-facing error messages.
const (
	fileALabel = "File A"
	fileBLabel = "File B"
)

// DefaultSpec returns the join configuration the app starts with.
func DefaultSpec() types.JoinSpec {
	return types.JoinSpec{ReferenceColumn: "email", TargetColumn: "state"}
}

// Result holds everything a merge produces: the merged table, the unmatched
// subset, match statistics, file summaries, and the serialized workbook.
type Result struct {
	Merged    *Table
	Unmatched *Table
	Stats     types.MergeStats
	FileA     types.FileInfo
	FileB     types.FileInfo
	Output    []byte
}

// Validate checks that the join columns exist before any merging happens.
// Checks run in a fixed order so error messages are deterministic: reference
// column in File A, reference column in File B, target column in File B. The
// first failure wins and no partial work is done.
func Validate(primary, secondary *Table, spec types.JoinSpec) error {
	if !primary.HasColumn(spec.ReferenceColumn) {
		return &MissingColumnError{Column: spec.ReferenceColumn, File: fileALabel}
	}
	if !secondary.HasColumn(spec.ReferenceColumn) {
		return &MissingColumnError{Column: spec.ReferenceColumn, File: fileBLabel}
	}
	if !secondary.HasColumn(spec.TargetColumn) {
		return &MissingColumnError{Column: spec.TargetColumn, File: fileBLabel}
	}
	if primary.HasColumn(spec.TargetColumn) {
		return &ColumnConflictError{Column: spec.TargetColumn}
	}
	return nil
}

// Deduplicate keeps the first row, in original order, for each distinct value
// of referenceColumn. Key comparison is type-sensitive, and rows with an
// empty reference cell count as one distinct key deduplicated like any other.
// Deduplicating an already-deduplicated table is a no-op.
func Deduplicate(t *Table, referenceColumn string) *Table {
	idx := t.ColumnIndex(referenceColumn)
	if idx < 0 {
		return &Table{Columns: t.Columns, Rows: t.Rows}
	}

	seen := make(map[any]bool, len(t.Rows))
	rows := make([][]any, 0, len(t.Rows))
	for _, row := range t.Rows {
		key := row[idx]
		if seen[key] {
			continue
		}
		seen[key] = true
		rows = append(rows, row)
	}

	return &Table{Columns: t.Columns, Rows: rows}
}

// LeftJoin copies spec.TargetColumn from deduped into every row of primary
// that has a matching reference value, and leaves the new field empty
// otherwise. Every primary row appears exactly once in the result, in its
// original position. Matching is exact-value equality on the inferred cell
// types: the number 5 and the text "5" do not match.
func LeftJoin(primary, deduped *Table, spec types.JoinSpec) (*Table, error) {
	refA := primary.ColumnIndex(spec.ReferenceColumn)
	if refA < 0 {
		return nil, &MissingColumnError{Column: spec.ReferenceColumn, File: fileALabel}
	}
	refB := deduped.ColumnIndex(spec.ReferenceColumn)
	if refB < 0 {
		return nil, &MissingColumnError{Column: spec.ReferenceColumn, File: fileBLabel}
	}
	target := deduped.ColumnIndex(spec.TargetColumn)
	if target < 0 {
		return nil, &MissingColumnError{Column: spec.TargetColumn, File: fileBLabel}
	}

	index := make(map[any]any, len(deduped.Rows))
	for _, row := range deduped.Rows {
		if _, ok := index[row[refB]]; !ok {
			index[row[refB]] = row[target]
		}
	}

	columns := make([]string, 0, len(primary.Columns)+1)
	columns = append(columns, primary.Columns...)
	columns = append(columns, spec.TargetColumn)

	rows := make([][]any, len(primary.Rows))
	for i, row := range primary.Rows {
		newRow := make([]any, 0, len(columns))
		newRow = append(newRow, row...)
		newRow = append(newRow, index[row[refA]])
		rows[i] = newRow
	}

	return &Table{Columns: columns, Rows: rows}, nil
}

// ComputeStats counts matched and unmatched rows by whether the target field
// is present. A row that matched on the key but carried an empty target value
// counts as unmatched, same as the reference behavior.
func ComputeStats(merged *Table, targetColumn string) types.MergeStats {
	stats := types.MergeStats{TotalRows: merged.NumRows()}

	idx := merged.ColumnIndex(targetColumn)
	if idx < 0 {
		stats.UnmatchedRows = stats.TotalRows
		return stats
	}

	for _, row := range merged.Rows {
		if row[idx] != nil {
			stats.MatchedRows++
		} else {
			stats.UnmatchedRows++
		}
	}
	return stats
}

// UnmatchedRows returns the subset of merged rows whose target field is
// empty, with the target column itself dropped so the result has File A's
// columns only.
func UnmatchedRows(merged *Table, targetColumn string) *Table {
	idx := merged.ColumnIndex(targetColumn)
	if idx < 0 {
		return &Table{Columns: merged.Columns, Rows: merged.Rows}
	}

	columns := make([]string, 0, len(merged.Columns)-1)
	for i, c := range merged.Columns {
		if i != idx {
			columns = append(columns, c)
		}
	}

	var rows [][]any
	for _, row := range merged.Rows {
		if row[idx] != nil {
			continue
		}
		newRow := make([]any, 0, len(columns))
		for i, v := range row {
			if i != idx {
				newRow = append(newRow, v)
			}
		}
		rows = append(rows, newRow)
	}

	return &Table{Columns: columns, Rows: rows}
}

// Run executes the whole pipeline on two raw workbooks: parse, validate,
// deduplicate, join, stats, serialize. It is a pure function of its inputs
// and produces nothing on failure. Coarse progress is reported on progressChan
// when non-nil; sends never block.
func Run(fileA, fileB []byte, spec types.JoinSpec, progressChan chan<- float64) (*Result, error) {
	report := func(p float64) {
		if progressChan != nil {
			select {
			case progressChan <- p:
			default:
			}
		}
	}

	primary, err := Parse(fileA)
	if err != nil {
		return nil, err
	}
	report(0.2)

	// File B is loaded with column projection: only the reference and
	// target columns survive the parse.
	secondary, err := ParseColumns(fileB, spec.ReferenceColumn, spec.TargetColumn)
	if err != nil {
		return nil, err
	}
	report(0.4)

	if err := Validate(primary, secondary, spec); err != nil {
		return nil, err
	}

	deduped := Deduplicate(secondary, spec.ReferenceColumn)
	report(0.6)

	merged, err := LeftJoin(primary, deduped, spec)
	if err != nil {
		return nil, err
	}
	report(0.8)

	out, err := Serialize(merged)
	if err != nil {
		return nil, err
	}
	report(1.0)

	return &Result{
		Merged:    merged,
		Unmatched: UnmatchedRows(merged, spec.TargetColumn),
		Stats:     ComputeStats(merged, spec.TargetColumn),
		FileA:     types.FileInfo{Rows: primary.NumRows(), Columns: primary.NumColumns()},
		FileB:     types.FileInfo{Rows: secondary.NumRows(), Columns: secondary.NumColumns()},
		Output:    out,
	}, nil
}

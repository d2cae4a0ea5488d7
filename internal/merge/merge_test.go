package merge

import (
	"errors"
	"reflect"
	"testing"

	"github.com/nverhaar/xlsxmerge/internal/types"
)

func specFor(ref, target string) types.JoinSpec {
	return types.JoinSpec{ReferenceColumn: ref, TargetColumn: target}
}

func primaryTable() *Table {
	return &Table{
		Columns: []string{"email", "name"},
		Rows: [][]any{
			{"a@x.com", "A"},
			{"b@x.com", "B"},
		},
	}
}

func secondaryTable() *Table {
	return &Table{
		Columns: []string{"email", "state"},
		Rows: [][]any{
			{"a@x.com", "CA"},
			{"a@x.com", "NY"},
			{"c@x.com", "TX"},
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		primary    *Table
		secondary  *Table
		spec       types.JoinSpec
		wantColumn string
		wantFile   string
	}{
		{
			name:      "All columns present",
			primary:   primaryTable(),
			secondary: secondaryTable(),
			spec:      specFor("email", "state"),
		},
		{
			name:       "Reference missing from File A checked first",
			primary:    &Table{Columns: []string{"name"}},
			secondary:  &Table{Columns: []string{"name"}},
			spec:       specFor("id", "state"),
			wantColumn: "id",
			wantFile:   "File A",
		},
		{
			name:       "Reference missing from File B checked second",
			primary:    primaryTable(),
			secondary:  &Table{Columns: []string{"state"}},
			spec:       specFor("email", "state"),
			wantColumn: "email",
			wantFile:   "File B",
		},
		{
			name:       "Target missing from File B checked last",
			primary:    primaryTable(),
			secondary:  &Table{Columns: []string{"email"}},
			spec:       specFor("email", "state"),
			wantColumn: "state",
			wantFile:   "File B",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.primary, tt.secondary, tt.spec)
			if tt.wantColumn == "" {
				if err != nil {
					t.Fatalf("Validate() = %v; want nil", err)
				}
				return
			}

			var missing *MissingColumnError
			if !errors.As(err, &missing) {
				t.Fatalf("Validate() = %v; want MissingColumnError", err)
			}
			if missing.Column != tt.wantColumn || missing.File != tt.wantFile {
				t.Errorf("got column %q in %s; want %q in %s",
					missing.Column, missing.File, tt.wantColumn, tt.wantFile)
			}
		})
	}
}

func TestValidateTargetConflict(t *testing.T) {
	primary := &Table{Columns: []string{"email", "state"}}
	err := Validate(primary, secondaryTable(), specFor("email", "state"))

	var conflict *ColumnConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("Validate() = %v; want ColumnConflictError", err)
	}
	if conflict.Column != "state" {
		t.Errorf("conflict column = %q; want %q", conflict.Column, "state")
	}
}

func TestDeduplicate(t *testing.T) {
	tests := []struct {
		name  string
		table *Table
		want  [][]any
	}{
		{
			name:  "Keeps first occurrence per key",
			table: secondaryTable(),
			want: [][]any{
				{"a@x.com", "CA"},
				{"c@x.com", "TX"},
			},
		},
		{
			name: "Missing keys dedupe as one distinct key",
			table: &Table{
				Columns: []string{"email", "state"},
				Rows: [][]any{
					{nil, "CA"},
					{nil, "NY"},
					{"a@x.com", "TX"},
				},
			},
			want: [][]any{
				{nil, "CA"},
				{"a@x.com", "TX"},
			},
		},
		{
			name: "Type-sensitive keys stay distinct",
			table: &Table{
				Columns: []string{"email", "state"},
				Rows: [][]any{
					{int64(5), "CA"},
					{"5", "NY"},
				},
			},
			want: [][]any{
				{int64(5), "CA"},
				{"5", "NY"},
			},
		},
		{
			name:  "No duplicates is a no-op",
			table: primaryTable(),
			want: [][]any{
				{"a@x.com", "A"},
				{"b@x.com", "B"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Deduplicate(tt.table, "email")
			if !reflect.DeepEqual(got.Rows, tt.want) {
				t.Errorf("Deduplicate() rows = %v; want %v", got.Rows, tt.want)
			}
		})
	}
}

func TestDeduplicateIdempotent(t *testing.T) {
	once := Deduplicate(secondaryTable(), "email")
	twice := Deduplicate(once, "email")
	if !reflect.DeepEqual(once.Rows, twice.Rows) {
		t.Errorf("dedup(dedup(S)) = %v; want %v", twice.Rows, once.Rows)
	}
}

func TestLeftJoinScenario(t *testing.T) {
	spec := specFor("email", "state")
	deduped := Deduplicate(secondaryTable(), spec.ReferenceColumn)

	merged, err := LeftJoin(primaryTable(), deduped, spec)
	if err != nil {
		t.Fatalf("LeftJoin() error = %v", err)
	}

	wantColumns := []string{"email", "name", "state"}
	if !reflect.DeepEqual(merged.Columns, wantColumns) {
		t.Errorf("columns = %v; want %v", merged.Columns, wantColumns)
	}

	wantRows := [][]any{
		{"a@x.com", "A", "CA"},
		{"b@x.com", "B", nil},
	}
	if !reflect.DeepEqual(merged.Rows, wantRows) {
		t.Errorf("rows = %v; want %v", merged.Rows, wantRows)
	}

	stats := ComputeStats(merged, spec.TargetColumn)
	want := types.MergeStats{TotalRows: 2, MatchedRows: 1, UnmatchedRows: 1}
	if stats != want {
		t.Errorf("stats = %+v; want %+v", stats, want)
	}
}

func TestLeftJoinPreservesCardinality(t *testing.T) {
	tests := []struct {
		name    string
		primary *Table
	}{
		{"Two rows", primaryTable()},
		{
			"Duplicate keys in primary are kept",
			&Table{
				Columns: []string{"email", "name"},
				Rows: [][]any{
					{"a@x.com", "A"},
					{"a@x.com", "A2"},
					{"b@x.com", "B"},
				},
			},
		},
		{
			"Empty primary",
			&Table{Columns: []string{"email", "name"}},
		},
	}

	spec := specFor("email", "state")
	deduped := Deduplicate(secondaryTable(), spec.ReferenceColumn)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merged, err := LeftJoin(tt.primary, deduped, spec)
			if err != nil {
				t.Fatalf("LeftJoin() error = %v", err)
			}
			if merged.NumRows() != tt.primary.NumRows() {
				t.Errorf("row count = %d; want %d", merged.NumRows(), tt.primary.NumRows())
			}

			stats := ComputeStats(merged, spec.TargetColumn)
			if stats.MatchedRows+stats.UnmatchedRows != stats.TotalRows {
				t.Errorf("matched %d + unmatched %d != total %d",
					stats.MatchedRows, stats.UnmatchedRows, stats.TotalRows)
			}
			if stats.TotalRows != tt.primary.NumRows() {
				t.Errorf("total = %d; want primary row count %d", stats.TotalRows, tt.primary.NumRows())
			}
		})
	}
}

func TestLeftJoinTypeSensitiveKeys(t *testing.T) {
	primary := &Table{
		Columns: []string{"id", "name"},
		Rows:    [][]any{{int64(5), "A"}},
	}
	secondary := &Table{
		Columns: []string{"id", "state"},
		Rows:    [][]any{{"5", "CA"}},
	}

	merged, err := LeftJoin(primary, secondary, specFor("id", "state"))
	if err != nil {
		t.Fatalf("LeftJoin() error = %v", err)
	}

	// The number 5 and the text "5" must not match
	if merged.Rows[0][2] != nil {
		t.Errorf("got match %v; want no match", merged.Rows[0][2])
	}
}

func TestEmptyPrimary(t *testing.T) {
	primary := &Table{Columns: []string{"email", "name"}}
	spec := specFor("email", "state")

	if err := Validate(primary, secondaryTable(), spec); err != nil {
		t.Fatalf("Validate() = %v; want nil", err)
	}

	merged, err := LeftJoin(primary, Deduplicate(secondaryTable(), spec.ReferenceColumn), spec)
	if err != nil {
		t.Fatalf("LeftJoin() error = %v", err)
	}
	if merged.NumRows() != 0 {
		t.Errorf("row count = %d; want 0", merged.NumRows())
	}

	stats := ComputeStats(merged, spec.TargetColumn)
	if stats != (types.MergeStats{}) {
		t.Errorf("stats = %+v; want all zero", stats)
	}
}

func TestComputeStatsEmptyTargetValue(t *testing.T) {
	// A row that matched on the key but carries an empty target value counts
	// as unmatched
	merged := &Table{
		Columns: []string{"email", "name", "state"},
		Rows: [][]any{
			{"a@x.com", "A", "CA"},
			{"b@x.com", "B", nil},
			{"c@x.com", "C", nil},
		},
	}

	stats := ComputeStats(merged, "state")
	want := types.MergeStats{TotalRows: 3, MatchedRows: 1, UnmatchedRows: 2}
	if stats != want {
		t.Errorf("stats = %+v; want %+v", stats, want)
	}
}

func TestUnmatchedRows(t *testing.T) {
	merged := &Table{
		Columns: []string{"email", "name", "state"},
		Rows: [][]any{
			{"a@x.com", "A", "CA"},
			{"b@x.com", "B", nil},
		},
	}

	unmatched := UnmatchedRows(merged, "state")

	wantColumns := []string{"email", "name"}
	if !reflect.DeepEqual(unmatched.Columns, wantColumns) {
		t.Errorf("columns = %v; want %v", unmatched.Columns, wantColumns)
	}

	wantRows := [][]any{{"b@x.com", "B"}}
	if !reflect.DeepEqual(unmatched.Rows, wantRows) {
		t.Errorf("rows = %v; want %v", unmatched.Rows, wantRows)
	}
}

func TestProject(t *testing.T) {
	table := &Table{
		Columns: []string{"email", "name", "state"},
		Rows: [][]any{
			{"a@x.com", "A", "CA"},
		},
	}

	got := table.Project("state", "email", "missing")

	// Projection keeps the table's own column order and skips absent names
	wantColumns := []string{"email", "state"}
	if !reflect.DeepEqual(got.Columns, wantColumns) {
		t.Errorf("columns = %v; want %v", got.Columns, wantColumns)
	}
	wantRows := [][]any{{"a@x.com", "CA"}}
	if !reflect.DeepEqual(got.Rows, wantRows) {
		t.Errorf("rows = %v; want %v", got.Rows, wantRows)
	}
}

package merge

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Parse reads the first sheet of a workbook into a Table. The first row is
// the header row; every data row is padded or truncated to the header width.
func Parse(b []byte) (*Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(b))
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, &ParseError{Err: errors.New("workbook has no sheets")}
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	if len(rows) == 0 {
		return nil, &ParseError{Err: errors.New("first sheet is empty")}
	}

	columns := mangleHeaders(rows[0])

	data := make([][]any, 0, len(rows)-1)
	for _, raw := range rows[1:] {
		row := make([]any, len(columns))
		for i := range columns {
			if i < len(raw) {
				row[i] = parseCell(raw[i])
			}
		}
		data = append(data, row)
	}

	return &Table{Columns: columns, Rows: data}, nil
}

// ParseColumns parses like Parse, then drops every column not in cols.
// Requested columns that the sheet lacks are simply absent from the result;
// Validate reports them with its fixed check order.
func ParseColumns(b []byte, cols ...string) (*Table, error) {
	t, err := Parse(b)
	if err != nil {
		return nil, err
	}
	return t.Project(cols...), nil
}

// parseCell infers a scalar value from the rendered cell text. Integers
// become int64, decimals float64, TRUE/FALSE become bool, empty cells nil,
// and everything else (including formatted dates) stays a string. The two
// input files go through the same inference, so a key formatted as text in
// one file and as a number in the other will not match during the join.
func parseCell(s string) any {
	if s == "" {
		return nil
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	switch s {
	case "TRUE":
		return true
	case "FALSE":
		return false
	}
	return s
}

// mangleHeaders makes header names unique and non-empty: a blank header in
// column i becomes "Unnamed: i", and a repeated name gets a ".1", ".2", ...
// suffix in encounter order.
func mangleHeaders(header []string) []string {
	columns := make([]string, len(header))
	seen := make(map[string]int, len(header))

	for i, raw := range header {
		name := strings.TrimSpace(raw)
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		if next, dup := seen[name]; dup {
			base := name
			for {
				name = fmt.Sprintf("%s.%d", base, next)
				next++
				if _, taken := seen[name]; !taken {
					break
				}
			}
			seen[base] = next
		}
		seen[name] = 1
		columns[i] = name
	}

	return columns
}

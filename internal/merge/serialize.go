package merge

import (
	"github.com/xuri/excelize/v2"
)

// SheetName is the sheet the merged table is written to.
const SheetName = "Merged_Data"

// OutputFileName is the suggested name for the downloaded workbook.
const OutputFileName = "Games_State.xlsx"

// Serialize writes t as a single-sheet workbook: header row first, then data
// rows in table order, no index column.
func Serialize(t *Table) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, &SerializationError{Err: err}
	}

	header := make([]any, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return nil, &SerializationError{Err: err}
	}

	for i, row := range t.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, &SerializationError{Err: err}
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return nil, &SerializationError{Err: err}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, &SerializationError{Err: err}
	}
	return buf.Bytes(), nil
}

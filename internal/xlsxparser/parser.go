// =============================================================================
// Bill Transformer - XLSX Decoder
// =============================================================================
//
// This module decodes spreadsheet bill exports into the same two-dimensional
// string table the CSV decoder produces, so the rest of the pipeline does not
// care which container the bill came in.
//
// DECODING RULES:
//   - Only the first sheet is read unless a sheet name is given
//   - Cells are returned as displayed (formatted values)
//   - Every row is padded with empty cells to the width of the widest row
//   - Empty rows between data rows are kept, so row offsets match the sheet
//
// LIMITATIONS:
//   Only Office Open XML workbooks are supported. Legacy BIFF .xls files fail
//   to open; some banks name OOXML files .xls, and those decode normally.
//
// =============================================================================

package xlsxparser

import (
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ErrNoSheets is returned for a workbook without any worksheet.
var ErrNoSheets = errors.New("workbook has no sheets")

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads the first sheet of a workbook from r.
func Parse(r io.Reader) ([][]string, error) {
	return ParseSheet(r, "")
}

// ParseSheet reads the named sheet of a workbook from r. An empty name
// selects the first sheet.
func ParseSheet(r io.Reader, sheetName string) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return readSheet(f, sheetName)
}

// readSheet returns the padded rows of a sheet.
func readSheet(f *excelize.File, sheetName string) ([][]string, error) {
	if sheetName == "" {
		sheetName = f.GetSheetName(0)
	}
	if sheetName == "" {
		return nil, ErrNoSheets
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows of sheet %q: %w", sheetName, err)
	}

	return padRows(rows), nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// padRows extends every row with empty cells to the widest row's length.
// excelize drops trailing empty cells, which would otherwise make rows with
// an empty last column look too short for the column map.
func padRows(rows [][]string) [][]string {
	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}

	for i, row := range rows {
		if len(row) < width {
			padded := make([]string, width)
			copy(padded, row)
			rows[i] = padded
		}
	}

	return rows
}

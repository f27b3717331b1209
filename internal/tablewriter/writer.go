// =============================================================================
// Bill Transformer - Table Writer Module
// =============================================================================
//
// This module serializes a titled output table. Two encodings are supported:
//
//   | Format | Content                                              |
//   |--------|------------------------------------------------------|
//   | csv    | UTF-8 with byte order mark, CRLF line endings        |
//   | xlsx   | Single-sheet workbook, every cell written as text    |
//
// The byte order mark makes spreadsheet applications on Windows detect UTF-8;
// without it the Chinese labels are shown as mojibake.
//
// CUSTOMIZATION:
//   - Change the sheet name via Options.SheetName
//   - Disable the byte order mark or CRLF endings via Options
//
// =============================================================================

package tablewriter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/bill-transformer/internal/types"
)

// utf8BOM is written before CSV output.
const utf8BOM = "\ufeff"

// Output formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// ErrUnknownOutputFormat is returned for an output format other than csv or
// xlsx.
var ErrUnknownOutputFormat = errors.New("unknown output format")

// =============================================================================
// WRITE OPTIONS
// =============================================================================

// Options controls serialization details.
type Options struct {
	// BOM writes a UTF-8 byte order mark before CSV output.
	// Default: true
	BOM bool

	// CRLF terminates CSV lines with \r\n instead of \n.
	// Default: true
	CRLF bool

	// SheetName is the worksheet name of XLSX output.
	// Default: "账单"
	SheetName string
}

// DefaultOptions returns the default write options.
func DefaultOptions() Options {
	return Options{
		BOM:       true,
		CRLF:      true,
		SheetName: "账单",
	}
}

// ParseOutputFormat normalizes an output format name.
func ParseOutputFormat(name string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownOutputFormat, name)
	}
}

// Extension returns the file extension, including the dot, of a format.
func Extension(format string) string {
	if format == FormatXLSX {
		return ".xlsx"
	}
	return ".csv"
}

// =============================================================================
// WRITE FUNCTIONS
// =============================================================================

// Write serializes table in the given output format with default options.
func Write(w io.Writer, table []types.OutputRow, format string) error {
	return WriteWithOptions(w, table, format, DefaultOptions())
}

// WriteWithOptions serializes table in the given output format.
//
// PARAMETERS:
//   - w: The destination.
//   - table: The titled output table.
//   - format: "csv" or "xlsx".
//   - options: Serialization options.
//
// RETURNS:
//   - An error if the format is unknown or writing fails.
func WriteWithOptions(w io.Writer, table []types.OutputRow, format string, options Options) error {
	format, err := ParseOutputFormat(format)
	if err != nil {
		return err
	}

	if format == FormatXLSX {
		return writeXLSX(w, table, options)
	}
	return writeCSV(w, table, options)
}

// WriteCSV writes table as CSV with a byte order mark and CRLF endings.
func WriteCSV(w io.Writer, table []types.OutputRow) error {
	return writeCSV(w, table, DefaultOptions())
}

// WriteXLSX writes table into a single-sheet workbook.
func WriteXLSX(w io.Writer, table []types.OutputRow) error {
	return writeXLSX(w, table, DefaultOptions())
}

// WriteFile writes table to filePath in the given format.
func WriteFile(filePath string, table []types.OutputRow, format string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	if err := Write(file, table, format); err != nil {
		file.Close()
		return err
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}
	return nil
}

// writeCSV writes the CSV encoding.
func writeCSV(w io.Writer, table []types.OutputRow, options Options) error {
	if options.BOM {
		if _, err := io.WriteString(w, utf8BOM); err != nil {
			return fmt.Errorf("failed to write byte order mark: %w", err)
		}
	}

	csvWriter := csv.NewWriter(w)
	csvWriter.UseCRLF = options.CRLF

	for _, row := range table {
		if err := csvWriter.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}

// writeXLSX writes the workbook encoding.
func writeXLSX(w io.Writer, table []types.OutputRow, options Options) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if options.SheetName != "" && options.SheetName != sheet {
		if err := f.SetSheetName(sheet, options.SheetName); err != nil {
			return fmt.Errorf("failed to name sheet: %w", err)
		}
		sheet = options.SheetName
	}

	for i, row := range table {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}

		// Cells are written as strings so amounts keep their source text.
		values := make([]any, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

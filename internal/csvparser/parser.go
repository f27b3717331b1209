// =============================================================================
// Bill Transformer - CSV Decoder
// =============================================================================
//
// This module decodes CSV bill exports into a two-dimensional string table.
// It handles the two shapes the supported exports come in:
//   - Regular CSV (WeChat): UTF-8, comma separated, optional BOM
//   - Line mode (Alipay): GBK encoded, every line read as a single cell and
//     split later by the format pre-normalizer
//
// FEATURES:
//   - Character set conversion (UTF-8, GBK, GB18030)
//   - UTF-8 byte order mark removal
//   - Variable number of fields per row
//   - Lazy quotes (exports are not always RFC 4180 clean)
//   - Optional removal of empty lines
//
// NOTE:
//   encoding/csv never returns completely empty lines. Bill exports separate
//   their metadata blocks with comma-only lines (",,,,"), which are kept, so
//   row offsets stay stable.
//
// =============================================================================

package csvparser

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/ginjaninja78/bill-transformer/internal/formats"
)

// ErrUnknownEncoding is returned for a character set the decoder does not
// support.
var ErrUnknownEncoding = errors.New("unknown encoding")

// maxLineLength bounds a single line in line mode.
const maxLineLength = 1 << 20

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse decodes CSV data from r.
//
// PARSING PROCESS:
//   1. Wrap the reader with the configured character set decoder
//   2. Drop a leading UTF-8 byte order mark
//   3. Read records (or whole lines in line mode)
//   4. Drop empty lines if requested
func Parse(r io.Reader, settings formats.DecodeSettings) ([][]string, error) {
	reader, err := decodingReader(r, settings.Encoding)
	if err != nil {
		return nil, err
	}

	if settings.LineMode {
		return readLines(reader, settings.SkipEmptyLines)
	}
	return readRecords(reader, settings.SkipEmptyLines)
}

// decodingReader returns a UTF-8 reader over r.
//
// CUSTOMIZATION:
//   Add further character sets here. Alipay has shipped both GBK and GB18030
//   files over the years; GB18030 is a superset of GBK, so both names map to
//   a decoder that accepts either.
func decodingReader(r io.Reader, charset string) (*bufio.Reader, error) {
	var enc encoding.Encoding

	switch strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(charset), "-", "")) {
	case "", "UTF8":
		enc = unicode.UTF8BOM
	case "GBK", "GB2312", "CP936":
		enc = simplifiedchinese.GBK
	case "GB18030":
		enc = simplifiedchinese.GB18030
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownEncoding, charset)
	}

	return bufio.NewReader(transform.NewReader(r, enc.NewDecoder())), nil
}

// readRecords reads the input as CSV records.
func readRecords(r io.Reader, skipEmpty bool) ([][]string, error) {
	csvReader := csv.NewReader(r)
	configureReader(csvReader)

	allRows, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	if !skipEmpty {
		return allRows, nil
	}

	rows := allRows[:0]
	for _, row := range allRows {
		if !isRowEmpty(row) {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// readLines returns every line as a single-cell row.
func readLines(r io.Reader, skipEmpty bool) ([][]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)

	var rows [][]string
	for scanner.Scan() {
		line := string(bytes.TrimRight(scanner.Bytes(), "\r"))
		if skipEmpty && strings.TrimSpace(line) == "" {
			continue
		}
		rows = append(rows, []string{line})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read lines: %w", err)
	}
	return rows, nil
}

// configureReader configures the CSV reader for bill exports.
func configureReader(reader *csv.Reader) {
	reader.Comma = ','

	// Metadata rows are narrower than transaction rows.
	reader.FieldsPerRecord = -1

	// Exports occasionally contain bare quotes inside fields.
	reader.LazyQuotes = true
}

// isRowEmpty checks if a row contains only empty values.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

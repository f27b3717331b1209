package formats

import (
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/ginjaninja78/bill-transformer/internal/types"
)

// alipayHeaderCell is the first cell of the column header row in Alipay
// exports. Everything above it is account metadata.
const alipayHeaderCell = "交易时间"

// Prenormalize reshapes a decoded table into one transaction per row, with
// column positions matching the format's SourceFormatConfig.
func Prenormalize(format types.Format, table [][]string) ([]types.RawRow, error) {
	switch format {
	case types.FormatWechat:
		return identity(table), nil
	case types.FormatAlipay:
		return alipay(table)
	default:
		return nil, fmt.Errorf("%w: %q", types.ErrUnknownFormat, string(format))
	}
}

func identity(table [][]string) []types.RawRow {
	rows := make([]types.RawRow, len(table))
	for i, row := range table {
		rows[i] = types.RawRow(row)
	}
	return rows
}

// alipay splits line-mode cells into fields, trims the padding Alipay puts
// around every value and drops the metadata block above the header row.
func alipay(table [][]string) ([]types.RawRow, error) {
	rows := make([]types.RawRow, 0, len(table))
	header := -1

	for i, row := range table {
		cells := row
		if len(row) == 1 {
			split, err := splitLine(row[0])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", i+1, err)
			}
			cells = split
		}

		trimmed := make(types.RawRow, len(cells))
		blank := true
		for j, cell := range cells {
			trimmed[j] = strings.TrimSpace(cell)
			if trimmed[j] != "" {
				blank = false
			}
		}
		if blank {
			continue
		}

		if header < 0 && trimmed[0] == alipayHeaderCell {
			header = len(rows)
		}
		rows = append(rows, trimmed)
	}

	if header > 0 {
		rows = rows[header:]
	}
	return rows, nil
}

// splitLine parses one line as a CSV record so quoted commas survive.
func splitLine(line string) ([]string, error) {
	if strings.TrimSpace(line) == "" {
		return []string{line}, nil
	}

	r := csv.NewReader(strings.NewReader(line))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	record, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("split line: %w", err)
	}
	return record, nil
}

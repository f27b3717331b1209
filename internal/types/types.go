// =============================================================================
// Bill Transformer - Shared Types
// =============================================================================
//
// This package contains shared types used across multiple modules to avoid
// import cycles. Types defined here are used by:
//   - formats     (registry and pre-normalizers)
//   - converter   (row transformer and file converter)
//   - classifier  (category triples)
//   - tablewriter (output rows)
//
// =============================================================================

package types

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// SOURCE FORMATS
// =============================================================================

// Format identifies one of the supported bill export layouts.
// The set is closed: every Format value has a registered config and
// pre-normalizer.
type Format string

const (
	// FormatWechat is the WeChat Pay bill export.
	FormatWechat Format = "wechat"

	// FormatAlipay is the Alipay bill export.
	FormatAlipay Format = "alipay"
)

// Formats lists every supported format in display order.
func Formats() []Format {
	return []Format{FormatWechat, FormatAlipay}
}

// ErrUnknownFormat is returned when a format tag is not one of Formats().
var ErrUnknownFormat = errors.New("unknown source format")

// ParseFormat converts a user supplied tag into a Format.
// Matching is case-insensitive and ignores surrounding whitespace.
func ParseFormat(tag string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(tag))) {
	case FormatWechat:
		return FormatWechat, nil
	case FormatAlipay:
		return FormatAlipay, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, tag)
	}
}

// String implements fmt.Stringer.
func (f Format) String() string {
	return string(f)
}

// =============================================================================
// FORMAT CONFIGURATION
// =============================================================================

// SourceFormatConfig maps the columns of a pre-normalized row.
// All indices are 0-based positions into a RawRow.
type SourceFormatConfig struct {
	// StartIndex is the number of leading rows (headers, metadata) to skip.
	StartIndex int `yaml:"start_index"`

	// TimeIndex is the column holding the transaction timestamp.
	TimeIndex int `yaml:"time_index"`

	// ValueIndex is the column holding the amount.
	ValueIndex int `yaml:"value_index"`

	// TypeIndex is the column holding income/expense direction.
	// It is not used by the transformer.
	TypeIndex int `yaml:"type_index"`

	// NameIndex is the column holding the merchant or item name.
	NameIndex int `yaml:"name_index"`
}

// =============================================================================
// ROWS
// =============================================================================

// RawRow is one decoded source row. Positions only mean something relative
// to a SourceFormatConfig.
type RawRow []string

// OutputRow is one row of the normalized table.
type OutputRow []string

// PlaceholderColumns is the number of empty cells reserved for spreadsheet
// formulas between the amount and member columns.
const PlaceholderColumns = 3

// Output column positions. Columns 3-5 are the formula placeholders.
const (
	ColName           = 0
	ColTime           = 1
	ColAmount         = 2
	ColMember         = 6
	ColPayer          = 7
	ColCategoryBroad  = 8
	ColCategoryMedium = 9
	ColCategoryFine   = 10

	// OutputWidth is the number of cells in every OutputRow.
	OutputWidth = 11
)

// CategoryTriple holds the broad, medium and fine-grained category labels.
type CategoryTriple [3]string

// TitleRow returns the header row prepended to every produced table.
func TitleRow() OutputRow {
	row := make(OutputRow, OutputWidth)
	row[ColName] = "名称"
	row[ColTime] = "时间"
	row[ColAmount] = "金额"
	row[ColMember] = "成员"
	row[ColPayer] = "收付款人"
	row[ColCategoryBroad] = "大类"
	row[ColCategoryMedium] = "小类"
	row[ColCategoryFine] = "细分类"
	return row
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrRowShape marks a row that is too short for the configured column map.
// It usually means the wrong format tag was selected for the file.
var ErrRowShape = errors.New("row shape does not match format")

// RowShapeError describes the first row that could not be mapped.
type RowShapeError struct {
	// Row is the 0-based index of the row in the pre-normalized table.
	Row int

	// Index is the column that was requested.
	Index int

	// Width is the number of cells the row actually had.
	Width int
}

// Error implements the error interface.
func (e *RowShapeError) Error() string {
	return fmt.Sprintf("row %d has %d cells, column %d required", e.Row, e.Width, e.Index)
}

// Unwrap lets errors.Is match ErrRowShape.
func (e *RowShapeError) Unwrap() error {
	return ErrRowShape
}

// =============================================================================
// Bill Transformer - Validation Engine
// =============================================================================
//
// This module checks the inputs of a conversion before and after it runs:
//   - Configuration: default member, output format, log level, column maps
//   - Keyword tables: label triples, unreachable keywords
//   - Output tables: amounts and timestamps a spreadsheet can read
//
// ERROR HANDLING:
//   - Problems are collected, not returned one by one
//   - Each problem has a severity: "error" stops processing, "warning" is
//     reported and processing continues
//   - Strict mode treats warnings as errors (billx validate --strict)
//
// =============================================================================

package validation

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/ginjaninja78/bill-transformer/internal/classifier"
	"github.com/ginjaninja78/bill-transformer/internal/config"
	"github.com/ginjaninja78/bill-transformer/internal/logger"
	"github.com/ginjaninja78/bill-transformer/internal/report"
	"github.com/ginjaninja78/bill-transformer/internal/tablewriter"
	"github.com/ginjaninja78/bill-transformer/internal/types"
)

// Severity levels.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// ValidationError represents a single validation problem.
type ValidationError struct {
	// Severity is SeverityError or SeverityWarning.
	Severity string

	// Field names the setting, keyword or output column.
	Field string

	// Value is the offending value.
	Value string

	// Rule is the short name of the violated rule.
	Rule string

	// Message is a human-readable description.
	Message string

	// Row is the 1-based output table row, or 0 for configuration problems.
	Row int
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	location := e.Field
	if e.Row > 0 {
		location = fmt.Sprintf("row %d, %s", e.Row, e.Field)
	}
	return fmt.Sprintf("[%s] %s: %s (value: '%s')",
		strings.ToUpper(e.Severity),
		location,
		e.Message,
		e.Value,
	)
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// ValidationResult contains the results of validation.
type ValidationResult struct {
	// IsValid is true if there are no fatal errors.
	IsValid bool

	// Errors contains all problems (including warnings).
	Errors []*ValidationError

	// ErrorCount is the number of fatal errors.
	ErrorCount int

	// WarningCount is the number of warnings.
	WarningCount int
}

func newResult() *ValidationResult {
	return &ValidationResult{IsValid: true}
}

func (r *ValidationResult) add(e *ValidationError) {
	r.Errors = append(r.Errors, e)
	if e.Severity == SeverityError {
		r.ErrorCount++
		r.IsValid = false
	} else {
		r.WarningCount++
	}
}

func (r *ValidationResult) errorf(field, value, rule, format string, args ...any) {
	r.add(&ValidationError{Severity: SeverityError, Field: field, Value: value, Rule: rule, Message: fmt.Sprintf(format, args...)})
}

func (r *ValidationResult) warnf(field, value, rule, format string, args ...any) {
	r.add(&ValidationError{Severity: SeverityWarning, Field: field, Value: value, Rule: rule, Message: fmt.Sprintf(format, args...)})
}

// Merge appends the problems of other to r.
func (r *ValidationResult) Merge(other *ValidationResult) {
	if other == nil {
		return
	}
	for _, e := range other.Errors {
		r.add(e)
	}
}

// Strict reports whether r has no problems at all.
func (r *ValidationResult) Strict() bool {
	return r.ErrorCount == 0 && r.WarningCount == 0
}

// =============================================================================
// CONFIGURATION VALIDATION
// =============================================================================

// ValidateConfig checks the main configuration.
func ValidateConfig(cfg *config.MainConfig) *ValidationResult {
	result := newResult()

	if strings.TrimSpace(cfg.DefaultMember) == "" {
		result.errorf("default_member", cfg.DefaultMember, "required", "a default member is required")
	} else if len(cfg.Members) > 0 && !slices.Contains(cfg.Members, cfg.DefaultMember) {
		result.warnf("default_member", cfg.DefaultMember, "member", "default member is not listed in members")
	}

	if _, err := tablewriter.ParseOutputFormat(cfg.OutputFormat); err != nil {
		result.errorf("output_format", cfg.OutputFormat, "enum", "output format must be csv or xlsx")
	}

	if _, err := logger.ParseLevel(cfg.LogLevel); err != nil {
		result.errorf("log_level", cfg.LogLevel, "enum", "log level must be debug, info, warn or error")
	}

	if cfg.MaxConcurrency < 1 {
		result.errorf("max_concurrency", fmt.Sprint(cfg.MaxConcurrency), "range", "at least one worker is required")
	}

	for tag, formatCfg := range cfg.Formats {
		if _, err := types.ParseFormat(tag); err != nil {
			result.errorf("formats."+tag, tag, "format", "unknown source format")
			continue
		}
		result.Merge(ValidateFormatConfig("formats."+tag, formatCfg))
	}

	return result
}

// ValidateFormatConfig checks a column map.
func ValidateFormatConfig(field string, cfg types.SourceFormatConfig) *ValidationResult {
	result := newResult()

	indices := []struct {
		name  string
		value int
	}{
		{"start_index", cfg.StartIndex},
		{"time_index", cfg.TimeIndex},
		{"value_index", cfg.ValueIndex},
		{"type_index", cfg.TypeIndex},
		{"name_index", cfg.NameIndex},
	}
	for _, idx := range indices {
		if idx.value < 0 {
			result.errorf(field+"."+idx.name, fmt.Sprint(idx.value), "range", "column index must not be negative")
		}
	}

	if cfg.NameIndex == cfg.TimeIndex || cfg.NameIndex == cfg.ValueIndex || cfg.TimeIndex == cfg.ValueIndex {
		result.warnf(field, fmt.Sprintf("%+v", cfg), "overlap", "name, time and value read the same column")
	}

	return result
}

// =============================================================================
// KEYWORD TABLE VALIDATION
// =============================================================================

// KeywordTable builds the classifier table from a keyword file. A nil file
// yields the built-in table. Entries with errors are left out of the table.
func KeywordTable(file *config.KeywordFile) (classifier.KeywordTable, *ValidationResult) {
	result := newResult()

	if file == nil {
		return classifier.DefaultKeywords(), result
	}

	table := classifier.KeywordTable{}
	if file.MergeDefaults {
		for k, v := range classifier.DefaultKeywords() {
			table[k] = v
		}
	}

	if len(file.Keywords) == 0 && !file.MergeDefaults {
		result.errorf("keywords", "", "required", "the keyword table is empty")
	}

	for keyword, labels := range file.Keywords {
		field := "keywords." + keyword

		if strings.TrimSpace(keyword) == "" {
			result.errorf("keywords", keyword, "required", "keyword must not be empty")
			continue
		}
		if len(labels) != len(types.CategoryTriple{}) {
			result.errorf(field, strings.Join(labels, "/"), "triple", "expected 3 labels (broad, medium, fine), got %d", len(labels))
			continue
		}

		if keyword != strings.TrimSpace(keyword) {
			result.warnf(field, keyword, "whitespace", "keyword has surrounding whitespace and only matches names containing it")
		}
		if classifier.Sanitize(keyword) != keyword {
			result.warnf(field, keyword, "unreachable", "keyword contains bracketed text that is stripped from every name, so it never matches")
		}
		for i, label := range labels {
			if strings.TrimSpace(label) == "" {
				result.warnf(field, keyword, "label", "label %d is empty", i+1)
			}
		}

		table[keyword] = types.CategoryTriple{labels[0], labels[1], labels[2]}
	}

	return table, result
}

// =============================================================================
// OUTPUT TABLE VALIDATION
// =============================================================================

// timeLayouts are the timestamp layouts found in bill exports.
//
// CUSTOMIZATION:
//   Add additional layouts as needed.
var timeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/1/2 15:04:05",
	"2006/1/2 15:04",
	"2006-01-02",
	"2006/1/2",
}

// ValidateTable checks the data rows of a titled output table. Every
// problem is a warning: the table is still written.
func ValidateTable(table []types.OutputRow) *ValidationResult {
	result := newResult()

	for i, row := range table {
		if i == 0 {
			continue
		}
		rowNumber := i + 1

		if len(row) != types.OutputWidth {
			result.add(&ValidationError{
				Severity: SeverityError,
				Field:    "row",
				Value:    fmt.Sprint(len(row)),
				Rule:     "width",
				Message:  fmt.Sprintf("row has %d cells, expected %d", len(row), types.OutputWidth),
				Row:      rowNumber,
			})
			continue
		}

		if _, err := report.ParseAmount(row[types.ColAmount]); err != nil {
			result.add(&ValidationError{
				Severity: SeverityWarning,
				Field:    "金额",
				Value:    row[types.ColAmount],
				Rule:     "decimal",
				Message:  "amount is not a number",
				Row:      rowNumber,
			})
		}

		if !validTime(row[types.ColTime]) {
			result.add(&ValidationError{
				Severity: SeverityWarning,
				Field:    "时间",
				Value:    row[types.ColTime],
				Rule:     "date",
				Message:  "time is not a recognised timestamp",
				Row:      rowNumber,
			})
		}
	}

	return result
}

func validTime(value string) bool {
	value = strings.TrimSpace(value)
	for _, layout := range timeLayouts {
		if _, err := time.Parse(layout, value); err == nil {
			return true
		}
	}
	return false
}

// =============================================================================
// OUTPUT FUNCTIONS
// =============================================================================

// FormatErrors formats validation errors for display or logging.
func FormatErrors(errors []*ValidationError) string {
	if len(errors) == 0 {
		return "No validation errors."
	}

	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("Validation completed with %d problem(s):\n\n", len(errors)))

	for i, err := range errors {
		builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, err.Error()))
	}

	return builder.String()
}

// WriteErrorLog writes validation errors to a log file.
func WriteErrorLog(errors []*ValidationError, filePath string) error {
	if err := os.WriteFile(filePath, []byte(FormatErrors(errors)), 0644); err != nil {
		return fmt.Errorf("failed to write validation log: %w", err)
	}
	return nil
}

// =============================================================================
// Bill Transformer - Row Transformer
// =============================================================================
//
// This module turns pre-normalized source rows into output rows. It is the
// format-agnostic core of the pipeline: every format-specific quirk has been
// removed by the pre-normalizer before rows arrive here.
//
// TRANSFORMATION STEPS (per row, in order):
//   1. Skip rows before the format's start index (headers, metadata)
//   2. Skip separator rows and rows with a blank name cell
//   3. Strip 【...】 and (...) annotations from the name
//   4. Classify the name into a category triple
//   5. Attribute the row to a household member
//   6. Emit [name, time, amount, 3 placeholders, member, payer, categories]
//
// ERROR HANDLING:
//   A row that is too short for the column map aborts the whole call with a
//   *types.RowShapeError. Rows are never skipped because of their shape: a
//   short row almost always means the wrong format was selected, and a
//   partially converted file would hide that.
//
// =============================================================================

package converter

import (
	"strings"

	"github.com/ginjaninja78/bill-transformer/internal/classifier"
	"github.com/ginjaninja78/bill-transformer/internal/types"
)

// =============================================================================
// ROW TRANSFORMER
// =============================================================================

// RowTransformer converts source rows to output rows. It holds no per-call
// state and can be shared between goroutines.
type RowTransformer struct {
	classifier *classifier.Classifier
	attributor *classifier.Attributor
}

// NewRowTransformer creates a RowTransformer with the given classifier and
// member attributor.
func NewRowTransformer(c *classifier.Classifier, a *classifier.Attributor) *RowTransformer {
	return &RowTransformer{
		classifier: c,
		attributor: a,
	}
}

// =============================================================================
// TRANSFORMATION FUNCTIONS
// =============================================================================

// Transform converts rows using the column map in cfg.
//
// PARAMETERS:
//   - rows: Pre-normalized source rows.
//   - cfg: The column map of the source format.
//   - defaultMember: The member selected by the user. It fills the payer
//     column and is the member fallback when no override matches.
//
// RETURNS:
//   - The output rows, without a title row (see WithTitle).
//   - A *types.RowShapeError if any kept row is too short.
func (t *RowTransformer) Transform(rows []types.RawRow, cfg types.SourceFormatConfig, defaultMember string) ([]types.OutputRow, error) {
	out := make([]types.OutputRow, 0, max(len(rows)-cfg.StartIndex, 0))

	for index, row := range rows {
		if index < cfg.StartIndex {
			continue
		}

		// Blank separator lines are often decoded as a single empty cell,
		// so they are dropped before any column is looked up.
		if isRowBlank(row) {
			continue
		}

		rawName, err := cell(row, index, cfg.NameIndex)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(rawName) == "" {
			continue
		}

		timeValue, err := cell(row, index, cfg.TimeIndex)
		if err != nil {
			return nil, err
		}
		amount, err := cell(row, index, cfg.ValueIndex)
		if err != nil {
			return nil, err
		}

		out = append(out, t.TransformName(rawName, timeValue, amount, defaultMember))
	}

	return out, nil
}

// TransformName builds a single output row from already extracted cells.
func (t *RowTransformer) TransformName(rawName, timeValue, amount, defaultMember string) types.OutputRow {
	name := classifier.Sanitize(rawName)

	row := make(types.OutputRow, types.OutputWidth)
	row[types.ColName] = name
	row[types.ColTime] = timeValue
	row[types.ColAmount] = amount
	row[types.ColMember] = t.attributor.Attribute(name, defaultMember)
	row[types.ColPayer] = defaultMember

	if triple, ok := t.classifier.Classify(name); ok {
		row[types.ColCategoryBroad] = triple[0]
		row[types.ColCategoryMedium] = triple[1]
		row[types.ColCategoryFine] = triple[2]
	}

	return row
}

// WithTitle returns rows with the title row prepended.
func WithTitle(rows []types.OutputRow) []types.OutputRow {
	table := make([]types.OutputRow, 0, len(rows)+1)
	table = append(table, types.TitleRow())
	return append(table, rows...)
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// cell returns row[col] or a RowShapeError.
func cell(row types.RawRow, rowIndex, col int) (string, error) {
	if col < 0 || col >= len(row) {
		return "", &types.RowShapeError{Row: rowIndex, Index: col, Width: len(row)}
	}
	return row[col], nil
}

// isRowBlank reports whether every cell is empty or whitespace.
func isRowBlank(row types.RawRow) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

package converter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ginjaninja78/bill-transformer/internal/csvparser"
	"github.com/ginjaninja78/bill-transformer/internal/formats"
	"github.com/ginjaninja78/bill-transformer/internal/report"
	"github.com/ginjaninja78/bill-transformer/internal/types"
	"github.com/ginjaninja78/bill-transformer/internal/xlsxparser"
	"github.com/ginjaninja78/bill-transformer/pkg/utils"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrUnsupportedFile marks an input that is not .csv, .xlsx or .xls.
	ErrUnsupportedFile = errors.New("unsupported file type")

	// ErrDecode marks bytes that could not be decoded into a table.
	ErrDecode = errors.New("failed to decode file")

	// ErrProcessing marks a table the row transformer rejected.
	ErrProcessing = errors.New("failed to process rows")
)

// User-facing messages, shown by the CLI and returned by the HTTP server.
const (
	MessageUnsupportedFile = "请上传 CSV 或 XLSX 格式的文件"
	MessageDecode          = "CSV 文件解析失败"
	MessageProcessing      = "数据处理失败，请检查文件格式是否正确"
	MessageUnknownFormat   = "请选择账单类型：wechat 或 alipay"
)

// UserMessage maps a conversion error to the message shown to the user.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnsupportedFile):
		return MessageUnsupportedFile
	case errors.Is(err, types.ErrUnknownFormat):
		return MessageUnknownFormat
	case errors.Is(err, ErrDecode):
		return MessageDecode
	default:
		return MessageProcessing
	}
}

// =============================================================================
// PIPELINE
// =============================================================================

// Input is one bill export to convert.
type Input struct {
	// Name is the file name of the export. Its extension selects the decoder
	// and wechat outputs are named after it.
	Name string

	// Data is the raw file content.
	Data io.Reader

	// Format is the source format the user selected.
	Format types.Format

	// Member is the default member and payer.
	Member string

	// OutputExt is the extension of the output file name; empty means ".csv".
	OutputExt string
}

// Output is a converted export.
type Output struct {
	// FileName is the suggested output file name.
	FileName string

	// Table is the titled output table.
	Table []types.OutputRow

	// Summary holds the totals of Table.
	Summary report.Summary
}

// Pipeline converts in-memory exports. It is shared by the file converter
// and the HTTP server and is safe for concurrent use.
type Pipeline struct {
	registry    *formats.Registry
	transformer *RowTransformer
}

// NewPipeline creates a Pipeline. A nil registry serves the built-in
// column maps.
func NewPipeline(registry *formats.Registry, transformer *RowTransformer) *Pipeline {
	return &Pipeline{
		registry:    registry,
		transformer: transformer,
	}
}

// Convert runs decode, pre-normalization, transformation and naming.
//
// PIPELINE:
//   1. Check the file extension
//   2. Decode the bytes into a table (CSV or workbook)
//   3. Reshape the table for the source format
//   4. Transform the rows and prepend the title row
//   5. Name the output and compute totals
func (p *Pipeline) Convert(ctx context.Context, in Input) (*Output, error) {
	if !utils.IsSupportedInput(in.Name) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, in.Name)
	}

	cfg, err := p.registry.Config(in.Format)
	if err != nil {
		return nil, err
	}

	table, err := decode(in)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows, err := formats.Prenormalize(in.Format, table)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	transformed, err := p.transformer.Transform(rows, cfg, in.Member)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProcessing, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	titled := WithTitle(transformed)

	return &Output{
		FileName: utils.OutputFileName(in.Format, in.Name, titled, in.OutputExt),
		Table:    titled,
		Summary:  report.Summarize(titled),
	}, nil
}

// Classify runs a single name through the row transformer.
func (p *Pipeline) Classify(name, member string) types.OutputRow {
	return p.transformer.TransformName(name, "", "", member)
}

// decode picks the decoder by file extension.
func decode(in Input) ([][]string, error) {
	var (
		table [][]string
		err   error
	)

	switch strings.ToLower(filepath.Ext(in.Name)) {
	case ".csv":
		settings, settingsErr := formats.Decoding(in.Format)
		if settingsErr != nil {
			return nil, settingsErr
		}
		table, err = csvparser.Parse(in.Data, settings)
	default:
		table, err = xlsxparser.Parse(in.Data)
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return table, nil
}

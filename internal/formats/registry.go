// =============================================================================
// Bill Transformer - Format Config Registry
// =============================================================================
//
// This module holds the per-format column maps and decode settings. The set
// of formats is closed (see types.Formats), so lookups are a switch over the
// format tag rather than an open plugin registry.
//
// COLUMN MAPS (0-based):
//
//   | Format | Start | Time | Value | Type | Name |
//   |--------|-------|------|-------|------|------|
//   | wechat | 17    | 0    | 5     | 4    | 2    |
//   | alipay | 1     | 0    | 6     | 5    | 4    |
//
//   WeChat exports carry 16 lines of account metadata and a header row before
//   the first transaction. Alipay rows are reshaped by the pre-normalizer so
//   that the header row sits at index 0.
//
// CUSTOMIZATION:
//   Column maps can be overridden per format from the main configuration
//   (formats: section). Overrides are data only; dispatch stays here.
//
// =============================================================================

package formats

import (
	"fmt"

	"github.com/ginjaninja78/bill-transformer/internal/types"
)

// =============================================================================
// COLUMN MAPS
// =============================================================================

var (
	wechatConfig = types.SourceFormatConfig{
		StartIndex: 17,
		TimeIndex:  0,
		ValueIndex: 5,
		TypeIndex:  4,
		NameIndex:  2,
	}

	alipayConfig = types.SourceFormatConfig{
		StartIndex: 1,
		TimeIndex:  0,
		ValueIndex: 6,
		TypeIndex:  5,
		NameIndex:  4,
	}
)

// Lookup returns the built-in column map for a format.
func Lookup(format types.Format) (types.SourceFormatConfig, error) {
	switch format {
	case types.FormatWechat:
		return wechatConfig, nil
	case types.FormatAlipay:
		return alipayConfig, nil
	default:
		return types.SourceFormatConfig{}, fmt.Errorf("%w: %q", types.ErrUnknownFormat, string(format))
	}
}

// Registry resolves column maps, letting configured overrides replace the
// built-in ones. The zero value serves the built-in maps.
type Registry struct {
	overrides map[types.Format]types.SourceFormatConfig
}

// NewRegistry returns a Registry with the given overrides. Keys that are not
// known formats are rejected.
func NewRegistry(overrides map[string]types.SourceFormatConfig) (*Registry, error) {
	r := &Registry{overrides: make(map[types.Format]types.SourceFormatConfig, len(overrides))}

	for tag, cfg := range overrides {
		format, err := types.ParseFormat(tag)
		if err != nil {
			return nil, fmt.Errorf("format override: %w", err)
		}
		r.overrides[format] = cfg
	}

	return r, nil
}

// Config returns the column map for a format.
func (r *Registry) Config(format types.Format) (types.SourceFormatConfig, error) {
	if r != nil {
		if cfg, ok := r.overrides[format]; ok {
			return cfg, nil
		}
	}
	return Lookup(format)
}

// =============================================================================
// DECODE SETTINGS
// =============================================================================

// DecodeSettings describes how the raw bytes of a CSV export are read.
// XLSX inputs ignore Encoding and LineMode.
type DecodeSettings struct {
	// Encoding is the character set of the file: "UTF-8" or "GBK".
	Encoding string

	// LineMode reads every line as a single cell. The pre-normalizer splits
	// the cells afterwards.
	LineMode bool

	// SkipEmptyLines drops lines that contain nothing but whitespace.
	SkipEmptyLines bool
}

// Decoding returns the CSV decode settings for a format.
func Decoding(format types.Format) (DecodeSettings, error) {
	switch format {
	case types.FormatWechat:
		return DecodeSettings{Encoding: "UTF-8"}, nil
	case types.FormatAlipay:
		return DecodeSettings{Encoding: "GBK", LineMode: true, SkipEmptyLines: true}, nil
	default:
		return DecodeSettings{}, fmt.Errorf("%w: %q", types.ErrUnknownFormat, string(format))
	}
}

// =============================================================================
// Bill Transformer - Configuration Module
// =============================================================================
//
// This module is responsible for loading the configuration files.
//
// CONFIGURATION FILES:
//   1. Main Config (config.yaml): directories, logging, members, output and
//      optional column map overrides per source format
//   2. Keyword File (keywords_file): keyword to category table replacing or
//      extending the built-in table
//
// Both files are optional. A missing main config yields DefaultMainConfig();
// a missing keywords_file setting means the built-in table is used.
// Command line flags and BILLX_* environment variables are layered on top
// by the cmd package.
//
// =============================================================================

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/bill-transformer/internal/types"
)

// DefaultMember is the household member bills are attributed to when no
// member is configured.
const DefaultMember = "珏珏子"

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
// This is loaded from the main config.yaml file.
type MainConfig struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is scanned for .csv, .xlsx and .xls bill exports when no
	// single file is given.
	// Default: "./input"
	InputDir string `yaml:"input_dir"`

	// OutputDir receives the converted custom_*.csv files and run logs.
	// Default: "./output"
	OutputDir string `yaml:"output_dir"`

	// InputArchiveDir is where processed exports are moved when
	// ArchiveOnSuccess is set.
	// Default: "./input_archive"
	InputArchiveDir string `yaml:"input_archive_dir"`

	// OutputArchiveDir keeps a copy of every converted file when
	// ArchiveOnSuccess is set.
	// Default: "./output_archive"
	OutputArchiveDir string `yaml:"output_archive_dir"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogFile additionally receives JSON log lines. Empty disables it.
	// Default: "./logs/billx.log"
	LogFile string `yaml:"log_file"`

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// =========================================================================
	// HOUSEHOLD SETTINGS
	// =========================================================================

	// DefaultMember fills the payer column and is the member of every row
	// no override matches.
	// Default: "珏珏子"
	DefaultMember string `yaml:"default_member"`

	// Members lists the household members the default member can be chosen
	// from.
	Members []string `yaml:"members"`

	// KeywordsFile is the path to a keyword table. Empty means the built-in
	// table.
	KeywordsFile string `yaml:"keywords_file"`

	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// OutputFormat is "csv" or "xlsx".
	// Default: "csv"
	OutputFormat string `yaml:"output_format"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// MaxConcurrency is the maximum number of files to process concurrently.
	// Set to 1 for sequential processing.
	// Default: 4
	MaxConcurrency int `yaml:"max_concurrency"`

	// ContinueOnError determines whether to continue processing other files
	// if one file fails.
	// Default: true
	ContinueOnError bool `yaml:"continue_on_error"`

	// ArchiveOnSuccess moves processed inputs to InputArchiveDir and copies
	// outputs to OutputArchiveDir.
	// Default: false
	ArchiveOnSuccess bool `yaml:"archive_on_success"`

	// Formats overrides the built-in column map of a source format, keyed by
	// format tag ("wechat", "alipay").
	Formats map[string]types.SourceFormatConfig `yaml:"formats"`
}

// KeywordFile is the layout of the keywords_file.
//
// EXAMPLE:
//
//	merge_defaults: true
//	keywords:
//	  超市: [食品, 生鲜, 米面]
//	  瑞幸: [餐饮, 饮品, 咖啡]
type KeywordFile struct {
	// MergeDefaults keeps the built-in table and lets Keywords replace or
	// add entries. Otherwise Keywords is the whole table.
	MergeDefaults bool `yaml:"merge_defaults"`

	// Keywords maps a keyword to its [broad, medium, fine] labels.
	Keywords map[string][]string `yaml:"keywords"`
}

// DefaultMainConfig returns the configuration used when no file exists.
func DefaultMainConfig() *MainConfig {
	config := &MainConfig{
		ContinueOnError: true,
	}
	applyMainConfigDefaults(config)
	return config
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// LoadMainConfig loads the main configuration from a YAML file.
//
// PARAMETERS:
//   - configPath: The path to the main configuration file.
//
// RETURNS:
//   - A pointer to the MainConfig struct. Defaults if the file does not exist.
//   - An error if the file cannot be read, parsed or is invalid.
func LoadMainConfig(configPath string) (*MainConfig, error) {
	data, err := os.ReadFile(configPath)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultMainConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return ParseMainConfig(data)
}

// ParseMainConfig parses main configuration YAML. Keys absent from data keep
// their default values; unknown keys are rejected.
func ParseMainConfig(data []byte) (*MainConfig, error) {
	config := DefaultMainConfig()

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(config); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Keys present but empty fall back to defaults as well.
	applyMainConfigDefaults(config)

	if err := validateMainConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// applyMainConfigDefaults sets default values for any unset configuration options.
func applyMainConfigDefaults(config *MainConfig) {
	if config.InputDir == "" {
		config.InputDir = "./input"
	}
	if config.OutputDir == "" {
		config.OutputDir = "./output"
	}
	if config.InputArchiveDir == "" {
		config.InputArchiveDir = "./input_archive"
	}
	if config.OutputArchiveDir == "" {
		config.OutputArchiveDir = "./output_archive"
	}
	if config.LogFile == "" {
		config.LogFile = "./logs/billx.log"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.DefaultMember == "" {
		config.DefaultMember = DefaultMember
	}
	if len(config.Members) == 0 {
		config.Members = []string{DefaultMember}
	}
	if config.OutputFormat == "" {
		config.OutputFormat = "csv"
	}
	if config.MaxConcurrency == 0 {
		config.MaxConcurrency = 4
	}
}

// validateMainConfig rejects settings the application cannot run with.
// Softer checks (unknown members, overlapping columns) live in the
// validation package.
func validateMainConfig(config *MainConfig) error {
	if config.MaxConcurrency < 0 {
		return fmt.Errorf("max_concurrency must be positive, got %d", config.MaxConcurrency)
	}

	for tag := range config.Formats {
		if _, err := types.ParseFormat(tag); err != nil {
			return fmt.Errorf("formats: %w", err)
		}
	}

	return nil
}

// LoadKeywords loads a keyword file.
//
// PARAMETERS:
//   - filePath: The path to the keyword YAML file.
//
// RETURNS:
//   - The parsed file. Label lists are not checked here; see
//     validation.KeywordTable.
//   - An error if the file cannot be read or parsed.
func LoadKeywords(filePath string) (*KeywordFile, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read keywords file: %w", err)
	}

	var file KeywordFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse keywords file: %w", err)
	}

	return &file, nil
}

// =============================================================================
// Bill Transformer - Converter Module
// =============================================================================
//
// This module converts a single bill export on disk. It wraps the in-memory
// Pipeline with file handling:
//
// CONVERSION PIPELINE:
//   1. Open the export
//   2. Decode, pre-normalize and transform it (Pipeline.Convert)
//   3. Check the output table (amounts, timestamps)
//   4. Write the output file (custom_<source>.csv or .xlsx)
//   5. Archive the processed files
//
// CONCURRENCY:
//   Each file is processed in its own goroutine by the process command.
//   A Converter holds no shared mutable state; the Pipeline is read-only.
//
// =============================================================================

package converter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/ginjaninja78/bill-transformer/internal/report"
	"github.com/ginjaninja78/bill-transformer/internal/tablewriter"
	"github.com/ginjaninja78/bill-transformer/internal/types"
	"github.com/ginjaninja78/bill-transformer/internal/validation"
	"github.com/ginjaninja78/bill-transformer/pkg/utils"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of processing a single file.
type Result struct {
	// FilePath is the path to the input file that was processed.
	FilePath string

	// OutputFile is the path to the written file.
	// This is empty if processing failed or in dry-run mode.
	OutputFile string

	// ArchivePath is where the input was moved, if archiving is enabled.
	ArchivePath string

	// Success indicates whether the processing was successful.
	Success bool

	// Error contains the error if processing failed.
	Error error

	// Table is the titled output table.
	Table []types.OutputRow

	// Summary holds the totals of Table.
	Summary report.Summary

	// Warnings are the problems found in the output table.
	Warnings []*validation.ValidationError

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// ProcessingStats contains statistics about the processing.
type ProcessingStats struct {
	// RowsProcessed is the number of data rows in the output.
	RowsProcessed int

	// Unclassified is the number of rows without a keyword match.
	Unclassified int

	// ProcessingTime is the time taken to process the file.
	ProcessingTime time.Duration
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Options selects how a file is converted.
type Options struct {
	// Format is the source format of the export.
	Format types.Format

	// Member is the default member and payer.
	Member string

	// OutputFormat is "csv" or "xlsx".
	OutputFormat string

	// DryRun converts without writing or archiving anything.
	DryRun bool
}

// Converter handles the conversion of a single bill export.
type Converter struct {
	filePath string
	options  Options
	pipeline *Pipeline
	files    *utils.FileManager
	logger   zerolog.Logger
}

// =============================================================================
// CONSTRUCTOR
// =============================================================================

// New creates a new Converter instance.
//
// PARAMETERS:
//   - filePath: The path to the bill export.
//   - options: Format, member and output settings.
//   - pipeline: The shared conversion pipeline.
//   - files: Output directory and archival settings.
//   - logger: The logger for this file.
func New(filePath string, options Options, pipeline *Pipeline, files *utils.FileManager, logger zerolog.Logger) *Converter {
	return &Converter{
		filePath: filePath,
		options:  options,
		pipeline: pipeline,
		files:    files,
		logger:   logger.With().Str("file", filepath.Base(filePath)).Str("format", options.Format.String()).Logger(),
	}
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes the conversion pipeline for the file.
func (c *Converter) Run(ctx context.Context) Result {
	startTime := time.Now()
	result := Result{FilePath: c.filePath}

	outputFormat, err := tablewriter.ParseOutputFormat(c.options.OutputFormat)
	if err != nil {
		result.Error = err
		return result
	}

	// =========================================================================
	// STEP 1-2: DECODE AND TRANSFORM
	// =========================================================================

	c.logger.Info().Msg("processing file")

	file, err := os.Open(c.filePath)
	if err != nil {
		result.Error = fmt.Errorf("failed to open file: %w", err)
		return result
	}
	defer file.Close()

	output, err := c.pipeline.Convert(ctx, Input{
		Name:      filepath.Base(c.filePath),
		Data:      file,
		Format:    c.options.Format,
		Member:    c.options.Member,
		OutputExt: tablewriter.Extension(outputFormat),
	})
	if err != nil {
		result.Error = err
		return result
	}

	result.Table = output.Table
	result.Summary = output.Summary
	result.Stats.RowsProcessed = output.Summary.Rows
	result.Stats.Unclassified = output.Summary.Unclassified

	c.logger.Debug().
		Int("rows", output.Summary.Rows).
		Int("unclassified", output.Summary.Unclassified).
		Msg("transformed rows")

	// =========================================================================
	// STEP 3: CHECK OUTPUT
	// =========================================================================

	checked := validation.ValidateTable(output.Table)
	result.Warnings = checked.Errors
	for _, w := range checked.Errors {
		c.logger.Warn().Int("row", w.Row).Str("rule", w.Rule).Str("value", w.Value).Msg(w.Message)
	}

	if c.options.DryRun {
		result.Success = true
		result.Stats.ProcessingTime = time.Since(startTime)
		return result
	}

	// =========================================================================
	// STEP 4: WRITE OUTPUT FILE
	// =========================================================================

	outputPath := filepath.Join(c.files.OutputDir, output.FileName)
	if err := tablewriter.WriteFile(outputPath, output.Table, outputFormat); err != nil {
		result.Error = fmt.Errorf("failed to write output: %w", err)
		return result
	}

	result.OutputFile = outputPath
	c.logger.Info().Str("output", outputPath).Int("rows", output.Summary.Rows).Msg("wrote output")

	// =========================================================================
	// STEP 5: ARCHIVE FILES
	// =========================================================================

	// The input is still open; close it before it is moved.
	file.Close()

	if err := c.archiveFiles(&result); err != nil {
		// Log the error but don't fail the processing.
		c.logger.Warn().Err(err).Msg("failed to archive files")
	}

	result.Success = true
	result.Stats.ProcessingTime = time.Since(startTime)

	return result
}

// archiveFiles moves the input and copies the output to the archives.
func (c *Converter) archiveFiles(result *Result) error {
	archivePath, err := c.files.ArchiveInputFile(c.filePath)
	if err != nil {
		return err
	}
	result.ArchivePath = archivePath

	if _, err := c.files.ArchiveOutputFile(result.OutputFile); err != nil {
		return err
	}
	return nil
}

// =============================================================================
// Bill Transformer - Process Command
// =============================================================================
//
// This file defines the 'process' command, which converts bill exports into
// the bookkeeping layout.
//
// COMMAND USAGE:
//   billx process --type wechat|alipay [flags]
//
// FLAGS:
//   --type          : Source format of the exports (required)
//   --file          : Convert only this file instead of the input directory
//   --member        : Default member and payer (default from config)
//   --output-format : csv or xlsx (default from config)
//   --dry-run       : Convert and report without writing or archiving
//
// PROCESSING PIPELINE:
//   1. Load configuration and build the pipeline
//   2. Discover exports in the input directory (or take --file)
//   3. Convert each file concurrently, bounded by max_concurrency
//   4. Print per-file results and merged totals
//   5. Write the run summary and error log to the output directory
//
// =============================================================================

package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/bill-transformer/internal/converter"
	"github.com/ginjaninja78/bill-transformer/internal/report"
	"github.com/ginjaninja78/bill-transformer/internal/tablewriter"
	"github.com/ginjaninja78/bill-transformer/internal/types"
	"github.com/ginjaninja78/bill-transformer/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	// billType is the source format of the exports.
	billType string

	// filePath converts a single file instead of the input directory.
	filePath string

	// member overrides the configured default member.
	member string

	// outputFormat overrides the configured output format.
	outputFormat string

	// dryRun converts without writing output files.
	dryRun bool
)

var (
	okMark   = color.New(color.FgGreen).Sprint("✓")
	failMark = color.New(color.FgRed).Sprint("✗")
	warnMark = color.New(color.FgYellow).Sprint("!")
)

// =============================================================================
// PROCESS COMMAND DEFINITION
// =============================================================================

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Convert bill exports into the bookkeeping layout",
	Long: `The process command converts WeChat or Alipay bill exports. Without --file
every .csv, .xlsx and .xls file in the input directory is converted; files
named custom_* (earlier outputs) are skipped.

Each output is written to the output directory as custom_<name>.csv (or .xlsx).
Files are converted concurrently and one failing file does not stop the others
unless continue_on_error is false.

On success the merged per-member and per-category totals are printed and a
run summary is written next to the outputs. Failures are listed in an error
log in the output directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProcess(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().StringVarP(&billType, "type", "t", "", "Bill type: wechat or alipay")
	processCmd.Flags().StringVarP(&filePath, "file", "f", "", "Convert only this file")
	processCmd.Flags().StringVarP(&member, "member", "m", "", "Default member and payer")
	processCmd.Flags().StringVarP(&outputFormat, "output-format", "o", "", "Output format: csv or xlsx")
	processCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Convert and report without writing files")
	processCmd.MarkFlagRequired("type")
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// runProcess orchestrates the conversion of every selected file.
func runProcess(ctx context.Context) error {
	startTime := time.Now()

	format, err := types.ParseFormat(billType)
	if err != nil {
		return errors.New(converter.MessageUnknownFormat)
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	cfg := a.cfg
	outFormat := cfg.OutputFormat
	if outputFormat != "" {
		outFormat = outputFormat
	}
	if _, err := tablewriter.ParseOutputFormat(outFormat); err != nil {
		return err
	}

	// =========================================================================
	// STEP 1: PREPARE DIRECTORIES
	// =========================================================================

	files := utils.NewFileManager(cfg.InputDir, cfg.OutputDir, cfg.InputArchiveDir, cfg.OutputArchiveDir)
	files.ArchiveOnSuccess = cfg.ArchiveOnSuccess && !dryRun
	if !dryRun {
		if err := files.EnsureDirectories(); err != nil {
			return err
		}
	}

	// =========================================================================
	// STEP 2: DISCOVER INPUT FILES
	// =========================================================================

	var inputFiles []string
	if filePath != "" {
		if !utils.IsSupportedInput(filePath) {
			return errors.New(converter.MessageUnsupportedFile)
		}
		inputFiles = []string{filePath}
	} else {
		inputFiles, err = files.DiscoverInputFiles()
		if err != nil {
			return fmt.Errorf("failed to discover input files: %w", err)
		}
	}

	if len(inputFiles) == 0 {
		fmt.Printf("No bill exports found in %s\n", cfg.InputDir)
		return nil
	}

	runID := utils.NewRunID()
	log := a.log.With().Str("run_id", runID).Logger()
	log.Info().Int("files", len(inputFiles)).Str("format", format.String()).Bool("dry_run", dryRun).Msg("processing started")

	// =========================================================================
	// STEP 3: PROCESS FILES CONCURRENTLY
	// =========================================================================

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	options := converter.Options{
		Format:       format,
		Member:       a.member(member),
		OutputFormat: outFormat,
		DryRun:       dryRun,
	}

	var wg sync.WaitGroup
	results := make(chan converter.Result, len(inputFiles))
	sem := make(chan struct{}, max(cfg.MaxConcurrency, 1))

	for _, file := range inputFiles {
		wg.Add(1)
		go func(path string) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				results <- converter.Result{FilePath: path, Error: ctx.Err()}
				return
			}

			result := converter.New(path, options, a.pipeline, files, log).Run(ctx)
			if !result.Success && !cfg.ContinueOnError {
				cancel()
			}
			results <- result
		}(file)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	// =========================================================================
	// STEP 4: COLLECT RESULTS
	// =========================================================================

	summary := utils.ProcessingSummary{
		RunID:      runID,
		StartTime:  startTime,
		TotalFiles: len(inputFiles),
	}
	var (
		summaries []report.Summary
		entries   []utils.ErrorLogEntry
	)

	for result := range results {
		name := filepath.Base(result.FilePath)

		if !result.Success {
			summary.FailedFiles++
			summary.FailedFilesList = append(summary.FailedFilesList, utils.FailedFileInfo{
				InputFile:    result.FilePath,
				ErrorMessage: result.Error.Error(),
				ErrorType:    errorType(result.Error),
			})
			entries = append(entries, utils.ErrorLogEntry{
				Timestamp:    time.Now(),
				FileName:     name,
				ErrorType:    errorType(result.Error),
				ErrorMessage: result.Error.Error(),
			})
			fmt.Printf("  %s %s: %s\n", failMark, name, converter.UserMessage(result.Error))
			continue
		}

		summary.SuccessfulFiles++
		summary.TotalRows += result.Stats.RowsProcessed
		summary.UnclassifiedRows += result.Stats.Unclassified
		summary.ValidationWarnings += len(result.Warnings)
		summary.ProcessedFiles = append(summary.ProcessedFiles, utils.ProcessedFileInfo{
			InputFile:    result.FilePath,
			OutputFile:   result.OutputFile,
			ArchivePath:  result.ArchivePath,
			Format:       format.String(),
			Rows:         result.Stats.RowsProcessed,
			Unclassified: result.Stats.Unclassified,
			ProcessTime:  result.Stats.ProcessingTime,
		})
		summaries = append(summaries, result.Summary)

		for _, w := range result.Warnings {
			entries = append(entries, utils.ErrorLogEntry{
				Timestamp:    time.Now(),
				FileName:     name,
				ErrorType:    "validation_" + w.Rule,
				ErrorMessage: w.Message,
				RowNumber:    w.Row,
			})
		}

		target := result.OutputFile
		if dryRun {
			target = "(dry run)"
		}
		fmt.Printf("  %s %s -> %s (%d rows)\n", okMark, name, target, result.Stats.RowsProcessed)
		if n := len(result.Warnings); n > 0 {
			fmt.Printf("    %s %d warning(s)\n", warnMark, n)
		}
	}

	// =========================================================================
	// STEP 5: PRINT AND WRITE SUMMARY
	// =========================================================================

	summary.EndTime = time.Now()
	summary.Totals = report.Merge(summaries...).Lines()

	fmt.Println("\n=== Processing Complete ===")
	fmt.Printf("Total files:     %d\n", summary.TotalFiles)
	fmt.Printf("Successful:      %d\n", summary.SuccessfulFiles)
	fmt.Printf("Errors:          %d\n", summary.FailedFiles)
	fmt.Printf("Time elapsed:    %s\n", summary.EndTime.Sub(startTime).Round(time.Millisecond))
	if summary.SuccessfulFiles > 0 {
		fmt.Println()
		for _, line := range summary.Totals {
			fmt.Println("  " + line)
		}
	}

	if !dryRun {
		if path, err := utils.WriteSummaryLog(summary, cfg.OutputDir); err != nil {
			log.Warn().Err(err).Msg("failed to write summary log")
		} else {
			log.Debug().Str("path", path).Msg("summary log written")
		}

		if path, err := utils.WriteErrorLog(entries, cfg.OutputDir, runID); err != nil {
			log.Warn().Err(err).Msg("failed to write error log")
		} else if path != "" {
			fmt.Printf("\nProblems have been logged to %s\n", path)
		}
	}

	log.Info().
		Int("successful", summary.SuccessfulFiles).
		Int("failed", summary.FailedFiles).
		Int("rows", summary.TotalRows).
		Msg("processing finished")

	if summary.FailedFiles > 0 {
		return fmt.Errorf("%d of %d file(s) failed", summary.FailedFiles, summary.TotalFiles)
	}
	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// errorType names the failure class of a conversion error for the logs.
func errorType(err error) string {
	switch {
	case errors.Is(err, converter.ErrUnsupportedFile):
		return "unsupported_file"
	case errors.Is(err, converter.ErrDecode):
		return "decode"
	case errors.Is(err, converter.ErrProcessing):
		return "processing"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "io"
	}
}

// =============================================================================
// Bill Transformer - File Manager Utility
// =============================================================================
//
// This module provides file management utilities for the converter, including:
//   - Bill export discovery (.csv, .xlsx, .xls)
//   - Output file naming (custom_<source>.csv)
//   - File archival (moving processed exports)
//   - Error and summary logs for a processing run
//
// ARCHIVAL STRATEGY:
//   - Input exports are moved to input_archive after successful processing
//   - Output files are copied to output_archive for long-term storage
//   - Failed files remain in their original location
//   - Error logs and run summaries are created in the output directory
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ginjaninja78/bill-transformer/internal/types"
)

// OutputPrefix starts the name of every converted file.
const OutputPrefix = "custom_"

// SupportedExtensions lists the input extensions, lower case.
var SupportedExtensions = []string{".csv", ".xlsx", ".xls"}

// IsSupportedInput reports whether fileName has a supported extension.
func IsSupportedInput(fileName string) bool {
	return slices.Contains(SupportedExtensions, strings.ToLower(filepath.Ext(fileName)))
}

// NewRunID returns an identifier for one processing run.
func NewRunID() string {
	return uuid.New().String()
}

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles file operations for the converter.
type FileManager struct {
	// InputDir is the directory where bill exports are placed.
	InputDir string

	// OutputDir is the directory where converted files are placed.
	OutputDir string

	// InputArchiveDir is the directory for archived exports.
	InputArchiveDir string

	// OutputArchiveDir is the directory for archived output files.
	OutputArchiveDir string

	// UseTimestampSubdirs creates date-based subdirectories in archives.
	// Example: input_archive/2024/01/15/bill.csv
	UseTimestampSubdirs bool

	// ArchiveOnSuccess determines whether to archive files after successful processing.
	ArchiveOnSuccess bool
}

// NewFileManager creates a new FileManager with the specified directories.
func NewFileManager(inputDir, outputDir, inputArchiveDir, outputArchiveDir string) *FileManager {
	return &FileManager{
		InputDir:         inputDir,
		OutputDir:        outputDir,
		InputArchiveDir:  inputArchiveDir,
		OutputArchiveDir: outputArchiveDir,
	}
}

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDirectories creates the output directory and, when archiving is
// enabled, the archive directories.
func (fm *FileManager) EnsureDirectories() error {
	dirs := []string{fm.OutputDir}
	if fm.ArchiveOnSuccess {
		dirs = append(dirs, fm.InputArchiveDir, fm.OutputArchiveDir)
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// =============================================================================
// FILE DISCOVERY
// =============================================================================

// DiscoverInputFiles lists the bill exports in the input directory, sorted
// by name.
//
// RETURNS:
//   - A slice of file paths.
//   - An error if the directory cannot be read.
//
// SKIPPED:
//   - Directories and unsupported extensions
//   - Our own output files (custom_*)
//   - Office lock files (~$*)
func (fm *FileManager) DiscoverInputFiles() ([]string, error) {
	entries, err := os.ReadDir(fm.InputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan input directory: %w", err)
	}

	var result []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !IsSupportedInput(name) {
			continue
		}
		if strings.HasPrefix(name, OutputPrefix) || strings.HasPrefix(name, "~$") {
			continue
		}
		result = append(result, filepath.Join(fm.InputDir, name))
	}

	// os.ReadDir already returns entries sorted by file name.
	return result, nil
}

// =============================================================================
// FILE ARCHIVAL
// =============================================================================

// ArchiveInputFile moves an input file to the archive directory.
//
// PARAMETERS:
//   - filePath: The path to the file to archive.
//
// RETURNS:
//   - The path to the archived file (filePath if archiving is disabled).
//   - An error if archival fails.
func (fm *FileManager) ArchiveInputFile(filePath string) (string, error) {
	if !fm.ArchiveOnSuccess {
		return filePath, nil
	}

	archivePath := fm.getArchivePath(fm.InputArchiveDir, filePath)
	if err := os.MkdirAll(filepath.Dir(archivePath), 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	if err := os.Rename(filePath, archivePath); err != nil {
		// Rename fails across devices; fall back to copy and delete.
		if err := copyFile(filePath, archivePath); err != nil {
			return "", fmt.Errorf("failed to copy file to archive: %w", err)
		}
		if err := os.Remove(filePath); err != nil {
			return "", fmt.Errorf("failed to remove original file: %w", err)
		}
	}

	return archivePath, nil
}

// ArchiveOutputFile copies an output file to the archive directory.
// Output files are copied, not moved, so they remain in the output directory.
func (fm *FileManager) ArchiveOutputFile(filePath string) (string, error) {
	if !fm.ArchiveOnSuccess {
		return filePath, nil
	}

	archivePath := fm.getArchivePath(fm.OutputArchiveDir, filePath)
	if err := os.MkdirAll(filepath.Dir(archivePath), 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	if err := copyFile(filePath, archivePath); err != nil {
		return "", fmt.Errorf("failed to copy file to archive: %w", err)
	}

	return archivePath, nil
}

// getArchivePath constructs the archive path for a file.
func (fm *FileManager) getArchivePath(archiveDir, filePath string) string {
	fileName := filepath.Base(filePath)

	if fm.UseTimestampSubdirs {
		now := time.Now()
		return filepath.Join(
			archiveDir,
			fmt.Sprintf("%d", now.Year()),
			fmt.Sprintf("%02d", now.Month()),
			fmt.Sprintf("%02d", now.Day()),
			fileName,
		)
	}

	return filepath.Join(archiveDir, fileName)
}

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

// OutputFileName builds the name of a converted file.
//
// PARAMETERS:
//   - format: The source format.
//   - sourceName: The name (or path) of the uploaded export.
//   - table: The titled output table.
//   - ext: The output extension including the dot; empty means ".csv".
//
// NAMING RULES:
//   - wechat: custom_ + source file name
//   - alipay: custom_ + "alipay" + time of the first data row
//   - a trailing .xlsx, .xls or .csv is removed (case-insensitive)
//   - path separators and ':' are replaced with '-'
//
// EXAMPLE:
//   wechat, "微信支付账单(20240101-20240131).csv" -> "custom_微信支付账单(20240101-20240131).csv"
//   alipay, first row time "2024-01-02 08:30:00" -> "custom_alipay2024-01-02 08-30-00.csv"
func OutputFileName(format types.Format, sourceName string, table []types.OutputRow, ext string) string {
	if ext == "" {
		ext = ".csv"
	}

	var base string
	switch format {
	case types.FormatAlipay:
		base = "alipay"
		if len(table) > 1 && len(table[1]) > types.ColTime {
			base += table[1][types.ColTime]
		}
	default:
		// Uploads from Windows browsers may carry a full path.
		base = sourceName
		if i := strings.LastIndexAny(base, `/\`); i >= 0 {
			base = base[i+1:]
		}
	}

	base = trimInputExtension(base)
	base = strings.NewReplacer("/", "-", `\`, "-", ":", "-").Replace(base)

	return OutputPrefix + base + ext
}

// trimInputExtension removes one trailing supported extension.
func trimInputExtension(name string) string {
	lower := strings.ToLower(name)
	for _, ext := range SupportedExtensions {
		if strings.HasSuffix(lower, ext) {
			return name[:len(name)-len(ext)]
		}
	}
	return name
}

// =============================================================================
// ERROR LOG GENERATION
// =============================================================================

// ErrorLogEntry represents a single error log entry.
type ErrorLogEntry struct {
	Timestamp    time.Time
	FileName     string
	ErrorType    string
	ErrorMessage string
	RowNumber    int
	Column       int
}

// WriteErrorLog writes error entries to a log file.
//
// PARAMETERS:
//   - entries: The error entries to write.
//   - outputDir: The directory to write the log file.
//   - runID: The processing run the entries belong to.
//
// RETURNS:
//   - The path to the error log file, or "" if there were no entries.
//   - An error if writing fails.
func WriteErrorLog(entries []ErrorLogEntry, outputDir, runID string) (string, error) {
	if len(entries) == 0 {
		return "", nil
	}

	logPath := filepath.Join(outputDir, logFileName("error_log", runID))

	file, err := os.Create(logPath)
	if err != nil {
		return "", fmt.Errorf("failed to create error log: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	fmt.Fprintf(writer, "Bill Transformer - Error Log\n"+
		"Run:          %s\n"+
		"Generated:    %s\n"+
		"Total Errors: %d\n"+
		"================================================================================\n\n",
		runID,
		time.Now().Format("2006-01-02 15:04:05"),
		len(entries))

	for i, entry := range entries {
		fmt.Fprintf(writer, "Error #%d\n"+
			"  Timestamp:  %s\n"+
			"  File:       %s\n"+
			"  Error Type: %s\n"+
			"  Message:    %s\n",
			i+1,
			entry.Timestamp.Format("2006-01-02 15:04:05"),
			entry.FileName,
			entry.ErrorType,
			entry.ErrorMessage)

		if entry.RowNumber > 0 {
			fmt.Fprintf(writer, "  Row Number: %d\n", entry.RowNumber)
		}
		if entry.Column > 0 {
			fmt.Fprintf(writer, "  Column:     %d\n", entry.Column)
		}
		writer.WriteString("\n")
	}

	writer.WriteString("================================================================================\n" +
		"End of Error Log\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush error log: %w", err)
	}

	return logPath, nil
}

// =============================================================================
// PROCESSING SUMMARY
// =============================================================================

// ProcessingSummary contains summary information about a processing run.
type ProcessingSummary struct {
	RunID              string
	StartTime          time.Time
	EndTime            time.Time
	TotalFiles         int
	SuccessfulFiles    int
	FailedFiles        int
	TotalRows          int
	UnclassifiedRows   int
	ValidationWarnings int

	// Totals holds preformatted per-member and per-category totals.
	Totals []string

	ProcessedFiles  []ProcessedFileInfo
	FailedFilesList []FailedFileInfo
}

// ProcessedFileInfo contains information about a successfully processed file.
type ProcessedFileInfo struct {
	InputFile    string
	OutputFile   string
	ArchivePath  string
	Format       string
	Rows         int
	Unclassified int
	ProcessTime  time.Duration
}

// FailedFileInfo contains information about a failed file.
type FailedFileInfo struct {
	InputFile    string
	ErrorMessage string
	ErrorType    string
}

// WriteSummaryLog writes a processing summary to a log file.
//
// PARAMETERS:
//   - summary: The processing summary.
//   - outputDir: The directory to write the summary file.
//
// RETURNS:
//   - The path to the summary file.
//   - An error if writing fails.
func WriteSummaryLog(summary ProcessingSummary, outputDir string) (string, error) {
	summaryPath := filepath.Join(outputDir, logFileName("processing_summary", summary.RunID))

	file, err := os.Create(summaryPath)
	if err != nil {
		return "", fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	fmt.Fprintf(writer, "Bill Transformer - Processing Summary\n"+
		"================================================================================\n\n"+
		"Run Information:\n"+
		"  Run ID:         %s\n"+
		"  Start Time:     %s\n"+
		"  End Time:       %s\n"+
		"  Duration:       %s\n\n"+
		"Statistics:\n"+
		"  Total Files:         %d\n"+
		"  Successful:          %d\n"+
		"  Failed:              %d\n"+
		"  Total Rows:          %d\n"+
		"  Unclassified Rows:   %d\n"+
		"  Validation Warnings: %d\n\n",
		summary.RunID,
		summary.StartTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Sub(summary.StartTime).String(),
		summary.TotalFiles,
		summary.SuccessfulFiles,
		summary.FailedFiles,
		summary.TotalRows,
		summary.UnclassifiedRows,
		summary.ValidationWarnings)

	if len(summary.Totals) > 0 {
		writer.WriteString("Totals:\n")
		for _, line := range summary.Totals {
			fmt.Fprintf(writer, "  %s\n", line)
		}
		writer.WriteString("\n")
	}

	if len(summary.ProcessedFiles) > 0 {
		writer.WriteString("Successful Files:\n")
		writer.WriteString("--------------------------------------------------------------------------------\n")
		for _, pf := range summary.ProcessedFiles {
			fmt.Fprintf(writer, "  Input:        %s\n", pf.InputFile)
			fmt.Fprintf(writer, "  Format:       %s\n", pf.Format)
			fmt.Fprintf(writer, "  Output:       %s\n", pf.OutputFile)
			if pf.ArchivePath != "" && pf.ArchivePath != pf.InputFile {
				fmt.Fprintf(writer, "  Archived:     %s\n", pf.ArchivePath)
			}
			fmt.Fprintf(writer, "  Rows:         %d\n", pf.Rows)
			fmt.Fprintf(writer, "  Unclassified: %d\n", pf.Unclassified)
			fmt.Fprintf(writer, "  Process Time: %s\n\n", pf.ProcessTime.String())
		}
	}

	if len(summary.FailedFilesList) > 0 {
		writer.WriteString("Failed Files:\n")
		writer.WriteString("--------------------------------------------------------------------------------\n")
		for _, ff := range summary.FailedFilesList {
			fmt.Fprintf(writer, "  File:  %s\n", ff.InputFile)
			fmt.Fprintf(writer, "  Type:  %s\n", ff.ErrorType)
			fmt.Fprintf(writer, "  Error: %s\n\n", ff.ErrorMessage)
		}
	}

	writer.WriteString("================================================================================\n" +
		"End of Summary\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush summary file: %w", err)
	}

	return summaryPath, nil
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// logFileName returns "<prefix>_<timestamp>_<run id prefix>.txt".
func logFileName(prefix, runID string) string {
	name := fmt.Sprintf("%s_%s", prefix, time.Now().Format("20060102_150405"))
	if len(runID) >= 8 {
		name += "_" + runID[:8]
	}
	return name + ".txt"
}

// copyFile copies a file from src to dst.
func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		return err
	}

	return destFile.Sync()
}

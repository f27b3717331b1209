// =============================================================================
// Bill Transformer - Validate Command
// =============================================================================
//
// COMMAND USAGE:
//   billx validate [--strict] [--type wechat --file bill.csv]
//
// Checks the configuration and keyword table. With --file the export is
// converted in memory and the output table is checked as well; nothing is
// written.
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/bill-transformer/internal/converter"
	"github.com/ginjaninja78/bill-transformer/internal/types"
	"github.com/ginjaninja78/bill-transformer/internal/validation"
)

var strict bool

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration, keyword table and optionally an export",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		result := validation.ValidateConfig(cfg)

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()
		result.Merge(a.keywordProblems)

		if filePath != "" {
			tableResult, err := validateExport(cmd, a)
			if err != nil {
				return err
			}
			result.Merge(tableResult)
		}

		printValidation(result)

		if !result.IsValid || (strict && !result.Strict()) {
			return errors.New("validation failed")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(&strict, "strict", false, "Treat warnings as errors")
	validateCmd.Flags().StringVarP(&billType, "type", "t", "", "Bill type of --file: wechat or alipay")
	validateCmd.Flags().StringVarP(&filePath, "file", "f", "", "Also convert and check this export")
}

// validateExport converts filePath in memory and checks the output table.
func validateExport(cmd *cobra.Command, a *app) (*validation.ValidationResult, error) {
	format, err := types.ParseFormat(billType)
	if err != nil {
		return nil, errors.New(converter.MessageUnknownFormat)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	output, err := a.pipeline.Convert(cmd.Context(), converter.Input{
		Name:   file.Name(),
		Data:   file,
		Format: format,
		Member: a.cfg.DefaultMember,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", converter.UserMessage(err), err)
	}

	fmt.Printf("%s converts to %s (%d rows)\n", filePath, output.FileName, output.Summary.Rows)
	return validation.ValidateTable(output.Table), nil
}

func printValidation(result *validation.ValidationResult) {
	if len(result.Errors) == 0 {
		fmt.Printf("%s configuration is valid\n", okMark)
		return
	}

	for _, e := range result.Errors {
		mark := warnMark
		if e.Severity == validation.SeverityError {
			mark = failMark
		}
		fmt.Printf("  %s %s\n", mark, e.Error())
	}

	summary := fmt.Sprintf("%d error(s), %d warning(s)", result.ErrorCount, result.WarningCount)
	if result.IsValid {
		fmt.Println(color.YellowString(summary))
	} else {
		fmt.Println(color.RedString(summary))
	}
}

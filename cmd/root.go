// =============================================================================
// Bill Transformer - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. All other commands
// are attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (billx)
//   ├── processCmd  (billx process)
//   ├── classifyCmd (billx classify)
//   ├── validateCmd (billx validate)
//   ├── serveCmd    (billx serve)
//   └── versionCmd  (billx version)
//
// CONFIGURATION:
//   Settings come from the YAML file given by --config. Environment
//   variables prefixed with BILLX_ and the persistent flags below override
//   individual keys, e.g. BILLX_OUTPUT_DIR=/tmp/out.
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ginjaninja78/bill-transformer/internal/config"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
var cfgFile string

// verbose switches logging to debug level.
var verbose bool

// overridableKeys are the configuration keys that can be set from the
// environment or a persistent flag.
var overridableKeys = []string{
	"input_dir",
	"output_dir",
	"log_level",
	"log_file",
	"default_member",
	"keywords_file",
	"output_format",
}

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

var rootCmd = &cobra.Command{
	Use:   "billx",
	Short: "Bill Transformer - normalize WeChat and Alipay bill exports",
	Long: `Bill Transformer converts WeChat Pay and Alipay bill exports (CSV or XLSX)
into one bookkeeping layout: name, time, amount, member, payer and a
three-level category picked from a keyword table.

Example Usage:
  billx process --type wechat                 # Convert every export in the input directory
  billx process --type alipay --file a.csv    # Convert a single export
  billx classify 瑞幸咖啡                      # Show how a name is classified
  billx validate                              # Check configuration and keyword table
  billx serve --addr :8080                    # Serve the upload endpoint`,

	SilenceUsage: true,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. It is called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "config.yaml", "Path to the main configuration file")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	flags.String("input-dir", "", "Directory scanned for bill exports")
	flags.String("output-dir", "", "Directory for converted files and run logs")
	flags.String("log-level", "", "Log level (debug, info, warn, error)")
	flags.String("keywords", "", "Path to a keyword table file")

	viper.BindPFlag("input_dir", flags.Lookup("input-dir"))
	viper.BindPFlag("output_dir", flags.Lookup("output-dir"))
	viper.BindPFlag("log_level", flags.Lookup("log-level"))
	viper.BindPFlag("keywords_file", flags.Lookup("keywords"))
}

// initConfig sets up environment overrides.
func initConfig() {
	viper.SetEnvPrefix("BILLX")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// loadConfig reads the configuration file and applies environment and flag
// overrides on top of it.
func loadConfig() (*config.MainConfig, error) {
	cfg, err := config.LoadMainConfig(cfgFile)
	if err != nil {
		return nil, err
	}

	for _, key := range overridableKeys {
		if !viper.IsSet(key) {
			continue
		}
		value := viper.GetString(key)
		if value == "" {
			continue
		}
		switch key {
		case "input_dir":
			cfg.InputDir = value
		case "output_dir":
			cfg.OutputDir = value
		case "log_level":
			cfg.LogLevel = value
		case "log_file":
			cfg.LogFile = value
		case "default_member":
			cfg.DefaultMember = value
		case "keywords_file":
			cfg.KeywordsFile = value
		case "output_format":
			cfg.OutputFormat = value
		}
	}

	if viper.IsSet("max_concurrency") {
		if n := viper.GetInt("max_concurrency"); n > 0 {
			cfg.MaxConcurrency = n
		}
	}

	if verbose {
		cfg.LogLevel = "debug"
	}

	return cfg, nil
}

// =============================================================================
// Slip Report - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Every other command
// attaches to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (slipreport)
//   ├── analyzeCmd (slipreport analyze)
//   ├── serveCmd   (slipreport serve)
//   └── versionCmd (slipreport version)
//
// The root command owns the shared state of a run:
//   1. The global flags (--config, --verbose)
//   2. The loaded main configuration
//   3. The zap logger, built before and synced after every command
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ginjaninja78/slip-report/internal/config"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
var cfgFile string

// verbose forces debug logging regardless of log_level.
var verbose bool

// logger is built in PersistentPreRunE.
var logger *zap.Logger

// mainConfig is loaded in PersistentPreRunE.
var mainConfig *config.MainConfig

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

var rootCmd = &cobra.Command{
	Use:   "slipreport",
	Short: "Slip Report - supervisor and ward summaries from collection slip exports",
	Long: `Slip Report reads CSV exports of field-collection slips (one row per
collection event) and produces two reports:

  - A per-supervisor activity summary: first and last slip, working hours,
    wards covered, slips per ward and amount collected
  - A per-ward collection summary with coverage against the expected wards

Reports can be printed, exported (xlsx, xml, csv, json) or served over HTTP.

Example Usage:
  slipreport analyze slips.csv                  # Analyze one file
  slipreport analyze --format xlsx,json         # Analyze every CSV in input_dir
  slipreport analyze --supervisor asha --from 2024-01-01 --to 2024-01-31
  slipreport serve --addr :8080                 # Start the HTTP API`,

	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}

		cfg, err := config.LoadMainConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load main config: %w", err)
		}
		mainConfig = cfg

		logger, err = buildLogger(cfg.LogLevel, verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},

	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// buildLogger creates the production zap logger at the configured level.
func buildLogger(level string, verbose bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	if verbose {
		lvl = zapcore.DebugLevel
	}
	config.Level = zap.NewAtomicLevelAt(lvl)

	return config.Build()
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the main configuration file; defaults apply when it does not exist",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)
}

// =============================================================================
// Tableau Workbook Fixer - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands (like 'fix', 'inspect') are
// attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (twbfix)
//   ├── fixCmd (twbfix fix)
//   ├── inspectCmd (twbfix inspect)
//   └── versionCmd (twbfix version)
//
// CONFIGURATION:
//   The root command is responsible for:
//   1. Setting up global flags (--config, --verbose)
//   2. Initializing the diagnostic logger
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to an optional fix-rules configuration file.
// When empty, the compiled-in default rules are used.
var cfgFile string

// verbose enables debug-level diagnostic logging when set to true.
var verbose bool

// logger is the shared diagnostic logger. It writes to standard error so
// that progress output on standard output stays clean.
var logger *zap.SugaredLogger

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
// This is the entry point for the CLI application.
var rootCmd = &cobra.Command{
	// Use is the one-line usage message.
	Use: "twbfix",

	// Short is a short description shown in the 'help' output.
	Short: "Tableau Workbook Fixer - Repair schema validation errors in .twbx archives",

	// Long is a longer description shown in the 'help <command>' output.
	Long: `Tableau Workbook Fixer repairs common XML schema validation errors in
packaged Tableau workbook (.twbx) archives. It unpacks the archive, applies a
fixed sequence of corrections to the embedded .twb document, and repackages
the result beside the input. The original archive is never modified.

Corrections applied:
  - Malformed UUID/GUID tokens are replaced with valid ones, consistently
  - Elements not declared anywhere in the schema are removed
  - Container elements outside their one legal parent are removed
  - Disallowed attribute enumeration values are rewritten

Example Usage:
  twbfix fix dashboard.twbx            # Produces dashboard_fixed.twbx
  twbfix fix dashboard.twbx --verify   # Additionally check well-formedness
  twbfix inspect dashboard.twbx        # List archive members`,

	// SilenceErrors stops Cobra from printing errors itself; Execute prints
	// a single "Error:" line instead. Usage is still shown on bad arguments.
	SilenceErrors: true,

	// Run is the function that will be executed when the root command is
	// called without any subcommands. We just print the help message.
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},

	// PersistentPreRun sets up the diagnostic logger before any subcommand
	// runs, so every command can rely on it being initialized.
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initLogger()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). It only needs to happen
// once to the rootCmd.
func Execute() {
	// Execute the root command. If there's an error, print it and exit.
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// LOGGER INITIALIZATION
// =============================================================================

// initLogger builds the shared zap logger. Debug level is only enabled
// with --verbose; otherwise only warnings and errors are surfaced.
func initLogger() {
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	}

	l, err := cfg.Build()
	if err != nil {
		// Building a development config only fails on bad output paths.
		fmt.Fprintf(os.Stderr, "Error: failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger = l.Sugar()
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init is called automatically when the package is loaded.
// It sets up the global flags.
func init() {
	// ==========================================================================
	// PERSISTENT FLAGS
	// ==========================================================================
	// Persistent flags are available to this command and all subcommands.

	// --config flag: Allows the user to override the built-in fix rules
	// with a YAML rules file. The tool works without one.
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"",
		"Path to an optional fix-rules YAML file (built-in rules by default)",
	)

	// --verbose flag: Enables verbose/debug logging.
	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}

// =============================================================================
// Tableau Workbook Fixer - Fix Command
// =============================================================================
//
// This file defines the 'fix' command, which is the main command for
// repairing a workbook archive. It orchestrates the entire repair pipeline.
//
// COMMAND USAGE:
//   twbfix fix <workbook.twbx> [flags]
//
// FLAGS:
//   --output      : Override the derived output path
//   --dry-run     : Run the fix passes and report counts without writing output
//   --keep-temp   : Preserve the scratch directory after a successful run
//   --verify      : Parse the repaired document to confirm well-formedness
//
// REPAIR PIPELINE:
//   1. Load the fix rules (built-in defaults, or --config override)
//   2. Extract the .twbx archive into a scratch directory
//   3. Read the embedded .twb document
//   4. Apply the four fix passes in order:
//      a. Normalize malformed UUID tokens
//      b. Remove disallowed elements
//      c. Remove misplaced container elements
//      d. Rewrite disallowed attribute enumeration values
//   5. Write the document back and repackage the archive
//   6. Remove the scratch directory and print a summary
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tableau-tools/twbfix/internal/config"
	"github.com/tableau-tools/twbfix/internal/fixer"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// outputPath overrides the derived <stem>_fixed.twbx output path.
var outputPath string

// dryRun runs the fix passes without writing any output files.
var dryRun bool

// keepTemp preserves the scratch directory after a successful run.
var keepTemp bool

// verify parses the repaired document to confirm it is well-formed XML.
var verify bool

// =============================================================================
// FIX COMMAND DEFINITION
// =============================================================================

// fixCmd represents the 'fix' command.
var fixCmd = &cobra.Command{
	Use:   "fix <workbook.twbx>",
	Short: "Repair a workbook archive and write <stem>_fixed.twbx beside it",
	Long: `The fix command extracts the given .twbx archive into a scratch directory,
applies an ordered sequence of corrections to the embedded .twb document, and
repackages everything (the repaired document plus all untouched auxiliary
resources) into a new archive named <stem>_fixed.twbx in the same directory
as the input. The original archive is never modified.

The corrections operate on the raw document text rather than a parsed DOM,
because the whole point of the tool is that the document may not currently
be valid. Pass order matters: identifier normalization runs before the
structural removals so that replacement tokens are never removal targets.

On error the run aborts; no partial output archive is produced, though the
scratch directory may be left behind for inspection.`,

	// Exactly one positional argument: the workbook archive path.
	Args: cobra.ExactArgs(1),

	// RunE is like Run but returns an error. This is preferred for commands
	// that can fail, as it allows Cobra to handle the error gracefully.
	RunE: func(cmd *cobra.Command, args []string) error {
		// Argument errors above already printed usage; a pipeline failure
		// should surface as a single "Error:" line, not a usage dump.
		cmd.SilenceUsage = true
		return runFix(args[0])
	},
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init registers the fix command with the root command and sets up flags.
func init() {
	rootCmd.AddCommand(fixCmd)

	// ==========================================================================
	// LOCAL FLAGS
	// ==========================================================================
	// Local flags are only available to this command.

	fixCmd.Flags().StringVarP(
		&outputPath,
		"output",
		"o",
		"",
		"Path for the repaired archive (default: <stem>_fixed.twbx beside the input)",
	)

	fixCmd.Flags().BoolVar(
		&dryRun,
		"dry-run",
		false,
		"Run the fix passes and report counts without writing output files",
	)

	fixCmd.Flags().BoolVar(
		&keepTemp,
		"keep-temp",
		false,
		"Preserve the scratch directory after a successful run",
	)

	fixCmd.Flags().BoolVar(
		&verify,
		"verify",
		false,
		"Parse the repaired document to confirm it is well-formed XML",
	)
}

// =============================================================================
// MAIN FIX FUNCTION
// =============================================================================

// runFix is the main function that orchestrates the repair pipeline for a
// single workbook archive.
func runFix(workbookPath string) error {
	// =========================================================================
	// STEP 1: LOAD FIX RULES
	// =========================================================================
	// The built-in rules cover the known Tableau schema violations. A YAML
	// rules file given with --config replaces them.

	rules, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load fix rules: %w", err)
	}
	logger.Debugw("loaded fix rules",
		"disallowed_elements", rules.DisallowedElements,
		"misplaced_containers", len(rules.MisplacedContainers),
		"attribute_fixes", len(rules.AttributeFixes),
	)

	// =========================================================================
	// STEP 2: RUN THE PIPELINE
	// =========================================================================
	// The fixer owns the whole run: extract, apply passes, repackage, clean up.

	f := fixer.New(workbookPath, rules, fixer.Options{
		OutputPath: outputPath,
		DryRun:     dryRun,
		KeepTemp:   keepTemp,
		Verify:     verify,
	}, logger)

	result, err := f.Run()
	if err != nil {
		return err
	}

	// =========================================================================
	// STEP 3: PRINT SUMMARY
	// =========================================================================

	fmt.Println()
	if dryRun {
		fmt.Println("✓ Dry run complete, no files were written")
	} else {
		fmt.Printf("✓ Fixed workbook saved to: %s\n", result.OutputPath)
	}
	fmt.Printf("  Original size: %d bytes\n", result.OriginalSize)
	fmt.Printf("  Fixed size:    %d bytes\n", result.FixedSize)
	fmt.Printf("  UUIDs normalized:    %d\n", result.Stats.UUIDsNormalized)
	fmt.Printf("  Elements removed:    %d\n", result.Stats.ElementsRemoved)
	fmt.Printf("  Containers removed:  %d\n", result.Stats.ContainersRemoved)
	fmt.Printf("  Attributes rewritten: %d\n", result.Stats.AttributesFixed)
	fmt.Printf("  Time elapsed:        %s\n", result.Duration)

	if !dryRun {
		fmt.Printf("\n✓ Success! You can now open: %s\n", result.OutputPath)
	}
	return nil
}

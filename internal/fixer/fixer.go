// =============================================================================
// Tableau Workbook Fixer - Pipeline Module
// =============================================================================
//
// This module contains the core repair logic. It orchestrates the entire
// pipeline for a single workbook archive, from extraction to repackaging.
//
// REPAIR PIPELINE:
//   1. Open the input archive (fails if it does not exist)
//   2. Extract it into a fresh scratch directory and locate the .twb
//   3. Read the document text
//   4. Apply the four fix passes in order
//   5. Write the repaired text back over the extracted document
//   6. Repackage the scratch tree into <stem>_fixed.twbx
//   7. Remove the scratch directory
//
// ERROR PROPAGATION:
//   No error is caught or recovered inside the pipeline; any failure in
//   extraction, transformation, or repackaging aborts the entire run and
//   propagates to the caller. The scratch directory is deliberately left
//   behind on failure so the partially processed document can be inspected.
//
// =============================================================================

package fixer

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/tableau-tools/twbfix/internal/config"
	"github.com/tableau-tools/twbfix/internal/workbook"
	"github.com/tableau-tools/twbfix/pkg/utils"
	"go.uber.org/zap"
)

// =============================================================================
// OPTIONS AND RESULT STRUCTURES
// =============================================================================

// Options controls a single repair run.
type Options struct {
	// OutputPath overrides the derived <stem>_fixed.twbx path.
	// Empty means derive it from the input path.
	OutputPath string

	// DryRun applies the fix passes and reports counts without writing
	// the document back or producing an output archive.
	DryRun bool

	// KeepTemp preserves the scratch directory after a successful run.
	KeepTemp bool

	// Verify parses the repaired document after the passes to confirm
	// it is well-formed XML.
	Verify bool

	// Progress receives the stage-by-stage progress lines.
	// Nil means standard output.
	Progress io.Writer
}

// Result represents the outcome of repairing a single workbook.
type Result struct {
	// InputPath is the archive that was processed.
	InputPath string

	// OutputPath is the repaired archive. Empty on dry runs.
	OutputPath string

	// OriginalSize is the document size in bytes before the passes.
	OriginalSize int

	// FixedSize is the document size in bytes after the passes.
	FixedSize int

	// Stats contains per-pass change counts.
	Stats PassStats

	// Duration is the time taken for the whole run.
	Duration time.Duration
}

// =============================================================================
// FIXER STRUCTURE
// =============================================================================

// Fixer repairs a single workbook archive.
type Fixer struct {
	// workbookPath is the path to the input .twbx archive.
	workbookPath string

	// rules is the data-driven rule set for passes 2-4.
	rules *config.FixRules

	// opts controls this run.
	opts Options

	// log is the diagnostic logger.
	log *zap.SugaredLogger
}

// New creates a Fixer for one workbook archive.
func New(workbookPath string, rules *config.FixRules, opts Options, log *zap.SugaredLogger) *Fixer {
	if opts.Progress == nil {
		opts.Progress = os.Stdout
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Fixer{
		workbookPath: workbookPath,
		rules:        rules,
		opts:         opts,
		log:          log,
	}
}

// =============================================================================
// MAIN PIPELINE
// =============================================================================

// Run executes the whole repair pipeline and returns its Result.
func (f *Fixer) Run() (*Result, error) {
	start := time.Now()
	result := &Result{InputPath: f.workbookPath}

	f.progress("Processing: %s", f.workbookPath)

	// =========================================================================
	// STEP 1: EXTRACT THE WORKBOOK
	// =========================================================================

	f.progress("Extracting workbook...")

	wb, err := workbook.Open(f.workbookPath)
	if err != nil {
		return nil, err
	}
	if size, err := utils.GetFileSize(f.workbookPath); err == nil {
		f.log.Debugw("opened workbook archive", "path", f.workbookPath, "bytes", size)
	}

	if err := wb.Extract(); err != nil {
		return nil, err
	}
	f.log.Debugw("extracted workbook", "scratch_dir", wb.ScratchDir, "document", wb.Document)

	// =========================================================================
	// STEP 2: READ THE DOCUMENT
	// =========================================================================

	f.progress("Reading XML content...")

	raw, err := os.ReadFile(wb.Document)
	if err != nil {
		return nil, fmt.Errorf("failed to read document %s: %w", wb.Document, err)
	}
	content := string(raw)
	result.OriginalSize = len(content)

	// =========================================================================
	// STEP 3: APPLY THE FIX PASSES
	// =========================================================================
	// The order is fixed; see passes.go.

	f.progress("Applying fixes...")

	f.progress("  - Normalizing malformed UUIDs...")
	content, result.Stats.UUIDsNormalized = NormalizeUUIDs(content)

	f.progress("  - Removing disallowed elements...")
	content, result.Stats.ElementsRemoved = RemoveDisallowedElements(content, f.rules.DisallowedElements)

	f.progress("  - Removing misplaced container elements...")
	content, result.Stats.ContainersRemoved = RemoveMisplacedContainers(content, f.rules.MisplacedContainers)

	f.progress("  - Fixing attribute enumeration values...")
	content, result.Stats.AttributesFixed = FixAttributeValues(content, f.rules.AttributeFixes)

	result.FixedSize = len(content)
	f.log.Debugw("passes complete",
		"uuids_normalized", result.Stats.UUIDsNormalized,
		"elements_removed", result.Stats.ElementsRemoved,
		"containers_removed", result.Stats.ContainersRemoved,
		"attributes_fixed", result.Stats.AttributesFixed,
	)

	// =========================================================================
	// STEP 4: VERIFY (OPTIONAL)
	// =========================================================================

	if f.opts.Verify {
		f.progress("Verifying document well-formedness...")
		if err := VerifyWellFormed(content); err != nil {
			return nil, err
		}
	}

	// =========================================================================
	// STEP 5: WRITE BACK AND REPACKAGE
	// =========================================================================

	if f.opts.DryRun {
		f.progress("Dry run: skipping write and repackage")
		if !f.opts.KeepTemp {
			if err := wb.Cleanup(); err != nil {
				return nil, err
			}
		}
		result.Duration = time.Since(start)
		return result, nil
	}

	f.progress("Writing fixed XML...")
	if err := os.WriteFile(wb.Document, []byte(content), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write document %s: %w", wb.Document, err)
	}

	outputPath := f.opts.OutputPath
	if outputPath == "" {
		outputPath = utils.FixedOutputPath(f.workbookPath)
	}
	result.OutputPath = outputPath

	f.progress("Repackaging workbook to: %s", outputPath)
	if err := wb.Repackage(outputPath); err != nil {
		return nil, err
	}

	// =========================================================================
	// STEP 6: CLEAN UP
	// =========================================================================

	if f.opts.KeepTemp {
		f.progress("Keeping temporary files in: %s", wb.ScratchDir)
	} else {
		f.progress("Cleaning up temporary files...")
		if err := wb.Cleanup(); err != nil {
			return nil, err
		}
	}

	result.Duration = time.Since(start)
	return result, nil
}

// progress prints a single stage line to the run's progress writer.
func (f *Fixer) progress(format string, args ...any) {
	fmt.Fprintf(f.opts.Progress, format+"\n", args...)
}

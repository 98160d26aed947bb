// =============================================================================
// Tableau Workbook Fixer - File Manager Utility
// =============================================================================
//
// This module provides the path derivation and file helpers the fixer
// relies on:
//   - Derived output naming (<stem>_fixed<ext> beside the input)
//   - Scratch directory naming (<stem>_temp in the working directory)
//   - File existence and size checks
//
// =============================================================================

package utils

import (
	"os"
	"path/filepath"
	"strings"
)

// =============================================================================
// DERIVED PATHS
// =============================================================================

// fixedSuffix is appended to the input stem for the output archive name.
const fixedSuffix = "_fixed"

// scratchSuffix is appended to the input stem for the scratch directory name.
const scratchSuffix = "_temp"

// FixedOutputPath derives the output archive path for an input archive:
// the input's stem plus "_fixed", with the original extension, in the same
// parent directory as the input.
//
// EXAMPLE:
//   Input:  "reports/Covid Dashboard.twbx"
//   Output: "reports/Covid Dashboard_fixed.twbx"
func FixedOutputPath(inputPath string) string {
	dir := filepath.Dir(inputPath)
	base := filepath.Base(inputPath)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return filepath.Join(dir, stem+fixedSuffix+ext)
}

// ScratchDirName derives the scratch directory name for an input archive:
// the input's stem plus "_temp", relative to the process working directory.
//
// EXAMPLE:
//   Input:  "reports/Covid Dashboard.twbx"
//   Output: "Covid Dashboard_temp"
func ScratchDirName(inputPath string) string {
	base := filepath.Base(inputPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return stem + scratchSuffix
}

// =============================================================================
// FILE HELPERS
// =============================================================================

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// GetFileSize returns the size of a file in bytes.
func GetFileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// =============================================================================
// Tableau Workbook Fixer - Main Entry Point
// =============================================================================
//
// This is the main entry point for the Tableau Workbook Fixer CLI application.
// It initializes the Cobra CLI framework and delegates command execution to
// the cmd package.
//
// USAGE:
//   twbfix fix <workbook.twbx>     - Repair the workbook XML and repackage it
//   twbfix inspect <workbook.twbx> - List archive members and data sources
//   twbfix version                 - Display the application version
//
// ARCHITECTURE:
//   This application follows a modular design where:
//   - cmd/           : Contains all CLI command definitions (Cobra)
//   - internal/      : Contains core business logic (not for external import)
//   - pkg/           : Contains shared utilities
//
// =============================================================================

package main

import (
	"github.com/tableau-tools/twbfix/cmd"
)

// main is the entry point of the application.
// It simply calls the Execute function from the cmd package, which
// initializes and runs the Cobra CLI.
func main() {
	cmd.Execute()
}

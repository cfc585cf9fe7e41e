// =============================================================================
// Slip Report - Main Entry Point
// =============================================================================
//
// USAGE:
//   slipreport analyze [files...]  - Analyze slip exports and write reports
//   slipreport serve               - Serve the analysis API over HTTP
//   slipreport version             - Display the application version
//
// LAYOUT:
//   - cmd/       : CLI command definitions (Cobra)
//   - internal/  : parsing, aggregation, reports, sorting, export, server
//   - pkg/       : shared file utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/slip-report/cmd"
)

func main() {
	cmd.Execute()
}

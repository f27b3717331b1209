// =============================================================================
// Bill Transformer - Main Entry Point
// =============================================================================
//
// USAGE:
//   billx process   - Convert bill exports in the input directory
//   billx classify  - Show how transaction names are classified
//   billx validate  - Validate configuration and keyword table
//   billx serve     - Serve the upload endpoint over HTTP
//   billx version   - Display the application version
//
// LAYOUT:
//   cmd/        : CLI commands (Cobra)
//   internal/   : Decoding, classification, conversion and output
//   pkg/utils/  : File discovery, archiving and run logs
//   configs/    : Example keyword table
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/bill-transformer/cmd"
)

func main() {
	cmd.Execute()
}

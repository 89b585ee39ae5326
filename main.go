// =============================================================================
// IVA Book Reconciler - Main Entry Point
// =============================================================================
//
// USAGE:
//   ivarecon reconcile  - Check an invoice book against its breakdown book
//   ivarecon inspect    - Decode one line of a book
//   ivarecon books      - List the supported book layouts
//   ivarecon version    - Display the application version
//
// ARCHITECTURE:
//   - cmd/       : CLI command definitions (Cobra)
//   - internal/  : book layouts, parsing, reconciliation, validation, reports
//   - pkg/utils  : file naming and output helpers
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/IVA-book-reconciler/cmd"
)

func main() {
	cmd.Execute()
}

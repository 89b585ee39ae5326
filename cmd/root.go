// =============================================================================
// IVA Book Reconciler - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Every other command
// is attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (ivarecon)
//   ├── reconcileCmd (ivarecon reconcile)
//   ├── inspectCmd   (ivarecon inspect)
//   ├── booksCmd     (ivarecon books)
//   └── versionCmd   (ivarecon version)
//
// CONFIGURATION:
//   The root command owns the global flags (--config, --env-file, --verbose)
//   and the loadRuntime helper that turns them into a configuration and a
//   logger for the subcommands.
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/IVA-book-reconciler/internal/config"
	"github.com/ginjaninja78/IVA-book-reconciler/internal/logging"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
var cfgFile string

// envFile is loaded into the environment before the AFIP_* overrides.
var envFile string

// verbose forces debug logging.
var verbose bool

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

var rootCmd = &cobra.Command{
	Use:   "ivarecon",
	Short: "IVA Book Reconciler - Check and correct AFIP Libro IVA Digital books",
	Long: `IVA Book Reconciler checks an AFIP "Libro IVA Digital" invoice book against
its tax-rate breakdown book and writes a corrected copy of the invoice book.

Checks:
  - Declared totals that disagree with the sum of their parts
  - Counterpart tax IDs rejected by the document validator

Example Usage:
  ivarecon reconcile --book1 ventas_cbte.txt --book1-type libro_iva_digital_ventas_cbte \
                     --book2 ventas_alicuotas.txt --book2-type libro_iva_digital_ventas_alicuota
  ivarecon inspect --file ventas_cbte.txt --type libro_iva_digital_ventas_cbte --line 3
  ivarecon books`,

	SilenceUsage: true,

	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
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

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the main configuration file",
	)

	rootCmd.PersistentFlags().StringVar(
		&envFile,
		"env-file",
		".env",
		"Path to a .env file with the AFIP_* settings",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}

// loadRuntime loads the configuration and builds the logger. The returned
// function flushes the logger.
func loadRuntime() (*config.MainConfig, *zap.Logger, func(), error) {
	mainConfig, err := config.LoadMainConfig(cfgFile, envFile)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load main config: %w", err)
	}

	level := mainConfig.LogLevel
	if verbose {
		level = "debug"
	}

	logger, closeLogger, err := logging.New(level, mainConfig.LogFile)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to set up logging: %w", err)
	}

	return mainConfig, logger, closeLogger, nil
}

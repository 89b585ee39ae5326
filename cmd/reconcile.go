// =============================================================================
// IVA Book Reconciler - Reconcile Command
// =============================================================================
//
// This file defines the 'reconcile' command, the main command of the tool.
// It checks an invoice book against its tax-rate breakdown book and writes
// the corrected invoice book and the reports.
//
// COMMAND USAGE:
//   ivarecon reconcile --book1 FILE --book1-type KEY --book2 FILE --book2-type KEY [flags]
//
// FLAGS:
//   --book1, --book1-type : the invoice book and its layout key
//   --book2, --book2-type : the breakdown book and its layout key
//   --output              : output directory (default from config)
//   --threshold           : tolerated gap between totals (default from config)
//   --report-format       : report formats, repeatable (default from config)
//   --skip-validator      : do not check counterpart tax IDs
//
// EXIT STATUS:
//   Non-zero when the run fails. Corrections that could not be placed are
//   reported but do not fail the run.
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/IVA-book-reconciler/internal/reconcile"
	"github.com/ginjaninja78/IVA-book-reconciler/internal/report"
	"github.com/ginjaninja78/IVA-book-reconciler/internal/schema"
	"github.com/ginjaninja78/IVA-book-reconciler/internal/validation"
	"github.com/ginjaninja78/IVA-book-reconciler/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	book1File     string
	book1Type     string
	book2File     string
	book2Type     string
	outputDir     string
	threshold     float64
	reportFormats []string
	skipValidator bool
)

// =============================================================================
// RECONCILE COMMAND DEFINITION
// =============================================================================

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile an invoice book against its tax-rate breakdown",
	Long: `The reconcile command reads both books, matches their lines by position and
checks every declared total of the invoice book against the sum of the
amounts of both books on that line. Counterpart tax IDs are checked with the
configured document validator.

When anything is found, a corrected copy of the invoice book is written as
{name}_modificated{ext} in the output directory. The source files are never
modified. A report of the run is always written.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runReconcile(cmd)
	},
}

func init() {
	rootCmd.AddCommand(reconcileCmd)

	reconcileCmd.Flags().StringVar(&book1File, "book1", "", "Invoice book file")
	reconcileCmd.Flags().StringVar(&book1Type, "book1-type", schema.SalesInvoices, "Layout key of the invoice book")
	reconcileCmd.Flags().StringVar(&book2File, "book2", "", "Tax-rate breakdown book file")
	reconcileCmd.Flags().StringVar(&book2Type, "book2-type", schema.SalesBreakdown, "Layout key of the breakdown book")
	reconcileCmd.Flags().StringVar(&outputDir, "output", "", "Output directory (overrides output_dir)")
	reconcileCmd.Flags().Float64Var(&threshold, "threshold", 0, "Tolerated gap between totals (overrides threshold)")
	reconcileCmd.Flags().StringSliceVar(&reportFormats, "report-format", nil, "Report formats: json, xlsx (overrides report.formats)")
	reconcileCmd.Flags().BoolVar(&skipValidator, "skip-validator", false, "Skip the counterpart tax ID checks")

	_ = reconcileCmd.MarkFlagRequired("book1")
	_ = reconcileCmd.MarkFlagRequired("book2")
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

func runReconcile(cmd *cobra.Command) error {
	if err := checkBookFiles(map[string]string{"--book1": book1File, "--book2": book2File}); err != nil {
		return err
	}

	mainConfig, logger, closeLogger, err := loadRuntime()
	if err != nil {
		return err
	}
	defer closeLogger()

	// =========================================================================
	// STEP 1: APPLY FLAG OVERRIDES
	// =========================================================================

	if outputDir == "" {
		outputDir = mainConfig.OutputDir
	}
	if cmd.Flags().Changed("threshold") {
		if threshold < 0 {
			return fmt.Errorf("threshold must not be negative, got %v", threshold)
		}
		mainConfig.Threshold = &threshold
	}
	if len(reportFormats) > 0 {
		mainConfig.Report.Formats = reportFormats
	}

	// =========================================================================
	// STEP 2: BUILD THE ENGINE
	// =========================================================================

	opts, err := reconcile.OptionsFromConfig(mainConfig)
	if err != nil {
		return err
	}

	reporter, err := report.FromConfig(mainConfig.Report)
	if err != nil {
		return err
	}

	var validator validation.DocumentValidator = validation.NoopValidator{}
	if skipValidator {
		logger.Info("document validation skipped")
	} else {
		validator, err = validation.FromConfig(mainConfig.Validator, logger)
		if err != nil {
			return err
		}
	}

	engine := reconcile.NewEngine(opts, validator, reporter, logger)

	// =========================================================================
	// STEP 3: RUN
	// =========================================================================

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Println("=== IVA Book Reconciler ===")

	result, err := engine.Reconcile(ctx, reconcile.Request{
		FileA:     book1File,
		KeyA:      book1Type,
		FileB:     book2File,
		KeyB:      book2Type,
		OutputDir: outputDir,
	})
	if err != nil {
		logger.Error("reconciliation failed", zap.Error(err))
		return err
	}

	// =========================================================================
	// STEP 4: PRINT SUMMARY
	// =========================================================================

	fmt.Println(result.Message)
	fmt.Printf("Time elapsed:      %s\n", result.Stats.ProcessingTime)

	if result.Stats.ValidatorFailed {
		fmt.Println("\nDocument validation failed, see the log. Only totals were checked.")
	}
	if len(result.Misses) > 0 {
		fmt.Printf("\n%d correction(s) could not be placed", len(result.Misses))
		if result.MissLogPath != "" {
			fmt.Printf(", see %s", result.MissLogPath)
		}
		fmt.Println()
	}

	return nil
}

// checkBookFiles fails with the flag name when a book is not an existing
// regular file.
func checkBookFiles(books map[string]string) error {
	for _, flag := range []string{"--book1", "--book2"} {
		path, ok := books[flag]
		if !ok {
			continue
		}
		if !utils.FileExists(path) {
			return fmt.Errorf("%s: book file %q not found", flag, path)
		}
	}
	return nil
}

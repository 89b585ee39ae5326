// =============================================================================
// IVA Book Reconciler - Reconciliation Engine
// =============================================================================
//
// This module runs a whole reconciliation of an invoice book (A) against
// its tax-rate breakdown book (B).
//
// PIPELINE:
//   1. Look up both book schemas
//   2. Parse book A and book B
//   3. Check that both hold the same number of lines
//   4. Merge the books by line number and compute line totals
//   5. Detect declared totals of A that disagree with the computed ones
//   6. Ask the document validator which tax IDs of A must be replaced
//   7. Write a patched copy of A, when anything was found
//   8. Write the reports
//
// Steps 1 to 5 and 7 fail the run with a *ProcessingError. A validator
// failure only costs the document checks. A correction that cannot be
// placed in the file is logged and reported, never fatal.
//
// =============================================================================

package reconcile

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ginjaninja78/IVA-book-reconciler/internal/bookparser"
	"github.com/ginjaninja78/IVA-book-reconciler/internal/patcher"
	"github.com/ginjaninja78/IVA-book-reconciler/internal/report"
	"github.com/ginjaninja78/IVA-book-reconciler/internal/schema"
	"github.com/ginjaninja78/IVA-book-reconciler/internal/types"
	"github.com/ginjaninja78/IVA-book-reconciler/internal/validation"
	"github.com/ginjaninja78/IVA-book-reconciler/pkg/utils"
)

// =============================================================================
// REQUEST AND RESULT
// =============================================================================

// Request names the two books of a run.
type Request struct {
	FileA string
	KeyA  string
	FileB string
	KeyB  string

	// OutputDir receives the patched book and the reports.
	OutputDir string
}

// Result is the outcome of a successful run.
type Result struct {
	Success bool

	// Message is a short human-readable summary.
	Message string

	Stats ProcessingStats

	// PatchedFile is empty when nothing had to be corrected.
	PatchedFile string

	ReportPaths []string

	// MissLogPath is the patch-miss log, when any correction was missed.
	MissLogPath string

	Discrepancies []types.Discrepancy
	Misses        []patcher.PatchMiss
}

// ProcessingStats contains statistics about the run.
type ProcessingStats struct {
	LinesA int
	LinesB int

	TotalDifferences    int
	DocumentAnomalies   int
	CorrectionsApplied  int
	CorrectionsMissed   int
	ValidatorFailed     bool
	DocumentsSubmitted  int
	DocumentsNotNumeric int

	ProcessingTime time.Duration
}

// =============================================================================
// ENGINE
// =============================================================================

// Options tune the checks of an Engine. Zero fields other than Threshold
// select the defaults; start from DefaultOptions to get the default
// threshold.
type Options struct {
	Threshold     decimal.Decimal
	CompareField  int
	DocumentField int
	GenericIDs    GenericIDs
	Charset       bookparser.Charset
}

// Engine reconciles pairs of books.
type Engine struct {
	opts      Options
	validator validation.DocumentValidator
	reporter  report.Writer
	patcher   *patcher.Writer
	logger    *zap.Logger
	now       func() time.Time
}

// DefaultOptions returns the options used by the AFIP books.
func DefaultOptions() Options {
	return Options{
		Threshold:     DefaultThreshold,
		CompareField:  schema.DefaultCompareField,
		DocumentField: schema.DefaultDocumentField,
		GenericIDs:    DefaultGenericIDs,
		Charset:       bookparser.DefaultCharset(),
	}
}

// NewEngine returns an Engine. A nil validator flags nothing and a nil
// reporter writes no report.
func NewEngine(opts Options, validator validation.DocumentValidator, reporter report.Writer, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validator == nil {
		validator = validation.NoopValidator{}
	}
	if reporter == nil {
		reporter = report.MultiWriter{}
	}
	if opts.CompareField == 0 {
		opts.CompareField = schema.DefaultCompareField
	}
	if opts.DocumentField == 0 {
		opts.DocumentField = schema.DefaultDocumentField
	}
	if opts.GenericIDs == (GenericIDs{}) {
		opts.GenericIDs = DefaultGenericIDs
	}
	if opts.Charset == nil {
		opts.Charset = bookparser.DefaultCharset()
	}

	return &Engine{
		opts:      opts,
		validator: validator,
		reporter:  reporter,
		patcher:   patcher.New(logger),
		logger:    logger,
		now:       time.Now,
	}
}

// Reconcile runs the whole pipeline for req.
func (e *Engine) Reconcile(ctx context.Context, req Request) (*Result, error) {
	start := e.now()
	runID := uuid.New().String()
	logger := e.logger.With(zap.String("run_id", runID))

	logger.Info("starting reconciliation",
		zap.String("book_a", req.KeyA),
		zap.String("book_b", req.KeyB))

	result := &Result{}

	// =========================================================================
	// STEP 1-2: SCHEMAS AND PARSING
	// =========================================================================

	schemaA, err := schema.Lookup(req.KeyA)
	if err != nil {
		return nil, processingError(err.Error(), err)
	}
	schemaB, err := schema.Lookup(req.KeyB)
	if err != nil {
		return nil, processingError(err.Error(), err)
	}

	recordsA, err := bookparser.Parse(req.FileA, schemaA, e.opts.Charset, logger)
	if err != nil {
		return nil, processingError(fmt.Sprintf("failed to parse %s", req.FileA), err)
	}
	recordsB, err := bookparser.Parse(req.FileB, schemaB, e.opts.Charset, logger)
	if err != nil {
		return nil, processingError(fmt.Sprintf("failed to parse %s", req.FileB), err)
	}
	result.Stats.LinesA = len(recordsA)
	result.Stats.LinesB = len(recordsB)

	// =========================================================================
	// STEP 3-4: LENGTH CHECK, MERGE, TOTALS
	// =========================================================================

	if err := CheckLengths(req.KeyA, recordsA, req.KeyB, recordsB); err != nil {
		logger.Error("books differ in length", zap.Error(err))
		return nil, processingError(err.Error(), err)
	}

	merged := Merge(req.KeyA, recordsA, req.KeyB, recordsB)
	AddTotals(merged, logger)

	// =========================================================================
	// STEP 5-6: DISCREPANCIES
	// =========================================================================

	totals, err := DetectTotals(merged, req.KeyA, e.opts.CompareField, e.opts.Threshold, logger)
	if err != nil {
		return nil, processingError("failed to compare totals", err)
	}
	discrepancies := FormatTotalDifferences(totals, schemaA, e.opts.CompareField)
	result.Stats.TotalDifferences = len(discrepancies)

	documents := e.documentAnomalies(ctx, merged, req.KeyA, schemaA, &result.Stats, logger)
	discrepancies = append(discrepancies, documents...)
	result.Stats.DocumentAnomalies = len(documents)
	result.Discrepancies = discrepancies

	if err := ctx.Err(); err != nil {
		return nil, processingError("reconciliation cancelled", err)
	}

	// =========================================================================
	// STEP 7: PATCH
	// =========================================================================

	if len(discrepancies) > 0 {
		patched, err := e.patcher.Apply(discrepancies, req.FileA, req.OutputDir)
		if err != nil {
			return nil, processingError("failed to write patched file", err)
		}
		result.PatchedFile = patched.OutputPath
		result.Misses = patched.Misses
		result.Stats.CorrectionsApplied = patched.Applied
		result.Stats.CorrectionsMissed = len(patched.Misses)

		if len(patched.Misses) > 0 {
			path, err := utils.WritePatchMissLog(missEntries(patched.Misses), req.FileA, req.OutputDir, start)
			if err != nil {
				logger.Warn("failed to write patch-miss log", zap.Error(err))
			}
			result.MissLogPath = path
		}
	} else {
		logger.Info("no differences found between the books")
	}

	// =========================================================================
	// STEP 8: REPORT
	// =========================================================================

	paths, err := e.reporter.Write(ctx, report.Input{
		RunID:         runID,
		Timestamp:     start,
		OutputDir:     req.OutputDir,
		PrimaryBook:   req.KeyA,
		CompareField:  e.opts.CompareField,
		Merged:        merged,
		Discrepancies: discrepancies,
	})
	if err != nil {
		return nil, processingError("failed to write report", err)
	}
	result.ReportPaths = paths

	result.Success = true
	result.Stats.ProcessingTime = e.now().Sub(start)
	result.Message = summary(merged.Len(), result)

	logger.Info("reconciliation completed",
		zap.Int("discrepancies", len(discrepancies)),
		zap.Int("applied", result.Stats.CorrectionsApplied),
		zap.Duration("elapsed", result.Stats.ProcessingTime))

	return result, nil
}

// documentAnomalies asks the validator about the documents of bookKey. Any
// validator failure is logged and yields no anomalies.
func (e *Engine) documentAnomalies(ctx context.Context, merged *types.MergedBooks, bookKey string, s *schema.BookSchema, stats *ProcessingStats, logger *zap.Logger) []types.Discrepancy {
	field, ok := s.Field(e.opts.DocumentField)
	if !ok {
		logger.Warn("book has no document field, skipping document checks",
			zap.String("book", bookKey),
			zap.Int("field", e.opts.DocumentField))
		return nil
	}

	ids := ExtractDocumentIDs(merged, bookKey, e.opts.DocumentField, logger)
	numbers := DistinctNumbers(ids)
	stats.DocumentsSubmitted = len(numbers)
	for _, id := range ids {
		if !id.Valid {
			stats.DocumentsNotNumeric++
		}
	}

	if len(numbers) == 0 {
		logger.Warn("no document to validate")
		return nil
	}

	invalid, err := e.validator.Validate(ctx, numbers)
	if err != nil {
		stats.ValidatorFailed = true
		logger.Error("document validation failed, continuing without document checks", zap.Error(err))
		return nil
	}

	return MapAnomalies(ids, invalid, e.opts.GenericIDs, field.Start, logger)
}

func missEntries(misses []patcher.PatchMiss) []utils.PatchMissEntry {
	out := make([]utils.PatchMissEntry, len(misses))
	for i, m := range misses {
		out[i] = utils.PatchMissEntry{
			LineNumber: m.Discrepancy.LineNumber,
			Kind:       string(m.Discrepancy.Kind),
			Reason:     string(m.Reason),
			Original:   m.Discrepancy.Original,
			Corrected:  m.Discrepancy.Corrected,
		}
	}
	return out
}

func summary(lines int, r *Result) string {
	var b strings.Builder
	b.WriteString("Processing summary:")
	fmt.Fprintf(&b, "\nProcessed lines: %d", lines)
	fmt.Fprintf(&b, "\nDifferences found: %d", len(r.Discrepancies))
	if r.PatchedFile != "" {
		fmt.Fprintf(&b, "\nCorrections applied: %d of %d", r.Stats.CorrectionsApplied, len(r.Discrepancies))
		fmt.Fprintf(&b, "\nPatched file: %s", r.PatchedFile)
	}
	for _, p := range r.ReportPaths {
		fmt.Fprintf(&b, "\nReport file: %s", p)
	}
	return b.String()
}

// =============================================================================
// IVA Book Reconciler - Report Writers
// =============================================================================
//
// This module writes the artifacts describing a reconciliation run: the
// merged line data and the list of discrepancies found.
//
// WRITERS:
//   - JSONWriter: final_report_{datetime}.json, UTF-8
//   - XLSXWriter: final_report_{datetime}.xlsx with "Differences" and
//                 "Lines" sheets
//   - MultiWriter: runs several writers in order
//
// FromConfig builds the writer set from the configured format list.
//
// =============================================================================

package report

import (
	"context"
	"fmt"
	"time"

	"github.com/ginjaninja78/IVA-book-reconciler/internal/config"
	"github.com/ginjaninja78/IVA-book-reconciler/internal/types"
	"github.com/ginjaninja78/IVA-book-reconciler/pkg/utils"
)

// QueryDateLayout is the layout of the "query_date" key (DD/MM/YYYY HH:MM:SS).
const QueryDateLayout = "02/01/2006 15:04:05"

// DefaultFileNameFormat names reports after the run time.
const DefaultFileNameFormat = "final_report_{datetime}"

// Input is everything a report describes.
type Input struct {
	RunID     string
	Timestamp time.Time
	OutputDir string

	// PrimaryBook is the book whose declared totals were checked, and
	// CompareField the field holding them.
	PrimaryBook  string
	CompareField int

	Merged        *types.MergedBooks
	Discrepancies []types.Discrepancy
}

// Writer writes one or more report files and returns their paths.
type Writer interface {
	Write(ctx context.Context, in Input) ([]string, error)
}

// MultiWriter runs every writer and collects their paths. It stops at the
// first failure.
type MultiWriter []Writer

func (m MultiWriter) Write(ctx context.Context, in Input) ([]string, error) {
	var paths []string
	for _, w := range m {
		if err := ctx.Err(); err != nil {
			return paths, err
		}
		p, err := w.Write(ctx, in)
		paths = append(paths, p...)
		if err != nil {
			return paths, err
		}
	}
	return paths, nil
}

// FromConfig returns the writers selected by cfg.Formats.
func FromConfig(cfg config.ReportConfig) (Writer, error) {
	var m MultiWriter
	for _, format := range cfg.Formats {
		switch format {
		case "json":
			m = append(m, &JSONWriter{FileNameFormat: cfg.FileNameFormat, IncludeSummary: cfg.IncludeSummary})
		case "xlsx":
			m = append(m, &XLSXWriter{FileNameFormat: cfg.FileNameFormat})
		default:
			return nil, fmt.Errorf("unknown report format %q", format)
		}
	}
	return m, nil
}

// fileName expands format for in, adding ext.
func fileName(format string, in Input, ext string) string {
	if format == "" {
		format = DefaultFileNameFormat
	}
	return utils.GenerateOutputFileName(format, map[string]string{"run_id": in.RunID}, in.Timestamp, ext)
}

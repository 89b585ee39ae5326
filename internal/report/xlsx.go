package report

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/IVA-book-reconciler/internal/codec"
	"github.com/ginjaninja78/IVA-book-reconciler/pkg/utils"
)

// Sheet names of the XLSX report.
const (
	DifferencesSheet = "Differences"
	LinesSheet       = "Lines"
)

// XLSXWriter writes the run as a workbook for manual review.
//
// SHEETS:
//   Differences: Line | Kind | Correct value | Actual value
//   Lines:       Line | <book> summed total ... | Merged total | Declared total
type XLSXWriter struct {
	FileNameFormat string
}

func (w *XLSXWriter) Write(ctx context.Context, in Input) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetSheetName(f.GetSheetName(0), DifferencesSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := writeDifferences(f, in, header); err != nil {
		return nil, err
	}

	if _, err := f.NewSheet(LinesSheet); err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := writeLines(f, in, header); err != nil {
		return nil, err
	}

	if err := utils.EnsureDir(in.OutputDir); err != nil {
		return nil, err
	}
	path := filepath.Join(in.OutputDir, fileName(w.FileNameFormat, in, ".xlsx"))
	if err := f.SaveAs(path); err != nil {
		return nil, fmt.Errorf("failed to save workbook: %w", err)
	}

	return []string{path}, nil
}

func writeDifferences(f *excelize.File, in Input, style int) error {
	if err := setRow(f, DifferencesSheet, 1, []any{"Line", "Kind", "Correct value", "Actual value"}); err != nil {
		return err
	}
	if err := f.SetCellStyle(DifferencesSheet, "A1", "D1", style); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, d := range in.Discrepancies {
		if err := setRow(f, DifferencesSheet, i+2, []any{d.LineNumber, string(d.Kind), d.Corrected, d.Original}); err != nil {
			return err
		}
	}
	return f.SetColWidth(DifferencesSheet, "C", "D", 24)
}

func writeLines(f *excelize.File, in Input, style int) error {
	if in.Merged == nil {
		return nil
	}

	headers := []any{"Line"}
	for _, key := range in.Merged.Keys {
		headers = append(headers, key)
	}
	headers = append(headers, "Merged total", "Declared total")

	if err := setRow(f, LinesSheet, 1, headers); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(LinesSheet, "A1", last, style); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, line := range in.Merged.Lines() {
		row := []any{line.LineNumber}
		for _, key := range in.Merged.Keys {
			if r, ok := line.Record(key); ok {
				row = append(row, r.Summed.Total.InexactFloat64())
			} else {
				row = append(row, nil)
			}
		}
		row = append(row, line.TotalSummedAmount.InexactFloat64())

		declared := any(nil)
		if r, ok := line.Record(in.PrimaryBook); ok {
			if value, ok := r.Field(in.CompareField); ok {
				if d, err := codec.ParseAmount(value); err == nil {
					declared = d.InexactFloat64()
				}
			}
		}
		row = append(row, declared)

		if err := setRow(f, LinesSheet, i+2, row); err != nil {
			return err
		}
	}

	return f.SetColWidth(LinesSheet, "B", "F", 22)
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}

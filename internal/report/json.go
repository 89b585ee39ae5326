package report

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/IVA-book-reconciler/internal/types"
	"github.com/ginjaninja78/IVA-book-reconciler/pkg/utils"
)

// JSONWriter writes the run as an indented UTF-8 JSON document.
//
// SHAPE:
//   {
//     "run_id": "...",
//     "query_date": "15/01/2024 14:30:22",
//     "processed_data": {"total_records": 2, "data": {"1": {...}}},
//     "differences": {"total": 1, "entries": [{"line": 1, ...}]}
//   }
//
// "processed_data" is only present when IncludeSummary is set.
type JSONWriter struct {
	FileNameFormat string
	IncludeSummary bool
}

type jsonReport struct {
	RunID         string          `json:"run_id,omitempty"`
	QueryDate     string          `json:"query_date"`
	ProcessedData *processedData  `json:"processed_data,omitempty"`
	Differences   jsonDifferences `json:"differences"`
}

type processedData struct {
	TotalRecords int                       `json:"total_records"`
	Data         map[string]map[string]any `json:"data"`
}

type jsonDifferences struct {
	Total   int                 `json:"total"`
	Entries []types.Discrepancy `json:"entries"`
}

type jsonSummed struct {
	ReferencedFields string      `json:"referenced_fields"`
	Total            json.Number `json:"total"`
}

func (w *JSONWriter) Write(ctx context.Context, in Input) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc := jsonReport{
		RunID:     in.RunID,
		QueryDate: in.Timestamp.Format(QueryDateLayout),
		Differences: jsonDifferences{
			Total:   len(in.Discrepancies),
			Entries: in.Discrepancies,
		},
	}
	if doc.Differences.Entries == nil {
		doc.Differences.Entries = []types.Discrepancy{}
	}
	if w.IncludeSummary && in.Merged != nil {
		doc.ProcessedData = &processedData{
			TotalRecords: in.Merged.Len(),
			Data:         lineData(in.Merged),
		}
	}

	body, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}

	if err := utils.EnsureDir(in.OutputDir); err != nil {
		return nil, err
	}
	path := filepath.Join(in.OutputDir, fileName(w.FileNameFormat, in, ".json"))
	if err := os.WriteFile(path, body, 0644); err != nil {
		return nil, fmt.Errorf("failed to write report: %w", err)
	}

	return []string{path}, nil
}

// lineData renders merged lines keyed by line number. Every book record is
// keyed by its book key with fields keyed by field number.
func lineData(merged *types.MergedBooks) map[string]map[string]any {
	data := make(map[string]map[string]any, merged.Len())

	for _, line := range merged.Lines() {
		entry := make(map[string]any, len(line.Records)+1)
		for key, record := range line.Records {
			fields := make(map[string]any, len(record.Fields)+1)
			for n, f := range record.Fields {
				fields[strconv.Itoa(n)] = f
			}
			fields["summed_amounts"] = jsonSummed{
				ReferencedFields: joinInts(record.Summed.ReferencedFields),
				Total:            amount(record.Summed.Total),
			}
			entry[key] = fields
		}
		entry["total_summed_amount"] = amount(line.TotalSummedAmount)
		data[strconv.Itoa(line.LineNumber)] = entry
	}

	return data
}

func amount(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}

func joinInts(ns []int) string {
	out := ""
	for i, n := range ns {
		if i > 0 {
			out += ", "
		}
		out += strconv.Itoa(n)
	}
	return out
}

package report

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/IVA-book-reconciler/internal/config"
	"github.com/ginjaninja78/IVA-book-reconciler/internal/types"
)

const (
	bookA = "libro_iva_digital_ventas_cbte"
	bookB = "libro_iva_digital_ventas_alicuota"
)

func sampleInput(t *testing.T) Input {
	t.Helper()

	merged := types.NewMergedBooks(bookA, bookB)
	merged.Put(bookA, &types.ParsedRecord{
		LineNumber: 1,
		Fields: map[int]types.FieldValue{
			7: {Name: "Buyer identification number", Value: "30111222334"},
			9: {Name: "Total operation amount", Value: "100.00"},
		},
		Summed: types.SummedAmounts{ReferencedFields: []int{10, 11}, Total: decimal.RequireFromString("0")},
	})
	merged.Put(bookB, &types.ParsedRecord{
		LineNumber: 1,
		Fields: map[int]types.FieldValue{
			4: {Name: "Taxed net amount", Value: "83.88"},
		},
		Summed: types.SummedAmounts{ReferencedFields: []int{4, 6}, Total: decimal.RequireFromString("101.5")},
	})
	line, _ := merged.Line(1)
	line.TotalSummedAmount = decimal.RequireFromString("101.5")

	return Input{
		RunID:        "run-1",
		Timestamp:    time.Date(2024, 1, 15, 14, 30, 22, 0, time.Local),
		OutputDir:    filepath.Join(t.TempDir(), "reports"),
		PrimaryBook:  bookA,
		CompareField: 9,
		Merged:       merged,
		Discrepancies: []types.Discrepancy{
			{LineNumber: 1, Kind: types.KindTotal, Corrected: "000000000010150", Original: "000000000010000", Offset: 108},
			{LineNumber: 1, Kind: types.KindDocument, Corrected: "00000000030000000007", Original: "00000000030111222334", Offset: 58},
		},
	}
}

func readJSON(t *testing.T, path string) map[string]any {
	t.Helper()
	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	return doc
}

func TestJSONWriter_DifferencesOnly(t *testing.T) {
	in := sampleInput(t)

	paths, err := (&JSONWriter{}).Write(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, filepath.Join(in.OutputDir, "final_report_2024-01-15_143022.json"), paths[0])

	doc := readJSON(t, paths[0])
	assert.Equal(t, "15/01/2024 14:30:22", doc["query_date"])
	assert.Equal(t, "run-1", doc["run_id"])
	assert.NotContains(t, doc, "processed_data")

	diffs := doc["differences"].(map[string]any)
	assert.Equal(t, float64(2), diffs["total"])

	entries := diffs["entries"].([]any)
	first := entries[0].(map[string]any)
	assert.Equal(t, float64(1), first["line"])
	assert.Equal(t, "total", first["kind"])
	assert.Equal(t, "000000000010150", first["correct_value"])
	assert.Equal(t, "000000000010000", first["actual_value"])
	assert.NotContains(t, first, "Offset")
}

func TestJSONWriter_WithSummary(t *testing.T) {
	in := sampleInput(t)

	paths, err := (&JSONWriter{IncludeSummary: true}).Write(context.Background(), in)
	require.NoError(t, err)

	doc := readJSON(t, paths[0])
	processed := doc["processed_data"].(map[string]any)
	assert.Equal(t, float64(1), processed["total_records"])

	line := processed["data"].(map[string]any)["1"].(map[string]any)
	assert.Equal(t, 101.5, line["total_summed_amount"])

	sales := line[bookA].(map[string]any)
	field := sales["9"].(map[string]any)
	assert.Equal(t, "Total operation amount", field["field_name"])
	assert.Equal(t, "100.00", field["value"])

	summed := line[bookB].(map[string]any)["summed_amounts"].(map[string]any)
	assert.Equal(t, "4, 6", summed["referenced_fields"])
	assert.Equal(t, 101.5, summed["total"])
}

func TestJSONWriter_NoDifferences(t *testing.T) {
	in := sampleInput(t)
	in.Discrepancies = nil

	paths, err := (&JSONWriter{}).Write(context.Background(), in)
	require.NoError(t, err)

	diffs := readJSON(t, paths[0])["differences"].(map[string]any)
	assert.Equal(t, float64(0), diffs["total"])
	assert.Empty(t, diffs["entries"])
}

func TestXLSXWriter(t *testing.T) {
	in := sampleInput(t)

	paths, err := (&XLSXWriter{FileNameFormat: "review_{run_id}"}).Write(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, "review_run-1.xlsx", filepath.Base(paths[0]))

	f, err := excelize.OpenFile(paths[0])
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{DifferencesSheet, LinesSheet}, f.GetSheetList())

	rows, err := f.GetRows(DifferencesSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Line", "Kind", "Correct value", "Actual value"}, rows[0])
	assert.Equal(t, []string{"1", "total", "000000000010150", "000000000010000"}, rows[1])
	assert.Equal(t, "document", rows[2][1])

	rows, err = f.GetRows(LinesSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Line", bookA, bookB, "Merged total", "Declared total"}, rows[0])
	assert.Equal(t, []string{"1", "0", "101.5", "101.5", "100"}, rows[1])
}

type failingWriter struct{}

func (failingWriter) Write(context.Context, Input) ([]string, error) {
	return nil, errors.New("disk full")
}

func TestMultiWriter(t *testing.T) {
	in := sampleInput(t)

	w, err := FromConfig(config.ReportConfig{Formats: []string{"json", "xlsx"}, FileNameFormat: "final_report_{datetime}"})
	require.NoError(t, err)

	paths, err := w.Write(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Equal(t, ".json", filepath.Ext(paths[0]))
	assert.Equal(t, ".xlsx", filepath.Ext(paths[1]))

	paths, err = MultiWriter{&JSONWriter{}, failingWriter{}}.Write(context.Background(), in)
	assert.EqualError(t, err, "disk full")
	assert.Len(t, paths, 1)
}

func TestFromConfig_UnknownFormat(t *testing.T) {
	_, err := FromConfig(config.ReportConfig{Formats: []string{"pdf"}})
	assert.Error(t, err)
}

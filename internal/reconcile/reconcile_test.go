package reconcile

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ginjaninja78/IVA-book-reconciler/internal/codec"
	"github.com/ginjaninja78/IVA-book-reconciler/internal/schema"
	"github.com/ginjaninja78/IVA-book-reconciler/internal/types"
)

func record(line int, total string, fields map[int]string) *types.ParsedRecord {
	r := &types.ParsedRecord{
		LineNumber: line,
		Fields:     make(map[int]types.FieldValue, len(fields)),
		Summed:     types.SummedAmounts{Total: decimal.RequireFromString(total)},
	}
	for n, v := range fields {
		r.Fields[n] = types.FieldValue{Value: v}
	}
	return r
}

func mergedWithDeclared(declared ...string) *types.MergedBooks {
	var a, b []*types.ParsedRecord
	for i, d := range declared {
		a = append(a, record(i+1, "0", map[int]string{9: d}))
		b = append(b, record(i+1, "101.00", nil))
	}
	merged := Merge(schema.SalesInvoices, a, schema.SalesBreakdown, b)
	AddTotals(merged, nil)
	return merged
}

func TestCheckLengths(t *testing.T) {
	a := []*types.ParsedRecord{record(1, "0", nil), record(2, "0", nil), record(3, "0", nil)}
	b := []*types.ParsedRecord{record(1, "0", nil)}

	assert.NoError(t, CheckLengths("a", a, "b", a))

	err := CheckLengths("a", a, "b", b)
	var mismatch *LengthMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, 2, mismatch.Difference())
	assert.Equal(t, "line counts differ by 2 lines: a has 3, b has 1", err.Error())
}

func TestMerge_OrdersLinesAndKeepsBothBooks(t *testing.T) {
	a := []*types.ParsedRecord{record(2, "1.10", nil), record(1, "2.20", nil)}
	b := []*types.ParsedRecord{record(1, "3.30", nil), record(2, "4.40", nil)}

	merged := Merge("a", a, "b", b)
	require.Equal(t, 2, merged.Len())

	lines := merged.Lines()
	assert.Equal(t, 1, lines[0].LineNumber)
	assert.Equal(t, 2, lines[1].LineNumber)

	_, okA := lines[0].Record("a")
	_, okB := lines[0].Record("b")
	assert.True(t, okA)
	assert.True(t, okB)
}

func TestAddTotals_SumsBooksAndIsIdempotent(t *testing.T) {
	merged := Merge("a",
		[]*types.ParsedRecord{record(1, "10.005", nil), record(2, "0", nil)},
		"b",
		[]*types.ParsedRecord{record(1, "5.10", nil)},
	)

	AddTotals(merged, nil)
	first, _ := merged.Line(1)
	assert.Equal(t, "15.11", first.TotalSummedAmount.StringFixed(2))

	AddTotals(merged, nil)
	first, _ = merged.Line(1)
	assert.Equal(t, "15.11", first.TotalSummedAmount.StringFixed(2))

	second, _ := merged.Line(2)
	assert.True(t, second.TotalSummedAmount.IsZero())
}

func TestDetectTotals_Threshold(t *testing.T) {
	// Computed total is 101.00 on every line.
	merged := mergedWithDeclared("101.00", "100.00", "99.99", "102.50")

	diffs, err := DetectTotals(merged, schema.SalesInvoices, 9, DefaultThreshold, nil)
	require.NoError(t, err)

	require.Len(t, diffs, 2)
	assert.Equal(t, 3, diffs[0].LineNumber)
	assert.Equal(t, "99.99", diffs[0].Declared.StringFixed(2))
	assert.Equal(t, 4, diffs[1].LineNumber)
	assert.Equal(t, "101.00", diffs[1].Computed.StringFixed(2))
}

func TestDetectTotals_ZeroThresholdSkipsEqualValues(t *testing.T) {
	merged := mergedWithDeclared("101.00", "101.01")

	diffs, err := DetectTotals(merged, schema.SalesInvoices, 9, decimal.Zero, nil)
	require.NoError(t, err)
	require.Len(t, diffs, 1)
	assert.Equal(t, 2, diffs[0].LineNumber)
}

func TestDetectTotals_MissingFieldCountsAsZero(t *testing.T) {
	merged := Merge(schema.SalesInvoices,
		[]*types.ParsedRecord{record(1, "0", nil)},
		schema.SalesBreakdown,
		[]*types.ParsedRecord{record(1, "5.00", nil)},
	)
	AddTotals(merged, nil)

	diffs, err := DetectTotals(merged, schema.SalesInvoices, 9, DefaultThreshold, nil)
	require.NoError(t, err)
	require.Len(t, diffs, 1)
	assert.True(t, diffs[0].Declared.IsZero())
}

func TestDetectTotals_SkipsLinesWithoutBook(t *testing.T) {
	merged := Merge(schema.SalesInvoices, nil, schema.SalesBreakdown,
		[]*types.ParsedRecord{record(1, "500.00", nil)})
	AddTotals(merged, nil)

	diffs, err := DetectTotals(merged, schema.SalesInvoices, 9, DefaultThreshold, nil)
	require.NoError(t, err)
	assert.Empty(t, diffs)
}

func TestDetectTotals_NonNumericDeclared(t *testing.T) {
	merged := mergedWithDeclared("12,50")

	_, err := DetectTotals(merged, schema.SalesInvoices, 9, DefaultThreshold, nil)
	var formatErr *codec.FormatError
	assert.True(t, errors.As(err, &formatErr))
}

func TestFormatTotalDifferences(t *testing.T) {
	s := schema.MustLookup(schema.SalesInvoices)
	out := FormatTotalDifferences([]types.TotalDifference{{
		LineNumber: 7,
		Computed:   decimal.RequireFromString("101.5"),
		Declared:   decimal.RequireFromString("100"),
	}}, s, 9)

	require.Len(t, out, 1)
	assert.Equal(t, types.Discrepancy{
		LineNumber: 7,
		Kind:       types.KindTotal,
		Corrected:  "000000000010150",
		Original:   "000000000010000",
		Offset:     108,
	}, out[0])

	out = FormatTotalDifferences([]types.TotalDifference{{LineNumber: 1}}, nil, 9)
	assert.Equal(t, types.NoOffset, out[0].Offset)
	assert.Equal(t, "000000000000000", out[0].Corrected)
}

func TestGenericIDs_Replacement(t *testing.T) {
	assert.Equal(t, "00000000030000000007", DefaultGenericIDs.Replacement("30111222334"))
	assert.Equal(t, "00000000020222222223", DefaultGenericIDs.Replacement("20333444556"))
	assert.Equal(t, "00000000020222222223", DefaultGenericIDs.Replacement("27123456780"))
}

func TestExtractDocumentIDs_KeepsPositions(t *testing.T) {
	merged := Merge(schema.SalesInvoices,
		[]*types.ParsedRecord{
			record(1, "0", map[int]string{7: "30111222334"}),
			record(2, "0", map[int]string{7: "ABC"}),
			record(3, "0", nil),
			record(4, "0", map[int]string{7: "30111222334"}),
		},
		schema.SalesBreakdown, nil)

	ids := ExtractDocumentIDs(merged, schema.SalesInvoices, 7, nil)
	assert.Equal(t, []types.DocumentID{
		{Number: 30111222334, Valid: true},
		{},
		{},
		{Number: 30111222334, Valid: true},
	}, ids)
	assert.Equal(t, []int64{30111222334}, DistinctNumbers(ids))
}

func TestExtractDocumentIDs_WarnsOnOverflow(t *testing.T) {
	merged := Merge(schema.SalesInvoices,
		[]*types.ParsedRecord{
			record(1, "0", map[int]string{7: "99999999999999999999"}),
			record(2, "0", map[int]string{7: "ABC"}),
		},
		schema.SalesBreakdown, nil)

	core, logs := observer.New(zap.WarnLevel)
	ids := ExtractDocumentIDs(merged, schema.SalesInvoices, 7, zap.New(core))

	assert.Equal(t, []types.DocumentID{{}, {}}, ids)
	warnings := logs.FilterMessage("document number out of range").All()
	require.Len(t, warnings, 1)
	assert.Equal(t, int64(1), warnings[0].ContextMap()["line"])
	assert.Equal(t, 1, logs.Len())
}

func TestMapAnomalies(t *testing.T) {
	ids := []types.DocumentID{
		{Number: 30111222334, Valid: true},
		{Number: 20333444556, Valid: true},
		{},
		{Number: 30111222334, Valid: true},
		{Number: 27000000001, Valid: true},
	}

	out := MapAnomalies(ids, []string{"30111222334", "20333444556", "not-a-number"}, DefaultGenericIDs, 58, nil)

	require.Len(t, out, 3)
	assert.Equal(t, types.Discrepancy{
		LineNumber: 1,
		Kind:       types.KindDocument,
		Corrected:  "00000000030000000007",
		Original:   "00000000030111222334",
		Offset:     58,
	}, out[0])
	assert.Equal(t, 2, out[1].LineNumber)
	assert.Equal(t, "00000000020222222223", out[1].Corrected)
	assert.Equal(t, "00000000020333444556", out[1].Original)
	assert.Equal(t, 4, out[2].LineNumber)
}

func TestMapAnomalies_NothingFlagged(t *testing.T) {
	out := MapAnomalies([]types.DocumentID{{Number: 1, Valid: true}}, nil, DefaultGenericIDs, 58, nil)
	assert.Empty(t, out)
}

package reconcile

import (
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ginjaninja78/IVA-book-reconciler/internal/types"
)

// CheckLengths fails with *LengthMismatchError when the books have a
// different number of records.
func CheckLengths(keyA string, recordsA []*types.ParsedRecord, keyB string, recordsB []*types.ParsedRecord) error {
	if len(recordsA) == len(recordsB) {
		return nil
	}
	return &LengthMismatchError{
		KeyA:   keyA,
		CountA: len(recordsA),
		KeyB:   keyB,
		CountB: len(recordsB),
	}
}

// Merge groups the records of two books by line number.
//
// Every record of A is stored under its own line number, then every record
// of B under the same number, creating lines A did not have. Callers should
// run CheckLengths first: with unequal books the extra lines carry a single
// book and their totals mean nothing.
func Merge(keyA string, recordsA []*types.ParsedRecord, keyB string, recordsB []*types.ParsedRecord) *types.MergedBooks {
	merged := types.NewMergedBooks(keyA, keyB)

	for _, r := range recordsA {
		merged.Put(keyA, r)
	}
	for _, r := range recordsB {
		merged.Put(keyB, r)
	}

	return merged
}

// AddTotals stores on every line the sum of the summed totals of all books
// present on it, rounded to 2 places. Running it twice gives the same result.
func AddTotals(merged *types.MergedBooks, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}

	for _, line := range merged.Lines() {
		total := decimal.Zero
		for _, key := range merged.Keys {
			if r, ok := line.Record(key); ok {
				total = total.Add(r.Summed.Total)
			}
		}
		line.TotalSummedAmount = total.Round(2)

		logger.Debug("line total computed",
			zap.Int("line", line.LineNumber),
			zap.String("total", line.TotalSummedAmount.StringFixed(2)))
	}
}

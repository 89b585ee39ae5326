package reconcile

import (
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ginjaninja78/IVA-book-reconciler/internal/codec"
	"github.com/ginjaninja78/IVA-book-reconciler/internal/schema"
	"github.com/ginjaninja78/IVA-book-reconciler/internal/types"
)

// DefaultThreshold is the largest tolerated gap between a computed and a
// declared total.
var DefaultThreshold = decimal.NewFromInt(1)

// DetectTotals compares each line's merged total with the declared amount
// in compareField of the bookKey record.
//
// A line without a bookKey record is skipped. A missing compare field counts
// as zero. Only gaps strictly greater than threshold are reported.
func DetectTotals(merged *types.MergedBooks, bookKey string, compareField int, threshold decimal.Decimal, logger *zap.Logger) ([]types.TotalDifference, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var differences []types.TotalDifference

	for _, line := range merged.Lines() {
		record, ok := line.Record(bookKey)
		if !ok {
			continue
		}

		declared := decimal.Zero
		if value, ok := record.Field(compareField); ok {
			d, err := codec.ParseAmount(value)
			if err != nil {
				return nil, fmt.Errorf("line %d field %d: %w", line.LineNumber, compareField, err)
			}
			declared = d
		}

		computed := line.TotalSummedAmount
		if computed.Equal(declared) {
			continue
		}
		if computed.Sub(declared).Abs().GreaterThan(threshold) {
			logger.Debug("total difference found",
				zap.Int("line", line.LineNumber),
				zap.String("computed", computed.StringFixed(2)),
				zap.String("declared", declared.StringFixed(2)))

			differences = append(differences, types.TotalDifference{
				LineNumber: line.LineNumber,
				Computed:   computed,
				Declared:   declared,
			})
		}
	}

	logger.Info("total differences detected", zap.String("book", bookKey), zap.Int("count", len(differences)))
	return differences, nil
}

// FormatTotalDifferences encodes differences as money-field discrepancies.
// The offset hint is the compare field's start in s, when s has that field.
func FormatTotalDifferences(differences []types.TotalDifference, s *schema.BookSchema, compareField int) []types.Discrepancy {
	offset := types.NoOffset
	width := codec.MoneyWidth
	if s != nil {
		if f, ok := s.Field(compareField); ok {
			offset = f.Start
			width = f.Width()
		}
	}

	out := make([]types.Discrepancy, 0, len(differences))
	for _, d := range differences {
		out = append(out, types.Discrepancy{
			LineNumber: d.LineNumber,
			Kind:       types.KindTotal,
			Corrected:  codec.EncodeMoney(d.Computed, width),
			Original:   codec.EncodeMoney(d.Declared, width),
			Offset:     offset,
		})
	}
	return out
}

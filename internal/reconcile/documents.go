package reconcile

import (
	"errors"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/ginjaninja78/IVA-book-reconciler/internal/codec"
	"github.com/ginjaninja78/IVA-book-reconciler/internal/types"
)

// GenericIDs are the placeholder tax IDs written over flagged documents.
type GenericIDs struct {
	// LegalEntity replaces IDs starting with '3'.
	LegalEntity string

	// NaturalPerson replaces every other ID.
	NaturalPerson string
}

// DefaultGenericIDs are the generic CUITs accepted by AFIP.
var DefaultGenericIDs = GenericIDs{
	LegalEntity:   "30000000007",
	NaturalPerson: "20222222223",
}

// Replacement returns the generic ID for document, padded to the document
// field width.
func (g GenericIDs) Replacement(document string) string {
	if strings.HasPrefix(document, "3") {
		return codec.PadLeft(g.LegalEntity, codec.DocumentWidth)
	}
	return codec.PadLeft(g.NaturalPerson, codec.DocumentWidth)
}

// ExtractDocumentIDs returns the document of bookKey on every merged line,
// in line order. Lines where the field is absent or not an integer yield an
// invalid entry so positions stay aligned with line numbers. Numbers beyond
// int64 are invalid too and logged as a warning; real CUIT and DNI numbers
// never come close.
func ExtractDocumentIDs(merged *types.MergedBooks, bookKey string, field int, logger *zap.Logger) []types.DocumentID {
	if logger == nil {
		logger = zap.NewNop()
	}

	ids := make([]types.DocumentID, 0, merged.Len())
	valid := 0

	for _, line := range merged.Lines() {
		var value string
		if record, ok := line.Record(bookKey); ok {
			value, _ = record.Field(field)
		}

		n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if errors.Is(err, strconv.ErrRange) {
			logger.Warn("document number out of range",
				zap.Int("line", line.LineNumber),
				zap.String("value", value))
			ids = append(ids, types.DocumentID{})
			continue
		}
		if err != nil {
			logger.Debug("document not usable", zap.Int("line", line.LineNumber), zap.String("value", value))
			ids = append(ids, types.DocumentID{})
			continue
		}

		ids = append(ids, types.DocumentID{Number: n, Valid: true})
		valid++
	}

	logger.Info("documents extracted",
		zap.String("book", bookKey),
		zap.Int("valid", valid),
		zap.Int("invalid", len(ids)-valid))
	return ids
}

// DistinctNumbers returns the valid document numbers without repeats, in
// first-seen order.
func DistinctNumbers(ids []types.DocumentID) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	var out []int64
	for _, id := range ids {
		if !id.Valid {
			continue
		}
		if _, ok := seen[id.Number]; ok {
			continue
		}
		seen[id.Number] = struct{}{}
		out = append(out, id.Number)
	}
	return out
}

// MapAnomalies turns the documents reported invalid into discrepancies.
//
// Every position i whose document is in invalid yields a discrepancy on
// line i+1 replacing the padded original with its generic replacement.
// Entries of invalid that are not integers are ignored with a warning.
func MapAnomalies(ids []types.DocumentID, invalid []string, generics GenericIDs, offset int, logger *zap.Logger) []types.Discrepancy {
	if logger == nil {
		logger = zap.NewNop()
	}

	flagged := make(map[int64]struct{}, len(invalid))
	for _, s := range invalid {
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			logger.Warn("ignoring invalid document that is not a number", zap.String("document", s))
			continue
		}
		flagged[n] = struct{}{}
	}

	var out []types.Discrepancy
	for i, id := range ids {
		if !id.Valid {
			continue
		}
		if _, ok := flagged[id.Number]; !ok {
			continue
		}

		document := strconv.FormatInt(id.Number, 10)
		out = append(out, types.Discrepancy{
			LineNumber: i + 1,
			Kind:       types.KindDocument,
			Corrected:  generics.Replacement(document),
			Original:   codec.PadLeft(document, codec.DocumentWidth),
			Offset:     offset,
		})
	}

	return out
}

// =============================================================================
// IVA Book Reconciler - Shared Types
// =============================================================================
//
// This package contains types shared by several modules to avoid import
// cycles. Types defined here are used by:
//   - bookparser (produces ParsedRecord)
//   - reconcile  (MergedBooks, TotalDifference, Discrepancy)
//   - patcher    (consumes Discrepancy)
//   - report     (consumes MergedBooks and Discrepancy)
//
// =============================================================================

package types

import (
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PARSED RECORDS
// =============================================================================

// FieldValue is one decoded field of a record.
type FieldValue struct {
	// Name is the field name from the book schema.
	Name string `json:"field_name"`

	// Value is the decoded text: trimmed, zero-stripped for identifiers, and
	// with the implied decimal point inserted for numerics.
	Value string `json:"value"`
}

// SummedAmounts is the sum of a record's summed fields.
type SummedAmounts struct {
	// ReferencedFields are the field numbers that were added together.
	ReferencedFields []int `json:"referenced_fields"`

	// Total is rounded to 2 decimal places.
	Total decimal.Decimal `json:"total"`
}

// ParsedRecord is one decoded line of a book.
type ParsedRecord struct {
	// LineNumber is the 1-based position of the line in its file.
	LineNumber int `json:"line_number"`

	// Fields is keyed by field number.
	Fields map[int]FieldValue `json:"fields"`

	Summed SummedAmounts `json:"summed_amounts"`
}

// Field returns the decoded value of field n and whether it is present.
func (r *ParsedRecord) Field(n int) (string, bool) {
	f, ok := r.Fields[n]
	if !ok {
		return "", false
	}
	return f.Value, true
}

// =============================================================================
// MERGED BOOKS
// =============================================================================

// MergedLine groups the records of every book that share a line number.
//
// Lines are matched purely by position: line N of one file is assumed to
// describe the same operation as line N of the other.
type MergedLine struct {
	LineNumber int `json:"line_number"`

	// Records is keyed by book key. A book may be missing from a line.
	Records map[string]*ParsedRecord `json:"records"`

	// TotalSummedAmount is the sum of every present record's summed total.
	// Zero until reconcile.AddTotals runs.
	TotalSummedAmount decimal.Decimal `json:"total_summed_amount"`
}

// Record returns the record of the given book on this line, if any.
func (l *MergedLine) Record(bookKey string) (*ParsedRecord, bool) {
	r, ok := l.Records[bookKey]
	return r, ok && r != nil
}

// MergedBooks holds merged lines in ascending line-number order.
type MergedBooks struct {
	// Keys are the book keys in merge order.
	Keys []string

	lines map[int]*MergedLine
	order []int
}

// NewMergedBooks returns an empty collection.
func NewMergedBooks(keys ...string) *MergedBooks {
	return &MergedBooks{
		Keys:  keys,
		lines: make(map[int]*MergedLine),
	}
}

// Put stores record under its line number for bookKey, creating the line
// when needed.
func (m *MergedBooks) Put(bookKey string, record *ParsedRecord) {
	line, ok := m.lines[record.LineNumber]
	if !ok {
		line = &MergedLine{
			LineNumber:        record.LineNumber,
			Records:           make(map[string]*ParsedRecord),
			TotalSummedAmount: decimal.Zero,
		}
		m.lines[record.LineNumber] = line
		m.insertOrdered(record.LineNumber)
	}
	line.Records[bookKey] = record
}

func (m *MergedBooks) insertOrdered(n int) {
	i := sort.SearchInts(m.order, n)
	m.order = append(m.order, 0)
	copy(m.order[i+1:], m.order[i:])
	m.order[i] = n
}

// Line returns the merged line with the given number.
func (m *MergedBooks) Line(n int) (*MergedLine, bool) {
	l, ok := m.lines[n]
	return l, ok
}

// Lines returns every merged line in ascending line-number order.
func (m *MergedBooks) Lines() []*MergedLine {
	out := make([]*MergedLine, 0, len(m.order))
	for _, n := range m.order {
		out = append(out, m.lines[n])
	}
	return out
}

// Len returns the number of merged lines.
func (m *MergedBooks) Len() int {
	return len(m.order)
}

// =============================================================================
// DISCREPANCIES
// =============================================================================

// TotalDifference is a line whose declared total disagrees with the sum of
// its parts.
type TotalDifference struct {
	LineNumber int
	Computed   decimal.Decimal
	Declared   decimal.Decimal
}

// DiscrepancyKind tells where a discrepancy came from.
type DiscrepancyKind string

const (
	KindTotal    DiscrepancyKind = "total"
	KindDocument DiscrepancyKind = "document"
)

// NoOffset marks a discrepancy without a byte position hint.
const NoOffset = -1

// Discrepancy is a single patch instruction: on LineNumber, Original is to
// be replaced by Corrected. Both are already encoded to field width.
type Discrepancy struct {
	LineNumber int             `json:"line"`
	Kind       DiscrepancyKind `json:"kind"`
	Corrected  string          `json:"correct_value"`
	Original   string          `json:"actual_value"`

	// Offset is the byte position of the field in the line, or NoOffset.
	Offset int `json:"-"`
}

// DocumentID is the counterpart identifier of a line. Valid is false when
// the field was missing or not an integer.
type DocumentID struct {
	Number int64
	Valid  bool
}

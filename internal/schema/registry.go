// =============================================================================
// IVA Book Reconciler - Schema Registry
// =============================================================================
//
// This package holds the four fixed-width record layouts exported by the AFIP
// "Libro IVA Digital" system. Each layout (a "book") is static data: a list of
// field definitions with inclusive byte ranges, the exact record length, and
// the fields whose amounts are summed when reconciling a line.
//
// BOOKS:
//   libro_iva_digital_ventas_cbte       - sales invoices            (266 bytes)
//   libro_iva_digital_ventas_alicuota   - sales tax-rate breakdown  (62 bytes)
//   libro_iva_digital_compras_cbte      - purchase invoices         (325 bytes)
//   libro_iva_digital_compras_alicuota  - purchase tax-rate breakdown (84 bytes)
//
// The registry is built once at package initialisation and never mutated.
// Lookup hands out copies so callers cannot alter the shared tables.
//
// =============================================================================

package schema

import (
	"errors"
	"fmt"
)

// =============================================================================
// BOOK KEYS
// =============================================================================

const (
	SalesInvoices     = "libro_iva_digital_ventas_cbte"
	SalesBreakdown    = "libro_iva_digital_ventas_alicuota"
	PurchaseInvoices  = "libro_iva_digital_compras_cbte"
	PurchaseBreakdown = "libro_iva_digital_compras_alicuota"
)

// DefaultCompareField is the "Total operation amount" field of both invoice books.
const DefaultCompareField = 9

// DefaultDocumentField is the counterpart tax-ID field of both invoice books.
const DefaultDocumentField = 7

// =============================================================================
// FIELD ENCODINGS
// =============================================================================

// Kind is the encoding of a single fixed-width field.
type Kind int

const (
	// KindText is passed through trimmed.
	KindText Kind = iota

	// KindPaddedID is an identifier completed with zeros on the left.
	// Decoding strips the leading zeros.
	KindPaddedID

	// KindImpliedDecimal is a digit string whose last Decimals digits are the
	// fractional part. There is no decimal point in the source bytes.
	KindImpliedDecimal

	// KindDate is an AAAAMMDD date, passed through trimmed.
	KindDate
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindPaddedID:
		return "padded_id"
	case KindImpliedDecimal:
		return "implied_decimal"
	case KindDate:
		return "date"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// =============================================================================
// SCHEMA STRUCTURES
// =============================================================================

// FieldDefinition describes one column of a book.
type FieldDefinition struct {
	// Number is the 1-based field number. Fields are extracted in this order.
	Number int

	// Name is the human-readable field name used in reports.
	Name string

	// Start and End are the inclusive 0-based byte positions of the field.
	// Single-position fields have Start == End.
	Start int
	End   int

	// Kind is the encoding applied when decoding the raw bytes.
	Kind Kind

	// Decimals is the number of implied fractional digits (2 or 6).
	// Only meaningful for KindImpliedDecimal.
	Decimals int
}

// Width returns the number of bytes the field occupies.
func (f FieldDefinition) Width() int {
	return f.End - f.Start + 1
}

// BookSchema is one of the four known record layouts.
type BookSchema struct {
	// Key is the registry key, e.g. "libro_iva_digital_ventas_cbte".
	Key string

	// Title is a short description shown by the CLI.
	Title string

	// Fields are ordered by field number.
	Fields []FieldDefinition

	// RecordLength is the exact byte length of every line, excluding the
	// line terminator.
	RecordLength int

	// SummedFields are the field numbers added together into a record's
	// summed amount.
	SummedFields []int
}

// Field returns the definition with the given number.
func (s *BookSchema) Field(number int) (FieldDefinition, bool) {
	for _, f := range s.Fields {
		if f.Number == number {
			return f, true
		}
	}
	return FieldDefinition{}, false
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrUnknownBookType is matched by every UnknownBookTypeError.
var ErrUnknownBookType = errors.New("unknown book type")

// UnknownBookTypeError is returned by Lookup for a key outside the registry.
type UnknownBookTypeError struct {
	Key string
}

func (e *UnknownBookTypeError) Error() string {
	return fmt.Sprintf("unknown book type %q (known: %v)", e.Key, Keys())
}

func (e *UnknownBookTypeError) Is(target error) bool {
	return target == ErrUnknownBookType
}

// =============================================================================
// REGISTRY ACCESS
// =============================================================================

// Lookup returns a copy of the schema registered under key.
func Lookup(key string) (*BookSchema, error) {
	s, ok := registry[key]
	if !ok {
		return nil, &UnknownBookTypeError{Key: key}
	}
	return s.clone(), nil
}

// MustLookup is Lookup for keys known at compile time.
func MustLookup(key string) *BookSchema {
	s, err := Lookup(key)
	if err != nil {
		panic(err)
	}
	return s
}

// Keys returns the registered book keys in a stable order.
func Keys() []string {
	return []string{SalesInvoices, SalesBreakdown, PurchaseInvoices, PurchaseBreakdown}
}

func (s *BookSchema) clone() *BookSchema {
	c := *s
	c.Fields = append([]FieldDefinition(nil), s.Fields...)
	c.SummedFields = append([]int(nil), s.SummedFields...)
	return &c
}

// =============================================================================
// IVA Book Reconciler - Field Codec
// =============================================================================
//
// Value-level conversions between the fixed-width text of an AFIP book and
// the decoded representation used by the reconciler.
//
// DECODE:
//   - Implied-decimal numerics (2 or 6 digits): "000000000010150" -> "101.50"
//     The integer part loses its leading zeros, the fractional digits are
//     kept exactly as found ("0001000000" with 6 decimals -> "1.000000").
//   - Zero-padded identifiers: "00000000030111222334" -> "30111222334"
//
// ENCODE:
//   Only the 2-decimal money format can be encoded. Totals are the only
//   values ever written back into a book, so there is no 6-decimal encoder.
//
// =============================================================================

package codec

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// MoneyWidth is the width of every money field in the four books.
const MoneyWidth = 15

// DocumentWidth is the width of the counterpart identification field.
const DocumentWidth = 20

// =============================================================================
// ERRORS
// =============================================================================

// FormatError reports a value that is not numeric where a number is required.
type FormatError struct {
	Value string
	Err   error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("value %q is not numeric: %v", e.Value, e.Err)
	}
	return fmt.Sprintf("value %q is not numeric", e.Value)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// =============================================================================
// DECODE
// =============================================================================

// DecodeImpliedDecimal inserts the implied decimal point into raw.
//
// The last n digits become the fractional part verbatim and the rest is
// parsed as an integer. When the integer part cannot be parsed (blank
// field, value shorter than n digits) the trimmed input is returned as is.
func DecodeImpliedDecimal(raw string, n int) string {
	value := strings.TrimSpace(raw)
	if n <= 0 || len(value) <= n {
		return value
	}

	integerPart := value[:len(value)-n]
	fractionalPart := value[len(value)-n:]

	integer, err := strconv.ParseInt(integerPart, 10, 64)
	if err != nil {
		return value
	}

	return fmt.Sprintf("%d.%s", integer, fractionalPart)
}

// StripIDPadding removes the zeros an identifier was completed with.
func StripIDPadding(raw string) string {
	return strings.TrimLeft(raw, "0")
}

// =============================================================================
// ENCODE
// =============================================================================

// EncodeMoney renders value in the 2-implied-decimal money format and
// left-pads it with zeros to width.
//
// EXAMPLE:
//   EncodeMoney(101.5, 15) -> "000000000010150"
//
// The fractional part is rounded to two digits; a rounding carry moves into
// the integer part (9.999 -> "1000"). Values already wider than width are
// returned unpadded.
func EncodeMoney(value decimal.Decimal, width int) string {
	rounded := value.Round(2)
	digits := strings.Replace(rounded.StringFixed(2), ".", "", 1)
	return PadLeft(digits, width)
}

// EncodeMoneyString is EncodeMoney for a decimal string such as "101.50".
func EncodeMoneyString(value string, width int) (string, error) {
	trimmed := strings.TrimSpace(value)
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return "", &FormatError{Value: value, Err: err}
	}
	return EncodeMoney(d, width), nil
}

// ParseAmount converts decoded field text into a decimal.
func ParseAmount(value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Zero, &FormatError{Value: value, Err: err}
	}
	return d, nil
}

// PadLeft completes s with zeros on the left up to width.
func PadLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}

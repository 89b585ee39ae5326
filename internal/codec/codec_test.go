package codec

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeImpliedDecimal(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		decimals int
		want     string
	}{
		{"money", "000000000010150", 2, "101.50"},
		{"zero", "000000000000000", 2, "0.00"},
		{"fraction kept literally", "000000000000007", 2, "0.07"},
		{"exchange rate", "0001000000", 6, "1.000000"},
		{"surrounding blanks", "  000000000001234  ", 2, "12.34"},
		{"blank field", "               ", 2, ""},
		{"non numeric integer part", "ABCDEFGHIJKLM12", 2, "ABCDEFGHIJKLM12"},
		{"shorter than decimals", "5", 2, "5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DecodeImpliedDecimal(tt.raw, tt.decimals))
		})
	}
}

func TestStripIDPadding(t *testing.T) {
	assert.Equal(t, "30111222334", StripIDPadding("00000000030111222334"))
	assert.Equal(t, "", StripIDPadding("00000000000000000000"))
	assert.Equal(t, "12", StripIDPadding("12"))
}

func TestEncodeMoney(t *testing.T) {
	tests := []struct {
		value string
		want  string
	}{
		{"101.5", "000000000010150"},
		{"101.50", "000000000010150"},
		{"0", "000000000000000"},
		{"0.07", "000000000000007"},
		{"1234.567", "000000000123457"},
		{"9.999", "000000000001000"},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, err := EncodeMoneyString(tt.value, MoneyWidth)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Len(t, got, MoneyWidth)
		})
	}
}

func TestEncodeMoney_Overflow(t *testing.T) {
	got := EncodeMoney(decimal.RequireFromString("12345678901234.56"), MoneyWidth)
	assert.Equal(t, "1234567890123456", got)
}

func TestEncodeMoneyString_NotNumeric(t *testing.T) {
	_, err := EncodeMoneyString("12,50", MoneyWidth)
	require.Error(t, err)

	var formatErr *FormatError
	require.True(t, errors.As(err, &formatErr))
	assert.Equal(t, "12,50", formatErr.Value)
}

// Decoding then re-encoding a 2-decimal money field yields the original bytes.
func TestMoney_RoundTrip(t *testing.T) {
	for _, raw := range []string{"000000000010150", "000000000000000", "000000123456789", "000000000000001"} {
		decoded := DecodeImpliedDecimal(raw, 2)
		encoded, err := EncodeMoneyString(decoded, MoneyWidth)
		require.NoError(t, err)
		assert.Equal(t, raw, encoded)
	}
}

// There is no 6-decimal encoder; feeding a decoded rate through the money
// encoder rounds it to two digits.
func TestRate_NotReversible(t *testing.T) {
	decoded := DecodeImpliedDecimal("0001234567", 6)
	assert.Equal(t, "1.234567", decoded)

	encoded, err := EncodeMoneyString(decoded, 10)
	require.NoError(t, err)
	assert.Equal(t, "0000000123", encoded)
	assert.NotEqual(t, "0001234567", encoded)
}

func TestParseAmount(t *testing.T) {
	d, err := ParseAmount("101.50")
	require.NoError(t, err)
	assert.True(t, d.Equal(decimal.RequireFromString("101.5")))

	_, err = ParseAmount("")
	assert.Error(t, err)
}

func TestPadLeft(t *testing.T) {
	assert.Equal(t, "00000000030000000007", PadLeft("30000000007", DocumentWidth))
	assert.Equal(t, "abc", PadLeft("abc", 2))
}

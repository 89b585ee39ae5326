// =============================================================================
// IVA Book Reconciler - Book Parser Module
// =============================================================================
//
// This module reads one fixed-width book file and turns every line into a
// ParsedRecord. It handles:
//   - Line terminators (LF and CRLF)
//   - Exact record length validation against the book schema
//   - Field extraction by inclusive byte range
//   - Single-byte charsets (ISO-8859-1 by default) for text fields
//   - The summed amount of each record
//
// A file is accepted whole or rejected whole: the first line with a wrong
// length aborts parsing and no records are returned.
//
// =============================================================================

package bookparser

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ginjaninja78/IVA-book-reconciler/internal/codec"
	"github.com/ginjaninja78/IVA-book-reconciler/internal/schema"
	"github.com/ginjaninja78/IVA-book-reconciler/internal/types"
)

// =============================================================================
// ERRORS
// =============================================================================

// RecordLengthError reports a line whose byte length differs from the
// schema's record length.
type RecordLengthError struct {
	Book     string
	Line     int
	Actual   int
	Expected int
}

func (e *RecordLengthError) Error() string {
	return fmt.Sprintf("line %d length does not match the expected length for book %s: actual %d, expected %d",
		e.Line, e.Book, e.Actual, e.Expected)
}

// SummedValueError reports a summed field that does not hold a number.
type SummedValueError struct {
	Line  int
	Field int
	Err   error
}

func (e *SummedValueError) Error() string {
	return fmt.Sprintf("line %d field %d cannot be summed: %v", e.Line, e.Field, e.Err)
}

func (e *SummedValueError) Unwrap() error {
	return e.Err
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads a book file and returns one record per line.
//
// PARAMETERS:
//   - filePath: the book file.
//   - s: the layout every line must follow.
//   - cs: charset of the text fields, see CharsetFor.
//   - logger: receives per-file progress and summing warnings.
//
// RETURNS:
//   - the records in file order, LineNumber starting at 1.
//   - *RecordLengthError on the first malformed line.
//   - *SummedValueError (wrapping *codec.FormatError) when a summed field is
//     not numeric.
func Parse(filePath string, s *schema.BookSchema, cs Charset, logger *zap.Logger) ([]*types.ParsedRecord, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	logger.Info("parsing book file",
		zap.String("file", filePath),
		zap.String("book", s.Key),
		zap.Int("record_length", s.RecordLength))

	reader, err := NewReader(filePath, s, cs, logger)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	var records []*types.ParsedRecord
	for reader.Next() {
		records = append(records, reader.Record())
	}
	if err := reader.Err(); err != nil {
		return nil, err
	}

	logger.Info("book file parsed", zap.String("file", filePath), zap.Int("lines", len(records)))
	return records, nil
}

// DecodeLine decodes a single line (without its terminator). A nil cs
// means DefaultCharset.
func DecodeLine(line []byte, lineNumber int, s *schema.BookSchema, cs Charset, logger *zap.Logger) (*types.ParsedRecord, error) {
	if cs == nil {
		cs = DefaultCharset()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(line) != s.RecordLength {
		return nil, &RecordLengthError{
			Book:     s.Key,
			Line:     lineNumber,
			Actual:   len(line),
			Expected: s.RecordLength,
		}
	}

	record := &types.ParsedRecord{
		LineNumber: lineNumber,
		Fields:     make(map[int]types.FieldValue, len(s.Fields)),
	}

	for _, f := range s.Fields {
		raw, err := cs.Decode(line[f.Start : f.End+1])
		if err != nil {
			return nil, fmt.Errorf("line %d field %d: %w", lineNumber, f.Number, err)
		}
		record.Fields[f.Number] = types.FieldValue{
			Name:  f.Name,
			Value: decodeField(raw, f),
		}
	}

	summed, err := sumFields(record, s.SummedFields, logger)
	if err != nil {
		return nil, err
	}
	record.Summed = summed

	return record, nil
}

// decodeField applies the field's encoding to its raw text.
func decodeField(raw string, f schema.FieldDefinition) string {
	switch f.Kind {
	case schema.KindImpliedDecimal:
		return codec.DecodeImpliedDecimal(raw, f.Decimals)
	case schema.KindPaddedID:
		return strings.TrimSpace(codec.StripIDPadding(raw))
	default:
		return strings.TrimSpace(raw)
	}
}

// sumFields adds the summed fields of a record and rounds to 2 places.
// A field missing from the record is skipped with a warning.
func sumFields(record *types.ParsedRecord, fields []int, logger *zap.Logger) (types.SummedAmounts, error) {
	total := decimal.Zero

	for _, n := range fields {
		value, ok := record.Field(n)
		if !ok {
			logger.Warn("summed field not found",
				zap.Int("line", record.LineNumber),
				zap.Int("field", n))
			continue
		}

		amount, err := codec.ParseAmount(value)
		if err != nil {
			return types.SummedAmounts{}, &SummedValueError{Line: record.LineNumber, Field: n, Err: err}
		}
		total = total.Add(amount)
	}

	return types.SummedAmounts{
		ReferencedFields: append([]int(nil), fields...),
		Total:            total.Round(2),
	}, nil
}

// =============================================================================
// STREAMING READER
// =============================================================================

// Reader decodes a book one line at a time.
//
// USAGE:
//   r, err := NewReader(path, s, cs, logger)
//   if err != nil {
//       return err
//   }
//   defer r.Close()
//
//   for r.Next() {
//       rec := r.Record()
//   }
//   if err := r.Err(); err != nil {
//       return err
//   }
type Reader struct {
	file       *os.File
	reader     *bufio.Reader
	schema     *schema.BookSchema
	charset    Charset
	logger     *zap.Logger
	current    *types.ParsedRecord
	lineNumber int
	err        error
}

// NewReader opens filePath for decoding.
func NewReader(filePath string, s *schema.BookSchema, cs Charset, logger *zap.Logger) (*Reader, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cs == nil {
		cs = DefaultCharset()
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open book file: %w", err)
	}

	return &Reader{
		file:    file,
		reader:  bufio.NewReader(file),
		schema:  s,
		charset: cs,
		logger:  logger,
	}, nil
}

// Next decodes the next line. It returns false at end of file or on the
// first error.
func (r *Reader) Next() bool {
	if r.err != nil {
		return false
	}

	line, err := r.reader.ReadBytes('\n')
	if len(line) == 0 && errors.Is(err, io.EOF) {
		return false
	}
	if err != nil && !errors.Is(err, io.EOF) {
		r.err = fmt.Errorf("failed to read line %d: %w", r.lineNumber+1, err)
		return false
	}

	r.lineNumber++
	record, err := DecodeLine(TrimTerminator(line), r.lineNumber, r.schema, r.charset, r.logger)
	if err != nil {
		r.logger.Error("line rejected", zap.String("book", r.schema.Key), zap.Error(err))
		r.err = err
		return false
	}

	r.current = record
	return true
}

// Record returns the record decoded by the last call to Next.
func (r *Reader) Record() *types.ParsedRecord {
	return r.current
}

// LineNumber returns the number of lines read so far.
func (r *Reader) LineNumber() int {
	return r.lineNumber
}

// Err returns the error that stopped Next, if any.
func (r *Reader) Err() error {
	return r.err
}

// Close closes the underlying file.
func (r *Reader) Close() error {
	return r.file.Close()
}

// ReadLine decodes line n (1-based) of filePath. Lines before n must decode
// too, since the book is read sequentially.
func ReadLine(filePath string, n int, s *schema.BookSchema, cs Charset, logger *zap.Logger) (*types.ParsedRecord, error) {
	if n < 1 {
		return nil, fmt.Errorf("line number must be positive, got %d", n)
	}

	reader, err := NewReader(filePath, s, cs, logger)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	for reader.Next() {
		if reader.LineNumber() == n {
			return reader.Record(), nil
		}
	}
	if err := reader.Err(); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("line %d out of range: %s has %d lines", n, filePath, reader.LineNumber())
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// TrimTerminator removes a trailing "\n" or "\r\n".
func TrimTerminator(line []byte) []byte {
	line = bytes.TrimSuffix(line, []byte("\n"))
	return bytes.TrimSuffix(line, []byte("\r"))
}

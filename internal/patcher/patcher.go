// =============================================================================
// IVA Book Reconciler - Patch Writer
// =============================================================================
//
// This module writes a corrected copy of a book. Each discrepancy names a
// line, the encoded text currently there, and the encoded text to put in its
// place.
//
// PATCHING:
//   1. Read the source file as raw bytes. No transcoding is done, so
//      ISO-8859-1 text and the original line terminators survive untouched.
//   2. For every discrepancy, locate the line (1-based).
//        - line outside the file       -> miss "out_of_range"
//        - Original found at Offset    -> replaced there
//        - Original found elsewhere    -> first occurrence replaced
//        - Original not in the line    -> miss "not_found"
//   3. Write every line to "{name}_modificated{ext}" in the output directory.
//
// A miss is never an error: it is logged, recorded in the result and the
// line is left as it was.
//
// =============================================================================

package patcher

import (
	"bytes"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/ginjaninja78/IVA-book-reconciler/internal/types"
	"github.com/ginjaninja78/IVA-book-reconciler/pkg/utils"
)

// MissReason explains why a discrepancy was not applied.
type MissReason string

const (
	ReasonOutOfRange MissReason = "out_of_range"
	ReasonNotFound   MissReason = "not_found"
)

// PatchMiss is a discrepancy left unapplied.
type PatchMiss struct {
	Discrepancy types.Discrepancy
	Reason      MissReason
}

// Result describes a written patch file.
type Result struct {
	OutputPath string

	// Applied is the number of discrepancies written.
	Applied int

	Misses []PatchMiss
}

// Writer applies discrepancies to book files.
type Writer struct {
	logger *zap.Logger
}

// New returns a Writer logging to logger.
func New(logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{logger: logger}
}

// Apply writes the patched copy of sourceFile into outputDir.
func (w *Writer) Apply(discrepancies []types.Discrepancy, sourceFile, outputDir string) (*Result, error) {
	w.logger.Info("patching book",
		zap.String("file", sourceFile),
		zap.Int("discrepancies", len(discrepancies)))

	content, err := os.ReadFile(sourceFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read source file: %w", err)
	}

	lines := SplitLines(content)
	result := &Result{}

	for _, d := range discrepancies {
		index := d.LineNumber - 1
		if index < 0 || index >= len(lines) {
			w.logger.Warn("line out of range",
				zap.Int("line", d.LineNumber),
				zap.Int("lines", len(lines)))
			result.Misses = append(result.Misses, PatchMiss{Discrepancy: d, Reason: ReasonOutOfRange})
			continue
		}

		patched, ok := replace(lines[index], d)
		if !ok {
			w.logger.Warn("value not found in line",
				zap.Int("line", d.LineNumber),
				zap.String("kind", string(d.Kind)),
				zap.String("value", d.Original))
			result.Misses = append(result.Misses, PatchMiss{Discrepancy: d, Reason: ReasonNotFound})
			continue
		}

		lines[index] = patched
		result.Applied++
		w.logger.Debug("value replaced",
			zap.Int("line", d.LineNumber),
			zap.String("from", d.Original),
			zap.String("to", d.Corrected))
	}

	if err := utils.EnsureDir(outputDir); err != nil {
		return nil, err
	}

	result.OutputPath = utils.ModifiedFileName(sourceFile, outputDir)
	if err := os.WriteFile(result.OutputPath, bytes.Join(lines, nil), 0644); err != nil {
		return nil, fmt.Errorf("failed to write patched file: %w", err)
	}

	w.logger.Info("patched book written",
		zap.String("file", result.OutputPath),
		zap.Int("applied", result.Applied),
		zap.Int("missed", len(result.Misses)))
	if result.Applied == 0 {
		w.logger.Info("no replacement was made, check the discrepancy list")
	}

	return result, nil
}

// replace substitutes d.Original with d.Corrected in line. The content part
// of the line excludes its terminator, so a match never spans it.
//
// Only one occurrence is replaced, the one at d.Offset when it matches
// there. This is not a replace-all: other fields holding the same digits
// stay as they are.
func replace(line []byte, d types.Discrepancy) ([]byte, bool) {
	original := []byte(d.Original)
	if len(original) == 0 {
		return line, false
	}

	body := line[:len(line)-terminatorLength(line)]

	var at int
	if d.Offset >= 0 && d.Offset+len(original) <= len(body) &&
		bytes.Equal(body[d.Offset:d.Offset+len(original)], original) {
		at = d.Offset
	} else {
		at = bytes.Index(body, original)
	}
	if at < 0 {
		return line, false
	}

	out := make([]byte, 0, len(line)-len(original)+len(d.Corrected))
	out = append(out, line[:at]...)
	out = append(out, d.Corrected...)
	out = append(out, line[at+len(original):]...)
	return out, true
}

// SplitLines splits content after every "\n", keeping the terminators. A
// final line without terminator is kept as is.
func SplitLines(content []byte) [][]byte {
	if len(content) == 0 {
		return nil
	}
	lines := bytes.SplitAfter(content, []byte("\n"))
	if len(lines[len(lines)-1]) == 0 {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func terminatorLength(line []byte) int {
	switch {
	case bytes.HasSuffix(line, []byte("\r\n")):
		return 2
	case bytes.HasSuffix(line, []byte("\n")):
		return 1
	default:
		return 0
	}
}

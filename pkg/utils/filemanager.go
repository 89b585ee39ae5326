// =============================================================================
// IVA Book Reconciler - File Manager Utility
// =============================================================================
//
// This module provides file helpers shared by the reconciler, including:
//   - Output directory management
//   - File naming (patched books, reports, logs)
//   - The patch-miss log written when a correction could not be applied
//
// Source books are never moved, renamed or rewritten. Every artifact of a
// run lands in the output directory.
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ModifiedSuffix is appended to the name of a patched book.
const ModifiedSuffix = "_modificated"

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDir creates dir and its parents if they don't exist.
func EnsureDir(dir string) error {
	if dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// FileExists reports whether path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

// ModifiedFileName returns the path of the patched copy of source inside
// outputDir: "{name}_modificated{ext}", with ".txt" when source has no
// extension.
//
// EXAMPLE:
//   ModifiedFileName("in/ventas.txt", "out") -> "out/ventas_modificated.txt"
func ModifiedFileName(source, outputDir string) string {
	base := filepath.Base(source)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)
	if ext == "" {
		ext = ".txt"
	}
	return filepath.Join(outputDir, name+ModifiedSuffix+ext)
}

// GenerateOutputFileName expands the placeholders of format.
//
// PARAMETERS:
//   - format: the file name pattern.
//             Placeholders:
//               {uuid}      - a random UUID
//               {timestamp} - YYYYMMDD_HHMMSS
//               {datetime}  - YYYY-MM-DD_HHMMSS
//               {date}      - YYYYMMDD
//               {time}      - HHMMSS
//   - params: extra placeholder values, keyed without braces.
//   - now: the time used for the date placeholders.
//   - ext: appended when the result doesn't already end with it.
//
// EXAMPLE:
//   format: "final_report_{datetime}"
//   output: "final_report_2024-01-15_143022.json"
func GenerateOutputFileName(format string, params map[string]string, now time.Time, ext string) string {
	replacements := map[string]string{
		"{timestamp}": now.Format("20060102_150405"),
		"{datetime}":  now.Format("2006-01-02_150405"),
		"{date}":      now.Format("20060102"),
		"{time}":      now.Format("150405"),
	}
	if strings.Contains(format, "{uuid}") {
		replacements["{uuid}"] = uuid.New().String()
	}
	for key, value := range params {
		replacements["{"+key+"}"] = value
	}

	result := format
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}

	if ext != "" && !strings.HasSuffix(strings.ToLower(result), strings.ToLower(ext)) {
		result += ext
	}

	return result
}

// =============================================================================
// PATCH-MISS LOG
// =============================================================================

// PatchMissEntry is one correction that was not applied to the patched book.
type PatchMissEntry struct {
	LineNumber int
	Kind       string
	Reason     string
	Original   string
	Corrected  string
}

// WritePatchMissLog writes entries to "patch_misses_{timestamp}.txt" in
// outputDir and returns its path. Nothing is written for an empty list.
func WritePatchMissLog(entries []PatchMissEntry, sourceFile, outputDir string, now time.Time) (string, error) {
	if len(entries) == 0 {
		return "", nil
	}
	if err := EnsureDir(outputDir); err != nil {
		return "", err
	}

	logPath := filepath.Join(outputDir, fmt.Sprintf("patch_misses_%s.txt", now.Format("20060102_150405")))

	file, err := os.Create(logPath)
	if err != nil {
		return "", fmt.Errorf("failed to create patch-miss log: %w", err)
	}

	writer := bufio.NewWriter(file)

	fmt.Fprintf(writer, "IVA Book Reconciler - Patch Misses\n"+
		"Generated:   %s\n"+
		"Source file: %s\n"+
		"Total:       %d\n"+
		"================================================================================\n\n",
		now.Format("2006-01-02 15:04:05"),
		sourceFile,
		len(entries))

	for i, e := range entries {
		fmt.Fprintf(writer, "Miss #%d\n"+
			"  Line:      %d\n"+
			"  Kind:      %s\n"+
			"  Reason:    %s\n"+
			"  Expected:  %s\n"+
			"  Corrected: %s\n\n",
			i+1, e.LineNumber, e.Kind, e.Reason, e.Original, e.Corrected)
	}

	writer.WriteString("================================================================================\n" +
		"End of Patch Misses\n")

	if err := writer.Flush(); err != nil {
		file.Close()
		return "", fmt.Errorf("failed to flush patch-miss log: %w", err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("failed to close patch-miss log: %w", err)
	}

	return logPath, nil
}

// Package logging builds the application logger: a console core on stderr
// and, when a file pattern is given, a daily log file with the same level.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Name is the logger name shown on every entry.
const Name = "ivarecon"

// FilePath expands the "{date}" placeholder of pattern with now as
// DD-MM-YYYY.
func FilePath(pattern string, now time.Time) string {
	return strings.ReplaceAll(pattern, "{date}", now.Format("02-01-2006"))
}

// ParseLevel maps a config level name to a zap level.
func ParseLevel(level string) (zapcore.Level, error) {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
		return zapcore.InfoLevel, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return l, nil
}

// New returns a logger writing to stderr and, if filePattern is not empty,
// to the file it names. The returned function flushes and closes the file.
func New(level, filePattern string) (*zap.Logger, func(), error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, nil, err
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.Lock(os.Stderr), lvl),
	}

	closeFile := func() {}
	if filePattern != "" {
		path := FilePath(filePattern, time.Now())
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.AddSync(file), lvl))
		closeFile = func() { _ = file.Close() }
	}

	logger := zap.New(zapcore.NewTee(cores...)).Named(Name)
	return logger, func() {
		_ = logger.Sync()
		closeFile()
	}, nil
}

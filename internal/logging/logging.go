// Package logging builds the process logger. Logs go to a file under the
// config directory so they never mix with REPL output.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	LogDirName  = "logs"
	LogFileName = "aishell.log"
)

// New returns a JSON logger appending to <configDir>/logs/aishell.log.
// verbose forces debug level; otherwise level is parsed ("info" if empty).
func New(configDir, level string, verbose bool) (*zap.Logger, error) {
	logDir := filepath.Join(configDir, LogDirName)
	if err := os.MkdirAll(logDir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	atomic := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if level != "" {
		if err := atomic.UnmarshalText([]byte(level)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
	}
	if verbose {
		atomic.SetLevel(zapcore.DebugLevel)
	}

	config := zap.NewProductionConfig()
	config.Level = atomic
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.OutputPaths = []string{Path(configDir)}
	config.ErrorOutputPaths = []string{Path(configDir)}

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

// Path returns the log file location for configDir.
func Path(configDir string) string {
	return filepath.Join(configDir, LogDirName, LogFileName)
}

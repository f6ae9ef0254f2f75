package observability

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds a zap logger for the given level and format.
// "silent" and "off" disable logging entirely.
func NewLogger(level, format string) (*zap.Logger, error) {
	level = strings.ToLower(level)
	if level == "silent" || level == "off" {
		return zap.NewNop(), nil
	}

	var config zap.Config
	if level == "debug" {
		config = zap.NewDevelopmentConfig()
	} else {
		config = zap.NewProductionConfig()
	}
	config.Level = parseLogLevel(level)

	switch strings.ToLower(format) {
	case "console", "text":
		config.Encoding = "console"
	case "json":
		config.Encoding = "json"
	}

	return config.Build()
}

// parseLogLevel parses the log level string
func parseLogLevel(level string) zap.AtomicLevel {
	switch level {
	case "debug":
		return zap.NewAtomicLevelAt(zapcore.DebugLevel)
	case "warn", "warning":
		return zap.NewAtomicLevelAt(zapcore.WarnLevel)
	case "error":
		return zap.NewAtomicLevelAt(zapcore.ErrorLevel)
	default:
		return zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
}

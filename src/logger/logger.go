package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"bbo-tracker/src/config"
)

// -----------------------------------------------------------------------------

// Logger is a thin printf-style facade over zap's SugaredLogger, so call
// sites can log with format strings without touching zap fields directly.
type Logger struct {
	name  string
	sugar *zap.SugaredLogger
}

// -----------------------------------------------------------------------------

// NewLogger creates the application logger. The level comes from the config
// ("debug", "info", "warn", "error"); an unknown or empty level falls back
// to info.
func NewLogger(cfg *config.Config, name string) *Logger {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}

	zapConfig := zap.NewProductionConfig()
	zapConfig.Level = zap.NewAtomicLevelAt(level)
	zapConfig.Encoding = "console"
	zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	zlog, err := zapConfig.Build(zap.AddCallerSkip(1))
	if err != nil {
		// Build only fails on broken config; fall back to the example logger
		// rather than leaving the application without logging.
		zlog = zap.NewExample()
	}

	return &Logger{
		name:  name,
		sugar: zlog.Sugar().Named(name),
	}
}

// -----------------------------------------------------------------------------

// Debug logs a formatted message at debug level.
func (l *Logger) Debug(format string, args ...interface{}) {
	l.sugar.Debugf(format, args...)
}

// -----------------------------------------------------------------------------

// Info logs a formatted message at info level.
func (l *Logger) Info(format string, args ...interface{}) {
	l.sugar.Infof(format, args...)
}

// -----------------------------------------------------------------------------

// Warning logs a formatted message at warn level.
func (l *Logger) Warning(format string, args ...interface{}) {
	l.sugar.Warnf(format, args...)
}

// -----------------------------------------------------------------------------

// Error logs a formatted message at error level.
func (l *Logger) Error(format string, args ...interface{}) {
	l.sugar.Errorf(format, args...)
}

// -----------------------------------------------------------------------------

// Critical logs a formatted message at dpanic level. It does not exit; the
// caller decides whether the condition is fatal.
func (l *Logger) Critical(format string, args ...interface{}) {
	l.sugar.DPanicf(format, args...)
}

// -----------------------------------------------------------------------------

// Sync flushes any buffered log entries.
func (l *Logger) Sync() error {
	return l.sugar.Sync()
}

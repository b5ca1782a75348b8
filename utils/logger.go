package utils

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"compensation-dashboard/apperr"
)

// Logger provides leveled, printf-style logging throughout the application.
type Logger struct {
	s *zap.SugaredLogger
}

// NewLogger creates a console Logger at the given level (debug, info, warn, error).
// Unknown levels fall back to info.
func NewLogger(level string) *Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(level))
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
	cfg.DisableStacktrace = true

	l, err := cfg.Build()
	if err != nil {
		l = zap.NewExample()
	}
	return &Logger{s: l.Sugar()}
}

// NewLoggerFromZap wraps an existing zap logger.
func NewLoggerFromZap(l *zap.Logger) *Logger {
	return &Logger{s: l.Sugar()}
}

// NewNopLogger returns a Logger that discards everything.
func NewNopLogger() *Logger {
	return &Logger{s: zap.NewNop().Sugar()}
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func (l *Logger) Info(format string, args ...any) {
	l.s.Infof(format, args...)
}

func (l *Logger) Warn(format string, args ...any) {
	l.s.Warnf(format, args...)
}

func (l *Logger) Error(format string, args ...any) {
	l.s.Errorf(format, args...)
}

func (l *Logger) Debug(format string, args ...any) {
	l.s.Debugf(format, args...)
}

// Stack logs the stack captured with err at debug level, if it has one.
func (l *Logger) Stack(err error) {
	if stack := apperr.StackOf(err); len(stack) > 0 {
		l.s.Debugf("stack trace:\n%s", stack)
	}
}

// Sync flushes buffered log entries.
func (l *Logger) Sync() {
	_ = l.s.Sync()
}

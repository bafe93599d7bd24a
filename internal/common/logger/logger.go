package logger

import (
	"sort"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

// Logger defines the minimal logging interface used across the navigator.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	WithFields(fields map[string]interface{}) Logger
	WithError(err error) Logger
	With(fields map[string]interface{}) Logger
}

// ParseLevel maps a config level name to a zap level. Unknown names fall
// back to warn so a quiet console stays quiet.
func ParseLevel(name string) zapcore.Level {
	switch name {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.WarnLevel
	}
}

// New builds a zap logger. output is "stderr" or a file path; stdout is
// reserved for the conversation and is never used for logs.
func New(level, format, output string) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if format == "json" {
		cfg = zap.NewProductionConfig()
		cfg.Sampling = nil
	}
	cfg.Level = zap.NewAtomicLevelAt(ParseLevel(level))
	cfg.DisableStacktrace = true

	if output == "" || output == "stdout" {
		output = "stderr"
	}
	cfg.OutputPaths = []string{output}
	cfg.ErrorOutputPaths = []string{"stderr"}

	return cfg.Build()
}

// NewZapAdapter wraps an existing *zap.Logger.
func NewZapAdapter(l *zap.Logger) Logger {
	return &adapter{l: l}
}

// NewTestLogger routes log lines to t.Log.
func NewTestLogger(t testing.TB) Logger {
	return &adapter{l: zaptest.NewLogger(t)}
}

func NewNoOpLogger() Logger {
	return &adapter{l: zap.NewNop()}
}

type adapter struct {
	l *zap.Logger
}

func (a *adapter) Debug(msg string, fields map[string]interface{}) {
	a.write(zapcore.DebugLevel, msg, fields)
}

func (a *adapter) Info(msg string, fields map[string]interface{}) {
	a.write(zapcore.InfoLevel, msg, fields)
}

func (a *adapter) Warn(msg string, fields map[string]interface{}) {
	a.write(zapcore.WarnLevel, msg, fields)
}

func (a *adapter) Error(msg string, fields map[string]interface{}) {
	a.write(zapcore.ErrorLevel, msg, fields)
}

func (a *adapter) WithFields(fields map[string]interface{}) Logger {
	return &adapter{l: a.l.With(toZapFields(fields)...)}
}

func (a *adapter) WithError(err error) Logger {
	return &adapter{l: a.l.With(zap.Error(err))}
}

func (a *adapter) With(fields map[string]interface{}) Logger {
	return a.WithFields(fields)
}

// write skips field conversion when the level is disabled.
func (a *adapter) write(level zapcore.Level, msg string, fields map[string]interface{}) {
	if ce := a.l.Check(level, msg); ce != nil {
		ce.Write(toZapFields(fields)...)
	}
}

// toZapFields converts fields in key order so console output is stable.
// error values keep their zap error encoding.
func toZapFields(fields map[string]interface{}) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]zap.Field, 0, len(fields))
	for _, k := range keys {
		if err, ok := fields[k].(error); ok {
			out = append(out, zap.NamedError(k, err))
			continue
		}
		out = append(out, zap.Any(k, fields[k]))
	}
	return out
}

package logging

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger struct {
	zl *zap.Logger
}

func parseLevel(levelStr string) zapcore.Level {
	switch strings.ToLower(levelStr) {
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

// NewLogger writes JSON lines to stderr so that stdout stays free for
// command output.
func NewLogger(levelStr string) *Logger {
	return NewLoggerWithWriter(levelStr, os.Stderr)
}

func NewLoggerWithWriter(levelStr string, w io.Writer) *Logger {
	encCfg := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		MessageKey:     "msg",
		NameKey:        "logger",
		StacktraceKey:  "",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
	}
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(w), parseLevel(levelStr))
	return &Logger{zl: zap.New(core)}
}

// WithComponent returns a child logger tagging every line with component.
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{zl: l.zl.With(zap.String("component", name))}
}

func (l *Logger) Debug(format string, args ...interface{}) {
	l.zl.Debug(fmt.Sprintf(format, args...))
}

func (l *Logger) Info(format string, args ...interface{}) {
	l.zl.Info(fmt.Sprintf(format, args...))
}

func (l *Logger) Warn(format string, args ...interface{}) {
	l.zl.Warn(fmt.Sprintf(format, args...))
}

func (l *Logger) Error(format string, args ...interface{}) {
	l.zl.Error(fmt.Sprintf(format, args...))
}

func (l *Logger) Debugw(msg string, fields map[string]any) {
	l.zl.Debug(msg, toFields(fields)...)
}

func (l *Logger) Infow(msg string, fields map[string]any) {
	l.zl.Info(msg, toFields(fields)...)
}

func (l *Logger) Warnw(msg string, fields map[string]any) {
	l.zl.Warn(msg, toFields(fields)...)
}

func (l *Logger) Errorw(msg string, fields map[string]any) {
	l.zl.Error(msg, toFields(fields)...)
}

func (l *Logger) Fatal(format string, args ...interface{}) {
	l.zl.Error(fmt.Sprintf(format, args...), zap.String("severity", "fatal"))
	_ = l.zl.Sync()
	os.Exit(1)
}

func (l *Logger) Sync() error {
	return l.zl.Sync()
}

func toFields(fields map[string]any) []zap.Field {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]zap.Field, 0, len(keys))
	for _, k := range keys {
		v := fields[k]
		if err, ok := v.(error); ok {
			out = append(out, zap.NamedError(k, err))
			continue
		}
		out = append(out, zap.Any(k, v))
	}
	return out
}

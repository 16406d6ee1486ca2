// Package logging wraps zap behind a small interface so packages can log
// without depending on the zap API directly.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the structured logger used across mellow.
type Logger interface {
	Debugw(msg string, keysAndValues ...any)
	Infow(msg string, keysAndValues ...any)
	Warnw(msg string, keysAndValues ...any)
	Errorw(msg string, keysAndValues ...any)
	With(keysAndValues ...any) Logger
	Sync() error
}

// ZapLogger adapts a zap SugaredLogger to Logger.
type ZapLogger struct {
	s *zap.SugaredLogger
}

// NewZapLogger wraps s.
func NewZapLogger(s *zap.SugaredLogger) *ZapLogger {
	return &ZapLogger{s: s}
}

func (l *ZapLogger) Debugw(msg string, kv ...any) { l.s.Debugw(msg, kv...) }
func (l *ZapLogger) Infow(msg string, kv ...any)  { l.s.Infow(msg, kv...) }
func (l *ZapLogger) Warnw(msg string, kv ...any)  { l.s.Warnw(msg, kv...) }
func (l *ZapLogger) Errorw(msg string, kv ...any) { l.s.Errorw(msg, kv...) }
func (l *ZapLogger) With(kv ...any) Logger        { return &ZapLogger{s: l.s.With(kv...)} }
func (l *ZapLogger) Sync() error                  { return l.s.Sync() }

// Nop returns a logger that discards everything.
func Nop() Logger {
	return NewZapLogger(zap.NewNop().Sugar())
}

// Options configures New.
type Options struct {
	Level string // debug, info, warn, error
	File  string // empty writes to stderr
	JSON  bool   // JSON encoding instead of console
}

// New builds a zap-backed logger.
func New(opts Options) (Logger, error) {
	level, err := zapcore.ParseLevel(strings.ToLower(defaultString(opts.Level, "warn")))
	if err != nil {
		return nil, fmt.Errorf("parsing log level: %w", err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.Sampling = nil
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableStacktrace = true
	if !opts.JSON {
		cfg.Encoding = "console"
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return nil, fmt.Errorf("creating log directory: %w", err)
		}
		cfg.OutputPaths = []string{opts.File}
	}

	z, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return NewZapLogger(z.Sugar()), nil
}

func defaultString(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

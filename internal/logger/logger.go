// Package logger wraps zap construction so main and middleware share one
// structured logger.
package logger

import (
	"go.uber.org/zap"
)

// Logger holds the shared zap instance.
type Logger struct {
	// Log is the underlying zap logger. Nil until Init succeeds.
	Log *zap.Logger
}

// New returns an uninitialized Logger with a no-op zap instance, so callers
// can log before Init without nil checks.
func New() *Logger {
	return &Logger{Log: zap.NewNop()}
}

// Init builds the production logger at the given level ("debug", "info",
// "warn", "error").
func (l *Logger) Init(level string) error {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = lvl
	log, err := cfg.Build()
	if err != nil {
		return err
	}
	l.Log = log
	return nil
}

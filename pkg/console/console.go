// Package console provides structured diagnostic logging for boot and
// demo code, built on uber/zap.
//
// The filesystem core itself stays log-free: diagnostics are the
// caller's concern, and the console never calls back into filesystem
// locking paths.
package console

import (
	"go.uber.org/zap"
)

// New returns a console logger. With debug enabled the logger emits
// Debug-level output with the development encoder; otherwise it logs at
// Info level.
func New(debug bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if !debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	return cfg.Build()
}

// Nop returns a logger that discards everything. Useful in tests.
func Nop() *zap.Logger {
	return zap.NewNop()
}

// Package logging builds the zap.Logger that the b24, caption and
// renderer packages thread through instead of calling the log package
// directly.
package logging

import "go.uber.org/zap"

// New returns a production logger, or a development logger (human-readable,
// debug-level) when debug is true.
func New(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// Nop returns a logger that discards everything, for tests and call sites
// that don't want to thread a *zap.Logger through.
func Nop() *zap.Logger {
	return zap.NewNop()
}

// Package logger builds zap loggers.
package logger

import "go.uber.org/zap"

// New returns a logger for env. "production" gets a JSON logger, anything else
// a human readable development logger. Construction failures fall back to a
// logger that discards everything.
func New(env string) *zap.Logger {
	var (
		l   *zap.Logger
		err error
	)
	if env == "production" {
		l, err = zap.NewProduction()
	} else {
		l, err = zap.NewDevelopment()
	}
	if err != nil {
		return zap.NewNop()
	}
	return l
}

// Nop returns a logger that discards everything.
func Nop() *zap.Logger { return zap.NewNop() }

// Package logging constructs the single *zap.Logger cmd/inkterm
// injects into every package that needs one, rather than reaching for
// a global logger.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a development-style console logger when debug is true
// (human-readable, debug level) or a production JSON logger otherwise
// (info level, one JSON object per line, suitable for log collection).
func New(debug bool) (*zap.Logger, error) {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	return cfg.Build()
}

// Package logger builds the zap logger the catalog API writes through.
// Encoding follows the runtime environment: colored console lines while
// developing against the local storefront, JSON in production so the
// container platform's log collector can ingest request and cleanup events.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a logger for the given SERVER_ENV value. Output goes to stdout
// in every environment; log routing is the container's job.
func New(env string) (*zap.Logger, error) {
	var cfg zap.Config
	if env == "production" {
		cfg = zap.NewProductionConfig()
		cfg.Encoding = "json"
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	cfg.OutputPaths = []string{"stdout"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	// Stack traces on errors only; image-cleanup warnings are routine and
	// would drown the log otherwise.
	return cfg.Build(
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	)
}

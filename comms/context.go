package comms

import (
	"context"

	"go.uber.org/zap"
)

type contextKey int

const (
	loggerKey contextKey = iota
)

var nopLogger = zap.NewNop().Sugar()

// WithLogger returns a new context with the logger.
func WithLogger(ctx context.Context, logger *zap.SugaredLogger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// GetLogger returns the logger from the context, or a no-op logger.
func GetLogger(ctx context.Context) *zap.SugaredLogger {
	v, _ := ctx.Value(loggerKey).(*zap.SugaredLogger)
	if v == nil {
		return nopLogger
	}
	return v
}

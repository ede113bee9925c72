// Package buildlog carries a zerolog logger through the build via context.Context
package buildlog

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type logKey struct{}

// Log returns the logger attached to ctx or the global logger if there is none
func Log(ctx context.Context) *zerolog.Logger {
	logger := ctx.Value(logKey{})
	if logger == nil {
		return &log.Logger
	}

	return logger.(*zerolog.Logger)
}

// WithLogger attaches the given logger to the context
func WithLogger(ctx context.Context, logger *zerolog.Logger) context.Context {
	return context.WithValue(ctx, logKey{}, logger)
}

// WithPackage returns a context whose logger tags every event with the package identity
func WithPackage(ctx context.Context, identity string) context.Context {
	logger := Log(ctx).With().Str("package", identity).Logger()
	return WithLogger(ctx, &logger)
}

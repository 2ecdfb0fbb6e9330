package logger

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tnguyen/storefront/internal/config"
)

func TestSetupReturnsLogger(t *testing.T) {
	log := Setup(config.ServerConfig{LogLevel: "debug"})
	assert.NotNil(t, log)
	assert.True(t, log.Enabled(context.Background(), slog.LevelDebug))

	log = Setup(config.ServerConfig{LogLevel: "error"})
	assert.False(t, log.Enabled(context.Background(), slog.LevelInfo))
}

func TestSetupUnknownLevelFallsBackToInfo(t *testing.T) {
	log := Setup(config.ServerConfig{LogLevel: "chatty"})
	assert.True(t, log.Enabled(context.Background(), slog.LevelInfo))
	assert.False(t, log.Enabled(context.Background(), slog.LevelDebug))
}

func TestFromContext(t *testing.T) {
	scoped := slog.New(slog.NewTextHandler(io.Discard, nil))

	ctx := WithContext(context.Background(), scoped)
	assert.Same(t, scoped, FromContext(ctx))

	// Without a stored logger the process default is returned.
	assert.NotNil(t, FromContext(context.Background()))
}

func TestFromContextOrDefault(t *testing.T) {
	scoped := slog.New(slog.NewTextHandler(io.Discard, nil))
	fallback := slog.New(slog.NewTextHandler(io.Discard, nil))

	ctx := WithContext(context.Background(), scoped)
	assert.Same(t, scoped, FromContextOrDefault(ctx, fallback))
	assert.Same(t, fallback, FromContextOrDefault(context.Background(), fallback))
	assert.NotNil(t, FromContextOrDefault(context.Background(), nil))
}

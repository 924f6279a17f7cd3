package log

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		"":        LevelInfo,
		"warning": LevelWarn,
		"error":   LevelError,
		"off":     LevelSilent,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	require.Error(t, err)
}

func TestLogger_FieldsReachCore(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := NewFromCore(core)

	logger.With(Component("litter")).Info("placed",
		Int("slot", 7),
		Float64("scale", 0.5),
		Bool("flying", true),
		Error(errors.New("boom")),
	)

	entries := logs.FilterMessage("placed").All()
	require.Len(t, entries, 1)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "litter", ctx["component"])
	assert.EqualValues(t, 7, ctx["slot"])
	assert.Equal(t, 0.5, ctx["scale"])
	assert.Equal(t, true, ctx["flying"])
	assert.Equal(t, "boom", ctx["error"])
}

func TestLogger_WithContext(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := NewFromCore(core)

	ctx := ContextWithFields(context.Background(), String("viewer_id", "v1"))
	ctx = ContextWithFields(ctx, Int("attempt", 2))
	logger.WithContext(ctx).Info("connected")
	logger.WithContext(context.Background()).Info("bare")

	got := logs.FilterMessage("connected").All()
	require.Len(t, got, 1)
	assert.Equal(t, "v1", got[0].ContextMap()["viewer_id"])
	assert.EqualValues(t, 2, got[0].ContextMap()["attempt"])
	assert.Empty(t, logs.FilterMessage("bare").All()[0].Context)
}

func TestLogger_SetLevelFilters(t *testing.T) {
	logger := New(LevelInfo)
	assert.Equal(t, LevelInfo, logger.GetLevel())

	logger.SetLevel(LevelError)
	assert.Equal(t, LevelError, logger.GetLevel())
}

func TestProvideFallsBackToNop(t *testing.T) {
	require.NotNil(t, Provide())
	NewNop().Info("discarded")
}

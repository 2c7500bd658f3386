package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelFromString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, slog.LevelDebug, LevelFromString("DEBUG"))
	assert.Equal(t, slog.LevelInfo, LevelFromString("info"))
	assert.Equal(t, slog.LevelWarn, LevelFromString("warn"))
	assert.Equal(t, slog.LevelError, LevelFromString(" error "))
	assert.Equal(t, LevelSilent, LevelFromString("silent"))
	assert.Equal(t, slog.LevelWarn, LevelFromString("nonsense"))
}

func TestLevelFromVerbosity(t *testing.T) {
	t.Parallel()
	assert.Equal(t, slog.LevelWarn, LevelFromVerbosity(slog.LevelWarn, 0))
	assert.Equal(t, slog.LevelInfo, LevelFromVerbosity(slog.LevelWarn, 1))
	assert.Equal(t, slog.LevelDebug, LevelFromVerbosity(slog.LevelDebug, 1))
	assert.Equal(t, slog.LevelDebug, LevelFromVerbosity(slog.LevelError, 3))
}

func TestNew_FiltersByLevel(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	l := New(&buf, slog.LevelWarn)
	l.Info("hidden")
	l.Warn("shown", "k", 1)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "k=1")
}

func TestDiscard(t *testing.T) {
	t.Parallel()
	l := Discard()
	assert.False(t, l.Enabled(context.Background(), slog.LevelError))
}

package logutil

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPreserveRestoresLevel(t *testing.T) {
	Level.Set(slog.LevelInfo)

	restore := Preserve()
	Level.Set(slog.LevelDebug)
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	restore()

	assert.Equal(t, slog.LevelInfo, Level.Level())
}

func TestPreserveRestoresDefaultLogger(t *testing.T) {
	original := slog.Default()

	restore := Preserve()
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	restore()

	assert.Same(t, original, slog.Default())
}

package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func capture(t *testing.T, level string) *bytes.Buffer {
	t.Helper()
	prev := defaultLogger
	t.Cleanup(func() {
		if prev != nil {
			SetDefault(prev)
		} else {
			defaultLogger = nil
		}
	})
	var buf bytes.Buffer
	SetDefault(New(&buf, level, "json"))
	return &buf
}

func TestDatabaseResult_LevelDependsOnError(t *testing.T) {
	buf := capture(t, "info")

	DatabaseResult("insert reservation", 1, nil)
	assert.Empty(t, buf.String())

	DatabaseResult("insert reservation", 0, errors.New("lock timeout"))
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "insert reservation", entry["operation"])
	assert.Equal(t, "lock timeout", entry["error"])
}

func TestEnterMethod_CarriesArgs(t *testing.T) {
	buf := capture(t, "debug")

	EnterMethod("BookReservation", "spaceID", "A1")
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "BookReservation", entry["method"])
	assert.Equal(t, "enter", entry["event"])
	assert.Equal(t, "A1", entry["spaceID"])
}

package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DefaultsToInfoJSON(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Options{Output: &buf})
	require.NoError(t, err)

	l.Debug().Msg("hidden")
	l.Info().Str("annotation", "a1").Msg("created")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "created", entry["message"])
	assert.Equal(t, "a1", entry["annotation"])
}

func TestNew_ConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Options{Level: "DEBUG", Format: FormatConsole, Output: &buf})
	require.NoError(t, err)

	l.Debug().Msg("listener attached")
	assert.Contains(t, buf.String(), "listener attached")
	assert.Contains(t, buf.String(), "DBG")
}

func TestNew_RejectsBadInput(t *testing.T) {
	_, err := New(Options{Level: "loud"})
	assert.Error(t, err)

	_, err = New(Options{Format: "xml"})
	assert.Error(t, err)
}

func TestSetLogger(t *testing.T) {
	prev := Logger()
	t.Cleanup(func() { SetLogger(prev) })

	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf))
	log := Component("binder")
	log.Info().Msg("hello")

	assert.Contains(t, buf.String(), `"component":"binder"`)
}

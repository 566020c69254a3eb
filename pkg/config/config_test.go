package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-drift/drift-maps/pkg/logging"
	"github.com/go-drift/drift-maps/pkg/marker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("", t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "", cfg.File)
	assert.Equal(t, marker.DefaultStyle(), cfg.Defaults())
	assert.Equal(t, logging.Options{Level: "info", Format: logging.FormatConsole}, cfg.Logging())
}

func TestLoad_YAMLFileInDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "markerctl.yaml"), `
log:
  level: debug
  format: json
marker:
  color: "#0a84ff"
  animates: false
`)

	cfg, err := Load("", dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "markerctl.yaml"), cfg.File)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, logging.FormatJSON, cfg.Logging().Format)
	d := cfg.Defaults()
	assert.Equal(t, "#0a84ff", d.Color)
	assert.Equal(t, "white", d.GlyphColor)
	assert.False(t, d.Animates)
	assert.True(t, d.Enabled)
}

func TestLoad_ExplicitTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	writeFile(t, path, `
[marker]
glyphColor = "black"
enabled = false
`)

	cfg, err := Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, "black", cfg.Marker.GlyphColor)
	assert.False(t, cfg.Marker.Enabled)
}

func TestLoad_ExplicitPathMustExist(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), "")
	assert.Error(t, err)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "markerctl.yaml"), "log:\n  level: warn\n")
	t.Setenv("MARKERCTL_LOG_LEVEL", "error")
	t.Setenv("MARKERCTL_MARKER_COLOR", "#111111")

	cfg, err := Load("", dir)
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Log.Level)
	assert.Equal(t, "#111111", cfg.Marker.Color)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

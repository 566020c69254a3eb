// Package config loads markerctl settings from an optional config file and
// MARKERCTL_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-drift/drift-maps/pkg/logging"
	"github.com/go-drift/drift-maps/pkg/marker"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. MARKERCTL_LOG_LEVEL.
const EnvPrefix = "MARKERCTL"

// Config holds resolved settings.
type Config struct {
	Log    LogConfig    `mapstructure:"log"`
	Marker MarkerConfig `mapstructure:"marker"`

	// File is the config file that was read, or "" when none was found.
	File string `mapstructure:"-"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MarkerConfig overrides the defaults applied to zero-valued marker fields.
type MarkerConfig struct {
	Color      string `mapstructure:"color"`
	GlyphColor string `mapstructure:"glyphColor"`
	Animates   bool   `mapstructure:"animates"`
	Enabled    bool   `mapstructure:"enabled"`
}

func setDefaults(v *viper.Viper) {
	d := marker.DefaultStyle()
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", string(logging.FormatConsole))
	v.SetDefault("marker.color", d.Color)
	v.SetDefault("marker.glyphColor", d.GlyphColor)
	v.SetDefault("marker.animates", d.Animates)
	v.SetDefault("marker.enabled", d.Enabled)
}

// Load reads settings. With an empty path it looks for markerctl.{yaml,toml,json}
// in dir and carries on with defaults when none exists; an explicit path
// must exist. Environment variables override file values.
func Load(path, dir string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		if dir == "" {
			dir = "."
		}
		v.SetConfigName("markerctl")
		v.AddConfigPath(dir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: reading %s: %w", describe(path, dir), err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decoding: %w", err)
	}
	cfg.File = v.ConfigFileUsed()
	return &cfg, nil
}

func describe(path, dir string) string {
	if path != "" {
		return path
	}
	return dir + "/markerctl.*"
}

// Defaults returns the marker defaults described by c.
func (c *Config) Defaults() marker.Defaults {
	return marker.Defaults{
		Color:      c.Marker.Color,
		GlyphColor: c.Marker.GlyphColor,
		Animates:   c.Marker.Animates,
		Enabled:    c.Marker.Enabled,
	}
}

// Logging returns logger options for c.
func (c *Config) Logging() logging.Options {
	return logging.Options{
		Level:  c.Log.Level,
		Format: logging.Format(c.Log.Format),
	}
}

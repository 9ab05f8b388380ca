// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New() builds a Config with defaults; Load(ctx) layers file and env on top.
// - External errors are wrapped with this package's sentinel kinds.
package config

import "time"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// RosterURL is the roster endpoint, e.g. http://localhost:5000/api/fighters.
	RosterURL string `koanf:"roster_url"`

	// HistoryURL is the history endpoint base; the entity id is appended as
	// the last path segment.
	HistoryURL string `koanf:"history_url"`

	// HTTPTimeoutMS bounds every upstream request.
	HTTPTimeoutMS int `koanf:"http_timeout_ms"`

	// ActionQueueSize bounds pending user actions on the action loop.
	ActionQueueSize int `koanf:"action_queue_size"`

	// ChartWidth and ChartHeight size the rendered chart image in pixels.
	ChartWidth  int `koanf:"chart_width"`
	ChartHeight int `koanf:"chart_height"`

	// Palette lists series colors as hex strings; slot N uses Palette[N].
	Palette []string `koanf:"palette"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		LogFormat:       "text",
		Addr:            ":9080",
		RosterURL:       "http://localhost:5000/api/fighters",
		HistoryURL:      "http://localhost:5000/api/elo_history",
		HTTPTimeoutMS:   30_000,
		ActionQueueSize: 64,
		ChartWidth:      1024,
		ChartHeight:     512,
		Palette:         []string{"#bb86fc", "#03dac6", "#cf6679", "#f48fb1"},
	}
}

// HTTPTimeout returns HTTPTimeoutMS as a duration.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutMS) * time.Millisecond
}

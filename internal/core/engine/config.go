package engine

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/driftsync/driftsync/internal/core/observability/log"
)

// Config holds every tunable of the sync core. It is threaded through
// constructors explicitly; there is no ambient global state.
type Config struct {
	// Network settings
	ServerAddr string `json:"server_addr" yaml:"server_addr"`
	Transport  string `json:"transport" yaml:"transport"`

	// Snapshot cadence
	SyncRateHz      float64 `json:"sync_rate_hz" yaml:"sync_rate_hz"`
	TickRateHz      float64 `json:"tick_rate_hz" yaml:"tick_rate_hz"`
	HistoryCapacity int     `json:"history_capacity,omitempty" yaml:"history_capacity,omitempty"`

	// Interpolation settings
	Interpolate         bool `json:"interpolate" yaml:"interpolate"`
	ExtrapolateWindowMs int  `json:"extrapolate_window_ms" yaml:"extrapolate_window_ms"`

	// Net statistics
	PingIntervalMs int `json:"ping_interval_ms" yaml:"ping_interval_ms"`

	// Inbound queue
	InboxCapacity int `json:"inbox_capacity" yaml:"inbox_capacity"`

	// Attributes driven by local prediction on the player entity; the
	// server diff never overwrites these. Score/health style attributes
	// stay server-authoritative by staying off this list.
	PredictedAttributes []string `json:"predicted_attributes" yaml:"predicted_attributes"`

	// Logging
	LogLevel string `json:"log_level" yaml:"log_level"`
}

// DefaultConfig returns the configuration used when no file is supplied.
func DefaultConfig() Config {
	return Config{
		ServerAddr:          "localhost:9000",
		Transport:           "websocket",
		SyncRateHz:          20,
		TickRateHz:          60,
		Interpolate:         true,
		ExtrapolateWindowMs: 250,
		PingIntervalMs:      250,
		InboxCapacity:       256,
		PredictedAttributes: []string{"x", "y"},
		LogLevel:            "info",
	}
}

// LoadYAML reads a Config from YAML, applied over the defaults.
func LoadYAML(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode yaml config: %w", err)
	}
	return cfg, cfg.Validate()
}

// LoadJSON reads a Config from JSON, applied over the defaults.
func LoadJSON(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	if err := json.NewDecoder(r).Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode json config: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate rejects configurations the engine cannot run with.
func (c Config) Validate() error {
	if c.SyncRateHz <= 0 {
		return fmt.Errorf("sync_rate_hz must be positive, got %v", c.SyncRateHz)
	}
	if c.TickRateHz <= 0 {
		return fmt.Errorf("tick_rate_hz must be positive, got %v", c.TickRateHz)
	}
	if c.InboxCapacity <= 0 {
		return fmt.Errorf("inbox_capacity must be positive, got %d", c.InboxCapacity)
	}
	return nil
}

// SyncInterval is the nominal time between server snapshots.
func (c Config) SyncInterval() time.Duration {
	return time.Duration(float64(time.Second) / c.SyncRateHz)
}

// TickInterval is the render/update tick period.
func (c Config) TickInterval() time.Duration {
	return time.Duration(float64(time.Second) / c.TickRateHz)
}

// PingInterval is the ping cadence.
func (c Config) PingInterval() time.Duration {
	return time.Duration(c.PingIntervalMs) * time.Millisecond
}

// ExtrapolateWindow is how long past the newest snapshot the engine may
// project before going dark.
func (c Config) ExtrapolateWindow() time.Duration {
	return time.Duration(c.ExtrapolateWindowMs) * time.Millisecond
}

// Level maps the configured log level name onto the log facade.
func (c Config) Level() log.Level {
	switch c.LogLevel {
	case "debug":
		return log.LevelDebug
	case "warn":
		return log.LevelWarn
	case "error":
		return log.LevelError
	default:
		return log.LevelInfo
	}
}

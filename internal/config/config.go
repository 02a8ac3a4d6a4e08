// Package config defines service configuration and its loading rules.
//
// Conventions:
// - Defaults come from New; Load layers an optional YAML file and env vars.
// - Struct fields carry koanf tags matching the flat config keys.
package config

import "time"

// MQTT configures the ingestion adapter.
type MQTT struct {
	// Enabled turns the feed subscription on. The engine runs without it
	// (simulator, tests) when false.
	Enabled bool `koanf:"enabled"`

	// BrokerURL is the MQTT endpoint, e.g. wss://meri.digitraffic.fi:443/mqtt.
	BrokerURL string `koanf:"broker_url"`

	// Topic is the subscription filter; the second segment carries the MMSI.
	Topic string `koanf:"topic"`
}

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the ops HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory report queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of pipeline consumers. One serializes
	// all state mutation; the stores stay correct at higher counts.
	WorkerCount int `koanf:"worker_count"`

	// HistoryLength is the per-vessel sliding window capacity.
	HistoryLength int `koanf:"history_length"`

	// Anomaly rule thresholds.
	SpeedDropPct    float64 `koanf:"speed_drop_pct"`
	CourseChangeDeg float64 `koanf:"course_change_deg"`
	DriftSpeedMS    float64 `koanf:"drift_speed_ms"`

	// CooldownSeconds is the minimum spacing between alerts per vessel.
	CooldownSeconds int `koanf:"cooldown_seconds"`

	// AlertLogSize bounds the in-memory recent-alert buffer behind /alerts.
	AlertLogSize int `koanf:"alert_log_size"`

	MQTT MQTT `koanf:"mqtt"`
}

// New returns the default configuration.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		Addr:            ":9080",
		QueueSize:       10_000,
		WorkerCount:     1,
		HistoryLength:   5,
		SpeedDropPct:    50,
		CourseChangeDeg: 45,
		DriftSpeedMS:    0.5,
		CooldownSeconds: 600,
		AlertLogSize:    100,
		MQTT: MQTT{
			Enabled:   true,
			BrokerURL: "wss://meri.digitraffic.fi:443/mqtt",
			Topic:     "vessels-v2/+/location",
		},
	}
}

// Cooldown returns the cooldown window as a duration.
func (c *Config) Cooldown() time.Duration {
	return time.Duration(c.CooldownSeconds) * time.Second
}

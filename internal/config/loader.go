package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, an optional file, and env vars.
// Precedence (low -> high):
//  1. defaults (New)
//  2. YAML file named by DRIFTWATCH_CONFIG
//  3. env vars with prefix DRIFTWATCH_
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("DRIFTWATCH_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// DRIFTWATCH_QUEUE_SIZE -> queue_size; the mqtt_ group maps to nested
	// keys: DRIFTWATCH_MQTT_BROKER_URL -> mqtt.broker_url.
	envProvider := env.Provider("DRIFTWATCH_", ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, "DRIFTWATCH_"))
		if rest, ok := strings.CutPrefix(s, "mqtt_"); ok {
			return "mqtt." + rest
		}
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.QueueSize <= 0:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.WorkerCount <= 0:
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	case c.HistoryLength < 2:
		return fmt.Errorf("%w: history_length must be at least 2", ErrInvalidConfig)
	case c.SpeedDropPct <= 0 || c.CourseChangeDeg <= 0 || c.DriftSpeedMS <= 0:
		return fmt.Errorf("%w: anomaly thresholds must be positive", ErrInvalidConfig)
	case c.CooldownSeconds < 0:
		return fmt.Errorf("%w: cooldown_seconds must not be negative", ErrInvalidConfig)
	case c.MQTT.Enabled && c.MQTT.BrokerURL == "":
		return fmt.Errorf("%w: mqtt.broker_url must not be empty when mqtt is enabled", ErrInvalidConfig)
	}
	return nil
}

package config

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/c360/spscring/errors"
	"github.com/c360/spscring/health"
	"github.com/c360/spscring/pkg/retry"
	"github.com/c360/spscring/pkg/ring"
)

// Config is the complete driver configuration
type Config struct {
	Ring     RingConfig        `json:"ring" yaml:"ring"`
	Metrics  MetricsConfig     `json:"metrics" yaml:"metrics"`
	Producer ProducerConfig    `json:"producer" yaml:"producer"`
	Health   health.Thresholds `json:"health" yaml:"health"`
}

// RingConfig describes the ring under test
type RingConfig struct {
	Name           string `json:"name" yaml:"name"`
	Capacity       int    `json:"capacity" yaml:"capacity"`         // slots, power of two
	ElementSize    int    `json:"element_size" yaml:"element_size"` // bytes per element
	OverflowPolicy string `json:"overflow_policy" yaml:"overflow_policy"`
}

// MetricsConfig controls the Prometheus endpoint
type MetricsConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Port    int    `json:"port" yaml:"port"`
	Path    string `json:"path" yaml:"path"`
}

// ProducerConfig controls the driver's producer
type ProducerConfig struct {
	Items int         `json:"items" yaml:"items"` // elements to transfer
	Rate  float64     `json:"rate" yaml:"rate"`   // elements per second, 0 is unlimited
	Burst int         `json:"burst" yaml:"burst"` // elements admitted at once when Rate is set
	Retry RetryConfig `json:"retry" yaml:"retry"`
}

// RetryConfig is the serialized form of retry.Config
type RetryConfig struct {
	MaxAttempts  int      `json:"max_attempts" yaml:"max_attempts"`
	InitialDelay Duration `json:"initial_delay" yaml:"initial_delay"`
	MaxDelay     Duration `json:"max_delay" yaml:"max_delay"`
	Multiplier   float64  `json:"multiplier" yaml:"multiplier"`
	Jitter       bool     `json:"jitter" yaml:"jitter"`
}

// Retry converts to the retry package configuration
func (r RetryConfig) Retry() retry.Config {
	return retry.Config{
		MaxAttempts:  r.MaxAttempts,
		InitialDelay: time.Duration(r.InitialDelay),
		MaxDelay:     time.Duration(r.MaxDelay),
		Multiplier:   r.Multiplier,
		Jitter:       r.Jitter,
	}
}

// Default returns the configuration used when no file is given
func Default() *Config {
	rc := retry.DefaultConfig()
	return &Config{
		Ring: RingConfig{
			Name:           "telemetry",
			Capacity:       1024,
			ElementSize:    24,
			OverflowPolicy: ring.Reject.String(),
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
			Path:    "/metrics",
		},
		Producer: ProducerConfig{
			Items: 1_000_000,
			Burst: 256,
			Retry: RetryConfig{
				MaxAttempts:  rc.MaxAttempts,
				InitialDelay: Duration(rc.InitialDelay),
				MaxDelay:     Duration(rc.MaxDelay),
				Multiplier:   rc.Multiplier,
				Jitter:       rc.Jitter,
			},
		},
		Health: health.DefaultThresholds(),
	}
}

// Validate checks semantic rules the schema cannot express
func (c *Config) Validate() error {
	if c.Ring.Name == "" {
		return invalidf("ring.name is required")
	}
	if !ring.IsPowerOfTwo(c.Ring.Capacity) {
		return invalidf("ring.capacity must be a power of two, got %d", c.Ring.Capacity)
	}
	if c.Ring.ElementSize <= 0 {
		return invalidf("ring.element_size must be positive, got %d", c.Ring.ElementSize)
	}
	if _, err := ring.ParseOverflowPolicy(c.Ring.OverflowPolicy); err != nil {
		return invalidf("ring.overflow_policy %q is not one of reject, overwrite", c.Ring.OverflowPolicy)
	}

	if c.Metrics.Enabled {
		if c.Metrics.Port < 0 || c.Metrics.Port > 65535 {
			return invalidf("metrics.port out of range: %d", c.Metrics.Port)
		}
		if !strings.HasPrefix(c.Metrics.Path, "/") {
			return invalidf("metrics.path must start with /, got %q", c.Metrics.Path)
		}
	}

	if c.Producer.Items < 0 {
		return invalidf("producer.items cannot be negative")
	}
	if c.Producer.Rate < 0 {
		return invalidf("producer.rate cannot be negative")
	}
	if c.Producer.Rate > 0 && c.Producer.Burst < 1 {
		return invalidf("producer.burst must be at least 1 when producer.rate is set")
	}
	if err := c.Producer.Retry.Retry().Validate(); err != nil {
		return err
	}

	th := c.Health
	if th.DegradedOverflowRate < 0 || th.UnhealthyOverflowRate < 0 || th.DegradedUtilization < 0 {
		return invalidf("health thresholds cannot be negative")
	}
	if th.UnhealthyOverflowRate > 0 && th.DegradedOverflowRate > th.UnhealthyOverflowRate {
		return invalidf("health.degraded_overflow_rate must not exceed health.unhealthy_overflow_rate")
	}

	return nil
}

func invalidf(format string, args ...any) error {
	return errors.WrapInvalid(fmt.Errorf("%w: "+format, append([]any{errors.ErrInvalidConfig}, args...)...),
		"Config", "Validate", "validate config")
}

// String returns the configuration as indented JSON
func (c *Config) String() string {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Sprintf("Config{error: %v}", err)
	}
	return string(data)
}

// Duration is a time.Duration that reads from either a Go duration string
// ("250us", "5ms") or an integer nanosecond count.
type Duration time.Duration

// MarshalJSON writes the duration as a string
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON accepts a duration string or nanoseconds
func (d *Duration) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	return d.set(v)
}

// MarshalYAML writes the duration as a string
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML accepts a duration string or nanoseconds
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var v any
	if err := node.Decode(&v); err != nil {
		return err
	}
	return d.set(v)
}

func (d *Duration) set(v any) error {
	switch val := v.(type) {
	case string:
		parsed, err := time.ParseDuration(val)
		if err != nil {
			return errors.WrapInvalid(fmt.Errorf("%w: %v", errors.ErrParsingFailed, err),
				"Config", "Duration", "parse duration")
		}
		*d = Duration(parsed)
	case float64:
		*d = Duration(int64(val))
	case int:
		*d = Duration(int64(val))
	default:
		return errors.WrapInvalid(fmt.Errorf("%w: duration must be a string or number, got %T", errors.ErrParsingFailed, v),
			"Config", "Duration", "parse duration")
	}
	return nil
}

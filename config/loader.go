package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/c360/spscring/errors"
)

// Loader reads configuration files on top of Default and applies
// environment overrides
type Loader struct {
	envPrefix  string
	validation bool
}

// NewLoader creates a loader with the RINGDEMO environment prefix and
// validation enabled
func NewLoader() *Loader {
	return &Loader{
		envPrefix:  "RINGDEMO",
		validation: true,
	}
}

// SetEnvPrefix changes the prefix of environment overrides
func (l *Loader) SetEnvPrefix(prefix string) {
	l.envPrefix = prefix
}

// EnableValidation enables or disables semantic validation after loading
func (l *Loader) EnableValidation(enable bool) {
	l.validation = enable
}

// Load loads configuration with the default loader
func Load(path string) (*Config, error) {
	return NewLoader().Load(path)
}

// Load reads path (JSON or YAML by extension) over the defaults. An empty
// path yields the defaults. The file is checked against the schema, then
// environment overrides are applied, then Validate runs.
func (l *Loader) Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := l.loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := l.applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if l.validation {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func (l *Loader) loadFile(path string, cfg *Config) error {
	data, f, err := safeReadFile(path)
	if err != nil {
		return err
	}

	var document map[string]any
	switch f {
	case formatYAML:
		err = yaml.Unmarshal(data, &document)
	default:
		err = json.Unmarshal(data, &document)
	}
	if err != nil {
		return parseError(path, err)
	}

	if err := validateSchema(document); err != nil {
		return err
	}

	// decode over the defaults so absent keys keep their default value
	switch f {
	case formatYAML:
		err = yaml.Unmarshal(data, cfg)
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(cfg)
	}
	if err != nil {
		return parseError(path, err)
	}
	return nil
}

func parseError(path string, err error) error {
	return errors.WrapInvalid(fmt.Errorf("%w: %s: %v", errors.ErrParsingFailed, path, err),
		"Loader", "Load", "parse config file")
}

// applyEnvOverrides applies PREFIX_RING_*, PREFIX_METRICS_* and
// PREFIX_PRODUCER_* environment variables
func (l *Loader) applyEnvOverrides(cfg *Config) error {
	if val := os.Getenv(l.envPrefix + "_RING_NAME"); val != "" {
		cfg.Ring.Name = val
	}
	if val := os.Getenv(l.envPrefix + "_RING_OVERFLOW_POLICY"); val != "" {
		cfg.Ring.OverflowPolicy = val
	}
	if val := os.Getenv(l.envPrefix + "_METRICS_PATH"); val != "" {
		cfg.Metrics.Path = val
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"_RING_CAPACITY", &cfg.Ring.Capacity},
		{"_RING_ELEMENT_SIZE", &cfg.Ring.ElementSize},
		{"_METRICS_PORT", &cfg.Metrics.Port},
		{"_PRODUCER_ITEMS", &cfg.Producer.Items},
		{"_PRODUCER_BURST", &cfg.Producer.Burst},
	}
	for _, o := range ints {
		val := os.Getenv(l.envPrefix + o.key)
		if val == "" {
			continue
		}
		n, err := strconv.Atoi(val)
		if err != nil {
			return envError(l.envPrefix+o.key, err)
		}
		*o.dst = n
	}

	if val := os.Getenv(l.envPrefix + "_PRODUCER_RATE"); val != "" {
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return envError(l.envPrefix+"_PRODUCER_RATE", err)
		}
		cfg.Producer.Rate = f
	}

	if val := os.Getenv(l.envPrefix + "_METRICS_ENABLED"); val != "" {
		b, err := strconv.ParseBool(val)
		if err != nil {
			return envError(l.envPrefix+"_METRICS_ENABLED", err)
		}
		cfg.Metrics.Enabled = b
	}
	return nil
}

func envError(key string, err error) error {
	return errors.WrapInvalid(fmt.Errorf("%w: %s: %v", errors.ErrParsingFailed, key, err),
		"Loader", "Load", "apply environment overrides")
}

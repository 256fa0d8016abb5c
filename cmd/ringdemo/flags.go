package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
)

// CLIConfig holds command-line configuration. MetricsPort and Items are -1
// when the config file value should be used.
type CLIConfig struct {
	ConfigPath  string
	LogLevel    string
	LogFormat   string
	MetricsPort int
	Items       int
	ShowVersion bool
	Validate    bool
}

func parseFlags(args []string, output io.Writer) (*CLIConfig, error) {
	cfg := &CLIConfig{}
	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	fs.SetOutput(output)

	configDefault := getEnv("RINGDEMO_CONFIG", "")
	fs.StringVar(&cfg.ConfigPath, "config", configDefault,
		"Path to a JSON or YAML configuration file (env: RINGDEMO_CONFIG)")
	fs.StringVar(&cfg.ConfigPath, "c", configDefault,
		"Path to a JSON or YAML configuration file (env: RINGDEMO_CONFIG)")

	fs.StringVar(&cfg.LogLevel, "log-level",
		getEnv("RINGDEMO_LOG_LEVEL", "info"),
		"Log level: debug, info, warn, error (env: RINGDEMO_LOG_LEVEL)")

	fs.StringVar(&cfg.LogFormat, "log-format",
		getEnv("RINGDEMO_LOG_FORMAT", "json"),
		"Log format: json, text (env: RINGDEMO_LOG_FORMAT)")

	fs.IntVar(&cfg.MetricsPort, "metrics-port",
		getEnvInt("RINGDEMO_METRICS_PORT", -1),
		"Metrics and health port, 0 to disable, -1 for the config value (env: RINGDEMO_METRICS_PORT)")

	fs.IntVar(&cfg.Items, "items",
		getEnvInt("RINGDEMO_ITEMS", -1),
		"Number of elements to transfer, -1 for the config value (env: RINGDEMO_ITEMS)")

	fs.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")
	fs.BoolVar(&cfg.Validate, "validate", false, "Validate configuration and exit")

	fs.Usage = func() {
		_, _ = fmt.Fprintf(output, "%s - drive a producer and a consumer through an SPSC ring\n\nUsage: %s [options]\n\nOptions:\n",
			appName, appName)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateFlags(cfg *CLIConfig) error {
	if cfg.ShowVersion {
		return nil
	}

	if cfg.ConfigPath != "" {
		if _, err := os.Stat(cfg.ConfigPath); err != nil {
			return fmt.Errorf("config file not found: %s", cfg.ConfigPath)
		}
	}

	if !slices.Contains([]string{"debug", "info", "warn", "error"}, cfg.LogLevel) {
		return fmt.Errorf("invalid log level: %s", cfg.LogLevel)
	}
	if !slices.Contains([]string{"json", "text"}, cfg.LogFormat) {
		return fmt.Errorf("invalid log format: %s", cfg.LogFormat)
	}
	if cfg.MetricsPort < -1 || cfg.MetricsPort > 65535 {
		return fmt.Errorf("invalid metrics port: %d", cfg.MetricsPort)
	}
	if cfg.Items < -1 {
		return fmt.Errorf("invalid item count: %d", cfg.Items)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

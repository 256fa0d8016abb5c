// Package main implements ringdemo, which pushes fixed-size samples from a
// producer goroutine to a consumer goroutine through an SPSC byte ring and
// reports throughput, overflow and ordering.
package main

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/google/uuid"

	"github.com/c360/spscring/config"
	"github.com/c360/spscring/health"
	"github.com/c360/spscring/metric"
)

// Build information constants
const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "ringdemo"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		slog.Error("Application failed", "error", err, "exit_code", 1)
		cancel()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cliCfg, err := parseFlags(args, stderr)
	if err != nil {
		if stderrors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("invalid flags: %w", err)
	}
	if err := validateFlags(cliCfg); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	if cliCfg.ShowVersion {
		_, _ = fmt.Fprintf(stdout, "%s version %s (build %s)\n", appName, Version, BuildTime)
		return nil
	}

	runID := uuid.NewString()
	logger := setupLogger(stdout, cliCfg.LogLevel, cliCfg.LogFormat, runID)
	slog.SetDefault(logger)

	cfg, err := loadConfig(cliCfg)
	if err != nil {
		return err
	}

	if cliCfg.Validate {
		logger.Info("Configuration is valid", "config_path", cliCfg.ConfigPath)
		return nil
	}

	logger.Info("Starting ringdemo",
		"build_time", BuildTime,
		"config_path", cliCfg.ConfigPath,
		"ring", cfg.Ring.Name)

	registry := metric.NewMetricsRegistry()
	monitor := health.NewMonitor(registry.CoreMetrics())

	driver, err := NewDriver(cfg, registry, monitor, logger, runID)
	if err != nil {
		return fmt.Errorf("create driver: %w", err)
	}

	if cfg.Metrics.Enabled && cfg.Metrics.Port > 0 {
		server := metric.NewServer(cfg.Metrics.Port, cfg.Metrics.Path, registry, monitor.Handler(appName))
		go func() {
			if err := server.Start(); err != nil {
				logger.Error("Metrics server failed", "error", err)
			}
		}()
		defer func() {
			if err := server.Stop(); err != nil {
				logger.Warn("Metrics server stop failed", "error", err)
			}
		}()
		logger.Info("Metrics server listening", "address", server.Address())
	}

	summary, err := driver.Run(ctx, cfg.Producer.Items)
	logSummary(logger, summary)
	if err != nil {
		return err
	}
	if summary.OrderViolations > 0 {
		return fmt.Errorf("%d elements arrived out of order", summary.OrderViolations)
	}
	return nil
}

// loadConfig loads the configuration file and applies flag overrides
func loadConfig(cliCfg *CLIConfig) (*config.Config, error) {
	loader := config.NewLoader()
	loader.EnableValidation(false)

	cfg, err := loader.Load(cliCfg.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if cliCfg.MetricsPort >= 0 {
		cfg.Metrics.Port = cliCfg.MetricsPort
		cfg.Metrics.Enabled = cliCfg.MetricsPort > 0
	}
	if cliCfg.Items >= 0 {
		cfg.Producer.Items = cliCfg.Items
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func logSummary(logger *slog.Logger, s Summary) {
	attrs := []any{
		"produced", s.Produced,
		"consumed", s.Consumed,
		"dropped", s.Dropped,
		"retries", s.Retries,
		"order_violations", s.OrderViolations,
		"interrupted", s.Interrupted,
		"duration", s.Duration.String(),
		"max_len", s.Stats.MaxLen,
		"overflow_rate", s.Stats.OverflowRate,
	}
	if s.Duration > 0 {
		attrs = append(attrs, "items_per_second", float64(s.Consumed)/s.Duration.Seconds())
	}
	logger.Info("Run complete", attrs...)

	if data, err := json.Marshal(s); err == nil {
		logger.Debug("Run summary", "summary", json.RawMessage(data))
	}
}

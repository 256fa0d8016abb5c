package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/c360/spscring/errors"
)

const (
	maxConfigSize = 1 << 20 // 1MB max config file size
	maxPathLen    = 4096    // Maximum file path length
)

type format int

const (
	formatJSON format = iota
	formatYAML
)

// validateConfigPath checks length and extension and returns the file format
func validateConfigPath(path string) (format, error) {
	if path == "" {
		return 0, fmt.Errorf("%w: empty config path", errors.ErrMissingConfig)
	}
	if len(path) > maxPathLen {
		return 0, fmt.Errorf("%w: path too long: %d > %d", errors.ErrInvalidConfig, len(path), maxPathLen)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return formatJSON, nil
	case ".yaml", ".yml":
		return formatYAML, nil
	default:
		return 0, fmt.Errorf("%w: only .json, .yaml and .yml config files allowed: %s", errors.ErrInvalidConfig, path)
	}
}

// safeReadFile reads a regular config file no larger than maxConfigSize
func safeReadFile(path string) ([]byte, format, error) {
	f, err := validateConfigPath(path)
	if err != nil {
		return nil, 0, errors.WrapInvalid(err, "Loader", "Load", "validate config path")
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, errors.WrapInvalid(fmt.Errorf("%w: %s", errors.ErrConfigNotFound, path),
				"Loader", "Load", "stat config file")
		}
		return nil, 0, errors.WrapFatal(err, "Loader", "Load", "stat config file")
	}
	if !info.Mode().IsRegular() {
		return nil, 0, errors.WrapInvalid(fmt.Errorf("%w: not a regular file: %s", errors.ErrInvalidConfig, path),
			"Loader", "Load", "stat config file")
	}
	if info.Size() > maxConfigSize {
		return nil, 0, errors.WrapInvalid(
			fmt.Errorf("%w: config file too large: %d bytes > %d", errors.ErrInvalidConfig, info.Size(), maxConfigSize),
			"Loader", "Load", "stat config file")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, errors.WrapFatal(err, "Loader", "Load", "read config file")
	}
	return data, f, nil
}

// Package config loads the recorder configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"logonlog/internal/logger"
	"logonlog/internal/period"
)

// Default log roots on the shared logging server.
const (
	DefaultWorkstationRoot = `\\Server\LogonLogger$\Logs\ComputerNEW`
	DefaultUserRoot        = `\\Server\LogonLogger$\Logs\UserNEW`
)

// ErrInvalid is returned for configuration values that cannot be used.
var ErrInvalid = errors.New("invalid configuration")

// Config is the complete recorder configuration.
type Config struct {
	// WorkstationRoot holds the per-day workstation logs.
	WorkstationRoot string `yaml:"workstation_root"`
	// UserRoot holds the per-day user logs.
	UserRoot string `yaml:"user_root"`
	// Location is the IANA zone timestamps are written and read in. Empty
	// means the machine's local zone.
	Location string `yaml:"location"`
	// CollectTimeout bounds each fact collector.
	CollectTimeout time.Duration `yaml:"collect_timeout"`
	// Parallel is the number of collectors run at once.
	Parallel int `yaml:"parallel"`
	// Periods overrides the default school-day period table.
	Periods []period.Period `yaml:"periods"`

	Logging logger.Config `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// MetricsConfig controls the textfile metrics output.
type MetricsConfig struct {
	// Textfile is the .prom file written after each run. Empty disables it.
	Textfile string `yaml:"textfile"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		WorkstationRoot: DefaultWorkstationRoot,
		UserRoot:        DefaultUserRoot,
		CollectTimeout:  60 * time.Second,
		Parallel:        3,
		Periods:         period.Defaults(),
		Logging: logger.Config{
			Level:      "info",
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     30,
		},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: %s: %v", ErrInvalid, path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.WorkstationRoot == "" {
		return fmt.Errorf("%w: workstation_root is empty", ErrInvalid)
	}
	if c.UserRoot == "" {
		return fmt.Errorf("%w: user_root is empty", ErrInvalid)
	}
	if c.CollectTimeout <= 0 {
		return fmt.Errorf("%w: collect_timeout must be positive", ErrInvalid)
	}
	if _, err := c.TimeLocation(); err != nil {
		return err
	}
	if _, err := period.NewClassifier(c.Periods); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// TimeLocation resolves Location.
func (c Config) TimeLocation() (*time.Location, error) {
	if c.Location == "" || c.Location == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Location)
	if err != nil {
		return nil, fmt.Errorf("%w: location %q: %v", ErrInvalid, c.Location, err)
	}
	return loc, nil
}

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	// ConfigFileName is looked up in the current directory.
	ConfigFileName = "stop.yaml"
	// GlobalConfigDir is the directory for the per-user config.
	GlobalConfigDir = ".config/stop"
	// GlobalConfigFile is the per-user config file name.
	GlobalConfigFile = "config.yaml"
	// EnvPrefix prefixes environment overrides, e.g. STOP_DELAY.
	EnvPrefix = "STOP"
)

// Config is the resolved runtime configuration.
type Config struct {
	Delay       int           `mapstructure:"delay"`
	Timeout     time.Duration `mapstructure:"timeout"`
	LogFile     string        `mapstructure:"log_file"`
	LogLevel    string        `mapstructure:"log_level"`
	Server      bool          `mapstructure:"server"`
	Addr        string        `mapstructure:"addr"`
	MetricsAddr string        `mapstructure:"metrics_addr"`
	HistorySize int           `mapstructure:"history_size"`
	Commands    Commands      `mapstructure:"commands"`
}

// Commands overrides the Slurm executables.
type Commands struct {
	Sinfo    string `mapstructure:"sinfo"`
	Squeue   string `mapstructure:"squeue"`
	Scontrol string `mapstructure:"scontrol"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Delay:       30,
		Timeout:     10 * time.Second,
		LogLevel:    "info",
		Addr:        ":8000",
		HistorySize: 60,
		Commands: Commands{
			Sinfo:    "sinfo",
			Squeue:   "squeue",
			Scontrol: "scontrol",
		},
	}
}

// Interval returns the refresh period.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.Delay) * time.Second
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	var errs []error
	if c.Delay <= 0 {
		errs = append(errs, fmt.Errorf("delay must be a positive number of seconds, got %d", c.Delay))
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive, got %s", c.Timeout))
	}
	if c.HistorySize <= 0 {
		errs = append(errs, fmt.Errorf("history_size must be positive, got %d", c.HistorySize))
	}
	if c.Server && c.Addr == "" {
		errs = append(errs, errors.New("addr is required in server mode"))
	}
	return errors.Join(errs...)
}

// NewViper returns a viper instance carrying the defaults and environment
// bindings. Callers bind command-line flags onto it before Load.
func NewViper() *viper.Viper {
	v := viper.New()
	d := DefaultConfig()
	v.SetDefault("delay", d.Delay)
	v.SetDefault("timeout", d.Timeout.String())
	v.SetDefault("log_file", d.LogFile)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("server", d.Server)
	v.SetDefault("addr", d.Addr)
	v.SetDefault("metrics_addr", d.MetricsAddr)
	v.SetDefault("history_size", d.HistorySize)
	v.SetDefault("commands.sinfo", d.Commands.Sinfo)
	v.SetDefault("commands.squeue", d.Commands.Squeue)
	v.SetDefault("commands.scontrol", d.Commands.Scontrol)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// Find locates the config file using the search order:
// 1. Explicit path (from --config flag)
// 2. stop.yaml in the current directory
// 3. ~/.config/stop/config.yaml
//
// Returns an empty path when no file exists.
func Find(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file %s: %w", explicit, err)
		}
		return explicit, nil
	}

	if cwd, err := os.Getwd(); err == nil {
		local := filepath.Join(cwd, ConfigFileName)
		if _, err := os.Stat(local); err == nil {
			return local, nil
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		global := filepath.Join(home, GlobalConfigDir, GlobalConfigFile)
		if _, err := os.Stat(global); err == nil {
			return global, nil
		}
	}
	return "", nil
}

// Load reads the config file found by Find (if any) into v and returns the
// merged, validated configuration. Precedence is flags, environment, file,
// defaults.
func Load(v *viper.Viper, explicit string) (*Config, error) {
	path, err := Find(explicit)
	if err != nil {
		return nil, err
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

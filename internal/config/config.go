// Package config provides centralized configuration management using Viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration values for giftdist.
type Config struct {
	DefaultCount int           `mapstructure:"default_count" yaml:"default_count"`
	DefaultValue int           `mapstructure:"default_value" yaml:"default_value"`
	SendDelay    time.Duration `mapstructure:"send_delay" yaml:"send_delay"`
	BatchLabel   string        `mapstructure:"batch_label" yaml:"batch_label"`
	Dispatch     bool          `mapstructure:"dispatch" yaml:"dispatch"`
	LogLevel     string        `mapstructure:"log_level" yaml:"log_level"`
	LogFile      string        `mapstructure:"log_file" yaml:"log_file"`
}

// Default returns the configuration used when no file or env overrides exist.
func Default() *Config {
	return &Config{
		DefaultCount: 10,
		DefaultValue: 500,
		SendDelay:    1500 * time.Millisecond,
		BatchLabel:   "test",
		Dispatch:     true,
		LogLevel:     "info",
		LogFile:      "",
	}
}

// Load loads configuration with full precedence:
// CLI flags > ENV vars > project config > XDG global config > defaults
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigName("giftdist")

	d := Default()
	v.SetDefault("default_count", d.DefaultCount)
	v.SetDefault("default_value", d.DefaultValue)
	v.SetDefault("send_delay", d.SendDelay)
	v.SetDefault("batch_label", d.BatchLabel)
	v.SetDefault("dispatch", d.Dispatch)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_file", d.LogFile)

	v.SetEnvPrefix("GIFTDIST")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Explicit ENV bindings for better bool/int parsing
	for _, key := range []string{
		"default_count",
		"default_value",
		"send_delay",
		"batch_label",
		"dispatch",
		"log_level",
		"log_file",
	} {
		if err := v.BindEnv(key, "GIFTDIST_"+strings.ToUpper(key)); err != nil {
			return nil, fmt.Errorf("binding %s env: %w", key, err)
		}
	}

	globalPath := GlobalPath()
	if fileExists(globalPath) {
		v.SetConfigFile(globalPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading global config: %w", err)
		}
	}

	// Merge project config on top (if exists)
	projectPath := ProjectPath()
	if fileExists(projectPath) {
		v.SetConfigFile(projectPath)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("merging project config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that batch defaults stay inside the wizard's limits.
func (c *Config) Validate() error {
	if c.DefaultCount < 1 || c.DefaultCount > 100 {
		return fmt.Errorf("default_count must be between 1 and 100, got %d", c.DefaultCount)
	}
	if c.DefaultValue <= 0 {
		return fmt.Errorf("default_value must be positive, got %d", c.DefaultValue)
	}
	if c.SendDelay < 0 {
		return fmt.Errorf("send_delay must not be negative, got %s", c.SendDelay)
	}
	return nil
}

// Exists returns true if any config file exists (global or project).
func Exists() bool {
	return fileExists(GlobalPath()) || fileExists(ProjectPath())
}

// GlobalPath returns the XDG global config path.
// Returns ~/.config/giftdist/giftdist.yml or $XDG_CONFIG_HOME/giftdist/giftdist.yml.
func GlobalPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "giftdist", "giftdist.yml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "giftdist", "giftdist.yml")
}

// ProjectPath returns the project-local config path.
func ProjectPath() string {
	return "giftdist.yml"
}

// WriteGlobal writes the config to the XDG global location.
func WriteGlobal(cfg *Config) error {
	path := GlobalPath()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	return write(path, cfg)
}

// WriteProject writes the config to the project-local location.
func WriteProject(cfg *Config) error {
	return write(ProjectPath(), cfg)
}

func write(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// fileExists checks if a file exists.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

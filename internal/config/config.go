// Package config reads the habitreel YAML config file. Values come from defaults, then the
// file, then HABITREEL_* environment variables. Command-line flags are applied by the caller.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/julianstephens/habitreel/internal/constants"
	"github.com/julianstephens/habitreel/internal/utils"
)

type Config struct {
	// Database is a SQLite path or a PostgreSQL connection string without a password.
	// Empty uses the keyring entry, then the default SQLite file.
	Database string        `yaml:"database"`
	Timezone string        `yaml:"timezone,omitempty"`
	Debug    bool          `yaml:"debug"`
	Server   ServerConfig  `yaml:"server"`
	Rewards  RewardsConfig `yaml:"rewards"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type RewardsConfig struct {
	Enabled       bool   `yaml:"enabled"`
	ProviderURL   string `yaml:"provider_url"`
	Timeout       string `yaml:"timeout"`
	PrefetchLimit int    `yaml:"prefetch_limit"`
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{Addr: constants.DefaultServerAddr},
		Rewards: RewardsConfig{
			Timeout:       constants.DefaultRewardTimeout.String(),
			PrefetchLimit: constants.DefaultRewardPrefetchLimit,
		},
	}
}

// Load reads path, falling back to defaults when the file does not exist.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(utils.ExpandHome(path))
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Save(path string) error {
	path = utils.ExpandHome(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("HABITREEL_DATABASE"); v != "" {
		c.Database = v
	}
	if v := os.Getenv("HABITREEL_TIMEZONE"); v != "" {
		c.Timezone = v
	}
	if v := os.Getenv("HABITREEL_DEBUG"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("HABITREEL_DEBUG: %w", err)
		}
		c.Debug = b
	}
	if v := os.Getenv("HABITREEL_SERVER_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("HABITREEL_REWARDS_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("HABITREEL_REWARDS_ENABLED: %w", err)
		}
		c.Rewards.Enabled = b
	}
	if v := os.Getenv("HABITREEL_REWARDS_PROVIDER_URL"); v != "" {
		c.Rewards.ProviderURL = v
	}
	return nil
}

// RewardTimeout returns the provider timeout, or the default when unset or malformed.
func (c *Config) RewardTimeout() time.Duration {
	d, err := time.ParseDuration(c.Rewards.Timeout)
	if err != nil || d <= 0 {
		return constants.DefaultRewardTimeout
	}
	return d
}

// Dir is the directory holding the config file, used for logs and backups.
func Dir(path string) string {
	return filepath.Dir(utils.ExpandHome(path))
}

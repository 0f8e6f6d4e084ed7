// Package config loads go-posecoach service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

// Default service configuration.
const (
	DefaultPort           = 8080
	DefaultProfile        = "upward-dog"
	DefaultTickInterval   = time.Second
	DefaultKafkaTopic     = "posecoach.sessions"
	DefaultHistoryFile    = "history.db"
	DefaultProfilesFile   = "profiles.json"
	defaultStateDirectory = ".posecoach"
)

// Config holds all runtime settings for the coach service.
type Config struct {
	Port      int    `env:"POSECOACH_PORT" envDefault:"8080"`
	LogLevel  string `env:"POSECOACH_LOG_LEVEL" envDefault:"info"`
	Debug     bool   `env:"POSECOACH_DEBUG"`
	AutoStart bool   `env:"POSECOACH_AUTO_START" envDefault:"true"`

	// DefaultProfile is the reference profile new sessions score against.
	DefaultProfile string `env:"POSECOACH_DEFAULT_PROFILE" envDefault:"upward-dog"`

	// TickInterval is the session timer period. Anything but 1s is for testing.
	TickInterval time.Duration `env:"POSECOACH_TICK_INTERVAL" envDefault:"1s"`

	// Storage. Empty paths resolve under ~/.posecoach.
	HistoryPath  string `env:"POSECOACH_HISTORY_PATH"`
	ProfilesPath string `env:"POSECOACH_PROFILES_PATH"`

	// Kafka session events. Disabled when no brokers are configured.
	KafkaBrokers []string `env:"POSECOACH_KAFKA_BROKERS" envSeparator:","`
	KafkaTopic   string   `env:"POSECOACH_KAFKA_TOPIC" envDefault:"posecoach.sessions"`
}

// Load parses the process environment into a Config and fills derived defaults.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg.withDefaults(), nil
}

// LoadFrom parses the given environment map instead of the process environment.
func LoadFrom(environ map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg.withDefaults(), nil
}

// KafkaEnabled reports whether session events should be published.
func (c Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// Validate checks values env parsing cannot.
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("tick interval must be positive, got %v", c.TickInterval)
	}
	if c.DefaultProfile == "" {
		return fmt.Errorf("default profile must not be empty")
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.HistoryPath == "" {
		c.HistoryPath = StatePath(DefaultHistoryFile)
	}
	if c.ProfilesPath == "" {
		c.ProfilesPath = StatePath(DefaultProfilesFile)
	}
	if c.KafkaTopic == "" {
		c.KafkaTopic = DefaultKafkaTopic
	}
	return c
}

// StatePath returns name inside ~/.posecoach, or the working directory
// when no home directory is available.
func StatePath(name string) string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	return filepath.Join(homeDir, defaultStateDirectory, name)
}

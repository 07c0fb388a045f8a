package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Moodle MoodleConfig `mapstructure:"moodle"`
	Cache  CacheConfig  `mapstructure:"cache"`
	Scan   ScanConfig   `mapstructure:"scan"`
	Log    LogConfig    `mapstructure:"log"`
}

// MoodleConfig holds Moodle web service configuration
type MoodleConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	Token     string `mapstructure:"token"`
	PublicURL string `mapstructure:"public_url"` // Base of course deep links, defaults to BaseURL
	Timeout   int    `mapstructure:"timeout"`    // Seconds, 0 disables
	Language  string `mapstructure:"language"`   // Preferred multilang translation of names
}

// CacheConfig holds on-disk cache locations
type CacheConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	CoursesFile string `mapstructure:"courses_file"`
	UsersDir    string `mapstructure:"users_dir"`
}

type ScanConfig struct {
	Workers int `mapstructure:"workers"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load loads configuration from an optional YAML file with environment variable overrides.
// An empty path searches for config.yaml in the current directory.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if config.Moodle.PublicURL == "" {
		config.Moodle.PublicURL = config.Moodle.BaseURL
	}

	return &config, nil
}

// Validate checks the settings required to talk to Moodle.
func (c *Config) Validate() error {
	if c.Moodle.BaseURL == "" {
		return errors.New("moodle.base_url is required (env MOODLE_BASE_URL)")
	}
	if c.Moodle.Token == "" {
		return errors.New("moodle.token is required (env MOODLE_TOKEN)")
	}
	if c.Scan.Workers < 1 {
		return fmt.Errorf("scan.workers must be at least 1, got %d", c.Scan.Workers)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("moodle.base_url", "")
	v.SetDefault("moodle.token", "")
	v.SetDefault("moodle.public_url", "")
	v.SetDefault("moodle.timeout", 0)
	v.SetDefault("moodle.language", "")

	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.courses_file", "courses.json")
	v.SetDefault("cache.users_dir", "course_users")

	v.SetDefault("scan.workers", 1)

	v.SetDefault("log.level", "info")
}

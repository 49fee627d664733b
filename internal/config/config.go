package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the complete application configuration.
type Config struct {
	User    UserConfig    `mapstructure:"user"`
	Storage StorageConfig `mapstructure:"storage"`
	Logging LoggingConfig `mapstructure:"logging"`
	Events  EventsConfig  `mapstructure:"events"`
}

// UserConfig identifies whose trackers commands operate on by default.
type UserConfig struct {
	Name string `mapstructure:"name"`
}

// StorageConfig defines the SQLite database location.
type StorageConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "console" or "json"
}

// EventsConfig defines the optional redis event broadcast.
type EventsConfig struct {
	Enabled bool        `mapstructure:"enabled"`
	Channel string      `mapstructure:"channel"`
	Redis   RedisConfig `mapstructure:"redis"`
}

// RedisConfig defines the redis connection for event publishing.
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Load loads configuration from file and environment variables. An empty
// configPath falls back to ~/.trackd/config.yaml if present.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".trackd"))
		}
	}
	v.SetEnvPrefix("TRACKD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if configPath != "" || !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
		// No config file: defaults and environment variables apply.
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("user.name", defaultUser())

	v.SetDefault("storage.path", defaultDatabasePath())

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("events.enabled", false)
	v.SetDefault("events.channel", "trackd:events")
	v.SetDefault("events.redis.host", "127.0.0.1")
	v.SetDefault("events.redis.port", 6379)
	v.SetDefault("events.redis.db", 0)
}

// validate validates the configuration.
func validate(cfg *Config) error {
	if cfg.Storage.Path == "" {
		return fmt.Errorf("storage path is required")
	}
	if cfg.User.Name == "" {
		return fmt.Errorf("user name is required")
	}

	switch cfg.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	if cfg.Events.Enabled {
		if cfg.Events.Redis.Host == "" {
			return fmt.Errorf("events.redis.host is required when events are enabled")
		}
		if cfg.Events.Redis.Port <= 0 || cfg.Events.Redis.Port > 65535 {
			return fmt.Errorf("invalid redis port: %d", cfg.Events.Redis.Port)
		}
		if cfg.Events.Channel == "" {
			return fmt.Errorf("events.channel is required when events are enabled")
		}
	}

	return nil
}

// defaultDatabasePath returns the path to the SQLite database file.
func defaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "trackd.db"
	}
	return filepath.Join(home, ".trackd", "trackd.db")
}

// defaultUser falls back to the OS username so single-user installs work
// with zero configuration.
func defaultUser() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "local"
}

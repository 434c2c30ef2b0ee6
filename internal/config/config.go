// Package config loads application settings from an optional YAML file, a .env
// file and LINGUA_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load
const EnvPrefix = "LINGUA"

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
	SRS      SRSConfig      `mapstructure:"srs"`
	Reminder ReminderConfig `mapstructure:"reminder"`
	Telegram TelegramConfig `mapstructure:"telegram"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr" validate:"required"`
	UserHeader      string        `mapstructure:"user_header" validate:"required"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

type DatabaseConfig struct {
	Driver          string `mapstructure:"driver" validate:"oneof=sqlite3 postgres"`
	DSN             string `mapstructure:"dsn" validate:"required"`
	MaxOpenConns    int    `mapstructure:"max_open_conns" validate:"gte=0"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime" validate:"gte=0"` // seconds
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=trace debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json text"`
}

// SRSConfig tunes the parts of scheduling that are product decisions rather
// than part of the interval ladder.
type SRSConfig struct {
	UnlockThreshold  int           `mapstructure:"unlock_threshold" validate:"gte=0,lte=11"`
	ForceSetLevel    int           `mapstructure:"force_set_level" validate:"gte=0,lte=11"`
	ForceSetInterval time.Duration `mapstructure:"force_set_interval" validate:"gte=0"`
	ForecastDays     int           `mapstructure:"forecast_days" validate:"gte=1,lte=30"`
	ActivityDays     int           `mapstructure:"activity_days" validate:"gte=1,lte=365"`
}

type ReminderConfig struct {
	Enabled   bool `mapstructure:"enabled"`
	StartHour int  `mapstructure:"start_hour" validate:"gte=0,lte=23"`
	EndHour   int  `mapstructure:"end_hour" validate:"gte=0,lte=23"`
}

type TelegramConfig struct {
	Token string `mapstructure:"token"`
}

// Load reads configuration. configFile may be empty, in which case config.yaml
// is looked up in the working directory and $HOME/.config/lingua.
func Load(configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/lingua")
	}

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("configuration file found but could not be read: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.user_header", "X-User-ID")
	v.SetDefault("server.shutdown_timeout", 5*time.Second)

	v.SetDefault("database.driver", "sqlite3")
	v.SetDefault("database.dsn", "data/lingua.db")
	v.SetDefault("database.max_open_conns", 0)
	v.SetDefault("database.max_idle_conns", 0)
	v.SetDefault("database.conn_max_lifetime", 0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("srs.unlock_threshold", 5)
	v.SetDefault("srs.force_set_level", 1)
	v.SetDefault("srs.force_set_interval", 4*time.Hour)
	v.SetDefault("srs.forecast_days", 7)
	v.SetDefault("srs.activity_days", 7)

	v.SetDefault("reminder.enabled", false)
	v.SetDefault("reminder.start_hour", 4)
	v.SetDefault("reminder.end_hour", 18)

	v.SetDefault("telegram.token", "")
}

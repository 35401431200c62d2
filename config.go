package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	APIBase     string        `mapstructure:"WEEKSLOT_API_BASE"`
	HTTPTimeout time.Duration `mapstructure:"WEEKSLOT_HTTP_TIMEOUT"`
	StatusTTL   time.Duration `mapstructure:"WEEKSLOT_STATUS_TTL"`
	DBPath      string        `mapstructure:"WEEKSLOT_DB_PATH"`
	LogLevel    string        `mapstructure:"WEEKSLOT_LOG_LEVEL"`
	Env         string        `mapstructure:"WEEKSLOT_ENV"`
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".local", "share", "weekslot", "journal.db")
}

// LoadConfig reads, in rising priority: defaults, weekslot.yaml, .env,
// the environment and any flags already bound to v.
func LoadConfig(v *viper.Viper) (*Config, error) {
	// a missing .env is fine
	godotenv.Load()

	v.SetConfigName("weekslot")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "weekslot"))
	}
	v.AutomaticEnv()

	v.SetDefault("WEEKSLOT_API_BASE", "http://localhost:8080/api")
	v.SetDefault("WEEKSLOT_HTTP_TIMEOUT", "10s")
	v.SetDefault("WEEKSLOT_STATUS_TTL", "1.6s")
	v.SetDefault("WEEKSLOT_DB_PATH", defaultDBPath())
	v.SetDefault("WEEKSLOT_LOG_LEVEL", "info")
	v.SetDefault("WEEKSLOT_ENV", "development")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return &cfg, nil
}

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	libconfig "gridpulse/libs/config"
)

// Config defines telemetry service configuration.
type Config struct {
	HTTP struct {
		Port string `yaml:"port" env:"GRIDPULSE_HTTP_PORT"`
	} `yaml:"http"`
	Database struct {
		DSN          string `yaml:"dsn" env:"GRIDPULSE_POSTGRES_DSN"`
		MaxOpenConns int    `yaml:"max_open_conns" env:"GRIDPULSE_POSTGRES_MAX_OPEN_CONNS"`
		MaxIdleConns int    `yaml:"max_idle_conns" env:"GRIDPULSE_POSTGRES_MAX_IDLE_CONNS"`
	} `yaml:"database"`
	Redis struct {
		Addr       string        `yaml:"addr" env:"GRIDPULSE_REDIS_ADDR"`
		Password   string        `yaml:"password" env:"GRIDPULSE_REDIS_PASSWORD"`
		DB         int           `yaml:"db" env:"GRIDPULSE_REDIS_DB"`
		SummaryTTL time.Duration `yaml:"summary_ttl" env:"GRIDPULSE_REDIS_SUMMARY_TTL"`
	} `yaml:"redis"`
	Feed struct {
		Interval time.Duration `yaml:"interval" env:"GRIDPULSE_FEED_INTERVAL"`
	} `yaml:"feed"`
}

// Load configuration using shared helper.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.HTTP.Port = "8080"
	cfg.Redis.SummaryTTL = time.Minute
	cfg.Feed.Interval = 5 * time.Second

	if err := libconfig.LoadConfig(cfg); err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.Database.DSN) == "" {
		return nil, errors.New("config: database dsn required")
	}
	return cfg, nil
}

// HTTPAddress returns :port style.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

// CacheEnabled reports whether a redis summary cache should be wired.
func (c *Config) CacheEnabled() bool {
	return strings.TrimSpace(c.Redis.Addr) != ""
}

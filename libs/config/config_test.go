package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	HTTP struct {
		Port string `yaml:"port"`
	} `yaml:"http"`
	Database struct {
		DSN string `yaml:"dsn" env:"TEST_CUSTOM_DSN"`
	} `yaml:"database"`
	Cache struct {
		TTL time.Duration `yaml:"ttl"`
	} `yaml:"cache"`
	MaxBatch int `yaml:"max_batch"`
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("TEST_CUSTOM_DSN", "postgres://example/db")
	t.Setenv("CACHE_TTL", "90s")
	t.Setenv("MAXBATCH", "500")

	cfg := &testConfig{}
	require.NoError(t, LoadConfig(cfg))

	assert.Equal(t, "9090", cfg.HTTP.Port)
	assert.Equal(t, "postgres://example/db", cfg.Database.DSN)
	assert.Equal(t, 90*time.Second, cfg.Cache.TTL)
	assert.Equal(t, 500, cfg.MaxBatch)
}

func TestLoadConfig_RejectsNonStructTarget(t *testing.T) {
	assert.Error(t, LoadConfig(nil))
	var s string
	assert.Error(t, LoadConfig(&s))
}

func TestLoadConfig_InvalidDurationFails(t *testing.T) {
	t.Setenv("CACHE_TTL", "ninety seconds")

	cfg := &testConfig{}
	assert.Error(t, LoadConfig(cfg))
}

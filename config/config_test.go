package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("GEMINI_API_KEY", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 150.0, cfg.Raster.DPI)
	assert.Equal(t, 5, cfg.Raster.MaxPages)
	assert.Equal(t, 60*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, DefaultEndpoint, cfg.LLM.Endpoint)
	assert.Equal(t, "fs", cfg.Storage.Driver)
	assert.Empty(t, cfg.LLM.APIKey, "missing key must not fail startup")
}

func TestLoadEnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("GEMINI_API_KEY", "secret")
	t.Setenv("LLM_MODEL", "gemini-2.0-flash")
	t.Setenv("LLM_TIMEOUT", "15s")
	t.Setenv("RASTER_DPI", "200")
	t.Setenv("DB_DSN", "user:pw@tcp(localhost:3306)/resumes")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.LLM.APIKey)
	assert.Equal(t, "gemini-2.0-flash", cfg.LLM.Model)
	assert.Equal(t, 15*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 200.0, cfg.Raster.DPI)
	assert.Equal(t, "user:pw@tcp(localhost:3306)/resumes", cfg.Database.DSN)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Server:  ServerConfig{MaxUploadSize: 1 << 20},
			Storage: StorageConfig{Driver: "fs", Dir: "media"},
			LLM:     LLMConfig{Model: "m", Timeout: time.Second, Temperature: 0.2},
			Raster:  RasterConfig{DPI: 150, MaxPages: 5},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"ok", func(*Config) {}, ""},
		{"dpi below minimum", func(c *Config) { c.Raster.DPI = 72 }, "raster.dpi"},
		{"no pages", func(c *Config) { c.Raster.MaxPages = 0 }, "raster.max_pages"},
		{"zero timeout", func(c *Config) { c.LLM.Timeout = 0 }, "llm.timeout"},
		{"s3 without bucket", func(c *Config) { c.Storage.Driver = "s3" }, "storage.bucket"},
		{"unknown driver", func(c *Config) { c.Storage.Driver = "gcs" }, "storage.driver"},
		{"temperature", func(c *Config) { c.LLM.Temperature = 3 }, "llm.temperature"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

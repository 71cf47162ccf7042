package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `
api:
  base_url: https://dummyjson.com/
  max_retries: 2
  retry_interval: 250ms
  timeout: 5s
auth:
  username: emilys
logging:
  level: debug
  format: json
filter:
  presets:
    cheap: "price < 10"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://dummyjson.com/", cfg.API.BaseURL)
	assert.Equal(t, 2, cfg.API.MaxRetries)
	assert.Equal(t, 250*time.Millisecond, cfg.API.RetryInterval)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.True(t, cfg.API.Logging)
	assert.Equal(t, "X-Request-ID", cfg.API.RequestIDHeader)
	assert.Equal(t, "emilys", cfg.Auth.Username)
	assert.False(t, cfg.Auth.HasCredentials())
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, map[string]string{"cheap": "price < 10"}, cfg.Filter.Presets)

	cc := cfg.ClientConfig()
	assert.Equal(t, 2, cc.MaxRetries)
	assert.Equal(t, 250*time.Millisecond, cc.RetryInterval)
	assert.True(t, cc.LoggingEnabled)
}

func TestLoadEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", "api:\n  max_retries: 2\n")

	t.Setenv("RESTKIT_API_MAX_RETRIES", "7")
	t.Setenv("RESTKIT_API_LOGGING", "false")
	t.Setenv("RESTKIT_AUTH_TOKEN", "tok")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.API.MaxRetries)
	assert.False(t, cfg.API.Logging)
	assert.Equal(t, "tok", cfg.Auth.Token)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", "auth:\n  username: emilys\n")
	writeFile(t, dir, ".env", "RESTKIT_AUTH_PASSWORD=emilyspass\n")
	t.Cleanup(func() { _ = os.Unsetenv("RESTKIT_AUTH_PASSWORD") })

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "emilyspass", cfg.Auth.Password)
	assert.True(t, cfg.Auth.HasCredentials())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			API:     APIConfig{BaseURL: "https://dummyjson.com", MaxRetries: 3, RetryInterval: time.Second},
			Logging: LoggingConfig{Level: "info", Format: "console"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing base url", mutate: func(c *Config) { c.API.BaseURL = "" }, wantErr: "api.base_url is required"},
		{name: "relative base url", mutate: func(c *Config) { c.API.BaseURL = "dummyjson.com" }, wantErr: "absolute URL"},
		{name: "negative retries", mutate: func(c *Config) { c.API.MaxRetries = -1 }, wantErr: "api.max_retries"},
		{name: "negative interval", mutate: func(c *Config) { c.API.RetryInterval = -time.Second }, wantErr: "api.retry_interval"},
		{name: "bad level", mutate: func(c *Config) { c.Logging.Level = "trace" }, wantErr: "invalid logging level"},
		{name: "bad format", mutate: func(c *Config) { c.Logging.Format = "xml" }, wantErr: "invalid logging format"},
		{
			name:    "empty preset",
			mutate:  func(c *Config) { c.Filter.Presets = map[string]string{"cheap": " "} },
			wantErr: "filter.presets.cheap",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

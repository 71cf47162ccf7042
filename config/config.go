package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/s0up4200/restkit/apiclient"
)

// EnvPrefix prefixes every environment override, e.g. RESTKIT_API_BASE_URL
const EnvPrefix = "RESTKIT"

// Load reads the configuration. Values come from, in increasing priority:
// defaults, the config file, a .env file next to it or in the working
// directory, and RESTKIT_* environment variables. A missing config file is
// only an error when configPath names it explicitly.
func Load(configPath string) (*Config, error) {
	if err := loadDotEnv(configPath); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".restkit"))
		}
		v.AddConfigPath("/etc/restkit/")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadDotEnv loads .env files into the process environment without
// overriding variables that are already set.
func loadDotEnv(configPath string) error {
	candidates := []string{".env"}
	if configPath != "" {
		candidates = append([]string{filepath.Join(filepath.Dir(configPath), ".env")}, candidates...)
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("error loading %s: %w", path, err)
		}
	}
	return nil
}

// setDefaults sets default configuration values. Every key needs a default
// so that environment overrides are seen by Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "https://dummyjson.com")
	v.SetDefault("api.max_retries", apiclient.DefaultMaxRetries)
	v.SetDefault("api.retry_interval", apiclient.DefaultRetryInterval)
	v.SetDefault("api.timeout", apiclient.DefaultTimeout)
	v.SetDefault("api.logging", true)
	v.SetDefault("api.request_id_header", "X-Request-ID")

	v.SetDefault("auth.username", "")
	v.SetDefault("auth.password", "")
	v.SetDefault("auth.token", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)

	v.SetDefault("metrics.textfile", "")
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	if cfg.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	if u, err := url.Parse(cfg.API.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api.base_url must be an absolute URL: %s", cfg.API.BaseURL)
	}

	if cfg.API.MaxRetries < 0 {
		return fmt.Errorf("api.max_retries must not be negative: %d", cfg.API.MaxRetries)
	}
	if cfg.API.RetryInterval < 0 {
		return fmt.Errorf("api.retry_interval must not be negative: %s", cfg.API.RetryInterval)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	for name, expression := range cfg.Filter.Presets {
		if strings.TrimSpace(expression) == "" {
			return fmt.Errorf("filter.presets.%s is empty", name)
		}
	}

	return nil
}

// ClientConfig converts the API section into a client configuration
func (c *Config) ClientConfig() apiclient.Config {
	return apiclient.Config{
		BaseURL:         c.API.BaseURL,
		MaxRetries:      c.API.MaxRetries,
		RetryInterval:   c.API.RetryInterval,
		LoggingEnabled:  c.API.Logging,
		Timeout:         c.API.Timeout,
		RequestIDHeader: c.API.RequestIDHeader,
	}
}

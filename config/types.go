package config

import "time"

// Config represents the complete configuration structure
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Filter  FilterConfig  `mapstructure:"filter"`
}

// APIConfig holds the connection and retry settings of the API client
type APIConfig struct {
	BaseURL         string        `mapstructure:"base_url"`
	MaxRetries      int           `mapstructure:"max_retries"`
	RetryInterval   time.Duration `mapstructure:"retry_interval"`
	Timeout         time.Duration `mapstructure:"timeout"`
	Logging         bool          `mapstructure:"logging"`
	RequestIDHeader string        `mapstructure:"request_id_header"`
}

// AuthConfig holds credentials. Token takes precedence over username and
// password when both are set.
type AuthConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Token    string `mapstructure:"token"`
}

// HasCredentials reports whether a login can be attempted
func (a AuthConfig) HasCredentials() bool {
	return a.Username != "" && a.Password != ""
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}

// MetricsConfig controls metrics export
type MetricsConfig struct {
	// Textfile, when set, receives the metrics after every command
	Textfile string `mapstructure:"textfile"`
}

// FilterConfig contains named filter expressions
type FilterConfig struct {
	Presets map[string]string `mapstructure:"presets"`
}

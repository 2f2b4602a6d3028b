/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package httpclient

import (
	"errors"
	"fmt"
	"time"

	"github.com/acronis/go-crptapi/config"
)

// DefaultClientTimeout is a default timeout for a single request (including reading the response body).
const DefaultClientTimeout = 10 * time.Second

const (
	cfgKeyTimeout                    = "timeout"
	cfgKeyLoggerEnabled              = "logger.enabled"
	cfgKeyLoggerMode                 = "logger.mode"
	cfgKeyLoggerSlowRequestThreshold = "logger.slowRequestThreshold"
	cfgKeyMetricsEnabled             = "metrics.enabled"
)

var _ config.Config = (*Config)(nil)
var _ config.KeyPrefixProvider = (*Config)(nil)

// LoggerConfig represents configuration options for HTTP client logs.
type LoggerConfig struct {
	// Enabled is a flag that enables logging.
	Enabled bool `mapstructure:"enabled"`

	// SlowRequestThreshold is a threshold for slow requests.
	SlowRequestThreshold time.Duration `mapstructure:"slowRequestThreshold"`

	// Mode of logging: [none, all, failed].
	Mode LoggingMode `mapstructure:"mode"`
}

// MetricsConfig represents configuration options for HTTP client metrics.
type MetricsConfig struct {
	// Enabled is a flag that enables metrics.
	Enabled bool `mapstructure:"enabled"`
}

// Config represents options for HTTP client configuration.
type Config struct {
	// Logger is a configuration for HTTP client logs.
	Logger LoggerConfig `mapstructure:"logger"`

	// Metrics is a configuration for HTTP client metrics.
	Metrics MetricsConfig `mapstructure:"metrics"`

	// Timeout is the maximum time to wait for a request to be made.
	Timeout time.Duration `mapstructure:"timeout"`

	keyPrefix string
}

// NewConfig creates a new instance of the Config.
func NewConfig() *Config {
	return NewConfigWithKeyPrefix("")
}

// NewConfigWithKeyPrefix creates a new instance of the Config.
// Allows specifying key prefix which will be used for parsing configuration parameters.
func NewConfigWithKeyPrefix(keyPrefix string) *Config {
	return &Config{keyPrefix: keyPrefix}
}

// NewDefaultConfig creates a new instance of the Config with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Logger:  LoggerConfig{Enabled: true, Mode: LoggingModeAll},
		Metrics: MetricsConfig{Enabled: true},
		Timeout: DefaultClientTimeout,
	}
}

// KeyPrefix returns a key prefix with which all configuration parameters should be presented.
func (c *Config) KeyPrefix() string {
	return c.keyPrefix
}

// SetProviderDefaults is part of config interface implementation.
func (c *Config) SetProviderDefaults(dp config.DataProvider) {
	dp.SetDefault(cfgKeyTimeout, DefaultClientTimeout)
	dp.SetDefault(cfgKeyLoggerEnabled, true)
	dp.SetDefault(cfgKeyLoggerMode, string(LoggingModeAll))
	dp.SetDefault(cfgKeyMetricsEnabled, true)
}

// Set is part of config interface implementation.
func (c *Config) Set(dp config.DataProvider) error {
	timeout, err := dp.GetDuration(cfgKeyTimeout)
	if err != nil {
		return err
	}
	if timeout < 0 {
		return dp.WrapKeyErr(cfgKeyTimeout, errors.New("can not be negative"))
	}
	c.Timeout = timeout

	if c.Logger.Enabled, err = dp.GetBool(cfgKeyLoggerEnabled); err != nil {
		return err
	}
	if c.Logger.Enabled {
		var threshold time.Duration
		if threshold, err = dp.GetDuration(cfgKeyLoggerSlowRequestThreshold); err != nil {
			return err
		}
		if threshold < 0 {
			return dp.WrapKeyErr(cfgKeyLoggerSlowRequestThreshold, errors.New("can not be negative"))
		}
		c.Logger.SlowRequestThreshold = threshold

		var mode string
		if mode, err = dp.GetString(cfgKeyLoggerMode); err != nil {
			return err
		}
		if !LoggingMode(mode).IsValid() {
			return dp.WrapKeyErr(cfgKeyLoggerMode, fmt.Errorf("invalid mode %q, choose one of: [none, all, failed]", mode))
		}
		c.Logger.Mode = LoggingMode(mode)
	}

	if c.Metrics.Enabled, err = dp.GetBool(cfgKeyMetricsEnabled); err != nil {
		return err
	}
	return nil
}

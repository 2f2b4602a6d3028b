/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package retry

import (
	"errors"
	"fmt"
	"time"

	"github.com/acronis/go-crptapi/config"
)

// Strategies of the retry policy.
const (
	StrategyExponential = "exponential"
	StrategyConstant    = "constant"
)

// Default values of the retries configuration.
const (
	DefaultMaxAttempts             = 5
	DefaultConstantBackoffInterval = time.Second
	DefaultExponentialInterval     = 500 * time.Millisecond
	DefaultExponentialMultiplier   = 1.5
)

const (
	cfgKeyEnabled                          = "enabled"
	cfgKeyMaxAttempts                      = "maxAttempts"
	cfgKeyPolicyStrategy                   = "policy.strategy"
	cfgKeyPolicyExponentialInitialInterval = "policy.exponentialBackoffInitialInterval"
	cfgKeyPolicyExponentialMultiplier      = "policy.exponentialBackoffMultiplier"
	cfgKeyPolicyConstantInterval           = "policy.constantBackoffInterval"
)

var _ config.Config = (*Config)(nil)
var _ config.KeyPrefixProvider = (*Config)(nil)

// PolicyConfig represents configuration options for policy retry.
type PolicyConfig struct {
	// Strategy is a strategy for retry policy: [exponential, constant].
	Strategy string `mapstructure:"strategy"`

	// ExponentialBackoffInitialInterval is the initial interval for exponential backoff.
	ExponentialBackoffInitialInterval time.Duration `mapstructure:"exponentialBackoffInitialInterval"`

	// ExponentialBackoffMultiplier is the multiplier for exponential backoff.
	ExponentialBackoffMultiplier float64 `mapstructure:"exponentialBackoffMultiplier"`

	// ConstantBackoffInterval is the interval for constant backoff.
	ConstantBackoffInterval time.Duration `mapstructure:"constantBackoffInterval"`
}

// Config represents configuration options for retries.
type Config struct {
	// Enabled is a flag that enables retries.
	Enabled bool `mapstructure:"enabled"`

	// MaxAttempts is the maximum number of retry attempts (the first attempt is not counted).
	MaxAttempts int `mapstructure:"maxAttempts"`

	// Policy of a retry.
	Policy PolicyConfig `mapstructure:"policy"`

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
		Enabled:     true,
		MaxAttempts: DefaultMaxAttempts,
		Policy: PolicyConfig{
			Strategy:                StrategyConstant,
			ConstantBackoffInterval: DefaultConstantBackoffInterval,
		},
	}
}

// KeyPrefix returns a key prefix with which all configuration parameters should be presented.
func (c *Config) KeyPrefix() string {
	return c.keyPrefix
}

// SetProviderDefaults is part of config interface implementation.
func (c *Config) SetProviderDefaults(dp config.DataProvider) {
	dp.SetDefault(cfgKeyEnabled, true)
	dp.SetDefault(cfgKeyMaxAttempts, DefaultMaxAttempts)
	dp.SetDefault(cfgKeyPolicyStrategy, StrategyConstant)
	dp.SetDefault(cfgKeyPolicyConstantInterval, DefaultConstantBackoffInterval)
	dp.SetDefault(cfgKeyPolicyExponentialInitialInterval, DefaultExponentialInterval)
	dp.SetDefault(cfgKeyPolicyExponentialMultiplier, DefaultExponentialMultiplier)
}

// Set is part of config interface implementation.
func (c *Config) Set(dp config.DataProvider) error {
	enabled, err := dp.GetBool(cfgKeyEnabled)
	if err != nil {
		return err
	}
	c.Enabled = enabled
	if !c.Enabled {
		return nil
	}

	maxAttempts, err := dp.GetInt(cfgKeyMaxAttempts)
	if err != nil {
		return err
	}
	if maxAttempts < 0 {
		return dp.WrapKeyErr(cfgKeyMaxAttempts, errors.New("can not be negative"))
	}
	c.MaxAttempts = maxAttempts

	return c.setPolicy(dp)
}

func (c *Config) setPolicy(dp config.DataProvider) error {
	strategy, err := dp.GetStringFromSet(cfgKeyPolicyStrategy, []string{StrategyExponential, StrategyConstant}, false)
	if err != nil {
		return err
	}
	c.Policy.Strategy = strategy

	switch strategy {
	case StrategyExponential:
		interval, err := dp.GetDuration(cfgKeyPolicyExponentialInitialInterval)
		if err != nil {
			return err
		}
		if interval <= 0 {
			return dp.WrapKeyErr(cfgKeyPolicyExponentialInitialInterval, errors.New("must be positive"))
		}
		c.Policy.ExponentialBackoffInitialInterval = interval

		multiplier, err := dp.GetFloat64(cfgKeyPolicyExponentialMultiplier)
		if err != nil {
			return err
		}
		if multiplier <= 1 {
			return dp.WrapKeyErr(cfgKeyPolicyExponentialMultiplier, fmt.Errorf("must be greater than 1, got %v", multiplier))
		}
		c.Policy.ExponentialBackoffMultiplier = multiplier

	case StrategyConstant:
		interval, err := dp.GetDuration(cfgKeyPolicyConstantInterval)
		if err != nil {
			return err
		}
		if interval < 0 {
			return dp.WrapKeyErr(cfgKeyPolicyConstantInterval, errors.New("can not be negative"))
		}
		c.Policy.ConstantBackoffInterval = interval
	}
	return nil
}

// GetPolicy returns a retry policy based on the configured strategy or nil if retries are disabled.
func (c *Config) GetPolicy() Policy {
	if !c.Enabled {
		return nil
	}
	switch c.Policy.Strategy {
	case StrategyExponential:
		return NewExponentialBackoffPolicyWithMultiplier(
			c.Policy.ExponentialBackoffInitialInterval, c.Policy.ExponentialBackoffMultiplier, c.MaxAttempts)
	case StrategyConstant:
		return NewConstantBackoffPolicy(c.Policy.ConstantBackoffInterval, c.MaxAttempts)
	}
	return nil
}

/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package crptapi

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/acronis/go-crptapi/config"
	"github.com/acronis/go-crptapi/httpclient"
	"github.com/acronis/go-crptapi/retry"
)

// Default values of the configuration.
const (
	DefaultEndpoint          = "https://ismp.crpt.ru/api/v3/lk/documents/create"
	DefaultSignatureHeader   = "Signature"
	DefaultRateLimit         = 10
	DefaultRateLimitInterval = 1
	DefaultRateLimitTimeUnit = TimeUnitSecond
	DefaultBatchConcurrency  = 4
)

const (
	cfgKeyEndpoint          = "endpoint"
	cfgKeySignatureHeader   = "signatureHeader"
	cfgKeyRateLimitLimit    = "rateLimit.limit"
	cfgKeyRateLimitInterval = "rateLimit.interval"
	cfgKeyRateLimitTimeUnit = "rateLimit.timeUnit"
	cfgKeyClient            = "client"
	cfgKeyBatchConcurrency  = "batch.concurrency"
	cfgKeyBatchRetries      = "batch.retries"
)

var _ config.Config = (*Config)(nil)
var _ config.KeyPrefixProvider = (*Config)(nil)

// RateLimitConfig represents the number of requests allowed per window.
type RateLimitConfig struct {
	// Limit is the maximum number of requests per window.
	Limit int `mapstructure:"limit"`

	// Interval is the window length expressed in TimeUnit units.
	Interval int64 `mapstructure:"interval"`

	// TimeUnit is the unit of Interval.
	TimeUnit TimeUnit `mapstructure:"timeUnit"`
}

// Window returns the window length.
func (c RateLimitConfig) Window() (time.Duration, error) {
	return c.TimeUnit.Duration(c.Interval)
}

// BatchConfig represents configuration options for BatchSubmitter.
type BatchConfig struct {
	// Concurrency is the maximum number of documents submitted at the same time.
	Concurrency int `mapstructure:"concurrency"`

	// Retries configures resubmission of rate limited documents.
	Retries *retry.Config `mapstructure:"retries"`
}

// Config represents a configuration of the registration API client.
type Config struct {
	// Endpoint is the URL documents are posted to.
	Endpoint string `mapstructure:"endpoint"`

	// SignatureHeader is the name of the HTTP header carrying the document signature.
	SignatureHeader string `mapstructure:"signatureHeader"`

	RateLimit RateLimitConfig `mapstructure:"rateLimit"`

	// Client is a configuration of the underlying HTTP client.
	Client *httpclient.Config `mapstructure:"client"`

	Batch BatchConfig `mapstructure:"batch"`

	keyPrefix string
}

// NewConfig creates a new instance of the Config.
func NewConfig() *Config {
	return NewConfigWithKeyPrefix("crpt")
}

// NewConfigWithKeyPrefix creates a new instance of the Config.
// Allows specifying key prefix which will be used for parsing configuration parameters.
func NewConfigWithKeyPrefix(keyPrefix string) *Config {
	return &Config{
		Client:    httpclient.NewConfig(),
		Batch:     BatchConfig{Retries: retry.NewConfig()},
		keyPrefix: keyPrefix,
	}
}

// NewDefaultConfig creates a new instance of the Config with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Endpoint:        DefaultEndpoint,
		SignatureHeader: DefaultSignatureHeader,
		RateLimit: RateLimitConfig{
			Limit:    DefaultRateLimit,
			Interval: DefaultRateLimitInterval,
			TimeUnit: DefaultRateLimitTimeUnit,
		},
		Client: httpclient.NewDefaultConfig(),
		Batch: BatchConfig{
			Concurrency: DefaultBatchConcurrency,
			Retries:     retry.NewDefaultConfig(),
		},
		keyPrefix: "crpt",
	}
}

// KeyPrefix returns a key prefix with which all configuration parameters should be presented.
func (c *Config) KeyPrefix() string {
	return c.keyPrefix
}

// SetProviderDefaults is part of config interface implementation.
func (c *Config) SetProviderDefaults(dp config.DataProvider) {
	dp.SetDefault(cfgKeyEndpoint, DefaultEndpoint)
	dp.SetDefault(cfgKeySignatureHeader, DefaultSignatureHeader)
	dp.SetDefault(cfgKeyRateLimitLimit, DefaultRateLimit)
	dp.SetDefault(cfgKeyRateLimitInterval, DefaultRateLimitInterval)
	dp.SetDefault(cfgKeyRateLimitTimeUnit, string(DefaultRateLimitTimeUnit))
	dp.SetDefault(cfgKeyBatchConcurrency, DefaultBatchConcurrency)
	c.Client.SetProviderDefaults(config.NewKeyPrefixedDataProvider(dp, cfgKeyClient))
	c.Batch.Retries.SetProviderDefaults(config.NewKeyPrefixedDataProvider(dp, cfgKeyBatchRetries))
}

// Set is part of config interface implementation.
// Positivity of the rate limit and its interval is checked by New.
func (c *Config) Set(dp config.DataProvider) error {
	endpoint, err := dp.GetString(cfgKeyEndpoint)
	if err != nil {
		return err
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return dp.WrapKeyErr(cfgKeyEndpoint, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return dp.WrapKeyErr(cfgKeyEndpoint, fmt.Errorf("absolute http(s) URL is required, got %q", endpoint))
	}
	c.Endpoint = endpoint

	if c.SignatureHeader, err = dp.GetString(cfgKeySignatureHeader); err != nil {
		return err
	}
	if c.SignatureHeader == "" {
		return dp.WrapKeyErr(cfgKeySignatureHeader, errors.New("can not be empty"))
	}

	if err = c.setRateLimit(dp); err != nil {
		return err
	}

	if err = c.Client.Set(config.NewKeyPrefixedDataProvider(dp, cfgKeyClient)); err != nil {
		return err
	}

	if c.Batch.Concurrency, err = dp.GetInt(cfgKeyBatchConcurrency); err != nil {
		return err
	}
	if c.Batch.Concurrency <= 0 {
		return dp.WrapKeyErr(cfgKeyBatchConcurrency, errors.New("must be positive"))
	}
	return c.Batch.Retries.Set(config.NewKeyPrefixedDataProvider(dp, cfgKeyBatchRetries))
}

func (c *Config) setRateLimit(dp config.DataProvider) error {
	var err error
	if c.RateLimit.Limit, err = dp.GetInt(cfgKeyRateLimitLimit); err != nil {
		return err
	}
	if c.RateLimit.Interval, err = dp.GetInt64(cfgKeyRateLimitInterval); err != nil {
		return err
	}
	timeUnit, err := dp.GetStringFromSet(cfgKeyRateLimitTimeUnit, AllTimeUnits(), true)
	if err != nil {
		return err
	}
	if c.RateLimit.TimeUnit, err = ParseTimeUnit(timeUnit); err != nil {
		return dp.WrapKeyErr(cfgKeyRateLimitTimeUnit, err)
	}
	if _, err = c.RateLimit.Window(); err != nil {
		return dp.WrapKeyErr(cfgKeyRateLimitInterval, err)
	}
	return nil
}

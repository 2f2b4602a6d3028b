/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package retry

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/acronis/go-crptapi/config"
)

func TestConfig(t *testing.T) {
	tests := []struct {
		Name       string
		CfgData    string
		WantConfig *Config
		WantPolicy Policy
		WantErrMsg string
	}{
		{
			Name:    "default values",
			CfgData: `{}`,
			WantConfig: &Config{
				Enabled:     true,
				MaxAttempts: DefaultMaxAttempts,
				Policy:      PolicyConfig{Strategy: StrategyConstant, ConstantBackoffInterval: DefaultConstantBackoffInterval},
				keyPrefix:   "retries",
			},
			WantPolicy: NewConstantBackoffPolicy(DefaultConstantBackoffInterval, DefaultMaxAttempts),
		},
		{
			Name: "exponential",
			CfgData: `
retries:
  maxAttempts: 3
  policy:
    strategy: exponential
    exponentialBackoffInitialInterval: 200ms
    exponentialBackoffMultiplier: 2
`,
			WantConfig: &Config{
				Enabled:     true,
				MaxAttempts: 3,
				Policy: PolicyConfig{
					Strategy:                          StrategyExponential,
					ExponentialBackoffInitialInterval: 200 * time.Millisecond,
					ExponentialBackoffMultiplier:      2,
				},
				keyPrefix: "retries",
			},
			WantPolicy: NewExponentialBackoffPolicyWithMultiplier(200*time.Millisecond, 2, 3),
		},
		{
			Name:       "disabled",
			CfgData:    `{"retries": {"enabled": false}}`,
			WantConfig: &Config{keyPrefix: "retries"},
		},
		{
			Name:       "unknown strategy",
			CfgData:    `{"retries": {"policy": {"strategy": "linear"}}}`,
			WantErrMsg: `retries.policy.strategy: unknown value "linear", should be one of [exponential constant]`,
		},
		{
			Name:       "negative max attempts",
			CfgData:    `{"retries": {"maxAttempts": -1}}`,
			WantErrMsg: "retries.maxAttempts: can not be negative",
		},
		{
			Name:       "invalid multiplier",
			CfgData:    `{"retries": {"policy": {"strategy": "exponential", "exponentialBackoffMultiplier": 1}}}`,
			WantErrMsg: "retries.policy.exponentialBackoffMultiplier: must be greater than 1, got 1",
		},
	}
	for i := range tests {
		tt := tests[i]
		t.Run(tt.Name, func(t *testing.T) {
			cfg := NewConfigWithKeyPrefix("retries")
			err := config.NewLoader(config.NewViperAdapter()).LoadFromReader(
				bytes.NewBufferString(tt.CfgData), config.DataTypeYAML, cfg)
			if tt.WantErrMsg != "" {
				require.EqualError(t, err, tt.WantErrMsg)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.WantConfig, cfg)
			require.Equal(t, tt.WantPolicy, cfg.GetPolicy())
		})
	}
}

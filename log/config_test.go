/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package log

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/acronis/go-crptapi/config"
)

func TestConfig(t *testing.T) {
	tests := []struct {
		Name       string
		CfgData    string
		WantConfig *Config
		WantErrMsg string
	}{
		{
			Name:       "default values",
			CfgData:    `log: {}`,
			WantConfig: NewDefaultConfig(),
		},
		{
			Name: "file output with rotation",
			CfgData: `
log:
  level: DEBUG
  format: text
  output: file
  nocolor: true
  file:
    path: /var/log/crptclient.log
    rotation:
      compress: true
      maxSize: 100M
      maxBackups: 3
      maxAgeDays: 7
  masking:
    enabled: false
`,
			WantConfig: func() *Config {
				cfg := NewDefaultConfig()
				cfg.Level = LevelDebug
				cfg.Format = FormatText
				cfg.Output = OutputFile
				cfg.NoColor = true
				cfg.File.Path = "/var/log/crptclient.log"
				cfg.File.Rotation = FileRotationConfig{
					Compress:   true,
					MaxSize:    100 * 1024 * 1024,
					MaxBackups: 3,
					MaxAgeDays: 7,
				}
				cfg.Masking.Enabled = false
				return cfg
			}(),
		},
		{
			Name: "custom masking rules",
			CfgData: `
log:
  masking:
    useDefaultRules: false
    rules:
      - field: api_key
        formats: [urlencoded]
`,
			WantConfig: func() *Config {
				cfg := NewDefaultConfig()
				cfg.Masking.UseDefaultRules = false
				cfg.Masking.Rules = []MaskingRuleConfig{
					{Field: "api_key", Formats: []FieldMaskFormat{FieldMaskFormatURLEncoded}},
				}
				return cfg
			}(),
		},
		{
			Name:       "unknown level",
			CfgData:    `log: {level: trace}`,
			WantErrMsg: `log.level: unknown value "trace", should be one of [error warn info debug]`,
		},
		{
			Name:       "file output without path",
			CfgData:    `log: {output: file}`,
			WantErrMsg: `log.file.path: cannot be empty when "file" output is used`,
		},
		{
			Name:       "too small rotation size",
			CfgData:    `log: {file: {rotation: {maxSize: 1K}}}`,
			WantErrMsg: "log.file.rotation.maxSize: should be >= 1M",
		},
		{
			Name:       "negative max age",
			CfgData:    `log: {file: {rotation: {maxAgeDays: -1}}}`,
			WantErrMsg: "log.file.rotation.maxAgeDays: should be >= 0",
		},
	}
	for i := range tests {
		tt := tests[i]
		t.Run(tt.Name, func(t *testing.T) {
			cfg := NewConfig()
			err := config.NewLoader(config.NewViperAdapter()).LoadFromReader(
				bytes.NewBufferString(tt.CfgData), config.DataTypeYAML, cfg)
			if tt.WantErrMsg != "" {
				require.EqualError(t, err, tt.WantErrMsg)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.WantConfig, cfg)
		})
	}
}

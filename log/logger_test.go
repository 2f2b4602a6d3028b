/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package log

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ssgreg/logf"
	"github.com/stretchr/testify/require"
)

func decodeJSONLines(t *testing.T, data []byte) []map[string]interface{} {
	t.Helper()
	var lines []map[string]interface{}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var line map[string]interface{}
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &line), scanner.Text())
		lines = append(lines, line)
	}
	require.NoError(t, scanner.Err())
	return lines
}

func TestNewLogger_JSON(t *testing.T) {
	tests := []struct {
		Name   string
		Output Output
		Level  Level
		Msg    string
		Error  error
	}{
		{Name: "stdout info", Output: OutputStdout, Level: LevelInfo, Msg: "document submitted"},
		{Name: "stdout warn", Output: OutputStdout, Level: LevelWarn, Msg: "document submission rate limited"},
		{
			Name:   "stdout error",
			Output: OutputStdout,
			Level:  LevelError,
			Msg:    "document submission failed",
			Error:  errors.New("connection reset"),
		},
		{Name: "stderr info", Output: OutputStderr, Level: LevelInfo, Msg: "document submitted"},
	}
	for i := range tests {
		tt := tests[i]
		t.Run(tt.Name, func(t *testing.T) {
			var buf bytes.Buffer
			logger, closeLogger := NewLoggerWithOpts(
				&Config{Output: tt.Output, Format: FormatJSON, Level: LevelInfo}, LoggerOpts{Writer: &buf})
			switch tt.Level {
			case LevelInfo:
				logger.Info(tt.Msg)
			case LevelWarn:
				logger.Warn(tt.Msg)
			case LevelError:
				logger.Error(tt.Msg, Error(tt.Error))
			}
			logger.Debug("must be skipped")
			closeLogger()

			lines := decodeJSONLines(t, buf.Bytes())
			require.Len(t, lines, 1)
			require.Equal(t, string(tt.Level), lines[0]["level"])
			require.Equal(t, tt.Msg, lines[0]["msg"])
			require.Equal(t, os.Getpid(), int(lines[0]["pid"].(float64)))
			require.NotEmpty(t, lines[0]["time"])
			if tt.Error != nil {
				require.Equal(t, tt.Error.Error(), lines[0]["error"])
			}
		})
	}
}

func TestNewLogger_FormattedMessages(t *testing.T) {
	var buf bytes.Buffer
	logger, closeLogger := NewLoggerWithOpts(&Config{Level: LevelWarn}, LoggerOpts{Writer: &buf})
	formatted := 0
	logger.Infof("%s documents", formatArg(&formatted))
	logger.Warnf("%d documents left", 3)
	logger.Errorf("%s failed", "submission")
	closeLogger()

	lines := decodeJSONLines(t, buf.Bytes())
	require.Len(t, lines, 2)
	require.Equal(t, "3 documents left", lines[0]["msg"])
	require.Equal(t, "submission failed", lines[1]["msg"])
	require.Equal(t, 0, formatted, "message must not be formatted for disabled level")
}

type formatCounter struct{ n *int }

func (fc formatCounter) String() string {
	*fc.n++
	return "1"
}

func formatArg(n *int) fmt.Stringer { return formatCounter{n} }

func TestNewLogger_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, closeLogger := NewLoggerWithOpts(
		&Config{Output: OutputStderr, NoColor: true, Format: FormatText, Level: LevelInfo},
		LoggerOpts{Writer: &buf})
	logger.AtLevel(LevelError, func(logFunc LogFunc) {
		logFunc("test", logf.Error(errors.New("some error")))
	})
	closeLogger()

	require.Contains(t, buf.String(), `|ERRO|`)
	require.Contains(t, buf.String(), ` test `)
	require.Contains(t, buf.String(), `error="some error"`)
	require.Contains(t, buf.String(), fmt.Sprintf(`pid=%d`, os.Getpid()))
	require.False(t, strings.HasPrefix(buf.String(), "{"))
}

func TestNewLogger_FileOutput(t *testing.T) {
	dir := t.TempDir()
	cfg := NewDefaultConfig()
	cfg.Output = OutputFile
	cfg.File.Path = filepath.Join(dir, "crpt-{{pid}}.log")

	logger, closeLogger := NewLogger(cfg)
	logger.Info("document submitted", Int("status", 200))
	closeLogger()

	data, err := os.ReadFile(filepath.Join(dir, fmt.Sprintf("crpt-%d.log", os.Getpid())))
	require.NoError(t, err)
	lines := decodeJSONLines(t, data)
	require.Len(t, lines, 1)
	require.Equal(t, "document submitted", lines[0]["msg"])
	require.EqualValues(t, 200, lines[0]["status"])
}

func TestNewLogger_FileRotation(t *testing.T) {
	dir := t.TempDir()
	cfg := NewDefaultConfig()
	cfg.Output = OutputFile
	cfg.File.Path = filepath.Join(dir, "crpt.log")
	cfg.File.Rotation.MaxSize = MinFileRotationMaxSizeBytes

	logger, closeLogger := NewLogger(cfg)
	payload := strings.Repeat("x", 1024)
	for i := 0; i < 1500; i++ {
		logger.Info("document submitted", Int("index", i), String("payload", payload))
	}
	closeLogger()

	backups, err := filepath.Glob(filepath.Join(dir, "crpt-*.log"))
	require.NoError(t, err)
	require.NotEmpty(t, backups, "log file must be rotated")

	info, err := os.Stat(cfg.File.Path)
	require.NoError(t, err)
	require.LessOrEqual(t, info.Size(), int64(MinFileRotationMaxSizeBytes))
}

func TestExpandPathPlaceholders(t *testing.T) {
	start := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
	tests := []struct {
		Path string
		Want string
	}{
		{Path: "/var/log/crpt.log", Want: "/var/log/crpt.log"},
		{Path: "/var/log/crpt-{{pid}}.log", Want: fmt.Sprintf("/var/log/crpt-%d.log", os.Getpid())},
		{Path: "/var/log/crpt-{{starttime}}.log", Want: "/var/log/crpt-202503040506.log"},
		{
			Path: "/var/log/{{starttime}}/crpt-{{pid}}-{{pid}}.log",
			Want: fmt.Sprintf("/var/log/202503040506/crpt-%d-%d.log", os.Getpid(), os.Getpid()),
		},
	}
	for _, tt := range tests {
		require.Equal(t, tt.Want, expandPathPlaceholders(tt.Path, start))
	}
}

func TestRotationMaxSizeMB(t *testing.T) {
	require.Equal(t, 1, rotationMaxSizeMB(0))
	require.Equal(t, 1, rotationMaxSizeMB(MinFileRotationMaxSizeBytes))
	require.Equal(t, 250, rotationMaxSizeMB(DefaultFileRotationMaxSizeBytes))
}

func TestNewLoggerWithOpts_Masking(t *testing.T) {
	const headers = "Content-Type: application/json\r\nX-Doc-Signature: c2VjcmV0\r\n"

	t.Run("masking disabled", func(t *testing.T) {
		logger, closeLogger := NewLogger(&Config{})
		defer closeLogger()
		require.IsType(t, &LogfAdapter{}, logger)
	})

	t.Run("secret headers are masked when masking is disabled", func(t *testing.T) {
		var buf bytes.Buffer
		logger, closeLogger := NewLoggerWithOpts(&Config{}, LoggerOpts{
			Writer:        &buf,
			SecretHeaders: []string{"X-Doc-Signature", ""},
		})
		logger.Info("client http request headers", String("headers", headers))
		closeLogger()

		lines := decodeJSONLines(t, buf.Bytes())
		require.Len(t, lines, 1)
		require.Equal(t, "Content-Type: application/json\r\nX-Doc-Signature: ***\r\n", lines[0]["headers"])
	})

	t.Run("configured rules and default rules", func(t *testing.T) {
		var buf bytes.Buffer
		cfg := &Config{Masking: MaskingConfig{
			Enabled:         true,
			UseDefaultRules: true,
			Rules: []MaskingRuleConfig{
				{Field: "api_key", Formats: []FieldMaskFormat{FieldMaskFormatURLEncoded}},
			},
		}}
		logger, closeLogger := NewLoggerWithOpts(cfg, LoggerOpts{Writer: &buf})
		logger.Info("request", String("query", "api_key=abc&limit=1"), String("headers", "Signature: c2VjcmV0\r\n"))
		closeLogger()

		lines := decodeJSONLines(t, buf.Bytes())
		require.Len(t, lines, 1)
		require.Equal(t, "api_key=***&limit=1", lines[0]["query"])
		require.Equal(t, "Signature: ***\r\n", lines[0]["headers"])
		require.Len(t, cfg.Masking.Rules, 1, "configuration must not be modified")
	})
}

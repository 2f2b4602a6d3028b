/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package config

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestViperAdapter(t *testing.T) {
	va := NewViperAdapter()
	require.NoError(t, va.SetFromReader(bytes.NewBufferString(`
level: WARN
timeout: 1m30s
maxSize: 100M
maxSizeK8s: 1Gi
maxSizeNum: 1024
maxSizeNegative: -1
`), DataTypeYAML))

	t.Run("string from set", func(t *testing.T) {
		level, err := va.GetStringFromSet("level", []string{"error", "warn", "info"}, true)
		require.NoError(t, err)
		require.Equal(t, "WARN", level)

		_, err = va.GetStringFromSet("level", []string{"error", "warn", "info"}, false)
		require.EqualError(t, err, `level: unknown value "WARN", should be one of [error warn info]`)
	})

	t.Run("duration", func(t *testing.T) {
		d, err := va.GetDuration("timeout")
		require.NoError(t, err)
		require.Equal(t, 90*time.Second, d)

		d, err = va.GetDuration("missing")
		require.NoError(t, err)
		require.Zero(t, d)
	})

	t.Run("byte size", func(t *testing.T) {
		bs, err := va.GetByteSize("maxSize")
		require.NoError(t, err)
		require.Equal(t, ByteSize(100*1024*1024), bs)

		bs, err = va.GetByteSize("maxSizeK8s")
		require.NoError(t, err)
		require.Equal(t, ByteSize(1024*1024*1024), bs)

		bs, err = va.GetByteSize("maxSizeNum")
		require.NoError(t, err)
		require.Equal(t, ByteSize(1024), bs)

		_, err = va.GetByteSize("maxSizeNegative")
		require.EqualError(t, err, "maxSizeNegative: negative value is not allowed: -1")

		bs, err = va.GetByteSize("missing")
		require.NoError(t, err)
		require.Zero(t, bs)
	})

	t.Run("key prefixed", func(t *testing.T) {
		kp := NewKeyPrefixedDataProvider(va, "nested")
		kp.SetDefault("limit", 5)
		limit, err := kp.GetInt("limit")
		require.NoError(t, err)
		require.Equal(t, 5, limit)
		require.Equal(t, 5, va.Get("nested.limit"))
		require.EqualError(t, kp.WrapKeyErr("limit", errTest), "nested.limit: test error")
	})
}

type testError string

func (e testError) Error() string { return string(e) }

const errTest = testError("test error")

func TestDataTypeFromPath(t *testing.T) {
	for path, want := range map[string]DataType{
		"config.yaml": DataTypeYAML,
		"config.YML":  DataTypeYAML,
		"config.json": DataTypeJSON,
	} {
		got, err := DataTypeFromPath(path)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
	_, err := DataTypeFromPath("config")
	require.Error(t, err)
}

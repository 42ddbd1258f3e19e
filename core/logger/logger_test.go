package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/josephlewis42/sesh/core/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		cfg := config.Default()
		cfg.LogLevel = "info"
		cfg.LogFormat = "json"
		buf := &bytes.Buffer{}

		log, err := New(cfg, buf)
		require.NoError(t, err)
		log.Debug("hidden")
		log.Info("shown")

		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "shown", entry["msg"])
		assert.Contains(t, entry, "ts")
	})

	t.Run("console", func(t *testing.T) {
		cfg := config.Default()
		cfg.LogLevel = "debug"
		buf := &bytes.Buffer{}

		log, err := New(cfg, buf)
		require.NoError(t, err)
		log.Debug("launching")

		assert.Contains(t, buf.String(), "launching")
	})

	t.Run("bad level", func(t *testing.T) {
		cfg := config.Default()
		cfg.LogLevel = "chatty"

		_, err := New(cfg, &bytes.Buffer{})
		assert.Error(t, err)
	})
}

package logging_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/jrsteele09/foodwaste-zero/internal/logging"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestSetupWriter(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.TraceLevel) })

	t.Run("json outside DEV", func(t *testing.T) {
		var buf bytes.Buffer
		logger := logging.SetupWriter(&buf, "warn", "PROD")

		logger.Info().Msg("dropped")
		logger.Warn().Str("component", "session").Msg("kept")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		require.Equal(t, "warn", entry["level"])
		require.Equal(t, "kept", entry["message"])
		require.Equal(t, "session", entry["component"])
	})

	t.Run("unknown level falls back to info", func(t *testing.T) {
		var buf bytes.Buffer
		logger := logging.SetupWriter(&buf, "chatty", "PROD")

		logger.Debug().Msg("dropped")
		require.Zero(t, buf.Len())
		logger.Info().Msg("kept")
		require.Contains(t, buf.String(), "kept")
	})
}

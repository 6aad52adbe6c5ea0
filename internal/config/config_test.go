package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jrsteele09/foodwaste-zero/internal/config"
	"github.com/stretchr/testify/require"
)

func TestConfig_Defaults(t *testing.T) {
	t.Setenv("FWZ_API_BASE_URL", "")
	t.Setenv("NEXT_PUBLIC_API_URL", "")
	t.Setenv("FWZ_HTTP_TIMEOUT", "")
	t.Setenv("PORT", "")

	c := config.New(filepath.Join(t.TempDir(), "missing.env"))
	require.Equal(t, "http://localhost:8000", c.GetAPIBaseURL())
	require.Equal(t, 10*time.Second, c.GetHTTPTimeout())
	require.Equal(t, ":8000", c.GetPort())
}

func TestConfig_APIBaseURL(t *testing.T) {
	t.Run("explicit setting wins and loses trailing slash", func(t *testing.T) {
		t.Setenv("FWZ_API_BASE_URL", "https://api.example.com/")
		t.Setenv("NEXT_PUBLIC_API_URL", "http://ignored")
		require.Equal(t, "https://api.example.com", config.EnvVars{}.GetAPIBaseURL())
	})

	t.Run("web client variable is a fallback", func(t *testing.T) {
		t.Setenv("FWZ_API_BASE_URL", "")
		t.Setenv("NEXT_PUBLIC_API_URL", "http://backend:9000")
		require.Equal(t, "http://backend:9000", config.EnvVars{}.GetAPIBaseURL())
	})
}

func TestConfig_InvalidTimeoutFallsBack(t *testing.T) {
	t.Setenv("FWZ_HTTP_TIMEOUT", "soon")
	require.Equal(t, 10*time.Second, config.EnvVars{}.GetHTTPTimeout())
}

func TestConfig_LoadsEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("FWZ_TOKEN_PATH=/tmp/fwz-test.db\n"), 0o600))

	t.Setenv("FWZ_TOKEN_PATH", "")
	os.Unsetenv("FWZ_TOKEN_PATH")

	c := config.New(path)
	require.Equal(t, "/tmp/fwz-test.db", c.GetTokenPath())
}

package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	apiBaseURLVar     = "FWZ_API_BASE_URL"
	legacyAPIURLVar   = "NEXT_PUBLIC_API_URL"
	tokenPathVar      = "FWZ_TOKEN_PATH"
	httpTimeoutVar    = "FWZ_HTTP_TIMEOUT"
	appNameVar        = "APP_NAME"
	logLevelVar       = "LOG_LEVEL"
	defaultAPIBaseURL = "http://localhost:8000"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}
var _ ClientConfig = EnvVars{}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "FoodWaste Zero")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

func (EnvVars) GetLogLevel() string {
	return GetEnv(logLevelVar, "info")
}

// GetAPIBaseURL returns the API host (e.g. "http://localhost:8000") without a
// trailing slash. The web client's NEXT_PUBLIC_API_URL is honoured as a fallback.
func (EnvVars) GetAPIBaseURL() string {
	url := GetEnv(apiBaseURLVar, GetEnv(legacyAPIURLVar, defaultAPIBaseURL))
	return strings.TrimRight(url, "/")
}

func (EnvVars) GetTokenPath() string {
	return GetEnv(tokenPathVar, "./data/session.db")
}

func (EnvVars) GetHTTPTimeout() time.Duration {
	raw := GetEnv(httpTimeoutVar, "10s")
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 10 * time.Second
	}
	return d
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

func portAddr(port string) string {
	if port == "" {
		return ":8000"
	}
	if port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

package config

import (
	"time"

	"github.com/joho/godotenv"
)

type Config interface {
	EnvConfig
	ClientConfig
	FakeAPIConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
}

// ClientConfig is resolved once at boot by the client binaries.
type ClientConfig interface {
	GetAPIBaseURL() string
	GetTokenPath() string
	GetHTTPTimeout() time.Duration
}

type mainConfig struct {
	EnvVars
	FakeAPI
}

// New loads an optional .env file (missing files are ignored) and returns the
// environment-backed configuration.
func New(envFiles ...string) Config {
	_ = godotenv.Load(envFiles...)
	return mainConfig{}
}

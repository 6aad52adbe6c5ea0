package config

import "time"

// FakeAPIConfig configures the development stand-in for the backend.
type FakeAPIConfig interface {
	GetPort() string
	GetSigningSecret() string
	GetTokenExpiry() time.Duration
}

type FakeAPI struct{}

var _ FakeAPIConfig = FakeAPI{}

func (FakeAPI) GetPort() string {
	return portAddr(GetEnv("PORT", "8000"))
}

func (FakeAPI) GetSigningSecret() string {
	return GetEnv("FWZ_SIGNING_SECRET", "fwz-dev-secret")
}

func (FakeAPI) GetTokenExpiry() time.Duration {
	return 1 * time.Hour
}

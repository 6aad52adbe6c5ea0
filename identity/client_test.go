package identity_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jrsteele09/foodwaste-zero/identity"
	fwzerrors "github.com/jrsteele09/foodwaste-zero/internal/errors"
	"github.com/jrsteele09/foodwaste-zero/internal/fakeapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	testEmail    = "jane@example.com"
	testPassword = "correct-horse"
)

func setupClient(t *testing.T) (*fakeapi.Server, *identity.Client) {
	t.Helper()
	api := fakeapi.New("test-secret", fakeapi.WithBcryptCost(bcrypt.MinCost))
	_, err := api.AddUser(fakeapi.NewUser{Email: testEmail, Password: testPassword, FullName: "Jane Doe", HouseholdSize: 2})
	require.NoError(t, err)

	ts := httptest.NewServer(api)
	t.Cleanup(ts.Close)
	return api, identity.NewClient(ts.URL+"/", identity.WithHTTPClient(&http.Client{Timeout: 5 * time.Second}))
}

func TestClient_Login(t *testing.T) {
	api, client := setupClient(t)
	ctx := context.Background()

	t.Run("valid credentials", func(t *testing.T) {
		token, err := client.Login(ctx, testEmail, testPassword)
		require.NoError(t, err)
		require.NotEmpty(t, token)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := client.Login(ctx, testEmail, "bad")
		require.ErrorIs(t, err, fwzerrors.ErrInvalidCredentials)

		var apiErr *identity.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
		require.Equal(t, "Incorrect email or password", apiErr.Detail)
	})

	t.Run("server error", func(t *testing.T) {
		api.FailNext("POST /users/login", http.StatusInternalServerError)
		_, err := client.Login(ctx, testEmail, testPassword)
		require.ErrorIs(t, err, fwzerrors.ErrNetwork)
		require.NotErrorIs(t, err, fwzerrors.ErrInvalidCredentials)
	})

	t.Run("unreachable", func(t *testing.T) {
		_, err := identity.NewClient("http://127.0.0.1:1").Login(ctx, testEmail, testPassword)
		require.ErrorIs(t, err, fwzerrors.ErrNetwork)
	})
}

func TestClient_Me(t *testing.T) {
	api, client := setupClient(t)
	ctx := context.Background()
	token, err := client.Login(ctx, testEmail, testPassword)
	require.NoError(t, err)

	t.Run("valid token", func(t *testing.T) {
		profile, err := client.Me(ctx, token)
		require.NoError(t, err)
		require.Equal(t, testEmail, profile.Email)
		require.Equal(t, "Jane Doe", profile.DisplayName())
	})

	t.Run("rejected token", func(t *testing.T) {
		_, err := client.Me(ctx, "stale-token")
		require.ErrorIs(t, err, fwzerrors.ErrTokenInvalid)
	})

	t.Run("empty token never leaves the client", func(t *testing.T) {
		before := api.Calls("GET /users/me")
		_, err := client.Me(ctx, "")
		require.ErrorIs(t, err, fwzerrors.ErrTokenInvalid)
		require.Equal(t, before, api.Calls("GET /users/me"))
	})

	t.Run("server error", func(t *testing.T) {
		api.FailNext("GET /users/me", http.StatusBadGateway)
		_, err := client.Me(ctx, token)
		require.ErrorIs(t, err, fwzerrors.ErrNetwork)
	})

	t.Run("malformed body", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer abc", r.Header.Get("Authorization"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"email":`))
		}))
		defer ts.Close()

		_, err := identity.NewClient(ts.URL).Me(ctx, "abc")
		require.ErrorIs(t, err, fwzerrors.ErrNetwork)
	})
}

func TestClient_UpdateMe(t *testing.T) {
	api, client := setupClient(t)
	ctx := context.Background()
	_, err := api.AddUser(fakeapi.NewUser{Email: "taken@example.com", Password: "pw"})
	require.NoError(t, err)
	token, err := client.Login(ctx, testEmail, testPassword)
	require.NoError(t, err)

	t.Run("partial edit", func(t *testing.T) {
		size := 4
		require.NoError(t, client.UpdateMe(ctx, token, identity.ProfileUpdate{HouseholdSize: &size}))

		profile, err := client.Me(ctx, token)
		require.NoError(t, err)
		require.Equal(t, 4, profile.HouseholdSize)
		require.Equal(t, "Jane Doe", profile.FullName)
	})

	t.Run("validation failure keeps the token valid", func(t *testing.T) {
		email := "taken@example.com"
		err := client.UpdateMe(ctx, token, identity.ProfileUpdate{Email: &email})
		require.ErrorIs(t, err, fwzerrors.ErrRejected)
		require.NotErrorIs(t, err, fwzerrors.ErrTokenInvalid)

		var apiErr *identity.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, "Email already registered", apiErr.Detail)
	})

	t.Run("rejected token", func(t *testing.T) {
		name := "x"
		err := client.UpdateMe(ctx, "stale-token", identity.ProfileUpdate{FullName: &name})
		require.ErrorIs(t, err, fwzerrors.ErrTokenInvalid)
	})
}

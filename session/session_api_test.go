package session_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jrsteele09/foodwaste-zero/identity"
	"github.com/jrsteele09/foodwaste-zero/internal/fakeapi"
	"github.com/jrsteele09/foodwaste-zero/inventory"
	"github.com/jrsteele09/foodwaste-zero/session"
	fakekvrepo "github.com/jrsteele09/foodwaste-zero/session/repofake"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	routeMe    = "GET /users/me"
	routeLogin = "POST /users/login"
)

type apiFixture struct {
	api  *fakeapi.Server
	url  string
	repo *fakekvrepo.FakeKVRepo
	m    *session.Manager
}

func setupAPI(t *testing.T, repo *fakekvrepo.FakeKVRepo) *apiFixture {
	t.Helper()

	api := fakeapi.New("test-secret", fakeapi.WithBcryptCost(bcrypt.MinCost))
	_, err := api.AddUser(fakeapi.NewUser{Email: "jane@example.com", Password: "correct-horse", FullName: "Jane Doe", HouseholdSize: 3})
	require.NoError(t, err)
	_, err = api.AddUser(fakeapi.NewUser{Email: "taken@example.com", Password: "pw"})
	require.NoError(t, err)

	ts := httptest.NewServer(api)
	t.Cleanup(ts.Close)

	if repo == nil {
		repo = fakekvrepo.NewFakeKVRepo()
	}
	return &apiFixture{
		api:  api,
		url:  ts.URL,
		repo: repo,
		m:    newManager(t, repo, identity.NewClient(ts.URL)),
	}
}

func TestSessionAgainstAPI_Boot(t *testing.T) {
	t.Run("no persisted token makes no call", func(t *testing.T) {
		f := setupAPI(t, nil)
		require.NoError(t, f.m.Start(context.Background()))
		require.Equal(t, session.Anonymous, f.m.Snapshot().Status)
		require.Equal(t, 0, f.api.Calls(routeMe))
	})

	t.Run("rejected token is validated once then erased", func(t *testing.T) {
		repo := fakekvrepo.NewFakeKVRepo().Seed(session.TokenKey, "stale-token")
		f := setupAPI(t, repo)

		require.NoError(t, f.m.Start(context.Background()))
		require.Equal(t, 1, f.api.Calls(routeMe))
		require.Equal(t, session.Anonymous, f.m.Snapshot().Status)
		_, ok := repo.Peek(session.TokenKey)
		require.False(t, ok)
	})

	t.Run("server error fails closed", func(t *testing.T) {
		repo := fakekvrepo.NewFakeKVRepo().Seed(session.TokenKey, "some-token")
		f := setupAPI(t, repo)
		f.api.FailNext(routeMe, http.StatusServiceUnavailable)

		require.NoError(t, f.m.Start(context.Background()))
		require.Equal(t, 1, f.api.Calls(routeMe))
		require.Equal(t, session.Anonymous, f.m.Snapshot().Status)
		_, ok := repo.Peek(session.TokenKey)
		require.False(t, ok)
	})
}

func TestSessionAgainstAPI_Login(t *testing.T) {
	t.Run("bad password", func(t *testing.T) {
		f := setupAPI(t, nil)
		require.NoError(t, f.m.Start(context.Background()))

		_, err := f.m.Login(context.Background(), "a@b.com", "bad")
		require.ErrorIs(t, err, session.ErrInvalidCredentials)

		var apiErr *identity.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
		require.Equal(t, "Incorrect email or password", apiErr.Detail)

		require.Equal(t, session.Anonymous, f.m.Snapshot().Status)
		_, ok := f.repo.Peek(session.TokenKey)
		require.False(t, ok)
		require.Equal(t, 0, f.api.Calls(routeMe))
	})

	t.Run("round trip", func(t *testing.T) {
		f := setupAPI(t, nil)
		require.NoError(t, f.m.Start(context.Background()))

		user, err := f.m.Login(context.Background(), "jane@example.com", "correct-horse")
		require.NoError(t, err)
		require.Equal(t, "Jane Doe", user.FullName)
		require.Equal(t, 1, f.api.Calls(routeLogin))
		require.Equal(t, 1, f.api.Calls(routeMe))

		snap := f.m.Snapshot()
		require.True(t, snap.IsAuthenticated())
		require.Equal(t, "jane@example.com", snap.User.Email)

		stored, ok := f.repo.Peek(session.TokenKey)
		require.True(t, ok)
		require.NotEmpty(t, stored)

		// A second process sharing the repo boots straight into the session.
		other := newManager(t, f.repo, identity.NewClient(f.url))
		require.NoError(t, other.Start(context.Background()))
		require.True(t, other.Snapshot().IsAuthenticated())
	})

	t.Run("server down during exchange", func(t *testing.T) {
		f := setupAPI(t, nil)
		require.NoError(t, f.m.Start(context.Background()))
		f.api.FailNext(routeLogin, http.StatusBadGateway)

		_, err := f.m.Login(context.Background(), "jane@example.com", "correct-horse")
		require.ErrorIs(t, err, session.ErrNetwork)
		require.Equal(t, session.Anonymous, f.m.Snapshot().Status)
	})

	t.Run("profile fetch fails after exchange", func(t *testing.T) {
		f := setupAPI(t, nil)
		require.NoError(t, f.m.Start(context.Background()))
		f.api.FailNext(routeMe, http.StatusInternalServerError)

		_, err := f.m.Login(context.Background(), "jane@example.com", "correct-horse")
		require.ErrorIs(t, err, session.ErrNetwork)
		require.Equal(t, session.Anonymous, f.m.Snapshot().Status)
		_, ok := f.repo.Peek(session.TokenKey)
		require.False(t, ok)
	})
}

func TestSessionAgainstAPI_HTTPClient(t *testing.T) {
	f := setupAPI(t, nil)
	require.NoError(t, f.m.Start(context.Background()))
	require.NoError(t, f.api.AddProduct("jane@example.com", inventory.Product{Name: "Milk", Quantity: 1, DaysLeft: 1}))

	products := inventory.NewClient(f.url, f.m.HTTPClient(nil))

	_, err := products.Products(context.Background())
	require.ErrorIs(t, err, session.ErrNotAuthenticated)
	require.Equal(t, 0, f.api.Calls("GET /products/"))

	_, err = f.m.Login(context.Background(), "jane@example.com", "correct-horse")
	require.NoError(t, err)

	list, err := products.Products(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "Milk", list[0].Name)

	require.NoError(t, f.m.Logout())
	_, err = products.Products(context.Background())
	require.ErrorIs(t, err, session.ErrNotAuthenticated)
	require.Equal(t, 1, f.api.Calls("GET /products/"))
}

func TestSessionAgainstAPI_UpdateProfile(t *testing.T) {
	f := setupAPI(t, nil)
	require.NoError(t, f.m.Start(context.Background()))
	_, err := f.m.Login(context.Background(), "jane@example.com", "correct-horse")
	require.NoError(t, err)

	size := 5
	user, err := f.m.UpdateProfile(context.Background(), identity.ProfileUpdate{HouseholdSize: &size})
	require.NoError(t, err)
	require.Equal(t, 5, user.HouseholdSize)
	require.Equal(t, 5, f.m.Snapshot().User.HouseholdSize)

	taken := "taken@example.com"
	_, err = f.m.UpdateProfile(context.Background(), identity.ProfileUpdate{Email: &taken})
	require.ErrorIs(t, err, session.ErrRejected)
	require.True(t, f.m.Snapshot().IsAuthenticated())
	require.Equal(t, "jane@example.com", f.m.Snapshot().User.Email)
}

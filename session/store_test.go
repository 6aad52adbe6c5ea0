package session_test

import (
	"testing"

	"github.com/jrsteele09/foodwaste-zero/session"
	fakekvrepo "github.com/jrsteele09/foodwaste-zero/session/repofake"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	t.Run("load with nothing persisted", func(t *testing.T) {
		store := session.NewStore(fakekvrepo.NewFakeKVRepo())
		token, ok := store.Load()
		require.False(t, ok)
		require.Empty(t, token)
	})

	t.Run("save then load from a fresh store", func(t *testing.T) {
		repo := fakekvrepo.NewFakeKVRepo()
		require.NoError(t, session.NewStore(repo).Save("abc"))

		v, ok := repo.Peek(session.TokenKey)
		require.True(t, ok)
		require.Equal(t, "abc", v)

		token, ok := session.NewStore(repo).Load()
		require.True(t, ok)
		require.Equal(t, "abc", token)
	})

	t.Run("clear is idempotent", func(t *testing.T) {
		repo := fakekvrepo.NewFakeKVRepo().Seed(session.TokenKey, "abc")
		store := session.NewStore(repo)
		store.Load()

		require.NoError(t, store.Clear())
		require.NoError(t, store.Clear())

		_, ok := store.Token()
		require.False(t, ok)
		_, ok = repo.Peek(session.TokenKey)
		require.False(t, ok)
	})

	t.Run("unavailable repo loads as no token", func(t *testing.T) {
		repo := fakekvrepo.NewFakeKVRepo().Seed(session.TokenKey, "abc")
		repo.FailGets = true

		_, ok := session.NewStore(repo).Load()
		require.False(t, ok)
	})

	t.Run("failed save leaves mirror untouched", func(t *testing.T) {
		repo := fakekvrepo.NewFakeKVRepo().Seed(session.TokenKey, "old")
		store := session.NewStore(repo)
		store.Load()
		repo.FailPuts = true

		err := store.Save("new")
		require.ErrorIs(t, err, session.ErrStorage)

		token, ok := store.Token()
		require.True(t, ok)
		require.Equal(t, "old", token)
	})

	t.Run("failed clear still forgets the mirror", func(t *testing.T) {
		repo := fakekvrepo.NewFakeKVRepo().Seed(session.TokenKey, "abc")
		store := session.NewStore(repo)
		store.Load()
		repo.FailDeletes = true

		require.ErrorIs(t, store.Clear(), session.ErrStorage)
		_, ok := store.Token()
		require.False(t, ok)
	})
}

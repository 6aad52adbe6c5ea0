package session

import (
	"sync"

	fwzerrors "github.com/jrsteele09/foodwaste-zero/internal/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Store custodies the bearer token: an in-memory mirror kept in step with the
// durable repo. It never talks to the network and never decides whether the
// token is valid.
type Store struct {
	repo   KeyValueRepo
	logger zerolog.Logger

	lock  sync.RWMutex
	token string
}

func NewStore(repo KeyValueRepo) *Store {
	return &Store{
		repo:   repo,
		logger: log.Logger.With().Str("component", "session.store").Logger(),
	}
}

// Load reads the persisted token into the mirror. An absent key or an
// unavailable repo both report no token.
func (s *Store) Load() (string, bool) {
	token, err := s.repo.Get(TokenKey)
	if err != nil {
		if !fwzerrors.Is(err, fwzerrors.ErrNotFound) {
			s.logger.Warn().Err(err).Msg("Token repo unavailable, starting without a token")
		}
		token = ""
	}

	s.lock.Lock()
	s.token = token
	s.lock.Unlock()
	return token, token != ""
}

// Save persists the token, then mirrors it. On a repo failure the mirror is
// left untouched.
func (s *Store) Save(token string) error {
	if err := s.repo.Put(TokenKey, token); err != nil {
		return fwzerrors.Wrapf(fwzerrors.ErrStorage, "[Save] %v", err)
	}
	s.lock.Lock()
	s.token = token
	s.lock.Unlock()
	return nil
}

// Clear forgets the token in memory and in the repo. Safe to repeat.
func (s *Store) Clear() error {
	s.lock.Lock()
	s.token = ""
	s.lock.Unlock()

	if err := s.repo.Delete(TokenKey); err != nil {
		return fwzerrors.Wrapf(fwzerrors.ErrStorage, "[Clear] %v", err)
	}
	return nil
}

// Token returns the in-memory mirror.
func (s *Store) Token() (string, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.token, s.token != ""
}

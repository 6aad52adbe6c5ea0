package fakeapi

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jrsteele09/foodwaste-zero/identity"
	"github.com/jrsteele09/foodwaste-zero/internal/utils"
	"github.com/jrsteele09/foodwaste-zero/inventory"
	"golang.org/x/crypto/bcrypt"
)

var errUserExists = errors.New("user already exists")

type user struct {
	profile      identity.UserProfile
	passwordHash string
}

// NewUser describes an account to seed.
type NewUser struct {
	Email         string
	Password      string
	FullName      string
	HouseholdSize int
}

// AddUser registers an account and returns its profile.
func (s *Server) AddUser(nu NewUser) (*identity.UserProfile, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(nu.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("[AddUser] hashing password: %w", err)
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.emailIDs[nu.Email]; ok {
		return nil, errUserExists
	}
	u := &user{
		profile: identity.UserProfile{
			ID:            utils.ID(uuid.New().String()),
			Email:         nu.Email,
			FullName:      nu.FullName,
			HouseholdSize: max(nu.HouseholdSize, 1),
		},
		passwordHash: string(hash),
	}
	s.users[u.profile.ID.String()] = u
	s.emailIDs[nu.Email] = u.profile.ID.String()

	profile := u.profile
	return &profile, nil
}

// AddProduct stores a product for the account owning email.
func (s *Server) AddProduct(email string, p inventory.Product) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	userID, ok := s.emailIDs[email]
	if !ok {
		return fmt.Errorf("[AddProduct] unknown user %q", email)
	}
	if p.ID == "" {
		p.ID = utils.ID(uuid.New().String())
	}
	s.products[userID] = append(s.products[userID], p)
	return nil
}

// AddHistory appends to the consumed/wasted log of the account owning email.
func (s *Server) AddHistory(email string, h inventory.HistoryEntry) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	userID, ok := s.emailIDs[email]
	if !ok {
		return fmt.Errorf("[AddHistory] unknown user %q", email)
	}
	if h.ID == "" {
		h.ID = utils.ID(uuid.New().String())
	}
	if h.CreatedAt == "" {
		h.CreatedAt = s.nowTime().UTC().Format("2006-01-02T15:04:05")
	}
	s.history[userID] = append(s.history[userID], h)
	return nil
}

func (s *Server) authenticate(email, password string) (*user, bool) {
	s.lock.RLock()
	userID, ok := s.emailIDs[email]
	var u *user
	if ok {
		u = s.users[userID]
	}
	s.lock.RUnlock()

	if u == nil {
		return nil, false
	}
	if bcrypt.CompareHashAndPassword([]byte(u.passwordHash), []byte(password)) != nil {
		return nil, false
	}
	return u, true
}

func (s *Server) profile(userID string) (identity.UserProfile, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	u, ok := s.users[userID]
	if !ok {
		return identity.UserProfile{}, false
	}
	return u.profile, true
}

func (s *Server) updateProfile(userID string, update identity.ProfileUpdate) (identity.UserProfile, error) {
	var hash string
	if update.Password != nil && *update.Password != "" {
		b, err := bcrypt.GenerateFromPassword([]byte(*update.Password), s.bcryptCost)
		if err != nil {
			return identity.UserProfile{}, err
		}
		hash = string(b)
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return identity.UserProfile{}, errors.New("user not found")
	}
	if update.Email != nil && *update.Email != u.profile.Email {
		if _, taken := s.emailIDs[*update.Email]; taken {
			return identity.UserProfile{}, errUserExists
		}
		delete(s.emailIDs, u.profile.Email)
		s.emailIDs[*update.Email] = userID
		u.profile.Email = *update.Email
	}
	if update.FullName != nil {
		u.profile.FullName = *update.FullName
	}
	if update.HouseholdSize != nil {
		u.profile.HouseholdSize = *update.HouseholdSize
	}
	if hash != "" {
		u.passwordHash = hash
	}
	return u.profile, nil
}

func (s *Server) productsFor(userID string) []inventory.Product {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return append([]inventory.Product{}, s.products[userID]...)
}

func (s *Server) historyFor(userID string) []inventory.HistoryEntry {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return append([]inventory.HistoryEntry{}, s.history[userID]...)
}

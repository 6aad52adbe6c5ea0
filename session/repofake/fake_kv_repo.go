package fakekvrepo

import (
	"errors"
	"sync"

	fwzerrors "github.com/jrsteele09/foodwaste-zero/internal/errors"
	"github.com/jrsteele09/foodwaste-zero/session"
)

var _ session.KeyValueRepo = (*FakeKVRepo)(nil)

// ErrUnavailable is returned by the failure switches.
var ErrUnavailable = errors.New("repo unavailable")

// FakeKVRepo is an in-memory KeyValueRepo. The Fail* switches make the
// matching call fail with ErrUnavailable.
type FakeKVRepo struct {
	values map[string]string
	lock   sync.RWMutex

	FailGets    bool
	FailPuts    bool
	FailDeletes bool
}

func NewFakeKVRepo() *FakeKVRepo {
	return &FakeKVRepo{
		values: make(map[string]string),
	}
}

// Seed stores a value directly, bypassing the failure switches.
func (r *FakeKVRepo) Seed(key, value string) *FakeKVRepo {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.values[key] = value
	return r
}

// Peek reports what is stored, bypassing the failure switches.
func (r *FakeKVRepo) Peek(key string) (string, bool) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	v, ok := r.values[key]
	return v, ok
}

func (r *FakeKVRepo) Get(key string) (string, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	if r.FailGets {
		return "", ErrUnavailable
	}
	v, ok := r.values[key]
	if !ok {
		return "", fwzerrors.ErrNotFound
	}
	return v, nil
}

func (r *FakeKVRepo) Put(key, value string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.FailPuts {
		return ErrUnavailable
	}
	r.values[key] = value
	return nil
}

func (r *FakeKVRepo) Delete(key string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.FailDeletes {
		return ErrUnavailable
	}
	delete(r.values, key)
	return nil
}

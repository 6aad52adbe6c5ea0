package session

import (
	"context"
	"net/http"
	"sync"

	"github.com/jrsteele09/foodwaste-zero/identity"
	fwzerrors "github.com/jrsteele09/foodwaste-zero/internal/errors"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// IdentityProvider exchanges credentials and confirms tokens.
type IdentityProvider interface {
	Login(ctx context.Context, email, password string) (string, error)
	Me(ctx context.Context, token string) (*identity.UserProfile, error)
	UpdateMe(ctx context.Context, token string, update identity.ProfileUpdate) error
}

var _ IdentityProvider = (*identity.Client)(nil)

// Manager owns the session state machine. It is the single writer of the
// session; AccessGate and screens read it through Snapshot and Subscribe.
//
// Every validation run takes a generation number. Only the run holding the
// latest generation may settle the session, so a slow stale run can never
// overwrite a newer outcome. Logout and Close also advance the generation,
// discarding whatever is in flight.
type Manager struct {
	store    *Store
	identity IdentityProvider
	logger   zerolog.Logger

	lock       sync.Mutex
	status     Status
	user       *identity.UserProfile
	token      string
	generation uint64
	logouts    uint64 // bumped by Logout and Close
	version    uint64 // bumped on every committed state change
	started    bool
	closed     bool

	notifyLock sync.Mutex
	dispatched uint64

	listenersLock sync.Mutex
	listeners     []listener
	nextListener  uint64
}

type listener struct {
	id uint64
	fn func(Snapshot)
}

var _ oauth2.TokenSource = (*Manager)(nil)

// ManagerOption defines a function type to modify the Manager instance.
type ManagerOption func(*Manager)

// WithLogger sets the logger used for state transitions.
func WithLogger(logger zerolog.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a Manager in the Initializing state.
func NewManager(store *Store, provider IdentityProvider, options ...ManagerOption) (*Manager, error) {
	if store == nil {
		return nil, errors.New("[NewManager] store is required")
	}
	if provider == nil {
		return nil, errors.New("[NewManager] identity provider is required")
	}

	m := &Manager{
		store:    store,
		identity: provider,
		logger:   log.Logger.With().Str("component", "session").Logger(),
		status:   Initializing,
	}
	for _, opt := range options {
		opt(m)
	}
	return m, nil
}

// Start runs the boot sequence once: with no persisted token the session
// becomes Anonymous without any network call, otherwise the token is
// validated. Validation failures are recovered into Anonymous, not returned.
func (m *Manager) Start(ctx context.Context) error {
	m.lock.Lock()
	if m.closed {
		m.lock.Unlock()
		return ErrClosed
	}
	if m.started || m.status != Initializing {
		m.lock.Unlock()
		return ErrAlreadyStarted
	}
	m.started = true

	token, ok := m.store.Load()
	if !ok {
		m.generation++
		m.setAnonymousLocked()
		m.logger.Info().Msg("No persisted token, session is anonymous")
		m.commitAndUnlock()
		return nil
	}

	gen := m.beginRunLocked(token)
	m.commitAndUnlock()

	_, settled, err := m.run(ctx, gen, token)
	return recoveredOutcome(settled, err)
}

// Login exchanges credentials for a token, persists it and validates it.
// Authenticated is only reported once GET /users/me has confirmed the token.
// A rejected exchange leaves the session and persistence untouched, as does
// an exchange that completes after Logout (ErrSuperseded).
func (m *Manager) Login(ctx context.Context, email, password string) (*identity.UserProfile, error) {
	m.lock.Lock()
	if m.closed {
		m.lock.Unlock()
		return nil, ErrClosed
	}
	logouts := m.logouts
	m.lock.Unlock()

	token, err := m.identity.Login(ctx, email, password)
	if err != nil {
		m.logger.Info().Err(err).Msg("Credential exchange failed")
		return nil, err
	}

	m.lock.Lock()
	if m.closed {
		m.lock.Unlock()
		return nil, ErrClosed
	}
	// A logout during the exchange wins; the late token is never stored.
	if m.logouts != logouts {
		m.lock.Unlock()
		m.logger.Info().Msg("Logged out during credential exchange, token discarded")
		return nil, ErrSuperseded
	}
	// Saved under the lock that orders runs, so a failing older run settling
	// right now cannot clear the token we are about to validate.
	if err := m.store.Save(token); err != nil {
		m.lock.Unlock()
		m.logger.Warn().Err(err).Msg("Could not persist token")
		return nil, err
	}
	m.started = true
	gen := m.beginRunLocked(token)
	m.commitAndUnlock()

	profile, settled, err := m.run(ctx, gen, token)
	if !settled {
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// Refresh re-reads the token from the store and validates it again. With no
// token the session settles Anonymous.
func (m *Manager) Refresh(ctx context.Context) error {
	m.lock.Lock()
	if m.closed {
		m.lock.Unlock()
		return ErrClosed
	}

	token, ok := m.store.Token()
	if !ok && !m.started {
		token, ok = m.store.Load()
	}
	m.started = true

	if !ok {
		m.generation++
		m.setAnonymousLocked()
		m.commitAndUnlock()
		return nil
	}

	gen := m.beginRunLocked(token)
	m.commitAndUnlock()

	_, settled, err := m.run(ctx, gen, token)
	return recoveredOutcome(settled, err)
}

// UpdateProfile sends a profile edit and refreshes the session so that the
// server-visible identity fields are re-read.
func (m *Manager) UpdateProfile(ctx context.Context, update identity.ProfileUpdate) (*identity.UserProfile, error) {
	m.lock.Lock()
	if m.closed {
		m.lock.Unlock()
		return nil, ErrClosed
	}
	if m.status != Authenticated {
		m.lock.Unlock()
		return nil, ErrNotAuthenticated
	}
	token := m.token
	m.lock.Unlock()

	if err := m.identity.UpdateMe(ctx, token, update); err != nil {
		if fwzerrors.Is(err, ErrTokenInvalid) {
			// Let validation decide what the rejection means for the session.
			_ = m.Refresh(ctx)
		}
		return nil, err
	}

	if err := m.Refresh(ctx); err != nil {
		return nil, err
	}
	snap := m.Snapshot()
	if !snap.IsAuthenticated() {
		return nil, ErrTokenInvalid
	}
	return snap.User, nil
}

// Logout settles Anonymous immediately and erases the token. Any validation
// or credential exchange in flight is discarded.
func (m *Manager) Logout() error {
	m.lock.Lock()
	if m.closed {
		m.lock.Unlock()
		return ErrClosed
	}
	m.started = true
	m.generation++
	m.logouts++
	m.setAnonymousLocked()
	err := m.store.Clear()
	m.logger.Info().Msg("Logged out")
	m.commitAndUnlock()
	return err
}

// Close tears the manager down. In-flight results are discarded without
// touching the session and later operations fail with ErrClosed.
func (m *Manager) Close() {
	m.lock.Lock()
	if !m.closed {
		m.closed = true
		m.generation++
		m.logouts++
	}
	m.lock.Unlock()

	m.listenersLock.Lock()
	m.listeners = nil
	m.listenersLock.Unlock()
}

// Snapshot returns the current status and user as one consistent read.
func (m *Manager) Snapshot() Snapshot {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.snapshotLocked()
}

// Subscribe registers fn to be told about committed state changes. A listener
// never sees an older state after a newer one and always sees the latest;
// intermediate states may be coalesced. fn runs synchronously and must not
// call Manager methods other than Snapshot and Token.
func (m *Manager) Subscribe(fn func(Snapshot)) (cancel func()) {
	m.listenersLock.Lock()
	m.nextListener++
	id := m.nextListener
	m.listeners = append(m.listeners, listener{id: id, fn: fn})
	m.listenersLock.Unlock()

	return func() {
		m.listenersLock.Lock()
		defer m.listenersLock.Unlock()
		for i, l := range m.listeners {
			if l.id == id {
				m.listeners = append(m.listeners[:i], m.listeners[i+1:]...)
				return
			}
		}
	}
}

// Token implements oauth2.TokenSource for the HTTP layer. It only yields the
// token of an Authenticated session.
func (m *Manager) Token() (*oauth2.Token, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	if m.status != Authenticated {
		return nil, ErrNotAuthenticated
	}
	return &oauth2.Token{AccessToken: m.token, TokenType: "Bearer"}, nil
}

// HTTPClient returns a client that attaches the session's bearer token to
// every request. The token is looked up per request, so logging out stops
// the credential from being sent immediately.
func (m *Manager) HTTPClient(base *http.Client) *http.Client {
	if base == nil {
		base = http.DefaultClient
	}
	return &http.Client{
		Transport: &oauth2.Transport{Source: m, Base: base.Transport},
		Timeout:   base.Timeout,
	}
}

// run performs one validation and tries to settle it. settled is false when
// the outcome was discarded, err then says why. A cancelled ctx discards the
// outcome; an expired deadline settles it as a network failure.
func (m *Manager) run(ctx context.Context, gen uint64, token string) (*identity.UserProfile, bool, error) {
	profile, err := m.identity.Me(ctx, token)
	if err == nil && profile == nil {
		err = fwzerrors.Wrapf(ErrNetwork, "empty profile")
	}
	if err != nil && ctx.Err() != nil {
		if !errors.Is(ctx.Err(), context.DeadlineExceeded) {
			m.logger.Debug().Uint64("generation", gen).Msg("Validation cancelled, result discarded")
			return nil, false, ctx.Err()
		}
		// Deadlines fail closed like any other network error.
		err = fwzerrors.Wrapf(ErrNetwork, "validation timed out: %v", ctx.Err())
	}

	if !m.settle(gen, profile, err) {
		return nil, false, ErrSuperseded
	}
	return profile, true, err
}

func (m *Manager) settle(gen uint64, profile *identity.UserProfile, err error) bool {
	m.lock.Lock()
	if m.closed || gen != m.generation {
		m.lock.Unlock()
		m.logger.Debug().Uint64("generation", gen).Msg("Validation superseded, result discarded")
		return false
	}

	if err == nil {
		m.status = Authenticated
		m.user = profile
		m.logger.Info().Uint64("generation", gen).Msg("Session authenticated")
	} else {
		m.setAnonymousLocked()
		if clearErr := m.store.Clear(); clearErr != nil {
			m.logger.Warn().Err(clearErr).Msg("Could not erase rejected token")
		}
		m.logger.Info().Err(err).Uint64("generation", gen).Msg("Token rejected, session is anonymous")
	}
	m.commitAndUnlock()
	return true
}

func (m *Manager) beginRunLocked(token string) uint64 {
	m.generation++
	m.status = Validating
	m.user = nil
	m.token = token
	return m.generation
}

func (m *Manager) setAnonymousLocked() {
	m.status = Anonymous
	m.user = nil
	m.token = ""
}

func (m *Manager) snapshotLocked() Snapshot {
	snap := Snapshot{Status: m.status}
	if m.user != nil {
		user := *m.user
		snap.User = &user
	}
	return snap
}

// commitAndUnlock publishes the state written under m.lock and releases it.
// Listeners are notified outside m.lock; stale deliveries are dropped.
func (m *Manager) commitAndUnlock() {
	m.version++
	version := m.version
	snap := m.snapshotLocked()
	m.lock.Unlock()

	m.notifyLock.Lock()
	defer m.notifyLock.Unlock()
	if version <= m.dispatched {
		return
	}
	m.dispatched = version

	m.listenersLock.Lock()
	listeners := append([]listener(nil), m.listeners...)
	m.listenersLock.Unlock()

	for _, l := range listeners {
		l.fn(snap)
	}
}

// recoveredOutcome hides what boot and refresh recover from on their own: a
// rejected token settles Anonymous and a superseded run defers to the newer
// one. Only a cancelled context is reported.
func recoveredOutcome(settled bool, err error) error {
	if settled || fwzerrors.Is(err, ErrSuperseded) {
		return nil
	}
	return err
}

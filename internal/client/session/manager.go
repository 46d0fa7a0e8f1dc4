package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/exoscope/internal/client/models"
	"github.com/dmitrijs2005/exoscope/internal/common"
	"github.com/dmitrijs2005/exoscope/internal/logging"
)

// State is a consistent snapshot of the session.
type State struct {
	Token           string
	User            *models.User
	IsAuthenticated bool
	IsAuthLoading   bool
}

// IdentityFetcher resolves the user a token belongs to (GET /auth/me).
type IdentityFetcher interface {
	CurrentUser(ctx context.Context, token string) (*models.User, error)
}

var ErrEmptyToken = errors.New("session token is empty")

type Manager struct {
	store  TokenStore
	logger logging.Logger
	now    func() time.Time

	// writeMu serializes transitions. It is held across store IO and
	// observer delivery, so observers see transitions in the order they
	// happened while readers only ever wait on mu. Observers must not start
	// a transition.
	writeMu sync.Mutex

	mu          sync.RWMutex
	token       string
	user        *models.User
	loading     bool
	initStarted bool
	// generation changes on every Login and logout so an in-flight
	// validation can tell that its result is stale.
	generation uint64

	obsMu     sync.Mutex
	observers map[int]func(State)
	nextObs   int
}

// NewManager restores the persisted token. The session starts in the
// loading state with no user until Initialize runs. A store read failure
// is logged and treated as no token.
func NewManager(ctx context.Context, store TokenStore, logger logging.Logger) *Manager {
	if logger == nil {
		logger = logging.Nop()
	}
	m := &Manager{
		store:     store,
		logger:    logger.With("component", "session"),
		now:       time.Now,
		loading:   true,
		observers: make(map[int]func(State)),
	}

	token, err := store.Load(ctx)
	if err != nil {
		m.logger.Warn(ctx, "failed to read persisted token", "error", err)
		token = ""
	}
	m.token = token
	return m
}

// Initialize validates the restored token once. Later calls return nil
// without doing anything. A rejected token is erased from memory and
// storage; the only error returned is a failure to erase it.
func (m *Manager) Initialize(ctx context.Context, fetcher IdentityFetcher) error {
	m.mu.Lock()
	if m.initStarted {
		m.mu.Unlock()
		return nil
	}
	m.initStarted = true
	token, gen := m.token, m.generation
	m.mu.Unlock()

	var user *models.User
	var verr error
	if token != "" {
		user, verr = m.validate(ctx, fetcher, token)
	}

	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	m.mu.Lock()
	if m.generation != gen {
		m.mu.Unlock()
		m.logger.Debug(ctx, "discarding stale token validation")
		return nil
	}
	rejected := token != "" && verr != nil
	if rejected {
		m.token, m.user = "", nil
		m.generation++
	} else if token != "" {
		m.user = user
	}
	m.loading = false
	st := m.snapshotLocked()
	m.mu.Unlock()

	var storeErr error
	if rejected {
		m.logger.Info(ctx, "stored session rejected", "error", verr)
		if err := m.store.Clear(ctx); err != nil {
			storeErr = fmt.Errorf("clear rejected token: %w", err)
		}
	}
	m.notify(st)
	return storeErr
}

func (m *Manager) validate(ctx context.Context, fetcher IdentityFetcher, token string) (*models.User, error) {
	if claims, err := ParseClaims(token); err == nil && claims.Expired(m.now()) {
		return nil, common.ErrTokenExpired
	}
	user, err := fetcher.CurrentUser(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	return user, nil
}

// Login establishes an authenticated session. Token and user become visible
// together, after the token has been written to the store. If persisting
// fails the error is returned but the in-memory session is still
// established.
func (m *Manager) Login(ctx context.Context, token string, user *models.User) error {
	if token == "" {
		return ErrEmptyToken
	}
	if err := user.Validate(); err != nil {
		return err
	}
	u := *user

	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	saveErr := m.store.Save(ctx, token)

	m.mu.Lock()
	m.token, m.user = token, &u
	m.loading = false
	m.generation++
	st := m.snapshotLocked()
	m.mu.Unlock()

	m.notify(st)
	if saveErr != nil {
		m.logger.Error(ctx, "failed to persist token", "error", saveErr)
		return fmt.Errorf("persist token: %w", saveErr)
	}
	return nil
}

// Logout ends the session. It is idempotent. The in-memory session is
// cleared even when erasing the persisted data fails.
func (m *Manager) Logout(ctx context.Context) error {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	m.mu.Lock()
	st := m.endLocked()
	m.mu.Unlock()

	err := m.erase(ctx)
	m.notify(st)
	return err
}

func (m *Manager) endLocked() State {
	m.token, m.user = "", nil
	m.loading = false
	m.generation++
	return m.snapshotLocked()
}

func (m *Manager) erase(ctx context.Context) error {
	if err := m.store.Clear(ctx); err != nil {
		m.logger.Error(ctx, "failed to erase persisted session", "error", err)
		return fmt.Errorf("erase token: %w", err)
	}
	return nil
}

// InvalidateToken is called by the network layer when a request made with
// token came back 401. The session is ended only if token is still the
// current one.
func (m *Manager) InvalidateToken(ctx context.Context, token string) {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	m.mu.Lock()
	if token == "" || token != m.token {
		m.mu.Unlock()
		m.logger.Debug(ctx, "ignoring 401 for a superseded token")
		return
	}
	st := m.endLocked()
	m.mu.Unlock()

	_ = m.erase(ctx)
	m.logger.Info(ctx, "session expired")
	m.notify(st)
}

// Token returns the current bearer token, or "".
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotLocked()
}

// Claims decodes the current token.
func (m *Manager) Claims() (*Claims, error) {
	token := m.Token()
	if token == "" {
		return nil, common.ErrNotAuthenticated
	}
	return ParseClaims(token)
}

// Subscribe registers fn to receive a snapshot after every transition, in
// the order the transitions happened. fn may read the session but must not
// change it. The returned function removes it.
func (m *Manager) Subscribe(fn func(State)) func() {
	m.obsMu.Lock()
	id := m.nextObs
	m.nextObs++
	m.observers[id] = fn
	m.obsMu.Unlock()

	return func() {
		m.obsMu.Lock()
		delete(m.observers, id)
		m.obsMu.Unlock()
	}
}

func (m *Manager) snapshotLocked() State {
	var u *models.User
	if m.user != nil {
		cp := *m.user
		u = &cp
	}
	return State{
		Token:           m.token,
		User:            u,
		IsAuthenticated: m.token != "" && m.user != nil && !m.loading,
		IsAuthLoading:   m.loading,
	}
}

func (m *Manager) notify(st State) {
	m.obsMu.Lock()
	fns := make([]func(State), 0, len(m.observers))
	for _, fn := range m.observers {
		fns = append(fns, fn)
	}
	m.obsMu.Unlock()

	for _, fn := range fns {
		fn(st)
	}
}

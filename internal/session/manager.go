// Package session owns the portal's authentication state: who is logged in,
// whether that is known yet, and the transitions between the two.
//
// A Manager is created once in main and handed to every consumer. It starts
// in the loading state; Hydrate rebuilds the state from the credential store
// exactly once, after which Loading stays false for the life of the process.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"

	"hostelportal/internal/apiclient"
	"hostelportal/internal/credstore"
	"hostelportal/internal/model"
)

const (
	// MessageNetworkError is returned by Login when the API is unreachable.
	MessageNetworkError = "network error"
	// MessageLoginFailed is returned by Login for failures with no server message.
	MessageLoginFailed = "login failed"

	defaultLogoutTimeout = 5 * time.Second
)

// Authenticator is the subset of the API client the session needs.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*apiclient.LoginResponse, error)
	Logout(ctx context.Context, token string) error
	Me(ctx context.Context, token string) (*model.User, error)
}

// State is a point-in-time view of the session. While Loading is true the
// other fields must not be trusted.
type State struct {
	User            *model.User
	IsAuthenticated bool
	Loading         bool
}

// LoginResult reports the outcome of Login. Failures carry a message suitable
// for showing inline next to the form.
type LoginResult struct {
	Success bool
	User    *model.User
	Message string
}

// Manager is the single source of truth for the logged-in user.
type Manager struct {
	store  credstore.Store
	auth   Authenticator
	logger *zap.Logger
	now    func() time.Time

	logoutTimeout time.Duration

	mu          sync.RWMutex
	state       State
	token       string
	initialized bool
	ready       chan struct{}
}

// NewManager creates a Manager in the loading state.
func NewManager(store credstore.Store, auth Authenticator, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		store:         store,
		auth:          auth,
		logger:        logger,
		now:           time.Now,
		logoutTimeout: defaultLogoutTimeout,
		state:         State{Loading: true},
		ready:         make(chan struct{}),
	}
}

// Snapshot returns a copy of the current state.
func (m *Manager) Snapshot() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := m.state
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

// Token returns the bearer token of the current session, or "".
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

// Current returns a copy of the state together with the token it belongs to,
// read under one lock so the two always describe the same session.
func (m *Manager) Current() (State, string) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := m.state
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s, m.token
}

// Ready is closed once hydration has completed.
func (m *Manager) Ready() <-chan struct{} {
	return m.ready
}

// Hydrate rebuilds the session from the credential store. Only the first call
// does any work; later and concurrent calls return immediately.
// No network call is made: a stored token is trusted until an API call
// rejects it (see Invalidate and Verify).
func (m *Manager) Hydrate(ctx context.Context) {
	m.mu.Lock()
	if m.initialized {
		m.mu.Unlock()
		return
	}
	m.initialized = true
	m.mu.Unlock()

	user, token := m.restore(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = State{User: user, IsAuthenticated: user != nil}
	m.token = token
	close(m.ready)
}

func (m *Manager) restore(ctx context.Context) (*model.User, string) {
	token, raw, err := m.store.Read(ctx)
	if errors.Is(err, credstore.ErrNotFound) {
		return nil, ""
	}
	if errors.Is(err, credstore.ErrCorrupt) {
		m.logger.Warn("credential store is corrupt, clearing session", zap.Error(err))
		m.clearStore(ctx)
		return nil, ""
	}
	if err != nil {
		m.logger.Warn("credential store unreadable, starting logged out", zap.Error(err))
		return nil, ""
	}

	var user *model.User
	if err := json.Unmarshal(raw, &user); err != nil || user == nil {
		m.logger.Warn("stored user record is corrupt, clearing session", zap.Error(err))
		m.clearStore(ctx)
		return nil, ""
	}

	if tokenExpired(token, m.now()) {
		m.logger.Info("stored token has expired, clearing session", zap.Uint("user_id", user.ID))
		m.clearStore(ctx)
		return nil, ""
	}

	return user, token
}

// tokenExpired reports whether token is a JWT whose exp claim is in the past.
// Opaque tokens and JWTs without exp are never considered expired here.
func tokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	return !claims.VerifyExpiresAt(now.Unix(), false)
}

// Login authenticates against the API and, on success, persists the new
// credentials and marks the session authenticated. It never returns an error:
// every failure is described in the result and leaves the state untouched.
func (m *Manager) Login(ctx context.Context, email, password string) LoginResult {
	resp, err := m.auth.Login(ctx, email, password)
	if err != nil {
		var rejected *apiclient.RejectedError
		switch {
		case errors.Is(err, apiclient.ErrTransport):
			m.logger.Warn("login request failed", zap.Error(err))
			return LoginResult{Message: MessageNetworkError}
		case errors.As(err, &rejected):
			m.logger.Info("login rejected", zap.String("email", email), zap.Int("status", rejected.Status))
			return LoginResult{Message: apiclient.Message(err, MessageLoginFailed)}
		default:
			m.logger.Error("login failed", zap.Error(err))
			return LoginResult{Message: MessageLoginFailed}
		}
	}

	raw, err := json.Marshal(resp.User)
	if err != nil {
		m.logger.Error("marshal user record", zap.Error(err))
		return LoginResult{Message: MessageLoginFailed}
	}

	// The store and the state change under one lock so a concurrent
	// Invalidate cannot clear the store between the two.
	user := *resp.User
	m.mu.Lock()
	if err := m.store.Write(ctx, resp.Token, raw); err != nil {
		m.mu.Unlock()
		m.logger.Error("persist credentials", zap.Error(err))
		return LoginResult{Message: MessageLoginFailed}
	}
	m.state = State{User: &user, IsAuthenticated: true, Loading: m.state.Loading}
	m.token = resp.Token
	m.mu.Unlock()

	m.logger.Info("logged in", zap.Uint("user_id", user.ID), zap.String("role", string(user.Role)))
	out := user
	return LoginResult{Success: true, User: &out}
}

// Logout notifies the API on a best-effort basis, then clears the stored
// credentials and resets the state, whatever the API said.
func (m *Manager) Logout(ctx context.Context) {
	if token := m.Token(); token != "" {
		callCtx, cancel := context.WithTimeout(ctx, m.logoutTimeout)
		if err := m.auth.Logout(callCtx, token); err != nil {
			m.logger.Warn("remote logout failed, clearing local session anyway", zap.Error(err))
		}
		cancel()
	}
	m.reset(ctx)
	m.logger.Info("logged out")
}

// Invalidate drops the session holding token, which the API no longer
// accepts. It performs the same local cleanup as Logout without calling the
// API. A token that is no longer current (the user logged out or in again
// since the rejected request was sent) leaves the session alone.
func (m *Manager) Invalidate(ctx context.Context, token, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if token == "" || m.token != token {
		m.logger.Debug("ignoring rejection of a stale token", zap.String("reason", reason))
		return
	}
	m.logger.Info("session invalidated", zap.String("reason", reason))
	m.resetLocked(ctx)
}

// Verify checks the hydrated token against the API. A rejection invalidates
// the session and a successful answer refreshes the stored user record.
// Transport failures keep the optimistic trust given at hydration.
func (m *Manager) Verify(ctx context.Context) {
	select {
	case <-m.ready:
	case <-ctx.Done():
		return
	}

	token := m.Token()
	if token == "" {
		return
	}

	user, err := m.auth.Me(ctx, token)
	switch {
	case errors.Is(err, apiclient.ErrUnauthorized):
		m.Invalidate(ctx, token, "token rejected at startup verification")
		return
	case err != nil:
		m.logger.Warn("session verification unavailable, keeping stored session", zap.Error(err))
		return
	}

	raw, err := json.Marshal(user)
	if err != nil {
		m.logger.Error("marshal user record", zap.Error(err))
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.token != token {
		// a login or logout happened meanwhile
		return
	}
	if err := m.store.Write(ctx, token, raw); err != nil {
		m.logger.Warn("refresh stored user record", zap.Error(err))
		return
	}
	m.state.User = user
}

func (m *Manager) reset(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetLocked(ctx)
}

// resetLocked clears the store and the state. m.mu must be held.
func (m *Manager) resetLocked(ctx context.Context) {
	m.clearStore(ctx)
	m.state = State{Loading: m.state.Loading}
	m.token = ""
}

func (m *Manager) clearStore(ctx context.Context) {
	if err := m.store.Clear(ctx); err != nil {
		m.logger.Error("clear credential store", zap.Error(err))
	}
}

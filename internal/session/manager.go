package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"proptech/portal/internal/models"
)

// State is the lifecycle position of a Manager.
type State int

const (
	Anonymous State = iota
	Authenticated
	Refreshing
)

func (s State) String() string {
	switch s {
	case Authenticated:
		return "authenticated"
	case Refreshing:
		return "refreshing"
	default:
		return "anonymous"
	}
}

var (
	ErrNotLoggedIn   = errors.New("not logged in")
	ErrRefreshFailed = errors.New("session refresh failed")
)

// Authenticator is the part of the security service the manager needs.
type Authenticator interface {
	Login(ctx context.Context, req *models.LoginRequest) (*models.JwtResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*models.JwtResponse, error)
}

// Manager owns the login state of one browser session. It satisfies
// apiclient.TokenSource; concurrent callers of Refresh share a single
// refresh round trip.
type Manager struct {
	store Store
	auth  Authenticator
	log   *slog.Logger

	mu       sync.Mutex
	state    State
	current  *Session
	inflight chan struct{}
}

// NewManager rehydrates the session persisted in store.
func NewManager(ctx context.Context, store Store, auth Authenticator, log *slog.Logger) (*Manager, error) {
	m := &Manager{store: store, auth: auth, log: log}
	sess, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to restore session: %w", err)
	}
	if sess != nil {
		m.current = sess
		m.state = Authenticated
	}
	return m, nil
}

// Login authenticates against the backend and persists the grant.
func (m *Manager) Login(ctx context.Context, req *models.LoginRequest) (*Session, error) {
	resp, err := m.auth.Login(ctx, req)
	if err != nil {
		return nil, err
	}
	sess := &Session{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		User:         models.SessionUserFromJwt(resp),
	}
	if err := m.store.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	m.mu.Lock()
	m.current = sess
	m.state = Authenticated
	m.mu.Unlock()

	m.log.Info("user logged in", "user_id", sess.User.ID)
	return copySession(sess), nil
}

// Logout drops the session locally. There is no backend logout call.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	m.current = nil
	m.state = Anonymous
	m.mu.Unlock()

	if err := m.store.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// Current returns a copy of the session, nil when anonymous.
func (m *Manager) Current() (*Session, State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copySession(m.current), m.state
}

// User returns the logged in identity.
func (m *Manager) User() (models.SessionUser, bool) {
	sess, _ := m.Current()
	if sess == nil {
		return models.SessionUser{}, false
	}
	return sess.User, true
}

func (m *Manager) IsAdmin() bool {
	u, ok := m.User()
	return ok && u.HasRole(models.RoleAdmin)
}

func (m *Manager) IsAgent() bool {
	u, ok := m.User()
	return ok && u.HasRole(models.RoleAgent)
}

func (m *Manager) AccessToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return ""
	}
	return m.current.AccessToken
}

// Claims decodes the current access token.
func (m *Manager) Claims() (*TokenClaims, error) {
	token := m.AccessToken()
	if token == "" {
		return nil, ErrNotLoggedIn
	}
	return ParseClaims(token)
}

// Refresh exchanges the refresh token for a new access token. On failure the
// stored session is wiped entirely and the manager becomes anonymous.
func (m *Manager) Refresh(ctx context.Context) (string, error) {
	m.mu.Lock()
	if m.inflight != nil {
		wait := m.inflight
		m.mu.Unlock()
		select {
		case <-wait:
		case <-ctx.Done():
			return "", ctx.Err()
		}
		if token := m.AccessToken(); token != "" {
			return token, nil
		}
		return "", ErrRefreshFailed
	}
	if m.current == nil || m.current.RefreshToken == "" {
		m.mu.Unlock()
		return "", ErrNotLoggedIn
	}
	done := make(chan struct{})
	m.inflight = done
	m.state = Refreshing
	refreshToken := m.current.RefreshToken
	m.mu.Unlock()

	resp, err := m.auth.Refresh(ctx, refreshToken)

	m.mu.Lock()
	defer func() {
		m.inflight = nil
		close(done)
		m.mu.Unlock()
	}()

	if err != nil {
		m.current = nil
		m.state = Anonymous
		if clearErr := m.store.Clear(ctx); clearErr != nil {
			m.log.Error("failed to clear session after refresh failure", "error", clearErr)
		}
		m.log.Warn("session refresh failed, logged out", "error", err)
		return "", fmt.Errorf("%w: %v", ErrRefreshFailed, err)
	}

	if m.current == nil {
		// Logged out while the refresh was in flight.
		return "", ErrNotLoggedIn
	}
	next := copySession(m.current)
	next.AccessToken = resp.AccessToken
	if resp.RefreshToken != "" {
		next.RefreshToken = resp.RefreshToken
	}
	if resp.ID != "" {
		next.User = models.SessionUserFromJwt(resp)
	}
	if err := m.store.Save(ctx, next); err != nil {
		m.log.Error("failed to persist refreshed session", "error", err)
	}
	m.current = next
	m.state = Authenticated
	return next.AccessToken, nil
}

func copySession(s *Session) *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.User.Roles = append([]string(nil), s.User.Roles...)
	return &c
}

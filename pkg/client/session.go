package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrSessionClosed is returned when an operation runs against a manager
// that has already been torn down.
var ErrSessionClosed = errors.New("session manager is closed")

// SessionManager is the single source of truth for the client session. It
// owns the persisted token pair, the cached profile, and the status the
// route guard decides on.
//
// Transitions: checking -> authenticated | unauthenticated at startup, then
// login/logout/invalidation flips between the two settled states. State is
// always committed before any navigation intent is emitted.
type SessionManager struct {
	mu       sync.Mutex
	status   Status
	user     *User
	client   *Client
	store    TokenStore
	nav      Navigator
	closed   bool
	checking bool
}

func NewSessionManager(c *Client, store TokenStore, nav Navigator) *SessionManager {
	sm := &SessionManager{
		status: StatusChecking,
		client: c,
		store:  store,
		nav:    nav,
	}
	c.SetUnauthorizedHandler(sm.Invalidate)
	return sm
}

func (sm *SessionManager) Status() Status {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.status
}

// CurrentUser returns the profile for an authenticated session, else nil.
func (sm *SessionManager) CurrentUser() *User {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.user
}

// Start resolves the initial checking state. With no persisted token it
// settles to unauthenticated immediately; otherwise the persisted token is
// verified against the profile endpoint. At most one startup check runs at
// a time, and a check that resolves after Close mutates nothing.
func (sm *SessionManager) Start(ctx context.Context) error {
	sm.mu.Lock()
	if sm.closed || sm.checking {
		sm.mu.Unlock()
		return nil
	}
	sm.checking = true
	sm.mu.Unlock()

	token, err := sm.store.Get(TokenKey)
	if err != nil || token == "" {
		sm.settle(StatusUnauthenticated, nil, false)
		return err
	}

	user, err := sm.client.Profile(ctx)
	if err != nil {
		// A 401 already cleared the session via the unauthorized hook;
		// clearing again here is harmless and covers non-401 failures.
		sm.settle(StatusUnauthenticated, nil, true)
		return fmt.Errorf("startup session check failed: %w", err)
	}

	sm.settle(StatusAuthenticated, user, false)
	return nil
}

func (sm *SessionManager) settle(status Status, user *User, clearTokens bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.checking = false
	if sm.closed {
		return
	}
	if clearTokens {
		sm.store.Delete(TokenKey, RefreshTokenKey)
	}
	sm.status = status
	sm.user = user
}

// Login authenticates and, on success, persists the token pair and settles
// to authenticated. On failure the state is left untouched and the error is
// returned to the caller.
func (sm *SessionManager) Login(ctx context.Context, email, password string) error {
	result, err := sm.client.Login(ctx, email, password)
	if err != nil {
		return err
	}
	return sm.establish(result)
}

// Register has the same contract as Login for a new identity.
func (sm *SessionManager) Register(ctx context.Context, name, email, password string) error {
	result, err := sm.client.Register(ctx, name, email, password)
	if err != nil {
		return err
	}
	return sm.establish(result)
}

func (sm *SessionManager) establish(result *AuthResult) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.closed {
		return ErrSessionClosed
	}

	if err := sm.store.Set(TokenKey, result.Token); err != nil {
		sm.store.Delete(TokenKey, RefreshTokenKey)
		return fmt.Errorf("failed to persist session: %w", err)
	}
	if err := sm.store.Set(RefreshTokenKey, result.RefreshToken); err != nil {
		sm.store.Delete(TokenKey, RefreshTokenKey)
		return fmt.Errorf("failed to persist session: %w", err)
	}

	user := result.User
	sm.user = &user
	sm.status = StatusAuthenticated
	return nil
}

// Logout clears the persisted pair and profile together, settles to
// unauthenticated, then emits the navigation intent to the login view.
func (sm *SessionManager) Logout(ctx context.Context) {
	// Best effort: the server holds no session state to revoke.
	_ = sm.client.Logout(ctx)

	sm.mu.Lock()
	if sm.closed {
		sm.mu.Unlock()
		return
	}
	sm.store.Delete(TokenKey, RefreshTokenKey)
	sm.user = nil
	sm.status = StatusUnauthenticated
	sm.mu.Unlock()

	if sm.nav != nil {
		sm.nav.Navigate(Redirect{To: LoginPath})
	}
}

// Invalidate handles an asynchronous 401 from any in-flight request. The
// clear runs exactly once no matter how many requests fail concurrently;
// later calls see the session already unauthenticated and do nothing.
func (sm *SessionManager) Invalidate() {
	sm.mu.Lock()
	if sm.closed || sm.status == StatusUnauthenticated {
		sm.mu.Unlock()
		return
	}
	sm.store.Delete(TokenKey, RefreshTokenKey)
	sm.user = nil
	sm.status = StatusUnauthenticated
	sm.mu.Unlock()

	if sm.nav != nil {
		sm.nav.Navigate(Redirect{To: LoginPath})
	}
}

// Evaluate runs the route guard for the current status and executes the
// resulting intent, if any. Call it whenever status or path changes.
func (sm *SessionManager) Evaluate(path string) {
	redirect := Decide(sm.Status(), path)
	if redirect != nil && sm.nav != nil {
		sm.nav.Navigate(*redirect)
	}
}

// Close tears the session context down. Any in-flight startup check that
// resolves afterwards is discarded.
func (sm *SessionManager) Close() {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.closed = true
}

package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type recordingNavigator struct {
	mu        sync.Mutex
	redirects []Redirect
}

func (n *recordingNavigator) Navigate(redirect Redirect) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.redirects = append(n.redirects, redirect)
}

func (n *recordingNavigator) all() []Redirect {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Redirect(nil), n.redirects...)
}

// fakeBackend is a minimal auth server: any bearer token it issued is
// accepted on the profile endpoint.
type fakeBackend struct {
	mu          sync.Mutex
	validTokens map[string]User
	rejectAll   bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{validTokens: map[string]User{}}
}

func (b *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Password != "correct-horse" {
			writeUnauthorized(w)
			return
		}

		b.mu.Lock()
		user := User{ID: "user-1", Name: "Ada", Email: req.Email}
		b.validTokens["access-"+req.Email] = user
		b.mu.Unlock()

		json.NewEncoder(w).Encode(AuthResult{
			Status:       "success",
			Token:        "access-" + req.Email,
			RefreshToken: "refresh-" + req.Email,
			User:         user,
		})
	})

	mux.HandleFunc("/api/v1/auth/profile", func(w http.ResponseWriter, r *http.Request) {
		token := bearer(r)

		b.mu.Lock()
		user, ok := b.validTokens[token]
		reject := b.rejectAll
		b.mu.Unlock()

		if reject || !ok {
			writeUnauthorized(w)
			return
		}

		var resp profileResponse
		resp.Data.User = user
		json.NewEncoder(w).Encode(resp)
	})

	mux.HandleFunc("/api/v1/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success"}`))
	})

	return mux
}

func bearer(r *http.Request) string {
	const prefix = "Bearer "
	header := r.Header.Get("Authorization")
	if len(header) > len(prefix) {
		return header[len(prefix):]
	}
	return ""
}

func writeUnauthorized(w http.ResponseWriter) {
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":{"code":"UNAUTHORIZED","message":"Invalid or missing token"}}`))
}

func newSessionFixture(t *testing.T) (*SessionManager, *MemoryTokenStore, *recordingNavigator, *fakeBackend) {
	t.Helper()

	backend := newFakeBackend()
	server := httptest.NewServer(backend.handler())
	t.Cleanup(server.Close)

	store := NewMemoryTokenStore()
	nav := &recordingNavigator{}
	c := NewClient(server.URL, store)
	sm := NewSessionManager(c, store, nav)
	return sm, store, nav, backend
}

func TestStart_NoPersistedToken(t *testing.T) {
	sm, _, nav, _ := newSessionFixture(t)
	require.Equal(t, StatusChecking, sm.Status())

	require.NoError(t, sm.Start(context.Background()))
	require.Equal(t, StatusUnauthenticated, sm.Status())
	require.Nil(t, sm.CurrentUser())
	require.Empty(t, nav.all())
}

func TestStart_ValidPersistedToken(t *testing.T) {
	sm, store, _, backend := newSessionFixture(t)

	backend.validTokens["access-ada@example.com"] = User{ID: "user-1", Name: "Ada", Email: "ada@example.com"}
	store.Set(TokenKey, "access-ada@example.com")
	store.Set(RefreshTokenKey, "refresh-ada@example.com")

	require.NoError(t, sm.Start(context.Background()))
	require.Equal(t, StatusAuthenticated, sm.Status())
	require.Equal(t, "ada@example.com", sm.CurrentUser().Email)
}

func TestStart_RejectedTokenClearsSession(t *testing.T) {
	sm, store, nav, _ := newSessionFixture(t)

	store.Set(TokenKey, "stale-token")
	store.Set(RefreshTokenKey, "stale-refresh")

	err := sm.Start(context.Background())
	require.Error(t, err)
	require.Equal(t, StatusUnauthenticated, sm.Status())

	token, _ := store.Get(TokenKey)
	refresh, _ := store.Get(RefreshTokenKey)
	require.Empty(t, token)
	require.Empty(t, refresh)

	// The 401 interception emits exactly one login redirect.
	require.Equal(t, []Redirect{{To: LoginPath}}, nav.all())
}

func TestLogin(t *testing.T) {
	sm, store, _, _ := newSessionFixture(t)
	require.NoError(t, sm.Start(context.Background()))

	t.Run("failure surfaces the error and keeps state", func(t *testing.T) {
		err := sm.Login(context.Background(), "ada@example.com", "wrong")
		require.Error(t, err)
		require.True(t, IsUnauthorized(err))
		require.Equal(t, StatusUnauthenticated, sm.Status())

		token, _ := store.Get(TokenKey)
		require.Empty(t, token)
	})

	t.Run("success persists the pair", func(t *testing.T) {
		require.NoError(t, sm.Login(context.Background(), "ada@example.com", "correct-horse"))
		require.Equal(t, StatusAuthenticated, sm.Status())
		require.Equal(t, "Ada", sm.CurrentUser().Name)

		token, _ := store.Get(TokenKey)
		refresh, _ := store.Get(RefreshTokenKey)
		require.Equal(t, "access-ada@example.com", token)
		require.Equal(t, "refresh-ada@example.com", refresh)
	})
}

func TestLogin_AfterCloseReportsClosed(t *testing.T) {
	sm, store, _, _ := newSessionFixture(t)
	require.NoError(t, sm.Start(context.Background()))
	sm.Close()

	err := sm.Login(context.Background(), "ada@example.com", "correct-horse")
	require.ErrorIs(t, err, ErrSessionClosed)
	require.NotEqual(t, StatusAuthenticated, sm.Status())

	token, _ := store.Get(TokenKey)
	require.Empty(t, token)
}

func TestLogout_ClearsEverythingThenNavigates(t *testing.T) {
	sm, store, nav, _ := newSessionFixture(t)
	require.NoError(t, sm.Start(context.Background()))
	require.NoError(t, sm.Login(context.Background(), "ada@example.com", "correct-horse"))

	sm.Logout(context.Background())

	require.Equal(t, StatusUnauthenticated, sm.Status())
	require.Nil(t, sm.CurrentUser())

	token, _ := store.Get(TokenKey)
	refresh, _ := store.Get(RefreshTokenKey)
	require.Empty(t, token)
	require.Empty(t, refresh)

	require.Equal(t, []Redirect{{To: LoginPath}}, nav.all())
}

func TestInvalidate_ConcurrentUnauthorizedSignals(t *testing.T) {
	sm, store, nav, backend := newSessionFixture(t)
	require.NoError(t, sm.Start(context.Background()))
	require.NoError(t, sm.Login(context.Background(), "ada@example.com", "correct-horse"))

	// Every in-flight request now comes back 401.
	backend.mu.Lock()
	backend.rejectAll = true
	backend.mu.Unlock()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sm.client.Profile(context.Background())
		}()
	}
	wg.Wait()

	require.Equal(t, StatusUnauthenticated, sm.Status())
	token, _ := store.Get(TokenKey)
	require.Empty(t, token)

	// The session is torn down exactly once.
	require.Equal(t, []Redirect{{To: LoginPath}}, nav.all())
}

func TestStart_AfterCloseDoesNotMutate(t *testing.T) {
	release := make(chan struct{})

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/auth/profile", func(w http.ResponseWriter, r *http.Request) {
		<-release
		writeUnauthorized(w)
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	store := NewMemoryTokenStore()
	store.Set(TokenKey, "some-token")
	nav := &recordingNavigator{}
	sm := NewSessionManager(NewClient(server.URL, store), store, nav)

	done := make(chan struct{})
	go func() {
		sm.Start(context.Background())
		close(done)
	}()

	sm.Close()
	close(release)
	<-done

	// The resolved check observed the teardown and left state alone.
	require.Equal(t, StatusChecking, sm.Status())
	require.Empty(t, nav.all())
}

func TestEvaluate_ExecutesGuardIntent(t *testing.T) {
	sm, _, nav, _ := newSessionFixture(t)
	require.NoError(t, sm.Start(context.Background()))

	sm.Evaluate(DashboardPath)
	require.Equal(t, []Redirect{{To: LoginPath}}, nav.all())

	require.NoError(t, sm.Login(context.Background(), "ada@example.com", "correct-horse"))
	sm.Evaluate(LoginPath)
	require.Equal(t, Redirect{To: DashboardPath}, nav.all()[1])
}

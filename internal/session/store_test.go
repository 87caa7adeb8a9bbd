package session

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/keyxmakerx/storefront/internal/authapi"
	"github.com/keyxmakerx/storefront/internal/storage"
)

// --- Mock Auth API ---

// mockAPI implements AuthAPI for testing.
type mockAPI struct {
	loginFn    func(ctx context.Context, email, password string) (*authapi.LoginResponse, error)
	registerFn func(ctx context.Context, name, email, password string) (*authapi.RegisterResponse, error)
	meFn       func(ctx context.Context, token string) (*authapi.User, error)

	mu         sync.Mutex
	loginCalls int
	meCalls    int
	lastToken  string
}

func (m *mockAPI) Login(ctx context.Context, email, password string) (*authapi.LoginResponse, error) {
	m.mu.Lock()
	m.loginCalls++
	m.mu.Unlock()
	if m.loginFn != nil {
		return m.loginFn(ctx, email, password)
	}
	return &authapi.LoginResponse{AccessToken: "tok-login"}, nil
}

func (m *mockAPI) Register(ctx context.Context, name, email, password string) (*authapi.RegisterResponse, error) {
	if m.registerFn != nil {
		return m.registerFn(ctx, name, email, password)
	}
	return &authapi.RegisterResponse{
		Authorization: authapi.Authorization{Token: "tok-register"},
		User:          &authapi.User{ID: 2, Name: name, Email: email},
	}, nil
}

func (m *mockAPI) Me(ctx context.Context, token string) (*authapi.User, error) {
	m.mu.Lock()
	m.meCalls++
	m.lastToken = token
	m.mu.Unlock()
	if m.meFn != nil {
		return m.meFn(ctx, token)
	}
	return &authapi.User{ID: 1, Name: "Alice", Email: "alice@example.com"}, nil
}

func (m *mockAPI) meCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.meCalls
}

// --- Mock Storage ---

// failingStorage returns err from every call.
type failingStorage struct {
	err error
}

func (f failingStorage) GetItem(context.Context, string) (string, error) { return "", f.err }
func (f failingStorage) SetItem(context.Context, string, string) error  { return f.err }
func (f failingStorage) RemoveItem(context.Context, string) error       { return f.err }

// --- Test Helpers ---

// newTestStore builds a store over fresh memory storage, optionally with a
// token already persisted.
func newTestStore(t *testing.T, api *mockAPI, persisted string) (*Store, storage.Storage) {
	t.Helper()
	st := storage.NewMemory().Scope("client-1")
	if persisted != "" {
		if err := st.SetItem(context.Background(), storage.TokenKey, persisted); err != nil {
			t.Fatalf("seeding storage: %v", err)
		}
	}
	store, err := New(context.Background(), api, st)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return store, st
}

// assertPersisted checks the token held in storage.
func assertPersisted(t *testing.T, st storage.Storage, want string) {
	t.Helper()
	got, err := st.GetItem(context.Background(), storage.TokenKey)
	if err != nil {
		t.Fatalf("reading storage: %v", err)
	}
	if got != want {
		t.Errorf("expected persisted token %q, got %q", want, got)
	}
}

var errUnauthorized = &authapi.Error{Method: "POST", Path: "/api/auth/login", StatusCode: http.StatusUnauthorized, Message: "Unauthorized"}

// --- Init Tests ---

func TestNew_LoadsPersistedToken(t *testing.T) {
	store, _ := newTestStore(t, &mockAPI{}, "tok-saved")
	if store.Token() != "tok-saved" {
		t.Errorf("expected tok-saved, got %q", store.Token())
	}
	if store.Phase() != Pending {
		t.Errorf("expected pending, got %s", store.Phase())
	}
	if store.User() != nil {
		t.Error("user must never be restored from storage")
	}
}

func TestNew_EmptyStorage(t *testing.T) {
	store, _ := newTestStore(t, &mockAPI{}, "")
	if store.LoggedIn() {
		t.Error("expected no token")
	}
	if store.Phase() != Unauthenticated {
		t.Errorf("expected unauthenticated, got %s", store.Phase())
	}
}

func TestNew_StorageError(t *testing.T) {
	_, err := New(context.Background(), &mockAPI{}, failingStorage{err: errors.New("redis down")})
	if err == nil {
		t.Fatal("expected error")
	}
}

// --- Login Tests ---

func TestLogin_Success(t *testing.T) {
	api := &mockAPI{}
	store, st := newTestStore(t, api, "")

	if err := store.Login(context.Background(), "alice@example.com", "secret-123"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.Token() != "tok-login" {
		t.Errorf("expected tok-login, got %q", store.Token())
	}
	assertPersisted(t, st, "tok-login")
	if api.meCount() != 1 {
		t.Errorf("expected one user fetch, got %d", api.meCount())
	}
	if api.lastToken != "tok-login" {
		t.Errorf("expected fetch with new token, got %q", api.lastToken)
	}
	if u := store.User(); u == nil || u.Name != "Alice" {
		t.Errorf("expected user Alice, got %+v", u)
	}
	if store.Phase() != Authenticated {
		t.Errorf("expected authenticated, got %s", store.Phase())
	}
}

func TestLogin_InvalidCredentialsLeaveStateUnchanged(t *testing.T) {
	api := &mockAPI{
		loginFn: func(ctx context.Context, email, password string) (*authapi.LoginResponse, error) {
			return nil, errUnauthorized
		},
	}
	store, st := newTestStore(t, api, "tok-old")

	err := store.Login(context.Background(), "alice@example.com", "wrong")
	if !errors.Is(err, errUnauthorized) {
		t.Fatalf("expected the upstream error to propagate, got %v", err)
	}
	if store.Token() != "tok-old" {
		t.Errorf("expected token unchanged, got %q", store.Token())
	}
	assertPersisted(t, st, "tok-old")
	if api.meCount() != 0 {
		t.Error("expected no user fetch after failed login")
	}
}

func TestLogin_PersistFailure(t *testing.T) {
	api := &mockAPI{}
	store, err := New(context.Background(), api, &flakyStorage{setErr: errors.New("disk full")})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := store.Login(context.Background(), "a@example.com", "pw"); err == nil {
		t.Fatal("expected persist error")
	}
	if store.LoggedIn() {
		t.Error("memory must not hold a token that storage rejected")
	}
}

func TestLogin_FetchFailureLogsOut(t *testing.T) {
	api := &mockAPI{
		meFn: func(ctx context.Context, token string) (*authapi.User, error) {
			return nil, errors.New("connection reset")
		},
	}
	store, st := newTestStore(t, api, "")

	// Login itself succeeded; the follow-up fetch failure is swallowed.
	if err := store.Login(context.Background(), "alice@example.com", "secret-123"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.LoggedIn() {
		t.Error("expected logout after failed fetch")
	}
	assertPersisted(t, st, "")
}

// --- Register Tests ---

func TestRegister_SetsTokenAndUserWithoutFetch(t *testing.T) {
	api := &mockAPI{}
	store, st := newTestStore(t, api, "")

	if err := store.Register(context.Background(), "Bob", "bob@example.com", "secret-123"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.Token() != "tok-register" {
		t.Errorf("expected tok-register, got %q", store.Token())
	}
	assertPersisted(t, st, "tok-register")
	if u := store.User(); u == nil || u.Email != "bob@example.com" {
		t.Errorf("expected user from response, got %+v", u)
	}
	if api.meCount() != 0 {
		t.Errorf("expected no extra fetch, got %d", api.meCount())
	}
}

func TestRegister_Failure(t *testing.T) {
	upstream := &authapi.Error{StatusCode: http.StatusUnprocessableEntity, Message: "The email has already been taken."}
	api := &mockAPI{
		registerFn: func(ctx context.Context, name, email, password string) (*authapi.RegisterResponse, error) {
			return nil, upstream
		},
	}
	store, st := newTestStore(t, api, "")

	err := store.Register(context.Background(), "Bob", "taken@example.com", "secret-123")
	if !errors.Is(err, upstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if store.Phase() != Unauthenticated {
		t.Errorf("expected unauthenticated, got %s", store.Phase())
	}
	assertPersisted(t, st, "")
}

// --- FetchUser Tests ---

func TestFetchUser_NoTokenIsNoop(t *testing.T) {
	api := &mockAPI{}
	store, _ := newTestStore(t, api, "")

	store.FetchUser(context.Background())

	if api.meCount() != 0 {
		t.Errorf("expected no network call, got %d", api.meCount())
	}
	if store.User() != nil {
		t.Error("expected user to stay nil")
	}
}

func TestFetchUser_Success(t *testing.T) {
	api := &mockAPI{}
	store, _ := newTestStore(t, api, "tok-saved")

	store.FetchUser(context.Background())

	if api.lastToken != "tok-saved" {
		t.Errorf("expected bearer tok-saved, got %q", api.lastToken)
	}
	if store.Phase() != Authenticated {
		t.Errorf("expected authenticated, got %s", store.Phase())
	}
}

func TestFetchUser_FailureClearsEverything(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"expired token", &authapi.Error{StatusCode: http.StatusUnauthorized}},
		{"server error", &authapi.Error{StatusCode: http.StatusInternalServerError}},
		{"network failure", errors.New("dial tcp: connection refused")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &mockAPI{
				meFn: func(ctx context.Context, token string) (*authapi.User, error) {
					return nil, tt.err
				},
			}
			store, st := newTestStore(t, api, "tok-saved")

			store.FetchUser(context.Background())

			if store.Token() != "" || store.User() != nil {
				t.Errorf("expected cleared state, got %+v", store.Snapshot())
			}
			assertPersisted(t, st, "")
		})
	}
}

func TestFetchUser_IgnoresResultForReplacedToken(t *testing.T) {
	var store *Store
	api := &mockAPI{
		meFn: func(ctx context.Context, token string) (*authapi.User, error) {
			// Logout lands while the fetch is in flight.
			store.Logout(ctx)
			return &authapi.User{ID: 1, Name: "Alice"}, nil
		},
	}
	store, _ = newTestStore(t, api, "tok-saved")

	store.FetchUser(context.Background())

	if store.User() != nil {
		t.Error("expected stale fetch result to be discarded")
	}
}

// --- Logout Tests ---

func TestLogout_ClearsState(t *testing.T) {
	store, st := newTestStore(t, &mockAPI{}, "")
	if err := store.Register(context.Background(), "Bob", "bob@example.com", "secret-123"); err != nil {
		t.Fatalf("register: %v", err)
	}

	store.Logout(context.Background())

	if store.Phase() != Unauthenticated {
		t.Errorf("expected unauthenticated, got %s", store.Phase())
	}
	if store.User() != nil {
		t.Error("expected user cleared")
	}
	assertPersisted(t, st, "")
}

func TestLogout_WhenAlreadyLoggedOut(t *testing.T) {
	store, st := newTestStore(t, &mockAPI{}, "")
	store.Logout(context.Background())
	assertPersisted(t, st, "")
}

func TestLogout_StorageErrorStillClearsMemory(t *testing.T) {
	st := &flakyStorage{value: "tok-saved", removeErr: errors.New("redis down")}
	store, err := New(context.Background(), &mockAPI{}, st)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	store.Logout(context.Background())

	if store.LoggedIn() {
		t.Error("expected memory cleared despite storage error")
	}
}

// --- Concurrency ---

func TestConcurrentLogins_LastWriterWins(t *testing.T) {
	release := make(chan struct{})
	api := &mockAPI{
		loginFn: func(ctx context.Context, email, password string) (*authapi.LoginResponse, error) {
			if email == "slow@example.com" {
				<-release
				return &authapi.LoginResponse{AccessToken: "tok-slow"}, nil
			}
			return &authapi.LoginResponse{AccessToken: "tok-fast"}, nil
		},
	}
	store, st := newTestStore(t, api, "")

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = store.Login(context.Background(), "slow@example.com", "pw")
	}()

	// Wait until the slow login is in flight before the fast one runs.
	deadline := time.Now().Add(time.Second)
	for {
		api.mu.Lock()
		calls := api.loginCalls
		api.mu.Unlock()
		if calls == 1 || time.Now().After(deadline) {
			break
		}
		time.Sleep(time.Millisecond)
	}

	if err := store.Login(context.Background(), "fast@example.com", "pw"); err != nil {
		t.Fatalf("fast login: %v", err)
	}
	close(release)
	wg.Wait()

	if store.Token() != "tok-slow" {
		t.Errorf("expected the later response to win, got %q", store.Token())
	}
	assertPersisted(t, st, "tok-slow")
}

// flakyStorage is an in-memory Storage with injectable write errors.
type flakyStorage struct {
	mu        sync.Mutex
	value     string
	getErr    error
	setErr    error
	removeErr error
}

func (f *flakyStorage) GetItem(context.Context, string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return "", f.getErr
	}
	return f.value, nil
}

func (f *flakyStorage) SetItem(_ context.Context, _ string, v string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.value = v
	return nil
}

func (f *flakyStorage) RemoveItem(context.Context, string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.removeErr != nil {
		return f.removeErr
	}
	f.value = ""
	return nil
}

// --- Reload Tests ---

func TestReload_FollowsStorage(t *testing.T) {
	ctx := context.Background()
	store, st := newTestStore(t, &mockAPI{}, "tok-saved")
	store.FetchUser(ctx)
	if store.Phase() != Authenticated {
		t.Fatalf("expected authenticated, got %s", store.Phase())
	}

	// Unchanged token keeps the user.
	if got := store.Reload(ctx); got != "tok-saved" {
		t.Errorf("expected tok-saved, got %q", got)
	}
	if store.User() == nil {
		t.Error("expected user kept when the token is unchanged")
	}

	// Token removed behind the store's back, e.g. an expired Redis hash.
	if err := st.RemoveItem(ctx, storage.TokenKey); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if got := store.Reload(ctx); got != "" {
		t.Errorf("expected no token, got %q", got)
	}
	if store.LoggedIn() || store.User() != nil {
		t.Error("expected memory cleared after the persisted token vanished")
	}

	// A token written by another writer is picked up without a user.
	if err := st.SetItem(ctx, storage.TokenKey, "tok-other"); err != nil {
		t.Fatalf("set: %v", err)
	}
	store.Reload(ctx)
	if store.Token() != "tok-other" || store.Phase() != Pending {
		t.Errorf("expected pending with tok-other, got %q %s", store.Token(), store.Phase())
	}
}

func TestReload_ReadFailureCountsAsSignedOut(t *testing.T) {
	st := &flakyStorage{value: "tok-saved"}
	store, err := New(context.Background(), &mockAPI{}, st)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	st.mu.Lock()
	st.getErr = errors.New("redis down")
	st.mu.Unlock()

	if got := store.Reload(context.Background()); got != "" {
		t.Errorf("expected no token on read failure, got %q", got)
	}
	if store.LoggedIn() {
		t.Error("expected signed out after a failed reload")
	}
	if st.value != "tok-saved" {
		t.Error("reload must not touch storage")
	}
}

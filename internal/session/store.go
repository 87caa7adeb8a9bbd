// Package session holds a client's authentication state: the bearer token
// (mirrored into persistent storage) and the current user's profile (memory
// only, refetched on demand).
//
// A Store is an explicit object created by New, which performs the one-time
// read of the persisted token. The server keeps one Store per browser client
// in a Registry; the CLI builds a single Store over file storage.
//
// State machine:
//
//	Unauthenticated --login/register--> Pending --FetchUser ok--> Authenticated
//	any state --FetchUser failure or Logout--> Unauthenticated
//
// There is no token refresh: a token is used until a call fails with it.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/keyxmakerx/storefront/internal/authapi"
	"github.com/keyxmakerx/storefront/internal/storage"
)

// AuthAPI is the subset of the remote authentication service the store
// depends on. *authapi.Client implements it.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*authapi.LoginResponse, error)
	Register(ctx context.Context, name, email, password string) (*authapi.RegisterResponse, error)
	Me(ctx context.Context, token string) (*authapi.User, error)
}

// Phase is the store's position in the session state machine.
type Phase int

const (
	// Unauthenticated means no token is held.
	Unauthenticated Phase = iota
	// Pending means a token is held but the user has not been fetched.
	Pending
	// Authenticated means a token is held and the user is known.
	Authenticated
)

func (p Phase) String() string {
	switch p {
	case Pending:
		return "pending"
	case Authenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// State is a point-in-time copy of a store's fields.
type State struct {
	Token string
	User  *authapi.User
}

// Store is one client's session. Safe for concurrent use: mutations are
// serialized, network calls run outside the lock. Two logins in flight at
// once are not deduplicated; whichever response lands last wins.
type Store struct {
	api     AuthAPI
	storage storage.Storage
	logger  *slog.Logger

	mu    sync.Mutex
	token string
	user  *authapi.User
}

// New creates a store and loads the persisted token from st.
func New(ctx context.Context, api AuthAPI, st storage.Storage) (*Store, error) {
	token, err := st.GetItem(ctx, storage.TokenKey)
	if err != nil {
		return nil, fmt.Errorf("loading persisted token: %w", err)
	}
	return &Store{
		api:     api,
		storage: st,
		logger:  slog.Default(),
		token:   token,
	}, nil
}

// WithLogger replaces the logger used for diagnostics. Returns s.
func (s *Store) WithLogger(l *slog.Logger) *Store {
	s.logger = l
	return s
}

// Login authenticates with the service, persists the returned token and
// then loads the user. On failure the error is logged and returned and the
// state is left untouched.
func (s *Store) Login(ctx context.Context, email, password string) error {
	resp, err := s.api.Login(ctx, email, password)
	if err != nil {
		s.logFailure("login failed", err)
		return err
	}

	if err := s.setToken(ctx, resp.AccessToken, nil); err != nil {
		s.logFailure("login failed", err)
		return err
	}
	s.logger.Debug("token saved after login")

	s.FetchUser(ctx)
	return nil
}

// Register creates an account, persists the nested token and takes the
// user straight from the response without a separate fetch. On failure
// the error is logged and returned and the state is left untouched.
func (s *Store) Register(ctx context.Context, name, email, password string) error {
	resp, err := s.api.Register(ctx, name, email, password)
	if err != nil {
		s.logFailure("register failed", err)
		return err
	}

	if err := s.setToken(ctx, resp.Authorization.Token, resp.User); err != nil {
		s.logFailure("register failed", err)
		return err
	}
	s.logger.Debug("token saved after register")
	return nil
}

// FetchUser loads the current user with the held token. Without a token
// it returns immediately and makes no call. Any failure, whether the token
// was rejected or the service was unreachable, logs the client out.
func (s *Store) FetchUser(ctx context.Context) {
	token := s.Token()
	if token == "" {
		return
	}

	user, err := s.api.Me(ctx, token)
	if err != nil {
		s.logger.Warn("fetching current user failed, logging out", slog.Any("error", err))
		s.Logout(ctx)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// A logout or a new login may have landed while the call was in
	// flight; only attach the user to the token it was fetched with.
	if s.token == token {
		s.user = user
	}
}

// Logout clears the token and user and removes the persisted token. It
// makes no network call and does not fail: a storage error is logged and
// the in-memory state is cleared regardless.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()

	if err := s.storage.RemoveItem(ctx, storage.TokenKey); err != nil {
		s.logger.Error("removing persisted token failed", slog.Any("error", err))
	}
}

// Token returns the held bearer token, or "".
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// User returns the loaded profile, or nil.
func (s *Store) User() *authapi.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// LoggedIn reports whether a token is held.
func (s *Store) LoggedIn() bool {
	return s.Token() != ""
}

// Phase reports the store's position in the state machine.
func (s *Store) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.token == "":
		return Unauthenticated
	case s.user == nil:
		return Pending
	default:
		return Authenticated
	}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{Token: s.token, User: s.user}
}

// PersistedToken reads the token straight from storage, bypassing memory.
func (s *Store) PersistedToken(ctx context.Context) (string, error) {
	return s.storage.GetItem(ctx, storage.TokenKey)
}

// Reload re-reads the persisted token so memory follows storage. If the
// token changed (expired, purged, or replaced by another writer) the
// cached user is dropped. A read failure counts as no token, matching the
// navigation guard; storage is left untouched. Returns the token now held.
func (s *Store) Reload(ctx context.Context) string {
	token, err := s.storage.GetItem(ctx, storage.TokenKey)
	if err != nil {
		s.logger.Warn("reloading persisted token failed, treating as signed out", slog.Any("error", err))
		token = ""
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.token {
		s.logger.Debug("persisted token changed, resyncing session")
		s.token = token
		s.user = nil
	}
	return s.token
}

// setToken persists token first so memory never claims a session that
// storage does not have.
func (s *Store) setToken(ctx context.Context, token string, user *authapi.User) error {
	if err := s.storage.SetItem(ctx, storage.TokenKey, token); err != nil {
		return fmt.Errorf("persisting token: %w", err)
	}
	s.mu.Lock()
	s.token = token
	s.user = user
	s.mu.Unlock()
	return nil
}

// logFailure logs an auth failure with the upstream status and body when
// the service answered.
func (s *Store) logFailure(msg string, err error) {
	attrs := []any{slog.Any("error", err)}
	if apiErr, ok := authapi.AsError(err); ok {
		attrs = append(attrs,
			slog.Int("status", apiErr.StatusCode),
			slog.String("body", apiErr.Body),
		)
	}
	s.logger.Error(msg, attrs...)
}

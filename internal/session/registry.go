package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/keyxmakerx/storefront/internal/storage"
)

// Registry caches one Store per browser client. Dropping an idle entry
// loses only the in-memory user: the token stays in storage and the next
// request rebuilds the store from it.
type Registry struct {
	api     AuthAPI
	backend storage.Backend
	idleTTL time.Duration
	now     func() time.Time

	mu      sync.Mutex
	entries map[string]*registryEntry

	stop chan struct{}
	done chan struct{}
}

type registryEntry struct {
	store    *Store
	lastUsed time.Time
}

// NewRegistry creates a registry and starts its idle sweeper when idleTTL
// is positive. Call Close to stop the sweeper.
func NewRegistry(api AuthAPI, backend storage.Backend, idleTTL time.Duration) *Registry {
	r := &Registry{
		api:     api,
		backend: backend,
		idleTTL: idleTTL,
		now:     time.Now,
		entries: make(map[string]*registryEntry),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	if idleTTL > 0 {
		go r.sweepLoop()
	} else {
		close(r.done)
	}
	return r
}

// Get returns the store for clientID, creating and initializing it from
// storage on first use. A cached store is reloaded from storage first, so
// its token always matches what is persisted at the start of the request.
func (r *Registry) Get(ctx context.Context, clientID string) (*Store, error) {
	r.mu.Lock()
	if e, ok := r.entries[clientID]; ok {
		e.lastUsed = r.now()
		r.mu.Unlock()
		e.store.Reload(ctx)
		return e.store, nil
	}
	r.mu.Unlock()

	// Initialize outside the lock; storage may be remote.
	store, err := New(ctx, r.api, r.backend.Scope(clientID))
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[clientID]; ok {
		// Another request for the same client won the race.
		e.lastUsed = r.now()
		return e.store, nil
	}
	r.entries[clientID] = &registryEntry{store: store, lastUsed: r.now()}
	return store, nil
}

// PersistedToken reads clientID's token straight from storage. The
// navigation guard uses this so its decision follows persistent storage,
// not whatever a cached store holds in memory.
func (r *Registry) PersistedToken(ctx context.Context, clientID string) (string, error) {
	return r.backend.Scope(clientID).GetItem(ctx, storage.TokenKey)
}

// Len returns the number of cached stores.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Close stops the idle sweeper. Safe to call more than once.
func (r *Registry) Close() {
	r.mu.Lock()
	select {
	case <-r.stop:
	default:
		close(r.stop)
	}
	r.mu.Unlock()
	<-r.done
}

func (r *Registry) sweepLoop() {
	defer close(r.done)
	interval := r.idleTTL / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			if n := r.sweep(); n > 0 {
				slog.Debug("dropped idle session stores", slog.Int("count", n))
			}
		}
	}
}

// sweep drops entries idle for longer than idleTTL and returns how many.
func (r *Registry) sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-r.idleTTL)
	dropped := 0
	for id, e := range r.entries {
		if e.lastUsed.Before(cutoff) {
			delete(r.entries, id)
			dropped++
		}
	}
	return dropped
}

// Package session holds the client-side token pair and the scoped
// preserve-and-restore guard used while a verification call temporarily
// replaces it.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Pair is an access/refresh token pair.
type Pair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Empty reports whether no session is held.
func (p Pair) Empty() bool { return p.AccessToken == "" && p.RefreshToken == "" }

// Store is where the current session lives.
type Store interface {
	Current() (Pair, bool)
	// Set replaces the current pair. An empty pair signs out locally.
	Set(ctx context.Context, p Pair) error
}

// MemoryStore is a concurrency-safe in-memory Store.
type MemoryStore struct {
	mu   sync.RWMutex
	pair Pair
}

func (m *MemoryStore) Current() (Pair, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pair, !m.pair.Empty()
}

func (m *MemoryStore) Set(_ context.Context, p Pair) error {
	m.mu.Lock()
	m.pair = p
	m.mu.Unlock()
	return nil
}

// Hold is a captured session that must be restored. Release is idempotent,
// so a deferred Release after an explicit one is harmless.
type Hold struct {
	store    Store
	snapshot Pair

	mu       sync.Mutex
	released bool
}

// Acquire snapshots the store's current pair (possibly empty).
func Acquire(store Store) *Hold {
	p, _ := store.Current()
	return &Hold{store: store, snapshot: p}
}

// Snapshot returns the captured pair.
func (h *Hold) Snapshot() Pair { return h.snapshot }

// Held reports whether Release has not run yet.
func (h *Hold) Held() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return !h.released
}

// Release writes the snapshot back. Only the first call restores; later calls
// return nil. A failed restore leaves the hold in place so it can be retried.
func (h *Hold) Release(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.released {
		return nil
	}
	if err := h.store.Set(ctx, h.snapshot); err != nil {
		return fmt.Errorf("restore session: %w", err)
	}
	h.released = true
	return nil
}

// Preserve runs fn with the current session captured and restores it on every
// exit path, panics included. A restore failure is joined with fn's error.
func Preserve(ctx context.Context, store Store, fn func(ctx context.Context) error) (err error) {
	h := Acquire(store)
	defer func() {
		// Restore under a context that outlives a cancelled caller.
		rerr := h.Release(context.WithoutCancel(ctx))
		if r := recover(); r != nil {
			panic(r)
		}
		err = errors.Join(err, rerr)
	}()
	return fn(ctx)
}

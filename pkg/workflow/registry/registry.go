// Package registry keeps one live orchestrator per session so the
// sub-workflow graph is not rebuilt on every turn. It is the only
// shared mutable state in the engine and is built once at startup and
// injected, never reached through a global.
package registry

import (
	"errors"
	"sync"
)

// ErrTurnInProgress is returned when a second turn arrives for a
// session whose previous turn has not finished. Turns for the same
// session are rejected, never run concurrently against one checkpoint.
var ErrTurnInProgress = errors.New("registry: turn already in progress for this session")

type entry[T any] struct {
	value T
	busy  bool
}

// Registry is a mutex-protected session-id → orchestrator map. The
// lock is held only for map bookkeeping, so turns for different
// sessions never block each other.
type Registry[T any] struct {
	mu      sync.Mutex
	entries map[string]*entry[T]
}

func New[T any]() *Registry[T] {
	return &Registry[T]{entries: make(map[string]*entry[T])}
}

// GetOrCreate returns the live instance for a session, building it on
// first use.
func (r *Registry[T]) GetOrCreate(sessionID string, build func() T) T {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[sessionID]
	if !ok {
		e = &entry[T]{value: build()}
		r.entries[sessionID] = e
	}
	return e.value
}

// Get returns the live instance without creating one.
func (r *Registry[T]) Get(sessionID string) (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[sessionID]; ok {
		return e.value, true
	}
	var zero T
	return zero, false
}

// BeginTurn claims the session for one turn. The returned release
// function must be called when the turn ends. A session with a turn
// already running yields ErrTurnInProgress.
func (r *Registry[T]) BeginTurn(sessionID string) (func(), error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[sessionID]
	if !ok {
		return nil, errors.New("registry: unknown session")
	}
	if e.busy {
		return nil, ErrTurnInProgress
	}
	e.busy = true
	release := func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if e, ok := r.entries[sessionID]; ok {
			e.busy = false
		}
	}
	return release, nil
}

// Remove drops a session from the registry. A busy session is left in
// place so its running turn keeps a valid lock.
func (r *Registry[T]) Remove(sessionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[sessionID]
	if !ok || e.busy {
		return false
	}
	delete(r.entries, sessionID)
	return true
}

// Len reports the number of live sessions.
func (r *Registry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

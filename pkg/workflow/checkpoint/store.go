// Package checkpoint persists workflow state after every step so a
// crash or restart resumes at the last completed step.
package checkpoint

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no checkpoint exists for a session.
var ErrNotFound = errors.New("checkpoint: not found")

// Store is the durable snapshot contract. States are stored as JSON so
// the in-memory and Redis implementations behave identically.
type Store interface {
	// Put writes the state snapshot for a session, replacing any
	// previous one. A turn is not durable until Put returns nil.
	Put(ctx context.Context, sessionID string, st any) error

	// Get loads the last snapshot into out, or ErrNotFound.
	Get(ctx context.Context, sessionID string, out any) error

	// Delete removes the snapshot. Used by explicit session cleanup
	// only, never by workflow completion.
	Delete(ctx context.Context, sessionID string) error
}

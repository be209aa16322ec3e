package ports

import (
	"context"

	"github.com/aretw0/arbor/pkg/domain"
)

// StateStore defines the interface for persisting session state.
// This allows sessions to survive process restarts and to be shared
// between hosts (REPL, HTTP, MCP) pointing at the same backend.
type StateStore interface {
	// Save persists the state for a given session ID.
	Save(ctx context.Context, sessionID string, state domain.State) error

	// Load retrieves the state for a given session ID.
	// Returns domain.ErrContextNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (domain.State, error)

	// Delete removes the state for a given session ID. Deleting a
	// session that does not exist is not an error.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of all persisted sessions.
	List(ctx context.Context) ([]string, error)
}

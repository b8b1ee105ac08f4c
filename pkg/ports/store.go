package ports

import (
	"context"

	"github.com/aretw0/wayfinder/pkg/domain"
)

// UserStore persists registered users.
type UserStore interface {
	// List returns every user in registration order.
	List(ctx context.Context) ([]domain.User, error)
	// Find returns domain.ErrUserNotFound if the ID is unknown.
	Find(ctx context.Context, id int) (domain.User, error)
	// Append stores a new user.
	Append(ctx context.Context, user domain.User) error
	// NextID returns the ID to assign to the next registered user.
	NextID(ctx context.Context) (int, error)
}

// SessionStore persists trip snapshots so monitors can observe them.
type SessionStore interface {
	// Save persists the snapshot under its session ID.
	Save(ctx context.Context, snap domain.Snapshot) error

	// Load retrieves a snapshot.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (domain.Snapshot, error)

	// Delete removes a snapshot.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of stored sessions.
	List(ctx context.Context) ([]string, error)
}

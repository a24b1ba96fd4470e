// Package storage persists narrative runtime state: session snapshots
// in Redis and the achievement list in Redis or a local JSON file.
package storage

import (
	"context"

	"github.com/google/uuid"

	"github.com/wildlight/questline/pkg/state"
)

// SessionStore persists session snapshots. Load returns nil with no
// error when the session does not exist.
type SessionStore interface {
	SaveSession(ctx context.Context, s *state.Session) error
	LoadSession(ctx context.Context, id uuid.UUID) (*state.Session, error)
	DeleteSession(ctx context.Context, id uuid.UUID) error
	Ping(ctx context.Context) error
	Close() error
}

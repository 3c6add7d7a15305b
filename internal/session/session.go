package session

import (
	"context"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"

	"go-chi-calculator/internal/engine"
)

var (
	// ErrNotFound is returned when no session exists for an ID.
	ErrNotFound = errors.New("session not found")
	// ErrExists is returned when creating a session whose ID is taken.
	ErrExists = errors.New("session already exists")
	// ErrVersionConflict is returned when a save is based on a stale version.
	ErrVersionConflict = errors.New("session version conflict")
)

// Session is one calculator instance owned by a remote host.
type Session struct {
	ID        string
	State     engine.State
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Clone returns a deep copy of s.
func (s Session) Clone() Session {
	out := s
	out.State = s.State.Clone()
	return out
}

// Store persists sessions. Update must reject a session whose Version does not
// match the stored one with ErrVersionConflict, and bump the version on success.
type Store interface {
	Create(ctx context.Context, s Session) error
	Get(ctx context.Context, id string) (Session, error)
	Update(ctx context.Context, s Session) (Session, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
	Close() error
}

// NewID generates a new ULID string for use as a session identifier.
func NewID() string {
	return ulid.Make().String()
}

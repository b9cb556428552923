// Package storage defines the store interfaces for game sessions and
// attempt records. The host process owns the concrete store; the core
// only requires concurrent insert-if-absent and lookup semantics.
package storage

import (
	"context"
	"errors"

	"github.com/louisbranch/synthesis.garden/internal/game/domain"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New("record not found")

// ErrSessionExists indicates a create collided with an existing session id.
var ErrSessionExists = errors.New("session already exists")

// SessionStore persists session records keyed by session id.
// Implementations must hand out snapshots: mutating a returned session
// must not affect stored state until it is put back.
type SessionStore interface {
	// CreateSession inserts a session if its id is absent, otherwise
	// fails with ErrSessionExists.
	CreateSession(ctx context.Context, session domain.Session) error
	GetSession(ctx context.Context, id string) (domain.Session, error)
	// PutSession replaces an existing session record.
	PutSession(ctx context.Context, session domain.Session) error
	// ListSessions returns all sessions in creation order.
	ListSessions(ctx context.Context) ([]domain.Session, error)
}

// AttemptStore persists the append-only attempt log per session.
type AttemptStore interface {
	AppendAttempt(ctx context.Context, record domain.AttemptRecord) error
	// ListAttempts returns a session's records in append order.
	ListAttempts(ctx context.Context, sessionID string) ([]domain.AttemptRecord, error)
}

// GameStore groups the stores a game service needs.
type GameStore interface {
	SessionStore
	AttemptStore
}

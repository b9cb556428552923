// Package memory provides the in-process game store. Sessions live only
// for the lifetime of the process; there is no durable backend by design.
package memory

import (
	"context"
	"sync"

	"github.com/louisbranch/synthesis.garden/internal/game/domain"
	"github.com/louisbranch/synthesis.garden/internal/storage"
)

// Store is a concurrency-safe in-memory game store. Reads return deep
// copies so callers can never mutate stored state in place.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]domain.Session
	order    []string // session ids in creation order
	attempts map[string][]domain.AttemptRecord
}

// New creates an empty store.
func New() *Store {
	return &Store{
		sessions: make(map[string]domain.Session),
		attempts: make(map[string][]domain.AttemptRecord),
	}
}

// CreateSession inserts a session if its id is absent.
func (s *Store) CreateSession(ctx context.Context, session domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[session.ID]; exists {
		return storage.ErrSessionExists
	}
	s.sessions[session.ID] = session.Clone()
	s.order = append(s.order, session.ID)
	return nil
}

// GetSession returns a snapshot of a session.
func (s *Store) GetSession(ctx context.Context, id string) (domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return domain.Session{}, storage.ErrNotFound
	}
	return session.Clone(), nil
}

// PutSession replaces an existing session record.
func (s *Store) PutSession(ctx context.Context, session domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[session.ID]; !ok {
		return storage.ErrNotFound
	}
	s.sessions[session.ID] = session.Clone()
	return nil
}

// ListSessions returns snapshots of all sessions in creation order.
func (s *Store) ListSessions(ctx context.Context) ([]domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]domain.Session, 0, len(s.order))
	for _, id := range s.order {
		sessions = append(sessions, s.sessions[id].Clone())
	}
	return sessions, nil
}

// AppendAttempt appends a record to its session's log. The session must
// already exist.
func (s *Store) AppendAttempt(ctx context.Context, record domain.AttemptRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[record.SessionID]; !ok {
		return storage.ErrNotFound
	}
	s.attempts[record.SessionID] = append(s.attempts[record.SessionID], record)
	return nil
}

// ListAttempts returns a session's records in append order. Records are
// immutable once appended, so only the outer slice is copied.
func (s *Store) ListAttempts(ctx context.Context, sessionID string) ([]domain.AttemptRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return nil, storage.ErrNotFound
	}
	records := s.attempts[sessionID]
	copied := make([]domain.AttemptRecord, len(records))
	copy(copied, records)
	return copied, nil
}

var _ storage.GameStore = (*Store)(nil)

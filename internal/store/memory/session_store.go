package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/talentstream/talentstream/internal/store"
)

// SessionStore implements store.SearchStore using in-memory storage.
// Data is lost on restart; it is the default for single-node deployments.
type SessionStore struct {
	mu sync.RWMutex

	sessions map[uuid.UUID]*store.Session
	order    []uuid.UUID // insertion order, oldest first
}

var _ store.SearchStore = &SessionStore{}

// NewSessionStore creates a new in-memory session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[uuid.UUID]*store.Session),
	}
}

func (s *SessionStore) RecordStart(ctx context.Context, searchType string) (*store.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := &store.Session{
		ID:         uuid.Must(uuid.NewV7()),
		SearchType: searchType,
		StartedAt:  time.Now().UTC(),
	}

	s.sessions[session.ID] = session
	s.order = append(s.order, session.ID)

	clone := *session
	return &clone, nil
}

func (s *SessionStore) RecordOutcome(ctx context.Context, id uuid.UUID, outcome string, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, exists := s.sessions[id]
	if !exists {
		return store.ErrSessionNotFound
	}
	if session.Finished() {
		return store.ErrSessionFinished
	}

	now := time.Now().UTC()
	session.Outcome = outcome
	session.Reason = reason
	session.FinishedAt = &now

	return nil
}

func (s *SessionStore) GetSession(ctx context.Context, id uuid.UUID) (*store.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, exists := s.sessions[id]
	if !exists {
		return nil, store.ErrSessionNotFound
	}

	// Clone to avoid external modifications
	clone := *session
	return &clone, nil
}

func (s *SessionStore) ListSessions(ctx context.Context, limit int) ([]*store.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = store.DefaultListLimit
	}
	if limit > len(s.order) {
		limit = len(s.order)
	}

	sessions := make([]*store.Session, 0, limit)
	for i := len(s.order) - 1; i >= 0 && len(sessions) < limit; i-- {
		clone := *s.sessions[s.order[i]]
		sessions = append(sessions, &clone)
	}

	return sessions, nil
}

func (s *SessionStore) Ping(ctx context.Context) error {
	return nil
}

func (s *SessionStore) Close() {}

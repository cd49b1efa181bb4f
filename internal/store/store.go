package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Sentinel errors for common error conditions
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionFinished = errors.New("session already finished")
)

// DefaultListLimit is the number of sessions ListSessions returns when the
// caller does not ask for a specific limit.
const DefaultListLimit = 100

// Session is one recorded stream run: what was searched and how it ended.
type Session struct {
	ID         uuid.UUID
	SearchType string
	Outcome    string
	Reason     string
	StartedAt  time.Time
	FinishedAt *time.Time
}

// Finished reports whether an outcome has been recorded.
func (s *Session) Finished() bool {
	return s.FinishedAt != nil
}

// SearchStore records search session history.
type SearchStore interface {
	// RecordStart creates a session row when a stream begins.
	RecordStart(ctx context.Context, searchType string) (*Session, error)

	// RecordOutcome finalizes a session with its outcome and, for failures,
	// the reason. Recording twice returns ErrSessionFinished.
	RecordOutcome(ctx context.Context, id uuid.UUID, outcome string, reason string) error

	// GetSession retrieves a session by ID.
	GetSession(ctx context.Context, id uuid.UUID) (*Session, error)

	// ListSessions returns the most recently started sessions, newest first.
	// A non-positive limit means DefaultListLimit.
	ListSessions(ctx context.Context, limit int) ([]*Session, error)

	// Ping verifies the backing storage is reachable.
	Ping(ctx context.Context) error

	// Close releases backing resources.
	Close()
}

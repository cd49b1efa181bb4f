package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/talentstream/talentstream/internal/store"
)

// Config holds session-store configuration beyond pooling.
type Config struct {
	// AutoMigrate runs pending schema migrations at startup.
	AutoMigrate bool
}

// SessionStore implements store.SearchStore using PostgreSQL.
type SessionStore struct {
	pool *pgxpool.Pool
}

var _ store.SearchStore = &SessionStore{}

// NewSessionStore connects to PostgreSQL and, when configured, brings the
// schema up to date.
func NewSessionStore(ctx context.Context, poolCfg *PoolConfig, cfg Config) (*SessionStore, error) {
	pool, err := NewPool(ctx, poolCfg)
	if err != nil {
		return nil, err
	}

	if cfg.AutoMigrate {
		if err := runMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	log.Info().
		Int32("max_conns", poolCfg.MaxConns).
		Msg("Connected to PostgreSQL")

	return &SessionStore{pool: pool}, nil
}

func (s *SessionStore) RecordStart(ctx context.Context, searchType string) (*store.Session, error) {
	session := &store.Session{
		ID:         uuid.Must(uuid.NewV7()),
		SearchType: searchType,
		StartedAt:  time.Now().UTC(),
	}

	query := `
		INSERT INTO search_sessions (session_id, search_type, started_at)
		VALUES ($1, $2, $3)
	`

	if _, err := s.pool.Exec(ctx, query, session.ID, session.SearchType, session.StartedAt); err != nil {
		return nil, fmt.Errorf("failed to record session start: %w", mapPostgresError(err))
	}

	log.Debug().
		Str("session_id", session.ID.String()).
		Str("search_type", searchType).
		Msg("Recorded session start")

	return session, nil
}

func (s *SessionStore) RecordOutcome(ctx context.Context, id uuid.UUID, outcome string, reason string) error {
	query := `
		UPDATE search_sessions
		SET outcome = $2, reason = $3, finished_at = $4
		WHERE session_id = $1 AND finished_at IS NULL
	`

	tag, err := s.pool.Exec(ctx, query, id, outcome, reason, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to record session outcome: %w", mapPostgresError(err))
	}

	if tag.RowsAffected() == 0 {
		// Distinguish a finished session from a missing one.
		var exists bool
		if err := s.pool.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM search_sessions WHERE session_id = $1)`, id,
		).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check session: %w", mapPostgresError(err))
		}
		if exists {
			return store.ErrSessionFinished
		}
		return store.ErrSessionNotFound
	}

	return nil
}

func (s *SessionStore) GetSession(ctx context.Context, id uuid.UUID) (*store.Session, error) {
	query := `
		SELECT session_id, search_type, COALESCE(outcome, ''), COALESCE(reason, ''), started_at, finished_at
		FROM search_sessions
		WHERE session_id = $1
	`

	var session store.Session
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&session.ID,
		&session.SearchType,
		&session.Outcome,
		&session.Reason,
		&session.StartedAt,
		&session.FinishedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", mapPostgresError(err))
	}

	return &session, nil
}

func (s *SessionStore) ListSessions(ctx context.Context, limit int) ([]*store.Session, error) {
	if limit <= 0 {
		limit = store.DefaultListLimit
	}

	query := `
		SELECT session_id, search_type, COALESCE(outcome, ''), COALESCE(reason, ''), started_at, finished_at
		FROM search_sessions
		ORDER BY started_at DESC
		LIMIT $1
	`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", mapPostgresError(err))
	}
	defer rows.Close()

	var sessions []*store.Session
	for rows.Next() {
		var session store.Session
		if err := rows.Scan(
			&session.ID,
			&session.SearchType,
			&session.Outcome,
			&session.Reason,
			&session.StartedAt,
			&session.FinishedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, &session)
	}

	return sessions, rows.Err()
}

func (s *SessionStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *SessionStore) Close() {
	s.pool.Close()
}

//go:build integration

package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/talentstream/talentstream/internal/store"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupPostgresContainer(t *testing.T, ctx context.Context) *SessionStore {
	t.Helper()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connString := fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())

	s, err := NewSessionStore(ctx, &PoolConfig{ConnString: connString}, Config{AutoMigrate: true})
	require.NoError(t, err)
	t.Cleanup(s.Close)

	return s
}

func TestSessionStoreIntegration(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	s := setupPostgresContainer(t, ctx)

	t.Run("ping", func(t *testing.T) {
		require.NoError(t, s.Ping(ctx))
	})

	t.Run("record and fetch", func(t *testing.T) {
		session, err := s.RecordStart(ctx, "github_resume")
		require.NoError(t, err)

		got, err := s.GetSession(ctx, session.ID)
		require.NoError(t, err)
		require.Equal(t, "github_resume", got.SearchType)
		require.False(t, got.Finished())

		require.NoError(t, s.RecordOutcome(ctx, session.ID, "completed", ""))

		got, err = s.GetSession(ctx, session.ID)
		require.NoError(t, err)
		require.Equal(t, "completed", got.Outcome)
		require.True(t, got.Finished())
	})

	t.Run("double outcome", func(t *testing.T) {
		session, err := s.RecordStart(ctx, "linkedin_jobs")
		require.NoError(t, err)

		require.NoError(t, s.RecordOutcome(ctx, session.ID, "failed", "browser crashed"))
		err = s.RecordOutcome(ctx, session.ID, "completed", "")
		require.ErrorIs(t, err, store.ErrSessionFinished)
	})

	t.Run("unknown session", func(t *testing.T) {
		_, err := s.GetSession(ctx, uuid.Must(uuid.NewV7()))
		require.ErrorIs(t, err, store.ErrSessionNotFound)

		err = s.RecordOutcome(ctx, uuid.Must(uuid.NewV7()), "completed", "")
		require.ErrorIs(t, err, store.ErrSessionNotFound)
	})

	t.Run("list newest first", func(t *testing.T) {
		sessions, err := s.ListSessions(ctx, 2)
		require.NoError(t, err)
		require.Len(t, sessions, 2)
		require.False(t, sessions[0].StartedAt.Before(sessions[1].StartedAt))
	})
}

package stream

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func waitDone(t *testing.T, h *Handle) {
	t.Helper()
	select {
	case <-h.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("job did not finish in time")
	}
}

func TestRunnerJobPushesOwnTerminal(t *testing.T) {
	ctx := context.Background()
	q := NewQueue()

	h := Run(ctx, func(ctx context.Context, q *Queue) error {
		q.Push(Progress(StatusStarted))
		q.Push(Completed(map[string]any{"output": "X"}))
		return nil
	}, q)
	waitDone(t, h)

	m, err := q.Pop(ctx)
	require.NoError(t, err)
	require.Equal(t, KindProgress, m.Kind)

	m, err = q.Pop(ctx)
	require.NoError(t, err)
	require.Equal(t, KindCompleted, m.Kind)

	// No synthesized extras.
	require.Equal(t, 0, q.Len())
}

func TestRunnerSynthesizesErrorOnFailure(t *testing.T) {
	ctx := context.Background()
	q := NewQueue()

	h := Run(ctx, func(ctx context.Context, q *Queue) error {
		q.Push(Progress(StatusStarted))
		return errors.New("upstream exploded")
	}, q)
	waitDone(t, h)

	_, err := q.Pop(ctx)
	require.NoError(t, err)

	m, err := q.Pop(ctx)
	require.NoError(t, err)
	require.Equal(t, KindError, m.Kind)
	require.Equal(t, "upstream exploded", m.Payload["message"])
}

func TestRunnerSynthesizesErrorOnPanic(t *testing.T) {
	ctx := context.Background()
	q := NewQueue()

	h := Run(ctx, func(ctx context.Context, q *Queue) error {
		panic("kaboom")
	}, q)
	waitDone(t, h)

	m, err := q.Pop(ctx)
	require.NoError(t, err)
	require.Equal(t, KindError, m.Kind)
	require.Contains(t, m.Payload["message"], "kaboom")
}

func TestRunnerSynthesizesErrorOnSilentReturn(t *testing.T) {
	ctx := context.Background()
	q := NewQueue()

	h := Run(ctx, func(ctx context.Context, q *Queue) error {
		q.Push(Progress(StatusStarted))
		return nil
	}, q)
	waitDone(t, h)

	_, err := q.Pop(ctx)
	require.NoError(t, err)

	m, err := q.Pop(ctx)
	require.NoError(t, err)
	require.Equal(t, KindError, m.Kind)
}

func TestRunnerNoTerminalAfterCancellation(t *testing.T) {
	q := NewQueue()

	started := make(chan struct{})
	h := Run(context.Background(), func(ctx context.Context, q *Queue) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	}, q)

	<-started
	h.Cancel()
	waitDone(t, h)

	require.Equal(t, 0, q.Len())
	require.False(t, q.Terminated())
}

package stream

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// JobFunc is a long-running job. It pushes progress messages into q and must
// push exactly one terminal message before returning. It must honor ctx
// cancellation at every blocking operation; the multiplexer relies on that
// for prompt teardown.
type JobFunc func(ctx context.Context, q *Queue) error

// Handle tracks one running job.
type Handle struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Cancel requests cooperative cancellation of the job.
func (h *Handle) Cancel() {
	h.cancel()
}

// Done is closed once the job goroutine has fully unwound, terminal message
// included. After Done the job pushes nothing further.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Run starts job in its own goroutine and returns a handle for cancellation.
//
// The runner enforces the terminal-message invariant: if the job returns an
// error, panics, or returns cleanly without having pushed a terminal message,
// the runner pushes a terminal error on its behalf. A job cancelled mid-flight
// gets no synthesized terminal; the session that cancelled it is already
// tearing down and consumes nothing further.
func Run(ctx context.Context, job JobFunc, q *Queue) *Handle {
	jobCtx, cancel := context.WithCancel(ctx)
	h := &Handle{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(h.done)
		defer cancel()

		err := invoke(jobCtx, job, q)
		if jobCtx.Err() != nil || q.Terminated() {
			return
		}

		if err != nil {
			q.Push(Errorf("%s", err))
			return
		}

		// Contract breach: the job returned cleanly but never reported an
		// outcome. Surface it as a failure rather than letting the session
		// idle out.
		zerolog.Ctx(jobCtx).Warn().Msg("job returned without a terminal message")
		q.Push(Errorf("job finished without reporting a result"))
	}()

	return h
}

func invoke(ctx context.Context, job JobFunc, q *Queue) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return job(ctx, q)
}

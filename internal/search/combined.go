package search

import (
	"context"
	"errors"
	"fmt"

	"github.com/talentstream/talentstream/internal/stream"
)

// CombinedJob runs the configured sub-searches sequentially and pushes a
// single terminal message with the collected outputs. Sub-search progress is
// forwarded to the outer stream; sub-search terminals are folded into
// progress updates so the outer stream terminates exactly once. A failing
// sub-search fails the whole run.
func CombinedJob(gh *GitHubConfig, li *LinkedInConfig, analyzer ProfileAnalyzer, agent JobSearcher) stream.JobFunc {
	return func(ctx context.Context, q *stream.Queue) error {
		q.Push(stream.ProgressWith(stream.StatusStarted, map[string]any{
			"message": "Starting combined search...",
		}))

		results := map[string]any{}

		if gh != nil {
			output, err := runSub(ctx, q, GitHubJob(*gh, analyzer))
			if err != nil {
				return failCombined(ctx, q, err)
			}
			results["github"] = output
		}

		if li != nil {
			output, err := runSub(ctx, q, LinkedInJob(*li, agent))
			if err != nil {
				return failCombined(ctx, q, err)
			}
			results["linkedin"] = output
		}

		q.Push(stream.Completed(map[string]any{
			"output": results,
			"type":   string(TypeCombined),
		}))
		return nil
	}
}

// runSub drains one sub-search into the outer queue and returns its output.
func runSub(ctx context.Context, outer *stream.Queue, job stream.JobFunc) (any, error) {
	sub := stream.NewQueue()
	handle := stream.Run(ctx, job, sub)
	defer func() {
		handle.Cancel()
		<-handle.Done()
	}()

	for {
		m, err := sub.Pop(ctx)
		if err != nil {
			return nil, err
		}

		if !m.Terminal() {
			outer.Push(m)
			continue
		}

		if m.Kind == stream.KindError {
			reason := "search failed"
			if s, ok := m.Payload["message"].(string); ok && s != "" {
				reason = s
			}
			if t, ok := m.Payload["type"].(string); ok && t != "" {
				return nil, fmt.Errorf("%s: %s", t, reason)
			}
			return nil, errors.New(reason)
		}

		// Completed. Surface it as progress on the outer stream so the
		// combined run keeps the one-terminal contract.
		t, _ := m.Payload["type"].(string)
		outer.Push(stream.ProgressWith(stream.StatusTaskDone, map[string]any{
			"task":    t,
			"message": fmt.Sprintf("%s search finished", t),
		}))
		return m.Payload["output"], nil
	}
}

func failCombined(ctx context.Context, q *stream.Queue, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	q.Push(stream.Failed(map[string]any{
		"message": err.Error(),
		"type":    string(TypeCombined),
	}))
	return nil
}

package search

import (
	"context"
	"fmt"

	"github.com/talentstream/talentstream/internal/stream"
)

// TaskResult describes one finished stage of a profile analysis.
type TaskResult struct {
	Name    string
	Summary string
}

// ProfileAnalyzer turns a GitHub profile into a rendered resume. Each finished
// analysis stage is reported through onTask before the final output returns.
type ProfileAnalyzer interface {
	GenerateResume(ctx context.Context, cfg GitHubConfig, onTask func(TaskResult)) (string, error)
}

// GitHubJob builds the streaming job for a single profile analysis.
func GitHubJob(cfg GitHubConfig, analyzer ProfileAnalyzer) stream.JobFunc {
	return func(ctx context.Context, q *stream.Queue) error {
		q.Push(stream.ProgressWith(stream.StatusStarted, map[string]any{
			"message": fmt.Sprintf("Starting GitHub profile analysis for %s", cfg.Username),
		}))

		resume, err := analyzer.GenerateResume(ctx, cfg, func(task TaskResult) {
			q.Push(stream.ProgressWith(stream.StatusTaskDone, map[string]any{
				"task":    task.Name,
				"summary": task.Summary,
			}))
		})
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			q.Push(stream.Failed(map[string]any{
				"message": err.Error(),
				"type":    string(TypeGitHubResume),
			}))
			return nil
		}

		q.Push(stream.Completed(map[string]any{
			"output": resume,
			"type":   string(TypeGitHubResume),
		}))
		return nil
	}
}

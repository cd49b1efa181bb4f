package gemini

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/talentstream/talentstream/internal/client"
	"github.com/talentstream/talentstream/internal/search"
	"github.com/talentstream/talentstream/internal/telemetry"
)

// Config configures the Gemini-backed profile analyzer.
type Config struct {
	APIKey      string
	Model       string
	GitHubToken string
	TasksFile   string
	CacheDir    string
}

// Analyzer runs the task pipeline against a fetched GitHub profile, one
// model call per task.
type Analyzer struct {
	gen     textGenerator
	fetcher *ProfileFetcher
	tasks   []Task
}

var _ search.ProfileAnalyzer = &Analyzer{}

// NewAnalyzer builds an analyzer from configuration. The GitHub fetcher uses
// a caching HTTP client keyed off cfg.CacheDir.
func NewAnalyzer(ctx context.Context, cfg Config) (*Analyzer, error) {
	tasks, err := LoadTasks(cfg.TasksFile)
	if err != nil {
		return nil, err
	}

	gen, err := newGeminiGenerator(ctx, cfg.APIKey, cfg.Model)
	if err != nil {
		return nil, err
	}

	return &Analyzer{
		gen:     gen,
		fetcher: NewProfileFetcher(client.NewCachingHTTPClient(cfg.CacheDir), cfg.GitHubToken),
		tasks:   tasks,
	}, nil
}

type promptData struct {
	Profile  *Profile
	Repos    []Repo
	Sections map[string]string
}

// GenerateResume fetches the profile and runs each applicable task in order,
// feeding earlier outputs to later prompts. The final task's output is the
// resume.
func (a *Analyzer) GenerateResume(ctx context.Context, cfg search.GitHubConfig, onTask func(search.TaskResult)) (string, error) {
	metrics := telemetry.GetMetrics()
	log := zerolog.Ctx(ctx)

	profile, repos, err := a.fetcher.FetchProfile(ctx, cfg.Username, cfg.MaxRepos)
	if err != nil {
		metrics.AnalyzerErrors.Add(ctx, 1)
		return "", err
	}

	data := promptData{Profile: profile, Repos: repos, Sections: map[string]string{}}

	var last string
	for _, task := range a.tasks {
		if task.When == WhenProjects && !cfg.IncludeProjects {
			continue
		}
		if task.When == WhenContributions && !cfg.IncludeContributions {
			continue
		}

		var prompt bytes.Buffer
		if err := task.tmpl.Execute(&prompt, data); err != nil {
			return "", fmt.Errorf("task %q prompt: %w", task.Name, err)
		}

		metrics.AnalyzerCalls.Add(ctx, 1)
		output, err := a.gen.generate(ctx, prompt.String())
		if err != nil {
			metrics.AnalyzerErrors.Add(ctx, 1)
			return "", fmt.Errorf("task %q: %w", task.Name, err)
		}

		log.Debug().
			Str("task", task.Name).
			Int("output_length", len(output)).
			Msg("analysis task finished")

		data.Sections[task.Name] = output
		last = output

		if onTask != nil {
			onTask(search.TaskResult{Name: task.Name, Summary: summarize(output)})
		}
	}

	if last == "" {
		return "", fmt.Errorf("no analysis tasks applied for %q", cfg.Username)
	}
	return last, nil
}

// Ready reports whether the GitHub API is reachable. Used by readiness
// checks; it does not exercise the model.
func (a *Analyzer) Ready(ctx context.Context) error {
	var out struct {
		Resources map[string]any `json:"resources"`
	}
	return a.fetcher.get(ctx, a.fetcher.baseURL+"/rate_limit", &out)
}

// summarize reduces a task output to a one-line progress summary.
func summarize(s string) string {
	line := strings.TrimSpace(s)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = strings.TrimSpace(line[:i])
	}
	const max = 140
	if len(line) > max {
		line = line[:max] + "..."
	}
	return line
}

package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/talentstream/talentstream/internal/stream"
)

// Posting is a single job listing found by a search agent.
type Posting struct {
	Title    string `json:"title"`
	Company  string `json:"company"`
	Location string `json:"location"`
	URL      string `json:"url,omitempty"`
}

// Query is what a job-search agent is asked to find.
type Query struct {
	Keywords        []string `json:"keywords"`
	Location        string   `json:"location,omitempty"`
	ExperienceLevel string   `json:"experience_level,omitempty"`
	JobType         string   `json:"job_type,omitempty"`
	MaxResults      int      `json:"max_results"`
}

// JobSearcher runs a job search against an external site. Progress is
// reported through onProgress as free-form status lines.
type JobSearcher interface {
	Search(ctx context.Context, query Query, onProgress func(line string)) ([]Posting, error)
}

// LinkedInJob builds the streaming job for a browser-driven job search.
func LinkedInJob(cfg LinkedInConfig, agent JobSearcher) stream.JobFunc {
	return func(ctx context.Context, q *stream.Queue) error {
		q.Push(stream.ProgressWith(stream.StatusStarted, map[string]any{
			"message": fmt.Sprintf("Searching LinkedIn for jobs matching: %s", strings.Join(cfg.Keywords, ", ")),
		}))
		q.Push(stream.ProgressWith(stream.StatusInitializing, map[string]any{
			"message": "Starting browser automation...",
		}))
		q.Push(stream.ProgressWith(stream.StatusSearching, map[string]any{
			"message": "Searching LinkedIn jobs...",
		}))

		query := Query{
			Keywords:        cfg.Keywords,
			Location:        cfg.Location,
			ExperienceLevel: cfg.ExperienceLevel,
			JobType:         cfg.JobType,
			MaxResults:      cfg.MaxResults,
		}

		jobs, err := agent.Search(ctx, query, func(line string) {
			q.Push(stream.ProgressWith(stream.StatusSearching, map[string]any{"message": line}))
		})
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			q.Push(stream.Failed(map[string]any{
				"message": err.Error(),
				"type":    string(TypeLinkedInJobs),
			}))
			return nil
		}

		jobs = FilterByCompany(jobs, cfg.CompanyFilter)

		q.Push(stream.Completed(map[string]any{
			"output": map[string]any{
				"search_query": map[string]any{
					"keywords":         cfg.Keywords,
					"location":         cfg.Location,
					"experience_level": cfg.ExperienceLevel,
					"job_type":         cfg.JobType,
					"company_filter":   cfg.CompanyFilter,
				},
				"jobs_found": len(jobs),
				"jobs":       jobs,
				"message":    fmt.Sprintf("Found %d matching jobs on LinkedIn", len(jobs)),
			},
			"type": string(TypeLinkedInJobs),
		}))
		return nil
	}
}

// FilterByCompany keeps postings whose company matches any filter entry,
// case-insensitive substring. An empty filter keeps everything.
func FilterByCompany(jobs []Posting, filter []string) []Posting {
	if len(filter) == 0 {
		return jobs
	}

	kept := make([]Posting, 0, len(jobs))
	for _, job := range jobs {
		company := strings.ToLower(job.Company)
		for _, want := range filter {
			if strings.Contains(company, strings.ToLower(want)) {
				kept = append(kept, job)
				break
			}
		}
	}
	return kept
}

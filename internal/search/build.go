package search

import (
	"fmt"

	"github.com/talentstream/talentstream/internal/stream"
)

// Build resolves a validated request into the job that serves it.
func Build(req *Request, analyzer ProfileAnalyzer, agent JobSearcher) (stream.JobFunc, error) {
	switch req.SearchType {
	case TypeGitHubResume:
		return GitHubJob(*req.GitHub, analyzer), nil
	case TypeLinkedInJobs:
		return LinkedInJob(*req.LinkedIn, agent), nil
	case TypeCombined:
		return CombinedJob(req.GitHub, req.LinkedIn, analyzer, agent), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSearchType, req.SearchType)
	}
}

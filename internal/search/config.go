package search

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Type selects which backend a search request runs against.
type Type string

const (
	TypeGitHubResume Type = "github_resume"
	TypeLinkedInJobs Type = "linkedin_jobs"
	TypeCombined     Type = "combined"
)

var ErrUnknownSearchType = errors.New("unknown search type")

const (
	DefaultMaxRepos   = 10
	DefaultMaxResults = 20
)

// GitHubConfig configures a GitHub profile analysis run.
type GitHubConfig struct {
	Username             string `json:"username" validate:"required,max=128"`
	IncludeProjects      bool   `json:"include_projects"`
	IncludeContributions bool   `json:"include_contributions"`
	MaxRepos             int    `json:"max_repos" validate:"min=0,max=100"`
}

// UnmarshalJSON applies defaults for the include flags, which are on unless
// the request explicitly turns them off.
func (c *GitHubConfig) UnmarshalJSON(b []byte) error {
	type alias GitHubConfig
	a := alias{IncludeProjects: true, IncludeContributions: true}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	*c = GitHubConfig(a)
	return nil
}

// LinkedInConfig configures a LinkedIn job search run.
type LinkedInConfig struct {
	Keywords        []string `json:"keywords" validate:"required,min=1,dive,required"`
	Location        string   `json:"location,omitempty"`
	ExperienceLevel string   `json:"experience_level,omitempty"`
	JobType         string   `json:"job_type,omitempty"`
	MaxResults      int      `json:"max_results" validate:"min=0,max=200"`
	CompanyFilter   []string `json:"company_filter,omitempty"`
}

// Request is the body of an execute-search call.
type Request struct {
	SearchType   Type            `json:"search_type" validate:"required,oneof=github_resume linkedin_jobs combined"`
	GitHub       *GitHubConfig   `json:"github_config,omitempty"`
	LinkedIn     *LinkedInConfig `json:"linkedin_config,omitempty"`
	OutputFormat string          `json:"output_format,omitempty" validate:"omitempty,oneof=markdown json pdf"`
}

var validate = validator.New()

// Validate checks field constraints plus the cross-field rules tying the
// search type to its config sections.
func (r *Request) Validate() error {
	if err := validate.Struct(r); err != nil {
		return err
	}

	switch r.SearchType {
	case TypeGitHubResume:
		if r.GitHub == nil {
			return errors.New("github_config required for GitHub resume search")
		}
	case TypeLinkedInJobs:
		if r.LinkedIn == nil {
			return errors.New("linkedin_config required for LinkedIn job search")
		}
	case TypeCombined:
		if r.GitHub == nil && r.LinkedIn == nil {
			return errors.New("at least one of github_config or linkedin_config required for combined search")
		}
	}

	if r.GitHub != nil {
		if err := validate.Struct(r.GitHub); err != nil {
			return fmt.Errorf("github_config: %w", err)
		}
	}
	if r.LinkedIn != nil {
		if err := validate.Struct(r.LinkedIn); err != nil {
			return fmt.Errorf("linkedin_config: %w", err)
		}
	}

	return nil
}

// Normalize fills unset numeric limits with their defaults.
func (r *Request) Normalize() {
	if r.OutputFormat == "" {
		r.OutputFormat = "markdown"
	}
	if r.GitHub != nil && r.GitHub.MaxRepos == 0 {
		r.GitHub.MaxRepos = DefaultMaxRepos
	}
	if r.LinkedIn != nil && r.LinkedIn.MaxResults == 0 {
		r.LinkedIn.MaxResults = DefaultMaxResults
	}
}

// Template returns an example request body for the given search type, served
// to clients building their own requests.
func Template(t Type) (*Request, error) {
	switch t {
	case TypeGitHubResume:
		return &Request{
			SearchType: TypeGitHubResume,
			GitHub: &GitHubConfig{
				Username:             "example_user",
				IncludeProjects:      true,
				IncludeContributions: true,
				MaxRepos:             DefaultMaxRepos,
			},
			OutputFormat: "markdown",
		}, nil
	case TypeLinkedInJobs:
		return &Request{
			SearchType: TypeLinkedInJobs,
			LinkedIn: &LinkedInConfig{
				Keywords:        []string{"Python", "Machine Learning"},
				Location:        "San Francisco, CA",
				ExperienceLevel: "Mid-Senior",
				JobType:         "Full-time",
				MaxResults:      DefaultMaxResults,
			},
			OutputFormat: "json",
		}, nil
	case TypeCombined:
		return &Request{
			SearchType: TypeCombined,
			GitHub: &GitHubConfig{
				Username:             "example_user",
				IncludeProjects:      true,
				IncludeContributions: true,
				MaxRepos:             DefaultMaxRepos,
			},
			LinkedIn: &LinkedInConfig{
				Keywords:   []string{"Python", "AI"},
				Location:   "Remote",
				MaxResults: DefaultMaxResults,
			},
			OutputFormat: "markdown",
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSearchType, t)
	}
}

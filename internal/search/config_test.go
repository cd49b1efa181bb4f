package search

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRequestValidate(t *testing.T) {
	t.Run("github resume needs github config", func(t *testing.T) {
		req := &Request{SearchType: TypeGitHubResume}
		require.ErrorContains(t, req.Validate(), "github_config required")

		req.GitHub = &GitHubConfig{Username: "octocat"}
		require.NoError(t, req.Validate())
	})

	t.Run("linkedin jobs needs linkedin config", func(t *testing.T) {
		req := &Request{SearchType: TypeLinkedInJobs}
		require.ErrorContains(t, req.Validate(), "linkedin_config required")

		req.LinkedIn = &LinkedInConfig{Keywords: []string{"Go"}}
		require.NoError(t, req.Validate())
	})

	t.Run("combined needs at least one config", func(t *testing.T) {
		req := &Request{SearchType: TypeCombined}
		require.ErrorContains(t, req.Validate(), "at least one of")

		req.LinkedIn = &LinkedInConfig{Keywords: []string{"Go"}}
		require.NoError(t, req.Validate())
	})

	t.Run("unknown search type is rejected", func(t *testing.T) {
		req := &Request{SearchType: "telepathy"}
		require.Error(t, req.Validate())
	})

	t.Run("empty keywords are rejected", func(t *testing.T) {
		req := &Request{
			SearchType: TypeLinkedInJobs,
			LinkedIn:   &LinkedInConfig{Keywords: []string{}},
		}
		require.Error(t, req.Validate())
	})

	t.Run("bad output format is rejected", func(t *testing.T) {
		req := &Request{
			SearchType:   TypeGitHubResume,
			GitHub:       &GitHubConfig{Username: "octocat"},
			OutputFormat: "docx",
		}
		require.Error(t, req.Validate())
	})
}

func TestRequestNormalize(t *testing.T) {
	req := &Request{
		SearchType: TypeCombined,
		GitHub:     &GitHubConfig{Username: "octocat"},
		LinkedIn:   &LinkedInConfig{Keywords: []string{"Go"}},
	}
	req.Normalize()

	require.Equal(t, DefaultMaxRepos, req.GitHub.MaxRepos)
	require.Equal(t, DefaultMaxResults, req.LinkedIn.MaxResults)
	require.Equal(t, "markdown", req.OutputFormat)
}

func TestGitHubConfigDecodeDefaults(t *testing.T) {
	var cfg GitHubConfig
	require.NoError(t, json.Unmarshal([]byte(`{"username":"octocat"}`), &cfg))
	require.True(t, cfg.IncludeProjects)
	require.True(t, cfg.IncludeContributions)

	require.NoError(t, json.Unmarshal([]byte(`{"username":"octocat","include_projects":false}`), &cfg))
	require.False(t, cfg.IncludeProjects)
	require.True(t, cfg.IncludeContributions)
}

func TestTemplate(t *testing.T) {
	for _, st := range []Type{TypeGitHubResume, TypeLinkedInJobs, TypeCombined} {
		tmpl, err := Template(st)
		require.NoError(t, err)
		require.Equal(t, st, tmpl.SearchType)
		require.NoError(t, tmpl.Validate(), "template for %s must validate", st)
	}

	_, err := Template("telepathy")
	require.ErrorIs(t, err, ErrUnknownSearchType)
}

package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/talentstream/talentstream/internal/client"
	"github.com/talentstream/talentstream/internal/search"
)

type fakeGenerator struct {
	calls []string
	err   error
}

func (f *fakeGenerator) generate(ctx context.Context, prompt string) (string, error) {
	f.calls = append(f.calls, prompt)
	if f.err != nil {
		return "", f.err
	}
	return fmt.Sprintf("output %d", len(f.calls)), nil
}

func newGitHubStub(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /users/octocat", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"login":"octocat","name":"The Octocat","public_repos":8,"followers":100}`)
	})
	mux.HandleFunc("GET /users/octocat/repos", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[
			{"name":"hello","language":"Go","stargazers_count":42,"updated_at":"2026-01-02T00:00:00Z"},
			{"name":"mirror","fork":true,"updated_at":"2026-01-01T00:00:00Z"},
			{"name":"web","language":"TypeScript","stargazers_count":7,"updated_at":"2025-12-01T00:00:00Z"}
		]`)
	})
	mux.HandleFunc("GET /users/ghost", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestAnalyzer(t *testing.T, gen textGenerator) *Analyzer {
	t.Helper()

	tasks, err := DefaultTasks()
	require.NoError(t, err)

	fetcher := NewProfileFetcher(client.NewInMemoryCachingHTTPClient(), "")
	fetcher.baseURL = newGitHubStub(t).URL

	return &Analyzer{gen: gen, fetcher: fetcher, tasks: tasks}
}

func TestFetchProfileSkipsForks(t *testing.T) {
	fetcher := NewProfileFetcher(client.NewInMemoryCachingHTTPClient(), "")
	fetcher.baseURL = newGitHubStub(t).URL

	profile, repos, err := fetcher.FetchProfile(context.Background(), "octocat", 10)
	require.NoError(t, err)
	require.Equal(t, "octocat", profile.Login)
	require.Len(t, repos, 2)
	require.Equal(t, "hello", repos[0].Name)
}

func TestFetchProfileZeroMaxReposFetchesNone(t *testing.T) {
	fetcher := NewProfileFetcher(client.NewInMemoryCachingHTTPClient(), "")
	fetcher.baseURL = newGitHubStub(t).URL

	profile, repos, err := fetcher.FetchProfile(context.Background(), "octocat", 0)
	require.NoError(t, err)
	require.Equal(t, "octocat", profile.Login)
	require.Empty(t, repos)
}

func TestFetchProfileNotFound(t *testing.T) {
	fetcher := NewProfileFetcher(client.NewInMemoryCachingHTTPClient(), "")
	fetcher.baseURL = newGitHubStub(t).URL

	_, _, err := fetcher.FetchProfile(context.Background(), "ghost", 10)
	require.ErrorIs(t, err, ErrProfileNotFound)
}

func TestGenerateResumeRunsPipeline(t *testing.T) {
	gen := &fakeGenerator{}
	a := newTestAnalyzer(t, gen)

	var tasks []string
	resume, err := a.GenerateResume(context.Background(), search.GitHubConfig{
		Username:             "octocat",
		IncludeProjects:      true,
		IncludeContributions: true,
		MaxRepos:             10,
	}, func(task search.TaskResult) {
		tasks = append(tasks, task.Name)
	})
	require.NoError(t, err)

	require.Equal(t, []string{"profile_overview", "project_analysis", "contribution_history", "render_resume"}, tasks)
	require.Equal(t, "output 4", resume)

	// The assembly prompt sees the earlier sections.
	final := gen.calls[len(gen.calls)-1]
	require.Contains(t, final, "output 1")
	require.Contains(t, final, "octocat")
}

func TestGenerateResumeHonoursIncludeFlags(t *testing.T) {
	gen := &fakeGenerator{}
	a := newTestAnalyzer(t, gen)

	var tasks []string
	_, err := a.GenerateResume(context.Background(), search.GitHubConfig{
		Username: "octocat",
		MaxRepos: 10,
	}, func(task search.TaskResult) {
		tasks = append(tasks, task.Name)
	})
	require.NoError(t, err)
	require.Equal(t, []string{"profile_overview", "render_resume"}, tasks)
}

func TestGenerateResumeSurfacesGeneratorFailure(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("rate limited")}
	a := newTestAnalyzer(t, gen)

	_, err := a.GenerateResume(context.Background(), search.GitHubConfig{Username: "octocat", MaxRepos: 5}, nil)
	require.ErrorContains(t, err, "rate limited")
	require.ErrorContains(t, err, "profile_overview")
}

func TestSummarize(t *testing.T) {
	require.Equal(t, "first line", summarize("first line\nsecond line"))

	long := make([]byte, 200)
	for i := range long {
		long[i] = 'x'
	}
	got := summarize(string(long))
	require.Len(t, got, 143)
}

package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const defaultGitHubBaseURL = "https://api.github.com"

// Profile is the subset of a GitHub user record the analyzer works from.
type Profile struct {
	Login       string `json:"login"`
	Name        string `json:"name"`
	Bio         string `json:"bio"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	Blog        string `json:"blog"`
	PublicRepos int    `json:"public_repos"`
	Followers   int    `json:"followers"`
}

// Repo is the subset of a GitHub repository record the analyzer works from.
type Repo struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Language    string    `json:"language"`
	Stars       int       `json:"stargazers_count"`
	Forks       int       `json:"forks_count"`
	Fork        bool      `json:"fork"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProfileFetcher pulls profile and repository data from the GitHub REST API.
// The HTTP client should be a caching one; GitHub sets ETags on these
// endpoints and revalidation does not count against the rate limit.
type ProfileFetcher struct {
	client  *http.Client
	baseURL string
	token   string
}

// NewProfileFetcher creates a fetcher. token may be empty for anonymous
// access at the lower rate limit.
func NewProfileFetcher(client *http.Client, token string) *ProfileFetcher {
	return &ProfileFetcher{client: client, baseURL: defaultGitHubBaseURL, token: token}
}

func (f *ProfileFetcher) get(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if f.token != "" {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrProfileNotFound, url)
	default:
		return fmt.Errorf("github returned %d for %s", resp.StatusCode, url)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// FetchProfile returns the user record and their most recently pushed
// non-fork repositories, up to maxRepos. A non-positive maxRepos skips the
// repository listing entirely.
func (f *ProfileFetcher) FetchProfile(ctx context.Context, username string, maxRepos int) (*Profile, []Repo, error) {
	var profile Profile
	if err := f.get(ctx, fmt.Sprintf("%s/users/%s", f.baseURL, username), &profile); err != nil {
		return nil, nil, fmt.Errorf("failed to fetch profile %q: %w", username, err)
	}

	if maxRepos <= 0 {
		return &profile, nil, nil
	}

	var repos []Repo
	url := fmt.Sprintf("%s/users/%s/repos?sort=pushed&per_page=100", f.baseURL, username)
	if err := f.get(ctx, url, &repos); err != nil {
		return nil, nil, fmt.Errorf("failed to fetch repos for %q: %w", username, err)
	}

	kept := make([]Repo, 0, maxRepos)
	for _, repo := range repos {
		if repo.Fork {
			continue
		}
		kept = append(kept, repo)
		if len(kept) == maxRepos {
			break
		}
	}

	return &profile, kept, nil
}

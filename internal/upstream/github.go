package upstream

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/jonesrussell/projectintel/internal/httpx"
)

// GitHubClient talks to the GitHub REST API.
type GitHubClient struct {
	client *http.Client
	apiURL string
	token  string
}

// NewGitHubClient creates a client. An empty token disables authenticated
// endpoints; callers should treat that as "source unavailable".
func NewGitHubClient(apiURL, token string) *GitHubClient {
	return &GitHubClient{
		client: httpx.NewClient(0),
		apiURL: strings.TrimSuffix(apiURL, "/"),
		token:  token,
	}
}

// Enabled reports whether a token is configured.
func (c *GitHubClient) Enabled() bool {
	return c.token != ""
}

func (c *GitHubClient) headers() map[string]string {
	return map[string]string{
		"Authorization": "Bearer " + c.token,
		"Accept":        "application/vnd.github.v3+json",
	}
}

// SearchRepo is one repository entry from the search API.
type SearchRepo struct {
	FullName    string `json:"full_name"`
	HTMLURL     string `json:"html_url"`
	Description string `json:"description"`
	Name        string `json:"name"`
	Owner       struct {
		Login string `json:"login"`
	} `json:"owner"`
	Topics []string `json:"topics"`
}

// SearchRepos searches repositories sorted by stars.
func (c *GitHubClient) SearchRepos(ctx context.Context, query string, perPage int) ([]SearchRepo, error) {
	params := url.Values{
		"q":        {query},
		"sort":     {"stars"},
		"order":    {"desc"},
		"per_page": {strconv.Itoa(perPage)},
	}

	var resp struct {
		Items []SearchRepo `json:"items"`
	}
	if err := getJSON(ctx, c.client, c.apiURL+"/search/repositories", c.headers(), params, &resp); err != nil {
		return nil, fmt.Errorf("github search: %w", err)
	}
	return resp.Items, nil
}

// Repo holds the repository fields the aggregator cares about.
type Repo struct {
	FullName   string `json:"full_name"`
	HTMLURL    string `json:"html_url"`
	Stars      int    `json:"stargazers_count"`
	Forks      int    `json:"forks_count"`
	OpenIssues int    `json:"open_issues_count"`
	Watchers   int    `json:"subscribers_count"`
	PushedAt   string `json:"pushed_at"`
}

// GetRepo fetches a single repository by "owner/name".
func (c *GitHubClient) GetRepo(ctx context.Context, fullName string) (*Repo, error) {
	var repo Repo
	if err := getJSON(ctx, c.client, c.apiURL+"/repos/"+fullName, c.headers(), nil, &repo); err != nil {
		return nil, fmt.Errorf("github repo %s: %w", fullName, err)
	}
	return &repo, nil
}

// Commit is one entry from the repository commit listing.
type Commit struct {
	Commit struct {
		Message string `json:"message"`
		Author  struct {
			Name string `json:"name"`
			Date string `json:"date"`
		} `json:"author"`
	} `json:"commit"`
}

// RecentCommits lists up to perPage most recent commits.
func (c *GitHubClient) RecentCommits(ctx context.Context, fullName string, perPage int) ([]Commit, error) {
	params := url.Values{"per_page": {strconv.Itoa(perPage)}}

	var commits []Commit
	if err := getJSON(ctx, c.client, c.apiURL+"/repos/"+fullName+"/commits", c.headers(), params, &commits); err != nil {
		return nil, fmt.Errorf("github commits %s: %w", fullName, err)
	}
	return commits, nil
}

// Languages returns the byte counts per language for a repository.
func (c *GitHubClient) Languages(ctx context.Context, fullName string) (map[string]int64, error) {
	langs := make(map[string]int64)
	if err := getJSON(ctx, c.client, c.apiURL+"/repos/"+fullName+"/languages", c.headers(), nil, &langs); err != nil {
		return nil, fmt.Errorf("github languages %s: %w", fullName, err)
	}
	return langs, nil
}

// FundingFile fetches and decodes a repository's .github/FUNDING.yml.
// Returns ok=false when the repository has none.
func (c *GitHubClient) FundingFile(ctx context.Context, fullName string) (string, bool, error) {
	var resp struct {
		Content string `json:"content"`
	}
	err := getJSON(ctx, c.client, c.apiURL+"/repos/"+fullName+"/contents/.github/FUNDING.yml", c.headers(), nil, &resp)
	if err != nil {
		var statusErr *httpx.StatusError
		if errors.As(err, &statusErr) && statusErr.Code == http.StatusNotFound {
			return "", false, nil
		}
		return "", false, fmt.Errorf("github funding file %s: %w", fullName, err)
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(resp.Content, "\n", ""))
	if err != nil {
		return "", false, fmt.Errorf("decode funding file %s: %w", fullName, err)
	}
	return string(decoded), true, nil
}

// ParseRepoURL extracts "owner/name" from a github.com repository URL.
func ParseRepoURL(repoURL string) (string, bool) {
	cleaned := strings.TrimPrefix(repoURL, "https://github.com/")
	cleaned = strings.TrimPrefix(cleaned, "http://github.com/")
	if cleaned == repoURL {
		return "", false
	}
	parts := strings.Split(strings.Trim(cleaned, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", false
	}
	return parts[0] + "/" + parts[1], true
}

package stats

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonesrussell/projectintel/internal/cache"
	"github.com/jonesrussell/projectintel/internal/logger"
	"github.com/jonesrussell/projectintel/internal/upstream"
)

const (
	githubCachePrefix = "github:"
	githubConcurrency = 4
	commitPage        = 30
	recentWindow      = 30 * 24 * time.Hour
)

// RepoStats holds the aggregated metrics for a single repository.
type RepoStats struct {
	FullName      string   `json:"full_name"`
	URL           string   `json:"url"`
	Stars         int      `json:"stars"`
	Forks         int      `json:"forks"`
	OpenIssues    int      `json:"open_issues"`
	Watchers      int      `json:"watchers"`
	CommitCount   int      `json:"commit_count"`
	RecentCommits int      `json:"recent_commits_30d"`
	LastCommit    string   `json:"last_commit,omitempty"`
	Languages     []string `json:"languages,omitempty"`
}

// GitHubStats rolls repository metrics up across every discovered repo.
type GitHubStats struct {
	TotalStars    int         `json:"total_stars"`
	TotalForks    int         `json:"total_forks"`
	TotalIssues   int         `json:"total_open_issues"`
	TotalCommits  int         `json:"total_commits"`
	RecentCommits int         `json:"recent_commits_30d"`
	LastCommit    string      `json:"last_commit,omitempty"`
	Languages     []string    `json:"languages,omitempty"`
	Repos         []RepoStats `json:"repos"`
}

// GitHubAggregator collects repository metrics for discovered repo URLs.
type GitHubAggregator struct {
	github *upstream.GitHubClient
	store  *cache.Store
	ttl    time.Duration
	log    logger.Logger
	now    func() time.Time
}

func NewGitHubAggregator(github *upstream.GitHubClient, store *cache.Store, ttl time.Duration, log logger.Logger) *GitHubAggregator {
	return &GitHubAggregator{
		github: github,
		store:  store,
		ttl:    ttl,
		log:    log,
		now:    time.Now,
	}
}

// Collect fetches stats for each repository URL concurrently and rolls them
// up. Individual repo failures are logged and skipped; the error return is
// reserved for the no-usable-repos case.
func (a *GitHubAggregator) Collect(ctx context.Context, repoURLs []string) (*GitHubStats, error) {
	if !a.github.Enabled() {
		return nil, ErrBackendDisabled
	}

	var fullNames []string
	for _, u := range repoURLs {
		if name, ok := upstream.ParseRepoURL(u); ok {
			fullNames = append(fullNames, name)
		}
	}
	if len(fullNames) == 0 {
		return nil, ErrNoCandidates
	}

	results := make([]*RepoStats, len(fullNames))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(githubConcurrency)
	for i, name := range fullNames {
		g.Go(func() error {
			rs, err := a.repoStats(gctx, name)
			if err != nil {
				a.log.Warn("Repo stats failed",
					logger.String("repo", name),
					logger.Error(err),
				)
				return nil
			}
			results[i] = rs
			return nil
		})
	}
	_ = g.Wait()

	agg := &GitHubStats{}
	langSet := make(map[string]struct{})
	for _, rs := range results {
		if rs == nil {
			continue
		}
		agg.Repos = append(agg.Repos, *rs)
		agg.TotalStars += rs.Stars
		agg.TotalForks += rs.Forks
		agg.TotalIssues += rs.OpenIssues
		agg.TotalCommits += rs.CommitCount
		agg.RecentCommits += rs.RecentCommits
		if rs.LastCommit > agg.LastCommit {
			agg.LastCommit = rs.LastCommit
		}
		for _, l := range rs.Languages {
			langSet[l] = struct{}{}
		}
	}
	if len(agg.Repos) == 0 {
		return nil, ErrNoCandidates
	}

	for l := range langSet {
		agg.Languages = append(agg.Languages, l)
	}
	sort.Strings(agg.Languages)

	a.log.Info("GitHub stats collected",
		logger.Int("repos", len(agg.Repos)),
		logger.Int("stars", agg.TotalStars),
	)
	return agg, nil
}

// repoStats returns stats for one repository, consulting the cache first.
func (a *GitHubAggregator) repoStats(ctx context.Context, fullName string) (*RepoStats, error) {
	cacheKey := githubCachePrefix + fullName

	var cached RepoStats
	if a.store.GetJSON(ctx, cacheKey, &cached) && cached.FullName != "" {
		return &cached, nil
	}

	repo, err := a.github.GetRepo(ctx, fullName)
	if err != nil {
		return nil, err
	}

	rs := &RepoStats{
		FullName:   repo.FullName,
		URL:        repo.HTMLURL,
		Stars:      repo.Stars,
		Forks:      repo.Forks,
		OpenIssues: repo.OpenIssues,
		Watchers:   repo.Watchers,
	}

	commits, err := a.github.RecentCommits(ctx, fullName, commitPage)
	if err != nil {
		a.log.Debug("Commit listing failed",
			logger.String("repo", fullName),
			logger.Error(err),
		)
	} else {
		rs.CommitCount = len(commits)
		cutoff := a.now().Add(-recentWindow)
		for _, c := range commits {
			ts, parseErr := time.Parse(time.RFC3339, c.Commit.Author.Date)
			if parseErr != nil {
				continue
			}
			if ts.After(cutoff) {
				rs.RecentCommits++
			}
			if c.Commit.Author.Date > rs.LastCommit {
				rs.LastCommit = c.Commit.Author.Date
			}
		}
	}
	if rs.LastCommit == "" {
		rs.LastCommit = repo.PushedAt
	}

	langs, err := a.github.Languages(ctx, fullName)
	if err != nil {
		a.log.Debug("Language listing failed",
			logger.String("repo", fullName),
			logger.Error(err),
		)
	} else {
		rs.Languages = topLanguages(langs, 5)
	}

	a.store.Set(ctx, cacheKey, rs, a.ttl)
	return rs, nil
}

// topLanguages returns up to n language names ordered by byte count.
func topLanguages(langs map[string]int64, n int) []string {
	type entry struct {
		name  string
		bytes int64
	}
	entries := make([]entry, 0, len(langs))
	for name, b := range langs {
		entries = append(entries, entry{name, b})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].bytes != entries[j].bytes {
			return entries[i].bytes > entries[j].bytes
		}
		return entries[i].name < entries[j].name
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.name
	}
	return names
}

package discovery

import (
	"context"
	"strings"

	"github.com/jonesrussell/projectintel/internal/logger"
	"github.com/jonesrussell/projectintel/internal/upstream"
)

const repoLimit = 8

// RepoFinder discovers repositories highly relevant to a project name via
// the GitHub search API.
type RepoFinder struct {
	github *upstream.GitHubClient
	log    logger.Logger
}

func NewRepoFinder(github *upstream.GitHubClient, log logger.Logger) *RepoFinder {
	return &RepoFinder{
		github: github,
		log:    log,
	}
}

// Discover returns up to repoLimit repository URLs. Failures are logged and
// reported as no results.
func (f *RepoFinder) Discover(ctx context.Context, project string) []string {
	if !f.github.Enabled() {
		f.log.Warn("Repo discovery skipped, GitHub token not configured")
		return nil
	}

	repos, err := f.github.SearchRepos(ctx, project+" in:name", repoLimit*2)
	if err != nil {
		f.log.Warn("Repo discovery failed",
			logger.String("project", project),
			logger.Error(err),
		)
		return nil
	}

	projectLower := strings.ToLower(project)
	var urls []string

	for _, repo := range repos {
		if repoMatchesProject(repo, projectLower) {
			urls = append(urls, repo.HTMLURL)
		}
	}

	urls = dedupe(urls)
	if len(urls) > repoLimit {
		urls = urls[:repoLimit]
	}

	f.log.Debug("Repo discovery complete",
		logger.String("project", project),
		logger.Int("candidates", len(urls)),
	)
	return urls
}

// repoMatchesProject applies relevance heuristics against owner, name,
// topics, and description.
func repoMatchesProject(repo upstream.SearchRepo, projectLower string) bool {
	owner := strings.ToLower(repo.Owner.Login)
	name := strings.ToLower(repo.Name)

	if owner == projectLower || strings.Contains(owner, projectLower) {
		return true
	}
	if name == projectLower || strings.HasPrefix(name, projectLower) {
		return true
	}
	for _, topic := range repo.Topics {
		if strings.ToLower(topic) == projectLower {
			return true
		}
	}
	return strings.Contains(strings.ToLower(repo.Description), projectLower)
}

package discovery

import (
	"context"
	"regexp"
	"strings"

	"github.com/jonesrussell/projectintel/internal/logger"
	"github.com/jonesrussell/projectintel/internal/upstream"
)

const (
	fundingLimit     = 10
	fundingRepoProbe = 3
)

// fundingHosts are the databases whose profile pages count as funding
// signals.
var fundingHosts = []string{
	"crunchbase.com", "angel.co", "cbinsights.com", "tracxn.com", "dealroom.co",
}

var (
	fundingURLPattern    = regexp.MustCompile(`https?://[^\s]+`)
	fundingPlatformLine  = regexp.MustCompile(`(?m)^(github|open_collective|patreon|ko_fi|buy_me_a_coffee):\s*(.+)$`)
	fundingPlatformHomes = map[string]string{
		"github":          "https://github.com/sponsors/",
		"open_collective": "https://opencollective.com/",
		"patreon":         "https://patreon.com/",
		"ko_fi":           "https://ko-fi.com/",
		"buy_me_a_coffee": "https://buymeacoffee.com/",
	}
)

// FundingFinder discovers funding and investor pages: startup-database
// profiles via Tavily, plus sponsor links from FUNDING.yml in the
// project's top repositories.
type FundingFinder struct {
	tavily *upstream.TavilyClient
	github *upstream.GitHubClient
	log    logger.Logger
}

func NewFundingFinder(tavily *upstream.TavilyClient, github *upstream.GitHubClient, log logger.Logger) *FundingFinder {
	return &FundingFinder{
		tavily: tavily,
		github: github,
		log:    log,
	}
}

// Discover returns up to fundingLimit funding-related URLs. Failures are
// logged and reported as no results.
func (f *FundingFinder) Discover(ctx context.Context, project string) []string {
	urls := f.tavilyFundingSearch(ctx, project)
	urls = append(urls, f.repoSponsorLinks(ctx, project)...)

	urls = dedupe(urls)
	if len(urls) > fundingLimit {
		urls = urls[:fundingLimit]
	}

	f.log.Debug("Funding discovery complete",
		logger.String("project", project),
		logger.Int("candidates", len(urls)),
	)
	return urls
}

func (f *FundingFinder) tavilyFundingSearch(ctx context.Context, project string) []string {
	if !f.tavily.Enabled() {
		f.log.Warn("Funding search skipped, Tavily key not configured")
		return nil
	}

	query := `"` + project + `" site:crunchbase.com OR site:angel.co ` +
		`OR site:cbinsights.com OR site:tracxn.com OR site:dealroom.co`

	results, err := f.tavily.Search(ctx, query, 15)
	if err != nil {
		f.log.Warn("Funding search failed",
			logger.String("project", project),
			logger.Error(err),
		)
		return nil
	}

	var urls []string
	for _, r := range results {
		low := strings.ToLower(r.URL)
		for _, host := range fundingHosts {
			if strings.Contains(low, host) {
				urls = append(urls, r.URL)
				break
			}
		}
		if len(urls) >= fundingLimit {
			break
		}
	}
	return urls
}

// repoSponsorLinks checks FUNDING.yml in the project's top repositories.
// Rate safety: only the first few search hits are probed.
func (f *FundingFinder) repoSponsorLinks(ctx context.Context, project string) []string {
	if !f.github.Enabled() {
		return nil
	}

	repos, err := f.github.SearchRepos(ctx, project+" in:name", fundingRepoProbe)
	if err != nil {
		f.log.Debug("Funding repo search failed", logger.Error(err))
		return nil
	}

	var urls []string
	for i, repo := range repos {
		if i >= fundingRepoProbe {
			break
		}
		content, ok, err := f.github.FundingFile(ctx, repo.FullName)
		if err != nil {
			f.log.Debug("Funding file fetch failed",
				logger.String("repo", repo.FullName),
				logger.Error(err),
			)
			continue
		}
		if !ok {
			continue
		}
		urls = append(urls, parseFundingFile(content)...)
	}
	return urls
}

// parseFundingFile extracts sponsor URLs from FUNDING.yml content: literal
// URLs plus well-known platform handles mapped to their profile pages.
func parseFundingFile(content string) []string {
	urls := fundingURLPattern.FindAllString(content, -1)

	for _, m := range fundingPlatformLine.FindAllStringSubmatch(content, -1) {
		platform, handle := m[1], strings.TrimSpace(m[2])
		if home, ok := fundingPlatformHomes[platform]; ok && handle != "" {
			urls = append(urls, home+handle)
		}
	}

	var out []string
	for _, u := range urls {
		if strings.HasPrefix(u, "http") {
			out = append(out, strings.TrimSpace(u))
		}
	}
	return out
}

package discovery

import (
	"context"
	"net/http"
	"regexp"
	"sort"
	"strings"

	"github.com/jonesrussell/projectintel/internal/httpx"
	"github.com/jonesrussell/projectintel/internal/logger"
	"github.com/jonesrussell/projectintel/internal/upstream"
)

const (
	websiteLimit       = 6
	websiteSearchLimit = 25
	websiteProbeBudget = 10
	scoreDomainMatch   = 10
	scorePreferredTLD  = 3
	scoreSubdomainHint = 5
	scoreOfficialHint  = 5
	penaltyBadSource   = 20
)

// preferredTLDs are common for web and crypto project homepages.
var preferredTLDs = []string{
	".co", ".com", ".org", ".io", ".app", ".ai", ".net", ".xyz",
	".dev", ".tech", ".studio", ".systems", ".space", ".network",
	".cloud", ".tools", ".so", ".sh", ".gg", ".build",
	".eth", ".crypto", ".nft", ".dao", ".chain", ".sol", ".bnb",
}

// disallowedSources never host a project's own site.
var disallowedSources = []string{
	"bulbapedia", "pokemon", "tradingview", "deloitte", "linkedin", "medium",
	"wikipedia", "youtube", "reddit", "facebook", "bloomberg", "forbes",
}

// WebsiteFinder discovers official websites and docs via Tavily search,
// returning primary-domain matches and secondary "other" matches.
type WebsiteFinder struct {
	tavily     *upstream.TavilyClient
	headClient *http.Client
	log        logger.Logger
}

func NewWebsiteFinder(tavily *upstream.TavilyClient, log logger.Logger) *WebsiteFinder {
	return &WebsiteFinder{
		tavily:     tavily,
		headClient: httpx.NewClient(httpx.HeadTimeout),
		log:        log,
	}
}

// Discover returns primary-domain website URLs and secondary matches.
// Failures are logged and reported as no results.
func (f *WebsiteFinder) Discover(ctx context.Context, project string) (websites, others []string) {
	if !f.tavily.Enabled() {
		f.log.Warn("Website discovery skipped, Tavily key not configured")
		return nil, nil
	}

	query := `"` + project + `" official website OR homepage OR documentation ` +
		`-site:github.com -site:twitter.com -site:crunchbase.com -site:medium.com`

	results, err := f.tavily.Search(ctx, query, websiteSearchLimit)
	if err != nil {
		f.log.Warn("Website discovery failed",
			logger.String("project", project),
			logger.Error(err),
		)
		return nil, nil
	}

	ranked := f.rankByScore(project, results)
	validated := f.validate(ctx, ranked)

	if len(validated) > websiteLimit {
		validated = validated[:websiteLimit]
	}

	projectLower := strings.ToLower(project)
	for _, u := range validated {
		if strings.Contains(cleanDomain(u), projectLower) {
			websites = append(websites, u)
		} else {
			others = append(others, u)
		}
	}

	f.log.Debug("Website discovery complete",
		logger.String("project", project),
		logger.Int("websites", len(websites)),
		logger.Int("others", len(others)),
	)
	return websites, others
}

// rankByScore scores candidates and keeps one URL per domain, best first.
func (f *WebsiteFinder) rankByScore(project string, results []upstream.TavilyResult) []string {
	type scored struct {
		url   string
		score int
	}

	var candidates []scored
	for _, r := range results {
		if !strings.HasPrefix(r.URL, "http") {
			continue
		}
		candidates = append(candidates, scored{url: r.URL, score: scoreWebsiteURL(project, r.URL)})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	seen := make(map[string]struct{})
	var ranked []string
	for _, c := range candidates {
		dom := cleanDomain(c.url)
		if _, ok := seen[dom]; ok {
			continue
		}
		seen[dom] = struct{}{}
		ranked = append(ranked, c.url)
	}
	return ranked
}

// validate HEAD-probes the top candidates. If every probe fails while
// candidates exist, validation infrastructure itself is suspect and the
// scored-but-unvalidated list is returned instead of nothing.
func (f *WebsiteFinder) validate(ctx context.Context, ranked []string) []string {
	probes := ranked
	if len(probes) > websiteProbeBudget {
		probes = probes[:websiteProbeBudget]
	}

	var validated []string
	for _, u := range probes {
		if upstream.HeadOK(ctx, f.headClient, u) {
			validated = append(validated, u)
		}
	}

	if len(validated) == 0 && len(probes) > 0 {
		f.log.Warn("Website validation failed for every candidate, returning unvalidated set")
		return probes
	}
	return validated
}

var subdomainHint = regexp.MustCompile(`^(app|docs|portal)\.`)

// scoreWebsiteURL assigns a relevance score to a candidate URL.
func scoreWebsiteURL(project, rawURL string) int {
	low := strings.ToLower(rawURL)
	domain := cleanDomain(rawURL)
	projectLower := strings.ToLower(project)
	score := 0

	if strings.Contains(domain, projectLower) {
		score += scoreDomainMatch
	}

	for _, tld := range preferredTLDs {
		if strings.HasSuffix(domain, tld) {
			score += scorePreferredTLD
			break
		}
	}

	for _, bad := range disallowedSources {
		if strings.Contains(low, bad) {
			score -= penaltyBadSource
			break
		}
	}

	if subdomainHint.MatchString(domain) && strings.Contains(domain, projectLower) {
		score += scoreSubdomainHint
	}

	if strings.Contains(low, "official") {
		score += scoreOfficialHint
	}

	return score
}

package discovery

import (
	"context"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/jonesrussell/projectintel/internal/httpx"
	"github.com/jonesrussell/projectintel/internal/logger"
	"github.com/jonesrussell/projectintel/internal/upstream"
)

const socialLimit = 6

// SocialFinder discovers X/Twitter profile URLs for a project. It tries
// SerpAPI's X engine first (best structured results), then Tavily, then a
// SerpAPI google site: search, normalizing and probing candidates along
// the way.
type SocialFinder struct {
	serp       *upstream.SerpAPIClient
	tavily     *upstream.TavilyClient
	headClient *http.Client
	log        logger.Logger
}

func NewSocialFinder(serp *upstream.SerpAPIClient, tavily *upstream.TavilyClient, log logger.Logger) *SocialFinder {
	return &SocialFinder{
		serp:       serp,
		tavily:     tavily,
		headClient: httpx.NewClient(httpx.HeadTimeout),
		log:        log,
	}
}

// Discover returns up to socialLimit profile URLs, best-scored first.
// Failures are logged and reported as no results.
func (f *SocialFinder) Discover(ctx context.Context, project string) []string {
	var candidates []string

	if f.serp.Enabled() {
		candidates = append(candidates, f.serpXSearch(ctx, project)...)
	}

	if len(candidates) < socialLimit && f.tavily.Enabled() {
		candidates = append(candidates, f.tavilySearch(ctx, project)...)
	}

	if len(candidates) < socialLimit && f.serp.Enabled() {
		candidates = append(candidates, f.serpGoogleSearch(ctx, project)...)
	}

	var unique []string
	for _, c := range candidates {
		if norm := NormalizeProfileURL(c); norm != "" {
			unique = append(unique, norm)
		}
	}
	unique = dedupe(unique)

	// Cheap liveness probes; if every probe fails while candidates
	// exist, assume the probing itself is broken and keep the
	// unvalidated set.
	var validated []string
	for _, u := range unique {
		if upstream.HeadOK(ctx, f.headClient, u) {
			validated = append(validated, u)
		}
	}
	if len(validated) == 0 {
		validated = unique
	}

	sort.SliceStable(validated, func(i, j int) bool {
		return scoreProfileURL(project, validated[i]) > scoreProfileURL(project, validated[j])
	})

	if len(validated) > socialLimit {
		validated = validated[:socialLimit]
	}

	f.log.Debug("Social discovery complete",
		logger.String("project", project),
		logger.Int("candidates", len(validated)),
	)
	return validated
}

func (f *SocialFinder) serpXSearch(ctx context.Context, project string) []string {
	resp, err := f.serp.XSearch(ctx, project)
	if err != nil {
		f.log.Debug("SerpAPI X search failed", logger.Error(err))
		return nil
	}

	var urls []string
	if profile := resp.TwitterResults.Profile; profile != nil {
		urls = append(urls, firstNonEmpty(profile.ProfileURL, profile.Permalink, profile.Username))
	}
	for _, item := range append(resp.TwitterResults.Users, resp.TwitterResults.Data...) {
		urls = append(urls, firstNonEmpty(item.ProfileURL, item.Permalink, item.Username))
	}
	for _, item := range resp.OrganicResults {
		urls = append(urls, firstNonEmpty(item.Link, item.URL))
	}
	return urls
}

func (f *SocialFinder) tavilySearch(ctx context.Context, project string) []string {
	results, err := f.tavily.Search(ctx, project+" official X site:x.com", 12)
	if err != nil {
		f.log.Debug("Tavily social search failed", logger.Error(err))
		return nil
	}

	var urls []string
	for _, r := range results {
		urls = append(urls, r.URL)
	}
	return urls
}

func (f *SocialFinder) serpGoogleSearch(ctx context.Context, project string) []string {
	query := project + ` site:x.com "official" OR "official account"`
	results, err := f.serp.GoogleSearch(ctx, query, socialLimit)
	if err != nil {
		f.log.Debug("SerpAPI google social search failed", logger.Error(err))
		return nil
	}

	var urls []string
	for _, r := range results {
		urls = append(urls, firstNonEmpty(r.Link, r.URL))
	}
	return urls
}

// NormalizeProfileURL canonicalizes twitter/x URL shapes (profile URLs,
// bare handles, @handles) to https://x.com/<handle> or
// https://twitter.com/<handle>. Returns "" for inputs that are not a
// profile reference.
func NormalizeProfileURL(raw string) string {
	if raw == "" {
		return ""
	}
	raw = strings.TrimRight(strings.SplitN(raw, "?", 2)[0], "/")

	parsed, err := url.Parse(raw)
	if err == nil && parsed.Host != "" {
		host := strings.ToLower(parsed.Host)
		path := strings.Trim(parsed.Path, "/")
		if path == "" {
			return ""
		}
		if strings.Contains(host, "twitter.com") || strings.Contains(host, "x.com") {
			handle := strings.SplitN(path, "/", 2)[0]
			domain := "twitter.com"
			if strings.Contains(host, "x.com") {
				domain = "x.com"
			}
			return "https://" + domain + "/" + handle
		}
		return ""
	}

	if strings.HasPrefix(raw, "@") {
		return "https://twitter.com/" + strings.TrimPrefix(raw, "@")
	}

	if !strings.Contains(raw, "/") && !strings.Contains(raw, " ") && len(raw) <= 50 {
		return "https://twitter.com/" + raw
	}
	return ""
}

// scoreProfileURL rates the likelihood that a profile URL belongs to the
// project.
func scoreProfileURL(project, rawURL string) int {
	u := strings.ToLower(rawURL)
	projectLower := strings.ToLower(project)
	score := 0

	if strings.Contains(u, "/"+projectLower) {
		score += 10
	}
	if strings.HasSuffix(u, "/"+projectLower) {
		score += 10
	}
	if strings.Contains(u, "official") {
		score += 5
	}
	for _, k := range []string{"support", "team", "labs", "protocol"} {
		if strings.Contains(u, k) {
			score += 3
			break
		}
	}
	return score
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

package stats

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jonesrussell/projectintel/internal/cache"
	"github.com/jonesrussell/projectintel/internal/governor"
	"github.com/jonesrussell/projectintel/internal/logger"
	"github.com/jonesrussell/projectintel/internal/upstream"
)

const (
	socialCachePrefix = "twitter:"
	socialGovernorKey = "twitter_stats:"
)

// ProfileStats holds the metrics for one social profile.
type ProfileStats struct {
	Handle      string `json:"handle"`
	URL         string `json:"url"`
	Followers   int    `json:"followers"`
	Following   int    `json:"following"`
	Tweets      int    `json:"tweets"`
	Verified    bool   `json:"verified"`
	Description string `json:"description,omitempty"`
	Source      string `json:"source"`
}

// SocialAggregator collects profile metrics for discovered twitter/x URLs.
// The official API is preferred; search engines fill in when it is
// unavailable or rate limited.
type SocialAggregator struct {
	twitter *upstream.TwitterClient
	tavily  *upstream.TavilyClient
	serpapi *upstream.SerpAPIClient
	ddg     *upstream.DuckDuckGoClient
	store   *cache.Store
	gov     *governor.Governor
	ttl     time.Duration
	log     logger.Logger
}

func NewSocialAggregator(
	twitter *upstream.TwitterClient,
	tavily *upstream.TavilyClient,
	serpapi *upstream.SerpAPIClient,
	ddg *upstream.DuckDuckGoClient,
	store *cache.Store,
	gov *governor.Governor,
	ttl time.Duration,
	log logger.Logger,
) *SocialAggregator {
	return &SocialAggregator{
		twitter: twitter,
		tavily:  tavily,
		serpapi: serpapi,
		ddg:     ddg,
		store:   store,
		gov:     gov,
		ttl:     ttl,
		log:     log,
	}
}

// Collect gathers stats for each profile URL in order. Profiles that fail
// every lookup are skipped.
func (a *SocialAggregator) Collect(ctx context.Context, profileURLs []string) ([]ProfileStats, error) {
	handles := extractHandles(profileURLs)
	if len(handles) == 0 {
		return nil, ErrNoCandidates
	}

	var out []ProfileStats
	for _, handle := range handles {
		ps, ok := a.profileStats(ctx, handle)
		if ok {
			out = append(out, ps)
		}
	}
	if len(out) == 0 {
		return nil, ErrNoCandidates
	}
	return out, nil
}

// profileStats resolves one handle: cache, then the API, then search
// fallbacks. Attempts against the API are governed so a dead credential
// does not hammer the endpoint on every request.
func (a *SocialAggregator) profileStats(ctx context.Context, handle string) (ProfileStats, bool) {
	cacheKey := socialCachePrefix + strings.ToLower(handle)

	var cached ProfileStats
	if a.store.GetJSON(ctx, cacheKey, &cached) && cached.Handle != "" {
		return cached, true
	}

	govKey := socialGovernorKey + handle
	if a.twitter.Enabled() && a.gov.ShouldFetch(ctx, govKey) {
		user, err := a.twitter.UserByUsername(ctx, handle)
		if err == nil {
			a.gov.RecordSuccess(ctx, govKey)
			ps := ProfileStats{
				Handle:      user.Username,
				URL:         "https://x.com/" + user.Username,
				Followers:   user.PublicMetrics.Followers,
				Following:   user.PublicMetrics.Following,
				Tweets:      user.PublicMetrics.Tweets,
				Verified:    user.Verified,
				Description: user.Description,
				Source:      "api",
			}
			a.store.Set(ctx, cacheKey, ps, a.ttl)
			return ps, true
		}
		a.gov.RecordFailure(ctx, govKey)
		a.log.Warn("Twitter API lookup failed, falling back to search",
			logger.String("handle", handle),
			logger.Error(err),
		)
	}

	ps, ok := a.searchStats(ctx, handle)
	if ok {
		a.store.Set(ctx, cacheKey, ps, a.ttl)
	}
	return ps, ok
}

// searchStats mines follower counts out of search snippets: Tavily first,
// then SerpAPI, then DuckDuckGo result text.
func (a *SocialAggregator) searchStats(ctx context.Context, handle string) (ProfileStats, bool) {
	query := `"` + handle + `" twitter OR x.com followers`

	if a.tavily.Enabled() {
		results, err := a.tavily.Search(ctx, query, 5)
		if err != nil {
			a.log.Debug("Tavily social search failed", logger.Error(err))
		} else if ps, ok := statsFromSnippets(handle, tavilySnippets(results)); ok {
			return ps, true
		}
	}

	if a.serpapi.Enabled() {
		results, err := a.serpapi.GoogleSearch(ctx, query, 5)
		if err != nil {
			a.log.Debug("SerpAPI social search failed", logger.Error(err))
		} else if ps, ok := statsFromSnippets(handle, serpSnippets(results)); ok {
			return ps, true
		}
	}

	snippets, err := a.ddg.SearchSnippets(ctx, query)
	if err != nil {
		a.log.Debug("DuckDuckGo social search failed", logger.Error(err))
	} else if ps, ok := statsFromSnippets(handle, snippets); ok {
		return ps, true
	}

	return ProfileStats{}, false
}

func tavilySnippets(results []upstream.TavilyResult) []string {
	var out []string
	for _, r := range results {
		out = append(out, r.Title, r.Content)
	}
	return out
}

func serpSnippets(results []upstream.SerpResult) []string {
	var out []string
	for _, r := range results {
		out = append(out, r.Title, r.Snippet)
	}
	return out
}

var (
	followersPattern = regexp.MustCompile(`(?i)([\d.,]+[KMB]?)\s+Followers`)
	tweetsPattern    = regexp.MustCompile(`(?i)([\d.,]+[KMB]?)\s+(?:Tweets|Posts)`)
)

// statsFromSnippets scans search snippets for follower and tweet counts
// and keeps the largest value seen for each.
func statsFromSnippets(handle string, snippets []string) (ProfileStats, bool) {
	ps := ProfileStats{
		Handle: handle,
		URL:    "https://x.com/" + handle,
		Source: "search",
	}
	found := false

	for _, s := range snippets {
		if m := followersPattern.FindStringSubmatch(s); m != nil {
			if n, ok := parseMetric(m[1]); ok && n > ps.Followers {
				ps.Followers = n
				found = true
			}
		}
		if m := tweetsPattern.FindStringSubmatch(s); m != nil {
			if n, ok := parseMetric(m[1]); ok && n > ps.Tweets {
				ps.Tweets = n
				found = true
			}
		}
	}
	return ps, found
}

// parseMetric converts display counts like "182.2K" or "1,234" to an
// integer.
func parseMetric(raw string) (int, bool) {
	raw = strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
	if raw == "" {
		return 0, false
	}

	mult := 1.0
	switch raw[len(raw)-1] {
	case 'K', 'k':
		mult = 1e3
		raw = raw[:len(raw)-1]
	case 'M', 'm':
		mult = 1e6
		raw = raw[:len(raw)-1]
	case 'B', 'b':
		mult = 1e9
		raw = raw[:len(raw)-1]
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return int(v * mult), true
}

var handlePattern = regexp.MustCompile(`(?:x|twitter)\.com/([A-Za-z0-9_-]+)`)

// extractHandles pulls unique handles out of profile URLs, preserving
// order.
func extractHandles(profileURLs []string) []string {
	seen := make(map[string]struct{})
	var handles []string
	for _, u := range profileURLs {
		m := handlePattern.FindStringSubmatch(u)
		if m == nil {
			continue
		}
		key := strings.ToLower(m[1])
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		handles = append(handles, m[1])
	}
	return handles
}

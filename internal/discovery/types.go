// Package discovery finds candidate URLs for a project across independent
// sources (code hosting, web search, social, funding databases), merges
// them, and cross-refines the merged set.
package discovery

// Result holds the discovered candidate URLs per signal category. Each
// category is an ordered set: no duplicates, first-seen order preserved.
type Result struct {
	Websites []string `json:"websites"`
	GitHubs  []string `json:"githubs"`
	Fundings []string `json:"fundings"`
	Twitters []string `json:"twitters"`
	Others   []string `json:"others"`
}

// Empty reports whether no category produced any candidate.
func (r Result) Empty() bool {
	return len(r.Websites) == 0 &&
		len(r.GitHubs) == 0 &&
		len(r.Fundings) == 0 &&
		len(r.Twitters) == 0 &&
		len(r.Others) == 0
}

// dedupe returns urls with exact-match duplicates removed, preserving
// first-seen order.
func dedupe(urls []string) []string {
	if len(urls) == 0 {
		return urls
	}
	seen := make(map[string]struct{}, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}

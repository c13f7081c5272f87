package discovery

import (
	"net/url"
	"regexp"
	"strings"
)

// genericSegments are domain segments that identify nothing by themselves
// and never become trusted tokens.
var genericSegments = map[string]struct{}{
	"com": {}, "org": {}, "net": {}, "app": {}, "xyz": {},
	"dev": {}, "tech": {}, "studio": {}, "systems": {}, "space": {},
	"network": {}, "cloud": {}, "tools": {}, "build": {},
	"eth": {}, "crypto": {}, "nft": {}, "dao": {}, "chain": {},
	"sol": {}, "bnb": {}, "www": {},
}

var handlePattern = regexp.MustCompile(`(?:x|twitter)\.com/([A-Za-z0-9_-]+)`)

const minTokenLen = 3

// Refine cross-correlates the merged discovery result and drops URLs that
// do not align with any trusted identifier. Repository URLs are never
// filtered: they are the most authoritative signal and seed the token set.
// With no tokens derivable at all, every other category collapses to empty;
// that trade-off favors precision over recall.
func Refine(r Result) Result {
	tokens := trustedTokens(r)

	r.Twitters = filterByTokens(r.Twitters, tokens)
	r.Fundings = filterByTokens(r.Fundings, tokens)
	r.Websites = filterByTokens(r.Websites, tokens)
	r.Others = filterByTokens(r.Others, tokens)

	r.Websites = dedupe(r.Websites)
	r.GitHubs = dedupe(r.GitHubs)
	r.Fundings = dedupe(r.Fundings)
	r.Twitters = dedupe(r.Twitters)
	r.Others = dedupe(r.Others)

	return r
}

// trustedTokens collects identifiers from website domains, repository orgs,
// and social handles, then extends them with alias variants.
func trustedTokens(r Result) map[string]struct{} {
	tokens := make(map[string]struct{})

	for _, site := range append(append([]string{}, r.Websites...), r.Others...) {
		dom := cleanDomain(site)
		if dom == "" {
			continue
		}
		for _, part := range strings.Split(dom, ".") {
			if len(part) < minTokenLen {
				continue
			}
			if _, generic := genericSegments[part]; generic {
				continue
			}
			tokens[part] = struct{}{}
		}
	}

	for _, gh := range r.GitHubs {
		parts := strings.Split(gh, "/")
		if len(parts) >= 5 {
			org := strings.ToLower(parts[3])
			if len(org) >= minTokenLen {
				tokens[org] = struct{}{}
			}
		}
	}

	for _, tw := range r.Twitters {
		m := handlePattern.FindStringSubmatch(tw)
		if m == nil {
			continue
		}
		handle := strings.ToLower(m[1])
		if len(handle) >= minTokenLen {
			tokens[handle] = struct{}{}
		}
	}

	// Alias variants: projects are frequently referenced through a
	// parent-brand name, e.g. org "ourzora" for project "zora".
	extended := make(map[string]struct{}, len(tokens))
	for tok := range tokens {
		extended[tok] = struct{}{}
		switch {
		case strings.HasPrefix(tok, "our") && len(tok) > 4:
			extended[tok[3:]] = struct{}{}
		case strings.HasSuffix(tok, "labs"):
			if v := strings.TrimRight(strings.TrimSuffix(tok, "labs"), "-_"); v != "" {
				extended[v] = struct{}{}
			}
		case strings.HasSuffix(tok, "protocol"):
			if v := strings.TrimRight(strings.TrimSuffix(tok, "protocol"), "-_"); v != "" {
				extended[v] = struct{}{}
			}
		}
	}

	return extended
}

// filterByTokens keeps only URLs whose lowercased form contains at least
// one trusted token.
func filterByTokens(urls []string, tokens map[string]struct{}) []string {
	if len(urls) == 0 {
		return urls
	}
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		low := strings.ToLower(u)
		for tok := range tokens {
			if strings.Contains(low, tok) {
				out = append(out, u)
				break
			}
		}
	}
	return out
}

// cleanDomain extracts the lowercased host of a URL, without the www
// prefix or port.
func cleanDomain(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	d := strings.ToLower(parsed.Hostname())
	return strings.TrimPrefix(d, "www.")
}

package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonesrussell/projectintel/internal/upstream"
)

func TestNormalizeProfileURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"x profile", "https://x.com/zora", "https://x.com/zora"},
		{"twitter profile", "https://twitter.com/zora", "https://twitter.com/zora"},
		{"mobile twitter", "https://mobile.twitter.com/zora", "https://twitter.com/zora"},
		{"trailing slash", "https://x.com/zora/", "https://x.com/zora"},
		{"query string", "https://x.com/zora?ref=home", "https://x.com/zora"},
		{"nested path keeps handle", "https://x.com/zora/status/123", "https://x.com/zora"},
		{"at handle", "@zora", "https://twitter.com/zora"},
		{"bare handle", "zora", "https://twitter.com/zora"},
		{"unrelated host", "https://example.com/zora", ""},
		{"empty", "", ""},
		{"host only", "https://x.com/", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeProfileURL(tt.in))
		})
	}
}

func TestScoreWebsiteURL(t *testing.T) {
	direct := scoreWebsiteURL("zora", "https://zora.co")
	unrelated := scoreWebsiteURL("zora", "https://example.org/article")
	blocked := scoreWebsiteURL("zora", "https://en.wikipedia.org/wiki/Zora")

	assert.Greater(t, direct, unrelated)
	assert.Greater(t, unrelated, blocked)
}

func TestScoreWebsiteURL_SubdomainBoost(t *testing.T) {
	docs := scoreWebsiteURL("zora", "https://docs.zora.co")
	plain := scoreWebsiteURL("zora", "https://zora.co")

	// Both match the domain; the docs subdomain earns the extra hint.
	assert.Greater(t, docs, plain)
}

func TestScoreProfileURL(t *testing.T) {
	exact := scoreProfileURL("zora", "https://x.com/zora")
	partial := scoreProfileURL("zora", "https://x.com/zoralabs")
	unrelated := scoreProfileURL("zora", "https://x.com/someoneelse")

	assert.Greater(t, exact, partial)
	assert.Greater(t, partial, unrelated)
}

func TestRepoMatchesProject(t *testing.T) {
	repo := func(owner, name, desc string, topics ...string) upstream.SearchRepo {
		var r upstream.SearchRepo
		r.Owner.Login = owner
		r.Name = name
		r.Description = desc
		r.Topics = topics
		return r
	}

	tests := []struct {
		name string
		repo upstream.SearchRepo
		want bool
	}{
		{"owner exact", repo("zora", "sdk", ""), true},
		{"owner contains", repo("ourzora", "sdk", ""), true},
		{"name exact", repo("someone", "zora", ""), true},
		{"name prefix", repo("someone", "zora-contracts", ""), true},
		{"topic match", repo("someone", "nft-kit", "", "zora"), true},
		{"description match", repo("someone", "toolkit", "sdk for the Zora protocol"), true},
		{"no match", repo("someone", "unrelated", "a web framework"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, repoMatchesProject(tt.repo, "zora"))
		})
	}
}

func TestParseFundingFile(t *testing.T) {
	content := `github: ourzora
open_collective: zora
custom: https://zora.co/donate
`
	urls := parseFundingFile(content)

	assert.Contains(t, urls, "https://github.com/sponsors/ourzora")
	assert.Contains(t, urls, "https://opencollective.com/zora")
	assert.Contains(t, urls, "https://zora.co/donate")
}

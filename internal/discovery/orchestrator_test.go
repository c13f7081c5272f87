package discovery

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jonesrussell/projectintel/internal/logger"
)

type fakeFinder struct {
	urls  []string
	delay time.Duration
}

func (f fakeFinder) Discover(ctx context.Context, project string) []string {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.urls
}

type fakeSiteFinder struct {
	websites []string
	others   []string
}

func (f fakeSiteFinder) Discover(ctx context.Context, project string) ([]string, []string) {
	return f.websites, f.others
}

func newFakeOrchestrator(repos, fundings, twitters fakeFinder, sites fakeSiteFinder) *Orchestrator {
	return NewOrchestrator(repos, fundings, sites, twitters, logger.NewNopLogger())
}

func TestOrchestrator_MergeIsIdempotent(t *testing.T) {
	o := newFakeOrchestrator(
		fakeFinder{urls: []string{"https://github.com/ourzora/zora", "https://github.com/ourzora/zdk"}},
		fakeFinder{urls: []string{"https://crunchbase.com/organization/zora-labs"}},
		fakeFinder{urls: []string{"https://x.com/zora"}, delay: 10 * time.Millisecond},
		fakeSiteFinder{websites: []string{"https://zora.co"}, others: []string{"https://docs.zora.co"}},
	)

	first := o.Discover(context.Background(), "zora")
	second := o.Discover(context.Background(), "zora")

	assert.Equal(t, first, second)
}

func TestOrchestrator_DeterministicDespiteCompletionOrder(t *testing.T) {
	// The slow backend finishes last but its category position is fixed.
	slow := newFakeOrchestrator(
		fakeFinder{urls: []string{"https://github.com/ourzora/zora"}, delay: 20 * time.Millisecond},
		fakeFinder{urls: []string{"https://crunchbase.com/organization/zora-labs"}},
		fakeFinder{urls: []string{"https://x.com/zora"}},
		fakeSiteFinder{websites: []string{"https://zora.co"}},
	)
	fast := newFakeOrchestrator(
		fakeFinder{urls: []string{"https://github.com/ourzora/zora"}},
		fakeFinder{urls: []string{"https://crunchbase.com/organization/zora-labs"}},
		fakeFinder{urls: []string{"https://x.com/zora"}},
		fakeSiteFinder{websites: []string{"https://zora.co"}},
	)

	assert.Equal(t,
		slow.Discover(context.Background(), "zora"),
		fast.Discover(context.Background(), "zora"),
	)
}

func TestOrchestrator_DeduplicatesWithinCategory(t *testing.T) {
	o := newFakeOrchestrator(
		fakeFinder{urls: []string{
			"https://github.com/ourzora/zora",
			"https://github.com/ourzora/zora",
			"https://github.com/ourzora/zdk",
		}},
		fakeFinder{},
		fakeFinder{},
		fakeSiteFinder{},
	)

	result := o.Discover(context.Background(), "zora")

	assert.Equal(t, []string{
		"https://github.com/ourzora/zora",
		"https://github.com/ourzora/zdk",
	}, result.GitHubs)

	for _, urls := range [][]string{result.Websites, result.GitHubs, result.Fundings, result.Twitters, result.Others} {
		seen := map[string]int{}
		for _, u := range urls {
			seen[u]++
			assert.Equal(t, 1, seen[u], "duplicate URL %s", u)
		}
	}
}

func TestOrchestrator_EmptyBackendContributesEmptyCategory(t *testing.T) {
	o := newFakeOrchestrator(
		fakeFinder{urls: []string{"https://github.com/ourzora/zora"}},
		fakeFinder{}, // backend suppressed its own failure
		fakeFinder{urls: []string{"https://x.com/zora"}},
		fakeSiteFinder{websites: []string{"https://zora.co"}},
	)

	result := o.Discover(context.Background(), "zora")

	assert.Empty(t, result.Fundings)
	assert.NotEmpty(t, result.GitHubs)
	assert.NotEmpty(t, result.Twitters)
}

func TestResult_Empty(t *testing.T) {
	assert.True(t, Result{}.Empty())
	assert.False(t, Result{GitHubs: []string{"https://github.com/a/b"}}.Empty())
}

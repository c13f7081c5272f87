package intel

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/projectintel/internal/aggregate"
	"github.com/jonesrussell/projectintel/internal/cache"
	"github.com/jonesrussell/projectintel/internal/discovery"
	"github.com/jonesrussell/projectintel/internal/logger"
	"github.com/jonesrussell/projectintel/internal/scoring"
	"github.com/jonesrussell/projectintel/internal/stats"
)

type fakeDiscoverer struct {
	result discovery.Result
	calls  int
}

func (f *fakeDiscoverer) Discover(context.Context, string) discovery.Result {
	f.calls++
	return f.result
}

type fakeAggregator struct {
	outcome aggregate.Outcome
}

func (f *fakeAggregator) Aggregate(context.Context, string, discovery.Result) aggregate.Outcome {
	return f.outcome
}

type fakeInsights struct {
	text string
}

func (f *fakeInsights) Generate(context.Context, string, aggregate.Outcome, scoring.Activity) string {
	return f.text
}

func newService(d *fakeDiscoverer) *Service {
	return NewService(
		d,
		&fakeAggregator{outcome: aggregate.Outcome{
			GitHub: &stats.GitHubStats{TotalStars: 420, TotalCommits: 1000},
		}},
		&fakeInsights{text: "## Overview\nActive."},
		cache.New(nil, logger.NewNopLogger()),
		time.Hour,
		logger.NewNopLogger(),
	)
}

func discoveredFixture() discovery.Result {
	return discovery.Result{
		GitHubs: []string{"https://github.com/ourzora/zora-protocol"},
	}
}

func TestService_Analyze(t *testing.T) {
	d := &fakeDiscoverer{result: discoveredFixture()}
	svc := newService(d)

	report, err := svc.Analyze(context.Background(), "zora")
	require.NoError(t, err)

	assert.Equal(t, "zora", report.Project)
	assert.Equal(t, discoveredFixture(), report.Discovered)
	assert.Equal(t, 420, report.Stats.GitHub.TotalStars)
	assert.Greater(t, report.Activity.GitHubScore, 0.0)
	assert.Equal(t, "## Overview\nActive.", report.Insight)
	assert.False(t, report.GeneratedAt.IsZero())
}

func TestService_AnalyzeCachedAcrossCase(t *testing.T) {
	d := &fakeDiscoverer{result: discoveredFixture()}
	svc := newService(d)

	first, err := svc.Analyze(context.Background(), "Zora")
	require.NoError(t, err)

	second, err := svc.Analyze(context.Background(), "ZORA")
	require.NoError(t, err)

	assert.Equal(t, 1, d.calls, "pipeline ran again despite cached report")
	assert.Equal(t, first.Project, second.Project)
	assert.Equal(t, first.Insight, second.Insight)
}

func TestService_AnalyzeNoDiscovery(t *testing.T) {
	d := &fakeDiscoverer{result: discovery.Result{}}
	svc := newService(d)

	_, err := svc.Analyze(context.Background(), "ghostproject")
	assert.ErrorIs(t, err, ErrNoDiscovery)

	// A terminal miss is not cached; the next request tries again.
	_, err = svc.Analyze(context.Background(), "ghostproject")
	assert.ErrorIs(t, err, ErrNoDiscovery)
	assert.Equal(t, 2, d.calls)
}

func TestService_AnalyzeEmptyProject(t *testing.T) {
	svc := newService(&fakeDiscoverer{})

	_, err := svc.Analyze(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyProject)
}

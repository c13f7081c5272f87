package aggregate

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/projectintel/internal/discovery"
	"github.com/jonesrussell/projectintel/internal/logger"
	"github.com/jonesrussell/projectintel/internal/stats"
)

type fakeRepoCollector struct {
	result *stats.GitHubStats
	err    error
}

func (f *fakeRepoCollector) Collect(context.Context, []string) (*stats.GitHubStats, error) {
	return f.result, f.err
}

type fakeSocialCollector struct {
	result []stats.ProfileStats
	err    error
	panics bool
}

func (f *fakeSocialCollector) Collect(context.Context, []string) ([]stats.ProfileStats, error) {
	if f.panics {
		panic("social collector exploded")
	}
	return f.result, f.err
}

type fakeFundingCollector struct {
	result *stats.FundingStats
	err    error
}

func (f *fakeFundingCollector) Collect(context.Context, string, []string) (*stats.FundingStats, error) {
	return f.result, f.err
}

func discoveredFixture() discovery.Result {
	return discovery.Result{
		GitHubs:  []string{"https://github.com/ourzora/zora-protocol"},
		Twitters: []string{"https://x.com/zora"},
		Fundings: []string{"https://www.crunchbase.com/organization/zora"},
	}
}

func TestCoordinator_AllCategoriesPopulate(t *testing.T) {
	c := NewCoordinator(
		&fakeRepoCollector{result: &stats.GitHubStats{TotalStars: 420}},
		&fakeSocialCollector{result: []stats.ProfileStats{{Handle: "zora", Followers: 182200}}},
		&fakeFundingCollector{result: &stats.FundingStats{Project: "zora"}},
		logger.NewNopLogger(),
	)

	out := c.Aggregate(context.Background(), "zora", discoveredFixture())

	require.NotNil(t, out.GitHub)
	assert.Equal(t, 420, out.GitHub.TotalStars)
	require.Len(t, out.Social, 1)
	require.NotNil(t, out.Funding)
}

func TestCoordinator_FailingSocialLeavesOthersIntact(t *testing.T) {
	c := NewCoordinator(
		&fakeRepoCollector{result: &stats.GitHubStats{TotalStars: 420}},
		&fakeSocialCollector{err: errors.New("rate limited")},
		&fakeFundingCollector{result: &stats.FundingStats{Project: "zora"}},
		logger.NewNopLogger(),
	)

	out := c.Aggregate(context.Background(), "zora", discoveredFixture())

	require.NotNil(t, out.GitHub)
	require.NotNil(t, out.Funding)
	assert.Nil(t, out.Social)
}

func TestCoordinator_PanickingCollectorIsIsolated(t *testing.T) {
	c := NewCoordinator(
		&fakeRepoCollector{result: &stats.GitHubStats{TotalStars: 420}},
		&fakeSocialCollector{panics: true},
		&fakeFundingCollector{result: &stats.FundingStats{Project: "zora"}},
		logger.NewNopLogger(),
	)

	out := c.Aggregate(context.Background(), "zora", discoveredFixture())

	require.NotNil(t, out.GitHub)
	require.NotNil(t, out.Funding)
	assert.Nil(t, out.Social)
}

func TestCoordinator_EmptyCategoriesSkipped(t *testing.T) {
	repoCalled := false
	c := NewCoordinator(
		&countingRepoCollector{called: &repoCalled},
		&fakeSocialCollector{},
		&fakeFundingCollector{result: &stats.FundingStats{Project: "zora"}},
		logger.NewNopLogger(),
	)

	out := c.Aggregate(context.Background(), "zora", discovery.Result{})

	assert.False(t, repoCalled, "repo collector invoked with no repo URLs")
	assert.Nil(t, out.GitHub)
	assert.Nil(t, out.Social)
	// Funding runs on the project name alone.
	require.NotNil(t, out.Funding)
}

type countingRepoCollector struct {
	called *bool
}

func (c *countingRepoCollector) Collect(context.Context, []string) (*stats.GitHubStats, error) {
	*c.called = true
	return &stats.GitHubStats{}, nil
}

func TestOutcome_NullCategoriesInJSON(t *testing.T) {
	out := Outcome{GitHub: &stats.GitHubStats{TotalStars: 1}}

	raw, err := json.Marshal(out)
	require.NoError(t, err)

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, "null", string(doc["social"]))
	assert.Equal(t, "null", string(doc["funding"]))
	assert.NotEqual(t, "null", string(doc["github"]))
}

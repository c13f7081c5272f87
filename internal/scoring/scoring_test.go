package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonesrussell/projectintel/internal/stats"
)

func TestCompute_ActiveProject(t *testing.T) {
	github := &stats.GitHubStats{
		TotalCommits:  2000,
		TotalStars:    4000,
		RecentCommits: 15,
	}
	social := []stats.ProfileStats{
		{Handle: "zora", Followers: 10000, Tweets: 5000},
		{Handle: "zoradevs", Followers: 2000, Tweets: 1000},
	}

	got := Compute(github, social)

	// 2000/100 + 4000/200 + min(20, 15*2) = 20 + 20 + 20
	assert.InDelta(t, 60.0, got.GitHubScore, 0.01)
	// 10000/200 + min(20, 3000/1000) = 50 + 3
	assert.InDelta(t, 53.0, got.SocialScore, 0.01)
	// 0.6*60 + 0.4*53
	assert.InDelta(t, 57.2, got.CommunityScore, 0.01)
	assert.InDelta(t, 56.7, got.OverallScore, 0.1)
}

func TestCompute_ScoresAreCapped(t *testing.T) {
	github := &stats.GitHubStats{
		TotalCommits:  1_000_000,
		TotalStars:    1_000_000,
		RecentCommits: 500,
	}
	social := []stats.ProfileStats{
		{Handle: "huge", Followers: 50_000_000, Tweets: 1_000_000},
	}

	got := Compute(github, social)

	assert.Equal(t, 100.0, got.GitHubScore)
	assert.Equal(t, 100.0, got.SocialScore)
	assert.Equal(t, 100.0, got.CommunityScore)
	assert.Equal(t, 100.0, got.OverallScore)
}

func TestCompute_MissingCategoriesScoreZero(t *testing.T) {
	got := Compute(nil, nil)

	assert.Equal(t, 0.0, got.GitHubScore)
	assert.Equal(t, 0.0, got.SocialScore)
	assert.Equal(t, 0.0, got.CommunityScore)
	assert.Equal(t, 0.0, got.OverallScore)
}

func TestCompute_GitHubOnly(t *testing.T) {
	github := &stats.GitHubStats{TotalCommits: 1000, TotalStars: 2000, RecentCommits: 5}

	got := Compute(github, nil)

	// 10 + 10 + 10
	assert.InDelta(t, 30.0, got.GitHubScore, 0.01)
	assert.Equal(t, 0.0, got.SocialScore)
	// 0.6 * 30
	assert.InDelta(t, 18.0, got.CommunityScore, 0.01)
	assert.InDelta(t, 16.0, got.OverallScore, 0.01)
}

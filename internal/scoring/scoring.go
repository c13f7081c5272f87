// Package scoring converts raw category stats into bounded activity
// scores on a 0-100 scale.
package scoring

import (
	"math"

	"github.com/jonesrussell/projectintel/internal/stats"
)

const (
	maxScore          = 100
	maxRecencyBonus   = 20
	maxTweetBonus     = 20
	commitsPerPoint   = 100
	starsPerPoint     = 200
	followersPerPoint = 200
	tweetsPerPoint    = 1000
)

// Activity holds the derived activity scores for a project.
type Activity struct {
	GitHubScore    float64 `json:"github_score"`
	SocialScore    float64 `json:"social_score"`
	CommunityScore float64 `json:"community_score"`
	OverallScore   float64 `json:"overall_score"`
}

// Compute derives activity scores from the aggregated stats. Missing
// categories score zero, they never block the remaining scores.
func Compute(github *stats.GitHubStats, social []stats.ProfileStats) Activity {
	gh := githubScore(github)
	so := socialScore(social)
	community := 0.6*gh + 0.4*so

	return Activity{
		GitHubScore:    round1(gh),
		SocialScore:    round1(so),
		CommunityScore: round1(community),
		OverallScore:   round1((gh + so + community) / 3),
	}
}

// githubScore rewards commit volume and stars, with a bonus for commits in
// the last 30 days.
func githubScore(github *stats.GitHubStats) float64 {
	if github == nil {
		return 0
	}

	recency := math.Min(maxRecencyBonus, float64(github.RecentCommits)*2)
	score := float64(github.TotalCommits)/commitsPerPoint +
		float64(github.TotalStars)/starsPerPoint +
		recency
	return math.Min(maxScore, score)
}

// socialScore scores the strongest profile's reach plus a posting-volume
// bonus averaged across profiles.
func socialScore(social []stats.ProfileStats) float64 {
	if len(social) == 0 {
		return 0
	}

	maxFollowers := 0
	totalTweets := 0
	for _, p := range social {
		if p.Followers > maxFollowers {
			maxFollowers = p.Followers
		}
		totalTweets += p.Tweets
	}
	avgTweets := float64(totalTweets) / float64(len(social))

	tweetBonus := math.Min(maxTweetBonus, avgTweets/tweetsPerPoint)
	score := float64(maxFollowers)/followersPerPoint + tweetBonus
	return math.Min(maxScore, score)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

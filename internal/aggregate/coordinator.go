// Package aggregate joins the per-category stats collectors into one
// result. Categories run concurrently and are isolated from each other: a
// failing or panicking collector yields a null category, never a failed
// aggregation.
package aggregate

import (
	"context"
	"sync"

	"github.com/jonesrussell/projectintel/internal/discovery"
	"github.com/jonesrussell/projectintel/internal/logger"
	"github.com/jonesrussell/projectintel/internal/stats"
)

// RepoStatsCollector produces repository metrics for discovered repo URLs.
type RepoStatsCollector interface {
	Collect(ctx context.Context, repoURLs []string) (*stats.GitHubStats, error)
}

// SocialStatsCollector produces profile metrics for discovered profile
// URLs.
type SocialStatsCollector interface {
	Collect(ctx context.Context, profileURLs []string) ([]stats.ProfileStats, error)
}

// FundingStatsCollector produces funding signals for a project.
type FundingStatsCollector interface {
	Collect(ctx context.Context, project string, fundingURLs []string) (*stats.FundingStats, error)
}

// Outcome is the joined aggregation result. A category that produced
// nothing is null in the JSON form, not omitted.
type Outcome struct {
	GitHub  *stats.GitHubStats   `json:"github"`
	Social  []stats.ProfileStats `json:"social"`
	Funding *stats.FundingStats  `json:"funding"`
}

// Coordinator fans aggregation out across the category collectors.
type Coordinator struct {
	repos    RepoStatsCollector
	socials  SocialStatsCollector
	fundings FundingStatsCollector
	log      logger.Logger
}

func NewCoordinator(repos RepoStatsCollector, socials SocialStatsCollector, fundings FundingStatsCollector, log logger.Logger) *Coordinator {
	return &Coordinator{
		repos:    repos,
		socials:  socials,
		fundings: fundings,
		log:      log,
	}
}

// Aggregate runs every category with input and joins the results. It
// returns once all categories have finished; it never returns an error
// because category failures are recorded as null categories.
func (c *Coordinator) Aggregate(ctx context.Context, project string, d discovery.Result) Outcome {
	var (
		wg  sync.WaitGroup
		out Outcome
	)

	if len(d.GitHubs) > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer c.recoverCategory("github")
			got, err := c.repos.Collect(ctx, d.GitHubs)
			if err != nil {
				c.log.Warn("GitHub aggregation failed",
					logger.String("project", project),
					logger.Error(err),
				)
				return
			}
			out.GitHub = got
		}()
	}

	if len(d.Twitters) > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer c.recoverCategory("social")
			got, err := c.socials.Collect(ctx, d.Twitters)
			if err != nil {
				c.log.Warn("Social aggregation failed",
					logger.String("project", project),
					logger.Error(err),
				)
				return
			}
			out.Social = got
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer c.recoverCategory("funding")
		got, err := c.fundings.Collect(ctx, project, d.Fundings)
		if err != nil {
			c.log.Warn("Funding aggregation failed",
				logger.String("project", project),
				logger.Error(err),
			)
			return
		}
		out.Funding = got
	}()

	wg.Wait()
	return out
}

// recoverCategory turns a collector panic into a logged null category.
func (c *Coordinator) recoverCategory(category string) {
	if r := recover(); r != nil {
		c.log.Error("Aggregation category panicked",
			logger.String("category", category),
			logger.Any("panic", r),
		)
	}
}

package discovery

import (
	"context"
	"sync"

	"github.com/jonesrussell/projectintel/internal/logger"
)

// Finder is the contract every discovery backend satisfies: free-text
// project name in, bounded candidate list out. Backends never return
// errors; internal failures surface as an empty list.
type Finder interface {
	Discover(ctx context.Context, project string) []string
}

// SiteFinder is the website variant, which classifies candidates into
// primary-domain matches and secondary "other" matches.
type SiteFinder interface {
	Discover(ctx context.Context, project string) (websites, others []string)
}

// Orchestrator fans out to all discovery backends concurrently and merges
// their candidates into a refined Result.
type Orchestrator struct {
	repos    Finder
	fundings Finder
	websites SiteFinder
	socials  Finder
	log      logger.Logger
}

func NewOrchestrator(repos, fundings Finder, websites SiteFinder, socials Finder, log logger.Logger) *Orchestrator {
	return &Orchestrator{
		repos:    repos,
		fundings: fundings,
		websites: websites,
		socials:  socials,
		log:      log,
	}
}

// Discover runs every backend concurrently, waits for all of them (every
// category is wanted, so no early cancellation), merges in fixed backend
// order so output is deterministic regardless of completion timing, and
// applies cross-source refinement.
func (o *Orchestrator) Discover(ctx context.Context, project string) Result {
	o.log.Info("Starting discovery", logger.String("project", project))

	var (
		wg       sync.WaitGroup
		githubs  []string
		fundings []string
		websites []string
		others   []string
		twitters []string
	)

	wg.Add(4)
	go func() {
		defer wg.Done()
		githubs = o.repos.Discover(ctx, project)
	}()
	go func() {
		defer wg.Done()
		fundings = o.fundings.Discover(ctx, project)
	}()
	go func() {
		defer wg.Done()
		websites, others = o.websites.Discover(ctx, project)
	}()
	go func() {
		defer wg.Done()
		twitters = o.socials.Discover(ctx, project)
	}()
	wg.Wait()

	result := Refine(Result{
		Websites: dedupe(websites),
		GitHubs:  dedupe(githubs),
		Fundings: dedupe(fundings),
		Twitters: dedupe(twitters),
		Others:   dedupe(others),
	})

	o.log.Info("Discovery complete",
		logger.String("project", project),
		logger.Int("websites", len(result.Websites)),
		logger.Int("githubs", len(result.GitHubs)),
		logger.Int("fundings", len(result.Fundings)),
		logger.Int("twitters", len(result.Twitters)),
		logger.Int("others", len(result.Others)),
	)
	return result
}

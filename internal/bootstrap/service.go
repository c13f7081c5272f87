package bootstrap

import (
	"github.com/jonesrussell/projectintel/internal/aggregate"
	"github.com/jonesrussell/projectintel/internal/cache"
	"github.com/jonesrussell/projectintel/internal/config"
	"github.com/jonesrussell/projectintel/internal/discovery"
	"github.com/jonesrussell/projectintel/internal/governor"
	"github.com/jonesrussell/projectintel/internal/insight"
	"github.com/jonesrussell/projectintel/internal/intel"
	"github.com/jonesrussell/projectintel/internal/logger"
	"github.com/jonesrussell/projectintel/internal/stats"
	"github.com/jonesrussell/projectintel/internal/upstream"
)

// buildService wires the upstream clients, discovery backends, stats
// aggregators, and insight generator into the analysis service.
func buildService(cfg *config.Config, store *cache.Store, log logger.Logger) *intel.Service {
	github := upstream.NewGitHubClient(cfg.Discovery.GitHubAPIURL, cfg.Discovery.GitHubToken)
	tavily := upstream.NewTavilyClient(cfg.Discovery.TavilyURL, cfg.Discovery.TavilyKey)
	serpapi := upstream.NewSerpAPIClient(cfg.Discovery.SerpAPIURL, cfg.Discovery.SerpAPIKey)
	twitter := upstream.NewTwitterClient(cfg.Discovery.TwitterAPIURL, cfg.Discovery.TwitterBearer)
	defillama := upstream.NewDefiLlamaClient("")
	coingecko := upstream.NewCoinGeckoClient("")
	duckduckgo := upstream.NewDuckDuckGoClient()

	orchestrator := discovery.NewOrchestrator(
		discovery.NewRepoFinder(github, log),
		discovery.NewFundingFinder(tavily, github, log),
		discovery.NewWebsiteFinder(tavily, log),
		discovery.NewSocialFinder(serpapi, tavily, log),
		log,
	)

	gov := governor.New(store, cfg.Governor.MaxAttempts, cfg.Governor.Cooldown, log)

	coordinator := aggregate.NewCoordinator(
		stats.NewGitHubAggregator(github, store, cfg.Cache.StatsTTL, log),
		stats.NewSocialAggregator(twitter, tavily, serpapi, duckduckgo, store, gov, cfg.Cache.StatsTTL, log),
		stats.NewFundingAggregator(defillama, coingecko, store, cfg.Cache.FundingTTL, log),
		log,
	)

	insights := insight.NewGenerator(cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.Model, log)

	return intel.NewService(orchestrator, coordinator, insights, store, cfg.Cache.ResultTTL, log)
}

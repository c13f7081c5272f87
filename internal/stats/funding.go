package stats

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jonesrussell/projectintel/internal/cache"
	"github.com/jonesrussell/projectintel/internal/logger"
	"github.com/jonesrussell/projectintel/internal/upstream"
)

const (
	fundingCachePrefix = "funding:"
	protocolIndexKey   = "defillama:protocols"
	maxCoins           = 3
)

// ProtocolInfo is the matched DeFiLlama protocol with its current TVL.
type ProtocolInfo struct {
	Name string  `json:"name"`
	Slug string  `json:"slug"`
	TVL  float64 `json:"tvl"`
}

// CoinInfo is one CoinGecko listing for the project.
type CoinInfo struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Symbol        string `json:"symbol"`
	MarketCapRank int    `json:"market_cap_rank"`
}

// FundingStats holds funding signals for a project: discovered funding
// pages plus protocol and token listings.
type FundingStats struct {
	Project      string        `json:"project"`
	FundingPages []string      `json:"funding_pages,omitempty"`
	Protocol     *ProtocolInfo `json:"protocol,omitempty"`
	Coins        []CoinInfo    `json:"coins,omitempty"`
}

// FundingAggregator collects funding signals from the DeFiLlama and
// CoinGecko indexes, keyed by project name.
type FundingAggregator struct {
	defillama *upstream.DefiLlamaClient
	coingecko *upstream.CoinGeckoClient
	store     *cache.Store
	ttl       time.Duration
	log       logger.Logger
}

func NewFundingAggregator(
	defillama *upstream.DefiLlamaClient,
	coingecko *upstream.CoinGeckoClient,
	store *cache.Store,
	ttl time.Duration,
	log logger.Logger,
) *FundingAggregator {
	return &FundingAggregator{
		defillama: defillama,
		coingecko: coingecko,
		store:     store,
		ttl:       ttl,
		log:       log,
	}
}

// Collect looks the project up in the protocol and coin indexes and folds
// in the discovered funding page URLs. Index failures degrade to whatever
// the other sources produced.
func (a *FundingAggregator) Collect(ctx context.Context, project string, fundingURLs []string) (*FundingStats, error) {
	cacheKey := fundingCachePrefix + project

	var cached FundingStats
	if a.store.GetJSON(ctx, cacheKey, &cached) && cached.Project != "" {
		return &cached, nil
	}

	fs := &FundingStats{
		Project:      project,
		FundingPages: fundingURLs,
	}

	if p, ok := a.matchProtocol(ctx, project); ok {
		fs.Protocol = p
	}
	fs.Coins = a.searchCoins(ctx, project)

	if fs.Protocol == nil && len(fs.Coins) == 0 && len(fs.FundingPages) == 0 {
		return nil, ErrNoCandidates
	}

	a.store.Set(ctx, cacheKey, fs, a.ttl)
	return fs, nil
}

// matchProtocol finds the project in the DeFiLlama index. The index itself
// is large and slow-moving, so it is cached independently.
func (a *FundingAggregator) matchProtocol(ctx context.Context, project string) (*ProtocolInfo, bool) {
	protocols := a.protocolIndex(ctx)
	if len(protocols) == 0 {
		return nil, false
	}

	match, ok := upstream.MatchProtocol(protocols, project)
	if !ok {
		return nil, false
	}

	info := &ProtocolInfo{Name: match.Name, Slug: match.Slug, TVL: match.TVL}

	// The detail document carries a fresher TVL figure when available.
	detail, err := a.defillama.ProtocolDetail(ctx, match.Slug)
	if err != nil {
		a.log.Debug("Protocol detail fetch failed",
			logger.String("slug", match.Slug),
			logger.Error(err),
		)
		return info, true
	}
	var doc struct {
		TVL []struct {
			TotalLiquidityUSD float64 `json:"totalLiquidityUSD"`
		} `json:"tvl"`
	}
	if err := json.Unmarshal(detail, &doc); err == nil && len(doc.TVL) > 0 {
		info.TVL = doc.TVL[len(doc.TVL)-1].TotalLiquidityUSD
	}
	return info, true
}

// protocolIndexDoc wraps the index in an object so the cache can stamp it.
type protocolIndexDoc struct {
	Protocols []upstream.Protocol `json:"protocols"`
}

func (a *FundingAggregator) protocolIndex(ctx context.Context) []upstream.Protocol {
	var doc protocolIndexDoc
	if a.store.GetJSON(ctx, protocolIndexKey, &doc) && len(doc.Protocols) > 0 {
		return doc.Protocols
	}

	protocols, err := a.defillama.Protocols(ctx)
	if err != nil {
		a.log.Warn("Protocol index fetch failed", logger.Error(err))
		return nil
	}
	a.store.Set(ctx, protocolIndexKey, protocolIndexDoc{Protocols: protocols}, a.ttl)
	return protocols
}

func (a *FundingAggregator) searchCoins(ctx context.Context, project string) []CoinInfo {
	coins, err := a.coingecko.SearchCoins(ctx, project)
	if err != nil {
		a.log.Warn("Coin search failed", logger.Error(err))
		return nil
	}

	var out []CoinInfo
	for _, c := range coins {
		out = append(out, CoinInfo{
			ID:            c.ID,
			Name:          c.Name,
			Symbol:        c.Symbol,
			MarketCapRank: c.MarketCapRank,
		})
		if len(out) >= maxCoins {
			break
		}
	}
	return out
}

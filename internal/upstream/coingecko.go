package upstream

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/jonesrussell/projectintel/internal/httpx"
)

const coingeckoBaseURL = "https://api.coingecko.com/api/v3"

// CoinGeckoClient queries the public CoinGecko API (no key required).
type CoinGeckoClient struct {
	client  *http.Client
	baseURL string
}

// NewCoinGeckoClient creates a client. An empty baseURL selects the public
// endpoint.
func NewCoinGeckoClient(baseURL string) *CoinGeckoClient {
	if baseURL == "" {
		baseURL = coingeckoBaseURL
	}
	return &CoinGeckoClient{
		client:  httpx.NewClient(0),
		baseURL: baseURL,
	}
}

// Coin is one search hit from the coins index.
type Coin struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Symbol        string `json:"symbol"`
	MarketCapRank int    `json:"market_cap_rank"`
}

// SearchCoins looks up coins matching the query.
func (c *CoinGeckoClient) SearchCoins(ctx context.Context, query string) ([]Coin, error) {
	params := url.Values{"query": {query}}

	var resp struct {
		Coins []Coin `json:"coins"`
	}
	if err := getJSON(ctx, c.client, c.baseURL+"/search", nil, params, &resp); err != nil {
		return nil, fmt.Errorf("coingecko search: %w", err)
	}
	return resp.Coins, nil
}

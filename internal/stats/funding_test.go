package stats

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/projectintel/internal/cache"
	"github.com/jonesrussell/projectintel/internal/logger"
	"github.com/jonesrussell/projectintel/internal/upstream"
)

func newFundingFixture(t *testing.T, indexHits *atomic.Int64) (llama, gecko *httptest.Server) {
	t.Helper()

	llamaMux := http.NewServeMux()
	llamaMux.HandleFunc("/protocols", func(w http.ResponseWriter, _ *http.Request) {
		indexHits.Add(1)
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"name": "Uniswap", "slug": "uniswap", "tvl": 4.2e9},
			{"name": "Zora", "slug": "zora", "tvl": 1.5e6},
		})
	})
	llamaMux.HandleFunc("/protocol/zora", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"tvl": []map[string]any{
				{"totalLiquidityUSD": 1.0e6},
				{"totalLiquidityUSD": 1.8e6},
			},
		})
	})
	llama = httptest.NewServer(llamaMux)
	t.Cleanup(llama.Close)

	geckoMux := http.NewServeMux()
	geckoMux.HandleFunc("/search", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"coins": []map[string]any{
				{"id": "zora", "name": "Zora", "symbol": "ZORA", "market_cap_rank": 311},
				{"id": "zora-clone", "name": "Zora Clone", "symbol": "ZCL", "market_cap_rank": 0},
			},
		})
	})
	gecko = httptest.NewServer(geckoMux)
	t.Cleanup(gecko.Close)

	return llama, gecko
}

func TestFundingAggregator_Collect(t *testing.T) {
	var indexHits atomic.Int64
	llama, gecko := newFundingFixture(t, &indexHits)

	store := cache.New(nil, logger.NewNopLogger())
	agg := NewFundingAggregator(
		upstream.NewDefiLlamaClient(llama.URL),
		upstream.NewCoinGeckoClient(gecko.URL),
		store,
		time.Hour,
		logger.NewNopLogger(),
	)

	pages := []string{"https://www.crunchbase.com/organization/zora"}
	got, err := agg.Collect(context.Background(), "zora", pages)
	require.NoError(t, err)

	require.NotNil(t, got.Protocol)
	assert.Equal(t, "zora", got.Protocol.Slug)
	// Detail document wins over the index figure.
	assert.InDelta(t, 1.8e6, got.Protocol.TVL, 1)

	require.Len(t, got.Coins, 2)
	assert.Equal(t, "ZORA", got.Coins[0].Symbol)
	assert.Equal(t, pages, got.FundingPages)
}

func TestFundingAggregator_ProtocolIndexCached(t *testing.T) {
	var indexHits atomic.Int64
	llama, gecko := newFundingFixture(t, &indexHits)

	store := cache.New(nil, logger.NewNopLogger())
	agg := NewFundingAggregator(
		upstream.NewDefiLlamaClient(llama.URL),
		upstream.NewCoinGeckoClient(gecko.URL),
		store,
		time.Hour,
		logger.NewNopLogger(),
	)

	_, err := agg.Collect(context.Background(), "zora", nil)
	require.NoError(t, err)

	// Different project, same index.
	_, err = agg.Collect(context.Background(), "uniswap", nil)
	require.NoError(t, err)

	assert.Equal(t, int64(1), indexHits.Load())
}

func TestFundingAggregator_ResultCached(t *testing.T) {
	var indexHits atomic.Int64
	llama, gecko := newFundingFixture(t, &indexHits)

	store := cache.New(nil, logger.NewNopLogger())
	agg := NewFundingAggregator(
		upstream.NewDefiLlamaClient(llama.URL),
		upstream.NewCoinGeckoClient(gecko.URL),
		store,
		time.Hour,
		logger.NewNopLogger(),
	)

	first, err := agg.Collect(context.Background(), "zora", nil)
	require.NoError(t, err)

	llama.Close()
	gecko.Close()

	second, err := agg.Collect(context.Background(), "zora", nil)
	require.NoError(t, err)
	assert.Equal(t, first.Protocol.Slug, second.Protocol.Slug)
}

func TestFundingAggregator_NothingFound(t *testing.T) {
	llamaSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer llamaSrv.Close()
	geckoSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer geckoSrv.Close()

	store := cache.New(nil, logger.NewNopLogger())
	agg := NewFundingAggregator(
		upstream.NewDefiLlamaClient(llamaSrv.URL),
		upstream.NewCoinGeckoClient(geckoSrv.URL),
		store,
		time.Hour,
		logger.NewNopLogger(),
	)

	_, err := agg.Collect(context.Background(), "nonexistent", nil)
	assert.ErrorIs(t, err, ErrNoCandidates)
}

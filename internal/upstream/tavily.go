package upstream

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jonesrussell/projectintel/internal/httpx"
)

// TavilyClient queries the Tavily web search API.
type TavilyClient struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// NewTavilyClient creates a client. An empty apiKey disables the source.
func NewTavilyClient(baseURL, apiKey string) *TavilyClient {
	return &TavilyClient{
		client:  httpx.NewClient(0),
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

// Enabled reports whether an API key is configured.
func (c *TavilyClient) Enabled() bool {
	return c.apiKey != ""
}

// TavilyResult is one search hit.
type TavilyResult struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Search runs a query and returns up to numResults hits.
func (c *TavilyClient) Search(ctx context.Context, query string, numResults int) ([]TavilyResult, error) {
	payload := map[string]any{
		"api_key":     c.apiKey,
		"query":       query,
		"num_results": numResults,
	}

	var resp struct {
		Results []TavilyResult `json:"results"`
	}
	if err := postJSON(ctx, c.client, c.baseURL, nil, payload, &resp); err != nil {
		return nil, fmt.Errorf("tavily search: %w", err)
	}
	return resp.Results, nil
}

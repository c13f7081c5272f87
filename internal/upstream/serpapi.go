package upstream

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jonesrussell/projectintel/internal/httpx"
)

// SerpAPIClient queries SerpAPI search engines.
type SerpAPIClient struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// NewSerpAPIClient creates a client. An empty apiKey disables the source.
func NewSerpAPIClient(baseURL, apiKey string) *SerpAPIClient {
	return &SerpAPIClient{
		client:  httpx.NewClient(0),
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

// Enabled reports whether an API key is configured.
func (c *SerpAPIClient) Enabled() bool {
	return c.apiKey != ""
}

// SerpResult is one organic search hit.
type SerpResult struct {
	Link    string `json:"link"`
	URL     string `json:"url"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// GoogleSearch runs a query against the google engine and returns the
// organic results.
func (c *SerpAPIClient) GoogleSearch(ctx context.Context, query string, num int) ([]SerpResult, error) {
	params := url.Values{
		"engine":  {"google"},
		"q":       {query},
		"api_key": {c.apiKey},
		"num":     {strconv.Itoa(num)},
	}

	var resp struct {
		OrganicResults []SerpResult `json:"organic_results"`
		TopResults     []SerpResult `json:"top_results"`
	}
	if err := getJSON(ctx, c.client, c.baseURL, nil, params, &resp); err != nil {
		return nil, fmt.Errorf("serpapi google search: %w", err)
	}
	return append(resp.OrganicResults, resp.TopResults...), nil
}

// XProfile is the profile block returned by SerpAPI's X engine.
type XProfile struct {
	ProfileURL string `json:"profile_url"`
	Username   string `json:"username"`
	Permalink  string `json:"permalink"`
}

// XSearchResponse is the (loosely structured) X engine response. Result
// items may appear under several keys depending on the query.
type XSearchResponse struct {
	TwitterResults struct {
		Profile *XProfile  `json:"profile"`
		Users   []XProfile `json:"users"`
		Data    []XProfile `json:"data"`
	} `json:"twitter_results"`
	OrganicResults []SerpResult `json:"organic_results"`
}

// XSearch runs a query against the X engine.
func (c *SerpAPIClient) XSearch(ctx context.Context, query string) (*XSearchResponse, error) {
	params := url.Values{
		"engine":  {"X"},
		"q":       {query},
		"api_key": {c.apiKey},
	}

	var resp XSearchResponse
	if err := getJSON(ctx, c.client, c.baseURL, nil, params, &resp); err != nil {
		return nil, fmt.Errorf("serpapi x search: %w", err)
	}
	return &resp, nil
}

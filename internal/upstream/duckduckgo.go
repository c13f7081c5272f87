package upstream

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonesrussell/projectintel/internal/httpx"
)

const duckduckgoHTMLURL = "https://duckduckgo.com/html/"

// DuckDuckGoClient scrapes the keyless DuckDuckGo HTML endpoint. It is the
// last-resort fallback when every keyed source is unavailable.
type DuckDuckGoClient struct {
	client  *http.Client
	baseURL string
}

func NewDuckDuckGoClient() *DuckDuckGoClient {
	return &DuckDuckGoClient{
		client:  httpx.NewClient(0),
		baseURL: duckduckgoHTMLURL,
	}
}

// SearchSnippets runs a query and returns the result titles and snippet
// texts.
func (c *DuckDuckGoClient) SearchSnippets(ctx context.Context, query string) ([]string, error) {
	doc, err := c.search(ctx, query)
	if err != nil {
		return nil, err
	}

	var snippets []string
	doc.Find("a.result__a, a.result__snippet").Each(func(_ int, sel *goquery.Selection) {
		if text := strings.TrimSpace(sel.Text()); text != "" {
			snippets = append(snippets, text)
		}
	})
	return snippets, nil
}

func (c *DuckDuckGoClient) search(ctx context.Context, query string) (*goquery.Document, error) {
	rawURL := c.baseURL + "?" + url.Values{"q": {query}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("duckduckgo search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &httpx.StatusError{Code: resp.StatusCode, URL: rawURL}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("duckduckgo parse: %w", err)
	}
	return doc, nil
}

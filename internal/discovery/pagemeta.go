package discovery

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonesrussell/projectintel/internal/httpx"
	"github.com/jonesrussell/projectintel/internal/logger"
)

const pageMetaTimeout = 15 * time.Second

// PageMeta is the preview metadata of one web page.
type PageMeta struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
	SiteName    string `json:"site_name,omitempty"`
}

// PageMetaExtractor fetches a page and extracts its preview metadata
// (OpenGraph tags first, standard meta tags as fallback).
type PageMetaExtractor struct {
	client *http.Client
	log    logger.Logger
}

func NewPageMetaExtractor(log logger.Logger) *PageMetaExtractor {
	return &PageMetaExtractor{
		client: httpx.NewClient(pageMetaTimeout),
		log:    log,
	}
}

// Extract fetches rawURL and returns its preview metadata.
func (e *PageMetaExtractor) Extract(ctx context.Context, rawURL string) (*PageMeta, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, fmt.Errorf("invalid url %q", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	// Some hosts block default Go user agents.
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; projectintel/1.0)")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &httpx.StatusError{Code: resp.StatusCode, URL: rawURL}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	meta := &PageMeta{
		URL:         rawURL,
		Title:       extractTitle(doc, parsed),
		Description: firstMetaContent(doc, "meta[property='og:description']", "meta[name='description']"),
		Image:       firstMetaContent(doc, "meta[property='og:image']"),
		SiteName:    firstMetaContent(doc, "meta[property='og:site_name']"),
	}

	e.log.Debug("Page metadata extracted",
		logger.String("url", rawURL),
		logger.String("title", meta.Title),
	)
	return meta, nil
}

// extractTitle prefers OpenGraph tags, then the title element, then the
// host.
func extractTitle(doc *goquery.Document, parsed *url.URL) string {
	if title := firstMetaContent(doc, "meta[property='og:title']"); title != "" {
		return title
	}
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title
	}
	return parsed.Host
}

func firstMetaContent(doc *goquery.Document, selectors ...string) string {
	for _, sel := range selectors {
		if content, ok := doc.Find(sel).Attr("content"); ok {
			if trimmed := strings.TrimSpace(content); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}

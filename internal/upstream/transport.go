// Package upstream contains the HTTP clients for the external data sources
// projectintel draws on: GitHub, the X API, Tavily, SerpAPI, DeFiLlama,
// CoinGecko, and a keyless DuckDuckGo fallback. Transient upstream errors
// (timeouts, 429s, 5xx) are retried here with bounded backoff and never
// escalate past the client that saw them.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/jonesrussell/projectintel/internal/httpx"
)

// getJSON performs a GET with retry and decodes the JSON response into dest.
func getJSON(ctx context.Context, client *http.Client, rawURL string, headers map[string]string, params url.Values, dest any) error {
	if len(params) > 0 {
		rawURL = rawURL + "?" + params.Encode()
	}

	return httpx.Retry(ctx, httpx.DefaultRetryConfig(), func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return err
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return &httpx.StatusError{Code: resp.StatusCode, URL: rawURL}
		}

		if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
			return fmt.Errorf("decode response from %s: %w", rawURL, err)
		}
		return nil
	})
}

// postJSON performs a POST with a JSON body, with retry, decoding into dest.
func postJSON(ctx context.Context, client *http.Client, rawURL string, headers map[string]string, payload, dest any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request body: %w", err)
	}

	return httpx.Retry(ctx, httpx.DefaultRetryConfig(), func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return &httpx.StatusError{Code: resp.StatusCode, URL: rawURL}
		}

		if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
			return fmt.Errorf("decode response from %s: %w", rawURL, err)
		}
		return nil
	})
}

// HeadOK probes a URL with a single HEAD request and reports whether it
// answered with a non-error status. Redirects are followed.
func HeadOK(ctx context.Context, client *http.Client, rawURL string) bool {
	ctx, cancel := context.WithTimeout(ctx, httpx.HeadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return false
	}

	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode < 400
}

// Package insight produces a short narrative summary of a project's
// aggregated signals via an OpenAI-compatible chat completion endpoint.
// Insight generation is best-effort: any failure yields a placeholder
// rather than an error.
package insight

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jonesrussell/projectintel/internal/aggregate"
	"github.com/jonesrussell/projectintel/internal/httpx"
	"github.com/jonesrussell/projectintel/internal/logger"
	"github.com/jonesrussell/projectintel/internal/scoring"
)

// Placeholder is returned whenever a summary cannot be generated.
const Placeholder = "Insight generation unavailable."

// Completion endpoints are slow; give them more room than API calls get.
const completionTimeout = 60 * time.Second

const (
	maxTokens   = 700
	temperature = 0.3
)

// Generator calls a chat completion endpoint to summarize aggregated
// project data.
type Generator struct {
	client  *http.Client
	breaker *httpx.Breaker
	baseURL string
	apiKey  string
	model   string
	log     logger.Logger
}

func NewGenerator(baseURL, apiKey, model string, log logger.Logger) *Generator {
	return &Generator{
		client:  httpx.NewClient(completionTimeout),
		breaker: httpx.NewBreaker(httpx.DefaultBreakerConfig()),
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		log:     log,
	}
}

// Enabled reports whether an API key is configured.
func (g *Generator) Enabled() bool {
	return g.apiKey != ""
}

// Generate returns a markdown summary of the aggregation. On any failure
// it returns Placeholder.
func (g *Generator) Generate(ctx context.Context, project string, out aggregate.Outcome, activity scoring.Activity) string {
	if !g.Enabled() {
		return Placeholder
	}

	// The breaker keeps a dead completion endpoint from costing the full
	// request timeout on every analysis.
	var text string
	err := g.breaker.Execute(func() error {
		var completeErr error
		text, completeErr = g.complete(ctx, buildPrompt(project, out, activity))
		return completeErr
	})
	if err != nil {
		g.log.Warn("Insight generation failed",
			logger.String("project", project),
			logger.Error(err),
		)
		return Placeholder
	}
	if strings.TrimSpace(text) == "" {
		return Placeholder
	}
	return text
}

// buildPrompt renders the aggregated data into the instruction the model
// summarizes from.
func buildPrompt(project string, out aggregate.Outcome, activity scoring.Activity) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Summarize the project %q from the data below.\n", project)
	b.WriteString("Write markdown with exactly these sections: ")
	b.WriteString("## Overview, ## Development, ## Community, ## Funding Insight.\n")
	b.WriteString("Be factual; say when a category has no data.\n\n")

	if out.GitHub != nil {
		fmt.Fprintf(&b, "Repositories: %d repos, %d stars, %d forks, %d commits (%d in last 30 days), last commit %s, languages %s\n",
			len(out.GitHub.Repos), out.GitHub.TotalStars, out.GitHub.TotalForks,
			out.GitHub.TotalCommits, out.GitHub.RecentCommits,
			out.GitHub.LastCommit, strings.Join(out.GitHub.Languages, ", "))
	} else {
		b.WriteString("Repositories: no data\n")
	}

	if len(out.Social) > 0 {
		for _, p := range out.Social {
			fmt.Fprintf(&b, "Profile @%s: %d followers, %d posts\n", p.Handle, p.Followers, p.Tweets)
		}
	} else {
		b.WriteString("Social: no data\n")
	}

	if out.Funding != nil {
		if out.Funding.Protocol != nil {
			fmt.Fprintf(&b, "Protocol: %s, TVL %.0f USD\n", out.Funding.Protocol.Name, out.Funding.Protocol.TVL)
		}
		for _, c := range out.Funding.Coins {
			fmt.Fprintf(&b, "Token: %s (%s), market cap rank %d\n", c.Name, c.Symbol, c.MarketCapRank)
		}
		if len(out.Funding.FundingPages) > 0 {
			fmt.Fprintf(&b, "Funding pages: %s\n", strings.Join(out.Funding.FundingPages, ", "))
		}
	} else {
		b.WriteString("Funding: no data\n")
	}

	fmt.Fprintf(&b, "\nScores (0-100): development %.1f, social %.1f, community %.1f, overall %.1f\n",
		activity.GitHubScore, activity.SocialScore, activity.CommunityScore, activity.OverallScore)

	return b.String()
}

func (g *Generator) complete(ctx context.Context, prompt string) (string, error) {
	payload := map[string]any{
		"model":       g.model,
		"max_tokens":  maxTokens,
		"temperature": temperature,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &httpx.StatusError{Code: resp.StatusCode, URL: g.baseURL}
	}

	var decoded struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode completion: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return "", fmt.Errorf("completion returned no choices")
	}
	return decoded.Choices[0].Message.Content, nil
}

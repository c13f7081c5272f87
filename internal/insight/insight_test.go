package insight

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/projectintel/internal/aggregate"
	"github.com/jonesrussell/projectintel/internal/logger"
	"github.com/jonesrussell/projectintel/internal/scoring"
	"github.com/jonesrussell/projectintel/internal/stats"
)

func outcomeFixture() aggregate.Outcome {
	return aggregate.Outcome{
		GitHub: &stats.GitHubStats{
			TotalStars:   420,
			TotalCommits: 900,
			Languages:    []string{"Solidity", "TypeScript"},
			Repos:        []stats.RepoStats{{FullName: "ourzora/zora-protocol"}},
		},
		Social: []stats.ProfileStats{{Handle: "zora", Followers: 182200, Tweets: 9054}},
	}
}

func TestGenerator_Generate(t *testing.T) {
	var gotPrompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		body, _ := io.ReadAll(r.Body)
		var payload struct {
			Model    string `json:"model"`
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.Unmarshal(body, &payload))
		require.Equal(t, "test-model", payload.Model)
		require.Len(t, payload.Messages, 1)
		gotPrompt = payload.Messages[0].Content

		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "## Overview\nActive protocol."}},
			},
		})
	}))
	defer srv.Close()

	g := NewGenerator(srv.URL, "test-key", "test-model", logger.NewNopLogger())

	got := g.Generate(context.Background(), "zora", outcomeFixture(), scoring.Activity{OverallScore: 56.7})

	assert.Equal(t, "## Overview\nActive protocol.", got)
	assert.Contains(t, gotPrompt, "zora")
	assert.Contains(t, gotPrompt, "420 stars")
	assert.Contains(t, gotPrompt, "182200 followers")
	assert.Contains(t, gotPrompt, "Funding: no data")
}

func TestGenerator_PlaceholderWhenDisabled(t *testing.T) {
	g := NewGenerator("http://127.0.0.1:1", "", "test-model", logger.NewNopLogger())

	got := g.Generate(context.Background(), "zora", aggregate.Outcome{}, scoring.Activity{})
	assert.Equal(t, Placeholder, got)
}

func TestGenerator_PlaceholderOnUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	g := NewGenerator(srv.URL, "test-key", "test-model", logger.NewNopLogger())

	got := g.Generate(context.Background(), "zora", aggregate.Outcome{}, scoring.Activity{})
	assert.Equal(t, Placeholder, got)
}

func TestGenerator_PlaceholderOnEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer srv.Close()

	g := NewGenerator(srv.URL, "test-key", "test-model", logger.NewNopLogger())

	got := g.Generate(context.Background(), "zora", aggregate.Outcome{}, scoring.Activity{})
	assert.Equal(t, Placeholder, got)
}

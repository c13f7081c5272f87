// Package stats collects per-category activity metrics for a project:
// repository stats from GitHub, social profile stats from the X API with
// search-based fallbacks, and funding signals from protocol and coin
// databases. Aggregators cache their results and never share failures
// across categories.
package stats

import "errors"

var (
	// ErrBackendDisabled means the category's upstream credential is not
	// configured.
	ErrBackendDisabled = errors.New("stats: backend not configured")

	// ErrNoCandidates means discovery produced nothing this category can
	// work with.
	ErrNoCandidates = errors.New("stats: no candidates to collect")
)

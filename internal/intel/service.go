// Package intel is the top-level analysis service: discover a project's
// footprint, aggregate per-category stats, score activity, and attach a
// narrative insight. Whole reports are cached per project.
package intel

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jonesrussell/projectintel/internal/aggregate"
	"github.com/jonesrussell/projectintel/internal/cache"
	"github.com/jonesrussell/projectintel/internal/discovery"
	"github.com/jonesrussell/projectintel/internal/events"
	"github.com/jonesrussell/projectintel/internal/logger"
	"github.com/jonesrussell/projectintel/internal/scoring"
)

// ErrNoDiscovery means no source produced a single URL for the project.
// The condition is terminal for the request; nothing downstream can run.
var ErrNoDiscovery = errors.New("intel: no sources discovered for project")

// ErrEmptyProject means the request carried no project name.
var ErrEmptyProject = errors.New("intel: project name is empty")

const reportCachePrefix = "intel:"

// Discoverer finds a project's footprint across sources.
type Discoverer interface {
	Discover(ctx context.Context, project string) discovery.Result
}

// Aggregator joins per-category stats for discovered sources.
type Aggregator interface {
	Aggregate(ctx context.Context, project string, d discovery.Result) aggregate.Outcome
}

// InsightGenerator writes the narrative summary.
type InsightGenerator interface {
	Generate(ctx context.Context, project string, out aggregate.Outcome, activity scoring.Activity) string
}

// Report is the full analysis result for one project.
type Report struct {
	Project     string            `json:"project"`
	Discovered  discovery.Result  `json:"discovered"`
	Stats       aggregate.Outcome `json:"stats"`
	Activity    scoring.Activity  `json:"activity"`
	Insight     string            `json:"insight"`
	GeneratedAt time.Time         `json:"generated_at"`
}

// Service runs the full analysis pipeline.
type Service struct {
	discoverer Discoverer
	aggregator Aggregator
	insights   InsightGenerator
	store      *cache.Store
	publisher  *events.Publisher
	ttl        time.Duration
	log        logger.Logger
	now        func() time.Time
}

func NewService(
	discoverer Discoverer,
	aggregator Aggregator,
	insights InsightGenerator,
	store *cache.Store,
	ttl time.Duration,
	log logger.Logger,
) *Service {
	return &Service{
		discoverer: discoverer,
		aggregator: aggregator,
		insights:   insights,
		store:      store,
		ttl:        ttl,
		log:        log,
		now:        time.Now,
	}
}

// SetPublisher attaches a report event publisher. A nil publisher keeps
// events disabled.
func (s *Service) SetPublisher(p *events.Publisher) {
	s.publisher = p
}

// Analyze produces a Report for project. Project names are matched
// case-insensitively; repeated requests within the cache TTL return the
// stored report.
func (s *Service) Analyze(ctx context.Context, project string) (*Report, error) {
	project = strings.TrimSpace(project)
	if project == "" {
		return nil, ErrEmptyProject
	}
	key := reportCachePrefix + strings.ToLower(project)

	var cached Report
	if s.store.GetJSON(ctx, key, &cached) && cached.Project != "" {
		s.log.Debug("Report served from cache", logger.String("project", project))
		return &cached, nil
	}

	started := s.now()
	discovered := s.discoverer.Discover(ctx, project)
	if discovered.Empty() {
		s.log.Info("Nothing discovered for project", logger.String("project", project))
		return nil, ErrNoDiscovery
	}

	outcome := s.aggregator.Aggregate(ctx, project, discovered)
	activity := scoring.Compute(outcome.GitHub, outcome.Social)
	summary := s.insights.Generate(ctx, project, outcome, activity)

	report := &Report{
		Project:     project,
		Discovered:  discovered,
		Stats:       outcome,
		Activity:    activity,
		Insight:     summary,
		GeneratedAt: s.now().UTC(),
	}

	s.store.Set(ctx, key, report, s.ttl)
	s.publisher.ReportGenerated(report.Project, activity.OverallScore)
	s.log.Info("Report generated",
		logger.String("project", project),
		logger.Duration("took", s.now().Sub(started)),
		logger.Float64("overall_score", activity.OverallScore),
	)
	return report, nil
}

package api

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"marquee/internal/discovery"
	"marquee/internal/logging"
	"marquee/internal/quality"
	"marquee/internal/ratings"
	"marquee/internal/services"
	"marquee/internal/services/radarr"
	"marquee/internal/syncer"
)

// Discoverer runs one discovery request.
type Discoverer interface {
	Discover(ctx context.Context, req discovery.Request) (*discovery.Result, error)
}

// SyncEngine reconciles candidates against the library.
type SyncEngine interface {
	Sync(ctx context.Context, candidates []discovery.Candidate, opts syncer.Options) (*syncer.Summary, error)
}

// Library is the metadata search surface used by the service.
type Library interface {
	Lookup(ctx context.Context, term string) ([]radarr.Movie, error)
}

// Service is the shared workflow layer behind the CLI and the MCP server.
// Any dependency may be nil; operations needing a missing dependency return
// an error instead of panicking, so a partially-configured install still
// serves the operations it can.
type Service struct {
	library    Library
	discoverer Discoverer
	engine     SyncEngine
	fetcher    ratings.Fetcher
	analyzer   *quality.Analyzer
	logger     *slog.Logger
}

// NewService wires the workflow layer.
func NewService(library Library, discoverer Discoverer, engine SyncEngine, fetcher ratings.Fetcher, analyzer *quality.Analyzer, logger *slog.Logger) *Service {
	if analyzer == nil {
		analyzer = quality.NewAnalyzer(0)
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Service{
		library:    library,
		discoverer: discoverer,
		engine:     engine,
		fetcher:    fetcher,
		analyzer:   analyzer,
		logger:     logging.WithComponent(logger, "api"),
	}
}

// Search looks a term up against the library's metadata search. Terms may
// carry "tmdb:" or "imdb:" prefixes, which the upstream API resolves as
// identifier lookups.
func (s *Service) Search(ctx context.Context, term string, limit int) ([]MovieSummary, error) {
	if s.library == nil {
		return nil, fmt.Errorf("search: no library configured")
	}
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, fmt.Errorf("search: term required")
	}
	movies, err := s.library.Lookup(ctx, term)
	if err != nil {
		return nil, services.Wrap(services.ErrSourceUnavailable, "api", "search", term, err)
	}
	if limit > 0 && len(movies) > limit {
		movies = movies[:limit]
	}
	summaries := make([]MovieSummary, 0, len(movies))
	for _, movie := range movies {
		summaries = append(summaries, FromMovie(movie))
	}
	return summaries, nil
}

// AnalyzeQuality fetches ratings for one title and computes the verdict
// without touching the library.
func (s *Service) AnalyzeQuality(ctx context.Context, title string, year int) (QualityReport, error) {
	if s.fetcher == nil {
		return QualityReport{}, fmt.Errorf("quality: no rating source configured")
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return QualityReport{}, fmt.Errorf("quality: title required")
	}
	set, err := s.fetcher.Fetch(ctx, title, year)
	if err != nil && set.IsEmpty() {
		return QualityReport{}, services.Wrap(services.ErrSourceUnavailable, "api", "quality", title, err)
	}
	return FromVerdict(s.analyzer.Analyze(set)), nil
}

// Discover runs one discovery request.
func (s *Service) Discover(ctx context.Context, prompt string, limit int, region string) (DiscoveryReport, error) {
	if s.discoverer == nil {
		return DiscoveryReport{}, fmt.Errorf("discover: no discovery pipeline configured")
	}
	result, err := s.discoverer.Discover(ctx, discovery.Request{Prompt: prompt, Limit: limit, Region: region})
	if err != nil {
		return DiscoveryReport{}, err
	}
	return FromDiscovery(result), nil
}

// Sync reconciles a candidate list against the library.
func (s *Service) Sync(ctx context.Context, candidates []discovery.Candidate, opts syncer.Options) (SyncReport, error) {
	if s.engine == nil {
		return SyncReport{}, fmt.Errorf("sync: no sync engine configured")
	}
	if len(candidates) == 0 {
		return SyncReport{}, services.Wrap(services.ErrNoCandidates, "api", "sync", "empty candidate list", nil)
	}
	summary, err := s.engine.Sync(ctx, candidates, opts)
	if err != nil {
		return SyncReport{}, err
	}
	return FromSummary(summary), nil
}

// AddMovie syncs a single caller-specified candidate and returns its
// terminal outcome.
func (s *Service) AddMovie(ctx context.Context, candidate discovery.Candidate, opts syncer.Options) (SyncResult, error) {
	if s.engine == nil {
		return SyncResult{}, fmt.Errorf("add: no sync engine configured")
	}
	if strings.TrimSpace(candidate.Title) == "" && !candidate.HasIdentifier() {
		return SyncResult{}, services.Wrap(services.ErrMissingIdentifier, "api", "add", "title or identifier required", nil)
	}
	summary, err := s.engine.Sync(ctx, []discovery.Candidate{candidate}, opts)
	if err != nil {
		return SyncResult{}, err
	}
	if len(summary.Outcomes) == 0 {
		return SyncResult{}, fmt.Errorf("add: sync produced no outcome")
	}
	return FromOutcome(summary.Outcomes[0]), nil
}

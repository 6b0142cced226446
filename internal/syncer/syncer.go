package syncer

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
	"marquee/internal/textutil"
)

// State is a candidate's terminal outcome within one sync invocation.
type State string

const (
	StateResolvedExisting State = "resolved_existing"
	StateNotFound         State = "not_found"
	StateQualityRejected  State = "quality_rejected"
	StateAdded            State = "added"
	StateAddFailed        State = "add_failed"
)

// Outcome records where one candidate ended up. Verdict is set whenever
// quality analysis ran, including on forced additions.
type Outcome struct {
	Candidate discovery.Candidate
	State     State
	Message   string
	Err       error
	Verdict   *quality.Verdict
	Movie     *radarr.Movie
	DryRun    bool
}

// Code returns the machine-readable error code for failed outcomes, empty
// for added and resolved_existing.
func (o Outcome) Code() string {
	switch o.State {
	case StateAdded:
		return ""
	case StateResolvedExisting:
		return services.ErrorCode(services.ErrAlreadyExists)
	case StateNotFound:
		return services.ErrorCode(services.ErrNotFound)
	case StateQualityRejected:
		return services.ErrorCode(services.ErrQualityTooLow)
	default:
		return services.ErrorCode(o.Err)
	}
}

// Summary aggregates one sync invocation's outcomes.
type Summary struct {
	Outcomes []Outcome
	DryRun   bool
}

// Count returns how many outcomes landed in the given state.
func (s *Summary) Count(state State) int {
	n := 0
	for _, outcome := range s.Outcomes {
		if outcome.State == state {
			n++
		}
	}
	return n
}

func (s *Summary) String() string {
	return fmt.Sprintf("%d added, %d existing, %d quality-rejected, %d not found, %d failed",
		s.Count(StateAdded), s.Count(StateResolvedExisting), s.Count(StateQualityRejected),
		s.Count(StateNotFound), s.Count(StateAddFailed))
}

// Options control one sync invocation.
type Options struct {
	// DryRun resolves and gates candidates but never issues additions.
	DryRun bool
	// Force routes quality-rejected candidates to addition. It never
	// bypasses the existence check.
	Force bool
	// SkipQuality disables quality analysis entirely.
	SkipQuality bool
}

// library is the Radarr surface the engine needs.
type library interface {
	Lookup(ctx context.Context, term string) ([]radarr.Movie, error)
	LookupTMDB(ctx context.Context, tmdbID int64) ([]radarr.Movie, error)
	LookupIMDB(ctx context.Context, imdbID string) ([]radarr.Movie, error)
	Add(ctx context.Context, req radarr.AddRequest) (radarr.Movie, error)
}

// Engine performs sync runs. It holds no cross-invocation state.
type Engine struct {
	library  library
	ratings  ratings.Fetcher
	analyzer *quality.Analyzer
	defaults radarr.AddDefaults
	logger   *slog.Logger
}

// New builds a sync engine. fetcher may be nil, which disables quality
// analysis for every run.
func New(lib library, fetcher ratings.Fetcher, analyzer *quality.Analyzer, defaults radarr.AddDefaults, logger *slog.Logger) *Engine {
	if analyzer == nil {
		analyzer = quality.NewAnalyzer(0)
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Engine{
		library:  lib,
		ratings:  fetcher,
		analyzer: analyzer,
		defaults: defaults,
		logger:   logging.WithComponent(logger, "syncer"),
	}
}

// Sync reconciles the candidate list. Duplicates collapse before any network
// call, so each distinct title yields at most one addition attempt.
// Per-candidate failures are recorded as that candidate's outcome; they never
// abort the batch.
func (e *Engine) Sync(ctx context.Context, candidates []discovery.Candidate, opts Options) (*Summary, error) {
	ctx, runID := services.EnsureRunID(ctx)
	logger := e.logger.With(logging.FieldRunID, runID)

	distinct := discovery.Deduplicate(candidates)
	logger.InfoContext(ctx, "sync run starting",
		"candidates", len(candidates), "distinct", len(distinct),
		"dry_run", opts.DryRun, "force", opts.Force)

	summary := &Summary{DryRun: opts.DryRun}
	for _, candidate := range distinct {
		outcome := e.syncOne(ctx, logger, candidate, opts)
		summary.Outcomes = append(summary.Outcomes, outcome)
		logger.InfoContext(ctx, "candidate resolved",
			logging.FieldCandidate, candidate.Title, "state", string(outcome.State))
	}

	logger.InfoContext(ctx, "sync run complete", "summary", summary.String())
	return summary, nil
}

func (e *Engine) syncOne(ctx context.Context, logger *slog.Logger, candidate discovery.Candidate, opts Options) Outcome {
	if strings.TrimSpace(candidate.Title) == "" && !candidate.HasIdentifier() {
		return Outcome{
			Candidate: candidate,
			State:     StateAddFailed,
			Message:   "candidate carries neither a title nor an identifier",
			Err:       services.Wrap(services.ErrMissingIdentifier, "syncer", "resolve", "no title or identifier", nil),
			DryRun:    opts.DryRun,
		}
	}

	record, found, err := e.resolve(ctx, candidate)
	if err != nil {
		return Outcome{
			Candidate: candidate,
			State:     StateAddFailed,
			Message:   "library lookup failed",
			Err:       err,
			DryRun:    opts.DryRun,
		}
	}
	if !found {
		return Outcome{
			Candidate: candidate,
			State:     StateNotFound,
			Message:   "no matching metadata record upstream",
			DryRun:    opts.DryRun,
		}
	}
	if record.InLibrary() {
		return Outcome{
			Candidate: candidate,
			State:     StateResolvedExisting,
			Message:   fmt.Sprintf("%s (%d) is already in the library", record.Title, record.Year),
			Movie:     &record,
			DryRun:    opts.DryRun,
		}
	}

	var verdict *quality.Verdict
	if !opts.SkipQuality && e.ratings != nil {
		v := e.gate(ctx, logger, candidate, record)
		verdict = &v
		if !v.Passed && !opts.Force {
			return Outcome{
				Candidate: candidate,
				State:     StateQualityRejected,
				Message:   v.Summary(),
				Verdict:   verdict,
				DryRun:    opts.DryRun,
			}
		}
	}

	if opts.DryRun {
		return Outcome{
			Candidate: candidate,
			State:     StateAdded,
			Message:   fmt.Sprintf("would add %s (%d)", record.Title, record.Year),
			Verdict:   verdict,
			Movie:     &record,
			DryRun:    true,
		}
	}

	added, err := e.library.Add(ctx, radarr.BuildAddRequest(record, e.defaults))
	if err != nil {
		return Outcome{
			Candidate: candidate,
			State:     StateAddFailed,
			Message:   "library rejected the addition",
			Err:       services.Wrap(services.ErrAddFailed, "syncer", "add", candidate.Title, err),
			Verdict:   verdict,
		}
	}
	return Outcome{
		Candidate: candidate,
		State:     StateAdded,
		Message:   fmt.Sprintf("added %s (%d)", added.Title, added.Year),
		Verdict:   verdict,
		Movie:     &added,
	}
}

// resolve finds the upstream metadata record for a candidate, identifier
// first, then normalized title+year.
func (e *Engine) resolve(ctx context.Context, candidate discovery.Candidate) (radarr.Movie, bool, error) {
	var (
		results []radarr.Movie
		err     error
	)
	switch {
	case candidate.TMDBID > 0:
		results, err = e.library.LookupTMDB(ctx, candidate.TMDBID)
	case candidate.IMDBID != "":
		results, err = e.library.LookupIMDB(ctx, candidate.IMDBID)
	default:
		results, err = e.library.Lookup(ctx, candidate.Title)
	}
	if err != nil {
		return radarr.Movie{}, false, services.Wrap(services.ErrAddFailed, "syncer", "lookup", candidate.Title, err)
	}
	if len(results) == 0 {
		return radarr.Movie{}, false, nil
	}
	if candidate.HasIdentifier() {
		return results[0], true, nil
	}

	want := candidate.Key()
	for _, result := range results {
		if textutil.MatchesKey(textutil.TitleKey(result.Title, result.Year), want) {
			return result, true, nil
		}
	}
	// No title match within year tolerance: treat the candidate as unknown
	// rather than adding whatever the search ranked first.
	return radarr.Movie{}, false, nil
}

// gate fetches ratings and analyzes them. Ratings already carried by the
// candidate and by the resolved record are folded in; a fetch failure still
// produces a verdict from whatever is present, which for an empty set means
// insufficient data and a failed gate.
func (e *Engine) gate(ctx context.Context, logger *slog.Logger, candidate discovery.Candidate, record radarr.Movie) quality.Verdict {
	set := candidate.Ratings.Merge(ratings.FromRadarr(record))
	fetched, err := e.ratings.Fetch(ctx, record.Title, record.Year)
	if err != nil {
		logger.WarnContext(ctx, "rating fetch failed",
			logging.FieldCandidate, candidate.Title, "error", err)
	} else {
		set = set.Merge(fetched)
	}
	return e.analyzer.Analyze(set)
}

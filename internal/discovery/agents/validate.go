package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/sourcegraph/conc/pool"

	"marquee/internal/discovery"
	"marquee/internal/identification/tmdb"
	"marquee/internal/logging"
	"marquee/internal/ratings"
	"marquee/internal/services/llm"
	"marquee/internal/services/radarr"
)

// Movies whose actual release year is older than this are treated as
// re-releases rather than new theatrical titles.
const reReleaseThresholdYears = 2

const enrichConcurrency = 6

// ValidatorAgent filters candidate lists: rule-based title validation,
// deduplication, and optional enrichment against the library to drop
// already-present titles and re-releases. Enrichment for independent
// candidates runs concurrently; results are matched back by position, not
// arrival order.
type ValidatorAgent struct {
	lookup ratings.RadarrLookuper
	tmdb   tmdb.Searcher
	logger *slog.Logger
	now    func() time.Time
}

// NewValidatorAgent creates a validator. lookup may be nil, disabling
// enrichment. searcher may be nil; when set it serves as the enrichment
// fallback for candidates the library lookup could not resolve.
func NewValidatorAgent(lookup ratings.RadarrLookuper, searcher tmdb.Searcher, logger *slog.Logger) *ValidatorAgent {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &ValidatorAgent{
		lookup: lookup,
		tmdb:   searcher,
		logger: logging.WithComponent(logger, "agent.validate"),
		now:    time.Now,
	}
}

type validateArgs struct {
	Candidates       []discovery.Candidate `json:"candidates"`
	Deduplicate      *bool                 `json:"deduplicate,omitempty"`
	MinConfidence    float64               `json:"min_confidence,omitempty"`
	Enrich           bool                  `json:"enrich,omitempty"`
	FilterInLibrary  bool                  `json:"filter_in_library,omitempty"`
	FilterReReleases bool                  `json:"filter_rereleases,omitempty"`
}

// Definition describes the validate_movies tool.
func (a *ValidatorAgent) Definition() llm.ToolDef {
	return llm.ToolDef{
		Name: discovery.ToolValidate,
		Description: "Validate and filter a candidate list: drop non-movie titles (UI text, collections, " +
			"concert films), merge duplicates, and optionally enrich from the library to drop " +
			"already-present titles and re-releases.",
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"candidates": {
					"type": "array",
					"description": "Candidates to validate",
					"items": {
						"type": "object",
						"properties": {
							"title": {"type": "string"},
							"year": {"type": "integer"},
							"confidence": {"type": "number"},
							"sources": {"type": "array", "items": {"type": "string"}}
						},
						"required": ["title"]
					}
				},
				"deduplicate": {"type": "boolean", "description": "Merge duplicate entries", "default": true},
				"min_confidence": {"type": "number", "description": "Drop candidates below this confidence"},
				"enrich": {"type": "boolean", "description": "Enrich from library lookup", "default": true},
				"filter_in_library": {"type": "boolean", "description": "Drop titles already in the library", "default": true},
				"filter_rereleases": {"type": "boolean", "description": "Drop re-releases of old movies", "default": true}
			},
			"required": ["candidates"]
		}`),
	}
}

// Execute validates the candidate list.
func (a *ValidatorAgent) Execute(ctx context.Context, args json.RawMessage) (*discovery.Report, error) {
	var req validateArgs
	if len(args) > 0 {
		if err := json.Unmarshal(args, &req); err != nil {
			return discovery.FailureReport(discovery.AgentValidator, discovery.ToolValidate, "invalid arguments", err.Error()), nil
		}
	}
	if len(req.Candidates) == 0 {
		return discovery.FailureReport(discovery.AgentValidator, discovery.ToolValidate, "no candidates provided for validation"), nil
	}
	dedupe := req.Deduplicate == nil || *req.Deduplicate

	started := time.Now()
	var valid []discovery.Candidate
	var rejected []discovery.Rejection
	breakdown := map[string]int{}
	reject := func(title string, reason discovery.RejectionReason) {
		rejected = append(rejected, discovery.Rejection{Title: title, Reason: reason})
		breakdown[string(reason)]++
	}

	for _, candidate := range req.Candidates {
		cleaned, reason, ok := discovery.ValidateTitle(candidate.Title)
		if !ok {
			reject(candidate.Title, reason)
			continue
		}
		candidate.Title = cleaned
		if candidate.Confidence < req.MinConfidence {
			reject(candidate.Title, discovery.ReasonLowConfidence)
			continue
		}
		valid = append(valid, candidate)
	}

	input := len(req.Candidates)
	merged := 0
	if dedupe {
		before := len(valid)
		valid = discovery.Deduplicate(valid)
		merged = before - len(valid)
	}

	if req.Enrich && a.lookup != nil && len(valid) > 0 {
		valid = a.enrich(ctx, valid)
		var kept []discovery.Candidate
		for _, candidate := range valid {
			switch {
			case req.FilterInLibrary && candidate.InLibrary:
				reject(candidate.Title, discovery.ReasonInLibrary)
			case req.FilterReReleases && candidate.ReRelease:
				reject(candidate.Title, discovery.ReasonReRelease)
			default:
				kept = append(kept, candidate)
			}
		}
		valid = kept
	}

	stats := map[string]any{
		"input":             input,
		"valid":             len(valid),
		"rejected":          len(rejected),
		"duplicates_merged": merged,
	}
	if len(breakdown) > 0 {
		stats["rejection_breakdown"] = breakdown
	}
	a.logger.InfoContext(ctx, "validation complete",
		"input", input, "valid", len(valid), "rejected", len(rejected), "merged", merged)

	return &discovery.Report{
		Agent:      discovery.AgentValidator,
		Tool:       discovery.ToolValidate,
		Status:     discovery.StatusSuccess,
		Summary:    fmt.Sprintf("validated %d candidates: %d valid, %d rejected", input, len(valid), len(rejected)),
		Candidates: valid,
		Rejected:   rejected,
		Stats:      stats,
		ElapsedMS:  time.Since(started).Milliseconds(),
	}, nil
}

// enrich looks each candidate up in the library concurrently and fills in
// identifiers, ratings, and release metadata. A failed lookup leaves that one
// candidate unenriched.
func (a *ValidatorAgent) enrich(ctx context.Context, candidates []discovery.Candidate) []discovery.Candidate {
	enriched := make([]discovery.Candidate, len(candidates))
	copy(enriched, candidates)
	currentYear := a.now().Year()

	workers := pool.New().WithMaxGoroutines(enrichConcurrency)
	for i := range enriched {
		workers.Go(func() {
			candidate := enriched[i]
			results, err := a.lookup.Lookup(ctx, candidate.Title)
			if err != nil || len(results) == 0 {
				if err != nil {
					a.logger.DebugContext(ctx, "enrichment lookup failed",
						logging.FieldCandidate, candidate.Title, "error", err)
				}
				if a.tmdb != nil {
					enriched[i] = a.enrichFromTMDB(ctx, candidate, currentYear)
				}
				return
			}
			enriched[i] = applyLookup(candidate, results[0], currentYear)
		})
	}
	workers.Wait()
	return enriched
}

// enrichFromTMDB resolves a candidate the library lookup could not: by IMDb
// id when the candidate carries one, by title search otherwise. Search
// results omit the IMDb id, so a details call recovers it.
func (a *ValidatorAgent) enrichFromTMDB(ctx context.Context, candidate discovery.Candidate, currentYear int) discovery.Candidate {
	var match *tmdb.Result
	if candidate.IMDBID != "" {
		resp, err := a.tmdb.FindByIMDB(ctx, candidate.IMDBID)
		if err != nil || len(resp.Results) == 0 {
			return candidate
		}
		match = &resp.Results[0]
	} else {
		resp, err := a.tmdb.SearchMovieWithOptions(ctx, candidate.Title, tmdb.SearchOptions{Year: candidate.Year})
		if err != nil || len(resp.Results) == 0 {
			return candidate
		}
		match = &resp.Results[0]
		if match.IMDBID == "" {
			if details, err := a.tmdb.GetMovieDetails(ctx, match.ID); err == nil && details != nil {
				match.IMDBID = details.IMDBID
			}
		}
	}

	candidate.TMDBID = match.ID
	if candidate.IMDBID == "" {
		candidate.IMDBID = match.IMDBID
	}
	candidate.ActualYear = match.Year()
	candidate.ReRelease = candidate.ActualYear > 0 && candidate.ActualYear < currentYear-reReleaseThresholdYears
	if candidate.Year == 0 {
		candidate.Year = candidate.ActualYear
	}
	if candidate.Overview == "" {
		candidate.Overview = match.Overview
	}
	candidate.Ratings = candidate.Ratings.Merge(ratings.FromTMDB(*match))
	return candidate
}

func applyLookup(candidate discovery.Candidate, lookup radarr.Movie, currentYear int) discovery.Candidate {
	candidate.TMDBID = lookup.TMDBID
	candidate.IMDBID = lookup.IMDBID
	candidate.InLibrary = lookup.InLibrary()
	candidate.ActualYear = lookup.Year
	candidate.ReRelease = lookup.Year > 0 && lookup.Year < currentYear-reReleaseThresholdYears
	candidate.OriginalLanguage = lookup.OriginalLanguage.Name
	if candidate.Year == 0 {
		candidate.Year = lookup.Year
	}
	candidate.Ratings = candidate.Ratings.Merge(ratings.FromRadarr(lookup))
	return candidate
}

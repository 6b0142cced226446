package api

import (
	"marquee/internal/discovery"
	"marquee/internal/quality"
	"marquee/internal/ratings"
	"marquee/internal/services/radarr"
	"marquee/internal/syncer"
)

// FromMovie converts a Radarr record into its transport form.
func FromMovie(movie radarr.Movie) MovieSummary {
	summary := MovieSummary{
		Title:     movie.Title,
		Year:      movie.Year,
		TMDBID:    movie.TMDBID,
		IMDBID:    movie.IMDBID,
		Overview:  movie.Overview,
		InLibrary: movie.InLibrary(),
	}
	if set := ratings.FromRadarr(movie); !set.IsEmpty() {
		summary.Ratings = set.Summary()
	}
	return summary
}

// FromVerdict converts a quality verdict into its transport form.
func FromVerdict(verdict quality.Verdict) QualityReport {
	report := QualityReport{
		Passed:    verdict.Passed,
		Threshold: verdict.Threshold,
		RedFlags:  verdict.RedFlags,
		Strengths: verdict.Strengths,
		Ratings:   verdict.Ratings.Summary(),
	}
	if verdict.HasScore {
		score := verdict.Score
		report.Score = &score
		report.Tier = string(verdict.Tier)
		report.TierLabel = verdict.Tier.Label()
	} else {
		report.InsufficientData = true
	}
	return report
}

// FromCandidate converts a discovery candidate into its transport form.
func FromCandidate(candidate discovery.Candidate) CandidateSummary {
	return CandidateSummary{
		Title:      candidate.Title,
		Year:       candidate.Year,
		Overview:   candidate.Overview,
		Confidence: candidate.Confidence,
		Sources:    candidate.Sources,
		TMDBID:     candidate.TMDBID,
		IMDBID:     candidate.IMDBID,
		InLibrary:  candidate.InLibrary,
		Reasoning:  candidate.Reasoning,
	}
}

// FromOutcome converts a sync outcome into its transport form.
func FromOutcome(outcome syncer.Outcome) SyncResult {
	result := SyncResult{
		Title:   outcome.Candidate.Title,
		State:   string(outcome.State),
		Success: outcome.State == syncer.StateAdded || outcome.State == syncer.StateResolvedExisting,
		Code:    outcome.Code(),
		Message: outcome.Message,
		DryRun:  outcome.DryRun,
	}
	if outcome.Movie != nil {
		movie := FromMovie(*outcome.Movie)
		result.Movie = &movie
	}
	if outcome.Verdict != nil {
		report := FromVerdict(*outcome.Verdict)
		result.Quality = &report
	}
	return result
}

// FromSummary converts a sync summary into its transport form.
func FromSummary(summary *syncer.Summary) SyncReport {
	report := SyncReport{
		DryRun:  summary.DryRun,
		Summary: summary.String(),
		Results: make([]SyncResult, 0, len(summary.Outcomes)),
	}
	for _, outcome := range summary.Outcomes {
		report.Results = append(report.Results, FromOutcome(outcome))
	}
	return report
}

// FromDiscovery converts a discovery result into its transport form.
func FromDiscovery(result *discovery.Result) DiscoveryReport {
	report := DiscoveryReport{
		Candidates:  make([]CandidateSummary, 0, len(result.Candidates)),
		Diagnostics: result.Diagnostics,
	}
	for _, candidate := range result.Candidates {
		report.Candidates = append(report.Candidates, FromCandidate(candidate))
	}
	return report
}

package discovery

import (
	"sort"

	"marquee/internal/ratings"
	"marquee/internal/textutil"
)

// Candidate is one title proposed for addition, carried through the agent
// pipeline and into sync. Identifiers and ratings fill in as enrichment runs;
// zero values mean unknown.
type Candidate struct {
	Title            string      `json:"title"`
	Year             int         `json:"year,omitempty"`
	Overview         string      `json:"overview,omitempty"`
	Confidence       float64     `json:"confidence,omitempty"`
	Sources          []string    `json:"sources,omitempty"`
	Rank             int         `json:"rank,omitempty"`
	TMDBID           int64       `json:"tmdb_id,omitempty"`
	IMDBID           string      `json:"imdb_id,omitempty"`
	Ratings          ratings.Set `json:"ratings,omitempty"`
	InLibrary        bool        `json:"in_library,omitempty"`
	ReRelease        bool        `json:"re_release,omitempty"`
	ActualYear       int         `json:"actual_year,omitempty"`
	OriginalLanguage string      `json:"original_language,omitempty"`
	Reasoning        string      `json:"reasoning,omitempty"`
}

// Key returns the normalized identity used for deduplication.
func (c Candidate) Key() string {
	return textutil.TitleKey(c.Title, c.Year)
}

// HasIdentifier reports whether the candidate carries a TMDB or IMDb id.
func (c Candidate) HasIdentifier() bool {
	return c.TMDBID > 0 || c.IMDBID != ""
}

// merge folds other into c: sources union, higher confidence wins, missing
// fields fill in.
func (c Candidate) merge(other Candidate) Candidate {
	for _, source := range other.Sources {
		if !containsString(c.Sources, source) {
			c.Sources = append(c.Sources, source)
		}
	}
	if other.Confidence > c.Confidence {
		c.Confidence = other.Confidence
	}
	if c.Year == 0 {
		c.Year = other.Year
	}
	if c.Overview == "" {
		c.Overview = other.Overview
	}
	if c.TMDBID == 0 {
		c.TMDBID = other.TMDBID
	}
	if c.IMDBID == "" {
		c.IMDBID = other.IMDBID
	}
	if c.Rank == 0 || (other.Rank > 0 && other.Rank < c.Rank) {
		c.Rank = other.Rank
	}
	c.Ratings = c.Ratings.Merge(other.Ratings)
	return c
}

// Deduplicate collapses candidates that refer to the same release, merging
// sources and metadata. A shared TMDB or IMDb id is the strongest identity
// signal and trumps title comparison (retitled re-listings of the same
// release still collapse); otherwise matching is year-tolerant: an entry
// without a year collapses into a dated one with the same normalized title.
// Order of first appearance is preserved.
func Deduplicate(candidates []Candidate) []Candidate {
	var out []Candidate
	for _, candidate := range candidates {
		merged := false
		key := candidate.Key()
		for i := range out {
			if sameIdentifier(out[i], candidate) || textutil.MatchesKey(out[i].Key(), key) {
				out[i] = out[i].merge(candidate)
				merged = true
				break
			}
		}
		if !merged {
			out = append(out, candidate)
		}
	}
	return out
}

func sameIdentifier(a, b Candidate) bool {
	if a.TMDBID > 0 && a.TMDBID == b.TMDBID {
		return true
	}
	return a.IMDBID != "" && a.IMDBID == b.IMDBID
}

// SortByAppeal orders candidates by corroboration and quality signals:
// more sources first, then chart rank, then confidence. Used by the
// deterministic pipeline when no ranking model is available.
func SortByAppeal(candidates []Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if len(a.Sources) != len(b.Sources) {
			return len(a.Sources) > len(b.Sources)
		}
		if a.Rank != b.Rank {
			if a.Rank == 0 {
				return false
			}
			if b.Rank == 0 {
				return true
			}
			return a.Rank < b.Rank
		}
		return a.Confidence > b.Confidence
	})
}

// Truncate limits the slice to at most limit entries; limit <= 0 means no
// limit.
func Truncate(candidates []Candidate, limit int) []Candidate {
	if limit > 0 && len(candidates) > limit {
		return candidates[:limit]
	}
	return candidates
}

func containsString(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}

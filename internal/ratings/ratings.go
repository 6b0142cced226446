package ratings

import (
	"fmt"
	"math"
	"strings"
)

// Score is a 0-10 scale rating with a vote count, as reported by IMDb and
// TMDB.
type Score struct {
	Value float64 `json:"value"`
	Votes int64   `json:"votes"`
}

// Set collects every provider score known for one movie. Nil means the
// provider did not report; it never means zero.
type Set struct {
	IMDB       *Score `json:"imdb,omitempty"`
	TMDB       *Score `json:"tmdb,omitempty"`
	RTCritics  *int   `json:"rt_critics,omitempty"`
	RTAudience *int   `json:"rt_audience,omitempty"`
	Metacritic *int   `json:"metacritic,omitempty"`
}

// IsEmpty reports whether no provider produced a score.
func (s Set) IsEmpty() bool {
	return s.IMDB == nil && s.TMDB == nil && s.RTCritics == nil && s.RTAudience == nil && s.Metacritic == nil
}

// SourceCount returns how many providers reported.
func (s Set) SourceCount() int {
	count := 0
	if s.IMDB != nil {
		count++
	}
	if s.TMDB != nil {
		count++
	}
	if s.RTCritics != nil {
		count++
	}
	if s.RTAudience != nil {
		count++
	}
	if s.Metacritic != nil {
		count++
	}
	return count
}

// Merge fills absent fields from other without overwriting fields this set
// already has. Earlier sources win.
func (s Set) Merge(other Set) Set {
	if s.IMDB == nil {
		s.IMDB = other.IMDB
	}
	if s.TMDB == nil {
		s.TMDB = other.TMDB
	}
	if s.RTCritics == nil {
		s.RTCritics = other.RTCritics
	}
	if s.RTAudience == nil {
		s.RTAudience = other.RTAudience
	}
	if s.Metacritic == nil {
		s.Metacritic = other.Metacritic
	}
	return s
}

// Summary renders a compact human-readable line, with N/A for absent
// providers.
func (s Set) Summary() string {
	imdb := "N/A"
	if s.IMDB != nil {
		imdb = fmt.Sprintf("%.1f/10 (%d votes)", s.IMDB.Value, s.IMDB.Votes)
	}
	critics := "N/A"
	if s.RTCritics != nil {
		critics = fmt.Sprintf("%d%%", *s.RTCritics)
	}
	audience := "N/A"
	if s.RTAudience != nil {
		audience = fmt.Sprintf("%d%%", *s.RTAudience)
	}
	metacritic := "N/A"
	if s.Metacritic != nil {
		metacritic = fmt.Sprintf("%d", *s.Metacritic)
	}
	var builder strings.Builder
	builder.WriteString("IMDb ")
	builder.WriteString(imdb)
	builder.WriteString(", RT ")
	builder.WriteString(critics)
	builder.WriteString("/")
	builder.WriteString(audience)
	builder.WriteString(", MC ")
	builder.WriteString(metacritic)
	return builder.String()
}

// IntPtr returns a pointer to v, clamped to the 0-100 percent range.
func IntPtr(v int) *int {
	if v < 0 {
		v = 0
	}
	if v > 100 {
		v = 100
	}
	return &v
}

// ScorePtr returns a pointer to a Score, rounding the value to one decimal.
func ScorePtr(value float64, votes int64) *Score {
	return &Score{Value: math.Round(value*10) / 10, Votes: votes}
}

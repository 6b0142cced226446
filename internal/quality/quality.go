package quality

import (
	"fmt"
	"math"

	"marquee/internal/ratings"
)

// DefaultThreshold is the pass/fail cutoff used when the caller does not
// supply one.
const DefaultThreshold = 5.0

// Provider weights. Rotten Tomatoes carries the most weight; IMDb starts low
// but becomes the dominant signal once its vote count makes it the most
// reliable general-audience measure available.
const (
	weightRTCritics  = 0.35
	weightRTAudience = 0.30
	weightMetacritic = 0.20
	weightIMDBBase   = 0.15
	weightIMDBProven = 0.60

	provenVotes     = 50000
	lowVotes        = 5000
	veryLowVotes    = 1000
	negligibleVotes = 500
)

// Score caps for sparse data. A single provider can never push a title into
// the recommended tiers on its own.
const (
	capSingleSource     = 6.5
	capSingleSourceThin = 5.5
	capNoAudience       = 7.0
)

// Tier is the qualitative recommendation band derived from the score.
type Tier string

const (
	TierHighlyRecommended Tier = "highly_recommended"
	TierRecommended       Tier = "recommended"
	TierGood              Tier = "good"
	TierMixed             Tier = "mixed"
	TierNotRecommended    Tier = "not_recommended"
	TierUnknown           Tier = "unknown"
)

// Label returns the human-readable recommendation for a tier.
func (t Tier) Label() string {
	switch t {
	case TierHighlyRecommended:
		return "HIGHLY RECOMMENDED - excellent quality across all metrics"
	case TierRecommended:
		return "RECOMMENDED - strong quality, worth adding"
	case TierGood:
		return "GOOD - above average, suitable for library"
	case TierMixed:
		return "MIXED - some concerns, review manually"
	case TierNotRecommended:
		return "NOT RECOMMENDED - quality concerns, likely skip"
	default:
		return "UNKNOWN - insufficient rating data"
	}
}

// Verdict is the quality analysis result for one title.
type Verdict struct {
	Score     float64  `json:"score"`
	HasScore  bool     `json:"has_score"`
	Passed    bool     `json:"passed"`
	Threshold float64  `json:"threshold"`
	Tier      Tier     `json:"tier"`
	RedFlags  []string `json:"red_flags,omitempty"`
	Strengths []string `json:"strengths,omitempty"`
	Ratings   ratings.Set `json:"ratings"`
}

// InsufficientData reports whether no provider produced a usable score. Such
// verdicts always fail the gate; callers wanting to add anyway must bypass
// quality analysis explicitly.
func (v Verdict) InsufficientData() bool {
	return !v.HasScore
}

// Analyzer computes quality verdicts against a configured threshold.
type Analyzer struct {
	threshold float64
}

// NewAnalyzer creates an Analyzer. A non-positive threshold selects
// DefaultThreshold.
func NewAnalyzer(threshold float64) *Analyzer {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Analyzer{threshold: threshold}
}

// Threshold returns the configured pass/fail cutoff.
func (a *Analyzer) Threshold() float64 {
	return a.threshold
}

// Analyze computes the verdict for one title's ratings. The score is a
// weighted mean over present providers only, with weights renormalized to
// sum to 1; absent providers never count as zero.
func (a *Analyzer) Analyze(set ratings.Set) Verdict {
	verdict := Verdict{
		Threshold: a.threshold,
		RedFlags:  DetectRedFlags(set),
		Strengths: IdentifyStrengths(set),
		Ratings:   set,
	}

	type weighted struct {
		value  float64
		weight float64
	}
	var parts []weighted
	if set.RTCritics != nil {
		parts = append(parts, weighted{float64(*set.RTCritics) / 10, weightRTCritics})
	}
	if set.RTAudience != nil {
		parts = append(parts, weighted{float64(*set.RTAudience) / 10, weightRTAudience})
	}
	if set.Metacritic != nil {
		parts = append(parts, weighted{float64(*set.Metacritic) / 10, weightMetacritic})
	}
	if set.IMDB != nil {
		weight := weightIMDBBase
		switch {
		case set.IMDB.Votes >= provenVotes:
			weight = weightIMDBProven
		case set.IMDB.Votes < veryLowVotes:
			weight *= 0.5
		case set.IMDB.Votes < lowVotes:
			weight *= 0.75
		}
		parts = append(parts, weighted{set.IMDB.Value, weight})
	}

	if len(parts) == 0 {
		verdict.Tier = TierUnknown
		return verdict
	}

	var sum, totalWeight float64
	for _, part := range parts {
		sum += part.value * part.weight
		totalWeight += part.weight
	}
	score := sum / totalWeight
	score = a.capSparse(score, set, len(parts))
	score = math.Round(score*10) / 10

	verdict.Score = score
	verdict.HasScore = true
	verdict.Passed = score >= a.threshold
	verdict.Tier = tierFor(score)
	return verdict
}

// capSparse limits how high sparse rating data can score. One provider alone
// caps at "good"; one thin IMDb signal caps below the default gate; two
// providers with no audience signal cap at "recommended".
func (a *Analyzer) capSparse(score float64, set ratings.Set, sources int) float64 {
	switch sources {
	case 1:
		onlyThinIMDB := set.IMDB != nil && set.IMDB.Votes < negligibleVotes
		if onlyThinIMDB {
			return math.Min(score, capSingleSourceThin)
		}
		return math.Min(score, capSingleSource)
	case 2:
		hasAudience := set.RTAudience != nil || (set.IMDB != nil && set.IMDB.Votes >= veryLowVotes)
		if !hasAudience {
			return math.Min(score, capNoAudience)
		}
	}
	return score
}

func tierFor(score float64) Tier {
	switch {
	case score >= 8.0:
		return TierHighlyRecommended
	case score >= 7.0:
		return TierRecommended
	case score >= 6.0:
		return TierGood
	case score >= 5.0:
		return TierMixed
	default:
		return TierNotRecommended
	}
}

// Summary renders a one-line description of the verdict.
func (v Verdict) Summary() string {
	if !v.HasScore {
		return fmt.Sprintf("insufficient data (%d red flags)", len(v.RedFlags))
	}
	state := "failed"
	if v.Passed {
		state = "passed"
	}
	return fmt.Sprintf("%.1f/10 (%s gate at %.1f, %s)", v.Score, state, v.Threshold, v.Tier)
}

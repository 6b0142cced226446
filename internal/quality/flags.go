package quality

import (
	"fmt"

	"marquee/internal/ratings"
)

// Red flag floors for individual providers.
const (
	floorIMDB          = 6.0
	floorCriticsPoor   = 40
	floorCriticsAwful  = 20
	floorAudience      = 50
	floorMetacritic    = 50
	gapDelta           = 30
	consensusDelta     = 10
	strongVotes        = 50000
	strongIMDB         = 7.0
	excellentIMDB      = 7.5
	freshCritics       = 70
	certifiedCritics   = 80
	strongAudience     = 80
	strongMetacritic   = 75
)

// DetectRedFlags evaluates each flag rule against the providers it reads.
// Rules are independent: removing one provider only removes the flags that
// read it.
func DetectRedFlags(set ratings.Set) []string {
	var flags []string

	if set.IMDB != nil {
		switch {
		case set.IMDB.Votes < veryLowVotes:
			flags = append(flags, fmt.Sprintf("very low IMDb vote count (%d), rating unreliable", set.IMDB.Votes))
		case set.IMDB.Votes < lowVotes:
			flags = append(flags, fmt.Sprintf("low IMDb vote count (%d), limited audience data", set.IMDB.Votes))
		}
		if set.IMDB.Value < floorIMDB {
			flags = append(flags, fmt.Sprintf("low IMDb rating (%.1f/10)", set.IMDB.Value))
		}
	}

	if set.RTCritics != nil {
		switch {
		case *set.RTCritics < floorCriticsAwful:
			flags = append(flags, fmt.Sprintf("critic score very poor (%d%%)", *set.RTCritics))
		case *set.RTCritics < floorCriticsPoor:
			flags = append(flags, fmt.Sprintf("poor critic score (%d%%)", *set.RTCritics))
		}
	}

	if set.RTAudience != nil && *set.RTAudience < floorAudience {
		flags = append(flags, fmt.Sprintf("poor audience score (%d%%)", *set.RTAudience))
	}

	if set.Metacritic != nil && *set.Metacritic < floorMetacritic {
		flags = append(flags, fmt.Sprintf("poor Metacritic score (%d/100)", *set.Metacritic))
	}

	if gap, ok := criticAudienceGap(set); ok && gap > gapDelta {
		flags = append(flags, fmt.Sprintf("large critic/audience gap (%d points), divisive reception", gap))
	}

	if set.IsEmpty() {
		flags = append(flags, "no ratings available, unreleased or unreviewed")
	} else if set.RTCritics != nil && set.RTAudience == nil && (set.IMDB == nil || set.IMDB.Votes < veryLowVotes) {
		flags = append(flags, "critics-only rating, no audience data to confirm general appeal")
	}

	return flags
}

// criticAudienceGap returns the widest divergence between any critic-side
// signal (RT critics, Metacritic) and any audience-side signal (RT audience,
// IMDb scaled to percent). Both sides must have at least one signal.
func criticAudienceGap(set ratings.Set) (int, bool) {
	var critics, audience []int
	if set.RTCritics != nil {
		critics = append(critics, *set.RTCritics)
	}
	if set.Metacritic != nil {
		critics = append(critics, *set.Metacritic)
	}
	if set.RTAudience != nil {
		audience = append(audience, *set.RTAudience)
	}
	if set.IMDB != nil && set.IMDB.Votes >= veryLowVotes {
		audience = append(audience, int(set.IMDB.Value*10))
	}
	if len(critics) == 0 || len(audience) == 0 {
		return 0, false
	}
	widest := 0
	for _, c := range critics {
		for _, a := range audience {
			gap := c - a
			if gap < 0 {
				gap = -gap
			}
			if gap > widest {
				widest = gap
			}
		}
	}
	return widest, true
}

// IdentifyStrengths lists positive findings for display alongside red flags.
// Strengths never affect the numeric score.
func IdentifyStrengths(set ratings.Set) []string {
	var strengths []string

	if set.IMDB != nil {
		if set.IMDB.Votes > strongVotes {
			strengths = append(strengths, fmt.Sprintf("high IMDb vote count (%d), reliable rating", set.IMDB.Votes))
		}
		switch {
		case set.IMDB.Value >= excellentIMDB:
			strengths = append(strengths, fmt.Sprintf("excellent IMDb rating (%.1f/10)", set.IMDB.Value))
		case set.IMDB.Value >= strongIMDB:
			strengths = append(strengths, fmt.Sprintf("good IMDb rating (%.1f/10)", set.IMDB.Value))
		}
	}

	if set.RTCritics != nil {
		switch {
		case *set.RTCritics >= certifiedCritics:
			strengths = append(strengths, fmt.Sprintf("certified fresh critic score (%d%%)", *set.RTCritics))
		case *set.RTCritics >= freshCritics:
			strengths = append(strengths, fmt.Sprintf("fresh critic score (%d%%)", *set.RTCritics))
		}
	}

	if set.RTAudience != nil && *set.RTAudience >= strongAudience {
		strengths = append(strengths, fmt.Sprintf("strong audience approval (%d%%)", *set.RTAudience))
	}

	if set.Metacritic != nil && *set.Metacritic >= strongMetacritic {
		strengths = append(strengths, fmt.Sprintf("strong Metacritic score (%d/100)", *set.Metacritic))
	}

	if set.RTCritics != nil && set.RTAudience != nil {
		gap := *set.RTCritics - *set.RTAudience
		if gap < 0 {
			gap = -gap
		}
		if gap < consensusDelta {
			strengths = append(strengths, "critics and audience agree on quality")
		}
	}

	return strengths
}

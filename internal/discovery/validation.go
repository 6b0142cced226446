package discovery

import (
	"regexp"
	"strings"
)

// RejectionReason is the fixed exclusion taxonomy for candidates removed
// during validation.
type RejectionReason string

const (
	ReasonTooShort      RejectionReason = "too_short"
	ReasonTooLong       RejectionReason = "too_long"
	ReasonOnlyNumbers   RejectionReason = "only_numbers"
	ReasonYearOnly      RejectionReason = "year_only"
	ReasonAllCapsShort  RejectionReason = "all_caps_short"
	ReasonRatingText    RejectionReason = "rating_text"
	ReasonUIElement     RejectionReason = "ui_element"
	ReasonNavigation    RejectionReason = "navigation_text"
	ReasonStreaming     RejectionReason = "streaming_text"
	ReasonPlaceholder   RejectionReason = "generic_placeholder"
	ReasonCollection    RejectionReason = "collection"
	ReasonConcert       RejectionReason = "concert_film"
	ReasonLowConfidence RejectionReason = "low_confidence"
	ReasonInLibrary     RejectionReason = "in_library"
	ReasonReRelease     RejectionReason = "re_release"
	ReasonForeign       RejectionReason = "foreign"
)

var (
	onlyNumbersRe  = regexp.MustCompile(`^\d+$`)
	yearOnlyRe     = regexp.MustCompile(`^(19|20)\d{2}$`)
	allCapsShortRe = regexp.MustCompile(`^[A-Z]{2,4}$`)
	ratioRe        = regexp.MustCompile(`^\d+(\.\d+)?/\d+$`)

	ratingWords = []string{
		"rating", "score", "review", "critic", "audience",
		"tomatometer", "popcornmeter", "metascore", "rotten", "certified fresh",
	}
	uiWords = []string{
		"sign in", "log in", "sign up", "register", "subscribe",
		"view all", "see all", "see more", "loading", "menu",
	}
	navigationWords = []string{
		"trailer", "teaser", "featurette", "behind the scenes",
		"interview", "red carpet", "privacy policy",
	}
	streamingWords = []string{
		"watch now", "stream", "available", "free trial", "on demand",
		"coming soon", "in theaters", "blu-ray", "dvd",
	}
	placeholderWords = []string{
		"untitled", "unknown", "tba", "tbd", "n/a",
	}
	collectionWords = []string{
		"collection", "complete series", "trilogy", "quadrilogy",
		"box set", "anthology", "marathon", "double feature",
	}
	concertWords = []string{
		"in concert", "concert film", "live at", "world tour",
		"the tour", "sing-along", "fan event", "anniversary screening",
	}
)

// ValidateTitle applies the rule-based exclusion taxonomy to one title.
// It returns the cleaned title and, when invalid, the rejection reason.
func ValidateTitle(title string) (string, RejectionReason, bool) {
	cleaned := cleanScraped(title)
	lower := strings.ToLower(cleaned)

	switch {
	case len(cleaned) < 2:
		return cleaned, ReasonTooShort, false
	case len(cleaned) > 80:
		return cleaned, ReasonTooLong, false
	case strings.Contains(cleaned, "%"), ratioRe.MatchString(cleaned):
		return cleaned, ReasonRatingText, false
	case yearOnlyRe.MatchString(cleaned):
		return cleaned, ReasonYearOnly, false
	case onlyNumbersRe.MatchString(cleaned):
		return cleaned, ReasonOnlyNumbers, false
	case allCapsShortRe.MatchString(cleaned):
		return cleaned, ReasonAllCapsShort, false
	}

	if containsAny(lower, ratingWords) {
		return cleaned, ReasonRatingText, false
	}
	if containsAny(lower, uiWords) {
		return cleaned, ReasonUIElement, false
	}
	if containsAny(lower, navigationWords) {
		return cleaned, ReasonNavigation, false
	}
	if containsAny(lower, streamingWords) {
		return cleaned, ReasonStreaming, false
	}
	for _, word := range placeholderWords {
		if lower == word {
			return cleaned, ReasonPlaceholder, false
		}
	}
	if containsAny(lower, collectionWords) {
		return cleaned, ReasonCollection, false
	}
	if containsAny(lower, concertWords) {
		return cleaned, ReasonConcert, false
	}

	return cleaned, "", true
}

// cleanScraped strips markdown artifacts and trailing punctuation that
// scraped titles carry.
func cleanScraped(title string) string {
	title = strings.NewReplacer("**", "", "*", "", "__", "", "_", " ").Replace(title)
	title = strings.TrimRight(title, ".,;:-")
	return strings.Join(strings.Fields(title), " ")
}

func containsAny(haystack string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(haystack, needle) {
			return true
		}
	}
	return false
}

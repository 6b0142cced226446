package textutil

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

var (
	rankPrefixPattern   = regexp.MustCompile(`^\d{1,3}\.\s+`)
	trailingYearPattern = regexp.MustCompile(`\s*\((19|20)\d{2}\)\s*$`)
	caseFolder          = cases.Fold()
)

// CleanTitle strips chart rank prefixes ("12. Title") and trailing year
// annotations ("Title (2025)") and collapses internal whitespace. It does not
// change casing; use NormalizeTitle for comparison keys.
func CleanTitle(title string) string {
	title = strings.TrimSpace(title)
	title = rankPrefixPattern.ReplaceAllString(title, "")
	title = trailingYearPattern.ReplaceAllString(title, "")
	return strings.Join(strings.Fields(title), " ")
}

// TrailingYear extracts a trailing "(YYYY)" annotation if present, returning
// the year and true when found.
func TrailingYear(title string) (int, bool) {
	match := trailingYearPattern.FindString(title)
	if match == "" {
		return 0, false
	}
	digits := strings.Trim(strings.TrimSpace(match), "()")
	year, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return year, true
}

// NormalizeTitle reduces a title to a canonical comparison form: case-folded,
// punctuation removed, leading English articles stripped, whitespace
// collapsed. "The Matrix" and "matrix" normalize identically.
func NormalizeTitle(title string) string {
	title = caseFolder.String(CleanTitle(title))
	var b strings.Builder
	b.Grow(len(title))
	for _, r := range title {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '-' || r == ':' || r == '/':
			b.WriteByte(' ')
		}
	}
	normalized := strings.Join(strings.Fields(b.String()), " ")
	for _, article := range []string{"the ", "a ", "an "} {
		if strings.HasPrefix(normalized, article) && len(normalized) > len(article) {
			normalized = normalized[len(article):]
			break
		}
	}
	return normalized
}

// TitleKey builds a deduplication key from a normalized title and optional
// year. Year 0 means unknown; unknown-year keys match any year via the
// title-only prefix, which callers compare with MatchesKey.
func TitleKey(title string, year int) string {
	normalized := NormalizeTitle(title)
	if year <= 0 {
		return normalized
	}
	return normalized + "|" + strconv.Itoa(year)
}

// MatchesKey reports whether two title keys refer to the same release. Keys
// match when identical, or when one side lacks a year and the titles agree,
// or when both carry years at most one year apart (region-dependent release
// dates shift across New Year boundaries).
func MatchesKey(a, b string) bool {
	if a == b {
		return true
	}
	titleA, yearA := splitKey(a)
	titleB, yearB := splitKey(b)
	if titleA != titleB {
		return false
	}
	if yearA == 0 || yearB == 0 {
		return true
	}
	diff := yearA - yearB
	if diff < 0 {
		diff = -diff
	}
	return diff <= 1
}

func splitKey(key string) (string, int) {
	idx := strings.LastIndexByte(key, '|')
	if idx < 0 {
		return key, 0
	}
	year, err := strconv.Atoi(key[idx+1:])
	if err != nil {
		return key, 0
	}
	return key[:idx], year
}

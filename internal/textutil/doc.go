// Package textutil provides movie title normalization helpers shared by
// discovery and sync.
//
// Titles arrive from scraped charts, LLM output, and Radarr lookups with
// inconsistent casing, punctuation, rank prefixes, and trailing year
// annotations. NormalizeTitle and TitleKey reduce them to stable comparison
// keys so duplicate detection behaves the same everywhere.
package textutil

// Package ratings models per-provider movie scores and fetches them from
// Radarr's lookup payload and TMDB. Every provider field is optional: an
// absent score is distinct from a zero score, and downstream quality analysis
// only weighs providers that actually reported.
package ratings

// Package radarr wraps the Radarr v3 API surface marquee needs: metadata
// lookup (by search term or tmdb:/imdb: prefixed identifier), library
// listing, quality profile and root folder enumeration, and movie addition.
//
// Lookup responses double as the rating source for quality analysis: Radarr
// proxies IMDb, Rotten Tomatoes, Metacritic, and TMDB ratings in its lookup
// payload, so one call serves both identification and enrichment.
//
// Add requests retry on transient failures (5xx, network) with exponential
// backoff; 4xx responses are returned immediately since retrying a rejected
// payload cannot succeed.
package radarr

// Package tmdb provides a thin client for The Movie Database API, scoped to
// the movie search and detail calls identification needs. It resolves titles
// to canonical TMDB identifiers and supplies TMDB community scores as a
// rating source.
package tmdb

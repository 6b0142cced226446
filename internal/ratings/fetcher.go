package ratings

import (
	"context"
	"errors"

	"marquee/internal/identification/tmdb"
	"marquee/internal/services"
	"marquee/internal/services/radarr"
	"marquee/internal/textutil"
)

// Fetcher resolves provider scores for a title/year pair.
type Fetcher interface {
	Fetch(ctx context.Context, title string, year int) (Set, error)
}

// FromRadarr converts the ratings block of a Radarr lookup result. Radarr
// reports zero for unknown scores, so zeros are treated as absent. Radarr's
// rottenTomatoes entry is the critic score; audience scores are not exposed.
func FromRadarr(movie radarr.Movie) Set {
	var set Set
	if r := movie.Ratings.IMDB; r != nil && r.Value > 0 {
		set.IMDB = ScorePtr(r.Value, r.Votes)
	}
	if r := movie.Ratings.TMDB; r != nil && r.Value > 0 {
		set.TMDB = ScorePtr(r.Value, r.Votes)
	}
	if r := movie.Ratings.RottenTomatoes; r != nil && r.Value > 0 {
		set.RTCritics = IntPtr(int(r.Value))
	}
	if r := movie.Ratings.Metacritic; r != nil && r.Value > 0 {
		set.Metacritic = IntPtr(int(r.Value))
	}
	return set
}

// FromTMDB converts a TMDB result's community score.
func FromTMDB(result tmdb.Result) Set {
	var set Set
	if result.VoteAverage > 0 {
		set.TMDB = ScorePtr(result.VoteAverage, result.VoteCount)
	}
	return set
}

// RadarrLookuper is the Radarr surface the fetcher needs.
type RadarrLookuper interface {
	Lookup(ctx context.Context, term string) ([]radarr.Movie, error)
}

// RadarrFetcher sources ratings from Radarr's metadata lookup.
type RadarrFetcher struct {
	client RadarrLookuper
}

// NewRadarrFetcher wraps a Radarr client as a rating source.
func NewRadarrFetcher(client RadarrLookuper) *RadarrFetcher {
	return &RadarrFetcher{client: client}
}

// Fetch looks the title up in Radarr and converts the best match's ratings.
// The lookup result whose title and year match wins; otherwise the first
// result is taken, mirroring Radarr's own relevance ordering.
func (f *RadarrFetcher) Fetch(ctx context.Context, title string, year int) (Set, error) {
	results, err := f.client.Lookup(ctx, title)
	if err != nil {
		return Set{}, services.Wrap(services.ErrSourceUnavailable, "ratings", "radarr_lookup", "radarr lookup failed", err)
	}
	if len(results) == 0 {
		return Set{}, services.Wrap(services.ErrNotFound, "ratings", "radarr_lookup", "no radarr matches for "+title, nil)
	}
	want := textutil.TitleKey(title, year)
	best := results[0]
	for _, candidate := range results {
		if textutil.MatchesKey(want, textutil.TitleKey(candidate.Title, candidate.Year)) {
			best = candidate
			break
		}
	}
	return FromRadarr(best), nil
}

// TMDBFetcher sources the TMDB community score via search.
type TMDBFetcher struct {
	searcher tmdb.Searcher
}

// NewTMDBFetcher wraps a TMDB client as a rating source.
func NewTMDBFetcher(searcher tmdb.Searcher) *TMDBFetcher {
	return &TMDBFetcher{searcher: searcher}
}

// Fetch searches TMDB and converts the top match's community score.
func (f *TMDBFetcher) Fetch(ctx context.Context, title string, year int) (Set, error) {
	resp, err := f.searcher.SearchMovieWithOptions(ctx, title, tmdb.SearchOptions{Year: year})
	if err != nil {
		return Set{}, services.Wrap(services.ErrSourceUnavailable, "ratings", "tmdb_search", "tmdb search failed", err)
	}
	if len(resp.Results) == 0 {
		return Set{}, services.Wrap(services.ErrNotFound, "ratings", "tmdb_search", "no tmdb matches for "+title, nil)
	}
	return FromTMDB(resp.Results[0]), nil
}

// CombinedFetcher queries fetchers in order and merges their sets, earlier
// fetchers winning on conflicts. A fetcher error is tolerated as long as at
// least one fetcher produced scores.
type CombinedFetcher struct {
	fetchers []Fetcher
}

// NewCombinedFetcher builds a fetcher chain.
func NewCombinedFetcher(fetchers ...Fetcher) *CombinedFetcher {
	return &CombinedFetcher{fetchers: fetchers}
}

// Fetch merges results across the chain.
func (f *CombinedFetcher) Fetch(ctx context.Context, title string, year int) (Set, error) {
	var merged Set
	var firstErr error
	succeeded := false
	for _, fetcher := range f.fetchers {
		set, err := fetcher.Fetch(ctx, title, year)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		succeeded = true
		merged = merged.Merge(set)
	}
	if !succeeded {
		if firstErr != nil {
			return Set{}, firstErr
		}
		return Set{}, errors.New("no rating fetchers configured")
	}
	return merged, nil
}

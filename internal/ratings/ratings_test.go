package ratings_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"marquee/internal/ratings"
	"marquee/internal/services"
	"marquee/internal/services/radarr"
)

func TestFromRadarrTreatsZeroAsAbsent(t *testing.T) {
	movie := radarr.Movie{
		Title: "Heat",
		Year:  1995,
		Ratings: radarr.Ratings{
			IMDB:           &radarr.Rating{Value: 8.3, Votes: 750000},
			RottenTomatoes: &radarr.Rating{Value: 0},
			Metacritic:     &radarr.Rating{Value: 76},
		},
	}
	set := ratings.FromRadarr(movie)
	if set.IMDB == nil || set.IMDB.Value != 8.3 || set.IMDB.Votes != 750000 {
		t.Fatalf("imdb not converted: %+v", set.IMDB)
	}
	if set.RTCritics != nil {
		t.Fatal("zero rotten tomatoes score should be absent, not zero")
	}
	if set.Metacritic == nil || *set.Metacritic != 76 {
		t.Fatalf("metacritic not converted: %+v", set.Metacritic)
	}
	if set.RTAudience != nil {
		t.Fatal("radarr never reports audience scores")
	}
	if set.SourceCount() != 2 {
		t.Fatalf("expected 2 sources, got %d", set.SourceCount())
	}
}

func TestMergeDoesNotOverwrite(t *testing.T) {
	base := ratings.Set{RTCritics: ratings.IntPtr(87)}
	other := ratings.Set{RTCritics: ratings.IntPtr(12), RTAudience: ratings.IntPtr(90)}
	merged := base.Merge(other)
	if *merged.RTCritics != 87 {
		t.Fatalf("merge overwrote existing critics score: %d", *merged.RTCritics)
	}
	if merged.RTAudience == nil || *merged.RTAudience != 90 {
		t.Fatalf("merge did not fill audience score: %+v", merged.RTAudience)
	}
}

func TestSummaryShowsAbsentAsNA(t *testing.T) {
	set := ratings.Set{IMDB: ratings.ScorePtr(7.25, 1200)}
	got := set.Summary()
	want := "IMDb 7.2/10 (1200 votes), RT N/A/N/A, MC N/A"
	if got != want {
		t.Fatalf("summary = %q, want %q", got, want)
	}
}

type scriptedFetcher struct {
	calls int
	set   ratings.Set
	err   error
}

func (f *scriptedFetcher) Fetch(_ context.Context, _ string, _ int) (ratings.Set, error) {
	f.calls++
	if f.err != nil {
		return ratings.Set{}, f.err
	}
	return f.set, nil
}

func TestCombinedFetcherMergesAndToleratesPartialFailure(t *testing.T) {
	down := &scriptedFetcher{err: services.Wrap(services.ErrSourceUnavailable, "ratings", "radarr_lookup", "down", nil)}
	up := &scriptedFetcher{set: ratings.Set{TMDB: ratings.ScorePtr(7.8, 5000)}}
	combined := ratings.NewCombinedFetcher(down, up)

	set, err := combined.Fetch(context.Background(), "Heat", 1995)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if set.TMDB == nil || set.TMDB.Value != 7.8 {
		t.Fatalf("expected tmdb score from surviving fetcher, got %+v", set)
	}
}

func TestCombinedFetcherReportsTotalFailure(t *testing.T) {
	down := &scriptedFetcher{err: services.Wrap(services.ErrSourceUnavailable, "ratings", "radarr_lookup", "down", nil)}
	combined := ratings.NewCombinedFetcher(down)
	if _, err := combined.Fetch(context.Background(), "Heat", 1995); !errors.Is(err, services.ErrSourceUnavailable) {
		t.Fatalf("expected source unavailable, got %v", err)
	}
}

func TestCachedFetcherMemoizesSuccessOnly(t *testing.T) {
	inner := &scriptedFetcher{err: errors.New("boom")}
	cached := ratings.NewCachedFetcher(inner, time.Minute)

	if _, err := cached.Fetch(context.Background(), "Heat", 1995); err == nil {
		t.Fatal("expected error from inner fetcher")
	}
	inner.err = nil
	inner.set = ratings.Set{Metacritic: ratings.IntPtr(76)}
	for range 3 {
		set, err := cached.Fetch(context.Background(), "Heat", 1995)
		if err != nil {
			t.Fatalf("Fetch: %v", err)
		}
		if set.Metacritic == nil || *set.Metacritic != 76 {
			t.Fatalf("unexpected cached set %+v", set)
		}
	}
	if inner.calls != 2 {
		t.Fatalf("expected 1 failed + 1 successful inner call, got %d", inner.calls)
	}

	// Different years are distinct cache entries.
	if _, err := cached.Fetch(context.Background(), "Heat", 1986); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if inner.calls != 3 {
		t.Fatalf("expected separate entry per year, got %d calls", inner.calls)
	}
}

package discovery_test

import (
	"testing"

	"marquee/internal/discovery"
)

func TestDeduplicateMergesMetadata(t *testing.T) {
	candidates := []discovery.Candidate{
		{Title: "The Long Walk", Year: 2025, Confidence: 0.8, Rank: 4, Sources: []string{"imdb_chart"}},
		{Title: "the long walk", Year: 2025, Confidence: 0.9, Rank: 2, Sources: []string{"web_search"}, Overview: "Dystopian contest."},
		{Title: "Mercy", Year: 2026, Confidence: 0.7, Sources: []string{"rt_theaters"}},
	}
	out := discovery.Deduplicate(candidates)
	if len(out) != 2 {
		t.Fatalf("got %d candidates, want 2", len(out))
	}
	merged := out[0]
	if merged.Title != "The Long Walk" {
		t.Errorf("first appearance should win the display title, got %q", merged.Title)
	}
	if len(merged.Sources) != 2 {
		t.Errorf("sources = %v, want union", merged.Sources)
	}
	if merged.Confidence != 0.9 {
		t.Errorf("confidence = %v, want max", merged.Confidence)
	}
	if merged.Rank != 2 {
		t.Errorf("rank = %d, want lowest nonzero", merged.Rank)
	}
	if merged.Overview != "Dystopian contest." {
		t.Errorf("overview not filled in: %q", merged.Overview)
	}
}

func TestDeduplicateMatchesSharedIdentifiers(t *testing.T) {
	candidates := []discovery.Candidate{
		{Title: "The Battle of New Orleans", Year: 2026, TMDBID: 880, Sources: []string{"imdb_chart"}},
		{Title: "Battle of New Orleans: Director's Cut", TMDBID: 880, Sources: []string{"web_search"}},
		{Title: "Mercy", Year: 2026, IMDBID: "tt9990001", Sources: []string{"rt_theaters"}},
		{Title: "Mercy: Special Presentation", Year: 2026, IMDBID: "tt9990001", Sources: []string{"web_search"}},
	}
	out := discovery.Deduplicate(candidates)
	if len(out) != 2 {
		t.Fatalf("got %d candidates, want 2: shared ids collapse retitled listings", len(out))
	}
	if out[0].Title != "The Battle of New Orleans" || len(out[0].Sources) != 2 {
		t.Errorf("tmdb-id merge = %+v", out[0])
	}
	if out[1].Title != "Mercy" || len(out[1].Sources) != 2 {
		t.Errorf("imdb-id merge = %+v", out[1])
	}
}

func TestDeduplicateIsYearTolerant(t *testing.T) {
	candidates := []discovery.Candidate{
		{Title: "Mercy", Year: 2026, Sources: []string{"imdb_chart"}},
		{Title: "Mercy", Sources: []string{"web_search"}},
		{Title: "Mercy", Year: 2025, Sources: []string{"rt_theaters"}},
	}
	out := discovery.Deduplicate(candidates)
	if len(out) != 1 {
		t.Fatalf("got %d candidates, want 1: undated and adjacent-year entries collapse", len(out))
	}
	if len(out[0].Sources) != 3 {
		t.Errorf("sources = %v", out[0].Sources)
	}
}

func TestSortByAppeal(t *testing.T) {
	candidates := []discovery.Candidate{
		{Title: "Unranked", Confidence: 0.9, Sources: []string{"web_search"}},
		{Title: "Charted Low", Rank: 30, Confidence: 0.8, Sources: []string{"imdb_chart"}},
		{Title: "Corroborated", Rank: 30, Confidence: 0.5, Sources: []string{"imdb_chart", "web_search"}},
		{Title: "Charted High", Rank: 3, Confidence: 0.8, Sources: []string{"imdb_chart"}},
	}
	discovery.SortByAppeal(candidates)
	want := []string{"Corroborated", "Charted High", "Charted Low", "Unranked"}
	for i, title := range want {
		if candidates[i].Title != title {
			t.Errorf("position %d = %q, want %q", i, candidates[i].Title, title)
		}
	}
}

func TestTruncate(t *testing.T) {
	candidates := []discovery.Candidate{{Title: "A"}, {Title: "B"}, {Title: "C"}}
	if got := discovery.Truncate(candidates, 2); len(got) != 2 {
		t.Errorf("limit 2 kept %d", len(got))
	}
	if got := discovery.Truncate(candidates, 0); len(got) != 3 {
		t.Errorf("limit 0 should keep all, kept %d", len(got))
	}
	if got := discovery.Truncate(candidates, 9); len(got) != 3 {
		t.Errorf("oversized limit kept %d", len(got))
	}
}

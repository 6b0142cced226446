package agents_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"marquee/internal/discovery"
	"marquee/internal/discovery/agents"
	"marquee/internal/identification/tmdb"
	"marquee/internal/services/llm"
	"marquee/internal/services/radarr"
)

const chartFixture = `<html><body><ul>
<li class="ipc-metadata-list-summary-item"><h3>1. Dune: Part Three</h3></li>
<li class="ipc-metadata-list-summary-item"><h3>2. The Long Walk</h3></li>
<li class="ipc-metadata-list-summary-item"><h3>3. Mercy</h3></li>
</ul></body></html>`

func TestFetchAgentParsesChart(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chartFixture))
	}))
	defer server.Close()

	agent := agents.NewFetchAgent(server.Client(), nil, nil)
	report, err := agent.Execute(context.Background(), mustArgs(t, map[string]any{
		"source": "imdb_chart",
		"url":    server.URL,
	}))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if report.Status != discovery.StatusSuccess {
		t.Fatalf("status = %s, want success (%v)", report.Status, report.Issues)
	}
	if len(report.Candidates) != 3 {
		t.Fatalf("got %d candidates, want 3", len(report.Candidates))
	}
	first := report.Candidates[0]
	if first.Title != "Dune: Part Three" || first.Rank != 1 {
		t.Errorf("first candidate = %q rank %d", first.Title, first.Rank)
	}
	if len(first.Sources) != 1 || first.Sources[0] != "imdb_chart" {
		t.Errorf("sources = %v", first.Sources)
	}
}

func TestFetchAgentRespectsMaxMovies(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chartFixture))
	}))
	defer server.Close()

	agent := agents.NewFetchAgent(server.Client(), nil, nil)
	report, err := agent.Execute(context.Background(), mustArgs(t, map[string]any{
		"source": "imdb_chart", "url": server.URL, "max_movies": 2,
	}))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(report.Candidates) != 2 {
		t.Fatalf("got %d candidates, want 2", len(report.Candidates))
	}
}

func TestFetchAgentDriftedLayoutIsPartial(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><div class="totally-new-markup">Dune</div></body></html>`))
	}))
	defer server.Close()

	agent := agents.NewFetchAgent(server.Client(), nil, nil)
	report, err := agent.Execute(context.Background(), mustArgs(t, map[string]any{
		"source": "imdb_chart", "url": server.URL,
	}))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if report.Status != discovery.StatusPartial {
		t.Fatalf("status = %s, want partial", report.Status)
	}
	if len(report.Issues) == 0 || !strings.Contains(report.Issues[0], "drifted") {
		t.Errorf("expected drift diagnostic, got %v", report.Issues)
	}
}

func TestFetchAgentServerErrorIsFailureReport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	agent := agents.NewFetchAgent(server.Client(), nil, nil)
	report, err := agent.Execute(context.Background(), mustArgs(t, map[string]any{
		"source": "imdb_chart", "url": server.URL,
	}))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !report.Failed() {
		t.Fatalf("status = %s, want failure", report.Status)
	}
	if !strings.Contains(report.Summary, "502") {
		t.Errorf("summary = %q, want status code mentioned", report.Summary)
	}
}

func TestFetchAgentUnknownSource(t *testing.T) {
	agent := agents.NewFetchAgent(nil, nil, nil)
	report, err := agent.Execute(context.Background(), mustArgs(t, map[string]any{"source": "letterboxd"}))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !report.Failed() {
		t.Fatalf("status = %s, want failure", report.Status)
	}
}

type fakeCompleter struct {
	configured bool
	content    string
	err        error

	gotSystem string
	gotUser   string
	gotOpts   llm.ChatOptions
}

func (f *fakeCompleter) Configured() bool { return f.configured }

func (f *fakeCompleter) CompleteJSON(_ context.Context, systemPrompt, userPrompt string, opts llm.ChatOptions) (string, error) {
	f.gotSystem = systemPrompt
	f.gotUser = userPrompt
	f.gotOpts = opts
	return f.content, f.err
}

func TestSearchAgentParsesResults(t *testing.T) {
	client := &fakeCompleter{
		configured: true,
		content: `{"movies": [
			{"title": "Sinners", "year": 2026, "overview": "Vampires in the Delta.", "confidence": 0.9},
			{"title": "Hamnet", "year": 2026}
		], "notes": "limited festival data"}`,
	}
	agent := agents.NewSearchAgent(client, "", nil)
	report, err := agent.Execute(context.Background(), mustArgs(t, map[string]any{
		"query": "new theatrical releases this week",
	}))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if report.Status != discovery.StatusSuccess {
		t.Fatalf("status = %s (%v)", report.Status, report.Issues)
	}
	if !client.gotOpts.WebSearch {
		t.Error("expected web search to be requested")
	}
	if len(report.Candidates) != 2 {
		t.Fatalf("got %d candidates, want 2", len(report.Candidates))
	}
	if report.Candidates[1].Confidence != 0.7 {
		t.Errorf("default confidence = %v, want 0.7", report.Candidates[1].Confidence)
	}
	if report.Candidates[0].Sources[0] != "web_search" {
		t.Errorf("sources = %v", report.Candidates[0].Sources)
	}
	if report.Narrative != "limited festival data" {
		t.Errorf("narrative = %q", report.Narrative)
	}
}

func TestSearchAgentUnconfiguredModel(t *testing.T) {
	agent := agents.NewSearchAgent(&fakeCompleter{configured: false}, "", nil)
	report, err := agent.Execute(context.Background(), mustArgs(t, map[string]any{"query": "anything"}))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !report.Failed() {
		t.Fatalf("status = %s, want failure", report.Status)
	}
}

func TestSearchAgentRequestError(t *testing.T) {
	client := &fakeCompleter{configured: true, err: errors.New("connection reset")}
	agent := agents.NewSearchAgent(client, "", nil)
	report, err := agent.Execute(context.Background(), mustArgs(t, map[string]any{"query": "anything"}))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !report.Failed() || report.Summary != "search request failed" {
		t.Fatalf("report = %s %q", report.Status, report.Summary)
	}
}

func TestSearchAgentUnparseableResponse(t *testing.T) {
	client := &fakeCompleter{configured: true, content: "I found some great movies for you!"}
	agent := agents.NewSearchAgent(client, "", nil)
	report, err := agent.Execute(context.Background(), mustArgs(t, map[string]any{"query": "anything"}))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !report.Failed() {
		t.Fatalf("status = %s, want failure", report.Status)
	}
}

type fakeLookup struct {
	movies map[string][]radarr.Movie
	err    error
}

func (f *fakeLookup) Lookup(_ context.Context, term string) ([]radarr.Movie, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.movies[term], nil
}

type fakeSearcher struct {
	found    map[string]tmdb.Result
	searched map[string]tmdb.Result
	details  map[int64]tmdb.Result
}

func (f *fakeSearcher) SearchMovieWithOptions(_ context.Context, query string, _ tmdb.SearchOptions) (*tmdb.Response, error) {
	if result, ok := f.searched[query]; ok {
		return &tmdb.Response{Results: []tmdb.Result{result}}, nil
	}
	return &tmdb.Response{}, nil
}

func (f *fakeSearcher) GetMovieDetails(_ context.Context, movieID int64) (*tmdb.Result, error) {
	if result, ok := f.details[movieID]; ok {
		return &result, nil
	}
	return nil, errors.New("not found")
}

func (f *fakeSearcher) FindByIMDB(_ context.Context, imdbID string) (*tmdb.Response, error) {
	if result, ok := f.found[imdbID]; ok {
		return &tmdb.Response{Results: []tmdb.Result{result}}, nil
	}
	return &tmdb.Response{}, nil
}

func TestValidatorAgentRejectsByTaxonomy(t *testing.T) {
	agent := agents.NewValidatorAgent(nil, nil, nil)
	report, err := agent.Execute(context.Background(), mustArgs(t, map[string]any{
		"candidates": []map[string]any{
			{"title": "Dune: Part Three", "confidence": 0.9},
			{"title": "2024", "confidence": 0.9},
			{"title": "Sign In", "confidence": 0.9},
			{"title": "Mitski: Live at Radio City", "confidence": 0.9},
			{"title": "The Matrix Collection", "confidence": 0.9},
			{"title": "Maybe A Movie", "confidence": 0.2},
		},
		"min_confidence": 0.5,
	}))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(report.Candidates) != 1 || report.Candidates[0].Title != "Dune: Part Three" {
		t.Fatalf("valid = %v", report.Candidates)
	}
	want := map[string]discovery.RejectionReason{
		"2024":                       discovery.ReasonYearOnly,
		"Sign In":                    discovery.ReasonUIElement,
		"Mitski: Live at Radio City": discovery.ReasonConcert,
		"The Matrix Collection":      discovery.ReasonCollection,
		"Maybe A Movie":              discovery.ReasonLowConfidence,
	}
	if len(report.Rejected) != len(want) {
		t.Fatalf("rejected = %v", report.Rejected)
	}
	for _, rejection := range report.Rejected {
		if want[rejection.Title] != rejection.Reason {
			t.Errorf("%q rejected as %s, want %s", rejection.Title, rejection.Reason, want[rejection.Title])
		}
	}
}

func TestValidatorAgentMergesDuplicates(t *testing.T) {
	agent := agents.NewValidatorAgent(nil, nil, nil)
	report, err := agent.Execute(context.Background(), mustArgs(t, map[string]any{
		"candidates": []map[string]any{
			{"title": "The Long Walk", "year": 2025, "confidence": 0.8, "sources": []string{"imdb_chart"}},
			{"title": "the long walk", "year": 2025, "confidence": 0.9, "sources": []string{"web_search"}},
		},
	}))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(report.Candidates) != 1 {
		t.Fatalf("got %d candidates, want 1 merged", len(report.Candidates))
	}
	merged := report.Candidates[0]
	if len(merged.Sources) != 2 {
		t.Errorf("sources = %v, want union of both", merged.Sources)
	}
	if merged.Confidence != 0.9 {
		t.Errorf("confidence = %v, want max", merged.Confidence)
	}
	if report.Stats["duplicates_merged"] != 1 {
		t.Errorf("duplicates_merged = %v", report.Stats["duplicates_merged"])
	}
}

func TestValidatorAgentEnrichmentFilters(t *testing.T) {
	lookup := &fakeLookup{movies: map[string][]radarr.Movie{
		"Owned Already": {{ID: 12, Title: "Owned Already", Year: 2025, TMDBID: 100}},
		"Jaws":          {{Title: "Jaws", Year: 1975, TMDBID: 578}},
		"Brand New":     {{Title: "Brand New", Year: 2026, TMDBID: 901, IMDBID: "tt9990001"}},
	}}
	agent := agents.NewValidatorAgent(lookup, nil, nil)
	report, err := agent.Execute(context.Background(), mustArgs(t, map[string]any{
		"candidates": []map[string]any{
			{"title": "Owned Already", "year": 2025, "confidence": 0.9},
			{"title": "Jaws", "confidence": 0.9},
			{"title": "Brand New", "confidence": 0.9},
			{"title": "Not In Radarr", "confidence": 0.9},
		},
		"enrich":            true,
		"filter_in_library": true,
		"filter_rereleases": true,
	}))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	titles := make(map[string]discovery.Candidate)
	for _, candidate := range report.Candidates {
		titles[candidate.Title] = candidate
	}
	if _, ok := titles["Owned Already"]; ok {
		t.Error("in-library title survived the filter")
	}
	if _, ok := titles["Jaws"]; ok {
		t.Error("re-release survived the filter")
	}
	brandNew, ok := titles["Brand New"]
	if !ok {
		t.Fatal("new title missing from results")
	}
	if brandNew.TMDBID != 901 || brandNew.IMDBID != "tt9990001" {
		t.Errorf("enriched identifiers = %d %q", brandNew.TMDBID, brandNew.IMDBID)
	}
	if brandNew.Year != 2026 {
		t.Errorf("year = %d, want filled from lookup", brandNew.Year)
	}
	if _, ok := titles["Not In Radarr"]; !ok {
		t.Error("unmatched title should survive unenriched")
	}
	reasons := make(map[string]discovery.RejectionReason)
	for _, rejection := range report.Rejected {
		reasons[rejection.Title] = rejection.Reason
	}
	if reasons["Owned Already"] != discovery.ReasonInLibrary {
		t.Errorf("Owned Already rejected as %s", reasons["Owned Already"])
	}
	if reasons["Jaws"] != discovery.ReasonReRelease {
		t.Errorf("Jaws rejected as %s", reasons["Jaws"])
	}
}

func TestValidatorAgentLookupFailureLeavesCandidates(t *testing.T) {
	lookup := &fakeLookup{err: errors.New("radarr unreachable")}
	agent := agents.NewValidatorAgent(lookup, nil, nil)
	report, err := agent.Execute(context.Background(), mustArgs(t, map[string]any{
		"candidates": []map[string]any{
			{"title": "Resilient Movie", "year": 2026, "confidence": 0.9},
		},
		"enrich":            true,
		"filter_in_library": true,
	}))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(report.Candidates) != 1 {
		t.Fatalf("got %d candidates, want the unenriched original", len(report.Candidates))
	}
	if report.Candidates[0].TMDBID != 0 {
		t.Errorf("unexpected enrichment: %+v", report.Candidates[0])
	}
}

func TestValidatorAgentFallsBackToTMDBWhenLibraryUnreachable(t *testing.T) {
	lookup := &fakeLookup{err: errors.New("radarr unreachable")}
	searcher := &fakeSearcher{
		found: map[string]tmdb.Result{
			"tt9990001": {ID: 901, Title: "Mercy", ReleaseDate: "2026-03-01", IMDBID: "tt9990001"},
		},
		searched: map[string]tmdb.Result{
			"Brand New": {ID: 700, Title: "Brand New", ReleaseDate: "2026-01-15"},
		},
		details: map[int64]tmdb.Result{
			700: {ID: 700, IMDBID: "tt7770002"},
		},
	}
	agent := agents.NewValidatorAgent(lookup, searcher, nil)
	report, err := agent.Execute(context.Background(), mustArgs(t, map[string]any{
		"candidates": []map[string]any{
			{"title": "Mercy", "year": 2026, "imdb_id": "tt9990001", "confidence": 0.9},
			{"title": "Brand New", "confidence": 0.9},
		},
		"enrich":            true,
		"filter_in_library": true,
		"filter_rereleases": true,
	}))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(report.Candidates) != 2 {
		t.Fatalf("got %d candidates, want 2: %+v", len(report.Candidates), report.Rejected)
	}

	byTitle := make(map[string]discovery.Candidate)
	for _, candidate := range report.Candidates {
		byTitle[candidate.Title] = candidate
	}
	if byTitle["Mercy"].TMDBID != 901 {
		t.Errorf("Mercy not resolved by imdb id: %+v", byTitle["Mercy"])
	}
	brandNew := byTitle["Brand New"]
	if brandNew.TMDBID != 700 {
		t.Errorf("Brand New not resolved by search: %+v", brandNew)
	}
	if brandNew.IMDBID != "tt7770002" {
		t.Errorf("imdb id not recovered from details: %+v", brandNew)
	}
	if brandNew.Year != 2026 {
		t.Errorf("year not filled from release date: %+v", brandNew)
	}
}

func TestRankerAgentUsesModelOrder(t *testing.T) {
	client := &fakeCompleter{
		configured: true,
		content: `{"ranked": [
			{"title": "Mercy", "year": 2026, "overview": "AI courtroom thriller.", "confidence": 0.95, "reasoning": "strongest reviews"},
			{"title": "The Long Walk", "year": 2025, "reasoning": "steady word of mouth"}
		], "excluded": [{"title": "Greatest Hits Live", "reason": "concert_film"}]}`,
	}
	agent := agents.NewRankerAgent(client, "", nil)
	report, err := agent.Execute(context.Background(), mustArgs(t, map[string]any{
		"candidates": []map[string]any{
			{"title": "The Long Walk", "year": 2025, "confidence": 0.8, "tmdb_id": 700},
			{"title": "Mercy", "year": 2026, "confidence": 0.8, "tmdb_id": 701},
			{"title": "Greatest Hits Live", "year": 2026, "confidence": 0.8},
		},
	}))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if report.Status != discovery.StatusSuccess {
		t.Fatalf("status = %s (%v)", report.Status, report.Issues)
	}
	if len(report.Candidates) != 2 {
		t.Fatalf("got %d ranked, want 2", len(report.Candidates))
	}
	first := report.Candidates[0]
	if first.Title != "Mercy" {
		t.Errorf("first = %q, want model's order", first.Title)
	}
	if first.TMDBID != 701 {
		t.Errorf("tmdb id = %d, want identity carried from input", first.TMDBID)
	}
	if first.Overview != "AI courtroom thriller." || first.Reasoning != "strongest reviews" {
		t.Errorf("annotations not applied: %+v", first)
	}
	if len(report.Rejected) != 1 || report.Rejected[0].Reason != discovery.ReasonConcert {
		t.Errorf("excluded = %v", report.Rejected)
	}
}

func TestRankerAgentToleratesYearDriftInModelEcho(t *testing.T) {
	client := &fakeCompleter{
		configured: true,
		content: `{"ranked": [
			{"title": "Mercy", "year": 2025, "reasoning": "year shifted by the model"},
			{"title": "The Long Walk", "reasoning": "year dropped by the model"}
		], "excluded": []}`,
	}
	agent := agents.NewRankerAgent(client, "", nil)
	report, err := agent.Execute(context.Background(), mustArgs(t, map[string]any{
		"candidates": []map[string]any{
			{"title": "Mercy", "year": 2026, "confidence": 0.8, "tmdb_id": 701},
			{"title": "The Long Walk", "year": 2025, "confidence": 0.8, "tmdb_id": 700},
		},
	}))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if report.Status != discovery.StatusSuccess {
		t.Fatalf("status = %s (%v)", report.Status, report.Issues)
	}
	if len(report.Candidates) != 2 {
		t.Fatalf("got %d ranked, want both despite year drift", len(report.Candidates))
	}
	if report.Candidates[0].TMDBID != 701 || report.Candidates[0].Year != 2026 {
		t.Errorf("drifted-year entry lost input identity: %+v", report.Candidates[0])
	}
	if report.Candidates[1].TMDBID != 700 {
		t.Errorf("missing-year entry lost input identity: %+v", report.Candidates[1])
	}
}

func TestRankerAgentFallsBackDeterministically(t *testing.T) {
	agent := agents.NewRankerAgent(&fakeCompleter{configured: false}, "", nil)
	report, err := agent.Execute(context.Background(), mustArgs(t, map[string]any{
		"candidates": []map[string]any{
			{"title": "One Source", "year": 2026, "confidence": 0.9, "sources": []string{"imdb_chart"}, "rank": 5},
			{"title": "Two Sources", "year": 2026, "confidence": 0.7, "sources": []string{"imdb_chart", "web_search"}, "rank": 9},
		},
		"limit": 10,
	}))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if report.Status != discovery.StatusPartial {
		t.Fatalf("status = %s, want partial", report.Status)
	}
	if report.Candidates[0].Title != "Two Sources" {
		t.Errorf("first = %q, want the corroborated candidate", report.Candidates[0].Title)
	}
}

func TestRankerAgentModelFailureFallsBack(t *testing.T) {
	client := &fakeCompleter{configured: true, err: errors.New("timeout")}
	agent := agents.NewRankerAgent(client, "", nil)
	report, err := agent.Execute(context.Background(), mustArgs(t, map[string]any{
		"candidates": []map[string]any{{"title": "Still Here", "year": 2026, "confidence": 0.8}},
	}))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if report.Status != discovery.StatusPartial || len(report.Candidates) != 1 {
		t.Fatalf("report = %s with %d candidates", report.Status, len(report.Candidates))
	}
}

func mustArgs(t *testing.T, args map[string]any) json.RawMessage {
	t.Helper()
	encoded, err := json.Marshal(args)
	if err != nil {
		t.Fatalf("marshal args: %v", err)
	}
	return encoded
}

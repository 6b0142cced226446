package discovery_test

import (
	"context"
	"encoding/json"
	"testing"

	"marquee/internal/discovery"
	"marquee/internal/services/llm"
)

func TestReportEncodeParseRoundTrip(t *testing.T) {
	report := &discovery.Report{
		Agent:      discovery.AgentFetch,
		Tool:       discovery.ToolFetch,
		Status:     discovery.StatusSuccess,
		Summary:    "fetched 2 entries",
		Candidates: []discovery.Candidate{{Title: "Mercy", Year: 2026}, {Title: "Heat", Year: 1995}},
		Stats:      map[string]any{"source": "imdb_chart"},
	}
	parsed, err := discovery.ParseReport(report.Encode())
	if err != nil {
		t.Fatalf("ParseReport: %v", err)
	}
	if parsed.Agent != discovery.AgentFetch || parsed.Status != discovery.StatusSuccess {
		t.Errorf("parsed = %+v", parsed)
	}
	if len(parsed.Candidates) != 2 || parsed.Candidates[0].Title != "Mercy" {
		t.Errorf("candidates = %v", parsed.Candidates)
	}
}

func TestParseReportToleratesFencesAndProse(t *testing.T) {
	content := "Here is the report you asked for:\n```json\n" +
		`{"agent":"ranker","tool":"rank_movies","status":"partial","summary":"ranked 1"}` +
		"\n```\nLet me know if you need anything else."
	parsed, err := discovery.ParseReport(content)
	if err != nil {
		t.Fatalf("ParseReport: %v", err)
	}
	if parsed.Agent != discovery.AgentRanker || parsed.Status != discovery.StatusPartial {
		t.Errorf("parsed = %+v", parsed)
	}
}

func TestParseReportRejectsGarbage(t *testing.T) {
	if _, err := discovery.ParseReport("sorry, I could not find any movies"); err == nil {
		t.Fatal("expected an error for non-JSON content")
	}
}

func TestFailureReport(t *testing.T) {
	report := discovery.FailureReport(discovery.AgentFetch, discovery.ToolFetch, "source down", "http 503")
	if !report.Failed() {
		t.Error("failure report must report Failed")
	}
	if len(report.Candidates) != 0 {
		t.Error("failure report must not carry candidates")
	}
	if len(report.Issues) != 1 || report.Issues[0] != "http 503" {
		t.Errorf("issues = %v", report.Issues)
	}
}

type stubAgent struct{ name string }

func (a stubAgent) Definition() llm.ToolDef {
	return llm.ToolDef{Name: a.name, Parameters: json.RawMessage(`{"type":"object"}`)}
}

func (a stubAgent) Execute(context.Context, json.RawMessage) (*discovery.Report, error) {
	return &discovery.Report{Tool: a.name, Status: discovery.StatusSuccess}, nil
}

func TestAgentSetToolDefsStableOrder(t *testing.T) {
	set := discovery.AgentSet{}
	set.Register(stubAgent{discovery.ToolRank})
	set.Register(stubAgent{discovery.ToolFetch})
	set.Register(stubAgent{discovery.ToolValidate})
	set.Register(stubAgent{discovery.ToolSearch})

	defs := set.ToolDefs()
	want := []string{discovery.ToolFetch, discovery.ToolSearch, discovery.ToolValidate, discovery.ToolRank}
	if len(defs) != len(want) {
		t.Fatalf("got %d defs", len(defs))
	}
	for i, name := range want {
		if defs[i].Name != name {
			t.Errorf("defs[%d] = %s, want %s", i, defs[i].Name, name)
		}
	}
}

package discovery_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"marquee/internal/discovery"
	"marquee/internal/services/llm"
)

type scriptedAgent struct {
	name    string
	handler func(args json.RawMessage) *discovery.Report
	calls   []json.RawMessage
}

func (a *scriptedAgent) Definition() llm.ToolDef {
	return llm.ToolDef{Name: a.name, Parameters: json.RawMessage(`{"type":"object"}`)}
}

func (a *scriptedAgent) Execute(_ context.Context, args json.RawMessage) (*discovery.Report, error) {
	a.calls = append(a.calls, args)
	return a.handler(args), nil
}

type candidateArgs struct {
	Candidates []discovery.Candidate `json:"candidates"`
	Limit      int                   `json:"limit"`
}

// passthrough returns the candidates it was handed, the way a permissive
// validator or ranker would.
func passthrough(name string, agentType discovery.AgentType) *scriptedAgent {
	return &scriptedAgent{name: name, handler: func(args json.RawMessage) *discovery.Report {
		var req candidateArgs
		_ = json.Unmarshal(args, &req)
		out := req.Candidates
		if req.Limit > 0 {
			out = discovery.Truncate(out, req.Limit)
		}
		return &discovery.Report{
			Agent:      agentType,
			Tool:       name,
			Status:     discovery.StatusSuccess,
			Summary:    fmt.Sprintf("processed %d", len(out)),
			Candidates: out,
		}
	}}
}

type scriptedChat struct {
	configured bool
	replies    []llm.Message
	err        error
	calls      [][]llm.Message
}

func (c *scriptedChat) Configured() bool { return c.configured }

func (c *scriptedChat) Chat(_ context.Context, messages []llm.Message, _ []llm.ToolDef, _ llm.ChatOptions) (llm.Message, error) {
	c.calls = append(c.calls, messages)
	if c.err != nil {
		return llm.Message{}, c.err
	}
	if len(c.replies) == 0 {
		return llm.Message{Role: "assistant", Content: "done"}, nil
	}
	reply := c.replies[0]
	c.replies = c.replies[1:]
	return reply, nil
}

func newPipelineAgents(fetch *scriptedAgent, search *scriptedAgent) discovery.AgentSet {
	set := discovery.AgentSet{}
	set.Register(fetch)
	set.Register(search)
	set.Register(passthrough(discovery.ToolValidate, discovery.AgentValidator))
	set.Register(passthrough(discovery.ToolRank, discovery.AgentRanker))
	return set
}

func fetchBySource(handlers map[string]*discovery.Report) *scriptedAgent {
	return &scriptedAgent{name: discovery.ToolFetch, handler: func(args json.RawMessage) *discovery.Report {
		var req struct {
			Source string `json:"source"`
		}
		_ = json.Unmarshal(args, &req)
		if report, ok := handlers[req.Source]; ok {
			return report
		}
		return discovery.FailureReport(discovery.AgentFetch, discovery.ToolFetch, "unknown source")
	}}
}

func TestFixedPipelineFetchesOnlyConfiguredSources(t *testing.T) {
	fetch := fetchBySource(map[string]*discovery.Report{
		"imdb_chart": {
			Agent: discovery.AgentFetch, Tool: discovery.ToolFetch, Status: discovery.StatusSuccess,
			Candidates: []discovery.Candidate{{Title: "Mercy", Year: 2026, Sources: []string{"imdb_chart"}}},
		},
	})
	search := &scriptedAgent{name: discovery.ToolSearch, handler: func(json.RawMessage) *discovery.Report {
		return discovery.FailureReport(discovery.AgentSearch, discovery.ToolSearch, "search unavailable")
	}}

	orch := discovery.NewOrchestrator(nil, newPipelineAgents(fetch, search), discovery.OrchestratorConfig{
		Sources: []string{"imdb_chart"},
	}, nil)
	result, err := orch.Discover(context.Background(), discovery.Request{Prompt: "new wide releases", Limit: 10})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(fetch.calls) != 1 {
		t.Fatalf("fetch called %d times, want only the configured source", len(fetch.calls))
	}
	var req struct {
		Source string `json:"source"`
	}
	if err := json.Unmarshal(fetch.calls[0], &req); err != nil {
		t.Fatalf("decode fetch args: %v", err)
	}
	if req.Source != "imdb_chart" {
		t.Errorf("fetched source %q, want imdb_chart", req.Source)
	}
	if len(result.Candidates) != 1 {
		t.Errorf("got %d candidates, want 1", len(result.Candidates))
	}
}

func TestDiscoverCapsLimitAtConfiguredMaximum(t *testing.T) {
	var many []discovery.Candidate
	for i := 0; i < 10; i++ {
		many = append(many, discovery.Candidate{Title: fmt.Sprintf("Movie %c", 'A'+i), Year: 2026})
	}
	fetch := fetchBySource(map[string]*discovery.Report{
		"imdb_chart": {
			Agent: discovery.AgentFetch, Tool: discovery.ToolFetch, Status: discovery.StatusSuccess,
			Candidates: many,
		},
	})
	search := &scriptedAgent{name: discovery.ToolSearch, handler: func(json.RawMessage) *discovery.Report {
		return discovery.FailureReport(discovery.AgentSearch, discovery.ToolSearch, "search unavailable")
	}}

	orch := discovery.NewOrchestrator(nil, newPipelineAgents(fetch, search), discovery.OrchestratorConfig{
		Sources:  []string{"imdb_chart"},
		MaxLimit: 3,
	}, nil)
	result, err := orch.Discover(context.Background(), discovery.Request{Prompt: "new wide releases", Limit: 40})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(result.Candidates) != 3 {
		t.Errorf("got %d candidates, want the configured cap of 3", len(result.Candidates))
	}
}

func TestFixedPipelineSurvivesSourceFailure(t *testing.T) {
	fetch := fetchBySource(map[string]*discovery.Report{
		"imdb_chart": discovery.FailureReport(discovery.AgentFetch, discovery.ToolFetch, "fetch imdb_chart failed", "timeout"),
		"rt_theaters": {
			Agent: discovery.AgentFetch, Tool: discovery.ToolFetch, Status: discovery.StatusSuccess,
			Candidates: []discovery.Candidate{{Title: "The Long Walk", Year: 2025, Sources: []string{"rt_theaters"}}},
		},
	})
	search := &scriptedAgent{name: discovery.ToolSearch, handler: func(json.RawMessage) *discovery.Report {
		return &discovery.Report{
			Agent: discovery.AgentSearch, Tool: discovery.ToolSearch, Status: discovery.StatusSuccess,
			Candidates: []discovery.Candidate{{Title: "Mercy", Year: 2026, Sources: []string{"web_search"}}},
		}
	}}

	orch := discovery.NewOrchestrator(nil, newPipelineAgents(fetch, search), discovery.OrchestratorConfig{}, nil)
	result, err := orch.Discover(context.Background(), discovery.Request{Prompt: "new wide releases", Limit: 10})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(fetch.calls) != 2 {
		t.Errorf("fetch called %d times, want both sources attempted", len(fetch.calls))
	}
	if len(search.calls) != 1 {
		t.Errorf("search called %d times, want 1", len(search.calls))
	}
	if len(result.Candidates) != 2 {
		t.Fatalf("got %d candidates, want 2 from the surviving sources", len(result.Candidates))
	}
	if !containsDiagnostic(result.Diagnostics, "imdb_chart") {
		t.Errorf("diagnostics %v do not name the failed source", result.Diagnostics)
	}
}

func TestFixedPipelineAllSourcesFailReturnsDiagnostics(t *testing.T) {
	fetch := fetchBySource(nil)
	search := &scriptedAgent{name: discovery.ToolSearch, handler: func(json.RawMessage) *discovery.Report {
		return discovery.FailureReport(discovery.AgentSearch, discovery.ToolSearch, "no language model configured for search")
	}}
	rank := passthrough(discovery.ToolRank, discovery.AgentRanker)
	set := discovery.AgentSet{}
	set.Register(fetch)
	set.Register(search)
	set.Register(rank)

	orch := discovery.NewOrchestrator(nil, set, discovery.OrchestratorConfig{}, nil)
	result, err := orch.Discover(context.Background(), discovery.Request{Prompt: "anything"})
	if err != nil {
		t.Fatalf("Discover must not error on total source failure: %v", err)
	}
	if len(result.Candidates) != 0 {
		t.Errorf("candidates = %v, want none", result.Candidates)
	}
	if !containsDiagnostic(result.Diagnostics, "every discovery source failed") {
		t.Errorf("diagnostics = %v", result.Diagnostics)
	}
	if len(rank.calls) != 0 {
		t.Error("rank must not run with no candidates")
	}
}

func TestReasoningLoopStopsAfterSuccessfulRank(t *testing.T) {
	rank := &scriptedAgent{name: discovery.ToolRank, handler: func(json.RawMessage) *discovery.Report {
		return &discovery.Report{
			Agent: discovery.AgentRanker, Tool: discovery.ToolRank, Status: discovery.StatusSuccess,
			Candidates: []discovery.Candidate{
				{Title: "Mercy", Year: 2026},
				{Title: "The Long Walk", Year: 2025},
			},
		}
	}}
	set := discovery.AgentSet{}
	set.Register(rank)

	chat := &scriptedChat{configured: true, replies: []llm.Message{{
		Role: "assistant",
		ToolCalls: []llm.ToolCall{{
			ID:   "call_1",
			Type: "function",
			Function: llm.FunctionCall{
				Name:      discovery.ToolRank,
				Arguments: `{"candidates":[{"title":"Mercy","year":2026}],"limit":2}`,
			},
		}},
	}}}

	orch := discovery.NewOrchestrator(chat, set, discovery.OrchestratorConfig{}, nil)
	result, err := orch.Discover(context.Background(), discovery.Request{Prompt: "best new movies", Limit: 1})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(chat.calls) != 1 {
		t.Errorf("chat called %d times, want loop to stop after ranking", len(chat.calls))
	}
	if len(rank.calls) != 1 {
		t.Errorf("rank called %d times", len(rank.calls))
	}
	if len(result.Candidates) != 1 || result.Candidates[0].Title != "Mercy" {
		t.Errorf("candidates = %v, want ranked list truncated to the request limit", result.Candidates)
	}
}

func TestReasoningFailureFallsBackToFixedPipeline(t *testing.T) {
	fetch := fetchBySource(map[string]*discovery.Report{
		"imdb_chart": {
			Agent: discovery.AgentFetch, Tool: discovery.ToolFetch, Status: discovery.StatusSuccess,
			Candidates: []discovery.Candidate{{Title: "Mercy", Year: 2026, Sources: []string{"imdb_chart"}}},
		},
	})
	search := &scriptedAgent{name: discovery.ToolSearch, handler: func(json.RawMessage) *discovery.Report {
		return discovery.FailureReport(discovery.AgentSearch, discovery.ToolSearch, "no language model configured for search")
	}}
	chat := &scriptedChat{configured: true, err: errors.New("model overloaded")}

	orch := discovery.NewOrchestrator(chat, newPipelineAgents(fetch, search), discovery.OrchestratorConfig{}, nil)
	result, err := orch.Discover(context.Background(), discovery.Request{Prompt: "new wide releases"})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(result.Candidates) != 1 {
		t.Fatalf("got %d candidates, want the fixed pipeline result", len(result.Candidates))
	}
	if !containsDiagnostic(result.Diagnostics, "model overloaded") {
		t.Errorf("diagnostics = %v, want the reasoning failure recorded", result.Diagnostics)
	}
}

func TestDiscoverRequiresPrompt(t *testing.T) {
	orch := discovery.NewOrchestrator(nil, discovery.AgentSet{}, discovery.OrchestratorConfig{}, nil)
	if _, err := orch.Discover(context.Background(), discovery.Request{Prompt: "   "}); err == nil {
		t.Fatal("expected an error for a blank prompt")
	}
}

func containsDiagnostic(diagnostics []string, substring string) bool {
	for _, diagnostic := range diagnostics {
		if strings.Contains(diagnostic, substring) {
			return true
		}
	}
	return false
}

package discovery

import (
	"context"
	"encoding/json"
	"fmt"

	"marquee/internal/services/llm"
)

// AgentType identifies an agent role.
type AgentType string

const (
	AgentFetch     AgentType = "fetch"
	AgentSearch    AgentType = "search"
	AgentValidator AgentType = "validator"
	AgentRanker    AgentType = "ranker"
)

// Tool names agents register under. The orchestrator's model addresses
// agents by these names.
const (
	ToolFetch    = "fetch_movies"
	ToolSearch   = "search_movies"
	ToolValidate = "validate_movies"
	ToolRank     = "rank_movies"
)

// ReportStatus marks how an agent run ended. A failed run carries issues and
// no candidates; it never returns a partially-filled success payload.
type ReportStatus string

const (
	StatusSuccess ReportStatus = "success"
	StatusPartial ReportStatus = "partial"
	StatusFailure ReportStatus = "failure"
)

// Rejection records one candidate excluded during validation, with a reason
// drawn from the fixed taxonomy in validation.go.
type Rejection struct {
	Title  string          `json:"title"`
	Reason RejectionReason `json:"reason"`
}

// Report is the structured result of one agent execution. The JSON form of
// this struct is the authoritative payload exchanged with the orchestrator
// model; Narrative is optional diagnostic prose and never load-bearing.
type Report struct {
	Agent      AgentType      `json:"agent"`
	Tool       string         `json:"tool"`
	Status     ReportStatus   `json:"status"`
	Summary    string         `json:"summary"`
	Candidates []Candidate    `json:"candidates,omitempty"`
	Rejected   []Rejection    `json:"rejected,omitempty"`
	Issues     []string       `json:"issues,omitempty"`
	Stats      map[string]any `json:"stats,omitempty"`
	Narrative  string         `json:"narrative,omitempty"`
	ElapsedMS  int64          `json:"elapsed_ms,omitempty"`
}

// Failed reports whether the run produced no usable result.
func (r *Report) Failed() bool {
	return r.Status == StatusFailure
}

// Encode renders the authoritative JSON payload handed back to the
// orchestrator model as a tool result.
func (r *Report) Encode() string {
	encoded, err := json.Marshal(r)
	if err != nil {
		return fmt.Sprintf(`{"agent":%q,"status":"failure","summary":"report encoding failed"}`, r.Agent)
	}
	return string(encoded)
}

// ParseReport decodes a report payload, tolerating code fences and
// surrounding prose the way model output tends to arrive.
func ParseReport(content string) (*Report, error) {
	var report Report
	if err := llm.DecodeJSON(content, &report); err != nil {
		return nil, fmt.Errorf("parse agent report: %w", err)
	}
	return &report, nil
}

// FailureReport builds the report an agent returns when it cannot complete.
func FailureReport(agent AgentType, tool, summary string, issues ...string) *Report {
	return &Report{
		Agent:   agent,
		Tool:    tool,
		Status:  StatusFailure,
		Summary: summary,
		Issues:  issues,
	}
}

// Agent is one specialized worker the orchestrator can invoke. Execute must
// be bounded by the supplied context and must return a failure report rather
// than partial success when it cannot complete.
type Agent interface {
	Definition() llm.ToolDef
	Execute(ctx context.Context, args json.RawMessage) (*Report, error)
}

// AgentSet maps tool names to agents. It is the orchestrator's single
// dispatch point.
type AgentSet map[string]Agent

// Register adds an agent under its declared tool name.
func (s AgentSet) Register(agent Agent) {
	s[agent.Definition().Name] = agent
}

// ToolDefs lists the tool definitions advertised to the orchestrator model,
// in stable order.
func (s AgentSet) ToolDefs() []llm.ToolDef {
	ordered := []string{ToolFetch, ToolSearch, ToolValidate, ToolRank}
	defs := make([]llm.ToolDef, 0, len(s))
	for _, name := range ordered {
		if agent, ok := s[name]; ok {
			defs = append(defs, agent.Definition())
		}
	}
	for name, agent := range s {
		if !containsString(ordered, name) {
			defs = append(defs, agent.Definition())
		}
	}
	return defs
}

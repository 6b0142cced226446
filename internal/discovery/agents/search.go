package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"marquee/internal/discovery"
	"marquee/internal/logging"
	"marquee/internal/services/llm"
)

// completer is the language-model surface the search and rank agents need.
type completer interface {
	Configured() bool
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string, opts llm.ChatOptions) (string, error)
}

const searchSystemPrompt = `You are a movie research assistant with live web search.
Find current theatrical releases matching the query.

Respond with ONLY a JSON object:
{
  "movies": [
    {"title": "Exact Official Title", "year": 2026, "overview": "one-line plot", "confidence": 0.95}
  ],
  "notes": "optional caveats about the results"
}

Rules:
- Use EXACT official titles, no suffixes like "(2026)" or "(remake)".
- year: integer, or omit when unknown.
- confidence: 0.0-1.0 relevance to the query.
- Include up to the requested number of movies.
- Exclude concert films, compilations, and re-releases of old movies.`

// SearchAgent performs a free-text movie lookup through the language model's
// web search capability.
type SearchAgent struct {
	client completer
	model  string
	logger *slog.Logger
}

// NewSearchAgent creates a search agent using the given model override.
func NewSearchAgent(client completer, model string, logger *slog.Logger) *SearchAgent {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &SearchAgent{
		client: client,
		model:  model,
		logger: logging.WithComponent(logger, "agent.search"),
	}
}

type searchArgs struct {
	Query      string `json:"query"`
	Criteria   string `json:"criteria,omitempty"`
	MaxResults int    `json:"max_results,omitempty"`
	Region     string `json:"region,omitempty"`
}

type searchPayload struct {
	Movies []discovery.Candidate `json:"movies"`
	Notes  string                `json:"notes,omitempty"`
}

// Definition describes the search_movies tool.
func (a *SearchAgent) Definition() llm.ToolDef {
	return llm.ToolDef{
		Name: discovery.ToolSearch,
		Description: "Search the web for movies matching free-text criteria. " +
			"Supplements the ranked-list sources with current releases and context.",
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"query": {"type": "string", "description": "Search query, e.g. 'top box office movies this month'"},
				"criteria": {"type": "string", "description": "Additional filtering criteria"},
				"max_results": {"type": "integer", "description": "Maximum movies to return", "default": 20},
				"region": {"type": "string", "description": "Region for localized results", "default": "US"}
			},
			"required": ["query"]
		}`),
	}
}

// Execute runs the web search. A request that succeeds but returns unusable
// content is reported as a failure distinct from a transport error.
func (a *SearchAgent) Execute(ctx context.Context, args json.RawMessage) (*discovery.Report, error) {
	var req searchArgs
	if len(args) > 0 {
		if err := json.Unmarshal(args, &req); err != nil {
			return discovery.FailureReport(discovery.AgentSearch, discovery.ToolSearch, "invalid arguments", err.Error()), nil
		}
	}
	if strings.TrimSpace(req.Query) == "" {
		return discovery.FailureReport(discovery.AgentSearch, discovery.ToolSearch, "no search query provided"), nil
	}
	if a.client == nil || !a.client.Configured() {
		return discovery.FailureReport(discovery.AgentSearch, discovery.ToolSearch, "no language model configured for search"), nil
	}
	if req.MaxResults <= 0 {
		req.MaxResults = 20
	}
	if req.Region == "" {
		req.Region = "US"
	}

	var prompt strings.Builder
	fmt.Fprintf(&prompt, "Search query: %s\n", req.Query)
	if req.Criteria != "" {
		fmt.Fprintf(&prompt, "Additional criteria: %s\n", req.Criteria)
	}
	fmt.Fprintf(&prompt, "Date: %s\nRegion: %s\nFind up to %d movies matching this search.",
		time.Now().Format("2006-01-02"), req.Region, req.MaxResults)

	started := time.Now()
	content, err := a.client.CompleteJSON(ctx, searchSystemPrompt, prompt.String(), llm.ChatOptions{
		Model:     a.model,
		WebSearch: true,
	})
	if err != nil {
		summary := "search request failed"
		if llm.IsEmptyContent(err) {
			summary = "search returned unusable content"
		}
		a.logger.WarnContext(ctx, summary, "query", req.Query, "error", err)
		return discovery.FailureReport(discovery.AgentSearch, discovery.ToolSearch, summary, err.Error()), nil
	}

	var payload searchPayload
	if err := llm.DecodeJSON(content, &payload); err != nil {
		return discovery.FailureReport(discovery.AgentSearch, discovery.ToolSearch,
			"search response was not parseable", err.Error()), nil
	}

	candidates := make([]discovery.Candidate, 0, len(payload.Movies))
	for _, movie := range payload.Movies {
		if strings.TrimSpace(movie.Title) == "" {
			continue
		}
		if movie.Confidence == 0 {
			movie.Confidence = 0.7
		}
		movie.Sources = []string{"web_search"}
		candidates = append(candidates, movie)
	}
	if len(candidates) > req.MaxResults {
		candidates = candidates[:req.MaxResults]
	}

	report := &discovery.Report{
		Agent:      discovery.AgentSearch,
		Tool:       discovery.ToolSearch,
		Status:     discovery.StatusSuccess,
		Summary:    fmt.Sprintf("found %d movies for %q", len(candidates), req.Query),
		Candidates: candidates,
		Narrative:  payload.Notes,
		Stats:      map[string]any{"query": req.Query, "region": req.Region},
		ElapsedMS:  time.Since(started).Milliseconds(),
	}
	if len(candidates) == 0 {
		report.Status = discovery.StatusPartial
		report.Issues = append(report.Issues, "search produced no usable movie entries")
	}
	a.logger.InfoContext(ctx, "search complete", "query", req.Query, "results", len(candidates))
	return report, nil
}

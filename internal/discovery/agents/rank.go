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
	"marquee/internal/textutil"
)

const rankSystemPrompt = `You are a movie ranking assistant. Given candidates and ranking criteria:

1. Rank candidates from most to least relevant to the criteria.
2. Use any provided ratings: an IMDb score of 7.0+ with substantial votes marks high quality.
3. Add a brief one-line overview when missing.
4. Exclude only candidates that clearly do not fit: concert films, compilations, re-releases.

Respond with ONLY a JSON object:
{
  "ranked": [
    {"title": "Title", "year": 2026, "overview": "one-line plot", "confidence": 0.95, "reasoning": "why it ranks here"}
  ],
  "excluded": [
    {"title": "Concert Film XYZ", "reason": "concert_film"}
  ]
}`

// RankerAgent orders candidates by mainstream appeal using the language
// model, falling back to a deterministic composite of corroboration, chart
// rank, and confidence when no model is available.
type RankerAgent struct {
	client completer
	model  string
	logger *slog.Logger
}

// NewRankerAgent creates a ranker using the given model override.
func NewRankerAgent(client completer, model string, logger *slog.Logger) *RankerAgent {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &RankerAgent{
		client: client,
		model:  model,
		logger: logging.WithComponent(logger, "agent.rank"),
	}
}

type rankArgs struct {
	Candidates []discovery.Candidate `json:"candidates"`
	Criteria   string                `json:"criteria,omitempty"`
	Limit      int                   `json:"limit,omitempty"`
}

type rankPayload struct {
	Ranked   []discovery.Candidate `json:"ranked"`
	Excluded []discovery.Rejection `json:"excluded,omitempty"`
}

// Definition describes the rank_movies tool.
func (a *RankerAgent) Definition() llm.ToolDef {
	return llm.ToolDef{
		Name: discovery.ToolRank,
		Description: "Rank candidates by mainstream appeal and fit with the given criteria, " +
			"excluding clear non-fits. Returns the final ordered list.",
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"candidates": {
					"type": "array",
					"description": "Candidates to rank",
					"items": {
						"type": "object",
						"properties": {
							"title": {"type": "string"},
							"year": {"type": "integer"},
							"confidence": {"type": "number"},
							"sources": {"type": "array", "items": {"type": "string"}}
						},
						"required": ["title"]
					}
				},
				"criteria": {"type": "string", "description": "Ranking criteria"},
				"limit": {"type": "integer", "description": "Maximum candidates to return", "default": 20}
			},
			"required": ["candidates"]
		}`),
	}
}

// Execute ranks the candidates. Model failures degrade to the deterministic
// ordering with a partial status rather than losing the list.
func (a *RankerAgent) Execute(ctx context.Context, args json.RawMessage) (*discovery.Report, error) {
	var req rankArgs
	if len(args) > 0 {
		if err := json.Unmarshal(args, &req); err != nil {
			return discovery.FailureReport(discovery.AgentRanker, discovery.ToolRank, "invalid arguments", err.Error()), nil
		}
	}
	if len(req.Candidates) == 0 {
		return discovery.FailureReport(discovery.AgentRanker, discovery.ToolRank, "no candidates provided for ranking"), nil
	}
	if req.Limit <= 0 {
		req.Limit = 20
	}

	started := time.Now()
	if a.client == nil || !a.client.Configured() {
		return a.deterministic(req, started, "no language model configured, ranked deterministically"), nil
	}

	input, err := json.Marshal(req.Candidates)
	if err != nil {
		return discovery.FailureReport(discovery.AgentRanker, discovery.ToolRank, "encode candidates failed", err.Error()), nil
	}
	var prompt strings.Builder
	fmt.Fprintf(&prompt, "Criteria: %s\nReturn at most %d movies.\n\nCandidates:\n%s",
		orDefault(req.Criteria, "noteworthy wide theatrical releases"), req.Limit, input)

	content, err := a.client.CompleteJSON(ctx, rankSystemPrompt, prompt.String(), llm.ChatOptions{Model: a.model})
	if err != nil {
		a.logger.WarnContext(ctx, "rank model call failed, using deterministic order", "error", err)
		return a.deterministic(req, started, "model ranking failed: "+err.Error()), nil
	}
	var payload rankPayload
	if err := llm.DecodeJSON(content, &payload); err != nil || len(payload.Ranked) == 0 {
		a.logger.WarnContext(ctx, "rank response unusable, using deterministic order")
		return a.deterministic(req, started, "model ranking response was not parseable"), nil
	}

	// The model reorders and annotates, but identity metadata from the
	// input is authoritative: rejoin by normalized key, tolerating the
	// year drifting by one or going missing in the model's echo.
	byKey := make(map[string]discovery.Candidate, len(req.Candidates))
	for _, candidate := range req.Candidates {
		byKey[candidate.Key()] = candidate
	}
	matchInput := func(entry discovery.Candidate) (discovery.Candidate, bool) {
		if original, ok := byKey[entry.Key()]; ok {
			return original, true
		}
		for _, candidate := range req.Candidates {
			if textutil.MatchesKey(entry.Key(), candidate.Key()) {
				return candidate, true
			}
		}
		return discovery.Candidate{}, false
	}
	ranked := make([]discovery.Candidate, 0, len(payload.Ranked))
	for _, entry := range payload.Ranked {
		if original, ok := matchInput(entry); ok {
			if entry.Overview != "" {
				original.Overview = entry.Overview
			}
			if entry.Confidence > 0 {
				original.Confidence = entry.Confidence
			}
			original.Reasoning = entry.Reasoning
			ranked = append(ranked, original)
		}
	}
	if len(ranked) == 0 {
		return a.deterministic(req, started, "model ranking returned no known candidates"), nil
	}
	ranked = discovery.Truncate(ranked, req.Limit)

	a.logger.InfoContext(ctx, "ranking complete", "ranked", len(ranked), "excluded", len(payload.Excluded))
	return &discovery.Report{
		Agent:      discovery.AgentRanker,
		Tool:       discovery.ToolRank,
		Status:     discovery.StatusSuccess,
		Summary:    fmt.Sprintf("ranked %d candidates, excluded %d", len(ranked), len(payload.Excluded)),
		Candidates: ranked,
		Rejected:   payload.Excluded,
		ElapsedMS:  time.Since(started).Milliseconds(),
	}, nil
}

func (a *RankerAgent) deterministic(req rankArgs, started time.Time, note string) *discovery.Report {
	ranked := make([]discovery.Candidate, len(req.Candidates))
	copy(ranked, req.Candidates)
	discovery.SortByAppeal(ranked)
	ranked = discovery.Truncate(ranked, req.Limit)
	return &discovery.Report{
		Agent:      discovery.AgentRanker,
		Tool:       discovery.ToolRank,
		Status:     discovery.StatusPartial,
		Summary:    fmt.Sprintf("ranked %d candidates deterministically", len(ranked)),
		Candidates: ranked,
		Issues:     []string{note},
		ElapsedMS:  time.Since(started).Milliseconds(),
	}
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"marquee/internal/logging"
	"marquee/internal/services"
	"marquee/internal/services/llm"
)

const orchestratorSystemPrompt = `You are a movie discovery orchestrator. You coordinate specialized
agents to find HIGH-QUALITY, MAINSTREAM theatrical movies for the user.

Every tool returns a JSON report with status, summary, candidates, and issues.
A "failure" status means that call produced nothing usable: fall back to an
alternate source instead of giving up.

Your process, in order:
1. fetch_movies from imdb_chart (most reliable), and rt_theaters when more coverage is needed.
2. search_movies for current box-office and trending context.
3. validate_movies over the combined list to merge duplicates and drop non-movies,
   already-owned titles, and re-releases.
4. rank_movies over the validated list with the user's criteria and limit.

The rank_movies result is your final answer. Unless the user asks otherwise,
prefer wide theatrical releases and exclude concert films, compilations, and
re-releases. Stop calling tools once ranking has succeeded.`

// chatClient is the reasoning-model surface the orchestrator drives.
type chatClient interface {
	Configured() bool
	Chat(ctx context.Context, messages []llm.Message, tools []llm.ToolDef, opts llm.ChatOptions) (llm.Message, error)
}

// OrchestratorConfig bounds one orchestrator instance.
type OrchestratorConfig struct {
	// Model overrides the chat client's default reasoning model.
	Model string
	// MaxIterations caps the tool-call loop. Defaults to 5.
	MaxIterations int
	// Region is the default region hint for searches. Defaults to "US".
	Region string
	// Sources names the ranked-list sources the fixed pipeline fetches, in
	// order. Defaults to imdb_chart and rt_theaters.
	Sources []string
	// MaxLimit caps Request.Limit. Defaults to 50.
	MaxLimit int
}

// Request is one discovery intent.
type Request struct {
	// Prompt is the free-text discovery request.
	Prompt string
	// Limit bounds the result list, clamped to 1-50. Defaults to 10.
	Limit int
	// Region overrides the configured region hint.
	Region string
}

// Result is the outcome of one discovery run. An empty candidate list with
// diagnostics, not an error, is how a run in which every source failed ends.
type Result struct {
	Candidates  []Candidate
	Diagnostics []string
}

// Orchestrator turns one discovery request into a ranked candidate list by
// sequencing agent calls, adaptively when a reasoning model is configured and
// through a fixed fetch/search/validate/rank pipeline otherwise.
type Orchestrator struct {
	chat   chatClient
	agents AgentSet
	config OrchestratorConfig
	logger *slog.Logger
}

// NewOrchestrator builds an orchestrator over the given agent set.
func NewOrchestrator(chat chatClient, agents AgentSet, config OrchestratorConfig, logger *slog.Logger) *Orchestrator {
	if config.MaxIterations <= 0 {
		config.MaxIterations = 5
	}
	if config.Region == "" {
		config.Region = "US"
	}
	if len(config.Sources) == 0 {
		config.Sources = []string{"imdb_chart", "rt_theaters"}
	}
	if config.MaxLimit <= 0 || config.MaxLimit > 50 {
		config.MaxLimit = 50
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Orchestrator{
		chat:   chat,
		agents: agents,
		config: config,
		logger: logging.WithComponent(logger, "orchestrator"),
	}
}

// Discover runs one discovery request end to end. Single-source failures are
// recorded as diagnostics and the run continues with the remaining sources.
func (o *Orchestrator) Discover(ctx context.Context, req Request) (*Result, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, fmt.Errorf("discover: prompt required")
	}
	if req.Limit <= 0 {
		req.Limit = 10
	}
	if req.Limit > o.config.MaxLimit {
		req.Limit = o.config.MaxLimit
	}
	if req.Region == "" {
		req.Region = o.config.Region
	}

	ctx, runID := services.EnsureRunID(ctx)
	logger := o.logger.With(logging.FieldRunID, runID)
	logger.InfoContext(ctx, "discovery run starting", "prompt", req.Prompt, "limit", req.Limit)

	if o.chat == nil || !o.chat.Configured() {
		logger.InfoContext(ctx, "no reasoning model configured, using fixed pipeline")
		return o.fixedPipeline(ctx, logger, req, []string{"no reasoning model configured, used the fixed pipeline"})
	}

	result, diagnostics := o.reasoningLoop(ctx, logger, req)
	if len(result) == 0 {
		logger.WarnContext(ctx, "reasoning loop produced no candidates, using fixed pipeline")
		return o.fixedPipeline(ctx, logger, req, diagnostics)
	}

	result = Truncate(Deduplicate(result), req.Limit)
	logger.InfoContext(ctx, "discovery run complete", "candidates", len(result))
	return &Result{Candidates: result, Diagnostics: diagnostics}, nil
}

// reasoningLoop drives the model's tool-call conversation until it stops
// requesting tools, ranking succeeds, or the iteration cap is hit.
func (o *Orchestrator) reasoningLoop(ctx context.Context, logger *slog.Logger, req Request) ([]Candidate, []string) {
	messages := []llm.Message{
		{Role: "system", Content: orchestratorSystemPrompt},
		{Role: "user", Content: fmt.Sprintf(
			"Today's date: %s\n\nUser request: %s\n\nLimit: %d movies\nRegion: %s",
			time.Now().Format("January 02, 2006"), req.Prompt, req.Limit, req.Region)},
	}
	tools := o.agents.ToolDefs()

	var final []Candidate
	var diagnostics []string
	ranked := false

	for iteration := 1; iteration <= o.config.MaxIterations && !ranked; iteration++ {
		reply, err := o.chat.Chat(ctx, messages, tools, llm.ChatOptions{
			Model:       o.config.Model,
			Temperature: 0.3,
		})
		if err != nil {
			diagnostics = append(diagnostics, "reasoning model call failed: "+err.Error())
			logger.WarnContext(ctx, "reasoning model call failed", "iteration", iteration, "error", err)
			break
		}
		if len(reply.ToolCalls) == 0 {
			break
		}

		messages = append(messages, reply)
		for _, call := range reply.ToolCalls {
			report := o.dispatch(ctx, logger, call.Function.Name, json.RawMessage(call.Function.Arguments))
			messages = append(messages, llm.Message{
				Role:       "tool",
				Content:    report.Encode(),
				ToolCallID: call.ID,
				Name:       call.Function.Name,
			})
			diagnostics = append(diagnostics, report.Issues...)
			if call.Function.Name == ToolRank && !report.Failed() {
				final = report.Candidates
				ranked = true
			}
		}
	}
	return final, diagnostics
}

// fixedPipeline is the deterministic fallback: fetch every configured
// source, search, validate, rank. Any one stage failing is a diagnostic, not
// an abort; only a run in which nothing yields candidates returns empty.
func (o *Orchestrator) fixedPipeline(ctx context.Context, logger *slog.Logger, req Request, diagnostics []string) (*Result, error) {
	var pool []Candidate

	for _, source := range o.config.Sources {
		report := o.dispatch(ctx, logger, ToolFetch, mustEncode(map[string]any{
			"source": source, "max_movies": 50,
		}))
		diagnostics = append(diagnostics, report.Issues...)
		if report.Failed() {
			diagnostics = append(diagnostics, fmt.Sprintf("source %s failed: %s", source, report.Summary))
			continue
		}
		pool = append(pool, report.Candidates...)
	}

	searchReport := o.dispatch(ctx, logger, ToolSearch, mustEncode(map[string]any{
		"query": req.Prompt, "max_results": 20, "region": req.Region,
	}))
	diagnostics = append(diagnostics, searchReport.Issues...)
	if searchReport.Failed() {
		diagnostics = append(diagnostics, "web search failed: "+searchReport.Summary)
	} else {
		pool = append(pool, searchReport.Candidates...)
	}

	if len(pool) == 0 {
		logger.WarnContext(ctx, "every discovery source failed")
		return &Result{Diagnostics: append(diagnostics, "no candidates: every discovery source failed")}, nil
	}

	validateReport := o.dispatch(ctx, logger, ToolValidate, mustEncode(map[string]any{
		"candidates": pool, "deduplicate": true, "enrich": true,
		"filter_in_library": true, "filter_rereleases": true,
	}))
	diagnostics = append(diagnostics, validateReport.Issues...)
	validated := pool
	if !validateReport.Failed() {
		validated = validateReport.Candidates
	} else {
		diagnostics = append(diagnostics, "validation failed: "+validateReport.Summary)
		validated = Deduplicate(validated)
	}

	rankReport := o.dispatch(ctx, logger, ToolRank, mustEncode(map[string]any{
		"candidates": validated, "criteria": req.Prompt, "limit": req.Limit,
	}))
	diagnostics = append(diagnostics, rankReport.Issues...)
	ranked := validated
	if !rankReport.Failed() {
		ranked = rankReport.Candidates
	} else {
		diagnostics = append(diagnostics, "ranking failed: "+rankReport.Summary)
		SortByAppeal(ranked)
	}

	ranked = Truncate(Deduplicate(ranked), req.Limit)
	logger.InfoContext(ctx, "fixed pipeline complete", "candidates", len(ranked))
	return &Result{Candidates: ranked, Diagnostics: diagnostics}, nil
}

// dispatch routes one tool invocation to its registered agent. Unknown tools
// and agent errors both come back as failure reports, so the caller and the
// model see a uniform payload.
func (o *Orchestrator) dispatch(ctx context.Context, logger *slog.Logger, tool string, args json.RawMessage) *Report {
	agent, ok := o.agents[tool]
	if !ok {
		return FailureReport("unknown", tool, fmt.Sprintf("unknown tool %q", tool))
	}
	logger.DebugContext(ctx, "dispatching agent", logging.FieldAgent, tool)
	report, err := agent.Execute(ctx, args)
	if err != nil {
		logger.WarnContext(ctx, "agent execution failed", logging.FieldAgent, tool, "error", err)
		return FailureReport("unknown", tool, "agent execution failed", err.Error())
	}
	return report
}

func mustEncode(args map[string]any) json.RawMessage {
	encoded, err := json.Marshal(args)
	if err != nil {
		return json.RawMessage("{}")
	}
	return encoded
}

package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"marquee/internal/discovery"
	"marquee/internal/discovery/parsers"
	"marquee/internal/logging"
	"marquee/internal/services/llm"
)

// Default source URLs for the named ranked-list sources.
var defaultSourceURLs = map[string]string{
	parsers.SourceIMDBChart:  "https://www.imdb.com/chart/moviemeter/",
	parsers.SourceRTTheaters: "https://www.rottentomatoes.com/browse/movies_in_theaters/",
}

const fetchConfidence = 0.8

// FetchAgent retrieves a ranked candidate list from one named source and
// parses it.
type FetchAgent struct {
	httpClient *http.Client
	sourceURLs map[string]string
	logger     *slog.Logger
}

// NewFetchAgent creates a fetch agent. Extra source URLs extend or override
// the defaults; a nil client gets a 30s-timeout default.
func NewFetchAgent(client *http.Client, sourceURLs map[string]string, logger *slog.Logger) *FetchAgent {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	urls := make(map[string]string, len(defaultSourceURLs)+len(sourceURLs))
	for name, u := range defaultSourceURLs {
		urls[name] = u
	}
	for name, u := range sourceURLs {
		urls[name] = u
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &FetchAgent{
		httpClient: client,
		sourceURLs: urls,
		logger:     logging.WithComponent(logger, "agent.fetch"),
	}
}

type fetchArgs struct {
	Source    string `json:"source"`
	URL       string `json:"url,omitempty"`
	MaxMovies int    `json:"max_movies,omitempty"`
}

// Definition describes the fetch_movies tool.
func (a *FetchAgent) Definition() llm.ToolDef {
	return llm.ToolDef{
		Name: discovery.ToolFetch,
		Description: "Fetch a ranked movie list from one named source. " +
			"Sources: imdb_chart (IMDb MOVIEmeter, most reliable), rt_theaters (Rotten Tomatoes in-theaters).",
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"source": {"type": "string", "enum": ["imdb_chart", "rt_theaters"], "description": "Named source to fetch"},
				"url": {"type": "string", "description": "Override URL for the source"},
				"max_movies": {"type": "integer", "description": "Maximum entries to return", "default": 50}
			},
			"required": ["source"]
		}`),
	}
}

// Execute fetches and parses the source document. A drifted page layout
// yields a partial report with a diagnostic, not an error.
func (a *FetchAgent) Execute(ctx context.Context, args json.RawMessage) (*discovery.Report, error) {
	var req fetchArgs
	if len(args) > 0 {
		if err := json.Unmarshal(args, &req); err != nil {
			return discovery.FailureReport(discovery.AgentFetch, discovery.ToolFetch, "invalid arguments", err.Error()), nil
		}
	}
	if req.Source == "" {
		return discovery.FailureReport(discovery.AgentFetch, discovery.ToolFetch, "no source specified"), nil
	}
	sourceURL := req.URL
	if sourceURL == "" {
		sourceURL = a.sourceURLs[req.Source]
	}
	if sourceURL == "" {
		return discovery.FailureReport(discovery.AgentFetch, discovery.ToolFetch,
			fmt.Sprintf("unknown source %q", req.Source)), nil
	}

	started := time.Now()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return discovery.FailureReport(discovery.AgentFetch, discovery.ToolFetch, "build request failed", err.Error()), nil
	}
	httpReq.Header.Set("User-Agent", "Mozilla/5.0 (compatible; marquee/0.1)")
	httpReq.Header.Set("Accept", "text/html")

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		a.logger.WarnContext(ctx, "source fetch failed", logging.FieldSource, req.Source, "error", err)
		return discovery.FailureReport(discovery.AgentFetch, discovery.ToolFetch,
			fmt.Sprintf("fetch %s failed", req.Source), err.Error()), nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return discovery.FailureReport(discovery.AgentFetch, discovery.ToolFetch,
			fmt.Sprintf("fetch %s returned http %d", req.Source, resp.StatusCode)), nil
	}

	entries, err := parsers.Get(req.Source).Parse(resp.Body, sourceURL)
	if err != nil {
		return discovery.FailureReport(discovery.AgentFetch, discovery.ToolFetch,
			fmt.Sprintf("parse %s failed", req.Source), err.Error()), nil
	}

	max := req.MaxMovies
	if max <= 0 {
		max = 50
	}
	if len(entries) > max {
		entries = entries[:max]
	}

	candidates := make([]discovery.Candidate, 0, len(entries))
	for _, entry := range entries {
		candidates = append(candidates, discovery.Candidate{
			Title:      entry.Title,
			Year:       entry.Year,
			Rank:       entry.Rank,
			Confidence: fetchConfidence,
			Sources:    []string{entry.Source},
		})
	}

	report := &discovery.Report{
		Agent:      discovery.AgentFetch,
		Tool:       discovery.ToolFetch,
		Status:     discovery.StatusSuccess,
		Summary:    fmt.Sprintf("fetched %d entries from %s", len(candidates), req.Source),
		Candidates: candidates,
		Stats:      map[string]any{"source": req.Source, "url": sourceURL},
		ElapsedMS:  time.Since(started).Milliseconds(),
	}
	if len(candidates) == 0 {
		report.Status = discovery.StatusPartial
		report.Issues = append(report.Issues,
			fmt.Sprintf("source %s returned a page with no recognizable entries, layout may have drifted", req.Source))
	}
	a.logger.InfoContext(ctx, "source fetched",
		logging.FieldSource, req.Source, "entries", len(candidates), "elapsed_ms", report.ElapsedMS)
	return report, nil
}

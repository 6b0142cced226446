package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"marquee/internal/api"
	"marquee/internal/discovery"
	"marquee/internal/logging"
	"marquee/internal/syncer"
)

// workflows is the service surface the tools call into.
type workflows interface {
	Search(ctx context.Context, term string, limit int) ([]api.MovieSummary, error)
	AnalyzeQuality(ctx context.Context, title string, year int) (api.QualityReport, error)
	Discover(ctx context.Context, prompt string, limit int, region string) (api.DiscoveryReport, error)
	Sync(ctx context.Context, candidates []discovery.Candidate, opts syncer.Options) (api.SyncReport, error)
	AddMovie(ctx context.Context, candidate discovery.Candidate, opts syncer.Options) (api.SyncResult, error)
}

// Server wraps the workflow layer as an MCP stdio server.
type Server struct {
	service workflows
	logger  *slog.Logger
	mcp     *server.MCPServer
}

// New builds the MCP server and registers the tool set.
func New(service workflows, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		service: service,
		logger:  logging.WithComponent(logger, "mcp"),
	}
	s.mcp = server.NewMCPServer(
		"marquee",
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)
	s.registerTools()
	return s
}

// Serve blocks, serving the MCP protocol over stdin/stdout.
func (s *Server) Serve() error {
	s.logger.Info("mcp server starting on stdio")
	return server.ServeStdio(s.mcp)
}

func (s *Server) registerTools() {
	s.mcp.AddTool(mcp.NewTool("search_movie",
		mcp.WithDescription("Search movie metadata by title, tmdb:<id>, or imdb:<id>. "+
			"Results include library membership and any known ratings."),
		mcp.WithString("term",
			mcp.Required(),
			mcp.Description("Title or prefixed identifier to search for"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum results to return"),
			mcp.DefaultNumber(10),
		),
	), s.handleSearch)

	s.mcp.AddTool(mcp.NewTool("analyze_quality",
		mcp.WithDescription("Fetch ratings for one title and compute the quality verdict: "+
			"score, tier, red flags, and whether it passes the gate."),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Movie title"),
		),
		mcp.WithNumber("year",
			mcp.Description("Release year, improves matching"),
		),
	), s.handleQuality)

	s.mcp.AddTool(mcp.NewTool("discover_movies",
		mcp.WithDescription("Run the discovery pipeline for a free-text request and return a ranked "+
			"candidate list. An empty list with diagnostics means every source failed."),
		mcp.WithString("prompt",
			mcp.Required(),
			mcp.Description("Discovery request, e.g. 'find 10 acclaimed new wide releases'"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum candidates, 1-50"),
			mcp.DefaultNumber(10),
		),
		mcp.WithString("region",
			mcp.Description("Region hint for localized results"),
		),
	), s.handleDiscover)

	s.mcp.AddTool(mcp.NewTool("add_movie",
		mcp.WithDescription("Add one movie to the library. Runs the existence check and quality gate; "+
			"a quality rejection returns the verdict so the caller can retry with force."),
		mcp.WithString("title",
			mcp.Description("Movie title; optional when an identifier is given"),
		),
		mcp.WithNumber("year",
			mcp.Description("Release year"),
		),
		mcp.WithNumber("tmdb_id",
			mcp.Description("TMDB identifier, preferred when known"),
		),
		mcp.WithString("imdb_id",
			mcp.Description("IMDb identifier, e.g. tt0133093"),
		),
		mcp.WithBoolean("force",
			mcp.Description("Override a quality rejection; never bypasses the existence check"),
		),
		mcp.WithBoolean("dry_run",
			mcp.DefaultBool(true),
			mcp.Description("Preview without adding; defaults to true, pass false to perform the addition"),
		),
		mcp.WithBoolean("skip_quality",
			mcp.Description("Skip quality analysis entirely"),
		),
	), s.handleAdd)

	s.mcp.AddTool(mcp.NewTool("sync_movies",
		mcp.WithDescription("Sync a batch of candidates against the library. Duplicates collapse to one "+
			"addition attempt; per-candidate failures never abort the batch."),
		mcp.WithString("candidates",
			mcp.Required(),
			mcp.Description(`JSON array of candidates: [{"title":"...","year":2026,"tmdb_id":0,"imdb_id":""}]`),
		),
		mcp.WithBoolean("force",
			mcp.Description("Override quality rejections"),
		),
		mcp.WithBoolean("dry_run",
			mcp.DefaultBool(true),
			mcp.Description("Preview without adding; defaults to true, pass false to perform the additions"),
		),
	), s.handleSync)
}

func (s *Server) handleSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	term := argString(request, "term")
	if term == "" {
		return mcp.NewToolResultError("term is required"), nil
	}
	results, err := s.service.Search(ctx, term, argInt(request, "limit", 10))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(results)
}

func (s *Server) handleQuality(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title := argString(request, "title")
	if title == "" {
		return mcp.NewToolResultError("title is required"), nil
	}
	report, err := s.service.AnalyzeQuality(ctx, title, argInt(request, "year", 0))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(report)
}

func (s *Server) handleDiscover(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prompt := argString(request, "prompt")
	if prompt == "" {
		return mcp.NewToolResultError("prompt is required"), nil
	}
	report, err := s.service.Discover(ctx, prompt, argInt(request, "limit", 10), argString(request, "region"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(report)
}

func (s *Server) handleAdd(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	candidate := discovery.Candidate{
		Title:  argString(request, "title"),
		Year:   argInt(request, "year", 0),
		TMDBID: int64(argInt(request, "tmdb_id", 0)),
		IMDBID: argString(request, "imdb_id"),
	}
	if strings.TrimSpace(candidate.Title) == "" && !candidate.HasIdentifier() {
		return mcp.NewToolResultError("a title, tmdb_id, or imdb_id is required"), nil
	}
	result, err := s.service.AddMovie(ctx, candidate, syncer.Options{
		Force:       argBool(request, "force", false),
		DryRun:      argBool(request, "dry_run", true),
		SkipQuality: argBool(request, "skip_quality", false),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(result)
}

func (s *Server) handleSync(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw := argString(request, "candidates")
	if raw == "" {
		return mcp.NewToolResultError("candidates is required"), nil
	}
	var candidates []discovery.Candidate
	if err := json.Unmarshal([]byte(raw), &candidates); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("candidates is not a JSON array: %v", err)), nil
	}
	report, err := s.service.Sync(ctx, candidates, syncer.Options{
		Force:  argBool(request, "force", false),
		DryRun: argBool(request, "dry_run", true),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(report)
}

func jsonResult(payload any) (*mcp.CallToolResult, error) {
	encoded, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return mcp.NewToolResultError("encode result: " + err.Error()), nil
	}
	return mcp.NewToolResultText(string(encoded)), nil
}

func argString(request mcp.CallToolRequest, key string) string {
	return strings.TrimSpace(request.GetString(key, ""))
}

func argInt(request mcp.CallToolRequest, key string, fallback int) int {
	return request.GetInt(key, fallback)
}

// argBool reads a boolean argument. Destructive tools register dry_run with
// a true fallback so a bare call previews instead of mutating the library.
func argBool(request mcp.CallToolRequest, key string, fallback bool) bool {
	return request.GetBool(key, fallback)
}

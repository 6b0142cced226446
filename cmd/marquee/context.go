package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"marquee/internal/api"
	"marquee/internal/config"
	"marquee/internal/discovery"
	"marquee/internal/discovery/agents"
	"marquee/internal/identification/tmdb"
	"marquee/internal/logging"
	"marquee/internal/quality"
	"marquee/internal/ratings"
	"marquee/internal/services/llm"
	"marquee/internal/services/radarr"
	"marquee/internal/syncer"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	serviceOnce sync.Once
	service     *api.Service
	serviceErr  error
	logger      *slog.Logger
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// ensureService wires the full stack once: Radarr and TMDB clients, the
// rating fetch chain, the quality analyzer, the agent set, the orchestrator,
// and the sync engine.
func (c *commandContext) ensureService() (*api.Service, error) {
	c.serviceOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.serviceErr = err
			return
		}

		logger, err := logging.New(logging.Options{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
		})
		if err != nil {
			c.serviceErr = err
			return
		}
		c.logger = logger

		radarrClient, err := radarr.New(
			cfg.Radarr.URL,
			cfg.Radarr.APIKey,
			time.Duration(cfg.Radarr.TimeoutSeconds)*time.Second,
			radarr.WithRetryAttempts(cfg.Radarr.RetryAttempts),
		)
		if err != nil {
			c.serviceErr = fmt.Errorf("radarr client: %w", err)
			return
		}

		fetchers := []ratings.Fetcher{ratings.NewRadarrFetcher(radarrClient)}
		var tmdbSearcher tmdb.Searcher
		if cfg.TMDB.APIKey != "" {
			tmdbClient, err := tmdb.New(cfg.TMDB.APIKey, cfg.TMDB.BaseURL, cfg.TMDB.Language)
			if err != nil {
				c.serviceErr = fmt.Errorf("tmdb client: %w", err)
				return
			}
			tmdbSearcher = tmdbClient
			fetchers = append(fetchers, ratings.NewTMDBFetcher(tmdbClient))
		}
		fetcher := ratings.NewCachedFetcher(
			ratings.NewCombinedFetcher(fetchers...),
			time.Duration(cfg.Ratings.CacheTTLSeconds)*time.Second,
		)

		llmClient := llm.NewClient(llm.Config{
			APIKey:         cfg.LLM.APIKey,
			BaseURL:        cfg.LLM.BaseURL,
			Model:          cfg.LLM.OrchestratorModel,
			Referer:        cfg.LLM.Referer,
			Title:          cfg.LLM.Title,
			TimeoutSeconds: cfg.LLM.TimeoutSeconds,
		})

		fetchHTTP := &http.Client{Timeout: time.Duration(cfg.Discovery.FetchTimeoutSeconds) * time.Second}
		agentSet := discovery.AgentSet{}
		agentSet.Register(agents.NewFetchAgent(fetchHTTP, nil, logger))
		agentSet.Register(agents.NewSearchAgent(llmClient, cfg.LLM.AgentModel, logger))
		agentSet.Register(agents.NewValidatorAgent(radarrClient, tmdbSearcher, logger))
		agentSet.Register(agents.NewRankerAgent(llmClient, cfg.LLM.AgentModel, logger))

		orchestrator := discovery.NewOrchestrator(llmClient, agentSet, discovery.OrchestratorConfig{
			Model:         cfg.LLM.OrchestratorModel,
			MaxIterations: cfg.LLM.MaxIterations,
			Region:        cfg.Discovery.Region,
			Sources:       cfg.Discovery.Sources,
			MaxLimit:      cfg.Discovery.MaxLimit,
		}, logger)

		analyzer := quality.NewAnalyzer(cfg.Quality.Threshold)
		engine := syncer.New(radarrClient, fetcher, analyzer, radarr.AddDefaults{
			QualityProfileID:    cfg.Radarr.QualityProfileID,
			RootFolderPath:      cfg.Radarr.RootFolderPath,
			Monitor:             cfg.Radarr.Monitor,
			MinimumAvailability: cfg.Radarr.MinimumAvailability,
			Tags:                cfg.Radarr.Tags,
			SearchOnAdd:         cfg.Radarr.SearchOnAdd,
		}, logger)

		c.service = api.NewService(radarrClient, orchestrator, engine, fetcher, analyzer, logger)
	})
	return c.service, c.serviceErr
}

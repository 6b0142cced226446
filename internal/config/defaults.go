package config

import (
	"os"
	"strings"
)

const (
	defaultTMDBBaseURL          = "https://api.themoviedb.org/3"
	defaultTMDBLanguage         = "en-US"
	defaultLLMBaseURL           = "https://openrouter.ai/api/v1/chat/completions"
	defaultOrchestratorModel    = "openai/gpt-4o"
	defaultAgentModel           = "openai/gpt-4o-mini"
	defaultLLMReferer           = "https://github.com/marquee-media/marquee"
	defaultLLMTitle             = "Marquee Discovery"
	defaultLLMTimeoutSeconds    = 120
	defaultLLMMaxIterations     = 5
	defaultRadarrTimeoutSeconds = 20
	defaultRadarrRetryAttempts  = 3
	defaultMinimumAvailability  = "announced"
	defaultRegion               = "US"
	defaultMaxLimit             = 50
	defaultFetchTimeoutSeconds  = 30
	defaultQualityThreshold     = 5.0
	defaultCacheTTLSeconds      = 900
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

func defaultSources() []string {
	return []string{"imdb_chart", "rt_theaters"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Radarr: Radarr{
			Monitor:             true,
			MinimumAvailability: defaultMinimumAvailability,
			TimeoutSeconds:      defaultRadarrTimeoutSeconds,
			RetryAttempts:       defaultRadarrRetryAttempts,
		},
		TMDB: TMDB{
			BaseURL:  defaultTMDBBaseURL,
			Language: defaultTMDBLanguage,
		},
		LLM: LLM{
			BaseURL:           defaultLLMBaseURL,
			OrchestratorModel: defaultOrchestratorModel,
			AgentModel:        defaultAgentModel,
			Referer:           defaultLLMReferer,
			Title:             defaultLLMTitle,
			TimeoutSeconds:    defaultLLMTimeoutSeconds,
			MaxIterations:     defaultLLMMaxIterations,
		},
		Discovery: Discovery{
			Sources:             defaultSources(),
			Region:              defaultRegion,
			MaxLimit:            defaultMaxLimit,
			FetchTimeoutSeconds: defaultFetchTimeoutSeconds,
		},
		Quality: Quality{
			Threshold: defaultQualityThreshold,
		},
		Ratings: Ratings{
			CacheTTLSeconds: defaultCacheTTLSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

// normalize trims values and applies environment fallbacks for credentials
// that are commonly supplied outside the config file.
func (c *Config) normalize() {
	c.Radarr.URL = strings.TrimRight(strings.TrimSpace(c.Radarr.URL), "/")
	c.Radarr.APIKey = strings.TrimSpace(c.Radarr.APIKey)
	c.Radarr.RootFolderPath = strings.TrimSpace(c.Radarr.RootFolderPath)
	c.TMDB.APIKey = strings.TrimSpace(c.TMDB.APIKey)
	c.TMDB.BaseURL = strings.TrimRight(strings.TrimSpace(c.TMDB.BaseURL), "/")
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)

	if c.Radarr.URL == "" {
		c.Radarr.URL = strings.TrimRight(strings.TrimSpace(os.Getenv("RADARR_URL")), "/")
	}
	if c.Radarr.APIKey == "" {
		c.Radarr.APIKey = strings.TrimSpace(os.Getenv("RADARR_API_KEY"))
	}
	if c.TMDB.APIKey == "" {
		c.TMDB.APIKey = strings.TrimSpace(os.Getenv("TMDB_API_KEY"))
	}
	if c.LLM.APIKey == "" {
		c.LLM.APIKey = strings.TrimSpace(os.Getenv("MARQUEE_LLM_API_KEY"))
	}

	if c.TMDB.BaseURL == "" {
		c.TMDB.BaseURL = defaultTMDBBaseURL
	}
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	if c.Discovery.Region == "" {
		c.Discovery.Region = defaultRegion
	}
	if len(c.Discovery.Sources) == 0 {
		c.Discovery.Sources = defaultSources()
	}
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

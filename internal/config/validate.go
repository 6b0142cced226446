package config

import (
	"errors"
	"fmt"
)

var knownSources = map[string]bool{
	"imdb_chart":  true,
	"rt_theaters": true,
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateRadarr(); err != nil {
		return err
	}
	if err := c.validateDiscovery(); err != nil {
		return err
	}
	if err := c.validateQuality(); err != nil {
		return err
	}
	if err := c.validateLLM(); err != nil {
		return err
	}
	if c.Ratings.CacheTTLSeconds < 0 {
		return errors.New("ratings.cache_ttl_seconds must not be negative")
	}
	return nil
}

func (c *Config) validateRadarr() error {
	if c.Radarr.URL == "" {
		return errors.New("radarr.url is required. Set RADARR_URL env var or edit the config file (create with 'marquee config init')")
	}
	if c.Radarr.APIKey == "" {
		return errors.New("radarr.api_key is required. Set RADARR_API_KEY env var or edit the config file (create with 'marquee config init')")
	}
	if c.Radarr.TimeoutSeconds <= 0 {
		return errors.New("radarr.timeout_seconds must be positive")
	}
	if c.Radarr.RetryAttempts < 1 {
		return errors.New("radarr.retry_attempts must be at least 1")
	}
	return nil
}

func (c *Config) validateDiscovery() error {
	for _, source := range c.Discovery.Sources {
		if !knownSources[source] {
			return fmt.Errorf("discovery.sources contains unknown source %q", source)
		}
	}
	if c.Discovery.MaxLimit < 1 || c.Discovery.MaxLimit > 50 {
		return errors.New("discovery.max_limit must be between 1 and 50")
	}
	if c.Discovery.FetchTimeoutSeconds <= 0 {
		return errors.New("discovery.fetch_timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateQuality() error {
	if c.Quality.Threshold < 0 || c.Quality.Threshold > 10 {
		return errors.New("quality.threshold must be between 0 and 10")
	}
	return nil
}

func (c *Config) validateLLM() error {
	// The LLM is optional; discovery falls back to the deterministic
	// pipeline without it. Only range-check what is set.
	if c.LLM.TimeoutSeconds <= 0 {
		return errors.New("llm.timeout_seconds must be positive")
	}
	if c.LLM.MaxIterations < 1 {
		return errors.New("llm.max_iterations must be at least 1")
	}
	return nil
}

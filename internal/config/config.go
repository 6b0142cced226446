package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Radarr contains connection settings and add defaults for the Radarr v3 API.
type Radarr struct {
	URL                 string   `toml:"url"`
	APIKey              string   `toml:"api_key"`
	QualityProfileID    int64    `toml:"quality_profile_id"`
	RootFolderPath      string   `toml:"root_folder_path"`
	Monitor             bool     `toml:"monitor"`
	MinimumAvailability string   `toml:"minimum_availability"`
	Tags                []string `toml:"tags"`
	SearchOnAdd         bool     `toml:"search_on_add"`
	TimeoutSeconds      int      `toml:"timeout_seconds"`
	RetryAttempts       int      `toml:"retry_attempts"`
}

// TMDB contains configuration for The Movie Database API.
type TMDB struct {
	APIKey   string `toml:"api_key"`
	BaseURL  string `toml:"base_url"`
	Language string `toml:"language"`
}

// LLM contains connection settings for the discovery orchestrator and agents.
// The orchestrator model plans and sequences agent calls; the agent model
// serves cheaper per-agent tasks (search, rank). When APIKey is empty,
// discovery runs the deterministic fallback pipeline without an LLM.
type LLM struct {
	APIKey            string `toml:"api_key"`
	BaseURL           string `toml:"base_url"`
	OrchestratorModel string `toml:"orchestrator_model"`
	AgentModel        string `toml:"agent_model"`
	Referer           string `toml:"referer"`
	Title             string `toml:"title"`
	TimeoutSeconds    int    `toml:"timeout_seconds"`
	MaxIterations     int    `toml:"max_iterations"`
}

// Discovery contains source lists and limits for the discovery pipeline.
type Discovery struct {
	Sources             []string `toml:"sources"`
	Region              string   `toml:"region"`
	MaxLimit            int      `toml:"max_limit"`
	FetchTimeoutSeconds int      `toml:"fetch_timeout_seconds"`
}

// Quality contains the quality gate settings.
type Quality struct {
	Threshold float64 `toml:"threshold"`
}

// Ratings contains settings for the rating fetch cache.
type Ratings struct {
	CacheTTLSeconds int `toml:"cache_ttl_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for marquee.
//
// Sections by subsystem:
//   - Radarr: library API connection and add defaults
//   - TMDB: search fallback and rating enrichment
//   - LLM: orchestrator/agent models for discovery
//   - Discovery: ranked-list sources, region, limits
//   - Quality: gate threshold
//   - Ratings: fetch cache TTL
//   - Logging: log format and level
type Config struct {
	Radarr    Radarr    `toml:"radarr"`
	TMDB      TMDB      `toml:"tmdb"`
	LLM       LLM       `toml:"llm"`
	Discovery Discovery `toml:"discovery"`
	Quality   Quality   `toml:"quality"`
	Ratings   Ratings   `toml:"ratings"`
	Logging   Logging   `toml:"logging"`
}

// SampleConfig returns the embedded sample configuration document.
func SampleConfig() string {
	return sampleConfig
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/marquee/config.toml")
}

// Load locates, parses, and validates a configuration file. It returns the
// config, the resolved path, and whether the file existed.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}

	projectPath, err := filepath.Abs("marquee.toml")
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// WriteSample writes the embedded sample configuration to path, creating
// parent directories. It refuses to overwrite an existing file.
func WriteSample(path string) (string, error) {
	expanded, err := expandPath(path)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(expanded); err == nil {
		return "", fmt.Errorf("config file already exists at %s", expanded)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("stat config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(expanded, []byte(sampleConfig), 0o644); err != nil {
		return "", fmt.Errorf("write config: %w", err)
	}
	return expanded, nil
}

func expandPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", errors.New("path must not be empty")
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if path == "~" {
			return home, nil
		}
		path = filepath.Join(home, path[2:])
	}
	return filepath.Abs(path)
}

// Package config loads, normalizes, and validates marquee configuration.
//
// It supplies repository defaults, expands user paths, reads TOML files, and
// honours environment fallbacks such as RADARR_API_KEY and TMDB_API_KEY. The
// Config type centralizes every knob the CLI and MCP server need: Radarr
// connection and add defaults, rating provider credentials, LLM settings for
// the discovery orchestrator, discovery source lists, and the quality gate
// threshold.
//
// Always obtain settings through this package so downstream code receives
// sanitized values and clear validation errors.
package config

// Package logging wraps log/slog with marquee conventions.
//
// It builds console or JSON handlers from configuration, exposes the
// standardized attribute keys used across components (component, run_id,
// candidate, source, agent), and derives per-call attributes from context so
// a discovery run's log lines correlate end to end.
package logging

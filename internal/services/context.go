package services

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	runIDKey     contextKey = "run_id"
	componentKey contextKey = "component"
	candidateKey contextKey = "candidate"
)

// WithRunID annotates context with a discovery or sync run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// EnsureRunID returns a context guaranteed to carry a run identifier,
// generating a fresh one when absent, plus the identifier itself.
func EnsureRunID(ctx context.Context) (context.Context, string) {
	if id, ok := RunIDFromContext(ctx); ok {
		return ctx, id
	}
	id := uuid.NewString()
	return WithRunID(ctx, id), id
}

// WithComponent annotates context with the active component name.
func WithComponent(ctx context.Context, component string) context.Context {
	if component == "" {
		return ctx
	}
	return context.WithValue(ctx, componentKey, component)
}

// ComponentFromContext returns the component name if present.
func ComponentFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(componentKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithCandidate annotates context with the candidate title currently being
// processed, so per-candidate log lines correlate across components.
func WithCandidate(ctx context.Context, title string) context.Context {
	if title == "" {
		return ctx
	}
	return context.WithValue(ctx, candidateKey, title)
}

// CandidateFromContext returns the candidate title if present.
func CandidateFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(candidateKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

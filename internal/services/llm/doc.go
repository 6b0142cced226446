// Package llm provides an OpenRouter-compatible chat client for the
// discovery pipeline.
//
// This package is used by:
//   - Orchestrator: tool-calling reasoning loop over the agent set
//   - Search agent: live web search for trending releases
//   - Ranker agent: reorder candidates against free-text criteria
//
// # Request Modes
//
// Chat sends a full message history with optional tool definitions and
// returns the assistant message, including any tool calls the model issued.
// CompleteJSON is the single-shot variant used by agents: system plus user
// prompt, JSON-only response format, optional web search plugin.
//
// # Failure Modes
//
// The client distinguishes transport failures from responses that succeeded
// but carried no usable content. The latter surface as an error matched by
// IsEmptyContent, so callers can treat "model returned nothing" differently
// from "request failed".
//
// # Retry Behaviour
//
// Requests retry on HTTP 408/429/5xx and network timeouts with exponential
// backoff (base 1s, max 10s, up to 5 attempts by default), honouring
// Retry-After. Context cancellation aborts retries immediately.
package llm

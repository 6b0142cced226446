// Package syncer reconciles discovered candidates against the Radarr
// library. Each candidate moves through a per-invocation state machine from
// pending to exactly one terminal state: resolved existing, not found,
// quality rejected, added, or add failed. Existence checks are never
// bypassable; the quality gate is, via an explicit force flag.
package syncer

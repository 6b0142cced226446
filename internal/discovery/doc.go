// Package discovery finds noteworthy theatrical releases. An orchestrating
// language model plans tool calls against four specialized agents (fetch,
// search, validate, rank); each agent returns a schema-validated report whose
// JSON payload is authoritative, with any narrative text carried only as
// diagnostic metadata. When no orchestrator model is configured, or the
// reasoning loop produces nothing, a deterministic pipeline runs the same
// agents in a fixed order.
package discovery

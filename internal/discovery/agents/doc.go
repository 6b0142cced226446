// Package agents implements the four specialized discovery workers: fetch
// (pull a ranked list from a named source), search (model-backed web lookup),
// validate (rule-based filtering plus library enrichment), and rank (order by
// mainstream appeal). Each agent advertises a JSON-schema tool definition and
// returns a structured report; a failed run produces a failure report, never
// partial success.
package agents

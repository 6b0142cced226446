// Package api defines the caller-facing result contract and the service
// layer shared by the CLI and the MCP server. It translates internal
// discovery, quality, and sync models into transport-friendly DTOs so
// front-ends never couple to internal types.
//
// Every terminal outcome carries a human-readable message plus the
// machine-readable code from the fixed error taxonomy; quality rejections
// additionally carry the full QualityReport so a caller can decide on an
// override without re-querying.
package api

// Package mcpserver exposes the discovery, quality, and sync workflows as
// Model Context Protocol tools over stdio, so LLM front-ends can drive the
// same service layer the CLI uses. Tool results are the JSON transport types
// from the api package rendered as text content.
package mcpserver

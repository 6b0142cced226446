// Package main hosts the marquee CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into the
// shared workflow layer: discovery runs, quality analysis, Radarr sync, and
// configuration scaffolding. It centralizes configuration resolution and
// dependency wiring so subcommands can focus on flags and output.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main

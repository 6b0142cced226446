// Package parsers converts raw fetched documents into normalized candidate
// entries. Parsers are pure: no network, no state, and a page whose layout
// has drifted yields zero entries rather than an error, so callers can report
// a diagnostic and fall back to other sources.
package parsers

// Package health provides health checking for cache backends.
//
// A BackendChecker pings a store.Backend and optionally performs a
// write/read/delete probe to verify the backend serves traffic, not just
// connections. An Aggregator combines multiple checkers, and HTTP handlers
// expose the results as liveness/readiness probes.
package health

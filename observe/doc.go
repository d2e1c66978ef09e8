// Package observe provides observability primitives for cache operations.
//
// It is a pure instrumentation library: no caching, no I/O beyond exporter
// setup. Consumers wrap a store.Backend with NewBackend to get per-operation
// tracing, metrics, and logging, or wire the Observer's primitives directly.
package observe

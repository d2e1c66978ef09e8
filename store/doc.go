// Package store adapts an abstract get/set/delete/clear contract onto an
// external key-value backend.
//
// It provides a Backend interface with Redis and in-memory implementations,
// a Store adapter that handles value encoding and TTL policy, and a JSON
// wire codec with a raw-bytes fallback for legacy values.
package store

// Package kv provides the key-value substrate every PinoyFlex store is built on.
//
// # Overview
//
// A Substrate stores opaque strings under fixed names. It knows nothing about
// the documents the stores keep in it; stores read a whole document, transform
// it, and write the whole document back in a single Set.
//
//   - Substrate: Get/Set/Remove contract
//   - Memory: map-backed implementation for tests and throwaway sessions
//   - SQLite: single-table implementation for persistent storage
//   - Collection: typed JSON view of one key with empty-default fallback
//
// # Error Handling
//
// A missing key is not an error: Get reports it with ok=false. Backend
// failures (closed database, disk full, locked file) are wrapped with
// ErrUnavailable so callers can test for them with errors.Is.
//
// Collection.Load never surfaces a decoding problem. Malformed JSON, a
// document of the wrong shape, or a literal null all load as the empty
// default and are logged at warn level.
//
// # SQLite Drivers
//
// Two drivers are registered:
//
//	sqlite   modernc.org/sqlite, pure Go (default)
//	sqlite3  github.com/mattn/go-sqlite3, requires cgo
//
// # Concurrency
//
// Implementations are safe for concurrent use. Nothing coordinates a
// read-modify-write across keys or across processes sharing one SQLite file:
// the last writer of a key wins.
package kv

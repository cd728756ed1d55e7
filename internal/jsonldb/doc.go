// Package jsonldb provides a generic, concurrent-safe, JSONL-backed data store.
//
// # Overview
//
// The package centers around [Table], a generic container that stores rows in a
// JSONL (JSON Lines) file with full in-memory caching for fast reads. Tables are
// safe for concurrent use by multiple goroutines. Line 1 of each file is a schema
// header derived from the row type; subsequent lines are JSON rows.
//
// # Concurrency
//
// Table uses pessimistic locking: mutations hold the write lock for the entire
// read-modify-write operation, so they always succeed without retries. The
// tradeoff is lower throughput under contention, which is acceptable for local
// file storage with low concurrency.
//
// # Secondary Indexes
//
// [UniqueIndex] and [Index] provide O(1) lookups by arbitrary keys, staying
// synchronized with table mutations via [TableObserver].
package jsonldb

// Package shard implements the shard-local index service: the component
// that actually owns vectors. It wraps an internal/index.FlatIndex with
// the dedup-on-insert and remove-then-add-on-upsert bookkeeping spec.md
// §4.F requires, and exposes the same four-verb contract the router does
// (Describe, Insert, Upsert, Search), so the router can be tested against
// an in-process Service wherever a real shardclient.HTTPClient would
// otherwise be needed.
//
// # Concurrency
//
// A Service serializes all four operations behind a single mutex. This is
// stricter than the router's locking (which only serializes Insert) but
// matches how a single shard process is actually used: one index, one
// owning goroutine pool, no benefit to finer-grained locking since every
// operation touches the whole index.
package shard

// Package algo implements the two small, pure algorithms the router builds
// its correctness guarantees on: greedy capacity-aware bucket-fill for
// placement decisions, and a bounded-size min-heap merger for streaming
// top-k selection across shard result batches.
//
// Both are deliberately tiny and dependency-free so they can be tested in
// isolation from the router's RPC and locking concerns.
package algo

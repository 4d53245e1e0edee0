// Package router coordinates a fixed set of vector-index shards behind a
// single Describe/Insert/Upsert/Search surface.
//
// Architecture:
//
//	┌───────────────────────────────────────────┐
//	│                  Router                    │
//	├─────────────────────────────────────────────┤
//	│ placement: Placement (shard_of, shard_sizes) │
//	│ shards: []shardclient.Client                │
//	├─────────────────────────────────────────────┤
//	│ Insert: greedy-fill new IDs, RPC per shard   │
//	│ Upsert: split existing/new, RPC per shard    │
//	│ Search: merge top-k across non-empty shards  │
//	│ Describe: sum num_vectors across all shards  │
//	└───────────────────────────────────────────┘
//
// Each shard is reached through the shardclient.Client interface, so the
// same Router works whether shards are in-process (tests, single-binary
// deployments) or remote HTTP services (cmd/router).
package router

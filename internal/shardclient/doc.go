// Package shardclient defines the capability interface the router uses to
// talk to a shard — Describe, Insert, Upsert, Search — and an HTTPClient
// implementation that speaks it over the wire package's JSON/HTTP
// transport. Because shard.Service implements the same method set
// in-process, the router can be driven in tests by fake shards without any
// HTTP involved (see internal/router/router_test.go), exactly the
// local-vs-remote polymorphism spec.md §9 calls for.
package shardclient

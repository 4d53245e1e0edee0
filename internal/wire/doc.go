// Package wire holds the request/response types exchanged between a router
// and its shards, and the HTTP/JSON helpers used to send them. Both the
// router and the shard-local index service implement the same four-verb
// contract (Describe, Insert, Upsert, Search) over these types, which is
// what lets the router be tested with in-process fake shards instead of
// real HTTP servers.
package wire

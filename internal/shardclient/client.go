package shardclient

import (
	"context"

	"github.com/dreamware/torua/internal/wire"
)

// Client is the capability every shard exposes to a router, and every
// router exposes to its clients: describe/insert/upsert/search over the
// same request/response shapes. shard.Service returns *vstatus.Error
// values, which let the caller distinguish invalid-argument,
// resource-exhausted and unavailable outcomes; HTTPClient does not (see
// its documentation).
type Client interface {
	Describe(ctx context.Context, req wire.DescribeRequest) (wire.DescribeResponse, error)
	Insert(ctx context.Context, req wire.InsertRequest) (wire.InsertResponse, error)
	Upsert(ctx context.Context, req wire.UpsertRequest) (wire.UpsertResponse, error)
	Search(ctx context.Context, req wire.SearchRequest) (wire.SearchResponse, error)
}

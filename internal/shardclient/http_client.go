package shardclient

import (
	"context"
	"fmt"

	"github.com/dreamware/torua/internal/wire"
)

// HTTPClient talks to a shard process over HTTP/JSON, constructed once per
// shard endpoint at router startup and reused for the life of the router
// (§5 Ownership: each shard client handle is exclusively owned by the
// router). Its errors are *wire.HTTPError for a non-2xx response or plain
// transport/decoding errors, never *vstatus.Error: the shard's
// invalid-argument or resource-exhausted status is not translated back,
// and vstatus.CodeOf reports every such error as Unavailable. The router
// tags each failure with the shard's index before surfacing it to clients.
type HTTPClient struct {
	// Addr is the shard's base URL, e.g. "http://127.0.0.1:8081".
	Addr string
}

// NewHTTPClient constructs a client for the shard listening at addr.
func NewHTTPClient(addr string) *HTTPClient {
	return &HTTPClient{Addr: addr}
}

func (c *HTTPClient) Describe(ctx context.Context, req wire.DescribeRequest) (wire.DescribeResponse, error) {
	var resp wire.DescribeResponse
	err := wire.PostJSON(ctx, c.Addr+"/describe", req, &resp)
	return resp, err
}

func (c *HTTPClient) Insert(ctx context.Context, req wire.InsertRequest) (wire.InsertResponse, error) {
	var resp wire.InsertResponse
	err := wire.PostJSON(ctx, c.Addr+"/insert", req, &resp)
	return resp, err
}

func (c *HTTPClient) Upsert(ctx context.Context, req wire.UpsertRequest) (wire.UpsertResponse, error) {
	var resp wire.UpsertResponse
	err := wire.PostJSON(ctx, c.Addr+"/upsert", req, &resp)
	return resp, err
}

func (c *HTTPClient) Search(ctx context.Context, req wire.SearchRequest) (wire.SearchResponse, error) {
	var resp wire.SearchResponse
	err := wire.PostJSON(ctx, c.Addr+"/search", req, &resp)
	return resp, err
}

func (c *HTTPClient) String() string {
	return fmt.Sprintf("shardclient.HTTPClient{%s}", c.Addr)
}

var _ Client = (*HTTPClient)(nil)

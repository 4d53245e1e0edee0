package shardclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dreamware/torua/internal/shard"
	"github.com/dreamware/torua/internal/wire"
)

// serveShard wires a bare mux over a shard.Service, mirroring the routes
// cmd/shard/main.go registers, so HTTPClient can be tested without a real
// binary.
func serveShard(svc *shard.Service) *httptest.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/describe", func(w http.ResponseWriter, r *http.Request) {
		var req wire.DescribeRequest
		json.NewDecoder(r.Body).Decode(&req)
		resp, err := svc.Describe(r.Context(), req)
		writeJSON(w, resp, err)
	})
	mux.HandleFunc("/insert", func(w http.ResponseWriter, r *http.Request) {
		var req wire.InsertRequest
		json.NewDecoder(r.Body).Decode(&req)
		resp, err := svc.Insert(r.Context(), req)
		writeJSON(w, resp, err)
	})
	mux.HandleFunc("/upsert", func(w http.ResponseWriter, r *http.Request) {
		var req wire.UpsertRequest
		json.NewDecoder(r.Body).Decode(&req)
		resp, err := svc.Upsert(r.Context(), req)
		writeJSON(w, resp, err)
	})
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		var req wire.SearchRequest
		json.NewDecoder(r.Body).Decode(&req)
		resp, err := svc.Search(r.Context(), req)
		writeJSON(w, resp, err)
	})

	return httptest.NewServer(mux)
}

func writeJSON(w http.ResponseWriter, resp any, err error) {
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}
	json.NewEncoder(w).Encode(resp)
}

func TestHTTPClientRoundTrip(t *testing.T) {
	svc := shard.NewService(2)
	srv := serveShard(svc)
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	ctx := context.Background()

	_, err := c.Insert(ctx, wire.InsertRequest{Vectors: []wire.Vector{
		{ID: 1, Raw: []float32{1, 0}},
		{ID: 2, Raw: []float32{0, 1}},
	}})
	require.NoError(t, err)

	desc, err := c.Describe(ctx, wire.DescribeRequest{})
	require.NoError(t, err)
	require.Equal(t, int64(2), desc.NumVectors)
	require.Equal(t, int64(2), desc.Dimensions)

	search, err := c.Search(ctx, wire.SearchRequest{QueryVector: []float32{1, 0}, K: 1})
	require.NoError(t, err)
	require.Len(t, search.Neighbors, 1)
	require.Equal(t, int64(1), search.Neighbors[0].ID)

	_, err = c.Upsert(ctx, wire.UpsertRequest{Vectors: []wire.Vector{
		{ID: 1, Raw: []float32{0, 2}},
	}})
	require.NoError(t, err)

	search2, err := c.Search(ctx, wire.SearchRequest{QueryVector: []float32{0, 1}, K: 1})
	require.NoError(t, err)
	require.Equal(t, int64(1), search2.Neighbors[0].ID, "id 1 should have moved in place after upsert")
}

func TestHTTPClientSurfacesTransportFailure(t *testing.T) {
	c := NewHTTPClient("http://127.0.0.1:0")
	_, err := c.Describe(context.Background(), wire.DescribeRequest{})
	require.Error(t, err, "expected error dialing an unreachable address")
}

func TestHTTPClientSurfacesApplicationError(t *testing.T) {
	svc := shard.NewService(2)
	srv := serveShard(svc)
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	_, err := c.Insert(context.Background(), wire.InsertRequest{Vectors: []wire.Vector{
		{ID: 1, Raw: []float32{1, 2, 3}},
	}})
	require.Error(t, err, "expected dimension mismatch to surface as an error")
}

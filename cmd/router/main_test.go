package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dreamware/torua/internal/router"
	"github.com/dreamware/torua/internal/shard"
	"github.com/dreamware/torua/internal/shardclient"
	"github.com/dreamware/torua/internal/vstatus"
	"github.com/dreamware/torua/internal/wire"
)

func newTestRouterHandler() *router.Router {
	shards := []shardclient.Client{shard.NewService(2), shard.NewService(2)}
	return router.New(2, 4, shards)
}

func TestHTTPStatusForMapsEveryCode(t *testing.T) {
	tests := []struct {
		code vstatus.Code
		want int
	}{
		{vstatus.InvalidArgument, http.StatusBadRequest},
		{vstatus.ResourceExhausted, http.StatusInsufficientStorage},
		{vstatus.Unavailable, http.StatusServiceUnavailable},
		{vstatus.OK, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := httpStatusFor(tt.code); got != tt.want {
			t.Errorf("httpStatusFor(%v) = %d, want %d", tt.code, got, tt.want)
		}
	}
}

func TestHandleInsertDescribeSearch(t *testing.T) {
	r := newTestRouterHandler()

	insertBody, _ := json.Marshal(wire.InsertRequest{Vectors: []wire.Vector{
		{ID: 1, Raw: []float32{1, 0}},
	}})
	req := httptest.NewRequest(http.MethodPost, "/insert", bytes.NewReader(insertBody))
	w := httptest.NewRecorder()
	handleInsert(r)(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("insert status = %d, want 200, body=%s", w.Code, w.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/describe", nil)
	w = httptest.NewRecorder()
	handleDescribe(r)(w, req)
	var desc wire.DescribeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &desc); err != nil {
		t.Fatalf("decode describe: %v", err)
	}
	if desc.NumVectors != 1 {
		t.Errorf("NumVectors = %d, want 1", desc.NumVectors)
	}

	searchBody, _ := json.Marshal(wire.SearchRequest{QueryVector: []float32{1, 0}, K: 1})
	req = httptest.NewRequest(http.MethodPost, "/search", bytes.NewReader(searchBody))
	w = httptest.NewRecorder()
	handleSearch(r)(w, req)
	var search wire.SearchResponse
	if err := json.Unmarshal(w.Body.Bytes(), &search); err != nil {
		t.Fatalf("decode search: %v", err)
	}
	if len(search.Neighbors) != 1 || search.Neighbors[0].ID != 1 {
		t.Errorf("Neighbors = %+v, want [{1 ...}]", search.Neighbors)
	}
}

func TestHandleInsertRejectsMalformedBody(t *testing.T) {
	r := newTestRouterHandler()
	req := httptest.NewRequest(http.MethodPost, "/insert", bytes.NewReader([]byte("not json")))
	w := httptest.NewRecorder()
	handleInsert(r)(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestHandleInsertPastCapacityReturns507(t *testing.T) {
	r := router.New(1, 1, []shardclient.Client{shard.NewService(1)})

	body, _ := json.Marshal(wire.InsertRequest{Vectors: []wire.Vector{
		{ID: 1, Raw: []float32{1}},
		{ID: 2, Raw: []float32{2}},
	}})
	req := httptest.NewRequest(http.MethodPost, "/insert", bytes.NewReader(body))
	w := httptest.NewRecorder()
	handleInsert(r)(w, req)
	if w.Code != http.StatusInsufficientStorage {
		t.Errorf("status = %d, want 507", w.Code)
	}
}

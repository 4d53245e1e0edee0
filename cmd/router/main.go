// Command router runs the coordination layer for a sharded vector index:
// it fans Insert/Upsert/Search out across a fixed list of shard addresses
// and answers Describe by summing their sizes.
//
// Usage:
//
//	router <port> <dimensions> <shard_capacity> <shard_addr>...
//
// Example:
//
//	router 8080 128 100000 http://localhost:8081 http://localhost:8082
//
// Each shard_addr is used as the base URL of that shard's HTTP endpoints,
// so it includes the scheme.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/exp/slices"

	"github.com/dreamware/torua/internal/router"
	"github.com/dreamware/torua/internal/shardclient"
	"github.com/dreamware/torua/internal/vstatus"
	"github.com/dreamware/torua/internal/wire"
)

// logFatal is a variable to allow mocking log.Fatal in tests.
var logFatal = log.Fatalf

const numRequiredArgs = 3

func main() {
	if len(os.Args) <= numRequiredArgs {
		fmt.Println("Expected at least 3 arguments: <port> <dimensions> <shard_capacity> <shard_addr>...")
		os.Exit(1)
	}

	port, err := strconv.Atoi(os.Args[1])
	if err != nil {
		logFatal("invalid port %q: %v", os.Args[1], err)
	}
	dimensions, err := strconv.Atoi(os.Args[2])
	if err != nil {
		logFatal("invalid dimensions %q: %v", os.Args[2], err)
	}
	shardCapacity, err := strconv.Atoi(os.Args[3])
	if err != nil {
		logFatal("invalid shard_capacity %q: %v", os.Args[3], err)
	}

	shardAddrs := os.Args[4:]
	if len(shardAddrs) == 0 {
		logFatal("expected at least one shard address")
	}
	for i, addr := range shardAddrs {
		if idx := slices.IndexFunc(shardAddrs[:i], func(a string) bool { return a == addr }); idx >= 0 {
			logFatal("duplicate shard address %q at positions %d and %d", addr, idx, i)
		}
	}

	shards := make([]shardclient.Client, len(shardAddrs))
	for i, addr := range shardAddrs {
		shards[i] = shardclient.NewHTTPClient(addr)
	}

	r := router.New(dimensions, shardCapacity, shards)
	log.Printf("router: registered %d shard clients", len(shards))

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/describe", handleDescribe(r))
	mux.HandleFunc("/insert", handleInsert(r))
	mux.HandleFunc("/upsert", handleUpsert(r))
	mux.HandleFunc("/search", handleSearch(r))

	addr := fmt.Sprintf(":%d", port)
	s := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("router: index with %d dimensions listening on %s", dimensions, addr)
		if err := s.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logFatal("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		log.Printf("router: shutdown error: %v", err)
	}
	log.Println("router stopped")
}

func handleDescribe(r *router.Router) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		resp, err := r.Describe(req.Context())
		writeResponse(w, resp, err)
	}
}

func handleInsert(r *router.Router) http.HandlerFunc {
	return func(w http.ResponseWriter, httpReq *http.Request) {
		var req wire.InsertRequest
		if err := json.NewDecoder(httpReq.Body).Decode(&req); err != nil {
			writeResponse(w, nil, vstatus.InvalidArgumentf("malformed request body: %v", err))
			return
		}
		resp, err := r.Insert(httpReq.Context(), req)
		writeResponse(w, resp, err)
	}
}

func handleUpsert(r *router.Router) http.HandlerFunc {
	return func(w http.ResponseWriter, httpReq *http.Request) {
		var req wire.UpsertRequest
		if err := json.NewDecoder(httpReq.Body).Decode(&req); err != nil {
			writeResponse(w, nil, vstatus.InvalidArgumentf("malformed request body: %v", err))
			return
		}
		resp, err := r.Upsert(httpReq.Context(), req)
		writeResponse(w, resp, err)
	}
}

func handleSearch(r *router.Router) http.HandlerFunc {
	return func(w http.ResponseWriter, httpReq *http.Request) {
		var req wire.SearchRequest
		if err := json.NewDecoder(httpReq.Body).Decode(&req); err != nil {
			writeResponse(w, nil, vstatus.InvalidArgumentf("malformed request body: %v", err))
			return
		}
		resp, err := r.Search(httpReq.Context(), req)
		writeResponse(w, resp, err)
	}
}

// writeResponse maps a vstatus.Code onto an HTTP status code, the only
// place in the router binary that translation happens.
func writeResponse(w http.ResponseWriter, resp any, err error) {
	if err != nil {
		w.WriteHeader(httpStatusFor(vstatus.CodeOf(err)))
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func httpStatusFor(code vstatus.Code) int {
	switch code {
	case vstatus.InvalidArgument:
		return http.StatusBadRequest
	case vstatus.ResourceExhausted:
		return http.StatusInsufficientStorage
	case vstatus.Unavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Command shard runs a single shard of a sharded vector index: it owns one
// FlatIndex and answers Describe/Insert/Upsert/Search over HTTP/JSON.
//
// Usage:
//
//	shard <port> <dimensions>
//
// Example:
//
//	shard 8081 128
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

	"github.com/dreamware/torua/internal/shard"
	"github.com/dreamware/torua/internal/vstatus"
	"github.com/dreamware/torua/internal/wire"
)

// logFatal is a variable to allow mocking log.Fatal in tests.
var logFatal = log.Fatalf

func main() {
	if len(os.Args) != 3 {
		fmt.Println("Expected 2 arguments: <port> <dimensions>.")
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

	svc := shard.NewService(dimensions)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/describe", handleDescribe(svc))
	mux.HandleFunc("/insert", handleInsert(svc))
	mux.HandleFunc("/upsert", handleUpsert(svc))
	mux.HandleFunc("/search", handleSearch(svc))

	addr := fmt.Sprintf(":%d", port)
	s := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("shard: index with %d dimensions listening on %s", dimensions, addr)
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
		log.Printf("shard: shutdown error: %v", err)
	}
	log.Println("shard stopped")
}

func handleDescribe(svc *shard.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req wire.DescribeRequest
		resp, err := svc.Describe(r.Context(), req)
		writeResponse(w, resp, err)
	}
}

func handleInsert(svc *shard.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req wire.InsertRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeResponse(w, nil, vstatus.InvalidArgumentf("malformed request body: %v", err))
			return
		}
		resp, err := svc.Insert(r.Context(), req)
		writeResponse(w, resp, err)
	}
}

func handleUpsert(svc *shard.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req wire.UpsertRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeResponse(w, nil, vstatus.InvalidArgumentf("malformed request body: %v", err))
			return
		}
		resp, err := svc.Upsert(r.Context(), req)
		writeResponse(w, resp, err)
	}
}

func handleSearch(svc *shard.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req wire.SearchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeResponse(w, nil, vstatus.InvalidArgumentf("malformed request body: %v", err))
			return
		}
		resp, err := svc.Search(r.Context(), req)
		writeResponse(w, resp, err)
	}
}

// writeResponse maps a vstatus.Code onto an HTTP status code, the only
// place in the shard binary that translation happens.
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

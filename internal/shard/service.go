package shard

import (
	"context"
	"log"
	"sync"

	"github.com/dreamware/torua/internal/index"
	"github.com/dreamware/torua/internal/vstatus"
	"github.com/dreamware/torua/internal/wire"
)

// Stats tracks per-operation counts for a Service, for diagnostics only —
// never read by router placement or routing logic.
type Stats struct {
	Inserts uint64
	Upserts uint64
	Searches uint64
}

// Service is the shard-local index service: it owns one FlatIndex and the
// set of IDs it has ever seen, and enforces the insert-is-idempotent /
// upsert-is-remove-then-add semantics spec.md §4.F defines.
type Service struct {
	mu       sync.Mutex
	dim      int
	idx      *index.FlatIndex
	idsSeen  map[int64]bool
	stats    Stats
}

// NewService creates a shard-local index service for vectors of dimension
// dim.
func NewService(dim int) *Service {
	return &Service{
		dim:     dim,
		idx:     index.NewFlatIndex(dim),
		idsSeen: make(map[int64]bool),
	}
}

// Describe reports this shard's dimensionality and vector count.
func (s *Service) Describe(ctx context.Context, _ wire.DescribeRequest) (wire.DescribeResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return wire.DescribeResponse{
		Dimensions: int64(s.dim),
		NumVectors: int64(s.idx.NTotal()),
	}, nil
}

// Insert adds every vector whose ID has not been seen before on this
// shard; IDs already seen are silently dropped. Insert is therefore
// idempotent, which is what makes client-level retry of a partially
// committed router Insert safe.
func (s *Service) Insert(ctx context.Context, req wire.InsertRequest) (wire.InsertResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, v := range req.Vectors {
		if len(v.Raw) != s.dim {
			return wire.InsertResponse{}, vstatus.InvalidArgumentf(
				"vector %d has dimension %d, index has dimension %d", v.ID, len(v.Raw), s.dim)
		}
	}

	var newIDs []int64
	var newVectors [][]float32
	for _, v := range req.Vectors {
		if s.idsSeen[v.ID] {
			continue
		}
		s.idsSeen[v.ID] = true
		newIDs = append(newIDs, v.ID)
		newVectors = append(newVectors, v.Raw)
	}

	if len(newIDs) > 0 {
		if err := s.idx.AddWithIDs(newIDs, newVectors); err != nil {
			return wire.InsertResponse{}, err
		}
	}

	s.stats.Inserts++
	log.Printf("shard: inserted %d new vectors (%d in request)", len(newIDs), len(req.Vectors))
	return wire.InsertResponse{}, nil
}

// Upsert validates dimensions, then removes any already-seen IDs from the
// index before re-adding every incoming vector in one batch, mirroring the
// original remove_ids + add_with_ids sequence. Every incoming ID is
// recorded as seen, whether or not it pre-existed.
func (s *Service) Upsert(ctx context.Context, req wire.UpsertRequest) (wire.UpsertResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, v := range req.Vectors {
		if len(v.Raw) != s.dim {
			return wire.UpsertResponse{}, vstatus.InvalidArgumentf(
				"vector %d has dimension %d, index has dimension %d", v.ID, len(v.Raw), s.dim)
		}
	}

	var toRemove []int64
	ids := make([]int64, len(req.Vectors))
	vectors := make([][]float32, len(req.Vectors))
	for i, v := range req.Vectors {
		if s.idsSeen[v.ID] {
			toRemove = append(toRemove, v.ID)
		}
		ids[i] = v.ID
		vectors[i] = v.Raw
		s.idsSeen[v.ID] = true
	}

	s.idx.RemoveIDs(toRemove)
	if len(ids) > 0 {
		if err := s.idx.AddWithIDs(ids, vectors); err != nil {
			return wire.UpsertResponse{}, err
		}
	}

	s.stats.Upserts++
	log.Printf("shard: upserted %d vectors (%d updated, %d new)", len(req.Vectors), len(toRemove), len(req.Vectors)-len(toRemove))
	return wire.UpsertResponse{}, nil
}

// Search runs the index's search and pads the result to exactly K entries
// with wire.SentinelNeighbor, as the shard-local contract requires so the
// router's merger can always seed from a full batch.
func (s *Service) Search(ctx context.Context, req wire.SearchRequest) (wire.SearchResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	results, err := s.idx.Search(req.QueryVector, req.K)
	if err != nil {
		return wire.SearchResponse{}, err
	}

	neighbors := make([]wire.Neighbor, len(results))
	for i, r := range results {
		if r.ID == -1 {
			neighbors[i] = wire.SentinelNeighbor
			continue
		}
		neighbors[i] = wire.Neighbor{ID: r.ID, Score: r.Score}
	}

	s.stats.Searches++
	return wire.SearchResponse{Neighbors: neighbors}, nil
}

// Stats returns a copy of the current operation counters.
func (s *Service) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

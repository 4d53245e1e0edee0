package router

import (
	"context"
	"log"
	"sort"
	"sync"

	"github.com/dreamware/torua/internal/algo"
	"github.com/dreamware/torua/internal/shardclient"
	"github.com/dreamware/torua/internal/vstatus"
	"github.com/dreamware/torua/internal/wire"
)

// Router fans a single logical index out across a fixed set of shards,
// filling them in order up to capacity and merging search results back
// into a single ranked list. It is the coordination layer described in
// shard_registry.go's teacher counterpart, generalized from key→node
// hashing to greedy capacity-based placement.
//
// Concurrency Model:
//   - Insert acquires insertMu for its entire critical section — placement
//     lookups, greedy fill, and every shard RPC it issues — mirroring the
//     original service's single insertion mutex. This keeps two concurrent
//     Insert calls from racing to fill the same shard slots.
//   - Upsert takes no router-wide lock: it never needs read-then-write
//     consistency on shard_sizes for existing IDs, and treats greedy fill
//     of new IDs as best-effort the way the original does. A concurrent
//     Insert and Upsert filling the same shard slot is possible but so is
//     the original's; Placement's own mutex prevents the map/slice update
//     itself from racing.
//   - Describe and Search take no router-wide lock; Search reads a
//     point-in-time snapshot of Placement. Both query their shards one
//     after another, in shard index order, and neither has bookkeeping to
//     reconcile afterwards.
type Router struct {
	dim        int
	capacity   int
	shards     []shardclient.Client
	placement  *Placement
	insertMu   sync.Mutex
}

// New constructs a router over shards, each holding vectors of the given
// dimensionality with the given per-shard capacity. Shard i receives the
// client at shards[i]; shard indices are fixed for the router's lifetime.
func New(dim, capacity int, shards []shardclient.Client) *Router {
	return &Router{
		dim:       dim,
		capacity:  capacity,
		shards:    shards,
		placement: NewPlacement(len(shards), capacity),
	}
}

// Dimensions returns the configured vector dimensionality.
func (r *Router) Dimensions() int {
	return r.dim
}

// Describe fans out to every shard and sums their vector counts. Any
// shard failure fails the whole request as unavailable, naming the shard
// that failed.
func (r *Router) Describe(ctx context.Context) (wire.DescribeResponse, error) {
	var total int64
	for i, shard := range r.shards {
		resp, err := shard.Describe(ctx, wire.DescribeRequest{})
		if err != nil {
			return wire.DescribeResponse{}, vstatus.Unavailablef(i, err, "shard %d is unhealthy", i)
		}
		total += resp.NumVectors
	}

	return wire.DescribeResponse{
		Dimensions: int64(r.dim),
		NumVectors: total,
	}, nil
}

// Insert validates every vector's dimension, deduplicates against IDs
// already known anywhere in the cluster, greedily fills shards in index
// order up to capacity, and commits one batch per shard that received new
// vectors. If capacity is exhausted the request fails resource-exhausted
// before any shard is touched. If a shard RPC fails partway through, the
// commits already made to earlier shards stand — Insert gives
// at-least-once semantics, not atomicity across shards — and the request
// fails unavailable.
func (r *Router) Insert(ctx context.Context, req wire.InsertRequest) (wire.InsertResponse, error) {
	for _, v := range req.Vectors {
		if len(v.Raw) != r.dim {
			return wire.InsertResponse{}, vstatus.InvalidArgumentf(
				"vector %d has dimension %d, index has dimension %d", v.ID, len(v.Raw), r.dim)
		}
	}

	r.insertMu.Lock()
	defer r.insertMu.Unlock()

	// New vectors are ones the placement table has never seen; already-known
	// IDs are dropped up front so they never occupy a fill slot.
	var newVectors []wire.Vector
	for _, v := range req.Vectors {
		if _, exists := r.placement.Lookup(v.ID); exists {
			continue
		}
		newVectors = append(newVectors, v)
	}

	leftover, fills := algo.Fill(len(newVectors), r.capacity, r.placement.Sizes())
	if leftover > 0 {
		return wire.InsertResponse{}, vstatus.ResourceExhaustedf(
			"insufficient capacity to insert all new vectors: %d vectors unallocated", leftover)
	}

	// algo.Fill returns a map; iterate shard indices in ascending order so
	// vectors land in the same slices they were assigned, offset by offset.
	shardIdxs := make([]int, 0, len(fills))
	for idx := range fills {
		shardIdxs = append(shardIdxs, idx)
	}
	sort.Ints(shardIdxs)

	offset := 0
	for _, shardIdx := range shardIdxs {
		numToFill := fills[shardIdx]
		batch := newVectors[offset : offset+numToFill]
		offset += numToFill

		if len(batch) == 0 {
			continue
		}

		if _, err := r.shards[shardIdx].Insert(ctx, wire.InsertRequest{Vectors: batch}); err != nil {
			return wire.InsertResponse{}, vstatus.Unavailablef(shardIdx, err, "shard %d is unhealthy", shardIdx)
		}

		ids := make([]int64, len(batch))
		for i, v := range batch {
			ids[i] = v.ID
		}
		if err := r.placement.Assign(shardIdx, ids); err != nil {
			return wire.InsertResponse{}, err
		}

		log.Printf("router: inserted %d vectors into shard %d", len(batch), shardIdx)
	}

	return wire.InsertResponse{}, nil
}

// Upsert splits the request into per-shard update batches (for IDs
// already placed) and a set of brand-new vectors, greedily fills the new
// vectors into shards exactly as Insert does, and issues one Upsert RPC
// per touched shard carrying both its updates and its share of the new
// vectors. Existing IDs are never migrated to a different shard. Unlike
// Insert, Upsert does not hold the router-wide lock: shard-level ID
// dedup is idempotent, so a racing Insert of the same new ID resolves to
// whichever commits first without corrupting either.
func (r *Router) Upsert(ctx context.Context, req wire.UpsertRequest) (wire.UpsertResponse, error) {
	for _, v := range req.Vectors {
		if len(v.Raw) != r.dim {
			return wire.UpsertResponse{}, vstatus.InvalidArgumentf(
				"vector %d has dimension %d, index has dimension %d", v.ID, len(v.Raw), r.dim)
		}
	}

	shardBatches := make(map[int][]wire.Vector)
	var newVectors []wire.Vector
	for _, v := range req.Vectors {
		if shardIdx, exists := r.placement.Lookup(v.ID); exists {
			shardBatches[shardIdx] = append(shardBatches[shardIdx], v)
		} else {
			newVectors = append(newVectors, v)
		}
	}

	leftover, fills := algo.Fill(len(newVectors), r.capacity, r.placement.Sizes())
	if leftover > 0 {
		return wire.UpsertResponse{}, vstatus.ResourceExhaustedf(
			"insufficient capacity to upsert all new vectors: %d vectors unallocated", leftover)
	}

	shardIdxs := make([]int, 0, len(fills))
	for idx := range fills {
		shardIdxs = append(shardIdxs, idx)
	}
	sort.Ints(shardIdxs)

	offset := 0
	newIDsByShard := make(map[int][]int64)
	for _, shardIdx := range shardIdxs {
		numToFill := fills[shardIdx]
		batch := newVectors[offset : offset+numToFill]
		offset += numToFill

		shardBatches[shardIdx] = append(shardBatches[shardIdx], batch...)
		ids := make([]int64, len(batch))
		for i, v := range batch {
			ids[i] = v.ID
		}
		newIDsByShard[shardIdx] = ids
	}

	for shardIdx, batch := range shardBatches {
		if len(batch) == 0 {
			continue
		}

		if _, err := r.shards[shardIdx].Upsert(ctx, wire.UpsertRequest{Vectors: batch}); err != nil {
			return wire.UpsertResponse{}, vstatus.Unavailablef(shardIdx, err, "shard %d is unhealthy", shardIdx)
		}

		if ids := newIDsByShard[shardIdx]; len(ids) > 0 {
			if err := r.placement.Assign(shardIdx, ids); err != nil {
				return wire.UpsertResponse{}, err
			}
		}

		log.Printf("router: upserted %d vectors on shard %d (%d new)", len(batch), shardIdx, len(newIDsByShard[shardIdx]))
	}

	return wire.UpsertResponse{}, nil
}

// Search fans out to every non-empty shard and merges results into a
// single top-k list, seeding the merger from the first non-empty shard's
// batch and heap-replacing candidates from the rest. If every shard is
// empty, it returns k sentinel neighbors without contacting any shard.
// Any shard RPC failure fails the whole request as unavailable.
func (r *Router) Search(ctx context.Context, req wire.SearchRequest) (wire.SearchResponse, error) {
	if len(req.QueryVector) != r.dim {
		return wire.SearchResponse{}, vstatus.InvalidArgumentf(
			"query vector has dimension %d, index has dimension %d", len(req.QueryVector), r.dim)
	}

	nonEmpty := r.placement.NonEmptyShards()
	if len(nonEmpty) == 0 {
		neighbors := make([]wire.Neighbor, req.K)
		for i := range neighbors {
			neighbors[i] = wire.SentinelNeighbor
		}
		return wire.SearchResponse{Neighbors: neighbors}, nil
	}

	merger := algo.NewMerger(req.K)
	for i, shardIdx := range nonEmpty {
		resp, err := r.shards[shardIdx].Search(ctx, req)
		if err != nil {
			return wire.SearchResponse{}, vstatus.Unavailablef(shardIdx, err, "shard %d is unhealthy", shardIdx)
		}

		batch := make([]algo.Candidate, len(resp.Neighbors))
		for j, n := range resp.Neighbors {
			batch[j] = algo.Candidate{ID: n.ID, Score: n.Score}
		}

		if i == 0 {
			merger.Seed(batch)
		} else {
			merger.Merge(batch)
		}
	}

	results := merger.Results()
	neighbors := make([]wire.Neighbor, len(results))
	for i, c := range results {
		neighbors[i] = wire.Neighbor{ID: c.ID, Score: c.Score}
	}

	return wire.SearchResponse{Neighbors: neighbors}, nil
}

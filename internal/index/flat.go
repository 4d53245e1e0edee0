// Package index implements the brute-force flat vector index that backs a
// single shard. It mirrors the shape of a faiss IndexFlat wrapped with
// IDMap — add_with_ids, remove_ids via an ID selector, and search — the
// same operations the original C++ implementation called through the faiss
// API, but expressed as a small self-contained Go type.
package index

import (
	"math"
	"sort"

	"github.com/viterin/vek/vek32"

	"github.com/dreamware/torua/internal/vstatus"
)

// FlatIndex is a brute-force, in-memory nearest-neighbor index over
// fixed-dimensional float32 vectors, scored by inner product (higher is
// better). It is not safe for concurrent use; callers serialize access
// (the shard-local service does this with a mutex).
type FlatIndex struct {
	dim     int
	ids     []int64
	vectors [][]float32
	pos     map[int64]int // id -> index into ids/vectors
}

// NewFlatIndex creates an empty index for vectors of the given dimension.
func NewFlatIndex(dim int) *FlatIndex {
	return &FlatIndex{
		dim: dim,
		pos: make(map[int64]int),
	}
}

// Dimensions returns the configured vector dimensionality.
func (idx *FlatIndex) Dimensions() int { return idx.dim }

// NTotal returns the number of vectors currently stored.
func (idx *FlatIndex) NTotal() int { return len(idx.ids) }

// AddWithIDs adds a batch of vectors under the given IDs in one call,
// mirroring faiss's add_with_ids. Callers must have already filtered out
// any ID that should not be (re-)added; AddWithIDs does not deduplicate.
// Returns InvalidArgument if any vector's length does not match Dimensions.
func (idx *FlatIndex) AddWithIDs(ids []int64, vectors [][]float32) error {
	if len(ids) != len(vectors) {
		return vstatus.InvalidArgumentf("ids and vectors length mismatch: %d != %d", len(ids), len(vectors))
	}
	for _, v := range vectors {
		if len(v) != idx.dim {
			return vstatus.InvalidArgumentf("vector dimension mismatch: expected %d, got %d", idx.dim, len(v))
		}
	}

	for i, id := range ids {
		v := make([]float32, idx.dim)
		copy(v, vectors[i])
		idx.ids = append(idx.ids, id)
		idx.vectors = append(idx.vectors, v)
		idx.pos[id] = len(idx.ids) - 1
	}
	return nil
}

// RemoveIDs removes every vector whose ID is in the batch selector,
// mirroring faiss's remove_ids(IDSelectorBatch). IDs not present are
// ignored. Uses a swap-with-last-element removal so it stays O(1) per
// removed vector rather than O(n) compaction of the whole slice.
func (idx *FlatIndex) RemoveIDs(ids []int64) int {
	removed := 0
	for _, id := range ids {
		i, ok := idx.pos[id]
		if !ok {
			continue
		}
		last := len(idx.ids) - 1
		idx.ids[i] = idx.ids[last]
		idx.vectors[i] = idx.vectors[last]
		idx.pos[idx.ids[i]] = i

		idx.ids = idx.ids[:last]
		idx.vectors = idx.vectors[:last]
		delete(idx.pos, id)
		removed++
	}
	return removed
}

// Search returns the k nearest neighbors of query by inner product, sorted
// descending by score. If the index has fewer than k vectors the result is
// padded with wire.SentinelNeighbor-equivalent entries (id -1, score
// -Inf); callers that need the wire sentinel convert at that boundary.
func (idx *FlatIndex) Search(query []float32, k int) ([]Result, error) {
	if len(query) != idx.dim {
		return nil, vstatus.InvalidArgumentf("query dimension mismatch: expected %d, got %d", idx.dim, len(query))
	}

	results := make([]Result, len(idx.ids))
	for i, v := range idx.vectors {
		results[i] = Result{ID: idx.ids[i], Score: vek32.Dot(query, v)}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })

	if len(results) > k {
		return results[:k], nil
	}
	for len(results) < k {
		results = append(results, Sentinel)
	}
	return results, nil
}

// Result is one neighbor returned by Search.
type Result struct {
	ID    int64
	Score float32
}

// Sentinel pads a search result out to k entries when fewer real results
// exist.
var Sentinel = Result{ID: -1, Score: float32(math.Inf(-1))}

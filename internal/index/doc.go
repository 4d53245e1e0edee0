// Package index implements the shard-local ANN index: a brute-force flat
// index scored by inner product, grounded on the flat-index shape used by
// faiss (the original implementation's backing index) and accelerated with
// the same SIMD dot-product routine used elsewhere in the vector-search
// ecosystem for exactly this computation.
package index

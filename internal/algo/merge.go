package algo

import "sort"

// Candidate is anything a Merger can rank: an identifier and a score where
// higher is better. wire.Neighbor satisfies this shape structurally; the
// router converts to/from algo.Candidate at its boundary so this package
// stays free of the wire schema.
type Candidate struct {
	ID    int64
	Score float32
}

// Merger maintains the k best Candidates seen so far across a stream of
// already-sorted-descending batches, using a fixed-size min-heap so memory
// stays O(k) regardless of how many candidates are streamed through it.
//
// The zero value is not usable; construct with NewMerger.
type Merger struct {
	best   []Candidate
	k      int
	seeded bool
}

// NewMerger creates a merger that will retain the k best candidates.
func NewMerger(k int) *Merger {
	return &Merger{k: k}
}

// Seed loads the first non-empty batch. The batch is expected to already be
// sorted descending by score and to have length exactly k (shards always
// return k items, padded with sentinels). Seed stores it in reverse order,
// which places the smallest score at index 0 — a valid min-heap with no
// sift pass required. Seed may only be called once; subsequent batches go
// through Merge.
func (m *Merger) Seed(batch []Candidate) {
	m.best = make([]Candidate, len(batch))
	for i, c := range batch {
		m.best[len(batch)-1-i] = c
	}
	m.seeded = true
}

// Merge feeds one more shard's batch into the heap. Each candidate that
// beats the current worst retained candidate (strict >) triggers a
// heap-replace; ties never displace an existing entry, which is what makes
// the merge deterministic given the shard response order.
func (m *Merger) Merge(batch []Candidate) {
	if !m.seeded {
		m.Seed(batch)
		return
	}
	for _, c := range batch {
		if len(m.best) == 0 {
			break
		}
		if c.Score > m.best[0].Score {
			HeapReplace(m.best, c)
		}
	}
}

// HeapReplace overwrites the root of the min-heap a with v, then sifts down
// to restore the min-heap property: while the current node's score is
// greater than its smaller child's, swap with that child. It is
// unconditional — callers decide whether v should displace the root before
// calling, matching the heap_replace/compare split in the original
// implementation. Returns the popped root value.
func HeapReplace(a []Candidate, v Candidate) Candidate {
	if len(a) == 0 {
		return v
	}
	popped := a[0]
	a[0] = v
	size := len(a)
	idx := 0

	for {
		left := idx*2 + 1
		right := idx*2 + 2
		if left >= size {
			break
		}

		smaller := left
		if right < size && a[right].Score < a[left].Score {
			smaller = right
		}

		if a[idx].Score > a[smaller].Score {
			a[idx], a[smaller] = a[smaller], a[idx]
			idx = smaller
		} else {
			break
		}
	}

	return popped
}

// Results returns the retained candidates sorted descending by score. If
// the merger was never seeded (no shards queried at all), it returns an
// empty slice, not k sentinels; callers that need k sentinels seed with
// them instead of relying on this.
func (m *Merger) Results() []Candidate {
	out := make([]Candidate, len(m.best))
	copy(out, m.best)
	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

package router

import "testing"

func TestPlacementAssignAndLookup(t *testing.T) {
	p := NewPlacement(3, 8)

	if err := p.Assign(1, []int64{10, 11, 12}); err != nil {
		t.Fatalf("Assign: %v", err)
	}

	shard, ok := p.Lookup(11)
	if !ok || shard != 1 {
		t.Errorf("Lookup(11) = (%d, %v), want (1, true)", shard, ok)
	}

	if _, ok := p.Lookup(999); ok {
		t.Errorf("Lookup(999) should report not found")
	}

	sizes := p.Sizes()
	if sizes[1] != 3 {
		t.Errorf("Sizes()[1] = %d, want 3", sizes[1])
	}
}

// I4: assigning an already-assigned ID to a different shard must not move
// it — global uniqueness holds and the original owner wins.
func TestPlacementAssignIsIdempotentPerID(t *testing.T) {
	p := NewPlacement(2, 8)
	if err := p.Assign(0, []int64{5}); err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if err := p.Assign(1, []int64{5}); err != nil {
		t.Fatalf("Assign: %v", err)
	}

	shard, _ := p.Lookup(5)
	if shard != 0 {
		t.Errorf("id 5 moved to shard %d, want to stay on shard 0", shard)
	}
	sizes := p.Sizes()
	if sizes[0] != 1 || sizes[1] != 0 {
		t.Errorf("Sizes() = %v, want [1 0]", sizes)
	}
}

func TestPlacementNonEmptyShards(t *testing.T) {
	p := NewPlacement(4, 8)
	if err := p.Assign(0, []int64{1}); err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if err := p.Assign(2, []int64{2, 3}); err != nil {
		t.Fatalf("Assign: %v", err)
	}

	got := p.NonEmptyShards()
	want := []int{0, 2}
	if len(got) != len(want) {
		t.Fatalf("NonEmptyShards() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("NonEmptyShards() = %v, want %v", got, want)
		}
	}
}

func TestPlacementAssignRejectsOutOfRangeShard(t *testing.T) {
	p := NewPlacement(2, 8)
	if err := p.Assign(5, []int64{1}); err == nil {
		t.Fatal("expected error for out-of-range shard")
	}
}

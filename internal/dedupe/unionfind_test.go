package dedupe

import "testing"

func TestUnionFindSingletons(t *testing.T) {
	t.Parallel()

	uf := newUnionFind(4)
	for i := 0; i < 4; i++ {
		if got := uf.find(i); got != i {
			t.Errorf("find(%d) = %d, want %d before any union", i, got, i)
		}
	}
}

func TestUnionFindMerge(t *testing.T) {
	t.Parallel()

	uf := newUnionFind(4)

	if !uf.union(0, 1) {
		t.Fatal("union(0, 1) = false, want true for first merge")
	}
	if uf.union(0, 1) {
		t.Error("union(0, 1) = true on repeat, want false")
	}
	if uf.union(1, 0) {
		t.Error("union(1, 0) = true for already-merged pair, want false")
	}
	if uf.find(0) != uf.find(1) {
		t.Error("0 and 1 have different roots after union")
	}
	if uf.find(2) == uf.find(0) {
		t.Error("2 joined component of 0 without a union")
	}
}

func TestUnionFindTransitiveChain(t *testing.T) {
	t.Parallel()

	uf := newUnionFind(5)
	uf.union(0, 1)
	uf.union(1, 2)
	uf.union(3, 4)

	if uf.find(0) != uf.find(2) {
		t.Error("0 and 2 should share a root via 1")
	}
	if uf.find(0) == uf.find(3) {
		t.Error("components {0,1,2} and {3,4} should stay separate")
	}
	if uf.union(2, 0) {
		t.Error("union inside one component reported a merge")
	}
}

func TestUnionFindComponentSizes(t *testing.T) {
	t.Parallel()

	uf := newUnionFind(6)
	uf.union(0, 1)
	uf.union(2, 3)
	uf.union(0, 2)

	root := uf.find(0)
	for _, i := range []int{1, 2, 3} {
		if uf.find(i) != root {
			t.Errorf("find(%d) = %d, want root %d", i, uf.find(i), root)
		}
	}
	if uf.size[root] != 4 {
		t.Errorf("size of merged component = %d, want 4", uf.size[root])
	}
}

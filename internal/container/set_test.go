package container

import (
	"math/rand"
	"testing"
	"testing/quick"
)

func intHash(n int) uint64 { return uint64(n) }

func TestSetAddContainsRemove(t *testing.T) {
	s := NewSet[int](intHash)

	if s.Contains(1) {
		t.Fatal("empty set contains 1")
	}

	s.Add(1)
	s.Add(2)
	s.Add(1) // re-adding is a no-op

	if !s.Contains(1) || !s.Contains(2) {
		t.Fatal("missing an added key")
	}
	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}

	s.Remove(1)
	if s.Contains(1) {
		t.Fatal("Remove did not take effect")
	}
	if s.Len() != 1 {
		t.Fatalf("Len() after Remove = %d, want 1", s.Len())
	}

	// Re-adding a tombstoned key must work (the REMOVED-slot reuse path in
	// insertFresh/ensureCapacity).
	s.Add(1)
	if !s.Contains(1) {
		t.Fatal("re-adding a removed key failed")
	}
}

// TestSetGrowsAndKeepsAllKeys inserts enough distinct keys to force several
// grow() calls past the 0.5 load factor threshold, checking that growth
// never drops or duplicates a key (invariant 7 of spec.md §8).
func TestSetGrowsAndKeepsAllKeys(t *testing.T) {
	s := NewSet[int](intHash)

	const n = 500
	for i := 0; i < n; i++ {
		s.Add(i)
	}
	if s.Len() != n {
		t.Fatalf("Len() = %d, want %d", s.Len(), n)
	}
	for i := 0; i < n; i++ {
		if !s.Contains(i) {
			t.Fatalf("missing key %d after growth", i)
		}
	}
}

// TestSetRandomizedAgainstReferenceMap runs a random sequence of
// Add/Remove/Contains operations against both a Set and a plain Go map,
// checking they agree at every step — a testing/quick-style randomized
// sequence test, per SPEC_FULL.md §8.
func TestSetRandomizedAgainstReferenceMap(t *testing.T) {
	f := func(ops []uint8, keys []uint16) bool {
		if len(keys) == 0 {
			return true
		}
		s := NewSet[int](intHash)
		ref := make(map[int]bool)

		for i, op := range ops {
			key := int(keys[i%len(keys)] % 64)
			switch op % 3 {
			case 0:
				s.Add(key)
				ref[key] = true
			case 1:
				s.Remove(key)
				delete(ref, key)
			case 2:
				if s.Contains(key) != ref[key] {
					return false
				}
			}
		}

		for k, present := range ref {
			if present && !s.Contains(k) {
				return false
			}
		}
		if s.Len() != len(ref) {
			return false
		}
		return true
	}

	cfg := &quick.Config{MaxCount: 200, Rand: rand.New(rand.NewSource(1))}
	if err := quick.Check(f, cfg); err != nil {
		t.Error(err)
	}
}

func TestPointerHash64DistinguishesDistinctPointers(t *testing.T) {
	type node struct{ v int }
	a, b := &node{1}, &node{2}

	set := NewSet[*node](PointerHash64[node])
	set.Add(a)
	if !set.Contains(a) {
		t.Fatal("set does not contain its own pointer key")
	}
	if set.Contains(b) {
		t.Fatal("set claims to contain an unrelated pointer")
	}
}

// ABOUTME: Tests for YAML-file like-count storage.
// ABOUTME: Covers increments, copy semantics, merging confirmed counts, and persistence.
package storage

import (
	"sync"
	"testing"
)

func newLikeStore(t *testing.T, dataDir string) *YAMLLikeStore {
	t.Helper()
	store, err := NewYAMLLikeStore(dataDir, nil)
	if err != nil {
		t.Fatalf("NewYAMLLikeStore error: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestLikeIncrement(t *testing.T) {
	store := newLikeStore(t, t.TempDir())

	for want := 1; want <= 3; want++ {
		got, err := store.Increment("th", "105")
		if err != nil {
			t.Fatalf("Increment error: %v", err)
		}
		if got != want {
			t.Errorf("Increment = %d, want %d", got, want)
		}
	}

	got, err := store.Increment("th", "No.105")
	if err != nil {
		t.Fatalf("Increment error: %v", err)
	}
	if got != 4 {
		t.Errorf("No.105 should share the count of 105, got %d", got)
	}

	if _, err := store.Increment("th", "abc"); err == nil {
		t.Error("expected error for invalid post number")
	}
}

func TestLikeCountsIsCopy(t *testing.T) {
	store := newLikeStore(t, t.TempDir())
	if _, err := store.Increment("th", "1"); err != nil {
		t.Fatal(err)
	}

	counts, err := store.Counts("th")
	if err != nil {
		t.Fatalf("Counts error: %v", err)
	}
	counts["1"] = 99
	counts["2"] = 5

	again, err := store.Counts("th")
	if err != nil {
		t.Fatalf("Counts error: %v", err)
	}
	if again["1"] != 1 || len(again) != 1 {
		t.Errorf("store affected by caller mutation: %v", again)
	}
}

func TestLikeCountsEmpty(t *testing.T) {
	store := newLikeStore(t, t.TempDir())

	counts, err := store.Counts("none")
	if err != nil {
		t.Fatalf("Counts error: %v", err)
	}
	if counts == nil || len(counts) != 0 {
		t.Errorf("expected empty non-nil map, got %v", counts)
	}
}

func TestLikeMerge(t *testing.T) {
	store := newLikeStore(t, t.TempDir())
	for _, n := range []string{"1", "2", "2"} {
		if _, err := store.Increment("th", n); err != nil {
			t.Fatal(err)
		}
	}

	if err := store.Merge("th", map[string]int{"2": 7, "1": 0, "No.3": 4}); err != nil {
		t.Fatalf("Merge error: %v", err)
	}

	counts, err := store.Counts("th")
	if err != nil {
		t.Fatalf("Counts error: %v", err)
	}
	want := map[string]int{"2": 7, "3": 4}
	if len(counts) != len(want) {
		t.Fatalf("counts = %v, want %v", counts, want)
	}
	for k, v := range want {
		if counts[k] != v {
			t.Errorf("counts[%s] = %d, want %d", k, counts[k], v)
		}
	}

	if err := store.Merge("th", map[string]int{"x": 1}); err == nil {
		t.Error("expected error for invalid post number")
	}
}

func TestLikePersistsAcrossStores(t *testing.T) {
	dataDir := t.TempDir()
	first := newLikeStore(t, dataDir)
	if _, err := first.Increment("th", "10"); err != nil {
		t.Fatal(err)
	}

	second := newLikeStore(t, dataDir)
	counts, err := second.Counts("th")
	if err != nil {
		t.Fatalf("Counts error: %v", err)
	}
	if counts["10"] != 1 {
		t.Errorf("counts = %v, want 10:1", counts)
	}
}

func TestLikeConcurrentIncrements(t *testing.T) {
	store := newLikeStore(t, t.TempDir())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.Increment("th", "1"); err != nil {
				t.Errorf("Increment error: %v", err)
			}
		}()
	}
	wg.Wait()

	counts, err := store.Counts("th")
	if err != nil {
		t.Fatal(err)
	}
	if counts["1"] != 20 {
		t.Errorf("count = %d, want 20", counts["1"])
	}
}

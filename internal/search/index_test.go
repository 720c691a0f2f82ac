package search

import (
	"fmt"
	"sync"
	"testing"
)

func TestSearch_EmptyIndexAndEmptyQuery(t *testing.T) {
	m := NewMemory()

	ids, total := m.Search("anything", 1, 10)
	if len(ids) != 0 || total != 0 {
		t.Fatalf("empty index: ids=%v total=%d", ids, total)
	}

	m.Add(1, "some words")
	ids, total = m.Search("   ", 1, 10)
	if len(ids) != 0 || total != 0 {
		t.Fatalf("empty query must not match: ids=%v total=%d", ids, total)
	}
}

func TestSearch_RanksByJaccard(t *testing.T) {
	m := NewMemory()
	m.Add(1, "go concurrency patterns")
	m.Add(2, "concurrency")
	m.Add(3, "cooking with cast iron")

	ids, total := m.Search("concurrency", 1, 10)
	if total != 2 {
		t.Fatalf("expected 2 hits, got %d", total)
	}
	// Doc 2 is an exact token match (score 1.0) and must outrank doc 1.
	if len(ids) != 2 || ids[0] != 2 || ids[1] != 1 {
		t.Fatalf("unexpected ranking: %v", ids)
	}
}

func TestSearch_TiesBrokenByHigherID(t *testing.T) {
	m := NewMemory()
	m.Add(5, "alpha beta")
	m.Add(9, "alpha beta")

	ids, total := m.Search("alpha beta", 1, 10)
	if total != 2 || len(ids) != 2 {
		t.Fatalf("expected both docs, got ids=%v total=%d", ids, total)
	}
	if ids[0] != 9 || ids[1] != 5 {
		t.Fatalf("tie must prefer the higher id: %v", ids)
	}
}

func TestSearch_Pagination(t *testing.T) {
	m := NewMemory()
	for i := 1; i <= 7; i++ {
		m.Add(uint(i), fmt.Sprintf("common token doc%d", i))
	}

	page1, total := m.Search("common token", 1, 3)
	if total != 7 || len(page1) != 3 {
		t.Fatalf("page 1: ids=%v total=%d", page1, total)
	}
	page3, _ := m.Search("common token", 3, 3)
	if len(page3) != 1 {
		t.Fatalf("page 3: ids=%v", page3)
	}
	beyond, total := m.Search("common token", 4, 3)
	if len(beyond) != 0 || total != 7 {
		t.Fatalf("out-of-range page must keep the true total: ids=%v total=%d", beyond, total)
	}
}

func TestAdd_ReindexReplacesAndEmptyBodyRemoves(t *testing.T) {
	m := NewMemory()
	m.Add(1, "original words")

	m.Add(1, "replacement tokens")
	if ids, _ := m.Search("original", 1, 10); len(ids) != 0 {
		t.Fatalf("old tokens still match after re-index: %v", ids)
	}
	if ids, _ := m.Search("replacement", 1, 10); len(ids) != 1 || ids[0] != 1 {
		t.Fatalf("re-indexed doc not found: %v", ids)
	}

	m.Add(1, "   ")
	if ids, _ := m.Search("replacement", 1, 10); len(ids) != 0 {
		t.Fatalf("empty body must drop the doc: %v", ids)
	}
}

func TestWithStopwords_ExcludedFromBothSides(t *testing.T) {
	m := NewMemory(WithStopwords([]string{"the", "a"}))
	m.Add(1, "the quick fox")

	if ids, total := m.Search("the a", 1, 10); len(ids) != 0 || total != 0 {
		t.Fatalf("stopword-only query must yield nothing: ids=%v total=%d", ids, total)
	}
	ids, _ := m.Search("quick", 1, 10)
	if len(ids) != 1 || ids[0] != 1 {
		t.Fatalf("content token should still match: %v", ids)
	}
}

func TestMemory_ConcurrentAddAndSearch(t *testing.T) {
	m := NewMemory()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			m.Add(uint(i+1), fmt.Sprintf("shared token doc%d", i))
		}(i)
		go func() {
			defer wg.Done()
			m.Search("shared token", 1, 5)
		}()
	}
	wg.Wait()

	_, total := m.Search("shared", 1, 50)
	if total != 20 {
		t.Fatalf("expected all docs indexed, got %d", total)
	}
}

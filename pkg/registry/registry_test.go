package registry

import (
	"sync"
	"testing"
	"time"

	"github.com/solheim-labs/sitesearch/pkg/cache"
	"github.com/solheim-labs/sitesearch/pkg/metrics"
	"github.com/solheim-labs/sitesearch/pkg/search"
)

func TestCorpusCreatedOnFirstUse(t *testing.T) {
	r := New()
	if len(r.Names()) != 0 {
		t.Fatalf("new registry should have no corpora, got %v", r.Names())
	}

	c := r.Corpus("courses")
	if c.Name() != "courses" {
		t.Fatalf("Name() = %q, want courses", c.Name())
	}
	if len(r.Names()) != 1 || r.Names()[0] != "courses" {
		t.Fatalf("Names() = %v, want [courses]", r.Names())
	}

	same := r.Corpus("courses")
	if same != c {
		t.Fatalf("Corpus() should return the same instance for a repeated name")
	}
}

func TestCorpusAddAndSearch(t *testing.T) {
	r := New()
	c := r.Corpus("blog")
	c.Add("1", "Rust Programming", "rust systems programming language", nil)

	results := c.Search(search.SearchOptions{Query: "rust programming", Limit: 10})
	if len(results) != 1 || results[0].DocumentID != "1" {
		t.Fatalf("Search() = %+v, want doc 1", results)
	}

	if c.DocumentCount() != 1 {
		t.Fatalf("DocumentCount() = %d, want 1", c.DocumentCount())
	}

	if _, ok := c.Get("missing"); ok {
		t.Fatalf("Get() of unknown id should report not-found")
	}
}

func TestCorpusAddReportsFingerprintAndChanged(t *testing.T) {
	r := New()
	c := r.Corpus("blog")

	fp1, changed1 := c.Add("1", "Rust Programming", "rust systems programming language", nil)
	if !changed1 || fp1 == "" {
		t.Fatalf("first Add() = (%q, %v), want non-empty fingerprint and changed=true", fp1, changed1)
	}

	fp2, changed2 := c.Add("1", "Rust Programming", "rust systems programming language", nil)
	if changed2 || fp2 != fp1 {
		t.Fatalf("re-Add() with identical content = (%q, %v), want (%q, false)", fp2, changed2, fp1)
	}
}

func TestRegistryAddReportsFingerprintAndChanged(t *testing.T) {
	r := New()

	fp1, changed1 := r.Add("blog", "1", "Rust Programming", "rust systems programming language", nil)
	if !changed1 || fp1 == "" {
		t.Fatalf("first Add() = (%q, %v), want non-empty fingerprint and changed=true", fp1, changed1)
	}

	fp2, changed2 := r.Add("blog", "1", "Rust Programming", "rust systems programming language", nil)
	if changed2 || fp2 != fp1 {
		t.Fatalf("re-Add() with identical content = (%q, %v), want (%q, false)", fp2, changed2, fp1)
	}
}

func TestCorpusConcurrentAddAndSearch(t *testing.T) {
	r := New()
	c := r.Corpus("portfolio")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.Add(string(rune('a'+i%26)), "Project Title", "project description content", nil)
		}(i)
	}
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Search(search.SearchOptions{Query: "project", Limit: 5})
		}()
	}
	wg.Wait()

	if c.DocumentCount() == 0 {
		t.Fatalf("expected documents to be indexed after concurrent adds")
	}
}

func TestGlobalSearchMergesAndSorts(t *testing.T) {
	r := New()
	r.Corpus("courses").Add("c1", "Rust Course", "rust programming course content", nil)
	r.Corpus("blog").Add("b1", "Rust Post", "rust programming blog post content", nil)

	results := r.GlobalSearch(search.SearchOptions{Query: "rust programming", Limit: 10}, nil)
	if len(results) != 2 {
		t.Fatalf("GlobalSearch() returned %d results, want 2", len(results))
	}
	for i := 1; i < len(results); i++ {
		if results[i-1].Score < results[i].Score {
			t.Fatalf("GlobalSearch() results not sorted by descending score: %+v", results)
		}
	}
}

func TestGlobalSearchAppliesFilters(t *testing.T) {
	r := New()
	r.Corpus("courses").Add("c1", "Rust Course", "rust programming course content", map[string]string{"level": "beginner"})
	r.Corpus("blog").Add("b1", "Rust Post", "rust programming blog post content", map[string]string{"level": "advanced"})

	results := r.GlobalSearch(search.SearchOptions{Query: "rust programming", Limit: 10}, map[string]string{"level": "beginner"})
	if len(results) != 1 {
		t.Fatalf("GlobalSearch() with filters returned %d results, want 1: %+v", len(results), results)
	}
	if results[0].Corpus != "courses" {
		t.Fatalf("GlobalSearch() with filters returned corpus %q, want courses", results[0].Corpus)
	}
}

func TestGlobalSearchEmptyRegistry(t *testing.T) {
	r := New()
	if results := r.GlobalSearch(search.SearchOptions{Query: "anything", Limit: 10}, nil); results != nil {
		t.Fatalf("GlobalSearch() on empty registry = %+v, want nil", results)
	}
}

func TestGlobalSearchZeroLimit(t *testing.T) {
	r := New()
	r.Corpus("courses").Add("c1", "Title", "content", nil)
	if results := r.GlobalSearch(search.SearchOptions{Query: "content", Limit: 0}, nil); results != nil {
		t.Fatalf("GlobalSearch() with zero limit = %+v, want nil", results)
	}
}

func TestRegistryAddAndSearchRecordMetrics(t *testing.T) {
	mc := metrics.NewMetricsCollector()
	r := New(WithMetrics(mc), WithProfiling())

	r.Add("courses", "c1", "Rust Course", "rust programming course content", nil)
	results := r.Search("courses", search.SearchOptions{Query: "rust programming", Limit: 10}, nil)
	if len(results) != 1 {
		t.Fatalf("Search() = %+v, want 1 result", results)
	}

	snapshot := mc.GetMetrics()
	queries, ok := snapshot["queries"].(map[string]interface{})
	if !ok {
		t.Fatalf("GetMetrics() missing queries section: %+v", snapshot)
	}
	if queries["total"].(uint64) != 1 {
		t.Fatalf("queries.total = %v, want 1", queries["total"])
	}

	adds, ok := snapshot["adds"].(map[string]interface{})
	if !ok {
		t.Fatalf("GetMetrics() missing adds section: %+v", snapshot)
	}
	if adds["total"].(uint64) != 1 {
		t.Fatalf("adds.total = %v, want 1", adds["total"])
	}
}

func TestRegistrySearchServesFromCache(t *testing.T) {
	c := cache.NewLRUCache(10, time.Minute)
	r := New(WithCache(c))

	r.Corpus("blog").Add("b1", "Rust Post", "rust programming blog post", nil)
	first := r.Search("blog", search.SearchOptions{Query: "rust programming", Limit: 5}, nil)
	if len(first) != 1 {
		t.Fatalf("Search() = %+v, want 1 result", first)
	}

	r.Corpus("blog").Add("b2", "Second Post", "rust programming second post", nil)
	second := r.Search("blog", search.SearchOptions{Query: "rust programming", Limit: 5}, nil)
	if len(second) != len(first) {
		t.Fatalf("Search() after cache hit = %+v, want cached %+v (b2 should not appear yet)", second, first)
	}
}

func TestRegistrySearchWithoutOptionsStillWorks(t *testing.T) {
	r := New()
	r.Add("courses", "c1", "Go Course", "go concurrency patterns", nil)

	results := r.Search("courses", search.SearchOptions{Query: "go concurrency", Limit: 5}, nil)
	if len(results) != 1 {
		t.Fatalf("Search() = %+v, want 1 result", results)
	}
}

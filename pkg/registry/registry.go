// Package registry provides the concurrency-safe, multi-corpus wrapper
// around pkg/search.Engine: one named engine per corpus, each guarded by
// its own single-writer/multi-reader lock, plus a global search that fans
// out across every corpus and merges the results.
package registry

import (
	"sort"
	"sync"
	"time"

	"github.com/solheim-labs/sitesearch/pkg/cache"
	"github.com/solheim-labs/sitesearch/pkg/concurrent"
	"github.com/solheim-labs/sitesearch/pkg/metrics"
	"github.com/solheim-labs/sitesearch/pkg/search"
)

// Corpus wraps one search.Engine behind a sync.RWMutex, following the same
// lock-around-the-index layering as the rest of this tree's index types.
//
// Go has no native equivalent of a poisoned mutex, so a panic inside Add is
// recovered and recorded as a sticky poisoned flag instead: once poisoned,
// a Corpus degrades to empty results and no-op writes rather than leaving
// the lock held or the index half-updated.
type Corpus struct {
	name       string
	mu         sync.RWMutex
	engine     *search.Engine
	poisoned   bool
	queryCount *concurrent.Counter
	addCount   *concurrent.Counter
}

func newCorpus(name string) *Corpus {
	return &Corpus{
		name:       name,
		engine:     search.NewEngine(),
		queryCount: concurrent.NewCounter(),
		addCount:   concurrent.NewCounter(),
	}
}

// Add indexes or replaces a document, returning its content fingerprint
// and whether the ingest actually changed anything (false when id was
// already indexed with byte-identical title and content). A panic during
// indexing poisons the corpus permanently; the panic is not re-raised to
// the caller.
func (c *Corpus) Add(id, title, content string, metadata map[string]string) (fingerprint string, changed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.poisoned {
		return "", false
	}
	defer func() {
		if r := recover(); r != nil {
			c.poisoned = true
		}
	}()

	fingerprint, changed = c.engine.Add(id, title, content, metadata)
	if changed {
		c.addCount.Inc()
	}
	return fingerprint, changed
}

// Search runs a query against this corpus. A poisoned corpus always
// returns an empty result set.
func (c *Corpus) Search(opts search.SearchOptions) []search.SearchResult {
	return c.SearchWithProfile(opts, nil)
}

// SearchWithProfile behaves like Search but threads a profiling session
// down into the engine so callers (via Registry.Search) can capture
// per-stage timings.
func (c *Corpus) SearchWithProfile(opts search.SearchOptions, session *metrics.ProfileSession) []search.SearchResult {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.poisoned {
		return nil
	}
	c.queryCount.Inc()
	return c.engine.SearchWithProfile(opts, session)
}

// QueryCount reports the number of Search calls this corpus has served.
func (c *Corpus) QueryCount() uint64 {
	return c.queryCount.Load()
}

// AddCount reports the number of documents successfully indexed.
func (c *Corpus) AddCount() uint64 {
	return c.addCount.Load()
}

// Get returns a document by id. A poisoned corpus reports not-found.
func (c *Corpus) Get(id string) (*search.Document, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.poisoned {
		return nil, false
	}
	return c.engine.Get(id)
}

// DocumentCount reports the number of indexed documents, or 0 when
// poisoned.
func (c *Corpus) DocumentCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.poisoned {
		return 0
	}
	return c.engine.DocumentCount()
}

// Poisoned reports whether a prior write panicked in this corpus.
func (c *Corpus) Poisoned() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.poisoned
}

// Name returns the corpus name.
func (c *Corpus) Name() string {
	return c.name
}

// Registry owns every named corpus in the service.
type Registry struct {
	mu         sync.RWMutex
	corpora    map[string]*Corpus
	metrics    *metrics.MetricsCollector
	queryCache *cache.LRUCache
	profiler   *metrics.QueryProfiler
	slowLog    *metrics.SlowQueryLog
}

// Option configures an optional Registry dependency. The zero-value
// Registry from New() works on its own — metrics, caching, and profiling
// are all opt-in.
type Option func(*Registry)

// WithMetrics records query/add counts, failures, and timing histograms on
// the given collector.
func WithMetrics(m *metrics.MetricsCollector) Option {
	return func(r *Registry) { r.metrics = m }
}

// WithCache serves Registry.Search results from c when a prior call with
// the same corpus, query, limit, fuzzy settings, and filters is still
// live, and populates it on every miss.
func WithCache(c *cache.LRUCache) Option {
	return func(r *Registry) { r.queryCache = c }
}

// WithProfiling enables per-stage timing capture (finalize, tokenize,
// score, snippet) on every Registry.Search call.
func WithProfiling() Option {
	return func(r *Registry) { r.profiler.Enable() }
}

// WithSlowQueryLog logs any Registry.Search call whose wall-clock time
// exceeds log's configured threshold.
func WithSlowQueryLog(log *metrics.SlowQueryLog) Option {
	return func(r *Registry) { r.slowLog = log }
}

// New creates an empty registry. Metrics, caching, and profiling are
// disabled until configured with the With* options.
func New(opts ...Option) *Registry {
	r := &Registry{
		corpora:  make(map[string]*Corpus),
		profiler: metrics.NewQueryProfiler(false),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Corpus returns the named corpus, creating it on first use.
func (r *Registry) Corpus(name string) *Corpus {
	r.mu.RLock()
	c, ok := r.corpora[name]
	r.mu.RUnlock()
	if ok {
		return c
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.corpora[name]; ok {
		return c
	}
	c = newCorpus(name)
	r.corpora[name] = c
	return c
}

// Names returns every registered corpus name, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.corpora))
	for name := range r.corpora {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Add indexes a document into the named corpus (creating it on first use),
// returning its content fingerprint and whether the ingest changed the
// index, and, when configured, records the add in metrics.
func (r *Registry) Add(corpus, id, title, content string, metadata map[string]string) (fingerprint string, changed bool) {
	start := time.Now()
	fingerprint, changed = r.Corpus(corpus).Add(id, title, content, metadata)
	if r.metrics != nil {
		r.metrics.RecordAdd(time.Since(start), true)
	}
	return fingerprint, changed
}

// Search runs an instrumented query against one corpus: a cache lookup (if
// configured), a profiled call into the corpus's engine (if profiling is
// enabled), and a metrics record (if configured) of the query's duration
// and whether it needed the fuzzy fallback.
func (r *Registry) Search(corpus string, opts search.SearchOptions, filters map[string]string) []search.SearchResult {
	var cacheKey string
	if r.queryCache != nil {
		cacheKey = cache.GenerateKey(corpus, opts.Query, opts.Limit, opts.Fuzzy, opts.FuzzyDistance, filters)
		if cached, ok := r.queryCache.Get(cacheKey); ok {
			if results, ok := cached.([]search.SearchResult); ok {
				return results
			}
		}
	}

	start := time.Now()
	session := r.profiler.StartProfile()
	if session != nil {
		session.AddMetadata("corpus", corpus)
		session.AddMetadata("query", opts.Query)
	}
	results := r.Corpus(corpus).SearchWithProfile(opts, session)
	results = search.Filter(results, filters)
	if session != nil {
		session.Finish()
	}

	if r.metrics != nil {
		fuzzyUsed := false
		if opts.Fuzzy {
			for _, res := range results {
				for _, h := range res.Highlights {
					if h.FuzzyMatch {
						fuzzyUsed = true
						break
					}
				}
			}
		}
		r.metrics.RecordQuery(time.Since(start), true)
		if fuzzyUsed {
			r.metrics.RecordFuzzyFallback()
		}
	}

	if r.queryCache != nil {
		r.queryCache.Put(cacheKey, results)
	}

	if r.slowLog != nil {
		r.slowLog.LogQuery(metrics.SlowQueryEntry{
			Duration:    time.Since(start),
			Operation:   "search",
			Corpus:      corpus,
			QueryText:   opts.Query,
			Fuzzy:       opts.Fuzzy,
			ResultCount: len(results),
		})
	}

	return results
}

// GlobalResult is one hit from a GlobalSearch, tagged with the corpus it
// came from.
type GlobalResult struct {
	Corpus string
	search.SearchResult
}

// GlobalSearch runs opts against every registered corpus, applying filters
// to each corpus's results the same way Registry.Search does for a single
// corpus, splitting the requested limit evenly across corpora by integer
// division (each corpus is asked for opts.Limit/len(names) results,
// floor-rounded but never fewer than 1; a split with a remainder simply leaves that remainder
// unused rather than redistributing it), merges every corpus's hits,
// re-sorts the merge by score descending with ties broken by corpus name
// then document id, and truncates to the original opts.Limit.
func (r *Registry) GlobalSearch(opts search.SearchOptions, filters map[string]string) []GlobalResult {
	names := r.Names()
	if len(names) == 0 || opts.Limit <= 0 {
		return nil
	}

	perCorpus := opts.Limit / len(names)
	if perCorpus < 1 {
		perCorpus = 1
	}

	splitOpts := opts
	splitOpts.Limit = perCorpus

	var merged []GlobalResult
	for _, name := range names {
		c := r.Corpus(name)
		for _, res := range search.Filter(c.Search(splitOpts), filters) {
			merged = append(merged, GlobalResult{Corpus: name, SearchResult: res})
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].Score != merged[j].Score {
			return merged[i].Score > merged[j].Score
		}
		if merged[i].Corpus != merged[j].Corpus {
			return merged[i].Corpus < merged[j].Corpus
		}
		return merged[i].DocumentID < merged[j].DocumentID
	})

	if len(merged) > opts.Limit {
		merged = merged[:opts.Limit]
	}
	return merged
}

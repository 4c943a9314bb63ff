package search

import "github.com/solheim-labs/sitesearch/pkg/metrics"

// Search ensures the engine is finalized, scores every document against
// the query under the vector-space model (with optional fuzzy fallback and
// title-substring boost), and returns the top opts.Limit results ordered
// by non-increasing score.
//
// A zero or negative Limit, or a query with no admissible terms, returns an
// empty (nil) result set rather than an error — the search surface never
// returns an error for ordinary input.
func (e *Engine) Search(opts SearchOptions) []SearchResult {
	return e.SearchWithProfile(opts, nil)
}

// SearchWithProfile behaves like Search but additionally records per-stage
// timings on session: finalize, tokenize (query-vector construction), score
// (cosine + fuzzy fallback across every document), and snippet (result
// assembly, including highlight building). session may be nil, in which
// case profiling is skipped entirely at near-zero cost.
func (e *Engine) SearchWithProfile(opts SearchOptions, session *metrics.ProfileSession) []SearchResult {
	if opts.Limit <= 0 {
		return nil
	}

	session.StartStage("finalize")
	e.Finalize()

	session.StartStage("tokenize")
	qv, qTerms := e.queryVector(opts.Query)
	if len(qTerms) == 0 {
		session.EndStage()
		return nil
	}
	session.AddStageDetail("admissible_terms", len(qTerms))

	workers := opts.Workers
	if workers <= 0 {
		workers = defaultWorkerCount()
	}

	session.StartStage("score")
	session.AddStageDetail("fuzzy_fallback", opts.Fuzzy)
	scored := scoreAll(e, opts.Query, qv, qTerms, opts.Fuzzy, opts.FuzzyDistance, workers)

	session.StartStage("snippet")
	results := rankedToResults(e, scored, qTerms, opts.Fuzzy, opts.FuzzyDistance, opts.Limit)
	session.AddStageDetail("result_count", len(results))
	session.EndStage()

	return results
}

// Filter keeps only results whose metadata contains every (key, value) pair
// in filters, under exact string equality. An empty filter map is the
// identity. Filtering runs after ranking and truncation, so it can return
// fewer than Limit results without backfilling.
func Filter(results []SearchResult, filters map[string]string) []SearchResult {
	if len(filters) == 0 {
		return results
	}

	out := make([]SearchResult, 0, len(results))
	for _, r := range results {
		if matchesFilters(r.Metadata, filters) {
			out = append(out, r)
		}
	}
	return out
}

func matchesFilters(metadata map[string]string, filters map[string]string) bool {
	for key, want := range filters {
		if metadata[key] != want {
			return false
		}
	}
	return true
}

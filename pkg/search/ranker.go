package search

import (
	"runtime"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"
)

// scoredDoc is one document's score before truncation, filtering, and
// result assembly.
type scoredDoc struct {
	id    string
	score float64
}

const fuzzyMatchWeight = 0.5

// scoreAll computes the cosine (+ optional fuzzy fallback, + title boost)
// score for every vectorized document, fanning the work out across
// workers goroutines over a read-only snapshot of the engine's vectors and
// documents. The result order is keyed to a fixed, sorted document-id
// slice, so output is identical regardless of worker count.
func scoreAll(e *Engine, query string, qv *TfIdfVector, qTerms map[string]struct{}, fuzzy bool, fuzzyDistance, workers int) []scoredDoc {
	ids := make([]string, 0, len(e.vectors))
	for id, vec := range e.vectors {
		if len(vec.Weights) > 0 {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	results := make([]scoredDoc, len(ids))
	lowerQuery := strings.ToLower(query)

	if workers < 1 {
		workers = 1
	}
	if workers > len(ids) {
		workers = len(ids)
	}
	if workers <= 1 {
		for i, id := range ids {
			results[i] = scoredDoc{id: id, score: scoreOne(e, id, lowerQuery, qv, qTerms, fuzzy, fuzzyDistance)}
		}
		return results
	}

	chunk := (len(ids) + workers - 1) / workers
	var wg sync.WaitGroup
	for start := 0; start < len(ids); start += chunk {
		end := start + chunk
		if end > len(ids) {
			end = len(ids)
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				id := ids[i]
				results[i] = scoredDoc{id: id, score: scoreOne(e, id, lowerQuery, qv, qTerms, fuzzy, fuzzyDistance)}
			}
		}(start, end)
	}
	wg.Wait()

	return results
}

func scoreOne(e *Engine, id, lowerQuery string, qv *TfIdfVector, qTerms map[string]struct{}, fuzzy bool, fuzzyDistance int) float64 {
	vec := e.vectors[id]
	score := vec.cosineSimilarity(qv)

	if fuzzy && score == 0 {
		score += fuzzyFallbackScore(vec, qTerms, fuzzyDistance)
	}

	if doc, ok := e.docs.get(id); ok && lowerQuery != "" {
		if strings.Contains(strings.ToLower(doc.Title), lowerQuery) {
			score *= 2.0
		}
	}

	return score
}

// fuzzyFallbackScore adds 0.5*(1 - dist/len(q)) for every (query term,
// document term) pair within the allowed edit distance, guarded against
// blowup on tiny query terms by the len(q)/2 bound.
func fuzzyFallbackScore(vec *TfIdfVector, qTerms map[string]struct{}, fuzzyDistance int) float64 {
	var score float64
	for q := range qTerms {
		qLen := utf8.RuneCountInString(q)
		if qLen == 0 {
			continue
		}
		for t := range vec.Weights {
			dist := damerauDistance(q, t)
			if dist <= fuzzyDistance && dist <= qLen/2 {
				score += fuzzyMatchWeight * (1 - float64(dist)/float64(qLen))
			}
		}
	}
	return score
}

// defaultWorkerCount caps fan-out at GOMAXPROCS so tiny corpora don't pay
// goroutine overhead for no benefit.
func defaultWorkerCount() int {
	n := runtime.GOMAXPROCS(0)
	if n < 1 {
		return 1
	}
	return n
}

// rankedToResults sorts scoredDoc entries by score descending, breaking
// ties deterministically by document id, truncates to limit, and builds
// the final SearchResult for each survivor.
func rankedToResults(e *Engine, scored []scoredDoc, qTerms map[string]struct{}, fuzzy bool, fuzzyDistance, limit int) []SearchResult {
	survivors := make([]scoredDoc, 0, len(scored))
	for _, s := range scored {
		if s.score > 0 {
			survivors = append(survivors, s)
		}
	}

	sort.SliceStable(survivors, func(i, j int) bool {
		if survivors[i].score != survivors[j].score {
			return survivors[i].score > survivors[j].score
		}
		return survivors[i].id < survivors[j].id
	})

	if limit >= 0 && len(survivors) > limit {
		survivors = survivors[:limit]
	}

	out := make([]SearchResult, 0, len(survivors))
	for _, s := range survivors {
		doc, ok := e.docs.get(s.id)
		if !ok {
			continue
		}

		meta := make(map[string]string, len(doc.Metadata))
		for k, v := range doc.Metadata {
			meta[k] = v
		}

		out = append(out, SearchResult{
			DocumentID: doc.ID,
			Title:      doc.Title,
			Snippet:    buildSnippet(doc.Content, qTerms),
			Metadata:   meta,
			Score:      s.score,
			Highlights: buildHighlights(doc.Content, qTerms, fuzzy, fuzzyDistance),
		})
	}

	return out
}

package search

import "math"

// Engine is a single-corpus, in-memory full-text search index: a document
// store, corpus statistics, cached TF-IDF vectors, and an inverted index,
// combined with the ranker and snippet builder.
//
// Engine is not safe for concurrent use by itself — single-writer/
// multi-reader discipline is enforced one layer up, by pkg/registry.Corpus,
// which wraps one of these behind a sync.RWMutex rather than pushing
// locking into the index implementation.
type Engine struct {
	tokenizer *Tokenizer
	docs      *documentStore
	stats     *corpusStats
	vectors   map[string]*TfIdfVector
	postings  map[string][]Posting
	dirty     bool
}

// NewEngine creates an empty engine for one corpus.
func NewEngine() *Engine {
	return &Engine{
		tokenizer: NewTokenizer(),
		docs:      newDocumentStore(),
		stats:     newCorpusStats(),
		vectors:   make(map[string]*TfIdfVector),
		postings:  make(map[string][]Posting),
	}
}

// Add stores a document by id, replacing any prior document with that id,
// recomputes document-frequency bookkeeping, and marks the corpus dirty so
// the next Search call recomputes TF-IDF vectors. It never fails.
//
// When id was already indexed with byte-identical title and content, the
// blake2b fingerprint matches the stored document's and Add is a detectable
// no-op: stats bookkeeping and the dirty flag are left untouched, and
// changed reports false. fingerprint is always returned, so a caller can
// surface it as an ETag-like idempotency signal regardless of changed.
func (e *Engine) Add(id, title, content string, metadata map[string]string) (fingerprint string, changed bool) {
	fingerprint = contentFingerprint(title, content)

	old, existed := e.docs.get(id)
	if existed && old.Fingerprint == fingerprint {
		return fingerprint, false
	}

	terms := e.extractTerms(title, content)

	if existed {
		oldTerms := e.extractTerms(old.Title, old.Content)
		e.stats.retract(oldTerms)
	}

	meta := make(map[string]string, len(metadata))
	for k, v := range metadata {
		meta[k] = v
	}

	doc := &Document{
		ID:          id,
		Title:       title,
		Content:     content,
		Metadata:    meta,
		Fingerprint: fingerprint,
	}

	isNew := e.docs.put(doc)
	if isNew {
		e.stats.docCount++
	}
	e.stats.apply(terms)
	e.dirty = true

	return fingerprint, true
}

// Get returns a document by id, if indexed.
func (e *Engine) Get(id string) (*Document, bool) {
	return e.docs.get(id)
}

// DocumentCount returns the number of indexed documents.
func (e *Engine) DocumentCount() int {
	return e.docs.count()
}

// extractTerms computes the weighted term-frequency map for one document:
// title occurrences contribute +3.0, content occurrences +1.0, accumulated
// per admissible term.
func (e *Engine) extractTerms(title, content string) termFrequencies {
	freqs := make(termFrequencies)
	for _, tok := range e.tokenizer.Tokenize(title) {
		freqs[tok] += 3.0
	}
	for _, tok := range e.tokenizer.Tokenize(content) {
		freqs[tok] += 1.0
	}
	return freqs
}

// Finalize recomputes the corpus-wide IDF, every document's TF-IDF vector
// and magnitude, and rebuilds the inverted index from scratch. It is
// idempotent when the corpus has not changed since the last call.
func (e *Engine) Finalize() {
	if !e.dirty {
		return
	}

	n := float64(e.stats.docCount)

	idf := make(map[string]float64, len(e.stats.df))
	for term, df := range e.stats.df {
		if df > 0 {
			idf[term] = math.Log(n / float64(df))
		}
	}

	vectors := make(map[string]*TfIdfVector, e.docs.count())
	postings := make(map[string][]Posting, len(idf))

	for id, doc := range e.docs.all() {
		terms := e.extractTerms(doc.Title, doc.Content)

		tfMax := 0.0
		for _, tf := range terms {
			if tf > tfMax {
				tfMax = tf
			}
		}

		vec := newTfIdfVector()
		if tfMax > 0 {
			for term, tf := range terms {
				termIDF, ok := idf[term]
				if !ok {
					continue
				}
				weight := (tf / tfMax) * termIDF
				if weight <= 0 {
					continue
				}
				vec.Weights[term] = weight
				postings[term] = append(postings[term], Posting{DocID: id, Weight: weight})
			}
		}
		vec.finalizeMagnitude()
		vectors[id] = vec
	}

	e.vectors = vectors
	e.postings = postings
	e.dirty = false
}

// queryVector builds the query's TF-IDF vector and its admissible term set,
// using the corpus's current IDF (valid only once Finalize has run).
func (e *Engine) queryVector(query string) (*TfIdfVector, map[string]struct{}) {
	terms := e.tokenizer.TermCounts(query)

	admissible := make(map[string]struct{}, len(terms))
	vec := newTfIdfVector()

	n := float64(e.stats.docCount)
	for term, qtf := range terms {
		admissible[term] = struct{}{}

		df := e.stats.documentFrequency(term)
		if df == 0 {
			continue
		}
		vec.Weights[term] = qtf * math.Log(n/float64(df))
	}
	vec.finalizeMagnitude()

	return vec, admissible
}

package search

// corpusStats tracks the document count and per-term document frequency
// for a single corpus. Both are maintained incrementally on every ingest
// (see engine.Add), so document frequency always equals the number of
// indexed documents whose weighted term set contains a given term with
// positive weight, continuously, not only immediately after finalize.
type corpusStats struct {
	docCount int
	df       map[string]int
}

func newCorpusStats() *corpusStats {
	return &corpusStats{df: make(map[string]int)}
}

func (s *corpusStats) documentFrequency(term string) int {
	return s.df[term]
}

// retract removes one document's term set from the document-frequency
// counts, used when replacing a previously-ingested document with the same
// external id.
func (s *corpusStats) retract(terms termFrequencies) {
	for term, weight := range terms {
		if weight <= 0 {
			continue
		}
		if n := s.df[term]; n <= 1 {
			delete(s.df, term)
		} else {
			s.df[term] = n - 1
		}
	}
}

// apply adds one document's term set to the document-frequency counts.
func (s *corpusStats) apply(terms termFrequencies) {
	for term, weight := range terms {
		if weight <= 0 {
			continue
		}
		s.df[term]++
	}
}

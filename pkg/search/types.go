package search

// SearchOptions configures one Search call. Query is required; Limit,
// Fuzzy, and FuzzyDistance are optional (see DefaultSearchOptions).
type SearchOptions struct {
	Query         string
	Limit         int
	Fuzzy         bool
	FuzzyDistance int

	// Workers overrides the fan-out degree used for parallel scoring.
	// Zero means "pick a sensible default". Exposed mainly so tests can
	// assert identical output across worker counts.
	Workers int
}

// DefaultSearchOptions returns the conventional defaults: limit 10, fuzzy
// disabled.
func DefaultSearchOptions(query string) SearchOptions {
	return SearchOptions{Query: query, Limit: 10}
}

// SearchResult is one ranked hit: document id, title, an extracted
// snippet, a copy of the document's metadata, a non-negative score, and
// word-level highlight segments.
type SearchResult struct {
	DocumentID string            `json:"document_id"`
	Title      string            `json:"title"`
	Snippet    string            `json:"snippet"`
	Metadata   map[string]string `json:"metadata"`
	Score      float64           `json:"score"`
	Highlights []TextHighlight   `json:"highlights"`
}

// TextHighlight is one word-level segment of a document's content, with
// the original text preserved and a flag for whether it matched the query.
// FuzzyMatch and TitleCased are only populated for words that matched via
// the edit-distance fallback rather than an exact term.
type TextHighlight struct {
	Text        string `json:"text"`
	Highlighted bool   `json:"highlighted"`
	FuzzyMatch  bool   `json:"fuzzy_match,omitempty"`
	TitleCased  string `json:"title_cased,omitempty"`
}

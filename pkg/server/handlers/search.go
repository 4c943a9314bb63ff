package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/solheim-labs/sitesearch/pkg/search"
)

// SearchRequest is the request body for both the single-corpus and global
// search endpoints.
type SearchRequest struct {
	Query         string            `json:"query"`
	Filters       map[string]string `json:"filters,omitempty"`
	Limit         int               `json:"limit,omitempty"`
	Fuzzy         bool              `json:"fuzzy,omitempty"`
	FuzzyDistance int               `json:"fuzzy_distance,omitempty"`
}

func (req SearchRequest) toOptions() search.SearchOptions {
	opts := search.DefaultSearchOptions(req.Query)
	if req.Limit > 0 {
		opts.Limit = req.Limit
	}
	opts.Fuzzy = req.Fuzzy
	opts.FuzzyDistance = req.FuzzyDistance
	return opts
}

// SearchResponse is the response body for both search endpoints.
type SearchResponse struct {
	Results []search.SearchResult `json:"results"`
	Total   int                   `json:"total"`
}

// SearchCorpus handles POST /search/{corpus}: a single-corpus search.
func (h *Handlers) SearchCorpus(w http.ResponseWriter, r *http.Request) {
	corpus := chi.URLParam(r, "corpus")
	if corpus == "" {
		writeError(w, &BadRequestError{Message: "corpus name is required"})
		return
	}

	var req SearchRequest
	if err := parseJSONBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Query == "" {
		writeError(w, &BadRequestError{Message: "query is required"})
		return
	}

	results := h.reg.Search(corpus, req.toOptions(), req.Filters)
	if results == nil {
		results = []search.SearchResult{}
	}

	writeSuccess(w, SearchResponse{Results: results, Total: len(results)})
}

// Search handles POST /search: a global search across every registered
// corpus, splitting the requested limit evenly across corpora.
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := parseJSONBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Query == "" {
		writeError(w, &BadRequestError{Message: "query is required"})
		return
	}

	merged := h.reg.GlobalSearch(req.toOptions(), req.Filters)

	results := make([]search.SearchResult, 0, len(merged))
	for _, gr := range merged {
		results = append(results, gr.SearchResult)
	}

	writeSuccess(w, SearchResponse{Results: results, Total: len(results)})
}

// DocumentRequest is the request body for the document ingest endpoint.
type DocumentRequest struct {
	ID       string            `json:"id"`
	Title    string            `json:"title"`
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// AddDocument handles POST /corpora/{corpus}/documents: indexes one
// document into the named corpus, creating it on first use. The response
// includes the document's blake2b content fingerprint and whether this
// ingest actually changed the index, so a caller re-submitting
// byte-identical content can tell the re-add was a no-op.
func (h *Handlers) AddDocument(w http.ResponseWriter, r *http.Request) {
	corpus := chi.URLParam(r, "corpus")
	if corpus == "" {
		writeError(w, &BadRequestError{Message: "corpus name is required"})
		return
	}

	var req DocumentRequest
	if err := parseJSONBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.ID == "" {
		writeError(w, &BadRequestError{Message: "document id is required"})
		return
	}

	fingerprint, changed := h.reg.Add(corpus, req.ID, req.Title, req.Content, req.Metadata)

	writeSuccess(w, map[string]interface{}{
		"id":          req.ID,
		"corpus":      corpus,
		"fingerprint": fingerprint,
		"changed":     changed,
	})
}

// Health handles GET /_health: a liveness probe reporting uptime and the
// names of the registered corpora.
func (h *Handlers) Health(startTime time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeSuccess(w, map[string]interface{}{
			"status":         "ok",
			"uptime_seconds": time.Since(startTime).Seconds(),
			"corpora":        h.reg.Names(),
		})
	}
}

// ListCorpora handles GET /corpora: the list of currently registered
// corpus names and their document counts.
func (h *Handlers) ListCorpora(w http.ResponseWriter, r *http.Request) {
	names := h.reg.Names()
	counts := make(map[string]int, len(names))
	for _, name := range names {
		counts[name] = h.reg.Corpus(name).DocumentCount()
	}
	writeSuccessWithCount(w, counts, len(names))
}

package graphql

import (
	"fmt"

	"github.com/graphql-go/graphql"
	"github.com/solheim-labs/sitesearch/pkg/registry"
	"github.com/solheim-labs/sitesearch/pkg/search"
)

// Resolver handles GraphQL query resolution over a Registry.
type Resolver struct {
	reg *registry.Registry
}

// NewResolver creates a new Resolver instance.
func NewResolver(reg *registry.Registry) *Resolver {
	return &Resolver{reg: reg}
}

// Search resolves the search query: corpus, query, optional filters,
// limit, fuzzy, and fuzzyDistance arguments, producing the same
// []SearchResult shape the REST surface returns. An empty corpus argument
// runs a global search across every registered corpus instead.
func (r *Resolver) Search(p graphql.ResolveParams) (interface{}, error) {
	queryText, ok := p.Args["query"].(string)
	if !ok || queryText == "" {
		return nil, fmt.Errorf("query is required")
	}

	opts := search.DefaultSearchOptions(queryText)
	if limit, ok := p.Args["limit"].(int); ok && limit > 0 {
		opts.Limit = limit
	}
	if fuzzy, ok := p.Args["fuzzy"].(bool); ok {
		opts.Fuzzy = fuzzy
	}
	if dist, ok := p.Args["fuzzyDistance"].(int); ok {
		opts.FuzzyDistance = dist
	}

	filters := stringMap(p.Args["filters"])

	corpus, _ := p.Args["corpus"].(string)
	if corpus == "" {
		merged := r.reg.GlobalSearch(opts, filters)
		out := make([]interface{}, 0, len(merged))
		for _, res := range merged {
			out = append(out, resultToMap(res.SearchResult))
		}
		return out, nil
	}

	results := r.reg.Search(corpus, opts, filters)

	out := make([]interface{}, 0, len(results))
	for _, res := range results {
		out = append(out, resultToMap(res))
	}
	return out, nil
}

func resultToMap(res search.SearchResult) map[string]interface{} {
	metadata := make(map[string]interface{}, len(res.Metadata))
	for k, v := range res.Metadata {
		metadata[k] = v
	}

	highlights := make([]interface{}, 0, len(res.Highlights))
	for _, h := range res.Highlights {
		highlights = append(highlights, map[string]interface{}{
			"text":        h.Text,
			"highlighted": h.Highlighted,
			"fuzzyMatch":  h.FuzzyMatch,
			"titleCased":  h.TitleCased,
		})
	}

	return map[string]interface{}{
		"documentId": res.DocumentID,
		"title":      res.Title,
		"snippet":    res.Snippet,
		"metadata":   metadata,
		"score":      res.Score,
		"highlights": highlights,
	}
}

// Corpora resolves the corpora query: the list of currently registered
// corpus names.
func (r *Resolver) Corpora(p graphql.ResolveParams) (interface{}, error) {
	return r.reg.Names(), nil
}

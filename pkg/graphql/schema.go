package graphql

import (
	"fmt"

	"github.com/graphql-go/graphql"
	"github.com/solheim-labs/sitesearch/pkg/registry"
)

// Schema creates and returns the GraphQL schema over a Registry.
func Schema(reg *registry.Registry) (graphql.Schema, error) {
	highlightType := graphql.NewObject(graphql.ObjectConfig{
		Name:        "TextHighlight",
		Description: "One word-level segment of a result's content",
		Fields: graphql.Fields{
			"text": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.String),
				Description: "Original text of the word, including surrounding punctuation",
			},
			"highlighted": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.Boolean),
				Description: "Whether the word matched the query",
			},
			"fuzzyMatch": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.Boolean),
				Description: "Whether the match came from the edit-distance fallback rather than an exact term",
			},
			"titleCased": &graphql.Field{
				Type:        graphql.String,
				Description: "Title-cased form of the word, set only for fuzzy matches",
			},
		},
	})

	searchResultType := graphql.NewObject(graphql.ObjectConfig{
		Name:        "SearchResult",
		Description: "One ranked search hit",
		Fields: graphql.Fields{
			"documentId": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.String),
				Description: "Id of the matched document",
			},
			"title": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.String),
				Description: "Document title",
			},
			"snippet": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.String),
				Description: "Extracted content window around the query terms",
			},
			"metadata": &graphql.Field{
				Type:        JSONScalar,
				Description: "Document metadata",
			},
			"score": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.Float),
				Description: "Non-negative relevance score",
			},
			"highlights": &graphql.Field{
				Type:        graphql.NewList(highlightType),
				Description: "Word-level highlight segments",
			},
		},
	})

	resolver := NewResolver(reg)

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name:        "Query",
		Description: "Root query type for the search service",
		Fields: graphql.Fields{
			"search": &graphql.Field{
				Type:        graphql.NewList(searchResultType),
				Description: "Search one corpus, or every registered corpus when corpus is omitted",
				Args: graphql.FieldConfigArgument{
					"corpus": &graphql.ArgumentConfig{
						Type:        graphql.String,
						Description: "Corpus name (courses, portfolio, blog, ...); omit for a global search",
					},
					"query": &graphql.ArgumentConfig{
						Type:        graphql.NewNonNull(graphql.String),
						Description: "Query text",
					},
					"filters": &graphql.ArgumentConfig{
						Type:        JSONScalar,
						Description: "Metadata filters, applied after ranking",
					},
					"limit": &graphql.ArgumentConfig{
						Type:         graphql.Int,
						Description:  "Maximum number of results",
						DefaultValue: 10,
					},
					"fuzzy": &graphql.ArgumentConfig{
						Type:         graphql.Boolean,
						Description:  "Enable the edit-distance fallback for zero-score documents",
						DefaultValue: false,
					},
					"fuzzyDistance": &graphql.ArgumentConfig{
						Type:         graphql.Int,
						Description:  "Maximum edit distance honored by the fuzzy fallback",
						DefaultValue: 0,
					},
				},
				Resolve: resolver.Search,
			},
			"corpora": &graphql.Field{
				Type:        graphql.NewList(graphql.NewNonNull(graphql.String)),
				Description: "Names of every currently registered corpus",
				Resolve:     resolver.Corpora,
			},
		},
	})

	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
	if err != nil {
		return graphql.Schema{}, fmt.Errorf("failed to create GraphQL schema: %w", err)
	}

	return schema, nil
}

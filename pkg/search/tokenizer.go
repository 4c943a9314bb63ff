package search

import (
	"regexp"
	"strings"
)

// wordPattern matches maximal runs of letters and numbers.
var wordPattern = regexp.MustCompile(`[\p{L}\p{N}]+`)

// Tokenizer normalizes text to a sequence of admissible, lowercased word
// tokens. It is pure and deterministic, and is reused by ingest, query
// vectorization, snippet selection, and highlight generation.
type Tokenizer struct {
	stopWords map[string]struct{}
}

// NewTokenizer creates a tokenizer with the fixed English stopword list.
func NewTokenizer() *Tokenizer {
	return &Tokenizer{stopWords: stopWordSet()}
}

// Tokenize lowercases text under Unicode case folding and extracts every
// admissible term (not a stopword, length >= 2), in order of appearance.
func (t *Tokenizer) Tokenize(text string) []string {
	matches := wordPattern.FindAllString(strings.ToLower(text), -1)
	if len(matches) == 0 {
		return nil
	}

	tokens := make([]string, 0, len(matches))
	for _, m := range matches {
		if t.isAdmissible(m) {
			tokens = append(tokens, m)
		}
	}
	if len(tokens) == 0 {
		return nil
	}
	return tokens
}

// IsAdmissible reports whether a lowercased token would survive filtering.
func (t *Tokenizer) IsAdmissible(token string) bool {
	return t.isAdmissible(strings.ToLower(token))
}

func (t *Tokenizer) isAdmissible(lower string) bool {
	if len([]rune(lower)) < 2 {
		return false
	}
	_, stop := t.stopWords[lower]
	return !stop
}

// TermCounts tokenizes text and counts admissible term occurrences.
func (t *Tokenizer) TermCounts(text string) map[string]float64 {
	counts := make(map[string]float64)
	for _, tok := range t.Tokenize(text) {
		counts[tok]++
	}
	return counts
}

// stopWordSet returns the fixed, corpus-independent stopword list: articles,
// conjunctions, auxiliaries, common prepositions and pronouns.
func stopWordSet() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "because", "as", "what",
		"when", "where", "how", "who", "which", "this", "that", "these", "those",
		"is", "are", "was", "were", "be", "been", "being", "have", "has", "had",
		"do", "does", "did", "can", "could", "will", "would", "shall", "should",
		"may", "might", "must", "for", "of", "to", "in", "on", "by", "with", "about",
	}

	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

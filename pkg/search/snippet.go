package search

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

const snippetWindowSize = 30

// buildSnippet selects the 30-word content window that maximizes query-term
// hits, returning the leftmost such window on ties. Documents shorter than
// the window are returned whole.
func buildSnippet(content string, qTerms map[string]struct{}) string {
	words := strings.Fields(content)
	if len(words) < snippetWindowSize {
		return content
	}

	bestStart := 0
	bestScore := -1

	for start := 0; start+snippetWindowSize <= len(words); start++ {
		windowText := strings.ToLower(strings.Join(words[start:start+snippetWindowSize], " "))

		score := 0
		for term := range qTerms {
			if strings.Contains(windowText, term) {
				score++
			}
		}

		if score > bestScore {
			bestScore = score
			bestStart = start
		}
	}

	snippet := strings.Join(words[bestStart:bestStart+snippetWindowSize], " ")
	if bestStart > 0 {
		return "..." + snippet
	}
	return snippet
}

// buildHighlights emits one segment per whitespace-separated word of the
// content, marking a word highlighted when its cleaned form is an
// admissible query term, or — with fuzzy enabled — within fuzzyDistance of
// one.
func buildHighlights(content string, qTerms map[string]struct{}, fuzzy bool, fuzzyDistance int) []TextHighlight {
	words := strings.Fields(content)
	highlights := make([]TextHighlight, 0, len(words))

	for _, word := range words {
		cleaned := cleanWord(word)

		_, exact := qTerms[cleaned]
		matched := exact
		viaFuzzy := false
		if !matched && fuzzy {
			for term := range qTerms {
				if damerauDistance(term, cleaned) <= fuzzyDistance {
					matched = true
					viaFuzzy = true
					break
				}
			}
		}

		h := TextHighlight{Text: word, Highlighted: matched, FuzzyMatch: viaFuzzy}
		if viaFuzzy {
			h.TitleCased = titleCaser.String(cleaned)
		}
		highlights = append(highlights, h)
	}

	return highlights
}

func cleanWord(word string) string {
	trimmed := strings.TrimFunc(word, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	return strings.ToLower(trimmed)
}

package search

import (
	"strings"
	"testing"
)

func TestBuildSnippetShortDocumentReturnsWhole(t *testing.T) {
	content := "Rust is a systems programming language"
	got := buildSnippet(content, map[string]struct{}{"rust": {}})
	if got != content {
		t.Fatalf("buildSnippet() = %q, want unchanged content", got)
	}
}

func TestBuildSnippetPicksLeftmostBestWindow(t *testing.T) {
	filler := strings.Repeat("filler ", 40)
	content := filler + "rust programming language appears here " + filler
	qTerms := map[string]struct{}{"rust": {}, "programming": {}, "language": {}}

	got := buildSnippet(content, qTerms)
	if !strings.Contains(got, "rust programming language") {
		t.Fatalf("buildSnippet() = %q, want window containing query terms", got)
	}
	if !strings.HasPrefix(got, "...") {
		t.Fatalf("buildSnippet() = %q, want \"...\" prefix for non-zero start", got)
	}
}

func TestBuildHighlightsMarksExactAndPreservesOriginalText(t *testing.T) {
	content := "Rust, is great!"
	qTerms := map[string]struct{}{"rust": {}}

	got := buildHighlights(content, qTerms, false, 0)
	want := []TextHighlight{
		{Text: "Rust,", Highlighted: true},
		{Text: "is", Highlighted: false},
		{Text: "great!", Highlighted: false},
	}

	if len(got) != len(want) {
		t.Fatalf("buildHighlights() len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("buildHighlights()[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestBuildHighlightsFuzzyMatchesWithinDistance(t *testing.T) {
	content := "progamming is fun"
	qTerms := map[string]struct{}{"programming": {}}

	exact := buildHighlights(content, qTerms, false, 2)
	if exact[0].Highlighted {
		t.Fatalf("expected non-fuzzy pass to not match typo'd word")
	}

	fuzzy := buildHighlights(content, qTerms, true, 2)
	if !fuzzy[0].Highlighted {
		t.Fatalf("expected fuzzy pass to match typo'd word within distance 2")
	}
	if !fuzzy[0].FuzzyMatch {
		t.Fatalf("expected fuzzy-matched word to be flagged FuzzyMatch")
	}
	if fuzzy[0].TitleCased != "Progamming" {
		t.Fatalf("TitleCased = %q, want %q", fuzzy[0].TitleCased, "Progamming")
	}
}

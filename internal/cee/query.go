package cee

import (
	"regexp"
	"strings"
)

// genericWords are stripped out of a query when isolating its semantic
// part; they carry no retrieval signal on their own.
var genericWords = map[string]bool{
	"what": true, "who": true, "when": true, "where": true, "why": true, "how": true,
	"the": true, "a": true, "an": true, "is": true, "are": true, "was": true, "were": true,
	"do": true, "does": true, "did": true, "my": true, "me": true, "i": true, "tell": true,
	"about": true, "of": true, "for": true, "to": true,
}

// tokenSplit implements the BM25 tokenization rule: lower-case, split on
// whitespace/punctuation, drop length-1 tokens.
var tokenSplit = regexp.MustCompile(`[\s\-_.,;:!?'"()\[\]{}]+`)

// Tokenize splits text into BM25 tokens per spec.md §4.3.
func Tokenize(text string) []string {
	lower := strings.ToLower(text)
	parts := tokenSplit.Split(lower, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if len([]rune(p)) > 1 {
			out = append(out, p)
		}
	}
	return out
}

// QueryAnalysis is the result of analyzing a user query before seeding.
type QueryAnalysis struct {
	OriginalQuery       string
	HasTimeReference    bool
	HasSemanticContent  bool
	SemanticPart        string
	ExpectedTypes       []string
	ShouldSkipEmbedding bool
}

// Analyze implements analyze(q) per spec.md §4.3: time detection, semantic
// part extraction with generic words stripped, and the skip-embedding
// decision for queries that are pure time references.
func Analyze(q string) QueryAnalysis {
	hasTime := HasTimeReference(q)
	stripped := StripTimeReferences(q)
	semantic := stripGenericWords(stripped)

	meaningful := len([]rune(strings.TrimSpace(semantic))) >= 3

	return QueryAnalysis{
		OriginalQuery:       q,
		HasTimeReference:    hasTime,
		HasSemanticContent:  meaningful,
		SemanticPart:        strings.TrimSpace(semantic),
		ExpectedTypes:       expectedTypes(q),
		ShouldSkipEmbedding: hasTime && !meaningful,
	}
}

func stripGenericWords(s string) string {
	fields := strings.Fields(s)
	kept := make([]string, 0, len(fields))
	for _, f := range fields {
		trimmed := strings.ToLower(strings.Trim(f, ".,;:!?'\"()[]{}"))
		if genericWords[trimmed] {
			continue
		}
		kept = append(kept, f)
	}
	return strings.Join(kept, " ")
}

// expectedTypes offers a best-effort guess at which node kinds a query is
// probably after, based on surface cues. Empty means no strong signal.
func expectedTypes(q string) []string {
	lower := strings.ToLower(q)
	var types []string
	switch {
	case strings.Contains(lower, "remember") || strings.Contains(lower, "recall"):
		types = append(types, "concept", "episode")
	case HasTimeReference(q):
		types = append(types, "episode")
	}
	return types
}

package profile

import "strings"

// stopWords filters common English words that add noise to token overlap.
var stopWords = map[string]bool{
	"and": true, "the": true, "for": true, "with": true, "you": true,
	"are": true, "have": true, "will": true, "this": true, "that": true,
	"from": true, "our": true, "your": true, "their": true, "they": true,
	"about": true, "which": true, "what": true, "who": true, "how": true,
	"can": true, "not": true, "but": true, "all": true, "also": true,
	"more": true, "than": true, "into": true, "has": true, "its": true,
	"was": true, "were": true, "been": true, "each": true, "new": true,
	"use": true, "using": true, "used": true, "well": true, "such": true,
	"able": true, "get": true, "set": true, "per": true, "etc": true,
}

// Tokens tokenizes text into a lowercase keyword set, skipping stop words and
// tokens shorter than 3 runes. Tech suffixes like "c++", "c#" and "node.js"
// survive because + # . are treated as word characters; trailing dots are
// trimmed so sentence punctuation does not fragment the set.
func Tokens(text string) map[string]struct{} {
	tokens := make(map[string]struct{})
	var word strings.Builder
	flush := func() {
		w := strings.TrimRight(word.String(), ".")
		word.Reset()
		if len([]rune(w)) >= 3 && !stopWords[w] {
			tokens[w] = struct{}{}
		}
	}
	for _, r := range strings.ToLower(text) {
		if isWordRune(r) || r == '.' {
			word.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return tokens
}

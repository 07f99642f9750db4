package profile

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/spigell/resume-screener/internal/catalog"
)

// seniorityVocabulary is the fixed set of seniority signals the extractor
// recognizes. Matching is whole-token, like skill matching.
var seniorityVocabulary = []string{
	"intern", "junior", "mid-level", "senior", "staff", "lead", "principal",
	"architect", "head", "manager", "director",
}

// yearsPattern matches constructs like "7 years", "5+ yrs", "10 years of
// experience" in normalized text. The largest figure found wins.
var yearsPattern = regexp.MustCompile(`(\d{1,2}(?:\.\d)?)\s*\+?\s*(?:years?|yrs?)\b`)

// Extractor performs lexical skill, experience and seniority extraction
// against a catalog. It is stateless apart from the read-only catalog and is
// safe for concurrent use.
type Extractor struct {
	catalog *catalog.Catalog
}

// NewExtractor builds an extractor. A nil catalog falls back to the built-in
// taxonomy.
func NewExtractor(c *catalog.Catalog) *Extractor {
	if c == nil {
		c = catalog.Default()
	}
	return &Extractor{catalog: c}
}

// Extract builds a profile from raw text. It never fails: empty or noise-only
// input yields an empty profile.
func (e *Extractor) Extract(text string) Profile {
	normalized := Normalize(text)

	p := Profile{RawText: text}
	if normalized == "" {
		return p
	}

	e.catalog.Walk(func(category, term string) {
		if containsToken(normalized, term) {
			p.Skills = append(p.Skills, Skill{Term: term, Category: category})
		}
	})
	sort.Slice(p.Skills, func(i, j int) bool {
		if p.Skills[i].Term != p.Skills[j].Term {
			return p.Skills[i].Term < p.Skills[j].Term
		}
		return p.Skills[i].Category < p.Skills[j].Category
	})

	for _, match := range yearsPattern.FindAllStringSubmatch(normalized, -1) {
		years, err := strconv.ParseFloat(match[1], 64)
		if err != nil {
			continue
		}
		if !p.HasYears || years > p.Years {
			p.Years = years
			p.HasYears = true
		}
	}

	for _, term := range seniorityVocabulary {
		if containsToken(normalized, term) {
			p.Seniority = append(p.Seniority, term)
		}
	}

	return p
}

// Normalize lowercases the text and collapses all whitespace runs into single
// spaces. Domain punctuation that distinguishes terms ("c++", "c#",
// "node.js") is preserved.
func Normalize(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// containsToken reports whether term occurs in normalized text as a whole
// token. A match is rejected when the adjacent rune on either side is a word
// rune, so "java" does not match inside "javascript" and "c" does not match
// inside "c++".
func containsToken(text, term string) bool {
	if term == "" {
		return false
	}
	for start := 0; ; {
		idx := strings.Index(text[start:], term)
		if idx < 0 {
			return false
		}
		idx += start

		boundedLeft := idx == 0 || !isWordRune(lastRuneBefore(text, idx))
		after := idx + len(term)
		boundedRight := after >= len(text) || !isWordRune(firstRuneAt(text, after))

		if boundedLeft && boundedRight {
			return true
		}
		start = idx + 1
	}
}

// isWordRune defines token boundaries. '+' and '#' count as word runes so
// that "c" does not leak out of "c++" or "c#"; '.' does not, so "java"
// still matches at the end of a sentence.
func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '+' || r == '#'
}

func lastRuneBefore(s string, idx int) rune {
	r, _ := utf8.DecodeLastRuneInString(s[:idx])
	return r
}

func firstRuneAt(s string, idx int) rune {
	r, _ := utf8.DecodeRuneInString(s[idx:])
	return r
}

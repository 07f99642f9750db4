// Package profile turns raw resume/job text into a normalized skill and
// experience profile via lexical matching against the skill catalog.
package profile

import (
	"sort"
)

// Skill is a single matched (term, category) pair. A term listed under two
// catalog categories produces two skills.
type Skill struct {
	Term     string `json:"term"`
	Category string `json:"category"`
}

// Profile is the normalized extraction result for one text. It is derived
// data: immutable once built, safe to share between goroutines.
type Profile struct {
	RawText   string   `json:"raw_text"`
	Skills    []Skill  `json:"skills"`
	Years     float64  `json:"years,omitempty"`
	HasYears  bool     `json:"has_years"`
	Seniority []string `json:"seniority,omitempty"`
}

// SkillSet returns the matched skills as a set.
func (p Profile) SkillSet() map[Skill]struct{} {
	set := make(map[Skill]struct{}, len(p.Skills))
	for _, s := range p.Skills {
		set[s] = struct{}{}
	}
	return set
}

// CategorySet returns the distinct categories present in the profile.
func (p Profile) CategorySet() map[string]struct{} {
	set := make(map[string]struct{})
	for _, s := range p.Skills {
		set[s.Category] = struct{}{}
	}
	return set
}

// SkillTerms returns the distinct matched terms, sorted.
func (p Profile) SkillTerms() []string {
	seen := make(map[string]struct{}, len(p.Skills))
	for _, s := range p.Skills {
		seen[s.Term] = struct{}{}
	}
	terms := make([]string, 0, len(seen))
	for term := range seen {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	return terms
}

// SeniorityOverlaps reports whether both profiles share at least one
// seniority term.
func (p Profile) SeniorityOverlaps(other Profile) bool {
	if len(p.Seniority) == 0 || len(other.Seniority) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(p.Seniority))
	for _, term := range p.Seniority {
		set[term] = struct{}{}
	}
	for _, term := range other.Seniority {
		if _, ok := set[term]; ok {
			return true
		}
	}
	return false
}

// Empty reports whether extraction found no signal at all.
func (p Profile) Empty() bool {
	return len(p.Skills) == 0 && !p.HasYears && len(p.Seniority) == 0
}

// Package scoring computes the deterministic local similarity score and
// combines it with the external judge's verdict into the final match result.
// Everything here is pure arithmetic: no I/O, no shared state, safe for any
// number of concurrent callers.
package scoring

import (
	"github.com/spigell/resume-screener/internal/profile"
)

// Component weights of the local score. Keyword overlap dominates; category
// coverage, experience fit and raw-text similarity refine it.
const (
	keywordWeight        = 0.40
	categoryWeight       = 0.30
	experienceWeight     = 0.15
	textSimilarityWeight = 0.15
)

// Components are the four local similarity signals, each in [0,1].
type Components struct {
	Keyword        float64 `json:"keyword_match"`
	Category       float64 `json:"category_match"`
	Experience     float64 `json:"experience_match"`
	TextSimilarity float64 `json:"text_similarity"`
}

// Local combines the components into the local score on the [0,10] scale.
func (c Components) Local() float64 {
	score := 10 * (c.Keyword*keywordWeight +
		c.Category*categoryWeight +
		c.Experience*experienceWeight +
		c.TextSimilarity*textSimilarityWeight)
	return clamp(score, 0, 10)
}

// LocalScorer computes Components from two profiles. The zero value is ready
// to use.
type LocalScorer struct{}

// Score compares a candidate profile against a requirement profile. Both raw
// texts are taken from the profiles themselves.
func (LocalScorer) Score(candidate, requirement profile.Profile) Components {
	return Components{
		Keyword:        keywordMatch(candidate, requirement),
		Category:       categoryMatch(candidate, requirement),
		Experience:     experienceMatch(candidate, requirement),
		TextSimilarity: textSimilarity(candidate.RawText, requirement.RawText),
	}
}

// keywordMatch is the share of the requirement's (term, category) pairs also
// present in the candidate.
func keywordMatch(candidate, requirement profile.Profile) float64 {
	required := requirement.SkillSet()
	if len(required) == 0 {
		return 0
	}
	have := candidate.SkillSet()
	matched := 0
	for skill := range required {
		if _, ok := have[skill]; ok {
			matched++
		}
	}
	return clamp(float64(matched)/float64(len(required)), 0, 1)
}

// categoryMatch is the share of the requirement's distinct categories that
// the candidate covers at all.
func categoryMatch(candidate, requirement profile.Profile) float64 {
	required := requirement.CategorySet()
	if len(required) == 0 {
		return 0
	}
	have := candidate.CategorySet()
	matched := 0
	for category := range required {
		if _, ok := have[category]; ok {
			matched++
		}
	}
	return clamp(float64(matched)/float64(len(required)), 0, 1)
}

// experienceMatch saturates at 1.0 once the candidate meets the required
// years and decays linearly toward 0 with the shortfall. Missing figures:
// no requirement counts as met; a candidate without a figure scores 1.0 when
// seniority terms overlap and a neutral 0.5 otherwise (missing evidence, not
// evidence of a shortfall).
func experienceMatch(candidate, requirement profile.Profile) float64 {
	if !requirement.HasYears {
		return 1.0
	}
	if !candidate.HasYears {
		if candidate.SeniorityOverlaps(requirement) {
			return 1.0
		}
		return 0.5
	}
	if requirement.Years <= 0 {
		return 1.0
	}
	return clamp(candidate.Years/requirement.Years, 0, 1)
}

// textSimilarity is the Jaccard similarity of the two texts' token sets:
// symmetric, 1.0 for identical texts, 0.0 for disjoint vocabularies.
func textSimilarity(a, b string) float64 {
	tokensA := profile.Tokens(a)
	tokensB := profile.Tokens(b)
	if len(tokensA) == 0 && len(tokensB) == 0 {
		return 0
	}

	inter := 0
	for token := range tokensA {
		if _, ok := tokensB[token]; ok {
			inter++
		}
	}
	union := len(tokensA) + len(tokensB) - inter
	if union == 0 {
		return 0
	}
	return clamp(float64(inter)/float64(union), 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Package ai defines the boundary to the external semantic judge: the
// capability interface, the validated verdict model and the error taxonomy.
// Implementations live in subpackages (e.g. gemini); tests substitute
// deterministic fakes.
package ai

import "context"

// Recommendation is the closed set of hiring recommendations a verdict may
// carry.
type Recommendation string

const (
	StrongRecommend Recommendation = "Strong Recommend"
	Recommend       Recommendation = "Recommend"
	Consider        Recommendation = "Consider"
	NotSuitable     Recommendation = "Not Suitable"
)

// Priority is the closed set of interview priorities.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// Verdict is the validated structured result from the external judge. All
// score fields are clamped to [1,10] during validation; a verdict that
// reaches callers is always well-formed.
type Verdict struct {
	FitScore             int            `json:"fit_score"`
	TechnicalSkillsScore int            `json:"technical_skills_score"`
	ExperienceRelevance  int            `json:"experience_relevance"`
	SeniorityMatch       int            `json:"seniority_match"`
	CulturalFit          int            `json:"cultural_fit"`
	KeyStrengths         []string       `json:"key_strengths"`
	CriticalGaps         []string       `json:"critical_gaps"`
	RiskFactors          []string       `json:"risk_factors"`
	Justification        string         `json:"justification"`
	Recommendation       Recommendation `json:"recommendation"`
	InterviewPriority    Priority       `json:"interview_priority"`
}

// Judge is the capability interface for the external semantic judge. The call
// is network-bound, billed and fallible; callers must be prepared to proceed
// without a verdict.
type Judge interface {
	Judge(ctx context.Context, candidateText, jobText string, skills []string) (*Verdict, error)
}

// ClampScore forces a judge score into the [1,10] band.
func ClampScore(score int) int {
	if score < 1 {
		return 1
	}
	if score > 10 {
		return 10
	}
	return score
}

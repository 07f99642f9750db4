package ai

import (
	"errors"
	"testing"
)

func TestParseVerdictExtractsFromFencedResponse(t *testing.T) {
	raw := "Here is my analysis:\n```json\n{\"fit_score\": 9, \"technical_skills_score\": 8, \"justification\": \"Excellent match.\", \"recommendation\": \"Strong Recommend\", \"interview_priority\": \"High\"}\n```"

	verdict, err := ParseVerdict(raw)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if verdict.FitScore != 9 {
		t.Fatalf("unexpected fit score: %d", verdict.FitScore)
	}
	if verdict.Recommendation != StrongRecommend {
		t.Fatalf("unexpected recommendation: %q", verdict.Recommendation)
	}
}

func TestParseVerdictClampsOutOfRangeScores(t *testing.T) {
	raw := `{"fit_score": 15, "technical_skills_score": -3, "justification": "ok", "recommendation": "Consider"}`

	verdict, err := ParseVerdict(raw)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if verdict.FitScore != 10 {
		t.Fatalf("fit score not clamped: %d", verdict.FitScore)
	}
	if verdict.TechnicalSkillsScore != 1 {
		t.Fatalf("technical score not clamped: %d", verdict.TechnicalSkillsScore)
	}
}

func TestParseVerdictCoercesStringScores(t *testing.T) {
	raw := `{"fit_score": "8.5", "technical_skills_score": 7, "justification": "ok", "recommendation": "recommend"}`

	verdict, err := ParseVerdict(raw)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if verdict.FitScore != 9 {
		t.Fatalf("expected rounded score 9, got %d", verdict.FitScore)
	}
}

func TestParseVerdictSecondaryScoresInheritFit(t *testing.T) {
	raw := `{"fit_score": 6, "technical_skills_score": 7, "justification": "ok", "recommendation": "Consider"}`

	verdict, err := ParseVerdict(raw)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if verdict.ExperienceRelevance != 6 || verdict.SeniorityMatch != 6 || verdict.CulturalFit != 6 {
		t.Fatalf("secondary scores did not inherit fit: %+v", verdict)
	}
	if verdict.InterviewPriority != PriorityMedium {
		t.Fatalf("expected default priority Medium, got %q", verdict.InterviewPriority)
	}
}

func TestParseVerdictFoldsRecommendationSynonyms(t *testing.T) {
	cases := map[string]Recommendation{
		"strong-recommend":   StrongRecommend,
		"Strongly Recommend": StrongRecommend,
		"HIRE":               Recommend,
		"maybe":              Consider,
		"Not Recommended":    NotSuitable,
		"reject":             NotSuitable,
	}

	for input, want := range cases {
		raw := `{"fit_score": 5, "technical_skills_score": 5, "justification": "ok", "recommendation": "` + input + `"}`
		verdict, err := ParseVerdict(raw)
		if err != nil {
			t.Fatalf("%q: expected no error, got %v", input, err)
		}
		if verdict.Recommendation != want {
			t.Fatalf("%q: expected %q, got %q", input, want, verdict.Recommendation)
		}
	}
}

func TestParseVerdictRejectsUnknownRecommendation(t *testing.T) {
	raw := `{"fit_score": 5, "technical_skills_score": 5, "justification": "ok", "recommendation": "lukewarm"}`

	_, err := ParseVerdict(raw)
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if validationErr.Field != "recommendation" {
		t.Fatalf("unexpected field: %q", validationErr.Field)
	}
}

func TestParseVerdictMissingRequiredField(t *testing.T) {
	raw := `{"technical_skills_score": 5, "justification": "ok", "recommendation": "Consider"}`

	_, err := ParseVerdict(raw)
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if validationErr.Field != "fit_score" {
		t.Fatalf("unexpected field: %q", validationErr.Field)
	}
}

func TestParseVerdictNoJSON(t *testing.T) {
	_, err := ParseVerdict("the candidate looks fine to me")
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
}

func TestParseVerdictBalancedBracesInsideStrings(t *testing.T) {
	raw := `prefix {"fit_score": 7, "technical_skills_score": 6, "justification": "uses {braces} and \"quotes\" freely", "recommendation": "Recommend"} suffix`

	verdict, err := ParseVerdict(raw)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if verdict.Justification == "" {
		t.Fatal("justification lost during extraction")
	}
}

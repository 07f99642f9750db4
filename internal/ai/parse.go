package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// maxRawPreview bounds the raw-response excerpt carried inside a ParseError.
const maxRawPreview = 500

// ParseVerdict turns the model's raw textual response into a validated
// Verdict. The response is untrusted: it may be wrapped in markdown fences,
// prefixed with commentary, carry a BOM or mix value types. Extraction and
// coercion are deliberately forgiving; validation of the required fields is
// not.
func ParseVerdict(raw string) (*Verdict, error) {
	payload := extractJSON(raw)
	if payload == "" {
		return nil, &ParseError{
			Err: errors.New("no JSON object found in response"),
			Raw: preview(raw),
		}
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(payload), &data); err != nil {
		return nil, &ParseError{Err: err, Raw: preview(raw)}
	}

	verdict := &Verdict{}

	fit, err := requireScore(data, "fit_score")
	if err != nil {
		return nil, err
	}
	verdict.FitScore = fit

	tech, err := requireScore(data, "technical_skills_score")
	if err != nil {
		return nil, err
	}
	verdict.TechnicalSkillsScore = tech

	// Secondary scores are allowed to be absent; they inherit the overall
	// fit score rather than defaulting to a misleading extreme.
	verdict.ExperienceRelevance = optionalScore(data, "experience_relevance", fit)
	verdict.SeniorityMatch = optionalScore(data, "seniority_match", fit)
	verdict.CulturalFit = optionalScore(data, "cultural_fit", fit)

	verdict.Justification = strings.TrimSpace(coerceString(data["justification"]))
	if verdict.Justification == "" {
		return nil, &ValidationError{Field: "justification", Reason: "missing or empty"}
	}

	recommendation, err := parseRecommendation(coerceString(data["recommendation"]))
	if err != nil {
		return nil, err
	}
	verdict.Recommendation = recommendation

	priority, err := parsePriority(coerceString(data["interview_priority"]))
	if err != nil {
		return nil, err
	}
	verdict.InterviewPriority = priority

	verdict.KeyStrengths = coerceStringSlice(data["key_strengths"])
	verdict.CriticalGaps = coerceStringSlice(data["critical_gaps"])
	verdict.RiskFactors = coerceStringSlice(data["risk_factors"])

	return verdict, nil
}

// extractJSON pulls the first balanced JSON object out of raw text, tolerating
// a BOM, markdown code fences and surrounding commentary.
func extractJSON(raw string) string {
	raw = strings.TrimPrefix(strings.TrimSpace(raw), "\ufeff")

	if fenced := stripFence(raw); fenced != "" {
		raw = fenced
	}
	if !utf8.ValidString(raw) {
		raw = strings.ToValidUTF8(raw, "")
	}

	start := strings.IndexByte(raw, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(raw); i++ {
		c := raw[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return raw[start : i+1]
			}
		}
	}

	return ""
}

// stripFence unwraps a ```json ... ``` block when the whole response is one.
func stripFence(raw string) string {
	if !strings.HasPrefix(raw, "```") {
		return ""
	}
	body := strings.TrimPrefix(raw, "```")
	if newline := strings.IndexByte(body, '\n'); newline >= 0 {
		// Drop the language tag on the opening fence line.
		body = body[newline+1:]
	}
	if end := strings.LastIndex(body, "```"); end >= 0 {
		body = body[:end]
	}
	return strings.TrimSpace(body)
}

func requireScore(data map[string]any, field string) (int, error) {
	value, ok := data[field]
	if !ok || value == nil {
		return 0, &ValidationError{Field: field, Reason: "missing"}
	}
	score, ok := coerceScore(value)
	if !ok {
		return 0, &ValidationError{Field: field, Reason: fmt.Sprintf("not a number: %v", value)}
	}
	return ClampScore(score), nil
}

func optionalScore(data map[string]any, field string, fallback int) int {
	value, ok := data[field]
	if !ok || value == nil {
		return ClampScore(fallback)
	}
	score, ok := coerceScore(value)
	if !ok {
		return ClampScore(fallback)
	}
	return ClampScore(score)
}

// coerceScore accepts numbers and numeric strings; "8.5" rounds to 9.
func coerceScore(value any) (int, bool) {
	switch v := value.(type) {
	case float64:
		return int(math.Round(v)), true
	case int:
		return v, true
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return int(math.Round(f)), true
		}
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return int(math.Round(f)), true
		}
	}
	return 0, false
}

func coerceString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

func coerceStringSlice(value any) []string {
	items, ok := value.([]any)
	if !ok {
		if s := strings.TrimSpace(coerceString(value)); s != "" {
			return []string{s}
		}
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := strings.TrimSpace(coerceString(item)); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// parseRecommendation folds the model's phrasing onto the closed enum.
// Letter-only comparison absorbs case, hyphens and stray punctuation.
func parseRecommendation(value string) (Recommendation, error) {
	switch foldEnum(value) {
	case "strongrecommend", "stronglyrecommend", "stronghire", "strongyes":
		return StrongRecommend, nil
	case "recommend", "recommended", "hire", "yes":
		return Recommend, nil
	case "consider", "maybe", "borderline", "review":
		return Consider, nil
	case "notsuitable", "notrecommended", "nohire", "reject", "rejected", "unsuitable", "no":
		return NotSuitable, nil
	case "":
		return "", &ValidationError{Field: "recommendation", Reason: "missing"}
	default:
		return "", &ValidationError{Field: "recommendation", Reason: fmt.Sprintf("unrecognized value %q", value)}
	}
}

// parsePriority folds the model's phrasing onto the closed enum. A missing
// priority defaults to Medium; an unrecognized one is a validation failure.
func parsePriority(value string) (Priority, error) {
	switch foldEnum(value) {
	case "high", "urgent", "top":
		return PriorityHigh, nil
	case "medium", "normal", "moderate", "":
		return PriorityMedium, nil
	case "low":
		return PriorityLow, nil
	default:
		return "", &ValidationError{Field: "interview_priority", Reason: fmt.Sprintf("unrecognized value %q", value)}
	}
}

// foldEnum lowercases and keeps letters only, so "Strong-Recommend!" and
// "strong recommend" compare equal.
func foldEnum(value string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(value) {
		if unicode.IsLetter(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func preview(raw string) string {
	raw = strings.TrimSpace(raw)
	runes := []rune(raw)
	if len(runes) <= maxRawPreview {
		return raw
	}
	return string(runes[:maxRawPreview]) + "..."
}

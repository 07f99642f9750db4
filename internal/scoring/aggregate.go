package scoring

import (
	"fmt"
	"math"
	"time"

	"github.com/spigell/resume-screener/internal/ai"
)

// Bucket is the categorical recommendation derived from the final score.
type Bucket string

const (
	BucketExceptional Bucket = "Exceptional / Strong Recommend"
	BucketStrong      Bucket = "Strong / Recommend"
	BucketGood        Bucket = "Good / Consider"
	BucketModerate    Bucket = "Moderate / Review Needed"
	BucketWeak        Bucket = "Weak / Not Suitable"
)

// Weights is the local/AI blending policy. Both values must be non-negative
// and sum to 1.
type Weights struct {
	Local float64 `json:"local"`
	AI    float64 `json:"ai"`
}

// DefaultWeights is the default blending policy: the judge's semantic opinion
// dominates, the deterministic local score anchors it.
var DefaultWeights = Weights{Local: 0.35, AI: 0.65}

// Validate rejects weight pairs that would distort the [0,10] output range.
func (w Weights) Validate() error {
	if w.Local < 0 || w.AI < 0 {
		return fmt.Errorf("weights must be non-negative, got local=%.2f ai=%.2f", w.Local, w.AI)
	}
	if math.Abs(w.Local+w.AI-1) > 1e-9 {
		return fmt.Errorf("weights must sum to 1, got %.4f", w.Local+w.AI)
	}
	return nil
}

// Result is the final outcome of one (candidate, job) pairing. Immutable once
// created; persistence and display are the caller's concern.
type Result struct {
	Components     Components  `json:"local"`
	Verdict        *ai.Verdict `json:"judge,omitempty"`
	Skills         []string    `json:"skills_extracted,omitempty"`
	LocalScore     float64     `json:"local_score"`
	AIScore        float64     `json:"ai_score,omitempty"`
	FinalScore     float64     `json:"final_score"`
	Bucket         Bucket      `json:"recommendation_bucket"`
	Degraded       bool        `json:"degraded"`
	DegradedReason string      `json:"degraded_reason,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
}

// Aggregator owns the weighting policy and all numeric clamping. Multiple
// aggregators with different weights can run side by side.
type Aggregator struct {
	weights Weights
	now     func() time.Time
}

// NewAggregator builds an aggregator with validated weights.
func NewAggregator(w Weights) (*Aggregator, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return &Aggregator{weights: w, now: time.Now}, nil
}

// Aggregate combines the local components with an optional judge verdict. A
// nil verdict produces a degraded result whose final score equals the local
// score exactly; reason explains why the verdict is missing.
func (a *Aggregator) Aggregate(components Components, verdict *ai.Verdict, degradedReason string) Result {
	local := components.Local()

	result := Result{
		Components: components,
		Verdict:    verdict,
		LocalScore: local,
		CreatedAt:  a.now(),
	}

	if verdict == nil {
		result.Degraded = true
		result.DegradedReason = degradedReason
		if result.DegradedReason == "" {
			result.DegradedReason = "judge verdict unavailable"
		}
		result.FinalScore = clamp(local, 0, 10)
	} else {
		aiScore := float64(verdict.FitScore)*0.6 + float64(verdict.TechnicalSkillsScore)*0.4
		result.AIScore = clamp(aiScore, 1, 10)
		result.FinalScore = clamp(local*a.weights.Local+result.AIScore*a.weights.AI, 0, 10)
	}

	result.Bucket = bucketFor(result.FinalScore)
	return result
}

// bucketFor maps a final score to its recommendation bucket. Boundaries are
// inclusive on the lower end, exclusive on the upper end except the top
// bucket.
func bucketFor(score float64) Bucket {
	switch {
	case score >= 9.0:
		return BucketExceptional
	case score >= 7.5:
		return BucketStrong
	case score >= 6.0:
		return BucketGood
	case score >= 4.0:
		return BucketModerate
	default:
		return BucketWeak
	}
}

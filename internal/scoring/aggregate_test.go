package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/resume-screener/internal/ai"
)

func testAggregator(t *testing.T) *Aggregator {
	t.Helper()
	aggregator, err := NewAggregator(DefaultWeights)
	require.NoError(t, err)
	aggregator.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return aggregator
}

func TestAggregateBlendsScores(t *testing.T) {
	aggregator := testAggregator(t)

	components := Components{Keyword: 0.5, Category: 0.5, Experience: 1, TextSimilarity: 0.2}
	verdict := &ai.Verdict{
		FitScore:             8,
		TechnicalSkillsScore: 7,
		Justification:        "ok",
		Recommendation:       ai.Recommend,
	}

	result := aggregator.Aggregate(components, verdict, "")

	require.False(t, result.Degraded)
	assert.Equal(t, verdict, result.Verdict)
	// 8*0.6 + 7*0.4
	assert.InDelta(t, 7.6, result.AIScore, 1e-9)
	assert.InDelta(t, result.LocalScore*0.35+7.6*0.65, result.FinalScore, 1e-9)
	assert.False(t, result.CreatedAt.IsZero())
}

func TestAggregateDegradedEqualsLocal(t *testing.T) {
	aggregator := testAggregator(t)

	components := Components{Keyword: 0.4, Category: 0.6, Experience: 0.5, TextSimilarity: 0.3}
	result := aggregator.Aggregate(components, nil, "judge transport failure")

	require.True(t, result.Degraded)
	assert.Equal(t, "judge transport failure", result.DegradedReason)
	assert.Nil(t, result.Verdict)
	assert.Equal(t, result.LocalScore, result.FinalScore)
	assert.Zero(t, result.AIScore)
}

func TestAggregateDegradedDefaultReason(t *testing.T) {
	aggregator := testAggregator(t)

	result := aggregator.Aggregate(Components{}, nil, "")
	assert.Equal(t, "judge verdict unavailable", result.DegradedReason)
}

func TestAggregatePerfectScores(t *testing.T) {
	aggregator := testAggregator(t)

	components := Components{Keyword: 1, Category: 1, Experience: 1, TextSimilarity: 1}
	verdict := &ai.Verdict{FitScore: 10, TechnicalSkillsScore: 10}

	result := aggregator.Aggregate(components, verdict, "")
	assert.InDelta(t, 10.0, result.FinalScore, 1e-9)
	assert.Equal(t, BucketExceptional, result.Bucket)
}

func TestBucketBoundaries(t *testing.T) {
	cases := []struct {
		score float64
		want  Bucket
	}{
		{10, BucketExceptional},
		{9.0, BucketExceptional},
		{8.99, BucketStrong},
		{7.5, BucketStrong},
		{7.49, BucketGood},
		{6.0, BucketGood},
		{5.99, BucketModerate},
		{4.0, BucketModerate},
		{3.99, BucketWeak},
		{0, BucketWeak},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, bucketFor(tc.score), "score %v", tc.score)
	}
}

func TestWeightsValidate(t *testing.T) {
	assert.NoError(t, Weights{Local: 0.35, AI: 0.65}.Validate())
	assert.NoError(t, Weights{Local: 1, AI: 0}.Validate())

	assert.Error(t, Weights{Local: -0.1, AI: 1.1}.Validate())
	assert.Error(t, Weights{Local: 0.5, AI: 0.6}.Validate())

	_, err := NewAggregator(Weights{Local: 0.9, AI: 0.2})
	assert.Error(t, err)
}

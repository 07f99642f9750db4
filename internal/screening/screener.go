// Package screening orchestrates the full pipeline for one or many
// candidates: profile extraction, local scoring, the external judge call and
// final aggregation. Judge failures never fail a screening; they degrade it
// to a local-only result with an explanatory reason.
package screening

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/spigell/resume-screener/internal/ai"
	"github.com/spigell/resume-screener/internal/logger"
	"github.com/spigell/resume-screener/internal/profile"
	"github.com/spigell/resume-screener/internal/scoring"
)

const (
	defaultConcurrency     = 4
	defaultJudgeTimeout    = 45 * time.Second
	defaultCacheTTL        = 15 * time.Minute
	defaultCacheMaxEntries = 256
)

// Input is one document entering the pipeline, typically a resume or a job
// description read from a file.
type Input struct {
	Name string
	Text string
}

// Item pairs a candidate with its screening result inside a batch.
type Item struct {
	Candidate string          `json:"candidate"`
	Result    *scoring.Result `json:"result"`
}

// Config tunes the pipeline. Zero values fall back to defaults.
type Config struct {
	// Concurrency bounds how many candidates are screened at once.
	Concurrency int
	// JudgeTimeout caps a single judge call, not the whole batch.
	JudgeTimeout time.Duration
	// RatePerMinute throttles judge calls; zero or negative disables
	// throttling.
	RatePerMinute int
	// CacheTTL and CacheMaxEntries bound the verdict cache.
	CacheTTL        time.Duration
	CacheMaxEntries int
}

func (c Config) withDefaults() Config {
	if c.Concurrency <= 0 {
		c.Concurrency = defaultConcurrency
	}
	if c.JudgeTimeout <= 0 {
		c.JudgeTimeout = defaultJudgeTimeout
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = defaultCacheTTL
	}
	if c.CacheMaxEntries <= 0 {
		c.CacheMaxEntries = defaultCacheMaxEntries
	}
	return c
}

// Screener runs the pipeline. A nil judge means local-only operation: every
// result is degraded but still produced.
type Screener struct {
	extractor  *profile.Extractor
	scorer     scoring.LocalScorer
	aggregator *scoring.Aggregator
	judge      ai.Judge
	cache      *verdictCache
	limiter    *rate.Limiter
	group      singleflight.Group
	logger     *zap.Logger
	cfg        Config
}

// New assembles a screener. The extractor and aggregator are required; judge
// may be nil for local-only mode.
func New(extractor *profile.Extractor, aggregator *scoring.Aggregator, judge ai.Judge, log *zap.Logger, cfg Config) *Screener {
	if log == nil {
		log = zap.NewNop()
	}
	cfg = cfg.withDefaults()

	limit := rate.Inf
	if cfg.RatePerMinute > 0 {
		limit = rate.Limit(float64(cfg.RatePerMinute) / 60.0)
	}

	return &Screener{
		extractor:  extractor,
		aggregator: aggregator,
		judge:      judge,
		cache:      newVerdictCache(cfg.CacheTTL, cfg.CacheMaxEntries),
		limiter:    rate.NewLimiter(limit, 1),
		logger:     log,
		cfg:        cfg,
	}
}

// Screen evaluates one candidate against one job. It always returns a
// result: judge failures and cancellations degrade it to the local score.
func (s *Screener) Screen(ctx context.Context, candidate, job Input) *scoring.Result {
	candidateProfile := s.extractor.Extract(candidate.Text)
	jobProfile := s.extractor.Extract(job.Text)
	components := s.scorer.Score(candidateProfile, jobProfile)
	skills := candidateProfile.SkillTerms()

	log := logger.WithFields(s.logger, logger.StringFields(
		logger.StringField{Key: logger.FieldCandidate, Value: candidate.Name},
	)...)

	if s.judge == nil {
		result := s.aggregator.Aggregate(components, nil, "judge not configured")
		result.Skills = skills
		return &result
	}

	verdict, err := s.verdictFor(ctx, candidate.Text, job.Text, skills)
	if err != nil {
		log.Warn("judge unavailable, falling back to local score", zap.Error(err))
		result := s.aggregator.Aggregate(components, nil, degradeReason(err))
		result.Skills = skills
		return &result
	}

	result := s.aggregator.Aggregate(components, verdict, "")
	result.Skills = skills
	log.Debug("screening complete",
		zap.Float64("local_score", result.LocalScore),
		zap.Float64("final_score", result.FinalScore),
		zap.String("bucket", string(result.Bucket)),
	)
	return &result
}

// ScreenBatch evaluates every candidate against the job with bounded
// concurrency. The returned slice matches the input order and always has one
// item per candidate; cancellation degrades the unfinished ones instead of
// dropping them.
func (s *Screener) ScreenBatch(ctx context.Context, job Input, candidates []Input) []Item {
	items := make([]Item, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)

	for i, candidate := range candidates {
		g.Go(func() error {
			items[i] = Item{
				Candidate: candidate.Name,
				Result:    s.Screen(gctx, candidate, job),
			}
			return nil
		})
	}

	// Workers never return errors; Wait only synchronizes.
	_ = g.Wait()

	return items
}

// verdictFor returns a judge verdict for the pairing, consulting the cache
// and collapsing concurrent identical requests into a single billed call.
func (s *Screener) verdictFor(ctx context.Context, candidateText, jobText string, skills []string) (*ai.Verdict, error) {
	key := Fingerprint(candidateText, jobText, skills)

	if verdict, ok := s.cache.Get(key); ok {
		return verdict, nil
	}

	value, err, _ := s.group.Do(key, func() (any, error) {
		if verdict, ok := s.cache.Get(key); ok {
			return verdict, nil
		}

		if err := s.limiter.Wait(ctx); err != nil {
			return nil, &ai.TransportError{Err: err}
		}

		callCtx, cancel := context.WithTimeout(ctx, s.cfg.JudgeTimeout)
		defer cancel()

		verdict, err := s.judge.Judge(callCtx, candidateText, jobText, skills)
		if err != nil {
			return nil, err
		}

		s.cache.Set(key, verdict)
		return verdict, nil
	})
	if err != nil {
		return nil, err
	}

	return value.(*ai.Verdict), nil
}

// degradeReason labels the failure kind so the stored result explains itself.
func degradeReason(err error) string {
	var (
		transportErr     *ai.TransportError
		parseErr         *ai.ParseError
		validationErr    *ai.ValidationError
		configurationErr *ai.ConfigurationError
	)
	switch {
	case errors.As(err, &transportErr):
		return "judge transport failure: " + logger.TruncateForLog(err.Error(), 200)
	case errors.As(err, &parseErr):
		return "judge response unparsable"
	case errors.As(err, &validationErr):
		return "judge verdict invalid: " + validationErr.Field
	case errors.As(err, &configurationErr):
		return "judge not configured: " + configurationErr.Reason
	default:
		return "judge failure: " + logger.TruncateForLog(err.Error(), 200)
	}
}

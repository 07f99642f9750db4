package gemini

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/spigell/resume-screener/internal/ai"
	"github.com/spigell/resume-screener/internal/logger"
)

//go:embed prompt.md
var promptText string

//go:embed prompt_retry.md
var retryPromptText string

var (
	promptTemplate      = template.Must(template.New("judge").Parse(promptText))
	retryPromptTemplate = template.Must(template.New("judge-retry").Parse(retryPromptText))
)

const (
	// defaultMaxTextChars caps how much of each document is sent to the
	// model. Long resumes front-load the relevant content anyway and the
	// call is billed per token.
	defaultMaxTextChars = 2500
	defaultMaxLogLength = 300
)

// contentGenerator abstracts the transport so tests can substitute a stub.
type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// JudgeConfig tunes the judge. Zero values fall back to defaults.
type JudgeConfig struct {
	// MaxTextChars truncates candidate and job texts before prompting.
	MaxTextChars int
	// MaxLogLength bounds raw-response previews in logs.
	MaxLogLength int
}

// Judge evaluates a candidate against a job description through a generative
// model and returns a validated verdict. A circuit breaker guards the
// provider: after repeated transport failures further calls fail fast
// instead of burning quota.
type Judge struct {
	generator    contentGenerator
	breaker      *gobreaker.CircuitBreaker[string]
	logger       *zap.Logger
	maxTextChars int
	maxLogLen    int
}

// NewJudge wraps a content generator into an ai.Judge implementation.
func NewJudge(generator contentGenerator, log *zap.Logger, cfg JudgeConfig) *Judge {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.MaxTextChars <= 0 {
		cfg.MaxTextChars = defaultMaxTextChars
	}
	if cfg.MaxLogLength <= 0 {
		cfg.MaxLogLength = defaultMaxLogLength
	}

	breaker := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        "gemini-judge",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.6
		},
	})

	return &Judge{
		generator:    generator,
		breaker:      breaker,
		logger:       log,
		maxTextChars: cfg.MaxTextChars,
		maxLogLen:    cfg.MaxLogLength,
	}
}

type promptData struct {
	CandidateText string
	JobText       string
	Skills        string
}

// Judge implements ai.Judge. A response that fails to parse gets exactly one
// more chance with a stricter, simplified prompt before the error is
// surfaced to the caller.
func (j *Judge) Judge(ctx context.Context, candidateText, jobText string, skills []string) (*ai.Verdict, error) {
	if j == nil || j.generator == nil {
		return nil, &ai.ConfigurationError{Reason: "judge generator is not configured"}
	}

	data := promptData{
		CandidateText: truncateRunes(candidateText, j.maxTextChars),
		JobText:       truncateRunes(jobText, j.maxTextChars),
		Skills:        formatSkills(skills),
	}

	prompt, err := renderPrompt(promptTemplate, data)
	if err != nil {
		return nil, &ai.ConfigurationError{Reason: "render judge prompt: " + err.Error()}
	}

	raw, err := j.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	verdict, err := ai.ParseVerdict(raw)
	if err == nil {
		return verdict, nil
	}

	var parseErr *ai.ParseError
	if !errors.As(err, &parseErr) {
		return nil, err
	}

	j.logger.Warn("judge response unparsable, retrying with simplified prompt",
		zap.String("response", logger.TruncateForLog(raw, j.maxLogLen)),
		zap.Error(err),
	)

	retryPrompt, err := renderPrompt(retryPromptTemplate, data)
	if err != nil {
		return nil, &ai.ConfigurationError{Reason: "render retry prompt: " + err.Error()}
	}

	raw, err = j.generate(ctx, retryPrompt)
	if err != nil {
		return nil, err
	}

	return ai.ParseVerdict(raw)
}

func (j *Judge) generate(ctx context.Context, prompt string) (string, error) {
	raw, err := j.breaker.Execute(func() (string, error) {
		return j.generator.GenerateContent(ctx, prompt)
	})
	if err != nil {
		return "", &ai.TransportError{Err: err}
	}
	return raw, nil
}

func renderPrompt(tmpl *template.Template, data promptData) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func formatSkills(skills []string) string {
	if len(skills) == 0 {
		return "none extracted"
	}
	return fmt.Sprintf("%d found: %s", len(skills), strings.Join(skills, ", "))
}

// truncateRunes cuts s to at most max runes without splitting a multi-byte
// character.
func truncateRunes(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

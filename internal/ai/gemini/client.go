// Package gemini implements the external judge on top of the Google GenAI
// API: prompt construction, transient-error retry, circuit breaking and
// defensive parsing of the model's untrusted output.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spigell/resume-screener/internal/ai"
	"github.com/spigell/resume-screener/internal/logger"
)

const (
	defaultModel      = "gemini-2.0-flash"
	defaultMaxRetries = 2

	// maxQuotaDelay bounds how long a quota-suggested retry delay may be
	// before the call fails instead of retrying.
	maxQuotaDelay = 30 * time.Second
)

// sleep is swapped out in tests.
var sleep = time.Sleep

// modelCaller is the slice of the genai client the generator needs.
type modelCaller interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Generator wraps the Google GenAI client to provide simple prompt-based
// interactions with bounded retry on transient provider errors.
type Generator struct {
	models     modelCaller
	modelName  string
	maxRetries int
	logger     *zap.Logger
}

// NewGenerator creates a Generator configured for the Gemini API backend. A
// missing API key is a configuration error: the judge is unusable but
// local-only scoring remains available to the caller.
func NewGenerator(ctx context.Context, apiKey, model string, maxRetries int, log *zap.Logger) (*Generator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, &ai.ConfigurationError{Reason: "gemini api key is required"}
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Generator{
		models:     client.Models,
		modelName:  model,
		maxRetries: maxRetries,
		logger:     logger.WithJudgeFields(log, "gemini", model),
	}, nil
}

// Model returns the configured model name.
func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.modelName
}

// GenerateContent sends the prompt to Gemini and returns the flattened
// textual response. Transient provider errors (5xx, short-delay 429) are
// retried up to maxRetries attempts with linear backoff.
func (g *Generator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	if g == nil || g.models == nil {
		return "", errors.New("gemini generator is not initialized")
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	var lastErr error
	for attempt := 1; attempt <= g.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		resp, err := g.models.GenerateContent(ctx, g.modelName, genai.Text(prompt), nil)
		if err == nil {
			return flattenResponse(resp)
		}
		lastErr = err

		if !isTemporary(err) || attempt == g.maxRetries {
			return "", fmt.Errorf("generate content: %w", err)
		}

		wait := time.Duration(attempt) * time.Second
		g.logger.Warn("gemini call failed, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
		sleep(wait)
	}

	return "", fmt.Errorf("generate content: %w", lastErr)
}

// flattenResponse joins all textual parts of all candidates.
func flattenResponse(resp *genai.GenerateContentResponse) (string, error) {
	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		return "", errors.New("gemini api returned empty response")
	}

	return output, nil
}

var retryDelayPattern = regexp.MustCompile(`retry after (\d+)`)

// isTemporary reports whether the error is worth retrying. Server-side
// failures are; quota errors only when the suggested delay is short enough
// to wait out in process.
func isTemporary(err error) bool {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return false
	}

	switch apiErr.Code {
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
		return true
	case http.StatusTooManyRequests:
		if match := retryDelayPattern.FindStringSubmatch(strings.ToLower(apiErr.Message)); match != nil {
			if seconds, convErr := strconv.Atoi(match[1]); convErr == nil {
				return time.Duration(seconds)*time.Second <= maxQuotaDelay
			}
		}
		return true
	default:
		return false
	}
}

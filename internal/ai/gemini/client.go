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

	"github.com/spigell/job-qualifier/internal/ai"
	"github.com/spigell/job-qualifier/internal/utils"
)

const (
	providerName = "gemini"

	defaultMaxRetries = 3
	baseBackoff       = 2 * time.Second
	maxQuotaDelay     = 30 * time.Second
)

var (
	wait = utils.WaitFor

	retryAfterPattern = regexp.MustCompile(`(?i)retry (?:after|in) ([0-9]+(?:\.[0-9]+)?)\s*s`)
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Transport sends requests to the Gemini API, translating tool schemas into
// function declarations.
type Transport struct {
	models     contentGenerator
	maxRetries int
	logger     *zap.Logger
}

// NewTransport creates a Transport configured for the Gemini API backend.
func NewTransport(ctx context.Context, apiKey string, maxRetries int, logger *zap.Logger) (*Transport, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return newTransport(client.Models, maxRetries, logger), nil
}

func newTransport(models contentGenerator, maxRetries int, logger *zap.Logger) *Transport {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Transport{models: models, maxRetries: maxRetries, logger: logger}
}

func (t *Transport) Provider() string { return providerName }

func (t *Transport) Send(ctx context.Context, req ai.Request) (*ai.Response, error) {
	if t == nil || t.models == nil {
		return nil, errors.New("gemini transport is not initialized")
	}

	cfg := buildConfig(req)

	var lastErr error
	for attempt := 1; attempt <= t.maxRetries; attempt++ {
		resp, err := t.models.GenerateContent(ctx, req.Model, genai.Text(req.Query), cfg)
		if err == nil {
			return toResponse(resp)
		}
		lastErr = err

		delay, retryable := retryDelay(err, attempt)
		if !retryable || attempt == t.maxRetries {
			break
		}

		t.logger.Warn("gemini request failed, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)

		if err := wait(ctx, delay); err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("generate content: %w", lastErr)
}

func buildConfig(req ai.Request) *genai.GenerateContentConfig {
	temperature := float32(ai.Temperature)
	cfg := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: int32(req.MaxTokens),
	}

	if req.Tool == nil {
		return cfg
	}

	cfg.Tools = []*genai.Tool{{
		FunctionDeclarations: []*genai.FunctionDeclaration{{
			Name:                 req.Tool.Name,
			Description:          req.Tool.Description,
			ParametersJsonSchema: req.Tool.InputSchema,
		}},
	}}
	cfg.ToolConfig = &genai.ToolConfig{
		FunctionCallingConfig: &genai.FunctionCallingConfig{
			Mode:                 genai.FunctionCallingConfigModeAny,
			AllowedFunctionNames: []string{req.Tool.Name},
		},
	}

	return cfg
}

func toResponse(resp *genai.GenerateContentResponse) (*ai.Response, error) {
	if resp == nil {
		return nil, errors.New("gemini api returned empty response")
	}

	out := &ai.Response{}
	for _, candidate := range resp.Candidates {
		if candidate == nil {
			continue
		}
		if out.StopReason == "" {
			out.StopReason = string(candidate.FinishReason)
		}
		if candidate.FinishReason == genai.FinishReasonMaxTokens {
			out.Truncated = true
		}
		if candidate.Content == nil {
			continue
		}

		for _, part := range candidate.Content.Parts {
			if part == nil || part.Thought {
				continue
			}
			switch {
			case part.FunctionCall != nil:
				out.Items = append(out.Items, ai.ContentItem{
					Kind:     ai.KindToolUse,
					ToolName: part.FunctionCall.Name,
					Input:    part.FunctionCall.Args,
				})
			case strings.TrimSpace(part.Text) != "":
				out.Items = append(out.Items, ai.ContentItem{Kind: ai.KindText, Text: strings.TrimSpace(part.Text)})
			}
		}
	}

	return out, nil
}

// retryDelay decides whether err is worth another attempt. Server errors back
// off linearly; quota errors honour the advertised delay unless it is too long.
func retryDelay(err error, attempt int) (time.Duration, bool) {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return 0, false
	}

	switch {
	case apiErr.Code == http.StatusTooManyRequests:
		delay := time.Duration(attempt) * baseBackoff
		if match := retryAfterPattern.FindStringSubmatch(apiErr.Message); match != nil {
			if seconds, perr := strconv.ParseFloat(match[1], 64); perr == nil {
				delay = time.Duration(seconds * float64(time.Second))
			}
		}
		if delay > maxQuotaDelay {
			return 0, false
		}
		return delay, true
	case apiErr.Code >= http.StatusInternalServerError:
		return time.Duration(attempt) * baseBackoff, true
	default:
		return 0, false
	}
}

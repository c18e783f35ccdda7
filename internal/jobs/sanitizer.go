package jobs

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/job-qualifier/internal/ai"
	"github.com/spigell/job-qualifier/internal/logger"
)

var errEmptySanitised = errors.New("model returned empty text")

type textGenerator interface {
	Generate(ctx context.Context, query, model string, maxTokens int) (string, error)
}

// SanitizerError is returned by Sanitizer.Sanitise for every failure.
type SanitizerError struct {
	Err error
}

func (e *SanitizerError) Error() string {
	return "sanitise job description: " + e.Err.Error()
}

func (e *SanitizerError) Unwrap() error { return e.Err }

// Sanitizer rewrites job descriptions so they carry no company names, salaries,
// recruiter voice, contacts, addresses or URLs.
type Sanitizer struct {
	generator textGenerator
	model     string
	logger    *zap.Logger
}

func NewSanitizer(generator textGenerator, models ai.Models, log *zap.Logger) *Sanitizer {
	model := models.Get(ai.TierReasoning)
	return &Sanitizer{
		generator: generator,
		model:     model,
		logger:    logger.WithFields(log, logger.RequestFields(model, "")...),
	}
}

func (s *Sanitizer) Sanitise(ctx context.Context, description string) (string, error) {
	text, err := s.generator.Generate(ctx, buildSanitisePrompt(description), s.model, sanitiseMaxTokens)
	if err == nil && strings.TrimSpace(text) == "" {
		err = errEmptySanitised
	}
	if err != nil {
		s.logger.Error("error sanitising job description", zap.Error(err))
		return "", &SanitizerError{Err: err}
	}

	return strings.TrimSpace(text), nil
}

package cmd

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/job-qualifier/internal/ai"
	"github.com/spigell/job-qualifier/internal/ai/anthropic"
	"github.com/spigell/job-qualifier/internal/ai/gemini"
	"github.com/spigell/job-qualifier/internal/secrets"
)

// newTransport builds the transport of the configured provider.
func newTransport(ctx context.Context, config *Config, logger *zap.Logger) (ai.Transport, error) {
	pc := config.providerConfig()
	if pc == nil {
		pc = &ProviderConfig{}
	}

	switch config.Provider {
	case providerAnthropic:
		apiKey, err := secrets.Load(secrets.Source{
			Name:  "anthropic api key",
			File:  pc.APIKeyFile,
			Value: pc.APIKey,
			Env:   []string{"ANTHROPIC_API_KEY"},
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set anthropic.api-key-file or ANTHROPIC_API_KEY_FILE)", err)
		}
		transport, err := anthropic.NewTransport(apiKey, pc.MaxRetries)
		if err != nil {
			return nil, err
		}
		return transport, nil
	case providerGemini:
		apiKey, err := secrets.Load(secrets.Source{
			Name:  "gemini api key",
			File:  pc.APIKeyFile,
			Value: pc.APIKey,
			Env:   []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"},
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
		}

		genLogger := logger.With(
			zap.String("ai_provider", providerGemini),
			zap.Int("ai_retry_attempts", pc.MaxRetries),
		)
		transport, err := gemini.NewTransport(ctx, apiKey, pc.MaxRetries, genLogger)
		if err != nil {
			return nil, err
		}
		return transport, nil
	default:
		return nil, fmt.Errorf("unsupported ai provider: %s", config.Provider)
	}
}

// newAIClient builds the tool invocation client for the configured provider.
func newAIClient(ctx context.Context, config *Config, logger *zap.Logger) (*ai.Client, ai.Models, error) {
	transport, err := newTransport(ctx, config, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("building %s transport: %w", config.Provider, err)
	}

	return ai.NewClient(transport, logger, config.MaxLogLength), config.models(), nil
}

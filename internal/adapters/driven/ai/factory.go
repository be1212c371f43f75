// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/aisle/internal/adapters/driven/llm/anthropic"
	"github.com/custodia-labs/aisle/internal/adapters/driven/llm/gemini"
	"github.com/custodia-labs/aisle/internal/adapters/driven/llm/guard"
	"github.com/custodia-labs/aisle/internal/adapters/driven/llm/ollama"
	"github.com/custodia-labs/aisle/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/aisle/internal/adapters/driven/transcription/whisper"
	"github.com/custodia-labs/aisle/internal/core/domain"
	"github.com/custodia-labs/aisle/internal/core/ports/driven"
	"github.com/custodia-labs/aisle/internal/logger"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// probeTimeout bounds the completion check run by ProbeLLMCompletion.
const probeTimeout = 20 * time.Second

const probePrompt = "Reply with the single word: ready"

// InitResult contains the result of AI service initialisation.
type InitResult struct {
	LLMService  driven.LLMService
	Transcriber driven.Transcriber
	Warnings    []string // Non-fatal issues that caused fallback.
	FellBack    bool     // True if a configured service was unusable.
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.LLMService != nil {
		r.LLMService.Close()
	}
	if r.Transcriber != nil {
		r.Transcriber.Close()
	}
}

// Init creates and validates the configured AI services. A service that
// fails validation is left nil and reported in Warnings, so the
// assistant runs on rules alone.
func Init(ctx context.Context, llm *domain.LLMSettings, tr *domain.TranscriptionSettings) *InitResult {
	result := &InitResult{}

	svc, err := CreateAndValidateLLMService(ctx, llm)
	if err != nil {
		logger.Warn("LLM disabled: %v", err)
		result.Warnings = append(result.Warnings, err.Error())
		result.FellBack = true
	}
	result.LLMService = svc

	transcriber, err := CreateAndValidateTranscriber(ctx, tr)
	if err != nil {
		logger.Warn("transcription disabled: %v", err)
		result.Warnings = append(result.Warnings, err.Error())
		result.FellBack = true
	}
	result.Transcriber = transcriber

	return result
}

// CreateAndValidateLLMService creates an LLM service, validates connectivity
// and wraps it in a circuit breaker and rate limiter.
// Returns nil without error when no provider is configured.
func CreateAndValidateLLMService(ctx context.Context, settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	svc, err := CreateLLMService(ctx, settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Check the [llm] section of aisle.toml",
			domain.ErrLLMUnavailable, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := svc.Ping(pingCtx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Check the [llm] section of aisle.toml",
			domain.ErrLLMUnavailable, err)
	}
	logger.Debug("LLM ready: %s (%s)", settings.Provider, svc.ModelName())

	return guard.New(svc, guard.Config{
		Failures:      settings.BreakerFailures,
		Cooldown:      settings.BreakerCooldown,
		RatePerSecond: settings.RatePerSecond,
		Burst:         settings.Burst,
	}), nil
}

// CreateAndValidateTranscriber creates a transcriber and validates connectivity.
// Returns nil without error when no provider is configured.
func CreateAndValidateTranscriber(ctx context.Context, settings *domain.TranscriptionSettings) (driven.Transcriber, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	svc, err := CreateTranscriber(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrTranscriptionFailed, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := svc.Ping(pingCtx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Check the [transcription] section of aisle.toml",
			domain.ErrUpstreamUnavailable, err)
	}
	return svc, nil
}

// ValidateLLMConfig validates an LLM configuration by creating a service and pinging it.
func ValidateLLMConfig(ctx context.Context, settings *domain.LLMSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}

	svc, err := CreateLLMService(ctx, settings)
	if err != nil {
		return err
	}
	defer svc.Close()

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return svc.Ping(pingCtx)
}

// ProbeLLMCompletion creates a service and runs a short completion
// through it. An unconfigured provider returns an empty reply.
func ProbeLLMCompletion(ctx context.Context, settings *domain.LLMSettings) (string, error) {
	if settings == nil || !settings.IsConfigured() {
		return "", nil
	}

	svc, err := CreateLLMService(ctx, settings)
	if err != nil {
		return "", err
	}
	defer svc.Close()

	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	reply, err := svc.Generate(probeCtx, probePrompt, driven.GenerateOptions{MaxTokens: 8})
	if err != nil {
		return "", err
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return "", fmt.Errorf("%w: %s returned an empty completion", domain.ErrUpstreamUnavailable, svc.ModelName())
	}
	return reply, nil
}

// ValidateTranscriptionConfig validates a transcription configuration by pinging it.
func ValidateTranscriptionConfig(ctx context.Context, settings *domain.TranscriptionSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}

	svc, err := CreateTranscriber(settings)
	if err != nil {
		return err
	}
	defer svc.Close()

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return svc.Ping(pingCtx)
}

// CreateLLMService creates the appropriate LLM service based on settings.
// Returns nil if the provider is not configured.
func CreateLLMService(ctx context.Context, settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollama.NewLLMService(ollama.LLMConfig{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Timeout: settings.Timeout,
		}), nil

	case domain.AIProviderOpenAI:
		return openai.NewLLMService(openai.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Timeout: settings.Timeout,
		})

	case domain.AIProviderAnthropic:
		return anthropic.NewLLMService(anthropic.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Timeout: settings.Timeout,
		})

	case domain.AIProviderGemini:
		return gemini.NewLLMService(ctx, gemini.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Timeout: settings.Timeout,
		})

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}

// CreateTranscriber creates the transcription service based on settings.
// Returns nil if the provider is not configured.
func CreateTranscriber(settings *domain.TranscriptionSettings) (driven.Transcriber, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}
	return whisper.New(whisper.Config{
		APIKey:   settings.APIKey,
		BaseURL:  settings.BaseURL,
		Model:    settings.Model,
		Language: settings.Language,
		Timeout:  settings.Timeout,
	})
}

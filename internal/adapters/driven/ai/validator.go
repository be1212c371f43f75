package ai

import (
	"context"

	"github.com/custodia-labs/aisle/internal/core/domain"
	"github.com/custodia-labs/aisle/internal/core/ports/driven"
)

// Ensure ConfigValidator implements the interface.
var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// ConfigValidator validates AI provider configurations.
type ConfigValidator struct{}

// NewConfigValidator creates a new AI config validator.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{}
}

// ValidateLLM validates an LLM configuration by pinging the provider.
func (v *ConfigValidator) ValidateLLM(ctx context.Context, config *domain.LLMSettings) error {
	return ValidateLLMConfig(ctx, config)
}

// ProbeLLM asks the configured model for a one-word completion.
func (v *ConfigValidator) ProbeLLM(ctx context.Context, config *domain.LLMSettings) (string, error) {
	return ProbeLLMCompletion(ctx, config)
}

// ValidateTranscription validates a transcription configuration by pinging the provider.
func (v *ConfigValidator) ValidateTranscription(ctx context.Context, config *domain.TranscriptionSettings) error {
	return ValidateTranscriptionConfig(ctx, config)
}

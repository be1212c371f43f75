package driven

import (
	"context"

	"github.com/custodia-labs/aisle/internal/core/domain"
)

// AIConfigValidator validates AI provider configurations.
// Implementations verify that configurations are valid by testing connectivity
// to the underlying AI services.
type AIConfigValidator interface {
	// ValidateLLM validates an LLM configuration by pinging the provider.
	// Returns nil if configuration is valid or not configured.
	ValidateLLM(ctx context.Context, config *domain.LLMSettings) error

	// ProbeLLM runs a short completion and returns the model's reply.
	ProbeLLM(ctx context.Context, config *domain.LLMSettings) (string, error)

	// ValidateTranscription validates a transcription configuration.
	// Returns nil if configuration is valid or not configured.
	ValidateTranscription(ctx context.Context, config *domain.TranscriptionSettings) error
}

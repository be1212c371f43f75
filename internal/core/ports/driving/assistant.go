package driving

import (
	"context"

	"github.com/custodia-labs/aisle/internal/core/domain"
)

// AssistantService answers shopper utterances.
type AssistantService interface {
	// Handle answers a text utterance. Only an empty utterance fails
	// (domain.ErrInvalidInput); upstream failures fall back silently.
	Handle(ctx context.Context, req domain.QueryRequest) (*domain.Reply, error)

	// HandleAudio transcribes audio and answers it. Audio that cannot be
	// understood yields a reply saying so, not an error.
	HandleAudio(ctx context.Context, audio []byte, filename string, req domain.QueryRequest) (*domain.Reply, error)

	// ProviderName returns the highest-priority response provider in use.
	ProviderName() string
}

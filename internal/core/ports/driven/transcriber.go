package driven

import (
	"context"

	"github.com/custodia-labs/aisle/internal/core/domain"
)

// Transcriber turns recorded speech into text.
// This is an optional service - when nil, audio queries cannot be understood.
type Transcriber interface {
	// Transcribe converts audio bytes to text. The filename carries the
	// container format (e.g. "query.wav"). Empty or unsupported audio
	// fails with domain.ErrTranscriptionFailed.
	Transcribe(ctx context.Context, audio []byte, filename string) (domain.Transcription, error)

	// ModelName returns the speech model in use.
	ModelName() string

	// Ping validates the service is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

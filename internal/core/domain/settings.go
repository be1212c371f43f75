package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for the LLM or transcription.
type AIProvider string

// Available AI providers.
const (
	// AIProviderNone disables the service; the assistant runs rules-only.
	AIProviderNone AIProvider = "none"

	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API, or any compatible API such as Groq.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderGemini is Google Gemini API.
	AIProviderGemini AIProvider = "gemini"
)

// IsValid returns true if the AI provider is recognised.
// AIProviderNone is recognised but never configured.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic, AIProviderGemini:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic || p == AIProviderGemini
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderNone:
		return "None (rule-based only)"
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI-compatible (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderGemini:
		return "Gemini (cloud)"
	default:
		return unknownDescription
	}
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama and OpenAI-compatible APIs).
	BaseURL string

	// APIKey is the API key (for cloud providers).
	APIKey string

	// Timeout bounds a single LLM request.
	Timeout time.Duration

	// RatePerSecond and Burst limit outgoing requests. Zero disables limiting.
	RatePerSecond float64
	Burst         int

	// BreakerFailures consecutive failures open the circuit for BreakerCooldown.
	BreakerFailures uint32
	BreakerCooldown time.Duration
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// TranscriptionSettings holds speech-to-text provider configuration.
type TranscriptionSettings struct {
	// Provider is the transcription provider. Only OpenAI-compatible
	// whisper endpoints are supported.
	Provider AIProvider

	Model   string
	BaseURL string
	APIKey  string

	// Language is the ISO-639-1 hint passed to the model.
	Language string

	Timeout time.Duration

	// MinConfidence rejects transcriptions scored below it (0-1).
	MinConfidence float64
}

// IsConfigured returns true if the transcription provider is set up.
func (t TranscriptionSettings) IsConfigured() bool {
	return t.Provider == AIProviderOpenAI && t.APIKey != ""
}

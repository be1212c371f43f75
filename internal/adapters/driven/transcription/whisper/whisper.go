// Package whisper provides a speech-to-text adapter for OpenAI-compatible
// /audio/transcriptions endpoints such as Groq and OpenAI Whisper.
package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/custodia-labs/aisle/internal/core/domain"
	"github.com/custodia-labs/aisle/internal/core/ports/driven"
)

// Ensure Transcriber implements the interface.
var _ driven.Transcriber = (*Transcriber)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.groq.com/openai/v1"
	DefaultModel   = "whisper-large-v3-turbo"
	DefaultTimeout = 15 * time.Second
)

// supportedFormats are the container formats the endpoint accepts.
var supportedFormats = map[string]bool{
	".flac": true, ".m4a": true, ".mp3": true, ".mp4": true, ".mpeg": true,
	".mpga": true, ".oga": true, ".ogg": true, ".wav": true, ".webm": true,
}

// Config holds configuration for the transcriber.
type Config struct {
	// APIKey is the API key (required).
	APIKey string

	// BaseURL is the API base URL (default: Groq).
	BaseURL string

	// Model is the speech model (default: whisper-large-v3-turbo).
	Model string

	// Language is an optional ISO-639-1 hint.
	Language string

	// Timeout is the request timeout (default: 15s).
	Timeout time.Duration
}

// Transcriber converts audio to text over HTTP.
type Transcriber struct {
	client   *http.Client
	baseURL  string
	apiKey   string
	model    string
	language string
}

// verboseResponse is the verbose_json response format.
type verboseResponse struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Segments []struct {
		AvgLogprob float64 `json:"avg_logprob"`
	} `json:"segments"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// New creates a new transcriber.
func New(cfg Config) (*Transcriber, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("whisper: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Transcriber{
		client:   &http.Client{Timeout: cfg.Timeout},
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		language: cfg.Language,
	}, nil
}

// Transcribe uploads the audio and returns the recognised text.
func (t *Transcriber) Transcribe(ctx context.Context, audio []byte, filename string) (domain.Transcription, error) {
	if len(audio) == 0 {
		return domain.Transcription{}, fmt.Errorf("%w: empty audio", domain.ErrTranscriptionFailed)
	}
	if filename == "" {
		filename = "query.wav"
	}
	if ext := strings.ToLower(filepath.Ext(filename)); !supportedFormats[ext] {
		return domain.Transcription{}, fmt.Errorf("%w: unsupported audio format %q", domain.ErrTranscriptionFailed, ext)
	}

	body, contentType, err := t.encode(audio, filename)
	if err != nil {
		return domain.Transcription{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/audio/transcriptions", body)
	if err != nil {
		return domain.Transcription{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+t.apiKey)

	resp, err := t.client.Do(req)
	if err != nil {
		return domain.Transcription{}, fmt.Errorf("%w: whisper: %w", domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.Transcription{}, fmt.Errorf("%w: whisper: read response: %w", domain.ErrUpstreamUnavailable, err)
	}
	if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
		return domain.Transcription{}, fmt.Errorf("%w: whisper status %d", domain.ErrUpstreamUnavailable, resp.StatusCode)
	}

	var out verboseResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return domain.Transcription{}, fmt.Errorf("%w: decode response: %w", domain.ErrTranscriptionFailed, err)
	}
	if out.Error != nil {
		return domain.Transcription{}, fmt.Errorf("%w: %s", domain.ErrTranscriptionFailed, out.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return domain.Transcription{}, fmt.Errorf("%w: status %d", domain.ErrTranscriptionFailed, resp.StatusCode)
	}

	text := strings.TrimSpace(out.Text)
	if text == "" {
		return domain.Transcription{}, fmt.Errorf("%w: no speech recognised", domain.ErrTranscriptionFailed)
	}
	return domain.Transcription{
		Text:       text,
		Confidence: confidence(out),
		Language:   out.Language,
	}, nil
}

func (t *Transcriber) encode(audio []byte, filename string) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return nil, "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return nil, "", fmt.Errorf("write audio: %w", err)
	}

	fields := map[string]string{
		"model":           t.model,
		"response_format": "verbose_json",
		"temperature":     "0",
	}
	if t.language != "" {
		fields["language"] = t.language
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", k, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

// confidence is the mean per-segment probability exp(avg_logprob).
// Responses without segments are trusted fully.
func confidence(r verboseResponse) float64 {
	if len(r.Segments) == 0 {
		return 1
	}
	var sum float64
	for _, s := range r.Segments {
		sum += math.Exp(s.AvgLogprob)
	}
	c := sum / float64(len(r.Segments))
	return math.Round(math.Min(c, 1)*1000) / 1000
}

// ModelName returns the speech model in use.
func (t *Transcriber) ModelName() string {
	return t.model
}

// Ping validates the service is reachable by checking the /models endpoint.
func (t *Transcriber) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"/models", http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+t.apiKey)

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: whisper: %w", domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: whisper ping status %d", domain.ErrUpstreamUnavailable, resp.StatusCode)
	}
	return nil
}

// Close releases resources.
func (t *Transcriber) Close() error {
	t.client.CloseIdleConnections()
	return nil
}

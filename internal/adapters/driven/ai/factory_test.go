package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/aisle/internal/adapters/driven/llm/guard"
	"github.com/custodia-labs/aisle/internal/core/domain"
)

func TestInitResult_Close(t *testing.T) {
	t.Run("close with nil services", func(t *testing.T) {
		result := &InitResult{}
		// Should not panic
		result.Close()
	})
}

func TestCreateLLMService(t *testing.T) {
	tests := []struct {
		name     string
		settings *domain.LLMSettings
		wantNil  bool
		wantErr  bool
	}{
		{
			name:     "nil settings returns nil",
			settings: nil,
			wantNil:  true,
		},
		{
			name:     "unconfigured settings returns nil",
			settings: &domain.LLMSettings{},
			wantNil:  true,
		},
		{
			name: "none provider returns nil",
			settings: &domain.LLMSettings{
				Provider: domain.AIProviderNone,
			},
			wantNil: true,
		},
		{
			name: "ollama provider creates service",
			settings: &domain.LLMSettings{
				Provider: domain.AIProviderOllama,
				BaseURL:  "http://localhost:11434",
				Model:    "llama3.2",
			},
		},
		{
			name: "openai provider creates service",
			settings: &domain.LLMSettings{
				Provider: domain.AIProviderOpenAI,
				APIKey:   "test-key",
				Model:    "gpt-4o-mini",
			},
		},
		{
			name: "anthropic provider creates service",
			settings: &domain.LLMSettings{
				Provider: domain.AIProviderAnthropic,
				APIKey:   "test-key",
			},
		},
		{
			name: "gemini provider creates service",
			settings: &domain.LLMSettings{
				Provider: domain.AIProviderGemini,
				APIKey:   "test-key",
			},
		},
		{
			name: "openai without key is not configured",
			settings: &domain.LLMSettings{
				Provider: domain.AIProviderOpenAI,
			},
			wantNil: true,
		},
		{
			name: "unknown provider returns nil (not configured)",
			settings: &domain.LLMSettings{
				Provider: "unknown",
				APIKey:   "test-key",
			},
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateLLMService(context.Background(), tt.settings)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			if tt.wantNil {
				assert.Nil(t, svc)
				return
			}
			require.NotNil(t, svc)
			assert.NoError(t, svc.Close())
		})
	}
}

func TestCreateAndValidateLLMService_WrapsInGuard(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		_, _ = w.Write([]byte(`{"models":[]}`))
	}))
	defer srv.Close()

	svc, err := CreateAndValidateLLMService(context.Background(), &domain.LLMSettings{
		Provider: domain.AIProviderOllama,
		BaseURL:  srv.URL,
		Model:    "llama3.2",
	})
	require.NoError(t, err)
	defer svc.Close()

	_, ok := svc.(*guard.LLMService)
	assert.True(t, ok, "validated service should be guarded")
	assert.Equal(t, "llama3.2", svc.ModelName())
}

func TestCreateAndValidateLLMService_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	svc, err := CreateAndValidateLLMService(context.Background(), &domain.LLMSettings{
		Provider: domain.AIProviderOllama,
		BaseURL:  srv.URL,
	})

	assert.Nil(t, svc)
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestCreateTranscriber(t *testing.T) {
	svc, err := CreateTranscriber(nil)
	require.NoError(t, err)
	assert.Nil(t, svc)

	svc, err = CreateTranscriber(&domain.TranscriptionSettings{
		Provider: domain.AIProviderOpenAI,
		APIKey:   "test-key",
	})
	require.NoError(t, err)
	require.NotNil(t, svc)
	assert.NotEmpty(t, svc.ModelName())
}

func TestInit_FallsBackWhenUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	result := Init(context.Background(),
		&domain.LLMSettings{Provider: domain.AIProviderOllama, BaseURL: srv.URL},
		&domain.TranscriptionSettings{Provider: domain.AIProviderOpenAI, APIKey: "k", BaseURL: srv.URL},
	)
	defer result.Close()

	assert.Nil(t, result.LLMService)
	assert.Nil(t, result.Transcriber)
	assert.True(t, result.FellBack)
	assert.Len(t, result.Warnings, 2)
}

func TestInit_NothingConfigured(t *testing.T) {
	result := Init(context.Background(), nil, nil)

	assert.Nil(t, result.LLMService)
	assert.Nil(t, result.Transcriber)
	assert.False(t, result.FellBack)
	assert.Empty(t, result.Warnings)
}

func TestProbeLLMCompletion(t *testing.T) {
	var prompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Prompt string `json:"prompt"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		prompt = body.Prompt
		_, _ = w.Write([]byte(`{"response":" ready\n"}`))
	}))
	defer srv.Close()

	reply, err := ProbeLLMCompletion(context.Background(), &domain.LLMSettings{
		Provider: domain.AIProviderOllama,
		BaseURL:  srv.URL,
	})

	require.NoError(t, err)
	assert.Equal(t, "ready", reply)
	assert.Equal(t, probePrompt, prompt)
}

func TestProbeLLMCompletion_EmptyReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"response":""}`))
	}))
	defer srv.Close()

	_, err := NewConfigValidator().ProbeLLM(context.Background(), &domain.LLMSettings{
		Provider: domain.AIProviderOllama,
		BaseURL:  srv.URL,
	})

	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}

func TestProbeLLMCompletion_NotConfigured(t *testing.T) {
	reply, err := ProbeLLMCompletion(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, reply)
}

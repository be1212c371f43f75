package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/aisle/internal/core/domain"
	"github.com/custodia-labs/aisle/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockLLM implements driven.LLMService for testing.
type mockLLM struct {
	response string
	err      error
	block    bool
	messages []driven.ChatMessage
	calls    int
}

func (m *mockLLM) Generate(_ context.Context, _ string, _ driven.GenerateOptions) (string, error) {
	return m.response, m.err
}

func (m *mockLLM) Chat(ctx context.Context, messages []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
	m.calls++
	m.messages = messages
	if m.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return m.response, m.err
}

func (m *mockLLM) ModelName() string            { return "mock-model" }
func (m *mockLLM) Ping(_ context.Context) error { return nil }
func (m *mockLLM) Close() error                 { return nil }

// mockTranscriber implements driven.Transcriber for testing.
type mockTranscriber struct {
	result domain.Transcription
	err    error
}

func (m *mockTranscriber) Transcribe(_ context.Context, _ []byte, _ string) (domain.Transcription, error) {
	return m.result, m.err
}

func (m *mockTranscriber) ModelName() string            { return "mock-whisper" }
func (m *mockTranscriber) Ping(_ context.Context) error { return nil }
func (m *mockTranscriber) Close() error                 { return nil }

// mockPromptStore implements driven.PromptStore for testing.
type mockPromptStore struct {
	prompts map[string]string
}

func (m *mockPromptStore) Load(name string) (string, error) {
	p, ok := m.prompts[name]
	if !ok {
		return "", errors.New("missing")
	}
	return p, nil
}

func (m *mockPromptStore) Reload() {}

func newAssistant(t *testing.T, llm driven.LLMService, tr driven.Transcriber) *AssistantService {
	t.Helper()
	cfg := DefaultAssistantConfig()
	cfg.LLMTimeout = 50 * time.Millisecond
	return NewAssistantService(newTestCatalog(t), NewPlanner(), llm, tr, cfg)
}

// --- LLM path ---

func TestAssistant_LLMAnswer(t *testing.T) {
	// Snapshot order: 1 Butter, 2 Milk, 3 Banana, 4 Potato Chips.
	llm := &mockLLM{response: `{"intent": "lookup", "products": [2], "reply": "Milk is in Aisle A1, Shelf 1."}`}
	svc := newAssistant(t, llm, nil)

	reply, err := svc.Handle(context.Background(), domain.QueryRequest{Text: "where is milk"})
	require.NoError(t, err)

	assert.Equal(t, ProviderLLM, reply.Provider)
	assert.Empty(t, reply.FallbackReason)
	assert.Equal(t, domain.IntentLookup, reply.Intent)
	assert.Equal(t, []string{"p1"}, reply.ProductIDs())
	assert.Equal(t, 100.0, reply.Products[0].Score)
	assert.NotEmpty(t, reply.QueryID)
	assert.True(t, reply.WantsRoute)
	require.NotNil(t, reply.Route)
	end, _ := reply.Route.End()
	assert.Equal(t, "p1", end.ProductID)
}

func TestAssistant_LLMPromptGrounding(t *testing.T) {
	llm := &mockLLM{response: `{"intent":"chat","products":[],"reply":"Hello!"}`}
	svc := newAssistant(t, llm, nil)
	svc.SetPromptStore(&mockPromptStore{prompts: map[string]string{
		driven.PromptAssistantSystem: "You work at %s.",
		driven.PromptAssistantQuery:  "CATALOG\n%s\nASK %s",
	}})

	_, err := svc.Handle(context.Background(), domain.QueryRequest{Text: "hi", ContextProductIDs: []string{"p2"}})
	require.NoError(t, err)

	require.Len(t, llm.messages, 2)
	assert.Equal(t, "You work at Corner Mart.", llm.messages[0].Content)
	user := llm.messages[1].Content
	assert.Contains(t, user, "2. Milk [Dairy] - Aisle A1 (Dairy), Shelf 1")
	assert.Contains(t, user, "ASK hi")
	assert.Contains(t, user, "previous answer: 4")
}

func TestAssistant_LLMIgnoresUnknownNumbers(t *testing.T) {
	llm := &mockLLM{response: "Sure! Here you go: {\"intent\":\"lookup\",\"products\":[99,2,2,0,1],\"reply\":\"Found it\"}"}
	svc := newAssistant(t, llm, nil)

	reply, err := svc.Handle(context.Background(), domain.QueryRequest{Text: "dairy stuff"})
	require.NoError(t, err)

	assert.Equal(t, []string{"p1", "p3"}, reply.ProductIDs())
	assert.Equal(t, 95.0, reply.Products[1].Score)
	assert.Nil(t, reply.Route)
}

func TestAssistant_LLMUnavailableFallsBack(t *testing.T) {
	llm := &mockLLM{err: fmt.Errorf("%w: connection refused", domain.ErrUpstreamUnavailable)}
	svc := newAssistant(t, llm, nil)

	reply, err := svc.Handle(context.Background(), domain.QueryRequest{Text: "where is the milk?"})
	require.NoError(t, err)

	assert.NotEmpty(t, reply.Text)
	assert.Contains(t, reply.Text, "Milk")
	assert.Equal(t, ProviderRules, reply.Provider)
	assert.Equal(t, ReasonUpstreamUnavailable, reply.FallbackReason)
	require.NotEmpty(t, reply.Products)
	assert.Equal(t, "p1", reply.Products[0].ID)
}

func TestAssistant_MalformedLLMOutputFallsBack(t *testing.T) {
	for _, raw := range []string{
		"I think you want milk",
		`{"intent": "lookup", "products": [2]`,
		`{"intent": "lookup", "products": [2], "reply": ""}`,
		`{"intent": "dance", "products": [2], "reply": "ok"}`,
	} {
		svc := newAssistant(t, &mockLLM{response: raw}, nil)

		reply, err := svc.Handle(context.Background(), domain.QueryRequest{Text: "milk"})
		require.NoError(t, err, raw)
		assert.Equal(t, ProviderRules, reply.Provider, raw)
		assert.Equal(t, ReasonMalformedResponse, reply.FallbackReason, raw)
		assert.Equal(t, "p1", reply.Products[0].ID, raw)
	}
}

func TestAssistant_LLMTimeoutFallsBack(t *testing.T) {
	llm := &mockLLM{block: true}
	svc := newAssistant(t, llm, nil)

	start := time.Now()
	reply, err := svc.Handle(context.Background(), domain.QueryRequest{Text: "butter"})
	require.NoError(t, err)

	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, ProviderRules, reply.Provider)
	assert.Equal(t, ReasonTimeout, reply.FallbackReason)
	assert.Equal(t, "p3", reply.Products[0].ID)
}

func TestAssistant_CallerCancellation(t *testing.T) {
	svc := newAssistant(t, &mockLLM{block: true}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Handle(ctx, domain.QueryRequest{Text: "butter"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAssistant_ProviderName(t *testing.T) {
	assert.Equal(t, ProviderLLM, newAssistant(t, &mockLLM{}, nil).ProviderName())
	assert.Equal(t, ProviderRules, newAssistant(t, nil, nil).ProviderName())
}

// --- Rule-based path ---

func TestAssistant_RejectsBlankUtterance(t *testing.T) {
	svc := newAssistant(t, nil, nil)

	_, err := svc.Handle(context.Background(), domain.QueryRequest{Text: "   "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAssistant_RulesLookup(t *testing.T) {
	svc := newAssistant(t, nil, nil)

	reply, err := svc.Handle(context.Background(), domain.QueryRequest{Text: "do you have butter"})
	require.NoError(t, err)

	assert.Equal(t, domain.IntentLookup, reply.Intent)
	assert.Equal(t, "p3", reply.Products[0].ID)
	assert.True(t, strings.HasPrefix(reply.Text, "Sure! Butter is in Aisle A1 (Dairy), Shelf 2."), reply.Text)
	assert.False(t, reply.WantsRoute)
	assert.Nil(t, reply.Route)
}

func TestAssistant_RulesExpandIntentWords(t *testing.T) {
	svc := newAssistant(t, nil, nil)

	reply, err := svc.Handle(context.Background(), domain.QueryRequest{Text: "I'm hungry"})
	require.NoError(t, err)

	require.NotEmpty(t, reply.Products)
	assert.Equal(t, "p2", reply.Products[0].ID)
}

func TestAssistant_RulesSmallTalk(t *testing.T) {
	svc := newAssistant(t, nil, nil)

	tests := []struct {
		text string
		want string
	}{
		{"Hello!", greetingReply},
		{"thank you", thanksReply},
		{"what can you do?", helpReply},
	}
	for _, tt := range tests {
		reply, err := svc.Handle(context.Background(), domain.QueryRequest{Text: tt.text})
		require.NoError(t, err)
		assert.Equal(t, domain.IntentChat, reply.Intent, tt.text)
		assert.Equal(t, tt.want, reply.Text, tt.text)
		assert.Empty(t, reply.Products, tt.text)
	}
}

func TestAssistant_NoUnderstanding(t *testing.T) {
	svc := newAssistant(t, nil, nil)

	reply, err := svc.Handle(context.Background(), domain.QueryRequest{Text: "is it there?"})
	require.NoError(t, err)

	assert.Equal(t, domain.IntentUnknown, reply.Intent)
	assert.Equal(t, noUnderstandingReply, reply.Text)
	assert.NotNil(t, reply.Products)
	assert.Empty(t, reply.Products)
}

func TestAssistant_NoMatch(t *testing.T) {
	svc := newAssistant(t, nil, nil)

	reply, err := svc.Handle(context.Background(), domain.QueryRequest{Text: "xyz123"})
	require.NoError(t, err)

	assert.Equal(t, domain.IntentLookup, reply.Intent)
	assert.Empty(t, reply.Products)
	assert.Contains(t, reply.Text, `"xyz123"`)
}

func TestAssistant_TakeMeThereUsesContext(t *testing.T) {
	svc := newAssistant(t, nil, nil)

	reply, err := svc.Handle(context.Background(), domain.QueryRequest{
		Text:              "Take me there",
		ContextProductIDs: []string{"p2", "p1", "gone"},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.IntentNavigate, reply.Intent)
	assert.True(t, reply.WantsRoute)
	assert.Equal(t, []string{"p2", "p1"}, reply.ProductIDs())
	require.NotNil(t, reply.Route)
	assert.Equal(t, []string{"p1", "p2"}, reply.Route.VisitOrder())
}

func TestAssistant_TakeMeThereWithoutContext(t *testing.T) {
	svc := newAssistant(t, nil, nil)

	reply, err := svc.Handle(context.Background(), domain.QueryRequest{Text: "take me there"})
	require.NoError(t, err)

	assert.Equal(t, domain.IntentNavigate, reply.Intent)
	assert.Equal(t, whichProductReply, reply.Text)
	assert.Nil(t, reply.Route)
}

func TestAssistant_UnreachableProductStillListed(t *testing.T) {
	svc := newAssistant(t, nil, nil)

	reply, err := svc.Handle(context.Background(), domain.QueryRequest{Text: "where is the banana"})
	require.NoError(t, err)

	require.NotEmpty(t, reply.Products)
	assert.Equal(t, "p4", reply.Products[0].ID)
	assert.True(t, reply.WantsRoute)
	assert.Nil(t, reply.Route)
	assert.Contains(t, reply.RouteError, domain.ErrNoRouteFound.Error())
}

func TestAssistant_ExplicitRouteRequest(t *testing.T) {
	svc := newAssistant(t, nil, nil)

	reply, err := svc.Handle(context.Background(), domain.QueryRequest{Text: "chips", WantRoute: true})
	require.NoError(t, err)

	require.NotNil(t, reply.Route)
	assert.Equal(t, []string{"p2"}, reply.Route.VisitOrder())
}

// --- Audio ---

func TestAssistant_HandleAudio(t *testing.T) {
	tr := &mockTranscriber{result: domain.Transcription{Text: "where is the butter", Confidence: 0.9, Language: "en"}}
	svc := newAssistant(t, nil, tr)

	reply, err := svc.HandleAudio(context.Background(), []byte("RIFF"), "q.wav", domain.QueryRequest{})
	require.NoError(t, err)

	require.NotNil(t, reply.Transcription)
	assert.Equal(t, "where is the butter", reply.Transcription.Text)
	assert.Equal(t, "p3", reply.Products[0].ID)
	assert.NotNil(t, reply.Route)
}

func TestAssistant_HandleAudioNotUnderstood(t *testing.T) {
	tests := []struct {
		name   string
		tr     driven.Transcriber
		reason string
	}{
		{"no transcriber", nil, ReasonTranscriptionUnavailable},
		{"failure", &mockTranscriber{err: domain.ErrTranscriptionFailed}, ReasonTranscriptionFailed},
		{"low confidence", &mockTranscriber{result: domain.Transcription{Text: "mlk", Confidence: 0.1}}, ReasonLowConfidence},
		{"silence", &mockTranscriber{result: domain.Transcription{Text: " ", Confidence: 1}}, ReasonLowConfidence},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newAssistant(t, nil, tt.tr)

			reply, err := svc.HandleAudio(context.Background(), []byte("RIFF"), "q.wav", domain.QueryRequest{})
			require.NoError(t, err)

			assert.Equal(t, audioNotUnderstoodReply, reply.Text)
			assert.Equal(t, domain.IntentUnknown, reply.Intent)
			assert.Equal(t, tt.reason, reply.FallbackReason)
			assert.Empty(t, reply.Products)
		})
	}
}

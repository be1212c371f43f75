package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/custodia-labs/aisle/internal/core/domain"
	"github.com/custodia-labs/aisle/internal/core/ports/driven"
	"github.com/custodia-labs/aisle/internal/core/ports/driving"
	"github.com/custodia-labs/aisle/internal/logger"
)

// Ensure AssistantService implements the interfaces.
var (
	_ driving.AssistantService = (*AssistantService)(nil)
	_ driven.PromptStoreAware  = (*AssistantService)(nil)
)

// ProviderTranscription names replies produced when audio could not be used.
const ProviderTranscription = "transcription"

// audioNotUnderstoodReply is returned for audio that yields no usable text.
const audioNotUnderstoodReply = "Sorry, I could not understand the audio."

// Fallback reasons recorded on replies.
const (
	ReasonTimeout                  = "timeout"
	ReasonUpstreamUnavailable      = "upstream unavailable"
	ReasonMalformedResponse        = "malformed response"
	ReasonEmptyCatalog             = "empty catalog"
	ReasonError                    = "error"
	ReasonTranscriptionUnavailable = "transcription unavailable"
	ReasonTranscriptionFailed      = "transcription failed"
	ReasonLowConfidence            = "low confidence"
)

// AssistantConfig tunes the assistant.
type AssistantConfig struct {
	// LLMTimeout bounds each response provider call.
	LLMTimeout time.Duration

	// TranscriptionTimeout bounds each transcription call.
	TranscriptionTimeout time.Duration

	// MinConfidence rejects transcriptions scored below it (0-1).
	MinConfidence float64

	// TopK and MinScore configure rule-based matching.
	TopK     int
	MinScore float64

	// RouteTargets is how many top matches a lookup routes to.
	RouteTargets int
}

// DefaultAssistantConfig returns the default assistant configuration.
func DefaultAssistantConfig() AssistantConfig {
	return AssistantConfig{
		LLMTimeout:           8 * time.Second,
		TranscriptionTimeout: 15 * time.Second,
		MinConfidence:        0.4,
		TopK:                 3,
		MinScore:             60,
		RouteTargets:         1,
	}
}

// AssistantService answers shopper utterances. It asks each response
// provider in priority order and attaches a route when one is wanted.
type AssistantService struct {
	catalog     *CatalogService
	planner     *Planner
	vocab       *Vocabulary
	llm         *LLMProvider
	providers   []ResponseProvider
	transcriber driven.Transcriber
	cfg         AssistantConfig
}

// NewAssistantService creates the assistant. The llm and transcriber
// parameters are optional (can be nil); without an LLM the assistant
// answers with rules only.
func NewAssistantService(
	catalog *CatalogService,
	planner *Planner,
	llm driven.LLMService,
	transcriber driven.Transcriber,
	cfg AssistantConfig,
) *AssistantService {
	defaults := DefaultAssistantConfig()
	if cfg.LLMTimeout <= 0 {
		cfg.LLMTimeout = defaults.LLMTimeout
	}
	if cfg.TranscriptionTimeout <= 0 {
		cfg.TranscriptionTimeout = defaults.TranscriptionTimeout
	}
	if cfg.RouteTargets <= 0 {
		cfg.RouteTargets = defaults.RouteTargets
	}

	vocab := DefaultVocabulary()
	s := &AssistantService{
		catalog:     catalog,
		planner:     planner,
		vocab:       vocab,
		transcriber: transcriber,
		cfg:         cfg,
	}
	if llm != nil {
		s.llm = NewLLMProvider(llm, 5)
		s.providers = append(s.providers, s.llm)
	}
	s.providers = append(s.providers, NewRuleBasedProvider(vocab, cfg.TopK, cfg.MinScore))
	return s
}

// SetPromptStore sets the prompt store used by the LLM provider.
func (s *AssistantService) SetPromptStore(store driven.PromptStore) {
	if s.llm != nil {
		s.llm.SetPromptStore(store)
	}
}

// ProviderName returns the highest-priority response provider.
func (s *AssistantService) ProviderName() string {
	return s.providers[0].Name()
}

// Handle answers a text utterance.
func (s *AssistantService) Handle(ctx context.Context, req domain.QueryRequest) (*domain.Reply, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, fmt.Errorf("%w: empty utterance", domain.ErrInvalidInput)
	}
	logger.Section("Query")
	logger.Debug("Utterance: %q (context: %v)", text, req.ContextProductIDs)

	snap := s.catalog.Snapshot()
	reply, err := s.selectResponse(ctx, text, req, snap)
	if err != nil {
		return nil, err
	}
	reply.QueryID = ulid.Make().String()

	if reply.Intent == domain.IntentNavigate && len(reply.Products) == 0 {
		reply.Products = contextProducts(req.ContextProductIDs, snap)
	}
	fromContext := reply.Intent == domain.IntentNavigate && allInContext(reply.Products, req.ContextProductIDs)

	reply.WantsRoute = req.WantRoute ||
		reply.Intent == domain.IntentNavigate ||
		(reply.Intent == domain.IntentLookup && s.vocab.IsLocative(text))
	if reply.WantsRoute && len(reply.Products) > 0 {
		s.attachRoute(&reply, snap, fromContext)
	}

	logger.Debug("Reply by %s: intent=%s products=%v route=%t", reply.Provider, reply.Intent, reply.ProductIDs(), reply.Route != nil)
	return &reply, nil
}

// selectResponse is the single place that decides which provider answers.
// Providers are tried in fixed priority; each call is bounded by the LLM
// timeout and any failure moves on to the next provider.
func (s *AssistantService) selectResponse(
	ctx context.Context, text string, req domain.QueryRequest, snap *Snapshot,
) (domain.Reply, error) {
	reason := ""
	for _, p := range s.providers {
		pctx, cancel := context.WithTimeout(ctx, s.cfg.LLMTimeout)
		reply, err := p.Respond(pctx, text, req, snap)
		cancel()
		if err == nil {
			reply.Provider = p.Name()
			reply.FallbackReason = reason
			if reply.Products == nil {
				reply.Products = []domain.ScoredProduct{}
			}
			return reply, nil
		}
		if ctx.Err() != nil {
			return domain.Reply{}, ctx.Err()
		}
		reason = fallbackReason(err)
		logger.Warn("%s provider failed (%s), falling back: %v", p.Name(), reason, err)
	}
	return domain.Reply{}, fmt.Errorf("no response provider answered: %s", reason)
}

// allInContext reports whether every product came from the previous turn.
func allInContext(products []domain.ScoredProduct, ids []string) bool {
	if len(products) == 0 {
		return false
	}
	prev := make(map[string]bool, len(ids))
	for _, id := range ids {
		prev[id] = true
	}
	for _, p := range products {
		if !prev[p.ID] {
			return false
		}
	}
	return true
}

func fallbackReason(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ReasonTimeout
	case errors.Is(err, domain.ErrUpstreamUnavailable), errors.Is(err, domain.ErrLLMUnavailable):
		return ReasonUpstreamUnavailable
	case errors.Is(err, errMalformedResponse):
		return ReasonMalformedResponse
	case errors.Is(err, errEmptyCatalog):
		return ReasonEmptyCatalog
	default:
		return ReasonError
	}
}

// attachRoute plans a route to the reply's products. Navigation to
// previous-turn products visits all of them; otherwise only the top
// matches are visited. Planning failures are reported on the reply.
func (s *AssistantService) attachRoute(reply *domain.Reply, snap *Snapshot, all bool) {
	n := len(reply.Products)
	if !all && n > s.cfg.RouteTargets {
		n = s.cfg.RouteTargets
	}
	targets := make([]domain.Product, n)
	for i := range targets {
		targets[i] = reply.Products[i].Product
	}

	plan, err := s.planner.Plan(targets, snap.Layout())
	if err != nil {
		logger.Warn("route planning failed: %v", err)
		reply.RouteError = err.Error()
		return
	}
	reply.Route = plan
}

// HandleAudio transcribes audio and answers the transcript.
func (s *AssistantService) HandleAudio(
	ctx context.Context, audio []byte, filename string, req domain.QueryRequest,
) (*domain.Reply, error) {
	logger.Section("Audio Query")
	if s.transcriber == nil {
		return notUnderstood(nil, ReasonTranscriptionUnavailable), nil
	}

	tctx, cancel := context.WithTimeout(ctx, s.cfg.TranscriptionTimeout)
	tr, err := s.transcriber.Transcribe(tctx, audio, filename)
	cancel()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.Warn("transcription failed: %v", err)
		return notUnderstood(nil, ReasonTranscriptionFailed), nil
	}
	logger.Debug("Transcribed %q (confidence %.2f)", tr.Text, tr.Confidence)

	if strings.TrimSpace(tr.Text) == "" || tr.Confidence < s.cfg.MinConfidence {
		return notUnderstood(&tr, ReasonLowConfidence), nil
	}

	req.Text = tr.Text
	reply, err := s.Handle(ctx, req)
	if err != nil {
		return nil, err
	}
	reply.Transcription = &tr
	return reply, nil
}

func notUnderstood(tr *domain.Transcription, reason string) *domain.Reply {
	return &domain.Reply{
		QueryID:        ulid.Make().String(),
		Text:           audioNotUnderstoodReply,
		Intent:         domain.IntentUnknown,
		Products:       []domain.ScoredProduct{},
		Provider:       ProviderTranscription,
		FallbackReason: reason,
		Transcription:  tr,
	}
}

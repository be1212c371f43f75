package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/custodia-labs/aisle/internal/core/domain"
	"github.com/custodia-labs/aisle/internal/core/ports/driven"
	"github.com/custodia-labs/aisle/internal/logger"
)

// ResponseProvider turns an utterance into a reply grounded in the catalog.
// Providers are tried in a fixed priority order; an error hands the
// utterance to the next provider.
type ResponseProvider interface {
	// Name identifies the provider in replies and metrics.
	Name() string

	// Respond answers the utterance using only products in the snapshot.
	Respond(ctx context.Context, utterance string, req domain.QueryRequest, snap *Snapshot) (domain.Reply, error)
}

// Provider names.
const (
	ProviderLLM   = "llm"
	ProviderRules = "rules"
)

var (
	// errMalformedResponse indicates LLM output that is not the expected JSON.
	errMalformedResponse = errors.New("malformed LLM response")

	// errEmptyCatalog indicates there is nothing to ground a reply in.
	errEmptyCatalog = errors.New("catalog is empty")
)

// Default prompts, used when no prompt store is set.
const (
	defaultSystemPrompt = `You are a friendly and helpful supermarket shopping assistant for %s.
You help customers find products in the store.

Rules:
1. Only answer questions about products and their locations in this store.
2. Only recommend products from the numbered catalog you are given.
3. Keep replies short and conversational, at most 2-3 sentences.
4. Always mention the aisle and shelf when saying where a product is.
5. If nothing matches, say so politely and suggest a category to try.

Respond with a single JSON object and nothing else:
{"intent": "lookup" | "navigate" | "chat", "products": [catalog numbers, best first], "reply": "your answer"}
Use "navigate" when the customer asks to be taken or guided somewhere.`

	defaultQueryPrompt = `Catalog:
%s

Customer: "%s"`
)

// llmAnswer is the JSON object the LLM is asked to produce.
type llmAnswer struct {
	Intent   string `json:"intent"`
	Products []int  `json:"products"`
	Reply    string `json:"reply"`
}

var jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)

// LLMProvider answers with a language model grounded in a numbered
// catalog listing.
type LLMProvider struct {
	llm         driven.LLMService
	promptStore driven.PromptStore
	maxProducts int
}

// Ensure LLMProvider supports custom prompts.
var _ driven.PromptStoreAware = (*LLMProvider)(nil)

// NewLLMProvider creates an LLM-backed response provider.
func NewLLMProvider(llm driven.LLMService, maxProducts int) *LLMProvider {
	if maxProducts <= 0 {
		maxProducts = 5
	}
	return &LLMProvider{llm: llm, maxProducts: maxProducts}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (p *LLMProvider) SetPromptStore(store driven.PromptStore) {
	p.promptStore = store
}

// Name returns "llm".
func (p *LLMProvider) Name() string {
	return ProviderLLM
}

// loadPrompt loads a prompt from the store, falling back to the default.
func (p *LLMProvider) loadPrompt(name, fallback string) string {
	if p.promptStore == nil {
		return fallback
	}
	prompt, err := p.promptStore.Load(name)
	if err != nil || prompt == "" {
		return fallback
	}
	return prompt
}

// Respond asks the LLM which catalog entries answer the utterance.
func (p *LLMProvider) Respond(
	ctx context.Context, utterance string, req domain.QueryRequest, snap *Snapshot,
) (domain.Reply, error) {
	products := snap.Products()
	if len(products) == 0 {
		return domain.Reply{}, errEmptyCatalog
	}
	layout := snap.Layout()

	var catalog strings.Builder
	numbers := make(map[string]int, len(products))
	for i, prod := range products {
		numbers[prod.ID] = i + 1
		catalog.WriteString(catalogLine(i+1, prod, layout))
		catalog.WriteByte('\n')
	}
	user := fmt.Sprintf(p.loadPrompt(driven.PromptAssistantQuery, defaultQueryPrompt),
		strings.TrimRight(catalog.String(), "\n"), utterance)
	if prev := contextNumbers(req.ContextProductIDs, numbers); prev != "" {
		user += "\nProducts from your previous answer: " + prev
	}

	storeName := layout.Name
	if storeName == "" {
		storeName = "our store"
	}
	messages := []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: fmt.Sprintf(p.loadPrompt(driven.PromptAssistantSystem, defaultSystemPrompt), storeName)},
		{Role: driven.RoleUser, Content: user},
	}

	logger.Debug("Asking %s about %q (%d catalog entries)", p.llm.ModelName(), utterance, len(products))
	raw, err := p.llm.Chat(ctx, messages, driven.ChatOptions{MaxTokens: 300, Temperature: 0, JSON: true})
	if err != nil {
		return domain.Reply{}, fmt.Errorf("llm chat: %w", err)
	}

	answer, err := parseAnswer(raw)
	if err != nil {
		logger.Debug("Unparseable LLM output: %q", raw)
		return domain.Reply{}, err
	}

	reply := domain.Reply{Text: answer.Reply, Intent: domain.Intent(answer.Intent), Products: []domain.ScoredProduct{}}
	seen := make(map[int]bool)
	for _, n := range answer.Products {
		if n < 1 || n > len(products) || seen[n] {
			logger.Debug("Ignoring catalog number %d from LLM", n)
			continue
		}
		seen[n] = true
		score := 100 - 5*float64(len(reply.Products))
		reply.Products = append(reply.Products, domain.ScoredProduct{Product: products[n-1], Score: score})
		if len(reply.Products) == p.maxProducts {
			break
		}
	}
	return reply, nil
}

// parseAnswer extracts and validates the JSON object in the LLM output.
func parseAnswer(raw string) (llmAnswer, error) {
	var answer llmAnswer
	match := jsonObjectPattern.FindString(raw)
	if match == "" {
		return answer, fmt.Errorf("%w: no JSON object", errMalformedResponse)
	}
	if err := json.Unmarshal([]byte(match), &answer); err != nil {
		return answer, fmt.Errorf("%w: %v", errMalformedResponse, err)
	}
	answer.Reply = strings.TrimSpace(answer.Reply)
	if answer.Reply == "" {
		return answer, fmt.Errorf("%w: empty reply", errMalformedResponse)
	}

	answer.Intent = strings.ToLower(strings.TrimSpace(answer.Intent))
	switch {
	case answer.Intent == "" && len(answer.Products) > 0:
		answer.Intent = string(domain.IntentLookup)
	case answer.Intent == "":
		answer.Intent = string(domain.IntentChat)
	case !domain.Intent(answer.Intent).IsValid():
		return answer, fmt.Errorf("%w: unknown intent %q", errMalformedResponse, answer.Intent)
	}
	return answer, nil
}

func catalogLine(n int, p domain.Product, layout domain.StoreLayout) string {
	line := fmt.Sprintf("%d. %s", n, p.Name)
	if p.Brand != "" {
		line += " (" + p.Brand + ")"
	}
	if p.Category != "" {
		line += " [" + p.Category + "]"
	}
	if aisle, ok := layout.Aisle(p.AisleID); ok {
		line += " - " + p.LocationLabel(aisle)
	}
	return line
}

func contextNumbers(ids []string, numbers map[string]int) string {
	var parts []string
	for _, id := range ids {
		if n, ok := numbers[id]; ok {
			parts = append(parts, fmt.Sprint(n))
		}
	}
	return strings.Join(parts, ", ")
}

// RuleBasedProvider answers deterministically from cue phrases, keyword
// expansion and fuzzy matching. It never fails.
type RuleBasedProvider struct {
	vocab    *Vocabulary
	topK     int
	minScore float64
}

// NewRuleBasedProvider creates the rule-based provider.
func NewRuleBasedProvider(vocab *Vocabulary, topK int, minScore float64) *RuleBasedProvider {
	if vocab == nil {
		vocab = DefaultVocabulary()
	}
	if topK <= 0 {
		topK = 3
	}
	return &RuleBasedProvider{vocab: vocab, topK: topK, minScore: minScore}
}

// Name returns "rules".
func (p *RuleBasedProvider) Name() string {
	return ProviderRules
}

// Reply texts.
const (
	noUnderstandingReply = "Sorry, I didn't understand that. Try asking for a product, like \"where is the milk?\""
	greetingReply        = "Hi! Tell me what you're looking for, like 'milk', 'shampoo' or 'something for a cold', and I'll find it."
	thanksReply          = "You're welcome! Anything else I can help you find?"
	helpReply            = "I help you find products in the store. Ask me where something is, or say \"take me there\" and I'll show you the way."
	whichProductReply    = "Which product would you like me to take you to?"
	noMatchReply         = "I couldn't find %q in our store. Try a different search term or a category like 'snacks', 'dairy' or 'personal care'."
)

// Respond answers the utterance from the vocabulary and the catalog.
func (p *RuleBasedProvider) Respond(
	_ context.Context, utterance string, req domain.QueryRequest, snap *Snapshot,
) (domain.Reply, error) {
	text := normalise(utterance)
	navigate := p.vocab.IsNavigation(text)
	tokens := p.vocab.Tokens(text)
	reply := domain.Reply{Products: []domain.ScoredProduct{}}

	if len(tokens) == 0 {
		switch {
		case navigate:
			reply.Intent = domain.IntentNavigate
			reply.Products = contextProducts(req.ContextProductIDs, snap)
			reply.Text = p.describe(reply.Products, snap, true)
			if len(reply.Products) == 0 {
				reply.Text = whichProductReply
			}
		case p.vocab.chat(text) == chatGreeting:
			reply.Intent, reply.Text = domain.IntentChat, greetingReply
		case p.vocab.chat(text) == chatThanks:
			reply.Intent, reply.Text = domain.IntentChat, thanksReply
		case p.vocab.chat(text) == chatHelp:
			reply.Intent, reply.Text = domain.IntentChat, helpReply
		default:
			reply.Intent, reply.Text = domain.IntentUnknown, noUnderstandingReply
		}
		return reply, nil
	}

	terms := p.vocab.Expand(tokens)
	logger.Debug("Rule-based terms: %v", terms)
	reply.Products = p.matchTerms(terms, snap.Products())

	reply.Intent = domain.IntentLookup
	if navigate {
		reply.Intent = domain.IntentNavigate
	}
	if len(reply.Products) == 0 {
		reply.Text = fmt.Sprintf(noMatchReply, strings.Join(tokens, " "))
		return reply, nil
	}
	reply.Text = p.describe(reply.Products, snap, navigate)
	return reply, nil
}

// matchTerms matches every term and keeps each product's best score.
func (p *RuleBasedProvider) matchTerms(terms []string, products []domain.Product) []domain.ScoredProduct {
	best := make(map[string]domain.ScoredProduct)
	for _, term := range terms {
		matches, err := Match(term, products, 0, p.minScore)
		if err != nil {
			continue
		}
		for _, m := range matches {
			if cur, ok := best[m.ID]; !ok || m.Score > cur.Score {
				best[m.ID] = m
			}
		}
	}

	merged := make([]domain.ScoredProduct, 0, len(best))
	for _, m := range best {
		merged = append(merged, m)
	}
	sortScored(merged)
	if len(merged) > p.topK {
		merged = merged[:p.topK]
	}
	return merged
}

// describe names the top match with its aisle and shelf, and lists the rest.
func (p *RuleBasedProvider) describe(products []domain.ScoredProduct, snap *Snapshot, navigate bool) string {
	if len(products) == 0 {
		return ""
	}
	layout := snap.Layout()
	where := func(prod domain.Product) string {
		if aisle, ok := layout.Aisle(prod.AisleID); ok {
			return prod.LocationLabel(aisle)
		}
		return "aisle " + prod.AisleID
	}

	top := products[0]
	var b strings.Builder
	if navigate {
		fmt.Fprintf(&b, "Let me take you to %s in %s.", top.Name, where(top.Product))
	} else {
		fmt.Fprintf(&b, "Sure! %s is in %s.", top.Name, where(top.Product))
	}
	if len(products) > 1 {
		others := make([]string, 0, len(products)-1)
		for _, o := range products[1:] {
			others = append(others, fmt.Sprintf("%s (%s)", o.Name, where(o.Product)))
		}
		lead := " You might also like: "
		if navigate {
			lead = " After that: "
		}
		b.WriteString(lead + strings.Join(others, ", ") + ".")
	}
	return b.String()
}

// contextProducts resolves previous-turn products that still exist.
func contextProducts(ids []string, snap *Snapshot) []domain.ScoredProduct {
	out := []domain.ScoredProduct{}
	for _, id := range ids {
		if prod, ok := snap.Product(id); ok {
			out = append(out, domain.ScoredProduct{Product: prod, Score: 100})
		}
	}
	return out
}

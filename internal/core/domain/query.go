package domain

// Intent is what the shopper wants from an utterance.
type Intent string

// Recognised intents.
const (
	// IntentLookup asks for a product.
	IntentLookup Intent = "lookup"

	// IntentNavigate asks to be guided to products, e.g. "take me there".
	IntentNavigate Intent = "navigate"

	// IntentChat is small talk or a general question.
	IntentChat Intent = "chat"

	// IntentUnknown means nothing in the utterance could be understood.
	IntentUnknown Intent = "unknown"
)

// IsValid returns true if the intent is recognised.
func (i Intent) IsValid() bool {
	switch i {
	case IntentLookup, IntentNavigate, IntentChat, IntentUnknown:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (i Intent) String() string {
	return string(i)
}

// QueryRequest is a single-turn request to the assistant.
type QueryRequest struct {
	// Text is the raw utterance, already transcribed if it came from voice.
	Text string `json:"text"`

	// ContextProductIDs are products from the previous turn, so that
	// "take me there" has something to refer to. The assistant keeps no
	// session of its own.
	ContextProductIDs []string `json:"context_product_ids,omitempty"`

	// WantRoute asks for a route even when the utterance has no navigation cue.
	WantRoute bool `json:"route,omitempty"`
}

// Transcription is the text recovered from an audio query.
type Transcription struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Language   string  `json:"language,omitempty"`
}

// Reply is the assistant's answer to one utterance.
type Reply struct {
	// QueryID correlates the reply with logs.
	QueryID string `json:"query_id"`

	// Text is the natural-language answer.
	Text string `json:"reply"`

	Intent   Intent          `json:"intent"`
	Products []ScoredProduct `json:"products"`

	// WantsRoute is set when the shopper asked to be guided.
	WantsRoute bool `json:"wants_route"`

	// Route is present when a route was requested and could be planned.
	Route *RoutePlan `json:"route,omitempty"`

	// RouteError explains why a requested route is missing.
	RouteError string `json:"route_error,omitempty"`

	// Provider names the response provider that produced the reply.
	Provider string `json:"provider"`

	// FallbackReason is set when a higher-priority provider failed.
	FallbackReason string `json:"fallback_reason,omitempty"`

	Transcription *Transcription `json:"transcription,omitempty"`
}

// ProductIDs returns the IDs of the matched products in order.
func (r Reply) ProductIDs() []string {
	ids := make([]string, len(r.Products))
	for i := range r.Products {
		ids[i] = r.Products[i].ID
	}
	return ids
}

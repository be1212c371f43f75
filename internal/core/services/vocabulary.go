package services

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed vocabulary.yaml
var defaultVocabularyYAML []byte

// Vocabulary holds the cue phrases and keyword expansions used to
// understand utterances without an LLM.
type Vocabulary struct {
	Navigation []string            `yaml:"navigation"`
	Locative   []string            `yaml:"locative"`
	Greetings  []string            `yaml:"greetings"`
	Thanks     []string            `yaml:"thanks"`
	Help       []string            `yaml:"help"`
	Stopwords  []string            `yaml:"stopwords"`
	Intents    map[string][]string `yaml:"intents"`

	stop map[string]bool
}

// chatCue is the kind of small talk in an utterance.
type chatCue int

const (
	chatNone chatCue = iota
	chatGreeting
	chatThanks
	chatHelp
)

// ParseVocabulary decodes a vocabulary from YAML.
func ParseVocabulary(data []byte) (*Vocabulary, error) {
	var v Vocabulary
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("parse vocabulary: %w", err)
	}
	v.stop = make(map[string]bool, len(v.Stopwords))
	for _, w := range v.Stopwords {
		v.stop[normalise(w)] = true
	}
	return &v, nil
}

// DefaultVocabulary returns the built-in vocabulary.
func DefaultVocabulary() *Vocabulary {
	v, err := ParseVocabulary(defaultVocabularyYAML)
	if err != nil {
		panic(err)
	}
	return v
}

// hasPhrase reports whether any phrase occurs in the normalised text on
// word boundaries.
func hasPhrase(text string, phrases []string) bool {
	padded := " " + text + " "
	for _, p := range phrases {
		if p = normalise(p); p != "" && strings.Contains(padded, " "+p+" ") {
			return true
		}
	}
	return false
}

// IsNavigation reports whether the utterance asks to be guided.
func (v *Vocabulary) IsNavigation(utterance string) bool {
	return hasPhrase(normalise(utterance), v.Navigation)
}

// IsLocative reports whether the utterance asks where something is.
func (v *Vocabulary) IsLocative(utterance string) bool {
	return hasPhrase(normalise(utterance), v.Locative)
}

func (v *Vocabulary) chat(text string) chatCue {
	switch {
	case hasPhrase(text, v.Help):
		return chatHelp
	case hasPhrase(text, v.Thanks):
		return chatThanks
	case hasPhrase(text, v.Greetings):
		return chatGreeting
	default:
		return chatNone
	}
}

// Tokens returns the content words of a normalised utterance.
func (v *Vocabulary) Tokens(text string) []string {
	var out []string
	for _, w := range strings.Fields(text) {
		if !v.stop[w] {
			out = append(out, w)
		}
	}
	return out
}

// Expand returns the search terms for the content words: the whole
// phrase, each word when there are several, and the keywords of any
// intent word such as "hungry".
func (v *Vocabulary) Expand(tokens []string) []string {
	if len(tokens) == 0 {
		return nil
	}
	seen := make(map[string]bool)
	var terms []string
	add := func(t string) {
		if t != "" && !seen[t] {
			seen[t] = true
			terms = append(terms, t)
		}
	}

	add(strings.Join(tokens, " "))
	for _, t := range tokens {
		if len(tokens) > 1 {
			add(t)
		}
		for _, kw := range v.Intents[t] {
			add(normalise(kw))
		}
	}
	return terms
}

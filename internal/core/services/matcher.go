package services

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hbollon/go-edlib"
	"github.com/sahilm/fuzzy"

	"github.com/custodia-labs/aisle/internal/core/domain"
)

// Score floors for containment matches.
const (
	wholeWordFloor    = 95.0
	prefixSuffixFloor = 92.0

	// minAffixLen keeps one- and two-letter queries from matching every
	// term that starts with them.
	minAffixLen = 3

	subsequenceBase  = 50.0
	subsequenceRange = 40.0
)

// Match scores every candidate against the query and returns those scoring
// at least minScore, best first. Ties are broken by shorter name, then by ID.
// topK <= 0 returns every match. An empty query fails with
// domain.ErrInvalidInput; no matches yields an empty slice.
func Match(query string, candidates []domain.Product, topK int, minScore float64) ([]domain.ScoredProduct, error) {
	q := normalise(query)
	if q == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}
	if minScore < 0 || minScore > 100 {
		return nil, fmt.Errorf("%w: min score %g outside 0-100", domain.ErrInvalidInput, minScore)
	}

	qWords := strings.Fields(q)
	results := make([]domain.ScoredProduct, 0)
	for _, p := range candidates {
		best := 0.0
		for _, term := range p.SearchTerms() {
			t := normalise(term.Text)
			if t == "" {
				continue
			}
			if s := similarity(q, qWords, t) * term.Weight; s > best {
				best = s
			}
		}
		// Compare the reported score so no result falls below minScore.
		if score := round1(best); score >= minScore && score > 0 {
			results = append(results, domain.ScoredProduct{Product: p, Score: score})
		}
	}

	sortScored(results)
	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// sortScored orders by score descending, then shorter name, then ID.
func sortScored(results []domain.ScoredProduct) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		la, lb := utf8.RuneCountInString(a.Name), utf8.RuneCountInString(b.Name)
		if la != lb {
			return la < lb
		}
		return a.ID < b.ID
	})
}

// similarity scores a normalised query against a normalised term on 0-100.
func similarity(q string, qWords []string, term string) float64 {
	score := levenshtein(q, term)

	tWords := strings.Fields(term)
	if s := tokenSimilarity(q, qWords, tWords); s > score {
		score = s
	}

	padded := " " + term + " "
	switch {
	case strings.Contains(padded, " "+q+" "):
		score = max(score, wholeWordFloor)
	case utf8.RuneCountInString(q) >= minAffixLen && (strings.HasPrefix(term, q) || strings.HasSuffix(term, q)):
		score = max(score, prefixSuffixFloor)
	}

	if s := subsequenceScore(q, term); s > score {
		score = s
	}
	return min(score, 100)
}

// levenshtein returns the normalised edit similarity on 0-100.
func levenshtein(a, b string) float64 {
	s, err := edlib.StringsSimilarity(a, b, edlib.Levenshtein)
	if err != nil {
		return 0
	}
	return float64(s) * 100
}

// tokenSimilarity tolerates partial matches: the whole query against each
// term word, and the average of each query word's best term word.
func tokenSimilarity(q string, qWords, tWords []string) float64 {
	if len(tWords) == 0 {
		return 0
	}
	best := 0.0
	for _, tw := range tWords {
		best = max(best, levenshtein(q, tw))
	}

	if len(qWords) > 1 {
		sum := 0.0
		for _, qw := range qWords {
			wordBest := 0.0
			for _, tw := range tWords {
				wordBest = max(wordBest, levenshtein(qw, tw))
			}
			sum += wordBest
		}
		best = max(best, sum/float64(len(qWords)))
	}
	return best
}

// subsequenceScore rewards queries whose letters appear in order in the
// term, scaled by how much of the term the query covers.
func subsequenceScore(q, term string) float64 {
	lq, lt := utf8.RuneCountInString(q), utf8.RuneCountInString(term)
	if lq > lt || lq < minAffixLen {
		return 0
	}
	if len(fuzzy.Find(q, []string{term})) == 0 {
		return 0
	}
	return subsequenceBase + subsequenceRange*float64(lq)/float64(lt)
}

// normalise lowercases, strips punctuation and collapses whitespace.
func normalise(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := true
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			space = false
		case unicode.IsSpace(r) || r == '-' || r == '_' || r == '/':
			if !space {
				b.WriteByte(' ')
				space = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}

func round1(f float64) float64 {
	return float64(int(f*10+0.5)) / 10
}

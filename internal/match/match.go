// Package match implements the free-text query engine.
//
// Matching is pure and deterministic: the engine normalizes and tokenizes the
// query, scores every corpus entry by weighted term overlap, and returns the
// best entry above a relevance threshold or a fixed fallback response.
// Identical input against an identical corpus snapshot always produces
// identical output.
package match

import (
	"log/slog"
	"sort"
	"strings"
	"unicode"

	"github.com/CrestlineDigital/leadflow/internal/models"
)

// Default scoring weights. Exact topic-tag matches outweigh body-text
// matches, and multi-token phrase matches outweigh single tokens.
const (
	DefaultTagWeight    = 4.0
	DefaultPhraseWeight = 3.0
	DefaultTokenWeight  = 1.0
	DefaultThreshold    = 2.0
)

// Config holds the tunable scoring weights and the minimum relevance
// threshold an entry must clear to be returned instead of the fallback.
type Config struct {
	TagWeight    float64
	PhraseWeight float64
	TokenWeight  float64
	Threshold    float64
}

// DefaultConfig returns the documented default weights.
func DefaultConfig() Config {
	return Config{
		TagWeight:    DefaultTagWeight,
		PhraseWeight: DefaultPhraseWeight,
		TokenWeight:  DefaultTokenWeight,
		Threshold:    DefaultThreshold,
	}
}

// Result is the outcome of a match call. Entry is nil on the fallback path;
// Message, QuickActions and Suggestions are always populated so the caller
// never surfaces a dead end.
type Result struct {
	Entry        *models.KnowledgeEntry
	Message      string
	QuickActions []models.QuickAction
	Suggestions  []string
	Score        float64
}

// Fallback response content used when no entry clears the threshold.
const fallbackMessage = "I don't have a specific answer for that, but our team does. " +
	"You can reach us directly and we'll get back to you the same business day."

var fallbackQuickActions = []models.QuickAction{
	{Type: models.QuickActionContact, Label: "Email us", Payload: "mailto:hello@crestlinedigital.com"},
	{Type: models.QuickActionNavigate, Label: "Contact page", Payload: "/contact"},
}

var fallbackSuggestions = []string{
	"What services do you offer?",
	"How much does a website cost?",
	"How do I get in touch?",
}

// stopwords are dropped during tokenization so filler words never tip a
// score over the threshold.
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "can": {}, "do": {}, "does": {},
	"for": {}, "how": {}, "i": {}, "in": {}, "is": {}, "it": {}, "much": {},
	"my": {}, "of": {}, "on": {}, "or": {}, "the": {}, "to": {}, "we": {},
	"what": {}, "when": {}, "where": {}, "which": {}, "who": {}, "why": {},
	"with": {}, "you": {}, "your": {},
}

// Engine scores free-text queries against a corpus snapshot. It is stateless
// across calls and safe for concurrent use.
type Engine struct {
	cfg Config
}

// NewEngine creates a query engine with the given config. The zero-value
// Config selects the defaults; any other config is used exactly as given, so
// individual weights and the threshold may be set to zero (a zero threshold
// accepts any entry with a positive score).
func NewEngine(cfg Config) *Engine {
	if cfg == (Config{}) {
		cfg = DefaultConfig()
	}
	return &Engine{cfg: cfg}
}

// Match scores every entry in the corpus snapshot against the query and
// returns the best entry above the threshold, or the fallback response.
// Ties break by corpus order: the first-registered entry wins.
func (e *Engine) Match(query string, corpus []models.KnowledgeEntry) Result {
	tokens := Tokenize(query)
	slog.Debug("match query tokenized", "query", query, "tokens", len(tokens))

	if len(tokens) == 0 {
		return e.fallback()
	}

	bestIdx := -1
	bestScore := 0.0
	for i := range corpus {
		score := e.scoreEntry(tokens, &corpus[i])
		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}

	if bestIdx < 0 || bestScore < e.cfg.Threshold {
		slog.Debug("match below threshold, using fallback", "best_score", bestScore)
		return e.fallback()
	}

	entry := corpus[bestIdx]
	slog.Debug("match found entry", "entry", entry.ID, "topic", entry.Topic, "score", bestScore)
	return Result{
		Entry:        &entry,
		Message:      entry.Content,
		QuickActions: entry.QuickActions,
		Suggestions:  entry.Suggestions,
		Score:        bestScore,
	}
}

// scoreEntry computes the weighted overlap between the query tokens and one
// entry's topic tag and body text.
func (e *Engine) scoreEntry(tokens []string, entry *models.KnowledgeEntry) float64 {
	tagTokens := Tokenize(entry.Topic)
	tagSet := make(map[string]struct{}, len(tagTokens))
	for _, t := range tagTokens {
		tagSet[t] = struct{}{}
	}

	body := normalize(entry.Content)
	bodyTokens := Tokenize(entry.Content)
	bodySet := make(map[string]struct{}, len(bodyTokens))
	for _, t := range bodyTokens {
		bodySet[t] = struct{}{}
	}

	var score float64

	// Single-token overlap. Each distinct query token is counted once.
	seen := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		if _, ok := tagSet[tok]; ok {
			score += e.cfg.TagWeight
			continue
		}
		if _, ok := bodySet[tok]; ok {
			score += e.cfg.TokenWeight
		}
	}

	// Adjacent-token phrases found verbatim in the body weigh extra.
	for i := 0; i+1 < len(tokens); i++ {
		phrase := tokens[i] + " " + tokens[i+1]
		if strings.Contains(body, phrase) {
			score += e.cfg.PhraseWeight
		}
	}

	return score
}

func (e *Engine) fallback() Result {
	// Copies keep the shared fallback slices immutable from the caller's side.
	actions := make([]models.QuickAction, len(fallbackQuickActions))
	copy(actions, fallbackQuickActions)
	suggestions := make([]string, len(fallbackSuggestions))
	copy(suggestions, fallbackSuggestions)
	return Result{
		Message:      fallbackMessage,
		QuickActions: actions,
		Suggestions:  suggestions,
	}
}

// normalize lower-cases the text, strips punctuation and collapses whitespace.
func normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	lastSpace := true
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		default:
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// Tokenize normalizes text and splits it into terms, dropping stopwords.
func Tokenize(text string) []string {
	fields := strings.Fields(normalize(text))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, skip := stopwords[f]; skip {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// RankAll scores every entry and returns indices sorted by descending score
// with corpus-order tie break. Exposed for diagnostics endpoints and tests.
func (e *Engine) RankAll(query string, corpus []models.KnowledgeEntry) []int {
	tokens := Tokenize(query)
	type scored struct {
		idx   int
		score float64
	}
	ranked := make([]scored, 0, len(corpus))
	for i := range corpus {
		ranked = append(ranked, scored{idx: i, score: e.scoreEntry(tokens, &corpus[i])})
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].score > ranked[b].score
	})
	out := make([]int, len(ranked))
	for i, r := range ranked {
		out[i] = r.idx
	}
	return out
}

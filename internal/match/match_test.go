package match

import (
	"reflect"
	"testing"

	"github.com/CrestlineDigital/leadflow/internal/models"
)

func testCorpus() []models.KnowledgeEntry {
	return []models.KnowledgeEntry{
		{
			ID:      "services",
			Topic:   "services",
			Content: "We build websites, e-commerce stores and custom software for growing businesses.",
			QuickActions: []models.QuickAction{
				{Type: models.QuickActionNavigate, Label: "Our services", Payload: "/services"},
			},
			Suggestions: []string{"How much does a website cost?"},
		},
		{
			ID:      "pricing",
			Topic:   "pricing",
			Content: "Microsoft 365 plans start at $6 per user per month. Website projects are quoted per scope; pricing depends on the features you need.",
			QuickActions: []models.QuickAction{
				{Type: models.QuickActionNavigate, Label: "See pricing", Payload: "/pricing"},
			},
			Suggestions: []string{"What's included in a website project?"},
		},
		{
			ID:      "support",
			Topic:   "support",
			Content: "Our support desk answers tickets within four business hours on weekdays.",
		},
	}
}

func TestTokenizeNormalizes(t *testing.T) {
	got := Tokenize("  How MUCH does Microsoft-365 COST?! ")
	want := []string{"microsoft", "365", "cost"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize = %v, want %v", got, want)
	}
}

func TestMatchFindsPricingEntry(t *testing.T) {
	e := NewEngine(DefaultConfig())
	res := e.Match("How much does Microsoft 365 cost?", testCorpus())
	if res.Entry == nil {
		t.Fatalf("expected a match, got fallback: %q", res.Message)
	}
	if res.Entry.ID != "pricing" {
		t.Errorf("matched %s, want pricing", res.Entry.ID)
	}
	if res.Message != res.Entry.Content {
		t.Errorf("message should be the entry content")
	}
}

func TestMatchTagOutweighsBody(t *testing.T) {
	e := NewEngine(DefaultConfig())
	// "support" appears as the topic tag of one entry; the tag match must win
	// even though other entries mention related words in their bodies.
	res := e.Match("support", testCorpus())
	if res.Entry == nil || res.Entry.ID != "support" {
		t.Fatalf("expected support entry, got %+v", res.Entry)
	}
}

func TestMatchFallbackWhenNoOverlap(t *testing.T) {
	e := NewEngine(DefaultConfig())
	res := e.Match("zebra migration patterns in the serengeti", testCorpus())
	if res.Entry != nil {
		t.Fatalf("expected fallback, matched %s", res.Entry.ID)
	}
	if len(res.QuickActions) == 0 {
		t.Errorf("fallback must carry quick actions")
	}
	if len(res.Suggestions) == 0 {
		t.Errorf("fallback must carry suggestions")
	}
	if res.Message == "" {
		t.Errorf("fallback must carry a message")
	}
}

func TestMatchEmptyQueryFallsBack(t *testing.T) {
	e := NewEngine(DefaultConfig())
	res := e.Match("   ?!  ", testCorpus())
	if res.Entry != nil {
		t.Fatalf("expected fallback for empty query")
	}
}

func TestMatchDeterministic(t *testing.T) {
	e := NewEngine(DefaultConfig())
	corpus := testCorpus()
	a := e.Match("website pricing", corpus)
	b := e.Match("website pricing", corpus)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("identical calls produced different results:\n%+v\n%+v", a, b)
	}
}

func TestNewEngineConfigRange(t *testing.T) {
	// The zero-value config selects the defaults.
	e := NewEngine(Config{})
	res := e.Match("zebra migration patterns in the serengeti", testCorpus())
	if res.Entry != nil {
		t.Fatalf("default threshold should fall back, matched %s", res.Entry.ID)
	}

	// An explicit zero threshold accepts any entry with a positive score.
	e = NewEngine(Config{TagWeight: 4, PhraseWeight: 3, TokenWeight: 1, Threshold: 0})
	res = e.Match("migration", []models.KnowledgeEntry{
		{ID: "cloud", Topic: "cloud", Content: "We handle every migration end to end."},
	})
	if res.Entry == nil || res.Entry.ID != "cloud" {
		t.Fatalf("zero threshold should accept a single-token match, got %+v", res.Entry)
	}

	// An explicit zero token weight silences body-only overlap.
	e = NewEngine(Config{TagWeight: 4, PhraseWeight: 3, TokenWeight: 0, Threshold: 2})
	res = e.Match("migration", []models.KnowledgeEntry{
		{ID: "cloud", Topic: "cloud", Content: "We handle every migration end to end."},
	})
	if res.Entry != nil {
		t.Fatalf("zero token weight should fall back, matched %s", res.Entry.ID)
	}
}

func TestMatchTieBreaksByCorpusOrder(t *testing.T) {
	corpus := []models.KnowledgeEntry{
		{ID: "first", Topic: "hosting", Content: "Managed hosting plans."},
		{ID: "second", Topic: "hosting", Content: "Managed hosting plans."},
	}
	e := NewEngine(DefaultConfig())
	res := e.Match("hosting plans", corpus)
	if res.Entry == nil || res.Entry.ID != "first" {
		t.Fatalf("tie should resolve to first-registered entry, got %+v", res.Entry)
	}
}

func TestRankAllOrdering(t *testing.T) {
	e := NewEngine(DefaultConfig())
	order := e.RankAll("How much does Microsoft 365 cost?", testCorpus())
	if len(order) != 3 {
		t.Fatalf("RankAll returned %d entries, want 3", len(order))
	}
	if order[0] != 1 {
		t.Errorf("top-ranked index = %d, want 1 (pricing)", order[0])
	}
}

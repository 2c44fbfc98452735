package knowledge

import (
	"context"
	"errors"
	"testing"

	"github.com/CrestlineDigital/leadflow/internal/models"
)

func TestStaticCorpusReturnsCopy(t *testing.T) {
	c := NewStaticCorpus(nil)
	ctx := context.Background()

	first, err := c.Entries(ctx)
	if err != nil {
		t.Fatalf("Entries failed: %v", err)
	}
	if len(first) == 0 {
		t.Fatalf("default corpus should not be empty")
	}

	first[0].Content = "mutated"
	second, err := c.Entries(ctx)
	if err != nil {
		t.Fatalf("Entries failed: %v", err)
	}
	if second[0].Content == "mutated" {
		t.Errorf("snapshot mutation leaked into the corpus")
	}
}

func TestDefaultEntriesHaveFollowUps(t *testing.T) {
	ids := make(map[string]bool)
	for _, e := range DefaultEntries() {
		if e.ID == "" || e.Topic == "" || e.Content == "" {
			t.Errorf("entry %q missing id, topic or content", e.ID)
		}
		if ids[e.ID] {
			t.Errorf("duplicate entry id %q", e.ID)
		}
		ids[e.ID] = true
		if len(e.QuickActions) == 0 && len(e.Suggestions) == 0 {
			t.Errorf("entry %q has no follow-up actions or suggestions", e.ID)
		}
		for _, qa := range e.QuickActions {
			if !models.IsValidQuickActionType(qa.Type) {
				t.Errorf("entry %q has invalid quick action type %q", e.ID, qa.Type)
			}
			if qa.Payload == "" {
				t.Errorf("entry %q has quick action without payload", e.ID)
			}
		}
	}
}

type failingEntryStore struct{}

func (failingEntryStore) GetKnowledgeEntries() ([]models.KnowledgeEntry, error) {
	return nil, errors.New("connection refused")
}

func TestStoreCorpusWrapsStoreError(t *testing.T) {
	c := NewStoreCorpus(failingEntryStore{})
	_, err := c.Entries(context.Background())
	if err == nil {
		t.Fatalf("expected error from failing store")
	}
}

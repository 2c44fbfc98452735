// Package knowledge provides read-only access to the assistant's knowledge
// corpus.
//
// The corpus is owned and refreshed out of band by the content store; the
// query engine takes a snapshot per call and performs no cache invalidation.
package knowledge

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/CrestlineDigital/leadflow/internal/models"
)

// Corpus supplies a snapshot of knowledge entries for one match call.
type Corpus interface {
	Entries(ctx context.Context) ([]models.KnowledgeEntry, error)
}

// StaticCorpus serves a fixed, in-memory entry list. It backs the default
// deployment and all tests.
type StaticCorpus struct {
	entries []models.KnowledgeEntry
}

// NewStaticCorpus creates a corpus over the given entries. A nil slice uses
// the built-in site corpus.
func NewStaticCorpus(entries []models.KnowledgeEntry) *StaticCorpus {
	if entries == nil {
		entries = DefaultEntries()
	}
	return &StaticCorpus{entries: entries}
}

// Entries returns a copy of the entry list so callers cannot mutate the
// corpus through the snapshot.
func (c *StaticCorpus) Entries(ctx context.Context) ([]models.KnowledgeEntry, error) {
	out := make([]models.KnowledgeEntry, len(c.entries))
	copy(out, c.entries)
	return out, nil
}

// EntryStore is the subset of the persistence layer the store-backed corpus
// needs.
type EntryStore interface {
	GetKnowledgeEntries() ([]models.KnowledgeEntry, error)
}

// StoreCorpus reads entries from the persistence layer on every call, so
// content updates land without a process restart.
type StoreCorpus struct {
	store EntryStore
}

// NewStoreCorpus creates a corpus backed by the persistence layer.
func NewStoreCorpus(st EntryStore) *StoreCorpus {
	slog.Debug("Creating store-backed knowledge corpus")
	return &StoreCorpus{store: st}
}

// Entries fetches the current entry set from the store.
func (c *StoreCorpus) Entries(ctx context.Context) ([]models.KnowledgeEntry, error) {
	entries, err := c.store.GetKnowledgeEntries()
	if err != nil {
		slog.Error("StoreCorpus Entries failed", "error", err)
		return nil, fmt.Errorf("fetch knowledge entries: %w", err)
	}
	slog.Debug("StoreCorpus Entries fetched", "count", len(entries))
	return entries, nil
}

// DefaultEntries returns the built-in site corpus: products, pricing,
// policies and FAQs, each with its follow-up actions.
func DefaultEntries() []models.KnowledgeEntry {
	return []models.KnowledgeEntry{
		{
			ID:      "services-overview",
			Topic:   "services",
			Content: "We design and build business websites, e-commerce stores, Microsoft 365 workplaces and custom software, and we run managed IT support and cloud migrations for organizations of every size.",
			QuickActions: []models.QuickAction{
				{Type: models.QuickActionNavigate, Label: "Browse services", Icon: "grid", Payload: "/services"},
				{Type: models.QuickActionAsk, Label: "Pricing", Icon: "tag", Payload: "How much do your services cost?"},
			},
			Suggestions: []string{
				"How much does a website cost?",
				"Do you support Microsoft 365?",
			},
		},
		{
			ID:      "pricing",
			Topic:   "pricing",
			Content: "Website projects start at $2,500 and are quoted per scope. Microsoft 365 licensing starts at $6 per user per month plus a one-time deployment fee. Managed IT support is billed per seat; ask us for the current rate card.",
			QuickActions: []models.QuickAction{
				{Type: models.QuickActionNavigate, Label: "Pricing details", Icon: "tag", Payload: "/pricing"},
				{Type: models.QuickActionContact, Label: "Request a quote", Icon: "mail", Payload: "mailto:sales@crestlinedigital.com"},
			},
			Suggestions: []string{
				"What's included in a website project?",
				"Do you offer payment plans?",
			},
		},
		{
			ID:      "microsoft-365",
			Topic:   "microsoft 365",
			Content: "We are a Microsoft partner: we migrate mail and files to Microsoft 365, configure Teams and SharePoint, and manage licensing so you only pay for the seats you use.",
			QuickActions: []models.QuickAction{
				{Type: models.QuickActionNavigate, Label: "Microsoft 365", Icon: "cloud", Payload: "/services/microsoft-365"},
				{Type: models.QuickActionAsk, Label: "Migration time", Payload: "How long does a Microsoft 365 migration take?"},
			},
			Suggestions: []string{
				"How much does Microsoft 365 cost?",
				"Can you migrate us from Google Workspace?",
			},
		},
		{
			ID:      "support-policy",
			Topic:   "support",
			Content: "Support tickets are answered within four business hours, weekdays 8am to 6pm. Managed IT customers get a 24/7 emergency line and a named engineer.",
			QuickActions: []models.QuickAction{
				{Type: models.QuickActionContact, Label: "Open a ticket", Icon: "life-buoy", Payload: "mailto:support@crestlinedigital.com"},
			},
			Suggestions: []string{
				"What does managed IT support include?",
			},
		},
		{
			ID:      "security",
			Topic:   "security compliance",
			Content: "Our security practice covers compliance reviews, endpoint protection rollouts and staff phishing training. We work to CIS benchmarks and can prepare you for SOC 2 or ISO 27001 audits.",
			QuickActions: []models.QuickAction{
				{Type: models.QuickActionNavigate, Label: "Security services", Icon: "shield", Payload: "/services/security"},
			},
			Suggestions: []string{
				"Do you do compliance audits?",
				"How fast can you start a security review?",
			},
		},
		{
			ID:      "process-faq",
			Topic:   "process timeline",
			Content: "A typical website project runs four to eight weeks: discovery, design, build, launch. You get a dedicated project channel and weekly demos; larger builds and migrations are phased with a written plan.",
			QuickActions: []models.QuickAction{
				{Type: models.QuickActionAsk, Label: "Kick-off steps", Payload: "How do we get started on a project?"},
			},
			Suggestions: []string{
				"How long does a project take?",
				"Who will work on my project?",
			},
		},
		{
			ID:      "contact",
			Topic:   "contact",
			Content: "You can reach us at hello@crestlinedigital.com, call +1 (555) 014-2030, or book a free 30-minute consultation straight from the site.",
			QuickActions: []models.QuickAction{
				{Type: models.QuickActionContact, Label: "Email us", Icon: "mail", Payload: "mailto:hello@crestlinedigital.com"},
				{Type: models.QuickActionNavigate, Label: "Book a call", Icon: "calendar", Payload: "/book"},
			},
			Suggestions: []string{
				"Can I book a consultation?",
			},
		},
	}
}

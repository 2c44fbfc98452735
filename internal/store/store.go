// Package store provides storage backends for leadflow.
//
// It includes an in-memory store for tests and ephemeral deployments, plus
// SQLite and PostgreSQL backends for persistent lead and knowledge storage.
package store

import (
	"sort"
	"strings"
	"sync"

	"github.com/CrestlineDigital/leadflow/internal/models"
)

// Store persists submitted leads and the editable knowledge corpus.
type Store interface {
	SaveLead(lead models.Lead) error
	GetLeads() ([]models.Lead, error)
	GetLead(id string) (*models.Lead, error)

	SaveKnowledgeEntry(entry models.KnowledgeEntry) error
	GetKnowledgeEntries() ([]models.KnowledgeEntry, error)
	DeleteKnowledgeEntry(id string) error

	Close() error
}

// Opts holds configuration options for store backends.
type Opts struct {
	DSN string
}

// Option defines a configuration option for store backends.
type Option func(*Opts)

// WithPostgresDSN sets a PostgreSQL connection string.
func WithPostgresDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// WithSQLiteDSN sets a SQLite database file path.
func WithSQLiteDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// DetectDSNType reports "postgres" for PostgreSQL-style connection strings
// and "sqlite" for everything else (treated as a file path).
func DetectDSNType(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.Contains(dsn, "host=") {
		return "postgres"
	}
	return "sqlite"
}

// InMemoryStore is a mutex-guarded map-backed store.
type InMemoryStore struct {
	mu      sync.RWMutex
	leads   map[string]models.Lead
	entries []models.KnowledgeEntry
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{leads: make(map[string]models.Lead)}
}

// SaveLead stores or replaces a lead by id.
func (s *InMemoryStore) SaveLead(lead models.Lead) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leads[lead.ID] = lead
	return nil
}

// GetLeads returns all leads ordered by creation time.
func (s *InMemoryStore) GetLeads() ([]models.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Lead, 0, len(s.leads))
	for _, l := range s.leads {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// GetLead returns the lead with the given id, or nil if absent.
func (s *InMemoryStore) GetLead(id string) (*models.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.leads[id]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

// SaveKnowledgeEntry stores or replaces an entry by id, preserving insertion
// order for existing ids.
func (s *InMemoryStore) SaveKnowledgeEntry(entry models.KnowledgeEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.entries {
		if e.ID == entry.ID {
			s.entries[i] = entry
			return nil
		}
	}
	s.entries = append(s.entries, entry)
	return nil
}

// GetKnowledgeEntries returns entries in insertion order.
func (s *InMemoryStore) GetKnowledgeEntries() ([]models.KnowledgeEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.KnowledgeEntry, len(s.entries))
	copy(out, s.entries)
	return out, nil
}

// DeleteKnowledgeEntry removes an entry by id. Deleting an absent id is a
// no-op.
func (s *InMemoryStore) DeleteKnowledgeEntry(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.entries {
		if e.ID == id {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return nil
		}
	}
	return nil
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error { return nil }

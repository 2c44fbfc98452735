// Package store provides storage backends for leadflow.
//
// This file implements the PostgreSQL-backed store.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "embed"

	"github.com/CrestlineDigital/leadflow/internal/models"
	_ "github.com/lib/pq"
)

// Database connection pool configuration constants
const (
	// DefaultMaxOpenConns is the default maximum number of open connections to the database
	DefaultMaxOpenConns = 25
	// DefaultMaxIdleConns is the default maximum number of idle connections in the pool
	DefaultMaxIdleConns = 25
	// DefaultConnMaxLifetime is the default maximum amount of time a connection may be reused
	DefaultConnMaxLifetime = 5 * time.Minute
)

//go:embed migrations_postgres.sql
var postgresMigrations string

// PostgresStore persists leads and knowledge entries in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new Postgres store based on provided options.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("PostgresStore.NewPostgresStore: creating Postgres store", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		slog.Error("Failed to open Postgres connection", "error", err)
		return nil, err
	}

	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	if err := db.Ping(); err != nil {
		slog.Error("Postgres ping failed", "error", err)
		return nil, err
	}

	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("Postgres migrations applied successfully")

	return &PostgresStore{db: db}, nil
}

// SaveLead stores or replaces a lead by id.
func (s *PostgresStore) SaveLead(lead models.Lead) error {
	dataJSON, err := json.Marshal(lead.Data)
	if err != nil {
		slog.Error("PostgresStore SaveLead marshal failed", "error", err, "id", lead.ID)
		return fmt.Errorf("marshal lead data: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO leads (id, data, lead_score, is_high_value, created_at) VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, lead_score = EXCLUDED.lead_score,
		     is_high_value = EXCLUDED.is_high_value`,
		lead.ID, string(dataJSON), lead.LeadScore, lead.IsHighValue, lead.CreatedAt,
	)
	if err != nil {
		slog.Error("PostgresStore SaveLead failed", "error", err, "id", lead.ID)
		return fmt.Errorf("failed to insert lead %s: %w", lead.ID, err)
	}
	slog.Debug("PostgresStore SaveLead succeeded", "id", lead.ID, "score", lead.LeadScore)
	return nil
}

// GetLeads returns all leads ordered by creation time.
func (s *PostgresStore) GetLeads() ([]models.Lead, error) {
	rows, err := s.db.Query(`SELECT id, data, lead_score, is_high_value, created_at FROM leads ORDER BY created_at`)
	if err != nil {
		slog.Error("PostgresStore GetLeads query failed", "error", err)
		return nil, fmt.Errorf("failed to query leads: %w", err)
	}
	defer rows.Close()

	var leads []models.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			slog.Error("PostgresStore GetLeads scan failed", "error", err)
			return nil, err
		}
		leads = append(leads, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate lead rows: %w", err)
	}
	slog.Debug("PostgresStore GetLeads succeeded", "count", len(leads))
	return leads, nil
}

// GetLead returns the lead with the given id, or nil if absent.
func (s *PostgresStore) GetLead(id string) (*models.Lead, error) {
	row := s.db.QueryRow(`SELECT id, data, lead_score, is_high_value, created_at FROM leads WHERE id = $1`, id)
	lead, err := scanLeadRow(row)
	if err == sql.ErrNoRows {
		slog.Debug("PostgresStore GetLead not found", "id", id)
		return nil, nil
	}
	if err != nil {
		slog.Error("PostgresStore GetLead failed", "error", err, "id", id)
		return nil, err
	}
	return &lead, nil
}

// SaveKnowledgeEntry stores or replaces a knowledge entry, assigning new
// entries the next position so corpus order stays stable.
func (s *PostgresStore) SaveKnowledgeEntry(entry models.KnowledgeEntry) error {
	actionsJSON, suggestionsJSON, err := marshalEntryExtras(entry)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`INSERT INTO knowledge_entries (id, topic, content, quick_actions, suggestions, position)
		 VALUES ($1, $2, $3, $4, $5, (SELECT COALESCE(MAX(position), 0) + 1 FROM knowledge_entries))
		 ON CONFLICT (id) DO UPDATE SET topic = EXCLUDED.topic, content = EXCLUDED.content,
		     quick_actions = EXCLUDED.quick_actions, suggestions = EXCLUDED.suggestions`,
		entry.ID, entry.Topic, entry.Content, actionsJSON, suggestionsJSON,
	)
	if err != nil {
		slog.Error("PostgresStore SaveKnowledgeEntry failed", "error", err, "id", entry.ID)
		return fmt.Errorf("failed to save knowledge entry %s: %w", entry.ID, err)
	}
	slog.Debug("PostgresStore SaveKnowledgeEntry succeeded", "id", entry.ID)
	return nil
}

// GetKnowledgeEntries returns entries in registration order.
func (s *PostgresStore) GetKnowledgeEntries() ([]models.KnowledgeEntry, error) {
	rows, err := s.db.Query(`SELECT id, topic, content, quick_actions, suggestions FROM knowledge_entries ORDER BY position`)
	if err != nil {
		slog.Error("PostgresStore GetKnowledgeEntries query failed", "error", err)
		return nil, fmt.Errorf("failed to query knowledge entries: %w", err)
	}
	defer rows.Close()

	var entries []models.KnowledgeEntry
	for rows.Next() {
		entry, err := scanKnowledgeEntry(rows)
		if err != nil {
			slog.Error("PostgresStore GetKnowledgeEntries scan failed", "error", err)
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate knowledge entry rows: %w", err)
	}
	slog.Debug("PostgresStore GetKnowledgeEntries succeeded", "count", len(entries))
	return entries, nil
}

// DeleteKnowledgeEntry removes an entry by id.
func (s *PostgresStore) DeleteKnowledgeEntry(id string) error {
	_, err := s.db.Exec(`DELETE FROM knowledge_entries WHERE id = $1`, id)
	if err != nil {
		slog.Error("PostgresStore DeleteKnowledgeEntry failed", "error", err, "id", id)
		return fmt.Errorf("failed to delete knowledge entry %s: %w", id, err)
	}
	return nil
}

// Close closes the Postgres database connection.
func (s *PostgresStore) Close() error {
	slog.Debug("Closing Postgres database connection")
	return s.db.Close()
}

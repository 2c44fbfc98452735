// Package store provides storage backends for leadflow.
//
// This file implements the SQLite-backed store.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "embed"

	"github.com/CrestlineDigital/leadflow/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

// DefaultDirPermissions defines the default permissions for database directories
const DefaultDirPermissions = 0755

//go:embed migrations_sqlite.sql
var sqliteMigrations string

// SQLiteStore persists leads and knowledge entries in a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store with the given DSN.
// The DSN is a file path to the SQLite database file; a missing directory
// is created.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewSQLiteStore invoked", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		slog.Error("Failed to open SQLite connection", "error", err)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("SQLite ping failed", "error", err)
		return nil, err
	}

	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLite migrations applied successfully")

	return &SQLiteStore{db: db}, nil
}

// SaveLead stores or replaces a lead by id.
func (s *SQLiteStore) SaveLead(lead models.Lead) error {
	dataJSON, err := json.Marshal(lead.Data)
	if err != nil {
		slog.Error("SQLiteStore SaveLead marshal failed", "error", err, "id", lead.ID)
		return fmt.Errorf("marshal lead data: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO leads (id, data, lead_score, is_high_value, created_at) VALUES (?, ?, ?, ?, ?)`,
		lead.ID, string(dataJSON), lead.LeadScore, lead.IsHighValue, lead.CreatedAt,
	)
	if err != nil {
		slog.Error("SQLiteStore SaveLead failed", "error", err, "id", lead.ID)
		return fmt.Errorf("failed to insert lead %s: %w", lead.ID, err)
	}
	slog.Debug("SQLiteStore SaveLead succeeded", "id", lead.ID, "score", lead.LeadScore)
	return nil
}

// GetLeads returns all leads ordered by creation time.
func (s *SQLiteStore) GetLeads() ([]models.Lead, error) {
	rows, err := s.db.Query(`SELECT id, data, lead_score, is_high_value, created_at FROM leads ORDER BY created_at`)
	if err != nil {
		slog.Error("SQLiteStore GetLeads query failed", "error", err)
		return nil, fmt.Errorf("failed to query leads: %w", err)
	}
	defer rows.Close()

	var leads []models.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			slog.Error("SQLiteStore GetLeads scan failed", "error", err)
			return nil, err
		}
		leads = append(leads, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate lead rows: %w", err)
	}
	slog.Debug("SQLiteStore GetLeads succeeded", "count", len(leads))
	return leads, nil
}

// GetLead returns the lead with the given id, or nil if absent.
func (s *SQLiteStore) GetLead(id string) (*models.Lead, error) {
	row := s.db.QueryRow(`SELECT id, data, lead_score, is_high_value, created_at FROM leads WHERE id = ?`, id)
	lead, err := scanLeadRow(row)
	if err == sql.ErrNoRows {
		slog.Debug("SQLiteStore GetLead not found", "id", id)
		return nil, nil
	}
	if err != nil {
		slog.Error("SQLiteStore GetLead failed", "error", err, "id", id)
		return nil, err
	}
	return &lead, nil
}

// SaveKnowledgeEntry stores or replaces a knowledge entry, assigning new
// entries the next position so corpus order stays stable.
func (s *SQLiteStore) SaveKnowledgeEntry(entry models.KnowledgeEntry) error {
	actionsJSON, suggestionsJSON, err := marshalEntryExtras(entry)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`INSERT INTO knowledge_entries (id, topic, content, quick_actions, suggestions, position)
		 VALUES (?, ?, ?, ?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM knowledge_entries))
		 ON CONFLICT(id) DO UPDATE SET topic = excluded.topic, content = excluded.content,
		     quick_actions = excluded.quick_actions, suggestions = excluded.suggestions`,
		entry.ID, entry.Topic, entry.Content, actionsJSON, suggestionsJSON,
	)
	if err != nil {
		slog.Error("SQLiteStore SaveKnowledgeEntry failed", "error", err, "id", entry.ID)
		return fmt.Errorf("failed to save knowledge entry %s: %w", entry.ID, err)
	}
	slog.Debug("SQLiteStore SaveKnowledgeEntry succeeded", "id", entry.ID)
	return nil
}

// GetKnowledgeEntries returns entries in registration order.
func (s *SQLiteStore) GetKnowledgeEntries() ([]models.KnowledgeEntry, error) {
	rows, err := s.db.Query(`SELECT id, topic, content, quick_actions, suggestions FROM knowledge_entries ORDER BY position`)
	if err != nil {
		slog.Error("SQLiteStore GetKnowledgeEntries query failed", "error", err)
		return nil, fmt.Errorf("failed to query knowledge entries: %w", err)
	}
	defer rows.Close()

	var entries []models.KnowledgeEntry
	for rows.Next() {
		entry, err := scanKnowledgeEntry(rows)
		if err != nil {
			slog.Error("SQLiteStore GetKnowledgeEntries scan failed", "error", err)
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate knowledge entry rows: %w", err)
	}
	slog.Debug("SQLiteStore GetKnowledgeEntries succeeded", "count", len(entries))
	return entries, nil
}

// DeleteKnowledgeEntry removes an entry by id.
func (s *SQLiteStore) DeleteKnowledgeEntry(id string) error {
	_, err := s.db.Exec(`DELETE FROM knowledge_entries WHERE id = ?`, id)
	if err != nil {
		slog.Error("SQLiteStore DeleteKnowledgeEntry failed", "error", err, "id", id)
		return fmt.Errorf("failed to delete knowledge entry %s: %w", id, err)
	}
	return nil
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	slog.Debug("Closing SQLite database connection")
	return s.db.Close()
}

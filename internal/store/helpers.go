package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/CrestlineDigital/leadflow/internal/models"
)

// rowScanner abstracts sql.Row and sql.Rows for the shared scan helpers.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanLeadFrom(sc rowScanner) (models.Lead, error) {
	var lead models.Lead
	var dataJSON string
	if err := sc.Scan(&lead.ID, &dataJSON, &lead.LeadScore, &lead.IsHighValue, &lead.CreatedAt); err != nil {
		return lead, err
	}
	if err := json.Unmarshal([]byte(dataJSON), &lead.Data); err != nil {
		return lead, fmt.Errorf("unmarshal lead data for %s: %w", lead.ID, err)
	}
	return lead, nil
}

// scanLead scans a Lead from sql.Rows.
func scanLead(rows *sql.Rows) (models.Lead, error) {
	return scanLeadFrom(rows)
}

// scanLeadRow scans a Lead from a single sql.Row.
func scanLeadRow(row *sql.Row) (models.Lead, error) {
	return scanLeadFrom(row)
}

// scanKnowledgeEntry scans a KnowledgeEntry from sql.Rows.
func scanKnowledgeEntry(rows *sql.Rows) (models.KnowledgeEntry, error) {
	var entry models.KnowledgeEntry
	var actionsJSON, suggestionsJSON sql.NullString
	if err := rows.Scan(&entry.ID, &entry.Topic, &entry.Content, &actionsJSON, &suggestionsJSON); err != nil {
		return entry, fmt.Errorf("scan knowledge entry failed: %w", err)
	}
	if actionsJSON.Valid && actionsJSON.String != "" {
		if err := json.Unmarshal([]byte(actionsJSON.String), &entry.QuickActions); err != nil {
			return entry, fmt.Errorf("unmarshal quick actions for %s: %w", entry.ID, err)
		}
	}
	if suggestionsJSON.Valid && suggestionsJSON.String != "" {
		if err := json.Unmarshal([]byte(suggestionsJSON.String), &entry.Suggestions); err != nil {
			return entry, fmt.Errorf("unmarshal suggestions for %s: %w", entry.ID, err)
		}
	}
	return entry, nil
}

// marshalEntryExtras serializes the quick actions and suggestions of an
// entry for nullable text columns.
func marshalEntryExtras(entry models.KnowledgeEntry) (interface{}, interface{}, error) {
	var actionsJSON, suggestionsJSON interface{}
	if len(entry.QuickActions) > 0 {
		b, err := json.Marshal(entry.QuickActions)
		if err != nil {
			return nil, nil, fmt.Errorf("marshal quick actions for %s: %w", entry.ID, err)
		}
		actionsJSON = string(b)
	}
	if len(entry.Suggestions) > 0 {
		b, err := json.Marshal(entry.Suggestions)
		if err != nil {
			return nil, nil, fmt.Errorf("marshal suggestions for %s: %w", entry.ID, err)
		}
		suggestionsJSON = string(b)
	}
	return actionsJSON, suggestionsJSON, nil
}

// Package leads handles qualified-lead submission: scoring, persistence,
// and sales-team notification.
package leads

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/CrestlineDigital/leadflow/internal/analytics"
	"github.com/CrestlineDigital/leadflow/internal/models"
	"github.com/CrestlineDigital/leadflow/internal/notify"
	"github.com/CrestlineDigital/leadflow/internal/score"
)

// LeadStore is the subset of the store used by the lead service.
type LeadStore interface {
	SaveLead(lead models.Lead) error
	GetLeads() ([]models.Lead, error)
	GetLead(id string) (*models.Lead, error)
}

// Service scores and persists submitted leads.
type Service struct {
	store     LeadStore
	scorer    *score.Scorer
	notifier  notify.Notifier
	collector analytics.Collector
}

// NewService creates a lead service. A nil notifier or collector falls back
// to the no-op implementation.
func NewService(st LeadStore, scorer *score.Scorer, notifier notify.Notifier, collector analytics.Collector) *Service {
	if scorer == nil {
		scorer = score.NewScorer(0)
	}
	if notifier == nil {
		notifier = notify.NoopNotifier{}
	}
	if collector == nil {
		collector = analytics.NoopCollector{}
	}
	return &Service{store: st, scorer: scorer, notifier: notifier, collector: collector}
}

// Submit validates and scores the qualification data, persists the lead, and
// alerts the sales team when it is high value. Notification failures are
// logged but do not fail the submission.
func (s *Service) Submit(ctx context.Context, data models.QualificationData) (models.Lead, error) {
	result, err := s.scorer.Score(data)
	if err != nil {
		slog.Debug("Lead submission rejected", "error", err)
		return models.Lead{}, err
	}

	lead := models.Lead{
		ID:          uuid.NewString(),
		Data:        data,
		LeadScore:   result.LeadScore,
		IsHighValue: result.IsHighValue,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.store.SaveLead(lead); err != nil {
		slog.Error("Failed to persist lead", "lead_id", lead.ID, "error", err)
		return models.Lead{}, fmt.Errorf("save lead: %w", err)
	}

	s.collector.Emit(analytics.EventLeadSubmitted, map[string]string{
		"lead_id":       lead.ID,
		"score":         strconv.Itoa(lead.LeadScore),
		"is_high_value": strconv.FormatBool(lead.IsHighValue),
	})
	slog.Debug("Lead persisted", "lead_id", lead.ID, "score", lead.LeadScore, "is_high_value", lead.IsHighValue)

	if lead.IsHighValue {
		if err := s.notifier.NotifyLead(ctx, lead); err != nil {
			slog.Warn("High-value lead alert failed", "lead_id", lead.ID, "error", err)
		}
	}

	return lead, nil
}

// List returns all persisted leads ordered by creation time.
func (s *Service) List() ([]models.Lead, error) {
	return s.store.GetLeads()
}

// Get returns a lead by id, or nil if absent.
func (s *Service) Get(id string) (*models.Lead, error) {
	return s.store.GetLead(id)
}

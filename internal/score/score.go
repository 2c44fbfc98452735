// Package score computes a lead priority score from qualification data.
//
// Scoring is a pure weighted sum over signal dimensions; re-scoring
// identical input always yields an identical result.
package score

import (
	"fmt"
	"log/slog"

	"github.com/CrestlineDigital/leadflow/internal/models"
)

// Signal weights. Urgency dominates, budget comes next, and larger company
// size bands contribute incrementally more. A fully completed wizard earns a
// completeness bonus over a partially completed one.
const (
	DefaultHighValueThreshold = 50

	urgencyNowPoints       = 30
	urgency30DaysPoints    = 15
	urgency90DaysPoints    = 5
	budgetEnterprisePoints = 25
	budgetMidPoints        = 12
	budgetEntryPoints      = 5
	sizeXLPoints           = 20 // 200+
	sizeLPoints            = 12 // 51-200
	sizeMPoints            = 6  // 11-50
	sizeSPoints            = 2  // 1-10
	completenessBonus      = 15
	phoneProvidedPoints    = 3
)

// Scorer computes lead scores with a configurable high-value threshold.
type Scorer struct {
	threshold int
}

// NewScorer creates a scorer. A non-positive threshold uses
// DefaultHighValueThreshold.
func NewScorer(threshold int) *Scorer {
	if threshold <= 0 {
		threshold = DefaultHighValueThreshold
	}
	return &Scorer{threshold: threshold}
}

// Score validates the required contact fields and computes the lead score.
// Missing name, email or company is a caller contract violation and is
// rejected before any computation.
func (s *Scorer) Score(data models.QualificationData) (models.LeadScoreResult, error) {
	if err := data.Contact.Validate(); err != nil {
		return models.LeadScoreResult{}, fmt.Errorf("score lead: %w", err)
	}

	points := 0

	switch data.Urgency {
	case "Now":
		points += urgencyNowPoints
	case "30 days":
		points += urgency30DaysPoints
	case "90 days":
		points += urgency90DaysPoints
	}

	switch data.Budget {
	case "Enterprise":
		points += budgetEnterprisePoints
	case "Mid":
		points += budgetMidPoints
	case "Entry":
		points += budgetEntryPoints
	}

	switch data.CompanySize {
	case "200+":
		points += sizeXLPoints
	case "51-200":
		points += sizeLPoints
	case "11-50":
		points += sizeMPoints
	case "1-10":
		points += sizeSPoints
	}

	if data.Complete() {
		points += completenessBonus
	}
	if data.Contact.Phone != "" {
		points += phoneProvidedPoints
	}

	result := models.LeadScoreResult{
		LeadScore:   points,
		IsHighValue: points >= s.threshold,
	}
	slog.Debug("lead scored", "score", result.LeadScore, "high_value", result.IsHighValue, "threshold", s.threshold)
	return result, nil
}

// Threshold returns the configured high-value threshold.
func (s *Scorer) Threshold() int {
	return s.threshold
}

package recommend

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/CrestlineDigital/leadflow/internal/models"
)

// CompanyFallback substitutes for {company} when no company was collected.
const CompanyFallback = "your organization"

// Engine evaluates the offering catalog against qualification data.
// It is stateless and safe for concurrent use.
type Engine struct {
	catalog []Offering
}

// NewEngine creates a recommendation engine over the given catalog.
// A nil catalog uses DefaultCatalog.
func NewEngine(catalog []Offering) *Engine {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &Engine{catalog: catalog}
}

// Recommend evaluates every catalog offering against data, discards
// zero-weight candidates and returns the rest sorted by descending weight,
// ties broken by catalog order. An empty list is a valid result; callers
// prompt a direct consultation path when nothing matches.
func (e *Engine) Recommend(data models.QualificationData) []models.Recommendation {
	type candidate struct {
		idx     int
		weight  int
		matched string // value that satisfied the highest-weighted rule
	}

	var candidates []candidate
	for i, off := range e.catalog {
		weight := 0
		best := Rule{}
		for _, r := range off.Rules {
			if data.Get(r.Field) != r.Value {
				continue
			}
			weight += r.Weight
			if r.Weight > best.Weight {
				best = r
			}
		}
		if weight == 0 {
			continue
		}
		candidates = append(candidates, candidate{idx: i, weight: weight, matched: best.Value})
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].weight > candidates[b].weight
	})

	recs := make([]models.Recommendation, 0, len(candidates))
	for _, c := range candidates {
		off := e.catalog[c.idx]
		recs = append(recs, models.Recommendation{
			ID:     off.ID,
			Name:   off.Name,
			Reason: renderReason(off.ReasonTmpl, data.Contact.Company, c.matched),
			URL:    off.URL,
		})
	}
	slog.Debug("recommendations generated", "candidates", len(recs), "need", data.PrimaryNeed, "urgency", data.Urgency)
	return recs
}

// renderReason fills the {company} and {value} placeholders of a reason
// template.
func renderReason(tmpl, company, value string) string {
	if company == "" {
		company = CompanyFallback
	}
	r := strings.NewReplacer("{company}", company, "{value}", value)
	return r.Replace(tmpl)
}

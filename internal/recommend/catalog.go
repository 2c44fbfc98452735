// Package recommend maps qualification data to ranked product recommendations.
package recommend

import "github.com/CrestlineDigital/leadflow/internal/models"

// Rule is one applicability condition over a qualification field. A candidate
// accumulates the rule's weight when the collected value equals Value.
type Rule struct {
	Field  models.ConversationStep
	Value  string
	Weight int
}

// Rule weights. Primary need and urgency say more about what a visitor will
// actually buy than org type or current stack.
const (
	WeightNeed    = 3
	WeightUrgency = 2
	WeightOrgType = 1
	WeightStack   = 1
	WeightSize    = 1
	WeightBudget  = 1
)

// Offering is one candidate entry in the recommendation catalog. ReasonTmpl
// supports the {company} and {value} placeholders: {company} substitutes the
// collected company name (or "your organization") and {value} the
// qualification value that matched the highest-weighted rule.
type Offering struct {
	ID         string
	Name       string
	URL        string
	ReasonTmpl string
	Rules      []Rule
}

// DefaultCatalog returns the built-in offering catalog. Order matters:
// score ties between offerings resolve to the earlier catalog entry.
func DefaultCatalog() []Offering {
	return []Offering{
		{
			ID:         "web-starter",
			Name:       "Business Website Package",
			URL:        "/services/websites",
			ReasonTmpl: "A fast, professionally designed site is the quickest win for {company} given your focus on {value}.",
			Rules: []Rule{
				{Field: models.StepNeed, Value: "Website", Weight: WeightNeed},
				{Field: models.StepStack, Value: "None", Weight: WeightStack},
				{Field: models.StepOrgType, Value: "Startups", Weight: WeightOrgType},
				{Field: models.StepOrgType, Value: "SMEs", Weight: WeightOrgType},
				{Field: models.StepBudget, Value: "Entry", Weight: WeightBudget},
			},
		},
		{
			ID:         "ecommerce",
			Name:       "E-commerce Store Build",
			URL:        "/services/ecommerce",
			ReasonTmpl: "An online store gets {company} selling directly, matched to your {value} goal.",
			Rules: []Rule{
				{Field: models.StepNeed, Value: "E-commerce", Weight: WeightNeed},
				{Field: models.StepOrgType, Value: "SMEs", Weight: WeightOrgType},
				{Field: models.StepUrgency, Value: "Now", Weight: WeightUrgency},
			},
		},
		{
			ID:         "m365",
			Name:       "Microsoft 365 Deployment",
			URL:        "/services/microsoft-365",
			ReasonTmpl: "Moving {company} onto Microsoft 365 consolidates mail, files and collaboration in one plan.",
			Rules: []Rule{
				{Field: models.StepNeed, Value: "Microsoft 365", Weight: WeightNeed},
				{Field: models.StepStack, Value: "Google Workspace", Weight: WeightStack},
				{Field: models.StepStack, Value: "None", Weight: WeightStack},
				{Field: models.StepSize, Value: "11-50", Weight: WeightSize},
			},
		},
		{
			ID:         "security",
			Name:       "Security & Compliance Review",
			URL:        "/services/security",
			ReasonTmpl: "A compliance-first security review fits {company}, especially for {value} organizations.",
			Rules: []Rule{
				{Field: models.StepNeed, Value: "Security/Compliance", Weight: WeightNeed},
				{Field: models.StepOrgType, Value: "Banking & Finance", Weight: WeightOrgType},
				{Field: models.StepOrgType, Value: "Healthcare", Weight: WeightOrgType},
				{Field: models.StepOrgType, Value: "Government", Weight: WeightOrgType},
				{Field: models.StepUrgency, Value: "Now", Weight: WeightUrgency},
			},
		},
		{
			ID:         "cloud",
			Name:       "Cloud Migration Program",
			URL:        "/services/cloud",
			ReasonTmpl: "Migrating {company} off legacy infrastructure reduces maintenance cost and risk.",
			Rules: []Rule{
				{Field: models.StepNeed, Value: "Cloud Migration", Weight: WeightNeed},
				{Field: models.StepStack, Value: "Custom/Legacy", Weight: WeightStack},
				{Field: models.StepSize, Value: "51-200", Weight: WeightSize},
				{Field: models.StepSize, Value: "200+", Weight: WeightSize},
			},
		},
		{
			ID:         "managed-it",
			Name:       "Managed IT Support",
			URL:        "/services/managed-it",
			ReasonTmpl: "Ongoing managed support keeps {company} covered without hiring in-house.",
			Rules: []Rule{
				{Field: models.StepNeed, Value: "IT Support", Weight: WeightNeed},
				{Field: models.StepUrgency, Value: "Now", Weight: WeightUrgency},
				{Field: models.StepSize, Value: "1-10", Weight: WeightSize},
				{Field: models.StepSize, Value: "11-50", Weight: WeightSize},
			},
		},
		{
			ID:         "custom-software",
			Name:       "Custom Software Development",
			URL:        "/services/custom-software",
			ReasonTmpl: "A tailored build gives {company} exactly the workflow off-the-shelf tools can't, driven by your {value} requirement.",
			Rules: []Rule{
				{Field: models.StepNeed, Value: "Custom Software", Weight: WeightNeed},
				{Field: models.StepStack, Value: "Custom/Legacy", Weight: WeightStack},
				{Field: models.StepBudget, Value: "Enterprise", Weight: WeightBudget},
			},
		},
	}
}

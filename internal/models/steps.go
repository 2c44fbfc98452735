// Package models defines step and enumeration types for the qualification wizard.
package models

// ConversationStep identifies the current position in the assistant conversation.
type ConversationStep string

const (
	StepIntent          ConversationStep = "intent"
	StepOrgType         ConversationStep = "orgType"
	StepSize            ConversationStep = "size"
	StepNeed            ConversationStep = "need"
	StepStack           ConversationStep = "stack"
	StepUrgency         ConversationStep = "urgency"
	StepBudget          ConversationStep = "budget"
	StepContact         ConversationStep = "contact"
	StepRecommendations ConversationStep = "recommendations"
	StepSuccess         ConversationStep = "success"
	StepFAQ             ConversationStep = "faq"
)

// WizardFieldOrder is the fixed order of data-collection steps between the
// intent branch and the contact form. Advancement consults this table
// explicitly; it is never inferred from struct layout.
var WizardFieldOrder = []ConversationStep{
	StepOrgType,
	StepSize,
	StepNeed,
	StepStack,
	StepUrgency,
	StepBudget,
	StepContact,
}

// NextWizardStep returns the step that follows field in WizardFieldOrder.
// The second return value is false when field is not a wizard data field or
// is the final entry in the order.
func NextWizardStep(field ConversationStep) (ConversationStep, bool) {
	for i, s := range WizardFieldOrder {
		if s == field {
			if i+1 < len(WizardFieldOrder) {
				return WizardFieldOrder[i+1], true
			}
			return "", false
		}
	}
	return "", false
}

// IsWizardField reports whether step is one of the quick-reply data-collection
// steps (everything in WizardFieldOrder except the contact form).
func IsWizardField(step ConversationStep) bool {
	for _, s := range WizardFieldOrder {
		if s == step && s != StepContact {
			return true
		}
	}
	return false
}

// Intent classifies what the visitor came to do.
type Intent string

const (
	IntentSales   Intent = "sales"
	IntentFAQ     Intent = "faq"
	IntentSupport Intent = "support"
	IntentGeneral Intent = "general"
)

// IsValidIntent checks if the given intent is supported.
func IsValidIntent(i Intent) bool {
	switch i {
	case IntentSales, IntentFAQ, IntentSupport, IntentGeneral:
		return true
	default:
		return false
	}
}

// Closed value sets for each qualification field. Quick-reply answers are
// validated against these before any state mutation.
var (
	OrgTypeValues = []string{
		"SMEs",
		"Startups",
		"Banking & Finance",
		"Healthcare",
		"Education",
		"Government",
		"Nonprofit",
		"Other",
	}
	CompanySizeValues = []string{
		"1-10",
		"11-50",
		"51-200",
		"200+",
	}
	PrimaryNeedValues = []string{
		"Website",
		"E-commerce",
		"Microsoft 365",
		"Security/Compliance",
		"Cloud Migration",
		"IT Support",
		"Custom Software",
	}
	CurrentStackValues = []string{
		"None",
		"Google Workspace",
		"Microsoft 365",
		"Custom/Legacy",
		"Mixed",
	}
	UrgencyValues = []string{
		"Now",
		"30 days",
		"90 days",
		"Exploring",
	}
	BudgetValues = []string{
		"Entry",
		"Mid",
		"Enterprise",
		"Unsure",
	}
)

// fieldValues maps each wizard data field to its closed value set.
var fieldValues = map[ConversationStep][]string{
	StepOrgType: OrgTypeValues,
	StepSize:    CompanySizeValues,
	StepNeed:    PrimaryNeedValues,
	StepStack:   CurrentStackValues,
	StepUrgency: UrgencyValues,
	StepBudget:  BudgetValues,
}

// IsValidFieldValue checks whether value belongs to the closed set for field.
func IsValidFieldValue(field ConversationStep, value string) bool {
	values, ok := fieldValues[field]
	if !ok {
		return false
	}
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}

// FieldValues returns the closed value set for a wizard data field, or nil if
// the field does not collect quick-reply data.
func FieldValues(field ConversationStep) []string {
	return fieldValues[field]
}

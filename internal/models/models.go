// Package models defines the core data structures for leadflow.
//
// It includes types for conversation messages, qualification data, knowledge
// entries, recommendations and lead scores, which are shared across modules.
package models

import (
	"errors"
	"strings"
	"time"
)

// MessageRole identifies who authored a conversation message.
type MessageRole string

const (
	// RoleUser marks a message written by the visitor.
	RoleUser MessageRole = "user"
	// RoleAssistant marks a message produced by the engine.
	RoleAssistant MessageRole = "assistant"
)

// QuickActionType defines what happens when a quick action is activated.
type QuickActionType string

const (
	// QuickActionNavigate opens a site URL.
	QuickActionNavigate QuickActionType = "navigate"
	// QuickActionContact opens a contact channel URL (mailto, tel, form).
	QuickActionContact QuickActionType = "contact"
	// QuickActionAsk re-enters the query engine with a bundled query string.
	QuickActionAsk QuickActionType = "ask"
)

// Validation constants for input validation
const (
	// MaxQueryLength defines the maximum allowed length for free-text queries
	MaxQueryLength = 2048
	// MaxContactFieldLength defines the maximum allowed length for contact fields
	MaxContactFieldLength = 256
)

// Error variables for better error handling and testability
var (
	ErrInvalidIntent       = errors.New("invalid intent")
	ErrInvalidWizardField  = errors.New("invalid wizard field")
	ErrInvalidFieldValue   = errors.New("value not in field's allowed set")
	ErrFieldStepMismatch   = errors.New("field does not match the current step")
	ErrEmptyQuery          = errors.New("query text cannot be empty")
	ErrQueryTooLong        = errors.New("query text exceeds maximum length")
	ErrMissingName         = errors.New("contact name is required")
	ErrMissingEmail        = errors.New("contact email is required")
	ErrMissingCompany      = errors.New("contact company is required")
	ErrContactFieldTooLong = errors.New("contact field exceeds maximum length")
	ErrSessionBusy         = errors.New("a request is already in flight for this session")
	ErrNotAtContactStep    = errors.New("contact details are not being collected at this step")
)

// IsValidQuickActionType checks if the given quick action type is supported.
func IsValidQuickActionType(t QuickActionType) bool {
	switch t {
	case QuickActionNavigate, QuickActionContact, QuickActionAsk:
		return true
	default:
		return false
	}
}

// QuickAction represents a caller-presented button attached to an assistant
// message. Payload carries a URL for navigate/contact actions and a follow-up
// query string for ask actions.
type QuickAction struct {
	Type    QuickActionType `json:"type"`
	Label   string          `json:"label"`
	Icon    string          `json:"icon,omitempty"`
	Payload string          `json:"payload"`
}

// Message is a single entry in the session history. Messages are immutable
// once appended; the history is only cleared by a full conversation reset.
type Message struct {
	Role         MessageRole   `json:"role"`
	Content      string        `json:"content"`
	Timestamp    time.Time     `json:"timestamp"`
	QuickActions []QuickAction `json:"quick_actions,omitempty"`
	Suggestions  []string      `json:"suggestions,omitempty"`
}

// Contact holds the visitor's submitted contact details. Name, email and
// company are required before lead scoring may run; phone is optional.
type Contact struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company"`
	Phone   string `json:"phone,omitempty"`
}

// Validate checks the required contact fields.
func (c *Contact) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrMissingName
	}
	if strings.TrimSpace(c.Email) == "" {
		return ErrMissingEmail
	}
	if strings.TrimSpace(c.Company) == "" {
		return ErrMissingCompany
	}
	for _, f := range []string{c.Name, c.Email, c.Company, c.Phone} {
		if len(f) > MaxContactFieldLength {
			return ErrContactFieldTooLong
		}
	}
	return nil
}

// QualificationData accumulates structured answers across wizard steps.
// It is mutated only by the session orchestrator in response to a single
// quick-reply or form-submit event, and reset to empty on explicit restart.
type QualificationData struct {
	Intent       Intent  `json:"intent,omitempty"`
	OrgType      string  `json:"org_type,omitempty"`
	CompanySize  string  `json:"company_size,omitempty"`
	PrimaryNeed  string  `json:"primary_need,omitempty"`
	CurrentStack string  `json:"current_stack,omitempty"`
	Urgency      string  `json:"urgency,omitempty"`
	Budget       string  `json:"budget,omitempty"`
	Contact      Contact `json:"contact"`
}

// Set writes value into the field's slot. It returns ErrInvalidWizardField for
// fields that are not quick-reply data fields.
func (q *QualificationData) Set(field ConversationStep, value string) error {
	switch field {
	case StepOrgType:
		q.OrgType = value
	case StepSize:
		q.CompanySize = value
	case StepNeed:
		q.PrimaryNeed = value
	case StepStack:
		q.CurrentStack = value
	case StepUrgency:
		q.Urgency = value
	case StepBudget:
		q.Budget = value
	default:
		return ErrInvalidWizardField
	}
	return nil
}

// Get reads the value stored for a quick-reply data field.
func (q *QualificationData) Get(field ConversationStep) string {
	switch field {
	case StepOrgType:
		return q.OrgType
	case StepSize:
		return q.CompanySize
	case StepNeed:
		return q.PrimaryNeed
	case StepStack:
		return q.CurrentStack
	case StepUrgency:
		return q.Urgency
	case StepBudget:
		return q.Budget
	default:
		return ""
	}
}

// Complete reports whether every wizard data field has been answered.
func (q *QualificationData) Complete() bool {
	return q.OrgType != "" && q.CompanySize != "" && q.PrimaryNeed != "" &&
		q.CurrentStack != "" && q.Urgency != "" && q.Budget != ""
}

// KnowledgeEntry is one unit of knowledge-base content the query engine can
// match against. Entries are read-only to the engine; their ownership and
// refresh lifecycle belong to the content store.
type KnowledgeEntry struct {
	ID           string        `json:"id"`
	Topic        string        `json:"topic"` // topic tag, e.g. "pricing"
	Content      string        `json:"content"`
	QuickActions []QuickAction `json:"quick_actions,omitempty"`
	Suggestions  []string      `json:"suggestions,omitempty"`
}

// Recommendation is a ranked offering produced for a qualified visitor.
// Recommendations are generated fresh per request and never persisted.
type Recommendation struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Reason string `json:"reason"`
	URL    string `json:"url"`
}

// LeadScoreResult carries the computed lead priority.
type LeadScoreResult struct {
	LeadScore   int  `json:"lead_score"`
	IsHighValue bool `json:"is_high_value"`
}

// Lead is the persisted record of a submitted, scored lead.
type Lead struct {
	ID          string            `json:"id"`
	Data        QualificationData `json:"data"`
	LeadScore   int               `json:"lead_score"`
	IsHighValue bool              `json:"is_high_value"`
	CreatedAt   time.Time         `json:"created_at"`
}

// APIStatus represents the status of an API response.
type APIStatus string

const (
	// APIStatusOK indicates an API request completed successfully.
	APIStatusOK APIStatus = "ok"
	// APIStatusError indicates an API request failed with an error.
	APIStatusError APIStatus = "error"
)

// APIResponse represents a standard API response with a status and optional data.
type APIResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Result  interface{} `json:"result,omitempty"`
}

// Success creates a successful API response with optional result data.
func Success(result interface{}) APIResponse {
	return APIResponse{Status: string(APIStatusOK), Result: result}
}

// Error creates an error API response with a message.
func Error(message string) APIResponse {
	return APIResponse{Status: string(APIStatusError), Message: message}
}

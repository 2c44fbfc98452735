// Package wizard implements the deterministic guided-intake state machine.
//
// The machine owns a QualificationData record and the current conversation
// step. Every transition is a synchronous, pure function of (current step,
// field, value); invalid input is rejected with no state change.
package wizard

import (
	"fmt"
	"log/slog"

	"github.com/CrestlineDigital/leadflow/internal/models"
)

// Machine holds the wizard's accumulated data and current step. It is not
// safe for concurrent use; the session orchestrator serializes access.
type Machine struct {
	step models.ConversationStep
	data models.QualificationData
}

// New creates a machine positioned at the intent step with empty data.
func New() *Machine {
	return &Machine{step: models.StepIntent}
}

// CurrentStep returns the step the conversation is currently on.
func (m *Machine) CurrentStep() models.ConversationStep {
	return m.step
}

// Data returns a copy of the accumulated qualification data.
func (m *Machine) Data() models.QualificationData {
	return m.data
}

// SetContact records submitted contact details. Validation is the caller's
// responsibility; the machine only stores what it is given.
func (m *Machine) SetContact(c models.Contact) {
	m.data.Contact = c
}

// SetStep forces the current step. Used by the orchestrator for the
// contact -> success transition after a lead submission completes.
func (m *Machine) SetStep(step models.ConversationStep) {
	m.step = step
}

// SelectIntent records the declared intent and branches:
// support and general go straight to contact, faq enters free-text mode,
// and sales (or any other valid intent) starts the data-collection steps.
// It is only accepted while the machine is at the intent step.
func (m *Machine) SelectIntent(intent models.Intent) (models.ConversationStep, error) {
	if m.step != models.StepIntent {
		slog.Debug("wizard SelectIntent rejected out of step", "step", m.step)
		return m.step, fmt.Errorf("select intent at step %q: %w", m.step, models.ErrFieldStepMismatch)
	}
	if !models.IsValidIntent(intent) {
		slog.Debug("wizard SelectIntent rejected", "intent", intent)
		return m.step, fmt.Errorf("select intent %q: %w", intent, models.ErrInvalidIntent)
	}

	m.data.Intent = intent
	switch intent {
	case models.IntentSupport, models.IntentGeneral:
		m.step = models.StepContact
	case models.IntentFAQ:
		m.step = models.StepFAQ
	default:
		m.step = models.StepOrgType
	}
	slog.Debug("wizard SelectIntent", "intent", intent, "step", m.step)
	return m.step, nil
}

// AnswerStep writes value into the named field and advances to the next entry
// in the fixed field order. Answering the final data field (budget) moves the
// machine to the recommendations step; the caller is expected to generate
// recommendations at that point. Undefined fields, out-of-set values and
// fields other than the current step are rejected with no state change, so
// the machine only ever moves forward along the field order.
func (m *Machine) AnswerStep(field models.ConversationStep, value string) (models.ConversationStep, error) {
	if !models.IsWizardField(field) {
		slog.Debug("wizard AnswerStep rejected field", "field", field)
		return m.step, fmt.Errorf("answer step %q: %w", field, models.ErrInvalidWizardField)
	}
	if field != m.step {
		slog.Debug("wizard AnswerStep rejected out-of-step field", "field", field, "step", m.step)
		return m.step, fmt.Errorf("answer step %q at step %q: %w", field, m.step, models.ErrFieldStepMismatch)
	}
	if !models.IsValidFieldValue(field, value) {
		slog.Debug("wizard AnswerStep rejected value", "field", field, "value", value)
		return m.step, fmt.Errorf("answer step %q value %q: %w", field, value, models.ErrInvalidFieldValue)
	}

	if err := m.data.Set(field, value); err != nil {
		return m.step, err
	}

	next, ok := models.NextWizardStep(field)
	if !ok || field == models.StepBudget {
		// Budget is the last quick-reply field; contact is collected via
		// form submit, so completing budget hands off to recommendations.
		m.step = models.StepRecommendations
	} else {
		m.step = next
	}
	slog.Debug("wizard AnswerStep", "field", field, "value", value, "step", m.step)
	return m.step, nil
}

// Restart clears all qualification data and returns to the intent step.
func (m *Machine) Restart() {
	m.step = models.StepIntent
	m.data = models.QualificationData{}
	slog.Debug("wizard Restart")
}

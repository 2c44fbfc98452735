package wizard

import (
	"errors"
	"testing"

	"github.com/CrestlineDigital/leadflow/internal/models"
)

func TestSelectIntentBranches(t *testing.T) {
	cases := []struct {
		intent models.Intent
		want   models.ConversationStep
	}{
		{models.IntentSales, models.StepOrgType},
		{models.IntentSupport, models.StepContact},
		{models.IntentGeneral, models.StepContact},
		{models.IntentFAQ, models.StepFAQ},
	}
	for _, c := range cases {
		m := New()
		got, err := m.SelectIntent(c.intent)
		if err != nil {
			t.Fatalf("SelectIntent(%s) returned error: %v", c.intent, err)
		}
		if got != c.want {
			t.Errorf("SelectIntent(%s) = %s, want %s", c.intent, got, c.want)
		}
		if m.Data().Intent != c.intent {
			t.Errorf("intent not recorded for %s", c.intent)
		}
	}
}

func TestSelectIntentInvalid(t *testing.T) {
	m := New()
	_, err := m.SelectIntent("marketing")
	if !errors.Is(err, models.ErrInvalidIntent) {
		t.Fatalf("expected ErrInvalidIntent, got %v", err)
	}
	if m.CurrentStep() != models.StepIntent {
		t.Errorf("step changed on invalid intent: %s", m.CurrentStep())
	}
}

func TestAnswerStepAdvancesInOrder(t *testing.T) {
	m := New()
	if _, err := m.SelectIntent(models.IntentSales); err != nil {
		t.Fatalf("SelectIntent failed: %v", err)
	}

	answers := []struct {
		field models.ConversationStep
		value string
		want  models.ConversationStep
	}{
		{models.StepOrgType, "SMEs", models.StepSize},
		{models.StepSize, "1-10", models.StepNeed},
		{models.StepNeed, "Website", models.StepStack},
		{models.StepStack, "None", models.StepUrgency},
		{models.StepUrgency, "Now", models.StepBudget},
		{models.StepBudget, "Entry", models.StepRecommendations},
	}
	for _, a := range answers {
		got, err := m.AnswerStep(a.field, a.value)
		if err != nil {
			t.Fatalf("AnswerStep(%s, %s) returned error: %v", a.field, a.value, err)
		}
		if got != a.want {
			t.Errorf("AnswerStep(%s) advanced to %s, want %s", a.field, got, a.want)
		}
	}

	data := m.Data()
	if !data.Complete() {
		t.Errorf("expected complete data after answering all fields: %+v", data)
	}
}

func TestAnswerStepRejectsUndefinedField(t *testing.T) {
	m := New()
	if _, err := m.SelectIntent(models.IntentSales); err != nil {
		t.Fatalf("SelectIntent failed: %v", err)
	}
	before := m.CurrentStep()

	if _, err := m.AnswerStep("favoriteColor", "blue"); !errors.Is(err, models.ErrInvalidWizardField) {
		t.Fatalf("expected ErrInvalidWizardField, got %v", err)
	}
	if m.CurrentStep() != before {
		t.Errorf("step mutated on invalid field")
	}
}

func TestAnswerStepRejectsOutOfSetValue(t *testing.T) {
	m := New()
	if _, err := m.SelectIntent(models.IntentSales); err != nil {
		t.Fatalf("SelectIntent failed: %v", err)
	}

	if _, err := m.AnswerStep(models.StepOrgType, "Interstellar Mining"); !errors.Is(err, models.ErrInvalidFieldValue) {
		t.Fatalf("expected ErrInvalidFieldValue, got %v", err)
	}
	if m.Data().OrgType != "" {
		t.Errorf("data mutated on invalid value")
	}
}

func TestAnswerStepRejectsFieldAheadOfStep(t *testing.T) {
	m := New()
	if _, err := m.SelectIntent(models.IntentSales); err != nil {
		t.Fatalf("SelectIntent failed: %v", err)
	}

	// At orgType, answering budget would skip four steps.
	if _, err := m.AnswerStep(models.StepBudget, "Enterprise"); !errors.Is(err, models.ErrFieldStepMismatch) {
		t.Fatalf("expected ErrFieldStepMismatch, got %v", err)
	}
	if m.CurrentStep() != models.StepOrgType {
		t.Errorf("step mutated on out-of-step field: %s", m.CurrentStep())
	}
	if m.Data().Budget != "" {
		t.Errorf("data mutated on out-of-step field")
	}
}

func TestAnswerStepRejectsFieldBehindStep(t *testing.T) {
	m := New()
	if _, err := m.SelectIntent(models.IntentSales); err != nil {
		t.Fatalf("SelectIntent failed: %v", err)
	}
	answers := []struct {
		field models.ConversationStep
		value string
	}{
		{models.StepOrgType, "SMEs"},
		{models.StepSize, "1-10"},
		{models.StepNeed, "Website"},
		{models.StepStack, "None"},
		{models.StepUrgency, "Now"},
		{models.StepBudget, "Entry"},
	}
	for _, a := range answers {
		if _, err := m.AnswerStep(a.field, a.value); err != nil {
			t.Fatalf("AnswerStep(%s) failed: %v", a.field, err)
		}
	}

	// Re-answering an earlier field must not move the machine backward.
	if _, err := m.AnswerStep(models.StepOrgType, "Startups"); !errors.Is(err, models.ErrFieldStepMismatch) {
		t.Fatalf("expected ErrFieldStepMismatch, got %v", err)
	}
	if m.CurrentStep() != models.StepRecommendations {
		t.Errorf("step moved backward: %s", m.CurrentStep())
	}
	if m.Data().OrgType != "SMEs" {
		t.Errorf("earlier answer overwritten: %q", m.Data().OrgType)
	}
}

func TestSelectIntentOnlyAtIntentStep(t *testing.T) {
	m := New()
	if _, err := m.SelectIntent(models.IntentSales); err != nil {
		t.Fatalf("SelectIntent failed: %v", err)
	}

	if _, err := m.SelectIntent(models.IntentSupport); !errors.Is(err, models.ErrFieldStepMismatch) {
		t.Fatalf("expected ErrFieldStepMismatch, got %v", err)
	}
	if m.CurrentStep() != models.StepOrgType {
		t.Errorf("step changed on out-of-step intent: %s", m.CurrentStep())
	}
	if m.Data().Intent != models.IntentSales {
		t.Errorf("intent overwritten: %s", m.Data().Intent)
	}
}

func TestRestartClearsEverything(t *testing.T) {
	m := New()
	if _, err := m.SelectIntent(models.IntentSales); err != nil {
		t.Fatalf("SelectIntent failed: %v", err)
	}
	if _, err := m.AnswerStep(models.StepOrgType, "Startups"); err != nil {
		t.Fatalf("AnswerStep failed: %v", err)
	}

	m.Restart()
	if m.CurrentStep() != models.StepIntent {
		t.Errorf("Restart step = %s, want intent", m.CurrentStep())
	}
	if m.Data() != (models.QualificationData{}) {
		t.Errorf("Restart did not clear data: %+v", m.Data())
	}
}

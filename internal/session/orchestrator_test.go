package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/CrestlineDigital/leadflow/internal/knowledge"
	"github.com/CrestlineDigital/leadflow/internal/leads"
	"github.com/CrestlineDigital/leadflow/internal/models"
	"github.com/CrestlineDigital/leadflow/internal/score"
	"github.com/CrestlineDigital/leadflow/internal/store"
)

// gatedCorpus blocks Entries until released, to hold a free-text request in
// flight from the test.
type gatedCorpus struct {
	entered  chan struct{}
	release  chan struct{}
	entries  []models.KnowledgeEntry
	enterOne sync.Once
}

func newGatedCorpus(entries []models.KnowledgeEntry) *gatedCorpus {
	return &gatedCorpus{
		entered: make(chan struct{}),
		release: make(chan struct{}),
		entries: entries,
	}
}

func (c *gatedCorpus) Entries(ctx context.Context) ([]models.KnowledgeEntry, error) {
	c.enterOne.Do(func() { close(c.entered) })
	<-c.release
	return c.entries, nil
}

type stubSubmitter struct {
	submitted []models.QualificationData
	err       error
	lead      models.Lead
}

func (s *stubSubmitter) Submit(ctx context.Context, data models.QualificationData) (models.Lead, error) {
	if s.err != nil {
		return models.Lead{}, s.err
	}
	s.submitted = append(s.submitted, data)
	lead := s.lead
	lead.Data = data
	return lead, nil
}

func realLeadService() *leads.Service {
	return leads.NewService(store.NewInMemoryStore(), score.NewScorer(0), nil, nil)
}

func validContact() models.Contact {
	return models.Contact{Name: "Jane", Email: "jane@acme.com", Company: "Acme"}
}

func TestGreetingSeedsHistory(t *testing.T) {
	o := NewOrchestrator(&stubSubmitter{})
	history := o.History()
	if len(history) != 1 {
		t.Fatalf("expected 1 greeting message, got %d", len(history))
	}
	if history[0].Role != models.RoleAssistant || len(history[0].Suggestions) == 0 {
		t.Errorf("greeting malformed: %+v", history[0])
	}
	if o.CurrentStep() != models.StepIntent {
		t.Errorf("initial step = %q, want intent", o.CurrentStep())
	}
}

// Support intent skips data collection and goes straight to the contact form.
func TestSupportIntentRoutesToContact(t *testing.T) {
	ctx := context.Background()
	o := NewOrchestrator(realLeadService())

	reply, err := o.SubmitQuickReply(ctx, models.StepIntent, "support")
	if err != nil {
		t.Fatalf("SubmitQuickReply failed: %v", err)
	}
	if o.CurrentStep() != models.StepContact {
		t.Fatalf("step = %q, want contact", o.CurrentStep())
	}
	if reply.Role != models.RoleAssistant || reply.Content == "" {
		t.Errorf("contact prompt malformed: %+v", reply)
	}

	done, err := o.SubmitContact(ctx, validContact())
	if err != nil {
		t.Fatalf("SubmitContact failed: %v", err)
	}
	if o.CurrentStep() != models.StepSuccess {
		t.Errorf("step = %q, want success", o.CurrentStep())
	}
	if done.Content == "" {
		t.Error("success message is empty")
	}
}

// The full sales path walks every data field in order and ends with
// non-empty recommendations.
func TestSalesPathProducesRecommendations(t *testing.T) {
	ctx := context.Background()
	o := NewOrchestrator(realLeadService())

	if _, err := o.SubmitQuickReply(ctx, models.StepIntent, "sales"); err != nil {
		t.Fatalf("intent failed: %v", err)
	}

	answers := []struct {
		field models.ConversationStep
		value string
	}{
		{models.StepOrgType, "SMEs"},
		{models.StepSize, "11-50"},
		{models.StepNeed, "Website"},
		{models.StepStack, "None"},
		{models.StepUrgency, "30 days"},
		{models.StepBudget, "Entry"},
	}
	for _, a := range answers {
		if o.CurrentStep() != a.field {
			t.Fatalf("step = %q, want %q", o.CurrentStep(), a.field)
		}
		if _, err := o.SubmitQuickReply(ctx, a.field, a.value); err != nil {
			t.Fatalf("answer %q failed: %v", a.field, err)
		}
	}

	if o.CurrentStep() != models.StepRecommendations {
		t.Fatalf("step = %q, want recommendations", o.CurrentStep())
	}
	recs := o.Recommendations()
	if len(recs) == 0 {
		t.Fatal("expected recommendations for a completed sales path")
	}
	for i := 1; i < len(recs); i++ {
		if recs[i].Reason == "" {
			t.Errorf("recommendation %d has no reason", i)
		}
	}

	// History: greeting + 7 exchanges of exactly one user + one assistant.
	if got, want := len(o.History()), 1+2*7; got != want {
		t.Errorf("history length = %d, want %d", got, want)
	}

	// Contact submission is accepted at the recommendations step.
	if _, err := o.SubmitContact(ctx, validContact()); err != nil {
		t.Fatalf("SubmitContact failed: %v", err)
	}
	if o.CurrentStep() != models.StepSuccess {
		t.Errorf("step = %q, want success", o.CurrentStep())
	}
}

func TestFreeTextAnswersFromCorpus(t *testing.T) {
	ctx := context.Background()
	corpus := knowledge.NewStaticCorpus([]models.KnowledgeEntry{
		{ID: "pricing", Topic: "pricing cost", Content: "Microsoft 365 plans start at a per-user monthly rate.", Suggestions: []string{"What plans exist?"}},
		{ID: "support", Topic: "support", Content: "Support is available on business days."},
	})
	o := NewOrchestrator(realLeadService(), WithCorpus(corpus))

	reply, err := o.SubmitFreeText(ctx, "How much does Microsoft 365 cost?")
	if err != nil {
		t.Fatalf("SubmitFreeText failed: %v", err)
	}
	if reply.Content != "Microsoft 365 plans start at a per-user monthly rate." {
		t.Errorf("unexpected answer: %q", reply.Content)
	}
	if o.IsLoading() {
		t.Error("loading flag not cleared")
	}
	history := o.History()
	if len(history) != 3 {
		t.Fatalf("history length = %d, want 3", len(history))
	}
	if history[1].Role != models.RoleUser || history[2].Role != models.RoleAssistant {
		t.Errorf("history roles wrong: %+v", history[1:])
	}
}

func TestFreeTextValidation(t *testing.T) {
	ctx := context.Background()
	o := NewOrchestrator(realLeadService())

	if _, err := o.SubmitFreeText(ctx, "   "); !errors.Is(err, models.ErrEmptyQuery) {
		t.Errorf("expected ErrEmptyQuery, got %v", err)
	}
	long := make([]byte, models.MaxQueryLength+1)
	for i := range long {
		long[i] = 'a'
	}
	if _, err := o.SubmitFreeText(ctx, string(long)); !errors.Is(err, models.ErrQueryTooLong) {
		t.Errorf("expected ErrQueryTooLong, got %v", err)
	}
	if len(o.History()) != 1 {
		t.Errorf("validation errors must not touch history, length = %d", len(o.History()))
	}
}

func TestBusyGateRejectsConcurrentRequests(t *testing.T) {
	ctx := context.Background()
	corpus := newGatedCorpus(nil)
	o := NewOrchestrator(realLeadService(), WithCorpus(corpus))

	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := o.SubmitFreeText(ctx, "anything"); err != nil {
			t.Errorf("in-flight request failed: %v", err)
		}
	}()
	<-corpus.entered

	if !o.IsLoading() {
		t.Error("loading flag not set while request in flight")
	}
	if _, err := o.SubmitFreeText(ctx, "second"); !errors.Is(err, models.ErrSessionBusy) {
		t.Errorf("expected ErrSessionBusy for free text, got %v", err)
	}
	if _, err := o.SubmitQuickReply(ctx, models.StepIntent, "sales"); !errors.Is(err, models.ErrSessionBusy) {
		t.Errorf("expected ErrSessionBusy for quick reply, got %v", err)
	}
	if _, err := o.SubmitContact(ctx, validContact()); !errors.Is(err, models.ErrSessionBusy) {
		t.Errorf("expected ErrSessionBusy for contact, got %v", err)
	}

	close(corpus.release)
	<-done
	if o.IsLoading() {
		t.Error("loading flag not cleared after completion")
	}
}

// A restart while a free-text request is in flight discards its result.
func TestRestartDiscardsInFlightResult(t *testing.T) {
	ctx := context.Background()
	corpus := newGatedCorpus([]models.KnowledgeEntry{
		{ID: "pricing", Topic: "pricing", Content: "stale answer"},
	})
	o := NewOrchestrator(realLeadService(), WithCorpus(corpus))

	done := make(chan models.Message, 1)
	go func() {
		reply, _ := o.SubmitFreeText(ctx, "pricing")
		done <- reply
	}()
	<-corpus.entered

	o.Restart(ctx)
	close(corpus.release)

	reply := <-done
	if reply.Content != "" {
		t.Errorf("stale result was not discarded: %+v", reply)
	}
	history := o.History()
	if len(history) != 1 {
		t.Fatalf("history after restart = %d messages, want greeting only", len(history))
	}
	if o.CurrentStep() != models.StepIntent {
		t.Errorf("step = %q, want intent", o.CurrentStep())
	}
	if o.IsLoading() {
		t.Error("restart must clear the loading flag")
	}
}

func TestInvalidQuickReplyLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	o := NewOrchestrator(realLeadService())

	if _, err := o.SubmitQuickReply(ctx, models.StepIntent, "bogus"); !errors.Is(err, models.ErrInvalidIntent) {
		t.Fatalf("expected ErrInvalidIntent, got %v", err)
	}
	if len(o.History()) != 1 || o.CurrentStep() != models.StepIntent {
		t.Error("invalid intent must not change history or step")
	}

	if _, err := o.SubmitQuickReply(ctx, models.StepIntent, "sales"); err != nil {
		t.Fatalf("intent failed: %v", err)
	}
	historyLen := len(o.History())
	if _, err := o.SubmitQuickReply(ctx, models.StepOrgType, "Martians"); !errors.Is(err, models.ErrInvalidFieldValue) {
		t.Fatalf("expected ErrInvalidFieldValue, got %v", err)
	}
	if len(o.History()) != historyLen || o.CurrentStep() != models.StepOrgType {
		t.Error("out-of-set value must not change history or step")
	}
}

// Quick replies are gated to the current step: answers may not skip ahead,
// revisit earlier fields, or re-select an intent mid-conversation.
func TestQuickReplyGatedToCurrentStep(t *testing.T) {
	ctx := context.Background()
	o := NewOrchestrator(realLeadService())

	if _, err := o.SubmitQuickReply(ctx, models.StepIntent, "sales"); err != nil {
		t.Fatalf("intent failed: %v", err)
	}

	// Skipping ahead from orgType to budget must not generate recommendations.
	if _, err := o.SubmitQuickReply(ctx, models.StepBudget, "Enterprise"); !errors.Is(err, models.ErrFieldStepMismatch) {
		t.Fatalf("expected ErrFieldStepMismatch, got %v", err)
	}
	if o.CurrentStep() != models.StepOrgType {
		t.Errorf("step = %q, want orgType after rejected skip", o.CurrentStep())
	}
	if len(o.Recommendations()) != 0 {
		t.Error("recommendations generated from a skipped-ahead answer")
	}

	// A second intent selection mid-conversation is rejected.
	if _, err := o.SubmitQuickReply(ctx, models.StepIntent, "support"); !errors.Is(err, models.ErrFieldStepMismatch) {
		t.Fatalf("expected ErrFieldStepMismatch, got %v", err)
	}

	answers := []struct {
		field models.ConversationStep
		value string
	}{
		{models.StepOrgType, "SMEs"},
		{models.StepSize, "11-50"},
		{models.StepNeed, "Website"},
		{models.StepStack, "None"},
		{models.StepUrgency, "30 days"},
		{models.StepBudget, "Entry"},
	}
	for _, a := range answers {
		if _, err := o.SubmitQuickReply(ctx, a.field, a.value); err != nil {
			t.Fatalf("answer %q failed: %v", a.field, err)
		}
	}

	// Re-answering an earlier field at recommendations must not move backward.
	historyLen := len(o.History())
	if _, err := o.SubmitQuickReply(ctx, models.StepOrgType, "Startups"); !errors.Is(err, models.ErrFieldStepMismatch) {
		t.Fatalf("expected ErrFieldStepMismatch, got %v", err)
	}
	if o.CurrentStep() != models.StepRecommendations {
		t.Errorf("step moved backward to %q", o.CurrentStep())
	}
	if o.Data().OrgType != "SMEs" {
		t.Errorf("earlier answer overwritten: %q", o.Data().OrgType)
	}
	if len(o.History()) != historyLen {
		t.Error("rejected reply must not append history")
	}
}

func TestContactRejectedOutsideContactStep(t *testing.T) {
	ctx := context.Background()
	o := NewOrchestrator(realLeadService())

	if _, err := o.SubmitContact(ctx, validContact()); !errors.Is(err, models.ErrNotAtContactStep) {
		t.Errorf("expected ErrNotAtContactStep, got %v", err)
	}
}

func TestContactSubmissionFailureKeepsStep(t *testing.T) {
	ctx := context.Background()
	submitter := &stubSubmitter{err: errors.New("store down")}
	o := NewOrchestrator(submitter)

	if _, err := o.SubmitQuickReply(ctx, models.StepIntent, "support"); err != nil {
		t.Fatalf("intent failed: %v", err)
	}
	reply, err := o.SubmitContact(ctx, validContact())
	if err == nil {
		t.Fatal("expected submission error")
	}
	if reply.Content == "" {
		t.Error("expected a retry message for the visitor")
	}
	if o.CurrentStep() != models.StepContact {
		t.Errorf("step = %q, want contact after failed submission", o.CurrentStep())
	}

	// Retry succeeds once the backend recovers.
	submitter.err = nil
	if _, err := o.SubmitContact(ctx, validContact()); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if o.CurrentStep() != models.StepSuccess {
		t.Errorf("step = %q, want success after retry", o.CurrentStep())
	}
}

// High-value contact submission persists a lead flagged for follow-up.
func TestHighValueLeadFlowEndToEnd(t *testing.T) {
	ctx := context.Background()
	st := store.NewInMemoryStore()
	svc := leads.NewService(st, score.NewScorer(0), nil, nil)
	o := NewOrchestrator(svc)

	steps := []struct {
		field models.ConversationStep
		value string
	}{
		{models.StepIntent, "sales"},
		{models.StepOrgType, "Banking & Finance"},
		{models.StepSize, "200+"},
		{models.StepNeed, "Cloud Migration"},
		{models.StepStack, "Custom/Legacy"},
		{models.StepUrgency, "Now"},
		{models.StepBudget, "Enterprise"},
	}
	for _, s := range steps {
		if _, err := o.SubmitQuickReply(ctx, s.field, s.value); err != nil {
			t.Fatalf("step %q failed: %v", s.field, err)
		}
	}
	if _, err := o.SubmitContact(ctx, validContact()); err != nil {
		t.Fatalf("SubmitContact failed: %v", err)
	}

	saved, err := st.GetLeads()
	if err != nil || len(saved) != 1 {
		t.Fatalf("expected 1 persisted lead, got %d (err=%v)", len(saved), err)
	}
	if !saved[0].IsHighValue {
		t.Errorf("lead score %d not flagged high value", saved[0].LeadScore)
	}
}

// Package session coordinates a single assistant conversation.
//
// The orchestrator owns the wizard state machine, the message history and the
// loading gate. All mutation goes through it: quick replies and contact
// submissions are handled synchronously under the session lock, while
// free-text queries release the lock during corpus retrieval and matching so
// a restart can invalidate an in-flight request. Every accepted request
// appends exactly one user message and one assistant message.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/CrestlineDigital/leadflow/internal/analytics"
	"github.com/CrestlineDigital/leadflow/internal/knowledge"
	"github.com/CrestlineDigital/leadflow/internal/match"
	"github.com/CrestlineDigital/leadflow/internal/models"
	"github.com/CrestlineDigital/leadflow/internal/recommend"
	"github.com/CrestlineDigital/leadflow/internal/wizard"
)

// LeadSubmitter scores and persists a completed qualification record.
type LeadSubmitter interface {
	Submit(ctx context.Context, data models.QualificationData) (models.Lead, error)
}

// Opts holds configuration options for the orchestrator.
type Opts struct {
	Matcher     *match.Engine
	Recommender *recommend.Engine
	Corpus      knowledge.Corpus
	Collector   analytics.Collector
}

// Option defines a configuration option for the orchestrator.
type Option func(*Opts)

// WithMatcher sets the query matching engine.
func WithMatcher(m *match.Engine) Option {
	return func(o *Opts) { o.Matcher = m }
}

// WithRecommender sets the recommendation engine.
func WithRecommender(r *recommend.Engine) Option {
	return func(o *Opts) { o.Recommender = r }
}

// WithCorpus sets the knowledge corpus consulted for free-text queries.
func WithCorpus(c knowledge.Corpus) Option {
	return func(o *Opts) { o.Corpus = c }
}

// WithCollector sets the analytics collector.
func WithCollector(c analytics.Collector) Option {
	return func(o *Opts) { o.Collector = c }
}

// Orchestrator serializes all interaction for one conversation session.
type Orchestrator struct {
	mu          sync.Mutex
	machine     *wizard.Machine
	matcher     *match.Engine
	recommender *recommend.Engine
	corpus      knowledge.Corpus
	leads       LeadSubmitter
	collector   analytics.Collector

	history         []models.Message
	recommendations []models.Recommendation
	loading         bool
	requestSeq      uint64
}

// NewOrchestrator creates an orchestrator seeded with the greeting message.
// Unset options fall back to the default engines and a no-op collector.
func NewOrchestrator(leadSvc LeadSubmitter, opts ...Option) *Orchestrator {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Matcher == nil {
		cfg.Matcher = match.NewEngine(match.DefaultConfig())
	}
	if cfg.Recommender == nil {
		cfg.Recommender = recommend.NewEngine(nil)
	}
	if cfg.Corpus == nil {
		cfg.Corpus = knowledge.NewStaticCorpus(nil)
	}
	if cfg.Collector == nil {
		cfg.Collector = analytics.NoopCollector{}
	}

	o := &Orchestrator{
		machine:     wizard.New(),
		matcher:     cfg.Matcher,
		recommender: cfg.Recommender,
		corpus:      cfg.Corpus,
		leads:       leadSvc,
		collector:   cfg.Collector,
	}
	o.history = []models.Message{stepPrompt(models.StepIntent, models.QualificationData{})}
	return o
}

// SubmitQuickReply handles a quick-reply selection: the intent choice at the
// intent step, or a closed-set answer to a data-collection field. Invalid
// input is rejected with no state or history change.
func (o *Orchestrator) SubmitQuickReply(ctx context.Context, field models.ConversationStep, value string) (models.Message, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.loading {
		return models.Message{}, models.ErrSessionBusy
	}

	var next models.ConversationStep
	var err error
	if field == models.StepIntent {
		next, err = o.machine.SelectIntent(models.Intent(value))
	} else {
		next, err = o.machine.AnswerStep(field, value)
	}
	if err != nil {
		return models.Message{}, err
	}

	event := analytics.EventStepCompleted
	if field == models.StepIntent {
		event = analytics.EventIntentSelected
	}
	o.collector.Emit(event, map[string]string{"field": string(field), "value": value})

	o.appendUser(value)

	var reply models.Message
	if next == models.StepRecommendations {
		o.recommendations = o.recommender.Recommend(o.machine.Data())
		o.collector.Emit(analytics.EventRecommendations, map[string]string{
			"count": strconv.Itoa(len(o.recommendations)),
		})
		reply = recommendationsMessage(o.recommendations)
	} else {
		reply = stepPrompt(next, o.machine.Data())
	}
	o.history = append(o.history, reply)
	slog.Debug("session quick reply handled", "field", field, "value", value, "step", next)
	return reply, nil
}

// SubmitFreeText answers a free-text question from the knowledge corpus.
// The session lock is released during retrieval and matching; if the
// conversation is restarted in the meantime the result is discarded and a
// zero message is returned.
func (o *Orchestrator) SubmitFreeText(ctx context.Context, text string) (models.Message, error) {
	return o.submitQuery(ctx, text, false)
}

// SubmitSuggestion is SubmitFreeText for a clicked follow-up suggestion chip.
func (o *Orchestrator) SubmitSuggestion(ctx context.Context, text string) (models.Message, error) {
	return o.submitQuery(ctx, text, true)
}

func (o *Orchestrator) submitQuery(ctx context.Context, text string, fromSuggestion bool) (models.Message, error) {
	query := strings.TrimSpace(text)
	if query == "" {
		return models.Message{}, models.ErrEmptyQuery
	}
	if len(query) > models.MaxQueryLength {
		return models.Message{}, models.ErrQueryTooLong
	}

	o.mu.Lock()
	if o.loading {
		o.mu.Unlock()
		return models.Message{}, models.ErrSessionBusy
	}
	o.loading = true
	o.requestSeq++
	seq := o.requestSeq
	o.appendUser(query)
	o.mu.Unlock()

	entries, err := o.corpus.Entries(ctx)
	if err != nil {
		// Matching against an empty corpus produces the fallback answer,
		// so a corpus outage degrades instead of failing the request.
		slog.Warn("session corpus fetch failed, serving fallback", "error", err)
		entries = nil
	}
	result := o.matcher.Match(query, entries)

	o.mu.Lock()
	defer o.mu.Unlock()
	if seq != o.requestSeq {
		slog.Debug("session discarding stale query result", "seq", seq)
		return models.Message{}, nil
	}
	o.loading = false

	if fromSuggestion {
		o.collector.Emit(analytics.EventSuggestionClicked, map[string]string{"query": query})
	}
	if result.Entry != nil {
		o.collector.Emit(analytics.EventQueryMatched, map[string]string{"entry_id": result.Entry.ID})
	} else {
		o.collector.Emit(analytics.EventQueryFallback, map[string]string{"query": query})
	}

	reply := models.Message{
		Role:         models.RoleAssistant,
		Content:      result.Message,
		Timestamp:    time.Now().UTC(),
		QuickActions: result.QuickActions,
		Suggestions:  result.Suggestions,
	}
	o.history = append(o.history, reply)
	return reply, nil
}

// SubmitContact validates and submits the visitor's contact details,
// completing the conversation. It is only accepted at the contact and
// recommendations steps. A persistence failure leaves the step unchanged
// and surfaces a retry message.
func (o *Orchestrator) SubmitContact(ctx context.Context, contact models.Contact) (models.Message, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.loading {
		return models.Message{}, models.ErrSessionBusy
	}

	step := o.machine.CurrentStep()
	if step != models.StepContact && step != models.StepRecommendations {
		return models.Message{}, fmt.Errorf("submit contact at step %q: %w", step, models.ErrNotAtContactStep)
	}
	if err := contact.Validate(); err != nil {
		return models.Message{}, err
	}

	o.machine.SetContact(contact)
	data := o.machine.Data()

	o.appendUser(fmt.Sprintf("%s, %s (%s)", contact.Name, contact.Email, contact.Company))

	lead, err := o.leads.Submit(ctx, data)
	if err != nil {
		slog.Error("session lead submission failed", "error", err)
		reply := models.Message{
			Role:      models.RoleAssistant,
			Content:   "Something went wrong while saving your details. Please try again in a moment.",
			Timestamp: time.Now().UTC(),
		}
		o.history = append(o.history, reply)
		return reply, fmt.Errorf("submit lead: %w", err)
	}

	o.machine.SetStep(models.StepSuccess)
	reply := successMessage(contact, lead)
	o.history = append(o.history, reply)
	slog.Debug("session contact submitted", "lead_id", lead.ID, "score", lead.LeadScore)
	return reply, nil
}

// Restart clears the conversation and returns the greeting. A restart
// invalidates any in-flight free-text request.
func (o *Orchestrator) Restart(ctx context.Context) models.Message {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.machine.Restart()
	o.requestSeq++
	o.loading = false
	o.recommendations = nil
	greeting := stepPrompt(models.StepIntent, models.QualificationData{})
	o.history = []models.Message{greeting}
	o.collector.Emit(analytics.EventConversationReset, nil)
	slog.Debug("session restarted")
	return greeting
}

// History returns a copy of the conversation history.
func (o *Orchestrator) History() []models.Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]models.Message, len(o.history))
	copy(out, o.history)
	return out
}

// CurrentStep returns the wizard's current step.
func (o *Orchestrator) CurrentStep() models.ConversationStep {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.machine.CurrentStep()
}

// IsLoading reports whether a free-text request is in flight.
func (o *Orchestrator) IsLoading() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.loading
}

// Recommendations returns a copy of the most recently generated
// recommendations, empty until the data-collection steps complete.
func (o *Orchestrator) Recommendations() []models.Recommendation {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]models.Recommendation, len(o.recommendations))
	copy(out, o.recommendations)
	return out
}

// Data returns a copy of the accumulated qualification data.
func (o *Orchestrator) Data() models.QualificationData {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.machine.Data()
}

// appendUser records the visitor's input. Caller must hold the lock.
func (o *Orchestrator) appendUser(content string) {
	o.history = append(o.history, models.Message{
		Role:      models.RoleUser,
		Content:   content,
		Timestamp: time.Now().UTC(),
	})
}

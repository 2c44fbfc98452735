// Package analytics provides fire-and-forget conversation event collection.
//
// Delivery is best-effort: Emit never blocks the conversation and never
// returns an error. Collectors that fail log and move on.
package analytics

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Event names emitted by the session orchestrator.
const (
	EventIntentSelected     = "intent_selected"
	EventStepCompleted      = "step_completed"
	EventQueryMatched       = "query_matched"
	EventQueryFallback      = "query_fallback"
	EventSuggestionClicked  = "suggestion_clicked"
	EventRecommendations    = "recommendations_generated"
	EventRecommendationView = "recommendation_click"
	EventLeadSubmitted      = "lead_submitted"
	EventConversationReset  = "conversation_reset"
)

// Collector receives conversation events with a flat key/value payload.
type Collector interface {
	Emit(event string, fields map[string]string)
}

// NoopCollector discards all events.
type NoopCollector struct{}

// Emit does nothing.
func (NoopCollector) Emit(event string, fields map[string]string) {}

// SlogCollector writes events to the structured log.
type SlogCollector struct{}

// Emit logs the event at info level with its payload flattened into
// log attributes.
func (SlogCollector) Emit(event string, fields map[string]string) {
	attrs := make([]any, 0, 2+len(fields)*2)
	attrs = append(attrs, "event", event)
	for k, v := range fields {
		attrs = append(attrs, k, v)
	}
	slog.Info("analytics event", attrs...)
}

var assistantEvents = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "assistant_events_total",
		Help: "Total number of assistant conversation events by event name",
	},
	[]string{"event"},
)

// PromCollector counts events in a Prometheus counter, labeled by event
// name. Payload detail goes to the debug log only; high-cardinality values
// never become label values.
type PromCollector struct{}

// Emit increments the event counter.
func (PromCollector) Emit(event string, fields map[string]string) {
	assistantEvents.WithLabelValues(event).Inc()
	slog.Debug("analytics event counted", "event", event, "fields", len(fields))
}

// MultiCollector fans one event out to several collectors.
type MultiCollector []Collector

// Emit forwards the event to every collector.
func (m MultiCollector) Emit(event string, fields map[string]string) {
	for _, c := range m {
		c.Emit(event, fields)
	}
}

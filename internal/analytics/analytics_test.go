package analytics

import "testing"

// recordingCollector captures emitted events for assertions.
type recordingCollector struct {
	events []string
	fields []map[string]string
}

func (r *recordingCollector) Emit(event string, fields map[string]string) {
	r.events = append(r.events, event)
	r.fields = append(r.fields, fields)
}

func TestMultiCollectorFansOut(t *testing.T) {
	a := &recordingCollector{}
	b := &recordingCollector{}
	m := MultiCollector{a, b}

	m.Emit(EventIntentSelected, map[string]string{"intent": "sales"})

	for i, r := range []*recordingCollector{a, b} {
		if len(r.events) != 1 || r.events[0] != EventIntentSelected {
			t.Errorf("collector %d did not receive the event: %v", i, r.events)
		}
		if r.fields[0]["intent"] != "sales" {
			t.Errorf("collector %d lost the payload: %v", i, r.fields[0])
		}
	}
}

func TestNoopAndSlogCollectorsDoNotPanic(t *testing.T) {
	NoopCollector{}.Emit(EventLeadSubmitted, nil)
	SlogCollector{}.Emit(EventLeadSubmitted, map[string]string{"score": "55"})
}

func TestPromCollectorCounts(t *testing.T) {
	PromCollector{}.Emit(EventQueryFallback, map[string]string{"query_len": "12"})
	PromCollector{}.Emit(EventQueryFallback, nil)
}

package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/CrestlineDigital/leadflow/internal/analytics"
	"github.com/CrestlineDigital/leadflow/internal/models"
)

// quickReplyRequest is the body for a quick-reply submission.
type quickReplyRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// queryRequest is the body for a free-text query. FromSuggestion marks a
// clicked follow-up chip for analytics.
type queryRequest struct {
	Text           string `json:"text"`
	FromSuggestion bool   `json:"from_suggestion,omitempty"`
}

// sessionState is the payload returned for session creation and state reads.
type sessionState struct {
	SessionID       string                  `json:"session_id"`
	Step            models.ConversationStep `json:"step"`
	IsLoading       bool                    `json:"is_loading"`
	Recommendations []models.Recommendation `json:"recommendations,omitempty"`
}

// exchangeResult is the payload returned after a handled submission.
type exchangeResult struct {
	Step    models.ConversationStep `json:"step"`
	Message models.Message          `json:"message"`
}

func (s *Server) createSessionHandler(w http.ResponseWriter, r *http.Request) {
	id, o := s.createSession()
	history := o.History()
	writeSuccess(w, struct {
		sessionState
		Greeting models.Message `json:"greeting"`
	}{
		sessionState: sessionState{SessionID: id, Step: o.CurrentStep()},
		Greeting:     history[0],
	})
}

func (s *Server) deleteSessionHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !s.deleteSession(id) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	writeSuccess(w, nil)
}

func (s *Server) sessionStateHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	o, ok := s.getSession(id)
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	writeSuccess(w, sessionState{
		SessionID:       id,
		Step:            o.CurrentStep(),
		IsLoading:       o.IsLoading(),
		Recommendations: o.Recommendations(),
	})
}

func (s *Server) historyHandler(w http.ResponseWriter, r *http.Request) {
	o, ok := s.getSession(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	writeSuccess(w, o.History())
}

func (s *Server) recommendationsHandler(w http.ResponseWriter, r *http.Request) {
	o, ok := s.getSession(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	recs := o.Recommendations()
	if len(recs) > 0 {
		s.collector.Emit(analytics.EventRecommendationView, map[string]string{
			"session_id": r.PathValue("id"),
		})
	}
	writeSuccess(w, recs)
}

func (s *Server) quickReplyHandler(w http.ResponseWriter, r *http.Request) {
	o, ok := s.getSession(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	var req quickReplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	reply, err := o.SubmitQuickReply(r.Context(), models.ConversationStep(req.Field), req.Value)
	if err != nil {
		writeOrchestratorError(w, err)
		return
	}
	writeSuccess(w, exchangeResult{Step: o.CurrentStep(), Message: reply})
}

func (s *Server) queryHandler(w http.ResponseWriter, r *http.Request) {
	o, ok := s.getSession(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	var reply models.Message
	var err error
	if req.FromSuggestion {
		reply, err = o.SubmitSuggestion(r.Context(), req.Text)
	} else {
		reply, err = o.SubmitFreeText(r.Context(), req.Text)
	}
	if err != nil {
		writeOrchestratorError(w, err)
		return
	}
	// A zero reply means the conversation was restarted mid-request and the
	// result was discarded.
	if reply.Content == "" {
		writeError(w, http.StatusConflict, "request superseded by restart")
		return
	}
	writeSuccess(w, exchangeResult{Step: o.CurrentStep(), Message: reply})
}

func (s *Server) contactHandler(w http.ResponseWriter, r *http.Request) {
	o, ok := s.getSession(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	var contact models.Contact
	if err := json.NewDecoder(r.Body).Decode(&contact); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	reply, err := o.SubmitContact(r.Context(), contact)
	if err != nil {
		writeOrchestratorError(w, err)
		return
	}
	writeSuccess(w, exchangeResult{Step: o.CurrentStep(), Message: reply})
}

func (s *Server) restartHandler(w http.ResponseWriter, r *http.Request) {
	o, ok := s.getSession(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	greeting := o.Restart(r.Context())
	writeSuccess(w, exchangeResult{Step: o.CurrentStep(), Message: greeting})
}

func (s *Server) leadsHandler(w http.ResponseWriter, r *http.Request) {
	leads, err := s.leadSvc.List()
	if err != nil {
		slog.Error("Failed to list leads", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list leads")
		return
	}
	writeSuccess(w, leads)
}

func (s *Server) leadHandler(w http.ResponseWriter, r *http.Request) {
	lead, err := s.leadSvc.Get(r.PathValue("id"))
	if err != nil {
		slog.Error("Failed to get lead", "error", err, "id", r.PathValue("id"))
		writeError(w, http.StatusInternalServerError, "failed to get lead")
		return
	}
	if lead == nil {
		writeError(w, http.StatusNotFound, "lead not found")
		return
	}
	writeSuccess(w, lead)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, map[string]string{"service": "leadflow"})
}

// writeOrchestratorError maps orchestrator errors to HTTP status codes.
func writeOrchestratorError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrSessionBusy):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, models.ErrNotAtContactStep):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, models.ErrInvalidIntent),
		errors.Is(err, models.ErrInvalidWizardField),
		errors.Is(err, models.ErrInvalidFieldValue),
		errors.Is(err, models.ErrFieldStepMismatch),
		errors.Is(err, models.ErrEmptyQuery),
		errors.Is(err, models.ErrQueryTooLong),
		errors.Is(err, models.ErrMissingName),
		errors.Is(err, models.ErrMissingEmail),
		errors.Is(err, models.ErrMissingCompany),
		errors.Is(err, models.ErrContactFieldTooLong):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("Unhandled orchestrator error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

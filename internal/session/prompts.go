package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/CrestlineDigital/leadflow/internal/models"
)

// IntentOptions are the quick-reply choices offered at the intent step, in
// presentation order.
var IntentOptions = []string{
	string(models.IntentSales),
	string(models.IntentFAQ),
	string(models.IntentSupport),
	string(models.IntentGeneral),
}

// stepPrompt builds the assistant message that introduces a step. Suggestions
// carry the closed value set the caller may answer with.
func stepPrompt(step models.ConversationStep, data models.QualificationData) models.Message {
	msg := models.Message{
		Role:      models.RoleAssistant,
		Timestamp: time.Now().UTC(),
	}

	switch step {
	case models.StepIntent:
		msg.Content = "Hi, I'm the Crestline Digital assistant. What brings you here today?"
		msg.Suggestions = append([]string(nil), IntentOptions...)
	case models.StepOrgType:
		msg.Content = "Great. What type of organization are you?"
	case models.StepSize:
		msg.Content = "How large is your team?"
	case models.StepNeed:
		msg.Content = "What do you need help with most right now?"
	case models.StepStack:
		msg.Content = "What tools is your team currently working with?"
	case models.StepUrgency:
		msg.Content = "How soon are you looking to get started?"
	case models.StepBudget:
		msg.Content = "Do you have a budget range in mind?"
	case models.StepContact:
		msg.Content = "Let's get your details so the right person can follow up."
	case models.StepFAQ:
		msg.Content = "Ask me anything about our services, pricing, or support."
		msg.Suggestions = []string{
			"What services do you offer?",
			"How much does Microsoft 365 cost?",
			"What is your support policy?",
		}
	case models.StepSuccess:
		msg.Content = "Thanks! Your request is in and our team will reach out within one business day."
	default:
		msg.Content = "How can I help?"
	}

	if values := models.FieldValues(step); len(values) > 0 {
		msg.Suggestions = append([]string(nil), values...)
	}
	return msg
}

// recommendationsMessage renders generated recommendations as the assistant
// reply, with a navigate action per offering.
func recommendationsMessage(recs []models.Recommendation) models.Message {
	msg := models.Message{
		Role:      models.RoleAssistant,
		Timestamp: time.Now().UTC(),
	}
	if len(recs) == 0 {
		msg.Content = "Based on what you've told us, we'd like to talk through options in person. Share your details and we'll be in touch."
		return msg
	}

	var b strings.Builder
	b.WriteString("Based on what you've told us, here's what we recommend:\n")
	for i, r := range recs {
		fmt.Fprintf(&b, "%d. %s: %s\n", i+1, r.Name, r.Reason)
		msg.QuickActions = append(msg.QuickActions, models.QuickAction{
			Type:    models.QuickActionNavigate,
			Label:   r.Name,
			Payload: r.URL,
		})
	}
	b.WriteString("Leave your details and we'll follow up with specifics.")
	msg.Content = b.String()
	return msg
}

// successMessage confirms a completed lead submission.
func successMessage(contact models.Contact, lead models.Lead) models.Message {
	return models.Message{
		Role:      models.RoleAssistant,
		Content:   fmt.Sprintf("Thanks %s! Your request is in and our team will reach out to %s within one business day.", contact.Name, contact.Email),
		Timestamp: time.Now().UTC(),
	}
}

// Package notify sends sales-team alerts for high-value leads.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/CrestlineDigital/leadflow/internal/models"
)

// Notifier delivers a lead alert to the sales team.
type Notifier interface {
	NotifyLead(ctx context.Context, lead models.Lead) error
}

// Opts holds configuration options for the Twilio notifier.
type Opts struct {
	AccountSID string
	AuthToken  string
	FromNumber string
	ToNumber   string
}

// Option defines a configuration option for the Twilio notifier.
type Option func(*Opts)

// WithAccountSID sets the Twilio account SID.
func WithAccountSID(sid string) Option {
	return func(o *Opts) { o.AccountSID = sid }
}

// WithAuthToken sets the Twilio auth token.
func WithAuthToken(token string) Option {
	return func(o *Opts) { o.AuthToken = token }
}

// WithFromNumber sets the number alerts are sent from.
func WithFromNumber(from string) Option {
	return func(o *Opts) { o.FromNumber = from }
}

// WithToNumber sets the sales-team number alerts are sent to.
func WithToNumber(to string) Option {
	return func(o *Opts) { o.ToNumber = to }
}

// TwilioNotifier sends lead alerts as SMS via the Twilio REST API.
type TwilioNotifier struct {
	client *twilio.RestClient
	from   string
	to     string
}

// NewTwilioNotifier creates a Twilio notifier, falling back to environment
// variables for any option left unset.
func NewTwilioNotifier(opts ...Option) (*TwilioNotifier, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.AccountSID == "" {
		cfg.AccountSID = os.Getenv("TWILIO_ACCOUNT_SID")
	}
	if cfg.AuthToken == "" {
		cfg.AuthToken = os.Getenv("TWILIO_AUTH_TOKEN")
	}
	if cfg.FromNumber == "" {
		cfg.FromNumber = os.Getenv("TWILIO_FROM_NUMBER")
	}
	if cfg.ToNumber == "" {
		cfg.ToNumber = os.Getenv("SALES_ALERT_NUMBER")
	}
	slog.Debug("Twilio notifier config loaded",
		"AccountSID_set", cfg.AccountSID != "",
		"AuthToken_set", cfg.AuthToken != "",
		"FromNumber_set", cfg.FromNumber != "",
		"ToNumber_set", cfg.ToNumber != "")

	if cfg.AccountSID == "" || cfg.AuthToken == "" {
		return nil, fmt.Errorf("account SID and auth token must be provided")
	}
	if cfg.FromNumber == "" || cfg.ToNumber == "" {
		return nil, fmt.Errorf("from and to numbers must be provided")
	}

	client := twilio.NewRestClientWithParams(
		twilio.ClientParams{
			Username: cfg.AccountSID,
			Password: cfg.AuthToken,
		},
	)

	return &TwilioNotifier{client: client, from: cfg.FromNumber, to: cfg.ToNumber}, nil
}

// NotifyLead sends an SMS summary of the lead to the sales team.
func (n *TwilioNotifier) NotifyLead(ctx context.Context, lead models.Lead) error {
	body := formatLeadAlert(lead)

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(n.to)
	params.SetFrom(n.from)
	params.SetBody(body)

	_, err := n.client.Api.CreateMessage(params)
	if err != nil {
		slog.Error("Twilio NotifyLead failed", "lead_id", lead.ID, "error", err)
		return fmt.Errorf("failed to send lead alert for %s: %w", lead.ID, err)
	}

	slog.Debug("Twilio lead alert sent", "lead_id", lead.ID, "score", lead.LeadScore)
	return nil
}

func formatLeadAlert(lead models.Lead) string {
	d := lead.Data
	return fmt.Sprintf("New high-value lead: %s (%s) at %s. Need: %s, urgency: %s, budget: %s. Score %d.",
		d.Contact.Name, d.Contact.Email, d.Contact.Company, d.PrimaryNeed, d.Urgency, d.Budget, lead.LeadScore)
}

// NoopNotifier discards alerts. Used when no Twilio credentials are
// configured.
type NoopNotifier struct{}

func (NoopNotifier) NotifyLead(ctx context.Context, lead models.Lead) error {
	slog.Debug("NoopNotifier discarding lead alert", "lead_id", lead.ID)
	return nil
}

// MockNotifier records alerts for tests.
type MockNotifier struct {
	Notified []models.Lead
	Err      error
}

func (m *MockNotifier) NotifyLead(ctx context.Context, lead models.Lead) error {
	if m.Err != nil {
		return m.Err
	}
	m.Notified = append(m.Notified, lead)
	return nil
}

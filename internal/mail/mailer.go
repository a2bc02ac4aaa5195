// Package mail builds and delivers renewal-reminder e-mails.
//
// The message content is derived entirely from the ReminderEmail payload:
// subject urgency follows the reminder tier, and auto-renewing contracts
// with a notice period get an extra warning block with the computed
// cancellation deadline. Delivery goes through the Mailer interface so the
// scheduler can be tested with a fake; the production implementation uses
// the Resend transactional API.
package mail

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/resend/resend-go/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ReminderEmail is the structured payload handed to the delivery provider.
type ReminderEmail struct {
	To               string
	UserName         string
	ContractName     string
	VendorName       string
	RenewalDate      string // YYYY-MM-DD
	DaysUntilRenewal int
	NoticePeriodDays *int
	AutoRenews       bool
	ContractID       string
}

// Mailer delivers a reminder e-mail. Implementations must be safe for
// concurrent use.
type Mailer interface {
	SendReminder(ctx context.Context, msg ReminderEmail) error
}

// Subject returns the tier-dependent subject line.
func (m ReminderEmail) Subject() string {
	switch {
	case m.DaysUntilRenewal == 0:
		return "[ACTION REQUIRED] Contract renewal TODAY"
	case m.DaysUntilRenewal <= 7:
		return fmt.Sprintf("[ACTION REQUIRED] Contract renewal in %d days", m.DaysUntilRenewal)
	default:
		return fmt.Sprintf("Contract renewal in %d days", m.DaysUntilRenewal)
	}
}

// HTML renders the message body. appURL is the public base URL used for the
// "view contract" deep link.
func (m ReminderEmail) HTML(appURL string) string {
	var urgency string
	if m.DaysUntilRenewal == 0 {
		urgency = "Your contract renews TODAY!"
	} else {
		urgency = fmt.Sprintf("Your contract renews in %d days.", m.DaysUntilRenewal)
	}

	var b strings.Builder
	b.WriteString(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">`)
	fmt.Fprintf(&b, `<h2 style="color: #dc2626;">%s</h2>`, urgency)

	b.WriteString(`<div style="background-color: #f3f4f6; padding: 20px; border-radius: 8px;">`)
	fmt.Fprintf(&b, `<p><strong>Contract:</strong> %s</p>`, html.EscapeString(m.ContractName))
	if m.VendorName != "" {
		fmt.Fprintf(&b, `<p><strong>Vendor:</strong> %s</p>`, html.EscapeString(m.VendorName))
	}
	fmt.Fprintf(&b, `<p><strong>Renewal Date:</strong> %s</p>`, m.RenewalDate)
	if m.NoticePeriodDays != nil {
		fmt.Fprintf(&b, `<p><strong>Notice Period:</strong> %d days</p>`, *m.NoticePeriodDays)
	}
	if m.AutoRenews {
		b.WriteString(`<p><strong>Auto-Renews:</strong> Yes</p>`)
	} else {
		b.WriteString(`<p><strong>Auto-Renews:</strong> No</p>`)
	}
	b.WriteString(`</div>`)

	if m.AutoRenews && m.NoticePeriodDays != nil {
		fmt.Fprintf(&b,
			`<div style="background-color: #fef2f2; border-left: 4px solid #dc2626; padding: 15px;">`+
				`<p style="margin: 0; color: #991b1b;"><strong>Action Required:</strong> `+
				`This contract auto-renews. You must provide notice at least %d days before %s if you want to cancel.</p></div>`,
			*m.NoticePeriodDays, m.RenewalDate)
	}

	fmt.Fprintf(&b,
		`<div style="margin: 30px 0;"><a href="%s/contracts/%s" `+
			`style="background-color: #2563eb; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px;">`+
			`View Contract Details</a></div>`,
		strings.TrimRight(appURL, "/"), m.ContractID)

	b.WriteString(`<p style="color: #6b7280; font-size: 14px;">— RenewalRadar<br/>Never miss a contract renewal deadline.</p>`)
	b.WriteString(`</div>`)
	return b.String()
}

// DisplayName derives a salutation from an e-mail address when no explicit
// name is known: the local part with separators spaced and title-cased
// ("jane.doe@x.com" → "Jane Doe").
func DisplayName(email string) string {
	local := email
	if i := strings.IndexByte(email, '@'); i >= 0 {
		local = email[:i]
	}
	local = strings.NewReplacer(".", " ", "_", " ", "-", " ").Replace(local)
	return cases.Title(language.English).String(local)
}

// ResendMailer delivers reminders through the Resend API.
type ResendMailer struct {
	client *resend.Client
	from   string
	appURL string
}

// NewResendMailer constructs a ResendMailer. from is the sender address
// ("RenewalRadar <noreply@example.com>"), appURL the public base URL used
// in deep links.
func NewResendMailer(apiKey, from, appURL string) *ResendMailer {
	return &ResendMailer{
		client: resend.NewClient(apiKey),
		from:   from,
		appURL: appURL,
	}
}

// SendReminder sends one reminder e-mail. Any provider error is returned
// as-is; the caller decides whether to record or aggregate it.
func (r *ResendMailer) SendReminder(ctx context.Context, msg ReminderEmail) error {
	_, err := r.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    r.from,
		To:      []string{msg.To},
		Subject: msg.Subject(),
		Html:    msg.HTML(r.appURL),
	})
	if err != nil {
		return fmt.Errorf("send reminder for contract %s: %w", msg.ContractID, err)
	}
	return nil
}

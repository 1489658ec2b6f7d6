// Package notify mails error reports and watched field changes. Delivery is
// best effort: failures are logged and never returned to the caller.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"text/template"
	"time"

	"github.com/rpggio/boardsum/internal/domain/event"
)

// Config addresses outgoing mail.
type Config struct {
	From string
	// To receives change notifications.
	To []string
	// ToName greets change notification readers. Defaults to "Team".
	ToName string
	// ErrorTo receives error reports.
	ErrorTo []string
	// CardURLBase prefixes card short links. Defaults to
	// "https://trello.com/c/".
	CardURLBase string
}

const defaultCardURLBase = "https://trello.com/c/"

var errorTemplate = template.Must(template.New("error").Parse(`Hi,

An error occurred in the Trello automation system.

Context: {{.Context}}
Time: {{.Time}}
Error Message: {{.Message}}

Please investigate.

Best,
Your Trello Bot
`))

var changeTemplate = template.Must(template.New("change").Parse(`Hi {{.Name}},

Please note that the Trello card has been updated with new values on {{.Date}}.

Updated Field:
{{.Field}}
Old Value: {{.Old}}
New Value: {{.New}}

Card Details:
Card Name: {{.Card}}
Card URL: {{.URL}}

Feel free to review the changes and reach out if you have any questions or need clarification.

Best regards,
Your Trello Notification System
`))

// Notifier implements event.Notifier over a Mailer.
type Notifier struct {
	mailer Mailer
	cfg    Config
	logger *slog.Logger
	now    func() time.Time
}

var _ event.Notifier = (*Notifier)(nil)

// New creates a notifier. A nil mailer logs instead of sending.
func New(mailer Mailer, cfg Config, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if mailer == nil {
		mailer = NewLogMailer(logger)
	}
	if cfg.ToName == "" {
		cfg.ToName = "Team"
	}
	if cfg.CardURLBase == "" {
		cfg.CardURLBase = defaultCardURLBase
	}
	return &Notifier{mailer: mailer, cfg: cfg, logger: logger, now: time.Now}
}

// WithClock returns a copy of n that stamps messages with now.
func (n *Notifier) WithClock(now func() time.Time) *Notifier {
	cp := *n
	cp.now = now
	return &cp
}

// NotifyError mails an error report to the error recipients.
func (n *Notifier) NotifyError(ctx context.Context, where string, err error) {
	if err == nil {
		return
	}
	msg, renderErr := n.ErrorMessage(where, err)
	if renderErr != nil {
		n.logger.Error("rendering error mail failed", "error", renderErr)
		return
	}
	n.send(ctx, msg)
}

// NotifyChange mails a description of a watched field change.
func (n *Notifier) NotifyChange(ctx context.Context, ev event.ChangeEvent) {
	if ev.Field == nil {
		return
	}
	msg, err := n.ChangeMessage(ev)
	if err != nil {
		n.logger.Error("rendering change mail failed", "error", err)
		return
	}
	n.send(ctx, msg)
}

// ErrorMessage renders the error report mail.
func (n *Notifier) ErrorMessage(where string, err error) (Message, error) {
	var body bytes.Buffer
	data := struct {
		Context string
		Time    string
		Message string
	}{
		Context: where,
		Time:    n.now().Format("January 2, 2006 3:04:05 PM MST"),
		Message: err.Error(),
	}
	if err := errorTemplate.Execute(&body, data); err != nil {
		return Message{}, fmt.Errorf("rendering error mail: %w", err)
	}
	return Message{
		From:    n.cfg.From,
		To:      n.cfg.ErrorTo,
		Subject: fmt.Sprintf("Error in Trello Automation (%s)", where),
		Body:    body.String(),
	}, nil
}

// ChangeMessage renders the change notification mail.
func (n *Notifier) ChangeMessage(ev event.ChangeEvent) (Message, error) {
	field := ""
	if ev.Field != nil {
		field = ev.Field.Name
	}
	var body bytes.Buffer
	data := struct {
		Name  string
		Date  string
		Field string
		Old   string
		New   string
		Card  string
		URL   string
	}{
		Name:  n.cfg.ToName,
		Date:  n.now().Format("January 2, 2006"),
		Field: field,
		Old:   displayValue(ev.Old.Text, ev.Old.Number),
		New:   displayValue(ev.New.Text, ev.New.Number),
		Card:  ev.Card.Name,
		URL:   n.cfg.CardURLBase + ev.Card.ShortLink,
	}
	if err := changeTemplate.Execute(&body, data); err != nil {
		return Message{}, fmt.Errorf("rendering change mail: %w", err)
	}
	return Message{
		From:    n.cfg.From,
		To:      n.cfg.To,
		Subject: fmt.Sprintf(`Trello Update: "%s" changed on "%s"`, field, ev.Card.Name),
		Body:    body.String(),
	}, nil
}

// displayValue prefers text over number and shows "0" for no value.
func displayValue(text, number string) string {
	if strings.TrimSpace(text) != "" {
		return text
	}
	if number != "" {
		return number
	}
	return "0"
}

func (n *Notifier) send(ctx context.Context, msg Message) {
	if len(msg.To) == 0 {
		n.logger.Debug("mail skipped, no recipients", "subject", msg.Subject)
		return
	}
	if err := n.mailer.Send(ctx, msg); err != nil {
		n.logger.Error("sending mail failed", "subject", msg.Subject, "error", err)
		return
	}
	n.logger.Info("mail sent", "subject", msg.Subject, "to", strings.Join(msg.To, ","))
}

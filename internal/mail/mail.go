package mail

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mailgun/mailgun-go/v4"
)

type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

//go:generate mockgen -source=mail.go -destination=sender_mock.go -package=mail
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// New picks the delivery backend. Anything other than a fully configured Mailgun falls back to Log.
func New(provider, domain, apiKey, from string) Sender {
	switch strings.ToLower(provider) {
	case "mailgun":
		if domain == "" || apiKey == "" || from == "" {
			slog.Warn("mailgun configuration incomplete, falling back to log mailer")
			return Log{}
		}

		slog.Info("mailgun mailer initialized", "domain", domain)

		return NewMailgun(domain, apiKey, from)
	default:
		slog.Info("using log mailer", "provider", provider)
		return Log{}
	}
}

type Mailgun struct {
	mg   mailgun.Mailgun
	from string
}

func NewMailgun(domain, apiKey, from string) *Mailgun {
	return &Mailgun{mg: mailgun.NewMailgun(domain, apiKey), from: from}
}

func (m *Mailgun) Send(ctx context.Context, msg Message) error {
	message := m.mg.NewMessage(m.from, msg.Subject, msg.Text, msg.To)
	if msg.HTML != "" {
		message.SetHtml(msg.HTML)
	}

	ctx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	resp, id, err := m.mg.Send(ctx, message)
	if err != nil {
		return fmt.Errorf("mailgun send: %w (response: %s)", err, resp)
	}

	slog.Info("email sent", "to", msg.To, "id", id)

	return nil
}

// Log writes messages to the logger instead of delivering them.
type Log struct{}

func (Log) Send(_ context.Context, msg Message) error {
	slog.Info("email (not delivered)", "to", msg.To, "subject", msg.Subject, "body", msg.Text)
	return nil
}

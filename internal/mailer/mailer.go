// Package mailer sends the platform's transactional email: verification
// links and the operator test message.
package mailer

import (
	"context"
	"fmt"

	"github.com/goliatone/go-errors"
	"github.com/wneessen/go-mail"
)

// Message is a plain-text outbound email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers messages to a single recipient.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// VerificationMessage builds the account verification email for a freshly
// registered pending user.
func VerificationMessage(to, callbackURL string) Message {
	return Message{
		To:      to,
		Subject: "Verify your PeakForm account",
		Body: fmt.Sprintf(
			"Welcome to PeakForm!\n\nConfirm your email address to activate your account:\n\n%s\n\nIf you did not sign up, ignore this message.\n",
			callbackURL,
		),
	}
}

// TestMessage is the fixed-content message sent by the test email endpoint.
func TestMessage(to string) Message {
	return Message{
		To:      to,
		Subject: "PeakForm test email",
		Body:    "This is a test email from the PeakForm platform. Delivery is working.\n",
	}
}

// SMTPConfig carries the settings for the SMTP mailer.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPMailer delivers through an SMTP relay.
type SMTPMailer struct {
	client *mail.Client
	from   string
}

var _ Mailer = (*SMTPMailer)(nil)

func NewSMTPMailer(cfg SMTPConfig) (*SMTPMailer, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to build smtp client")
	}

	return &SMTPMailer{
		client: client,
		from:   cfg.From,
	}, nil
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	mm := mail.NewMsg()
	if err := mm.From(m.from); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "invalid sender address")
	}
	if err := mm.To(msg.To); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "invalid recipient address")
	}
	mm.Subject(msg.Subject)
	mm.SetBodyString(mail.TypeTextPlain, msg.Body)

	if err := m.client.DialAndSendWithContext(ctx, mm); err != nil {
		return errors.Wrap(err, errors.CategoryExternal, "failed to deliver email").
			WithMetadata(map[string]any{
				"to":      msg.To,
				"subject": msg.Subject,
			})
	}
	return nil
}

type Logger interface {
	Info(msg string, args ...any)
}

// LogMailer writes messages to the log instead of delivering them. Used in
// development and in tests when no relay is configured.
type LogMailer struct {
	logger Logger
}

var _ Mailer = (*LogMailer)(nil)

func NewLogMailer(logger Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if m.logger != nil {
		m.logger.Info("outbound email", "to", msg.To, "subject", msg.Subject, "body", msg.Body)
	}
	return nil
}

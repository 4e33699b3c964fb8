package email

import (
	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"
)

// Mailer sends one transactional HTML email. Dispatch is synchronous and
// in-request; callers log failures and move on. A lost email never fails
// the state change that triggered it.
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

// SMTPMailer delivers through a real SMTP relay.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(host string, port int, user, pass, from string) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, user, pass),
		from:   from,
	}
}

func (m *SMTPMailer) Send(to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)
	return m.dialer.DialAndSend(msg)
}

// ConsoleMailer logs emails instead of sending them. Used in development
// when no SMTP host is configured, so flows can be tested end to end
// without a mail account.
type ConsoleMailer struct {
	Log *zap.Logger
}

func (m *ConsoleMailer) Send(to, subject, htmlBody string) error {
	m.Log.Info("email (console mailer, not sent)",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.Int("bodyBytes", len(htmlBody)),
	)
	return nil
}

package mailer

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"
)

// SMTP sends mail through an authenticated SMTP relay.
type SMTP struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTP(host string, port int, username, password, fromEmail, fromName string) *SMTP {
	return &SMTP{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   fmt.Sprintf("%s <%s>", fromName, fromEmail),
	}
}

func (s *SMTP) Send(ctx context.Context, msg Message) error {
	msg, err := Render(msg)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Text)
	if msg.HTML != "" {
		m.AddAlternative("text/html", msg.HTML)
	}
	return s.dialer.DialAndSend(m)
}

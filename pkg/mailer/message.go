// Package mailer delivers transactional email through SMTP, Mailgun or a RabbitMQ queue.
package mailer

import (
	"context"
	"errors"

	mailtpl "github.com/oksasatya/devcamper-api/pkg/mailer/templates"
)

// Message is an outgoing email. When Template is set, Subject, Text and HTML are rendered from it.
type Message struct {
	To       string
	Subject  string
	Text     string
	HTML     string
	Template string
	Data     map[string]any
}

// Sender delivers a message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

var ErrNoRecipient = errors.New("mailer: message has no recipient")

// Render fills the bodies of a templated message. Messages without a template are returned unchanged.
func Render(msg Message) (Message, error) {
	if msg.To == "" {
		return msg, ErrNoRecipient
	}
	if msg.Template == "" {
		return msg, nil
	}
	subject, text, html, err := mailtpl.Render(msg.Template, msg.Data)
	if err != nil {
		return msg, err
	}
	msg.Subject, msg.Text, msg.HTML = subject, text, html
	msg.Template, msg.Data = "", nil
	return msg, nil
}

// Job converts the message into a queue payload.
func (m Message) Job() EmailJob {
	return EmailJob{To: m.To, Subject: m.Subject, Text: m.Text, HTML: m.HTML, Template: m.Template, Data: m.Data}
}

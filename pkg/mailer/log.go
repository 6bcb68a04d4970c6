package mailer

import (
	"context"

	"github.com/sirupsen/logrus"
)

// LogSender only logs outgoing mail. It is used when MAIL_SEND_ENABLED is false.
type LogSender struct {
	Logger *logrus.Logger
}

func (l LogSender) Send(_ context.Context, msg Message) error {
	msg, err := Render(msg)
	if err != nil {
		return err
	}
	l.Logger.WithFields(logrus.Fields{"to": msg.To, "subject": msg.Subject}).Info("mail sending disabled; message dropped")
	l.Logger.Debug(msg.Text)
	return nil
}

package main

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/devcamper-api/pkg/mailer"
	mailtpl "github.com/oksasatya/devcamper-api/pkg/mailer/templates"
)

type outcome int

const (
	outcomeAck outcome = iota
	outcomeDrop
	outcomeRetry
)

type worker struct {
	sender   mailer.Sender
	resolver mailtpl.GeoResolver
	logger   *logrus.Logger
	timeout  time.Duration
}

// handle delivers one queued job. Malformed or unrenderable jobs are dropped;
// transport failures are retried.
func (w *worker) handle(ctx context.Context, body []byte) outcome {
	var job mailer.EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		w.logger.WithError(err).Warn("bad email job")
		return outcomeDrop
	}

	mailtpl.Localize(ctx, w.resolver, job.Data)

	msg, err := mailer.Render(job.Message())
	if err != nil {
		w.logger.WithError(err).WithFields(logrus.Fields{"template": job.Template, "to": job.To}).Warn("render failed")
		return outcomeDrop
	}

	sendCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()
	if err := w.sender.Send(sendCtx, msg); err != nil {
		w.logger.WithError(err).WithField("to", msg.To).Error("send failed")
		return outcomeRetry
	}
	w.logger.WithFields(logrus.Fields{"to": msg.To, "subject": msg.Subject}).Info("email sent")
	return outcomeAck
}

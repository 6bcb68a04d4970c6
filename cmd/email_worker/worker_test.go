package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/devcamper-api/pkg/mailer"
	mailtpl "github.com/oksasatya/devcamper-api/pkg/mailer/templates"
)

type recordingSender struct {
	sent []mailer.Message
	err  error
}

func (s *recordingSender) Send(_ context.Context, msg mailer.Message) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

type fixedResolver struct{}

func (fixedResolver) Lookup(context.Context, string) (mailtpl.Geo, error) {
	return mailtpl.Geo{City: "Boston", Region: "MA", Country: "US"}, nil
}

func newWorker(sender mailer.Sender) *worker {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return &worker{sender: sender, resolver: fixedResolver{}, logger: logger, timeout: time.Second}
}

func queuedReset(t *testing.T) []byte {
	t.Helper()
	msg := mailer.Message{
		To:       "jane@example.com",
		Template: mailtpl.ResetPassword,
		Data: mailtpl.NewResetPasswordData("DevCamper", "Jane", "jane@example.com",
			"http://localhost:5000/api/v1/auth/resetpassword/abc", mailtpl.WithIP("8.8.8.8")),
	}
	b, err := json.Marshal(msg.Job())
	require.NoError(t, err)
	return b
}

func TestWorker_RendersAndSends(t *testing.T) {
	s := &recordingSender{}
	w := newWorker(s)

	assert.Equal(t, outcomeAck, w.handle(context.Background(), queuedReset(t)))
	require.Len(t, s.sent, 1)
	assert.Equal(t, "Password reset token", s.sent[0].Subject)
	assert.Contains(t, s.sent[0].Text, "/auth/resetpassword/abc")
	assert.Contains(t, s.sent[0].Text, "Boston, MA, US (8.8.8.8)")
}

func TestWorker_DropsMalformedJobs(t *testing.T) {
	s := &recordingSender{}
	w := newWorker(s)

	assert.Equal(t, outcomeDrop, w.handle(context.Background(), []byte("{not json")))
	assert.Equal(t, outcomeDrop, w.handle(context.Background(), []byte(`{"template":"reset_password"}`)))
	assert.Equal(t, outcomeDrop, w.handle(context.Background(), []byte(`{"to":"a@b.c","template":"missing"}`)))
	assert.Empty(t, s.sent)
}

func TestWorker_RetriesTransportFailures(t *testing.T) {
	w := newWorker(&recordingSender{err: errors.New("smtp down")})
	assert.Equal(t, outcomeRetry, w.handle(context.Background(), queuedReset(t)))
}

package mailer

import "context"

// Publisher puts a JSON payload on a queue. helpers.RabbitPublisher satisfies it.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// Queue hands messages to the email worker instead of sending them inline.
// Templates are rendered by the worker.
type Queue struct {
	pub Publisher
}

func NewQueue(pub Publisher) *Queue {
	return &Queue{pub: pub}
}

func (q *Queue) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return ErrNoRecipient
	}
	return q.pub.PublishJSON(ctx, msg.Job())
}

package mailer

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Either the rendered bodies or a Template with its Data are set.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"` // e.g. "reset_password"
	Data     map[string]any `json:"data,omitempty"`
}

// Message converts the job into a message for a direct transport.
func (j EmailJob) Message() Message {
	return Message{To: j.To, Subject: j.Subject, Text: j.Text, HTML: j.HTML, Template: j.Template, Data: j.Data}
}

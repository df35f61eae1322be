package alerts

import "time"

// Task type constants
const (
	TaskWelcomeEmail = "email:welcome"
)

// EmailEnvelope is the common shape of an outgoing message.
type EmailEnvelope struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// WelcomeEmailPayload is queued on signup.
type WelcomeEmailPayload struct {
	UserID   string        `json:"user_id"`
	Name     string        `json:"name"`
	Email    string        `json:"email"`
	Envelope EmailEnvelope `json:"envelope"`
	SentAt   time.Time     `json:"sent_at"`
}

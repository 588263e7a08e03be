// Package queue defines message payloads exchanged over the message broker
// and the background consumer that drains them.
package queue

// Email kinds carried in EmailRequestedEvent.
const (
	EmailKindVerification  = "verification"
	EmailKindPasswordReset = "password_reset"
)

// EmailQueueName is the durable queue holding outbound account emails.
const EmailQueueName = "auth.email"

// EmailRequestedEvent is published whenever the auth service wants an email
// delivered. It carries everything the delivery side needs; the actual SMTP
// hand-off stays with the mail relay consuming this queue.
type EmailRequestedEvent struct {
	Kind        string `json:"kind"` // verification | password_reset
	Email       string `json:"email"`
	ActionURL   string `json:"action_url"`
	RequestedAt string `json:"requested_at"`
}

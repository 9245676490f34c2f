package notifications

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// NotificationStatus represents the delivery state of a notification
type NotificationStatus string

const (
	NotificationStatusQueued NotificationStatus = "queued"
	NotificationStatusFailed NotificationStatus = "failed"
)

// Notification is the message published to the notification pipeline. A
// downstream consumer renders the template and delivers the email; this
// service only enqueues.
type Notification struct {
	ID             uuid.UUID              `json:"id"`
	TemplateKey    string                 `json:"template_key"`
	RecipientEmail string                 `json:"recipient_email"`
	RecipientName  string                 `json:"recipient_name"`
	Data           map[string]interface{} `json:"data,omitempty"`
	Status         NotificationStatus     `json:"status"`
	CreatedAt      time.Time              `json:"created_at"`
}

// NewNotification creates a notification ready to enqueue
func NewNotification(templateKey, recipientEmail, recipientName string, data map[string]interface{}) *Notification {
	return &Notification{
		ID:             uuid.New(),
		TemplateKey:    templateKey,
		RecipientEmail: recipientEmail,
		RecipientName:  recipientName,
		Data:           data,
		Status:         NotificationStatusQueued,
		CreatedAt:      time.Now(),
	}
}

// ToJSON serializes the notification for the wire
func (n *Notification) ToJSON() ([]byte, error) {
	return json.Marshal(n)
}

// GetPartitionKey returns the Kafka partition key. Keying by recipient keeps
// one customer's notifications in order.
func (n *Notification) GetPartitionKey() string {
	return n.RecipientEmail
}

package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	HeaderEventID       = "event-id"
	HeaderEventType     = "event-type"
	HeaderTemplateID    = "template-id"
	HeaderSchemaVersion = "schema-version"
	HeaderSource        = "source"
	HeaderTimestamp     = "timestamp"
	HeaderOriginalTopic = "original-topic"
	HeaderDLQError      = "dlq-error"
	HeaderDLQTimestamp  = "dlq-timestamp"
)

const (
	EventNotificationRequested = "notification.requested"
	NotificationSchemaVersion  = "1"
)

// Message is one record handed to the producer.
type Message struct {
	Key       string
	Value     []byte
	Headers   map[string]string
	Topic     string
	Timestamp time.Time
}

// Notification asks the mailer to render a template with params.
type Notification struct {
	TemplateID  string            `json:"template_id"`
	Params      map[string]string `json:"params"`
	RequestedAt time.Time         `json:"requested_at"`
}

// NewNotificationMessage wraps n for the relay topic. Messages with the
// same key land on the same partition, so one customer's notifications
// stay in order.
func NewNotificationMessage(n Notification, key, source string) (Message, error) {
	if n.TemplateID == "" {
		return Message{}, fmt.Errorf("notification has no template id")
	}
	if n.RequestedAt.IsZero() {
		n.RequestedAt = time.Now().UTC()
	}
	if key == "" {
		key = n.TemplateID
	}

	value, err := json.Marshal(n)
	if err != nil {
		return Message{}, fmt.Errorf("could not encode notification: %w", err)
	}

	return Message{
		Key:   key,
		Value: value,
		Headers: map[string]string{
			HeaderEventID:       uuid.NewString(),
			HeaderEventType:     EventNotificationRequested,
			HeaderTemplateID:    n.TemplateID,
			HeaderSchemaVersion: NotificationSchemaVersion,
			HeaderSource:        source,
			HeaderTimestamp:     n.RequestedAt.Format(time.RFC3339),
		},
		Timestamp: n.RequestedAt,
	}, nil
}

// Notification decodes the payload written by NewNotificationMessage.
func (m *Message) Notification() (Notification, error) {
	var n Notification
	if err := json.Unmarshal(m.Value, &n); err != nil {
		return Notification{}, fmt.Errorf("could not decode notification: %w", err)
	}
	return n, nil
}

func (m *Message) EventID() string {
	return m.Headers[HeaderEventID]
}

func (m *Message) TemplateID() string {
	return m.Headers[HeaderTemplateID]
}

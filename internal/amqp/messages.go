package amqp

import (
	"encoding/json"
	"time"
)

// Notification kinds.
const (
	KindExportSummary    = "export_summary"
	KindSelectionSummary = "selection_summary"
)

// NotificationMessage carries a summary text for the SMS gateway that
// consumes the notification queue.
type NotificationMessage struct {
	Kind      string    `json:"kind"`
	Phone     string    `json:"phone"`
	Name      string    `json:"name"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// NewNotificationMessage creates a message stamped with the current time
func NewNotificationMessage(kind, phone, name, text string) *NotificationMessage {
	return &NotificationMessage{
		Kind:      kind,
		Phone:     phone,
		Name:      name,
		Text:      text,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *NotificationMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// NotificationMessageFromJSON creates a message from JSON bytes
func NotificationMessageFromJSON(data []byte) (*NotificationMessage, error) {
	var msg NotificationMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

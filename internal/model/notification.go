package model

import (
	"fmt"
	"time"
)

// Notification is a message delivered to a user inside the application.
type Notification struct {
	ID        int64
	Recipient string
	Message   string
	CreatedAt time.Time
	Read      bool
}

// NotificationRecord is the flat transfer form of a notification.
type NotificationRecord struct {
	ID        int64     `json:"id"`
	Recipient string    `json:"recipient"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
	Read      bool      `json:"read"`
}

// Validate checks the record fields common to every backend.
func (r *NotificationRecord) Validate() error {
	if r.Recipient == "" {
		return fmt.Errorf("recipient is required")
	}
	if r.Message == "" {
		return fmt.Errorf("message is required")
	}
	return nil
}

// ToNotification builds the domain object for this record.
func (r *NotificationRecord) ToNotification() *Notification {
	return &Notification{
		ID:        r.ID,
		Recipient: r.Recipient,
		Message:   r.Message,
		CreatedAt: r.CreatedAt,
		Read:      r.Read,
	}
}

// RecordFromNotification converts a domain notification back to its flat
// record form.
func RecordFromNotification(n *Notification) *NotificationRecord {
	return &NotificationRecord{
		ID:        n.ID,
		Recipient: n.Recipient,
		Message:   n.Message,
		CreatedAt: n.CreatedAt,
		Read:      n.Read,
	}
}

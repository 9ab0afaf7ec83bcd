package domain

import "time"

// MessageType enumerates the kinds of XML message the generator accepts.
type MessageType string

const (
	MessageOrder        MessageType = "Order"
	MessageInvoice      MessageType = "Invoice"
	MessageNotification MessageType = "Notification"
	MessageReport       MessageType = "Report"
	MessageCustom       MessageType = "Custom"
)

// Valid reports whether t is a known message type.
func (t MessageType) Valid() bool {
	switch t {
	case MessageOrder, MessageInvoice, MessageNotification, MessageReport, MessageCustom:
		return true
	}
	return false
}

// Message is a generated XML message that a user chose to keep.
type Message struct {
	ID        int64     `json:"id"`
	Filename  string    `json:"filename"`
	Content   string    `json:"content,omitempty"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

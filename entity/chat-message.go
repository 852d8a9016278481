package entity

import (
	"time"
)

// Message senders.
const (
	SenderUser = "user"
	SenderBot  = "bot"
)

// Message kinds.
const (
	KindText        = "text"
	KindAudio       = "audio"
	KindImage       = "image"
	KindVideo       = "video"
	KindPaymentCode = "payment_code"
)

// Delivery statuses.
const (
	StatusSent      = "sent"
	StatusDelivered = "delivered"
	StatusRead      = "read"
)

// ChatMessage represents a single message in a funnel conversation.
// IDs are monotonic within one session; messages are append-only and
// never mutated except for the delivery status.
type ChatMessage struct {
	ID         int64     `json:"id"`
	SessionID  string    `json:"session_id"`
	Sender     string    `json:"sender"` // "user" | "bot"
	Kind       string    `json:"kind"`   // "text" | "audio" | "image" | "video" | "payment_code"
	Text       string    `json:"text,omitempty"`
	URL        string    `json:"url,omitempty"`
	Code       string    `json:"code,omitempty"`        // payable copy-paste code, payment_code kind only
	ValueCents int64     `json:"value_cents,omitempty"` // charge amount, payment_code kind only
	Timestamp  string    `json:"timestamp"`             // HH:MM display time
	Status     string    `json:"status"`                // "sent" | "delivered" | "read"
	CreatedAt  time.Time `json:"created_at"`
}

package notification

import (
	"time"

	"github.com/google/uuid"
)

// Channel is how a reminder reaches the member
type Channel string

const (
	ChannelEmail    Channel = "email"
	ChannelWhatsApp Channel = "whatsapp"
	ChannelBoth     Channel = "both"
)

// Status is the delivery outcome of a reminder
type Status string

const (
	StatusSent    Status = "SENT"
	StatusFailed  Status = "FAILED"
	StatusSkipped Status = "SKIPPED"
)

// Reminder is one payment reminder and what happened to it
type Reminder struct {
	ID         uuid.UUID `json:"id"`
	ExpenseID  uuid.UUID `json:"expense_id"`
	MemberID   uuid.UUID `json:"member_id"`
	MemberName string    `json:"member_name"`
	Email      string    `json:"email"`
	WhatsApp   *string   `json:"whatsapp,omitempty"`
	Channel    Channel   `json:"channel"`
	Amount     float64   `json:"amount"`
	Message    string    `json:"message"`
	Status     Status    `json:"status"`
	Error      *string   `json:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Outgoing is a reminder waiting to be dispatched
type Outgoing struct {
	ExpenseID  uuid.UUID
	MemberID   uuid.UUID
	MemberName string
	Email      string
	WhatsApp   *string
	Amount     float64
	Message    string
}

// channel picks email, plus WhatsApp when the member has a number
func (o Outgoing) channel() Channel {
	if o.WhatsApp == nil || *o.WhatsApp == "" {
		return ChannelEmail
	}
	if o.Email == "" {
		return ChannelWhatsApp
	}
	return ChannelBoth
}

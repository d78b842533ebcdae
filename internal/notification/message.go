package notification

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ReminderMessage is the queue payload handed to the mail/WhatsApp worker
type ReminderMessage struct {
	ReminderID uuid.UUID `json:"reminder_id"`
	ExpenseID  uuid.UUID `json:"expense_id"`
	MemberID   uuid.UUID `json:"member_id"`
	MemberName string    `json:"member_name"`
	Email      string    `json:"email"`
	WhatsApp   *string   `json:"whatsapp,omitempty"`
	Channel    Channel   `json:"channel"`
	Amount     float64   `json:"amount"`
	Message    string    `json:"message"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewReminderMessage builds the payload for a reminder
func NewReminderMessage(r *Reminder) *ReminderMessage {
	return &ReminderMessage{
		ReminderID: r.ID,
		ExpenseID:  r.ExpenseID,
		MemberID:   r.MemberID,
		MemberName: r.MemberName,
		Email:      r.Email,
		WhatsApp:   r.WhatsApp,
		Channel:    r.Channel,
		Amount:     r.Amount,
		Message:    r.Message,
		Timestamp:  time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ReminderMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

package settlement

import (
	"time"

	"github.com/google/uuid"
)

// PaymentMethod is how a member paid towards an expense
type PaymentMethod string

const (
	PaymentMethodCash          PaymentMethod = "cash"
	PaymentMethodUPI           PaymentMethod = "UPI"
	PaymentMethodCard          PaymentMethod = "card"
	PaymentMethodDigitalWallet PaymentMethod = "digital_wallet"
	PaymentMethodOther         PaymentMethod = "other"
)

// Valid reports whether m is one of the known methods
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodUPI, PaymentMethodCard, PaymentMethodDigitalWallet, PaymentMethodOther:
		return true
	}
	return false
}

// Payment is money a member put towards an expense
type Payment struct {
	ID        uuid.UUID     `json:"id"`
	ExpenseID uuid.UUID     `json:"expense_id"`
	MemberID  uuid.UUID     `json:"member_id"`
	Amount    float64       `json:"amount"`
	Method    PaymentMethod `json:"method"`
	Notes     *string       `json:"notes,omitempty"`
	PaidAt    time.Time     `json:"paid_at"`

	// Populated via JOIN
	MemberName string `json:"member_name,omitempty"`
}

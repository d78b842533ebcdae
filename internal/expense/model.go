package expense

import (
	"time"

	"github.com/google/uuid"

	"github.com/fkhayef/splitease/internal/expense/split"
)

// Expense is a bill shared by some members of a group
type Expense struct {
	ID          uuid.UUID       `json:"id"`
	GroupID     uuid.UUID       `json:"group_id"`
	Title       string          `json:"title"`
	Description *string         `json:"description,omitempty"`
	Amount      float64         `json:"amount"`
	PaidBy      *uuid.UUID      `json:"paid_by,omitempty"` // member who fronted the bill, if any
	SplitType   split.SplitType `json:"split_type"`
	CreatedAt   time.Time       `json:"created_at"`

	// Populated via JOIN
	PaidByName string `json:"paid_by_name,omitempty"`
}

// Split is one participant's allocated share of an expense
type Split struct {
	ID        uuid.UUID  `json:"id"`
	ExpenseID uuid.UUID  `json:"expense_id"`
	MemberID  uuid.UUID  `json:"member_id"`
	Amount    float64    `json:"amount"`
	Paid      bool       `json:"paid"`
	PaidAt    *time.Time `json:"paid_at,omitempty"`

	// Populated via JOIN
	MemberName string `json:"member_name,omitempty"`
}

// ExpenseWithSplits combines an expense with its allocated splits
type ExpenseWithSplits struct {
	Expense *Expense
	Splits  []*Split
}

// Participant selects a group member for an expense
type Participant struct {
	MemberID   uuid.UUID `json:"member_id"`
	Percentage *float64  `json:"percentage,omitempty"` // For PERCENTAGE split
	Amount     *float64  `json:"amount,omitempty"`     // For EXACT split
}

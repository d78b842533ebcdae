package expense

import (
	"time"

	"github.com/google/uuid"

	"github.com/fkhayef/splitease/internal/core"
	"github.com/fkhayef/splitease/internal/expense/split"
)

// CreateExpenseRequest represents the request to create an expense.
// With no participants every group member shares the expense.
type CreateExpenseRequest struct {
	GroupID      uuid.UUID      `json:"group_id" validate:"required"`
	Title        string         `json:"title" validate:"required,min=1,max=255"`
	Description  *string        `json:"description,omitempty"`
	Amount       float64        `json:"amount" validate:"required,gt=0"`
	PaidBy       *uuid.UUID     `json:"paid_by,omitempty"`
	SplitType    string         `json:"split_type" validate:"omitempty,oneof=EVEN PERCENTAGE EXACT"`
	Participants []*Participant `json:"participants,omitempty"`
}

// ExpenseResponse represents the response for an expense
type ExpenseResponse struct {
	ID          uuid.UUID        `json:"id"`
	GroupID     uuid.UUID        `json:"group_id"`
	Title       string           `json:"title"`
	Description *string          `json:"description,omitempty"`
	Amount      float64          `json:"amount"`
	PaidBy      *uuid.UUID       `json:"paid_by,omitempty"`
	PaidByName  string           `json:"paid_by_name,omitempty"`
	SplitType   split.SplitType  `json:"split_type"`
	CreatedAt   string           `json:"created_at"`
	Splits      []*SplitResponse `json:"splits,omitempty"`
}

// SplitResponse represents the response for a split
type SplitResponse struct {
	ID         uuid.UUID `json:"id"`
	ExpenseID  uuid.UUID `json:"expense_id"`
	MemberID   uuid.UUID `json:"member_id"`
	MemberName string    `json:"member_name,omitempty"`
	Amount     float64   `json:"amount"`
	Paid       bool      `json:"paid"`
	PaidAt     *string   `json:"paid_at,omitempty"`
}

// SplitMismatchDetails is attached to 422 responses
type SplitMismatchDetails struct {
	Total      float64 `json:"total"`
	Sum        float64 `json:"sum"`
	Difference float64 `json:"difference"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// ToResponse converts an Expense model to an ExpenseResponse DTO
func (e *Expense) ToResponse() *ExpenseResponse {
	return &ExpenseResponse{
		ID:          e.ID,
		GroupID:     e.GroupID,
		Title:       e.Title,
		Description: e.Description,
		Amount:      e.Amount,
		PaidBy:      e.PaidBy,
		PaidByName:  e.PaidByName,
		SplitType:   e.SplitType,
		CreatedAt:   formatTime(e.CreatedAt),
	}
}

// ToResponse converts a Split model to a SplitResponse DTO; amounts are rounded for display
func (s *Split) ToResponse() *SplitResponse {
	resp := &SplitResponse{
		ID:         s.ID,
		ExpenseID:  s.ExpenseID,
		MemberID:   s.MemberID,
		MemberName: s.MemberName,
		Amount:     core.RoundToTwoDecimals(s.Amount),
		Paid:       s.Paid,
	}
	if s.PaidAt != nil {
		paidAt := formatTime(*s.PaidAt)
		resp.PaidAt = &paidAt
	}
	return resp
}

// ToResponse converts an expense with its splits
func (ews *ExpenseWithSplits) ToResponse() *ExpenseResponse {
	resp := ews.Expense.ToResponse()
	resp.Splits = make([]*SplitResponse, len(ews.Splits))
	for i, s := range ews.Splits {
		resp.Splits[i] = s.ToResponse()
	}
	return resp
}

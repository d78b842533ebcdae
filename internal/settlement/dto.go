package settlement

import (
	"github.com/google/uuid"

	"github.com/fkhayef/splitease/internal/core"
)

// RecordPaymentRequest represents a payment made by a participant
type RecordPaymentRequest struct {
	MemberID uuid.UUID     `json:"member_id" validate:"required"`
	Amount   float64       `json:"amount" validate:"required,gt=0"`
	Method   PaymentMethod `json:"method,omitempty" validate:"omitempty,oneof=cash UPI card digital_wallet other"`
	Notes    *string       `json:"notes,omitempty"`
}

// ContributionInput is one member's paid amount in a stateless calculation
type ContributionInput struct {
	MemberID *uuid.UUID `json:"member_id,omitempty"` // generated when omitted
	Name     string     `json:"name"`
	Amount   float64    `json:"amount"`
}

// CalculateRequest runs the calculator without touching stored expenses.
// With AdminID set the admin payback view is returned.
type CalculateRequest struct {
	Total         float64             `json:"total"`
	Contributions []ContributionInput `json:"contributions"`
	AdminID       *uuid.UUID          `json:"admin_id,omitempty"`
}

// PaymentResponse represents the response for a payment
type PaymentResponse struct {
	ID         uuid.UUID     `json:"id"`
	ExpenseID  uuid.UUID     `json:"expense_id"`
	MemberID   uuid.UUID     `json:"member_id"`
	MemberName string        `json:"member_name,omitempty"`
	Amount     float64       `json:"amount"`
	Method     PaymentMethod `json:"method"`
	Notes      *string       `json:"notes,omitempty"`
	PaidAt     string        `json:"paid_at"`
}

// ResultResponse is one member's line in a settlement view
type ResultResponse struct {
	MemberID uuid.UUID `json:"member_id"`
	Name     string    `json:"name"`
	Pending  float64   `json:"pending"`
	Status   Status    `json:"status"`
	Message  string    `json:"message"`
}

// SettlementResponse represents a computed settlement view
type SettlementResponse struct {
	ExpenseID *uuid.UUID        `json:"expense_id,omitempty"`
	Title     string            `json:"title,omitempty"`
	AdminID   *uuid.UUID        `json:"admin_id,omitempty"`
	Summary   Summary           `json:"summary"`
	Results   []*ResultResponse `json:"results"`
}

// ToResponse converts a Payment model to a PaymentResponse DTO
func (p *Payment) ToResponse() *PaymentResponse {
	return &PaymentResponse{
		ID:         p.ID,
		ExpenseID:  p.ExpenseID,
		MemberID:   p.MemberID,
		MemberName: p.MemberName,
		Amount:     p.Amount,
		Method:     p.Method,
		Notes:      p.Notes,
		PaidAt:     p.PaidAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

// ToResponse converts a View; amounts are rounded for display only
func (v *View) ToResponse() *SettlementResponse {
	resp := &SettlementResponse{
		Summary: Summary{
			Total:        core.RoundToTwoDecimals(v.Summary.Total),
			Share:        core.RoundToTwoDecimals(v.Summary.Share),
			TotalPaid:    core.RoundToTwoDecimals(v.Summary.TotalPaid),
			Remaining:    core.RoundToTwoDecimals(v.Summary.Remaining),
			Participants: v.Summary.Participants,
		},
		Results: make([]*ResultResponse, len(v.Results)),
	}
	if v.Expense != nil {
		resp.ExpenseID = &v.Expense.ID
		resp.Title = v.Expense.Title
	}
	if v.Admin != nil {
		resp.AdminID = &v.Admin.MemberID
	}
	for i, r := range v.Results {
		resp.Results[i] = &ResultResponse{
			MemberID: r.MemberID,
			Name:     r.Name,
			Pending:  core.RoundToTwoDecimals(r.Pending),
			Status:   r.Status,
			Message:  v.Messages[i],
		}
	}
	return resp
}

package settlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/fkhayef/splitease/internal/core"
	"github.com/fkhayef/splitease/internal/expense"
	"github.com/fkhayef/splitease/internal/group"
	"github.com/fkhayef/splitease/internal/notification"
	"github.com/fkhayef/splitease/pkg/metrics"
)

// Common errors
var (
	ErrUnknownMember   = errors.New("member is not a participant of this expense")
	ErrPaymentNotFound = errors.New("payment not found")
	ErrInvalidPayment  = errors.New("invalid payment")
	ErrNotAuthorized   = errors.New("only the group admin can send reminders")
)

// PaymentStore persists payments; *Repository implements it.
type PaymentStore interface {
	CreatePayment(ctx context.Context, p *Payment) error
	ListPayments(ctx context.Context, expenseID uuid.UUID) ([]*Payment, error)
	DeletePayment(ctx context.Context, id uuid.UUID) (bool, error)
}

// ExpenseReader loads an expense with its splits; *expense.Service implements it.
type ExpenseReader interface {
	GetExpenseByID(ctx context.Context, id uuid.UUID) (*expense.ExpenseWithSplits, error)
}

// MemberDirectory looks up group members; *group.Service implements it.
type MemberDirectory interface {
	GetMembers(ctx context.Context, groupID uuid.UUID) ([]*group.Member, error)
	Admin(ctx context.Context, groupID uuid.UUID) (*group.Member, error)
}

// Dispatcher sends reminders; *notification.Service implements it.
type Dispatcher interface {
	Dispatch(ctx context.Context, batch []notification.Outgoing) ([]*notification.Reminder, error)
}

// View is a computed settlement for one expense or an ad-hoc calculation.
// Messages[i] is the reminder text for Results[i].
type View struct {
	Expense  *expense.Expense
	Admin    *Contribution
	Summary  Summary
	Results  []Result
	Messages []string
}

// Service handles payments and settlement views
type Service struct {
	payments   PaymentStore
	expenses   ExpenseReader
	members    MemberDirectory
	dispatcher Dispatcher
	messenger  Messenger
	metrics    *metrics.Metrics
}

// NewService creates a new settlement service. m may be nil.
func NewService(payments PaymentStore, expenses ExpenseReader, members MemberDirectory, dispatcher Dispatcher, messenger Messenger, m *metrics.Metrics) *Service {
	return &Service{
		payments:   payments,
		expenses:   expenses,
		members:    members,
		dispatcher: dispatcher,
		messenger:  messenger,
		metrics:    m,
	}
}

// RecordPayment stores a payment from one of the expense's participants
func (s *Service) RecordPayment(ctx context.Context, expenseID uuid.UUID, req *RecordPaymentRequest) (*Payment, error) {
	amount := core.RoundToTwoDecimals(req.Amount)
	if !core.IsFinite(req.Amount) || amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be at least 0.01", ErrInvalidPayment)
	}
	method := req.Method
	if method == "" {
		method = PaymentMethodCash
	}
	if !method.Valid() {
		return nil, fmt.Errorf("%w: unknown method %q", ErrInvalidPayment, method)
	}

	ews, err := s.expenses.GetExpenseByID(ctx, expenseID)
	if err != nil {
		return nil, err
	}

	var participant *expense.Split
	for _, sp := range ews.Splits {
		if sp.MemberID == req.MemberID {
			participant = sp
			break
		}
	}
	if participant == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMember, req.MemberID)
	}

	payment := &Payment{
		ID:         uuid.New(),
		ExpenseID:  expenseID,
		MemberID:   req.MemberID,
		Amount:     amount,
		Method:     method,
		Notes:      req.Notes,
		MemberName: participant.MemberName,
	}
	if err := s.payments.CreatePayment(ctx, payment); err != nil {
		return nil, err
	}
	s.metrics.IncrementPayments()

	slog.InfoContext(ctx, "payment recorded",
		"expense_id", expenseID,
		"member_id", req.MemberID,
		"amount", payment.Amount,
		"method", method)

	return payment, nil
}

// ListPayments returns the payments recorded for an expense
func (s *Service) ListPayments(ctx context.Context, expenseID uuid.UUID) ([]*Payment, error) {
	if _, err := s.expenses.GetExpenseByID(ctx, expenseID); err != nil {
		return nil, err
	}
	return s.payments.ListPayments(ctx, expenseID)
}

// DeletePayment removes a payment recorded by mistake
func (s *Service) DeletePayment(ctx context.Context, paymentID uuid.UUID) error {
	deleted, err := s.payments.DeletePayment(ctx, paymentID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrPaymentNotFound
	}
	return nil
}

// load builds the ledger of an expense: its participants in split order,
// each credited with the sum of their payments.
func (s *Service) load(ctx context.Context, expenseID uuid.UUID) (*expense.Expense, []Contribution, error) {
	ews, err := s.expenses.GetExpenseByID(ctx, expenseID)
	if err != nil {
		return nil, nil, err
	}

	payments, err := s.payments.ListPayments(ctx, expenseID)
	if err != nil {
		return nil, nil, err
	}

	ledger := NewLedger()
	for _, sp := range ews.Splits {
		ledger.Seed(sp.MemberID, sp.MemberName)
	}
	for _, p := range payments {
		if err := ledger.Record(p.MemberID, p.Amount); err != nil {
			return nil, nil, err
		}
	}

	return ews.Expense, ledger.Contributions(), nil
}

// Settlement computes who still owes and who gets money back on an expense
func (s *Service) Settlement(ctx context.Context, expenseID uuid.UUID) (*View, error) {
	exp, contributions, err := s.load(ctx, expenseID)
	if err != nil {
		return nil, err
	}

	view, err := s.pending(exp.Amount, contributions)
	if err != nil {
		return nil, err
	}
	view.Expense = exp
	return view, nil
}

// AdminPayback computes balances owed to the group admin on an expense
func (s *Service) AdminPayback(ctx context.Context, expenseID uuid.UUID) (*View, error) {
	exp, contributions, err := s.load(ctx, expenseID)
	if err != nil {
		return nil, err
	}

	admin, err := s.members.Admin(ctx, exp.GroupID)
	if err != nil {
		return nil, err
	}

	view, err := s.adminPayback(exp.Amount, admin.ID, admin.Name, contributions)
	if err != nil {
		return nil, err
	}
	view.Expense = exp
	return view, nil
}

// Calculate runs the calculator on caller-supplied numbers
func (s *Service) Calculate(req *CalculateRequest) (*View, error) {
	contributions := make([]Contribution, len(req.Contributions))
	for i, c := range req.Contributions {
		id := uuid.New()
		if c.MemberID != nil {
			id = *c.MemberID
		}
		contributions[i] = Contribution{MemberID: id, Name: c.Name, Amount: c.Amount}
	}

	if req.AdminID == nil {
		return s.pending(req.Total, contributions)
	}

	var adminName string
	for _, c := range contributions {
		if c.MemberID == *req.AdminID {
			adminName = c.Name
		}
	}
	return s.adminPayback(req.Total, *req.AdminID, adminName, contributions)
}

func (s *Service) pending(total float64, contributions []Contribution) (*View, error) {
	results, err := CalculatePending(total, contributions)
	if err != nil {
		return nil, err
	}
	summary, err := Summarize(total, contributions)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveCalculation("pending")

	return &View{
		Summary:  summary,
		Results:  results,
		Messages: s.messenger.PaymentReminders(results),
	}, nil
}

func (s *Service) adminPayback(total float64, adminID uuid.UUID, adminName string, contributions []Contribution) (*View, error) {
	results, err := CalculateAdminPayback(total, adminID, contributions)
	if err != nil {
		return nil, err
	}
	summary, err := Summarize(total, contributions)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveCalculation("admin")

	admin := Contribution{MemberID: adminID, Name: adminName}
	return &View{
		Admin:    &admin,
		Summary:  summary,
		Results:  results,
		Messages: s.messenger.AdminPaymentReminders(results, admin),
	}, nil
}

// SendReminders dispatches a reminder to every participant who still owes.
// Only the group admin may trigger it. Nothing is sent when everyone is settled.
// If the batch aborts, the reminders recorded before the failure come back with the error.
func (s *Service) SendReminders(ctx context.Context, expenseID, actorID uuid.UUID) ([]*notification.Reminder, error) {
	view, err := s.Settlement(ctx, expenseID)
	if err != nil {
		return nil, err
	}

	admin, err := s.members.Admin(ctx, view.Expense.GroupID)
	if err != nil {
		return nil, err
	}
	if admin.ID != actorID {
		return nil, ErrNotAuthorized
	}

	owing := Owing(view.Results)
	if len(owing) == 0 {
		slog.InfoContext(ctx, "no reminders needed, everyone is settled", "expense_id", expenseID)
		return []*notification.Reminder{}, nil
	}

	members, err := s.members.GetMembers(ctx, view.Expense.GroupID)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*group.Member, len(members))
	for _, m := range members {
		byID[m.ID] = m
	}

	batch := make([]notification.Outgoing, 0, len(owing))
	for _, r := range owing {
		out := notification.Outgoing{
			ExpenseID:  expenseID,
			MemberID:   r.MemberID,
			MemberName: r.Name,
			Amount:     r.Pending,
			Message:    s.messenger.PaymentMessage(r),
		}
		if m, ok := byID[r.MemberID]; ok {
			out.Email = m.Email
			out.WhatsApp = m.WhatsApp
		}
		batch = append(batch, out)
	}

	reminders, err := s.dispatcher.Dispatch(ctx, batch)
	if err != nil {
		return reminders, err
	}

	slog.InfoContext(ctx, "payment reminders dispatched", "expense_id", expenseID, "count", len(reminders))
	return reminders, nil
}

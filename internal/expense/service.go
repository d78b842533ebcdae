package expense

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/fkhayef/splitease/internal/core"
	"github.com/fkhayef/splitease/internal/expense/split"
	"github.com/fkhayef/splitease/internal/group"
	"github.com/fkhayef/splitease/pkg/metrics"
)

// Common errors
var (
	ErrExpenseNotFound    = errors.New("expense not found")
	ErrSplitNotFound      = errors.New("split not found")
	ErrSplitAlreadyPaid   = errors.New("split is already marked as paid")
	ErrInvalidExpense     = errors.New("invalid expense")
	ErrUnknownParticipant = errors.New("participant is not a member of the group")
)

// Store is the persistence the service needs; *Repository implements it.
type Store interface {
	CreateWithSplits(ctx context.Context, e *Expense, splits []*Split) error
	GetExpenseByID(ctx context.Context, id uuid.UUID) (*Expense, error)
	GetSplitsByExpenseID(ctx context.Context, expenseID uuid.UUID) ([]*Split, error)
	ListExpensesByGroupID(ctx context.Context, groupID uuid.UUID, limit, offset int) ([]*Expense, int, error)
	GetSplitByID(ctx context.Context, id uuid.UUID) (*Split, error)
	MarkSplitPaid(ctx context.Context, id uuid.UUID) (*Split, error)
	DeleteExpense(ctx context.Context, id uuid.UUID) (bool, error)
}

// MemberDirectory resolves the members of a group; *group.Service implements it.
type MemberDirectory interface {
	GetMembers(ctx context.Context, groupID uuid.UUID) ([]*group.Member, error)
}

// Service handles expense business logic
type Service struct {
	repo         Store
	members      MemberDirectory
	splitFactory *split.Factory // Factory pattern for creating split strategies
	metrics      *metrics.Metrics
}

// NewService creates a new expense service with dependencies injected.
// m may be nil.
func NewService(repo Store, members MemberDirectory, splitFactory *split.Factory, m *metrics.Metrics) *Service {
	return &Service{
		repo:         repo,
		members:      members,
		splitFactory: splitFactory,
		metrics:      m,
	}
}

// CreateExpense allocates the expense between the selected group members and
// stores it with its splits. Group members not listed as participants are left
// out; an empty participant list selects the whole group.
func (s *Service) CreateExpense(ctx context.Context, req *CreateExpenseRequest) (*ExpenseWithSplits, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" || len(title) > 255 {
		return nil, fmt.Errorf("%w: title must be between 1 and 255 characters", ErrInvalidExpense)
	}
	amount := core.RoundToTwoDecimals(req.Amount)
	if !core.IsFinite(req.Amount) || amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be at least 0.01", ErrInvalidExpense)
	}

	splitType := req.SplitType
	if splitType == "" {
		splitType = string(split.SplitTypeEven)
	}

	// Use FACTORY PATTERN to get the appropriate split strategy
	strategy, err := s.splitFactory.CreateFromString(splitType)
	if err != nil {
		return nil, err
	}

	members, err := s.members.GetMembers(ctx, req.GroupID)
	if err != nil {
		return nil, err
	}

	inputs, err := buildSplitInputs(members, req.Participants)
	if err != nil {
		return nil, err
	}

	var paidByName string
	if req.PaidBy != nil {
		for _, m := range members {
			if m.ID == *req.PaidBy {
				paidByName = m.Name
			}
		}
		if paidByName == "" {
			return nil, fmt.Errorf("%w: paid_by %s", ErrUnknownParticipant, *req.PaidBy)
		}
	}

	// Use STRATEGY PATTERN - allocate using the selected strategy
	allocations, err := strategy.Allocate(amount, inputs)
	if err != nil {
		if errors.Is(err, core.ErrSplitMismatch) {
			s.metrics.IncrementSplitMismatch()
		}
		return nil, err
	}

	expense := &Expense{
		ID:          uuid.New(),
		GroupID:     req.GroupID,
		Title:       title,
		Description: req.Description,
		Amount:      amount,
		PaidBy:      req.PaidBy,
		SplitType:   strategy.Type(),
		PaidByName:  paidByName,
	}

	splits := make([]*Split, len(allocations))
	for i, a := range allocations {
		splits[i] = &Split{
			ID:         uuid.New(),
			ExpenseID:  expense.ID,
			MemberID:   a.MemberID,
			MemberName: a.Name,
			Amount:     a.Amount,
		}
	}

	if err := s.repo.CreateWithSplits(ctx, expense, splits); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "expense created",
		"expense_id", expense.ID,
		"group_id", expense.GroupID,
		"split_type", expense.SplitType,
		"participants", len(splits))

	return &ExpenseWithSplits{
		Expense: expense,
		Splits:  splits,
	}, nil
}

// buildSplitInputs offers every group member to the allocator in group order,
// marking the requested participants as selected.
func buildSplitInputs(members []*group.Member, participants []*Participant) ([]split.SplitInput, error) {
	requested := make(map[uuid.UUID]*Participant, len(participants))
	for _, p := range participants {
		if _, dup := requested[p.MemberID]; dup {
			return nil, fmt.Errorf("%w: %s", split.ErrDuplicateParticipant, p.MemberID)
		}
		requested[p.MemberID] = p
	}

	selectAll := len(participants) == 0
	inputs := make([]split.SplitInput, len(members))
	matched := 0
	for i, m := range members {
		inputs[i] = split.SplitInput{MemberID: m.ID, Name: m.Name, Selected: selectAll}
		if p, ok := requested[m.ID]; ok {
			inputs[i].Selected = true
			inputs[i].Amount = p.Amount
			inputs[i].Percentage = p.Percentage
			matched++
		}
	}

	if matched != len(requested) {
		for id := range requested {
			if !containsMember(members, id) {
				return nil, fmt.Errorf("%w: %s", ErrUnknownParticipant, id)
			}
		}
	}
	return inputs, nil
}

func containsMember(members []*group.Member, id uuid.UUID) bool {
	for _, m := range members {
		if m.ID == id {
			return true
		}
	}
	return false
}

// GetExpenseByID retrieves an expense with its splits
func (s *Service) GetExpenseByID(ctx context.Context, id uuid.UUID) (*ExpenseWithSplits, error) {
	expense, err := s.repo.GetExpenseByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if expense == nil {
		return nil, ErrExpenseNotFound
	}

	splits, err := s.repo.GetSplitsByExpenseID(ctx, id)
	if err != nil {
		return nil, err
	}

	return &ExpenseWithSplits{
		Expense: expense,
		Splits:  splits,
	}, nil
}

// ListExpensesByGroupID retrieves expenses for a group
func (s *Service) ListExpensesByGroupID(ctx context.Context, groupID uuid.UUID, page, perPage int) ([]*Expense, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.repo.ListExpensesByGroupID(ctx, groupID, perPage, offset)
}

// MarkSplitAsPaid flags a participant's split as paid
func (s *Service) MarkSplitAsPaid(ctx context.Context, splitID uuid.UUID) (*Split, error) {
	existing, err := s.repo.GetSplitByID(ctx, splitID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrSplitNotFound
	}
	if existing.Paid {
		return nil, ErrSplitAlreadyPaid
	}

	updated, err := s.repo.MarkSplitPaid(ctx, splitID)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrSplitNotFound
	}
	return updated, nil
}

// DeleteExpense deletes an expense along with its splits and payments
func (s *Service) DeleteExpense(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.repo.DeleteExpense(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrExpenseNotFound
	}

	slog.InfoContext(ctx, "expense deleted", "expense_id", id)
	return nil
}

package expense

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fkhayef/splitease/internal/core"
	"github.com/fkhayef/splitease/internal/expense/split"
	"github.com/fkhayef/splitease/internal/group"
	"github.com/fkhayef/splitease/pkg/metrics"
)

type memStore struct {
	mu       sync.Mutex
	expenses map[uuid.UUID]*Expense
	splits   map[uuid.UUID][]*Split
	now      time.Time
}

func newMemStore() *memStore {
	return &memStore{
		expenses: make(map[uuid.UUID]*Expense),
		splits:   make(map[uuid.UUID][]*Split),
		now:      time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (m *memStore) CreateWithSplits(_ context.Context, e *Expense, splits []*Split) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(time.Minute)
	e.CreatedAt = m.now
	cp := *e
	m.expenses[e.ID] = &cp
	stored := make([]*Split, len(splits))
	for i, s := range splits {
		sc := *s
		stored[i] = &sc
	}
	m.splits[e.ID] = stored
	return nil
}

func (m *memStore) GetExpenseByID(_ context.Context, id uuid.UUID) (*Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.expenses[id]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (m *memStore) GetSplitsByExpenseID(_ context.Context, expenseID uuid.UUID) ([]*Split, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Split
	for _, s := range m.splits[expenseID] {
		cp := *s
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memStore) ListExpensesByGroupID(_ context.Context, groupID uuid.UUID, limit, offset int) ([]*Expense, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Expense
	for _, e := range m.expenses {
		if e.GroupID == groupID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	total := len(out)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return out[offset:end], total, nil
}

func (m *memStore) findSplit(id uuid.UUID) *Split {
	for _, splits := range m.splits {
		for _, s := range splits {
			if s.ID == id {
				return s
			}
		}
	}
	return nil
}

func (m *memStore) GetSplitByID(_ context.Context, id uuid.UUID) (*Split, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.findSplit(id)
	if s == nil {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (m *memStore) MarkSplitPaid(_ context.Context, id uuid.UUID) (*Split, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.findSplit(id)
	if s == nil {
		return nil, nil
	}
	paidAt := m.now
	s.Paid = true
	s.PaidAt = &paidAt
	cp := *s
	return &cp, nil
}

func (m *memStore) DeleteExpense(_ context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.expenses[id]; !ok {
		return false, nil
	}
	delete(m.expenses, id)
	delete(m.splits, id)
	return true, nil
}

// directory is a fixed MemberDirectory
type directory map[uuid.UUID][]*group.Member

func (d directory) GetMembers(_ context.Context, groupID uuid.UUID) ([]*group.Member, error) {
	members, ok := d[groupID]
	if !ok {
		return nil, group.ErrGroupNotFound
	}
	return members, nil
}

type fixture struct {
	svc     *Service
	store   *memStore
	groupID uuid.UUID
	priya   *group.Member
	ravi    *group.Member
	meera   *group.Member
	metrics *metrics.Metrics
}

func newFixture() *fixture {
	groupID := uuid.New()
	priya := &group.Member{ID: uuid.New(), GroupID: groupID, Name: "Priya", Role: group.MemberRoleAdmin}
	ravi := &group.Member{ID: uuid.New(), GroupID: groupID, Name: "Ravi", Role: group.MemberRoleMember}
	meera := &group.Member{ID: uuid.New(), GroupID: groupID, Name: "Meera", Role: group.MemberRoleMember}

	store := newMemStore()
	m := metrics.New(prometheus.NewRegistry())
	dir := directory{groupID: {priya, ravi, meera}}

	return &fixture{
		svc:     NewService(store, dir, split.NewSplitStrategyFactory(), m),
		store:   store,
		groupID: groupID,
		priya:   priya,
		ravi:    ravi,
		meera:   meera,
		metrics: m,
	}
}

func floatPtr(f float64) *float64 { return &f }

func TestCreateExpense_EvenAcrossWholeGroup(t *testing.T) {
	f := newFixture()

	result, err := f.svc.CreateExpense(context.Background(), &CreateExpenseRequest{
		GroupID: f.groupID,
		Title:   " Dinner ",
		Amount:  100,
		PaidBy:  &f.priya.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, "Dinner", result.Expense.Title)
	assert.Equal(t, split.SplitTypeEven, result.Expense.SplitType)
	assert.Equal(t, "Priya", result.Expense.PaidByName)
	require.Len(t, result.Splits, 3)

	names := []string{result.Splits[0].MemberName, result.Splits[1].MemberName, result.Splits[2].MemberName}
	assert.Equal(t, []string{"Priya", "Ravi", "Meera"}, names)
	for _, s := range result.Splits {
		assert.InDelta(t, 100.0/3, s.Amount, 1e-9)
		assert.Equal(t, result.Expense.ID, s.ExpenseID)
	}

	resp := result.ToResponse()
	assert.Equal(t, 33.33, resp.Splits[0].Amount)
}

func TestCreateExpense_SelectedParticipantsOnly(t *testing.T) {
	f := newFixture()

	result, err := f.svc.CreateExpense(context.Background(), &CreateExpenseRequest{
		GroupID:      f.groupID,
		Title:        "Cab",
		Amount:       90,
		Participants: []*Participant{{MemberID: f.meera.ID}, {MemberID: f.ravi.ID}},
	})
	require.NoError(t, err)
	require.Len(t, result.Splits, 2)

	// group order, not request order
	assert.Equal(t, f.ravi.ID, result.Splits[0].MemberID)
	assert.Equal(t, f.meera.ID, result.Splits[1].MemberID)
	assert.InDelta(t, 45.0, result.Splits[0].Amount, 1e-9)
}

func TestCreateExpense_Percentage(t *testing.T) {
	f := newFixture()

	result, err := f.svc.CreateExpense(context.Background(), &CreateExpenseRequest{
		GroupID:   f.groupID,
		Title:     "Groceries",
		Amount:    200,
		SplitType: "PERCENTAGE",
		Participants: []*Participant{
			{MemberID: f.priya.ID, Percentage: floatPtr(50)},
			{MemberID: f.ravi.ID, Percentage: floatPtr(30)},
			{MemberID: f.meera.ID, Percentage: floatPtr(20)},
		},
	})
	require.NoError(t, err)
	require.Len(t, result.Splits, 3)
	assert.InDelta(t, 100.0, result.Splits[0].Amount, 1e-9)
	assert.InDelta(t, 60.0, result.Splits[1].Amount, 1e-9)
	assert.InDelta(t, 40.0, result.Splits[2].Amount, 1e-9)
}

func TestCreateExpense_ExactMismatch(t *testing.T) {
	f := newFixture()

	_, err := f.svc.CreateExpense(context.Background(), &CreateExpenseRequest{
		GroupID:   f.groupID,
		Title:     "Hotel",
		Amount:    300,
		SplitType: "EXACT",
		Participants: []*Participant{
			{MemberID: f.priya.ID, Amount: floatPtr(150)},
			{MemberID: f.ravi.ID, Amount: floatPtr(100)},
		},
	})

	var mismatch *core.SplitMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, 300.0, mismatch.Total)
	assert.Equal(t, 250.0, mismatch.Sum)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.SplitMismatches))
	assert.Empty(t, f.store.expenses)
}

func TestCreateExpense_Validation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	stranger := uuid.New()

	tests := []struct {
		name string
		req  *CreateExpenseRequest
		want error
	}{
		{"blank title", &CreateExpenseRequest{GroupID: f.groupID, Title: "  ", Amount: 10}, ErrInvalidExpense},
		{"zero amount", &CreateExpenseRequest{GroupID: f.groupID, Title: "x", Amount: 0}, ErrInvalidExpense},
		{"amount under a cent", &CreateExpenseRequest{GroupID: f.groupID, Title: "x", Amount: 0.004}, ErrInvalidExpense},
		{"unknown split type", &CreateExpenseRequest{GroupID: f.groupID, Title: "x", Amount: 10, SplitType: "SHARES"}, split.ErrUnknownSplitType},
		{"unknown group", &CreateExpenseRequest{GroupID: uuid.New(), Title: "x", Amount: 10}, group.ErrGroupNotFound},
		{
			"duplicate participant",
			&CreateExpenseRequest{GroupID: f.groupID, Title: "x", Amount: 10, Participants: []*Participant{{MemberID: f.ravi.ID}, {MemberID: f.ravi.ID}}},
			split.ErrDuplicateParticipant,
		},
		{
			"participant outside group",
			&CreateExpenseRequest{GroupID: f.groupID, Title: "x", Amount: 10, Participants: []*Participant{{MemberID: stranger}}},
			ErrUnknownParticipant,
		},
		{"payer outside group", &CreateExpenseRequest{GroupID: f.groupID, Title: "x", Amount: 10, PaidBy: &stranger}, ErrUnknownParticipant},
		{
			"percentages short of 100",
			&CreateExpenseRequest{
				GroupID: f.groupID, Title: "x", Amount: 10, SplitType: "PERCENTAGE",
				Participants: []*Participant{{MemberID: f.ravi.ID, Percentage: floatPtr(40)}},
			},
			split.ErrInvalidPercentages,
		},
		{
			"missing exact amount",
			&CreateExpenseRequest{GroupID: f.groupID, Title: "x", Amount: 10, SplitType: "EXACT", Participants: []*Participant{{MemberID: f.ravi.ID}}},
			split.ErrMissingExactAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateExpense(ctx, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Empty(t, f.store.expenses)
}

func TestCreateExpense_EmptyGroup(t *testing.T) {
	groupID := uuid.New()
	svc := NewService(newMemStore(), directory{groupID: nil}, split.NewSplitStrategyFactory(), nil)

	_, err := svc.CreateExpense(context.Background(), &CreateExpenseRequest{GroupID: groupID, Title: "x", Amount: 10})
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestExpenseLifecycle(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	created, err := f.svc.CreateExpense(ctx, &CreateExpenseRequest{GroupID: f.groupID, Title: "Lunch", Amount: 60})
	require.NoError(t, err)

	got, err := f.svc.GetExpenseByID(ctx, created.Expense.ID)
	require.NoError(t, err)
	assert.Len(t, got.Splits, 3)

	paid, err := f.svc.MarkSplitAsPaid(ctx, got.Splits[1].ID)
	require.NoError(t, err)
	assert.True(t, paid.Paid)
	assert.NotNil(t, paid.PaidAt)

	_, err = f.svc.MarkSplitAsPaid(ctx, got.Splits[1].ID)
	assert.ErrorIs(t, err, ErrSplitAlreadyPaid)

	_, err = f.svc.MarkSplitAsPaid(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrSplitNotFound)

	list, total, err := f.svc.ListExpensesByGroupID(ctx, f.groupID, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, list, 1)

	require.NoError(t, f.svc.DeleteExpense(ctx, created.Expense.ID))
	assert.ErrorIs(t, f.svc.DeleteExpense(ctx, created.Expense.ID), ErrExpenseNotFound)

	_, err = f.svc.GetExpenseByID(ctx, created.Expense.ID)
	assert.ErrorIs(t, err, ErrExpenseNotFound)
}

package notification

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/fkhayef/splitease/pkg/metrics"
)

const defaultConcurrency = 4

// Store persists reminders; *Repository implements it.
type Store interface {
	Create(ctx context.Context, rem *Reminder) error
	ListByExpense(ctx context.Context, expenseID uuid.UUID) ([]*Reminder, error)
}

// Service dispatches payment reminders and keeps their history
type Service struct {
	repo        Store
	publisher   Publisher
	concurrency int
	metrics     *metrics.Metrics
}

// NewService creates a new notification service.
// concurrency bounds parallel publishes; values below 1 use the default.
func NewService(repo Store, publisher Publisher, concurrency int, m *metrics.Metrics) *Service {
	if concurrency < 1 {
		concurrency = defaultConcurrency
	}
	return &Service{
		repo:        repo,
		publisher:   publisher,
		concurrency: concurrency,
		metrics:     m,
	}
}

// Dispatch publishes every outgoing reminder and records the outcome.
// A member without an email is SKIPPED and a publish error marks the
// reminder FAILED; neither stops the batch. A storage error does: nothing
// further is published, and the reminders recorded so far are returned
// with the error. Results keep the input order.
func (s *Service) Dispatch(ctx context.Context, batch []Outgoing) ([]*Reminder, error) {
	recorded := make([]*Reminder, len(batch))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, out := range batch {
		if gctx.Err() != nil {
			break
		}
		i, out := i, out
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			rem := s.deliver(gctx, out)
			// parent ctx: reminders already in flight still get recorded after a failure
			if err := s.repo.Create(ctx, rem); err != nil {
				slog.ErrorContext(ctx, "reminder delivered but not recorded",
					"reminder_id", rem.ID,
					"member_id", rem.MemberID,
					"status", rem.Status,
					"error", err)
				return err
			}
			recorded[i] = rem
			s.metrics.ObserveReminder(string(rem.Status))
			return nil
		})
	}

	err := g.Wait()

	reminders := make([]*Reminder, 0, len(batch))
	for _, rem := range recorded {
		if rem != nil {
			reminders = append(reminders, rem)
		}
	}

	if err == nil && len(reminders) < len(batch) {
		err = ctx.Err()
	}
	if err != nil {
		slog.ErrorContext(ctx, "reminder batch aborted",
			"recorded", len(reminders),
			"total", len(batch),
			"error", err)
		return reminders, err
	}
	return reminders, nil
}

func (s *Service) deliver(ctx context.Context, out Outgoing) *Reminder {
	rem := &Reminder{
		ID:         uuid.New(),
		ExpenseID:  out.ExpenseID,
		MemberID:   out.MemberID,
		MemberName: out.MemberName,
		Email:      out.Email,
		WhatsApp:   out.WhatsApp,
		Channel:    out.channel(),
		Amount:     out.Amount,
		Message:    out.Message,
		Status:     StatusSent,
	}

	if out.Email == "" {
		rem.Status = StatusSkipped
		slog.InfoContext(ctx, "reminder skipped, no email", "member_id", out.MemberID)
		return rem
	}

	if err := s.publisher.Publish(ctx, NewReminderMessage(rem)); err != nil {
		msg := err.Error()
		rem.Status = StatusFailed
		rem.Error = &msg
		slog.ErrorContext(ctx, "failed to publish reminder",
			"member_id", out.MemberID,
			"expense_id", out.ExpenseID,
			"error", err)
	}
	return rem
}

// ListByExpense returns the reminder history of an expense
func (s *Service) ListByExpense(ctx context.Context, expenseID uuid.UUID) ([]*Reminder, error) {
	return s.repo.ListByExpense(ctx, expenseID)
}

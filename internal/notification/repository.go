package notification

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// Repository handles reminder persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new reminder repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a reminder; CreatedAt comes back from the database
func (r *Repository) Create(ctx context.Context, rem *Reminder) error {
	query := `
		INSERT INTO reminders (id, expense_id, member_id, member_name, email, whatsapp, channel, amount, message, status, error)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		rem.ID,
		rem.ExpenseID,
		rem.MemberID,
		rem.MemberName,
		rem.Email,
		rem.WhatsApp,
		rem.Channel,
		rem.Amount,
		rem.Message,
		rem.Status,
		rem.Error,
	).Scan(&rem.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create reminder: %w", err)
	}

	return nil
}

// ListByExpense retrieves the reminder history of an expense, newest first
func (r *Repository) ListByExpense(ctx context.Context, expenseID uuid.UUID) ([]*Reminder, error) {
	query := `
		SELECT id, expense_id, member_id, member_name, email, whatsapp, channel, amount, message, status, error, created_at
		FROM reminders
		WHERE expense_id = $1
		ORDER BY created_at DESC, member_name
	`

	rows, err := r.db.QueryContext(ctx, query, expenseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	defer rows.Close()

	var reminders []*Reminder
	for rows.Next() {
		rem := &Reminder{}
		err := rows.Scan(
			&rem.ID,
			&rem.ExpenseID,
			&rem.MemberID,
			&rem.MemberName,
			&rem.Email,
			&rem.WhatsApp,
			&rem.Channel,
			&rem.Amount,
			&rem.Message,
			&rem.Status,
			&rem.Error,
			&rem.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reminder: %w", err)
		}
		reminders = append(reminders, rem)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reminders: %w", err)
	}

	return reminders, nil
}

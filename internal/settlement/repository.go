package settlement

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// Repository handles payment persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new payment repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const paymentSelect = `
	SELECT p.id, p.expense_id, p.member_id, p.amount, p.method, p.notes, p.paid_at, m.name
	FROM expense_payments p
	JOIN group_members m ON p.member_id = m.id
`

type scanner interface {
	Scan(dest ...any) error
}

func scanPayment(s scanner) (*Payment, error) {
	p := &Payment{}
	err := s.Scan(&p.ID, &p.ExpenseID, &p.MemberID, &p.Amount, &p.Method, &p.Notes, &p.PaidAt, &p.MemberName)
	return p, err
}

// CreatePayment inserts a payment; PaidAt comes back from the database
func (r *Repository) CreatePayment(ctx context.Context, p *Payment) error {
	query := `
		INSERT INTO expense_payments (id, expense_id, member_id, amount, method, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING paid_at
	`

	err := r.db.QueryRowContext(ctx, query, p.ID, p.ExpenseID, p.MemberID, p.Amount, p.Method, p.Notes).Scan(&p.PaidAt)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}

	return nil
}

// ListPayments retrieves the payments of an expense in the order they were made
func (r *Repository) ListPayments(ctx context.Context, expenseID uuid.UUID) ([]*Payment, error) {
	rows, err := r.db.QueryContext(ctx, paymentSelect+` WHERE p.expense_id = $1 ORDER BY p.paid_at, p.id`, expenseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var payments []*Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payments: %w", err)
	}

	return payments, nil
}

// DeletePayment removes a payment and reports whether it existed
func (r *Repository) DeletePayment(ctx context.Context, id uuid.UUID) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM expense_payments WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete payment: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

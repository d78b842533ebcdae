package expense

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/fkhayef/splitease/internal/database"
)

// Repository handles expense and split data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new expense repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const expenseSelect = `
	SELECT e.id, e.group_id, e.title, e.description, e.amount, e.paid_by, e.split_type, e.created_at,
	       COALESCE(m.name, '')
	FROM expenses e
	LEFT JOIN group_members m ON e.paid_by = m.id
`

const splitSelect = `
	SELECT s.id, s.expense_id, s.member_id, s.amount, s.paid, s.paid_at, m.name
	FROM expense_splits s
	JOIN group_members m ON s.member_id = m.id
`

type scanner interface {
	Scan(dest ...any) error
}

func scanExpense(s scanner) (*Expense, error) {
	e := &Expense{}
	err := s.Scan(&e.ID, &e.GroupID, &e.Title, &e.Description, &e.Amount, &e.PaidBy, &e.SplitType, &e.CreatedAt, &e.PaidByName)
	return e, err
}

func scanSplit(s scanner) (*Split, error) {
	sp := &Split{}
	err := s.Scan(&sp.ID, &sp.ExpenseID, &sp.MemberID, &sp.Amount, &sp.Paid, &sp.PaidAt, &sp.MemberName)
	return sp, err
}

// CreateWithSplits inserts an expense and all of its splits in one transaction.
// IDs are assigned by the caller; timestamps come back from the database.
func (r *Repository) CreateWithSplits(ctx context.Context, e *Expense, splits []*Split) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `
			INSERT INTO expenses (id, group_id, title, description, amount, paid_by, split_type)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING created_at
		`, e.ID, e.GroupID, e.Title, e.Description, e.Amount, e.PaidBy, e.SplitType).Scan(&e.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to create expense: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO expense_splits (id, expense_id, member_id, position, amount)
			VALUES ($1, $2, $3, $4, $5)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare split insert: %w", err)
		}
		defer stmt.Close()

		for i, s := range splits {
			if _, err := stmt.ExecContext(ctx, s.ID, e.ID, s.MemberID, i, s.Amount); err != nil {
				return fmt.Errorf("failed to create split: %w", err)
			}
		}
		return nil
	})
}

// GetExpenseByID retrieves an expense by its ID
func (r *Repository) GetExpenseByID(ctx context.Context, id uuid.UUID) (*Expense, error) {
	expense, err := scanExpense(r.db.QueryRowContext(ctx, expenseSelect+` WHERE e.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	return expense, nil
}

// GetSplitsByExpenseID retrieves all splits for an expense in allocation order
func (r *Repository) GetSplitsByExpenseID(ctx context.Context, expenseID uuid.UUID) ([]*Split, error) {
	rows, err := r.db.QueryContext(ctx, splitSelect+` WHERE s.expense_id = $1 ORDER BY s.position`, expenseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get splits: %w", err)
	}
	defer rows.Close()

	var splits []*Split
	for rows.Next() {
		split, err := scanSplit(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan split: %w", err)
		}
		splits = append(splits, split)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate splits: %w", err)
	}

	return splits, nil
}

// ListExpensesByGroupID retrieves a page of expenses for a group, newest first
func (r *Repository) ListExpensesByGroupID(ctx context.Context, groupID uuid.UUID, limit, offset int) ([]*Expense, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM expenses WHERE group_id = $1`
	if err := r.db.QueryRowContext(ctx, countQuery, groupID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count expenses: %w", err)
	}

	query := expenseSelect + `
		WHERE e.group_id = $1
		ORDER BY e.created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, groupID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*Expense
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, expense)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	return expenses, total, nil
}

// GetSplitByID retrieves a split by its ID
func (r *Repository) GetSplitByID(ctx context.Context, id uuid.UUID) (*Split, error) {
	split, err := scanSplit(r.db.QueryRowContext(ctx, splitSelect+` WHERE s.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get split: %w", err)
	}

	return split, nil
}

// MarkSplitPaid flags a split as paid now
func (r *Repository) MarkSplitPaid(ctx context.Context, id uuid.UUID) (*Split, error) {
	query := `
		UPDATE expense_splits
		SET paid = TRUE, paid_at = NOW()
		WHERE id = $1
		RETURNING id
	`

	var updated uuid.UUID
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to mark split as paid: %w", err)
	}

	return r.GetSplitByID(ctx, updated)
}

// DeleteExpense deletes an expense; splits and payments cascade.
// It reports whether a row was deleted.
func (r *Repository) DeleteExpense(ctx context.Context, id uuid.UUID) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete expense: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

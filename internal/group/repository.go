package group

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/fkhayef/splitease/internal/database"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// Repository handles group data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new group repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const memberColumns = `id, group_id, name, email, whatsapp, role, joined_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanMember(s scanner) (*Member, error) {
	m := &Member{}
	err := s.Scan(&m.ID, &m.GroupID, &m.Name, &m.Email, &m.WhatsApp, &m.Role, &m.JoinedAt)
	return m, err
}

func scanGroup(s scanner) (*Group, error) {
	g := &Group{}
	err := s.Scan(&g.ID, &g.Name, &g.Description, &g.CreatedBy, &g.CreatedAt)
	return g, err
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == foreignKeyViolation
}

// Create inserts a group and its admin member in one transaction.
// Both records must already carry their IDs.
func (r *Repository) Create(ctx context.Context, g *Group, admin *Member) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `
			INSERT INTO groups (id, name, description, created_by)
			VALUES ($1, $2, $3, $4)
			RETURNING created_at
		`, g.ID, g.Name, g.Description, g.CreatedBy).Scan(&g.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to create group: %w", err)
		}

		err = tx.QueryRowContext(ctx, `
			INSERT INTO group_members (id, group_id, name, email, whatsapp, role)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING joined_at
		`, admin.ID, admin.GroupID, admin.Name, admin.Email, admin.WhatsApp, admin.Role).Scan(&admin.JoinedAt)
		if err != nil {
			return fmt.Errorf("failed to add group admin: %w", err)
		}
		return nil
	})
}

// GetByID retrieves a group by its ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Group, error) {
	query := `
		SELECT id, name, description, created_by, created_at
		FROM groups
		WHERE id = $1
	`

	group, err := scanGroup(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	return group, nil
}

// List retrieves a page of groups, newest first
func (r *Repository) List(ctx context.Context, limit, offset int) ([]*Group, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM groups`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count groups: %w", err)
	}

	query := `
		SELECT id, name, description, created_by, created_at
		FROM groups
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var groups []*Group
	for rows.Next() {
		group, err := scanGroup(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate groups: %w", err)
	}

	return groups, total, nil
}

// Update modifies an existing group
func (r *Repository) Update(ctx context.Context, id uuid.UUID, req *UpdateGroupRequest) (*Group, error) {
	query := `
		UPDATE groups
		SET name = COALESCE($2, name),
		    description = COALESCE($3, description)
		WHERE id = $1
		RETURNING id, name, description, created_by, created_at
	`

	group, err := scanGroup(r.db.QueryRowContext(ctx, query, id, req.Name, req.Description))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update group: %w", err)
	}

	return group, nil
}

// Delete removes a group; members, expenses and payments cascade.
// It reports whether a row was deleted.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM groups WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete group: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// AddMembers inserts a batch of members atomically
func (r *Repository) AddMembers(ctx context.Context, members []*Member) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO group_members (id, group_id, name, email, whatsapp, role)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING joined_at
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare member insert: %w", err)
		}
		defer stmt.Close()

		for _, m := range members {
			err := stmt.QueryRowContext(ctx, m.ID, m.GroupID, m.Name, m.Email, m.WhatsApp, m.Role).Scan(&m.JoinedAt)
			if err != nil {
				if isUniqueViolation(err) {
					return fmt.Errorf("%w: %s", ErrMemberAlreadyExists, m.Email)
				}
				return fmt.Errorf("failed to add member: %w", err)
			}
		}
		return nil
	})
}

// GetMembers retrieves all members of a group in joining order
func (r *Repository) GetMembers(ctx context.Context, groupID uuid.UUID) ([]*Member, error) {
	query := `SELECT ` + memberColumns + `
		FROM group_members
		WHERE group_id = $1
		ORDER BY joined_at, name
	`

	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to get members: %w", err)
	}
	defer rows.Close()

	var members []*Member
	for rows.Next() {
		member, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, member)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}

	return members, nil
}

// GetMember retrieves a specific member from a group
func (r *Repository) GetMember(ctx context.Context, groupID, memberID uuid.UUID) (*Member, error) {
	query := `SELECT ` + memberColumns + `
		FROM group_members
		WHERE group_id = $1 AND id = $2
	`

	member, err := scanMember(r.db.QueryRowContext(ctx, query, groupID, memberID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	return member, nil
}

// GetAdmin retrieves the admin member of a group
func (r *Repository) GetAdmin(ctx context.Context, groupID uuid.UUID) (*Member, error) {
	query := `SELECT ` + memberColumns + `
		FROM group_members
		WHERE group_id = $1 AND role = $2
		ORDER BY joined_at
		LIMIT 1
	`

	member, err := scanMember(r.db.QueryRowContext(ctx, query, groupID, MemberRoleAdmin))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get group admin: %w", err)
	}

	return member, nil
}

// UpdateMember updates a member's contact details
func (r *Repository) UpdateMember(ctx context.Context, groupID, memberID uuid.UUID, req *UpdateMemberRequest) (*Member, error) {
	query := `
		UPDATE group_members
		SET name = COALESCE($3, name),
		    email = COALESCE($4, email),
		    whatsapp = COALESCE($5, whatsapp)
		WHERE group_id = $1 AND id = $2
		RETURNING ` + memberColumns

	member, err := scanMember(r.db.QueryRowContext(ctx, query, groupID, memberID, req.Name, req.Email, req.WhatsApp))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		if isUniqueViolation(err) {
			return nil, ErrMemberAlreadyExists
		}
		return nil, fmt.Errorf("failed to update member: %w", err)
	}

	return member, nil
}

// RemoveMember removes a member from a group and reports whether one was removed.
// Members referenced by splits or payments are kept and ErrMemberHasActivity is returned.
func (r *Repository) RemoveMember(ctx context.Context, groupID, memberID uuid.UUID) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM group_members WHERE group_id = $1 AND id = $2`, groupID, memberID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return false, ErrMemberHasActivity
		}
		return false, fmt.Errorf("failed to remove member: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

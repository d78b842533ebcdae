package group

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrGroupNotFound       = errors.New("group not found")
	ErrMemberNotFound      = errors.New("member not found")
	ErrMemberAlreadyExists = errors.New("a member with this email already belongs to the group")
	ErrNotAuthorized       = errors.New("only the group admin can perform this action")
	ErrInvalidGroup        = errors.New("invalid group")
	ErrInvalidMember       = errors.New("invalid member")
	ErrCannotRemoveAdmin   = errors.New("the group admin cannot be removed")
	ErrNoAdmin             = errors.New("group has no admin")
	ErrMemberHasActivity   = errors.New("member has expense splits or payments and cannot be removed")
)

// Store is the persistence the service needs; *Repository implements it.
type Store interface {
	Create(ctx context.Context, g *Group, admin *Member) error
	GetByID(ctx context.Context, id uuid.UUID) (*Group, error)
	List(ctx context.Context, limit, offset int) ([]*Group, int, error)
	Update(ctx context.Context, id uuid.UUID, req *UpdateGroupRequest) (*Group, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	AddMembers(ctx context.Context, members []*Member) error
	GetMembers(ctx context.Context, groupID uuid.UUID) ([]*Member, error)
	GetMember(ctx context.Context, groupID, memberID uuid.UUID) (*Member, error)
	GetAdmin(ctx context.Context, groupID uuid.UUID) (*Member, error)
	UpdateMember(ctx context.Context, groupID, memberID uuid.UUID, req *UpdateMemberRequest) (*Member, error)
	RemoveMember(ctx context.Context, groupID, memberID uuid.UUID) (bool, error)
}

// Service handles group business logic
type Service struct {
	repo Store
}

// NewService creates a new group service
func NewService(repo Store) *Service {
	return &Service{repo: repo}
}

// Create creates a new group with the given admin as its first member
func (s *Service) Create(ctx context.Context, req *CreateGroupRequest) (*Group, *Member, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" || len(name) > 100 {
		return nil, nil, fmt.Errorf("%w: name must be between 1 and 100 characters", ErrInvalidGroup)
	}

	admin := req.Admin
	if err := admin.normalize(); err != nil {
		return nil, nil, err
	}

	groupID := uuid.New()
	adminMember := &Member{
		ID:       uuid.New(),
		GroupID:  groupID,
		Name:     admin.Name,
		Email:    admin.Email,
		WhatsApp: admin.WhatsApp,
		Role:     MemberRoleAdmin,
	}
	group := &Group{
		ID:          groupID,
		Name:        name,
		Description: trimOptional(req.Description),
		CreatedBy:   adminMember.ID,
	}

	if err := s.repo.Create(ctx, group, adminMember); err != nil {
		return nil, nil, err
	}

	slog.InfoContext(ctx, "group created", "group_id", group.ID, "admin_id", adminMember.ID)
	return group, adminMember, nil
}

// GetByID retrieves a group by its ID
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Group, error) {
	group, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}
	return group, nil
}

// GetByIDWithMembers retrieves a group with all its members
func (s *Service) GetByIDWithMembers(ctx context.Context, id uuid.UUID) (*Group, []*Member, error) {
	group, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	members, err := s.repo.GetMembers(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	return group, members, nil
}

// List retrieves a page of groups
func (s *Service) List(ctx context.Context, page, perPage int) ([]*Group, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.repo.List(ctx, perPage, offset)
}

// Update modifies an existing group
func (s *Service) Update(ctx context.Context, id uuid.UUID, req *UpdateGroupRequest) (*Group, error) {
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" || len(name) > 100 {
			return nil, fmt.Errorf("%w: name must be between 1 and 100 characters", ErrInvalidGroup)
		}
		req.Name = &name
	}

	group, err := s.repo.Update(ctx, id, req)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}
	return group, nil
}

// Delete removes a group. Only its admin may do so.
func (s *Service) Delete(ctx context.Context, id, actorID uuid.UUID) error {
	if err := s.requireAdmin(ctx, id, actorID); err != nil {
		return err
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrGroupNotFound
	}

	slog.InfoContext(ctx, "group deleted", "group_id", id, "actor_id", actorID)
	return nil
}

// AddMembers adds a batch of members. Emails must be unique within the group,
// including against the batch itself.
func (s *Service) AddMembers(ctx context.Context, groupID uuid.UUID, req *AddMembersRequest) ([]*Member, error) {
	if len(req.Members) == 0 {
		return nil, fmt.Errorf("%w: at least one member is required", ErrInvalidMember)
	}

	existing, err := s.GetMembers(ctx, groupID)
	if err != nil {
		return nil, err
	}

	taken := make(map[string]struct{}, len(existing)+len(req.Members))
	for _, m := range existing {
		taken[m.Email] = struct{}{}
	}

	members := make([]*Member, 0, len(req.Members))
	for _, in := range req.Members {
		if err := in.normalize(); err != nil {
			return nil, err
		}
		if _, dup := taken[in.Email]; dup {
			return nil, fmt.Errorf("%w: %s", ErrMemberAlreadyExists, in.Email)
		}
		taken[in.Email] = struct{}{}

		members = append(members, &Member{
			ID:       uuid.New(),
			GroupID:  groupID,
			Name:     in.Name,
			Email:    in.Email,
			WhatsApp: in.WhatsApp,
			Role:     MemberRoleMember,
		})
	}

	if err := s.repo.AddMembers(ctx, members); err != nil {
		return nil, err
	}
	return members, nil
}

// GetMembers retrieves all members of a group
func (s *Service) GetMembers(ctx context.Context, groupID uuid.UUID) ([]*Member, error) {
	if _, err := s.GetByID(ctx, groupID); err != nil {
		return nil, err
	}
	return s.repo.GetMembers(ctx, groupID)
}

// GetMember retrieves one member of a group
func (s *Service) GetMember(ctx context.Context, groupID, memberID uuid.UUID) (*Member, error) {
	member, err := s.repo.GetMember(ctx, groupID, memberID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrMemberNotFound
	}
	return member, nil
}

// Admin returns the member who administers the group
func (s *Service) Admin(ctx context.Context, groupID uuid.UUID) (*Member, error) {
	if _, err := s.GetByID(ctx, groupID); err != nil {
		return nil, err
	}

	admin, err := s.repo.GetAdmin(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if admin == nil {
		return nil, ErrNoAdmin
	}
	return admin, nil
}

// UpdateMember updates a member's contact details
func (s *Service) UpdateMember(ctx context.Context, groupID, memberID uuid.UUID, req *UpdateMemberRequest) (*Member, error) {
	if err := req.normalize(); err != nil {
		return nil, err
	}

	member, err := s.repo.UpdateMember(ctx, groupID, memberID, req)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrMemberNotFound
	}
	return member, nil
}

// RemoveMember removes a member from a group. The admin stays, and so does
// anyone who takes part in an expense.
func (s *Service) RemoveMember(ctx context.Context, groupID, memberID uuid.UUID) error {
	member, err := s.GetMember(ctx, groupID, memberID)
	if err != nil {
		return err
	}
	if member.IsAdmin() {
		return ErrCannotRemoveAdmin
	}

	removed, err := s.repo.RemoveMember(ctx, groupID, memberID)
	if err != nil {
		return err
	}
	if !removed {
		return ErrMemberNotFound
	}
	return nil
}

// requireAdmin checks that actorID administers groupID.
func (s *Service) requireAdmin(ctx context.Context, groupID, actorID uuid.UUID) error {
	admin, err := s.Admin(ctx, groupID)
	if err != nil {
		return err
	}
	if admin.ID != actorID {
		return ErrNotAuthorized
	}
	return nil
}

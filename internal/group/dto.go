package group

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MemberInput describes a person joining a group
type MemberInput struct {
	Name     string  `json:"name" validate:"required,min=1,max=100"`
	Email    string  `json:"email" validate:"required,email"`
	WhatsApp *string `json:"whatsapp,omitempty"`
}

// CreateGroupRequest represents the request to create a new group
type CreateGroupRequest struct {
	Name        string      `json:"name" validate:"required,min=1,max=100"`
	Description *string     `json:"description,omitempty"`
	Admin       MemberInput `json:"admin" validate:"required"`
}

// UpdateGroupRequest represents the request to update a group
type UpdateGroupRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description,omitempty"`
}

// AddMembersRequest adds several members in one call
type AddMembersRequest struct {
	Members []MemberInput `json:"members" validate:"required,min=1"`
}

// UpdateMemberRequest represents the request to update a member's contact details
type UpdateMemberRequest struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	WhatsApp *string `json:"whatsapp,omitempty"`
}

// GroupResponse represents the response for a group
type GroupResponse struct {
	ID          uuid.UUID         `json:"id"`
	Name        string            `json:"name"`
	Description *string           `json:"description,omitempty"`
	CreatedBy   uuid.UUID         `json:"created_by"`
	CreatedAt   string            `json:"created_at"`
	Members     []*MemberResponse `json:"members,omitempty"`
}

// MemberResponse represents a member in a group response
type MemberResponse struct {
	ID       uuid.UUID  `json:"id"`
	GroupID  uuid.UUID  `json:"group_id"`
	Name     string     `json:"name"`
	Email    string     `json:"email"`
	WhatsApp *string    `json:"whatsapp,omitempty"`
	Role     MemberRole `json:"role"`
	JoinedAt string     `json:"joined_at"`
}

// normalize trims the input in place and checks the required fields.
func (in *MemberInput) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.WhatsApp = trimOptional(in.WhatsApp)

	if in.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidMember)
	}
	if len(in.Name) > 100 {
		return fmt.Errorf("%w: name must be at most 100 characters", ErrInvalidMember)
	}
	if in.Email == "" {
		return fmt.Errorf("%w: email is required for %s", ErrInvalidMember, in.Name)
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return fmt.Errorf("%w: %q is not a valid email", ErrInvalidMember, in.Email)
	}
	return nil
}

func (r *UpdateMemberRequest) normalize() error {
	if r.Name != nil {
		name := strings.TrimSpace(*r.Name)
		if name == "" {
			return fmt.Errorf("%w: name cannot be blank", ErrInvalidMember)
		}
		r.Name = &name
	}
	if r.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*r.Email))
		if _, err := mail.ParseAddress(email); err != nil {
			return fmt.Errorf("%w: %q is not a valid email", ErrInvalidMember, email)
		}
		r.Email = &email
	}
	r.WhatsApp = trimOptional(r.WhatsApp)
	return nil
}

// trimOptional returns nil for absent or blank strings.
func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// ToResponse converts a Group model to a GroupResponse DTO
func (g *Group) ToResponse() *GroupResponse {
	return &GroupResponse{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		CreatedBy:   g.CreatedBy,
		CreatedAt:   formatTime(g.CreatedAt),
	}
}

// ToResponse converts a Member model to a MemberResponse DTO
func (m *Member) ToResponse() *MemberResponse {
	return &MemberResponse{
		ID:       m.ID,
		GroupID:  m.GroupID,
		Name:     m.Name,
		Email:    m.Email,
		WhatsApp: m.WhatsApp,
		Role:     m.Role,
		JoinedAt: formatTime(m.JoinedAt),
	}
}

package group

import (
	"time"

	"github.com/google/uuid"
)

// MemberRole represents the role of a group member
type MemberRole string

const (
	MemberRoleAdmin  MemberRole = "ADMIN"
	MemberRoleMember MemberRole = "MEMBER"
)

// Group is a set of people sharing expenses. CreatedBy is the admin member.
type Group struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	CreatedBy   uuid.UUID `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// Member is a person inside one group. Members are not shared across groups.
type Member struct {
	ID       uuid.UUID  `json:"id"`
	GroupID  uuid.UUID  `json:"group_id"`
	Name     string     `json:"name"`
	Email    string     `json:"email"`
	WhatsApp *string    `json:"whatsapp,omitempty"`
	Role     MemberRole `json:"role"`
	JoinedAt time.Time  `json:"joined_at"`
}

// IsAdmin reports whether the member administers the group.
func (m *Member) IsAdmin() bool {
	return m.Role == MemberRoleAdmin
}

package models

import (
	"time"

	"github.com/google/uuid"
)

type WorkspaceRole string

const (
	RoleOwner  WorkspaceRole = "owner"
	RoleAdmin  WorkspaceRole = "admin"
	RoleMember WorkspaceRole = "member"
	RoleViewer WorkspaceRole = "viewer"
)

// Roles lists every role from most to least privileged.
var Roles = []WorkspaceRole{RoleOwner, RoleAdmin, RoleMember, RoleViewer}

var roleRank = map[WorkspaceRole]int{
	RoleViewer: 1,
	RoleMember: 2,
	RoleAdmin:  3,
	RoleOwner:  4,
}

// Valid reports whether r is one of the known roles.
func (r WorkspaceRole) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// AtLeast reports whether r grants at least the privileges of min.
func (r WorkspaceRole) AtLeast(min WorkspaceRole) bool {
	return r.Valid() && roleRank[r] >= roleRank[min]
}

type WorkspaceMember struct {
	WorkspaceID uuid.UUID     `gorm:"type:char(36);primaryKey" json:"workspace_id"`
	UserID      uint64        `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	Role        WorkspaceRole `gorm:"type:varchar(20);not null" json:"role"`
	JoinedAt    time.Time     `json:"joined_at"`

	// Relations
	Workspace Workspace `gorm:"foreignKey:WorkspaceID" json:"workspace,omitempty"`
	User      User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

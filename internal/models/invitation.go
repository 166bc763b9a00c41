package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Invitation is a pending offer of membership addressed to an email.
// At most one row exists per (workspace, email).
type Invitation struct {
	ID          uuid.UUID     `gorm:"type:char(36);primaryKey" json:"id"`
	WorkspaceID uuid.UUID     `gorm:"type:char(36);not null;uniqueIndex:idx_invitations_workspace_email" json:"workspace_id"`
	Email       string        `gorm:"type:varchar(255);not null;uniqueIndex:idx_invitations_workspace_email" json:"email"`
	Role        WorkspaceRole `gorm:"type:varchar(20);not null" json:"role"`
	Token       string        `gorm:"type:char(64);uniqueIndex;not null" json:"token"`
	InvitedBy   uint64        `gorm:"not null" json:"invited_by"`
	CreatedAt   time.Time     `json:"created_at"`
	ExpiresAt   time.Time     `gorm:"not null;index" json:"expires_at"`
	AcceptedAt  *time.Time    `json:"accepted_at"`

	// Relations
	Workspace Workspace `gorm:"foreignKey:WorkspaceID" json:"-"`
}

func (i *Invitation) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// ExpiredAt reports whether the invitation is no longer redeemable at now.
// An invitation expiring exactly at now is expired.
func (i *Invitation) ExpiredAt(now time.Time) bool {
	return !now.Before(i.ExpiresAt)
}

func (i *Invitation) Accepted() bool {
	return i.AcceptedAt != nil
}

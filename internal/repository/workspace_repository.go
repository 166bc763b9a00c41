package repository

import (
	"context"
	"fmt"

	"github.com/Adams99Abubakry/team-nexus/internal/database"
	"github.com/Adams99Abubakry/team-nexus/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormWorkspaceRepository is a GORM implementation of WorkspaceRepository
type GormWorkspaceRepository struct {
	db *gorm.DB
}

// NewWorkspaceRepository creates a new WorkspaceRepository
func NewWorkspaceRepository(db *gorm.DB) WorkspaceRepository {
	return &GormWorkspaceRepository{db: db}
}

// CreateWithOwner creates the workspace and the owner membership atomically.
// Either both rows exist afterwards or neither does.
func (r *GormWorkspaceRepository) CreateWithOwner(ctx context.Context, ws *models.Workspace, owner *models.WorkspaceMember) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Members", "Invitations").Create(ws).Error; err != nil {
			if database.IsUniqueViolation(err) {
				return fmt.Errorf("%w: %v", ErrDuplicateSlug, err)
			}
			return fmt.Errorf("%w: %v", ErrCreateWorkspace, err)
		}

		owner.WorkspaceID = ws.ID
		owner.Role = models.RoleOwner

		if err := tx.Omit("Workspace", "User").Create(owner).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateOwnerMembership, err)
		}

		return nil
	})
}

// FindByID finds a workspace by ID
func (r *GormWorkspaceRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Workspace, error) {
	var ws models.Workspace
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&ws).Error; err != nil {
		return nil, err
	}
	return &ws, nil
}

// Update updates the mutable workspace settings
func (r *GormWorkspaceRepository) Update(ctx context.Context, ws *models.Workspace) error {
	return r.db.WithContext(ctx).Model(ws).
		Select("Name", "Description", "UpdatedAt").
		Updates(ws).Error
}

// FindMember finds a specific workspace member
func (r *GormWorkspaceRepository) FindMember(ctx context.Context, workspaceID uuid.UUID, userID uint64) (*models.WorkspaceMember, error) {
	var member models.WorkspaceMember
	if err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND user_id = ?", workspaceID, userID).
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// ListMembers lists all members of a workspace
func (r *GormWorkspaceRepository) ListMembers(ctx context.Context, workspaceID uuid.UUID) ([]models.WorkspaceMember, error) {
	var members []models.WorkspaceMember
	if err := r.db.WithContext(ctx).Preload("User").
		Where("workspace_id = ?", workspaceID).
		Order("joined_at ASC").
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

// ListMembershipsByUserID lists all workspaces a user is a member of
func (r *GormWorkspaceRepository) ListMembershipsByUserID(ctx context.Context, userID uint64) ([]models.WorkspaceMember, error) {
	var memberships []models.WorkspaceMember
	if err := r.db.WithContext(ctx).Preload("Workspace").
		Where("user_id = ?", userID).
		Order("joined_at ASC").
		Find(&memberships).Error; err != nil {
		return nil, err
	}
	return memberships, nil
}

// UpdateMemberRole changes the role of an existing member.
// Demoting the last owner yields ErrLastOwner.
func (r *GormWorkspaceRepository) UpdateMemberRole(ctx context.Context, workspaceID uuid.UUID, userID uint64, role models.WorkspaceRole) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		target, owners, err := lockMembership(tx, workspaceID, userID)
		if err != nil {
			return err
		}
		if target.Role == role {
			return nil
		}
		if target.Role == models.RoleOwner && owners <= 1 {
			return ErrLastOwner
		}

		result := tx.Model(&models.WorkspaceMember{}).
			Where("workspace_id = ? AND user_id = ?", workspaceID, userID).
			Update("role", role)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// RemoveMember removes a member from a workspace together with the accepted
// invitation that admitted them, so the address can be invited again.
// Removing the last owner yields ErrLastOwner.
func (r *GormWorkspaceRepository) RemoveMember(ctx context.Context, workspaceID uuid.UUID, userID uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		target, owners, err := lockMembership(tx, workspaceID, userID)
		if err != nil {
			return err
		}
		if target.Role == models.RoleOwner && owners <= 1 {
			return ErrLastOwner
		}

		if err := tx.Where("workspace_id = ? AND user_id = ?", workspaceID, userID).
			Delete(&models.WorkspaceMember{}).Error; err != nil {
			return err
		}

		email := tx.Unscoped().Model(&models.User{}).Select("email").Where("id = ?", userID)
		if err := tx.Where("workspace_id = ? AND accepted_at IS NOT NULL AND email IN (?)", workspaceID, email).
			Delete(&models.Invitation{}).Error; err != nil {
			return fmt.Errorf("failed to clear accepted invitation: %w", err)
		}
		return nil
	})
}

// lockMembership locks the owner rows of the workspace and returns the target
// membership with the number of owners. Holding the owner locks until commit
// serializes concurrent demotions and removals of owners.
func lockMembership(tx *gorm.DB, workspaceID uuid.UUID, userID uint64) (*models.WorkspaceMember, int, error) {
	var owners []models.WorkspaceMember
	if err := tx.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		Where("workspace_id = ? AND role = ?", workspaceID, models.RoleOwner).
		Order("user_id").
		Find(&owners).Error; err != nil {
		return nil, 0, err
	}

	for i := range owners {
		if owners[i].UserID == userID {
			return &owners[i], len(owners), nil
		}
	}

	var member models.WorkspaceMember
	if err := tx.Where("workspace_id = ? AND user_id = ?", workspaceID, userID).
		First(&member).Error; err != nil {
		return nil, 0, err
	}
	return &member, len(owners), nil
}

package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Adams99Abubakry/team-nexus/internal/database"
	"github.com/Adams99Abubakry/team-nexus/internal/models"
	"github.com/Adams99Abubakry/team-nexus/internal/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormInvitationRepository is a GORM implementation of InvitationRepository
type GormInvitationRepository struct {
	db *gorm.DB
}

// NewInvitationRepository creates a new InvitationRepository
func NewInvitationRepository(db *gorm.DB) InvitationRepository {
	return &GormInvitationRepository{db: db}
}

// Create inserts a new invitation
func (r *GormInvitationRepository) Create(ctx context.Context, inv *models.Invitation) error {
	if err := r.db.WithContext(ctx).Omit("Workspace").Create(inv).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("%w: %v", ErrDuplicateInvitation, err)
		}
		return err
	}
	return nil
}

// FindByWorkspaceAndEmail finds the invitation addressed to email in a workspace
func (r *GormInvitationRepository) FindByWorkspaceAndEmail(ctx context.Context, workspaceID uuid.UUID, email string) (*models.Invitation, error) {
	var inv models.Invitation
	if err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND email = ?", workspaceID, email).
		First(&inv).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

// FindPendingByToken finds an unaccepted invitation by token.
// Accepted invitations are never returned, which makes a token single-use.
func (r *GormInvitationRepository) FindPendingByToken(ctx context.Context, token string) (*models.Invitation, error) {
	var inv models.Invitation
	if err := r.db.WithContext(ctx).
		Where("token = ? AND accepted_at IS NULL", token).
		First(&inv).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

// ListPending lists the unaccepted invitations of a workspace
func (r *GormInvitationRepository) ListPending(ctx context.Context, workspaceID uuid.UUID, params utils.PaginationParams) ([]models.Invitation, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Invitation{}).
		Where("workspace_id = ? AND accepted_at IS NULL", workspaceID).
		Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var invitations []models.Invitation
	if err := query.Order("created_at DESC").
		Scopes(database.Paginate(params)).
		Find(&invitations).Error; err != nil {
		return nil, 0, err
	}

	return invitations, total, nil
}

// DeletePending cancels an unaccepted invitation
func (r *GormInvitationRepository) DeletePending(ctx context.Context, workspaceID, invitationID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND workspace_id = ? AND accepted_at IS NULL", invitationID, workspaceID).
		Delete(&models.Invitation{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Redeem turns the invitation into a membership.
// The membership insert and the acceptance stamp commit together; the stamp
// only applies while accepted_at is still NULL.
func (r *GormInvitationRepository) Redeem(ctx context.Context, inv *models.Invitation, member *models.WorkspaceMember, acceptedAt time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Workspace", "User").Create(member).Error; err != nil {
			if database.IsUniqueViolation(err) {
				return fmt.Errorf("%w: %v", ErrDuplicateMember, err)
			}
			return fmt.Errorf("failed to add member: %w", err)
		}

		result := tx.Model(&models.Invitation{}).
			Where("id = ? AND accepted_at IS NULL", inv.ID).
			Update("accepted_at", acceptedAt)
		if result.Error != nil {
			return fmt.Errorf("failed to mark invitation accepted: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrInvitationConsumed
		}

		inv.AcceptedAt = &acceptedAt
		return nil
	})
}

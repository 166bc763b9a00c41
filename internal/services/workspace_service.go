package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/Adams99Abubakry/team-nexus/internal/auth"
	"github.com/Adams99Abubakry/team-nexus/internal/models"
	"github.com/Adams99Abubakry/team-nexus/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

var (
	ErrUnauthenticated         = errors.New("authentication required")
	ErrForbidden               = errors.New("insufficient workspace permissions")
	ErrInvalidWorkspaceName    = errors.New("workspace name cannot be empty")
	ErrInvalidWorkspaceSlug    = errors.New("workspace slug must contain lowercase letters, digits and single hyphens")
	ErrWorkspaceSlugTaken      = errors.New("workspace slug is already taken")
	ErrWorkspaceNotFound       = errors.New("workspace not found")
	ErrWorkspaceMemberNotFound = errors.New("workspace member not found")
	ErrCannotRemoveYourself    = errors.New("cannot remove yourself from the workspace")
	ErrLastOwner               = errors.New("workspace must keep at least one owner")
	ErrInvalidRole             = errors.New("invalid workspace role")
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// WorkspaceService provides business logic for workspaces and their members.
type WorkspaceService struct {
	workspaceRepo repository.WorkspaceRepository
	logger        zerolog.Logger
	now           func() time.Time
}

// NewWorkspaceService creates a new WorkspaceService.
func NewWorkspaceService(workspaceRepo repository.WorkspaceRepository, logger zerolog.Logger) *WorkspaceService {
	return &WorkspaceService{
		workspaceRepo: workspaceRepo,
		logger:        logger.With().Str("component", "workspace_service").Logger(),
		now:           time.Now,
	}
}

// CreateWorkspaceInput represents parameters to bootstrap a workspace.
type CreateWorkspaceInput struct {
	Name        string
	Slug        string
	Description *string
}

// CreateWorkspace creates a workspace with the caller as its owner.
// The workspace and the owner membership are written in one transaction.
func (s *WorkspaceService) CreateWorkspace(ctx context.Context, identity *auth.Identity, input CreateWorkspaceInput) (*models.Workspace, error) {
	if identity == nil {
		return nil, ErrUnauthenticated
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrInvalidWorkspaceName
	}
	if !slugPattern.MatchString(input.Slug) {
		return nil, ErrInvalidWorkspaceSlug
	}

	ws := &models.Workspace{
		Name:        name,
		Slug:        input.Slug,
		Description: normalizeDescription(input.Description),
		CreatedBy:   identity.UserID,
	}
	owner := &models.WorkspaceMember{
		UserID:   identity.UserID,
		Role:     models.RoleOwner,
		JoinedAt: s.now(),
	}

	if err := s.workspaceRepo.CreateWithOwner(ctx, ws, owner); err != nil {
		if errors.Is(err, repository.ErrDuplicateSlug) {
			return nil, ErrWorkspaceSlugTaken
		}
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}

	s.logger.Info().
		Str("workspace_id", ws.ID.String()).
		Str("slug", ws.Slug).
		Uint64("user_id", identity.UserID).
		Msg("workspace created")

	return ws, nil
}

// ListWorkspacesForUser returns the memberships of the caller with workspaces preloaded.
func (s *WorkspaceService) ListWorkspacesForUser(ctx context.Context, identity *auth.Identity) ([]models.WorkspaceMember, error) {
	if identity == nil {
		return nil, ErrUnauthenticated
	}

	memberships, err := s.workspaceRepo.ListMembershipsByUserID(ctx, identity.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list workspaces: %w", err)
	}
	return memberships, nil
}

// GetWorkspaceWithMembers returns a workspace and all of its members.
func (s *WorkspaceService) GetWorkspaceWithMembers(ctx context.Context, workspaceID uuid.UUID) (*models.Workspace, []models.WorkspaceMember, error) {
	ws, err := s.findWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, nil, err
	}

	members, err := s.workspaceRepo.ListMembers(ctx, workspaceID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list workspace members: %w", err)
	}

	return ws, members, nil
}

// UpdateWorkspaceInput holds the mutable workspace settings. Nil fields are left unchanged.
type UpdateWorkspaceInput struct {
	Name        *string
	Description *string
}

// UpdateWorkspace changes the name and description of a workspace.
func (s *WorkspaceService) UpdateWorkspace(ctx context.Context, workspaceID uuid.UUID, input UpdateWorkspaceInput) (*models.Workspace, error) {
	ws, err := s.findWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrInvalidWorkspaceName
		}
		ws.Name = name
	}
	if input.Description != nil {
		ws.Description = normalizeDescription(input.Description)
	}

	if err := s.workspaceRepo.Update(ctx, ws); err != nil {
		return nil, fmt.Errorf("failed to update workspace: %w", err)
	}

	return ws, nil
}

// ChangeMemberRole sets the role of a member.
// Granting owner, or changing an owner's role, requires the actor to be an owner.
func (s *WorkspaceService) ChangeMemberRole(ctx context.Context, workspaceID uuid.UUID, actor *models.WorkspaceMember, targetID uint64, role models.WorkspaceRole) (*models.WorkspaceMember, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	if actor == nil || !actor.Role.AtLeast(models.RoleAdmin) {
		return nil, ErrForbidden
	}

	target, err := s.findMember(ctx, workspaceID, targetID)
	if err != nil {
		return nil, err
	}

	if (role == models.RoleOwner || target.Role == models.RoleOwner) && actor.Role != models.RoleOwner {
		return nil, ErrForbidden
	}
	if target.Role == role {
		return target, nil
	}

	if err := s.workspaceRepo.UpdateMemberRole(ctx, workspaceID, targetID, role); err != nil {
		switch {
		case errors.Is(err, repository.ErrLastOwner):
			return nil, ErrLastOwner
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, ErrWorkspaceMemberNotFound
		default:
			return nil, fmt.Errorf("failed to update member role: %w", err)
		}
	}

	s.logger.Info().
		Str("workspace_id", workspaceID.String()).
		Uint64("user_id", targetID).
		Str("from", string(target.Role)).
		Str("to", string(role)).
		Msg("member role changed")

	target.Role = role
	return target, nil
}

// RemoveMember removes a member from the workspace.
func (s *WorkspaceService) RemoveMember(ctx context.Context, workspaceID uuid.UUID, actor *models.WorkspaceMember, targetID uint64) error {
	if actor == nil || !actor.Role.AtLeast(models.RoleAdmin) {
		return ErrForbidden
	}
	if targetID == actor.UserID {
		return ErrCannotRemoveYourself
	}

	target, err := s.findMember(ctx, workspaceID, targetID)
	if err != nil {
		return err
	}

	if target.Role == models.RoleOwner && actor.Role != models.RoleOwner {
		return ErrForbidden
	}

	if err := s.workspaceRepo.RemoveMember(ctx, workspaceID, targetID); err != nil {
		switch {
		case errors.Is(err, repository.ErrLastOwner):
			return ErrLastOwner
		case errors.Is(err, gorm.ErrRecordNotFound):
			return ErrWorkspaceMemberNotFound
		default:
			return fmt.Errorf("failed to remove member: %w", err)
		}
	}

	s.logger.Info().
		Str("workspace_id", workspaceID.String()).
		Uint64("user_id", targetID).
		Msg("member removed")

	return nil
}

func (s *WorkspaceService) findWorkspace(ctx context.Context, workspaceID uuid.UUID) (*models.Workspace, error) {
	ws, err := s.workspaceRepo.FindByID(ctx, workspaceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkspaceNotFound
		}
		return nil, fmt.Errorf("failed to find workspace: %w", err)
	}
	return ws, nil
}

func (s *WorkspaceService) findMember(ctx context.Context, workspaceID uuid.UUID, userID uint64) (*models.WorkspaceMember, error) {
	member, err := s.workspaceRepo.FindMember(ctx, workspaceID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkspaceMemberNotFound
		}
		return nil, fmt.Errorf("failed to find workspace member: %w", err)
	}
	return member, nil
}

func normalizeDescription(description *string) *string {
	if description == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*description)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

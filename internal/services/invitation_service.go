package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/Adams99Abubakry/team-nexus/internal/auth"
	"github.com/Adams99Abubakry/team-nexus/internal/constants"
	"github.com/Adams99Abubakry/team-nexus/internal/mailer"
	"github.com/Adams99Abubakry/team-nexus/internal/models"
	"github.com/Adams99Abubakry/team-nexus/internal/repository"
	"github.com/Adams99Abubakry/team-nexus/internal/utils"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

var (
	ErrInvalidInvitationInput    = errors.New("invalid invitation input")
	ErrInvitationAlreadyAccepted = errors.New("invitation has already been accepted")
	ErrTokenGenerationFailed     = errors.New("failed to generate invitation token")
)

// InvitationOptions configures an InvitationService. Zero values fall back to defaults.
type InvitationOptions struct {
	AppOrigin string
	TTL       time.Duration
	Now       func() time.Time
	NewToken  func() (string, error)
}

// InvitationService creates, lists, cancels and accepts workspace invitations.
type InvitationService struct {
	invitationRepo repository.InvitationRepository
	workspaceRepo  repository.WorkspaceRepository
	mailer         mailer.Mailer
	logger         zerolog.Logger
	validate       *validator.Validate

	appOrigin string
	ttl       time.Duration
	now       func() time.Time
	newToken  func() (string, error)
}

// NewInvitationService creates a new InvitationService.
func NewInvitationService(
	invitationRepo repository.InvitationRepository,
	workspaceRepo repository.WorkspaceRepository,
	m mailer.Mailer,
	logger zerolog.Logger,
	opts InvitationOptions,
) *InvitationService {
	if m == nil {
		m = mailer.Disabled{}
	}
	if opts.TTL <= 0 {
		opts.TTL = constants.InvitationTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewToken == nil {
		opts.NewToken = utils.GenerateInvitationToken
	}

	return &InvitationService{
		invitationRepo: invitationRepo,
		workspaceRepo:  workspaceRepo,
		mailer:         m,
		logger:         logger.With().Str("component", "invitation_service").Logger(),
		validate:       validator.New(),
		appOrigin:      strings.TrimRight(opts.AppOrigin, "/"),
		ttl:            opts.TTL,
		now:            opts.Now,
		newToken:       opts.NewToken,
	}
}

// CreateInvitationInput represents an invitation request.
// WorkspaceName and InviterName only feed the email and may be empty.
type CreateInvitationInput struct {
	Email         string               `validate:"required,email,max=255"`
	WorkspaceID   uuid.UUID            `validate:"-"`
	WorkspaceName string               `validate:"max=255"`
	Role          models.WorkspaceRole `validate:"required,oneof=owner admin member viewer"`
	InviterName   string               `validate:"max=255"`
}

// InvitationResult is the outcome of CreateInvitation.
type InvitationResult struct {
	Invitation *models.Invitation
	InviteURL  string
	EmailSent  bool
	// Resent is true when an existing pending invitation was reused.
	Resent bool
}

// CreateInvitation invites email to a workspace, or resends the pending
// invitation for the same address. The token and expiry of a resent
// invitation are left untouched, so an expired one is not resent.
func (s *InvitationService) CreateInvitation(ctx context.Context, identity *auth.Identity, input CreateInvitationInput) (*InvitationResult, error) {
	if identity == nil {
		return nil, ErrUnauthenticated
	}

	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.WorkspaceName = strings.TrimSpace(input.WorkspaceName)
	input.InviterName = strings.TrimSpace(input.InviterName)
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInvitationInput, err)
	}
	if input.WorkspaceID == uuid.Nil {
		return nil, fmt.Errorf("%w: workspace id is required", ErrInvalidInvitationInput)
	}

	inviter, err := s.workspaceRepo.FindMember(ctx, input.WorkspaceID, identity.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrForbidden
		}
		return nil, fmt.Errorf("failed to verify membership: %w", err)
	}
	if !inviter.Role.AtLeast(models.RoleAdmin) {
		return nil, ErrForbidden
	}
	if input.Role == models.RoleOwner && inviter.Role != models.RoleOwner {
		return nil, ErrForbidden
	}

	token, err := s.newToken()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenGenerationFailed, err)
	}

	now := s.now()
	inv := &models.Invitation{
		WorkspaceID: input.WorkspaceID,
		Email:       input.Email,
		Role:        input.Role,
		Token:       token,
		InvitedBy:   identity.UserID,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.ttl),
	}

	resent := false
	if err := s.invitationRepo.Create(ctx, inv); err != nil {
		if !errors.Is(err, repository.ErrDuplicateInvitation) {
			return nil, fmt.Errorf("failed to create invitation: %w", err)
		}

		existing, findErr := s.invitationRepo.FindByWorkspaceAndEmail(ctx, input.WorkspaceID, input.Email)
		if findErr != nil {
			return nil, fmt.Errorf("failed to load existing invitation: %w", findErr)
		}
		if existing.Accepted() {
			return nil, ErrInvitationAlreadyAccepted
		}
		// Its link is dead; it has to be cancelled and issued again.
		if existing.ExpiredAt(now) {
			return nil, ErrInvitationExpired
		}
		inv = existing
		resent = true
	}

	inviteURL := s.AcceptURL(inv.Token)

	workspaceName := input.WorkspaceName
	if workspaceName == "" {
		workspaceName = s.lookupWorkspaceName(ctx, inv.WorkspaceID)
	}
	inviterName := input.InviterName
	if inviterName == "" {
		inviterName = identity.Name()
	}

	emailSent := s.deliver(ctx, mailer.InvitationEmail{
		To:            inv.Email,
		WorkspaceName: workspaceName,
		InviterName:   inviterName,
		Role:          string(inv.Role),
		InviteURL:     inviteURL,
		ExpiresAt:     inv.ExpiresAt,
	})

	s.logger.Info().
		Str("workspace_id", inv.WorkspaceID.String()).
		Str("invitation_id", inv.ID.String()).
		Str("email", inv.Email).
		Bool("resent", resent).
		Bool("email_sent", emailSent).
		Msg("invitation issued")

	return &InvitationResult{
		Invitation: inv,
		InviteURL:  inviteURL,
		EmailSent:  emailSent,
		Resent:     resent,
	}, nil
}

// AcceptURL builds the absolute acceptance link for token.
func (s *InvitationService) AcceptURL(token string) string {
	return s.appOrigin + constants.AcceptInvitePath + "?token=" + url.QueryEscape(token)
}

// ListPendingInvitations lists the unaccepted invitations of a workspace.
func (s *InvitationService) ListPendingInvitations(ctx context.Context, workspaceID uuid.UUID, params utils.PaginationParams) ([]models.Invitation, int64, error) {
	invitations, total, err := s.invitationRepo.ListPending(ctx, workspaceID, params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list invitations: %w", err)
	}
	return invitations, total, nil
}

// CancelInvitation deletes an invitation that has not been accepted yet.
func (s *InvitationService) CancelInvitation(ctx context.Context, workspaceID, invitationID uuid.UUID) error {
	if err := s.invitationRepo.DeletePending(ctx, workspaceID, invitationID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvitationNotFound
		}
		return fmt.Errorf("failed to cancel invitation: %w", err)
	}

	s.logger.Info().
		Str("workspace_id", workspaceID.String()).
		Str("invitation_id", invitationID.String()).
		Msg("invitation cancelled")
	return nil
}

// deliver sends the invitation email and reports whether it went out.
// Failures are logged and never returned.
func (s *InvitationService) deliver(ctx context.Context, data mailer.InvitationEmail) bool {
	msg, err := mailer.RenderInvitation(data)
	if err != nil {
		s.logger.Error().Err(err).Str("email", data.To).Msg("failed to render invitation email")
		return false
	}

	if err := s.mailer.Send(ctx, msg); err != nil {
		if errors.Is(err, mailer.ErrDisabled) {
			s.logger.Info().Str("email", data.To).Msg("mail delivery disabled, invitation email not sent")
			return false
		}
		s.logger.Warn().Err(err).Str("email", data.To).Msg("failed to send invitation email")
		return false
	}
	return true
}

func (s *InvitationService) lookupWorkspaceName(ctx context.Context, workspaceID uuid.UUID) string {
	ws, err := s.workspaceRepo.FindByID(ctx, workspaceID)
	if err != nil {
		s.logger.Warn().Err(err).Str("workspace_id", workspaceID.String()).Msg("failed to load workspace name")
		return "your workspace"
	}
	return ws.Name
}

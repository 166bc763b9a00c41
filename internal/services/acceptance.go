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
	"github.com/Adams99Abubakry/team-nexus/internal/models"
	"github.com/Adams99Abubakry/team-nexus/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrInvalidInvitationLink   = errors.New("invalid invitation link")
	ErrInvitationNotFound      = errors.New("invitation not found or already used")
	ErrInvitationExpired       = errors.New("invitation has expired")
	ErrInvitationEmailMismatch = errors.New("invitation was sent to a different email address")
	ErrAlreadyWorkspaceMember  = errors.New("user is already a member of this workspace")
	ErrInvitationAlreadyUsed   = errors.New("invitation has already been used")
	ErrAcceptanceFailed        = errors.New("failed to accept invitation")
)

// AcceptanceState is a step of the invitation acceptance flow.
type AcceptanceState string

const (
	AcceptanceLoading       AcceptanceState = "loading"
	AcceptanceLoginRequired AcceptanceState = "login_required"
	AcceptanceError         AcceptanceState = "error"
	AcceptanceSuccess       AcceptanceState = "success"
)

// Terminal reports whether no further transition can leave the state.
func (s AcceptanceState) Terminal() bool {
	return s == AcceptanceError || s == AcceptanceSuccess
}

// AcceptanceResult describes where an acceptance ended up.
type AcceptanceResult struct {
	State   AcceptanceState
	Message string
	// Err is the sentinel behind an error or login_required state.
	Err error

	WorkspaceID uuid.UUID
	Role        models.WorkspaceRole

	RedirectTo    string
	RedirectAfter time.Duration
}

// Acceptance walks a single invitation token through the acceptance states.
// It starts in loading, may stop in login_required until an identity is
// available, and ends in error or success. Once terminal it never changes.
type Acceptance struct {
	svc    *InvitationService
	token  string
	result AcceptanceResult
}

// NewAcceptance starts an acceptance for token.
func (s *InvitationService) NewAcceptance(token string) *Acceptance {
	return &Acceptance{
		svc:    s,
		token:  strings.TrimSpace(token),
		result: AcceptanceResult{State: AcceptanceLoading},
	}
}

// AcceptInvitation runs a full acceptance of token for identity.
func (s *InvitationService) AcceptInvitation(ctx context.Context, identity *auth.Identity, token string) AcceptanceResult {
	return s.NewAcceptance(token).Advance(ctx, identity)
}

// State returns the current state.
func (a *Acceptance) State() AcceptanceState {
	return a.result.State
}

// Result returns the latest result.
func (a *Acceptance) Result() AcceptanceResult {
	return a.result
}

// Advance evaluates the acceptance with identity, which may be nil when the
// caller is not signed in.
func (a *Acceptance) Advance(ctx context.Context, identity *auth.Identity) AcceptanceResult {
	if a.result.State.Terminal() {
		return a.result
	}
	a.result = a.evaluate(ctx, identity)
	return a.result
}

func (a *Acceptance) evaluate(ctx context.Context, identity *auth.Identity) AcceptanceResult {
	s := a.svc

	if a.token == "" {
		return failed(ErrInvalidInvitationLink, "Invalid invitation link")
	}

	if identity == nil {
		return AcceptanceResult{
			State:      AcceptanceLoginRequired,
			Message:    "Please sign in to accept this invitation",
			Err:        ErrUnauthenticated,
			RedirectTo: LoginRedirect(a.token),
		}
	}

	inv, err := s.invitationRepo.FindPendingByToken(ctx, a.token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return failed(ErrInvitationNotFound, "This invitation has expired or has already been used")
		}
		s.logger.Error().Err(err).Msg("failed to look up invitation")
		return failed(fmt.Errorf("%w: %v", ErrAcceptanceFailed, err), "Failed to accept invitation")
	}

	now := s.now()
	if inv.ExpiredAt(now) {
		return failed(ErrInvitationExpired, "This invitation has expired")
	}

	if !identity.EmailMatches(inv.Email) {
		return failed(ErrInvitationEmailMismatch,
			fmt.Sprintf("This invitation was sent to %s. Please sign in with that email address.", inv.Email))
	}

	member := &models.WorkspaceMember{
		WorkspaceID: inv.WorkspaceID,
		UserID:      identity.UserID,
		Role:        inv.Role,
		JoinedAt:    now,
	}
	if err := s.invitationRepo.Redeem(ctx, inv, member, now); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateMember):
			return failed(ErrAlreadyWorkspaceMember, "You are already a member of this workspace")
		case errors.Is(err, repository.ErrInvitationConsumed):
			return failed(ErrInvitationAlreadyUsed, "This invitation has already been used")
		default:
			s.logger.Error().Err(err).Str("invitation_id", inv.ID.String()).Msg("failed to redeem invitation")
			return failed(fmt.Errorf("%w: %v", ErrAcceptanceFailed, err), "Failed to accept invitation")
		}
	}

	s.logger.Info().
		Str("workspace_id", inv.WorkspaceID.String()).
		Str("invitation_id", inv.ID.String()).
		Uint64("user_id", identity.UserID).
		Str("role", string(inv.Role)).
		Msg("invitation accepted")

	return AcceptanceResult{
		State:         AcceptanceSuccess,
		Message:       "Invitation accepted! Redirecting to your dashboard...",
		WorkspaceID:   inv.WorkspaceID,
		Role:          inv.Role,
		RedirectTo:    constants.AcceptRedirectPath,
		RedirectAfter: constants.AcceptRedirectDelay,
	}
}

// LoginRedirect returns the login path that brings the user back to the
// acceptance page for token once signed in.
func LoginRedirect(token string) string {
	back := constants.AcceptInvitePath + "?token=" + url.QueryEscape(token)
	return constants.LoginPath + "?redirect=" + url.QueryEscape(back)
}

func failed(err error, message string) AcceptanceResult {
	return AcceptanceResult{
		State:   AcceptanceError,
		Message: message,
		Err:     err,
	}
}

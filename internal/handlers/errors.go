package handlers

import (
	"errors"

	apierrors "github.com/Adams99Abubakry/team-nexus/internal/errors"
	"github.com/Adams99Abubakry/team-nexus/internal/services"
)

// errorKind classifies a service error for the HTTP layer.
func errorKind(err error) apierrors.Kind {
	switch {
	case err == nil:
		return apierrors.KindUnknown
	case errors.Is(err, services.ErrUnauthenticated):
		return apierrors.KindUnauthenticated
	case errors.Is(err, services.ErrForbidden):
		return apierrors.KindForbidden
	case errors.Is(err, services.ErrInvalidWorkspaceName),
		errors.Is(err, services.ErrInvalidWorkspaceSlug),
		errors.Is(err, services.ErrInvalidRole),
		errors.Is(err, services.ErrInvalidInvitationInput),
		errors.Is(err, services.ErrInvalidInvitationLink):
		return apierrors.KindInvalidInput
	case errors.Is(err, services.ErrCannotRemoveYourself),
		errors.Is(err, services.ErrLastOwner):
		return apierrors.KindInvalidOperation
	case errors.Is(err, services.ErrWorkspaceSlugTaken),
		errors.Is(err, services.ErrAlreadyWorkspaceMember):
		return apierrors.KindConflict
	case errors.Is(err, services.ErrInvitationAlreadyAccepted),
		errors.Is(err, services.ErrInvitationAlreadyUsed):
		return apierrors.KindAlreadyAccepted
	case errors.Is(err, services.ErrWorkspaceNotFound),
		errors.Is(err, services.ErrWorkspaceMemberNotFound),
		errors.Is(err, services.ErrInvitationNotFound):
		return apierrors.KindNotFound
	case errors.Is(err, services.ErrInvitationExpired):
		return apierrors.KindExpired
	case errors.Is(err, services.ErrInvitationEmailMismatch):
		return apierrors.KindEmailMismatch
	default:
		return apierrors.KindUnknown
	}
}

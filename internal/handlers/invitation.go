package handlers

import (
	"fmt"
	"net/http"

	"github.com/Adams99Abubakry/team-nexus/internal/dto"
	apierrors "github.com/Adams99Abubakry/team-nexus/internal/errors"
	"github.com/Adams99Abubakry/team-nexus/internal/middleware"
	"github.com/Adams99Abubakry/team-nexus/internal/models"
	"github.com/Adams99Abubakry/team-nexus/internal/services"
	"github.com/Adams99Abubakry/team-nexus/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// InvitationHandler serves invitation creation, administration and acceptance.
type InvitationHandler struct {
	invitationService *services.InvitationService
	logger            zerolog.Logger
}

// NewInvitationHandler creates a new InvitationHandler.
func NewInvitationHandler(invitationService *services.InvitationService, logger zerolog.Logger) *InvitationHandler {
	return &InvitationHandler{
		invitationService: invitationService,
		logger:            logger,
	}
}

// CreateInvitation creates or resends an invitation.
// Failures use the {"error": "..."} envelope.
func (h *InvitationHandler) CreateInvitation(c *gin.Context) {
	type CreateInvitationRequest struct {
		Email         string `json:"email"`
		WorkspaceID   string `json:"workspaceId"`
		WorkspaceName string `json:"workspaceName"`
		Role          string `json:"role"`
		InviterName   string `json:"inviterName"`
	}

	identity := middleware.GetIdentity(c)
	if identity == nil {
		apierrors.RespondWithMessage(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req CreateInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.RespondWithMessage(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	workspaceID, err := uuid.Parse(req.WorkspaceID)
	if err != nil {
		apierrors.RespondWithMessage(c, http.StatusBadRequest, "Invalid workspace ID")
		return
	}

	role := models.WorkspaceRole(req.Role)
	if role == "" {
		role = models.RoleMember
	}

	result, err := h.invitationService.CreateInvitation(c.Request.Context(), identity, services.CreateInvitationInput{
		Email:         req.Email,
		WorkspaceID:   workspaceID,
		WorkspaceName: req.WorkspaceName,
		Role:          role,
		InviterName:   req.InviterName,
	})
	if err != nil {
		kind := errorKind(err)
		if kind == apierrors.KindUnknown {
			h.logger.Error().Err(err).Str("workspace_id", workspaceID.String()).Msg("failed to create invitation")
		}
		apierrors.RespondWithMessage(c, kind.HTTPStatus(), createInvitationMessage(kind))
		return
	}

	status := http.StatusCreated
	if result.Resent {
		status = http.StatusOK
	}
	c.JSON(status, dto.ToCreateInvitationResponse(*result))
}

func createInvitationMessage(kind apierrors.Kind) string {
	switch kind {
	case apierrors.KindUnauthenticated:
		return "Unauthorized"
	case apierrors.KindForbidden:
		return "You do not have permission to invite members to this workspace"
	case apierrors.KindInvalidInput:
		return "A valid email address and role are required"
	case apierrors.KindAlreadyAccepted:
		return "This email has already accepted an invitation to this workspace"
	case apierrors.KindExpired:
		return "The pending invitation for this email has expired. Cancel it to send a new one"
	default:
		return "Failed to create invitation"
	}
}

// ListInvitations lists pending invitations of the workspace
func (h *InvitationHandler) ListInvitations(c *gin.Context) {
	member, ok := middleware.GetWorkspaceMember(c)
	if !ok {
		apierrors.InternalError(c, "Workspace membership not found in context")
		return
	}

	params := utils.GetPaginationParams(c)
	invitations, total, err := h.invitationService.ListPendingInvitations(c.Request.Context(), member.WorkspaceID, params)
	if err != nil {
		h.logger.Error().Err(err).Str("workspace_id", member.WorkspaceID.String()).Msg("failed to list invitations")
		apierrors.InternalError(c, "Failed to list invitations")
		return
	}

	c.JSON(http.StatusOK, dto.ToInvitationListResponse(invitations, params, total))
}

// CancelInvitation deletes a pending invitation
func (h *InvitationHandler) CancelInvitation(c *gin.Context) {
	member, ok := middleware.GetWorkspaceMember(c)
	if !ok {
		apierrors.InternalError(c, "Workspace membership not found in context")
		return
	}

	invitationID, err := uuid.Parse(c.Param("invitation_id"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid invitation ID")
		return
	}

	if err := h.invitationService.CancelInvitation(c.Request.Context(), member.WorkspaceID, invitationID); err != nil {
		kind := errorKind(err)
		if kind == apierrors.KindUnknown {
			h.logger.Error().Err(err).Str("invitation_id", invitationID.String()).Msg("failed to cancel invitation")
			apierrors.InternalError(c, "Failed to cancel invitation")
			return
		}
		apierrors.RespondWithKind(c, kind, "Invitation not found")
		return
	}

	c.Status(http.StatusNoContent)
}

// AcceptPage runs the acceptance flow for GET /accept-invite?token=
func (h *InvitationHandler) AcceptPage(c *gin.Context) {
	h.respondAcceptance(c, c.Query("token"))
}

// AcceptInvitation runs the acceptance flow for API clients
func (h *InvitationHandler) AcceptInvitation(c *gin.Context) {
	type AcceptInvitationRequest struct {
		Token string `json:"token"`
	}

	var req AcceptInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	h.respondAcceptance(c, req.Token)
}

func (h *InvitationHandler) respondAcceptance(c *gin.Context, token string) {
	result := h.invitationService.AcceptInvitation(c.Request.Context(), middleware.GetIdentity(c), token)
	body := dto.ToAcceptanceDTO(result)

	switch result.State {
	case services.AcceptanceSuccess:
		c.Header("Refresh", fmt.Sprintf("%d; url=%s", int(result.RedirectAfter.Seconds()), result.RedirectTo))
		c.JSON(http.StatusOK, body)
	case services.AcceptanceLoginRequired:
		c.JSON(http.StatusUnauthorized, body)
	default:
		c.JSON(errorKind(result.Err).HTTPStatus(), body)
	}
}

package handlers

import (
	"net/http"
	"strconv"

	"github.com/Adams99Abubakry/team-nexus/internal/dto"
	apierrors "github.com/Adams99Abubakry/team-nexus/internal/errors"
	"github.com/Adams99Abubakry/team-nexus/internal/middleware"
	"github.com/Adams99Abubakry/team-nexus/internal/models"
	"github.com/Adams99Abubakry/team-nexus/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// WorkspaceHandler serves workspace bootstrap and administration.
type WorkspaceHandler struct {
	workspaceService *services.WorkspaceService
	logger           zerolog.Logger
}

// NewWorkspaceHandler creates a new WorkspaceHandler.
func NewWorkspaceHandler(workspaceService *services.WorkspaceService, logger zerolog.Logger) *WorkspaceHandler {
	return &WorkspaceHandler{
		workspaceService: workspaceService,
		logger:           logger,
	}
}

// CreateWorkspace bootstraps a workspace owned by the caller
func (h *WorkspaceHandler) CreateWorkspace(c *gin.Context) {
	type CreateWorkspaceRequest struct {
		Name        string  `json:"name" binding:"required,max=255"`
		Slug        string  `json:"slug" binding:"required,max=100"`
		Description *string `json:"description"`
	}

	var req CreateWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	ws, err := h.workspaceService.CreateWorkspace(c.Request.Context(), middleware.GetIdentity(c), services.CreateWorkspaceInput{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.CreateWorkspaceResponse{
		ID:        ws.ID,
		Workspace: dto.ToWorkspaceDTO(*ws),
	})
}

// ListWorkspaces returns all workspaces the caller is a member of
func (h *WorkspaceHandler) ListWorkspaces(c *gin.Context) {
	memberships, err := h.workspaceService.ListWorkspacesForUser(c.Request.Context(), middleware.GetIdentity(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	workspaces := make([]dto.WorkspaceWithRoleDTO, len(memberships))
	for i, m := range memberships {
		workspaces[i] = dto.ToWorkspaceWithRoleDTO(m)
	}

	c.JSON(http.StatusOK, gin.H{
		"workspaces": workspaces,
	})
}

// GetWorkspace returns workspace details with members
func (h *WorkspaceHandler) GetWorkspace(c *gin.Context) {
	member, ok := middleware.GetWorkspaceMember(c)
	if !ok {
		apierrors.InternalError(c, "Workspace membership not found in context")
		return
	}

	ws, members, err := h.workspaceService.GetWorkspaceWithMembers(c.Request.Context(), member.WorkspaceID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToWorkspaceDetailDTO(*ws, members, member.Role))
}

// UpdateWorkspace updates name and description
func (h *WorkspaceHandler) UpdateWorkspace(c *gin.Context) {
	member, ok := middleware.GetWorkspaceMember(c)
	if !ok {
		apierrors.InternalError(c, "Workspace membership not found in context")
		return
	}

	type UpdateWorkspaceRequest struct {
		Name        *string `json:"name" binding:"omitempty,max=255"`
		Description *string `json:"description"`
	}

	var req UpdateWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	ws, err := h.workspaceService.UpdateWorkspace(c.Request.Context(), member.WorkspaceID, services.UpdateWorkspaceInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToWorkspaceDTO(*ws))
}

// UpdateMemberRole changes the role of a member
func (h *WorkspaceHandler) UpdateMemberRole(c *gin.Context) {
	actor, ok := middleware.GetWorkspaceMember(c)
	if !ok {
		apierrors.InternalError(c, "Workspace membership not found in context")
		return
	}

	targetID, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid user ID")
		return
	}

	type UpdateMemberRoleRequest struct {
		Role models.WorkspaceRole `json:"role" binding:"required"`
	}

	var req UpdateMemberRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	member, err := h.workspaceService.ChangeMemberRole(c.Request.Context(), actor.WorkspaceID, actor, targetID, req.Role)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id": member.UserID,
		"role":    member.Role,
	})
}

// RemoveMember removes a member from the workspace
func (h *WorkspaceHandler) RemoveMember(c *gin.Context) {
	actor, ok := middleware.GetWorkspaceMember(c)
	if !ok {
		apierrors.InternalError(c, "Workspace membership not found in context")
		return
	}

	targetID, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid user ID")
		return
	}

	if err := h.workspaceService.RemoveMember(c.Request.Context(), actor.WorkspaceID, actor, targetID); err != nil {
		h.respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *WorkspaceHandler) respondError(c *gin.Context, err error) {
	kind := errorKind(err)
	if kind == apierrors.KindUnknown {
		h.logger.Error().Err(err).Str("path", c.FullPath()).Msg("workspace request failed")
		apierrors.InternalError(c, "")
		return
	}
	apierrors.RespondWithKind(c, kind, err.Error())
}

package middleware

import (
	"errors"
	"net/http"

	"github.com/Adams99Abubakry/team-nexus/internal/constants"
	apierrors "github.com/Adams99Abubakry/team-nexus/internal/errors"
	"github.com/Adams99Abubakry/team-nexus/internal/models"
	"github.com/Adams99Abubakry/team-nexus/internal/repository"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RequireWorkspaceAccess checks if the user is a member of the workspace in the :id parameter
func RequireWorkspaceAccess(workspaces repository.WorkspaceRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		workspaceID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			apierrors.BadRequest(c, "Invalid workspace ID")
			c.Abort()
			return
		}

		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		member, err := workspaces.FindMember(c.Request.Context(), workspaceID, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// 404 rather than 403 so workspace existence does not leak
				apierrors.NotFound(c, "Workspace not found")
			} else {
				apierrors.InternalError(c, "Failed to verify workspace membership")
			}
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyWorkspaceMember, member)
		c.Next()
	}
}

// RequireWorkspaceRole checks that the member loaded by RequireWorkspaceAccess holds at least min
func RequireWorkspaceRole(min models.WorkspaceRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		member, ok := GetWorkspaceMember(c)
		if !ok {
			apierrors.RespondWithError(c, http.StatusForbidden,
				apierrors.NewAPIError(apierrors.ErrCodeForbidden, "Workspace access required"))
			c.Abort()
			return
		}

		if !member.Role.AtLeast(min) {
			apierrors.RespondWithError(c, http.StatusForbidden,
				apierrors.NewAPIError(apierrors.ErrCodeInsufficientPermissions, "Insufficient workspace permissions"))
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetWorkspaceMember retrieves the caller's membership set by RequireWorkspaceAccess
func GetWorkspaceMember(c *gin.Context) (*models.WorkspaceMember, bool) {
	value, exists := c.Get(constants.ContextKeyWorkspaceMember)
	if !exists {
		return nil, false
	}
	member, ok := value.(*models.WorkspaceMember)
	return member, ok && member != nil
}

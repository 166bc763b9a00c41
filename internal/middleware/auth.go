package middleware

import (
	"context"

	"github.com/Adams99Abubakry/team-nexus/internal/auth"
	"github.com/Adams99Abubakry/team-nexus/internal/constants"
	apierrors "github.com/Adams99Abubakry/team-nexus/internal/errors"
	"github.com/Adams99Abubakry/team-nexus/internal/models"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// UserFinder loads the user behind a session.
type UserFinder interface {
	FindByID(ctx context.Context, id uint64) (*models.User, error)
}

// RequireAuth checks if the user is authenticated via session
func RequireAuth(users UserFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !loadIdentity(c, users) {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}
		c.Next()
	}
}

// OptionalAuth resolves the session identity when there is one and never aborts.
func OptionalAuth(users UserFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		loadIdentity(c, users)
		c.Next()
	}
}

func loadIdentity(c *gin.Context, users UserFinder) bool {
	session := sessions.Default(c)
	if raw := session.Get(constants.ContextKeyUserID); raw != nil {
		c.Set(constants.ContextKeyUserID, raw)
	}

	userID, ok := GetUserID(c)
	if !ok {
		return false
	}

	// The account may have been removed since the session was issued.
	user, err := users.FindByID(c.Request.Context(), userID)
	if err != nil {
		return false
	}

	c.Set(constants.ContextKeyIdentity, &auth.Identity{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
	})
	return true
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}

	switch v := userID.(type) {
	case uint64:
		return v, true
	case uint:
		return uint64(v), true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}

// GetIdentity retrieves the authenticated identity from context.
// It returns nil when nobody is signed in.
func GetIdentity(c *gin.Context) *auth.Identity {
	value, exists := c.Get(constants.ContextKeyIdentity)
	if !exists {
		return nil
	}
	identity, _ := value.(*auth.Identity)
	return identity
}

package server

import (
	"net/http"
	"time"

	"github.com/Adams99Abubakry/team-nexus/internal/config"
	"github.com/Adams99Abubakry/team-nexus/internal/constants"
	"github.com/Adams99Abubakry/team-nexus/internal/handlers"
	"github.com/Adams99Abubakry/team-nexus/internal/logging"
	"github.com/Adams99Abubakry/team-nexus/internal/mailer"
	"github.com/Adams99Abubakry/team-nexus/internal/middleware"
	"github.com/Adams99Abubakry/team-nexus/internal/models"
	"github.com/Adams99Abubakry/team-nexus/internal/repository"
	"github.com/Adams99Abubakry/team-nexus/internal/services"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Dependencies are the collaborators the router wires together.
type Dependencies struct {
	Config       *config.Config
	DB           *gorm.DB
	Mailer       mailer.Mailer
	Logger       zerolog.Logger
	SessionStore sessions.Store
}

// invitationCORS lets the invitation endpoints be called from any origin.
// The session cookie is the credential, so the origin is echoed back
// instead of "*" and credentials are allowed.
func invitationCORS() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOriginFunc:  func(origin string) bool { return true },
		AllowMethods:     []string{http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{"X-Client-Info", "Apikey", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}

// NewRouter builds the HTTP routes.
func NewRouter(deps Dependencies) *gin.Engine {
	r := gin.New()
	if gin.Mode() == gin.DebugMode {
		r.Use(gin.Logger())
	} else {
		r.Use(logging.Middleware(deps.Logger))
	}
	r.Use(gin.Recovery())
	r.Use(sessions.Sessions(constants.SessionCookieName, deps.SessionStore))

	userRepo := repository.NewUserRepository(deps.DB)
	workspaceRepo := repository.NewWorkspaceRepository(deps.DB)
	invitationRepo := repository.NewInvitationRepository(deps.DB)

	authService := services.NewAuthService(userRepo)
	workspaceService := services.NewWorkspaceService(workspaceRepo, deps.Logger)
	invitationService := services.NewInvitationService(invitationRepo, workspaceRepo, deps.Mailer, deps.Logger, services.InvitationOptions{
		AppOrigin: deps.Config.AppOrigin,
	})

	authHandler := handlers.NewAuthHandler(authService)
	workspaceHandler := handlers.NewWorkspaceHandler(workspaceService, deps.Logger)
	invitationHandler := handlers.NewInvitationHandler(invitationService, deps.Logger)

	requireAuth := middleware.RequireAuth(userRepo)
	optionalAuth := middleware.OptionalAuth(userRepo)
	workspaceAccess := middleware.RequireWorkspaceAccess(workspaceRepo)
	requireAdmin := middleware.RequireWorkspaceRole(models.RoleAdmin)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Team Nexus API is running",
		})
	})

	// Invitation landing page
	r.GET(constants.AcceptInvitePath, optionalAuth, invitationHandler.AcceptPage)

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", requireAuth, authHandler.GetCurrentUser)
		}

		workspaces := api.Group("/workspaces")
		workspaces.Use(requireAuth)
		{
			workspaces.POST("", workspaceHandler.CreateWorkspace)
			workspaces.GET("", workspaceHandler.ListWorkspaces)
			workspaces.GET("/:id", workspaceAccess, workspaceHandler.GetWorkspace)
			workspaces.PATCH("/:id", workspaceAccess, requireAdmin, workspaceHandler.UpdateWorkspace)
			workspaces.PATCH("/:id/members/:user_id", workspaceAccess, requireAdmin, workspaceHandler.UpdateMemberRole)
			workspaces.DELETE("/:id/members/:user_id", workspaceAccess, requireAdmin, workspaceHandler.RemoveMember)
			workspaces.GET("/:id/invitations", workspaceAccess, requireAdmin, invitationHandler.ListInvitations)
			workspaces.DELETE("/:id/invitations/:invitation_id", workspaceAccess, requireAdmin, invitationHandler.CancelInvitation)
		}

		invitations := api.Group("/invitations")
		invitations.Use(invitationCORS(), optionalAuth)
		{
			preflight := func(c *gin.Context) {
				c.Status(http.StatusNoContent)
			}
			invitations.OPTIONS("", preflight)
			invitations.OPTIONS("/accept", preflight)
			invitations.POST("", invitationHandler.CreateInvitation)
			invitations.POST("/accept", invitationHandler.AcceptInvitation)
		}
	}

	return r
}

package handlers

import (
	"bytes"
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Adams99Abubakry/team-nexus/internal/auth"
	"github.com/Adams99Abubakry/team-nexus/internal/constants"
	"github.com/Adams99Abubakry/team-nexus/internal/database"
	"github.com/Adams99Abubakry/team-nexus/internal/mailer"
	"github.com/Adams99Abubakry/team-nexus/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupHandlerDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), database.NewGormConfig(logger.Silent))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	require.NoError(t, database.Migrate(db))
	return db
}

func createHandlerUser(t *testing.T, db *gorm.DB, email string) *auth.Identity {
	t.Helper()
	user := &models.User{Email: email, DisplayName: email, PasswordHash: "hashed"}
	require.NoError(t, db.Create(user).Error)
	return &auth.Identity{UserID: user.ID, Email: user.Email, DisplayName: user.DisplayName}
}

func addHandlerMember(t *testing.T, db *gorm.DB, workspaceID string, identity *auth.Identity, role models.WorkspaceRole) *models.WorkspaceMember {
	t.Helper()
	var ws models.Workspace
	require.NoError(t, db.First(&ws, "id = ?", workspaceID).Error)
	member := &models.WorkspaceMember{WorkspaceID: ws.ID, UserID: identity.UserID, Role: role, JoinedAt: time.Now()}
	require.NoError(t, db.Omit("Workspace", "User").Create(member).Error)
	return member
}

// testContext builds a context the way RequireAuth and RequireWorkspaceAccess leave it.
func testContext(method, url string, body []byte, identity *auth.Identity, member *models.WorkspaceMember) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	if identity != nil {
		c.Set(constants.ContextKeyUserID, identity.UserID)
		c.Set(constants.ContextKeyIdentity, identity)
	}
	if member != nil {
		c.Set(constants.ContextKeyWorkspaceMember, member)
	}

	return c, w
}

type failingMailer struct{}

func (failingMailer) Send(ctx context.Context, msg mailer.Message) error {
	return context.DeadlineExceeded
}

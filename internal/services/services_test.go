package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Adams99Abubakry/team-nexus/internal/auth"
	"github.com/Adams99Abubakry/team-nexus/internal/database"
	"github.com/Adams99Abubakry/team-nexus/internal/mailer"
	"github.com/Adams99Abubakry/team-nexus/internal/models"
	"github.com/Adams99Abubakry/team-nexus/internal/repository"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// fakeMailer records sent messages and fails when err is set.
type fakeMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (m *fakeMailer) Send(ctx context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *fakeMailer) Sent() []mailer.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mailer.Message(nil), m.sent...)
}

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func setupServiceDB(t *testing.T) *gorm.DB {
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

func createServiceUser(t *testing.T, db *gorm.DB, email string) *auth.Identity {
	t.Helper()
	user := &models.User{Email: email, DisplayName: email, PasswordHash: "hashed"}
	require.NoError(t, db.Create(user).Error)
	return IdentityFor(user)
}

func addServiceMember(t *testing.T, db *gorm.DB, ws *models.Workspace, identity *auth.Identity, role models.WorkspaceRole) *models.WorkspaceMember {
	t.Helper()
	member := &models.WorkspaceMember{WorkspaceID: ws.ID, UserID: identity.UserID, Role: role, JoinedAt: time.Now()}
	require.NoError(t, db.Omit("Workspace", "User").Create(member).Error)
	return member
}

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

var errSMTPDown = errors.New("smtp: connection refused")

func newWorkspaceServiceForTest(db *gorm.DB) *WorkspaceService {
	return NewWorkspaceService(repository.NewWorkspaceRepository(db), testLogger())
}

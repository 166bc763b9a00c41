package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Adams99Abubakry/team-nexus/internal/database"
	"github.com/Adams99Abubakry/team-nexus/internal/models"
	"github.com/Adams99Abubakry/team-nexus/internal/utils"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupRepositoryDB(t *testing.T) *gorm.DB {
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

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), database.NewGormConfig(logger.Silent))
	require.NoError(t, err)
	return db, mock
}

func createRepoUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := &models.User{Email: email, DisplayName: email, PasswordHash: "hashed"}
	require.NoError(t, db.Create(user).Error)
	return user
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func TestWorkspaceRepository_CreateWithOwner(t *testing.T) {
	db := setupRepositoryDB(t)
	repo := NewWorkspaceRepository(db)
	ctx := context.Background()
	owner := createRepoUser(t, db, "alice@x.com")

	ws := &models.Workspace{Name: "Acme", Slug: "acme", CreatedBy: owner.ID}
	member := &models.WorkspaceMember{UserID: owner.ID, JoinedAt: time.Now()}
	require.NoError(t, repo.CreateWithOwner(ctx, ws, member))

	require.NotEqual(t, uuid.Nil, ws.ID)
	assert.Equal(t, ws.ID, member.WorkspaceID)

	found, err := repo.FindMember(ctx, ws.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleOwner, found.Role)

	assert.EqualValues(t, 1, countRows(t, db.Where("role = ?", models.RoleOwner), &models.WorkspaceMember{}))
}

func TestWorkspaceRepository_CreateWithOwner_SlugCollisionWritesNothing(t *testing.T) {
	db := setupRepositoryDB(t)
	repo := NewWorkspaceRepository(db)
	ctx := context.Background()
	alice := createRepoUser(t, db, "alice@x.com")
	bob := createRepoUser(t, db, "bob@x.com")

	require.NoError(t, repo.CreateWithOwner(ctx,
		&models.Workspace{Name: "Acme", Slug: "acme", CreatedBy: alice.ID},
		&models.WorkspaceMember{UserID: alice.ID, JoinedAt: time.Now()}))

	err := repo.CreateWithOwner(ctx,
		&models.Workspace{Name: "Other", Slug: "acme", CreatedBy: bob.ID},
		&models.WorkspaceMember{UserID: bob.ID, JoinedAt: time.Now()})
	require.ErrorIs(t, err, ErrDuplicateSlug)

	assert.EqualValues(t, 1, countRows(t, db, &models.Workspace{}))
	assert.EqualValues(t, 1, countRows(t, db, &models.WorkspaceMember{}))

	memberships, err := repo.ListMembershipsByUserID(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, memberships)
}

func TestWorkspaceRepository_CreateWithOwner_RollsBackOnMembershipFailure(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewWorkspaceRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "workspaces"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO "workspace_members"`).WillReturnError(errors.New("connection reset by peer"))
	mock.ExpectRollback()

	err := repo.CreateWithOwner(context.Background(),
		&models.Workspace{Name: "Acme", Slug: "acme", CreatedBy: 1},
		&models.WorkspaceMember{UserID: 1, JoinedAt: time.Now()})
	require.ErrorIs(t, err, ErrCreateOwnerMembership)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkspaceRepository_CreateWithOwner_PostgresUniqueViolation(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewWorkspaceRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "workspaces"`).WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "idx_workspaces_slug"})
	mock.ExpectRollback()

	err := repo.CreateWithOwner(context.Background(),
		&models.Workspace{Name: "Acme", Slug: "acme", CreatedBy: 1},
		&models.WorkspaceMember{UserID: 1, JoinedAt: time.Now()})
	require.ErrorIs(t, err, ErrDuplicateSlug)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkspaceRepository_MemberManagement(t *testing.T) {
	db := setupRepositoryDB(t)
	repo := NewWorkspaceRepository(db)
	ctx := context.Background()
	alice := createRepoUser(t, db, "alice@x.com")
	bob := createRepoUser(t, db, "bob@x.com")

	ws := &models.Workspace{Name: "Acme", Slug: "acme", CreatedBy: alice.ID}
	require.NoError(t, repo.CreateWithOwner(ctx, ws, &models.WorkspaceMember{UserID: alice.ID, JoinedAt: time.Now()}))
	require.NoError(t, db.Omit("Workspace", "User").Create(&models.WorkspaceMember{WorkspaceID: ws.ID, UserID: bob.ID, Role: models.RoleViewer, JoinedAt: time.Now()}).Error)

	members, err := repo.ListMembers(ctx, ws.ID)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "alice@x.com", members[0].User.Email)

	require.NoError(t, repo.UpdateMemberRole(ctx, ws.ID, bob.ID, models.RoleAdmin))
	updated, err := repo.FindMember(ctx, ws.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, updated.Role)

	err = repo.UpdateMemberRole(ctx, ws.ID, 9999, models.RoleAdmin)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	require.NoError(t, repo.RemoveMember(ctx, ws.ID, bob.ID))
	_, err = repo.FindMember(ctx, ws.ID, bob.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	description := "Rockets"
	ws.Name = "Acme Rockets"
	ws.Description = &description
	require.NoError(t, repo.Update(ctx, ws))

	reloaded, err := repo.FindByID(ctx, ws.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Rockets", reloaded.Name)
	require.NotNil(t, reloaded.Description)
	assert.Equal(t, "Rockets", *reloaded.Description)
}

func TestWorkspaceRepository_LastOwnerIsKept(t *testing.T) {
	db := setupRepositoryDB(t)
	repo := NewWorkspaceRepository(db)
	ctx := context.Background()
	alice := createRepoUser(t, db, "alice@x.com")
	bob := createRepoUser(t, db, "bob@x.com")

	ws := &models.Workspace{Name: "Acme", Slug: "acme", CreatedBy: alice.ID}
	require.NoError(t, repo.CreateWithOwner(ctx, ws, &models.WorkspaceMember{UserID: alice.ID, JoinedAt: time.Now()}))

	assert.ErrorIs(t, repo.UpdateMemberRole(ctx, ws.ID, alice.ID, models.RoleAdmin), ErrLastOwner)
	assert.ErrorIs(t, repo.RemoveMember(ctx, ws.ID, alice.ID), ErrLastOwner)
	require.NoError(t, repo.UpdateMemberRole(ctx, ws.ID, alice.ID, models.RoleOwner), "keeping the role is not a demotion")

	require.NoError(t, db.Omit("Workspace", "User").Create(&models.WorkspaceMember{WorkspaceID: ws.ID, UserID: bob.ID, Role: models.RoleOwner, JoinedAt: time.Now()}).Error)
	require.NoError(t, repo.UpdateMemberRole(ctx, ws.ID, alice.ID, models.RoleAdmin))
	assert.ErrorIs(t, repo.UpdateMemberRole(ctx, ws.ID, bob.ID, models.RoleMember), ErrLastOwner)

	found, err := repo.FindMember(ctx, ws.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleOwner, found.Role)

	assert.ErrorIs(t, repo.RemoveMember(ctx, ws.ID, 9999), gorm.ErrRecordNotFound)
}

func TestWorkspaceRepository_UpdateMemberRoleLocksOwners(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewWorkspaceRepository(db)
	wsID := uuid.New()
	columns := []string{"workspace_id", "user_id", "role", "joined_at"}

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "workspace_members" WHERE workspace_id = \$1 AND role = \$2 ORDER BY user_id FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(wsID.String(), 1, "owner", time.Now()).
			AddRow(wsID.String(), 2, "owner", time.Now()))
	mock.ExpectExec(`UPDATE "workspace_members" SET "role"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.UpdateMemberRole(context.Background(), wsID, 2, models.RoleAdmin))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkspaceRepository_UpdateMemberRoleLastOwnerRollsBack(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewWorkspaceRepository(db)
	wsID := uuid.New()

	// A concurrent demotion already committed, so only one owner row is left.
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "workspace_members" .* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"workspace_id", "user_id", "role", "joined_at"}).
			AddRow(wsID.String(), 1, "owner", time.Now()))
	mock.ExpectRollback()

	err := repo.UpdateMemberRole(context.Background(), wsID, 1, models.RoleMember)
	require.ErrorIs(t, err, ErrLastOwner)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkspaceRepository_RemoveMemberClearsAcceptedInvitation(t *testing.T) {
	db := setupRepositoryDB(t)
	repo := NewWorkspaceRepository(db)
	invitations := NewInvitationRepository(db)
	ctx := context.Background()
	alice := createRepoUser(t, db, "alice@x.com")
	bob := createRepoUser(t, db, "bob@x.com")
	now := time.Now()

	ws := &models.Workspace{Name: "Acme", Slug: "acme", CreatedBy: alice.ID}
	require.NoError(t, repo.CreateWithOwner(ctx, ws, &models.WorkspaceMember{UserID: alice.ID, JoinedAt: now}))

	accepted := newPendingInvitation(ws.ID, "bob@x.com", "token-bob", now)
	require.NoError(t, invitations.Create(ctx, accepted))
	require.NoError(t, invitations.Redeem(ctx, accepted,
		&models.WorkspaceMember{WorkspaceID: ws.ID, UserID: bob.ID, Role: models.RoleMember, JoinedAt: now}, now))
	require.NoError(t, invitations.Create(ctx, newPendingInvitation(ws.ID, "carol@x.com", "token-carol", now)))

	require.NoError(t, repo.RemoveMember(ctx, ws.ID, bob.ID))

	_, err := invitations.FindByWorkspaceAndEmail(ctx, ws.ID, "bob@x.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	_, err = invitations.FindPendingByToken(ctx, "token-carol")
	assert.NoError(t, err, "other invitations are untouched")

	require.NoError(t, invitations.Create(ctx, newPendingInvitation(ws.ID, "bob@x.com", "token-bob-2", now)))
}

func newPendingInvitation(wsID uuid.UUID, email, token string, now time.Time) *models.Invitation {
	return &models.Invitation{
		WorkspaceID: wsID,
		Email:       email,
		Role:        models.RoleMember,
		Token:       token,
		InvitedBy:   1,
		CreatedAt:   now,
		ExpiresAt:   now.Add(7 * 24 * time.Hour),
	}
}

func TestInvitationRepository_CreateDuplicatePair(t *testing.T) {
	db := setupRepositoryDB(t)
	repo := NewInvitationRepository(db)
	ctx := context.Background()
	wsID := uuid.New()
	now := time.Now()

	first := newPendingInvitation(wsID, "bob@x.com", "token-1", now)
	require.NoError(t, repo.Create(ctx, first))

	err := repo.Create(ctx, newPendingInvitation(wsID, "bob@x.com", "token-2", now))
	require.ErrorIs(t, err, ErrDuplicateInvitation)
	assert.EqualValues(t, 1, countRows(t, db, &models.Invitation{}))

	existing, err := repo.FindByWorkspaceAndEmail(ctx, wsID, "bob@x.com")
	require.NoError(t, err)
	assert.Equal(t, first.ID, existing.ID)
	assert.Equal(t, "token-1", existing.Token)

	// Same email in another workspace is a different invitation.
	require.NoError(t, repo.Create(ctx, newPendingInvitation(uuid.New(), "bob@x.com", "token-3", now)))
}

func TestInvitationRepository_CreatePostgresUniqueViolation(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewInvitationRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "invitations"`).WillReturnError(&pgconn.PgError{Code: "23505"})
	mock.ExpectRollback()

	err := repo.Create(context.Background(), newPendingInvitation(uuid.New(), "bob@x.com", "t", time.Now()))
	require.ErrorIs(t, err, ErrDuplicateInvitation)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInvitationRepository_CreateOtherFailure(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewInvitationRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "invitations"`).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), newPendingInvitation(uuid.New(), "bob@x.com", "t", time.Now()))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDuplicateInvitation)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInvitationRepository_RedeemIsSingleUse(t *testing.T) {
	db := setupRepositoryDB(t)
	repo := NewInvitationRepository(db)
	ctx := context.Background()
	wsID := uuid.New()
	bob := createRepoUser(t, db, "bob@x.com")
	now := time.Now()

	inv := newPendingInvitation(wsID, "bob@x.com", "token-1", now)
	require.NoError(t, repo.Create(ctx, inv))

	pending, err := repo.FindPendingByToken(ctx, "token-1")
	require.NoError(t, err)

	member := &models.WorkspaceMember{WorkspaceID: wsID, UserID: bob.ID, Role: pending.Role, JoinedAt: now}
	require.NoError(t, repo.Redeem(ctx, pending, member, now))
	require.NotNil(t, pending.AcceptedAt)

	_, err = repo.FindPendingByToken(ctx, "token-1")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	again := &models.WorkspaceMember{WorkspaceID: wsID, UserID: bob.ID, Role: pending.Role, JoinedAt: now}
	err = repo.Redeem(ctx, pending, again, now)
	assert.ErrorIs(t, err, ErrDuplicateMember)
	assert.EqualValues(t, 1, countRows(t, db, &models.WorkspaceMember{}))
}

func TestInvitationRepository_RedeemConsumedRollsBackMembership(t *testing.T) {
	db := setupRepositoryDB(t)
	repo := NewInvitationRepository(db)
	ctx := context.Background()
	wsID := uuid.New()
	bob := createRepoUser(t, db, "bob@x.com")
	carol := createRepoUser(t, db, "carol@x.com")
	now := time.Now()

	inv := newPendingInvitation(wsID, "bob@x.com", "token-1", now)
	require.NoError(t, repo.Create(ctx, inv))
	stale := *inv

	require.NoError(t, repo.Redeem(ctx, inv, &models.WorkspaceMember{WorkspaceID: wsID, UserID: bob.ID, Role: inv.Role, JoinedAt: now}, now))

	// A second redeemer holding a stale copy must not leave a membership behind.
	err := repo.Redeem(ctx, &stale, &models.WorkspaceMember{WorkspaceID: wsID, UserID: carol.ID, Role: inv.Role, JoinedAt: now}, now)
	require.ErrorIs(t, err, ErrInvitationConsumed)

	_, err = NewWorkspaceRepository(db).FindMember(ctx, wsID, carol.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestInvitationRepository_ListAndDeletePending(t *testing.T) {
	db := setupRepositoryDB(t)
	repo := NewInvitationRepository(db)
	ctx := context.Background()
	wsID := uuid.New()
	base := time.Now()

	for i, email := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		inv := newPendingInvitation(wsID, email, email, base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, repo.Create(ctx, inv))
	}
	accepted := newPendingInvitation(wsID, "d@x.com", "d", base)
	acceptedAt := base
	accepted.AcceptedAt = &acceptedAt
	require.NoError(t, repo.Create(ctx, accepted))

	page, total, err := repo.ListPending(ctx, wsID, utils.PaginationParams{Page: 1, Limit: 2, Offset: 0})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, page, 2)
	assert.Equal(t, "c@x.com", page[0].Email)

	require.NoError(t, repo.DeletePending(ctx, wsID, page[0].ID))
	assert.ErrorIs(t, repo.DeletePending(ctx, wsID, page[0].ID), gorm.ErrRecordNotFound)
	assert.ErrorIs(t, repo.DeletePending(ctx, wsID, accepted.ID), gorm.ErrRecordNotFound)
	assert.ErrorIs(t, repo.DeletePending(ctx, uuid.New(), page[1].ID), gorm.ErrRecordNotFound)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	db := setupRepositoryDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.User{Email: "alice@x.com", PasswordHash: "h"}))
	err := repo.Create(ctx, &models.User{Email: "alice@x.com", PasswordHash: "h"})
	require.ErrorIs(t, err, ErrDuplicateEmail)

	found, err := repo.FindByEmail(ctx, "alice@x.com")
	require.NoError(t, err)

	byID, err := repo.FindByID(ctx, found.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@x.com", byID.Email)
}

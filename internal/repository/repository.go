package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Adams99Abubakry/team-nexus/internal/models"
	"github.com/Adams99Abubakry/team-nexus/internal/utils"
	"github.com/google/uuid"
)

var (
	// ErrDuplicateSlug is returned when a workspace slug is already taken.
	ErrDuplicateSlug = errors.New("workspace repository: slug already exists")
	// ErrCreateWorkspace is returned when inserting the workspace row fails for another reason.
	ErrCreateWorkspace = errors.New("workspace repository: create workspace failed")
	// ErrCreateOwnerMembership is returned when inserting the owner membership fails.
	ErrCreateOwnerMembership = errors.New("workspace repository: create owner membership failed")
	// ErrLastOwner is returned when a change would leave the workspace without an owner.
	ErrLastOwner = errors.New("workspace repository: workspace must keep an owner")

	// ErrDuplicateInvitation is returned when an invitation for the (workspace, email) pair exists.
	ErrDuplicateInvitation = errors.New("invitation repository: invitation already exists")
	// ErrDuplicateMember is returned when the user already belongs to the workspace.
	ErrDuplicateMember = errors.New("invitation repository: membership already exists")
	// ErrInvitationConsumed is returned when the invitation was accepted concurrently.
	ErrInvitationConsumed = errors.New("invitation repository: invitation already accepted")

	// ErrDuplicateEmail is returned when signing up with an email that is already registered.
	ErrDuplicateEmail = errors.New("user repository: email already exists")
)

// WorkspaceRepository defines the interface for workspace and membership data access
type WorkspaceRepository interface {
	// CreateWithOwner inserts the workspace and its owner membership in one transaction.
	CreateWithOwner(ctx context.Context, ws *models.Workspace, owner *models.WorkspaceMember) error

	// FindByID finds a workspace by ID
	FindByID(ctx context.Context, id uuid.UUID) (*models.Workspace, error)

	// Update saves name and description changes
	Update(ctx context.Context, ws *models.Workspace) error

	// FindMember finds a specific workspace member
	FindMember(ctx context.Context, workspaceID uuid.UUID, userID uint64) (*models.WorkspaceMember, error)

	// ListMembers lists all members of a workspace with their user preloaded
	ListMembers(ctx context.Context, workspaceID uuid.UUID) ([]models.WorkspaceMember, error)

	// ListMembershipsByUserID lists the memberships of a user with the workspace preloaded
	ListMembershipsByUserID(ctx context.Context, userID uint64) ([]models.WorkspaceMember, error)

	// UpdateMemberRole changes the role of a member. Demoting the last owner yields ErrLastOwner.
	UpdateMemberRole(ctx context.Context, workspaceID uuid.UUID, userID uint64, role models.WorkspaceRole) error

	// RemoveMember deletes a membership and the accepted invitation behind it.
	// Removing the last owner yields ErrLastOwner.
	RemoveMember(ctx context.Context, workspaceID uuid.UUID, userID uint64) error
}

// InvitationRepository defines the interface for invitation data access
type InvitationRepository interface {
	// Create inserts a new invitation. A (workspace, email) collision yields ErrDuplicateInvitation.
	Create(ctx context.Context, inv *models.Invitation) error

	// FindByWorkspaceAndEmail finds the invitation for the pair regardless of its state
	FindByWorkspaceAndEmail(ctx context.Context, workspaceID uuid.UUID, email string) (*models.Invitation, error)

	// FindPendingByToken finds an invitation by token that has not been accepted
	FindPendingByToken(ctx context.Context, token string) (*models.Invitation, error)

	// ListPending lists unaccepted invitations of a workspace, newest first
	ListPending(ctx context.Context, workspaceID uuid.UUID, params utils.PaginationParams) ([]models.Invitation, int64, error)

	// DeletePending removes an unaccepted invitation
	DeletePending(ctx context.Context, workspaceID, invitationID uuid.UUID) error

	// Redeem inserts the membership and stamps the invitation accepted in one transaction.
	Redeem(ctx context.Context, inv *models.Invitation, member *models.WorkspaceMember, acceptedAt time.Time) error
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user. A taken email yields ErrDuplicateEmail.
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uint64) (*models.User, error)

	// FindByEmail finds a user by normalized email
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

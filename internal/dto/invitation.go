package dto

import (
	"time"

	"github.com/Adams99Abubakry/team-nexus/internal/models"
	"github.com/Adams99Abubakry/team-nexus/internal/services"
	"github.com/Adams99Abubakry/team-nexus/internal/utils"
	"github.com/google/uuid"
)

// InvitationDTO represents an invitation in API responses. The token is
// never exposed; it only travels inside the invite URL.
type InvitationDTO struct {
	ID          uuid.UUID            `json:"id"`
	WorkspaceID uuid.UUID            `json:"workspace_id"`
	Email       string               `json:"email"`
	Role        models.WorkspaceRole `json:"role"`
	InvitedBy   uint64               `json:"invited_by"`
	CreatedAt   time.Time            `json:"created_at"`
	ExpiresAt   time.Time            `json:"expires_at"`
	AcceptedAt  *time.Time           `json:"accepted_at"`
}

// CreateInvitationResponse is the success body of POST /api/invitations
type CreateInvitationResponse struct {
	Success    bool          `json:"success"`
	Invitation InvitationDTO `json:"invitation"`
	InviteURL  string        `json:"inviteUrl"`
	EmailSent  bool          `json:"emailSent"`
}

// InvitationListResponse represents a paginated list of pending invitations
type InvitationListResponse struct {
	Invitations []InvitationDTO `json:"invitations"`
	utils.PaginationResponse
}

// AcceptanceDTO reports the outcome of an acceptance attempt
type AcceptanceDTO struct {
	State       services.AcceptanceState `json:"state"`
	Message     string                   `json:"message"`
	WorkspaceID *uuid.UUID               `json:"workspace_id,omitempty"`
	Role        models.WorkspaceRole     `json:"role,omitempty"`
	RedirectTo  string                   `json:"redirect_to,omitempty"`
	// RedirectAfterMs is the delay before the client should follow RedirectTo.
	RedirectAfterMs int64 `json:"redirect_after_ms,omitempty"`
}

// ToInvitationDTO converts an Invitation model to InvitationDTO
func ToInvitationDTO(inv models.Invitation) InvitationDTO {
	return InvitationDTO{
		ID:          inv.ID,
		WorkspaceID: inv.WorkspaceID,
		Email:       inv.Email,
		Role:        inv.Role,
		InvitedBy:   inv.InvitedBy,
		CreatedAt:   inv.CreatedAt,
		ExpiresAt:   inv.ExpiresAt,
		AcceptedAt:  inv.AcceptedAt,
	}
}

// ToCreateInvitationResponse converts a service result to the wire response
func ToCreateInvitationResponse(result services.InvitationResult) CreateInvitationResponse {
	return CreateInvitationResponse{
		Success:    true,
		Invitation: ToInvitationDTO(*result.Invitation),
		InviteURL:  result.InviteURL,
		EmailSent:  result.EmailSent,
	}
}

// ToInvitationListResponse converts pending invitations to a paginated response
func ToInvitationListResponse(invitations []models.Invitation, params utils.PaginationParams, total int64) InvitationListResponse {
	items := make([]InvitationDTO, len(invitations))
	for i, inv := range invitations {
		items[i] = ToInvitationDTO(inv)
	}

	return InvitationListResponse{
		Invitations: items,
		PaginationResponse: utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	}
}

// ToAcceptanceDTO converts an acceptance result to DTO
func ToAcceptanceDTO(result services.AcceptanceResult) AcceptanceDTO {
	dto := AcceptanceDTO{
		State:      result.State,
		Message:    result.Message,
		Role:       result.Role,
		RedirectTo: result.RedirectTo,
	}
	if result.WorkspaceID != uuid.Nil {
		id := result.WorkspaceID
		dto.WorkspaceID = &id
	}
	if result.RedirectAfter > 0 {
		dto.RedirectAfterMs = result.RedirectAfter.Milliseconds()
	}
	return dto
}

package constants

import "time"

// Session and context keys
const (
	SessionCookieName = "team_nexus_session"

	ContextKeyUserID          = "user_id"
	ContextKeyIdentity        = "identity"
	ContextKeyWorkspaceMember = "workspace_member"
)

// Account rules
const (
	MinPasswordLength = 8
)

// Invitation lifecycle
const (
	InvitationTTL        = 7 * 24 * time.Hour
	InvitationTokenBytes = 32
	AcceptInvitePath     = "/accept-invite"
	LoginPath            = "/login"

	// AcceptRedirectPath is where an invitee lands after a successful acceptance.
	AcceptRedirectPath  = "/dashboard"
	AcceptRedirectDelay = 2 * time.Second
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Package auth defines the caller identity threaded through every core operation.
package auth

import "strings"

// Identity is the authenticated caller. A nil *Identity means nobody is signed in.
type Identity struct {
	UserID      uint64
	Email       string
	DisplayName string
}

// EmailMatches reports whether the identity's email equals addr, ignoring case
// and surrounding whitespace.
func (i *Identity) EmailMatches(addr string) bool {
	if i == nil {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(i.Email), strings.TrimSpace(addr))
}

// Name returns the display name, falling back to the email address.
func (i *Identity) Name() string {
	if i == nil {
		return ""
	}
	if name := strings.TrimSpace(i.DisplayName); name != "" {
		return name
	}
	return i.Email
}

package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/Adams99Abubakry/team-nexus/internal/constants"
)

// GenerateInvitationToken returns an unguessable 64 character hex token.
func GenerateInvitationToken() (string, error) {
	bytes := make([]byte, constants.InvitationTokenBytes)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	return hex.EncodeToString(bytes), nil
}

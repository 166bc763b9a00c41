package database

import (
	"fmt"

	"gorm.io/gorm"
)

// AddIndexes adds lookup indexes that are not declared by struct tags.
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Workspace list for a user
		{"workspace_members", "idx_workspace_members_user_id", "user_id"},

		// Pending invitations addressed to an email across workspaces
		{"invitations", "idx_invitations_email", "email"},
	}

	migrator := db.Migrator()
	for _, idx := range indexes {
		if migrator.HasIndex(idx.table, idx.name) {
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}

	return nil
}

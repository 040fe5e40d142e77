package model

// Tables lists every model AutoMigrate manages, in dependency order.
func Tables() []interface{} {
	return []interface{}{
		&User{},
		&JournalEntry{},
		&MirrorRequest{},
		&Mirror{},
		&Friendship{},
		&MirrorShare{},
		&NotificationType{},
		&Notification{},
	}
}

// PostMigrationSQL holds the partial indexes AutoMigrate cannot express.
var PostMigrationSQL = []string{
	// At most one in-flight request per user.
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_mirror_requests_one_in_flight
	 ON mirror_requests (user_id) WHERE status IN ('pending', 'processing');`,
	`CREATE INDEX IF NOT EXISTS idx_journal_entries_unassigned
	 ON journal_entries (user_id, created_at) WHERE mirror_id IS NULL AND deleted_at IS NULL;`,
}

package database

// Forward history queries
const (
	insertForwardRecordQuery = `
		INSERT INTO forward_history (
			source_channel, dest_channel, message_id,
			album_size, status, forwarded_at
		) VALUES (?, ?, ?, ?, ?, ?)
	`

	selectRecentForwardsQuery = `
		SELECT id, source_channel, dest_channel, message_id,
		       album_size, status, forwarded_at, created_at
		FROM forward_history
		ORDER BY forwarded_at DESC
		LIMIT ?
	`

	deleteOldForwardsQuery = `
		DELETE FROM forward_history
		WHERE forwarded_at < ?
	`
)

package models

import "time"

type ForwardStatus string

const (
	ForwardStatusSent   ForwardStatus = "sent"
	ForwardStatusFailed ForwardStatus = "failed"
)

// ForwardRecord is one row of the forward-history database: a single publish
// attempt of one source message (or album) into a destination channel.
type ForwardRecord struct {
	ID            int64         `db:"id"`
	SourceChannel string        `db:"source_channel"`
	DestChannel   string        `db:"dest_channel"`
	MessageID     int64         `db:"message_id"`
	AlbumSize     int           `db:"album_size"`
	Status        ForwardStatus `db:"status"`
	ForwardedAt   time.Time     `db:"forwarded_at"`
	CreatedAt     time.Time     `db:"created_at"`
}

package telegram

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a message lookup yields no message.
var ErrNotFound = errors.New("message not found")

// Client is the messaging-platform surface the forwarding pipeline depends
// on. Implementations are expected to return message batches newest-first,
// matching the platform's history ordering.
type Client interface {
	// RecentMessages fetches up to limit of the most recent messages in the
	// channel, newest first. When minID > 0 only messages with a larger id
	// are returned.
	RecentMessages(ctx context.Context, channel string, limit int, minID int64) ([]Message, error)

	// LatestMessage returns the newest message in the channel, or nil when
	// the channel has no messages.
	LatestMessage(ctx context.Context, channel string) (*Message, error)

	// GetMessage fetches a single message by id. Returns ErrNotFound when the
	// message does not exist or is inaccessible.
	GetMessage(ctx context.Context, channel string, id int64) (*Message, error)

	// SendText publishes a text-only post to the channel.
	SendText(ctx context.Context, channel string, text string) error

	// SendMedia publishes a media post (single item or album) with the given
	// caption to the channel.
	SendMedia(ctx context.Context, channel string, media []MediaRef, caption string) error
}

package telegram

import "time"

// Message is the platform-neutral view of one channel post as the selection
// pipeline consumes it.
type Message struct {
	ID        int64
	Text      string
	Media     []MediaRef
	GroupID   int64 // album grouping id, 0 when the post is not part of an album
	ReplyToID int64 // id of the replied-to message, 0 when not a reply
	CreatedAt time.Time
}

func (m *Message) HasText() bool {
	return m.Text != ""
}

func (m *Message) HasMedia() bool {
	return len(m.Media) > 0
}

type MediaKind string

const (
	MediaKindPhoto    MediaKind = "photo"
	MediaKindDocument MediaKind = "document"
)

// MediaRef references an already-uploaded media object on the platform. It
// carries exactly what is needed to re-send the object without downloading it.
type MediaRef struct {
	Kind          MediaKind
	ID            int64
	AccessHash    int64
	FileReference []byte
}

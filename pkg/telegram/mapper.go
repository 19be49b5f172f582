package telegram

import (
	"fmt"
	"time"

	"github.com/gotd/td/tg"
)

// rawMessages unwraps the message list out of the messages.Messages response
// family. Channels answer with MessagesChannelMessages; the other shapes show
// up for smaller peers and slices.
func rawMessages(res tg.MessagesMessagesClass) ([]tg.MessageClass, error) {
	switch v := res.(type) {
	case *tg.MessagesChannelMessages:
		return v.Messages, nil
	case *tg.MessagesMessagesSlice:
		return v.Messages, nil
	case *tg.MessagesMessages:
		return v.Messages, nil
	default:
		return nil, fmt.Errorf("unsupported response type %T", res)
	}
}

// messageFrom maps one raw message into the pipeline's Message view. Service
// messages and deleted-message placeholders are dropped.
func messageFrom(mc tg.MessageClass) (Message, bool) {
	m, ok := mc.(*tg.Message)
	if !ok {
		return Message{}, false
	}

	out := Message{
		ID:        int64(m.ID),
		Text:      m.Message,
		CreatedAt: time.Unix(int64(m.Date), 0).UTC(),
	}

	if groupID, ok := m.GetGroupedID(); ok {
		out.GroupID = groupID
	}

	if replyTo, ok := m.GetReplyTo(); ok {
		if header, ok := replyTo.(*tg.MessageReplyHeader); ok {
			if replyID, ok := header.GetReplyToMsgID(); ok {
				out.ReplyToID = int64(replyID)
			}
		}
	}

	if media, ok := m.GetMedia(); ok {
		if ref, ok := mediaRefFrom(media); ok {
			out.Media = append(out.Media, ref)
		}
	}

	return out, true
}

// mediaRefFrom extracts a re-sendable reference from message media. Photos
// and documents (video, audio, files, stickers) cover what channels post;
// anything else (polls, geo, webpages) is not forwardable media.
func mediaRefFrom(media tg.MessageMediaClass) (MediaRef, bool) {
	switch v := media.(type) {
	case *tg.MessageMediaPhoto:
		photo, ok := v.GetPhoto()
		if !ok {
			return MediaRef{}, false
		}
		p, ok := photo.(*tg.Photo)
		if !ok {
			return MediaRef{}, false
		}
		return MediaRef{
			Kind:          MediaKindPhoto,
			ID:            p.ID,
			AccessHash:    p.AccessHash,
			FileReference: p.FileReference,
		}, true
	case *tg.MessageMediaDocument:
		document, ok := v.GetDocument()
		if !ok {
			return MediaRef{}, false
		}
		d, ok := document.(*tg.Document)
		if !ok {
			return MediaRef{}, false
		}
		return MediaRef{
			Kind:          MediaKindDocument,
			ID:            d.ID,
			AccessHash:    d.AccessHash,
			FileReference: d.FileReference,
		}, true
	default:
		return MediaRef{}, false
	}
}

func inputMedia(ref MediaRef) tg.InputMediaClass {
	switch ref.Kind {
	case MediaKindPhoto:
		return &tg.InputMediaPhoto{
			ID: &tg.InputPhoto{
				ID:            ref.ID,
				AccessHash:    ref.AccessHash,
				FileReference: ref.FileReference,
			},
		}
	default:
		return &tg.InputMediaDocument{
			ID: &tg.InputDocument{
				ID:            ref.ID,
				AccessHash:    ref.AccessHash,
				FileReference: ref.FileReference,
			},
		}
	}
}

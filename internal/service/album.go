package service

import (
	"sort"

	"reposter/pkg/telegram"
)

// Album is the assembled payload of one forwarding decision: the media to
// publish (possibly empty), the raw caption, and the reply-parent id of the
// caption-bearing member for quote resolution.
type Album struct {
	Media            []telegram.MediaRef
	Caption          string
	CaptionReplyToID int64
}

// AggregateAlbum reassembles the candidate's media group from the
// already-fetched batch. Members sharing the candidate's group id are sorted
// ascending by id and their media concatenated in that order; the caption
// comes from whichever member carries text (at most one is expected to).
// A candidate without a group id passes through unchanged.
func AggregateAlbum(batch []telegram.Message, candidate telegram.Message) Album {
	if candidate.GroupID == 0 {
		return Album{
			Media:            candidate.Media,
			Caption:          candidate.Text,
			CaptionReplyToID: candidate.ReplyToID,
		}
	}

	members := make([]telegram.Message, 0, len(batch))
	for _, msg := range batch {
		if msg.GroupID == candidate.GroupID {
			members = append(members, msg)
		}
	}
	sort.Slice(members, func(i, j int) bool {
		return members[i].ID < members[j].ID
	})

	album := Album{CaptionReplyToID: candidate.ReplyToID}
	for _, member := range members {
		album.Media = append(album.Media, member.Media...)
		if album.Caption == "" && member.Text != "" {
			album.Caption = member.Text
			album.CaptionReplyToID = member.ReplyToID
		}
	}

	return album
}

package service

import (
	"sort"

	"reposter/pkg/telegram"
)

// SelectCandidate picks the single message to forward this run, or nil.
//
// Messages at or below the cursor are already consumed; the cursor is a
// strictly-increasing watermark, never a sliding window. The remainder is
// scanned newest to oldest so the forwarder catches up to current content
// instead of replaying history, and the first message whose text validates
// wins. A message with no text but at least one media item is eligible
// without validation. If nothing in the batch qualifies there is no candidate
// for this run; the batch is not expanded.
func SelectCandidate(batch []telegram.Message, cursor int64, sanitizer *Sanitizer) *telegram.Message {
	ordered := make([]telegram.Message, len(batch))
	copy(ordered, batch)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].ID > ordered[j].ID
	})

	for i := range ordered {
		msg := &ordered[i]
		if msg.ID <= cursor {
			continue
		}
		if !msg.HasText() {
			if msg.HasMedia() {
				return msg
			}
			continue
		}
		if sanitizer.Validate(msg.Text) {
			return msg
		}
	}

	return nil
}

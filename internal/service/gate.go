package service

import (
	"time"

	"reposter/pkg/telegram"
)

// ForwardingNeeded decides whether the destination channel needs a new post.
// An empty destination always needs one; otherwise the destination must have
// been quiet for at least the threshold. This is the only throttle in the
// system and is evaluated once per run.
func ForwardingNeeded(last *telegram.Message, now time.Time, threshold time.Duration) bool {
	if last == nil {
		return true
	}
	return now.Sub(last.CreatedAt) >= threshold
}

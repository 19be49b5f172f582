package telegram

import (
	"time"

	"github.com/gotd/td/tgerr"
)

// FloodWait reports whether err is the platform's rate-limit signal, and if
// so, the wait duration it mandates before the call may be repeated.
func FloodWait(err error) (time.Duration, bool) {
	return tgerr.AsFloodWait(err)
}

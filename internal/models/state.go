package models

// RunState is the sole persisted entity of the forwarder. It carries the
// round-robin position across invocations plus, per source channel, the
// highest message id that has already been handed to a publish call.
//
// LastProcessedIndex is -1 before the first run and is otherwise taken modulo
// the current pair-list length, so the channel list may grow or shrink between
// runs without invalidating the state file. LastSentIDs values only ever move
// forward; a message whose publish attempt failed still counts as consumed.
type RunState struct {
	LastProcessedIndex int              `json:"last_processed_index"`
	LastSentIDs        map[string]int64 `json:"last_sent_ids"`
}

// NewRunState returns the default state used when no state file exists yet.
func NewRunState() *RunState {
	return &RunState{
		LastProcessedIndex: -1,
		LastSentIDs:        make(map[string]int64),
	}
}

// CursorFor returns the forwarding watermark for a source channel, 0 when the
// source has never been forwarded from.
func (s *RunState) CursorFor(source string) int64 {
	if s.LastSentIDs == nil {
		return 0
	}
	return s.LastSentIDs[source]
}

// AdvanceCursor raises the watermark for a source channel. Lower or equal ids
// are ignored so the cursor stays monotonically non-decreasing.
func (s *RunState) AdvanceCursor(source string, id int64) {
	if s.LastSentIDs == nil {
		s.LastSentIDs = make(map[string]int64)
	}
	if id > s.LastSentIDs[source] {
		s.LastSentIDs[source] = id
	}
}

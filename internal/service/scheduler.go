package service

import (
	"fmt"

	"reposter/internal/models"
)

// PairList holds the ordered source→destination channel pairs for a run.
// The order is the rotation order; it comes straight from configuration.
type PairList struct {
	pairs []models.ChannelPair
}

// NewPairList validates and wraps the configured channel pairs.
func NewPairList(pairs []models.ChannelPair) (*PairList, error) {
	if len(pairs) == 0 {
		return nil, fmt.Errorf("no channel pairs configured")
	}

	sources := make(map[string]bool, len(pairs))
	destinations := make(map[string]bool, len(pairs))
	for i, pair := range pairs {
		if pair.Source == "" {
			return nil, fmt.Errorf("empty source channel in pair %d", i)
		}
		if pair.Destination == "" {
			return nil, fmt.Errorf("empty destination channel for source %s", pair.Source)
		}
		if sources[pair.Source] {
			return nil, fmt.Errorf("duplicate source channel: %s", pair.Source)
		}
		if destinations[pair.Destination] {
			return nil, fmt.Errorf("duplicate destination channel: %s", pair.Destination)
		}
		sources[pair.Source] = true
		destinations[pair.Destination] = true
	}

	return &PairList{pairs: pairs}, nil
}

func (p *PairList) Len() int {
	return len(p.pairs)
}

func (p *PairList) At(index int) models.ChannelPair {
	return p.pairs[index]
}

// NextIndex computes the round-robin position following lastProcessed. The
// previous index is taken modulo the current list length, so the pair list
// may have grown or shrunk since the state was written.
func NextIndex(lastProcessed, n int) int {
	if n <= 0 {
		return 0
	}
	next := (lastProcessed + 1) % n
	if next < 0 {
		next += n
	}
	return next
}

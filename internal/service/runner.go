package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"reposter/internal/metrics"
	"reposter/internal/models"
	"reposter/internal/state"
	"reposter/internal/tracing"
	"reposter/pkg/telegram"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// HistoryStore records publish attempts for auditing.
type HistoryStore interface {
	RecordForward(ctx context.Context, record *models.ForwardRecord) error
	CleanupOldRecords(ctx context.Context, retentionDays int) error
}

// Runner executes one complete forwarding run: pick the next channel pair,
// gate on destination inactivity, select a candidate, assemble the payload,
// publish, and persist the advanced state.
type Runner struct {
	cfg        *models.Config
	pairs      *PairList
	store      *state.Store
	history    HistoryStore
	logger     *logrus.Logger
	now        func() time.Time
	floodWaits int

	runState *models.RunState
	pair     models.ChannelPair
}

func NewRunner(cfg *models.Config, pairs *PairList, store *state.Store, history HistoryStore, logger *logrus.Logger) *Runner {
	return &Runner{
		cfg:     cfg,
		pairs:   pairs,
		store:   store,
		history: history,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Begin loads the persisted state and advances the rotation to the pair this
// run serves. It runs before any session is opened so the advance survives
// connection failures: a pair whose fetch can never succeed must not be
// retried forever at the expense of the rest of the rotation.
func (r *Runner) Begin() error {
	runState, err := r.store.Load()
	if err != nil {
		return fmt.Errorf("failed to load state: %w", err)
	}

	index := NextIndex(runState.LastProcessedIndex, r.pairs.Len())
	runState.LastProcessedIndex = index
	r.runState = runState
	r.pair = r.pairs.At(index)

	r.logger.WithFields(logrus.Fields{
		"index":       index,
		"source":      r.pair.Source,
		"destination": r.pair.Destination,
	}).Info("Processing channel pair")

	return nil
}

// Finish persists the state advanced by Begin and any cursors moved by Run.
// Called on every exit path, including runs whose session never opened.
func (r *Runner) Finish() {
	if r.runState == nil {
		return
	}
	if err := r.store.Save(r.runState); err != nil {
		r.logger.WithError(err).Error("Failed to persist state")
	}
}

// Run drives the in-session part of the state machine CHECK_ACTIVITY →
// {DONE | FIND_CANDIDATE → {DONE | BUILD_PAYLOAD → PUBLISH}}.
//
// The per-source cursor is advanced only when a candidate was found, and then
// regardless of whether publishing succeeded: a post that reached the publish
// call counts as consumed, favoring forward progress over perfect delivery.
func (r *Runner) Run(ctx context.Context, client telegram.Client) error {
	if r.runState == nil {
		return fmt.Errorf("run not prepared, Begin must be called first")
	}

	ctx, span := tracing.StartSpan(ctx, "forwarder.run")
	defer span.End()

	metrics.IncrementCounter(metrics.CounterRunsStarted)
	started := r.now()
	defer func() { metrics.RecordDuration("run", r.now().Sub(started)) }()

	tracing.AddSpanAttributes(ctx,
		attribute.Int("pair.index", r.runState.LastProcessedIndex),
		attribute.String("pair.source", r.pair.Source),
		attribute.String("pair.destination", r.pair.Destination),
	)

	if err := r.processPair(ctx, client, r.runState, r.pair); err != nil {
		tracing.RecordError(ctx, err)
		return err
	}

	if r.history != nil {
		if err := r.history.CleanupOldRecords(ctx, r.cfg.RetentionDays); err != nil {
			r.logger.WithError(err).Warn("Failed to clean up old forward records")
		}
	}

	return nil
}

func (r *Runner) processPair(ctx context.Context, client telegram.Client, runState *models.RunState, pair models.ChannelPair) error {
	threshold := time.Duration(r.cfg.InactivityThresholdHours) * time.Hour

	var last *telegram.Message
	err := r.callWithFloodWait(ctx, func() error {
		var fetchErr error
		last, fetchErr = client.LatestMessage(ctx, pair.Destination)
		return fetchErr
	})
	if err != nil {
		return fmt.Errorf("failed to check destination activity: %w", err)
	}

	if !ForwardingNeeded(last, r.now(), threshold) {
		r.logger.WithFields(logrus.Fields{
			"destination":    pair.Destination,
			"thresholdHours": r.cfg.InactivityThresholdHours,
		}).Info("Destination is active, nothing to forward")
		metrics.IncrementCounter(metrics.CounterSkippedActive)
		return nil
	}

	cursor := runState.CursorFor(pair.Source)
	var batch []telegram.Message
	err = r.callWithFloodWait(ctx, func() error {
		var fetchErr error
		batch, fetchErr = client.RecentMessages(ctx, pair.Source, r.cfg.FetchBatchSize, cursor)
		return fetchErr
	})
	if err != nil {
		return fmt.Errorf("failed to fetch source messages: %w", err)
	}

	sanitizer := NewSanitizer(pair.Source)
	candidate := SelectCandidate(batch, cursor, sanitizer)
	if candidate == nil {
		r.logger.WithFields(logrus.Fields{
			"source": pair.Source,
			"cursor": cursor,
			"batch":  len(batch),
		}).Info("No eligible candidate in fetched batch")
		metrics.IncrementCounter(metrics.CounterNoCandidate)
		return nil
	}

	// The candidate is consumed from here on, even if publishing fails.
	runState.AdvanceCursor(pair.Source, candidate.ID)
	tracing.AddSpanAttributes(ctx, attribute.Int64("candidate.id", candidate.ID))

	album := AggregateAlbum(batch, *candidate)

	// The caption may come from a sibling member the selector never looked
	// at. Text that fails validation is never published; the album goes out
	// caption-less, and the reply reference dies with the caption.
	if !sanitizer.Validate(album.Caption) {
		r.logger.WithFields(logrus.Fields{
			"source":    pair.Source,
			"messageId": candidate.ID,
		}).Info("Album caption failed validation, forwarding media without it")
		album.Caption = ""
		album.CaptionReplyToID = 0
	}

	quote := ResolveQuote(ctx, client, pair.Source, album.CaptionReplyToID, r.logger)
	caption := sanitizer.Clean(album.Caption)
	finalText := strings.TrimSpace(quote + caption + "\n\n@" + pair.Destination)

	publishErr := r.publish(ctx, client, pair, album, finalText)
	r.recordForward(ctx, pair, candidate.ID, len(album.Media), publishErr)
	if publishErr != nil {
		metrics.IncrementCounter(metrics.CounterPublishFailures)
		return fmt.Errorf("publish failed: %w", publishErr)
	}
	metrics.IncrementCounter(metrics.CounterPostsForwarded)

	r.logger.WithFields(logrus.Fields{
		"source":      pair.Source,
		"destination": pair.Destination,
		"messageId":   candidate.ID,
		"mediaCount":  len(album.Media),
	}).Info("Post forwarded")
	return nil
}

func (r *Runner) publish(ctx context.Context, client telegram.Client, pair models.ChannelPair, album Album, finalText string) error {
	if len(album.Media) > 0 {
		return r.callWithFloodWait(ctx, func() error {
			return client.SendMedia(ctx, pair.Destination, album.Media, finalText)
		})
	}
	return r.callWithFloodWait(ctx, func() error {
		return client.SendText(ctx, pair.Destination, finalText)
	})
}

func (r *Runner) recordForward(ctx context.Context, pair models.ChannelPair, messageID int64, albumSize int, publishErr error) {
	if r.history == nil {
		return
	}

	status := models.ForwardStatusSent
	if publishErr != nil {
		status = models.ForwardStatusFailed
	}
	record := &models.ForwardRecord{
		SourceChannel: pair.Source,
		DestChannel:   pair.Destination,
		MessageID:     messageID,
		AlbumSize:     albumSize,
		Status:        status,
		ForwardedAt:   r.now(),
	}
	if err := r.history.RecordForward(ctx, record); err != nil {
		r.logger.WithError(err).Warn("Failed to record forward history")
	}
}

// callWithFloodWait runs op, honoring the platform's rate-limit contract: on
// the first "slow down" signal the run sleeps for the mandated duration and
// retries the call once; any further signal within the same run aborts it so
// a hostile wait sequence cannot block the process indefinitely.
func (r *Runner) callWithFloodWait(ctx context.Context, op func() error) error {
	for {
		err := op()
		if err == nil {
			return nil
		}

		wait, ok := telegram.FloodWait(err)
		if !ok {
			return err
		}

		r.floodWaits++
		metrics.IncrementCounter(metrics.CounterFloodWaits)
		if r.floodWaits > r.cfg.Retry.MaxFloodWaits {
			return fmt.Errorf("rate limited %d times in one run, aborting: %w", r.floodWaits, err)
		}

		r.logger.WithFields(logrus.Fields{
			"wait":    wait.String(),
			"signals": r.floodWaits,
		}).Warn("Rate limited, waiting before retry")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

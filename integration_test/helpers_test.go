package integration_test

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"reposter/internal/database"
	"reposter/internal/models"
	"reposter/internal/service"
	"reposter/internal/state"
	"reposter/pkg/telegram"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

// sentPost captures one publish call made against the fake client.
type sentPost struct {
	Destination string
	Text        string
	MediaCount  int
}

// fakeClient is a scripted stand-in for the live MTProto client. Channel
// histories are fixed fixtures; publishes are recorded instead of sent.
type fakeClient struct {
	latest   map[string]*telegram.Message
	history  map[string][]telegram.Message
	parents  map[int64]*telegram.Message
	sendErr  error
	sent     []sentPost
	fetched  []string
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		latest:  make(map[string]*telegram.Message),
		history: make(map[string][]telegram.Message),
		parents: make(map[int64]*telegram.Message),
	}
}

func (f *fakeClient) RecentMessages(ctx context.Context, channel string, limit int, minID int64) ([]telegram.Message, error) {
	f.fetched = append(f.fetched, channel)
	var out []telegram.Message
	for _, msg := range f.history[channel] {
		if msg.ID > minID {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (f *fakeClient) LatestMessage(ctx context.Context, channel string) (*telegram.Message, error) {
	return f.latest[channel], nil
}

func (f *fakeClient) GetMessage(ctx context.Context, channel string, id int64) (*telegram.Message, error) {
	if msg, ok := f.parents[id]; ok {
		return msg, nil
	}
	return nil, telegram.ErrNotFound
}

func (f *fakeClient) SendText(ctx context.Context, channel string, text string) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, sentPost{Destination: channel, Text: text})
	return nil
}

func (f *fakeClient) SendMedia(ctx context.Context, channel string, media []telegram.MediaRef, caption string) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, sentPost{Destination: channel, Text: caption, MediaCount: len(media)})
	return nil
}

// environment bundles the real persistence layers with the fake client so a
// scenario can execute complete runs back to back.
type environment struct {
	cfg    *models.Config
	store  *state.Store
	db     *database.Database
	client *fakeClient
	logger *logrus.Logger
}

func newEnvironment(t *testing.T, channels []models.ChannelPair) *environment {
	t.Helper()

	dir := t.TempDir()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	cfg := &models.Config{
		Channels:                 channels,
		InactivityThresholdHours: 4,
		FetchBatchSize:           30,
		StatePath:                filepath.Join(dir, "state.json"),
		Database:                 models.DatabaseConfig{Path: filepath.Join(dir, "history.db")},
		Retry:                    models.RetryConfig{MaxFloodWaits: 1},
		RetentionDays:            30,
	}

	store, err := state.NewStore(cfg.StatePath, logger)
	require.NoError(t, err)

	db, err := database.New(cfg.Database.Path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return &environment{
		cfg:    cfg,
		store:  store,
		db:     db,
		client: newFakeClient(),
		logger: logger,
	}
}

// runOnce executes one process lifetime: a fresh runner over the shared
// state file, database and client, persisting state on the way out.
func (e *environment) runOnce(t *testing.T) error {
	t.Helper()

	pairs, err := service.NewPairList(e.cfg.Channels)
	require.NoError(t, err)

	runner := service.NewRunner(e.cfg, pairs, e.store, e.db, e.logger)
	require.NoError(t, runner.Begin())
	err = runner.Run(context.Background(), e.client)
	runner.Finish()
	return err
}

// runWithoutSession simulates a process whose connection attempt failed: the
// rotation is prepared and persisted but the in-session work never happens.
func (e *environment) runWithoutSession(t *testing.T) {
	t.Helper()

	pairs, err := service.NewPairList(e.cfg.Channels)
	require.NoError(t, err)

	runner := service.NewRunner(e.cfg, pairs, e.store, e.db, e.logger)
	require.NoError(t, runner.Begin())
	runner.Finish()
}

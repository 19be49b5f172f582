package telegram

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"

	tgclient "github.com/gotd/td/telegram"
	"github.com/gotd/td/session"
	"github.com/gotd/td/tg"
	"github.com/sirupsen/logrus"
)

// MTProtoConfig holds the credentials for a user-session MTProto connection.
// A user session (not a bot token) is required because reading channel
// history is not available to bots.
type MTProtoConfig struct {
	APIID   int
	APIHash string
	// Session is a Telethon-format string session, the portable session
	// encoding commonly produced for CI-driven Telegram tooling.
	Session string
}

// MTProtoClient wraps a gotd Telegram client. The underlying connection only
// exists inside Run; the Client handed to the callback is invalid outside it.
type MTProtoClient struct {
	client *tgclient.Client
	logger *logrus.Logger
}

func NewMTProtoClient(cfg MTProtoConfig, logger *logrus.Logger) (*MTProtoClient, error) {
	if cfg.APIID == 0 || cfg.APIHash == "" {
		return nil, fmt.Errorf("telegram api id and hash are required")
	}
	if cfg.Session == "" {
		return nil, fmt.Errorf("telegram session is required")
	}

	data, err := session.TelethonSession(cfg.Session)
	if err != nil {
		return nil, fmt.Errorf("failed to decode session string: %w", err)
	}

	storage := new(session.StorageMemory)
	loader := session.Loader{Storage: storage}
	if err := loader.Save(context.Background(), data); err != nil {
		return nil, fmt.Errorf("failed to prime session storage: %w", err)
	}

	client := tgclient.NewClient(cfg.APIID, cfg.APIHash, tgclient.Options{
		SessionStorage: storage,
	})

	return &MTProtoClient{client: client, logger: logger}, nil
}

// Run connects, executes fn with a live Client and disconnects. The whole
// forwarding run happens inside fn.
func (c *MTProtoClient) Run(ctx context.Context, fn func(ctx context.Context, client Client) error) error {
	return c.client.Run(ctx, func(ctx context.Context) error {
		status, err := c.client.Auth().Status(ctx)
		if err != nil {
			return fmt.Errorf("failed to check auth status: %w", err)
		}
		if !status.Authorized {
			return fmt.Errorf("session is not authorized")
		}

		c.logger.Debug("Telegram client connected")
		sess := &apiSession{
			api:    c.client.API(),
			logger: c.logger,
			peers:  make(map[string]*tg.InputPeerChannel),
		}
		return fn(ctx, sess)
	})
}

// apiSession implements Client on top of a live MTProto connection.
type apiSession struct {
	api    *tg.Client
	logger *logrus.Logger
	peers  map[string]*tg.InputPeerChannel
}

func (s *apiSession) resolveChannel(ctx context.Context, channel string) (*tg.InputPeerChannel, error) {
	if peer, ok := s.peers[channel]; ok {
		return peer, nil
	}

	resolved, err := s.api.ContactsResolveUsername(ctx, &tg.ContactsResolveUsernameRequest{
		Username: channel,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve channel %s: %w", channel, err)
	}

	for _, chat := range resolved.Chats {
		if ch, ok := chat.(*tg.Channel); ok {
			peer := &tg.InputPeerChannel{ChannelID: ch.ID, AccessHash: ch.AccessHash}
			s.peers[channel] = peer
			return peer, nil
		}
	}

	return nil, fmt.Errorf("username %s does not resolve to a channel", channel)
}

func (s *apiSession) RecentMessages(ctx context.Context, channel string, limit int, minID int64) ([]Message, error) {
	peer, err := s.resolveChannel(ctx, channel)
	if err != nil {
		return nil, err
	}

	history, err := s.api.MessagesGetHistory(ctx, &tg.MessagesGetHistoryRequest{
		Peer:  peer,
		Limit: limit,
		MinID: int(minID),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch history for %s: %w", channel, err)
	}

	raw, err := rawMessages(history)
	if err != nil {
		return nil, fmt.Errorf("unexpected history response for %s: %w", channel, err)
	}

	messages := make([]Message, 0, len(raw))
	for _, mc := range raw {
		if msg, ok := messageFrom(mc); ok {
			messages = append(messages, msg)
		}
	}
	return messages, nil
}

func (s *apiSession) LatestMessage(ctx context.Context, channel string) (*Message, error) {
	messages, err := s.RecentMessages(ctx, channel, 1, 0)
	if err != nil {
		return nil, err
	}
	if len(messages) == 0 {
		return nil, nil
	}
	return &messages[0], nil
}

func (s *apiSession) GetMessage(ctx context.Context, channel string, id int64) (*Message, error) {
	peer, err := s.resolveChannel(ctx, channel)
	if err != nil {
		return nil, err
	}

	res, err := s.api.ChannelsGetMessages(ctx, &tg.ChannelsGetMessagesRequest{
		Channel: &tg.InputChannel{ChannelID: peer.ChannelID, AccessHash: peer.AccessHash},
		ID:      []tg.InputMessageClass{&tg.InputMessageID{ID: int(id)}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch message %d from %s: %w", id, channel, err)
	}

	raw, err := rawMessages(res)
	if err != nil {
		return nil, fmt.Errorf("unexpected response fetching message %d from %s: %w", id, channel, err)
	}

	for _, mc := range raw {
		if msg, ok := messageFrom(mc); ok && msg.ID == id {
			return &msg, nil
		}
	}
	return nil, ErrNotFound
}

func (s *apiSession) SendText(ctx context.Context, channel string, text string) error {
	peer, err := s.resolveChannel(ctx, channel)
	if err != nil {
		return err
	}

	randomID, err := randInt64()
	if err != nil {
		return err
	}

	_, err = s.api.MessagesSendMessage(ctx, &tg.MessagesSendMessageRequest{
		Peer:      peer,
		Message:   text,
		RandomID:  randomID,
		NoWebpage: true,
	})
	if err != nil {
		return fmt.Errorf("failed to send text to %s: %w", channel, err)
	}
	return nil
}

func (s *apiSession) SendMedia(ctx context.Context, channel string, media []MediaRef, caption string) error {
	if len(media) == 0 {
		return fmt.Errorf("no media to send")
	}

	peer, err := s.resolveChannel(ctx, channel)
	if err != nil {
		return err
	}

	if len(media) == 1 {
		randomID, err := randInt64()
		if err != nil {
			return err
		}
		_, err = s.api.MessagesSendMedia(ctx, &tg.MessagesSendMediaRequest{
			Peer:     peer,
			Media:    inputMedia(media[0]),
			Message:  caption,
			RandomID: randomID,
		})
		if err != nil {
			return fmt.Errorf("failed to send media to %s: %w", channel, err)
		}
		return nil
	}

	multi := make([]tg.InputSingleMedia, 0, len(media))
	for i, ref := range media {
		randomID, err := randInt64()
		if err != nil {
			return err
		}
		single := tg.InputSingleMedia{
			Media:    inputMedia(ref),
			RandomID: randomID,
		}
		// The album caption lives on the first item.
		if i == 0 {
			single.Message = caption
		}
		multi = append(multi, single)
	}

	if _, err := s.api.MessagesSendMultiMedia(ctx, &tg.MessagesSendMultiMediaRequest{
		Peer:       peer,
		MultiMedia: multi,
	}); err != nil {
		return fmt.Errorf("failed to send album to %s: %w", channel, err)
	}
	return nil
}

func randInt64() (int64, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0, fmt.Errorf("failed to generate random id: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(buf[:])), nil
}

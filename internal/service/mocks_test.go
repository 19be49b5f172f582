package service

import (
	"context"
	"io"

	"reposter/internal/models"
	"reposter/pkg/telegram"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
)

type mockClient struct {
	mock.Mock
}

func (m *mockClient) RecentMessages(ctx context.Context, channel string, limit int, minID int64) ([]telegram.Message, error) {
	args := m.Called(ctx, channel, limit, minID)
	if msgs, ok := args.Get(0).([]telegram.Message); ok {
		return msgs, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockClient) LatestMessage(ctx context.Context, channel string) (*telegram.Message, error) {
	args := m.Called(ctx, channel)
	if msg, ok := args.Get(0).(*telegram.Message); ok {
		return msg, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockClient) GetMessage(ctx context.Context, channel string, id int64) (*telegram.Message, error) {
	args := m.Called(ctx, channel, id)
	if msg, ok := args.Get(0).(*telegram.Message); ok {
		return msg, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockClient) SendText(ctx context.Context, channel string, text string) error {
	args := m.Called(ctx, channel, text)
	return args.Error(0)
}

func (m *mockClient) SendMedia(ctx context.Context, channel string, media []telegram.MediaRef, caption string) error {
	args := m.Called(ctx, channel, media, caption)
	return args.Error(0)
}

type mockHistory struct {
	mock.Mock
}

func (m *mockHistory) RecordForward(ctx context.Context, record *models.ForwardRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *mockHistory) CleanupOldRecords(ctx context.Context, retentionDays int) error {
	args := m.Called(ctx, retentionDays)
	return args.Error(0)
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

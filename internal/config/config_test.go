package config

import (
	"os"
	"path/filepath"
	"testing"

	"reposter/internal/constants"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig_ValidFile(t *testing.T) {
	path := writeConfig(t, `{
		"channels": [
			{"source": "@news_src", "destination": "@news_dst"},
			{"source": "tech_src", "destination": "tech_dst"}
		],
		"inactivityThresholdHours": 6,
		"fetchBatchSize": 50
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Len(t, cfg.Channels, 2)
	assert.Equal(t, "news_src", cfg.Channels[0].Source, "leading @ is stripped")
	assert.Equal(t, "news_dst", cfg.Channels[0].Destination)
	assert.Equal(t, 6, cfg.InactivityThresholdHours)
	assert.Equal(t, 50, cfg.FetchBatchSize)
	assert.Equal(t, constants.DefaultStatePath, cfg.StatePath)
	assert.Equal(t, constants.DefaultDatabasePath, cfg.Database.Path)
}

func TestLoadConfig_DefaultsApplied(t *testing.T) {
	path := writeConfig(t, `{"channels": [{"source": "a", "destination": "b"}]}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, constants.DefaultInactivityThresholdHours, cfg.InactivityThresholdHours)
	assert.Equal(t, constants.DefaultFetchBatchSize, cfg.FetchBatchSize)
	assert.Equal(t, constants.DefaultRetentionDays, cfg.RetentionDays)
	assert.Equal(t, constants.DefaultMaxFloodWaits, cfg.Retry.MaxFloodWaits)
	assert.Equal(t, "reposter", cfg.Tracing.ServiceName)
	assert.InDelta(t, 1.0, cfg.Tracing.SampleRate, 0.0001)
}

func TestLoadConfig_BatchSizeCapped(t *testing.T) {
	path := writeConfig(t, `{
		"channels": [{"source": "a", "destination": "b"}],
		"fetchBatchSize": 5000
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, constants.MaxFetchBatchSize, cfg.FetchBatchSize)
}

func TestLoadConfig_MissingFileUsesEnvironment(t *testing.T) {
	t.Setenv("REPOSTER_SOURCE_CHANNELS", "@src1, src2")
	t.Setenv("REPOSTER_DESTINATION_CHANNELS", "dst1,@dst2")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)

	require.Len(t, cfg.Channels, 2)
	assert.Equal(t, "src1", cfg.Channels[0].Source)
	assert.Equal(t, "dst1", cfg.Channels[0].Destination)
	assert.Equal(t, "src2", cfg.Channels[1].Source)
	assert.Equal(t, "dst2", cfg.Channels[1].Destination)
}

func TestLoadConfig_MissingFileNoChannels(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, ErrNoChannels)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	path := writeConfig(t, `{invalid json`)

	_, err := LoadConfig(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	path := writeConfig(t, `{
		"channels": [{"source": "a", "destination": "b"}],
		"inactivityThresholdHours": 4
	}`)
	t.Setenv("REPOSTER_INACTIVITY_HOURS", "12")
	t.Setenv("REPOSTER_FETCH_BATCH_SIZE", "10")
	t.Setenv("REPOSTER_STATE_PATH", "custom/state.json")
	t.Setenv("REPOSTER_DB_PATH", "custom/history.db")
	t.Setenv("REPOSTER_LOG_LEVEL", "debug")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 12, cfg.InactivityThresholdHours)
	assert.Equal(t, 10, cfg.FetchBatchSize)
	assert.Equal(t, "custom/state.json", cfg.StatePath)
	assert.Equal(t, "custom/history.db", cfg.Database.Path)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadConfig_ChannelOverridesReplaceFile(t *testing.T) {
	path := writeConfig(t, `{"channels": [{"source": "old_src", "destination": "old_dst"}]}`)
	t.Setenv("REPOSTER_SOURCE_CHANNELS", "new_src")
	t.Setenv("REPOSTER_DESTINATION_CHANNELS", "new_dst")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	require.Len(t, cfg.Channels, 1)
	assert.Equal(t, "new_src", cfg.Channels[0].Source)
	assert.Equal(t, "new_dst", cfg.Channels[0].Destination)
}

func TestLoadConfig_UnpairedChannelOverrides(t *testing.T) {
	path := writeConfig(t, `{"channels": [{"source": "a", "destination": "b"}]}`)
	t.Setenv("REPOSTER_SOURCE_CHANNELS", "src1")

	_, err := LoadConfig(path)
	assert.ErrorIs(t, err, ErrUnpairedOverrides)
}

func TestLoadConfig_MismatchedOverrideLengths(t *testing.T) {
	path := writeConfig(t, `{"channels": [{"source": "a", "destination": "b"}]}`)
	t.Setenv("REPOSTER_SOURCE_CHANNELS", "src1,src2")
	t.Setenv("REPOSTER_DESTINATION_CHANNELS", "dst1")

	_, err := LoadConfig(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "mismatched lengths")
}

func TestLoadConfig_InvalidEnvironmentValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "non-numeric hours", key: "REPOSTER_INACTIVITY_HOURS", value: "soon"},
		{name: "zero hours", key: "REPOSTER_INACTIVITY_HOURS", value: "0"},
		{name: "negative batch size", key: "REPOSTER_FETCH_BATCH_SIZE", value: "-5"},
		{name: "oversized batch", key: "REPOSTER_FETCH_BATCH_SIZE", value: "9999"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, `{"channels": [{"source": "a", "destination": "b"}]}`)
			t.Setenv(tt.key, tt.value)

			_, err := LoadConfig(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig_ValidationFailures(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errText string
	}{
		{
			name:    "empty channels",
			content: `{"channels": []}`,
			errText: "channels list is required",
		},
		{
			name:    "empty source",
			content: `{"channels": [{"source": "", "destination": "b"}]}`,
			errText: "invalid source channel",
		},
		{
			name:    "empty destination",
			content: `{"channels": [{"source": "a", "destination": ""}]}`,
			errText: "invalid destination channel",
		},
		{
			name:    "malformed source name",
			content: `{"channels": [{"source": "t.me/news", "destination": "b"}]}`,
			errText: "invalid source channel",
		},
		{
			name: "duplicate source",
			content: `{"channels": [
				{"source": "a", "destination": "b"},
				{"source": "a", "destination": "c"}
			]}`,
			errText: "duplicate source channel",
		},
		{
			name: "duplicate destination",
			content: `{"channels": [
				{"source": "a", "destination": "b"},
				{"source": "c", "destination": "b"}
			]}`,
			errText: "duplicate destination channel",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)

			_, err := LoadConfig(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errText)
		})
	}
}

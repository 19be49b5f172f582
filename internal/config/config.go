package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"reposter/internal/constants"
	"reposter/internal/models"
	"reposter/internal/security"
	"reposter/internal/validation"
)

var (
	ErrNoChannels        = models.ConfigError{Message: "channels list is required and must contain at least one pair"}
	ErrMissingStatePath  = models.ConfigError{Message: "missing state file path"}
	ErrMissingDBPath     = models.ConfigError{Message: "missing database path"}
	ErrUnpairedOverrides = models.ConfigError{Message: "REPOSTER_SOURCE_CHANNELS and REPOSTER_DESTINATION_CHANNELS must be set together"}
)

// LoadConfig reads the JSON config file, fills defaults, applies environment
// overrides and validates the result. A missing file is not an error: the
// configuration may be supplied entirely through the environment, which is how
// scheduled CI runners invoke the program.
func LoadConfig(path string) (*models.Config, error) {
	if err := security.ValidateFilePath(path); err != nil {
		return nil, fmt.Errorf("invalid config path: %w", err)
	}

	var config models.Config
	file, err := os.ReadFile(path) // #nosec G304 - Path validated by security.ValidateFilePath above
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	} else if err := json.Unmarshal(file, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&config)

	if err := applyEnvironmentOverrides(&config); err != nil {
		return nil, err
	}

	normalizeChannels(&config)

	if err := validate(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func applyDefaults(c *models.Config) {
	if c.InactivityThresholdHours <= 0 {
		c.InactivityThresholdHours = constants.DefaultInactivityThresholdHours
	}
	if c.FetchBatchSize <= 0 {
		c.FetchBatchSize = constants.DefaultFetchBatchSize
	}
	if c.FetchBatchSize > constants.MaxFetchBatchSize {
		c.FetchBatchSize = constants.MaxFetchBatchSize
	}
	if c.StatePath == "" {
		c.StatePath = constants.DefaultStatePath
	}
	if c.Database.Path == "" {
		c.Database.Path = constants.DefaultDatabasePath
	}
	if c.RetentionDays <= 0 {
		c.RetentionDays = constants.DefaultRetentionDays
	}
	if c.Retry.InitialBackoffMs <= 0 {
		c.Retry.InitialBackoffMs = constants.DefaultRetryBackoffMs
	}
	if c.Retry.MaxBackoffMs <= 0 {
		c.Retry.MaxBackoffMs = constants.DefaultMaxBackoffMs
	}
	if c.Retry.MaxAttempts <= 0 {
		c.Retry.MaxAttempts = constants.DefaultMaxAttempts
	}
	if c.Retry.MaxFloodWaits <= 0 {
		c.Retry.MaxFloodWaits = constants.DefaultMaxFloodWaits
	}
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = "reposter"
	}
	if c.Tracing.SampleRate <= 0 {
		c.Tracing.SampleRate = 1.0
	}
}

func applyEnvironmentOverrides(c *models.Config) error {
	sources := os.Getenv("REPOSTER_SOURCE_CHANNELS")
	destinations := os.Getenv("REPOSTER_DESTINATION_CHANNELS")
	if (sources == "") != (destinations == "") {
		return ErrUnpairedOverrides
	}
	if sources != "" {
		srcList := splitChannelList(sources)
		dstList := splitChannelList(destinations)
		if len(srcList) != len(dstList) {
			return models.ConfigError{Message: fmt.Sprintf(
				"channel override lists have mismatched lengths: %d sources, %d destinations", len(srcList), len(dstList))}
		}
		pairs := make([]models.ChannelPair, 0, len(srcList))
		for i := range srcList {
			pairs = append(pairs, models.ChannelPair{Source: srcList[i], Destination: dstList[i]})
		}
		c.Channels = pairs
	}

	if v := strings.TrimSpace(os.Getenv("REPOSTER_INACTIVITY_HOURS")); v != "" {
		hours, err := strconv.Atoi(v)
		if err != nil || hours <= 0 {
			return models.ConfigError{Message: fmt.Sprintf("invalid REPOSTER_INACTIVITY_HOURS: %s", v)}
		}
		c.InactivityThresholdHours = hours
	}

	if v := strings.TrimSpace(os.Getenv("REPOSTER_FETCH_BATCH_SIZE")); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil || size <= 0 || size > constants.MaxFetchBatchSize {
			return models.ConfigError{Message: fmt.Sprintf("invalid REPOSTER_FETCH_BATCH_SIZE: %s", v)}
		}
		c.FetchBatchSize = size
	}

	if v := strings.TrimSpace(os.Getenv("REPOSTER_STATE_PATH")); v != "" {
		c.StatePath = v
	}
	if v := strings.TrimSpace(os.Getenv("REPOSTER_DB_PATH")); v != "" {
		c.Database.Path = v
	}
	if v := strings.TrimSpace(os.Getenv("REPOSTER_LOG_LEVEL")); v != "" {
		c.LogLevel = v
	}

	return nil
}

func splitChannelList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// normalizeChannels strips the optional leading @ from channel identifiers so
// the rest of the code deals with bare usernames only.
func normalizeChannels(c *models.Config) {
	for i := range c.Channels {
		c.Channels[i].Source = strings.TrimPrefix(strings.TrimSpace(c.Channels[i].Source), "@")
		c.Channels[i].Destination = strings.TrimPrefix(strings.TrimSpace(c.Channels[i].Destination), "@")
	}
}

func validate(c *models.Config) error {
	if len(c.Channels) == 0 {
		return ErrNoChannels
	}
	if c.StatePath == "" {
		return ErrMissingStatePath
	}
	if c.Database.Path == "" {
		return ErrMissingDBPath
	}

	if err := validation.ValidateRetentionDays(c.RetentionDays); err != nil {
		return models.ConfigError{Message: err.Error()}
	}

	sources := make(map[string]bool)
	destinations := make(map[string]bool)
	for i, pair := range c.Channels {
		if err := validation.ValidateChannelName(pair.Source); err != nil {
			return models.ConfigError{Message: fmt.Sprintf("invalid source channel in pair %d: %v", i, err)}
		}
		if err := validation.ValidateChannelName(pair.Destination); err != nil {
			return models.ConfigError{Message: fmt.Sprintf("invalid destination channel in pair %d: %v", i, err)}
		}
		if sources[pair.Source] {
			return models.ConfigError{Message: fmt.Sprintf("duplicate source channel: %s", pair.Source)}
		}
		if destinations[pair.Destination] {
			return models.ConfigError{Message: fmt.Sprintf("duplicate destination channel: %s", pair.Destination)}
		}
		sources[pair.Source] = true
		destinations[pair.Destination] = true
	}

	return nil
}

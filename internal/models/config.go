package models

// Config holds the application configuration
type Config struct {
	Channels                 []ChannelPair  `json:"channels"`
	InactivityThresholdHours int            `json:"inactivityThresholdHours"`
	FetchBatchSize           int            `json:"fetchBatchSize"`
	StatePath                string         `json:"statePath"`
	Database                 DatabaseConfig `json:"database"`
	Retry                    RetryConfig    `json:"retry"`
	Tracing                  TracingConfig  `json:"tracing"`
	LogLevel                 string         `json:"log_level"`
	RetentionDays            int            `json:"retentionDays"`
}

// ChannelPair binds one source channel to the destination channel its posts
// are republished into. Pairs are processed in config order, one per run.
type ChannelPair struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
}

// DatabaseConfig holds forward-history database configurations
type DatabaseConfig struct {
	Path string `json:"path"`
}

// RetryConfig holds retry related configurations
type RetryConfig struct {
	InitialBackoffMs int `json:"initialBackoffMs"`
	MaxBackoffMs     int `json:"maxBackoffMs"`
	MaxAttempts      int `json:"maxAttempts"`
	MaxFloodWaits    int `json:"maxFloodWaits"`
}

// TracingConfig holds OpenTelemetry related configurations
type TracingConfig struct {
	Enabled        bool    `json:"enabled"`
	ServiceName    string  `json:"service_name"`
	ServiceVersion string  `json:"service_version"`
	Environment    string  `json:"environment"`
	OTLPEndpoint   string  `json:"otlp_endpoint"`
	SampleRate     float64 `json:"sample_rate"`
	UseStdout      bool    `json:"use_stdout"`
}

type ConfigError struct {
	Message string
}

func (e ConfigError) Error() string {
	return e.Message
}

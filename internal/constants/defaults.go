package constants

// Default run configuration values
const (
	DefaultInactivityThresholdHours = 4
	DefaultFetchBatchSize           = 30
	MaxFetchBatchSize               = 100
	DefaultRetentionDays            = 30
	DefaultStatePath                = "state/reposter_state.json"
	DefaultDatabasePath             = "reposter.db"
)

// Default retry configuration values
const (
	DefaultRetryBackoffMs        = 1000
	DefaultMaxBackoffMs          = 60000
	DefaultMaxAttempts           = 5
	DefaultMaxFloodWaits         = 1
	DefaultDatabaseRetryAttempts = 3
)

// Quote formatting
const (
	QuoteMaxRunes = 70
)

// Encryption salt. Changing it invalidates every encrypted history row.
const (
	EncryptionSalt = "reposter-salt-v1"
)

package validation

import (
	"fmt"
	"unicode"
)

// MaxChannelNameLength is the longest public username the platform allows.
const MaxChannelNameLength = 32

// ValidateChannelName validates a channel username after normalization has
// stripped the optional @ prefix. Public usernames are ASCII letters, digits
// and underscores; anything else indicates a typo or an invite link pasted
// where a username belongs.
func ValidateChannelName(channel string) error {
	if channel == "" {
		return fmt.Errorf("channel name cannot be empty")
	}

	if len(channel) > MaxChannelNameLength {
		return fmt.Errorf("channel name too long (max %d characters)", MaxChannelNameLength)
	}

	for _, char := range channel {
		if char > unicode.MaxASCII {
			return fmt.Errorf("channel name contains non-ASCII characters: %s", channel)
		}
		if !unicode.IsLetter(char) && !unicode.IsDigit(char) && char != '_' {
			return fmt.Errorf("channel name must contain only letters, digits, and underscores: %s", channel)
		}
	}

	return nil
}

// ValidateRetentionDays bounds the history retention period. A zero value is
// accepted here because configuration loading replaces it with the default
// window before cleanup ever sees it.
func ValidateRetentionDays(days int) error {
	if days < 0 {
		return fmt.Errorf("retention days cannot be negative")
	}

	if days > 3650 {
		return fmt.Errorf("retention days too large (max 3650)")
	}

	return nil
}

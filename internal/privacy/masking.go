package privacy

import (
	"fmt"
	"strings"
)

// Masking keeps credential material out of log output while leaving enough
// of a suffix to correlate lines against the deployed configuration.

// MaskSecret masks a credential showing only the last 4 characters
// Example: "abcdef1234567890" -> "************7890"
func MaskSecret(secret string) string {
	return maskString(secret, 4)
}

// MaskSessionString masks an exported session string. Sessions are long
// opaque blobs, so only the length and a short suffix are kept for
// correlating log lines against the deployed credential.
func MaskSessionString(session string) string {
	if session == "" {
		return ""
	}
	if len(session) <= 6 {
		return strings.Repeat("*", len(session))
	}
	return fmt.Sprintf("[%d chars]...%s", len(session), session[len(session)-6:])
}

// maskString masks a string showing only the last n characters
func maskString(s string, keepLast int) string {
	if s == "" {
		return ""
	}

	if len(s) <= keepLast {
		return strings.Repeat("*", len(s))
	}

	return strings.Repeat("*", len(s)-keepLast) + s[len(s)-keepLast:]
}

// MaskSensitiveFields applies appropriate masking to common logging fields
func MaskSensitiveFields(fields map[string]interface{}) map[string]interface{} {
	if fields == nil {
		return nil
	}

	masked := make(map[string]interface{})
	for k, v := range fields {
		switch k {
		case "session", "session_string", "sessionString":
			if s, ok := v.(string); ok {
				masked[k] = MaskSessionString(s)
			} else {
				masked[k] = v
			}
		case "api_hash", "apiHash", "secret", "encryption_secret":
			if s, ok := v.(string); ok {
				masked[k] = MaskSecret(s)
			} else {
				masked[k] = v
			}
		default:
			masked[k] = v
		}
	}

	return masked
}

package service

import (
	"regexp"
	"strings"
)

var (
	linkPattern    = regexp.MustCompile(`(?i)https?://\S+|www\.\S+|\bt\.me/\S+`)
	mentionPattern = regexp.MustCompile(`@(\w+)`)
)

// Sanitizer validates and cleans post text against one source channel's own
// identifier. The two operations are intentionally asymmetric: validation
// rejects outbound links and foreign mentions (content we do not control),
// cleaning strips the source's own permalinks and self-mentions (noise the
// source itself introduced).
type Sanitizer struct {
	source    string
	permalink *regexp.Regexp
	mention   *regexp.Regexp
}

// NewSanitizer builds a Sanitizer for a bare source channel username.
func NewSanitizer(source string) *Sanitizer {
	escaped := regexp.QuoteMeta(source)
	return &Sanitizer{
		source:    source,
		permalink: regexp.MustCompile(`(?i)(?:https?://)?t\.me/` + escaped + `\b(?:/\S*)?`),
		// Exact-token match: \w+ cannot continue past the handle, so a source
		// named "abc" never matches "@abcdef".
		mention: regexp.MustCompile(`(?i)@` + escaped + `\b`),
	}
}

// Validate reports whether the text is acceptable for forwarding. Empty text
// is always valid; media-only posts carry no text to object to.
func (s *Sanitizer) Validate(text string) bool {
	if text == "" {
		return true
	}

	for _, link := range linkPattern.FindAllString(text, -1) {
		if !s.isSelfPermalink(link) {
			return false
		}
	}

	for _, match := range mentionPattern.FindAllStringSubmatch(text, -1) {
		if !strings.EqualFold(match[1], s.source) {
			return false
		}
	}

	return true
}

// Clean removes the source's own permalinks and self-mentions and trims the
// result. It is only meant for text that already passed Validate, and is
// idempotent on such text.
func (s *Sanitizer) Clean(text string) string {
	if text == "" {
		return ""
	}
	cleaned := s.permalink.ReplaceAllString(text, "")
	cleaned = s.mention.ReplaceAllString(cleaned, "")
	return strings.TrimSpace(cleaned)
}

// isSelfPermalink reports whether a link found in the text is a permalink
// into the source channel itself. The username segment must end exactly at
// the handle: t.me/abc/5 is self for source "abc", t.me/abcdef is not.
func (s *Sanitizer) isSelfPermalink(link string) bool {
	normalized := strings.ToLower(link)
	normalized = strings.TrimPrefix(normalized, "https://")
	normalized = strings.TrimPrefix(normalized, "http://")

	prefix := "t.me/" + strings.ToLower(s.source)
	if !strings.HasPrefix(normalized, prefix) {
		return false
	}
	rest := normalized[len(prefix):]
	return rest == "" || strings.HasPrefix(rest, "/")
}

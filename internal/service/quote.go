package service

import (
	"context"
	"strings"

	"reposter/internal/constants"
	"reposter/pkg/telegram"

	"github.com/sirupsen/logrus"
)

// ResolveQuote builds the quoted-excerpt prefix for a reply: the parent
// message's first line, truncated to a fixed width, as a blockquote followed
// by a blank line. Every failure path degrades to an empty prefix; a missing
// parent must never block the forward.
func ResolveQuote(ctx context.Context, client telegram.Client, channel string, parentID int64, logger *logrus.Logger) string {
	if parentID == 0 {
		return ""
	}

	parent, err := client.GetMessage(ctx, channel, parentID)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"channel":  channel,
			"parentId": parentID,
		}).WithError(err).Debug("Reply parent lookup failed, skipping quote")
		return ""
	}
	if parent == nil || parent.Text == "" {
		return ""
	}

	line := parent.Text
	if idx := strings.IndexByte(line, '\n'); idx >= 0 {
		line = line[:idx]
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return ""
	}

	runes := []rune(line)
	if len(runes) > constants.QuoteMaxRunes {
		line = string(runes[:constants.QuoteMaxRunes]) + "…"
	}

	return "> " + line + "\n\n"
}

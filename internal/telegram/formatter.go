package telegram

import (
	"html"
	"strings"
	"unicode/utf8"

	"github.com/pfrederiksen/changelog-relay/internal/changelog"
)

const (
	// MaxMessageLength is the Bot API limit for a single message
	MaxMessageLength = 4096

	maxHeadingLength = 256
	ellipsis         = "…"
)

// FormatUpdate formats an update as a Telegram HTML message of at most
// MaxMessageLength characters. Text is cut before it is escaped, so the result
// never ends in a partial entity.
func FormatUpdate(u *changelog.Update) string {
	heading := "<b>" + escapeWithin(u.Date, maxHeadingLength) + "</b>\n"
	return heading + escapeWithin(u.Content, MaxMessageLength-utf8.RuneCountInString(heading))
}

// escapeWithin HTML-escapes s. If the escaped text is longer than limit runes,
// whole characters are dropped from the end and an ellipsis is appended.
func escapeWithin(s string, limit int) string {
	escaped := html.EscapeString(s)
	if utf8.RuneCountInString(escaped) <= limit {
		return escaped
	}

	var out strings.Builder
	used := 0
	for _, r := range s {
		esc := html.EscapeString(string(r))
		width := utf8.RuneCountInString(esc)
		if used+width > limit-1 {
			break
		}
		out.WriteString(esc)
		used += width
	}
	out.WriteString(ellipsis)

	return out.String()
}

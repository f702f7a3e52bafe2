// Package views holds the TUI screens: thread list, message history,
// details, backups, search, about and the chrome bars around them.
package views

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"msgr/internal/model"
)

// formatTimestamp renders provider milliseconds as a clock time for
// today and a short date otherwise.
func formatTimestamp(ms int64) string {
	if ms == 0 {
		return ""
	}
	t := time.UnixMilli(ms)
	now := time.Now()
	if t.Year() == now.Year() && t.YearDay() == now.YearDay() {
		return t.Format("15:04")
	}
	return t.Format("01/02")
}

// truncateCell bounds a string to a display width, terminal cells not
// bytes, so wide runes in contact names don't break table columns.
func truncateCell(s string, width int) string {
	return runewidth.Truncate(s, width, "…")
}

func containsFold(s, substr string) bool {
	if substr == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// previewFor prefers an unsent draft over the last message preview,
// matching how phone messaging apps surface forgotten drafts.
func previewFor(c model.Conversation) string {
	if c.Draft != "" {
		return "Draft: " + c.Draft
	}
	return c.LastMessagePreview
}

// displayNameFor resolves a message address against the thread members,
// falling back to the raw address.
func displayNameFor(c model.Conversation, address string) string {
	for _, r := range c.Recipients {
		if r.Address == address {
			return r.DisplayName()
		}
	}
	return address
}

// sanitizeForTerminal removes Unicode codepoints that cause rendering
// issues in tcell/tview. Contact names and message bodies arrive with
// multi-codepoint emoji; stripping the modifiers below leaves the base
// emoji, which renders as a clean 2-cell character:
// - Skin tone modifiers (U+1F3FB..U+1F3FF)
// - Zero Width Joiner (U+200D) used in family/couple sequences
// - Variation Selectors (U+FE00..U+FE0F and the supplement)
func sanitizeForTerminal(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if !isProblematicRune(r) {
			b.WriteRune(r)
		}
		i += size
	}
	return b.String()
}

func isProblematicRune(r rune) bool {
	switch {
	case r >= 0x1F3FB && r <= 0x1F3FF:
		return true
	case r == 0x200D:
		return true
	case r >= 0xFE00 && r <= 0xFE0F:
		return true
	case r >= 0xE0100 && r <= 0xE01EF:
		return true
	default:
		return false
	}
}

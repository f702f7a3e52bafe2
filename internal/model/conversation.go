// Package model holds the domain types mirrored from a phone's message
// store: conversations, recipients, contacts, messages and MMS parts.
// All operations here are pure; persistence lives in internal/store.
package model

import (
	"fmt"
	"strings"
)

// DefaultMaxTitleNames is how many recipient names a conversation title
// shows before the remainder collapses into a "+N" suffix.
const DefaultMaxTitleNames = 3

// Recipient is one member of a conversation.
type Recipient struct {
	ID          int64
	Address     string // raw address, empty when the source row has none
	ContactName string // resolved contact name, empty when unresolved
	LastSeen    int64
}

// DisplayName prefers the resolved contact name and falls back to the
// raw address.
func (r Recipient) DisplayName() string {
	if strings.TrimSpace(r.ContactName) != "" {
		return r.ContactName
	}
	return r.Address
}

// Conversation is a message thread and its member list. Recipients keep
// store iteration order.
type Conversation struct {
	ID                 int64
	Name               string // user-assigned label, empty when unset
	Recipients         []Recipient
	Archived           bool
	Pinned             bool
	Draft              string
	LastMessageAt      int64
	LastMessagePreview string
	Unread             bool
}

// IsGroup reports whether the conversation has two or more recipients.
func (c Conversation) IsGroup() bool {
	return len(c.Recipients) >= 2
}

// RecipientCount returns the number of recipients, zero included.
func (c Conversation) RecipientCount() int {
	return len(c.Recipients)
}

// TypeDescription classifies the conversation for display: "Empty",
// "Direct", or "Group (<n> members)".
func (c Conversation) TypeDescription() string {
	switch n := len(c.Recipients); n {
	case 0:
		return "Empty"
	case 1:
		return "Direct"
	default:
		return fmt.Sprintf("Group (%d members)", n)
	}
}

// MemberCountLabel renders the member count for detail views: empty for
// no recipients, "1 recipient", or "<n> recipients".
func (c Conversation) MemberCountLabel() string {
	switch n := len(c.Recipients); n {
	case 0:
		return ""
	case 1:
		return "1 recipient"
	default:
		return fmt.Sprintf("%d recipients", n)
	}
}

// RecipientAddresses returns the recipient addresses in member order.
// Recipients without an address are skipped; duplicates are kept.
func (c Conversation) RecipientAddresses() []string {
	addrs := make([]string, 0, len(c.Recipients))
	for _, r := range c.Recipients {
		if r.Address == "" {
			continue
		}
		addrs = append(addrs, r.Address)
	}
	return addrs
}

// Title is TruncatedTitle with the default name cap.
func (c Conversation) Title() string {
	return c.TruncatedTitle(DefaultMaxTitleNames)
}

// TruncatedTitle resolves the list title. A non-blank assigned name wins
// verbatim. Otherwise recipient display names are joined with ", "; with
// more than maxNames recipients only the first maxNames appear, followed
// by " +<rest>". Exactly maxNames recipients fit without truncation.
// A maxNames below 1 falls back to DefaultMaxTitleNames.
func (c Conversation) TruncatedTitle(maxNames int) string {
	if strings.TrimSpace(c.Name) != "" {
		return c.Name
	}
	if maxNames < 1 {
		maxNames = DefaultMaxTitleNames
	}
	n := len(c.Recipients)
	if n == 0 {
		return ""
	}
	names := make([]string, 0, n)
	for _, r := range c.Recipients {
		names = append(names, r.DisplayName())
	}
	if n <= maxNames {
		return strings.Join(names, ", ")
	}
	return fmt.Sprintf("%s +%d", strings.Join(names[:maxNames], ", "), n-maxNames)
}

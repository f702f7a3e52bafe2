package model

import "strings"

// Message kinds.
const (
	KindSMS = "sms"
	KindMMS = "mms"
)

// Message boxes, mirroring the telephony provider's folders.
const (
	BoxInbox  = "inbox"
	BoxSent   = "sent"
	BoxDraft  = "draft"
	BoxOutbox = "outbox"
	BoxFailed = "failed"
)

// Message is a single SMS or MMS in a conversation's history.
type Message struct {
	ID             int64
	ConversationID int64
	Kind           string
	Address        string
	Body           string
	Box            string
	Date           int64 // unix milliseconds, provider convention
	DateSent       int64
	Read           bool
	Seen           bool
	Locked         bool
	SubID          int
	Parts          []MmsPart // loaded on demand, only for MMS
}

// FromMe reports whether the message left this device rather than
// arriving in the inbox.
func (m Message) FromMe() bool {
	return m.Box != BoxInbox
}

// MmsPart is one attachment or text slice of an MMS.
type MmsPart struct {
	ID          int64
	MessageID   int64
	ContentType string
	Name        string
	Text        string
	Data        []byte
}

// IsText reports whether the part carries plain text.
func (p MmsPart) IsText() bool {
	return p.ContentType == "text/plain"
}

// IsImage reports whether the part is an image of any subtype.
func (p MmsPart) IsImage() bool {
	return strings.HasPrefix(p.ContentType, "image/")
}

// Summary renders a short placeholder for non-text parts, used in
// previews and thread rendering.
func (p MmsPart) Summary() string {
	switch {
	case p.IsText():
		return p.Text
	case p.IsImage():
		return "[photo]"
	case strings.HasPrefix(p.ContentType, "video/"):
		return "[video]"
	case strings.HasPrefix(p.ContentType, "audio/"):
		return "[audio]"
	case p.ContentType == "text/x-vCard" || p.ContentType == "text/vcard":
		return "[contact card]"
	default:
		return "[attachment]"
	}
}

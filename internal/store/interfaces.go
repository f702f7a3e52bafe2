package store

import "msgr/internal/model"

// Read contracts over the store, one per entity. *DB implements all of
// them; consumers compose the ones they need and tests substitute
// fakes.

// ConversationSource reads conversation threads with their members.
type ConversationSource interface {
	// Conversations returns all threads, pinned first, then most
	// recent activity first.
	Conversations() ([]model.Conversation, error)
	// ConversationByID returns nil without error when the id is
	// unknown.
	ConversationByID(id int64) (*model.Conversation, error)
}

// RecipientSource reads thread members. Conversation loading attaches
// members to each thread through the same accessor.
type RecipientSource interface {
	RecipientsByConversation(conversationID int64) ([]model.Recipient, error)
}

// MessageSource reads message history.
type MessageSource interface {
	// Messages pages a conversation's history newest-first with
	// keyset pagination on date.
	Messages(conversationID, beforeDate int64, limit int) ([]model.Message, error)
	// AllMessages returns the full archive oldest-first, for export.
	AllMessages() ([]model.Message, error)
	MessageCount() (int64, error)
}

// ContactSource reads the mirrored address book.
type ContactSource interface {
	Contacts() ([]model.Contact, error)
	// ContactByAddress returns nil without error when no contact
	// owns the address.
	ContactByAddress(address string) (*model.Contact, error)
}

// PartSource reads MMS attachments.
type PartSource interface {
	PartsByMessage(messageID int64) ([]model.MmsPart, error)
}

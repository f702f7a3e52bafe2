package backup

import (
	"encoding/json"
	"fmt"
	"os"

	"msgr/internal/model"
)

// Archive is the on-disk backup document.
type Archive struct {
	Messages []Record `json:"messages"`
}

// Record is one message in the archive. Field names follow the Android
// backup convention so archives written by handsets restore cleanly,
// with kind and parts added so MMS content survives the round trip.
type Record struct {
	Type          int          `json:"type"`
	Address       string       `json:"address"`
	Date          int64        `json:"date"`
	DateSent      int64        `json:"dateSent"`
	Read          bool         `json:"read"`
	Status        int          `json:"status"`
	Body          string       `json:"body"`
	Protocol      int          `json:"protocol"`
	ServiceCenter string       `json:"serviceCenter,omitempty"`
	Locked        bool         `json:"locked"`
	SubID         int          `json:"subId"`
	Kind          string       `json:"kind,omitempty"`
	Parts         []PartRecord `json:"parts,omitempty"`
}

// PartRecord is one MMS part. Data is base64 in the JSON encoding.
type PartRecord struct {
	ContentType string `json:"contentType"`
	Name        string `json:"name,omitempty"`
	Text        string `json:"text,omitempty"`
	Data        []byte `json:"data,omitempty"`
}

// Numeric message types used by the Android backup format.
const (
	typeInbox  = 1
	typeSent   = 2
	typeDraft  = 3
	typeOutbox = 4
	typeFailed = 5
)

var boxToType = map[string]int{
	model.BoxInbox:  typeInbox,
	model.BoxSent:   typeSent,
	model.BoxDraft:  typeDraft,
	model.BoxOutbox: typeOutbox,
	model.BoxFailed: typeFailed,
}

var typeToBox = map[int]string{
	typeInbox:  model.BoxInbox,
	typeSent:   model.BoxSent,
	typeDraft:  model.BoxDraft,
	typeOutbox: model.BoxOutbox,
	typeFailed: model.BoxFailed,
}

// ToRecord flattens a stored message into its archive form. The
// message's parts must already be loaded.
func ToRecord(m model.Message) Record {
	t, ok := boxToType[m.Box]
	if !ok {
		t = typeInbox
	}
	r := Record{
		Type:     t,
		Address:  m.Address,
		Date:     m.Date,
		DateSent: m.DateSent,
		Read:     m.Read,
		Body:     m.Body,
		Locked:   m.Locked,
		SubID:    m.SubID,
		Kind:     m.Kind,
	}
	for _, p := range m.Parts {
		r.Parts = append(r.Parts, PartRecord{
			ContentType: p.ContentType,
			Name:        p.Name,
			Text:        p.Text,
			Data:        p.Data,
		})
	}
	return r
}

// ToMessage normalizes an archive record back into a message bound to
// the given conversation. Unknown numeric types land in the inbox, and
// records without a kind are treated as SMS so archives from older
// handsets restore.
func (r Record) ToMessage(conversationID int64) model.Message {
	box, ok := typeToBox[r.Type]
	if !ok {
		box = model.BoxInbox
	}
	kind := r.Kind
	if kind == "" {
		kind = model.KindSMS
	}
	return model.Message{
		ConversationID: conversationID,
		Kind:           kind,
		Address:        r.Address,
		Body:           r.Body,
		Box:            box,
		Date:           r.Date,
		DateSent:       r.DateSent,
		Read:           r.Read,
		Seen:           r.Read,
		Locked:         r.Locked,
		SubID:          r.SubID,
	}
}

// ToPart converts an archived part for insertion under messageID. A
// missing content type is left empty; the store sniffs it from the
// bytes.
func (p PartRecord) ToPart(messageID int64) model.MmsPart {
	return model.MmsPart{
		MessageID:   messageID,
		ContentType: p.ContentType,
		Name:        p.Name,
		Text:        p.Text,
		Data:        p.Data,
	}
}

// WriteArchive encodes the archive as indented JSON at path.
func WriteArchive(path string, a *Archive) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	encErr := enc.Encode(a)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	if encErr != nil {
		return fmt.Errorf("encode archive: %w", encErr)
	}
	return nil
}

// ReadArchive decodes the archive at path.
func ReadArchive(path string) (*Archive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	var a Archive
	if err := json.NewDecoder(f).Decode(&a); err != nil {
		return nil, fmt.Errorf("decode archive: %w", err)
	}
	return &a, nil
}

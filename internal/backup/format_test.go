package backup

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"msgr/internal/model"
)

func TestRecordRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		msg  model.Message
	}{
		{"inbox sms", model.Message{Kind: model.KindSMS, Address: "555-1111", Body: "hi", Box: model.BoxInbox, Date: 1000, DateSent: 900, Read: true, SubID: 1}},
		{"sent sms", model.Message{Kind: model.KindSMS, Address: "555-2222", Body: "out", Box: model.BoxSent, Date: 2000, SubID: -1}},
		{"failed sms", model.Message{Kind: model.KindSMS, Address: "555-3333", Body: "x", Box: model.BoxFailed, Date: 3000, Locked: true}},
		{"draft", model.Message{Kind: model.KindSMS, Address: "", Body: "unsent", Box: model.BoxDraft, Date: 4000}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToRecord(tt.msg).ToMessage(7)
			if got.ConversationID != 7 {
				t.Errorf("ConversationID = %d, want 7", got.ConversationID)
			}
			if got.Box != tt.msg.Box {
				t.Errorf("Box = %q, want %q", got.Box, tt.msg.Box)
			}
			if got.Address != tt.msg.Address || got.Body != tt.msg.Body {
				t.Errorf("address/body differ after round trip: %+v", got)
			}
			if got.Date != tt.msg.Date || got.DateSent != tt.msg.DateSent {
				t.Errorf("dates differ after round trip: %+v", got)
			}
			if got.Read != tt.msg.Read || got.Locked != tt.msg.Locked || got.SubID != tt.msg.SubID {
				t.Errorf("flags differ after round trip: %+v", got)
			}
		})
	}
}

func TestToMessageDefaults(t *testing.T) {
	// Archives from older handsets have no kind field and may carry
	// message types this app never writes.
	r := Record{Type: 99, Address: "555", Body: "old", Date: 1}
	m := r.ToMessage(1)
	if m.Kind != model.KindSMS {
		t.Errorf("Kind = %q, want sms", m.Kind)
	}
	if m.Box != model.BoxInbox {
		t.Errorf("Box = %q, want inbox for unknown type", m.Box)
	}
}

func TestToRecordMapsBoxToNumericType(t *testing.T) {
	tests := []struct {
		box  string
		want int
	}{
		{model.BoxInbox, 1},
		{model.BoxSent, 2},
		{model.BoxDraft, 3},
		{model.BoxOutbox, 4},
		{model.BoxFailed, 5},
		{"bogus", 1},
	}
	for _, tt := range tests {
		t.Run(tt.box, func(t *testing.T) {
			r := ToRecord(model.Message{Box: tt.box})
			if r.Type != tt.want {
				t.Errorf("Type = %d, want %d", r.Type, tt.want)
			}
		})
	}
}

func TestArchiveFileRoundTrip(t *testing.T) {
	blob := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 1, 2, 3}
	a := &Archive{Messages: []Record{
		{Type: 1, Address: "555-1111", Date: 1000, Body: "hello", Kind: model.KindSMS},
		{Type: 2, Address: "555-2222", Date: 2000, Kind: model.KindMMS, Parts: []PartRecord{
			{ContentType: "text/plain", Text: "caption"},
			{ContentType: "image/png", Name: "photo.png", Data: blob},
		}},
	}}

	path := filepath.Join(t.TempDir(), "backup.json")
	if err := WriteArchive(path, a); err != nil {
		t.Fatal(err)
	}

	got, err := ReadArchive(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Messages) != 2 {
		t.Fatalf("got %d messages, want 2", len(got.Messages))
	}
	if got.Messages[0].Body != "hello" {
		t.Errorf("body = %q, want hello", got.Messages[0].Body)
	}
	ps := got.Messages[1].Parts
	if len(ps) != 2 {
		t.Fatalf("got %d parts, want 2", len(ps))
	}
	if ps[0].Text != "caption" {
		t.Errorf("part text = %q, want caption", ps[0].Text)
	}
	if !bytes.Equal(ps[1].Data, blob) {
		t.Error("binary part corrupted by the round trip")
	}
}

// TestArchiveFieldNames pins the JSON keys to the portable backup
// format; renaming a struct field must not silently change the file.
func TestArchiveFieldNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backup.json")
	a := &Archive{Messages: []Record{
		{Type: 2, Address: "555", Date: 10, DateSent: 9, Read: true, Body: "b", SubID: 1},
	}}
	if err := WriteArchive(path, a); err != nil {
		t.Fatal(err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{`"messages"`, `"type"`, `"address"`, `"date"`, `"dateSent"`, `"read"`, `"status"`, `"body"`, `"protocol"`, `"locked"`, `"subId"`} {
		if !strings.Contains(string(raw), key) {
			t.Errorf("archive missing key %s", key)
		}
	}
}

func TestReadArchiveMissingFile(t *testing.T) {
	if _, err := ReadArchive(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("ReadArchive() on a missing file should fail")
	}
}

func TestReadArchiveMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadArchive(path); err == nil {
		t.Error("ReadArchive() on malformed JSON should fail")
	}
}

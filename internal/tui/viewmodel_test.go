package tui

import (
	"path/filepath"
	"strconv"
	"testing"

	"msgr/internal/model"
	"msgr/internal/store"
)

func testDB(t *testing.T) *store.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := store.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Migrate(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func seedThread(t *testing.T, db *store.DB, address string, bodies ...string) int64 {
	t.Helper()
	convID, err := db.EnsureConversationForAddress(address)
	if err != nil {
		t.Fatal(err)
	}
	for i, body := range bodies {
		if _, err := db.UpsertMessage(&model.Message{
			ConversationID: convID,
			Kind:           model.KindSMS,
			Address:        address,
			Body:           body,
			Box:            model.BoxInbox,
			Date:           int64(1000 * (i + 1)),
		}); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := db.SyncConversations(); err != nil {
		t.Fatal(err)
	}
	return convID
}

func TestReloadSnapshotsConversations(t *testing.T) {
	db := testDB(t)
	vm := NewViewModel(db, "default")

	seedThread(t, db, "555-1111", "hello")
	seedThread(t, db, "555-2222", "hi there")

	if err := vm.Reload(); err != nil {
		t.Fatal(err)
	}
	convs := vm.Conversations()
	if len(convs) != 2 {
		t.Fatalf("got %d conversations, want 2", len(convs))
	}

	// Mutating the returned slice must not leak into the snapshot.
	convs[0].Name = "scribbled"
	if vm.Conversations()[0].Name == "scribbled" {
		t.Error("snapshot shared with caller")
	}
}

func TestOpenThreadOrdersOldestFirstAndMarksRead(t *testing.T) {
	db := testDB(t)
	vm := NewViewModel(db, "default")

	convID := seedThread(t, db, "555-1111", "first", "second", "third")
	if err := vm.Reload(); err != nil {
		t.Fatal(err)
	}

	if err := vm.OpenThread(convID); err != nil {
		t.Fatal(err)
	}

	thread := vm.Thread()
	if len(thread) != 3 {
		t.Fatalf("got %d messages, want 3", len(thread))
	}
	if thread[0].Body != "first" || thread[2].Body != "third" {
		t.Errorf("thread not oldest-first: %q ... %q", thread[0].Body, thread[2].Body)
	}

	active, ok := vm.Active()
	if !ok {
		t.Fatal("no active thread after OpenThread")
	}
	if active.Unread {
		t.Error("active thread still flagged unread")
	}
	stored, err := db.ConversationByID(convID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Unread {
		t.Error("store still flags thread unread after open")
	}
}

func TestOpenThreadLoadsMmsParts(t *testing.T) {
	db := testDB(t)
	vm := NewViewModel(db, "default")

	convID, err := db.EnsureConversationForAddress("555-3333")
	if err != nil {
		t.Fatal(err)
	}
	msgID, err := db.UpsertMessage(&model.Message{
		ConversationID: convID,
		Kind:           model.KindMMS,
		Address:        "555-3333",
		Body:           "",
		Box:            model.BoxInbox,
		Date:           1000,
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.InsertPart(&model.MmsPart{MessageID: msgID, ContentType: "text/plain", Text: "caption"}); err != nil {
		t.Fatal(err)
	}
	if _, err := db.SyncConversations(); err != nil {
		t.Fatal(err)
	}

	if err := vm.OpenThread(convID); err != nil {
		t.Fatal(err)
	}
	thread := vm.Thread()
	if len(thread) != 1 || len(thread[0].Parts) != 1 {
		t.Fatalf("expected 1 message with 1 part, got %+v", thread)
	}
	if thread[0].Parts[0].Text != "caption" {
		t.Errorf("part text = %q", thread[0].Parts[0].Text)
	}
}

func TestOpenThreadUnknownID(t *testing.T) {
	db := testDB(t)
	vm := NewViewModel(db, "default")

	if err := vm.OpenThread(99); err == nil {
		t.Fatal("expected error for unknown thread")
	}
}

func TestSaveDraft(t *testing.T) {
	db := testDB(t)
	vm := NewViewModel(db, "default")

	if err := vm.SaveDraft("orphan"); err == nil {
		t.Fatal("SaveDraft without an open thread should fail")
	}

	convID := seedThread(t, db, "555-1111", "hello")
	if err := vm.OpenThread(convID); err != nil {
		t.Fatal(err)
	}
	if err := vm.SaveDraft("on my way"); err != nil {
		t.Fatal(err)
	}

	active, _ := vm.Active()
	if active.Draft != "on my way" {
		t.Errorf("active draft = %q", active.Draft)
	}
	stored, err := db.ConversationByID(convID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Draft != "on my way" {
		t.Errorf("stored draft = %q", stored.Draft)
	}
}

func TestSearchStoresResults(t *testing.T) {
	db := testDB(t)
	vm := NewViewModel(db, "default")

	convID := seedThread(t, db, "555-1111", "lunch tacos tomorrow", "see you")
	if err := vm.Reload(); err != nil {
		t.Fatal(err)
	}

	if err := vm.Search("tacos"); err != nil {
		t.Fatal(err)
	}
	results := vm.Results()
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].Message.ConversationID != convID {
		t.Errorf("result thread = %d, want %d", results[0].Message.ConversationID, convID)
	}
	if vm.ConversationTitle(convID) == "" {
		t.Error("no title for result thread")
	}
}

func TestProfileData(t *testing.T) {
	db := testDB(t)
	vm := NewViewModel(db, "work")

	seedThread(t, db, "555-1111", "hello")
	seedThread(t, db, "555-2222", "hi")
	if err := vm.Reload(); err != nil {
		t.Fatal(err)
	}

	data, err := vm.ProfileData()
	if err != nil {
		t.Fatal(err)
	}
	if data.Profile != "work" {
		t.Errorf("profile = %q", data.Profile)
	}
	if data.Conversations != 2 || data.Messages != 2 {
		t.Errorf("counters = %+v", data)
	}
	if data.Unread != 2 {
		t.Errorf("unread = %d, want 2", data.Unread)
	}
	if !data.LastBackup.IsZero() {
		t.Error("last backup should be zero before any backup")
	}

	if err := db.SetMeta(store.MetaLastBackupAt, strconv.FormatInt(1700000000000, 10)); err != nil {
		t.Fatal(err)
	}
	data, err = vm.ProfileData()
	if err != nil {
		t.Fatal(err)
	}
	if data.LastBackup.IsZero() {
		t.Error("last backup still zero after checkpoint")
	}
}

func TestSignalRefreshNeverBlocks(t *testing.T) {
	vm := NewViewModel(testDB(t), "default")

	// Buffer holds one signal; extra signals must be dropped, not block.
	vm.SignalRefresh()
	vm.SignalRefresh()
	vm.SignalRefresh()

	select {
	case <-vm.RefreshCh():
	default:
		t.Fatal("expected one pending refresh signal")
	}
	select {
	case <-vm.RefreshCh():
		t.Fatal("only one signal should be buffered")
	default:
	}
}

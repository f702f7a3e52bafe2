package store

import (
	"path/filepath"
	"testing"

	"msgr/internal/model"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Migrate(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestMigrateAppliesOnFreshDB(t *testing.T) {
	db := testDB(t)

	// testDB already ran Migrate, run it again to check idempotency.
	result, err := db.Migrate()
	if err != nil {
		t.Fatal(err)
	}
	if result.Changed {
		t.Error("second Migrate() should report Changed=false")
	}
	if result.Version != 2 {
		t.Errorf("version = %d, want 2 (init + fts)", result.Version)
	}
}

// TestMigrateSchemaHasRequiredColumns verifies the migration creates
// all columns the import and analytics paths depend on.
func TestMigrateSchemaHasRequiredColumns(t *testing.T) {
	db := testDB(t)

	requiredOps := []struct {
		desc  string
		query string
		args  []any
	}{
		{"insert conversation", "INSERT INTO conversations (id, name, archived, pinned, draft, last_message_at, last_message_preview, unread) VALUES (?, ?, ?, ?, ?, ?, ?, ?)", []any{1, "Family", false, false, "", 1000, "hi", false}},
		{"insert recipient", "INSERT INTO recipients (conversation_id, address) VALUES (?, ?)", []any{1, "555-1111"}},
		{"insert message", "INSERT INTO messages (conversation_id, kind, address, body, box, date, date_sent, read, seen, locked, sub_id) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)", []any{1, "sms", "555-1111", "hello", "inbox", 1000, 999, false, false, false, -1}},
		{"insert contact", "INSERT INTO contacts (lookup_key, name, starred) VALUES (?, ?, ?)", []any{"k1", "Ada", true}},
		{"insert contact number", "INSERT INTO contact_numbers (lookup_key, address, type) VALUES (?, ?, ?)", []any{"k1", "555-1111", "Mobile"}},
		{"insert part", "INSERT INTO parts (message_id, content_type, name, text) VALUES (?, ?, ?, ?)", []any{1, "text/plain", "", "hi"}},
		{"queue analytics event", "INSERT INTO analytics_events (event_id, name, properties, status) VALUES (?, ?, ?, ?)", []any{"e1", "screen_view", "{}", "queued"}},
		{"set meta", "INSERT INTO meta (key, value) VALUES (?, ?)", []any{"k", "v"}},
	}

	for _, op := range requiredOps {
		t.Run(op.desc, func(t *testing.T) {
			if _, err := db.Exec(op.query, op.args...); err != nil {
				t.Fatalf("%s failed: %v", op.desc, err)
			}
		})
	}

	// Verify FTS5 works.
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM messages_fts WHERE messages_fts MATCH 'hello'").Scan(&count)
	if err != nil {
		t.Fatalf("FTS5 query failed: %v", err)
	}
	if count != 1 {
		t.Errorf("FTS5 count = %d, want 1", count)
	}
}

func TestConversationUpsertAndList(t *testing.T) {
	db := testDB(t)

	conv := &model.Conversation{ID: 10, Name: "Family", LastMessageAt: 1000, LastMessagePreview: "hello"}
	if err := db.UpsertConversation(conv); err != nil {
		t.Fatal(err)
	}

	// Update name.
	conv.Name = "Family (new)"
	if err := db.UpsertConversation(conv); err != nil {
		t.Fatal(err)
	}

	convs, err := db.Conversations()
	if err != nil {
		t.Fatal(err)
	}
	if len(convs) != 1 {
		t.Fatalf("got %d conversations, want 1", len(convs))
	}
	if convs[0].Name != "Family (new)" {
		t.Errorf("name = %q, want Family (new)", convs[0].Name)
	}
}

func TestConversationsOrderPinnedFirst(t *testing.T) {
	db := testDB(t)

	for _, c := range []model.Conversation{
		{ID: 1, LastMessageAt: 3000},
		{ID: 2, LastMessageAt: 1000, Pinned: true},
		{ID: 3, LastMessageAt: 2000},
	} {
		if err := db.UpsertConversation(&c); err != nil {
			t.Fatal(err)
		}
	}

	convs, err := db.Conversations()
	if err != nil {
		t.Fatal(err)
	}
	var gotIDs []int64
	for _, c := range convs {
		gotIDs = append(gotIDs, c.ID)
	}
	want := []int64{2, 1, 3}
	for i := range want {
		if gotIDs[i] != want[i] {
			t.Fatalf("order = %v, want %v", gotIDs, want)
		}
	}
}

func TestConversationByID(t *testing.T) {
	db := testDB(t)

	if err := db.UpsertConversation(&model.Conversation{ID: 5, Name: "A"}); err != nil {
		t.Fatal(err)
	}
	c, err := db.ConversationByID(5)
	if err != nil {
		t.Fatal(err)
	}
	if c == nil || c.Name != "A" {
		t.Errorf("got %v, want A", c)
	}

	// Non-existent.
	c, err = db.ConversationByID(999)
	if err != nil {
		t.Fatal(err)
	}
	if c != nil {
		t.Errorf("expected nil for missing conversation")
	}
}

// TestRecipientWithoutAddress exercises the provider case of a member
// row with a NULL address: the member still counts toward the group,
// only the address list skips it.
func TestRecipientWithoutAddress(t *testing.T) {
	db := testDB(t)

	if err := db.UpsertConversation(&model.Conversation{ID: 7}); err != nil {
		t.Fatal(err)
	}
	for _, addr := range []string{"555-1111", "", "555-3333"} {
		if err := db.AddRecipient(7, addr); err != nil {
			t.Fatal(err)
		}
	}

	c, err := db.ConversationByID(7)
	if err != nil {
		t.Fatal(err)
	}
	if got := c.RecipientCount(); got != 3 {
		t.Fatalf("RecipientCount() = %d, want 3", got)
	}
	addrs := c.RecipientAddresses()
	if len(addrs) != 2 || addrs[0] != "555-1111" || addrs[1] != "555-3333" {
		t.Errorf("RecipientAddresses() = %v, want [555-1111 555-3333]", addrs)
	}
	if got := c.TypeDescription(); got != "Group (3 members)" {
		t.Errorf("TypeDescription() = %q, want Group (3 members)", got)
	}
}

func TestAddRecipientIdempotent(t *testing.T) {
	db := testDB(t)

	if err := db.UpsertConversation(&model.Conversation{ID: 8}); err != nil {
		t.Fatal(err)
	}
	if err := db.AddRecipient(8, "555-1111"); err != nil {
		t.Fatal(err)
	}
	if err := db.AddRecipient(8, "555-1111"); err != nil {
		t.Fatal(err)
	}

	rcpts, err := db.RecipientsByConversation(8)
	if err != nil {
		t.Fatal(err)
	}
	if len(rcpts) != 1 {
		t.Errorf("got %d recipients, want 1", len(rcpts))
	}
}

func TestEnsureConversationForAddress(t *testing.T) {
	db := testDB(t)

	id1, err := db.EnsureConversationForAddress("555-1111")
	if err != nil {
		t.Fatal(err)
	}
	id2, err := db.EnsureConversationForAddress("555-1111")
	if err != nil {
		t.Fatal(err)
	}
	if id1 != id2 {
		t.Errorf("same address threaded twice: %d then %d", id1, id2)
	}

	other, err := db.EnsureConversationForAddress("555-2222")
	if err != nil {
		t.Fatal(err)
	}
	if other == id1 {
		t.Error("distinct addresses share a thread")
	}

	c, err := db.ConversationByID(id1)
	if err != nil {
		t.Fatal(err)
	}
	if c == nil || c.RecipientCount() != 1 || c.Recipients[0].Address != "555-1111" {
		t.Errorf("thread %d = %+v, want single recipient 555-1111", id1, c)
	}
}

// TestEnsureConversationSkipsGroups verifies that an address appearing
// in a group does not hijack threading: a direct thread is created
// instead.
func TestEnsureConversationSkipsGroups(t *testing.T) {
	db := testDB(t)

	if err := db.UpsertConversation(&model.Conversation{ID: 40}); err != nil {
		t.Fatal(err)
	}
	if err := db.AddRecipient(40, "555-1111"); err != nil {
		t.Fatal(err)
	}
	if err := db.AddRecipient(40, "555-2222"); err != nil {
		t.Fatal(err)
	}

	id, err := db.EnsureConversationForAddress("555-1111")
	if err != nil {
		t.Fatal(err)
	}
	if id == 40 {
		t.Error("group thread reused for a direct message")
	}
}

func TestEnsureConversationEmptyAddress(t *testing.T) {
	db := testDB(t)

	id1, err := db.EnsureConversationForAddress("")
	if err != nil {
		t.Fatal(err)
	}
	id2, err := db.EnsureConversationForAddress("")
	if err != nil {
		t.Fatal(err)
	}
	if id1 != id2 {
		t.Errorf("empty address threaded twice: %d then %d", id1, id2)
	}
}

func TestRecipientResolvesContactName(t *testing.T) {
	db := testDB(t)

	if err := db.UpsertContact(&model.Contact{
		LookupKey: "k1",
		Name:      "Ada",
		Numbers:   []model.ContactNumber{{Address: "555-1111", Type: "Mobile"}},
	}); err != nil {
		t.Fatal(err)
	}
	if err := db.UpsertConversation(&model.Conversation{ID: 9}); err != nil {
		t.Fatal(err)
	}
	if err := db.AddRecipient(9, "555-1111"); err != nil {
		t.Fatal(err)
	}
	if err := db.AddRecipient(9, "555-2222"); err != nil {
		t.Fatal(err)
	}

	rcpts, err := db.RecipientsByConversation(9)
	if err != nil {
		t.Fatal(err)
	}
	if len(rcpts) != 2 {
		t.Fatalf("got %d recipients, want 2", len(rcpts))
	}
	if rcpts[0].DisplayName() != "Ada" {
		t.Errorf("first DisplayName() = %q, want Ada", rcpts[0].DisplayName())
	}
	if rcpts[1].DisplayName() != "555-2222" {
		t.Errorf("second DisplayName() = %q, want address fallback", rcpts[1].DisplayName())
	}
}

func TestMessageUpsertIdempotent(t *testing.T) {
	db := testDB(t)

	msg := &model.Message{ConversationID: 1, Kind: model.KindSMS, Address: "555-1111", Body: "hello", Box: model.BoxInbox, Date: 1000}
	id1, err := db.UpsertMessage(msg)
	if err != nil {
		t.Fatal(err)
	}
	// Same provider row again, now read.
	msg.Read = true
	id2, err := db.UpsertMessage(msg)
	if err != nil {
		t.Fatal(err)
	}
	if id1 != id2 {
		t.Errorf("ids differ across upserts: %d vs %d", id1, id2)
	}

	msgs, err := db.Messages(1, 0, 100)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want 1 (idempotent upsert failed)", len(msgs))
	}
	if !msgs[0].Read {
		t.Error("read flag not refreshed by second upsert")
	}
}

func TestMessagesKeysetPagination(t *testing.T) {
	db := testDB(t)

	for i := int64(1); i <= 5; i++ {
		if _, err := db.UpsertMessage(&model.Message{ConversationID: 1, Kind: model.KindSMS, Address: "a", Body: string(rune('a' + i)), Box: model.BoxInbox, Date: i * 1000}); err != nil {
			t.Fatal(err)
		}
	}

	page1, err := db.Messages(1, 0, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(page1) != 2 || page1[0].Date != 5000 || page1[1].Date != 4000 {
		t.Fatalf("page1 = %+v, want dates 5000,4000", page1)
	}

	page2, err := db.Messages(1, page1[1].Date, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(page2) != 2 || page2[0].Date != 3000 || page2[1].Date != 2000 {
		t.Fatalf("page2 = %+v, want dates 3000,2000", page2)
	}
}

func TestSearchMessages(t *testing.T) {
	db := testDB(t)

	if _, err := db.UpsertMessage(&model.Message{ConversationID: 1, Kind: model.KindSMS, Address: "a", Body: "hello world", Box: model.BoxInbox, Date: 1000}); err != nil {
		t.Fatal(err)
	}
	if _, err := db.UpsertMessage(&model.Message{ConversationID: 2, Kind: model.KindSMS, Address: "b", Body: "goodbye world", Box: model.BoxInbox, Date: 2000}); err != nil {
		t.Fatal(err)
	}

	results, err := db.SearchMessages("hello", 0, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].Message.ConversationID != 1 {
		t.Errorf("conversation_id = %d, want 1", results[0].Message.ConversationID)
	}
	if results[0].Snippet == "" {
		t.Error("snippet is empty")
	}

	// Scoped to the wrong conversation finds nothing.
	results, err = db.SearchMessages("hello", 2, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Errorf("got %d scoped results, want 0", len(results))
	}
}

func TestAnalyticsEventQueue(t *testing.T) {
	db := testDB(t)

	if err := db.QueueEvent("e1", "screen_view", `{"screen":"inbox"}`); err != nil {
		t.Fatal(err)
	}
	if err := db.QueueEvent("e2", "backup_started", `{}`); err != nil {
		t.Fatal(err)
	}

	pending, err := db.PendingEvents(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 2 {
		t.Fatalf("got %d pending, want 2", len(pending))
	}
	if pending[0].EventID != "e1" {
		t.Errorf("first event = %q, want e1 (oldest first)", pending[0].EventID)
	}

	if err := db.MarkEventsSent([]int64{pending[0].ID}); err != nil {
		t.Fatal(err)
	}
	if err := db.MarkEventFailed(pending[1].ID, "spool full"); err != nil {
		t.Fatal(err)
	}

	pending, err = db.PendingEvents(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 0 {
		t.Errorf("got %d pending after marks, want 0", len(pending))
	}

	counts, err := db.EventCounts()
	if err != nil {
		t.Fatal(err)
	}
	if counts[EventSent] != 1 || counts[EventFailed] != 1 {
		t.Errorf("counts = %v, want 1 sent and 1 failed", counts)
	}
}

func TestSyncConversationsRebuild(t *testing.T) {
	db := testDB(t)

	msgs := []model.Message{
		{ConversationID: 1, Kind: model.KindSMS, Address: "555-1111", Body: "first", Box: model.BoxInbox, Date: 1000, Read: true},
		{ConversationID: 1, Kind: model.KindSMS, Address: "555-1111", Body: "second", Box: model.BoxInbox, Date: 2000},
		{ConversationID: 2, Kind: model.KindMMS, Address: "555-2222", Body: "", Box: model.BoxSent, Date: 3000},
	}
	for i := range msgs {
		if _, err := db.UpsertMessage(&msgs[i]); err != nil {
			t.Fatal(err)
		}
	}

	n, err := db.SyncConversations()
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("refreshed %d threads, want 2", n)
	}

	c1, err := db.ConversationByID(1)
	if err != nil {
		t.Fatal(err)
	}
	if c1 == nil {
		t.Fatal("thread 1 not created")
	}
	if c1.LastMessageAt != 2000 || c1.LastMessagePreview != "second" {
		t.Errorf("thread 1 = %+v, want preview 'second' at 2000", c1)
	}
	if !c1.Unread {
		t.Error("thread 1 should be unread (one inbox message unread)")
	}
	if got := c1.RecipientAddresses(); len(got) != 1 || got[0] != "555-1111" {
		t.Errorf("thread 1 recipients = %v, want [555-1111]", got)
	}

	c2, err := db.ConversationByID(2)
	if err != nil {
		t.Fatal(err)
	}
	if c2.LastMessagePreview != "[attachment]" {
		t.Errorf("MMS preview = %q, want [attachment]", c2.LastMessagePreview)
	}
	if c2.Unread {
		t.Error("thread 2 has only sent mail, should not be unread")
	}

	// Running the rebuild again must not duplicate recipients.
	if _, err := db.SyncConversations(); err != nil {
		t.Fatal(err)
	}
	rcpts, err := db.RecipientsByConversation(1)
	if err != nil {
		t.Fatal(err)
	}
	if len(rcpts) != 1 {
		t.Errorf("got %d recipients after double sync, want 1", len(rcpts))
	}
}

func TestMarkConversationRead(t *testing.T) {
	db := testDB(t)

	if _, err := db.UpsertMessage(&model.Message{ConversationID: 3, Kind: model.KindSMS, Address: "a", Body: "x", Box: model.BoxInbox, Date: 1000}); err != nil {
		t.Fatal(err)
	}
	if _, err := db.SyncConversations(); err != nil {
		t.Fatal(err)
	}

	if err := db.MarkConversationRead(3); err != nil {
		t.Fatal(err)
	}

	c, err := db.ConversationByID(3)
	if err != nil {
		t.Fatal(err)
	}
	if c.Unread {
		t.Error("thread still unread after MarkConversationRead")
	}
	msgs, err := db.Messages(3, 0, 10)
	if err != nil {
		t.Fatal(err)
	}
	if !msgs[0].Read || !msgs[0].Seen {
		t.Error("message not marked read and seen")
	}
}

func TestSetConversationDraft(t *testing.T) {
	db := testDB(t)

	if _, err := db.UpsertMessage(&model.Message{ConversationID: 4, Kind: model.KindSMS, Address: "a", Body: "x", Box: model.BoxInbox, Date: 1000}); err != nil {
		t.Fatal(err)
	}
	if _, err := db.SyncConversations(); err != nil {
		t.Fatal(err)
	}

	if err := db.SetConversationDraft(4, "see you at"); err != nil {
		t.Fatal(err)
	}
	c, err := db.ConversationByID(4)
	if err != nil {
		t.Fatal(err)
	}
	if c.Draft != "see you at" {
		t.Errorf("draft = %q, want %q", c.Draft, "see you at")
	}

	if err := db.SetConversationDraft(4, ""); err != nil {
		t.Fatal(err)
	}
	c, err = db.ConversationByID(4)
	if err != nil {
		t.Fatal(err)
	}
	if c.Draft != "" {
		t.Errorf("draft not cleared, still %q", c.Draft)
	}
}

func TestContactUpsertReplacesNumbers(t *testing.T) {
	db := testDB(t)

	c := &model.Contact{
		LookupKey: "k1",
		Name:      "Ada",
		Numbers: []model.ContactNumber{
			{Address: "555-1111", Type: "Mobile"},
			{Address: "555-2222", Type: "Home"},
		},
	}
	if err := db.UpsertContact(c); err != nil {
		t.Fatal(err)
	}

	// Replace with a single number.
	c.Numbers = []model.ContactNumber{{Address: "555-3333", Type: "Work"}}
	if err := db.UpsertContact(c); err != nil {
		t.Fatal(err)
	}

	got, err := db.ContactByAddress("555-3333")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.Name != "Ada" || len(got.Numbers) != 1 {
		t.Errorf("got %+v, want Ada with one number", got)
	}

	// Old number no longer resolves.
	gone, err := db.ContactByAddress("555-1111")
	if err != nil {
		t.Fatal(err)
	}
	if gone != nil {
		t.Errorf("stale number still resolves: %+v", gone)
	}
}

func TestPartContentTypeSniffing(t *testing.T) {
	db := testDB(t)

	id, err := db.UpsertMessage(&model.Message{ConversationID: 1, Kind: model.KindMMS, Address: "a", Body: "", Box: model.BoxInbox, Date: 1000})
	if err != nil {
		t.Fatal(err)
	}

	// PNG magic bytes, no declared type.
	png := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}
	if _, err := db.InsertPart(&model.MmsPart{MessageID: id, Data: png}); err != nil {
		t.Fatal(err)
	}

	parts, err := db.PartsByMessage(id)
	if err != nil {
		t.Fatal(err)
	}
	if len(parts) != 1 {
		t.Fatalf("got %d parts, want 1", len(parts))
	}
	if parts[0].ContentType != "image/png" {
		t.Errorf("content type = %q, want image/png", parts[0].ContentType)
	}
}

func TestMetaRoundTrip(t *testing.T) {
	db := testDB(t)

	if got, err := db.Meta("missing"); err != nil || got != "" {
		t.Errorf("Meta(missing) = %q, %v; want empty, nil", got, err)
	}

	if err := db.SetMeta(MetaLastBackupAt, "12345"); err != nil {
		t.Fatal(err)
	}
	if err := db.SetMeta(MetaLastBackupAt, "67890"); err != nil {
		t.Fatal(err)
	}

	got, err := db.Meta(MetaLastBackupAt)
	if err != nil {
		t.Fatal(err)
	}
	if got != "67890" {
		t.Errorf("Meta() = %q, want 67890", got)
	}
}

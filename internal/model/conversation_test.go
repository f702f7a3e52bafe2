package model

import (
	"reflect"
	"testing"
)

func recips(addrs ...string) []Recipient {
	rs := make([]Recipient, 0, len(addrs))
	for i, a := range addrs {
		rs = append(rs, Recipient{ID: int64(i + 1), Address: a})
	}
	return rs
}

func TestConversationClassification(t *testing.T) {
	tests := []struct {
		name        string
		recipients  []Recipient
		isGroup     bool
		typeDesc    string
		memberLabel string
	}{
		{"empty", nil, false, "Empty", ""},
		{"direct", recips("555-1111"), false, "Direct", "1 recipient"},
		{"pair", recips("555-1111", "555-2222"), true, "Group (2 members)", "2 recipients"},
		{"larger group", recips("a", "b", "c", "d", "e"), true, "Group (5 members)", "5 recipients"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Conversation{Recipients: tt.recipients}
			if got := c.IsGroup(); got != tt.isGroup {
				t.Errorf("IsGroup() = %v, want %v", got, tt.isGroup)
			}
			if got := c.RecipientCount(); got != len(tt.recipients) {
				t.Errorf("RecipientCount() = %d, want %d", got, len(tt.recipients))
			}
			if got := c.TypeDescription(); got != tt.typeDesc {
				t.Errorf("TypeDescription() = %q, want %q", got, tt.typeDesc)
			}
			if got := c.MemberCountLabel(); got != tt.memberLabel {
				t.Errorf("MemberCountLabel() = %q, want %q", got, tt.memberLabel)
			}
		})
	}
}

func TestConversationWithAbsentAddress(t *testing.T) {
	// A group where one member row carries no address: the member still
	// counts, only the address list skips it.
	c := Conversation{
		Recipients: []Recipient{
			{ID: 1, Address: "555-1111"},
			{ID: 2},
			{ID: 3, Address: "555-3333"},
		},
	}

	want := []string{"555-1111", "555-3333"}
	if got := c.RecipientAddresses(); !reflect.DeepEqual(got, want) {
		t.Errorf("RecipientAddresses() = %v, want %v", got, want)
	}
	if got := c.RecipientCount(); got != 3 {
		t.Errorf("RecipientCount() = %d, want 3", got)
	}
	if got := c.TypeDescription(); got != "Group (3 members)" {
		t.Errorf("TypeDescription() = %q, want %q", got, "Group (3 members)")
	}
}

func TestRecipientAddressesKeepsOrderAndDuplicates(t *testing.T) {
	c := Conversation{Recipients: recips("555-2222", "555-1111", "555-2222")}
	want := []string{"555-2222", "555-1111", "555-2222"}
	if got := c.RecipientAddresses(); !reflect.DeepEqual(got, want) {
		t.Errorf("RecipientAddresses() = %v, want %v", got, want)
	}
}

func TestTruncatedTitle(t *testing.T) {
	named := func(names ...string) []Recipient {
		rs := make([]Recipient, 0, len(names))
		for i, n := range names {
			rs = append(rs, Recipient{ID: int64(i + 1), Address: "555-000" + n, ContactName: n})
		}
		return rs
	}

	tests := []struct {
		name       string
		convName   string
		recipients []Recipient
		maxNames   int
		want       string
	}{
		{"assigned name wins", "Family", named("A", "B", "C", "D"), 3, "Family"},
		{"blank name ignored", "   ", named("A", "B"), 3, "A, B"},
		{"no recipients", "", nil, 3, ""},
		{"single", "", named("A"), 3, "A"},
		{"under cap", "", named("A", "B"), 3, "A, B"},
		{"exactly at cap", "", named("A", "B", "C"), 3, "A, B, C"},
		{"one over cap", "", named("A", "B", "C", "D"), 3, "A, B, C +1"},
		{"two over cap", "", named("A", "B", "C", "D", "E"), 3, "A, B, C +2"},
		{"cap of one", "", named("A", "B", "C"), 1, "A +2"},
		{"address fallback", "", recips("555-1111", "555-2222", "555-3333", "555-4444"), 3, "555-1111, 555-2222, 555-3333 +1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Conversation{Name: tt.convName, Recipients: tt.recipients}
			if got := c.TruncatedTitle(tt.maxNames); got != tt.want {
				t.Errorf("TruncatedTitle(%d) = %q, want %q", tt.maxNames, got, tt.want)
			}
		})
	}
}

func TestTitleUsesDefaultCap(t *testing.T) {
	c := Conversation{Recipients: recips("1", "2", "3", "4", "5")}
	if got, want := c.Title(), c.TruncatedTitle(DefaultMaxTitleNames); got != want {
		t.Errorf("Title() = %q, want %q", got, want)
	}
}

func TestDisplayNameFallsBackToAddress(t *testing.T) {
	tests := []struct {
		name string
		r    Recipient
		want string
	}{
		{"contact name", Recipient{Address: "555-1111", ContactName: "Ada"}, "Ada"},
		{"blank contact name", Recipient{Address: "555-1111", ContactName: "  "}, "555-1111"},
		{"no contact", Recipient{Address: "555-1111"}, "555-1111"},
		{"nothing at all", Recipient{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.DisplayName(); got != tt.want {
				t.Errorf("DisplayName() = %q, want %q", got, tt.want)
			}
		})
	}
}

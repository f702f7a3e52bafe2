package tui

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/samber/lo"
	"msgr/internal/model"
	"msgr/internal/store"
	"msgr/internal/tui/ui"
)

// threadPageSize bounds how much history a thread view loads at once.
const threadPageSize = 200

// Store is the read/write surface the view model needs. *store.DB
// implements it.
type Store interface {
	store.ConversationSource
	store.MessageSource
	store.ContactSource
	store.PartSource
	SearchMessages(query string, conversationID int64, limit int) ([]store.SearchResult, error)
	MarkConversationRead(id int64) error
	SetConversationDraft(id int64, draft string) error
	ConversationCount() (int64, error)
	ContactCount() (int64, error)
	Meta(key string) (string, error)
}

// ViewModel holds store snapshots for the views. All getters return
// copies, so views never see a slice mutated under them.
type ViewModel struct {
	mu        sync.RWMutex
	store     Store
	profile   string
	convs     []model.Conversation
	active    *model.Conversation
	thread    []model.Message
	results   []store.SearchResult
	refreshCh chan struct{}
}

// NewViewModel creates a view model bound to a store.
func NewViewModel(s Store, profile string) *ViewModel {
	return &ViewModel{
		store:     s,
		profile:   profile,
		refreshCh: make(chan struct{}, 1),
	}
}

// Reload refreshes the conversation snapshot and, when a thread is
// open, its history.
func (vm *ViewModel) Reload() error {
	convs, err := vm.store.Conversations()
	if err != nil {
		return fmt.Errorf("load conversations: %w", err)
	}

	vm.mu.Lock()
	vm.convs = convs
	activeID := int64(0)
	if vm.active != nil {
		activeID = vm.active.ID
	}
	vm.mu.Unlock()

	if activeID != 0 {
		return vm.loadThread(activeID, false)
	}
	return nil
}

// Conversations returns the current thread list snapshot.
func (vm *ViewModel) Conversations() []model.Conversation {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	out := make([]model.Conversation, len(vm.convs))
	copy(out, vm.convs)
	return out
}

// OpenThread loads a conversation and its history, marks it read and
// makes it the active thread.
func (vm *ViewModel) OpenThread(id int64) error {
	return vm.loadThread(id, true)
}

func (vm *ViewModel) loadThread(id int64, markRead bool) error {
	conv, err := vm.store.ConversationByID(id)
	if err != nil {
		return fmt.Errorf("load conversation %d: %w", id, err)
	}
	if conv == nil {
		return fmt.Errorf("conversation %d not found", id)
	}

	if markRead && conv.Unread {
		if err := vm.store.MarkConversationRead(id); err != nil {
			return fmt.Errorf("mark read: %w", err)
		}
		conv.Unread = false
	}

	msgs, err := vm.store.Messages(id, 0, threadPageSize)
	if err != nil {
		return fmt.Errorf("load messages: %w", err)
	}
	// Store order is newest-first; threads render oldest-first.
	lo.Reverse(msgs)
	for i := range msgs {
		if msgs[i].Kind != model.KindMMS {
			continue
		}
		parts, err := vm.store.PartsByMessage(msgs[i].ID)
		if err != nil {
			return fmt.Errorf("load parts: %w", err)
		}
		msgs[i].Parts = parts
	}

	vm.mu.Lock()
	vm.active = conv
	vm.thread = msgs
	vm.mu.Unlock()
	return nil
}

// CloseThread drops the active thread.
func (vm *ViewModel) CloseThread() {
	vm.mu.Lock()
	vm.active = nil
	vm.thread = nil
	vm.mu.Unlock()
}

// Active returns the open conversation, or false when no thread is
// open.
func (vm *ViewModel) Active() (model.Conversation, bool) {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	if vm.active == nil {
		return model.Conversation{}, false
	}
	return *vm.active, true
}

// Thread returns the open conversation's history, oldest first.
func (vm *ViewModel) Thread() []model.Message {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	out := make([]model.Message, len(vm.thread))
	copy(out, vm.thread)
	return out
}

// SaveDraft stores the unsent composer text on the active thread.
func (vm *ViewModel) SaveDraft(text string) error {
	vm.mu.RLock()
	active := vm.active
	vm.mu.RUnlock()
	if active == nil {
		return fmt.Errorf("no thread open")
	}
	if err := vm.store.SetConversationDraft(active.ID, text); err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	vm.mu.Lock()
	if vm.active != nil && vm.active.ID == active.ID {
		vm.active.Draft = text
	}
	vm.mu.Unlock()
	return nil
}

// Search runs a full-text query across all threads and stores the
// results.
func (vm *ViewModel) Search(query string) error {
	results, err := vm.store.SearchMessages(query, 0, 50)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	vm.mu.Lock()
	vm.results = results
	vm.mu.Unlock()
	return nil
}

// Results returns the latest search results.
func (vm *ViewModel) Results() []store.SearchResult {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	out := make([]store.SearchResult, len(vm.results))
	copy(out, vm.results)
	return out
}

// ConversationTitle resolves a thread id to its display title, for
// search results and info panes.
func (vm *ViewModel) ConversationTitle(id int64) string {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	for _, c := range vm.convs {
		if c.ID == id {
			return c.Title()
		}
	}
	return fmt.Sprintf("thread %d", id)
}

// ContactFor looks up the address book entry owning an address, nil
// when there is none.
func (vm *ViewModel) ContactFor(address string) (*model.Contact, error) {
	return vm.store.ContactByAddress(address)
}

// ProfileData assembles the header counters from the store.
func (vm *ViewModel) ProfileData() (*ui.ProfileData, error) {
	convCount, err := vm.store.ConversationCount()
	if err != nil {
		return nil, err
	}
	msgCount, err := vm.store.MessageCount()
	if err != nil {
		return nil, err
	}
	contactCount, err := vm.store.ContactCount()
	if err != nil {
		return nil, err
	}

	vm.mu.RLock()
	unread := lo.CountBy(vm.convs, func(c model.Conversation) bool { return c.Unread })
	vm.mu.RUnlock()

	data := &ui.ProfileData{
		Profile:       vm.profile,
		Conversations: int(convCount),
		Messages:      int(msgCount),
		Contacts:      int(contactCount),
		Unread:        unread,
	}

	raw, err := vm.store.Meta(store.MetaLastBackupAt)
	if err != nil {
		return nil, err
	}
	if raw != "" {
		if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
			data.LastBackup = time.UnixMilli(ms)
		}
	}
	return data, nil
}

// SignalRefresh nudges the refresh loop without blocking.
func (vm *ViewModel) SignalRefresh() {
	select {
	case vm.refreshCh <- struct{}{}:
	default:
	}
}

// RefreshCh exposes the refresh signal channel.
func (vm *ViewModel) RefreshCh() <-chan struct{} {
	return vm.refreshCh
}

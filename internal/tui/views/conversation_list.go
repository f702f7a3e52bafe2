package views

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"msgr/internal/model"
	"msgr/internal/tui/ui"
)

// ConversationList is the main thread list view.
type ConversationList struct {
	*tview.Table
	theme  *ui.Theme
	convs  []model.Conversation
	filter string
	onOpen func(id int64)
}

// NewConversationList creates the thread list table.
func NewConversationList(theme *ui.Theme) *ConversationList {
	table := tview.NewTable().
		SetSelectable(true, false).
		SetBorders(false).
		SetFixed(1, 0)
	table.SetBorder(true)
	table.SetBorderColor(theme.BorderColor)
	table.SetBackgroundColor(theme.BgColor)
	table.SetSelectedStyle(tcell.StyleDefault.
		Foreground(theme.TableCursorFg).
		Background(theme.TableCursorBg))
	table.SetTitle(" Conversations ")
	table.SetTitleColor(theme.TitleColor)

	cl := &ConversationList{
		Table: table,
		theme: theme,
	}
	table.SetSelectedFunc(func(row, col int) {
		if cl.onOpen != nil {
			if id, ok := cl.SelectedID(); ok {
				cl.onOpen(id)
			}
		}
	})
	return cl
}

// Name implements Component.
func (cl *ConversationList) Name() string { return "chats" }

// Init implements Component.
func (cl *ConversationList) Init() {}

// Start implements Component.
func (cl *ConversationList) Start() {}

// Stop implements Component.
func (cl *ConversationList) Stop() {}

// Primitive implements Component.
func (cl *ConversationList) Primitive() tview.Primitive { return cl.Table }

// Hints implements Component.
func (cl *ConversationList) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Enter", Description: "Open thread"},
		{Key: "i", Description: "Details"},
		{Key: "/", Description: "Filter"},
		{Key: "0-9", Description: "Jump", Numeric: true},
	}
}

// SetOnOpen sets the callback fired when a thread is chosen.
func (cl *ConversationList) SetOnOpen(fn func(id int64)) {
	cl.onOpen = fn
}

// Update refreshes the list with a new conversation snapshot.
func (cl *ConversationList) Update(convs []model.Conversation) {
	cl.convs = convs
	cl.render()
}

// SetFilter sets the active filter text and re-renders.
func (cl *ConversationList) SetFilter(filter string) {
	cl.filter = filter
	cl.render()
}

// ClearFilter clears the active filter.
func (cl *ConversationList) ClearFilter() {
	cl.filter = ""
	cl.render()
}

func (cl *ConversationList) matches(c model.Conversation) bool {
	if cl.filter == "" {
		return true
	}
	return containsFold(c.Title(), cl.filter) || containsFold(c.LastMessagePreview, cl.filter)
}

func (cl *ConversationList) render() {
	cl.Clear()

	headers := []struct {
		text string
		exp  int
	}{
		{" NAME", 1},
		{" LAST MESSAGE", 2},
		{" TIME", 0},
		{" TYPE", 0},
	}
	for col, h := range headers {
		cell := tview.NewTableCell(h.text).
			SetSelectable(false).
			SetTextColor(cl.theme.TableHeaderFg).
			SetBackgroundColor(cl.theme.TableHeaderBg).
			SetAttributes(tcell.AttrBold).
			SetExpansion(h.exp)
		cl.SetCell(0, col, cell)
	}

	row := 1
	for _, c := range cl.convs {
		if !cl.matches(c) {
			continue
		}

		name := c.Title()
		if name == "" {
			name = "(no members)"
		}
		nameColor := cl.theme.FgColor
		if c.Unread {
			name = "● " + name
			nameColor = cl.theme.UnreadColor
		}

		preview := truncateCell(previewFor(c), 80)

		cl.SetCell(row, 0, tview.NewTableCell(" "+tview.Escape(sanitizeForTerminal(name))).SetExpansion(1).SetTextColor(nameColor))
		cl.SetCell(row, 1, tview.NewTableCell(" "+tview.Escape(sanitizeForTerminal(preview))).SetExpansion(2).SetTextColor(cl.theme.FgColor))
		cl.SetCell(row, 2, tview.NewTableCell(formatTimestamp(c.LastMessageAt)).SetExpansion(0).SetTextColor(cl.theme.FgColor).SetAlign(tview.AlignRight))
		cl.SetCell(row, 3, tview.NewTableCell(c.TypeDescription()).SetExpansion(0).SetTextColor(cl.theme.FgColor).SetAlign(tview.AlignRight))
		row++
	}

	if cl.filter != "" {
		cl.SetTitle(fmt.Sprintf(" Conversations (%d/%d) filter: %s ", row-1, len(cl.convs), cl.filter))
	} else {
		cl.SetTitle(fmt.Sprintf(" Conversations (%d) ", len(cl.convs)))
	}
}

// SelectedID returns the thread id of the highlighted row.
func (cl *ConversationList) SelectedID() (int64, bool) {
	row, _ := cl.GetSelection()
	return cl.visibleID(row - 1) // account for header
}

// IDByIndex returns the thread id of the Nth visible row, 1-based, for
// numeric jump keys.
func (cl *ConversationList) IDByIndex(n int) (int64, bool) {
	return cl.visibleID(n - 1)
}

func (cl *ConversationList) visibleID(idx int) (int64, bool) {
	if idx < 0 {
		return 0, false
	}
	visible := 0
	for _, c := range cl.convs {
		if !cl.matches(c) {
			continue
		}
		if visible == idx {
			return c.ID, true
		}
		visible++
	}
	return 0, false
}

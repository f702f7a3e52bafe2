package views

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"msgr/internal/model"
	"msgr/internal/tui/ui"
)

// ConversationInfo displays thread details and its member list.
type ConversationInfo struct {
	*tview.Flex
	theme   *ui.Theme
	details *tview.TextView
	members *tview.Table
	conv    model.Conversation
}

// NewConversationInfo creates the thread details view.
func NewConversationInfo(theme *ui.Theme) *ConversationInfo {
	details := tview.NewTextView().
		SetDynamicColors(true)
	details.SetBorder(true)
	details.SetBorderColor(theme.BorderColor)
	details.SetBackgroundColor(theme.BgColor)
	details.SetTextColor(theme.FgColor)
	details.SetTitle(" Details ")
	details.SetTitleColor(theme.TitleColor)

	members := tview.NewTable().
		SetSelectable(true, false).
		SetBorders(false).
		SetFixed(1, 0)
	members.SetBorder(true)
	members.SetBorderColor(theme.BorderColor)
	members.SetBackgroundColor(theme.BgColor)
	members.SetTitle(" Members ")
	members.SetTitleColor(theme.TitleColor)
	members.SetSelectedStyle(tcell.StyleDefault.
		Foreground(theme.TableCursorFg).
		Background(theme.TableCursorBg))

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(details, 10, 0, false).
		AddItem(members, 0, 1, true)

	return &ConversationInfo{
		Flex:    flex,
		theme:   theme,
		details: details,
		members: members,
	}
}

// Name implements Component.
func (ci *ConversationInfo) Name() string { return "info" }

// Init implements Component.
func (ci *ConversationInfo) Init() {}

// Start implements Component.
func (ci *ConversationInfo) Start() {}

// Stop implements Component.
func (ci *ConversationInfo) Stop() {}

// Primitive implements Component.
func (ci *ConversationInfo) Primitive() tview.Primitive { return ci.Flex }

// Hints implements Component.
func (ci *ConversationInfo) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "v", Description: "Share contact QR"},
		{Key: "Esc", Description: "Back"},
	}
}

// Update renders the thread details and members.
func (ci *ConversationInfo) Update(conv model.Conversation) {
	ci.conv = conv
	ci.details.Clear()

	fg := ui.ColorName(ci.theme.FgColor)
	ct := ui.ColorName(ci.theme.CounterColor)

	title := conv.Title()
	if title == "" {
		title = "(no members)"
	}

	members := conv.MemberCountLabel()
	if members == "" {
		members = "-"
	}
	lastActive := formatTimestamp(conv.LastMessageAt)
	if lastActive == "" {
		lastActive = "-"
	}
	unread := "no"
	if conv.Unread {
		unread = "yes"
	}
	flags := ""
	if conv.Pinned {
		flags += " pinned"
	}
	if conv.Archived {
		flags += " archived"
	}
	if flags == "" {
		flags = " -"
	}

	text := fmt.Sprintf(
		"\n [%s::b]Title:[-:-:-]       [%s]%s[-]\n"+
			" [%s::b]Type:[-:-:-]        [%s]%s[-]\n"+
			" [%s::b]Members:[-:-:-]     [%s]%s[-]\n"+
			" [%s::b]Unread:[-:-:-]      [%s]%s[-]\n"+
			" [%s::b]Flags:[-:-:-]      [%s]%s[-]\n"+
			" [%s::b]Last Active:[-:-:-] [%s]%s[-]\n"+
			" [%s::b]Preview:[-:-:-]     [%s]%s[-]",
		fg, ct, tview.Escape(sanitizeForTerminal(title)),
		fg, ct, conv.TypeDescription(),
		fg, ct, members,
		fg, ct, unread,
		fg, ct, flags,
		fg, ct, lastActive,
		fg, ct, tview.Escape(sanitizeForTerminal(previewFor(conv))),
	)
	_, _ = fmt.Fprint(ci.details, text)
	ci.details.SetTitle(fmt.Sprintf(" %s ", tview.Escape(sanitizeForTerminal(title))))

	ci.renderMembers()
}

func (ci *ConversationInfo) renderMembers() {
	ci.members.Clear()

	headers := []string{" MEMBER", " ADDRESS", " LAST SEEN"}
	for col, h := range headers {
		ci.members.SetCell(0, col, tview.NewTableCell(h).
			SetSelectable(false).
			SetTextColor(ci.theme.TableHeaderFg).
			SetBackgroundColor(ci.theme.TableHeaderBg).
			SetAttributes(tcell.AttrBold).
			SetExpansion(1))
	}

	for i, r := range ci.conv.Recipients {
		row := i + 1
		name := r.DisplayName()
		if name == "" {
			name = "(unknown)"
		}
		address := r.Address
		if address == "" {
			address = "-"
		}
		ci.members.SetCell(row, 0, tview.NewTableCell(" "+tview.Escape(sanitizeForTerminal(name))).SetExpansion(1).SetTextColor(ci.theme.FgColor))
		ci.members.SetCell(row, 1, tview.NewTableCell(" "+tview.Escape(address)).SetExpansion(1).SetTextColor(ci.theme.FgColor))
		ci.members.SetCell(row, 2, tview.NewTableCell(" "+formatTimestamp(r.LastSeen)).SetExpansion(1).SetTextColor(ci.theme.FgColor))
	}
}

// SelectedAddress returns the address of the highlighted member, empty
// when the member has no address.
func (ci *ConversationInfo) SelectedAddress() (string, bool) {
	row, _ := ci.members.GetSelection()
	idx := row - 1
	if idx < 0 || idx >= len(ci.conv.Recipients) {
		return "", false
	}
	return ci.conv.Recipients[idx].Address, true
}

// Members returns the member table, for focus management.
func (ci *ConversationInfo) Members() *tview.Table {
	return ci.members
}

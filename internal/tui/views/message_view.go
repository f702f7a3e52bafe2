package views

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"msgr/internal/model"
	"msgr/internal/tui/ui"
)

// MessageView displays one thread's history with a draft composer.
type MessageView struct {
	*tview.Flex
	theme    *ui.Theme
	history  *tview.TextView
	composer *tview.InputField
	conv     model.Conversation
	hasConv  bool
	onDraft  func(text string)
	onCancel func()
}

// NewMessageView creates the thread history view.
func NewMessageView(theme *ui.Theme) *MessageView {
	history := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWordWrap(true)
	history.SetBorder(true)
	history.SetBorderColor(theme.BorderColor)
	history.SetBackgroundColor(theme.BgColor)
	history.SetTextColor(theme.FgColor)
	history.SetTitle(" Messages ")
	history.SetTitleColor(theme.TitleColor)

	composer := tview.NewInputField().
		SetLabel(" > ").
		SetFieldWidth(0)
	composer.SetBorder(true)
	composer.SetBorderColor(theme.BorderColor)
	composer.SetBackgroundColor(theme.BgColor)
	composer.SetFieldBackgroundColor(theme.BgColor)
	composer.SetFieldTextColor(theme.FgColor)
	composer.SetLabelColor(theme.MenuKeyColor)
	composer.SetTitle(" Draft (i to edit, Enter to save) ")
	composer.SetTitleColor(theme.TitleColor)

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(history, 0, 1, true).
		AddItem(composer, 3, 0, false)

	mv := &MessageView{
		Flex:     flex,
		theme:    theme,
		history:  history,
		composer: composer,
	}

	composer.SetDoneFunc(func(key tcell.Key) {
		switch key {
		case tcell.KeyEnter:
			if mv.onDraft != nil {
				mv.onDraft(composer.GetText())
			}
		case tcell.KeyEscape:
			if mv.onCancel != nil {
				mv.onCancel()
			}
		}
	})

	return mv
}

// Name implements Component.
func (mv *MessageView) Name() string { return "thread" }

// Init implements Component.
func (mv *MessageView) Init() {}

// Start implements Component.
func (mv *MessageView) Start() {}

// Stop implements Component.
func (mv *MessageView) Stop() {}

// Primitive implements Component.
func (mv *MessageView) Primitive() tview.Primitive { return mv.Flex }

// Hints implements Component.
func (mv *MessageView) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "i", Description: "Edit draft"},
		{Key: "d", Description: "Details"},
		{Key: "Esc", Description: "Back"},
	}
}

// SetOnDraft sets the callback fired when the composer text is saved.
func (mv *MessageView) SetOnDraft(fn func(text string)) {
	mv.onDraft = fn
}

// SetOnComposerCancel sets the callback fired when composing is
// abandoned.
func (mv *MessageView) SetOnComposerCancel(fn func()) {
	mv.onCancel = fn
}

// Update renders a thread's history oldest-first and loads any unsent
// draft into the composer.
func (mv *MessageView) Update(conv model.Conversation, msgs []model.Message) {
	mv.conv = conv
	mv.hasConv = true
	mv.history.Clear()

	title := conv.Title()
	if title == "" {
		title = "(no members)"
	}
	if label := conv.MemberCountLabel(); label != "" {
		title = fmt.Sprintf("%s · %s", title, label)
	}
	mv.history.SetTitle(fmt.Sprintf(" %s ", tview.Escape(sanitizeForTerminal(title))))

	inColor := ui.ColorName(mv.theme.InboundColor)
	outColor := ui.ColorName(mv.theme.OutboundColor)

	for _, m := range msgs {
		sender := displayNameFor(conv, m.Address)
		color := inColor
		if m.FromMe() {
			sender = "Me"
			color = outColor
		}
		if m.Box == model.BoxDraft {
			sender = "Draft"
		} else if m.Box == model.BoxFailed {
			sender += " (failed)"
		}

		_, _ = fmt.Fprintf(mv.history, "[%s::b]%s[-:-:-] [::d]%s[-:-:-]\n",
			color, tview.Escape(sanitizeForTerminal(sender)), formatTimestamp(m.Date))
		for _, line := range renderBody(m) {
			_, _ = fmt.Fprintf(mv.history, "%s\n", tview.Escape(sanitizeForTerminal(line)))
		}
		_, _ = fmt.Fprint(mv.history, "\n")
	}

	mv.composer.SetText(conv.Draft)
	mv.history.ScrollToEnd()
}

// renderBody flattens a message into display lines. MMS parts render
// text inline and placeholders for media.
func renderBody(m model.Message) []string {
	if len(m.Parts) == 0 {
		return []string{m.Body}
	}
	lines := make([]string, 0, len(m.Parts))
	for _, p := range m.Parts {
		lines = append(lines, p.Summary())
	}
	if m.Body != "" {
		lines = append(lines, m.Body)
	}
	return lines
}

// Conversation returns the thread being displayed.
func (mv *MessageView) Conversation() (model.Conversation, bool) {
	return mv.conv, mv.hasConv
}

// History returns the history text view, for focus management.
func (mv *MessageView) History() *tview.TextView {
	return mv.history
}

// Composer returns the draft input field, for focus management.
func (mv *MessageView) Composer() *tview.InputField {
	return mv.composer
}

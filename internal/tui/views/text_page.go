package views

import (
	"fmt"

	"github.com/rivo/tview"
	"msgr/internal/tui/ui"
)

// TextPage is a generic scrollable document view, used for the
// changelog and license texts the about screen opens.
type TextPage struct {
	*tview.TextView
	theme *ui.Theme
}

// NewTextPage creates an empty document view.
func NewTextPage(theme *ui.Theme) *TextPage {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWordWrap(true)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTextColor(theme.FgColor)
	tv.SetTitleColor(theme.TitleColor)

	return &TextPage{
		TextView: tv,
		theme:    theme,
	}
}

// Name implements Component.
func (tp *TextPage) Name() string { return "document" }

// Init implements Component.
func (tp *TextPage) Init() {}

// Start implements Component.
func (tp *TextPage) Start() {}

// Stop implements Component.
func (tp *TextPage) Stop() {}

// Primitive implements Component.
func (tp *TextPage) Primitive() tview.Primitive { return tp.TextView }

// Hints implements Component.
func (tp *TextPage) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Esc", Description: "Back"},
	}
}

// SetContent replaces the document.
func (tp *TextPage) SetContent(title, body string) {
	tp.Clear()
	tp.SetTitle(fmt.Sprintf(" %s ", title))
	_, _ = fmt.Fprint(tp, body)
	tp.ScrollToBeginning()
}

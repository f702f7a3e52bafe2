package views

import (
	"fmt"

	"github.com/rivo/tview"
	"msgr/internal/tui/ui"
)

// HelpView displays the key binding reference.
type HelpView struct {
	*tview.TextView
	theme *ui.Theme
}

// NewHelpView creates the help view.
func NewHelpView(theme *ui.Theme) *HelpView {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTextColor(theme.FgColor)
	tv.SetTitle(" Help ")
	tv.SetTitleColor(theme.TitleColor)

	hv := &HelpView{
		TextView: tv,
		theme:    theme,
	}
	hv.render()
	return hv
}

// Name implements Component.
func (hv *HelpView) Name() string { return "help" }

// Init implements Component.
func (hv *HelpView) Init() {}

// Start implements Component.
func (hv *HelpView) Start() {}

// Stop implements Component.
func (hv *HelpView) Stop() {}

// Primitive implements Component.
func (hv *HelpView) Primitive() tview.Primitive { return hv.TextView }

// Hints implements Component.
func (hv *HelpView) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Esc", Description: "Back"},
	}
}

func (hv *HelpView) render() {
	kc := ui.ColorName(hv.theme.MenuKeyColor)

	help := fmt.Sprintf(`
  [::b]Global Keys[-:-:-]

  [%s]:[-:-:-]      Command mode        [%s]Esc[-:-:-]    Cancel / go back
  [%s]s[-:-:-]      Search messages     [%s]?[-:-:-]      Help
  [%s]b[-:-:-]      Backups             [%s]a[-:-:-]      About
  [%s]q[-:-:-]      Quit                [%s]Ctrl-C[-:-:-] Quit immediately

  [::b]Conversation List[-:-:-]

  [%s]Enter[-:-:-]  Open thread         [%s]i[-:-:-]      Thread details
  [%s]/[-:-:-]      Filter threads      [%s]1-9[-:-:-]    Jump to Nth thread
  [%s]0[-:-:-]      Clear filter

  [::b]Message Thread[-:-:-]

  [%s]i[-:-:-]      Edit draft          [%s]d[-:-:-]      Thread details
  [%s]Enter[-:-:-]  Save draft (in composer)

  [::b]Thread Details[-:-:-]

  [%s]v[-:-:-]      Show contact QR for the selected member

  [::b]Backups[-:-:-]

  [%s]b[-:-:-]      Write a new archive [%s]r[-:-:-]      Restore selected archive

  [::b]Commands (: mode)[-:-:-]

  [%s]:search <query>[-:-:-]   Search messages
  [%s]:backup[-:-:-]           Write a new archive
  [%s]:restore <path>[-:-:-]   Restore an archive file
  [%s]:help[-:-:-] / [%s]:h[-:-:-]      Show this help
  [%s]:quit[-:-:-] / [%s]:q[-:-:-]      Quit
`,
		kc, kc, kc, kc, kc, kc, kc, kc,
		kc, kc, kc, kc, kc,
		kc, kc, kc,
		kc,
		kc, kc,
		kc, kc, kc, kc, kc, kc, kc,
	)

	_, _ = fmt.Fprint(hv, help)
}

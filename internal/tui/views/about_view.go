package views

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"msgr/internal/bus"
	"msgr/internal/tui/ui"
)

// About row keys published on the bus when a row is chosen.
const (
	AboutVersion   = "version"
	AboutChangelog = "changelog"
	AboutLicenses  = "licenses"
	AboutCopyright = "copyright"
)

type aboutRow struct {
	key    string
	title  string
	detail string
}

// AboutView lists application facts. Choosing a row publishes a
// selection event; the about presenter decides what each row opens.
type AboutView struct {
	*tview.Table
	theme *ui.Theme
	bus   *bus.Bus
	rows  []aboutRow
}

// NewAboutView creates the about screen.
func NewAboutView(theme *ui.Theme, b *bus.Bus, version string) *AboutView {
	table := tview.NewTable().
		SetSelectable(true, false).
		SetBorders(false).
		SetFixed(1, 0)
	table.SetBorder(true)
	table.SetBorderColor(theme.BorderColor)
	table.SetBackgroundColor(theme.BgColor)
	table.SetTitle(" About ")
	table.SetTitleColor(theme.TitleColor)
	table.SetSelectedStyle(tcell.StyleDefault.
		Foreground(theme.TableCursorFg).
		Background(theme.TableCursorBg))

	av := &AboutView{
		Table: table,
		theme: theme,
		bus:   b,
		rows: []aboutRow{
			{AboutVersion, "Version", version},
			{AboutChangelog, "Changelog", "What changed in recent releases"},
			{AboutLicenses, "Open source licenses", "Libraries this program builds on"},
			{AboutCopyright, "Copyright", "msgr authors"},
		},
	}

	table.SetSelectedFunc(func(row, col int) {
		av.publishSelection(row)
	})
	return av
}

// Name implements Component.
func (av *AboutView) Name() string { return "about" }

// Init implements Component.
func (av *AboutView) Init() { av.render() }

// Start implements Component.
func (av *AboutView) Start() {}

// Stop implements Component.
func (av *AboutView) Stop() {}

// Primitive implements Component.
func (av *AboutView) Primitive() tview.Primitive { return av.Table }

// Hints implements Component.
func (av *AboutView) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Enter", Description: "Open"},
		{Key: "Esc", Description: "Back"},
	}
}

func (av *AboutView) render() {
	av.Clear()

	headers := []string{" ITEM", " DETAIL"}
	for col, h := range headers {
		av.SetCell(0, col, tview.NewTableCell(h).
			SetSelectable(false).
			SetTextColor(av.theme.TableHeaderFg).
			SetBackgroundColor(av.theme.TableHeaderBg).
			SetAttributes(tcell.AttrBold).
			SetExpansion(1))
	}

	for i, r := range av.rows {
		av.SetCell(i+1, 0, tview.NewTableCell(" "+r.title).SetExpansion(1).SetTextColor(av.theme.FgColor))
		av.SetCell(i+1, 1, tview.NewTableCell(" "+r.detail).SetExpansion(2).SetTextColor(av.theme.FgColor))
	}
}

func (av *AboutView) publishSelection(row int) {
	idx := row - 1
	if idx < 0 || idx >= len(av.rows) {
		return
	}
	av.bus.Publish(bus.KindAboutSelect, av.rows[idx].key)
}

package ui

import (
	"fmt"
	"strings"

	"github.com/rivo/tview"
)

// maxMenuRows caps the menu height; overflow hints wrap into columns.
const maxMenuRows = 6

// Menu displays keyboard shortcut hints in up to two columns.
type Menu struct {
	*tview.TextView
	theme *Theme
}

// NewMenu creates a new menu hint bar.
func NewMenu(theme *Theme) *Menu {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetBorderPadding(0, 0, 2, 0)

	return &Menu{
		TextView: tv,
		theme:    theme,
	}
}

// Update renders menu hints row by row, wrapping into a second column
// when there are more hints than rows.
func (m *Menu) Update(hints []MenuHint) {
	m.Clear()

	keyColor := ColorName(m.theme.MenuKeyColor)
	numColor := ColorName(m.theme.NumericKeyColor)

	rows := len(hints)
	if rows > maxMenuRows {
		rows = maxMenuRows
	}
	for r := 0; r < rows; r++ {
		var cells []string
		for i := r; i < len(hints); i += maxMenuRows {
			h := hints[i]
			kc := keyColor
			if h.Numeric {
				kc = numColor
			}
			cells = append(cells, fmt.Sprintf("[%s::b]%-8s[-:-:-] %-18s", kc, "<"+h.Key+">", h.Description))
		}
		_, _ = fmt.Fprintf(m, "%s\n", strings.TrimRight(strings.Join(cells, " "), " "))
	}
}

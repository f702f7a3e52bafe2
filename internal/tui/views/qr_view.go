package views

import (
	"fmt"
	"strings"

	"github.com/rivo/tview"
	qrcode "github.com/skip2/go-qrcode"
	"msgr/internal/model"
	"msgr/internal/tui/ui"
)

// QRView renders a contact's vCard as a scannable QR code, so a number
// on screen can be added to a phone by pointing its camera at the
// terminal.
type QRView struct {
	*tview.TextView
	theme *ui.Theme
}

// NewQRView creates the contact QR view.
func NewQRView(theme *ui.Theme) *QRView {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTextColor(theme.FgColor)
	tv.SetTitle(" Contact Card ")
	tv.SetTitleColor(theme.TitleColor)

	return &QRView{
		TextView: tv,
		theme:    theme,
	}
}

// Name implements Component.
func (qv *QRView) Name() string { return "contact card" }

// Init implements Component.
func (qv *QRView) Init() {}

// Start implements Component.
func (qv *QRView) Start() {}

// Stop implements Component.
func (qv *QRView) Stop() {}

// Primitive implements Component.
func (qv *QRView) Primitive() tview.Primitive { return qv.TextView }

// Hints implements Component.
func (qv *QRView) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Esc", Description: "Back"},
	}
}

// ShowContact renders the contact's vCard QR plus its numbers.
func (qv *QRView) ShowContact(c model.Contact) {
	qv.Clear()
	qv.SetTitle(fmt.Sprintf(" %s ", tview.Escape(sanitizeForTerminal(c.Name))))

	numbers := make([]string, 0, len(c.Numbers))
	for _, n := range c.Numbers {
		numbers = append(numbers, fmt.Sprintf("%s (%s)", n.Address, n.Type))
	}

	_, _ = fmt.Fprintf(qv, "\n  Scan to add [::b]%s[-:-:-] to a phone:\n\n%s\n  [::d]%s[-:-:-]",
		tview.Escape(sanitizeForTerminal(c.Name)),
		renderQR(c.VCard()),
		tview.Escape(strings.Join(numbers, ", ")))
}

// ShowAddress renders a bare number with no address book entry behind
// it.
func (qv *QRView) ShowAddress(address string) {
	qv.ShowContact(model.Contact{
		Name:    address,
		Numbers: []model.ContactNumber{{Address: address, Type: "Other"}},
	})
}

// renderQR converts a string to a compact ASCII QR code using Unicode
// half-block characters, two bitmap rows per terminal line.
func renderQR(content string) string {
	qr, err := qrcode.New(content, qrcode.Low)
	if err != nil {
		return "  (QR generation failed: " + err.Error() + ")"
	}
	qr.DisableBorder = false

	bitmap := qr.Bitmap()
	rows := len(bitmap)
	cols := 0
	if rows > 0 {
		cols = len(bitmap[0])
	}

	var sb strings.Builder

	for y := 0; y < rows; y += 2 {
		sb.WriteString("  ")
		for x := 0; x < cols; x++ {
			top := bitmap[y][x]
			bot := false
			if y+1 < rows {
				bot = bitmap[y+1][x]
			}
			switch {
			case top && bot:
				sb.WriteRune('\u2588') // █
			case top && !bot:
				sb.WriteRune('\u2580') // ▀
			case !top && bot:
				sb.WriteRune('\u2584') // ▄
			default:
				sb.WriteRune(' ')
			}
		}
		sb.WriteRune('\n')
	}

	return sb.String()
}

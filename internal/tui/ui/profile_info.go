package ui

import (
	"fmt"
	"time"

	"github.com/rivo/tview"
)

// ProfileData holds the store counters shown in the header.
type ProfileData struct {
	Profile       string
	Conversations int
	Messages      int
	Contacts      int
	Unread        int
	LastBackup    time.Time
}

// ProfileInfo displays profile metadata in the header.
type ProfileInfo struct {
	*tview.TextView
	theme *Theme
}

// NewProfileInfo creates a new profile info panel.
func NewProfileInfo(theme *Theme) *ProfileInfo {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetBorderPadding(0, 0, 1, 1)

	return &ProfileInfo{
		TextView: tv,
		theme:    theme,
	}
}

// Update renders the profile counters.
func (pi *ProfileInfo) Update(data *ProfileData) {
	pi.Clear()
	if data == nil {
		return
	}

	fgColor := ColorName(pi.theme.FgColor)
	counterColor := ColorName(pi.theme.CounterColor)
	unreadColor := ColorName(pi.theme.UnreadColor)

	backup := "never"
	if !data.LastBackup.IsZero() {
		backup = data.LastBackup.Format("2006-01-02 15:04")
	}

	uc := counterColor
	if data.Unread > 0 {
		uc = unreadColor
	}

	text := fmt.Sprintf(
		"[%s::b]Profile:[-:-:-]  [%s]%s[-]\n"+
			"[%s::b]Threads:[-:-:-]  [%s]%d[-]\n"+
			"[%s::b]Messages:[-:-:-] [%s]%d[-]\n"+
			"[%s::b]Contacts:[-:-:-] [%s]%d[-]\n"+
			"[%s::b]Unread:[-:-:-]   [%s]%d[-]\n"+
			"[%s::b]Backup:[-:-:-]   [%s]%s[-]",
		fgColor, counterColor, data.Profile,
		fgColor, counterColor, data.Conversations,
		fgColor, counterColor, data.Messages,
		fgColor, counterColor, data.Contacts,
		fgColor, uc, data.Unread,
		fgColor, counterColor, backup,
	)

	_, _ = fmt.Fprint(pi, text)
}

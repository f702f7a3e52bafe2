package views

import (
	"fmt"
	"time"

	"github.com/rivo/tview"
)

// StatusBar displays the profile, the archive job state and a clock.
type StatusBar struct {
	*tview.TextView
	profile string
	job     string
}

// NewStatusBar creates the bottom status bar.
func NewStatusBar(profile string) *StatusBar {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(tview.Styles.MoreContrastBackgroundColor)

	sb := &StatusBar{TextView: tv, profile: profile, job: "IDLE"}
	sb.render()
	return sb
}

// SetJobState updates the archive job indicator.
func (sb *StatusBar) SetJobState(state string) {
	sb.job = state
	sb.render()
}

// Tick re-renders the clock.
func (sb *StatusBar) Tick() {
	sb.render()
}

func (sb *StatusBar) render() {
	sb.Clear()

	job := sb.job
	if job != "IDLE" {
		job = fmt.Sprintf("[orange]%s[-]", job)
	}

	_, _ = fmt.Fprintf(sb, " [::b]%s[-:-:-] | %s | %s", sb.profile, job, time.Now().Format("15:04"))
}

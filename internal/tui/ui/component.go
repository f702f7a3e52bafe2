package ui

import "github.com/rivo/tview"

// MenuHint describes a keyboard shortcut for display in the menu bar.
type MenuHint struct {
	Key         string
	Description string
	Numeric     bool // true for 0-9 shortcuts (displayed in a different color)
}

// Component is the lifecycle interface for all TUI views. The Pages
// navigator calls Start when a component becomes the top of the stack
// and Stop when it leaves it, so views scope their subscriptions and
// timers between the two.
type Component interface {
	Name() string
	Init()
	Start()
	Stop()
	Hints() []MenuHint
	Primitive() tview.Primitive
}

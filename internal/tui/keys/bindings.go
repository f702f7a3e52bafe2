// Package keys maps terminal key events to named actions with
// global and per-view scopes.
package keys

import (
	"github.com/gdamore/tcell/v2"
	"msgr/internal/tui/ui"
)

// Action represents a keybinding action.
type Action struct {
	Key         tcell.Key
	Rune        rune
	Description string
	Handler     func()
	Visible     bool
}

// Matches returns true if the event matches this action.
func (a *Action) Matches(ev *tcell.EventKey) bool {
	if a.Key != tcell.KeyRune {
		return ev.Key() == a.Key
	}
	return ev.Key() == tcell.KeyRune && ev.Rune() == a.Rune
}

// Label returns the display form of the action's key.
func (a *Action) Label() string {
	if a.Key != tcell.KeyRune {
		return tcell.KeyNames[a.Key]
	}
	return string(a.Rune)
}

// Registry holds keybindings organized by scope. Registration order is
// preserved so menu hints render stably.
type Registry struct {
	global map[string]*Action
	views  map[string]map[string]*Action
	order  map[string][]string
}

const globalScope = ""

// NewRegistry creates a new keybinding registry.
func NewRegistry() *Registry {
	return &Registry{
		global: make(map[string]*Action),
		views:  make(map[string]map[string]*Action),
		order:  make(map[string][]string),
	}
}

// AddGlobal registers a global keybinding.
func (r *Registry) AddGlobal(name string, action *Action) {
	if _, dup := r.global[name]; !dup {
		r.order[globalScope] = append(r.order[globalScope], name)
	}
	r.global[name] = action
}

// AddView registers a view-specific keybinding.
func (r *Registry) AddView(view, name string, action *Action) {
	if r.views[view] == nil {
		r.views[view] = make(map[string]*Action)
	}
	if _, dup := r.views[view][name]; !dup {
		r.order[view] = append(r.order[view], name)
	}
	r.views[view][name] = action
}

// Hints returns visible keybindings for a view, view-scoped first then
// global, each scope in registration order.
func (r *Registry) Hints(view string) []ui.MenuHint {
	var hints []ui.MenuHint
	for _, name := range r.order[view] {
		if a := r.views[view][name]; a != nil && a.Visible {
			hints = append(hints, ui.MenuHint{Key: a.Label(), Description: a.Description})
		}
	}
	for _, name := range r.order[globalScope] {
		if a := r.global[name]; a != nil && a.Visible {
			hints = append(hints, ui.MenuHint{Key: a.Label(), Description: a.Description})
		}
	}
	return hints
}

// GlobalHints returns only the visible global bindings, for menus that
// render view hints from the component itself.
func (r *Registry) GlobalHints() []ui.MenuHint {
	return r.Hints(globalScope)
}

// HandleEvent dispatches a key event to the matching action in the
// given view. View bindings shadow global ones. Returns true if a
// handler matched.
func (r *Registry) HandleEvent(view string, ev *tcell.EventKey) bool {
	if viewBindings, ok := r.views[view]; ok {
		for _, a := range viewBindings {
			if a.Matches(ev) {
				a.Handler()
				return true
			}
		}
	}
	for _, a := range r.global {
		if a.Matches(ev) {
			a.Handler()
			return true
		}
	}
	return false
}

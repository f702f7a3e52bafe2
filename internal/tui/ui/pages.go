package ui

import "github.com/rivo/tview"

// Pages is a stack-based page navigator wrapping tview.Pages. Views
// register as Components; Push starts the incoming component and Pop
// stops the outgoing one, so a view's subscriptions live exactly as
// long as its place on the stack. Stack changes fire the onChange
// callback for crumb and menu updates.
type Pages struct {
	*tview.Pages
	components map[string]Component
	stack      []string
	onChange   func(stack []string)
}

// NewPages creates an empty page navigator.
func NewPages() *Pages {
	return &Pages{
		Pages:      tview.NewPages(),
		components: make(map[string]Component),
	}
}

// Add registers a component, initializes it and adds its primitive as
// a hidden page.
func (p *Pages) Add(c Component) {
	c.Init()
	p.components[c.Name()] = c
	p.AddPage(c.Name(), c.Primitive(), true, false)
}

// SetOnChange sets a callback that fires when the stack changes.
func (p *Pages) SetOnChange(fn func(stack []string)) {
	p.onChange = fn
}

// Push shows the named component on top of the stack and starts it.
func (p *Pages) Push(name string) {
	if _, ok := p.components[name]; !ok {
		return
	}
	if len(p.stack) > 0 {
		p.HidePage(p.stack[len(p.stack)-1])
	}
	p.stack = append(p.stack, name)
	p.ShowPage(name)
	p.SendToFront(name)
	p.components[name].Start()
	p.notify()
}

// Pop stops and removes the top component and shows the previous one.
// Returns the name of the popped page, or empty if the stack is empty.
func (p *Pages) Pop() string {
	if len(p.stack) == 0 {
		return ""
	}
	top := p.stack[len(p.stack)-1]
	p.components[top].Stop()
	p.HidePage(top)
	p.stack = p.stack[:len(p.stack)-1]
	if len(p.stack) > 0 {
		current := p.stack[len(p.stack)-1]
		p.ShowPage(current)
		p.SendToFront(current)
	}
	p.notify()
	return top
}

// Top returns the active component, or nil when the stack is empty.
func (p *Pages) Top() Component {
	if len(p.stack) == 0 {
		return nil
	}
	return p.components[p.stack[len(p.stack)-1]]
}

// Current returns the name of the current (top) page.
func (p *Pages) Current() string {
	if len(p.stack) == 0 {
		return ""
	}
	return p.stack[len(p.stack)-1]
}

// Stack returns a copy of the current page stack.
func (p *Pages) Stack() []string {
	s := make([]string, len(p.stack))
	copy(s, p.stack)
	return s
}

// Depth returns the current stack depth.
func (p *Pages) Depth() int {
	return len(p.stack)
}

// Reset stops everything on the stack and shows only the given page.
func (p *Pages) Reset(name string) {
	for i := len(p.stack) - 1; i >= 0; i-- {
		p.components[p.stack[i]].Stop()
		p.HidePage(p.stack[i])
	}
	p.stack = nil
	p.Push(name)
}

func (p *Pages) notify() {
	if p.onChange != nil {
		p.onChange(p.Stack())
	}
}

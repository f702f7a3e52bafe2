package views

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"msgr/internal/store"
	"msgr/internal/tui/ui"
)

// SearchView runs full-text queries over the message archive.
type SearchView struct {
	*tview.Flex
	theme    *ui.Theme
	input    *tview.InputField
	results  *tview.Table
	data     []store.SearchResult
	titleFor func(conversationID int64) string
	onQuery  func(query string)
	onOpen   func(conversationID int64)
	onCancel func()
}

// NewSearchView creates the search view.
func NewSearchView(theme *ui.Theme) *SearchView {
	input := tview.NewInputField().
		SetLabel(" Search: ").
		SetFieldWidth(0)
	input.SetBorderColor(theme.BorderColor)
	input.SetBackgroundColor(theme.BgColor)
	input.SetFieldBackgroundColor(theme.BgColor)
	input.SetFieldTextColor(theme.FgColor)
	input.SetLabelColor(theme.MenuKeyColor)

	results := tview.NewTable().
		SetSelectable(true, false).
		SetBorders(false).
		SetFixed(1, 0)
	results.SetBorder(true)
	results.SetBorderColor(theme.BorderColor)
	results.SetBackgroundColor(theme.BgColor)
	results.SetTitle(" Results ")
	results.SetTitleColor(theme.TitleColor)
	results.SetSelectedStyle(tcell.StyleDefault.
		Foreground(theme.TableCursorFg).
		Background(theme.TableCursorBg))

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(input, 1, 0, true).
		AddItem(results, 0, 1, false)

	sv := &SearchView{
		Flex:    flex,
		theme:   theme,
		input:   input,
		results: results,
	}

	input.SetDoneFunc(func(key tcell.Key) {
		switch key {
		case tcell.KeyEnter:
			if sv.onQuery != nil {
				sv.onQuery(input.GetText())
			}
		case tcell.KeyEscape:
			if sv.onCancel != nil {
				sv.onCancel()
			}
		}
	})
	results.SetSelectedFunc(func(row, col int) {
		if sv.onOpen == nil {
			return
		}
		if r, ok := sv.selected(row); ok {
			sv.onOpen(r.Message.ConversationID)
		}
	})

	return sv
}

// Name implements Component.
func (sv *SearchView) Name() string { return "search" }

// Init implements Component.
func (sv *SearchView) Init() {}

// Start implements Component.
func (sv *SearchView) Start() {}

// Stop clears stale results when the view leaves the stack.
func (sv *SearchView) Stop() {
	sv.input.SetText("")
}

// Primitive implements Component.
func (sv *SearchView) Primitive() tview.Primitive { return sv.Flex }

// Hints implements Component.
func (sv *SearchView) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Enter", Description: "Search / open"},
		{Key: "Tab", Description: "Switch focus"},
		{Key: "Esc", Description: "Back"},
	}
}

// SetOnQuery sets the callback when a query is submitted.
func (sv *SearchView) SetOnQuery(fn func(query string)) {
	sv.onQuery = fn
}

// SetOnOpen sets the callback when a result row is chosen.
func (sv *SearchView) SetOnOpen(fn func(conversationID int64)) {
	sv.onOpen = fn
}

// SetOnCancel sets the callback when the query field is abandoned.
func (sv *SearchView) SetOnCancel(fn func()) {
	sv.onCancel = fn
}

// SetTitleResolver wires thread title lookup for the results table.
func (sv *SearchView) SetTitleResolver(fn func(conversationID int64) string) {
	sv.titleFor = fn
}

// Update refreshes search results.
func (sv *SearchView) Update(results []store.SearchResult) {
	sv.data = results
	sv.results.Clear()

	headers := []string{" THREAD", " MATCH", " TIME"}
	for col, h := range headers {
		sv.results.SetCell(0, col, tview.NewTableCell(h).
			SetSelectable(false).
			SetTextColor(sv.theme.TableHeaderFg).
			SetBackgroundColor(sv.theme.TableHeaderBg).
			SetAttributes(tcell.AttrBold))
	}

	for i, r := range results {
		row := i + 1
		title := ""
		if sv.titleFor != nil {
			title = sv.titleFor(r.Message.ConversationID)
		}
		sv.results.SetCell(row, 0, tview.NewTableCell(" "+tview.Escape(sanitizeForTerminal(truncateCell(title, 24)))).SetMaxWidth(25).SetTextColor(sv.theme.FgColor))
		sv.results.SetCell(row, 1, tview.NewTableCell(" "+tview.Escape(sanitizeForTerminal(r.Snippet))).SetExpansion(1).SetTextColor(sv.theme.FgColor))
		sv.results.SetCell(row, 2, tview.NewTableCell(" "+formatTimestamp(r.Message.Date)).SetMaxWidth(12).SetTextColor(sv.theme.FgColor))
	}

	sv.results.SetTitle(fmt.Sprintf(" Results (%d) ", len(results)))
}

func (sv *SearchView) selected(row int) (store.SearchResult, bool) {
	idx := row - 1
	if idx < 0 || idx >= len(sv.data) {
		return store.SearchResult{}, false
	}
	return sv.data[idx], true
}

// SelectedResult returns the highlighted search hit.
func (sv *SearchView) SelectedResult() (store.SearchResult, bool) {
	row, _ := sv.results.GetSelection()
	return sv.selected(row)
}

// Input returns the query field, for focus management.
func (sv *SearchView) Input() *tview.InputField {
	return sv.input
}

// Results returns the results table, for focus management.
func (sv *SearchView) Results() *tview.Table {
	return sv.results
}

package views

import (
	"fmt"
	"path/filepath"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"msgr/internal/backup"
	"msgr/internal/tui/ui"
)

// BackupView lists archive files and shows the running job's progress.
type BackupView struct {
	*tview.Flex
	theme    *ui.Theme
	progress *tview.TextView
	archives *tview.Table
	infos    []backup.Info
}

// NewBackupView creates the backup management view.
func NewBackupView(theme *ui.Theme) *BackupView {
	progress := tview.NewTextView().
		SetDynamicColors(true)
	progress.SetBackgroundColor(theme.BgColor)
	progress.SetBorderPadding(0, 0, 1, 0)

	archives := tview.NewTable().
		SetSelectable(true, false).
		SetBorders(false).
		SetFixed(1, 0)
	archives.SetBorder(true)
	archives.SetBorderColor(theme.BorderColor)
	archives.SetBackgroundColor(theme.BgColor)
	archives.SetTitle(" Backups ")
	archives.SetTitleColor(theme.TitleColor)
	archives.SetSelectedStyle(tcell.StyleDefault.
		Foreground(theme.TableCursorFg).
		Background(theme.TableCursorBg))

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(progress, 1, 0, false).
		AddItem(archives, 0, 1, true)

	return &BackupView{
		Flex:     flex,
		theme:    theme,
		progress: progress,
		archives: archives,
	}
}

// Name implements Component.
func (bv *BackupView) Name() string { return "backups" }

// Init implements Component.
func (bv *BackupView) Init() {}

// Start implements Component.
func (bv *BackupView) Start() {}

// Stop implements Component.
func (bv *BackupView) Stop() {}

// Primitive implements Component.
func (bv *BackupView) Primitive() tview.Primitive { return bv.Flex }

// Hints implements Component.
func (bv *BackupView) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "b", Description: "Back up now"},
		{Key: "r", Description: "Restore selected"},
		{Key: "Esc", Description: "Back"},
	}
}

// SetProgress replaces the progress line. An empty string clears it.
func (bv *BackupView) SetProgress(text string) {
	bv.progress.Clear()
	if text == "" {
		return
	}
	_, _ = fmt.Fprintf(bv.progress, "[%s::b]%s[-:-:-]", ui.ColorName(bv.theme.UnreadColor), tview.Escape(text))
}

// Update refreshes the archive table, newest first.
func (bv *BackupView) Update(infos []backup.Info) {
	bv.infos = infos
	bv.archives.Clear()

	headers := []struct {
		text string
		exp  int
	}{
		{" ARCHIVE", 2},
		{" SIZE", 0},
		{" MODIFIED", 1},
	}
	for col, h := range headers {
		bv.archives.SetCell(0, col, tview.NewTableCell(h.text).
			SetSelectable(false).
			SetTextColor(bv.theme.TableHeaderFg).
			SetBackgroundColor(bv.theme.TableHeaderBg).
			SetAttributes(tcell.AttrBold).
			SetExpansion(h.exp))
	}

	for i, info := range infos {
		row := i + 1
		bv.archives.SetCell(row, 0, tview.NewTableCell(" "+filepath.Base(info.Path)).SetExpansion(2).SetTextColor(bv.theme.FgColor))
		bv.archives.SetCell(row, 1, tview.NewTableCell(" "+formatSize(info.Size)).SetExpansion(0).SetTextColor(bv.theme.FgColor).SetAlign(tview.AlignRight))
		bv.archives.SetCell(row, 2, tview.NewTableCell(" "+info.ModTime.Format("2006-01-02 15:04")).SetExpansion(1).SetTextColor(bv.theme.FgColor))
	}

	bv.archives.SetTitle(fmt.Sprintf(" Backups (%d) ", len(infos)))
}

// SelectedPath returns the archive path of the highlighted row.
func (bv *BackupView) SelectedPath() (string, bool) {
	row, _ := bv.archives.GetSelection()
	idx := row - 1
	if idx < 0 || idx >= len(bv.infos) {
		return "", false
	}
	return bv.infos[idx].Path, true
}

func formatSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

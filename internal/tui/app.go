// Package tui is the terminal front end: a k9s-style shell over the
// mirrored message store, with thread, backup, search and about
// screens stacked on a page navigator.
package tui

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"go.uber.org/zap"
	"msgr/internal/analytics"
	"msgr/internal/backup"
	"msgr/internal/bus"
	"msgr/internal/i18n"
	"msgr/internal/perms"
	"msgr/internal/tui/keys"
	"msgr/internal/tui/ui"
	"msgr/internal/tui/views"
)

// aboutComponent couples the about table with its presenter, so the
// selection subscription lives exactly as long as the screen is on the
// stack.
type aboutComponent struct {
	*views.AboutView
	presenter *AboutPresenter
}

func (ac *aboutComponent) Start() {
	ac.AboutView.Start()
	ac.presenter.Bind()
}

func (ac *aboutComponent) Stop() {
	ac.presenter.Stop()
	ac.AboutView.Stop()
}

// App is the TUI application shell.
type App struct {
	app      *tview.Application
	pages    *ui.Pages
	theme    *ui.Theme
	registry *keys.Registry
	flash    *ui.FlashModel

	vm       *ViewModel
	bus      *bus.Bus
	engine   *backup.Engine
	tracker  analytics.Manager
	perms    perms.Manager
	catalog  *i18n.Catalog
	logger   *zap.Logger
	profile  string
	version  string

	logo        *ui.Logo
	profileInfo *ui.ProfileInfo
	menu        *ui.Menu
	crumbs      *ui.Crumbs
	prompt      *ui.Prompt
	flashBar    *ui.FlashBar
	statusBar   *views.StatusBar

	list      *views.ConversationList
	msgView   *views.MessageView
	infoView  *views.ConversationInfo
	qrView    *views.QRView
	backupV   *views.BackupView
	aboutV    *views.AboutView
	searchV   *views.SearchView
	helpV     *views.HelpView
	textPage  *views.TextPage
	presenter *AboutPresenter

	root          *tview.Flex
	promptVisible bool

	ctx    context.Context
	cancel context.CancelFunc
	unsubs []func()
}

// NewApp assembles the TUI over an opened store.
func NewApp(profile, version string, s Store, b *bus.Bus, engine *backup.Engine, tracker analytics.Manager, pm perms.Manager, catalog *i18n.Catalog, logger *zap.Logger) *App {
	ctx, cancel := context.WithCancel(context.Background())
	theme := ui.DefaultTheme()

	a := &App{
		app:      tview.NewApplication(),
		pages:    ui.NewPages(),
		theme:    theme,
		registry: keys.NewRegistry(),
		flash:    ui.NewFlashModel(),
		vm:       NewViewModel(s, profile),
		bus:      b,
		engine:   engine,
		tracker:  tracker,
		perms:    pm,
		catalog:  catalog,
		logger:   logger,
		profile:  profile,
		version:  version,
		ctx:      ctx,
		cancel:   cancel,
	}

	a.logo = ui.NewLogo(theme)
	a.profileInfo = ui.NewProfileInfo(theme)
	a.menu = ui.NewMenu(theme)
	a.crumbs = ui.NewCrumbs(theme, profile)
	a.prompt = ui.NewPrompt(theme)
	a.flashBar = ui.NewFlashBar(theme)
	a.statusBar = views.NewStatusBar(profile)

	a.list = views.NewConversationList(theme)
	a.msgView = views.NewMessageView(theme)
	a.infoView = views.NewConversationInfo(theme)
	a.qrView = views.NewQRView(theme)
	a.backupV = views.NewBackupView(theme)
	a.aboutV = views.NewAboutView(theme, b, version)
	a.searchV = views.NewSearchView(theme)
	a.helpV = views.NewHelpView(theme)
	a.textPage = views.NewTextPage(theme)
	a.presenter = NewAboutPresenter(b, a, version, logger)

	a.setupPages()
	a.setupBindings()
	a.setupCallbacks()
	a.setupLayout()

	return a
}

func (a *App) setupPages() {
	a.pages.Add(a.list)
	a.pages.Add(a.msgView)
	a.pages.Add(a.infoView)
	a.pages.Add(a.qrView)
	a.pages.Add(a.backupV)
	a.pages.Add(&aboutComponent{AboutView: a.aboutV, presenter: a.presenter})
	a.pages.Add(a.searchV)
	a.pages.Add(a.helpV)
	a.pages.Add(a.textPage)

	a.pages.SetOnChange(func(stack []string) {
		a.crumbs.Update(stack)
		top := a.pages.Top()
		if top == nil {
			return
		}
		a.menu.Update(append(top.Hints(), a.registry.GlobalHints()...))
		a.app.SetFocus(top.Primitive())
		a.tracker.Track("screen_view", analytics.P("screen", top.Name()))
	})
}

func (a *App) setupBindings() {
	a.registry.AddGlobal("command", &keys.Action{
		Rune: ':', Key: tcell.KeyRune,
		Description: "Command", Visible: true,
		Handler: func() { a.showPrompt(ui.PromptCommand) },
	})
	a.registry.AddGlobal("search", &keys.Action{
		Rune: 's', Key: tcell.KeyRune,
		Description: "Search", Visible: true,
		Handler: func() { a.pushOnce("search") },
	})
	a.registry.AddGlobal("backups", &keys.Action{
		Rune: 'b', Key: tcell.KeyRune,
		Description: "Backups", Visible: true,
		Handler: func() { a.showBackups() },
	})
	a.registry.AddGlobal("about", &keys.Action{
		Rune: 'a', Key: tcell.KeyRune,
		Description: "About", Visible: true,
		Handler: func() { a.pushOnce("about") },
	})
	a.registry.AddGlobal("help", &keys.Action{
		Rune: '?', Key: tcell.KeyRune,
		Description: "Help", Visible: true,
		Handler: func() { a.pushOnce("help") },
	})
	a.registry.AddGlobal("quit", &keys.Action{
		Rune: 'q', Key: tcell.KeyRune,
		Description: "Quit", Visible: true,
		Handler: func() { a.Stop() },
	})

	a.registry.AddView("chats", "filter", &keys.Action{
		Rune: '/', Key: tcell.KeyRune,
		Description: "Filter", Visible: false,
		Handler: func() { a.showPrompt(ui.PromptFilter) },
	})
	a.registry.AddView("chats", "details", &keys.Action{
		Rune: 'i', Key: tcell.KeyRune,
		Description: "Details", Visible: false,
		Handler: func() {
			if id, ok := a.list.SelectedID(); ok {
				a.showInfo(id)
			}
		},
	})
	a.registry.AddView("chats", "clear filter", &keys.Action{
		Rune: '0', Key: tcell.KeyRune,
		Description: "Show all", Visible: false,
		Handler: func() { a.list.ClearFilter() },
	})
	for i := 1; i <= 9; i++ {
		n := i
		a.registry.AddView("chats", "jump "+string(rune('0'+n)), &keys.Action{
			Rune: rune('0' + n), Key: tcell.KeyRune,
			Description: "Jump", Visible: false,
			Handler: func() {
				if id, ok := a.list.IDByIndex(n); ok {
					a.openThread(id)
				}
			},
		})
	}

	a.registry.AddView("thread", "compose", &keys.Action{
		Rune: 'i', Key: tcell.KeyRune,
		Description: "Edit draft", Visible: false,
		Handler: func() { a.app.SetFocus(a.msgView.Composer()) },
	})
	a.registry.AddView("thread", "details", &keys.Action{
		Rune: 'd', Key: tcell.KeyRune,
		Description: "Details", Visible: false,
		Handler: func() {
			if conv, ok := a.vm.Active(); ok {
				a.showInfo(conv.ID)
			}
		},
	})

	a.registry.AddView("info", "contact card", &keys.Action{
		Rune: 'v', Key: tcell.KeyRune,
		Description: "Contact QR", Visible: false,
		Handler: func() { a.showContactQR() },
	})

	a.registry.AddView("backups", "run", &keys.Action{
		Rune: 'b', Key: tcell.KeyRune,
		Description: "Back up now", Visible: false,
		Handler: func() { a.runBackup() },
	})
	a.registry.AddView("backups", "restore", &keys.Action{
		Rune: 'r', Key: tcell.KeyRune,
		Description: "Restore", Visible: false,
		Handler: func() {
			if path, ok := a.backupV.SelectedPath(); ok {
				a.runRestore(path)
			} else {
				a.flash.Warn("no archive selected")
			}
		},
	})

	a.registry.AddView("search", "focus query", &keys.Action{
		Key:         tcell.KeyTab,
		Description: "Switch focus", Visible: false,
		Handler: func() { a.app.SetFocus(a.searchV.Input()) },
	})
}

func (a *App) setupCallbacks() {
	a.list.SetOnOpen(func(id int64) { a.openThread(id) })

	a.msgView.SetOnDraft(func(text string) {
		if err := a.vm.SaveDraft(text); err != nil {
			a.flash.Err(err)
			return
		}
		if text == "" {
			a.flash.Info("draft cleared")
		} else {
			a.flash.Info("draft saved")
		}
		a.app.SetFocus(a.msgView.History())
		a.refreshChats()
	})
	a.msgView.SetOnComposerCancel(func() {
		a.app.SetFocus(a.msgView.History())
	})

	a.searchV.SetTitleResolver(a.vm.ConversationTitle)
	a.searchV.SetOnQuery(func(query string) { a.runSearch(query) })
	a.searchV.SetOnOpen(func(conversationID int64) { a.openThread(conversationID) })
	a.searchV.SetOnCancel(func() { a.popPage() })

	a.prompt.SetOnSubmit(func(mode ui.PromptMode, text string) {
		a.hidePrompt()
		switch mode {
		case ui.PromptCommand:
			a.runCommand(ParseCommand(text))
		case ui.PromptFilter:
			a.list.SetFilter(text)
		}
	})
	a.prompt.SetOnChange(func(text string) {
		a.list.SetFilter(text)
	})
	a.prompt.SetOnCancel(func() {
		if a.prompt.Mode() == ui.PromptFilter {
			a.list.ClearFilter()
		}
		a.hidePrompt()
	})
}

func (a *App) setupLayout() {
	header := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(a.profileInfo, 0, 1, false).
		AddItem(a.menu, 0, 2, false).
		AddItem(a.logo, 20, 0, false)

	a.root = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(header, 6, 0, false).
		AddItem(a.crumbs, 1, 0, false).
		AddItem(a.pages, 0, 1, true).
		AddItem(a.prompt, 0, 0, false).
		AddItem(a.flashBar, 1, 0, false).
		AddItem(a.statusBar, 1, 0, false)

	a.app.SetRoot(a.root, true)

	a.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		// Text inputs consume their own keys, including Escape.
		if _, ok := a.app.GetFocus().(*tview.InputField); ok {
			return event
		}

		if event.Key() == tcell.KeyEscape {
			if a.promptVisible {
				a.hidePrompt()
			} else {
				a.popPage()
			}
			return nil
		}

		if a.registry.HandleEvent(a.pages.Current(), event) {
			return nil
		}
		return event
	})
}

// Run loads the initial snapshot, wires the bus and runs the event
// loop until Stop.
func (a *App) Run() error {
	a.tracker.Track("app_open", analytics.P("profile", a.profile))
	a.statusBar.SetJobState(string(a.engine.State()))
	a.pages.Push("chats")

	if !a.perms.HasReadSMS() {
		a.flash.Warn("read permission not granted; the mirror may be stale")
	}

	a.subscribeBus()
	a.watchFlash()
	go a.refreshLoop()
	go func() {
		if err := a.vm.Reload(); err != nil {
			a.logger.Error("initial load failed", zap.Error(err))
			a.flash.Err(err)
			return
		}
		a.app.QueueUpdateDraw(func() { a.refreshChats() })
	}()

	defer a.teardown()
	return a.app.Run()
}

// Stop ends the event loop; safe from any goroutine.
func (a *App) Stop() {
	a.app.Stop()
}

func (a *App) teardown() {
	a.cancel()
	for _, unsub := range a.unsubs {
		unsub()
	}
	a.presenter.Stop()
	a.tracker.Track("app_close")
}

// PushText implements Navigator for the about presenter.
func (a *App) PushText(title, body string) {
	a.app.QueueUpdateDraw(func() {
		a.textPage.SetContent(title, body)
		a.pushOnce("document")
	})
}

// Flash implements Navigator for the about presenter.
func (a *App) Flash(msg string) {
	a.flash.Info(msg)
}

// subscribeBus routes engine and store events into the views.
func (a *App) subscribeBus() {
	backupCh, unsubBackup := a.bus.Subscribe("backup.", 64)
	storeCh, unsubStore := a.bus.Subscribe("store.", 8)
	a.unsubs = append(a.unsubs, unsubBackup, unsubStore)

	go func() {
		for {
			select {
			case evt := <-backupCh:
				a.handleBackupEvent(evt)
			case <-storeCh:
				// Restores rebuild threads; refresh everything.
				a.vm.SignalRefresh()
			case <-a.ctx.Done():
				return
			}
		}
	}()
}

func (a *App) handleBackupEvent(evt bus.Event) {
	switch evt.Kind {
	case bus.KindBackupProgress:
		p, ok := evt.Payload.(backup.Progress)
		if !ok {
			return
		}
		label, ok := backup.Label(p, a.catalog)
		if !ok {
			return
		}
		a.app.QueueUpdateDraw(func() { a.backupV.SetProgress(label) })
	case bus.KindBackupStatus:
		sc, ok := evt.Payload.(backup.StatusChange)
		if !ok {
			return
		}
		a.app.QueueUpdateDraw(func() {
			a.statusBar.SetJobState(string(sc.To))
			if sc.To == backup.StateIdle {
				a.backupV.SetProgress("")
			}
		})
	case bus.KindBackupCompleted:
		sum, ok := evt.Payload.(backup.Summary)
		if !ok {
			return
		}
		a.flash.Infof("archive written: %s (%d messages)", filepath.Base(sum.Path), sum.Messages)
		a.vm.SignalRefresh()
		a.refreshBackups()
	case bus.KindBackupFailed:
		msg, ok := evt.Payload.(string)
		if !ok || msg == "" {
			return
		}
		a.flash.Err(errors.New(msg))
	}
}

// watchFlash repaints the flash bar on new messages and schedules the
// repaint that clears it after expiry.
func (a *App) watchFlash() {
	go func() {
		for {
			select {
			case msg := <-a.flash.Watch():
				a.app.QueueUpdateDraw(func() { a.flashBar.Update(&msg) })
				time.AfterFunc(time.Until(msg.Expires)+100*time.Millisecond, func() {
					a.app.QueueUpdateDraw(func() { a.flashBar.Update(a.flash.GetMessage()) })
				})
			case <-a.ctx.Done():
				return
			}
		}
	}()
}

// refreshLoop reloads the store snapshot on a timer and on demand.
func (a *App) refreshLoop() {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
		case <-a.vm.RefreshCh():
		case <-a.ctx.Done():
			return
		}

		if err := a.vm.Reload(); err != nil {
			a.logger.Warn("refresh failed", zap.Error(err))
			continue
		}
		a.app.QueueUpdateDraw(func() {
			a.refreshChats()
			a.statusBar.Tick()
			if a.pages.Current() == "thread" {
				if conv, ok := a.vm.Active(); ok {
					a.msgView.Update(conv, a.vm.Thread())
				}
			}
		})
	}
}

// refreshChats repaints the list and the header counters from the
// current snapshot. Must run on the UI thread.
func (a *App) refreshChats() {
	a.list.Update(a.vm.Conversations())
	data, err := a.vm.ProfileData()
	if err != nil {
		a.logger.Warn("profile counters failed", zap.Error(err))
		return
	}
	a.profileInfo.Update(data)
}

func (a *App) openThread(id int64) {
	go func() {
		if err := a.vm.OpenThread(id); err != nil {
			a.logger.Warn("open thread failed", zap.Int64("conversation", id), zap.Error(err))
			a.flash.Err(err)
			return
		}
		conv, _ := a.vm.Active()
		a.app.QueueUpdateDraw(func() {
			a.msgView.Update(conv, a.vm.Thread())
			a.pushOnce("thread")
			a.refreshChats() // unread badge cleared
		})
	}()
}

func (a *App) showInfo(id int64) {
	for _, c := range a.vm.Conversations() {
		if c.ID == id {
			a.infoView.Update(c)
			a.pushOnce("info")
			return
		}
	}
	if conv, ok := a.vm.Active(); ok && conv.ID == id {
		a.infoView.Update(conv)
		a.pushOnce("info")
	}
}

func (a *App) showContactQR() {
	address, ok := a.infoView.SelectedAddress()
	if !ok {
		a.flash.Warn("no member selected")
		return
	}
	if address == "" {
		a.flash.Warn("member has no address to share")
		return
	}
	contact, err := a.vm.ContactFor(address)
	if err != nil {
		a.flash.Err(err)
		return
	}
	if contact != nil {
		a.qrView.ShowContact(*contact)
	} else {
		a.qrView.ShowAddress(address)
	}
	a.pushOnce("contact card")
}

func (a *App) showBackups() {
	a.reloadBackupTable()
	a.pushOnce("backups")
}

// refreshBackups repaints the archive table from a non-UI goroutine.
func (a *App) refreshBackups() {
	a.app.QueueUpdateDraw(func() { a.reloadBackupTable() })
}

func (a *App) reloadBackupTable() {
	infos, err := a.engine.List()
	if err != nil {
		a.flash.Err(err)
		return
	}
	a.backupV.Update(infos)
}

func (a *App) runBackup() {
	if !a.perms.HasStorage() {
		a.flash.Warn("storage permission not granted")
		return
	}
	a.tracker.Track("backup_run", analytics.P("source", "tui"))
	go func() {
		if _, err := a.engine.Backup(a.ctx); err != nil {
			a.flash.Err(err)
		}
	}()
}

func (a *App) runRestore(path string) {
	if !a.perms.HasStorage() {
		a.flash.Warn("storage permission not granted")
		return
	}
	a.tracker.Track("backup_restore", analytics.P("source", "tui"))
	go func() {
		if _, err := a.engine.Restore(a.ctx, path); err != nil {
			a.flash.Err(err)
		}
	}()
}

func (a *App) runSearch(query string) {
	go func() {
		if err := a.vm.Search(query); err != nil {
			a.flash.Err(err)
			return
		}
		results := a.vm.Results()
		a.tracker.Track("search", analytics.P("hits", len(results)))
		a.app.QueueUpdateDraw(func() {
			a.searchV.Update(results)
			a.app.SetFocus(a.searchV.Results())
		})
	}()
}

func (a *App) runCommand(cmd Command) {
	switch cmd.Name {
	case "quit":
		a.Stop()
	case "help":
		a.pushOnce("help")
	case "search":
		a.pushOnce("search")
		if cmd.Args != "" {
			a.searchV.Input().SetText(cmd.Args)
			a.runSearch(cmd.Args)
		}
	case "backup":
		a.runBackup()
	case "restore":
		if cmd.Args == "" {
			a.flash.Warn("usage: restore <path>")
			return
		}
		a.runRestore(cmd.Args)
	case "about":
		a.pushOnce("about")
	case "":
	default:
		a.flash.Warn("unknown command: " + cmd.Name)
	}
}

// pushOnce pushes a page unless it is already somewhere on the stack,
// so a page never appears twice.
func (a *App) pushOnce(name string) {
	for _, n := range a.pages.Stack() {
		if n == name {
			return
		}
	}
	a.pages.Push(name)
}

func (a *App) popPage() {
	if a.pages.Depth() <= 1 {
		return
	}
	popped := a.pages.Pop()
	if popped == "thread" {
		a.vm.CloseThread()
	}
}

func (a *App) showPrompt(mode ui.PromptMode) {
	a.prompt.Activate(mode)
	a.root.ResizeItem(a.prompt, 3, 0)
	a.promptVisible = true
	a.app.SetFocus(a.prompt)
}

func (a *App) hidePrompt() {
	a.root.ResizeItem(a.prompt, 0, 0)
	a.promptVisible = false
	if top := a.pages.Top(); top != nil {
		a.app.SetFocus(top.Primitive())
	}
}

package tui

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
	"msgr/internal/bus"
	"msgr/internal/tui/views"
)

// Navigator is the surface the about presenter drives.
type Navigator interface {
	PushText(title, body string)
	Flash(msg string)
}

const changelogText = `
  0.4.2
   - restore rebuilds threads by recipient address
   - scheduled backups skip while a job is running

  0.4.1
   - full-text search over the message archive
   - contact vCard QR sharing from thread details

  0.4.0
   - first msgr release: mirrored store, backups, TUI
`

const licensesText = `
  msgr builds on these open source libraries:

   - tview and tcell (MIT)
   - zap (MIT)
   - fx (MIT)
   - go-sqlite3 (MIT)
   - golang-migrate (MIT)
   - go-qrcode (MIT)
   - toml (MIT)
   - lo (MIT)
   - mimetype (MIT)
   - cron (MIT)
   - tablewriter (MIT)
`

// AboutPresenter routes about-row selections from the bus to the
// navigator. Bind subscribes and stores the unsubscribe handle; Stop
// releases it exactly once per binding, so leaving the about screen
// can never tear the subscription down twice, and re-entering it binds
// fresh.
type AboutPresenter struct {
	bus     *bus.Bus
	nav     Navigator
	version string
	logger  *zap.Logger

	mu    sync.Mutex
	unsub func()
	done  chan struct{}
}

// NewAboutPresenter creates an unbound presenter.
func NewAboutPresenter(b *bus.Bus, nav Navigator, version string, logger *zap.Logger) *AboutPresenter {
	return &AboutPresenter{
		bus:     b,
		nav:     nav,
		version: version,
		logger:  logger,
	}
}

// Bind subscribes to selection events and starts dispatching them.
// Binding while already bound is a no-op.
func (p *AboutPresenter) Bind() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.unsub != nil {
		return
	}

	ch, unsub := p.bus.Subscribe(bus.KindAboutSelect, 8)
	done := make(chan struct{})
	p.unsub = unsub
	p.done = done

	go func() {
		for {
			select {
			case evt := <-ch:
				key, _ := evt.Payload.(string)
				p.handle(key)
			case <-done:
				return
			}
		}
	}()
}

// Stop releases the current subscription. Extra calls, including before
// any Bind, do nothing.
func (p *AboutPresenter) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.unsub == nil {
		return
	}
	p.unsub()
	close(p.done)
	p.unsub = nil
	p.done = nil
}

func (p *AboutPresenter) handle(key string) {
	switch key {
	case views.AboutVersion:
		p.nav.Flash(fmt.Sprintf("msgr %s", p.version))
	case views.AboutChangelog:
		p.nav.PushText("Changelog", changelogText)
	case views.AboutLicenses:
		p.nav.PushText("Open Source Licenses", licensesText)
	case views.AboutCopyright:
		p.nav.Flash("Copyright 2026 the msgr authors")
	default:
		p.logger.Debug("unknown about row", zap.String("key", key))
	}
}

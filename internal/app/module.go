// Package app composes a profile's collaborators into the fx graph
// behind the msgr binary: store, event bus, backup engine, analytics
// pipeline and the terminal UI.
package app

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"msgr/internal/analytics"
	"msgr/internal/backup"
	"msgr/internal/bus"
	"msgr/internal/config"
	"msgr/internal/i18n"
	"msgr/internal/lock"
	"msgr/internal/logging"
	"msgr/internal/perms"
	"msgr/internal/profile"
	"msgr/internal/store"
	"msgr/internal/tui"
)

// Version is the release stamped into the about screen, logs and the
// analytics user agent.
const Version = "0.4.2"

// Params holds the resolved profile configuration passed to the fx module.
type Params struct {
	Profile string
}

// Module returns the fx module for the app, composing all providers and lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Module("app",
		fx.Supply(p),
		fx.Provide(
			provideLogger,
			provideConfig,
			provideBus,
			provideStateMachine,
			provideLock,
			provideStore,
			provideCatalog,
			provideAnalytics,
			provideDispatcher,
			providePerms,
			provideEngine,
			provideScheduler,
			provideApp,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideLogger(p Params) (*zap.Logger, error) {
	// No console tee: stray log lines would tear the TUI.
	return logging.New(profile.LogPath(p.Profile), p.Profile, false)
}

func provideConfig(logger *zap.Logger) *config.Config {
	cfg, err := config.Load(profile.ConfigPath())
	if err != nil {
		logger.Info("no config file, using defaults", zap.Error(err))
		return config.Default()
	}
	return cfg
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideStateMachine(b *bus.Bus) *backup.Machine {
	return backup.NewMachine(b)
}

func provideLock(p Params, logger *zap.Logger) (*lock.Lock, error) {
	if err := profile.EnsureDir(p.Profile); err != nil {
		return nil, err
	}
	logger.Info("acquiring profile lock", zap.String("profile", p.Profile))
	l, err := lock.Acquire(profile.Dir(p.Profile))
	if err != nil {
		return nil, err
	}
	logger.Info("profile lock acquired")
	return l, nil
}

func provideStore(p Params, _ *lock.Lock, logger *zap.Logger) (*store.DB, error) {
	dbPath := profile.DBPath(p.Profile)
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}
	result, err := db.Migrate()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if result.Changed {
		logger.Info("migrations applied", zap.Uint("version", result.Version))
	} else {
		logger.Info("migrations up to date", zap.Uint("version", result.Version))
	}
	logger.Info("store initialized", zap.String("path", dbPath))
	return db, nil
}

func provideCatalog(p Params, logger *zap.Logger) (*i18n.Catalog, error) {
	cat, err := i18n.Load(profile.StringsPath(p.Profile))
	if err != nil {
		logger.Warn("string overrides unreadable, using defaults", zap.Error(err))
		return i18n.NewCatalog(), nil
	}
	return cat, nil
}

func provideAnalytics(db *store.DB, cfg *config.Config, logger *zap.Logger) analytics.Manager {
	return analytics.NewManager(db, cfg.Analytics.Enabled, logger)
}

func provideDispatcher(p Params, db *store.DB, logger *zap.Logger) *analytics.Dispatcher {
	sink := analytics.NewFileSink(profile.AnalyticsDir(p.Profile))
	return analytics.NewDispatcher(db, sink, logger)
}

func providePerms(p Params, cfg *config.Config) perms.Manager {
	g := perms.Grants{
		DefaultSMS: cfg.Permissions.DefaultSMS,
		ReadSMS:    cfg.Permissions.ReadSMS,
		SendSMS:    cfg.Permissions.SendSMS,
		Contacts:   cfg.Permissions.Contacts,
		Phone:      cfg.Permissions.Phone,
		Calling:    cfg.Permissions.Calling,
		Storage:    cfg.Permissions.Storage,
	}
	return perms.NewManager(g, profile.Dir(p.Profile))
}

func provideEngine(p Params, db *store.DB, b *bus.Bus, m *backup.Machine, cfg *config.Config, logger *zap.Logger) *backup.Engine {
	return backup.NewEngine(db, b, m, profile.BackupDir(p.Profile), cfg.Backup.Keep, logger)
}

func provideScheduler(engine *backup.Engine, cfg *config.Config, logger *zap.Logger) *backup.Scheduler {
	return backup.NewScheduler(engine, cfg.Backup, logger)
}

func provideApp(p Params, db *store.DB, b *bus.Bus, engine *backup.Engine, mgr analytics.Manager, pm perms.Manager, cat *i18n.Catalog, logger *zap.Logger) *tui.App {
	return tui.NewApp(p.Profile, Version, db, b, engine, mgr, pm, cat, logger)
}

func registerLifecycle(lc fx.Lifecycle, shutdowner fx.Shutdowner, ui *tui.App, db *store.DB, lk *lock.Lock, dispatcher *analytics.Dispatcher, scheduler *backup.Scheduler, mgr analytics.Manager, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			dispatcher.Start(context.Background())

			if err := scheduler.Start(); err != nil {
				return err
			}

			mgr.SetUserProperty("app_version", Version)

			// The UI owns the foreground; when it exits, so does the app.
			go func() {
				if err := ui.Run(); err != nil {
					logger.Error("ui error", zap.Error(err))
				}
				_ = shutdowner.Shutdown()
			}()

			return nil
		},
		OnStop: func(_ context.Context) error {
			ui.Stop()
			scheduler.Stop()
			dispatcher.Stop()
			if err := db.Close(); err != nil {
				logger.Warn("error closing store", zap.Error(err))
			}
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			logger.Info("msgr stopped")
			return nil
		},
	})
}

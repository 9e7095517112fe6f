package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/gameclub/club/bot"
	"github.com/m3rciful/gameclub/club/catalog"
	"github.com/m3rciful/gameclub/club/notify"
	"github.com/m3rciful/gameclub/club/tgbot"
	"github.com/m3rciful/gameclub/core/bootstrap"
	"github.com/m3rciful/gameclub/core/health"
	"github.com/m3rciful/gameclub/core/logger"
	coretelegram "github.com/m3rciful/gameclub/core/telegram"
	"github.com/m3rciful/gameclub/core/telegram/helpers"
	"github.com/m3rciful/gameclub/core/telegram/router"
	"github.com/m3rciful/gameclub/core/telegram/sender"
	"github.com/m3rciful/gameclub/core/telegram/state"
	"github.com/m3rciful/gameclub/core/tracing"
	"github.com/m3rciful/gameclub/migrations"

	tele "gopkg.in/telebot.v4"
)

// App owns every long-lived component of the running bot.
type App struct {
	cfg *Config

	db              *sqlx.DB
	shutdownTracing tracing.ShutdownFunc
	publisher       notify.Publisher

	store       *catalog.Store
	router      *bot.Router
	adapter     *tgbot.Adapter
	broadcaster *tgbot.Broadcaster
	health      *health.Server
}

// Infra carries infrastructure that Bootstrap would otherwise create.
type Infra struct {
	DB              *sqlx.DB
	ShutdownTracing tracing.ShutdownFunc
	Publisher       notify.Publisher
}

// Bootstrap runs the bootstrap pipeline and assembles the application.
func Bootstrap(cfg *Config) (*App, error) {
	if cfg == nil {
		return nil, errors.New("app: nil config")
	}
	ctx := context.Background()
	res, err := bootstrap.Run(ctx, bootstrap.Options{
		Config:     &cfg.Config,
		Database:   cfg.Database,
		Migrations: migrations.FS,
		Modules: bootstrap.Modules{
			Seeders: []bootstrap.Seeder{catalog.Seeder(cfg.Club.SeedFile)},
		},
	})
	if err != nil {
		return nil, err
	}
	pub, err := notify.Open(cfg.Broker)
	if err != nil {
		_ = res.DB.Close()
		_ = res.ShutdownTracing(ctx)
		return nil, fmt.Errorf("app: broker: %w", err)
	}
	return Assemble(cfg, Infra{DB: res.DB, ShutdownTracing: res.ShutdownTracing, Publisher: pub})
}

// Assemble builds the application on top of ready infrastructure.
func Assemble(cfg *Config, infra Infra) (*App, error) {
	if infra.DB == nil {
		return nil, errors.New("app: database is required")
	}
	a := &App{
		cfg:             cfg,
		db:              infra.DB,
		shutdownTracing: infra.ShutdownTracing,
		publisher:       infra.Publisher,
		broadcaster:     &tgbot.Broadcaster{},
	}
	if a.shutdownTracing == nil {
		a.shutdownTracing = func(context.Context) error { return nil }
	}
	if a.publisher == nil {
		a.publisher = notify.Nop{}
	}

	a.store = catalog.New(a.db, catalog.WithPublisher(a.publisher))
	r, err := bot.New(bot.Options{
		Catalog:     a.store,
		Sessions:    state.NewStore(),
		Gate:        bot.NewGate(cfg.Telegram.AdminIDs),
		Broadcaster: a.broadcaster,
		Club:        cfg.Club.Bot(),
	})
	if err != nil {
		return nil, err
	}
	a.router = r
	a.adapter = tgbot.NewAdapter(r)

	if cfg.Health.Listen != "" {
		a.health = health.New(cfg.Health.Listen, map[string]health.Checker{"database": a.store})
	}
	return a, nil
}

// Router exposes the dialogue router.
func (a *App) Router() *bot.Router {
	return a.router
}

// Health returns the probe server, nil when disabled.
func (a *App) Health() *health.Server {
	return a.health
}

// TelegramRunOptions implements cmd.TelegramApp.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reg := a.adapter.Registry()
	routes := append(router.CommandRoutes(reg, a.adapter), router.UpdateRoutes(a.adapter)...)

	return coretelegram.RunOptions{
		Config:   &a.cfg.Config,
		Registry: reg,
		DispatcherOptions: sender.Options{
			Workers:      4,
			QueueSize:    256,
			MaxRetries:   3,
			RetryBackoff: time.Second,
			MaxDuration:  30 * time.Second,
		},
		Middlewares: coretelegram.DefaultMiddlewares(&a.cfg.Config, onRateLimited),
		Routes:      routes,
		OnStart: func(ctx context.Context, rt coretelegram.Runtime) error {
			a.broadcaster.Bind(rt)
			if a.health != nil {
				a.health.Start()
			}
			logger.Info(ctx, logger.CompTelegram, "bot.wired",
				slog.Int("routes", len(routes)),
				slog.Int("admins", len(a.cfg.Telegram.AdminIDs)),
				slog.String("db", a.cfg.Database.DriverName()),
			)
			return nil
		},
		OnStop: func(context.Context, coretelegram.Runtime) error {
			a.broadcaster.Unbind()
			return nil
		},
	}, nil
}

func onRateLimited(c tele.Context) error {
	if c.Callback() != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Too fast, slow down a little."})
	}
	return helpers.SendText(c, "⏳ Too many messages, please wait a moment.", false, nil)
}

// Close releases the probe listener, broker, tracer and database.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.health != nil {
		errs = append(errs, a.health.Shutdown(ctx))
	}
	if a.publisher != nil {
		errs = append(errs, a.publisher.Close())
	}
	if a.shutdownTracing != nil {
		errs = append(errs, a.shutdownTracing(ctx))
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	return errors.Join(errs...)
}

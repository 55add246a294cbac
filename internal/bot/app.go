// Package bot wires the registration and moderation services to Telegram.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/regbot/core/bootstrap"
	"github.com/m3rciful/regbot/core/logger"
	tg "github.com/m3rciful/regbot/core/telegram"
	"github.com/m3rciful/regbot/core/telegram/commands"
	"github.com/m3rciful/regbot/core/telegram/router"
	"github.com/m3rciful/regbot/core/telegram/state"
	"github.com/m3rciful/regbot/internal/chat"
	"github.com/m3rciful/regbot/internal/config"
	"github.com/m3rciful/regbot/internal/moderation"
	"github.com/m3rciful/regbot/internal/notify"
	"github.com/m3rciful/regbot/internal/participant"
	"github.com/m3rciful/regbot/internal/registration"
)

// App is the assembled bot: services, transport and Telegram registry.
type App struct {
	cfg       *config.Config
	db        *sqlx.DB
	transport *Transport
	machine   *registration.Machine
	workflow  *moderation.Workflow
	registry  *tg.Registry
}

// Bootstrap initialises logging and storage for cfg and assembles the App.
func Bootstrap(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, errors.New("bot: nil config")
	}
	res, err := bootstrap.Run(bootstrap.Options{
		Config:     cfg.CoreConfig(),
		Database:   cfg.Database,
		Migrations: participant.Migrations(),
	})
	if err != nil {
		return nil, err
	}
	store, err := participant.NewSQLStore(context.Background(), res.DB)
	if err != nil {
		_ = res.DB.Close()
		return nil, err
	}
	app, err := New(cfg, store)
	if err != nil {
		_ = res.DB.Close()
		return nil, err
	}
	app.db = res.DB
	return app, nil
}

// New assembles the App on top of an existing store.
func New(cfg *config.Config, store participant.Store) (*App, error) {
	if cfg == nil {
		return nil, errors.New("bot: nil config")
	}
	admins := moderation.NewAdminSet(cfg.Telegram.AdminIDs...)
	transport := NewTransport()

	workflow, err := moderation.New(store, admins)
	if err != nil {
		return nil, err
	}
	machine, err := registration.New(registration.Options{
		Store:    store,
		Sessions: state.NewManager[registration.Session](),
		Notifier: &notify.Broadcaster{Recipients: admins.IDs(), Sender: transport},
		Event:    cfg.Event,
		IsAdmin:  admins.Contains,
	})
	if err != nil {
		return nil, err
	}

	a := &App{
		cfg:       cfg,
		transport: transport,
		machine:   machine,
		workflow:  workflow,
	}
	if a.registry, err = a.buildRegistry(); err != nil {
		return nil, err
	}
	if admins.Len() == 0 {
		logger.Warn(logger.Background(), "app", "admins",
			slog.String("status", "skip"),
			slog.String("reason", "no admin ids configured"),
		)
	}
	return a, nil
}

func (a *App) buildRegistry() (*tg.Registry, error) {
	reg := tg.NewRegistry()
	reg.RegisterCommand("/start", commands.Command{
		Handler:     a.onStart,
		Description: "Начать регистрацию",
		Aliases:     []string{"restart"},
	})
	reg.RegisterCommand("/cancel", commands.Command{
		Handler:     a.onCancel,
		Description: "Отменить и начать заново",
	})
	reg.RegisterCommand("/admin", commands.Command{
		Handler:     a.onAdmin,
		Description: "Панель администратора",
		AdminOnly:   true,
	})
	reg.RegisterCommand("/registered", commands.Command{
		Handler:     a.onRegistered,
		Description: "Список зарегистрированных",
		AdminOnly:   true,
	})

	reg.SetCallbackNotFound(a.onStaleButton)
	err := errors.Join(
		reg.RegisterCallback(registration.ActionParticipate, a.onParticipate),
		reg.RegisterCallbacks(a.onModeration, moderation.Actions...),
	)
	if err != nil {
		return nil, fmt.Errorf("bot: register callbacks: %w", err)
	}
	return reg, nil
}

// Registry exposes the command and callback registry.
func (a *App) Registry() *tg.Registry { return a.registry }

// TelegramRunOptions assembles the runtime options for the Telegram runner.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	core := a.cfg.CoreConfig()
	routes := router.CommandRoutes(a.registry, router.CommandRouteOptions{
		IsAdmin:       a.workflow.IsAdmin,
		OnAdminReject: a.onDenied,
	})
	routes = append(routes, router.CallbackRoute(a.registry, router.CallbackOptions{}))
	routes = append(routes, router.MessageRoutes(a, a.registry)...)

	return tg.RunOptions{
		Config:      core,
		Registry:    a.registry,
		Middlewares: tg.DefaultMiddlewares(core, nil),
		Routes:      routes,
		OnStart: func(ctx context.Context, rt tg.Runtime) error {
			a.transport.Bind(rt.Bot)
			logger.Info(ctx, "app", "event",
				slog.String("status", "ok"),
				slog.String("title", a.cfg.Event.Title),
				slog.Int("admins", len(a.cfg.Telegram.AdminIDs)),
			)
			return nil
		},
		OnStop: func(ctx context.Context, rt tg.Runtime) error {
			a.transport.Bind(nil)
			return a.Close()
		},
	}, nil
}

// Close releases the database handle opened by Bootstrap.
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	return err
}

var _ chat.Sender = (*Transport)(nil)

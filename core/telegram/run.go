package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	coreconfig "github.com/m3rciful/regbot/core/config"
	"github.com/m3rciful/regbot/core/logger"
	tghelpers "github.com/m3rciful/regbot/core/telegram/helpers"
	tgsender "github.com/m3rciful/regbot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

const component = "tg"

// Middleware describes a global bot middleware to be registered via bot.Use.
type Middleware struct {
	Name string
	Use  tele.MiddlewareFunc
}

// Route binds a handler to a Telebot endpoint such as tele.OnText or "/start".
type Route struct {
	Endpoint any
	Handler  tele.HandlerFunc
}

// RunOptions controls the behaviour of RunTelegram.
type RunOptions struct {
	Config   *coreconfig.Config
	Registry *Registry

	DispatcherOptions tgsender.Options
	Dispatcher        *tgsender.Dispatcher

	Middlewares []Middleware
	Routes      []Route

	// Offline builds the bot without contacting the Bot API; used by tests.
	Offline bool

	DisableWebhookCleanup   bool
	DisableHelperDispatcher bool

	OnStart func(ctx context.Context, rt Runtime) error
	OnStop  func(ctx context.Context, rt Runtime) error
}

// Runtime exposes runtime components to lifecycle hooks.
type Runtime struct {
	Bot        *tele.Bot
	Dispatcher *tgsender.Dispatcher
	Registry   *Registry
}

// RunTelegram composes and runs a Telegram bot until ctx is done.
func RunTelegram(ctx context.Context, opts RunOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Config == nil {
		return fmt.Errorf("telegram: nil config provided")
	}
	cfg := opts.Config
	reg := opts.Registry
	if reg == nil {
		reg = NewRegistry()
	}

	poller := BuildPoller(PollerOptions{
		RunMode:                cfg.Telegram.RunMode,
		LongPollTimeoutSeconds: cfg.Telegram.LongPollTimeoutSeconds,
		Webhook: WebhookOptions{
			Listen: cfg.Webhook.Listen,
			Port:   cfg.Webhook.Port,
			URL:    cfg.Webhook.URL,
		},
	})

	buildStart := time.Now()
	bot, err := tele.NewBot(tele.Settings{
		Token:   cfg.Telegram.Token,
		Poller:  poller,
		Client:  BuildHTTPClient(),
		Offline: opts.Offline,
		OnError: func(err error, c tele.Context) {
			errCtx := ctx
			if c != nil {
				errCtx = tghelpers.BuildContext(c)
			}
			logger.Error(errCtx, component, "handler.error",
				slog.String("status", "fail"),
				slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			)
		},
	})
	if err != nil {
		return fmt.Errorf("telegram: bot initialization failed: %w", err)
	}
	buildTook := time.Since(buildStart)

	dispatcher := opts.Dispatcher
	if dispatcher == nil {
		dispatcher = tgsender.NewDispatcher(opts.DispatcherOptions)
	}
	useHelperDispatcher := !opts.DisableHelperDispatcher
	if useHelperDispatcher {
		tghelpers.SetDispatcher(dispatcher)
	}
	release := func() {
		dispatcher.Close()
		if useHelperDispatcher {
			tghelpers.SetDispatcher(nil)
		}
	}

	rt := Runtime{Bot: bot, Dispatcher: dispatcher, Registry: reg}

	switch p := poller.(type) {
	case *tele.Webhook:
		logger.Info(ctx, component, "mode",
			slog.String("mode", "webhook"),
			slog.String("listen", p.Listen),
			slog.String("public_url", p.Endpoint.PublicURL),
			slog.Duration("duration", buildTook),
		)
	case *tele.LongPoller:
		logger.Info(ctx, component, "mode",
			slog.String("mode", "polling"),
			slog.Int("timeout_seconds", int(p.Timeout/time.Second)),
			slog.Duration("duration", buildTook),
		)
		if !opts.DisableWebhookCleanup && !opts.Offline {
			// A webhook left behind by an earlier deployment blocks getUpdates.
			if err := bot.RemoveWebhook(false); err != nil {
				logger.Warn(ctx, component, "delete_webhook",
					slog.String("status", "fail"),
					slog.String("err", err.Error()),
				)
			}
		}
	}

	for _, mw := range opts.Middlewares {
		if mw.Use != nil {
			bot.Use(mw.Use)
		}
	}
	for _, route := range opts.Routes {
		if route.Endpoint != nil && route.Handler != nil {
			bot.Handle(route.Endpoint, route.Handler)
		}
	}
	if !opts.Offline {
		InitBotCommands(bot, reg)
	}

	if opts.OnStart != nil {
		if err := opts.OnStart(ctx, rt); err != nil {
			release()
			return err
		}
	}

	runDone := make(chan struct{})
	go func() {
		bot.Start()
		close(runDone)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		bot.Stop()
		<-runDone
		runErr = ctx.Err()
	case <-runDone:
	}

	var stopErr error
	if opts.OnStop != nil {
		stopErr = opts.OnStop(context.WithoutCancel(ctx), rt)
	}
	release()

	switch {
	case stopErr != nil:
		return stopErr
	case runErr != nil && !errors.Is(runErr, context.Canceled):
		return runErr
	}
	return nil
}

package router

import (
	"log/slog"
	"time"

	tg "github.com/m3rciful/regbot/core/telegram"
	"github.com/m3rciful/regbot/core/telegram/callbacks"
	"github.com/m3rciful/regbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// CallbackOptions customises fallback behaviour for callbacks.
type CallbackOptions struct {
	NotFound tele.HandlerFunc
}

// CallbackRoute returns the generic callback endpoint that dispatches
// button presses by key through the registry.
func CallbackRoute(reg *tg.Registry, opts CallbackOptions) tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()
		if c.Callback() == nil {
			return nil
		}

		key, _ := callbacks.Parse(c.Callback())
		name := "callback." + normalizeHandlerName(key)
		extras := []slog.Attr{slog.String("cb_key", key)}

		cbHandler, ok := reg.GetCallback(key)
		if !ok {
			fallback := opts.NotFound
			if fallback == nil {
				fallback = reg.CallbackNotFound()
			}
			extras = append(extras, slog.String("reason", "not_found"))
			return handleWithSummary(c, name, start, func() error {
				if fallback != nil {
					return fallback(c)
				}
				return c.Respond()
			}, extras...)
		}
		return handleWithSummary(c, name, start, func() error {
			return cbHandler(c)
		}, extras...)
	}
	return tg.Route{
		Endpoint: tele.OnCallback,
		Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(handler)),
	}
}

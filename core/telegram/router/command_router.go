package router

import (
	"log/slog"

	"github.com/m3rciful/regbot/core/logger"
	tg "github.com/m3rciful/regbot/core/telegram"
	"github.com/m3rciful/regbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// CommandRouteOptions configures how commands are wrapped and exposed.
type CommandRouteOptions struct {
	IsAdmin       func(userID int64) bool
	OnAdminReject tele.HandlerFunc
}

// CommandRoutes binds every registered command and its aliases, wrapping
// admin-only commands with the access check.
func CommandRoutes(reg *tg.Registry, opts CommandRouteOptions) []tg.Route {
	if reg == nil {
		return nil
	}
	adminOnly := middleware.AdminOnlyMiddleware(middleware.AdminOptions{
		IsAdmin:  opts.IsAdmin,
		OnReject: opts.OnAdminReject,
	})

	var routes []tg.Route
	for cmd, def := range reg.Commands() {
		h := def.Handler
		if def.AdminOnly {
			h = adminOnly(h)
		}
		h = middleware.RecoverMiddleware(middleware.LoggerMiddleware(h))
		routes = append(routes, tg.Route{Endpoint: cmd, Handler: h})
		for _, alias := range def.Aliases {
			routes = append(routes, tg.Route{Endpoint: tg.CommandName(alias), Handler: h})
		}
	}

	logger.Info(logger.Background(), "tg.wire", "complete",
		slog.Int("commands", len(reg.Commands())),
		slog.Int("callbacks", len(reg.ListCallbacks())),
	)
	return routes
}

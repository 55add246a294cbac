package middleware

import (
	"log/slog"

	"github.com/m3rciful/regbot/core/logger"
	tghelpers "github.com/m3rciful/regbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// AdminOptions defines how admin-only checks should behave.
type AdminOptions struct {
	// IsAdmin decides membership; a nil func rejects everyone.
	IsAdmin  func(userID int64) bool
	OnReject tele.HandlerFunc
}

func (o AdminOptions) allowed(c tele.Context) bool {
	user := c.Sender()
	return user != nil && o.IsAdmin != nil && o.IsAdmin(user.ID)
}

// AdminOnlyMiddleware ensures that only admins can invoke downstream handlers.
func AdminOnlyMiddleware(opts AdminOptions) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if opts.allowed(c) {
				return next(c)
			}
			logger.Warn(tghelpers.BuildContext(c), "tg", "access.denied",
				slog.String("status", "skip"),
				slog.String("reason", "not_admin"),
			)
			if opts.OnReject != nil {
				return opts.OnReject(c)
			}
			return nil
		}
	}
}

package middleware

import (
	"log/slog"
	"sync"
	"time"

	coreconfig "github.com/m3rciful/regbot/core/config"
	"github.com/m3rciful/regbot/core/logger"
	tghelpers "github.com/m3rciful/regbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// RateLimitOptions configures behaviour of the rate limit middleware.
type RateLimitOptions struct {
	Interval  time.Duration
	Exclude   map[string]struct{}
	OnLimited tele.HandlerFunc
	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

func updateKind(upd tele.Update) string {
	switch {
	case upd.Callback != nil:
		return coreconfig.UpdateCallback
	case upd.Message != nil:
		return coreconfig.UpdateMessage
	}
	return "other"
}

// RateLimitMiddleware returns a middleware that enforces a minimum interval
// between updates from the same user. Limited updates are dropped.
func RateLimitMiddleware(opts RateLimitOptions) tele.MiddlewareFunc {
	var (
		mu       sync.Mutex
		lastSeen = make(map[int64]time.Time)
	)
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			user := c.Sender()
			if user == nil || opts.Interval <= 0 {
				return next(c)
			}
			kind := updateKind(c.Update())
			if _, skip := opts.Exclude[kind]; skip {
				return next(c)
			}

			ts := now()
			mu.Lock()
			last, seen := lastSeen[user.ID]
			limited := seen && ts.Sub(last) < opts.Interval
			if !limited {
				lastSeen[user.ID] = ts
			}
			mu.Unlock()

			if !limited {
				return next(c)
			}
			logger.Warn(tghelpers.BuildContext(c), "tg", "rate_limit",
				slog.String("status", "skip"),
				slog.String("kind", kind),
			)
			if opts.OnLimited != nil {
				_ = opts.OnLimited(c)
			}
			return nil
		}
	}
}

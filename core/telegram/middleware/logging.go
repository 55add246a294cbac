package middleware

import (
	"log/slog"
	"sync"
	"time"

	"github.com/m3rciful/regbot/core/logger"
	"github.com/m3rciful/regbot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/regbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

const seenTTL = 10 * time.Second

// seenUpdates remembers recently logged update IDs. The logger runs both
// globally and on individual routes, and each update is logged once.
type seenUpdates struct {
	mu   sync.Mutex
	seen map[int]time.Time
}

var recent = &seenUpdates{seen: make(map[int]time.Time)}

func (s *seenUpdates) first(updateID int, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, ts := range s.seen {
		if now.Sub(ts) > seenTTL {
			delete(s.seen, id)
		}
	}
	if _, ok := s.seen[updateID]; ok {
		return false
	}
	s.seen[updateID] = now
	return true
}

// LoggerMiddleware assigns the request id, stores the logging context for
// downstream helpers and logs one receipt line per update.
func LoggerMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		upd := c.Update()
		user := c.Sender()
		chat := c.Chat()

		var chatID, userID int64
		if chat != nil {
			chatID = chat.ID
		}
		if user != nil {
			userID = user.ID
		}
		rid, _ := c.Get("rid").(string)
		if rid == "" {
			rid = logger.BuildRID(upd.ID, chatID, userID)
			c.Set("rid", rid)
		}

		ctx := logger.WithRID(logger.Background(), rid)
		ctx = logger.WithUpdateMeta(ctx, upd.ID, userID, chatID)
		ctx = logger.WithLogger(ctx, logger.Component("tg"))
		tghelpers.StoreContext(c, ctx)

		if logger.ShouldSampleDebug() && recent.first(upd.ID, time.Now()) {
			attrs := []slog.Attr{slog.String("status", "ok")}
			if user != nil && user.Username != "" {
				attrs = append(attrs, slog.String("username", logger.SanitizeLimit(user.Username, 64)))
			}
			switch {
			case upd.Callback != nil:
				key, payload := callbacks.Parse(upd.Callback)
				attrs = append(attrs, slog.String("cb_key", logger.SanitizeLimit(key, 64)))
				if payload != "" {
					attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(payload, 128)))
				}
			case upd.Message != nil:
				switch m := upd.Message; {
				case m.Photo != nil:
					attrs = append(attrs, slog.String("kind", "photo"))
				case m.Document != nil:
					attrs = append(attrs, slog.String("kind", "document"))
				default:
					attrs = append(attrs, slog.String("kind", "text"))
					if t := m.Text; t != "" {
						attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(t, 128)))
					}
				}
			}
			logger.Debug(ctx, "tg", "update.received", attrs...)
		}

		return next(c)
	}
}

package router

import (
	"strings"
	"time"

	tg "github.com/m3rciful/regbot/core/telegram"
	"github.com/m3rciful/regbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// Conversation receives every free-form message that is not a command.
type Conversation interface {
	Handle(c tele.Context) error
}

// MessageRoutes wires text and every non-text message kind. Slash text naming
// a public command alias goes to that command; everything else goes to conv.
func MessageRoutes(conv Conversation, reg *tg.Registry) []tg.Route {
	wrap := func(name string, h func(c tele.Context) error) tele.HandlerFunc {
		return middleware.RecoverMiddleware(middleware.LoggerMiddleware(func(c tele.Context) error {
			start := time.Now()
			if conv == nil {
				logHandlerSummary(c, name, start, "skip", nil)
				return nil
			}
			return handleWithSummary(c, name, start, func() error { return h(c) })
		}))
	}

	forward := func(c tele.Context) error { return conv.Handle(c) }

	text := func(c tele.Context) error {
		start := time.Now()
		if t := c.Text(); reg != nil && strings.HasPrefix(t, "/") {
			if key, cmd, ok := reg.LookupCommand(t); ok && cmd.Handler != nil && !cmd.AdminOnly {
				return handleWithSummary(c, normalizeHandlerName(key), start, func() error {
					return cmd.Handler(c)
				})
			}
		}
		if conv == nil {
			logHandlerSummary(c, "unknown_text", start, "skip", nil)
			return nil
		}
		return handleWithSummary(c, "conversation.text", start, func() error { return conv.Handle(c) })
	}

	return []tg.Route{
		{
			Endpoint: tele.OnText,
			Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(text)),
		},
		{Endpoint: tele.OnPhoto, Handler: wrap("conversation.photo", forward)},
		{Endpoint: tele.OnDocument, Handler: wrap("conversation.document", forward)},
		// Voice, video, stickers and other media land here.
		{Endpoint: tele.OnMedia, Handler: wrap("conversation.media", forward)},
		{Endpoint: tele.OnContact, Handler: wrap("conversation.contact", forward)},
		{Endpoint: tele.OnLocation, Handler: wrap("conversation.location", forward)},
	}
}

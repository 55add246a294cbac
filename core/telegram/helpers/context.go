// Package helpers bridges Telebot contexts to the logging context and the
// shared outbound dispatcher.
package helpers

import (
	"context"

	"github.com/m3rciful/regbot/core/logger"

	tele "gopkg.in/telebot.v4"
)

const (
	contextKey = "logger_ctx"
	ridKey     = "rid"
)

// StoreContext attaches ctx to c for downstream helpers.
func StoreContext(c tele.Context, ctx context.Context) {
	if c == nil || ctx == nil {
		return
	}
	c.Set(contextKey, ctx)
}

// ContextFrom returns the context stored by StoreContext.
func ContextFrom(c tele.Context) (context.Context, bool) {
	if c == nil {
		return nil, false
	}
	ctx, ok := c.Get(contextKey).(context.Context)
	return ctx, ok && ctx != nil
}

// BuildContext returns the logging context of the update: request id plus
// update, user and chat ids. The result is cached on c.
func BuildContext(c tele.Context) context.Context {
	if c == nil {
		return logger.Background()
	}
	if cached, ok := ContextFrom(c); ok {
		return cached
	}

	var chatID, userID int64
	if chat := c.Chat(); chat != nil {
		chatID = chat.ID
	}
	if user := c.Sender(); user != nil {
		userID = user.ID
	}
	updateID := c.Update().ID

	rid, _ := c.Get(ridKey).(string)
	if rid == "" {
		rid = logger.BuildRID(updateID, chatID, userID)
		c.Set(ridKey, rid)
	}

	ctx := logger.WithRID(logger.Background(), rid)
	ctx = logger.WithUpdateMeta(ctx, updateID, userID, chatID)
	ctx = logger.WithLogger(ctx, logger.Component("tg"))
	StoreContext(c, ctx)
	return ctx
}

// WithHandler tags the stored context with the handler name.
func WithHandler(c tele.Context, handler string) context.Context {
	ctx := BuildContext(c)
	if handler == "" || c == nil {
		return ctx
	}
	ctx = logger.WithHandler(ctx, handler)
	StoreContext(c, ctx)
	return ctx
}

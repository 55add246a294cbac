package logger

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

type contextKey string

const (
	ctxRID      contextKey = "rid"
	ctxUpdateID contextKey = "update_id"
	ctxUserID   contextKey = "user_id"
	ctxChatID   contextKey = "chat_id"
	ctxLogger   contextKey = "logger"
	ctxHandler  contextKey = "handler"
)

func with(ctx context.Context, key contextKey, v any) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, key, v)
}

func from[T any](ctx context.Context, key contextKey) T {
	var zero T
	if ctx == nil {
		return zero
	}
	v, _ := ctx.Value(key).(T)
	return v
}

// WithLogger stores log in ctx for propagation across layers.
func WithLogger(ctx context.Context, log *slog.Logger) context.Context {
	if log == nil {
		if ctx == nil {
			return context.Background()
		}
		return ctx
	}
	return with(ctx, ctxLogger, log)
}

// FromContext returns the logger stored in ctx, or L.
func FromContext(ctx context.Context) *slog.Logger {
	if l := from[*slog.Logger](ctx, ctxLogger); l != nil {
		return l
	}
	return L
}

// WithRID attaches the request correlation id.
func WithRID(ctx context.Context, rid string) context.Context {
	return with(ctx, ctxRID, rid)
}

// RIDFrom returns the correlation id, if any.
func RIDFrom(ctx context.Context) string { return from[string](ctx, ctxRID) }

// WithUpdateMeta attaches the Telegram update, user and chat identifiers.
func WithUpdateMeta(ctx context.Context, updateID int, userID, chatID int64) context.Context {
	ctx = with(ctx, ctxUpdateID, updateID)
	ctx = with(ctx, ctxUserID, userID)
	return with(ctx, ctxChatID, chatID)
}

// WithHandler records which handler serves the update.
func WithHandler(ctx context.Context, handler string) context.Context {
	if handler == "" {
		if ctx == nil {
			return context.Background()
		}
		return ctx
	}
	return with(ctx, ctxHandler, handler)
}

// HandlerFrom returns the handler name, if any.
func HandlerFrom(ctx context.Context) string { return from[string](ctx, ctxHandler) }

// UserIDFrom returns the Telegram user id, if any.
func UserIDFrom(ctx context.Context) int64 { return from[int64](ctx, ctxUserID) }

// ChatIDFrom returns the chat id, if any.
func ChatIDFrom(ctx context.Context) int64 { return from[int64](ctx, ctxChatID) }

// UpdateIDFrom returns the update id, if any.
func UpdateIDFrom(ctx context.Context) int { return from[int](ctx, ctxUpdateID) }

// Sanitize drops control and format runes except tab and newline.
func Sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\t':
			return r
		case unicode.IsControl(r) || unicode.Is(unicode.Cf, r):
			return -1
		}
		return r
	}, s)
}

// SanitizeLimit applies Sanitize and caps the result at max runes.
func SanitizeLimit(s string, max int) string {
	if max <= 0 {
		return ""
	}
	cleaned := Sanitize(s)
	if utf8.RuneCountInString(cleaned) <= max {
		return cleaned
	}
	return string([]rune(cleaned)[:max])
}

// BuildRID returns a correlation id in the form updateID:chatID:userID.
func BuildRID(updateID int, chatID, userID int64) string {
	return fmt.Sprintf("%d:%d:%d", updateID, chatID, userID)
}

// CompactRID shortens a BuildRID value into dot-separated base36 segments.
// Anything else is returned unchanged.
func CompactRID(rid string) string {
	rid = strings.TrimSpace(rid)
	parts := strings.Split(rid, ":")
	if len(parts) != 3 {
		return rid
	}
	for i, part := range parts {
		n, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return rid
		}
		parts[i] = strconv.FormatInt(n, 36)
	}
	return strings.Join(parts, ".")
}

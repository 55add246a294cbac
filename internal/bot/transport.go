package bot

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/m3rciful/regbot/core/logger"
	"github.com/m3rciful/regbot/core/telegram/keyboard"
	"github.com/m3rciful/regbot/core/telegram/netutil"
	"github.com/m3rciful/regbot/internal/chat"

	tele "gopkg.in/telebot.v4"
)

const senderComponent = "tg.sender"

// ErrNotBound is returned by Transport before the bot has started.
var ErrNotBound = errors.New("bot: transport not bound")

// Transport sends messages to arbitrary chats through the running bot. It is
// the synchronous path used for admin notifications.
type Transport struct {
	bot        atomic.Pointer[tele.Bot]
	maxRetries int
	backoff    time.Duration
}

// NewTransport returns an unbound Transport.
func NewTransport() *Transport {
	return &Transport{maxRetries: 2, backoff: time.Second}
}

// Bind attaches the running bot; nil detaches it.
func (t *Transport) Bind(b *tele.Bot) {
	t.bot.Store(b)
}

// Send implements chat.Sender. Transient failures are retried a few times,
// waiting as long as flood control asks.
func (t *Transport) Send(ctx context.Context, msg chat.Message) error {
	b := t.bot.Load()
	if b == nil {
		return ErrNotBound
	}
	what, opts := render(msg)
	var err error
	for attempt := 0; attempt <= t.maxRetries; attempt++ {
		if _, err = b.Send(tele.ChatID(msg.To), what, opts); err == nil || !netutil.ShouldRetry(err) {
			return err
		}
		wait := netutil.RetryAfter(err)
		if wait <= 0 {
			wait = t.backoff * time.Duration(attempt+1)
		}
		logger.Debug(ctx, senderComponent, "send.retry",
			slog.Int64("chat_id", msg.To),
			slog.Int("attempt", attempt+1),
			slog.Duration("delay", wait),
		)
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return errors.Join(err, ctx.Err())
		case <-timer.C:
		}
	}
	return err
}

// render maps a message onto the value and options Telebot's Send and Edit take.
func render(msg chat.Message) (any, *tele.SendOptions) {
	opts := &tele.SendOptions{ReplyMarkup: markup(msg.Controls)}
	if msg.Markdown {
		opts.ParseMode = tele.ModeMarkdown
	}
	switch msg.Kind {
	case chat.KindPhoto:
		return &tele.Photo{File: mediaFile(msg.Ref), Caption: chat.Truncate(msg.Text, chat.MaxCaptionLength)}, opts
	case chat.KindDocument:
		return &tele.Document{File: mediaFile(msg.Ref), Caption: chat.Truncate(msg.Text, chat.MaxCaptionLength)}, opts
	}
	return chat.Truncate(msg.Text, chat.MaxTextLength), opts
}

func markup(rows [][]chat.Button) *tele.ReplyMarkup {
	rows = chat.FitControls(rows)
	out := make([][]keyboard.InlineBtn, 0, len(rows))
	for _, row := range rows {
		btns := make([]keyboard.InlineBtn, 0, len(row))
		for _, b := range row {
			btns = append(btns, keyboard.InlineBtn{Text: b.Text, Unique: b.Action, Data: b.Payload})
		}
		out = append(out, btns)
	}
	return keyboard.InlineButtonsRows(out...)
}

// mediaFile resolves a media reference: an http(s) URL, an existing local
// file, or otherwise a Telegram file id.
func mediaFile(ref string) tele.File {
	switch {
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return tele.FromURL(ref)
	case isLocalFile(ref):
		return tele.FromDisk(ref)
	}
	return tele.File{FileID: ref}
}

func isLocalFile(path string) bool {
	if path == "" {
		return false
	}
	st, err := os.Stat(path)
	return err == nil && st.Mode().IsRegular()
}

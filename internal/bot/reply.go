package bot

import (
	"log/slog"
	"strings"

	"github.com/m3rciful/regbot/core/logger"
	tghelpers "github.com/m3rciful/regbot/core/telegram/helpers"
	"github.com/m3rciful/regbot/internal/chat"

	tele "gopkg.in/telebot.v4"
)

// reply delivers msgs to the actor of c, in order, as one dispatcher job.
func reply(c tele.Context, msgs []chat.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	steps := make([]func() error, 0, len(msgs))
	for _, msg := range msgs {
		steps = append(steps, func() error { return deliver(c, msg) })
	}
	return tghelpers.Batch(c, "reply", steps...)
}

// deliver sends one message. Replacing messages edit the message whose
// button was pressed and fall back to a fresh send when it cannot be edited.
func deliver(c tele.Context, msg chat.Message) error {
	what, opts := render(msg)
	if msg.Replace && c.Callback() != nil {
		err := c.Edit(what, opts)
		switch {
		case err == nil, isNotModified(err):
			return nil
		}
		logger.Debug(tghelpers.BuildContext(c), "tg", "edit.fallback",
			slog.String("status", "skip"),
			slog.String("err", logger.SanitizeLimit(err.Error(), 128)),
		)
	}
	if user := c.Sender(); msg.To != 0 && (user == nil || msg.To != user.ID) {
		_, err := c.Bot().Send(tele.ChatID(msg.To), what, opts)
		return err
	}
	return c.Send(what, opts)
}

func isNotModified(err error) bool {
	return err != nil && strings.Contains(err.Error(), "message is not modified")
}

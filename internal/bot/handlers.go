package bot

import (
	"context"

	tghelpers "github.com/m3rciful/regbot/core/telegram/helpers"
	"github.com/m3rciful/regbot/internal/chat"
	"github.com/m3rciful/regbot/internal/moderation"
	"github.com/m3rciful/regbot/internal/texts"

	tele "gopkg.in/telebot.v4"
)

type operation func(ctx context.Context, ev chat.Event) ([]chat.Message, error)

// handle converts the update, runs op and replies with its messages.
func handle(op operation) tele.HandlerFunc {
	return func(c tele.Context) error {
		ev, ok := EventFrom(c)
		if !ok {
			return nil
		}
		msgs, err := op(tghelpers.BuildContext(c), ev)
		if err != nil {
			return err
		}
		return reply(c, msgs)
	}
}

// press is handle for inline buttons: the press is always answered so the
// client stops its spinner, with toast as the answer text.
func press(op operation, toast func(ev chat.Event) string) tele.HandlerFunc {
	h := handle(op)
	return func(c tele.Context) error {
		err := h(c)
		resp := &tele.CallbackResponse{}
		if err == nil && toast != nil {
			if ev, ok := EventFrom(c); ok {
				resp.Text = toast(ev)
			}
		}
		_ = c.Respond(resp)
		return err
	}
}

func (a *App) onStart(c tele.Context) error  { return handle(a.machine.Start)(c) }
func (a *App) onCancel(c tele.Context) error { return handle(a.machine.Cancel)(c) }

func (a *App) onAdmin(c tele.Context) error {
	return handle(func(ctx context.Context, ev chat.Event) ([]chat.Message, error) {
		return a.workflow.List(ctx, ev.UserID)
	})(c)
}

func (a *App) onRegistered(c tele.Context) error {
	return handle(func(ctx context.Context, ev chat.Event) ([]chat.Message, error) {
		return a.workflow.ListRegistered(ctx, ev.UserID)
	})(c)
}

// onDenied answers admin commands issued by anyone else.
func (a *App) onDenied(c tele.Context) error {
	if user := c.Sender(); user != nil {
		return reply(c, []chat.Message{chat.Text(user.ID, texts.Denied)})
	}
	return nil
}

// onStaleButton answers presses of controls this bot no longer serves, such as
// buttons left on messages from an older release.
func (a *App) onStaleButton(c tele.Context) error {
	return c.Respond(&tele.CallbackResponse{Text: texts.StaleButton})
}

// Handle implements router.Conversation: free-form participant input.
func (a *App) Handle(c tele.Context) error { return handle(a.machine.Handle)(c) }

func (a *App) onParticipate(c tele.Context) error { return press(a.machine.Handle, nil)(c) }

func (a *App) onModeration(c tele.Context) error {
	return press(a.workflow.Dispatch, func(ev chat.Event) string {
		if ev.Action == moderation.ActionDeleteConfirm && a.workflow.IsAdmin(ev.UserID) {
			return texts.Deleted
		}
		return ""
	})(c)
}

// Package moderation implements the admin review surface: a stateless
// pagination cursor over the participant snapshot, receipt viewing, the
// registered listing and two-step deletion.
package moderation

import (
	"context"
	"errors"
	"log/slog"

	"github.com/m3rciful/regbot/core/logger"
	"github.com/m3rciful/regbot/internal/chat"
	"github.com/m3rciful/regbot/internal/participant"
	"github.com/m3rciful/regbot/internal/texts"
)

const component = "service.moderation"

// Control actions understood by Dispatch.
const (
	ActionPanel         = "admin_panel"
	ActionPrev          = "admin_prev"
	ActionNext          = "admin_next"
	ActionReceipt       = "admin_receipt"
	ActionDelete        = "admin_del"
	ActionDeleteConfirm = "admin_del_ok"
	ActionDeleteCancel  = "admin_del_no"
	ActionRegistered    = "admin_registered"
)

// Actions lists every control action, for transport registration.
var Actions = []string{
	ActionPanel, ActionPrev, ActionNext, ActionReceipt,
	ActionDelete, ActionDeleteConfirm, ActionDeleteCancel, ActionRegistered,
}

// Direction is a navigation step.
type Direction int

const (
	Backward Direction = -1
	Forward  Direction = 1
)

// Workflow runs admin-only actions against the record store. Every operation
// re-fetches the snapshot; nothing is cached between screens.
type Workflow struct {
	store  participant.Store
	admins AdminSet
}

// New constructs a Workflow.
func New(store participant.Store, admins AdminSet) (*Workflow, error) {
	if store == nil {
		return nil, errors.New("moderation: nil store")
	}
	return &Workflow{store: store, admins: admins}, nil
}

// IsAdmin reports whether id may moderate.
func (w *Workflow) IsAdmin(id int64) bool { return w.admins.Contains(id) }

// Dispatch routes a control press to the matching operation. Unknown actions
// produce no messages.
func (w *Workflow) Dispatch(ctx context.Context, ev chat.Event) ([]chat.Message, error) {
	actor := ev.UserID
	switch ev.Action {
	case ActionPanel:
		return w.List(ctx, actor)
	case ActionPrev:
		return w.Step(ctx, actor, Backward, DecodeCursor(ev.Payload).Pos)
	case ActionNext:
		return w.Step(ctx, actor, Forward, DecodeCursor(ev.Payload).Pos)
	case ActionReceipt:
		return w.ShowReceipt(ctx, actor, DecodeCursor(ev.Payload).Pos)
	case ActionRegistered:
		return w.ListRegistered(ctx, actor)
	case ActionDelete, ActionDeleteConfirm, ActionDeleteCancel:
		id, c, ok := DecodeTarget(ev.Payload)
		if !ok {
			if !w.IsAdmin(actor) {
				return w.deny(ctx, actor, ev.Action), nil
			}
			return w.render(ctx, actor, c.Pos, true)
		}
		switch ev.Action {
		case ActionDelete:
			return w.AskDelete(ctx, actor, id, c.Pos)
		case ActionDeleteConfirm:
			return w.ConfirmDelete(ctx, actor, id, c.Pos)
		default:
			return w.CancelDelete(ctx, actor, id, c.Pos)
		}
	}
	return nil, nil
}

// List renders the most recently updated record.
func (w *Workflow) List(ctx context.Context, actor int64) ([]chat.Message, error) {
	if !w.IsAdmin(actor) {
		return w.deny(ctx, actor, "list"), nil
	}
	return w.render(ctx, actor, 0, false)
}

// Step moves the cursor from pos in dir and renders the clamped result.
func (w *Workflow) Step(ctx context.Context, actor int64, dir Direction, pos int) ([]chat.Message, error) {
	if !w.IsAdmin(actor) {
		return w.deny(ctx, actor, "step"), nil
	}
	c := Cursor{Pos: pos}
	if dir == Backward {
		c = c.Prev()
	} else {
		c = c.Next()
	}
	return w.render(ctx, actor, c.Pos, true)
}

// ShowReceipt re-emits the stored receipt of the record at pos.
func (w *Workflow) ShowReceipt(ctx context.Context, actor int64, pos int) ([]chat.Message, error) {
	if !w.IsAdmin(actor) {
		return w.deny(ctx, actor, "receipt"), nil
	}
	snap, err := w.store.ListOrdered(ctx)
	if err != nil {
		return nil, err
	}
	p, ok := Clamp(pos, len(snap))
	if !ok {
		return []chat.Message{chat.Text(actor, texts.NoParticipants)}, nil
	}
	rec := snap[p]
	if !rec.HasReceipt() {
		return []chat.Message{chat.Text(actor, texts.ReceiptMissing)}, nil
	}
	caption := rec.FullName()
	return []chat.Message{chat.Media(actor, chat.MediaKind(rec.Receipt.Kind), rec.Receipt.Ref, caption)}, nil
}

// ListRegistered renders every REGISTERED record in snapshot order, split
// into chunks under the transport text limit.
func (w *Workflow) ListRegistered(ctx context.Context, actor int64) ([]chat.Message, error) {
	if !w.IsAdmin(actor) {
		return w.deny(ctx, actor, "registered"), nil
	}
	snap, err := w.store.ListOrdered(ctx)
	if err != nil {
		return nil, err
	}
	lines := []string{texts.RegisteredHeading}
	for _, rec := range snap {
		if rec.Status == participant.StatusRegistered {
			lines = append(lines, texts.RegisteredLine(len(lines), rec))
		}
	}
	if len(lines) == 1 {
		return []chat.Message{chat.Text(actor, texts.NoRegistered)}, nil
	}
	chunks := chat.SplitLines(lines, chat.MaxTextLength)
	out := make([]chat.Message, 0, len(chunks))
	for _, c := range chunks {
		out = append(out, chat.Text(actor, c))
	}
	logger.Debug(ctx, component, "moderation.registered",
		slog.String("status", "ok"),
		slog.Int("total", len(lines)-1),
		slog.Int("messages", len(out)),
	)
	return out, nil
}

// AskDelete asks for confirmation. id and pos travel in the confirmation controls.
func (w *Workflow) AskDelete(ctx context.Context, actor, id int64, pos int) ([]chat.Message, error) {
	if !w.IsAdmin(actor) {
		return w.deny(ctx, actor, "delete"), nil
	}
	rec, found, err := w.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return w.render(ctx, actor, pos, true)
	}
	target := EncodeTarget(id, pos)
	msg := chat.Text(actor, texts.ConfirmDelete(rec)).Replacing().WithControls([]chat.Button{
		{Text: texts.ConfirmButton, Action: ActionDeleteConfirm, Payload: target},
		{Text: texts.KeepButton, Action: ActionDeleteCancel, Payload: target},
	})
	return []chat.Message{msg}, nil
}

// ConfirmDelete removes id and renders whatever now sits at pos.
func (w *Workflow) ConfirmDelete(ctx context.Context, actor, id int64, pos int) ([]chat.Message, error) {
	if !w.IsAdmin(actor) {
		return w.deny(ctx, actor, "delete_confirm"), nil
	}
	if err := w.store.Delete(ctx, id); err != nil {
		return nil, err
	}
	logger.Info(ctx, component, "moderation.delete",
		slog.String("status", "ok"),
		slog.Int64("participant_id", id),
		slog.Int64("user_id", actor),
		slog.Int("position", pos),
	)
	return w.render(ctx, actor, pos, true)
}

// CancelDelete renders pos again without touching the store.
func (w *Workflow) CancelDelete(ctx context.Context, actor, _ int64, pos int) ([]chat.Message, error) {
	if !w.IsAdmin(actor) {
		return w.deny(ctx, actor, "delete_cancel"), nil
	}
	return w.render(ctx, actor, pos, true)
}

func (w *Workflow) render(ctx context.Context, actor int64, pos int, replace bool) ([]chat.Message, error) {
	snap, err := w.store.ListOrdered(ctx)
	if err != nil {
		return nil, err
	}
	p, ok := Clamp(pos, len(snap))
	if !ok {
		msg := chat.Text(actor, texts.NoParticipants)
		if replace {
			msg = msg.Replacing()
		}
		return []chat.Message{msg}, nil
	}
	rec := snap[p]
	cur := Cursor{Pos: p}.Encode()
	msg := chat.Text(actor, texts.Card(rec, p, len(snap))).AsMarkdown().WithControls(chat.FitControls([][]chat.Button{
		{
			{Text: texts.PrevButton, Action: ActionPrev, Payload: cur},
			{Text: texts.NextButton, Action: ActionNext, Payload: cur},
		},
		{
			{Text: texts.ReceiptButton, Action: ActionReceipt, Payload: cur},
			{Text: texts.DeleteButton, Action: ActionDelete, Payload: EncodeTarget(rec.ID, p)},
		},
		{
			{Text: texts.RegisteredButton, Action: ActionRegistered},
		},
	})...)
	if replace {
		msg = msg.Replacing()
	}
	logger.Debug(ctx, component, "moderation.render",
		slog.String("status", "ok"),
		slog.Int64("participant_id", rec.ID),
		slog.Int("position", p),
		slog.Int("total", len(snap)),
	)
	return []chat.Message{msg}, nil
}

func (w *Workflow) deny(ctx context.Context, actor int64, op string) []chat.Message {
	logger.Warn(ctx, component, "moderation.denied",
		slog.String("status", "skip"),
		slog.Int64("user_id", actor),
		slog.String("op", op),
	)
	return []chat.Message{chat.Text(actor, texts.Denied)}
}

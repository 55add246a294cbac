// Package registration drives the per-participant intake conversation:
// NEW → AWAITING_NAME → AWAITING_PHONE → AWAITING_RECEIPT → REGISTERED.
package registration

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/m3rciful/regbot/core/logger"
	"github.com/m3rciful/regbot/core/telegram/state"
	"github.com/m3rciful/regbot/internal/chat"
	"github.com/m3rciful/regbot/internal/config"
	"github.com/m3rciful/regbot/internal/notify"
	"github.com/m3rciful/regbot/internal/participant"
	"github.com/m3rciful/regbot/internal/texts"
)

const component = "service.registration"

// ActionParticipate is the button action that signals intent to register.
const ActionParticipate = "participate"

// ActionAdminPanel opens the moderation panel from the event card.
const ActionAdminPanel = "admin_panel"

// Draft holds the answers collected in the current cycle.
type Draft struct {
	FirstName string
	LastName  string
	Phone     string
}

// Session is the ephemeral conversation state of one participant.
type Session struct {
	Step  participant.Status
	Draft Draft
}

// Notifier fans announcements out to admins.
type Notifier interface {
	Broadcast(ctx context.Context, msgs ...chat.Message) notify.Report
}

// Options configures a Machine.
type Options struct {
	Store    participant.Store
	Sessions *state.Manager[Session]
	Notifier Notifier
	Event    config.Event
	// IsAdmin decides whether the event card offers the admin panel.
	IsAdmin func(id int64) bool
}

// Machine maps inbound participant events to record mutations and replies.
// It keeps no lock across store or send calls; per-participant ordering comes
// from the transport delivering one participant's events in order.
type Machine struct {
	store    participant.Store
	sessions *state.Manager[Session]
	notifier Notifier
	event    config.Event
	isAdmin  func(int64) bool
}

// New constructs a Machine.
func New(opts Options) (*Machine, error) {
	if opts.Store == nil {
		return nil, errors.New("registration: nil store")
	}
	if opts.Sessions == nil {
		opts.Sessions = state.NewManager[Session]()
	}
	if opts.IsAdmin == nil {
		opts.IsAdmin = func(int64) bool { return false }
	}
	return &Machine{
		store:    opts.Store,
		sessions: opts.Sessions,
		notifier: opts.Notifier,
		event:    opts.Event,
		isAdmin:  opts.IsAdmin,
	}, nil
}

// Start is the entry point: it resets the session to NEW, touches the record
// without erasing captured fields and returns the event card. A registered
// participant stays registered; intent after a restart answers accordingly.
func (m *Machine) Start(ctx context.Context, ev chat.Event) ([]chat.Message, error) {
	m.sessions.Set(ev.UserID, Session{Step: participant.StatusNew})
	if err := m.store.Upsert(ctx, ev.UserID, ev.Handle); err != nil {
		return nil, err
	}
	m.logTransition(ctx, ev.UserID, "", participant.StatusNew)
	return []chat.Message{m.card(ev.UserID)}, nil
}

// Cancel drops the in-progress cycle and returns to the entry point.
func (m *Machine) Cancel(ctx context.Context, ev chat.Event) ([]chat.Message, error) {
	m.sessions.Clear(ev.UserID)
	out, err := m.Start(ctx, ev)
	if err != nil {
		return nil, err
	}
	return append([]chat.Message{chat.Text(ev.UserID, texts.Cancelled)}, out...), nil
}

// Session returns the participant's current session, rebuilding it from the
// persisted status when it was lost.
func (m *Machine) Session(ctx context.Context, id int64) (Session, error) {
	if s, ok := m.sessions.Get(id); ok {
		return s, nil
	}
	rec, found, err := m.store.Get(ctx, id)
	if err != nil {
		return Session{}, err
	}
	s := Session{Step: participant.StatusNew}
	if found && rec.Status.Valid() {
		s = Session{
			Step:  rec.Status,
			Draft: Draft{FirstName: rec.FirstName, LastName: rec.LastName, Phone: rec.Phone},
		}
	}
	m.sessions.Set(id, s)
	return s, nil
}

// Handle advances the conversation by one inbound event.
func (m *Machine) Handle(ctx context.Context, ev chat.Event) ([]chat.Message, error) {
	s, err := m.Session(ctx, ev.UserID)
	if err != nil {
		return nil, err
	}

	if isIntent(ev) {
		return m.intent(ctx, ev, s)
	}

	switch s.Step {
	case participant.StatusAwaitingName:
		return m.name(ctx, ev, s)
	case participant.StatusAwaitingPhone:
		return m.phone(ctx, ev, s)
	case participant.StatusAwaitingReceipt:
		return m.receipt(ctx, ev, s)
	case participant.StatusRegistered:
		return reply(ev.UserID, texts.AlreadyRegistered), nil
	}
	return reply(ev.UserID, texts.StartFirst), nil
}

func isIntent(ev chat.Event) bool {
	switch ev.Kind {
	case chat.EventButton:
		return ev.Action == ActionParticipate
	case chat.EventText:
		t := strings.TrimSpace(ev.Text)
		return t == texts.RegisterButton || t == texts.ParticipateButton
	}
	return false
}

func (m *Machine) intent(ctx context.Context, ev chat.Event, s Session) ([]chat.Message, error) {
	switch s.Step {
	case participant.StatusAwaitingName, participant.StatusAwaitingPhone, participant.StatusAwaitingReceipt:
		return reply(ev.UserID, m.prompt(s.Step)), nil
	case participant.StatusRegistered:
		return reply(ev.UserID, texts.AlreadyRegistered), nil
	}

	// A restart resets only the session; a finished registration stays final.
	rec, found, err := m.store.Get(ctx, ev.UserID)
	if err != nil {
		return nil, err
	}
	if found && rec.Status == participant.StatusRegistered {
		m.advance(ctx, ev.UserID, s, Session{Step: participant.StatusRegistered})
		return reply(ev.UserID, texts.AlreadyRegistered), nil
	}

	if err := m.store.Upsert(ctx, ev.UserID, ev.Handle); err != nil {
		return nil, err
	}
	err = m.store.SetFields(ctx, ev.UserID, participant.StatusOf(participant.StatusAwaitingName))
	if errors.Is(err, participant.ErrNotFound) {
		return m.gone(ctx, ev.UserID, s), nil
	}
	if err != nil {
		return nil, err
	}
	m.advance(ctx, ev.UserID, s, Session{Step: participant.StatusAwaitingName})
	m.announce(ctx, chat.Text(0, texts.AdminNewStarted(ev.UserID, ev.Handle)))
	return reply(ev.UserID, texts.AskName), nil
}

func (m *Machine) name(ctx context.Context, ev chat.Event, s Session) ([]chat.Message, error) {
	if ev.Kind != chat.EventText {
		return reply(ev.UserID, texts.AskName), nil
	}
	first, last, ok := SplitName(ev.Text)
	if !ok {
		return reply(ev.UserID, texts.EmptyName), nil
	}
	err := m.store.SetFields(ctx, ev.UserID,
		participant.Name(first, last),
		participant.StatusOf(participant.StatusAwaitingPhone),
	)
	if errors.Is(err, participant.ErrNotFound) {
		return m.gone(ctx, ev.UserID, s), nil
	}
	if err != nil {
		return nil, err
	}
	next := Session{Step: participant.StatusAwaitingPhone, Draft: Draft{FirstName: first, LastName: last}}
	m.advance(ctx, ev.UserID, s, next)
	return reply(ev.UserID, texts.AskPhone), nil
}

func (m *Machine) phone(ctx context.Context, ev chat.Event, s Session) ([]chat.Message, error) {
	if ev.Kind != chat.EventText {
		return reply(ev.UserID, texts.AskPhone), nil
	}
	phone := strings.TrimSpace(ev.Text)
	if phone == "" {
		return reply(ev.UserID, texts.EmptyPhone), nil
	}
	err := m.store.SetFields(ctx, ev.UserID,
		participant.Phone(phone),
		participant.StatusOf(participant.StatusAwaitingReceipt),
	)
	if errors.Is(err, participant.ErrNotFound) {
		return m.gone(ctx, ev.UserID, s), nil
	}
	if err != nil {
		return nil, err
	}
	next := s
	next.Step = participant.StatusAwaitingReceipt
	next.Draft.Phone = phone
	m.advance(ctx, ev.UserID, s, next)
	return reply(ev.UserID, texts.AfterForm(m.event.Payment)), nil
}

func (m *Machine) receipt(ctx context.Context, ev chat.Event, s Session) ([]chat.Message, error) {
	a := ev.Attachment
	if ev.Kind != chat.EventAttachment || a == nil || a.Ref == "" {
		return reply(ev.UserID, texts.RemindReceipt), nil
	}
	kind := participant.AttachmentKind(a.Kind)
	if !kind.Valid() {
		return reply(ev.UserID, texts.RemindReceipt), nil
	}
	err := m.store.SetFields(ctx, ev.UserID,
		participant.ReceiptOf(a.Ref, kind),
		participant.StatusOf(participant.StatusRegistered),
	)
	if errors.Is(err, participant.ErrNotFound) {
		return m.gone(ctx, ev.UserID, s), nil
	}
	if err != nil {
		return nil, err
	}
	next := s
	next.Step = participant.StatusRegistered
	m.advance(ctx, ev.UserID, s, next)

	rec, found, err := m.store.Get(ctx, ev.UserID)
	if err != nil || !found {
		// Unreadable right after the write: announce what this cycle captured.
		rec = participant.Record{
			ID:        ev.UserID,
			Handle:    ev.Handle,
			FirstName: s.Draft.FirstName,
			LastName:  s.Draft.LastName,
			Phone:     s.Draft.Phone,
		}
	}
	m.announce(ctx,
		chat.Text(0, texts.AdminNewReceipt(rec)),
		chat.Media(0, a.Kind, a.Ref, ""),
	)
	return reply(ev.UserID, texts.ThanksRegistered), nil
}

// gone handles a record deleted while its owner was mid-flow: the session is
// dropped and the participant is sent back to the entry point.
func (m *Machine) gone(ctx context.Context, id int64, s Session) []chat.Message {
	m.sessions.Clear(id)
	logger.Info(ctx, component, "registration.transition",
		slog.String("status", "skip"),
		slog.Int64("participant_id", id),
		slog.String("from", string(s.Step)),
		slog.String("reason", "record_deleted"),
	)
	return reply(id, texts.StartFirst)
}

func (m *Machine) prompt(step participant.Status) string {
	switch step {
	case participant.StatusAwaitingName:
		return texts.AskName
	case participant.StatusAwaitingPhone:
		return texts.AskPhone
	case participant.StatusAwaitingReceipt:
		return texts.AfterForm(m.event.Payment)
	}
	return texts.StartFirst
}

func (m *Machine) card(to int64) chat.Message {
	caption := texts.Caption(m.event)
	var msg chat.Message
	if m.event.Image != "" {
		msg = chat.Media(to, chat.MediaPhoto, m.event.Image, chat.TruncateMarkdown(caption, chat.MaxCaptionLength))
	} else {
		msg = chat.Text(to, caption)
	}
	rows := [][]chat.Button{{{Text: texts.ParticipateButton, Action: ActionParticipate}}}
	if m.isAdmin(to) {
		rows = append(rows, []chat.Button{{Text: texts.AdminPanelButton, Action: ActionAdminPanel}})
	}
	return msg.AsMarkdown().WithControls(rows...)
}

func (m *Machine) advance(ctx context.Context, id int64, from, to Session) {
	m.sessions.Set(id, to)
	m.logTransition(ctx, id, from.Step, to.Step)
}

func (m *Machine) announce(ctx context.Context, msgs ...chat.Message) {
	if m.notifier == nil {
		return
	}
	m.notifier.Broadcast(ctx, msgs...)
}

func (m *Machine) logTransition(ctx context.Context, id int64, from, to participant.Status) {
	logger.Info(ctx, component, "registration.transition",
		slog.String("status", "ok"),
		slog.Int64("participant_id", id),
		slog.String("from", string(from)),
		slog.String("state", string(to)),
	)
}

// SplitName collapses whitespace and splits text into the first token and
// the remainder. ok is false when text has no tokens.
func SplitName(text string) (first, last string, ok bool) {
	parts := strings.Fields(text)
	if len(parts) == 0 {
		return "", "", false
	}
	return parts[0], strings.Join(parts[1:], " "), true
}

func reply(to int64, text string) []chat.Message {
	return []chat.Message{chat.Text(to, text)}
}


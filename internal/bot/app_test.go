package bot

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	coreconfig "github.com/m3rciful/regbot/core/config"
	tg "github.com/m3rciful/regbot/core/telegram"
	"github.com/m3rciful/regbot/core/telegram/router"
	"github.com/m3rciful/regbot/internal/config"
	"github.com/m3rciful/regbot/internal/participant"
	"github.com/m3rciful/regbot/internal/participant/participanttest"
	"github.com/m3rciful/regbot/internal/texts"
)

var admin = &tele.User{ID: 7, Username: "boss"}

type fixture struct {
	t     *testing.T
	app   *App
	store *participant.SQLStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := &config.Config{
		Config: coreconfig.Config{Telegram: coreconfig.TelegramConfig{Token: "x", AdminIDs: []int64{admin.ID}}},
		Event:  config.Event{Title: "Летний забег", Payment: "Перевод по номеру +7 900 000-00-00"},
	}
	store := participanttest.NewStore(t)
	app, err := New(cfg, store)
	require.NoError(t, err)
	return &fixture{t: t, app: app, store: store}
}

func (f *fixture) text(user *tele.User, text string) *fakeContext {
	f.t.Helper()
	c := textUpdate(user, text)
	require.NoError(f.t, f.app.Handle(c))
	return c
}

func lastText(t *testing.T, c *fakeContext) string {
	t.Helper()
	require.NotEmpty(t, c.sent)
	s, ok := c.sent[len(c.sent)-1].(string)
	require.True(t, ok, "last message is %T", c.sent[len(c.sent)-1])
	return s
}

func TestRegistrationOverTelegram(t *testing.T) {
	f := newFixture(t)

	start := textUpdate(anna, "/start")
	require.NoError(t, f.app.onStart(start))
	require.Len(t, start.sent, 1)
	assert.Contains(t, start.sent[0], "Летний забег")
	require.NotNil(t, start.sentOpts[0].ReplyMarkup)
	assert.Len(t, start.sentOpts[0].ReplyMarkup.InlineKeyboard, 1)

	join := pressUpdate(anna, "\fparticipate")
	require.NoError(t, f.app.onParticipate(join))
	assert.Equal(t, texts.AskName, lastText(t, join))
	require.Len(t, join.responses, 1)

	assert.Equal(t, texts.AskPhone, lastText(t, f.text(anna, "Анна Ким")))
	assert.Contains(t, lastText(t, f.text(anna, "+7 900 123-45-67")), "Перевод по номеру")

	receipt := textUpdate(anna, "")
	receipt.update.Message.Photo = &tele.Photo{File: tele.File{FileID: "AgAD-receipt"}}
	require.NoError(t, f.app.Handle(receipt))
	assert.Equal(t, texts.ThanksRegistered, lastText(t, receipt))

	rec, found, err := f.store.Get(context.Background(), anna.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, participant.StatusRegistered, rec.Status)
	assert.Equal(t, "Анна", rec.FirstName)
	assert.Equal(t, "Ким", rec.LastName)
	require.NotNil(t, rec.Receipt)
	assert.Equal(t, "AgAD-receipt", rec.Receipt.Ref)
	assert.Equal(t, participant.AttachmentPhoto, rec.Receipt.Kind)
}

func TestAdminCardOffersPanel(t *testing.T) {
	f := newFixture(t)
	c := textUpdate(admin, "/start")
	require.NoError(t, f.app.onStart(c))
	require.Len(t, c.sentOpts, 1)
	assert.Len(t, c.sentOpts[0].ReplyMarkup.InlineKeyboard, 2)
}

func TestAdminListAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, id := range []int64{10, 20, 30} {
		require.NoError(t, f.store.Upsert(ctx, id, ""))
	}

	list := textUpdate(admin, "/admin")
	require.NoError(t, f.app.onAdmin(list))
	assert.Contains(t, lastText(t, list), "Участник 1 из 3")

	ask := pressUpdate(admin, "\fadmin_del|20|1")
	require.NoError(t, f.app.onModeration(ask))
	require.Len(t, ask.edited, 1)
	require.Len(t, ask.responses, 1)
	assert.Empty(t, ask.responses[0].Text)

	confirm := pressUpdate(admin, "\fadmin_del_ok|20|1")
	require.NoError(t, f.app.onModeration(confirm))
	require.Len(t, confirm.edited, 1)
	assert.Contains(t, confirm.edited[0], "Участник 2 из 2")
	require.Len(t, confirm.responses, 1)
	assert.Equal(t, texts.Deleted, confirm.responses[0].Text)

	_, found, err := f.store.Get(ctx, 20)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestEditFallsBackToSend(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.Upsert(context.Background(), 10, ""))

	c := pressUpdate(admin, "\fadmin_next|0")
	c.editErr = errors.New("telegram: Bad Request: message can't be edited (400)")
	require.NoError(t, f.app.onModeration(c))
	assert.Empty(t, c.edited)
	assert.Contains(t, lastText(t, c), "Участник 1 из 1")
}

func TestEditNotModifiedIsSilent(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.Upsert(context.Background(), 10, ""))

	c := pressUpdate(admin, "\fadmin_next|0")
	c.editErr = errors.New("telegram: Bad Request: message is not modified (400)")
	require.NoError(t, f.app.onModeration(c))
	assert.Empty(t, c.sent)
}

func TestNonAdminIsDenied(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.Upsert(context.Background(), 10, ""))

	c := pressUpdate(anna, "\fadmin_del_ok|10|0")
	require.NoError(t, f.app.onModeration(c))
	assert.Equal(t, texts.Denied, lastText(t, c))
	assert.Empty(t, c.responses[0].Text)

	_, found, err := f.store.Get(context.Background(), 10)
	require.NoError(t, err)
	assert.True(t, found)

	denied := textUpdate(anna, "/admin")
	require.NoError(t, f.app.onDenied(denied))
	assert.Equal(t, texts.Denied, lastText(t, denied))
}

func TestRegistryBindsEveryAction(t *testing.T) {
	f := newFixture(t)
	reg := f.app.Registry()
	for _, key := range []string{"participate", "admin_panel", "admin_prev", "admin_next", "admin_receipt",
		"admin_del", "admin_del_ok", "admin_del_no", "admin_registered"} {
		_, ok := reg.GetCallback(key)
		assert.True(t, ok, key)
	}
	visible := reg.ListCommands(true)
	require.Len(t, visible, 2)
	assert.Equal(t, "cancel", visible[0].Text)
	assert.Equal(t, "start", visible[1].Text)
}

func TestStaleButtonIsAnswered(t *testing.T) {
	f := newFixture(t)
	route := router.CallbackRoute(f.app.Registry(), router.CallbackOptions{})

	c := pressUpdate(anna, "\fadmin_export|3")
	require.NoError(t, route.Handler(c))
	require.Len(t, c.responses, 1)
	assert.Equal(t, texts.StaleButton, c.responses[0].Text)
	assert.Empty(t, c.sent)
}

func TestTelegramRunOptions(t *testing.T) {
	f := newFixture(t)
	opts, err := f.app.TelegramRunOptions()
	require.NoError(t, err)
	assert.NotEmpty(t, opts.Routes)
	assert.NotEmpty(t, opts.Middlewares)
	require.NotNil(t, opts.OnStart)
	require.NotNil(t, opts.OnStop)
	assert.NoError(t, opts.OnStop(context.Background(), tg.Runtime{}))
}

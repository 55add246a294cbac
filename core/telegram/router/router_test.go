package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	tg "github.com/m3rciful/regbot/core/telegram"
	"github.com/m3rciful/regbot/core/telegram/callbacks"
	"github.com/m3rciful/regbot/core/telegram/commands"
)

type fakeContext struct {
	tele.Context
	update    tele.Update
	store     map[string]any
	responded int
}

func newCallback(data string) *fakeContext {
	return &fakeContext{
		update: tele.Update{ID: 1, Callback: &tele.Callback{Sender: &tele.User{ID: 7}, Data: data}},
		store:  map[string]any{},
	}
}

func newText(text string) *fakeContext {
	return &fakeContext{
		update: tele.Update{ID: 2, Message: &tele.Message{Sender: &tele.User{ID: 7}, Chat: &tele.Chat{ID: 7}, Text: text}},
		store:  map[string]any{},
	}
}

func (f *fakeContext) Update() tele.Update      { return f.update }
func (f *fakeContext) Callback() *tele.Callback { return f.update.Callback }
func (f *fakeContext) Get(key string) any       { return f.store[key] }
func (f *fakeContext) Set(key string, v any)    { f.store[key] = v }

func (f *fakeContext) Text() string {
	if f.update.Message != nil {
		return f.update.Message.Text
	}
	return ""
}

func (f *fakeContext) Sender() *tele.User {
	if f.update.Callback != nil {
		return f.update.Callback.Sender
	}
	return f.update.Message.Sender
}

func (f *fakeContext) Chat() *tele.Chat {
	if f.update.Message != nil {
		return f.update.Message.Chat
	}
	return nil
}

func (f *fakeContext) Respond(...*tele.CallbackResponse) error {
	f.responded++
	return nil
}

func TestCallbackRouteDispatchesByKey(t *testing.T) {
	reg := tg.NewRegistry()
	var payload string
	require.NoError(t, reg.RegisterCallback("admin_next", func(c tele.Context) error {
		_, payload = callbacks.Parse(c.Callback())
		return nil
	}))
	route := CallbackRoute(reg, CallbackOptions{})
	assert.Equal(t, tele.OnCallback, route.Endpoint)

	require.NoError(t, route.Handler(newCallback("\fadmin_next|4")))
	assert.Equal(t, "4", payload)

	unknown := newCallback("\fadmin_gone|1")
	require.NoError(t, route.Handler(unknown))
	assert.Equal(t, 1, unknown.responded)
}

type recordingConversation struct{ texts []string }

func (r *recordingConversation) Handle(c tele.Context) error {
	r.texts = append(r.texts, c.Text())
	return nil
}

func TestMessageRoutes(t *testing.T) {
	reg := tg.NewRegistry()
	restarted := 0
	reg.RegisterCommand("/start", commands.Command{
		Handler:     func(tele.Context) error { restarted++; return nil },
		Description: "Start",
		Aliases:     []string{"restart"},
	})
	conv := &recordingConversation{}
	routes := MessageRoutes(conv, reg)
	byEndpoint := map[any]tele.HandlerFunc{}
	for _, r := range routes {
		byEndpoint[r.Endpoint] = r.Handler
	}
	for _, endpoint := range []string{tele.OnText, tele.OnPhoto, tele.OnDocument, tele.OnMedia, tele.OnContact, tele.OnLocation} {
		require.Contains(t, byEndpoint, endpoint)
	}
	text := byEndpoint[tele.OnText]

	require.NoError(t, text(newText("Анна Ким")))
	require.NoError(t, text(newText("start")))
	require.NoError(t, text(newText("/restart")))
	assert.Equal(t, []string{"Анна Ким", "start"}, conv.texts)
	assert.Equal(t, 1, restarted)

	voice := newText("")
	voice.update.Message.Voice = &tele.Voice{File: tele.File{FileID: "AwAD-voice"}}
	require.NoError(t, byEndpoint[tele.OnMedia](voice))
	contact := newText("")
	contact.update.Message.Contact = &tele.Contact{PhoneNumber: "+7700", FirstName: "Анна"}
	require.NoError(t, byEndpoint[tele.OnContact](contact))
	assert.Len(t, conv.texts, 4)
}

func TestCommandRoutesBindAliasesAndGuardAdmins(t *testing.T) {
	reg := tg.NewRegistry()
	served, rejected := 0, 0
	handler := func(tele.Context) error { served++; return nil }
	reg.RegisterCommand("/start", commands.Command{Handler: handler, Description: "Start", Aliases: []string{"restart"}})
	reg.RegisterCommand("/admin", commands.Command{Handler: handler, Description: "Admin", AdminOnly: true})

	routes := CommandRoutes(reg, CommandRouteOptions{
		IsAdmin:       func(id int64) bool { return id == 1 },
		OnAdminReject: func(tele.Context) error { rejected++; return nil },
	})
	byEndpoint := map[any]tele.HandlerFunc{}
	for _, r := range routes {
		byEndpoint[r.Endpoint] = r.Handler
	}
	require.Len(t, byEndpoint, 3)
	require.Contains(t, byEndpoint, "/restart")

	require.NoError(t, byEndpoint["/admin"](newText("/admin")))
	assert.Equal(t, 0, served)
	assert.Equal(t, 1, rejected)

	require.NoError(t, byEndpoint["/restart"](newText("/restart")))
	assert.Equal(t, 1, served)
}

func TestDeriveErrorCode(t *testing.T) {
	assert.Equal(t, "ERROR", deriveErrorCode(&tele.Error{Code: 400}))
	assert.Empty(t, deriveErrorCode(nil))
	assert.Equal(t, "callback.admin_next", "callback."+normalizeHandlerName(" Admin_Next "))
}

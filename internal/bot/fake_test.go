package bot

import (
	tele "gopkg.in/telebot.v4"
)

// fakeContext implements the parts of tele.Context the handlers touch and
// records what they send.
type fakeContext struct {
	tele.Context
	update    tele.Update
	store     map[string]any
	sent      []any
	sentOpts  []*tele.SendOptions
	edited    []any
	editErr   error
	responses []*tele.CallbackResponse
}

func textUpdate(user *tele.User, text string) *fakeContext {
	return &fakeContext{
		update: tele.Update{ID: 1, Message: &tele.Message{Sender: user, Chat: &tele.Chat{ID: user.ID}, Text: text}},
		store:  map[string]any{},
	}
}

func pressUpdate(user *tele.User, data string) *fakeContext {
	return &fakeContext{
		update: tele.Update{ID: 2, Callback: &tele.Callback{
			Sender:  user,
			Message: &tele.Message{ID: 100, Chat: &tele.Chat{ID: user.ID}},
			Data:    data,
		}},
		store: map[string]any{},
	}
}

func (f *fakeContext) Update() tele.Update      { return f.update }
func (f *fakeContext) Callback() *tele.Callback { return f.update.Callback }

func (f *fakeContext) Message() *tele.Message {
	if f.update.Callback != nil {
		return f.update.Callback.Message
	}
	return f.update.Message
}

func (f *fakeContext) Sender() *tele.User {
	if f.update.Callback != nil {
		return f.update.Callback.Sender
	}
	if f.update.Message != nil {
		return f.update.Message.Sender
	}
	return nil
}

func (f *fakeContext) Chat() *tele.Chat {
	if m := f.Message(); m != nil {
		return m.Chat
	}
	return nil
}

func (f *fakeContext) Get(key string) any    { return f.store[key] }
func (f *fakeContext) Set(key string, v any) { f.store[key] = v }

func (f *fakeContext) Send(what any, opts ...any) error {
	f.sent = append(f.sent, what)
	f.sentOpts = append(f.sentOpts, sendOptions(opts))
	return nil
}

func (f *fakeContext) Edit(what any, _ ...any) error {
	if f.editErr != nil {
		return f.editErr
	}
	f.edited = append(f.edited, what)
	return nil
}

func (f *fakeContext) Respond(resp ...*tele.CallbackResponse) error {
	f.responses = append(f.responses, resp...)
	return nil
}

func sendOptions(opts []any) *tele.SendOptions {
	for _, o := range opts {
		if so, ok := o.(*tele.SendOptions); ok {
			return so
		}
	}
	return nil
}

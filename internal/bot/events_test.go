package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/regbot/internal/chat"
)

var anna = &tele.User{ID: 42, Username: "anna_k"}

func TestEventFromText(t *testing.T) {
	ev, ok := EventFrom(textUpdate(anna, "  Анна Ким  "))
	require.True(t, ok)
	assert.Equal(t, chat.Event{UserID: 42, Handle: "anna_k", Kind: chat.EventText, Text: "Анна Ким"}, ev)
}

func TestEventFromPhoto(t *testing.T) {
	c := textUpdate(anna, "")
	c.update.Message.Photo = &tele.Photo{File: tele.File{FileID: "AgAD-photo"}, Width: 1280}
	c.update.Message.Caption = "receipt"

	ev, ok := EventFrom(c)
	require.True(t, ok)
	assert.Equal(t, chat.EventAttachment, ev.Kind)
	assert.Equal(t, "receipt", ev.Text)
	assert.Equal(t, &chat.Attachment{Ref: "AgAD-photo", Kind: chat.MediaPhoto}, ev.Attachment)
}

func TestEventFromDocument(t *testing.T) {
	c := textUpdate(anna, "")
	c.update.Message.Document = &tele.Document{File: tele.File{FileID: "BQAD-doc"}, FileName: "receipt.pdf"}

	ev, ok := EventFrom(c)
	require.True(t, ok)
	assert.Equal(t, &chat.Attachment{Ref: "BQAD-doc", Kind: chat.MediaDocument}, ev.Attachment)
}

func TestEventFromOtherContent(t *testing.T) {
	c := textUpdate(anna, "")
	c.update.Message.Voice = &tele.Voice{File: tele.File{FileID: "AwAD-voice"}}

	ev, ok := EventFrom(c)
	require.True(t, ok)
	assert.Equal(t, chat.EventOther, ev.Kind)
	assert.Nil(t, ev.Attachment)
}

func TestEventFromCallback(t *testing.T) {
	ev, ok := EventFrom(pressUpdate(anna, "\fadmin_del|20|1"))
	require.True(t, ok)
	assert.Equal(t, chat.EventButton, ev.Kind)
	assert.Equal(t, "admin_del", ev.Action)
	assert.Equal(t, "20|1", ev.Payload)

	c := pressUpdate(anna, "3")
	c.update.Callback.Unique = "admin_next"
	ev, ok = EventFrom(c)
	require.True(t, ok)
	assert.Equal(t, "admin_next", ev.Action)
	assert.Equal(t, "3", ev.Payload)
}

func TestEventFromWithoutSender(t *testing.T) {
	c := &fakeContext{update: tele.Update{Message: &tele.Message{Text: "channel post"}}}
	_, ok := EventFrom(c)
	assert.False(t, ok)
}

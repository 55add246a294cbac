package bot

import (
	"strings"

	"github.com/m3rciful/regbot/core/telegram/callbacks"
	"github.com/m3rciful/regbot/internal/chat"

	tele "gopkg.in/telebot.v4"
)

// EventFrom converts a Telebot update into a conversation event. Updates
// without a sender, such as channel posts, are not events.
func EventFrom(c tele.Context) (chat.Event, bool) {
	user := c.Sender()
	if user == nil {
		return chat.Event{}, false
	}
	ev := chat.Event{UserID: user.ID, Handle: user.Username}

	if cb := c.Callback(); cb != nil {
		ev.Kind = chat.EventButton
		ev.Action, ev.Payload = callbacks.Parse(cb)
		return ev, true
	}

	msg := c.Message()
	if msg == nil {
		return chat.Event{}, false
	}
	switch {
	case msg.Photo != nil:
		ev.Kind = chat.EventAttachment
		ev.Text = msg.Caption
		ev.Attachment = &chat.Attachment{Ref: msg.Photo.FileID, Kind: chat.MediaPhoto}
	case msg.Document != nil:
		ev.Kind = chat.EventAttachment
		ev.Text = msg.Caption
		ev.Attachment = &chat.Attachment{Ref: msg.Document.FileID, Kind: chat.MediaDocument}
	case msg.Text != "":
		ev.Kind = chat.EventText
		ev.Text = strings.TrimSpace(msg.Text)
	default:
		ev.Kind = chat.EventOther
		ev.Text = msg.Caption
	}
	return ev, true
}

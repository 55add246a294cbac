package bot

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/regbot/internal/chat"
)

func TestRenderText(t *testing.T) {
	msg := chat.Text(42, "*Участник 1 из 2*").AsMarkdown().WithControls(
		[]chat.Button{{Text: "◀️", Action: "admin_prev", Payload: "0"}, {Text: "▶️", Action: "admin_next", Payload: "0"}},
	)
	what, opts := render(msg)
	assert.Equal(t, "*Участник 1 из 2*", what)
	assert.Equal(t, tele.ModeMarkdown, opts.ParseMode)
	require.NotNil(t, opts.ReplyMarkup)
	require.Len(t, opts.ReplyMarkup.InlineKeyboard, 1)
	assert.Equal(t, "admin_next", opts.ReplyMarkup.InlineKeyboard[0][1].Unique)
}

func TestRenderPlainWithoutControls(t *testing.T) {
	_, opts := render(chat.Text(42, "hi"))
	assert.Empty(t, opts.ParseMode)
	assert.Nil(t, opts.ReplyMarkup)
}

func TestRenderMedia(t *testing.T) {
	what, _ := render(chat.Media(42, chat.MediaPhoto, "AgAD-photo", "caption"))
	photo, ok := what.(*tele.Photo)
	require.True(t, ok)
	assert.Equal(t, "AgAD-photo", photo.FileID)
	assert.Equal(t, "caption", photo.Caption)

	what, _ = render(chat.Media(42, chat.MediaDocument, "BQAD-doc", ""))
	doc, ok := what.(*tele.Document)
	require.True(t, ok)
	assert.Equal(t, "BQAD-doc", doc.FileID)
}

func TestMediaFile(t *testing.T) {
	assert.Equal(t, "https://example.com/poster.jpg", mediaFile("https://example.com/poster.jpg").FileURL)

	path := filepath.Join(t.TempDir(), "poster.jpg")
	require.NoError(t, os.WriteFile(path, []byte("jpg"), 0o600))
	assert.Equal(t, path, mediaFile(path).FileLocal)

	f := mediaFile("AgACAgIAAxkBAAI")
	assert.Equal(t, "AgACAgIAAxkBAAI", f.FileID)
	assert.Empty(t, f.FileLocal)
}

func TestTransportUnbound(t *testing.T) {
	err := NewTransport().Send(context.Background(), chat.Text(1, "hi"))
	assert.ErrorIs(t, err, ErrNotBound)
}

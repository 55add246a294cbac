package moderation_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/regbot/internal/chat"
	"github.com/m3rciful/regbot/internal/moderation"
	"github.com/m3rciful/regbot/internal/participant"
	"github.com/m3rciful/regbot/internal/participant/participanttest"
	"github.com/m3rciful/regbot/internal/texts"
)

const admin = 900

func setup(t *testing.T, ids ...int64) (*participant.SQLStore, *moderation.Workflow) {
	t.Helper()
	ctx := context.Background()
	store := participanttest.NewStore(t)
	for _, id := range ids {
		require.NoError(t, store.Upsert(ctx, id, fmt.Sprintf("user%d", id)))
	}
	w, err := moderation.New(store, moderation.NewAdminSet(admin))
	require.NoError(t, err)
	return store, w
}

func register(t *testing.T, store participant.Store, id int64, first string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, store.Upsert(ctx, id, ""))
	require.NoError(t, store.SetFields(ctx, id,
		participant.Name(first, "Ким"),
		participant.Phone("+7700"),
		participant.ReceiptOf(fmt.Sprintf("ref-%d", id), participant.AttachmentPhoto),
		participant.StatusOf(participant.StatusRegistered),
	))
}

func single(t *testing.T, msgs []chat.Message, err error) chat.Message {
	t.Helper()
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	return msgs[0]
}

func TestListShowsNewestFirst(t *testing.T) {
	_, w := setup(t, 1, 2, 3)
	msgs, err := w.List(context.Background(), admin)
	card := single(t, msgs, err)
	assert.Contains(t, card.Text, "Участник 1 из 3")
	assert.Contains(t, card.Text, "`3`")
	assert.True(t, card.Markdown)
	assert.False(t, card.Replace)
	assert.Equal(t, 5, chat.CountButtons(card.Controls))
}

func TestListEmpty(t *testing.T) {
	_, w := setup(t)
	msgs, err := w.List(context.Background(), admin)
	assert.Equal(t, texts.NoParticipants, single(t, msgs, err).Text)
}

func TestStepClampsAtEdges(t *testing.T) {
	_, w := setup(t, 1, 2, 3)
	ctx := context.Background()

	msgs, err := w.Step(ctx, admin, moderation.Backward, 0)
	assert.Contains(t, single(t, msgs, err).Text, "Участник 1 из 3")

	msgs, err = w.Step(ctx, admin, moderation.Forward, 2)
	assert.Contains(t, single(t, msgs, err).Text, "Участник 3 из 3")

	msgs, err = w.Step(ctx, admin, moderation.Forward, 0)
	card := single(t, msgs, err)
	assert.Contains(t, card.Text, "Участник 2 из 3")
	assert.True(t, card.Replace)
}

func TestDeleteAtPositionTwoOfFive(t *testing.T) {
	ctx := context.Background()
	// Newest first: 50, 30, 42, 20, 10.
	store, w := setup(t, 10, 20, 42, 30, 50)

	msgs, err := w.AskDelete(ctx, admin, 42, 2)
	confirm := single(t, msgs, err)
	require.Len(t, confirm.Controls, 1)
	assert.Equal(t, moderation.ActionDeleteConfirm, confirm.Controls[0][0].Action)
	assert.Equal(t, "42|2", confirm.Controls[0][0].Payload)

	snap, err := store.ListOrdered(ctx)
	require.NoError(t, err)
	assert.Len(t, snap, 5, "asking does not delete")

	msgs, err = w.Dispatch(ctx, chat.Event{UserID: admin, Kind: chat.EventButton,
		Action: moderation.ActionDeleteConfirm, Payload: confirm.Controls[0][0].Payload})
	card := single(t, msgs, err)

	snap, err = store.ListOrdered(ctx)
	require.NoError(t, err)
	require.Len(t, snap, 4)
	for _, r := range snap {
		assert.NotEqual(t, int64(42), r.ID)
	}
	assert.Contains(t, card.Text, "Участник 3 из 4")
	assert.Contains(t, card.Text, "`20`")
}

func TestDeleteLastPositionLandsOnNewLast(t *testing.T) {
	ctx := context.Background()
	_, w := setup(t, 1, 2, 3, 4, 5)

	msgs, err := w.ConfirmDelete(ctx, admin, 1, 4)
	card := single(t, msgs, err)
	assert.Contains(t, card.Text, "Участник 4 из 4")
	assert.Contains(t, card.Text, "`2`")
}

func TestDeleteOnlyRecordRendersEmptyState(t *testing.T) {
	_, w := setup(t, 7)
	msgs, err := w.ConfirmDelete(context.Background(), admin, 7, 0)
	assert.Equal(t, texts.NoParticipants, single(t, msgs, err).Text)
}

func TestCancelDeleteKeepsRecord(t *testing.T) {
	ctx := context.Background()
	store, w := setup(t, 1, 2, 3)

	msgs, err := w.CancelDelete(ctx, admin, 2, 1)
	assert.Contains(t, single(t, msgs, err).Text, "Участник 2 из 3")
	_, ok, err := store.Get(ctx, 2)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAskDeleteVanishedRecord(t *testing.T) {
	_, w := setup(t, 1, 2)
	msgs, err := w.AskDelete(context.Background(), admin, 99, 1)
	assert.Contains(t, single(t, msgs, err).Text, "Участник 2 из 2")
}

func TestShowReceipt(t *testing.T) {
	ctx := context.Background()
	store, w := setup(t, 1)
	register(t, store, 2, "Анна")

	msgs, err := w.ShowReceipt(ctx, admin, 0)
	m := single(t, msgs, err)
	assert.Equal(t, chat.KindPhoto, m.Kind)
	assert.Equal(t, "ref-2", m.Ref)

	msgs, err = w.ShowReceipt(ctx, admin, 1)
	assert.Equal(t, texts.ReceiptMissing, single(t, msgs, err).Text)

	msgs, err = w.ShowReceipt(ctx, admin, 99)
	assert.Equal(t, texts.ReceiptMissing, single(t, msgs, err).Text, "clamped to the last record")
}

func TestListRegisteredEmpty(t *testing.T) {
	_, w := setup(t, 1, 2)
	msgs, err := w.ListRegistered(context.Background(), admin)
	assert.Equal(t, texts.NoRegistered, single(t, msgs, err).Text)
}

func TestListRegisteredFiltersAndChunks(t *testing.T) {
	ctx := context.Background()
	store, w := setup(t, 1)
	long := strings.Repeat("Александра", 6)
	const total = 200
	for i := int64(1); i <= total; i++ {
		register(t, store, 1000+i, fmt.Sprintf("%s%03d", long, i))
	}

	msgs, err := w.ListRegistered(ctx, admin)
	require.NoError(t, err)
	require.Greater(t, len(msgs), 1)

	var lines []string
	for _, m := range msgs {
		assert.LessOrEqual(t, utf8.RuneCountInString(m.Text), chat.MaxTextLength)
		lines = append(lines, strings.Split(m.Text, "\n")...)
	}
	require.Len(t, lines, total+1)
	assert.Equal(t, texts.RegisteredHeading, lines[0])
	// Newest first: the last registered participant is entry 1.
	assert.True(t, strings.HasPrefix(lines[1], fmt.Sprintf("1. %s%03d", long, total)), lines[1])
	assert.True(t, strings.HasPrefix(lines[total], fmt.Sprintf("%d. %s001", total, long)), lines[total])
}

func TestNonAdminIsDenied(t *testing.T) {
	ctx := context.Background()
	store, w := setup(t, 1, 2, 3)
	register(t, store, 4, "Анна")
	const stranger = 5

	calls := map[string]func() ([]chat.Message, error){
		"list":       func() ([]chat.Message, error) { return w.List(ctx, stranger) },
		"step":       func() ([]chat.Message, error) { return w.Step(ctx, stranger, moderation.Forward, 0) },
		"receipt":    func() ([]chat.Message, error) { return w.ShowReceipt(ctx, stranger, 0) },
		"registered": func() ([]chat.Message, error) { return w.ListRegistered(ctx, stranger) },
		"ask":        func() ([]chat.Message, error) { return w.AskDelete(ctx, stranger, 1, 0) },
		"confirm":    func() ([]chat.Message, error) { return w.ConfirmDelete(ctx, stranger, 1, 0) },
		"cancel":     func() ([]chat.Message, error) { return w.CancelDelete(ctx, stranger, 1, 0) },
		"dispatch": func() ([]chat.Message, error) {
			return w.Dispatch(ctx, chat.Event{UserID: stranger, Action: moderation.ActionDeleteConfirm, Payload: "2|0"})
		},
		"dispatch_malformed": func() ([]chat.Message, error) {
			return w.Dispatch(ctx, chat.Event{UserID: stranger, Action: moderation.ActionDelete, Payload: "junk"})
		},
	}
	for name, call := range calls {
		msgs, err := call()
		m := single(t, msgs, err)
		assert.Equal(t, texts.Denied, m.Text, name)
		assert.Equal(t, int64(stranger), m.To, name)
	}

	snap, err := store.ListOrdered(ctx)
	require.NoError(t, err)
	assert.Len(t, snap, 4)
}

func TestDispatchNavigation(t *testing.T) {
	ctx := context.Background()
	_, w := setup(t, 1, 2, 3)

	msgs, err := w.Dispatch(ctx, chat.Event{UserID: admin, Action: moderation.ActionNext, Payload: "1"})
	assert.Contains(t, single(t, msgs, err).Text, "Участник 3 из 3")

	msgs, err = w.Dispatch(ctx, chat.Event{UserID: admin, Action: moderation.ActionPrev, Payload: "garbage"})
	assert.Contains(t, single(t, msgs, err).Text, "Участник 1 из 3")

	msgs, err = w.Dispatch(ctx, chat.Event{UserID: admin, Action: "unknown"})
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

package participant_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/regbot/internal/participant"
	"github.com/m3rciful/regbot/internal/participant/participanttest"
)

func TestUpsertCreatesNewRecord(t *testing.T) {
	ctx := context.Background()
	store := participanttest.NewStore(t)

	require.NoError(t, store.Upsert(ctx, 42, "anna"))

	rec, ok, err := store.Get(ctx, 42)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(42), rec.ID)
	assert.Equal(t, "anna", rec.Handle)
	assert.Equal(t, participant.StatusNew, rec.Status)
	assert.Nil(t, rec.Receipt)
	assert.False(t, rec.UpdatedAt.IsZero())
}

func TestUpsertKeepsHandleAndFields(t *testing.T) {
	ctx := context.Background()
	store := participanttest.NewStore(t)

	require.NoError(t, store.Upsert(ctx, 1, "anna"))
	require.NoError(t, store.SetFields(ctx, 1,
		participant.Name("Анна", "Ким"),
		participant.Phone("+77001234567"),
		participant.StatusOf(participant.StatusAwaitingReceipt),
	))
	require.NoError(t, store.Upsert(ctx, 1, ""))

	rec, ok, err := store.Get(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "anna", rec.Handle)
	assert.Equal(t, "Анна", rec.FirstName)
	assert.Equal(t, "Ким", rec.LastName)
	assert.Equal(t, "+77001234567", rec.Phone)
	assert.Equal(t, participant.StatusAwaitingReceipt, rec.Status)

	require.NoError(t, store.Upsert(ctx, 1, "anna_k"))
	rec, _, err = store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "anna_k", rec.Handle)
}

func TestSetFieldsMissingRecordWritesNothing(t *testing.T) {
	ctx := context.Background()
	store := participanttest.NewStore(t)

	err := store.SetFields(ctx, 7, participant.Phone("123"))
	require.ErrorIs(t, err, participant.ErrNotFound)

	_, ok, err := store.Get(ctx, 7)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSetFieldsRejectsInvalidFields(t *testing.T) {
	ctx := context.Background()
	store := participanttest.NewStore(t)
	require.NoError(t, store.Upsert(ctx, 1, ""))

	err := store.SetFields(ctx, 1, participant.ReceiptOf("file-1", "video"))
	require.Error(t, err)

	err = store.SetFields(ctx, 1, participant.ReceiptOf("", participant.AttachmentPhoto))
	require.Error(t, err)

	err = store.SetFields(ctx, 1, participant.Field{Kind: 99})
	require.ErrorIs(t, err, participant.ErrUnknownField)

	rec, _, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, rec.Receipt)
}

func TestStatusNeverMovesBackwards(t *testing.T) {
	ctx := context.Background()
	store := participanttest.NewStore(t)
	require.NoError(t, store.Upsert(ctx, 1, ""))

	require.NoError(t, store.SetFields(ctx, 1,
		participant.ReceiptOf("file-1", participant.AttachmentDocument),
		participant.StatusOf(participant.StatusRegistered),
	))
	require.NoError(t, store.SetFields(ctx, 1, participant.StatusOf(participant.StatusAwaitingName)))

	rec, _, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, participant.StatusRegistered, rec.Status)
	require.NotNil(t, rec.Receipt)
	assert.Equal(t, "file-1", rec.Receipt.Ref)
	assert.Equal(t, participant.AttachmentDocument, rec.Receipt.Kind)
}

func TestUnfinishedCycleRestartsAtName(t *testing.T) {
	ctx := context.Background()
	store := participanttest.NewStore(t)
	require.NoError(t, store.Upsert(ctx, 1, ""))
	require.NoError(t, store.SetFields(ctx, 1,
		participant.Phone("+7700"),
		participant.StatusOf(participant.StatusAwaitingReceipt),
	))

	require.NoError(t, store.SetFields(ctx, 1, participant.StatusOf(participant.StatusAwaitingName)))
	rec, _, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, participant.StatusAwaitingName, rec.Status)
	assert.Equal(t, "+7700", rec.Phone)

	require.NoError(t, store.SetFields(ctx, 1, participant.StatusOf(participant.StatusNew)))
	rec, _, err = store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, participant.StatusAwaitingName, rec.Status)
}

func TestListOrderedMostRecentFirst(t *testing.T) {
	ctx := context.Background()
	store := participanttest.NewStore(t)

	// A frozen clock still has to produce a strict order.
	frozen := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	participant.SetClock(store, func() time.Time { return frozen })

	for id := int64(1); id <= 5; id++ {
		require.NoError(t, store.Upsert(ctx, id, ""))
	}
	assertOrder(t, store, 5, 4, 3, 2, 1)

	require.NoError(t, store.SetFields(ctx, 2, participant.Phone("555")))
	assertOrder(t, store, 2, 5, 4, 3, 1)

	require.NoError(t, store.Upsert(ctx, 1, "back"))
	assertOrder(t, store, 1, 2, 5, 4, 3)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	store := participanttest.NewStore(t)
	require.NoError(t, store.Upsert(ctx, 1, ""))
	require.NoError(t, store.Upsert(ctx, 2, ""))

	require.NoError(t, store.Delete(ctx, 1))
	require.NoError(t, store.Delete(ctx, 1))

	_, ok, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)
	assertOrder(t, store, 2)

	// Re-creating after delete starts from scratch.
	require.NoError(t, store.Upsert(ctx, 1, ""))
	rec, _, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, participant.StatusNew, rec.Status)
	assert.Empty(t, rec.Phone)
}

func TestConcurrentWriters(t *testing.T) {
	ctx := context.Background()
	store := participanttest.NewStore(t)

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			assert.NoError(t, store.Upsert(ctx, id, fmt.Sprintf("user%d", id)))
			assert.NoError(t, store.SetFields(ctx, id, participant.Name("First", ""), participant.StatusOf(participant.StatusAwaitingPhone)))
			assert.NoError(t, store.SetFields(ctx, id, participant.Phone("1"), participant.StatusOf(participant.StatusAwaitingReceipt)))
		}(int64(i + 1))
	}
	wg.Wait()

	list, err := store.ListOrdered(ctx)
	require.NoError(t, err)
	require.Len(t, list, n)
	for i, rec := range list {
		assert.Equal(t, participant.StatusAwaitingReceipt, rec.Status)
		assert.Equal(t, "1", rec.Phone)
		if i > 0 {
			assert.True(t, list[i-1].UpdatedAt.After(rec.UpdatedAt), "list must be strictly descending")
		}
	}
}

func TestClockNeverGoesBackwards(t *testing.T) {
	ctx := context.Background()
	store := participanttest.NewStore(t)
	participant.SetClock(store, func() time.Time { return time.Unix(0, 1000) })
	require.NoError(t, store.Upsert(ctx, 1, ""))

	rec, _, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), rec.UpdatedAt.UnixNano())

	participant.SetClock(store, func() time.Time { return time.Unix(0, 10) })
	require.NoError(t, store.Upsert(ctx, 2, ""))
	rec, _, err = store.Get(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1001), rec.UpdatedAt.UnixNano())
}

func assertOrder(t *testing.T, store participant.Store, ids ...int64) {
	t.Helper()
	list, err := store.ListOrdered(context.Background())
	require.NoError(t, err)
	got := make([]int64, 0, len(list))
	for _, rec := range list {
		got = append(got, rec.ID)
	}
	assert.Equal(t, ids, got)
}

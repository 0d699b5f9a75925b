package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campboard/campboard/internal/models"
	"github.com/campboard/campboard/internal/schedule"
)

func newTestSchedule(kid string) *schedule.Document {
	return schedule.New(kid, "owner-1", time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC), 4)
}

func TestMemoryStoreAccounts(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.GetAccount(ctx, "g1")
	require.ErrorIs(t, err, ErrNotFound)

	a := &models.Account{ID: "g1", Email: "g1@example.com", Kids: []string{"Ann"}}
	require.NoError(t, s.PutAccount(ctx, a))

	got, err := s.GetAccount(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, "g1@example.com", got.Email)
	assert.Equal(t, []string{"Ann"}, got.Kids)
	assert.False(t, got.CreatedAt.IsZero())

	byEmail, err := s.GetAccountByEmail(ctx, "g1@example.com")
	require.NoError(t, err)
	assert.Equal(t, "g1", byEmail.ID)
	_, err = s.GetAccountByEmail(ctx, "nobody@example.com")
	require.ErrorIs(t, err, ErrNotFound)

	kids := []string{"Ann", "Bo"}
	require.NoError(t, s.PatchAccount(ctx, "g1", AccountPatch{Kids: &kids}))
	got, err = s.GetAccount(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, kids, got.Kids)
	assert.Equal(t, "g1@example.com", got.Email, "unpatched fields survive")

	require.ErrorIs(t, s.PatchAccount(ctx, "missing", AccountPatch{}), ErrNotFound)
}

func TestMemoryStoreCreateRejectsDuplicateID(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	d := newTestSchedule("Ann")
	require.NoError(t, s.CreateSchedule(ctx, d))
	assert.Equal(t, int64(1), d.Version)

	dup := newTestSchedule("Bo")
	dup.ID = d.ID
	require.ErrorIs(t, s.CreateSchedule(ctx, dup), ErrIDTaken)

	// the original is untouched
	got, err := s.GetSchedule(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ann", got.KidName)
}

func TestMemoryStorePatchCheckAndSet(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	d := newTestSchedule("Ann")
	require.NoError(t, s.CreateSchedule(ctx, d))

	camps := []string{"Art"}
	require.NoError(t, s.PatchSchedule(ctx, d.ID, SchedulePatch{Camps: &camps}, 1))

	got, err := s.GetSchedule(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Version)
	assert.Equal(t, []string{"Art"}, got.Camps)
	assert.Equal(t, "Ann", got.KidName, "unpatched fields survive")

	// replaying the stale version loses the race explicitly
	stale := []string{"Soccer"}
	require.ErrorIs(t, s.PatchSchedule(ctx, d.ID, SchedulePatch{Camps: &stale}, 1), ErrVersionConflict)

	require.ErrorIs(t, s.PatchSchedule(ctx, "missing", SchedulePatch{}, 1), ErrNotFound)
}

func TestMemoryStoreSubscribeDeliversCommitOrder(t *testing.T) {
	s := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	d := newTestSchedule("Ann")
	require.NoError(t, s.CreateSchedule(context.Background(), d))

	ch, err := s.SubscribeSchedule(ctx, d.ID)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		kids := []string{"Ann"}
		m := schedule.NewAssignmentMap()
		m.Set(0, i, kids)
		require.NoError(t, s.PatchSchedule(context.Background(), d.ID, SchedulePatch{Assignment: &m}, int64(i+1)))
	}

	for i := 0; i < 3; i++ {
		select {
		case ev := <-ch:
			require.NotNil(t, ev.Doc)
			assert.Equal(t, int64(i+2), ev.Doc.Version, "versions arrive in commit order")
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for event")
		}
	}
}

func TestMemoryStoreSubscribeDeleteIsTombstone(t *testing.T) {
	s := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	d := newTestSchedule("Ann")
	require.NoError(t, s.CreateSchedule(context.Background(), d))

	ch, err := s.SubscribeSchedule(ctx, d.ID)
	require.NoError(t, err)

	require.NoError(t, s.DeleteSchedule(context.Background(), d.ID))

	select {
	case ev := <-ch:
		assert.True(t, ev.Deleted)
		assert.Nil(t, ev.Doc)
		assert.Equal(t, d.ID, ev.ID)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for tombstone")
	}
}

func TestMemoryStoreSubscribeTeardown(t *testing.T) {
	s := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())

	d := newTestSchedule("Ann")
	require.NoError(t, s.CreateSchedule(context.Background(), d))

	ch, err := s.SubscribeSchedule(ctx, d.ID)
	require.NoError(t, err)

	cancel()

	// channel closes and later commits are not delivered
	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				camps := []string{"Art"}
				require.NoError(t, s.PatchSchedule(context.Background(), d.ID, SchedulePatch{Camps: &camps}, 1))
				return
			}
		case <-deadline:
			t.Fatal("channel never closed after cancel")
		}
	}
}

func TestMemoryStoreSubscribeManyFilters(t *testing.T) {
	s := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	d1 := newTestSchedule("Ann")
	d2 := newTestSchedule("Bo")
	d3 := newTestSchedule("Cy")
	for _, d := range []*schedule.Document{d1, d2, d3} {
		require.NoError(t, s.CreateSchedule(context.Background(), d))
	}

	ch, err := s.SubscribeSchedules(ctx, []string{d1.ID, d2.ID})
	require.NoError(t, err)

	camps := []string{"Art"}
	require.NoError(t, s.PatchSchedule(context.Background(), d3.ID, SchedulePatch{Camps: &camps}, 1))
	require.NoError(t, s.PatchSchedule(context.Background(), d2.ID, SchedulePatch{Camps: &camps}, 1))

	select {
	case ev := <-ch:
		assert.Equal(t, d2.ID, ev.ID, "events for unsubscribed ids are filtered out")
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestMemoryStoreGetSchedulesByIDs(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	d1 := newTestSchedule("Ann")
	d2 := newTestSchedule("Bo")
	require.NoError(t, s.CreateSchedule(ctx, d1))
	require.NoError(t, s.CreateSchedule(ctx, d2))

	got, err := s.GetSchedulesByIDs(ctx, []string{d1.ID, "GONE42", d2.ID})
	require.NoError(t, err)
	assert.Len(t, got, 2, "vanished ids are skipped, not an error")
}

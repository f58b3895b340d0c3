package session

import (
	"context"
	"testing"
	"time"

	"github.com/shoenig/test/must"
)

func testNow() time.Time {
	return time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
}

func testSession(id string) Session {
	return Session{
		SessionID: id,
		UserID:    "user-1",
		CreatedAt: testNow(),
		ExpiresAt: testNow().Add(time.Hour),
		Device:    "Firefox/desktop",
	}
}

func TestMemoryStore_CreateGet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := NewMemoryStore()
	m.clock = testNow

	must.NoError(t, m.Create(ctx, testSession("sid-1")))

	got, err := m.Get(ctx, "sid-1")
	must.NoError(t, err)
	must.Eq(t, testSession("sid-1"), *got)

	missing, err := m.Get(ctx, "sid-2")
	must.NoError(t, err)
	must.Nil(t, missing)
}

func TestMemoryStore_Create_invalid(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := NewMemoryStore()
	m.clock = testNow

	t.Run("missing user", func(t *testing.T) {
		s := testSession("sid-1")
		s.UserID = ""
		must.ErrorIs(t, m.Create(ctx, s), ErrInvalid)
	})

	t.Run("already expired", func(t *testing.T) {
		s := testSession("sid-2")
		s.ExpiresAt = testNow()
		must.ErrorIs(t, m.Create(ctx, s), ErrInvalid)
	})

	t.Run("collision", func(t *testing.T) {
		must.NoError(t, m.Create(ctx, testSession("sid-3")))
		must.ErrorIs(t, m.Create(ctx, testSession("sid-3")), ErrInvalid)
	})
}

func TestMemoryStore_expiry(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := testNow()
	m := NewMemoryStore()
	m.clock = func() time.Time { return now }

	must.NoError(t, m.Create(ctx, testSession("sid-1")))

	// advance past expiry
	now = now.Add(2 * time.Hour)

	got, err := m.Get(ctx, "sid-1")
	must.NoError(t, err)
	must.Nil(t, got)
	must.Eq(t, 0, m.Len())
}

func TestMemoryStore_UpdateDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := NewMemoryStore()
	m.clock = testNow

	s := testSession("sid-1")
	must.NoError(t, m.Create(ctx, s))

	s.ExpiresAt = testNow().Add(3 * time.Hour)
	must.NoError(t, m.Update(ctx, s))

	got, err := m.Get(ctx, "sid-1")
	must.NoError(t, err)
	must.Eq(t, s.ExpiresAt, got.ExpiresAt)

	// updating to an expired time removes the session
	s.ExpiresAt = testNow().Add(-time.Minute)
	must.NoError(t, m.Update(ctx, s))
	must.Eq(t, 0, m.Len())

	must.NoError(t, m.Delete(ctx, "sid-1"))
	must.NoError(t, m.Delete(ctx, "never-existed"))
}

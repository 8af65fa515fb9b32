package memory

import (
	"context"
	"testing"
	"time"

	"github.com/dropDatabas3/earlyaccess/internal/registration/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	s := New()
	r := &store.Registration{ID: "r1", Email: "a@b.com", Status: store.StatusPending, CreatedAt: time.Now()}
	require.NoError(t, s.Create(ctx, r))

	got, err := s.GetByEmail(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, "r1", got.ID)

	// las copias no comparten estado
	got.Status = store.StatusConfirmed
	again, _ := s.GetByID(ctx, "r1")
	assert.Equal(t, store.StatusPending, again.Status)
	assert.Equal(t, 1, s.Len())
}

func TestStore_DuplicateEmailConflicts(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Create(ctx, &store.Registration{ID: "r1", Email: "a@b.com"}))
	assert.ErrorIs(t, s.Create(ctx, &store.Registration{ID: "r2", Email: "a@b.com"}), store.ErrConflict)
}

func TestStore_NotFound(t *testing.T) {
	ctx := context.Background()
	s := New()
	_, err := s.GetByID(ctx, "nope")
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.GetByEmail(ctx, "nope")
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.MarkConfirmed(ctx, "nope", time.Now())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestStore_MarkConfirmedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Create(ctx, &store.Registration{ID: "r1", Email: "a@b.com", Status: store.StatusPending}))

	first := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	r, err := s.MarkConfirmed(ctx, "r1", first)
	require.NoError(t, err)
	assert.Equal(t, store.StatusConfirmed, r.Status)

	r, err = s.MarkConfirmed(ctx, "r1", first.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, first, *r.ConfirmedAt)
}

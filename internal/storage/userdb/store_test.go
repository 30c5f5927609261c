package userdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcarver/folio/internal/common"
	"github.com/jcarver/folio/internal/interfaces"
	"github.com/jcarver/folio/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(common.NewSilentLogger(), t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestPutGetDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rec := &models.UserRecord{
		UserID:  "alice",
		Subject: "transaction",
		Key:     "tx-1",
		Value:   `{"ticker":"VAS.AX"}`,
	}
	require.NoError(t, store.Put(ctx, rec))
	assert.Equal(t, 1, rec.Version)

	got, err := store.Get(ctx, "alice", "transaction", "tx-1")
	require.NoError(t, err)
	assert.Equal(t, rec.Value, got.Value)
	assert.False(t, got.DateTime.IsZero())

	require.NoError(t, store.Delete(ctx, "alice", "transaction", "tx-1"))
	_, err = store.Get(ctx, "alice", "transaction", "tx-1")
	assert.Error(t, err)

	// Deleting a missing record is a no-op.
	assert.NoError(t, store.Delete(ctx, "alice", "transaction", "tx-1"))
}

func TestPutIncrementsVersion(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rec := &models.UserRecord{UserID: "alice", Subject: "allocation", Key: "VAS.AX", Value: "v1"}
	require.NoError(t, store.Put(ctx, rec))
	assert.Equal(t, 1, rec.Version)

	rec.Value = "v2"
	require.NoError(t, store.Put(ctx, rec))
	assert.Equal(t, 2, rec.Version)

	got, err := store.Get(ctx, "alice", "allocation", "VAS.AX")
	require.NoError(t, err)
	assert.Equal(t, "v2", got.Value)
	assert.Equal(t, 2, got.Version)
}

func TestListScopedToUserAndSubject(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, rec := range []*models.UserRecord{
		{UserID: "alice", Subject: "transaction", Key: "tx-1", Value: "a"},
		{UserID: "alice", Subject: "transaction", Key: "tx-2", Value: "b"},
		{UserID: "alice", Subject: "allocation", Key: "VAS.AX", Value: "c"},
		{UserID: "bob", Subject: "transaction", Key: "tx-3", Value: "d"},
	} {
		require.NoError(t, store.Put(ctx, rec))
	}

	recs, err := store.List(ctx, "alice", "transaction")
	require.NoError(t, err)
	assert.Len(t, recs, 2)
	for _, rec := range recs {
		assert.Equal(t, "alice", rec.UserID)
		assert.Equal(t, "transaction", rec.Subject)
	}
}

func TestQueryOrderingAndLimit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, key := range []string{"a", "b", "c"} {
		rec := &models.UserRecord{UserID: "alice", Subject: "transaction", Key: key, Value: key}
		require.NoError(t, store.Put(ctx, rec))
	}

	desc, err := store.Query(ctx, "alice", "transaction", interfaces.QueryOptions{})
	require.NoError(t, err)
	require.Len(t, desc, 3)
	for i := 1; i < len(desc); i++ {
		assert.False(t, desc[i].DateTime.After(desc[i-1].DateTime), "default order should be newest first")
	}

	asc, err := store.Query(ctx, "alice", "transaction", interfaces.QueryOptions{OrderBy: "datetime_asc", Limit: 2})
	require.NoError(t, err)
	assert.Len(t, asc, 2)
	for i := 1; i < len(asc); i++ {
		assert.False(t, asc[i].DateTime.Before(asc[i-1].DateTime), "ascending order expected")
	}
}

func TestCompositeKeyIsolation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// Keys containing the other segments' text must not collide.
	first := &models.UserRecord{UserID: "a", Subject: "b", Key: "c", Value: "1"}
	second := &models.UserRecord{UserID: "a", Subject: "b:c", Key: "", Value: "2"}
	require.NoError(t, store.Put(ctx, first))
	require.NoError(t, store.Put(ctx, second))

	got, err := store.Get(ctx, "a", "b", "c")
	require.NoError(t, err)
	assert.Equal(t, "1", got.Value)
}

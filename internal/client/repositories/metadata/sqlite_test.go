package metadata

import (
	"context"
	"database/sql"
	"testing"

	"github.com/dmitrijs2005/jobcoach/internal/common"
	"github.com/dmitrijs2005/jobcoach/internal/dbx"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := dbx.OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE metadata (
  key   TEXT PRIMARY KEY,
  value BLOB NOT NULL
);`)
	require.NoError(t, err)
	return db
}

func TestSetAndGet(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "k1", []byte{0x01, 0x02}))

	v, err := r.Get(ctx, "k1")
	require.NoError(t, err)
	require.Equal(t, []byte{0x01, 0x02}, v)
}

func TestGet_Missing_ReturnsErrNotFound(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	v, err := r.Get(context.Background(), "absent")
	require.ErrorIs(t, err, ErrNotFound)
	require.Nil(t, v)
}

func TestSet_Upsert(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "k", []byte("old")))
	require.NoError(t, r.Set(ctx, "k", []byte("new")))

	v, err := r.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("new"), v)
}

func TestSetIfAbsent_KeepsFirstValue(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	got, err := r.SetIfAbsent(ctx, "k", []byte("first"))
	require.NoError(t, err)
	assert.Equal(t, []byte("first"), got)

	got, err = r.SetIfAbsent(ctx, "k", []byte("second"))
	require.NoError(t, err)
	assert.Equal(t, []byte("first"), got)
}

func TestDelete_Idempotent(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "a", []byte{0xAA}))
	require.NoError(t, r.Delete(ctx, "a"))
	require.NoError(t, r.Delete(ctx, "a"))

	_, err := r.Get(ctx, "a")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestWithinTx_RolledBackWritesAreInvisible(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		require.NoError(t, NewSQLiteRepository(tx).Set(ctx, "k", []byte("v")))
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	_, err = NewSQLiteRepository(db).Get(ctx, "k")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestClosedDB_ErrorsWrapped(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()
	require.NoError(t, db.Close())

	_, err := r.Get(ctx, "k")
	require.ErrorContains(t, err, `metadata get "k"`)
	require.ErrorContains(t, r.Set(ctx, "k", []byte("v")), `metadata set "k"`)
	_, err = r.SetIfAbsent(ctx, "k", []byte("v"))
	require.ErrorContains(t, err, `metadata set-if-absent "k"`)
	require.ErrorContains(t, r.Delete(ctx, "k"), `metadata delete "k"`)
}

func TestDeviceID_StableAcrossCalls(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	first, err := DeviceID(ctx, r)
	require.NoError(t, err)
	_, err = uuid.Parse(first)
	require.NoError(t, err)

	second, err := DeviceID(ctx, r)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestDeviceID_ReplacesGarbage(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()
	require.NoError(t, r.Set(ctx, common.MetadataDeviceID, []byte("not-a-uuid")))

	id, err := DeviceID(ctx, r)
	require.NoError(t, err)
	_, err = uuid.Parse(id)
	require.NoError(t, err)
}

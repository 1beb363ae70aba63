package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSQLite(t *testing.T) *SQLiteStore {
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLite_GetMissing(t *testing.T) {
	store := setupSQLite(t)

	_, err := store.Get(context.Background(), KeyAuthToken)

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLite_SetGetOverwrite(t *testing.T) {
	store := setupSQLite(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, KeyPincode, "560001"))
	require.NoError(t, store.Set(ctx, KeyPincode, "110001"))

	v, err := store.Get(ctx, KeyPincode)
	require.NoError(t, err)
	assert.Equal(t, "110001", v)
}

func TestSQLite_DeleteMany(t *testing.T) {
	store := setupSQLite(t)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, KeyAuthToken, "tok"))
	require.NoError(t, store.Set(ctx, KeyUserData, "{}"))
	require.NoError(t, store.Set(ctx, KeyPincode, "560001"))

	require.NoError(t, store.Delete(ctx, KeyAuthToken, KeyUserData, "never-set"))

	_, err := store.Get(ctx, KeyAuthToken)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.Get(ctx, KeyUserData)
	assert.ErrorIs(t, err, ErrNotFound)
	v, err := store.Get(ctx, KeyPincode)
	require.NoError(t, err)
	assert.Equal(t, "560001", v)
}

func TestSQLite_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	ctx := context.Background()

	first, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, KeyHasVisited, "true"))
	require.NoError(t, first.Close())

	second, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer second.Close()

	v, err := second.Get(ctx, KeyHasVisited)
	require.NoError(t, err)
	assert.Equal(t, "true", v)
}

func TestSQLite_CancelledContext(t *testing.T) {
	store := setupSQLite(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Get(ctx, KeyAuthToken)

	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), Options{Backend: "etcd"})
	assert.ErrorContains(t, err, "unknown storage backend")
}

func TestOpen_SQLiteCreatesMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".storefront", "state.db")
	ctx := context.Background()

	store, err := Open(ctx, Options{Backend: BackendSQLite, SQLitePath: path})
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Set(ctx, KeyPincode, "560001"))
	assert.FileExists(t, path)
}

package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_FileStore_Roundtrip(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	fs := afero.NewMemMapFs()

	store, err := NewFileStoreFs(fs, "data/users.json")
	req.NoError(err)
	req.Equal("file:data/users.json", store.Name())

	_, err = store.Load(ctx)
	req.ErrorIs(err, ErrBlobNotFound)

	req.NoError(store.Save(ctx, []byte(`{"version":1}`)))
	req.NoError(store.Save(ctx, []byte(`{"version":2}`)))

	data, err := store.Load(ctx)
	req.NoError(err)
	req.JSONEq(`{"version":2}`, string(data))

	entries, err := afero.ReadDir(fs, "data")
	req.NoError(err)
	req.Len(entries, 1, "temp files must not be left behind")
}

func Test_FileStore_Save_Honors_Context(t *testing.T) {
	store, err := NewFileStoreFs(afero.NewMemMapFs(), "users.json")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, store.Save(ctx, []byte("{}")), context.Canceled)

	_, err = store.Load(context.Background())
	assert.ErrorIs(t, err, ErrBlobNotFound)
}

func Test_FileStore_Rejects_Empty_Path(t *testing.T) {
	_, err := NewFileStoreFs(afero.NewMemMapFs(), "")
	assert.Error(t, err)
}

func Test_MemoryStore(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.Load(ctx)
	req.ErrorIs(err, ErrBlobNotFound)

	req.NoError(store.Save(ctx, []byte("a")))

	boom := errors.New("boom")
	store.FailSaves(boom)
	req.ErrorIs(store.Save(ctx, []byte("b")), boom)

	data, err := store.Load(ctx)
	req.NoError(err)
	req.Equal("a", string(data))
	req.Equal(1, store.Saves())
}

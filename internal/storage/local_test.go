package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/namkata/imagestore/internal/storage"
)

func TestLocalPutGetRoundTrip(t *testing.T) {
	backend, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	payload := []byte("gif bytes")
	loc, err := backend.Put(ctx, payload, "image/gif", "anim.gif")
	require.NoError(t, err)
	require.Equal(t, storage.KindLocal, loc.Kind)
	require.True(t, strings.HasSuffix(loc.Path, ".gif"))

	got, err := backend.Get(ctx, loc)
	require.NoError(t, err)
	require.Equal(t, payload, got)
}

func TestLocalLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	backend, err := storage.NewLocal(dir)
	require.NoError(t, err)

	_, err = backend.Put(context.Background(), []byte("x"), "image/png", "a.png")
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.False(t, strings.HasPrefix(entries[0].Name(), ".upload-"))
}

func TestLocalGetMissingFile(t *testing.T) {
	backend, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)

	_, err = backend.Get(context.Background(), storage.Locator{Kind: storage.KindLocal, Path: "nope.png"})
	require.Error(t, err)
	require.True(t, storage.IsNotFound(err))
}

func TestLocalDeleteIsIdempotent(t *testing.T) {
	backend, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	loc, err := backend.Put(ctx, []byte("x"), "image/png", "a.png")
	require.NoError(t, err)

	require.NoError(t, backend.Delete(ctx, loc))
	require.NoError(t, backend.Delete(ctx, loc))
}

func TestLocalRejectsUnwritableDirectory(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}
	parent := t.TempDir()
	dir := filepath.Join(parent, "blobs")
	require.NoError(t, os.MkdirAll(dir, 0o555))

	_, err := storage.NewLocal(dir)
	require.Error(t, err)
	require.Equal(t, storage.ErrKindConfiguration, storage.KindOf(err))
}

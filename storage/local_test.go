package storage

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageSaveAndGet(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	info, err := store.Save(strings.NewReader("%PDF-content"), "design.pdf")
	require.NoError(t, err)

	assert.NotEmpty(t, info.ID)
	assert.Equal(t, "design.pdf", info.Name)
	assert.Equal(t, int64(len("%PDF-content")), info.Size)
	assert.Equal(t, "application/pdf", info.MimeType)
	assert.Contains(t, info.Path, info.ID)

	rc, err := store.Get(info.Path)
	require.NoError(t, err)
	defer rc.Close()

	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-content", string(got))
}

func TestLocalStorageExistsAndDelete(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	info, err := store.Save(strings.NewReader("data"), "scan.png")
	require.NoError(t, err)

	ok, err := store.Exists(info.Path)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, store.Delete(info.Path))

	ok, err = store.Exists(info.Path)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLocalStorageMimeFallback(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	info, err := store.Save(strings.NewReader("x"), "blob.bin")
	require.NoError(t, err)
	assert.Equal(t, "application/octet-stream", info.MimeType)
}

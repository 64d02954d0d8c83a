package files

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocal_SaveAndDelete(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocal(filepath.Join(dir, "uploads"), 1024)
	require.NoError(t, err)

	url, err := store.Save("Lab Photo.PNG", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, URLPrefix))
	assert.True(t, strings.HasSuffix(url, ".png"))

	path := filepath.Join(store.Dir(), strings.TrimPrefix(url, URLPrefix))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	require.NoError(t, store.Delete(url))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, store.Delete(url), "deleting twice is a no-op")
}

func TestLocal_UniqueNames(t *testing.T) {
	store, err := NewLocal(t.TempDir(), 0)
	require.NoError(t, err)
	a, err := store.Save("a.pdf", strings.NewReader("1"))
	require.NoError(t, err)
	b, err := store.Save("a.pdf", strings.NewReader("2"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestLocal_Rejects(t *testing.T) {
	store, err := NewLocal(t.TempDir(), 4)
	require.NoError(t, err)

	_, err = store.Save("run.sh", strings.NewReader("echo"))
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = store.Save("logo.svg", strings.NewReader("<svg><script>alert(1)</script></svg>"))
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = store.Save("big.jpg", strings.NewReader("12345"))
	assert.ErrorIs(t, err, ErrTooLarge)
	entries, err := os.ReadDir(store.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries, "oversized upload must not be left behind")
}

func TestLocal_DeleteIgnoresForeignURLs(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocal(filepath.Join(dir, "up"), 0)
	require.NoError(t, err)
	outside := filepath.Join(dir, "keep.txt")
	require.NoError(t, os.WriteFile(outside, []byte("x"), 0o644))

	assert.NoError(t, store.Delete("/uploads/../keep.txt"))
	assert.NoError(t, store.Delete("https://cdn.example.com/a.png"))
	_, err = os.Stat(outside)
	assert.NoError(t, err)
}

package filesvc

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/darslik/core"
)

func TestLocalStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "http://localhost:8000/uploads/")
	require.NoError(t, err)

	url, err := store.Put(ctx, "materials/l1/notes.txt", strings.NewReader("hello"), "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000/uploads/materials/l1/notes.txt", url)

	content, err := os.ReadFile(filepath.Join(dir, "materials", "l1", "notes.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(content))

	require.NoError(t, store.Delete(ctx, "materials/l1/notes.txt"))
	_, err = os.Stat(filepath.Join(dir, "materials", "l1", "notes.txt"))
	assert.True(t, os.IsNotExist(err))

	// already gone
	assert.NoError(t, store.Delete(ctx, "materials/l1/notes.txt"))

	_, err = store.Put(ctx, "../escape.txt", strings.NewReader("x"), "text/plain")
	assert.Error(t, err)
}

func TestNewStore(t *testing.T) {
	ctx := context.Background()

	store, err := NewStore(ctx, core.FilesConfig{Backend: "local", LocalDir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &LocalStore{}, store)

	_, err = NewStore(ctx, core.FilesConfig{Backend: "s3"})
	assert.EqualError(t, err, `unknown files backend "s3"`)

	_, err = NewStore(ctx, core.FilesConfig{Backend: "gcs"})
	assert.EqualError(t, err, "files bucket is required")
}

func TestPublicURL(t *testing.T) {
	assert.Equal(t, "https://cdn.test/a/b.pdf", publicURL("https://cdn.test/", "/a/b.pdf"))
}

package fsutil

import (
	"errors"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOSFileSystemRoundTrip(t *testing.T) {
	t.Parallel()
	var fsys FileSystem = OSFileSystem{}
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "file.txt")

	require.NoError(t, fsys.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, fsys.WriteFile(path, []byte("hello"), 0o644))
	assert.True(t, fsys.Exists(path))

	data, err := fsys.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	info, err := fsys.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(5), info.Size())

	require.NoError(t, fsys.Remove(path))
	assert.False(t, fsys.Exists(path))
}

func TestMemoryFileSystemRoundTrip(t *testing.T) {
	t.Parallel()
	m := NewMemoryFileSystem()

	require.NoError(t, m.MkdirAll("root/sub", 0o755))
	require.NoError(t, m.WriteFile("root/sub/file.txt", []byte("hello"), 0o644))

	assert.True(t, m.Exists("root/sub/file.txt"))
	assert.True(t, m.Exists("root/sub"))
	assert.True(t, m.Exists("root"))

	data, err := m.ReadFile("root/sub/file.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	info, err := m.Stat("root/sub/file.txt")
	require.NoError(t, err)
	assert.Equal(t, int64(5), info.Size())
	assert.False(t, info.IsDir())

	dirInfo, err := m.Stat("root/sub")
	require.NoError(t, err)
	assert.True(t, dirInfo.IsDir())
}

func TestMemoryFileSystemMissingFile(t *testing.T) {
	t.Parallel()
	m := NewMemoryFileSystem()

	_, err := m.ReadFile("absent.txt")
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	_, err = m.Stat("absent.txt")
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	assert.True(t, errors.Is(m.Remove("absent.txt"), fs.ErrNotExist))
}

func TestMemoryFileSystemWriteCopiesData(t *testing.T) {
	t.Parallel()
	m := NewMemoryFileSystem()
	buf := []byte("one")
	require.NoError(t, m.WriteFile("f", buf, 0o644))
	buf[0] = 'X'

	data, err := m.ReadFile("f")
	require.NoError(t, err)
	assert.Equal(t, "one", string(data))
}

func TestMemoryFileSystemRemoveAll(t *testing.T) {
	t.Parallel()
	m := NewMemoryFileSystem()
	require.NoError(t, m.MkdirAll("a/b", 0o755))
	require.NoError(t, m.WriteFile("a/b/one", []byte("1"), 0o644))
	require.NoError(t, m.WriteFile("a/two", []byte("2"), 0o644))
	require.NoError(t, m.WriteFile("keep", []byte("3"), 0o644))

	require.NoError(t, m.RemoveAll("a"))
	assert.False(t, m.Exists("a/b/one"))
	assert.False(t, m.Exists("a/two"))
	assert.True(t, m.Exists("keep"))
}

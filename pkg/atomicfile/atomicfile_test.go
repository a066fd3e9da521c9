package atomicfile_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/socialauth/pkg/atomicfile"
)

func TestWriteFile(t *testing.T) {
	t.Parallel()

	t.Run("creates parent directories", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "a", "b", "file.json")
		require.NoError(t, atomicfile.WriteFile(path, []byte("one"), 0o600))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		require.Equal(t, "one", string(data))
	})

	t.Run("replaces content and leaves no temp files", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		path := filepath.Join(dir, "file.json")
		require.NoError(t, atomicfile.WriteFile(path, []byte("one"), 0o600))
		require.NoError(t, atomicfile.WriteFile(path, []byte("two"), 0o600))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		require.Equal(t, "two", string(data))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 1)
	})

	t.Run("applies permissions", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "secret")
		require.NoError(t, atomicfile.WriteFile(path, []byte("x"), 0o600))

		info, err := os.Stat(path)
		require.NoError(t, err)
		require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	})
}

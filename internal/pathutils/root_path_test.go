package pathutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeGoMod(t *testing.T, dir, module string) {
	t.Helper()
	err := os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module "+module+"\n"), 0o644)
	require.NoError(t, err)
}

func TestFindModuleRoot(t *testing.T) {
	t.Run("finds go.mod in the given directory", func(t *testing.T) {
		tmpDir := t.TempDir()
		writeGoMod(t, tmpDir, "test")

		root, err := FindModuleRoot(tmpDir)
		require.NoError(t, err)
		assert.Equal(t, tmpDir, root)
	})

	t.Run("finds go.mod multiple levels up", func(t *testing.T) {
		tmpDir := t.TempDir()
		writeGoMod(t, tmpDir, "test")

		deepDir := filepath.Join(tmpDir, "a", "b", "c", "d")
		require.NoError(t, os.MkdirAll(deepDir, 0o755))

		root, err := FindModuleRoot(deepDir)
		require.NoError(t, err)
		assert.Equal(t, tmpDir, root)
	})

	t.Run("resolves relative directories", func(t *testing.T) {
		root, err := FindModuleRoot(".")
		require.NoError(t, err)
		assert.True(t, filepath.IsAbs(root))
	})

	t.Run("returns error when go.mod not found", func(t *testing.T) {
		// t.TempDir() might be within a directory tree that has a go.mod somewhere.
		tmpDir := t.TempDir()

		result, err := FindModuleRoot(tmpDir)
		if err != nil {
			assert.Contains(t, err.Error(), "go.mod not found")
		} else {
			_, statErr := os.Stat(filepath.Join(result, "go.mod"))
			require.NoError(t, statErr, "if no error, go.mod must exist at returned path")
		}
	})

	t.Run("ignores go.mod directory", func(t *testing.T) {
		tmpDir := t.TempDir()
		require.NoError(t, os.Mkdir(filepath.Join(tmpDir, "go.mod"), 0o755))

		result, err := FindModuleRoot(tmpDir)
		if err == nil {
			assert.NotEqual(t, tmpDir, result, "should not return directory with go.mod directory")
			fi, statErr := os.Stat(filepath.Join(result, "go.mod"))
			require.NoError(t, statErr)
			assert.False(t, fi.IsDir(), "found go.mod must be a file, not directory")
		} else {
			assert.Contains(t, err.Error(), "go.mod not found")
		}
	})

	t.Run("stops at nearest go.mod", func(t *testing.T) {
		tmpDir := t.TempDir()
		writeGoMod(t, tmpDir, "root")

		nestedDir := filepath.Join(tmpDir, "nested")
		require.NoError(t, os.Mkdir(nestedDir, 0o755))
		writeGoMod(t, nestedDir, "nested")

		root, err := FindModuleRoot(nestedDir)
		require.NoError(t, err)
		assert.Equal(t, nestedDir, root)
	})

	t.Run("works from actual project directory", func(t *testing.T) {
		root, err := FindModuleRoot("")
		require.NoError(t, err)
		assert.NotEmpty(t, root)

		_, err = os.Stat(filepath.Join(root, "go.mod"))
		require.NoError(t, err, "go.mod should exist at returned root path")
	})
}

func TestModulePath(t *testing.T) {
	t.Run("reads module path", func(t *testing.T) {
		tmpDir := t.TempDir()
		writeGoMod(t, tmpDir, "github.com/acme/widgets")

		path, err := ModulePath(tmpDir)
		require.NoError(t, err)
		assert.Equal(t, "github.com/acme/widgets", path)
	})

	t.Run("missing module directive", func(t *testing.T) {
		tmpDir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "go.mod"), []byte("go 1.22\n"), 0o644))

		_, err := ModulePath(tmpDir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "does not declare a module path")
	})

	t.Run("missing go.mod", func(t *testing.T) {
		_, err := ModulePath(t.TempDir())
		require.Error(t, err)
	})
}

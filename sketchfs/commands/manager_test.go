package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draftwing/sketchfs/sketchfs/trees"
)

func newTestManager(t *testing.T) (*Manager, *trees.FileTree) {
	t.Helper()
	tree := trees.NewFileTree()
	require.NoError(t, tree.WriteFile("/src/app.jsx", "app"))
	require.NoError(t, tree.WriteFile("/src/lib/util.js", "util"))
	return NewManager(tree), tree
}

func TestManagerRename(t *testing.T) {
	t.Run("file", func(t *testing.T) {
		manager, tree := newTestManager(t)
		out, err := manager.Apply(&ManageInput{
			Command: CommandRename,
			Path:    "/src/app.jsx",
			NewPath: strPtr("/src/main.jsx"),
		})
		require.NoError(t, err)
		assert.Equal(t, "Renamed /src/app.jsx to /src/main.jsx", out)
		assert.False(t, tree.Exists("/src/app.jsx"))
		assert.True(t, tree.Exists("/src/main.jsx"))
	})

	t.Run("directory moves subtree", func(t *testing.T) {
		manager, tree := newTestManager(t)
		_, err := manager.Apply(&ManageInput{
			Command: CommandRename,
			Path:    "/src",
			NewPath: strPtr("/app"),
		})
		require.NoError(t, err)
		assert.True(t, tree.Exists("/app/lib/util.js"))
		assert.False(t, tree.Exists("/src"))
	})

	t.Run("paths are normalized", func(t *testing.T) {
		manager, tree := newTestManager(t)
		_, err := manager.Apply(&ManageInput{
			Command: CommandRename,
			Path:    "/src//app.jsx",
			NewPath: strPtr("/src/./renamed.jsx"),
		})
		require.NoError(t, err)
		assert.True(t, tree.Exists("/src/renamed.jsx"))
	})

	t.Run("missing new_path", func(t *testing.T) {
		manager, _ := newTestManager(t)
		_, err := manager.Apply(&ManageInput{Command: CommandRename, Path: "/src/app.jsx"})
		assert.ErrorIs(t, err, ErrMissingArgument)
	})

	t.Run("target exists", func(t *testing.T) {
		manager, _ := newTestManager(t)
		_, err := manager.Apply(&ManageInput{
			Command: CommandRename,
			Path:    "/src/app.jsx",
			NewPath: strPtr("/src/lib"),
		})
		assert.ErrorIs(t, err, trees.ErrAlreadyExists)
	})
}

func TestManagerDelete(t *testing.T) {
	t.Run("directory is recursive", func(t *testing.T) {
		manager, tree := newTestManager(t)
		out, err := manager.Apply(&ManageInput{Command: CommandDelete, Path: "/src"})
		require.NoError(t, err)
		assert.Equal(t, "Deleted /src", out)
		assert.False(t, tree.Exists("/src/lib/util.js"))
		assert.Equal(t, 1, tree.Len())
	})

	t.Run("missing path", func(t *testing.T) {
		manager, _ := newTestManager(t)
		_, err := manager.Apply(&ManageInput{Command: CommandDelete, Path: "/ghost"})
		assert.ErrorIs(t, err, trees.ErrNotFound)
	})

	t.Run("root is refused", func(t *testing.T) {
		manager, tree := newTestManager(t)
		_, err := manager.Apply(&ManageInput{Command: CommandDelete, Path: "/"})
		assert.ErrorIs(t, err, trees.ErrForbidden)
		assert.True(t, tree.Exists("/src/app.jsx"))
	})
}

func TestManagerUnknownCommand(t *testing.T) {
	manager, _ := newTestManager(t)
	_, err := manager.Apply(&ManageInput{Command: "truncate", Path: "/src"})
	assert.ErrorIs(t, err, ErrUnknownCommand)
}

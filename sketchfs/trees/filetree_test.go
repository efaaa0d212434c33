package trees

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileTree(t *testing.T) {
	tests := []struct {
		name string
		test func(t *testing.T)
	}{
		{"NewTreeHoldsOnlyRoot", testTreeNewTreeHoldsOnlyRoot},
		{"WriteCreatesAncestors", testTreeWriteCreatesAncestors},
		{"WriteOverwrites", testTreeWriteOverwrites},
		{"WriteThroughFileFails", testTreeWriteThroughFileFails},
		{"ReadFile", testTreeReadFile},
		{"ListDirectory", testTreeListDirectory},
		{"DeleteFile", testTreeDeleteFile},
		{"DeleteDirectoryRecursive", testTreeDeleteDirectoryRecursive},
		{"DeleteNonRecursiveGuard", testTreeDeleteNonRecursiveGuard},
		{"DeleteRootForbidden", testTreeDeleteRootForbidden},
		{"RenameFile", testTreeRenameFile},
		{"RenameDirectoryAtomic", testTreeRenameDirectoryAtomic},
		{"RenameFailures", testTreeRenameFailures},
		{"SerializeOrder", testTreeSerializeOrder},
		{"Metrics", testTreeMetrics},
		{"Validate", testTreeValidate},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.test)
	}
}

func testTreeNewTreeHoldsOnlyRoot(t *testing.T) {
	tree := NewFileTree()

	assert.Equal(t, 1, tree.Len())
	assert.True(t, tree.Exists("/"))
	kind, ok := tree.Kind("/")
	require.True(t, ok)
	assert.Equal(t, Directory, kind)
	assert.Equal(t, []string{"/"}, tree.Flatten())
}

func testTreeWriteCreatesAncestors(t *testing.T) {
	tree := NewFileTree()

	require.NoError(t, tree.WriteFile("/a/b/c.jsx", "export default App"))

	// Every ancestor of the new file exists as a directory
	for _, dir := range []string{"/a", "/a/b"} {
		kind, ok := tree.Kind(dir)
		require.True(t, ok, "ancestor %s should exist", dir)
		assert.Equal(t, Directory, kind, "ancestor %s should be a directory", dir)
	}

	kind, ok := tree.Kind("/a/b/c.jsx")
	require.True(t, ok)
	assert.Equal(t, File, kind)

	children, err := tree.ListDirectory("/a/b")
	require.NoError(t, err)
	assert.Equal(t, []string{"c.jsx"}, children)
}

func testTreeWriteOverwrites(t *testing.T) {
	tree := NewFileTree()

	require.NoError(t, tree.WriteFile("/f.txt", "one"))
	require.NoError(t, tree.WriteFile("/f.txt", "two"))

	content, err := tree.ReadFile("/f.txt")
	require.NoError(t, err)
	assert.Equal(t, "two", content)
	assert.Equal(t, 2, tree.Len(), "overwrite should not add entries")
}

func testTreeWriteThroughFileFails(t *testing.T) {
	tree := NewFileTree()
	require.NoError(t, tree.WriteFile("/a", "i am a file"))

	err := tree.WriteFile("/a/b.txt", "nope")
	assert.ErrorIs(t, err, ErrNotADirectory)
	assert.False(t, tree.Exists("/a/b.txt"))

	// Writing to the root or to an existing directory is a type mismatch
	require.NoError(t, tree.WriteFile("/dir/child.txt", "x"))
	assert.ErrorIs(t, tree.WriteFile("/dir", "nope"), ErrNotAFile)
	assert.ErrorIs(t, tree.WriteFile("/", "nope"), ErrNotAFile)
}

func testTreeReadFile(t *testing.T) {
	tree := NewFileTree()
	require.NoError(t, tree.WriteFile("/src/index.js", "console.log(1)"))

	content, err := tree.ReadFile("/src/index.js")
	require.NoError(t, err)
	assert.Equal(t, "console.log(1)", content)

	_, err = tree.ReadFile("/missing.js")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = tree.ReadFile("/src")
	assert.ErrorIs(t, err, ErrNotAFile)
}

func testTreeListDirectory(t *testing.T) {
	tree := NewFileTree()
	require.NoError(t, tree.WriteFile("/src/b.js", ""))
	require.NoError(t, tree.WriteFile("/src/a.js", ""))
	require.NoError(t, tree.EnsureDirectory("/src/components"))

	children, err := tree.ListDirectory("/src")
	require.NoError(t, err)
	assert.Equal(t, []string{"b.js", "a.js", "components"}, children, "children keep creation order")

	_, err = tree.ListDirectory("/nope")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = tree.ListDirectory("/src/a.js")
	assert.ErrorIs(t, err, ErrNotADirectory)
}

func testTreeDeleteFile(t *testing.T) {
	tree := NewFileTree()
	require.NoError(t, tree.WriteFile("/a/f.txt", "data"))

	require.NoError(t, tree.DeleteEntry("/a/f.txt", false))
	assert.False(t, tree.Exists("/a/f.txt"))
	assert.True(t, tree.Exists("/a"), "parent survives")

	children, err := tree.ListDirectory("/a")
	require.NoError(t, err)
	assert.Empty(t, children)

	assert.ErrorIs(t, tree.DeleteEntry("/a/f.txt", false), ErrNotFound)
}

func testTreeDeleteDirectoryRecursive(t *testing.T) {
	tree := NewFileTree()
	require.NoError(t, tree.WriteFile("/a/b/c.txt", "1"))
	require.NoError(t, tree.WriteFile("/a/b/d/e.txt", "2"))
	require.NoError(t, tree.WriteFile("/a/top.txt", "3"))
	require.NoError(t, tree.WriteFile("/other.txt", "4"))

	require.NoError(t, tree.DeleteEntry("/a", true))

	// No orphaned descendant entries remain
	for _, gone := range []string{"/a", "/a/b", "/a/b/c.txt", "/a/b/d", "/a/b/d/e.txt", "/a/top.txt"} {
		assert.False(t, tree.Exists(gone), "%s should be gone", gone)
	}
	assert.True(t, tree.Exists("/other.txt"))
	assert.Empty(t, tree.Validate())
}

func testTreeDeleteNonRecursiveGuard(t *testing.T) {
	tree := NewFileTree()
	require.NoError(t, tree.WriteFile("/a/f.txt", "x"))

	err := tree.DeleteEntry("/a", false)
	assert.ErrorIs(t, err, ErrNotEmpty)
	assert.True(t, tree.Exists("/a/f.txt"), "failed delete must not mutate")

	// An empty directory goes without recursive
	require.NoError(t, tree.EnsureDirectory("/empty"))
	assert.NoError(t, tree.DeleteEntry("/empty", false))
}

func testTreeDeleteRootForbidden(t *testing.T) {
	tree := NewFileTree()
	assert.ErrorIs(t, tree.DeleteEntry("/", true), ErrForbidden)
	assert.True(t, tree.Exists("/"))
}

func testTreeRenameFile(t *testing.T) {
	tree := NewFileTree()
	require.NoError(t, tree.WriteFile("/a/old.jsx", "content"))

	require.NoError(t, tree.RenameEntry("/a/old.jsx", "/a/new.jsx"))

	assert.False(t, tree.Exists("/a/old.jsx"))
	content, err := tree.ReadFile("/a/new.jsx")
	require.NoError(t, err)
	assert.Equal(t, "content", content)

	children, err := tree.ListDirectory("/a")
	require.NoError(t, err)
	assert.Equal(t, []string{"new.jsx"}, children)

	// Rename into a directory that does not exist yet
	require.NoError(t, tree.RenameEntry("/a/new.jsx", "/b/c/moved.jsx"))
	assert.True(t, tree.Exists("/b/c/moved.jsx"))
	kind, _ := tree.Kind("/b/c")
	assert.Equal(t, Directory, kind)
	assert.Empty(t, tree.Validate())
}

func testTreeRenameDirectoryAtomic(t *testing.T) {
	tree := NewFileTree()
	require.NoError(t, tree.WriteFile("/a/b.jsx", "b"))
	require.NoError(t, tree.WriteFile("/a/sub/c.jsx", "c"))

	require.NoError(t, tree.RenameEntry("/a", "/z"))

	for _, gone := range []string{"/a", "/a/b.jsx", "/a/sub", "/a/sub/c.jsx"} {
		assert.False(t, tree.Exists(gone), "%s should be gone", gone)
	}
	for _, present := range []string{"/z", "/z/b.jsx", "/z/sub", "/z/sub/c.jsx"} {
		assert.True(t, tree.Exists(present), "%s should exist", present)
	}

	content, err := tree.ReadFile("/z/sub/c.jsx")
	require.NoError(t, err)
	assert.Equal(t, "c", content)

	children, err := tree.ListDirectory("/z")
	require.NoError(t, err)
	assert.Equal(t, []string{"b.jsx", "sub"}, children, "relative ordering preserved")
	assert.Empty(t, tree.Validate())
}

func testTreeRenameFailures(t *testing.T) {
	tree := NewFileTree()
	require.NoError(t, tree.WriteFile("/a/f.txt", "x"))
	require.NoError(t, tree.WriteFile("/b.txt", "y"))

	assert.ErrorIs(t, tree.RenameEntry("/missing", "/target"), ErrNotFound)
	assert.ErrorIs(t, tree.RenameEntry("/a/f.txt", "/b.txt"), ErrAlreadyExists)
	assert.ErrorIs(t, tree.RenameEntry("/", "/elsewhere"), ErrForbidden)

	// A directory cannot be moved inside its own subtree
	err := tree.RenameEntry("/a", "/a/inner")
	assert.Error(t, err)
	assert.True(t, tree.Exists("/a/f.txt"), "failed rename must not mutate")
	assert.Empty(t, tree.Validate())
}

func testTreeSerializeOrder(t *testing.T) {
	tree := NewFileTree()
	require.NoError(t, tree.WriteFile("/b/late.txt", "1"))
	require.NoError(t, tree.WriteFile("/a.txt", "2"))

	entries := tree.Serialize()
	gotPaths := make([]string, len(entries))
	for i, entry := range entries {
		gotPaths[i] = entry.Path
	}
	assert.Equal(t, []string{"/", "/b", "/b/late.txt", "/a.txt"}, gotPaths, "creation order, not lexical order")

	assert.Equal(t, Directory, entries[0].Type)
	assert.Equal(t, "1", entries[2].Content)
	assert.Equal(t, "", entries[1].Content, "directories carry no content")
}

func testTreeMetrics(t *testing.T) {
	tree := NewFileTree()
	require.NoError(t, tree.WriteFile("/a/b/c.txt", "12345"))
	require.NoError(t, tree.DeleteEntry("/a/b/c.txt", false))

	m := tree.Metrics()
	assert.Equal(t, int64(3), m.TotalNodes) // root, /a, /a/b
	assert.Equal(t, int64(0), m.TotalBytes)
	assert.Equal(t, 3, m.MaxDepth)
	assert.Equal(t, int64(1), m.OperationCounts["write_file"])
	assert.Equal(t, int64(1), m.OperationCounts["delete_entry"])
}

func testTreeValidate(t *testing.T) {
	tree := NewFileTree()
	require.NoError(t, tree.WriteFile("/a/b/c.txt", "x"))
	require.NoError(t, tree.RenameEntry("/a/b", "/moved"))
	require.NoError(t, tree.DeleteEntry("/a", true))

	assert.Empty(t, tree.Validate(), "tree invariants hold after mixed mutations")
}

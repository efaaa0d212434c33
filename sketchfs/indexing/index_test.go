package indexing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draftwing/sketchfs/sketchfs/trees"
)

func buildTree(t *testing.T) *trees.FileTree {
	t.Helper()
	tree := trees.NewFileTree()
	require.NoError(t, tree.WriteFile("/src/App.jsx", "app"))
	require.NoError(t, tree.WriteFile("/src/components/Nav.jsx", "nav"))
	require.NoError(t, tree.WriteFile("/src/util.JS", "upper-case extension"))
	require.NoError(t, tree.WriteFile("/Makefile", "all:"))
	require.NoError(t, tree.EnsureDirectory("/docs.d"))
	return tree
}

func TestBuild(t *testing.T) {
	ix := Build(buildTree(t))

	assert.Equal(t, 8, ix.Size(), "every entry gets an id, directories included")

	id, ok := ix.Lookup("/src/App.jsx")
	require.True(t, ok)
	assert.Less(t, int(id), ix.Size())

	_, ok = ix.Lookup("/missing")
	assert.False(t, ok)
}

func TestBuildIsDeterministic(t *testing.T) {
	a := Build(buildTree(t))
	b := Build(buildTree(t))

	for _, p := range []string{"/", "/src", "/src/App.jsx", "/Makefile"} {
		idA, okA := a.Lookup(p)
		idB, okB := b.Lookup(p)
		require.True(t, okA)
		require.True(t, okB)
		assert.Equal(t, idA, idB, "id of %s differs between builds", p)
	}
}

func TestFindByExtension(t *testing.T) {
	ix := Build(buildTree(t))

	jsx := ix.FindByExtension(".jsx")
	assert.Equal(t, []string{"/src/App.jsx", "/src/components/Nav.jsx"}, jsx, "lexical order")

	assert.Equal(t, jsx, ix.FindByExtension("jsx"), "leading dot is optional")
	assert.Equal(t, jsx, ix.FindByExtension("JSX"), "extension match is case-insensitive")

	assert.Equal(t, []string{"/src/util.JS"}, ix.FindByExtension(".js"),
		"file extension is lowercased at build time")

	assert.Nil(t, ix.FindByExtension(".go"))
	assert.Nil(t, ix.FindByExtension(""))
}

func TestDirectoriesAndExtensionlessFilesAreNotIndexedByExtension(t *testing.T) {
	ix := Build(buildTree(t))

	assert.Nil(t, ix.FindByExtension(".d"), "directory names contribute no extension")
	assert.Equal(t, []string{".js", ".jsx"}, ix.Extensions())
}

func TestEmptyTree(t *testing.T) {
	ix := Build(trees.NewFileTree())

	assert.Equal(t, 1, ix.Size())
	assert.Empty(t, ix.Extensions())
	assert.Nil(t, ix.FindByExtension(".jsx"))
}

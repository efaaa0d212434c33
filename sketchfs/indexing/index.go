// Package indexing builds compact query accelerators over a project tree:
// stable path ids plus roaring bitmaps keyed by file extension, answering
// "every .jsx file in the project" style queries without walking the tree.
package indexing

import (
	gopath "path"
	"sort"
	"strings"

	roaring "github.com/RoaringBitmap/roaring"

	"github.com/draftwing/sketchfs/sketchfs/trees"
)

// PathID is a stable identifier for a path within one built index. Ids are
// small and contiguous to keep the bitmaps compact.
type PathID = uint32

// Index maps canonical paths to stable ids and holds one bitmap of file ids
// per extension. It is a point-in-time structure: rebuild after mutating the
// tree.
type Index struct {
	pathToID map[string]PathID
	paths    []string // PathID -> canonical path
	ext      map[string]*roaring.Bitmap
}

// Build assigns PathIDs in lexical path order for determinism and fills the
// per-extension bitmaps from the tree's file entries.
func Build(t *trees.FileTree) *Index {
	entries := t.Serialize()

	ordered := make([]string, 0, len(entries))
	kinds := make(map[string]trees.NodeType, len(entries))
	for _, entry := range entries {
		ordered = append(ordered, entry.Path)
		kinds[entry.Path] = entry.Type
	}
	sort.Strings(ordered)

	ix := &Index{
		pathToID: make(map[string]PathID, len(ordered)),
		paths:    ordered,
		ext:      make(map[string]*roaring.Bitmap),
	}
	for i, p := range ordered {
		id := PathID(i)
		ix.pathToID[p] = id
		if kinds[p] != trees.File {
			continue
		}
		ext := strings.ToLower(gopath.Ext(p))
		if ext == "" {
			continue
		}
		bm, ok := ix.ext[ext]
		if !ok {
			bm = roaring.New()
			ix.ext[ext] = bm
		}
		bm.Add(id)
	}
	return ix
}

// Lookup returns the stable id assigned to a canonical path.
func (ix *Index) Lookup(path string) (PathID, bool) {
	id, ok := ix.pathToID[path]
	return id, ok
}

// Size returns the number of indexed paths.
func (ix *Index) Size() int {
	return len(ix.paths)
}

// FindByExtension returns the canonical paths of every file with the given
// extension (".jsx" and "jsx" are equivalent), in lexical order.
func (ix *Index) FindByExtension(ext string) []string {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	bm, ok := ix.ext[ext]
	if !ok {
		return nil
	}

	result := make([]string, 0, bm.GetCardinality())
	it := bm.Iterator()
	for it.HasNext() {
		result = append(result, ix.paths[it.Next()])
	}
	return result
}

// Extensions returns every extension present in the index, sorted.
func (ix *Index) Extensions() []string {
	out := make([]string, 0, len(ix.ext))
	for ext := range ix.ext {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

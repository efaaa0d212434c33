package trees

import (
	"log/slog"
	"strings"

	"github.com/armon/go-radix"
)

// PathIndexStats tracks usage counters for the path index.
type PathIndexStats struct {
	TotalNodes    int64
	PathLookups   int64
	PrefixLookups int64
	Insertions    int64
	Deletions     int64
}

// PathIndex provides O(k) canonical-path lookups and prefix walks over the
// tree's entries using a compressed trie (patricia tree), where k is the
// length of the path being searched.
type PathIndex struct {
	tree  *radix.Tree
	stats PathIndexStats
}

// NewPathIndex creates an empty patricia tree-based path index.
func NewPathIndex() *PathIndex {
	return &PathIndex{tree: radix.New()}
}

// Insert adds or replaces the node stored under a canonical path.
func (idx *PathIndex) Insert(path string, node Node) {
	_, updated := idx.tree.Insert(path, node)
	if !updated {
		idx.stats.TotalNodes++
	}
	idx.stats.Insertions++

	slog.Debug("path index insertion completed",
		"path", path,
		"was_update", updated,
		"total_nodes", idx.stats.TotalNodes)
}

// Lookup finds the node stored under an exact canonical path.
func (idx *PathIndex) Lookup(path string) (Node, bool) {
	idx.stats.PathLookups++

	value, found := idx.tree.Get(path)
	if !found {
		return nil, false
	}
	return value.(Node), true
}

// Remove deletes the entry stored under a canonical path.
func (idx *PathIndex) Remove(path string) bool {
	_, deleted := idx.tree.Delete(path)
	if deleted {
		idx.stats.TotalNodes--
	}
	idx.stats.Deletions++

	slog.Debug("path index removal completed",
		"path", path,
		"was_deleted", deleted,
		"total_nodes", idx.stats.TotalNodes)

	return deleted
}

// Descendants returns the canonical paths of every entry strictly below the
// given directory path, in lexical order (the radix tree's walk order).
func (idx *PathIndex) Descendants(path string) []string {
	prefix := path
	if prefix != "/" {
		prefix += "/"
	}

	idx.stats.PrefixLookups++

	var result []string
	idx.tree.WalkPrefix(prefix, func(key string, value interface{}) bool {
		result = append(result, key)
		return false // continue walking
	})
	return result
}

// Children returns the canonical paths of the immediate children of a
// directory path, in lexical order.
func (idx *PathIndex) Children(parentPath string) []string {
	prefix := parentPath
	if prefix != "/" {
		prefix += "/"
	}

	idx.stats.PrefixLookups++

	var children []string
	idx.tree.WalkPrefix(prefix, func(key string, value interface{}) bool {
		remaining := strings.TrimPrefix(key, prefix)
		if remaining != "" && !strings.Contains(remaining, "/") {
			children = append(children, key)
		}
		return false
	})
	return children
}

// Size returns the number of indexed entries.
func (idx *PathIndex) Size() int64 {
	return idx.stats.TotalNodes
}

// Stats returns a copy of the current index counters.
func (idx *PathIndex) Stats() PathIndexStats {
	return idx.stats
}

// Walk executes fn for every indexed path until fn returns true.
func (idx *PathIndex) Walk(fn func(path string, node Node) bool) {
	idx.tree.Walk(func(key string, value interface{}) bool {
		return fn(key, value.(Node))
	})
}

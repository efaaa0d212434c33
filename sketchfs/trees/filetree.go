package trees

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/draftwing/sketchfs/sketchfs/paths"
)

// FileTree is the authoritative in-memory hierarchy for one project session.
// A flat map from canonical path to node is the single source of truth;
// directory child names are bookkeeping kept consistent by every structural
// mutation. A patricia index over the same paths serves prefix walks for
// rename, delete, and serialization.
//
// The tree is not thread-safe. One command stream mutates a given tree at a
// time; callers serialize access.
type FileTree struct {
	nodes   map[string]Node
	order   []string // creation order of paths, root first
	index   *PathIndex
	metrics *TreeMetrics
	logger  *slog.Logger
}

// TreeOption allows for customization of a FileTree.
type TreeOption func(*FileTree)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) TreeOption {
	return func(t *FileTree) {
		t.logger = logger
	}
}

// NewFileTree creates a tree holding only the root directory.
func NewFileTree(opts ...TreeOption) *FileTree {
	root := NewDirectoryNode(paths.Root, paths.Root)
	t := &FileTree{
		nodes:   map[string]Node{paths.Root: root},
		order:   []string{paths.Root},
		index:   NewPathIndex(),
		metrics: newTreeMetrics(),
		logger:  slog.Default(),
	}
	t.index.Insert(paths.Root, root)
	t.metrics.TotalNodes = 1

	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Exists reports whether a canonical path is present in the tree.
func (t *FileTree) Exists(path string) bool {
	_, ok := t.nodes[path]
	return ok
}

// Kind returns the node variant stored at path. ok is false when the path is
// absent.
func (t *FileTree) Kind(path string) (kind NodeType, ok bool) {
	node, ok := t.nodes[path]
	if !ok {
		return -1, false
	}
	return node.Type(), true
}

// Len returns the number of entries, the root included.
func (t *FileTree) Len() int {
	return len(t.nodes)
}

// ReadFile returns the content of the file at path.
func (t *FileTree) ReadFile(path string) (string, error) {
	node, ok := t.nodes[path]
	if !ok {
		return "", fmt.Errorf("read %s: %w", path, ErrNotFound)
	}
	file, ok := node.(*FileNode)
	if !ok {
		return "", fmt.Errorf("read %s: %w", path, ErrNotAFile)
	}
	return file.Content, nil
}

// WriteFile creates the file at path, creating missing ancestor directories,
// or overwrites its content if it already exists. The mutation is atomic:
// every failure mode is detected before the tree is touched.
func (t *FileTree) WriteFile(path, content string) error {
	if path == paths.Root {
		return fmt.Errorf("write %s: %w", path, ErrNotAFile)
	}

	if existing, ok := t.nodes[path]; ok {
		file, isFile := existing.(*FileNode)
		if !isFile {
			return fmt.Errorf("write %s: %w", path, ErrNotAFile)
		}
		t.metrics.TotalBytes += int64(len(content)) - int64(len(file.Content))
		file.Content = content
		t.metrics.record("write_file")
		t.logger.Debug("file overwritten", "path", path, "bytes", len(content))
		return nil
	}

	if err := t.checkAncestors(path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	t.createAncestors(path)
	file := NewFileNode(path, paths.BaseName(path), content)
	t.insertNode(file)
	t.metrics.TotalBytes += int64(len(content))
	t.metrics.record("write_file")
	t.logger.Debug("file created", "path", path, "bytes", len(content))
	return nil
}

// EnsureDirectory creates the directory at path along with any missing
// ancestors. It is a no-op when the directory already exists.
func (t *FileTree) EnsureDirectory(path string) error {
	if existing, ok := t.nodes[path]; ok {
		if existing.Type() != Directory {
			return fmt.Errorf("mkdir %s: %w", path, ErrNotADirectory)
		}
		return nil
	}
	if err := t.checkAncestors(path); err != nil {
		return fmt.Errorf("mkdir %s: %w", path, err)
	}
	t.createAncestors(path)
	t.insertNode(NewDirectoryNode(path, paths.BaseName(path)))
	t.metrics.record("ensure_directory")
	return nil
}

// ListDirectory returns the ordered immediate child names of the directory at
// path.
func (t *FileTree) ListDirectory(path string) ([]string, error) {
	node, ok := t.nodes[path]
	if !ok {
		return nil, fmt.Errorf("list %s: %w", path, ErrNotFound)
	}
	dir, ok := node.(*DirectoryNode)
	if !ok {
		return nil, fmt.Errorf("list %s: %w", path, ErrNotADirectory)
	}
	return dir.Children(), nil
}

// DeleteEntry removes the file at path, or the directory at path together
// with every descendant when recursive is true. A populated directory is
// refused without recursive. The root cannot be deleted.
func (t *FileTree) DeleteEntry(path string, recursive bool) error {
	if path == paths.Root {
		return fmt.Errorf("delete %s: %w", path, ErrForbidden)
	}
	node, ok := t.nodes[path]
	if !ok {
		return fmt.Errorf("delete %s: %w", path, ErrNotFound)
	}

	doomed := []string{path}
	if dir, isDir := node.(*DirectoryNode); isDir {
		descendants := t.index.Descendants(path)
		if len(dir.children) > 0 && !recursive {
			return fmt.Errorf("delete %s: %w", path, ErrNotEmpty)
		}
		doomed = append(doomed, descendants...)
	}

	for _, victim := range doomed {
		if file, isFile := t.nodes[victim].(*FileNode); isFile {
			t.metrics.TotalBytes -= int64(len(file.Content))
		}
		delete(t.nodes, victim)
		t.index.Remove(victim)
	}

	doomedSet := make(map[string]struct{}, len(doomed))
	for _, victim := range doomed {
		doomedSet[victim] = struct{}{}
	}
	kept := t.order[:0]
	for _, p := range t.order {
		if _, gone := doomedSet[p]; !gone {
			kept = append(kept, p)
		}
	}
	t.order = kept

	parentPath, _ := paths.Parent(path)
	t.nodes[parentPath].(*DirectoryNode).removeChild(paths.BaseName(path))

	t.metrics.TotalNodes = int64(len(t.nodes))
	t.metrics.record("delete_entry")
	t.logger.Debug("entry deleted", "path", path, "removed", len(doomed))
	return nil
}

// RenameEntry moves the entry at oldPath to newPath. For a directory, every
// descendant path is rewritten with the prefix replaced, preserving relative
// structure and creation order, as a single atomic step. Missing ancestor
// directories of newPath are created.
func (t *FileTree) RenameEntry(oldPath, newPath string) error {
	if oldPath == paths.Root || newPath == paths.Root {
		return fmt.Errorf("rename %s: %w", oldPath, ErrForbidden)
	}
	node, ok := t.nodes[oldPath]
	if !ok {
		return fmt.Errorf("rename %s: %w", oldPath, ErrNotFound)
	}
	if _, exists := t.nodes[newPath]; exists {
		return fmt.Errorf("rename %s to %s: %w", oldPath, newPath, ErrAlreadyExists)
	}
	if paths.IsAncestor(oldPath, newPath) {
		return fmt.Errorf("rename %s to %s: %w", oldPath, newPath, paths.ErrInvalidPath)
	}
	if err := t.checkAncestors(newPath); err != nil {
		return fmt.Errorf("rename %s to %s: %w", oldPath, newPath, err)
	}

	// All failure modes are behind us; mutate in one sweep.
	t.createAncestors(newPath)

	rewrites := map[string]string{oldPath: newPath}
	if node.Type() == Directory {
		for _, descendant := range t.index.Descendants(oldPath) {
			rewrites[descendant] = newPath + strings.TrimPrefix(descendant, oldPath)
		}
	}

	for from, to := range rewrites {
		moved := t.nodes[from]
		switch n := moved.(type) {
		case *FileNode:
			n.path = to
			n.name = paths.BaseName(to)
		case *DirectoryNode:
			n.path = to
			n.name = paths.BaseName(to)
		}
		delete(t.nodes, from)
		t.nodes[to] = moved
		t.index.Remove(from)
		t.index.Insert(to, moved)
	}

	for i, p := range t.order {
		if to, moved := rewrites[p]; moved {
			t.order[i] = to
		}
	}

	oldParent, _ := paths.Parent(oldPath)
	newParent, _ := paths.Parent(newPath)
	if oldParent == newParent {
		t.nodes[oldParent].(*DirectoryNode).renameChild(paths.BaseName(oldPath), paths.BaseName(newPath))
	} else {
		t.nodes[oldParent].(*DirectoryNode).removeChild(paths.BaseName(oldPath))
		t.nodes[newParent].(*DirectoryNode).addChild(paths.BaseName(newPath))
	}

	t.metrics.record("rename_entry")
	t.logger.Debug("entry renamed", "from", oldPath, "to", newPath, "rewritten", len(rewrites))
	return nil
}

// Entry is the node summary produced by Serialize.
type Entry struct {
	Path    string
	Type    NodeType
	Content string // empty for directories
}

// Serialize returns every entry in creation order, root first, for
// deterministic diffing by downstream consumers.
func (t *FileTree) Serialize() []Entry {
	entries := make([]Entry, 0, len(t.order))
	for _, p := range t.order {
		node := t.nodes[p]
		entry := Entry{Path: p, Type: node.Type()}
		if file, isFile := node.(*FileNode); isFile {
			entry.Content = file.Content
		}
		entries = append(entries, entry)
	}
	return entries
}

// Flatten returns all paths in creation order, root first.
func (t *FileTree) Flatten() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Metrics returns a copy of the current tree metrics.
func (t *FileTree) Metrics() *TreeMetrics {
	m := t.metrics.clone()
	m.TotalNodes = int64(len(t.nodes))
	return m
}

// Validate checks the structural invariants: every non-root entry has a
// present directory parent that lists it as a child, and the path index
// mirrors the map exactly.
func (t *FileTree) Validate() []error {
	var problems []error

	for p, node := range t.nodes {
		if p == paths.Root {
			if node.Type() != Directory {
				problems = append(problems, fmt.Errorf("root is not a directory"))
			}
			continue
		}
		parentPath, _ := paths.Parent(p)
		parent, ok := t.nodes[parentPath]
		if !ok {
			problems = append(problems, fmt.Errorf("orphan entry %s: parent %s missing", p, parentPath))
			continue
		}
		dir, isDir := parent.(*DirectoryNode)
		if !isDir {
			problems = append(problems, fmt.Errorf("parent %s of %s is not a directory", parentPath, p))
			continue
		}
		listed := false
		for _, name := range dir.children {
			if name == paths.BaseName(p) {
				listed = true
				break
			}
		}
		if !listed {
			problems = append(problems, fmt.Errorf("entry %s not listed by parent %s", p, parentPath))
		}
	}

	if t.index.Size() != int64(len(t.nodes)) {
		problems = append(problems, fmt.Errorf("path index holds %d entries, map holds %d", t.index.Size(), len(t.nodes)))
	}
	if len(t.order) != len(t.nodes) {
		problems = append(problems, fmt.Errorf("creation order holds %d entries, map holds %d", len(t.order), len(t.nodes)))
	}

	return problems
}

// checkAncestors verifies that no ancestor segment of path exists as a file.
func (t *FileTree) checkAncestors(path string) error {
	for _, ancestor := range paths.Ancestors(path) {
		if existing, ok := t.nodes[ancestor]; ok && existing.Type() != Directory {
			return fmt.Errorf("ancestor %s: %w", ancestor, ErrNotADirectory)
		}
	}
	return nil
}

// createAncestors creates any missing ancestor directories of path, nearest
// the root first. checkAncestors must have passed.
func (t *FileTree) createAncestors(path string) {
	for _, ancestor := range paths.Ancestors(path) {
		if _, ok := t.nodes[ancestor]; !ok {
			t.insertNode(NewDirectoryNode(ancestor, paths.BaseName(ancestor)))
		}
	}
}

// insertNode places a new node in the map, order, index, and its parent's
// child list. The parent must already exist as a directory.
func (t *FileTree) insertNode(node Node) {
	path := node.Path()
	t.nodes[path] = node
	t.order = append(t.order, path)
	t.index.Insert(path, node)

	parentPath, _ := paths.Parent(path)
	t.nodes[parentPath].(*DirectoryNode).addChild(node.Name())

	t.metrics.TotalNodes = int64(len(t.nodes))
	if depth := len(paths.Segments(path)); depth > t.metrics.MaxDepth {
		t.metrics.MaxDepth = depth
	}
}

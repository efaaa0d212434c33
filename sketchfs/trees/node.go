package trees

// NodeType distinguishes the two node variants held by a FileTree.
type NodeType int

const (
	Directory NodeType = iota
	File
)

// String converts a NodeType to its persisted form.
func (n NodeType) String() string {
	switch n {
	case Directory:
		return "directory"
	case File:
		return "file"
	default:
		return "unknown"
	}
}

// StringToNodeType maps a persisted type string back to a NodeType. Unknown
// strings map to -1.
func StringToNodeType(s string) NodeType {
	switch s {
	case "directory":
		return Directory
	case "file":
		return File
	default:
		return -1
	}
}

// Node is one entry in the tree. Exactly one of the two concrete variants
// implements it: a FileNode carries content and never children, a
// DirectoryNode carries child names and never content. The path→node map on
// FileTree is the single owner; nodes hold no parent pointers, parentage is
// derived from the canonical path.
type Node interface {
	Path() string
	Name() string
	Type() NodeType
}

// FileNode is a leaf holding file content.
type FileNode struct {
	path    string
	name    string
	Content string
}

func NewFileNode(path, name, content string) *FileNode {
	return &FileNode{path: path, name: name, Content: content}
}

func (f *FileNode) Path() string   { return f.path }
func (f *FileNode) Name() string   { return f.name }
func (f *FileNode) Type() NodeType { return File }

// DirectoryNode holds the ordered names of its immediate children. The names
// are bookkeeping only; the child nodes themselves live in the tree's map.
type DirectoryNode struct {
	path     string
	name     string
	children []string
}

func NewDirectoryNode(path, name string) *DirectoryNode {
	return &DirectoryNode{path: path, name: name}
}

func (d *DirectoryNode) Path() string   { return d.path }
func (d *DirectoryNode) Name() string   { return d.name }
func (d *DirectoryNode) Type() NodeType { return Directory }

// Children returns a copy of the ordered child names.
func (d *DirectoryNode) Children() []string {
	out := make([]string, len(d.children))
	copy(out, d.children)
	return out
}

func (d *DirectoryNode) addChild(name string) {
	for _, existing := range d.children {
		if existing == name {
			return
		}
	}
	d.children = append(d.children, name)
}

func (d *DirectoryNode) removeChild(name string) {
	for i, existing := range d.children {
		if existing == name {
			d.children = append(d.children[:i], d.children[i+1:]...)
			return
		}
	}
}

func (d *DirectoryNode) renameChild(oldName, newName string) {
	for i, existing := range d.children {
		if existing == oldName {
			d.children[i] = newName
			return
		}
	}
}

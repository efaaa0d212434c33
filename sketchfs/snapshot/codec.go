// Package snapshot converts a project tree to and from its flat persisted
// representation: a mapping from canonical path to a type-tagged entry, files
// carrying content and directories omitting it. The JSON form preserves the
// tree's serialization order.
package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/draftwing/sketchfs/sketchfs/trees"
)

// Entry is the persisted summary of one tree node.
type Entry struct {
	Type    string  `json:"type"` // "file" | "directory"
	Content *string `json:"content,omitempty"`
}

// Snapshot is the flattened, persistable representation of an entire tree at
// a point in time. It keeps the exported key order alongside the mapping so
// the JSON form round-trips deterministically.
type Snapshot struct {
	entries map[string]Entry
	order   []string
}

// Export flattens a tree in its serialization order.
func Export(t *trees.FileTree) *Snapshot {
	serialized := t.Serialize()
	s := &Snapshot{
		entries: make(map[string]Entry, len(serialized)),
		order:   make([]string, 0, len(serialized)),
	}
	for _, entry := range serialized {
		persisted := Entry{Type: entry.Type.String()}
		if entry.Type == trees.File {
			content := entry.Content
			persisted.Content = &content
		}
		s.entries[entry.Path] = persisted
		s.order = append(s.order, entry.Path)
	}
	return s
}

// FromMap builds a snapshot from an externally supplied mapping, ordering
// keys lexically so ancestors precede descendants.
func FromMap(entries map[string]Entry) *Snapshot {
	s := &Snapshot{
		entries: make(map[string]Entry, len(entries)),
		order:   make([]string, 0, len(entries)),
	}
	for path, entry := range entries {
		s.entries[path] = entry
		s.order = append(s.order, path)
	}
	sort.Strings(s.order)
	return s
}

// Import reconstructs a tree from the snapshot. Entries are created in
// lexically sorted order, which guarantees every ancestor directory is
// created before its descendants; the tree's implicit ancestor creation
// covers snapshots that omit intermediate directories.
func (s *Snapshot) Import(opts ...trees.TreeOption) (*trees.FileTree, error) {
	tree := trees.NewFileTree(opts...)

	ordered := make([]string, len(s.order))
	copy(ordered, s.order)
	sort.Strings(ordered)

	for _, path := range ordered {
		entry := s.entries[path]
		switch trees.StringToNodeType(entry.Type) {
		case trees.Directory:
			if err := tree.EnsureDirectory(path); err != nil {
				return nil, fmt.Errorf("import %s: %w", path, err)
			}
		case trees.File:
			content := ""
			if entry.Content != nil {
				content = *entry.Content
			}
			if err := tree.WriteFile(path, content); err != nil {
				return nil, fmt.Errorf("import %s: %w", path, err)
			}
		default:
			return nil, fmt.Errorf("import %s: unknown entry type %q", path, entry.Type)
		}
	}
	return tree, nil
}

// Paths returns the exported key order.
func (s *Snapshot) Paths() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Get returns the entry stored under a canonical path.
func (s *Snapshot) Get(path string) (Entry, bool) {
	entry, ok := s.entries[path]
	return entry, ok
}

// Len returns the number of entries.
func (s *Snapshot) Len() int {
	return len(s.entries)
}

// MarshalJSON writes the mapping as a JSON object whose keys appear in the
// snapshot's order.
func (s *Snapshot) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, path := range s.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(path)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(s.entries[path])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object, retaining its key order.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("snapshot: expected object, got %v", tok)
	}

	s.entries = make(map[string]Entry)
	s.order = nil
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("snapshot: %w", err)
		}
		path, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("snapshot: expected string key, got %v", keyTok)
		}
		var entry Entry
		if err := dec.Decode(&entry); err != nil {
			return fmt.Errorf("snapshot entry %s: %w", path, err)
		}
		if _, dup := s.entries[path]; !dup {
			s.order = append(s.order, path)
		}
		s.entries[path] = entry
	}

	if _, err := dec.Token(); err != nil { // closing brace
		return fmt.Errorf("snapshot: %w", err)
	}
	return nil
}

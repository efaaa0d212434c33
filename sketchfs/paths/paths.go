// Package paths canonicalizes and validates the absolute paths that address
// entries in a project tree. Every other package routes raw path strings
// through Normalize before touching the tree.
package paths

import (
	"errors"
	"fmt"
	gopath "path"
	"strings"
)

const maxPathLength = 4096

var (
	ErrPathEmpty   = errors.New("path cannot be empty")
	ErrPathTooLong = errors.New("path too long (max 4096 characters)")
	ErrInvalidPath = errors.New("path contains invalid characters or escapes the root")
)

// Root is the canonical path of the tree root.
const Root = "/"

// Normalize reduces raw to its canonical absolute form: leading slash, no
// trailing slash except the root itself, no empty or relative segments.
func Normalize(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", ErrPathEmpty
	}
	if len(raw) > maxPathLength {
		return "", ErrPathTooLong
	}
	if strings.ContainsRune(raw, '\x00') {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, raw)
	}

	// Treat backslashes as separators so Windows-flavored input canonicalizes
	// the same way.
	normalized := strings.ReplaceAll(raw, "\\", "/")
	if !strings.HasPrefix(normalized, "/") {
		normalized = "/" + normalized
	}

	// Clean resolves "." and ".." segments and collapses repeated slashes.
	normalized = gopath.Clean(normalized)

	// Clean maps parent-escapes like "/../x" to "/x", silently discarding the
	// escape. Reject those inputs instead of guessing what was meant.
	if escapesRoot(raw) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, raw)
	}

	if len(normalized) > 1 && strings.HasSuffix(normalized, "/") {
		normalized = strings.TrimSuffix(normalized, "/")
	}
	return normalized, nil
}

// escapesRoot reports whether the raw path tries to climb above the root at
// any point during left-to-right resolution.
func escapesRoot(raw string) bool {
	depth := 0
	raw = strings.ReplaceAll(raw, "\\", "/")
	for _, seg := range strings.Split(raw, "/") {
		switch seg {
		case "", ".":
		case "..":
			depth--
			if depth < 0 {
				return true
			}
		default:
			depth++
		}
	}
	return false
}

// Join appends name to a canonical parent path, producing a canonical child
// path.
func Join(parent, name string) string {
	if parent == Root {
		return Root + name
	}
	return parent + "/" + name
}

// Parent returns the canonical parent of a canonical path. ok is false only
// for the root, which has no parent.
func Parent(path string) (parent string, ok bool) {
	if path == Root {
		return "", false
	}
	idx := strings.LastIndex(path, "/")
	if idx == 0 {
		return Root, true
	}
	return path[:idx], true
}

// BaseName returns the final segment of a canonical path. The root's base
// name is "/".
func BaseName(path string) string {
	if path == Root {
		return Root
	}
	return path[strings.LastIndex(path, "/")+1:]
}

// Segments splits a canonical path into its name segments. The root yields
// an empty slice.
func Segments(path string) []string {
	if path == Root {
		return nil
	}
	return strings.Split(strings.TrimPrefix(path, "/"), "/")
}

// Ancestors returns every proper ancestor of a canonical path, nearest the
// root first, excluding the root itself.
func Ancestors(path string) []string {
	segs := Segments(path)
	if len(segs) == 0 {
		return nil
	}
	var ancestors []string
	current := Root
	for _, seg := range segs[:len(segs)-1] {
		current = Join(current, seg)
		ancestors = append(ancestors, current)
	}
	return ancestors
}

// IsAncestor reports whether ancestor strictly contains path.
func IsAncestor(ancestor, path string) bool {
	if ancestor == path {
		return false
	}
	if ancestor == Root {
		return true
	}
	return strings.HasPrefix(path, ancestor+"/")
}

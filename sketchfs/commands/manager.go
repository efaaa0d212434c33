package commands

import (
	"fmt"
	"log/slog"

	"github.com/draftwing/sketchfs/sketchfs/paths"
	"github.com/draftwing/sketchfs/sketchfs/trees"
)

// Manager interprets the structural commands against a FileTree. Deletion is
// always recursive at this surface; the non-recursive guard stays available
// on the tree itself.
type Manager struct {
	tree   *trees.FileTree
	logger *slog.Logger
}

// ManagerOption customizes a Manager.
type ManagerOption func(*Manager)

// WithManagerLogger sets a custom logger.
func WithManagerLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a management command interpreter over the given tree.
func NewManager(tree *trees.FileTree, opts ...ManagerOption) *Manager {
	m := &Manager{tree: tree, logger: slog.Default()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Apply dispatches one management command and returns its textual result.
func (m *Manager) Apply(in *ManageInput) (string, error) {
	path, err := paths.Normalize(in.Path)
	if err != nil {
		return "", err
	}

	switch in.Command {
	case CommandRename:
		if in.NewPath == nil {
			return "", fmt.Errorf("rename %s: parameter new_path is required: %w", path, ErrMissingArgument)
		}
		newPath, err := paths.Normalize(*in.NewPath)
		if err != nil {
			return "", err
		}
		if err := m.tree.RenameEntry(path, newPath); err != nil {
			return "", err
		}
		m.logger.Debug("entry renamed", "from", path, "to", newPath)
		return fmt.Sprintf("Renamed %s to %s", path, newPath), nil

	case CommandDelete:
		if err := m.tree.DeleteEntry(path, true); err != nil {
			return "", err
		}
		m.logger.Debug("entry deleted", "path", path)
		return fmt.Sprintf("Deleted %s", path), nil

	default:
		return "", fmt.Errorf("%w: %q, allowed commands are rename, delete", ErrUnknownCommand, in.Command)
	}
}

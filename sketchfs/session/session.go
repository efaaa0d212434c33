// Package session ties one project tree to its command stream and snapshot
// storage. Each active project gets exactly one Session: an explicitly owned
// tree instance with a defined creation point and a defined teardown point,
// never ambient process state.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/draftwing/sketchfs/sketchfs/commands"
	"github.com/draftwing/sketchfs/sketchfs/db"
	"github.com/draftwing/sketchfs/sketchfs/snapshot"
	"github.com/draftwing/sketchfs/sketchfs/stream"
	"github.com/draftwing/sketchfs/sketchfs/trees"
)

// ErrNoProvider is returned by Save when the session has no snapshot storage.
var ErrNoProvider = errors.New("session has no snapshot provider")

// Options configures a Session.
type Options struct {
	Provider       db.ISnapshotProvider // optional; Save fails without it
	IgnorePatterns []string
	MaxViewBytes   int
	Logger         *slog.Logger
}

// Session owns one project tree, the single applier that mutates it, and the
// optional storage used to persist it. The session is the serialization
// point: one command stream per session, one session per tree.
type Session struct {
	ID        uuid.UUID
	CreatedAt time.Time

	tree     *trees.FileTree
	applier  *stream.Applier
	provider db.ISnapshotProvider
	logger   *slog.Logger
}

// New creates a session over an empty tree (root only).
func New(opts Options) *Session {
	return newSession(nil, opts)
}

// Restore creates a session over a tree rebuilt from a snapshot. The rebuilt
// tree is validated against the structural invariants before use.
func Restore(snap *snapshot.Snapshot, opts Options) (*Session, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tree, err := snap.Import(trees.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("restore session: %w", err)
	}
	if problems := tree.Validate(); len(problems) > 0 {
		return nil, fmt.Errorf("restore session: invalid tree: %w", errors.Join(problems...))
	}
	return newSession(tree, opts), nil
}

func newSession(tree *trees.FileTree, opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if tree == nil {
		tree = trees.NewFileTree(trees.WithLogger(logger))
	}

	editorOpts := []commands.EditorOption{
		commands.WithIgnorePatterns(opts.IgnorePatterns),
		commands.WithEditorLogger(logger),
	}
	if opts.MaxViewBytes > 0 {
		editorOpts = append(editorOpts, commands.WithMaxViewBytes(opts.MaxViewBytes))
	}
	editor := commands.NewEditor(tree, editorOpts...)
	manager := commands.NewManager(tree, commands.WithManagerLogger(logger))

	s := &Session{
		ID:        uuid.New(),
		CreatedAt: time.Now(),
		tree:      tree,
		applier:   stream.NewApplier(editor, manager, stream.WithApplierLogger(logger)),
		provider:  opts.Provider,
		logger:    logger,
	}
	s.logger.Debug("session created", "session_id", s.ID)
	return s
}

// Tree exposes the session's tree for read-side consumers (preview, index
// builds). Readers observe committed state only: the applier finishes each
// invocation before the next is processed.
func (s *Session) Tree() *trees.FileTree {
	return s.tree
}

// Apply feeds one invocation from the session's command stream.
func (s *Session) Apply(inv *stream.Invocation) (*stream.Result, error) {
	return s.applier.Apply(inv)
}

// ApplyAll feeds an ordered chunk of the command stream.
func (s *Session) ApplyAll(invs []*stream.Invocation) ([]*stream.Result, error) {
	return s.applier.ApplyAll(invs)
}

// Export flattens the current tree state.
func (s *Session) Export() *snapshot.Snapshot {
	return snapshot.Export(s.tree)
}

// Save persists the current tree state through the session's provider.
func (s *Session) Save() (uuid.UUID, error) {
	if s.provider == nil {
		return uuid.Nil, ErrNoProvider
	}
	id, err := s.provider.SaveSnapshot(s.Export())
	if err != nil {
		return uuid.Nil, fmt.Errorf("save session %s: %w", s.ID, err)
	}
	s.logger.Debug("session saved", "session_id", s.ID, "snapshot_id", id)
	return id, nil
}

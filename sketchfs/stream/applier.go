// Package stream consumes the ordered tool-invocation sequence produced by
// the chat transport and applies each invocation to the interpreters exactly
// once. Duplicate deliveries replay the stored result; a failed invocation
// never halts the rest of the sequence.
package stream

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/draftwing/sketchfs/sketchfs/commands"
	"github.com/draftwing/sketchfs/sketchfs/paths"
	"github.com/draftwing/sketchfs/sketchfs/trees"
)

// InterpreterName selects which interpreter an invocation targets.
type InterpreterName string

const (
	NameEdit   InterpreterName = "edit"
	NameManage InterpreterName = "manage"
)

// State is the lifecycle state of an invocation.
type State string

const (
	StatePending   State = "pending"
	StateCommitted State = "committed"
)

// Invocation is one structured command in the stream envelope shape the
// transport delivers.
type Invocation struct {
	ID     string          `json:"id"`
	Name   InterpreterName `json:"name"`
	State  State           `json:"state"`
	Args   json.RawMessage `json:"args"`
	Result *Result         `json:"result,omitempty"`
}

// ErrorKind is the wire classification of an interpreter failure.
type ErrorKind string

const (
	KindInvalidPath     ErrorKind = "invalid_path"
	KindNotFound        ErrorKind = "not_found"
	KindNotAFile        ErrorKind = "not_a_file"
	KindNotADirectory   ErrorKind = "not_a_directory"
	KindAlreadyExists   ErrorKind = "already_exists"
	KindNotEmpty        ErrorKind = "not_empty"
	KindNoMatch         ErrorKind = "no_match"
	KindAmbiguousMatch  ErrorKind = "ambiguous_match"
	KindInvalidRange    ErrorKind = "invalid_range"
	KindForbidden       ErrorKind = "forbidden"
	KindInvalidArgument ErrorKind = "invalid_argument"
)

// Classify maps an interpreter error onto its wire kind.
func Classify(err error) ErrorKind {
	switch {
	case errors.Is(err, paths.ErrPathEmpty),
		errors.Is(err, paths.ErrPathTooLong),
		errors.Is(err, paths.ErrInvalidPath):
		return KindInvalidPath
	case errors.Is(err, trees.ErrNotFound):
		return KindNotFound
	case errors.Is(err, trees.ErrNotAFile):
		return KindNotAFile
	case errors.Is(err, trees.ErrNotADirectory):
		return KindNotADirectory
	case errors.Is(err, trees.ErrAlreadyExists):
		return KindAlreadyExists
	case errors.Is(err, trees.ErrNotEmpty):
		return KindNotEmpty
	case errors.Is(err, trees.ErrForbidden):
		return KindForbidden
	case errors.Is(err, commands.ErrNoMatch):
		return KindNoMatch
	case errors.Is(err, commands.ErrAmbiguousMatch):
		return KindAmbiguousMatch
	case errors.Is(err, commands.ErrInvalidRange):
		return KindInvalidRange
	default:
		return KindInvalidArgument
	}
}

// Result captures the outcome of one invocation. Either Output is set and OK
// is true, or Error/Kind describe the failure.
type Result struct {
	OK     bool      `json:"ok"`
	Output string    `json:"output,omitempty"`
	Error  string    `json:"error,omitempty"`
	Kind   ErrorKind `json:"kind,omitempty"`
}

// ErrMalformedInvocation marks an envelope the applier itself cannot process.
// Unlike interpreter failures it is fatal: it indicates an unparseable
// command, not a valid-but-inapplicable one.
var ErrMalformedInvocation = errors.New("malformed invocation")

// Applier drains one ordered invocation stream against a single tree. It is
// the only writer: invocations are processed strictly in arrival order and
// never concurrently.
type Applier struct {
	editor    *commands.Editor
	manager   *commands.Manager
	committed map[string]*Invocation
	logger    *slog.Logger
}

// ApplierOption customizes an Applier.
type ApplierOption func(*Applier)

// WithApplierLogger sets a custom logger.
func WithApplierLogger(logger *slog.Logger) ApplierOption {
	return func(a *Applier) {
		a.logger = logger
	}
}

// NewApplier creates an applier dispatching to the given interpreters.
func NewApplier(editor *commands.Editor, manager *commands.Manager, opts ...ApplierOption) *Applier {
	a := &Applier{
		editor:    editor,
		manager:   manager,
		committed: make(map[string]*Invocation),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Apply processes one invocation. On first sight of an id the matching
// interpreter runs once and the outcome, success or failure, is committed as
// the result. Any repeat sight of a committed id replays the stored result
// without re-invoking the interpreter. The returned error is non-nil only
// for malformed envelopes, which abort the stream.
func (a *Applier) Apply(inv *Invocation) (*Result, error) {
	if inv == nil || inv.ID == "" {
		return nil, fmt.Errorf("%w: missing invocation id", ErrMalformedInvocation)
	}

	if prev, ok := a.committed[inv.ID]; ok {
		a.logger.Debug("duplicate invocation replayed", "id", inv.ID)
		return prev.Result, nil
	}

	record := &Invocation{ID: inv.ID, Name: inv.Name, State: StatePending, Args: inv.Args}

	var output string
	var applyErr error
	switch inv.Name {
	case NameEdit:
		var in commands.EditInput
		if err := json.Unmarshal(inv.Args, &in); err != nil {
			return nil, fmt.Errorf("%w: invocation %s: %v", ErrMalformedInvocation, inv.ID, err)
		}
		output, applyErr = a.editor.Apply(&in)
	case NameManage:
		var in commands.ManageInput
		if err := json.Unmarshal(inv.Args, &in); err != nil {
			return nil, fmt.Errorf("%w: invocation %s: %v", ErrMalformedInvocation, inv.ID, err)
		}
		output, applyErr = a.manager.Apply(&in)
	default:
		return nil, fmt.Errorf("%w: invocation %s targets unknown interpreter %q", ErrMalformedInvocation, inv.ID, inv.Name)
	}

	result := &Result{OK: true, Output: output}
	if applyErr != nil {
		result = &Result{Error: applyErr.Error(), Kind: Classify(applyErr)}
		a.logger.Warn("invocation failed", "id", inv.ID, "kind", result.Kind, "error", applyErr)
	} else {
		a.logger.Debug("invocation committed", "id", inv.ID, "name", inv.Name)
	}

	record.State = StateCommitted
	record.Result = result
	a.committed[inv.ID] = record
	return result, nil
}

// ApplyAll processes a chunk of the stream in order, collecting per-invocation
// results. Interpreter failures are recorded and the sequence continues; only
// a malformed envelope aborts, returning the results collected so far.
func (a *Applier) ApplyAll(invs []*Invocation) ([]*Result, error) {
	results := make([]*Result, 0, len(invs))
	for _, inv := range invs {
		result, err := a.Apply(inv)
		if err != nil {
			return results, err
		}
		results = append(results, result)
	}
	return results, nil
}

// Committed returns the stored record for an already-processed id.
func (a *Applier) Committed(id string) (*Invocation, bool) {
	inv, ok := a.committed[id]
	return inv, ok
}

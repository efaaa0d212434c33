// Package commands implements the structured edit and management commands an
// agent issues against a project tree. The edit surface follows the
// str_replace-based editor contract the agents already speak: view, create,
// str_replace, insert. The management surface covers rename and delete.
package commands

import "errors"

// EditCommand enumerates the file-content edit commands.
type EditCommand string

const (
	CommandView       EditCommand = "view"
	CommandCreate     EditCommand = "create"
	CommandStrReplace EditCommand = "str_replace"
	CommandInsert     EditCommand = "insert"
)

// ManageCommand enumerates the structural commands.
type ManageCommand string

const (
	CommandRename ManageCommand = "rename"
	CommandDelete ManageCommand = "delete"
)

// EditInput is the payload of one edit invocation.
type EditInput struct {
	Command    EditCommand `json:"command"`
	Path       string      `json:"path"`
	Content    *string     `json:"content,omitempty"`     // create
	OldStr     *string     `json:"old_str,omitempty"`     // str_replace
	NewStr     *string     `json:"new_str,omitempty"`     // str_replace
	InsertLine *int        `json:"insert_line,omitempty"` // insert
	Text       *string     `json:"text,omitempty"`        // insert
	ViewRange  []int       `json:"view_range,omitempty"`  // view
}

// ManageInput is the payload of one management invocation.
type ManageInput struct {
	Command ManageCommand `json:"command"`
	Path    string        `json:"path"`
	NewPath *string       `json:"new_path,omitempty"` // rename
}

// Sentinel errors for command-level policy violations. Tree and path errors
// pass through from their own packages.
var (
	ErrNoMatch         = errors.New("old_str did not appear in the file")
	ErrAmbiguousMatch  = errors.New("old_str appears more than once in the file")
	ErrInvalidRange    = errors.New("line range out of bounds")
	ErrMissingArgument = errors.New("missing required argument")
	ErrUnknownCommand  = errors.New("unrecognized command")
)

package trees

import "errors"

// Sentinel errors surfaced by tree operations. Callers classify failures with
// errors.Is; the stream layer maps them onto invocation results.
var (
	ErrNotFound      = errors.New("entry does not exist")
	ErrNotAFile      = errors.New("entry is not a file")
	ErrNotADirectory = errors.New("entry is not a directory")
	ErrAlreadyExists = errors.New("entry already exists")
	ErrNotEmpty      = errors.New("directory is not empty")
	ErrForbidden     = errors.New("operation not permitted on the root")
)

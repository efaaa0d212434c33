package commands

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	ignore "github.com/sabhiram/go-gitignore"

	"github.com/draftwing/sketchfs/sketchfs/paths"
	"github.com/draftwing/sketchfs/sketchfs/trees"
)

// DefaultMaxViewBytes caps the content returned by view before truncation.
const DefaultMaxViewBytes = 1024 * 1024

// Editor interprets the file-content edit commands against a FileTree. It is
// read-only for view and atomic per command otherwise: a failed command
// leaves file content byte-identical.
type Editor struct {
	tree         *trees.FileTree
	matcher      *ignore.GitIgnore
	maxViewBytes int
	logger       *slog.Logger
}

// EditorOption customizes an Editor.
type EditorOption func(*Editor)

// WithIgnorePatterns hides directory-listing entries matching the given
// gitignore-style patterns.
func WithIgnorePatterns(patterns []string) EditorOption {
	return func(e *Editor) {
		if len(patterns) > 0 {
			e.matcher = ignore.CompileIgnoreLines(patterns...)
		}
	}
}

// WithMaxViewBytes overrides the view truncation threshold.
func WithMaxViewBytes(n int) EditorOption {
	return func(e *Editor) {
		e.maxViewBytes = n
	}
}

// WithEditorLogger sets a custom logger.
func WithEditorLogger(logger *slog.Logger) EditorOption {
	return func(e *Editor) {
		e.logger = logger
	}
}

// NewEditor creates an edit command interpreter over the given tree.
func NewEditor(tree *trees.FileTree, opts ...EditorOption) *Editor {
	e := &Editor{
		tree:         tree,
		maxViewBytes: DefaultMaxViewBytes,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Apply dispatches one edit command and returns its textual result.
func (e *Editor) Apply(in *EditInput) (string, error) {
	path, err := paths.Normalize(in.Path)
	if err != nil {
		return "", err
	}

	switch in.Command {
	case CommandView:
		return e.view(path, in.ViewRange)
	case CommandCreate:
		return e.create(path, in.Content)
	case CommandStrReplace:
		return e.strReplace(path, in.OldStr, in.NewStr)
	case CommandInsert:
		return e.insert(path, in.InsertLine, in.Text)
	default:
		return "", fmt.Errorf("%w: %q, allowed commands are view, create, str_replace, insert", ErrUnknownCommand, in.Command)
	}
}

// view returns full file content, a line-numbered slice when a range is
// given, or the immediate listing for a directory. Never mutates.
func (e *Editor) view(path string, viewRange []int) (string, error) {
	kind, ok := e.tree.Kind(path)
	if !ok {
		return "", fmt.Errorf("view %s: %w", path, trees.ErrNotFound)
	}

	if kind == trees.Directory {
		if len(viewRange) > 0 {
			return "", fmt.Errorf("view %s: view_range is not allowed for a directory: %w", path, ErrInvalidRange)
		}
		return e.listDirectory(path)
	}

	content, err := e.tree.ReadFile(path)
	if err != nil {
		return "", err
	}

	if len(viewRange) == 0 {
		return e.maybeTruncate(content), nil
	}

	if len(viewRange) != 2 {
		return "", fmt.Errorf("view %s: view_range must be [start, end]: %w", path, ErrInvalidRange)
	}

	lines := strings.Split(content, "\n")
	nLines := len(lines)
	start, end := viewRange[0], viewRange[1]

	if start < 1 || start > nLines {
		return "", fmt.Errorf("view %s: start line %d outside [1, %d]: %w", path, start, nLines, ErrInvalidRange)
	}
	if end != -1 && (end > nLines || end < start) {
		return "", fmt.Errorf("view %s: end line %d outside [%d, %d]: %w", path, end, start, nLines, ErrInvalidRange)
	}

	if end == -1 {
		end = nLines
	}
	return numberLines(strings.Join(lines[start-1:end], "\n"), start), nil
}

func (e *Editor) listDirectory(path string) (string, error) {
	names, err := e.tree.ListDirectory(path)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, name := range names {
		childPath := paths.Join(path, name)
		if e.matcher != nil && e.matcher.MatchesPath(childPath) {
			continue
		}
		if kind, _ := e.tree.Kind(childPath); kind == trees.Directory {
			sb.WriteString(name + "/\n")
		} else {
			sb.WriteString(name + "\n")
		}
	}
	return sb.String(), nil
}

// create writes content to path, creating missing ancestors, overwriting
// existing content without warning.
func (e *Editor) create(path string, content *string) (string, error) {
	if content == nil {
		return "", fmt.Errorf("create %s: parameter content is required: %w", path, ErrMissingArgument)
	}
	if err := e.tree.WriteFile(path, *content); err != nil {
		return "", err
	}
	e.logger.Debug("file created", "path", path, "bytes", len(*content))
	return fmt.Sprintf("File created successfully at: %s", path), nil
}

// strReplace replaces exactly one occurrence of oldStr. Zero occurrences fail
// with ErrNoMatch, two or more with ErrAmbiguousMatch; either way the file is
// untouched. Occurrences are counted as non-overlapping left-to-right
// matches.
func (e *Editor) strReplace(path string, oldStr, newStr *string) (string, error) {
	if oldStr == nil {
		return "", fmt.Errorf("str_replace %s: parameter old_str is required: %w", path, ErrMissingArgument)
	}
	replacement := ""
	if newStr != nil {
		replacement = *newStr
	}

	content, err := e.tree.ReadFile(path)
	if err != nil {
		return "", err
	}

	occurrences := strings.Count(content, *oldStr)
	if occurrences == 0 {
		return "", fmt.Errorf("str_replace %s: old_str %q did not appear verbatim: %w", path, *oldStr, ErrNoMatch)
	}
	if occurrences > 1 {
		return "", fmt.Errorf("str_replace %s: %d occurrences of old_str %q in lines %v, ensure it is unique: %w",
			path, occurrences, *oldStr, occurrenceLines(content, *oldStr), ErrAmbiguousMatch)
	}

	newContent := strings.Replace(content, *oldStr, replacement, 1)
	if err := e.tree.WriteFile(path, newContent); err != nil {
		return "", err
	}

	e.logger.Debug("str_replace applied", "path", path)
	return fmt.Sprintf("The file %s has been edited.\n%s", path, unifiedDiff(path, content, newContent)), nil
}

// insert splices text as its own line(s) at a 0-based insertion point: 0 is
// before the first line, N (the current line count) is after the last.
func (e *Editor) insert(path string, insertLine *int, text *string) (string, error) {
	if insertLine == nil {
		return "", fmt.Errorf("insert %s: parameter insert_line is required: %w", path, ErrMissingArgument)
	}
	if text == nil {
		return "", fmt.Errorf("insert %s: parameter text is required: %w", path, ErrMissingArgument)
	}

	content, err := e.tree.ReadFile(path)
	if err != nil {
		return "", err
	}

	lines := strings.Split(content, "\n")
	nLines := len(lines)
	if *insertLine < 0 || *insertLine > nLines {
		return "", fmt.Errorf("insert %s: line %d outside [0, %d]: %w", path, *insertLine, nLines, ErrInvalidRange)
	}

	inserted := strings.Split(*text, "\n")
	newLines := make([]string, 0, nLines+len(inserted))
	newLines = append(newLines, lines[:*insertLine]...)
	newLines = append(newLines, inserted...)
	newLines = append(newLines, lines[*insertLine:]...)
	newContent := strings.Join(newLines, "\n")

	if err := e.tree.WriteFile(path, newContent); err != nil {
		return "", err
	}

	e.logger.Debug("insert applied", "path", path, "line", *insertLine)
	return fmt.Sprintf("The file %s has been edited.\n%s", path, unifiedDiff(path, content, newContent)), nil
}

func (e *Editor) maybeTruncate(content string) string {
	if len(content) > e.maxViewBytes {
		return content[:e.maxViewBytes] + "\n... (content truncated)"
	}
	return content
}

// occurrenceLines returns the 1-based line numbers containing sub.
func occurrenceLines(content, sub string) []int {
	var lineNumbers []int
	for i, line := range strings.Split(content, "\n") {
		if strings.Contains(line, sub) {
			lineNumbers = append(lineNumbers, i+1)
		}
	}
	return lineNumbers
}

// numberLines renders content cat -n style, starting at initLine.
func numberLines(content string, initLine int) string {
	lines := strings.Split(content, "\n")
	numbered := make([]string, len(lines))
	for i, line := range lines {
		numbered[i] = fmt.Sprintf("%6d\t%s", i+initLine, line)
	}
	return strings.Join(numbered, "\n")
}

// unifiedDiff renders the change so the agent can review what it edited.
func unifiedDiff(path, before, after string) string {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: path,
		ToFile:   path,
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return ""
	}
	return text
}

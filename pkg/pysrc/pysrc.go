// Package pysrc extracts the declaration-level structure of Python source
// files: classes with their immediate methods, module-level functions,
// imports, decorators, and base classes. It is a lexical scanner, not a full
// parser — it tolerates most malformed input and only rejects files that are
// not analyzable text at all.
package pysrc

import "fmt"

// FileStructure is the declaration-level shape of one Python source file.
type FileStructure struct {
	Classes   []Class
	Functions []Function // module-level defs (indent 0)
	Imports   []Import
	Lines     []Line // sanitized code lines, for textual rule checks
}

// Class is a class declaration and its immediate methods.
type Class struct {
	Name       string
	Bases      []string
	Decorators []string
	Methods    []Function
	Line       int
}

// Function is a def declaration (module-level function or method).
type Function struct {
	Name       string
	Decorators []string
	Line       int
}

// Import is one imported module. A statement like "import a, b" produces two
// records; "from a.b import c, d" produces one with Module "a.b".
type Import struct {
	Module string // dotted path as written, relative dots stripped
	Root   string // first segment of Module, "" for bare relative imports
	Line   int
}

// Line is one source line with comments and string contents removed. Lines
// inside triple-quoted strings are omitted entirely.
type Line struct {
	Number int
	Text   string
}

// ParseError reports source that cannot be analyzed. Line is 0 for
// file-level problems (binary input).
type ParseError struct {
	Line   int
	Reason string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("python source line %d: %s", e.Line, e.Reason)
	}
	return fmt.Sprintf("python source: %s", e.Reason)
}

package pysrc

import (
	"bytes"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	classRe  = regexp.MustCompile(`^(\s*)class\s+([A-Za-z_]\w*)`)
	defRe    = regexp.MustCompile(`^(\s*)(?:async\s+)?def\s+([A-Za-z_]\w*)`)
	decoRe   = regexp.MustCompile(`^\s*@\s*([\w.]+)`)
	fromRe   = regexp.MustCompile(`^\s*from\s+([.\w]+)\s+import\b`)
	importRe = regexp.MustCompile(`^\s*import\s+(.+)$`)
	identRe  = regexp.MustCompile(`^[A-Za-z_]\w*$`)
	dottedRe = regexp.MustCompile(`^[A-Za-z_]\w*(\.[A-Za-z_]\w*)*$`)
)

// Parse scans Python source into its declaration-level structure. It fails
// only on input that is not analyzable text: NUL bytes, invalid UTF-8, or an
// unterminated triple-quoted string. Everything else is scanned best-effort.
func Parse(content []byte) (*FileStructure, error) {
	if bytes.IndexByte(content, 0) >= 0 {
		return nil, &ParseError{Reason: "NUL byte in input, not a text file"}
	}
	if !utf8.Valid(content) {
		return nil, &ParseError{Reason: "invalid UTF-8, not a text file"}
	}

	raw := strings.Split(string(content), "\n")
	st := &sanitizeState{}
	texts := make([]string, len(raw))
	for i, line := range raw {
		texts[i] = st.sanitize(i+1, strings.TrimSuffix(line, "\r"))
	}
	if st.inTriple {
		return nil, &ParseError{Line: st.tripleLine, Reason: "unterminated triple-quoted string"}
	}

	s := &FileStructure{}
	var scopes []scopeEntry
	var pending []string // decorators waiting for their class/def

	depth := 0         // bracket nesting carried across lines
	backslash := false // previous line ended with a continuation backslash

	for i, text := range texts {
		num := i + 1
		startDepth := depth
		depth += bracketDelta(text)
		if depth < 0 {
			depth = 0
		}
		cont := startDepth > 0 || backslash
		backslash = strings.HasSuffix(text, "\\")

		if strings.TrimSpace(text) == "" {
			continue
		}
		s.Lines = append(s.Lines, Line{Number: num, Text: text})

		// Continuation lines are expression fragments, not statements.
		if cont {
			continue
		}

		if m := decoRe.FindStringSubmatch(text); m != nil {
			if name := lastSegment(m[1]); name != "" {
				pending = append(pending, name)
			}
			continue
		}
		if m := classRe.FindStringSubmatch(text); m != nil {
			indent := indentWidth(m[1])
			scopes = popScopes(scopes, indent)
			s.Classes = append(s.Classes, Class{
				Name:       m[2],
				Bases:      parseBases(classHeader(texts, i)),
				Decorators: pending,
				Line:       num,
			})
			pending = nil
			scopes = append(scopes, scopeEntry{indent: indent, class: len(s.Classes) - 1})
			continue
		}
		if m := defRe.FindStringSubmatch(text); m != nil {
			indent := indentWidth(m[1])
			scopes = popScopes(scopes, indent)
			fn := Function{Name: m[2], Decorators: pending, Line: num}
			pending = nil
			if n := len(scopes); n > 0 && scopes[n-1].class >= 0 {
				cls := &s.Classes[scopes[n-1].class]
				cls.Methods = append(cls.Methods, fn)
			} else if indent == 0 {
				s.Functions = append(s.Functions, fn)
			}
			scopes = append(scopes, scopeEntry{indent: indent, class: -1})
			continue
		}
		if m := fromRe.FindStringSubmatch(text); m != nil {
			s.Imports = append(s.Imports, Import{Module: m[1], Root: importRoot(m[1]), Line: num})
			continue
		}
		if m := importRe.FindStringSubmatch(text); m != nil {
			for _, part := range splitTopLevel(m[1], ',') {
				part = strings.TrimSpace(part)
				if j := strings.Index(part, " as "); j >= 0 {
					part = strings.TrimSpace(part[:j])
				}
				if dottedRe.MatchString(part) {
					s.Imports = append(s.Imports, Import{Module: part, Root: importRoot(part), Line: num})
				}
			}
			continue
		}

		// Any other statement line at this indent closes deeper scopes, so a
		// def following a dedented statement is not mistaken for a method.
		scopes = popScopes(scopes, indentWidth(leadingSpace(text)))
	}

	return s, nil
}

type scopeEntry struct {
	indent int
	class  int // index into FileStructure.Classes, -1 for def scopes
}

func popScopes(scopes []scopeEntry, indent int) []scopeEntry {
	for len(scopes) > 0 && scopes[len(scopes)-1].indent >= indent {
		scopes = scopes[:len(scopes)-1]
	}
	return scopes
}

// sanitizeState carries string state across lines.
type sanitizeState struct {
	inTriple    bool
	tripleQuote byte
	tripleLine  int
}

// sanitize strips comments and string contents from one line. Quotes of
// single-line strings are kept so the line stays recognizable; everything
// inside a triple-quoted string is dropped.
func (st *sanitizeState) sanitize(num int, line string) string {
	var b strings.Builder
	i := 0
	for i < len(line) {
		c := line[i]
		if st.inTriple {
			if c == '\\' {
				i += 2
				continue
			}
			if tripleAt(line, i, st.tripleQuote) {
				st.inTriple = false
				i += 3
				continue
			}
			i++
			continue
		}
		switch {
		case c == '#':
			return b.String()
		case c == '"' || c == '\'':
			if tripleAt(line, i, c) {
				st.inTriple = true
				st.tripleQuote = c
				st.tripleLine = num
				i += 3
				continue
			}
			b.WriteByte(c)
			i++
			for i < len(line) {
				if line[i] == '\\' {
					i += 2
					continue
				}
				if line[i] == c {
					b.WriteByte(c)
					i++
					break
				}
				i++
			}
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String()
}

func tripleAt(line string, i int, q byte) bool {
	return i+2 < len(line) && line[i] == q && line[i+1] == q && line[i+2] == q
}

func bracketDelta(s string) int {
	d := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '[', '{':
			d++
		case ')', ']', '}':
			d--
		}
	}
	return d
}

func leadingSpace(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] != ' ' && s[i] != '\t' {
			return s[:i]
		}
	}
	return s
}

func indentWidth(ws string) int {
	return len(ws)
}

// classHeader joins a class statement with its continuation lines until the
// bracket nesting closes, so base lists spanning lines parse whole.
func classHeader(texts []string, start int) string {
	header := texts[start]
	depth := bracketDelta(header)
	for i := start + 1; depth > 0 && i < len(texts) && i-start < 50; i++ {
		header += " " + texts[i]
		depth += bracketDelta(texts[i])
	}
	return header
}

// parseBases extracts base-class names from a class header. Keyword
// arguments (metaclass=...), unpackings, and non-identifier expressions are
// skipped; dotted and subscripted bases reduce to their last plain segment.
func parseBases(header string) []string {
	open := strings.IndexByte(header, '(')
	if open < 0 {
		return nil
	}
	if colon := strings.IndexByte(header, ':'); colon >= 0 && colon < open {
		return nil
	}
	var bases []string
	for _, part := range splitTopLevel(matchParen(header, open), ',') {
		if name := cleanBase(part); name != "" {
			bases = append(bases, name)
		}
	}
	return bases
}

func cleanBase(part string) string {
	part = strings.TrimSpace(part)
	if part == "" || strings.HasPrefix(part, "*") {
		return ""
	}
	if topLevelIndex(part, '=') >= 0 {
		return ""
	}
	if i := topLevelIndex(part, '['); i >= 0 {
		part = strings.TrimSpace(part[:i])
	}
	part = lastSegment(part)
	if !identRe.MatchString(part) {
		return ""
	}
	return part
}

// matchParen returns the content between the paren at open and its match.
func matchParen(s string, open int) string {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
			if depth == 0 {
				return s[open+1 : i]
			}
		}
	}
	return s[open+1:]
}

// splitTopLevel splits on sep occurrences outside any bracket nesting.
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth := 0
	last := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case sep:
			if depth == 0 {
				parts = append(parts, s[last:i])
				last = i + 1
			}
		}
	}
	return append(parts, s[last:])
}

func topLevelIndex(s string, c byte) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		if s[i] == c && depth == 0 {
			return i
		}
		switch s[i] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		}
	}
	return -1
}

func lastSegment(s string) string {
	if i := strings.LastIndexByte(s, '.'); i >= 0 {
		return s[i+1:]
	}
	return s
}

func importRoot(module string) string {
	module = strings.TrimLeft(module, ".")
	if i := strings.IndexByte(module, '.'); i >= 0 {
		return module[:i]
	}
	return module
}

// Package rules validates architecture rules against a single Python file.
//
// Three table-driven checks run on the target only: layer dependency
// direction, singleton construction placement, and direct environment
// access. Each check yields zero or more Violations; none of them needs
// candidate files, so the validator is independent of similarity search.
package rules

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/simonhull/kestrel/pkg/config"
	"github.com/simonhull/kestrel/pkg/pysrc"
)

// Severity classifies how a violation affects the verdict.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Rule identifiers, stable across config changes.
const (
	RuleLayerDependency    = "layer-dependency"
	RuleSingletonPlacement = "singleton-placement"
	RuleConfigAccess       = "config-access"
)

// Violation is one architecture rule breach in the target file.
type Violation struct {
	Rule     string   `json:"rule"`
	Title    string   `json:"title"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Details  string   `json:"details,omitempty"`
	Line     int      `json:"line,omitempty"` // 1-based, 0 when not line-specific
}

// Validator holds the compiled rule tables.
type Validator struct {
	layers      []layerDef // outer to inner, rank = index
	singletons  []singletonDef
	settings    string // designated settings file, path suffix
	settingsMod string // dotted module path of the settings file
}

type layerDef struct {
	title   string
	imports []string
	paths   []string
}

type singletonDef struct {
	kind string
	re   *regexp.Regexp
	file string
}

// NewValidator compiles the rule tables from config.
func NewValidator(cfg *config.Config) (*Validator, error) {
	v := &Validator{
		layers:   make([]layerDef, 0, len(cfg.Layers)),
		settings: filepath.ToSlash(cfg.SettingsFile),
	}
	for _, l := range cfg.Layers {
		v.layers = append(v.layers, layerDef{
			title:   l.Title,
			imports: l.Imports,
			paths:   l.Paths,
		})
	}
	for _, s := range cfg.Singletons {
		re, err := regexp.Compile(s.Pattern)
		if err != nil {
			return nil, fmt.Errorf("compiling singleton pattern for %s: %w", s.Kind, err)
		}
		v.singletons = append(v.singletons, singletonDef{kind: s.Kind, re: re, file: filepath.ToSlash(s.File)})
	}
	if v.settings != "" {
		v.settingsMod = strings.ReplaceAll(strings.TrimSuffix(v.settings, ".py"), "/", ".")
	}
	return v, nil
}

// Validate runs every rule against the parsed target. The path decides layer
// membership and designated-file exemptions; content is only ever read from
// the sanitized structure.
func (v *Validator) Validate(path string, src *pysrc.FileStructure) []Violation {
	path = filepath.ToSlash(path)

	var violations []Violation
	violations = append(violations, v.checkLayers(path, src)...)
	violations = append(violations, v.checkSingletons(path, src)...)
	violations = append(violations, v.checkConfigAccess(path, src)...)
	return violations
}

// checkLayers flags imports that point from an inner layer to an outer one.
// Outer to inner and same-layer imports are allowed; files and modules that
// belong to no configured layer are exempt.
func (v *Validator) checkLayers(path string, src *pysrc.FileStructure) []Violation {
	fileRank := v.layerOfPath(path)
	if fileRank < 0 {
		return nil
	}

	type offense struct {
		modules map[string]bool
		line    int
	}
	offenses := make(map[int]*offense)
	for _, imp := range src.Imports {
		rank := v.layerOfModule(imp.Module)
		if rank < 0 || rank >= fileRank {
			continue
		}
		o, ok := offenses[rank]
		if !ok {
			o = &offense{modules: make(map[string]bool), line: imp.Line}
			offenses[rank] = o
		}
		o.modules[imp.Module] = true
		if imp.Line < o.line {
			o.line = imp.Line
		}
	}
	if len(offenses) == 0 {
		return nil
	}

	ranks := make([]int, 0, len(offenses))
	for rank := range offenses {
		ranks = append(ranks, rank)
	}
	sort.Ints(ranks)

	violations := make([]Violation, 0, len(ranks))
	for _, rank := range ranks {
		o := offenses[rank]
		modules := make([]string, 0, len(o.modules))
		for m := range o.modules {
			modules = append(modules, m)
		}
		sort.Strings(modules)
		violations = append(violations, Violation{
			Rule:     RuleLayerDependency,
			Title:    "Layer Dependency",
			Severity: SeverityError,
			Message:  fmt.Sprintf("%s layer cannot import from %s layer", v.layers[fileRank].title, v.layers[rank].title),
			Details:  "Found imports: " + strings.Join(modules, ", "),
			Line:     o.line,
		})
	}
	return violations
}

// checkSingletons flags construction of a shared resource outside its
// designated file. Patterns run over the sanitized source so matches in
// comments and docstrings do not count, and a constructor call spanning
// several lines still matches.
func (v *Validator) checkSingletons(path string, src *pysrc.FileStructure) []Violation {
	if len(v.singletons) == 0 || len(src.Lines) == 0 {
		return nil
	}
	text, starts := joinLines(src.Lines)

	var violations []Violation
	for _, s := range v.singletons {
		if hasPathSuffix(path, s.file) {
			continue
		}
		loc := s.re.FindStringIndex(text)
		if loc == nil {
			continue
		}
		violations = append(violations, Violation{
			Rule:     RuleSingletonPlacement,
			Title:    "Singleton Pattern",
			Severity: SeverityError,
			Message:  fmt.Sprintf("%s should only be created in %s", s.kind, s.file),
			Line:     lineAt(src.Lines, starts, loc[0]),
		})
	}
	return violations
}

// checkConfigAccess flags direct environment reads outside the designated
// settings module. Test files are downgraded to a warning; everything else
// is an error.
func (v *Validator) checkConfigAccess(path string, src *pysrc.FileStructure) []Violation {
	if v.settings == "" || hasPathSuffix(path, v.settings) {
		return nil
	}
	for _, ln := range src.Lines {
		if !strings.Contains(ln.Text, "os.getenv") && !strings.Contains(ln.Text, "os.environ") {
			continue
		}
		severity := SeverityError
		if isTestFile(filepath.Base(path)) {
			severity = SeverityWarning
		}
		return []Violation{{
			Rule:     RuleConfigAccess,
			Title:    "Configuration",
			Severity: severity,
			Message:  fmt.Sprintf("Use settings from %s instead", v.settingsMod),
			Line:     ln.Number,
		}}
	}
	return nil
}

// layerOfPath returns the rank of the layer whose path prefix matches the
// file, or -1. The longest matching prefix wins, so app/services/common
// resolves to the core layer rather than the service layer.
func (v *Validator) layerOfPath(path string) int {
	best, bestLen := -1, 0
	for rank, l := range v.layers {
		for _, p := range l.paths {
			p = filepath.ToSlash(p)
			if len(p) <= bestLen {
				continue
			}
			if strings.HasPrefix(path, p+"/") || strings.Contains(path, "/"+p+"/") {
				best, bestLen = rank, len(p)
			}
		}
	}
	return best
}

// layerOfModule returns the rank of the layer owning the dotted module path,
// or -1. Prefixes match on dot boundaries, longest first.
func (v *Validator) layerOfModule(module string) int {
	best, bestLen := -1, 0
	for rank, l := range v.layers {
		for _, p := range l.imports {
			if len(p) <= bestLen {
				continue
			}
			if module == p || strings.HasPrefix(module, p+".") {
				best, bestLen = rank, len(p)
			}
		}
	}
	return best
}

// hasPathSuffix reports whether path ends with the given file on a path
// segment boundary, so app/db/base.py does not match webapp/db/base.py.
func hasPathSuffix(path, suffix string) bool {
	return path == suffix || strings.HasSuffix(path, "/"+suffix)
}

func isTestFile(name string) bool {
	return strings.HasPrefix(name, "test_") || strings.HasSuffix(name, "_test.py")
}

// joinLines concatenates sanitized lines with newlines and records each
// line's start offset so regexp matches can be mapped back to line numbers.
func joinLines(lines []pysrc.Line) (string, []int) {
	var b strings.Builder
	starts := make([]int, len(lines))
	for i, ln := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		starts[i] = b.Len()
		b.WriteString(ln.Text)
	}
	return b.String(), starts
}

func lineAt(lines []pysrc.Line, starts []int, offset int) int {
	i := sort.Search(len(starts), func(i int) bool { return starts[i] > offset }) - 1
	if i < 0 {
		i = 0
	}
	return lines[i].Number
}

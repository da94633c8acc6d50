// Package scan locates duplicate-detection candidates: Python files in the
// directories associated with the target's role. The walk is bounded by the
// candidate limit and the caller's context deadline; it returns partial
// results rather than errors.
package scan

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/simonhull/kestrel/pkg/config"
	"github.com/simonhull/kestrel/pkg/logger"
	"github.com/simonhull/kestrel/pkg/roles"
)

// errLimit aborts a walk once enough candidates are collected.
var errLimit = errors.New("candidate limit reached")

// Finder locates candidate files for duplicate comparison.
type Finder struct {
	root string
	cfg  *config.Config
	log  logger.Logger
}

// NewFinder creates a finder rooted at the project directory.
func NewFinder(root string, cfg *config.Config) *Finder {
	return &Finder{root: root, cfg: cfg, log: logger.Default()}
}

// WithLogger sets a custom logger
func (f *Finder) WithLogger(log logger.Logger) *Finder {
	f.log = log
	return f
}

// Find returns candidate paths for the role, excluding the target file,
// ordered by name proximity to the target. A context deadline truncates the
// walk; whatever was collected is still returned.
func (f *Finder) Find(ctx context.Context, target string, role roles.Role) []string {
	dirs := f.cfg.Roles.Search[string(role)]
	if len(dirs) == 0 {
		dirs = f.cfg.Roles.Search[string(roles.Default)]
	}
	if len(dirs) == 0 {
		dirs = []string{"."}
	}

	exclude := make(map[string]bool, len(f.cfg.Exclude))
	for _, name := range f.cfg.Exclude {
		exclude[name] = true
	}
	targetAbs := normalizePath(target)

	var candidates []string
	for _, dir := range dirs {
		if len(candidates) >= f.cfg.Limits.MaxCandidates {
			break
		}
		root := filepath.Join(f.root, dir)
		if _, err := os.Stat(root); err != nil {
			continue
		}
		err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				f.log.Debug("skipping unreadable path", logger.F("path", path), logger.F("error", err))
				if info != nil && info.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if info.IsDir() {
				if path != root && (exclude[info.Name()] || strings.HasPrefix(info.Name(), ".")) {
					return filepath.SkipDir
				}
				return nil
			}
			if !strings.HasSuffix(info.Name(), ".py") || isTestFile(info.Name()) {
				return nil
			}
			if normalizePath(path) == targetAbs {
				return nil
			}
			if info.Size() > f.cfg.Limits.MaxFileSize {
				f.log.Debug("skipping oversized candidate",
					logger.F("path", path), logger.F("size", info.Size()))
				return nil
			}
			candidates = append(candidates, path)
			if len(candidates) >= f.cfg.Limits.MaxCandidates {
				return errLimit
			}
			return nil
		})
		if err != nil && !errors.Is(err, errLimit) {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				f.log.Debug("candidate search timed out, using partial results",
					logger.F("dir", root), logger.F("found", len(candidates)))
				break
			}
			f.log.Debug("candidate search failed", logger.F("dir", root), logger.F("error", err))
		}
	}

	return rankByProximity(target, candidates)
}

// rankByProximity orders candidates by fuzzy name match against the target's
// base name, best first; candidates that do not match at all follow in
// lexicographic order. The ordering is deterministic for a fixed tree.
func rankByProximity(target string, candidates []string) []string {
	if len(candidates) < 2 {
		return candidates
	}
	pattern := strings.TrimSuffix(filepath.Base(target), ".py")

	matches := fuzzy.FindFrom(pattern, byBase(candidates))
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return candidates[matches[i].Index] < candidates[matches[j].Index]
	})

	ranked := make([]string, 0, len(candidates))
	matched := make([]bool, len(candidates))
	for _, m := range matches {
		ranked = append(ranked, candidates[m.Index])
		matched[m.Index] = true
	}
	var rest []string
	for i, c := range candidates {
		if !matched[i] {
			rest = append(rest, c)
		}
	}
	sort.Strings(rest)
	return append(ranked, rest...)
}

// byBase adapts a path list so fuzzy matching sees file names only.
type byBase []string

func (b byBase) String(i int) string { return filepath.Base(b[i]) }
func (b byBase) Len() int            { return len(b) }

func isTestFile(name string) bool {
	return strings.HasPrefix(name, "test_") || strings.HasSuffix(name, "_test.py")
}

func normalizePath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}

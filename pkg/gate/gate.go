// Package gate runs the pre-write analysis pipeline and reduces the
// outcome to a verdict.
//
// One Analyze call covers one proposed write: parse the target, classify
// its role, search and score candidates under a shared deadline, validate
// architecture rules, and decide. The gate fails open. A target it cannot
// analyze is allowed with a note, a candidate it cannot read is skipped,
// and a search that runs out of time is truncated. Only invalid
// configuration is an error, and that surfaces at construction.
package gate

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/simonhull/kestrel/pkg/config"
	"github.com/simonhull/kestrel/pkg/logger"
	"github.com/simonhull/kestrel/pkg/pysrc"
	"github.com/simonhull/kestrel/pkg/roles"
	"github.com/simonhull/kestrel/pkg/rules"
	"github.com/simonhull/kestrel/pkg/scan"
	"github.com/simonhull/kestrel/pkg/similarity"
)

// Decision is the gate's answer for one proposed write.
type Decision string

const (
	Allow Decision = "allow"
	Warn  Decision = "warn"
	Block Decision = "block"
)

// blockScore is the composite at which duplication alone blocks a write,
// regardless of the role threshold.
const blockScore = 80

// maxMatches bounds how many similar files a verdict reports.
const maxMatches = 3

// Verdict is the complete result for one write event. It always carries
// every violation and every match above the role threshold, even when the
// decision is block, so callers can render a full explanation.
type Verdict struct {
	Decision   Decision            `json:"decision"`
	Role       roles.Role          `json:"role"`
	Threshold  int                 `json:"threshold"`
	Matches    []similarity.Result `json:"matches,omitempty"`
	Violations []rules.Violation   `json:"violations,omitempty"`
	Note       string              `json:"note,omitempty"`
}

// ExitCode maps the decision onto the process exit surface: 2 for block,
// 0 otherwise. Exit 1 is reserved for usage and startup failures.
func (v *Verdict) ExitCode() int {
	if v.Decision == Block {
		return 2
	}
	return 0
}

// Gate wires the pipeline together for one project root.
type Gate struct {
	cfg        *config.Config
	classifier *roles.Classifier
	finder     *scan.Finder
	validator  *rules.Validator
	log        logger.Logger
}

// New builds a gate for the project rooted at root.
func New(root string, cfg *config.Config) (*Gate, error) {
	validator, err := rules.NewValidator(cfg)
	if err != nil {
		return nil, err
	}
	return &Gate{
		cfg:        cfg,
		classifier: roles.NewClassifier(cfg.Roles),
		finder:     scan.NewFinder(root, cfg),
		validator:  validator,
		log:        logger.Default(),
	}, nil
}

// WithLogger sets a custom logger
func (g *Gate) WithLogger(log logger.Logger) *Gate {
	g.log = log
	g.finder.WithLogger(log)
	return g
}

// Analyze runs the full pipeline for one proposed write. It never fails:
// every code path terminates in a verdict.
func (g *Gate) Analyze(ctx context.Context, path string, content []byte) *Verdict {
	if size := int64(len(content)); size > g.cfg.Limits.MaxFileSize {
		g.log.Debug("target exceeds size limit, skipping analysis",
			logger.F("path", path), logger.F("size", size))
		return g.allowWithNote(path, fmt.Sprintf("file is %d bytes (limit %d), analysis skipped", size, g.cfg.Limits.MaxFileSize))
	}

	src, err := pysrc.Parse(content)
	if err != nil {
		g.log.Debug("target not analyzable, allowing write",
			logger.F("path", path), logger.F("error", err))
		return g.allowWithNote(path, fmt.Sprintf("target not analyzable: %v", err))
	}

	features := src.Features()
	role := g.classifier.Classify(path, features)
	threshold := g.cfg.Threshold(string(role))

	searchCtx, cancel := context.WithTimeout(ctx, g.cfg.Limits.SearchTimeout)
	defer cancel()

	candidates := g.finder.Find(searchCtx, path, role)
	results := g.scoreCandidates(searchCtx, features, candidates)

	matches := selectMatches(results, threshold)
	violations := g.validator.Validate(path, src)

	v := &Verdict{
		Decision:   decide(matches, violations),
		Role:       role,
		Threshold:  threshold,
		Matches:    matches,
		Violations: violations,
	}
	g.log.Debug("analysis complete",
		logger.F("path", path),
		logger.F("role", role),
		logger.F("decision", v.Decision),
		logger.F("matches", len(matches)),
		logger.F("violations", len(violations)))
	return v
}

// allowWithNote classifies by path alone so the verdict still reports a
// sensible role and threshold.
func (g *Gate) allowWithNote(path, note string) *Verdict {
	role := g.classifier.Classify(path, &pysrc.FeatureSet{})
	return &Verdict{
		Decision:  Allow,
		Role:      role,
		Threshold: g.cfg.Threshold(string(role)),
		Note:      note,
	}
}

// scoreCandidates reads, parses, and scores every candidate concurrently.
// Candidates that cannot be read or parsed are skipped. When the shared
// deadline fires, tasks that have not started their work bail out and only
// completed results are used.
func (g *Gate) scoreCandidates(ctx context.Context, target *pysrc.FeatureSet, candidates []string) []*similarity.Result {
	if len(candidates) == 0 {
		return nil
	}

	results := make([]*similarity.Result, len(candidates))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range candidates {
		eg.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			content, err := os.ReadFile(path)
			if err != nil {
				g.log.Debug("skipping unreadable candidate",
					logger.F("path", path), logger.F("error", err))
				return nil
			}
			src, err := pysrc.Parse(content)
			if err != nil {
				g.log.Debug("skipping unparseable candidate",
					logger.F("path", path), logger.F("error", err))
				return nil
			}
			r := similarity.Score(target, src.Features(), g.cfg.Weights)
			r.Path = path
			results[i] = r
			return nil
		})
	}
	_ = eg.Wait() // tasks never return errors, skips are logged above

	out := make([]*similarity.Result, 0, len(results))
	for _, r := range results {
		if r != nil {
			out = append(out, r)
		}
	}
	if ctx.Err() != nil {
		g.log.Debug("candidate scoring truncated by deadline",
			logger.F("scored", len(out)), logger.F("candidates", len(candidates)))
	}
	return out
}

// selectMatches keeps results at or above the role threshold, ordered by
// composite descending with path as the tie-break, capped at maxMatches.
func selectMatches(results []*similarity.Result, threshold int) []similarity.Result {
	matched := make([]similarity.Result, 0, len(results))
	for _, r := range results {
		if r.Composite >= threshold {
			matched = append(matched, *r)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Composite != matched[j].Composite {
			return matched[i].Composite > matched[j].Composite
		}
		return matched[i].Path < matched[j].Path
	})
	if len(matched) > maxMatches {
		matched = matched[:maxMatches]
	}
	return matched
}

// decide applies the decision table in priority order. Matches are already
// filtered to the role threshold, so their presence alone means warn.
func decide(matches []similarity.Result, violations []rules.Violation) Decision {
	for _, v := range violations {
		if v.Severity == rules.SeverityError {
			return Block
		}
	}
	for _, m := range matches {
		if m.Composite >= blockScore {
			return Block
		}
	}
	if len(matches) > 0 {
		return Warn
	}
	for _, v := range violations {
		if v.Severity == rules.SeverityWarning {
			return Warn
		}
	}
	return Allow
}

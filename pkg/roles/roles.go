// Package roles classifies source files into architectural roles. The role
// scopes duplicate search to same-purpose files and selects the similarity
// threshold.
package roles

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/simonhull/kestrel/pkg/config"
	"github.com/simonhull/kestrel/pkg/pysrc"
)

// Role is the architectural category of a source file.
type Role string

const (
	Service Role = "service"
	Model   Role = "model"
	API     Role = "api"
	Util    Role = "util"
	Schema  Role = "schema"
	Default Role = "default"
)

// Classifier resolves a file's role. Path segments are the high-confidence
// signal and always win; base-class signals apply only when no configured
// segment matches anywhere in the path.
type Classifier struct {
	segments map[string]Role
	bases    []config.BaseRule
}

// NewClassifier builds a classifier from the role tables. When two roles
// claim the same directory segment, the alphabetically first role keeps it.
func NewClassifier(rc config.Roles) *Classifier {
	roleNames := make([]string, 0, len(rc.Paths))
	for role := range rc.Paths {
		roleNames = append(roleNames, role)
	}
	sort.Strings(roleNames)

	segments := make(map[string]Role)
	for _, role := range roleNames {
		for _, seg := range rc.Paths[role] {
			seg = strings.ToLower(seg)
			if _, taken := segments[seg]; !taken {
				segments[seg] = Role(role)
			}
		}
	}
	return &Classifier{segments: segments, bases: rc.Bases}
}

// Classify is pure and total: it never fails and falls back to Default.
// Directory segments are compared case-insensitively, outermost first; the
// file name itself never matches.
func (c *Classifier) Classify(path string, features *pysrc.FeatureSet) Role {
	norm := strings.ToLower(filepath.ToSlash(path))
	parts := strings.Split(norm, "/")
	for _, seg := range parts[:len(parts)-1] {
		if role, ok := c.segments[seg]; ok {
			return role
		}
	}
	if features != nil {
		for _, rule := range c.bases {
			if containsString(features.BaseClasses, rule.Base) {
				return Role(rule.Role)
			}
		}
	}
	return Default
}

func containsString(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}

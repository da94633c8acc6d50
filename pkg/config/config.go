// Package config loads and validates kestrel.yml: role thresholds, dimension
// weights, resource limits, and the architecture rule tables. Configuration
// is loaded once at startup and read-only during analysis; any invalid value
// is fatal at load, never at analysis time.
package config

import (
	"fmt"
	"math"
	"regexp"
	"time"

	"github.com/simonhull/kestrel/pkg/pysrc"
)

// Config is the full kestrel.yml surface.
type Config struct {
	Thresholds   map[string]int     `yaml:"thresholds" mapstructure:"thresholds"`
	Weights      map[string]float64 `yaml:"weights" mapstructure:"weights"`
	Limits       Limits             `yaml:"limits" mapstructure:"limits"`
	Roles        Roles              `yaml:"roles" mapstructure:"roles"`
	Layers       []Layer            `yaml:"layers" mapstructure:"layers"`
	Singletons   []Singleton        `yaml:"singletons" mapstructure:"singletons"`
	SettingsFile string             `yaml:"settings_file" mapstructure:"settings_file"`
	Exclude      []string           `yaml:"exclude" mapstructure:"exclude"`
}

// Limits bounds one analysis run.
type Limits struct {
	MaxFileSize   int64         `yaml:"max_file_size" mapstructure:"max_file_size"` // bytes
	SearchTimeout time.Duration `yaml:"search_timeout" mapstructure:"search_timeout"`
	MaxCandidates int           `yaml:"max_candidates" mapstructure:"max_candidates"`
}

// MarshalYAML renders the timeout as a duration string ("5s", not
// nanoseconds) so a dumped configuration loads back unchanged.
func (l Limits) MarshalYAML() (any, error) {
	return struct {
		MaxFileSize   int64  `yaml:"max_file_size"`
		SearchTimeout string `yaml:"search_timeout"`
		MaxCandidates int    `yaml:"max_candidates"`
	}{l.MaxFileSize, l.SearchTimeout.String(), l.MaxCandidates}, nil
}

// Roles configures role classification and role-scoped candidate search.
type Roles struct {
	// Paths maps a role to directory segment names that imply it. Matched
	// case-insensitively against each path segment, outermost segment first.
	Paths map[string][]string `yaml:"paths" mapstructure:"paths"`
	// Bases maps framework base-class names to roles, checked in table
	// order when no path segment matched.
	Bases []BaseRule `yaml:"bases" mapstructure:"bases"`
	// Search maps a role to the directories searched for duplicate
	// candidates, relative to the project root.
	Search map[string][]string `yaml:"search" mapstructure:"search"`
}

// BaseRule assigns a role to files declaring a given base class.
type BaseRule struct {
	Base string `yaml:"base" mapstructure:"base"`
	Role string `yaml:"role" mapstructure:"role"`
}

// Layer is one tier of the dependency order, outermost first in
// Config.Layers. A file in an inner layer must not import modules of an
// outer layer.
type Layer struct {
	Name    string   `yaml:"name" mapstructure:"name"`
	Title   string   `yaml:"title" mapstructure:"title"`
	Imports []string `yaml:"imports" mapstructure:"imports"` // module prefixes
	Paths   []string `yaml:"paths" mapstructure:"paths"`     // path prefixes
}

// Singleton names a shared resource and its one designated construction
// site. Pattern is matched against sanitized source text.
type Singleton struct {
	Kind    string `yaml:"kind" mapstructure:"kind"`
	Pattern string `yaml:"pattern" mapstructure:"pattern"`
	File    string `yaml:"file" mapstructure:"file"` // path suffix
}

// knownRoles are the valid role names for thresholds and role tables.
var knownRoles = map[string]bool{
	"service": true,
	"model":   true,
	"api":     true,
	"util":    true,
	"schema":  true,
	"default": true,
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Thresholds: map[string]int{
			"service": 70,
			"model":   60,
			"api":     50,
			"util":    75,
			"schema":  50,
			"default": 65,
		},
		Weights: map[string]float64{
			pysrc.DimClassName:     0.25,
			pysrc.DimMethodNames:   0.20,
			pysrc.DimImports:       0.15,
			pysrc.DimDecorators:    0.10,
			pysrc.DimBaseClasses:   0.15,
			pysrc.DimFunctionNames: 0.15,
		},
		Limits: Limits{
			MaxFileSize:   5 * 1024 * 1024,
			SearchTimeout: 5 * time.Second,
			MaxCandidates: 30,
		},
		Roles: Roles{
			Paths: map[string][]string{
				"service": {"services"},
				"model":   {"models"},
				"api":     {"api", "routes", "route"},
				"schema":  {"schemas"},
				"util":    {"utils", "core"},
			},
			Bases: []BaseRule{
				{Base: "Base", Role: "model"},
				{Base: "DeclarativeBase", Role: "model"},
				{Base: "SQLModel", Role: "model"},
				{Base: "Document", Role: "model"},
				{Base: "BaseModel", Role: "schema"},
				{Base: "Schema", Role: "schema"},
			},
			Search: map[string][]string{
				"service": {"app/services"},
				"model":   {"app/models"},
				"api":     {"app/api"},
				"schema":  {"app/schemas"},
				"util":    {"app/core", "app/utils"},
				"default": {"app"},
			},
		},
		Layers: []Layer{
			{Name: "api", Title: "API", Imports: []string{"app.api"}, Paths: []string{"app/api"}},
			{Name: "service", Title: "Service", Imports: []string{"app.services"}, Paths: []string{"app/services"}},
			{Name: "core", Title: "Core/Common", Imports: []string{"app.core", "app.common", "app.services.common"}, Paths: []string{"app/core", "app/common", "app/services/common"}},
			{Name: "db", Title: "DB/Models", Imports: []string{"app.db", "app.models"}, Paths: []string{"app/db", "app/models"}},
		},
		Singletons: []Singleton{
			{Kind: "Redis", Pattern: `Redis\([^)]*host`, File: "app/services/common/redis.py"},
			{Kind: "Database Engine", Pattern: `create_async_engine\(`, File: "app/db/base.py"},
		},
		SettingsFile: "app/core/config.py",
		Exclude: []string{
			"venv", "env", ".venv", "__pycache__", "site-packages",
			".claude", "migrations", "node_modules", ".git", "tests",
		},
	}
}

// Validate checks the loaded configuration. Any problem is fatal at startup.
func (c *Config) Validate() error {
	var errs ConfigErrors

	sum := 0.0
	for _, dim := range pysrc.Dimensions {
		w, ok := c.Weights[dim]
		if !ok {
			errs = append(errs, ConfigError{
				Field:   "weights." + dim,
				Message: "missing weight",
			})
			continue
		}
		if w < 0 || w > 1 {
			errs = append(errs, ConfigError{
				Field:   "weights." + dim,
				Message: fmt.Sprintf("weight %v outside [0,1]", w),
			})
		}
		sum += w
	}
	for dim := range c.Weights {
		if !isDimension(dim) {
			errs = append(errs, ConfigError{
				Field:   "weights." + dim,
				Message: "unknown dimension",
			})
		}
	}
	if math.Abs(sum-1.0) > 1e-9 {
		errs = append(errs, ConfigError{
			Field:   "weights",
			Message: fmt.Sprintf("weights sum to %v, must sum to 1.0", sum),
		})
	}

	for role, threshold := range c.Thresholds {
		if !knownRoles[role] {
			errs = append(errs, ConfigError{
				Field:   "thresholds." + role,
				Message: "unknown role",
			})
		}
		if threshold < 0 || threshold > 100 {
			errs = append(errs, ConfigError{
				Field:   "thresholds." + role,
				Message: fmt.Sprintf("threshold %d outside [0,100]", threshold),
			})
		}
	}
	if _, ok := c.Thresholds["default"]; !ok {
		errs = append(errs, ConfigError{
			Field:   "thresholds.default",
			Message: "missing default threshold",
		})
	}

	if c.Limits.MaxFileSize <= 0 {
		errs = append(errs, ConfigError{Field: "limits.max_file_size", Message: "must be positive"})
	}
	if c.Limits.SearchTimeout <= 0 {
		errs = append(errs, ConfigError{Field: "limits.search_timeout", Message: "must be positive"})
	}
	if c.Limits.MaxCandidates <= 0 {
		errs = append(errs, ConfigError{Field: "limits.max_candidates", Message: "must be positive"})
	}

	for role := range c.Roles.Paths {
		if !knownRoles[role] {
			errs = append(errs, ConfigError{Field: "roles.paths." + role, Message: "unknown role"})
		}
	}
	for role := range c.Roles.Search {
		if !knownRoles[role] {
			errs = append(errs, ConfigError{Field: "roles.search." + role, Message: "unknown role"})
		}
	}
	for i, rule := range c.Roles.Bases {
		if rule.Base == "" {
			errs = append(errs, ConfigError{
				Field:   fmt.Sprintf("roles.bases[%d].base", i),
				Message: "base class name is required",
			})
		}
		if !knownRoles[rule.Role] {
			errs = append(errs, ConfigError{
				Field:   fmt.Sprintf("roles.bases[%d].role", i),
				Message: "unknown role",
			})
		}
	}

	if len(c.Layers) == 0 {
		errs = append(errs, ConfigError{Field: "layers", Message: "at least one layer is required"})
	}
	seen := make(map[string]bool)
	for i, layer := range c.Layers {
		field := fmt.Sprintf("layers[%d]", i)
		if layer.Name == "" {
			errs = append(errs, ConfigError{Field: field + ".name", Message: "name is required"})
		} else if seen[layer.Name] {
			errs = append(errs, ConfigError{Field: field + ".name", Message: "duplicate layer name " + layer.Name})
		}
		seen[layer.Name] = true
		if len(layer.Imports) == 0 && len(layer.Paths) == 0 {
			errs = append(errs, ConfigError{
				Field:   field,
				Message: "layer needs at least one import or path prefix",
			})
		}
	}

	for i, s := range c.Singletons {
		field := fmt.Sprintf("singletons[%d]", i)
		if s.Kind == "" {
			errs = append(errs, ConfigError{Field: field + ".kind", Message: "kind is required"})
		}
		if s.File == "" {
			errs = append(errs, ConfigError{Field: field + ".file", Message: "designated file is required"})
		}
		if _, err := regexp.Compile(s.Pattern); s.Pattern == "" || err != nil {
			errs = append(errs, ConfigError{
				Field:   field + ".pattern",
				Message: "invalid pattern",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Threshold returns the composite threshold for a role, falling back to the
// default threshold.
func (c *Config) Threshold(role string) int {
	if t, ok := c.Thresholds[role]; ok {
		return t
	}
	return c.Thresholds["default"]
}

func isDimension(id string) bool {
	for _, dim := range pysrc.Dimensions {
		if dim == id {
			return true
		}
	}
	return false
}

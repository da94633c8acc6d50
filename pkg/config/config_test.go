package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestThresholdFallback(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 70, cfg.Threshold("service"))
	assert.Equal(t, 50, cfg.Threshold("schema"))
	assert.Equal(t, 65, cfg.Threshold("default"))
	assert.Equal(t, 65, cfg.Threshold("nonsense"))
}

func TestValidateWeightSum(t *testing.T) {
	cfg := Default()
	cfg.Weights["class_name"] = 0.5

	err := cfg.Validate()
	require.Error(t, err)

	var errs ConfigErrors
	require.ErrorAs(t, err, &errs)
	assert.Contains(t, errs.Error(), "must sum to 1.0")
}

func TestValidateMissingWeight(t *testing.T) {
	cfg := Default()
	delete(cfg.Weights, "decorators")

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "weights.decorators")
}

func TestValidateUnknownDimension(t *testing.T) {
	cfg := Default()
	cfg.Weights["line_count"] = 0.0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown dimension")
}

func TestValidateLimits(t *testing.T) {
	cfg := Default()
	cfg.Limits.MaxCandidates = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "limits.max_candidates")
}

func TestValidateUnknownRole(t *testing.T) {
	cfg := Default()
	cfg.Thresholds["controller"] = 50

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "thresholds.controller")
}

func TestValidateMissingDefaultThreshold(t *testing.T) {
	cfg := Default()
	delete(cfg.Thresholds, "default")

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing default threshold")
}

func TestValidateLayers(t *testing.T) {
	cfg := Default()
	cfg.Layers = nil
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one layer")

	cfg = Default()
	cfg.Layers = append(cfg.Layers, Layer{Name: "api", Imports: []string{"x"}})
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate layer name")
}

func TestValidateSingletonPattern(t *testing.T) {
	cfg := Default()
	cfg.Singletons[0].Pattern = `Redis\(`
	require.NoError(t, cfg.Validate())

	cfg.Singletons[0].Pattern = `Redis\(((`
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid pattern")
}

func TestValidateBaseRules(t *testing.T) {
	cfg := Default()
	cfg.Roles.Bases = append(cfg.Roles.Bases, BaseRule{Base: "", Role: "model"})

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "base class name is required")
}

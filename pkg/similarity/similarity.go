// Package similarity computes structural similarity between two Python
// files as a weighted composite of six per-dimension Jaccard scores.
package similarity

import (
	"math"

	"github.com/simonhull/kestrel/pkg/pysrc"
)

// Result is the similarity of one candidate file against the target.
type Result struct {
	Path       string             `json:"path"`       // candidate path, set by the caller
	Composite  int                `json:"composite"`  // weighted score in [0,100]
	Dimensions map[string]float64 `json:"dimensions"` // per-dimension Jaccard in [0,1]
}

// Jaccard returns |A∩B| / |A∪B|. It is 0 when either set is empty, so a
// dimension absent from both files contributes no similarity.
func Jaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	setA := make(map[string]bool, len(a))
	for _, v := range a {
		setA[v] = true
	}
	setB := make(map[string]bool, len(b))
	for _, v := range b {
		setB[v] = true
	}
	intersection := 0
	for v := range setB {
		if setA[v] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

// Score compares two feature sets under the configured weights. It returns
// a result for any input pair; deciding whether the score matters is the
// caller's job.
func Score(target, candidate *pysrc.FeatureSet, weights map[string]float64) *Result {
	dims := make(map[string]float64, len(pysrc.Dimensions))
	total := 0.0
	for _, dim := range pysrc.Dimensions {
		j := Jaccard(target.Dimension(dim), candidate.Dimension(dim))
		dims[dim] = j
		total += j * weights[dim]
	}
	composite := int(math.Round(total * 100))
	if composite < 0 {
		composite = 0
	}
	if composite > 100 {
		composite = 100
	}
	return &Result{Composite: composite, Dimensions: dims}
}

package gate

import (
	"fmt"
	"strings"

	"github.com/simonhull/kestrel/pkg/pysrc"
	"github.com/simonhull/kestrel/pkg/rules"
)

// Report renders the verdict for humans: a similarity section with
// per-dimension breakdowns, then rule violations. A verdict with nothing
// to say renders as the empty string, so allow stays silent.
func (v *Verdict) Report() string {
	if len(v.Matches) == 0 && len(v.Violations) == 0 {
		return ""
	}

	lines := []string{"🔍 Intelligent Pre-Write Analysis\n", strings.Repeat("═", 60)}

	if len(v.Matches) > 0 {
		lines = append(lines, fmt.Sprintf("\n📊 Code Similarity Analysis (Role: %s)", v.Role))
		for i, m := range v.Matches {
			lines = append(lines,
				fmt.Sprintf("\n%d. %s Similarity: %d/100 (Threshold: %d)",
					i+1, similarityLevel(m.Composite), m.Composite, v.Threshold),
				"   Similar to: "+m.Path,
				"   Breakdown:")
			for _, dim := range pysrc.Dimensions {
				if val := m.Dimensions[dim]; val > 0 {
					lines = append(lines, fmt.Sprintf("     - %s: %.0f%%", dim, val*100))
				}
			}
		}
		lines = append(lines,
			"\n💡 Recommendations:",
			"   1. Review existing code - Can you extend it instead?",
			"   2. If functionality differs, consider renaming for clarity",
			"   3. Consult @architecture-advisor if unsure")
	}

	if len(v.Violations) > 0 {
		lines = append(lines, "\n\n🚨 Architecture Rule Violations:")
		for _, viol := range v.Violations {
			icon := "❌"
			if viol.Severity == rules.SeverityWarning {
				icon = "⚠️"
			}
			lines = append(lines, fmt.Sprintf("\n%s %s", icon, viol.Title), "   "+viol.Message)
			if viol.Details != "" {
				lines = append(lines, "   Details: "+viol.Details)
			}
		}
	}

	return strings.Join(lines, "\n")
}

func similarityLevel(score int) string {
	switch {
	case score >= 80:
		return "🚨 Very High"
	case score >= 70:
		return "⚠️  High"
	default:
		return "ℹ️  Moderate"
	}
}

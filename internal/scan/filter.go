package scan

import (
	"github.com/rvalk/depscan/internal/models"
	"github.com/rvalk/depscan/internal/policy"
)

// FilterDeclarations drops every declaration the override policy marks
// excluded and reports how many were removed. A nil policy keeps everything.
// Filtering is idempotent: running it twice with the same policy removes
// nothing further.
func FilterDeclarations(declarations []models.PackageDeclaration, overrides *policy.OverridePolicy) ([]models.PackageDeclaration, int) {
	if overrides == nil {
		return declarations, 0
	}

	kept := make([]models.PackageDeclaration, 0, len(declarations))
	removed := 0
	for _, decl := range declarations {
		if overrides.IsExcluded(decl.Name) {
			removed++
			continue
		}
		kept = append(kept, decl)
	}
	return kept, removed
}

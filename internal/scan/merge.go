package scan

import (
	"github.com/rvalk/depscan/internal/extract"
	"github.com/rvalk/depscan/internal/models"
)

// MergeCentralVersions rewrites the version of every declaration whose
// package name is pinned centrally. The input is never mutated; order and
// count are preserved exactly — central management only changes versions,
// it never adds or removes declarations.
func MergeCentralVersions(declarations []models.PackageDeclaration, central extract.CentralVersions) []models.PackageDeclaration {
	merged := make([]models.PackageDeclaration, 0, len(declarations))
	for _, decl := range declarations {
		if version, ok := central.VersionFor(decl.Name); ok {
			merged = append(merged, decl.WithVersion(version))
		} else {
			merged = append(merged, decl)
		}
	}
	return merged
}

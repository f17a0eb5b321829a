package scan

import (
	"github.com/rvalk/depscan/internal/models"
	"github.com/rvalk/depscan/internal/policy"
)

// repoResult is one repository's contribution, produced by a single worker
// and folded into the run accumulator in enumeration order.
type repoResult struct {
	repository   string
	projectFiles int
	declarations []models.PackageDeclaration
	overrides    *policy.OverridePolicy
	diagnostics  []Diagnostic
}

// accumulator is the run-scoped state owned by one Scan call. Workers never
// touch it directly; the fold under Scan's control is the only writer, so no
// locking is needed even when repositories are processed concurrently.
type accumulator struct {
	projectFiles int
	declarations []models.PackageDeclaration
	policies     map[string]*policy.OverridePolicy
	diagnostics  []Diagnostic
}

func newAccumulator() *accumulator {
	return &accumulator{
		policies: make(map[string]*policy.OverridePolicy),
	}
}

func (a *accumulator) fold(r *repoResult) {
	if r == nil {
		return
	}
	a.projectFiles += r.projectFiles
	a.declarations = append(a.declarations, r.declarations...)
	a.diagnostics = append(a.diagnostics, r.diagnostics...)
	if r.overrides != nil {
		a.policies[r.repository] = r.overrides
	}
}

// ScanResult is the immutable outcome of one scan run.
type ScanResult struct {
	// Declarations is the merged, filtered, optionally enriched inventory.
	Declarations []models.PackageDeclaration
	// Policies maps repository name to the override policy found there.
	Policies map[string]*policy.OverridePolicy
	// Pinned is the configuration-supplied pin lookup; nil values mean
	// "pin to the version currently in use".
	Pinned map[string]*string
	// Diagnostics lists every per-repository and per-file skip or failure.
	Diagnostics []Diagnostic
	// ProjectFileCount is the total number of project files seen.
	ProjectFileCount int
}

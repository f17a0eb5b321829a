package report

import (
	"github.com/sirupsen/logrus"

	"github.com/rvalk/depscan/internal/registry"
	"github.com/rvalk/depscan/internal/scan"
)

// LogSummary prints the end-of-run totals through the standard logger
func LogSummary(result *scan.ScanResult, resolver registry.Resolver) {
	outdated := 0
	deprecated := 0
	for _, decl := range result.Declarations {
		if decl.IsOutdated() {
			outdated++
		}
		if decl.Metadata != nil && decl.Metadata.Deprecated {
			deprecated++
		}
	}

	logrus.Infof("Inventory: %d declarations across %d project files", len(result.Declarations), result.ProjectFileCount)
	if len(result.Policies) > 0 {
		logrus.Infof("Override policies found in %d repositories", len(result.Policies))
	}
	if resolver != nil {
		total, found, notFound := resolver.GetCacheStats()
		logrus.Infof("Registry: %d lookups, %d found, %d not found", total, found, notFound)
		logrus.Infof("Registry: %d outdated, %d deprecated", outdated, deprecated)
	}

	failures := 0
	for _, diag := range result.Diagnostics {
		if diag.Kind == scan.OutcomeFailed {
			failures++
		}
	}
	if failures > 0 {
		logrus.Warnf("%d scopes failed and contributed nothing; rerun with --verbose for details", failures)
	}
}

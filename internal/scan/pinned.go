package scan

import (
	"strings"

	"github.com/rvalk/depscan/internal/models"
)

// BuildPinnedLookup folds configuration-supplied pins into a lookup keyed by
// lowercased package name. A nil version means "pin to whatever version is
// currently in use". Duplicate names are not an error: the later entry wins,
// plain map-overwrite semantics.
func BuildPinnedLookup(pins []models.PinnedPackage) map[string]*string {
	lookup := make(map[string]*string, len(pins))
	for _, pin := range pins {
		name := strings.ToLower(strings.TrimSpace(pin.Name))
		if name == "" {
			continue
		}
		lookup[name] = pin.Version
	}
	return lookup
}

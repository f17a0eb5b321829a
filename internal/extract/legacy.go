package extract

import (
	"encoding/xml"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/rvalk/depscan/internal/models"
	"github.com/rvalk/depscan/internal/policy"
)

type legacyLockXML struct {
	Packages []struct {
		ID      string `xml:"id,attr"`
		Version string `xml:"version,attr"`
	} `xml:"package"`
}

// ExtractLegacy parses one packages.config document into declarations owned
// by the co-located project file, dropping excluded names.
func ExtractLegacy(content, repoName, projectPath, projectRef string, exclusions *policy.ExclusionPolicy) ([]models.PackageDeclaration, error) {
	var lock legacyLockXML
	if err := xml.Unmarshal([]byte(content), &lock); err != nil {
		return nil, fmt.Errorf("invalid legacy lock file: %w", err)
	}

	var declarations []models.PackageDeclaration
	for _, pkg := range lock.Packages {
		name := strings.TrimSpace(pkg.ID)
		if name == "" {
			continue
		}
		if exclusions.IsExcluded(name) {
			logrus.Debugf("Excluding %s from legacy declarations of %s", name, projectPath)
			continue
		}
		declarations = append(declarations, models.PackageDeclaration{
			Name:        name,
			Version:     strings.TrimSpace(pkg.Version),
			Repository:  repoName,
			ProjectPath: projectPath,
			ProjectRef:  projectRef,
		})
	}
	return declarations, nil
}

// FindColocatedProjectFile returns the project file residing in the same
// directory as a legacy lock file, or empty string when none does. When
// several candidates share the directory the lexicographically smallest path
// wins, so the choice is deterministic.
func FindColocatedProjectFile(legacyPath string, candidatePaths []string) string {
	legacyDir := path.Dir(legacyPath)

	var matches []string
	for _, candidate := range candidatePaths {
		if path.Dir(candidate) == legacyDir {
			matches = append(matches, candidate)
		}
	}
	if len(matches) == 0 {
		return ""
	}
	sort.Strings(matches)
	return matches[0]
}

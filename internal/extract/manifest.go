// Package extract parses dependency-declaring files into package
// declarations: SDK-style project manifests, the central version-management
// manifest, and legacy per-project lock files.
package extract

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/rvalk/depscan/internal/models"
	"github.com/rvalk/depscan/internal/policy"
)

type manifestXML struct {
	ItemGroups []struct {
		PackageReferences []packageReferenceXML `xml:"PackageReference"`
	} `xml:"ItemGroup"`
}

type packageReferenceXML struct {
	Include        string `xml:"Include,attr"`
	VersionAttr    string `xml:"Version,attr"`
	VersionElement string `xml:"Version"`
}

// ExtractManifest parses one project manifest's content into declarations,
// dropping names the exclusion policy marks uninteresting. The version may be
// declared as an attribute or a child element; it may be absent entirely when
// versions are managed centrally.
func ExtractManifest(content, repoName, filePath, projectRef string, exclusions *policy.ExclusionPolicy) ([]models.PackageDeclaration, error) {
	var manifest manifestXML
	if err := xml.Unmarshal([]byte(content), &manifest); err != nil {
		return nil, fmt.Errorf("invalid project manifest %s: %w", filePath, err)
	}

	var declarations []models.PackageDeclaration
	seen := make(map[string]bool)
	for _, group := range manifest.ItemGroups {
		for _, ref := range group.PackageReferences {
			name := strings.TrimSpace(ref.Include)
			if name == "" {
				continue
			}
			if exclusions.IsExcluded(name) {
				logrus.Debugf("Excluding %s from %s", name, filePath)
				continue
			}
			// Conditioned ItemGroups can re-declare a package; the first
			// declaration wins so names stay unique per project file.
			if seen[strings.ToLower(name)] {
				logrus.Debugf("Duplicate declaration of %s in %s", name, filePath)
				continue
			}
			seen[strings.ToLower(name)] = true
			version := strings.TrimSpace(ref.VersionAttr)
			if version == "" {
				version = strings.TrimSpace(ref.VersionElement)
			}
			declarations = append(declarations, models.PackageDeclaration{
				Name:        name,
				Version:     version,
				Repository:  repoName,
				ProjectPath: filePath,
				ProjectRef:  projectRef,
			})
		}
	}
	return declarations, nil
}

package extract

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// CentralVersions is the parsed central version-management manifest: whether
// central management is active, and the package name → pinned version map.
// Discarded after the per-repository merge.
type CentralVersions struct {
	Managed  bool
	Versions map[string]string
}

// VersionFor looks up a pinned version by package name, case-insensitively.
func (c CentralVersions) VersionFor(name string) (string, bool) {
	version, ok := c.Versions[strings.ToLower(name)]
	return version, ok
}

type centralPropsXML struct {
	PropertyGroups []struct {
		ManageCentrally string `xml:"ManagePackageVersionsCentrally"`
	} `xml:"PropertyGroup"`
	ItemGroups []struct {
		PackageVersions []struct {
			Include string `xml:"Include,attr"`
			Version string `xml:"Version,attr"`
		} `xml:"PackageVersion"`
	} `xml:"ItemGroup"`
}

// ParseCentralVersions parses a Directory.Packages.props document. A document
// that does not opt in with ManagePackageVersionsCentrally=true yields
// Managed=false and an empty map.
func ParseCentralVersions(content string) (CentralVersions, error) {
	result := CentralVersions{Versions: make(map[string]string)}

	var props centralPropsXML
	if err := xml.Unmarshal([]byte(content), &props); err != nil {
		return result, fmt.Errorf("invalid central version manifest: %w", err)
	}

	for _, group := range props.PropertyGroups {
		if strings.EqualFold(strings.TrimSpace(group.ManageCentrally), "true") {
			result.Managed = true
		}
	}
	if !result.Managed {
		return result, nil
	}

	for _, group := range props.ItemGroups {
		for _, pv := range group.PackageVersions {
			name := strings.TrimSpace(pv.Include)
			version := strings.TrimSpace(pv.Version)
			if name == "" || version == "" {
				continue
			}
			result.Versions[strings.ToLower(name)] = version
		}
	}
	return result, nil
}

package models

import "strings"

// Repository identifies one source-control repository visited during a scan.
type Repository struct {
	Name    string
	Project string // parent project/collection, empty for flat hosts
}

// ProjectFile is a dependency-declaring manifest file inside a repository.
type ProjectFile struct {
	Repository string
	Path       string
}

// ManagementFileKind classifies dependency-management files by filename.
type ManagementFileKind int

const (
	ManagementUnknown ManagementFileKind = iota
	ManagementCentralVersions
	ManagementLegacyLock
)

// String returns the string representation of ManagementFileKind
func (k ManagementFileKind) String() string {
	switch k {
	case ManagementCentralVersions:
		return "central-versions"
	case ManagementLegacyLock:
		return "legacy-lock"
	default:
		return "unknown"
	}
}

// ManagementFile is a central-version manifest or legacy lock file.
type ManagementFile struct {
	Repository string
	Path       string
	Kind       ManagementFileKind
}

// PackageMetadata is registry-sourced enrichment attached to a declaration.
type PackageMetadata struct {
	LatestVersion string
	Listed        bool
	Deprecated    bool
	ProjectURL    string
}

// PackageDeclaration is one (package, version, project file, repository)
// tuple extracted from a manifest or legacy lock file. Values are treated as
// immutable: version rewrites and metadata attachment go through WithVersion
// and WithMetadata, which return copies.
type PackageDeclaration struct {
	Name        string
	Version     string // empty when the manifest omits it (centrally managed)
	Repository  string
	ProjectPath string
	ProjectRef  string // owning project/solution display name

	Metadata *PackageMetadata
}

// Key returns the case-insensitive dedup identity (project path, package name).
func (d PackageDeclaration) Key() string {
	return strings.ToLower(d.ProjectPath) + "|" + strings.ToLower(d.Name)
}

// WithVersion returns a copy of the declaration with the version replaced.
func (d PackageDeclaration) WithVersion(version string) PackageDeclaration {
	d.Version = version
	return d
}

// WithMetadata returns a copy of the declaration carrying registry metadata.
func (d PackageDeclaration) WithMetadata(meta PackageMetadata) PackageDeclaration {
	m := meta
	d.Metadata = &m
	return d
}

// IsOutdated reports whether registry metadata shows a newer version than the
// declared one. Plain string comparison is intentional: it only feeds the
// console summary, not upgrade decisions.
func (d PackageDeclaration) IsOutdated() bool {
	return d.Metadata != nil && d.Metadata.LatestVersion != "" &&
		d.Version != "" && d.Metadata.LatestVersion != d.Version
}

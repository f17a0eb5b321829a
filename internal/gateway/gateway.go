package gateway

import (
	"context"
	"path"
	"strings"

	"github.com/rvalk/depscan/internal/models"
)

// Project-file extensions recognized as dependency-declaring manifests.
var manifestExtensions = map[string]bool{
	".csproj": true,
	".fsproj": true,
	".vbproj": true,
	".props":  true,
}

const (
	centralVersionsFileName = "directory.packages.props"
	legacyLockFileName      = "packages.config"
)

// Gateway lists repositories and their dependency-declaring files, and
// fetches file content. FetchContent returns empty content for missing
// files rather than an error.
type Gateway interface {
	ListRepositories(ctx context.Context) ([]models.Repository, error)
	ListProjectFiles(ctx context.Context, repo models.Repository) ([]models.ProjectFile, error)
	ListManagementFiles(ctx context.Context, repo models.Repository, includeLegacy bool) ([]models.ManagementFile, error)
	FetchContent(ctx context.Context, repo models.Repository, filePath string) (string, error)
}

// ClassifyManagementFile reports the management-file kind for a path, by
// case-insensitive base-name match.
func ClassifyManagementFile(filePath string) models.ManagementFileKind {
	switch strings.ToLower(path.Base(filePath)) {
	case centralVersionsFileName:
		return models.ManagementCentralVersions
	case legacyLockFileName:
		return models.ManagementLegacyLock
	default:
		return models.ManagementUnknown
	}
}

// IsProjectFile reports whether a path looks like a dependency-declaring
// manifest. Directory.Packages.props is a management file, not a project file,
// even though it shares the .props extension.
func IsProjectFile(filePath string) bool {
	if ClassifyManagementFile(filePath) != models.ManagementUnknown {
		return false
	}
	return manifestExtensions[strings.ToLower(path.Ext(filePath))]
}

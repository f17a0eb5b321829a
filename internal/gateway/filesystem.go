package gateway

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/viant/afs"
	"github.com/viant/afs/storage"

	"github.com/rvalk/depscan/internal/models"
)

// FilesystemGateway treats each immediate subdirectory of a workspace root as
// one repository. The workspace may be a plain path or any afs-supported URL.
type FilesystemGateway struct {
	fs        afs.Service
	workspace string
}

// NewFilesystemGateway creates a gateway over a local or afs-addressable workspace
func NewFilesystemGateway(workspace string) *FilesystemGateway {
	return &FilesystemGateway{
		fs:        afs.New(),
		workspace: strings.TrimRight(workspace, "/"),
	}
}

// ListRepositories returns one repository per workspace subdirectory, sorted by name
func (g *FilesystemGateway) ListRepositories(ctx context.Context) ([]models.Repository, error) {
	objects, err := g.fs.List(ctx, g.workspace)
	if err != nil {
		return nil, fmt.Errorf("failed to list workspace %s: %w", g.workspace, err)
	}

	var repos []models.Repository
	for _, object := range objects {
		if !object.IsDir() || g.isWorkspaceRoot(object) {
			continue
		}
		if strings.HasPrefix(object.Name(), ".") {
			continue
		}
		repos = append(repos, models.Repository{Name: object.Name()})
	}

	sort.Slice(repos, func(i, j int) bool { return repos[i].Name < repos[j].Name })
	logrus.Debugf("Workspace %s holds %d repositories", g.workspace, len(repos))
	return repos, nil
}

// ListProjectFiles walks one repository directory for manifest files
func (g *FilesystemGateway) ListProjectFiles(ctx context.Context, repo models.Repository) ([]models.ProjectFile, error) {
	paths, err := g.walkMatching(ctx, repo, IsProjectFile)
	if err != nil {
		return nil, err
	}

	files := make([]models.ProjectFile, 0, len(paths))
	for _, p := range paths {
		files = append(files, models.ProjectFile{Repository: repo.Name, Path: p})
	}
	return files, nil
}

// ListManagementFiles walks one repository directory for central-version
// manifests, plus legacy lock files when includeLegacy is set.
func (g *FilesystemGateway) ListManagementFiles(ctx context.Context, repo models.Repository, includeLegacy bool) ([]models.ManagementFile, error) {
	paths, err := g.walkMatching(ctx, repo, func(p string) bool {
		kind := ClassifyManagementFile(p)
		if kind == models.ManagementLegacyLock {
			return includeLegacy
		}
		return kind == models.ManagementCentralVersions
	})
	if err != nil {
		return nil, err
	}

	files := make([]models.ManagementFile, 0, len(paths))
	for _, p := range paths {
		files = append(files, models.ManagementFile{
			Repository: repo.Name,
			Path:       p,
			Kind:       ClassifyManagementFile(p),
		})
	}
	return files, nil
}

// FetchContent downloads one file; a missing file yields empty content
func (g *FilesystemGateway) FetchContent(ctx context.Context, repo models.Repository, filePath string) (string, error) {
	location := path.Join(g.workspace, repo.Name, strings.TrimLeft(filePath, "/"))
	if ok, _ := g.fs.Exists(ctx, location); !ok {
		return "", nil
	}
	content, err := g.fs.DownloadWithURL(ctx, location)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", location, err)
	}
	return string(content), nil
}

func (g *FilesystemGateway) walkMatching(ctx context.Context, repo models.Repository, match func(string) bool) ([]string, error) {
	root := path.Join(g.workspace, repo.Name)

	var paths []string
	err := g.fs.Walk(ctx, root, func(ctx context.Context, baseURL string, parent string, info os.FileInfo, reader io.Reader) (bool, error) {
		if info.IsDir() {
			return true, nil
		}
		rel := "/" + path.Join(parent, info.Name())
		if match(rel) {
			paths = append(paths, rel)
		}
		return true, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}

	sort.Strings(paths)
	return paths, nil
}

// List includes the listed directory itself; skip it by name.
func (g *FilesystemGateway) isWorkspaceRoot(object storage.Object) bool {
	name := strings.TrimRight(object.Name(), "/")
	return name == "" || name == path.Base(g.workspace)
}

package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rvalk/depscan/internal/models"
)

const apiVersion = "7.1"

// AzureDevOpsGateway lists repositories and files through the Azure DevOps
// git REST API, authenticating with a personal access token.
type AzureDevOpsGateway struct {
	client       *http.Client
	baseURL      string
	organization string
	project      string
	token        string
}

// NewAzureDevOpsGateway creates a gateway for one organization/project
func NewAzureDevOpsGateway(organization, project, token string) *AzureDevOpsGateway {
	return &AzureDevOpsGateway{
		client:       &http.Client{Timeout: 30 * time.Second},
		baseURL:      "https://dev.azure.com",
		organization: organization,
		project:      project,
		token:        token,
	}
}

type repositoryListResponse struct {
	Value []struct {
		Name    string `json:"name"`
		Project struct {
			Name string `json:"name"`
		} `json:"project"`
	} `json:"value"`
}

type itemListResponse struct {
	Value []struct {
		Path     string `json:"path"`
		IsFolder bool   `json:"isFolder"`
	} `json:"value"`
}

// ListRepositories returns every git repository in the project, sorted by name
func (g *AzureDevOpsGateway) ListRepositories(ctx context.Context) ([]models.Repository, error) {
	endpoint := fmt.Sprintf("%s/%s/%s/_apis/git/repositories?api-version=%s",
		g.baseURL, url.PathEscape(g.organization), url.PathEscape(g.project), apiVersion)

	var parsed repositoryListResponse
	if err := g.getJSON(ctx, endpoint, &parsed); err != nil {
		return nil, fmt.Errorf("failed to list repositories: %w", err)
	}

	repos := make([]models.Repository, 0, len(parsed.Value))
	for _, repo := range parsed.Value {
		repos = append(repos, models.Repository{Name: repo.Name, Project: repo.Project.Name})
	}
	sort.Slice(repos, func(i, j int) bool { return repos[i].Name < repos[j].Name })
	return repos, nil
}

// ListProjectFiles returns every manifest file in the repository's default branch
func (g *AzureDevOpsGateway) ListProjectFiles(ctx context.Context, repo models.Repository) ([]models.ProjectFile, error) {
	paths, err := g.listItems(ctx, repo)
	if err != nil {
		return nil, err
	}

	var files []models.ProjectFile
	for _, p := range paths {
		if IsProjectFile(p) {
			files = append(files, models.ProjectFile{Repository: repo.Name, Path: p})
		}
	}
	return files, nil
}

// ListManagementFiles returns central-version manifests, plus legacy lock
// files when includeLegacy is set.
func (g *AzureDevOpsGateway) ListManagementFiles(ctx context.Context, repo models.Repository, includeLegacy bool) ([]models.ManagementFile, error) {
	paths, err := g.listItems(ctx, repo)
	if err != nil {
		return nil, err
	}

	var files []models.ManagementFile
	for _, p := range paths {
		kind := ClassifyManagementFile(p)
		if kind == models.ManagementUnknown {
			continue
		}
		if kind == models.ManagementLegacyLock && !includeLegacy {
			continue
		}
		files = append(files, models.ManagementFile{Repository: repo.Name, Path: p, Kind: kind})
	}
	return files, nil
}

// FetchContent downloads one file from the default branch. A 404 yields empty
// content, not an error.
func (g *AzureDevOpsGateway) FetchContent(ctx context.Context, repo models.Repository, filePath string) (string, error) {
	endpoint := fmt.Sprintf("%s/%s/%s/_apis/git/repositories/%s/items?path=%s&includeContent=true&api-version=%s",
		g.baseURL, url.PathEscape(g.organization), url.PathEscape(g.project),
		url.PathEscape(repo.Name), url.QueryEscape(filePath), apiVersion)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	req.SetBasicAuth("", g.token)
	req.Header.Set("Accept", "text/plain")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", filePath, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		logrus.Debugf("File %s not found in %s", filePath, repo.Name)
		return "", nil
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: unexpected status %d", filePath, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (g *AzureDevOpsGateway) listItems(ctx context.Context, repo models.Repository) ([]string, error) {
	endpoint := fmt.Sprintf("%s/%s/%s/_apis/git/repositories/%s/items?recursionLevel=Full&api-version=%s",
		g.baseURL, url.PathEscape(g.organization), url.PathEscape(g.project),
		url.PathEscape(repo.Name), apiVersion)

	var parsed itemListResponse
	if err := g.getJSON(ctx, endpoint, &parsed); err != nil {
		return nil, fmt.Errorf("failed to list items in %s: %w", repo.Name, err)
	}

	var paths []string
	for _, item := range parsed.Value {
		if !item.IsFolder {
			paths = append(paths, item.Path)
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func (g *AzureDevOpsGateway) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.SetBasicAuth("", g.token)

	resp, err := g.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, endpoint)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

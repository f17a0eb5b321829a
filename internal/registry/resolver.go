// Package registry resolves package metadata from a NuGet v3 registration
// index, caching lookups for the lifetime of the resolver.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"

	"github.com/rvalk/depscan/internal/models"
)

// DefaultRegistryURL is the public nuget.org registration index base.
const DefaultRegistryURL = "https://api.nuget.org/v3/registration5-semver1"

const cacheSize = 4096

// Resolver returns registry metadata for a set of package names.
type Resolver interface {
	Resolve(ctx context.Context, names []string, declarations []models.PackageDeclaration) (map[string]models.PackageMetadata, error)
	GetCacheStats() (total, found, notFound int)
}

// NuGetResolver implements Resolver against a NuGet v3 registration index
type NuGetResolver struct {
	client  *http.Client
	baseURL string
	cache   *lru.Cache[string, models.PackageMetadata]

	total    int
	found    int
	notFound int
}

// NewNuGetResolver creates a resolver for one registration index base URL
func NewNuGetResolver(baseURL string) (*NuGetResolver, error) {
	if baseURL == "" {
		baseURL = DefaultRegistryURL
	}
	cache, err := lru.New[string, models.PackageMetadata](cacheSize)
	if err != nil {
		return nil, err
	}
	return &NuGetResolver{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
		cache:   cache,
	}, nil
}

type catalogEntry struct {
	ID          string `json:"id"`
	Version     string `json:"version"`
	Listed      *bool  `json:"listed"`
	ProjectURL  string `json:"projectUrl"`
	Deprecation *struct {
		Reasons []string `json:"reasons"`
	} `json:"deprecation"`
}

type registrationPage struct {
	RefURL string `json:"@id"`
	Items  []struct {
		CatalogEntry catalogEntry `json:"catalogEntry"`
	} `json:"items"`
}

type registrationIndex struct {
	Items []registrationPage `json:"items"`
}

// Resolve fetches metadata for every distinct name, one registration-index
// request per uncached name. Names the registry does not know are simply
// absent from the result map. The declaration list is only used for usage
// logging; resolution never mutates it.
func (r *NuGetResolver) Resolve(ctx context.Context, names []string, declarations []models.PackageDeclaration) (map[string]models.PackageMetadata, error) {
	usage := make(map[string]int, len(names))
	for _, decl := range declarations {
		usage[strings.ToLower(decl.Name)]++
	}

	result := make(map[string]models.PackageMetadata, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		r.total++

		lower := strings.ToLower(name)
		if meta, ok := r.cache.Get(lower); ok {
			r.found++
			result[name] = meta
			continue
		}

		meta, ok, err := r.lookup(ctx, lower)
		if err != nil {
			logrus.Warnf("Registry lookup for %s failed: %v", name, err)
			r.notFound++
			continue
		}
		if !ok {
			logrus.Debugf("Package %s not found in registry (%d declarations)", name, usage[lower])
			r.notFound++
			continue
		}

		r.found++
		r.cache.Add(lower, meta)
		result[name] = meta
	}
	return result, nil
}

// GetCacheStats returns how many lookups ran and how many resolved
func (r *NuGetResolver) GetCacheStats() (total, found, notFound int) {
	return r.total, r.found, r.notFound
}

func (r *NuGetResolver) lookup(ctx context.Context, lowerName string) (models.PackageMetadata, bool, error) {
	var index registrationIndex
	ok, err := r.getJSON(ctx, fmt.Sprintf("%s/%s/index.json", r.baseURL, lowerName), &index)
	if err != nil || !ok {
		return models.PackageMetadata{}, false, err
	}
	if len(index.Items) == 0 {
		return models.PackageMetadata{}, false, nil
	}

	// The last page holds the newest versions
	page := index.Items[len(index.Items)-1]
	if len(page.Items) == 0 && page.RefURL != "" {
		ok, err = r.getJSON(ctx, page.RefURL, &page)
		if err != nil || !ok {
			return models.PackageMetadata{}, false, err
		}
	}
	if len(page.Items) == 0 {
		return models.PackageMetadata{}, false, nil
	}

	entry := page.Items[len(page.Items)-1].CatalogEntry
	meta := models.PackageMetadata{
		LatestVersion: entry.Version,
		Listed:        entry.Listed == nil || *entry.Listed,
		Deprecated:    entry.Deprecation != nil,
		ProjectURL:    entry.ProjectURL,
	}
	return meta, true, nil
}

func (r *NuGetResolver) getJSON(ctx context.Context, endpoint string, out interface{}) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, endpoint)
	}
	return true, json.NewDecoder(resp.Body).Decode(out)
}

package policy

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rvalk/depscan/internal/models"
)

// contentGateway serves canned file contents keyed by path.
type contentGateway struct {
	contents map[string]string
	err      error
}

func (g *contentGateway) ListRepositories(ctx context.Context) ([]models.Repository, error) {
	return nil, nil
}

func (g *contentGateway) ListProjectFiles(ctx context.Context, repo models.Repository) ([]models.ProjectFile, error) {
	return nil, nil
}

func (g *contentGateway) ListManagementFiles(ctx context.Context, repo models.Repository, includeLegacy bool) ([]models.ManagementFile, error) {
	return nil, nil
}

func (g *contentGateway) FetchContent(ctx context.Context, repo models.Repository, filePath string) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	return g.contents[filePath], nil
}

func TestReadOverridePolicyAbsent(t *testing.T) {
	gw := &contentGateway{contents: map[string]string{}}

	p, err := ReadOverridePolicy(context.Background(), gw, models.Repository{Name: "web"})

	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestReadOverridePolicyJSON(t *testing.T) {
	gw := &contentGateway{contents: map[string]string{
		"/renovate.json": `{
			"ignoreDeps": ["Newtonsoft.Json"],
			"packageRules": [
				{"enabled": false, "matchPackageNames": ["Dapper"], "matchPackagePatterns": ["^Internal\\."]},
				{"enabled": true, "matchPackageNames": ["Serilog"]}
			]
		}`,
	}}

	p, err := ReadOverridePolicy(context.Background(), gw, models.Repository{Name: "web"})

	require.NoError(t, err)
	require.NotNil(t, p)
	assert.True(t, p.IsExcluded("newtonsoft.json"))
	assert.True(t, p.IsExcluded("DAPPER"))
	assert.True(t, p.IsExcluded("Internal.Auth"))
	// Enabled rules do not exclude anything
	assert.False(t, p.IsExcluded("Serilog"))
}

func TestReadOverridePolicyYAML(t *testing.T) {
	gw := &contentGateway{contents: map[string]string{
		"/renovate.yaml": `
ignoreDeps:
  - Newtonsoft.Json
packageRules:
  - enabled: false
    matchPackageNames:
      - Dapper
`,
	}}

	p, err := ReadOverridePolicy(context.Background(), gw, models.Repository{Name: "web"})

	require.NoError(t, err)
	require.NotNil(t, p)
	assert.True(t, p.IsExcluded("Newtonsoft.Json"))
	assert.True(t, p.IsExcluded("Dapper"))
}

func TestReadOverridePolicyInvalidDocument(t *testing.T) {
	gw := &contentGateway{contents: map[string]string{
		"/renovate.json": `{not json`,
	}}

	_, err := ReadOverridePolicy(context.Background(), gw, models.Repository{Name: "web"})
	assert.Error(t, err)
}

func TestReadOverridePolicyFetchFailure(t *testing.T) {
	gw := &contentGateway{err: errors.New("gateway down")}

	_, err := ReadOverridePolicy(context.Background(), gw, models.Repository{Name: "web"})
	assert.Error(t, err)
}

func TestOverridePolicyNilExcludesNothing(t *testing.T) {
	var p *OverridePolicy
	assert.False(t, p.IsExcluded("anything"))
}

package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rvalk/depscan/internal/extract"
	"github.com/rvalk/depscan/internal/models"
)

func TestMergeCentralVersionsRewritesOnlyMappedNames(t *testing.T) {
	declarations := []models.PackageDeclaration{
		{Name: "Newtonsoft.Json", Version: "12.0.3", ProjectPath: "/a.csproj"},
		{Name: "Dapper", Version: "2.1.35", ProjectPath: "/a.csproj"},
	}
	central := extract.CentralVersions{
		Managed:  true,
		Versions: map[string]string{"newtonsoft.json": "13.0.3"},
	}

	merged := MergeCentralVersions(declarations, central)

	require.Len(t, merged, 2)
	assert.Equal(t, "13.0.3", merged[0].Version)
	assert.Equal(t, "2.1.35", merged[1].Version)
}

func TestMergeCentralVersionsPreservesOrderCountAndInput(t *testing.T) {
	declarations := []models.PackageDeclaration{
		{Name: "A", Version: "1", ProjectPath: "/p", ProjectRef: "P"},
		{Name: "B", Version: "2", ProjectPath: "/p", ProjectRef: "P"},
		{Name: "C", Version: "3", ProjectPath: "/p", ProjectRef: "P"},
	}
	central := extract.CentralVersions{
		Managed:  true,
		Versions: map[string]string{"a": "10", "c": "30"},
	}

	merged := MergeCentralVersions(declarations, central)

	require.Len(t, merged, len(declarations))
	for i := range merged {
		assert.Equal(t, declarations[i].Name, merged[i].Name)
		assert.Equal(t, declarations[i].ProjectPath, merged[i].ProjectPath)
		assert.Equal(t, declarations[i].ProjectRef, merged[i].ProjectRef)
	}

	// The input slice is never touched
	assert.Equal(t, "1", declarations[0].Version)
	assert.Equal(t, "3", declarations[2].Version)
	assert.Equal(t, "10", merged[0].Version)
	assert.Equal(t, "30", merged[2].Version)
}

func TestMergeCentralVersionsEmptyInput(t *testing.T) {
	merged := MergeCentralVersions(nil, extract.CentralVersions{Managed: true})
	assert.Empty(t, merged)
}
